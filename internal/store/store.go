// Package store provides durable keyed storage for patient record
// aggregates. The whole aggregate is the unit of persistence: writes
// go through a single compare-and-swap on the stored version, never
// through independent field updates.
package store

import (
	"context"
	"errors"

	"github.com/dentelia/dentelia_backend/internal/model"
)

var (
	// ErrNotFound is returned when no aggregate exists for a patient.
	ErrNotFound = errors.New("patient record not found")
	// ErrVersionMismatch is returned by CompareAndSwap when the stored
	// version differs from the expected one.
	ErrVersionMismatch = errors.New("patient record version mismatch")
	// ErrAlreadyExists is returned by Create when an aggregate already
	// exists for the patient.
	ErrAlreadyExists = errors.New("patient record already exists")
)

// RecordStore is the storage collaborator of the record engine.
type RecordStore interface {
	// Get returns the current aggregate for a patient.
	Get(ctx context.Context, patientID string) (*model.PatientRecord, error)

	// List returns every stored aggregate. Ordering is unspecified.
	List(ctx context.Context) ([]*model.PatientRecord, error)

	// Create stores a brand-new aggregate, failing with
	// ErrAlreadyExists if one is present.
	Create(ctx context.Context, rec *model.PatientRecord) error

	// CompareAndSwap atomically replaces the aggregate keyed by
	// rec.PatientID if the stored version equals expectedVersion,
	// failing with ErrVersionMismatch otherwise. The swap is
	// all-or-nothing; a rejected swap leaves the store unchanged.
	CompareAndSwap(ctx context.Context, expectedVersion int64, rec *model.PatientRecord) error
}
