package record

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/dentelia/dentelia_backend/internal/model"
	"github.com/dentelia/dentelia_backend/internal/store"
)

const meterName = "github.com/dentelia/dentelia_backend/internal/service/record"

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// Actor is who performs an intent, as supplied by the auth gateway.
type Actor struct {
	ID   string
	Role model.Role
}

type RegisterRequest struct {
	PatientID string
	Profile   model.Profile
}

type CreateAppointmentRequest struct {
	PatientID string
	Date      string // model.DateLayout
	Time      string // model.TimeLayout
	Reason    string
}

type ChangeStatusRequest struct {
	PatientID     string
	AppointmentID string
	NewStatus     model.Status
}

type SetNotesRequest struct {
	PatientID     string
	AppointmentID string
	Notes         string
}

type AppendHistoryRequest struct {
	PatientID string
	Note      string
}

// MutationFunc rewrites a working copy of the aggregate. Returning an
// error aborts the commit with no effect.
type MutationFunc func(*model.PatientRecord) error

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

// Config tunes the engine. Zero MaxCommitRetries means intents get a
// single attempt and surface ErrConflict on the first lost race.
type Config struct {
	MaxCommitRetries int
	SlotGuard        bool
}

type Service interface {
	// Register creates the empty aggregate for a new patient account.
	Register(ctx context.Context, req RegisterRequest) (*model.PatientRecord, error)

	// Get returns a read-only snapshot of one patient's record.
	Get(ctx context.Context, patientID string) (*model.PatientRecord, error)

	// ListPatients returns snapshots of every patient-role record,
	// for the clinician dashboard.
	ListPatients(ctx context.Context) ([]*model.PatientRecord, error)

	CreateAppointment(ctx context.Context, actor Actor, req CreateAppointmentRequest) (*model.PatientRecord, error)
	ChangeStatus(ctx context.Context, actor Actor, req ChangeStatusRequest) (*model.PatientRecord, error)
	SetNotes(ctx context.Context, actor Actor, req SetNotesRequest) (*model.PatientRecord, error)
	AppendHistory(ctx context.Context, actor Actor, req AppendHistoryRequest) (*model.PatientRecord, error)

	// Commit applies mutate to the aggregate loaded for patientID,
	// failing with ErrConflict when the stored version is not
	// expectedVersion, validating every invariant on the result and
	// persisting it atomically with the version incremented by one.
	Commit(ctx context.Context, patientID string, expectedVersion int64, mutate MutationFunc) (*model.PatientRecord, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type recordService struct {
	store store.RecordStore
	cfg   Config

	// injectable for tests
	newID func() string
	now   func() time.Time

	commitCounter   metric.Int64Counter
	conflictCounter metric.Int64Counter
}

func New(st store.RecordStore, cfg Config) Service {
	meter := otel.Meter(meterName)

	commitCounter, _ := meter.Int64Counter(
		"record_commit_total",
		metric.WithDescription("Committed patient record mutations"),
		metric.WithUnit("{commit}"),
	)
	conflictCounter, _ := meter.Int64Counter(
		"record_commit_conflict_total",
		metric.WithDescription("Patient record commits rejected for a stale version"),
		metric.WithUnit("{conflict}"),
	)

	return &recordService{
		store:           st,
		cfg:             cfg,
		newID:           uuid.NewString,
		now:             time.Now,
		commitCounter:   commitCounter,
		conflictCounter: conflictCounter,
	}
}

func (s *recordService) Register(ctx context.Context, req RegisterRequest) (*model.PatientRecord, error) {
	if req.PatientID == "" {
		return nil, fmt.Errorf("%w: patient id is required", ErrValidation)
	}
	if req.Profile.DisplayName == "" {
		return nil, fmt.Errorf("%w: display name is required", ErrValidation)
	}
	if req.Profile.Role == "" {
		req.Profile.Role = model.RolePatient
	}
	if !req.Profile.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, req.Profile.Role)
	}

	rec := model.NewPatientRecord(req.PatientID, req.Profile)
	if err := s.store.Create(ctx, rec); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("register patient: %w", err)
	}
	return rec, nil
}

func (s *recordService) Get(ctx context.Context, patientID string) (*model.PatientRecord, error) {
	rec, err := s.store.Get(ctx, patientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

func (s *recordService) ListPatients(ctx context.Context) ([]*model.PatientRecord, error) {
	recs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	out := recs[:0]
	for _, rec := range recs {
		if rec.Profile.Role == model.RolePatient {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *recordService) CreateAppointment(ctx context.Context, actor Actor, req CreateAppointmentRequest) (*model.PatientRecord, error) {
	// Validate the cheap fields before touching the store. The ID is
	// generated once per intent so automatic retries never duplicate it.
	appt, err := buildAppointment(req, s.newID)
	if err != nil {
		return nil, err
	}

	return s.commitWithRetry(ctx, req.PatientID, func(rec *model.PatientRecord) error {
		return addAppointment(rec, appt, s.cfg.SlotGuard)
	})
}

func (s *recordService) ChangeStatus(ctx context.Context, actor Actor, req ChangeStatusRequest) (*model.PatientRecord, error) {
	if !req.NewStatus.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, req.NewStatus)
	}

	return s.commitWithRetry(ctx, req.PatientID, func(rec *model.PatientRecord) error {
		return transitionAppointment(rec, req.AppointmentID, req.NewStatus, actor.Role)
	})
}

func (s *recordService) SetNotes(ctx context.Context, actor Actor, req SetNotesRequest) (*model.PatientRecord, error) {
	return s.commitWithRetry(ctx, req.PatientID, func(rec *model.PatientRecord) error {
		return setAppointmentNotes(rec, req.AppointmentID, req.Notes, actor.Role)
	})
}

func (s *recordService) AppendHistory(ctx context.Context, actor Actor, req AppendHistoryRequest) (*model.PatientRecord, error) {
	return s.commitWithRetry(ctx, req.PatientID, func(rec *model.PatientRecord) error {
		return appendHistoryEntry(rec, req.Note, actor.Role, s.now())
	})
}

func (s *recordService) Commit(ctx context.Context, patientID string, expectedVersion int64, mutate MutationFunc) (*model.PatientRecord, error) {
	if expectedVersion < 0 {
		return nil, fmt.Errorf("%w: expected version must not be negative", ErrValidation)
	}
	return s.commit(ctx, patientID, expectedVersion, mutate)
}

// commit runs one load-validate-swap cycle. expectedVersion < 0 means
// "whatever version is loaded"; a non-negative value enforces the
// caller's snapshot.
func (s *recordService) commit(ctx context.Context, patientID string, expectedVersion int64, mutate MutationFunc) (*model.PatientRecord, error) {
	cur, err := s.store.Get(ctx, patientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("load record: %w", err)
	}

	if expectedVersion >= 0 && cur.Version != expectedVersion {
		s.conflictCounter.Add(ctx, 1)
		return nil, ErrConflict
	}

	next := cur.Clone()
	if err := mutate(next); err != nil {
		return nil, err
	}
	next.Version = cur.Version + 1

	if err := model.ValidateSuccessor(cur, next); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMutation, err)
	}

	if err := s.store.CompareAndSwap(ctx, cur.Version, next); err != nil {
		switch {
		case errors.Is(err, store.ErrVersionMismatch):
			s.conflictCounter.Add(ctx, 1)
			return nil, ErrConflict
		case errors.Is(err, store.ErrNotFound):
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("swap record: %w", err)
	}

	s.commitCounter.Add(ctx, 1)
	return next, nil
}

// commitWithRetry reloads and reapplies the mutation after a lost race,
// a bounded number of times, then surfaces the conflict to the caller
// instead of spinning against another busy writer.
func (s *recordService) commitWithRetry(ctx context.Context, patientID string, mutate MutationFunc) (*model.PatientRecord, error) {
	var lastErr error
	for attempt := 0; attempt <= s.cfg.MaxCommitRetries; attempt++ {
		rec, err := s.commit(ctx, patientID, -1, mutate)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, ErrConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}
