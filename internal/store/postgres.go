package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dentelia/dentelia_backend/internal/model"
)

// Postgres stores each aggregate as one JSONB document with a version
// column; compare-and-swap is a conditional UPDATE on that column.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Migrate creates the patient_records table if it does not exist.
func (s *Postgres) Migrate(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS patient_records (
    patient_id TEXT PRIMARY KEY,
    version    BIGINT NOT NULL,
    doc        JSONB  NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("migrate patient_records: %w", err)
	}
	return nil
}

func (s *Postgres) Get(ctx context.Context, patientID string) (*model.PatientRecord, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM patient_records WHERE patient_id = $1`, patientID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return decodeRecord(raw)
}

func (s *Postgres) List(ctx context.Context) ([]*model.PatientRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc FROM patient_records ORDER BY patient_id`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []*model.PatientRecord
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec, err := decodeRecord(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return out, nil
}

func (s *Postgres) Create(ctx context.Context, rec *model.PatientRecord) error {
	buf, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO patient_records (patient_id, version, doc)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (patient_id) DO NOTHING`,
		rec.PatientID, rec.Version, buf,
	)
	if err != nil {
		return fmt.Errorf("create record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create record: %w", err)
	}
	if n == 0 {
		return ErrAlreadyExists
	}
	return nil
}

func (s *Postgres) CompareAndSwap(ctx context.Context, expectedVersion int64, rec *model.PatientRecord) error {
	buf, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE patient_records
		 SET doc = $1, version = $2, updated_at = now()
		 WHERE patient_id = $3 AND version = $4`,
		buf, rec.Version, rec.PatientID, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("swap record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("swap record: %w", err)
	}
	if n == 1 {
		return nil
	}

	// Distinguish a missing row from a stale version.
	var exists bool
	err = s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM patient_records WHERE patient_id = $1)`,
		rec.PatientID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("swap record: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrVersionMismatch
}
