package store

import (
	"context"
	"sync"

	"github.com/dentelia/dentelia_backend/internal/model"
)

// Memory is an in-process RecordStore used in development and tests.
type Memory struct {
	mu      sync.RWMutex
	records map[string]*model.PatientRecord
}

func NewMemory() *Memory {
	return &Memory{records: make(map[string]*model.PatientRecord)}
}

func (m *Memory) Get(ctx context.Context, patientID string) (*model.PatientRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[patientID]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

func (m *Memory) List(ctx context.Context) ([]*model.PatientRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*model.PatientRecord, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec.Clone())
	}
	return out, nil
}

func (m *Memory) Create(ctx context.Context, rec *model.PatientRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[rec.PatientID]; ok {
		return ErrAlreadyExists
	}
	m.records[rec.PatientID] = rec.Clone()
	return nil
}

func (m *Memory) CompareAndSwap(ctx context.Context, expectedVersion int64, rec *model.PatientRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.records[rec.PatientID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != expectedVersion {
		return ErrVersionMismatch
	}
	m.records[rec.PatientID] = rec.Clone()
	return nil
}
