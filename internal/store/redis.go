package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dentelia/dentelia_backend/internal/model"
)

const defaultKeyPrefix = "record:"

// Redis stores each aggregate as one JSON document under
// <prefix><patientId>. Compare-and-swap runs inside a WATCH/MULTI
// transaction so a concurrent writer aborts the swap.
type Redis struct {
	rdb    *goredis.Client
	prefix string
}

func NewRedis(rdb *goredis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &Redis{rdb: rdb, prefix: prefix}
}

func (s *Redis) key(patientID string) string {
	return s.prefix + patientID
}

func (s *Redis) Get(ctx context.Context, patientID string) (*model.PatientRecord, error) {
	raw, err := s.rdb.Get(ctx, s.key(patientID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return decodeRecord(raw)
}

func (s *Redis) List(ctx context.Context) ([]*model.PatientRecord, error) {
	var out []*model.PatientRecord

	iter := s.rdb.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		raw, err := s.rdb.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, goredis.Nil) {
			continue // deleted between scan and get
		}
		if err != nil {
			return nil, fmt.Errorf("list records: %w", err)
		}
		rec, err := decodeRecord(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan records: %w", err)
	}
	return out, nil
}

func (s *Redis) Create(ctx context.Context, rec *model.PatientRecord) error {
	buf, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	set, err := s.rdb.SetNX(ctx, s.key(rec.PatientID), buf, 0).Result()
	if err != nil {
		return fmt.Errorf("create record: %w", err)
	}
	if !set {
		return ErrAlreadyExists
	}
	return nil
}

func (s *Redis) CompareAndSwap(ctx context.Context, expectedVersion int64, rec *model.PatientRecord) error {
	key := s.key(rec.PatientID)

	txf := func(tx *goredis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, goredis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get record: %w", err)
		}

		var cur struct {
			Version int64 `json:"version"`
		}
		if err := json.Unmarshal(raw, &cur); err != nil {
			return fmt.Errorf("decode record: %w", err)
		}
		if cur.Version != expectedVersion {
			return ErrVersionMismatch
		}

		buf, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode record: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, buf, 0)
			return nil
		})
		return err
	}

	err := s.rdb.Watch(ctx, txf, key)
	if errors.Is(err, goredis.TxFailedErr) {
		// Another writer touched the key between WATCH and EXEC.
		return ErrVersionMismatch
	}
	return err
}

func decodeRecord(raw []byte) (*model.PatientRecord, error) {
	var rec model.PatientRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return &rec, nil
}
