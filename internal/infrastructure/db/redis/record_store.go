package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/kp9community/portal/internal/core/domain"
	"github.com/kp9community/portal/internal/infrastructure/db/codec"
	"github.com/kp9community/portal/internal/infrastructure/db/optimistic"
	"github.com/kp9community/portal/internal/pkg/metrics"
)

// ErrConflict is returned when Update keeps losing optimistic races.
var ErrConflict = optimistic.ErrConflict

// Serializer runs fn on the single in-process writer owning resource.
type Serializer interface {
	Do(ctx context.Context, resource string, fn func() error) error
}

// RecordStore implements ports.RecordStore with one key per resource holding
// the JSON-encoded sequence.
// Key format: <prefix>:<name>
//
// Writes from this process are serialized through the writer; WATCH/MULTI
// only has to arbitrate between processes sharing the key.
type RecordStore[T any] struct {
	client *redis.Client
	writer Serializer
	name   string
	key    string
	log    zerolog.Logger
}

// NewRecordStore creates a RecordStore for resource name. writer may be nil,
// in which case concurrent local writers rely on WATCH/MULTI alone.
func NewRecordStore[T any](client *redis.Client, prefix, name string, writer Serializer, log zerolog.Logger) *RecordStore[T] {
	return &RecordStore[T]{
		client: client,
		writer: writer,
		name:   name,
		key:    recordKey(prefix, name),
		log:    log.With().Str("resource", name).Logger(),
	}
}

func (s *RecordStore[T]) serialize(ctx context.Context, fn func() error) error {
	if s.writer == nil {
		return fn()
	}
	return s.writer.Do(ctx, s.key, fn)
}

func recordKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + ":" + name
}

// Load returns the stored records, or an empty slice when the key is missing,
// unreachable or unparsable.
func (s *RecordStore[T]) Load(ctx context.Context) []T {
	data, err := s.client.Get(ctx, s.key).Bytes()
	return s.decode(data, err)
}

func (s *RecordStore[T]) decode(data []byte, err error) []T {
	if err != nil {
		if errors.Is(err, redis.Nil) {
			s.log.Debug().Str("key", s.key).Msg("resource absent, starting empty")
		} else {
			metrics.StorageErrorsTotal.WithLabelValues(s.name, "read_failed").Inc()
			s.log.Warn().Err(err).Str("key", s.key).Msg("resource unreadable, treating as empty")
		}
		return []T{}
	}

	records, err := codec.Decode[T](data)
	if err != nil {
		metrics.StorageErrorsTotal.WithLabelValues(s.name, "read_corrupt").Inc()
		s.log.Warn().Err(err).Str("key", s.key).Msg("resource corrupt, treating as empty")
		return []T{}
	}
	return records
}

// Save overwrites the key with records.
func (s *RecordStore[T]) Save(ctx context.Context, records []T) error {
	data, err := codec.Encode(records)
	if err != nil {
		return fmt.Errorf("save %s: %w", s.name, err)
	}
	return s.serialize(ctx, func() error {
		if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
			metrics.StorageErrorsTotal.WithLabelValues(s.name, "write_failed").Inc()
			return fmt.Errorf("save %s: %w", s.name, err)
		}
		return nil
	})
}

// Update applies fn inside a WATCH/MULTI transaction, retrying with backoff
// when another process changed the key in between.
func (s *RecordStore[T]) Update(ctx context.Context, fn func([]T) ([]T, error)) error {
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, s.key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		next, err := fn(s.decode(data, err))
		if err != nil {
			return err
		}
		encoded, err := codec.Encode(next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key, encoded, 0)
			return nil
		})
		return err
	}

	attempt := 0
	err := s.serialize(ctx, func() error {
		return optimistic.Run(ctx, optimistic.DefaultAttempts, func(ctx context.Context) (bool, error) {
			attempt++
			err := s.client.Watch(ctx, txf, s.key)
			if errors.Is(err, redis.TxFailedErr) {
				s.log.Debug().Int("attempt", attempt).Msg("optimistic update lost race, retrying")
				return false, nil
			}
			return err == nil, err
		})
	})
	if errors.Is(err, ErrConflict) {
		metrics.StorageErrorsTotal.WithLabelValues(s.name, "write_failed").Inc()
		return fmt.Errorf("update %s: %w", s.name, err)
	}
	return err
}

// Check reports domain.ErrStorageCorrupt when the key holds something other
// than a record array. A missing key is not an error.
func (s *RecordStore[T]) Check(ctx context.Context) error {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", s.key, err)
	}
	if _, err := codec.Decode[T](data); err != nil {
		return fmt.Errorf("%s: %w: %v", s.key, domain.ErrStorageCorrupt, err)
	}
	return nil
}
