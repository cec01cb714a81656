// Package jsonfile stores each resource as <dir>/<name>.json.
package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"

	"github.com/kp9community/portal/internal/core/domain"
	"github.com/kp9community/portal/internal/infrastructure/db/codec"
	"github.com/kp9community/portal/internal/pkg/metrics"
)

// Serializer runs fn on the single writer owning resource.
type Serializer interface {
	Do(ctx context.Context, resource string, fn func() error) error
}

// Store implements ports.RecordStore on top of one JSON file.
type Store[T any] struct {
	name   string
	path   string
	writer Serializer
	log    zerolog.Logger
}

// New returns a Store for resource name inside dir. All writes are funnelled
// through writer.
func New[T any](dir, name string, writer Serializer, log zerolog.Logger) *Store[T] {
	return &Store[T]{
		name:   name,
		path:   filepath.Join(dir, name+".json"),
		writer: writer,
		log:    log.With().Str("resource", name).Logger(),
	}
}

// Path returns the file backing the store.
func (s *Store[T]) Path() string { return s.path }

// Load returns the stored records, or an empty slice when the file is missing
// or cannot be parsed.
func (s *Store[T]) Load(_ context.Context) []T {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.log.Debug().Str("path", s.path).Msg("resource absent, starting empty")
		} else {
			metrics.StorageErrorsTotal.WithLabelValues(s.name, "read_failed").Inc()
			s.log.Warn().Err(err).Str("path", s.path).Msg("resource unreadable, treating as empty")
		}
		return []T{}
	}

	records, err := codec.Decode[T](data)
	if err != nil {
		metrics.StorageErrorsTotal.WithLabelValues(s.name, "read_corrupt").Inc()
		s.log.Warn().Err(err).Str("path", s.path).Msg("resource corrupt, treating as empty")
		return []T{}
	}
	return records
}

// Save replaces the file contents with records.
func (s *Store[T]) Save(ctx context.Context, records []T) error {
	defer s.observe(time.Now())
	return s.writer.Do(ctx, s.name, func() error {
		return s.write(records)
	})
}

// Update loads, transforms and saves the records on the resource's writer.
func (s *Store[T]) Update(ctx context.Context, fn func([]T) ([]T, error)) error {
	defer s.observe(time.Now())
	return s.writer.Do(ctx, s.name, func() error {
		next, err := fn(s.Load(ctx))
		if err != nil {
			return err
		}
		return s.write(next)
	})
}

// Check reports domain.ErrStorageCorrupt when the file exists but does not
// hold a record array. A missing file is not an error.
func (s *Store[T]) Check(_ context.Context) error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", s.path, err)
	}
	if _, err := codec.Decode[T](data); err != nil {
		return fmt.Errorf("%s: %w: %v", s.path, domain.ErrStorageCorrupt, err)
	}
	return nil
}

func (s *Store[T]) observe(start time.Time) {
	metrics.StorageWriteDuration.WithLabelValues(s.name).Observe(time.Since(start).Seconds())
}

// write encodes records and atomically replaces the file with them.
func (s *Store[T]) write(records []T) error {
	if err := s.writeFile(records); err != nil {
		metrics.StorageErrorsTotal.WithLabelValues(s.name, "write_failed").Inc()
		s.log.Error().Err(err).Str("path", s.path).Msg("failed to save resource")
		return fmt.Errorf("save %s: %w", s.name, err)
	}
	return nil
}

func (s *Store[T]) writeFile(records []T) error {
	data, err := codec.Encode(records)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return renameio.WriteFile(s.path, data, 0o644)
}
