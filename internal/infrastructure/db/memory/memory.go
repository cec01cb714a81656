// Package memory keeps records in process memory. Used by tests and by
// STORAGE_DRIVER=memory for throwaway runs.
package memory

import (
	"context"
	"sync"
)

// Store implements ports.RecordStore with a mutex-guarded slice.
type Store[T any] struct {
	mu      sync.Mutex
	records []T
	// SaveErr, when set, is returned by Save and Update instead of writing.
	SaveErr error
}

// New returns a Store seeded with a copy of records.
func New[T any](records ...T) *Store[T] {
	return &Store[T]{records: clone(records)}
}

func (s *Store[T]) Load(_ context.Context) []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.records)
}

func (s *Store[T]) Save(_ context.Context, records []T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.records = clone(records)
	return nil
}

func (s *Store[T]) Update(_ context.Context, fn func([]T) ([]T, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(clone(s.records))
	if err != nil {
		return err
	}
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.records = clone(next)
	return nil
}

func clone[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}
