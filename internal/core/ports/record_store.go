package ports

import "context"

// RecordStore persists one named, ordered sequence of flat records.
type RecordStore[T any] interface {
	// Load returns the stored sequence. A missing or unreadable resource
	// yields an empty slice; the two cases are not distinguished.
	Load(ctx context.Context) []T
	// Save replaces the entire resource. Readers never observe a partial write.
	Save(ctx context.Context, records []T) error
	// Update runs fn against the current records on the resource's single
	// writer and saves the result. Nothing is saved when fn fails.
	Update(ctx context.Context, fn func(records []T) ([]T, error)) error
}

// RecordChecker is implemented by stores that can tell an unreadable resource
// from an empty one. Check returns an error wrapping domain.ErrStorageCorrupt
// when the resource exists but cannot be decoded.
type RecordChecker interface {
	Check(ctx context.Context) error
}
