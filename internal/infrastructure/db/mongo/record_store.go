package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kp9community/portal/internal/core/domain"
	"github.com/kp9community/portal/internal/infrastructure/db/optimistic"
	"github.com/kp9community/portal/internal/pkg/metrics"
)

const collectionRecords = "records"

// ErrConflict is returned when Update keeps losing optimistic races.
var ErrConflict = optimistic.ErrConflict

// Serializer runs fn on the single in-process writer owning resource.
type Serializer interface {
	Do(ctx context.Context, resource string, fn func() error) error
}

// recordDoc holds one whole resource. Version increases on every write and
// guards Update against lost updates.
type recordDoc[T any] struct {
	ID        string    `bson:"_id"`
	Records   []T       `bson:"records"`
	Version   int64     `bson:"version"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// RecordStore implements ports.RecordStore with one document per resource.
// Writes from this process are serialized through the writer; the version
// field only has to arbitrate between processes.
type RecordStore[T any] struct {
	col    *mongo.Collection
	writer Serializer
	name   string
	log    zerolog.Logger
}

// NewRecordStore creates a RecordStore for resource name. writer may be nil.
func NewRecordStore[T any](db *mongo.Database, name string, writer Serializer, log zerolog.Logger) *RecordStore[T] {
	return &RecordStore[T]{
		col:    db.Collection(collectionRecords),
		writer: writer,
		name:   name,
		log:    log.With().Str("resource", name).Logger(),
	}
}

func (s *RecordStore[T]) serialize(ctx context.Context, fn func() error) error {
	if s.writer == nil {
		return fn()
	}
	return s.writer.Do(ctx, collectionRecords+"/"+s.name, fn)
}

func (s *RecordStore[T]) find(ctx context.Context) (*recordDoc[T], error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	raw, err := s.col.FindOne(ctx, bson.M{"_id": s.name}).Raw()
	if err != nil {
		return nil, err
	}
	var doc recordDoc[T]
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%s/%s: %w: %v", collectionRecords, s.name, domain.ErrStorageCorrupt, err)
	}
	if doc.Records == nil {
		doc.Records = []T{}
	}
	return &doc, nil
}

// Load returns the stored records, or an empty slice when the document is
// missing or cannot be decoded.
func (s *RecordStore[T]) Load(ctx context.Context) []T {
	doc, err := s.find(ctx)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			s.log.Debug().Msg("resource absent, starting empty")
		case errors.Is(err, domain.ErrStorageCorrupt):
			metrics.StorageErrorsTotal.WithLabelValues(s.name, "read_corrupt").Inc()
			s.log.Warn().Err(err).Msg("resource corrupt, treating as empty")
		default:
			metrics.StorageErrorsTotal.WithLabelValues(s.name, "read_failed").Inc()
			s.log.Warn().Err(err).Msg("resource unreadable, treating as empty")
		}
		return []T{}
	}
	return doc.Records
}

// Save replaces the resource document, creating it when missing.
func (s *RecordStore[T]) Save(ctx context.Context, records []T) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if records == nil {
		records = []T{}
	}
	update := bson.M{
		"$set": bson.M{"records": records, "updated_at": time.Now().UTC()},
		"$inc": bson.M{"version": 1},
	}
	return s.serialize(ctx, func() error {
		_, err := s.col.UpdateOne(ctx, bson.M{"_id": s.name}, update, options.Update().SetUpsert(true))
		if err != nil {
			metrics.StorageErrorsTotal.WithLabelValues(s.name, "write_failed").Inc()
			return fmt.Errorf("save %s: %w", s.name, err)
		}
		return nil
	})
}

// Update applies fn and writes the result only if nobody else wrote the
// resource in between, retrying with backoff otherwise.
func (s *RecordStore[T]) Update(ctx context.Context, fn func([]T) ([]T, error)) error {
	attempt := 0
	err := s.serialize(ctx, func() error {
		return optimistic.Run(ctx, optimistic.DefaultAttempts, func(ctx context.Context) (bool, error) {
			attempt++
			doc, err := s.find(ctx)
			switch {
			case errors.Is(err, mongo.ErrNoDocuments):
				doc = &recordDoc[T]{ID: s.name, Records: []T{}}
			case err != nil:
				return false, fmt.Errorf("update %s: %w", s.name, err)
			}

			next, err := fn(doc.Records)
			if err != nil {
				return false, err
			}
			if next == nil {
				next = []T{}
			}

			ok, err := s.writeIfVersion(ctx, doc.Version, next)
			if err != nil {
				metrics.StorageErrorsTotal.WithLabelValues(s.name, "write_failed").Inc()
				return false, fmt.Errorf("update %s: %w", s.name, err)
			}
			if !ok {
				s.log.Debug().Int("attempt", attempt).Msg("optimistic update lost race, retrying")
			}
			return ok, nil
		})
	})
	if errors.Is(err, ErrConflict) {
		metrics.StorageErrorsTotal.WithLabelValues(s.name, "write_failed").Inc()
		return fmt.Errorf("update %s: %w", s.name, err)
	}
	return err
}

// Check reports domain.ErrStorageCorrupt when the resource document exists
// but cannot be decoded. A missing document is not an error.
func (s *RecordStore[T]) Check(ctx context.Context) error {
	_, err := s.find(ctx)
	switch {
	case err == nil, errors.Is(err, mongo.ErrNoDocuments):
		return nil
	case errors.Is(err, domain.ErrStorageCorrupt):
		return err
	}
	return fmt.Errorf("read %s: %w", s.name, err)
}

// writeIfVersion stores records when the document is still at version.
// Version 0 means the document did not exist when it was read.
func (s *RecordStore[T]) writeIfVersion(ctx context.Context, version int64, records []T) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	if version == 0 {
		_, err := s.col.InsertOne(ctx, recordDoc[T]{ID: s.name, Records: records, Version: 1, UpdatedAt: now})
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return err == nil, err
	}

	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": s.name, "version": version},
		bson.M{"$set": bson.M{"records": records, "version": version + 1, "updated_at": now}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}
