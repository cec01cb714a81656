package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/kp9community/portal/internal/core/domain"
	"github.com/kp9community/portal/internal/core/ports"
	"github.com/kp9community/portal/internal/pkg/metrics"
)

// AuditLog is the append-only record of every mutating action. Entries are
// stored oldest first and read newest first.
type AuditLog struct {
	store ports.RecordStore[domain.LogEntry]
	now   func() time.Time
	log   zerolog.Logger
}

func NewAuditLog(store ports.RecordStore[domain.LogEntry], log zerolog.Logger) *AuditLog {
	return &AuditLog{store: store, now: time.Now, log: log}
}

// Append records that actor performed action on target. Storage failures are
// returned to the caller.
func (a *AuditLog) Append(ctx context.Context, actor, action, target string) (*domain.LogEntry, error) {
	entry := domain.LogEntry{
		Time:   domain.FormatTime(a.now()),
		Actor:  actor,
		Action: action,
		Target: target,
	}

	err := a.store.Update(ctx, func(entries []domain.LogEntry) ([]domain.LogEntry, error) {
		return append(entries, entry), nil
	})
	if err != nil {
		return nil, fmt.Errorf("append audit entry: %w", err)
	}

	metrics.AuditEntriesTotal.WithLabelValues(action).Inc()
	a.log.Debug().Str("actor", actor).Str("action", action).Str("target", target).Msg("audit entry appended")
	return &entry, nil
}

// Recent returns up to n entries, newest first.
func (a *AuditLog) Recent(ctx context.Context, n int) []domain.LogEntry {
	if n <= 0 {
		return []domain.LogEntry{}
	}
	entries := a.store.Load(ctx)
	if n > len(entries) {
		n = len(entries)
	}
	return reversed(entries[len(entries)-n:])
}

// All returns every entry, newest first.
func (a *AuditLog) All(ctx context.Context) []domain.LogEntry {
	return reversed(a.store.Load(ctx))
}

func reversed(in []domain.LogEntry) []domain.LogEntry {
	out := make([]domain.LogEntry, len(in))
	for i, e := range in {
		out[len(in)-1-i] = e
	}
	return out
}
