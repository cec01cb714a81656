// Package optimistic retries read-modify-write attempts that lost a race
// against another process, with jittered exponential backoff between them.
package optimistic

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultAttempts = 10

	initialInterval = 5 * time.Millisecond
	maxInterval     = 250 * time.Millisecond
)

// ErrConflict is returned when every attempt lost its race.
var ErrConflict = errors.New("too many concurrent updates")

var errLostRace = errors.New("lost optimistic race")

// Attempt performs one read-modify-write. It reports committed=false when the
// write was rejected because the resource changed since it was read; any
// error aborts the retry loop and is returned unchanged.
type Attempt func(ctx context.Context) (committed bool, err error)

// Run calls attempt until it commits, fails, ctx ends, or attempts tries have
// been used up.
func Run(ctx context.Context, attempts uint64, attempt Attempt) error {
	if attempts == 0 {
		attempts = DefaultAttempts
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initialInterval
	b.MaxInterval = maxInterval
	b.RandomizationFactor = 0.5
	b.MaxElapsedTime = 0

	op := func() error {
		committed, err := attempt(ctx)
		if err != nil {
			return backoff.Permanent(err)
		}
		if !committed {
			return errLostRace
		}
		return nil
	}

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, attempts-1), ctx))
	if errors.Is(err, errLostRace) {
		return ErrConflict
	}
	return err
}
