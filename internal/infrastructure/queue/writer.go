package queue

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/rs/zerolog"
)

const defaultWorkers = 4

// ErrStopped is returned by Do once the writer's context has been cancelled.
var ErrStopped = errors.New("queue: writer stopped")

type job struct {
	resource string
	fn       func() error
	done     chan error
}

// Writer owns every write to a named resource. Resources are mapped to a
// fixed set of workers by consistent hashing, so all writes to one resource
// run one at a time and in arrival order.
type Writer struct {
	workers []chan job
	stopped chan struct{}
	start   sync.Once
	log     zerolog.Logger
}

// NewWriter creates a Writer with numWorkers workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewWriter(numWorkers int, log zerolog.Logger) *Writer {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	w := &Writer{
		workers: make([]chan job, numWorkers),
		stopped: make(chan struct{}),
		log:     log,
	}
	for i := range w.workers {
		// Unbuffered: a job that has been handed over is always executed.
		w.workers[i] = make(chan job)
	}
	return w
}

// Start launches the worker goroutines. Workers stop when ctx is cancelled.
// Calling Start more than once has no further effect.
func (w *Writer) Start(ctx context.Context) {
	w.start.Do(func() {
		for i, ch := range w.workers {
			go w.runWorker(ctx, i, ch)
		}
		go func() {
			<-ctx.Done()
			close(w.stopped)
		}()
	})
}

// Do runs fn on the worker that owns resource and returns its result. It
// blocks until fn has completed, ctx is cancelled before hand-over, or the
// writer is stopped.
func (w *Writer) Do(ctx context.Context, resource string, fn func() error) error {
	j := job{resource: resource, fn: fn, done: make(chan error, 1)}

	select {
	case w.workers[w.shardIndex(resource)] <- j:
	case <-ctx.Done():
		return ctx.Err()
	case <-w.stopped:
		return ErrStopped
	}
	return <-j.done
}

// shardIndex maps a resource name deterministically to a worker index.
func (w *Writer) shardIndex(resource string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(resource))
	return int(h.Sum32() % uint32(len(w.workers)))
}

func (w *Writer) runWorker(ctx context.Context, id int, ch <-chan job) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-ch:
			j.done <- w.run(id, j)
		}
	}
}

func (w *Writer) run(id int, j job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("queue: write to %s panicked: %v", j.resource, r)
			w.log.Error().
				Str("resource", j.resource).
				Int("worker_id", id).
				Interface("panic", r).
				Msg("write job panicked")
		}
	}()
	return j.fn()
}
