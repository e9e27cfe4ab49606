// Package analytics counts served links off the request path.
//
// Counting is best effort: a full buffer drops the hit and a failing store
// only produces a log line. Neither ever affects the response the requester
// already received.
package analytics

import (
	"context"
	"sync/atomic"

	"github.com/dmitrijs2005/securelinks/internal/logging"
	"github.com/dmitrijs2005/securelinks/internal/server/models"
)

// Store persists one hit.
type Store interface {
	Increment(ctx context.Context, hit models.Hit) error
}

// Recorder buffers hits in a bounded channel drained by Run.
type Recorder struct {
	hits    chan models.Hit
	store   Store
	logger  logging.Logger
	dropped atomic.Uint64
}

func NewRecorder(store Store, buffer int, logger logging.Logger) *Recorder {
	if buffer < 1 {
		buffer = 1
	}
	return &Recorder{
		hits:   make(chan models.Hit, buffer),
		store:  store,
		logger: logger.With("module", "analytics"),
	}
}

// Record enqueues hit without blocking.
func (r *Recorder) Record(hit models.Hit) {
	select {
	case r.hits <- hit:
	default:
		if n := r.dropped.Add(1); n&(n-1) == 0 {
			// logged at powers of two
			r.logger.Warn(context.Background(), "hit buffer full, dropping", "dropped_total", n)
		}
	}
}

// Dropped returns the number of hits discarded because the buffer was full.
func (r *Recorder) Dropped() uint64 {
	return r.dropped.Load()
}

// Run writes hits until ctx is done, then flushes what is still buffered.
// It must be started once.
func (r *Recorder) Run(ctx context.Context) {
	r.logger.Info(ctx, "Starting hit recorder")
	for {
		select {
		case hit := <-r.hits:
			r.write(ctx, hit)
		case <-ctx.Done():
			r.drain()
			r.logger.Info(ctx, "Hit recorder stopped")
			return
		}
	}
}

func (r *Recorder) drain() {
	ctx := context.Background()
	for {
		select {
		case hit := <-r.hits:
			r.write(ctx, hit)
		default:
			return
		}
	}
}

func (r *Recorder) write(ctx context.Context, hit models.Hit) {
	if err := r.store.Increment(ctx, hit); err != nil {
		r.logger.Error(ctx, "failed to record hit",
			"document_id", hit.DocumentID,
			"file_index", hit.FileColumn(),
			"kind", hit.Kind.String(),
			"error", err.Error())
	}
}
