// Package async runs per-document work on a bounded worker pool while
// keeping results in submission order.
package async

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Queue holds the pool settings. It carries no jobs of its own; Map does.
type Queue struct {
	logger  *slog.Logger
	workers int
	timeout time.Duration
}

type Option func(*Queue)

func WithWorkers(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}

// WithProcessTimeout bounds each job. Zero leaves jobs unbounded.
func WithProcessTimeout(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewQueue(logger *slog.Logger, opts ...Option) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &Queue{
		logger:  logger,
		workers: 4,
	}
	for _, o := range opts {
		o(q)
	}
	return q
}

// Workers is the configured pool size.
func (q *Queue) Workers() int { return q.workers }

type indexed[J any] struct {
	i   int
	job J
}

// Map runs fn over jobs on q's workers. out[i] is always fn's result for
// jobs[i], whatever order the workers finish in. Each fn call gets its own
// context, bounded by the process timeout when one is set.
func Map[J, R any](ctx context.Context, q *Queue, jobs []J, fn func(ctx context.Context, i int, job J) R) []R {
	out := make([]R, len(jobs))
	if len(jobs) == 0 {
		return out
	}
	workers := q.workers
	if workers > len(jobs) {
		workers = len(jobs)
	}

	ch := make(chan indexed[J])
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			q.logger.Debug("worker started", "worker_id", workerID)
			for it := range ch {
				jobCtx, cancel := q.jobContext(ctx)
				out[it.i] = fn(jobCtx, it.i, it.job)
				cancel()
			}
			q.logger.Debug("worker stopped", "worker_id", workerID)
		}(w + 1)
	}

	for i, j := range jobs {
		ch <- indexed[J]{i: i, job: j}
	}
	close(ch)
	wg.Wait()
	return out
}

func (q *Queue) jobContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if q.timeout > 0 {
		return context.WithTimeout(ctx, q.timeout)
	}
	return context.WithCancel(ctx)
}
