package pipeline

import (
	"sync/atomic"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/adc-dairy/milkroom/internal/domain"
	"github.com/adc-dairy/milkroom/internal/logger"
)

// Worker serializes triggered work onto a single-slot pool so a scheduler
// tick and a webhook trigger can never run the pipeline concurrently.
// Submissions beyond the backlog cap are rejected with ErrWorkerBusy.
type Worker struct {
	pool       pond.Pool
	pending    atomic.Int32
	maxBacklog int32
}

// NewWorker creates a worker accepting at most maxBacklog queued jobs
// beyond the one executing
func NewWorker(maxBacklog int) *Worker {
	return &Worker{
		pool:       pond.NewPool(1),
		maxBacklog: int32(maxBacklog),
	}
}

// Enqueue submits a named job for serialized execution. The job runs with no
// deadline of its own; stages bound themselves internally.
func (w *Worker) Enqueue(name string, job func()) error {
	if w.pending.Load() > w.maxBacklog {
		logger.Warn("worker backlog full, rejecting job", zap.String("job", name))
		return domain.ErrWorkerBusy
	}

	w.pending.Add(1)
	w.pool.Submit(func() {
		defer w.pending.Add(-1)
		logger.Info("job started", zap.String("job", name))
		job()
		logger.Info("job finished", zap.String("job", name))
	})
	return nil
}

// StopAndWait drains the queue and blocks until running jobs finish
func (w *Worker) StopAndWait() {
	w.pool.StopAndWait()
}
