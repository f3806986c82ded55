package queue

import (
	"context"
	"log/slog"
	"time"
)

// Prober answers whether the backend looks reachable right now.
type Prober interface {
	Reachable(ctx context.Context) bool
}

// Worker runs the opportunistic drain loop: every interval it probes
// connectivity and, when the backend answers, drains the queue. Manual
// "sync now" drains run concurrently; the per-item CAS in the store keeps
// the two from double-submitting.
type Worker struct {
	queue    *Service
	prober   Prober
	interval time.Duration
	logger   *slog.Logger
}

// NewWorker creates the drain worker.
func NewWorker(queue *Service, prober Prober, interval time.Duration, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{queue: queue, prober: prober, interval: interval, logger: logger}
}

// Run blocks until ctx is cancelled. Drain errors are logged, not fatal:
// the next tick retries.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !w.prober.Reachable(ctx) {
				continue
			}
			report, err := w.queue.Drain(ctx)
			if err != nil {
				w.logger.ErrorContext(ctx, "queue drain failed", "error", err)
				continue
			}
			if report.Submitted+report.Requeued+report.Failed > 0 {
				w.logger.InfoContext(ctx, "queue drained",
					"submitted", report.Submitted,
					"requeued", report.Requeued,
					"failed", report.Failed,
					"skipped", report.Skipped,
				)
			}
		}
	}
}
