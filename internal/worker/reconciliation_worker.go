package worker

import (
	"context"
	"sync"
	"time"

	"github.com/ayo6706/banking-agent/internal/observability"
	"go.uber.org/zap"
)

const reconciliationWorkerName = "reconciliation"

// Auditor is a single reconciliation pass.
type Auditor interface {
	Run(ctx context.Context) error
}

// ReconciliationWorker audits account invariants on a fixed interval.
type ReconciliationWorker struct {
	auditor  Auditor
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewReconciliationWorker runs auditor once a minute unless WithInterval
// says otherwise.
func NewReconciliationWorker(auditor Auditor) *ReconciliationWorker {
	return &ReconciliationWorker{
		auditor:  auditor,
		interval: time.Minute,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// WithInterval overrides the audit interval. Non-positive values are ignored.
func (w *ReconciliationWorker) WithInterval(interval time.Duration) *ReconciliationWorker {
	if interval > 0 {
		w.interval = interval
	}
	return w
}

// Run starts the loop in the background and returns a stop function that
// blocks until the loop has exited.
func (w *ReconciliationWorker) Run(ctx context.Context) func() {
	go w.loop(ctx)
	return func() {
		w.stopOnce.Do(func() { close(w.stopCh) })
		<-w.doneCh
	}
}

func (w *ReconciliationWorker) loop(ctx context.Context) {
	defer close(w.doneCh)
	log := zap.L().With(zap.String("worker", reconciliationWorkerName))
	log.Info("worker started", zap.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.audit(ctx, log)
	for {
		select {
		case <-ctx.Done():
			log.Info("worker stopped", zap.String("reason", "context done"))
			return
		case <-w.stopCh:
			log.Info("worker stopped", zap.String("reason", "stop requested"))
			return
		case <-ticker.C:
			w.audit(ctx, log)
		}
	}
}

func (w *ReconciliationWorker) audit(ctx context.Context, log *zap.Logger) {
	if err := w.auditor.Run(ctx); err != nil {
		observability.IncrementWorkerRun(reconciliationWorkerName, "failed")
		log.Error("reconciliation pass failed", zap.Error(err))
		return
	}
	observability.IncrementWorkerRun(reconciliationWorkerName, "success")
}
