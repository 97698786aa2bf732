// Package worker runs background jobs on a schedule.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/taxi-travel/service-travel/internal/application"
	"go.uber.org/zap"
)

// Sweeper runs one reconciliation pass. *application.Reconciler satisfies it.
type Sweeper interface {
	Sweep(ctx context.Context) (*application.SweepReport, error)
}

// ReconcileWorker runs the reconciliation sweep on a fixed interval.
type ReconcileWorker struct {
	sweeper  Sweeper
	interval time.Duration
	logger   *zap.Logger

	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool

	lastReport *application.SweepReport
}

// NewReconcileWorker creates a worker. A non-positive interval disables it:
// Start then returns without scheduling anything.
func NewReconcileWorker(sweeper Sweeper, interval time.Duration, logger *zap.Logger) *ReconcileWorker {
	return &ReconcileWorker{
		sweeper:  sweeper,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the background loop.
func (w *ReconcileWorker) Start(ctx context.Context) error {
	if w.interval <= 0 {
		w.logger.Info("reconcile worker disabled")
		return nil
	}

	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("reconcile worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info("starting reconcile worker", zap.Duration("interval", w.interval))
	w.wg.Add(1)
	go w.loop(ctx)
	return nil
}

// Stop signals the loop and waits for an in-flight sweep to finish.
func (w *ReconcileWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	w.wg.Wait()
	w.logger.Info("reconcile worker stopped")
}

// LastReport returns the result of the most recent successful sweep, or nil.
func (w *ReconcileWorker) LastReport() *application.SweepReport {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastReport
}

func (w *ReconcileWorker) loop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ReconcileWorker) sweep(ctx context.Context) {
	report, err := w.sweeper.Sweep(ctx)
	if err != nil {
		w.logger.Error("reconciliation sweep failed", zap.Error(err))
		return
	}
	w.mu.Lock()
	w.lastReport = report
	w.mu.Unlock()
}
