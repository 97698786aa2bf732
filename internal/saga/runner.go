package saga

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/taxi-travel/service-travel/internal/domain"
	"go.uber.org/zap"
)

// Runner executes saga definitions.
type Runner struct {
	stepTimeout time.Duration
	logger      *zap.Logger
}

// NewRunner creates a Runner. stepTimeout applies to steps without their own
// timeout; zero selects DefaultStepTimeout.
func NewRunner(stepTimeout time.Duration, logger *zap.Logger) *Runner {
	if stepTimeout <= 0 {
		stepTimeout = DefaultStepTimeout
	}
	return &Runner{stepTimeout: stepTimeout, logger: logger}
}

// Run executes the steps in order. When a step fails, every completed step is
// compensated in reverse order and the triggering error is returned. If any
// compensation fails the error is a *domain.PartialFailureError.
func (r *Runner) Run(ctx context.Context, def *Definition) (*Execution, error) {
	exec := newExecution(def.Name)
	log := r.logger.With(zap.String("saga", def.Name), zap.String("saga_id", exec.ID))

	completed := make([]*Step, 0, len(def.Steps))
	for _, step := range def.Steps {
		start := time.Now()
		err := r.runStep(ctx, step, step.Execute)
		if err != nil {
			exec.record(step.Name, StepFailed, err, time.Since(start))
			log.Warn("saga step failed", zap.String("step", step.Name), zap.Error(err))

			failures := r.compensate(ctx, exec, completed, log)
			exec.FinishedAt = time.Now().UTC()
			if len(failures) > 0 {
				exec.Status = StatusPartial
				return exec, &domain.PartialFailureError{Cause: err, Failed: failures}
			}
			exec.Status = StatusCompensated
			return exec, err
		}

		exec.record(step.Name, StepCompleted, nil, time.Since(start))
		completed = append(completed, step)
		log.Debug("saga step completed", zap.String("step", step.Name))
	}

	exec.Status = StatusCompleted
	exec.FinishedAt = time.Now().UTC()
	log.Info("saga completed", zap.Int("steps", len(def.Steps)))
	return exec, nil
}

// compensate undoes completed steps newest first. It runs detached from the
// caller's cancellation so a dropped request still cleans up.
func (r *Runner) compensate(ctx context.Context, exec *Execution, completed []*Step, log *zap.Logger) []domain.CompensationFailure {
	ctx = context.WithoutCancel(ctx)

	var failures []domain.CompensationFailure
	for i := len(completed) - 1; i >= 0; i-- {
		step := completed[i]
		if step.Compensate == nil {
			continue
		}

		start := time.Now()
		err := r.runStep(ctx, step, step.Compensate)
		if err != nil && !domain.IsNotFound(err) {
			exec.record(step.Name, StepCompensationFailed, err, time.Since(start))
			f := domain.CompensationFailure{Step: step.Name, Err: err}
			if step.ResourceID != nil {
				f.ResourceID = step.ResourceID()
			}
			failures = append(failures, f)
			log.Error("saga compensation failed",
				zap.String("step", step.Name),
				zap.String("resource_id", f.ResourceID),
				zap.Error(err),
			)
			continue
		}

		if err != nil {
			log.Info("compensation target already gone", zap.String("step", step.Name))
		}
		exec.record(step.Name, StepCompensated, nil, time.Since(start))
	}
	return failures
}

// runStep applies the step timeout. A deadline hit inside the step is
// reported as an Unavailable error.
func (r *Runner) runStep(ctx context.Context, step *Step, fn func(context.Context) error) (err error) {
	timeout := step.Timeout
	if timeout <= 0 {
		timeout = r.stepTimeout
	}
	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("step %s panicked: %v", step.Name, p)
		}
	}()

	err = fn(stepCtx)
	if err != nil && domain.KindOf(err) == domain.KindUnknown &&
		(errors.Is(err, context.DeadlineExceeded) || errors.Is(stepCtx.Err(), context.DeadlineExceeded)) {
		return domain.NewUnavailableError(fmt.Sprintf("step %s timed out after %s", step.Name, timeout), err)
	}
	return err
}
