// Package saga runs ordered steps against independent systems and undoes the
// completed ones in reverse order when a later step fails.
package saga

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultStepTimeout bounds a step or compensation that does not set its own.
const DefaultStepTimeout = 10 * time.Second

// Status is the outcome of a saga execution.
type Status string

const (
	StatusRunning     Status = "running"
	StatusCompleted   Status = "completed"
	StatusCompensated Status = "compensated"
	StatusPartial     Status = "partially_compensated"
)

// StepStatus is the outcome of one step.
type StepStatus string

const (
	StepCompleted          StepStatus = "completed"
	StepFailed             StepStatus = "failed"
	StepCompensated        StepStatus = "compensated"
	StepCompensationFailed StepStatus = "compensation_failed"
)

// ExecuteFunc performs a step's forward action. Outputs needed by later steps
// are captured by the closure.
type ExecuteFunc func(ctx context.Context) error

// CompensateFunc undoes a completed step. Returning a NotFound domain error
// counts as success.
type CompensateFunc func(ctx context.Context) error

// Step is one (forward, compensate) pair.
type Step struct {
	Name       string
	Execute    ExecuteFunc
	Compensate CompensateFunc
	// ResourceID describes what Compensate targets; used when reporting
	// compensation failures. Optional.
	ResourceID func() string
	Timeout    time.Duration
}

// Definition is an ordered list of steps.
type Definition struct {
	Name  string
	Steps []*Step
}

// NewDefinition creates an empty saga definition.
func NewDefinition(name string) *Definition {
	return &Definition{Name: name}
}

// AddStep appends a step and returns the definition for chaining.
func (d *Definition) AddStep(step *Step) *Definition {
	d.Steps = append(d.Steps, step)
	return d
}

// StepResult records what happened to one step.
type StepResult struct {
	StepName string
	Status   StepStatus
	Error    string
	Duration time.Duration
}

// Execution is the log of one saga run.
type Execution struct {
	ID         string
	Definition string
	Status     Status
	Results    []*StepResult
	StartedAt  time.Time
	FinishedAt time.Time
}

func newExecution(definition string) *Execution {
	return &Execution{
		ID:         uuid.New().String(),
		Definition: definition,
		Status:     StatusRunning,
		StartedAt:  time.Now().UTC(),
	}
}

func (e *Execution) record(name string, status StepStatus, err error, d time.Duration) {
	r := &StepResult{StepName: name, Status: status, Duration: d}
	if err != nil {
		r.Error = err.Error()
	}
	e.Results = append(e.Results, r)
}
