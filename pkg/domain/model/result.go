package model

import "errors"

// StepStatus is the outcome of one bootstrap step
type StepStatus string

const (
	StepFetched StepStatus = "fetched"
	StepSkipped StepStatus = "skipped"
	StepNoop    StepStatus = "noop"
	StepFailed  StepStatus = "failed"
)

// StepResult records what happened to one dependency
type StepResult struct {
	Name   string
	Status StepStatus
	Detail string
	Err    error
}

// Report collects step results of a bootstrap run in execution order
type Report struct {
	Steps     []StepResult
	Generator *StepResult
}

// Add appends a step result
func (r *Report) Add(step StepResult) {
	r.Steps = append(r.Steps, step)
}

// Failed returns the failed steps, generator included
func (r *Report) Failed() []StepResult {
	var failed []StepResult
	for _, s := range r.Steps {
		if s.Status == StepFailed {
			failed = append(failed, s)
		}
	}
	if r.Generator != nil && r.Generator.Status == StepFailed {
		failed = append(failed, *r.Generator)
	}
	return failed
}

// Err returns the error deciding the exit status. A generator failure takes
// precedence, then step failures in order.
func (r *Report) Err() error {
	var errs []error
	if r.Generator != nil && r.Generator.Err != nil {
		errs = append(errs, r.Generator.Err)
	}
	for _, s := range r.Steps {
		if s.Err != nil {
			errs = append(errs, s.Err)
		}
	}
	return errors.Join(errs...)
}
