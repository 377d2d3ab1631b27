// SPDX-License-Identifier: MPL-2.0

package execute

import (
	"time"

	"github.com/conbuild/conbuild/pkg/types"
)

const (
	// StatusPending marks a step that has not started. Steps after a failure stay pending.
	StatusPending Status = iota
	// StatusRunning marks the step currently executing.
	StatusRunning
	// StatusSucceeded marks a step that exited 0.
	StatusSucceeded
	// StatusFailed marks the step that stopped the task.
	StatusFailed
)

type (
	// Status is the state of one step.
	Status int

	// StepReport records the outcome of one action.
	StepReport struct {
		// Index is the zero-based position of the action in the task.
		Index int
		Title string
		// Command is the rendered command line, or a description for in-process actions.
		Command  string
		Status   Status
		ExitCode types.ExitCode
		Duration time.Duration
		// Err is set for failed steps.
		Err error
	}

	// Result is the outcome of a task run.
	Result struct {
		Task     string
		ExitCode types.ExitCode
		DryRun   bool
		Steps    []StepReport
		Duration time.Duration
	}
)

// String returns the lowercase status name.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Success returns true if the task exited 0.
func (r *Result) Success() bool {
	return r.ExitCode.IsSuccess()
}

// FailedStep returns the step that stopped the task, if any.
func (r *Result) FailedStep() (StepReport, bool) {
	for _, s := range r.Steps {
		if s.Status == StatusFailed {
			return s, true
		}
	}
	return StepReport{}, false
}
