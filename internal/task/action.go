// SPDX-License-Identifier: MPL-2.0

package task

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/log"
)

// ErrInvalidAction is returned when an Action sets neither or both of Build and Run.
var ErrInvalidAction = errors.New("action must set exactly one of Build or Run")

type (
	// CommandBuilder turns resolved arguments into an external Command.
	// Builders are pure: they must not touch the filesystem or start processes.
	CommandBuilder func(args Args) (Command, error)

	// Func is an in-process action body.
	Func func(ctx context.Context, env FuncEnv) error

	// FuncEnv is what an in-process action may use.
	FuncEnv struct {
		// Dir is the working directory of the invocation.
		Dir string
		// Args are the resolved task arguments.
		Args Args
		// Stdout and Stderr follow the task's verbosity routing.
		Stdout io.Writer
		Stderr io.Writer
		// Logger is never nil when the action is run by the orchestrator.
		Logger *log.Logger
	}

	// Action is one step of a task.
	Action struct {
		// Title names the step in logs and reports.
		Title string
		// Build produces the external command for this step.
		Build CommandBuilder
		// Run executes the step in-process.
		Run Func
		// Describe optionally summarizes an in-process step for dry runs.
		Describe func(args Args) string
	}
)

// Validate checks that exactly one of Build and Run is set.
func (a Action) Validate() error {
	if (a.Build == nil) == (a.Run == nil) {
		return ErrInvalidAction
	}
	return nil
}

// IsCommand reports whether the action runs an external process.
func (a Action) IsCommand() bool { return a.Build != nil }

// Summary describes what the action would do with args, without doing it.
func (a Action) Summary(args Args) string {
	if a.Build != nil {
		cmd, err := a.Build(args)
		if err != nil {
			return a.Title + " (" + err.Error() + ")"
		}
		return cmd.String()
	}
	if a.Describe != nil {
		return a.Describe(args)
	}
	return a.Title
}

// CommandAction is a shorthand for an Action that builds an external command.
func CommandAction(title string, build CommandBuilder) Action {
	return Action{Title: title, Build: build}
}
