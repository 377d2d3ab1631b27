// SPDX-License-Identifier: MPL-2.0

package task

import (
	"errors"
	"fmt"
)

const (
	// VerbosityQuiet captures all output and shows it only when a step fails.
	VerbosityQuiet Verbosity = 0
	// VerbosityErrors streams stderr and captures stdout.
	VerbosityErrors Verbosity = 1
	// VerbosityAll streams stdout and stderr.
	VerbosityAll Verbosity = 2
)

// ErrInvalidDefinition is the sentinel error wrapped by InvalidDefinitionError.
var ErrInvalidDefinition = errors.New("invalid task definition")

type (
	// Verbosity controls how a task's process output reaches the terminal.
	Verbosity int

	// Definition describes a named, invocable task.
	Definition struct {
		// Name is the basename used to invoke the task. Unique within a Registry.
		Name string
		// Doc is the one-line description shown in listings and help.
		Doc string
		// Actions run strictly in order; the first failure stops the task.
		Actions []Action
		// Verbosity is the default output routing for the task.
		Verbosity Verbosity
		// Params are the parameters the task accepts.
		Params []Param
	}

	// InvalidDefinitionError reports a malformed Definition.
	InvalidDefinitionError struct {
		Name string
		Err  error
	}
)

// Error implements the error interface.
func (e *InvalidDefinitionError) Error() string {
	return fmt.Sprintf("invalid task %q: %v", e.Name, e.Err)
}

// Unwrap returns both the sentinel and the underlying cause.
func (e *InvalidDefinitionError) Unwrap() []error {
	return []error{ErrInvalidDefinition, e.Err}
}

// Validate reports the first problem found in the definition.
func (d *Definition) Validate() error {
	if d.Name == "" {
		return &InvalidDefinitionError{Name: d.Name, Err: errors.New("basename must not be empty")}
	}
	if len(d.Actions) == 0 {
		return &InvalidDefinitionError{Name: d.Name, Err: errors.New("at least one action is required")}
	}
	if d.Verbosity < VerbosityQuiet || d.Verbosity > VerbosityAll {
		return &InvalidDefinitionError{Name: d.Name, Err: fmt.Errorf("verbosity %d out of range 0-2", d.Verbosity)}
	}
	for i, a := range d.Actions {
		if err := a.Validate(); err != nil {
			return &InvalidDefinitionError{Name: d.Name, Err: fmt.Errorf("action %d (%s): %w", i, a.Title, err)}
		}
	}

	names := make(map[string]struct{}, len(d.Params))
	shorts := make(map[string]string, len(d.Params))
	for _, p := range d.Params {
		if err := p.Validate(); err != nil {
			return &InvalidDefinitionError{Name: d.Name, Err: err}
		}
		if _, dup := names[p.Name]; dup {
			return &InvalidDefinitionError{Name: d.Name, Err: fmt.Errorf("duplicate parameter %q", p.Name)}
		}
		names[p.Name] = struct{}{}
		if p.Short == "" {
			continue
		}
		if other, dup := shorts[p.Short]; dup {
			return &InvalidDefinitionError{Name: d.Name, Err: fmt.Errorf("parameters %q and %q share short flag -%s", other, p.Name, p.Short)}
		}
		shorts[p.Short] = p.Name
	}

	return nil
}

// Param returns the declared parameter with the given name.
func (d *Definition) Param(name string) (Param, bool) {
	for _, p := range d.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}
