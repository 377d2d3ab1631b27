// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/conbuild/conbuild/internal/task"
	"github.com/conbuild/conbuild/pkg/types"
)

// Runtime type constants for the supported execution environments.
const (
	RuntimeTypeNative  RuntimeType = "native"
	RuntimeTypeVirtual RuntimeType = "virtual"
)

var (
	// ErrProgramNotFound is returned by Validate when the program cannot be located.
	ErrProgramNotFound = errors.New("program not found")
	// ErrInvalidRuntimeType is returned for runtime names that are not recognized.
	ErrInvalidRuntimeType = errors.New("invalid runtime type")
)

type (
	// RuntimeType names a runtime implementation.
	RuntimeType string

	// ExecutionContext contains everything needed to run one command.
	ExecutionContext struct {
		// Context cancels the running process.
		Context context.Context
		// Command is the program invocation to run.
		Command task.Command
		// WorkDir is the directory the process starts in. Empty means the current directory.
		WorkDir string
		// Stdin, Stdout and Stderr are connected to the process.
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// Result contains the outcome of a command execution.
	Result struct {
		// ExitCode is the process exit status.
		ExitCode types.ExitCode
		// Error is set when the process could not be run or did not exit normally.
		Error error
	}

	// Runtime defines the interface for command execution.
	Runtime interface {
		// Name returns the runtime name.
		Name() string
		// Available returns whether this runtime can be used on the current system.
		Available() bool
		// Validate checks whether the command can be executed with this runtime.
		Validate(ctx *ExecutionContext) error
		// Execute runs the command and blocks until it exits.
		Execute(ctx *ExecutionContext) *Result
	}

	// Registry holds the available runtimes.
	Registry struct {
		runtimes map[RuntimeType]Runtime
	}
)

// ParseRuntimeType validates a runtime name.
func ParseRuntimeType(s string) (RuntimeType, error) {
	switch t := RuntimeType(s); t {
	case RuntimeTypeNative, RuntimeTypeVirtual:
		return t, nil
	default:
		return "", fmt.Errorf("%w %q (valid: %s, %s)", ErrInvalidRuntimeType, s, RuntimeTypeNative, RuntimeTypeVirtual)
	}
}

// NewExecutionContext creates an execution context wired to the process stdio.
func NewExecutionContext(ctx context.Context, cmd task.Command) *ExecutionContext {
	return &ExecutionContext{
		Context: ctx,
		Command: cmd,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// context returns the execution's context, defaulting to Background.
func (c *ExecutionContext) context() context.Context {
	if c.Context == nil {
		return context.Background()
	}
	return c.Context
}

// Success returns true if the command executed successfully.
func (r *Result) Success() bool {
	return r.ExitCode.IsSuccess() && r.Error == nil
}

// NewRegistry creates an empty runtime registry.
func NewRegistry() *Registry {
	return &Registry{
		runtimes: make(map[RuntimeType]Runtime),
	}
}

// Register adds a runtime to the registry.
func (r *Registry) Register(typ RuntimeType, rt Runtime) {
	r.runtimes[typ] = rt
}

// Get returns a runtime by type.
func (r *Registry) Get(typ RuntimeType) (Runtime, error) {
	rt, ok := r.runtimes[typ]
	if !ok {
		return nil, fmt.Errorf("runtime '%s' not registered", typ)
	}
	return rt, nil
}

// Available returns the registered runtimes usable on this system, sorted by name.
func (r *Registry) Available() []RuntimeType {
	var available []RuntimeType
	for typ, rt := range r.runtimes {
		if rt.Available() {
			available = append(available, typ)
		}
	}
	sort.Slice(available, func(i, j int) bool { return available[i] < available[j] })
	return available
}

// Execute validates and runs ctx with the runtime registered as typ.
func (r *Registry) Execute(typ RuntimeType, ctx *ExecutionContext) *Result {
	rt, err := r.Get(typ)
	if err != nil {
		return NewErrorResult(types.ExitFailure, err)
	}

	if !rt.Available() {
		return NewErrorResult(types.ExitFailure, fmt.Errorf("runtime '%s' is not available on this system", rt.Name()))
	}

	if err := rt.Validate(ctx); err != nil {
		if errors.Is(err, ErrProgramNotFound) {
			return NewErrorResult(ExitNotFound, err)
		}
		return NewErrorResult(types.ExitFailure, err)
	}

	return rt.Execute(ctx)
}

// buildEnviron layers the command's own assignments over the inherited
// environment. Later entries win when the same key appears twice.
func buildEnviron(ctx *ExecutionContext) []string {
	return append(os.Environ(), ctx.Command.Environ()...)
}
