// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/conbuild/conbuild/internal/builtin"
	"github.com/conbuild/conbuild/pkg/types"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// VirtualRuntime runs commands through the mvdan/sh interpreter.
type VirtualRuntime struct {
	// Builtins are consulted before PATH lookups. Nil disables them.
	Builtins *builtin.Registry
}

// NewVirtualRuntime creates a virtual runtime. When enableBuiltins is true the
// default builtin registry handles utilities such as rm in-process.
func NewVirtualRuntime(enableBuiltins bool) *VirtualRuntime {
	r := &VirtualRuntime{}
	if enableBuiltins {
		r.Builtins = builtin.DefaultRegistry
	}
	return r
}

// Name returns the runtime name.
func (r *VirtualRuntime) Name() string {
	return string(RuntimeTypeVirtual)
}

// Available returns whether this runtime is available.
func (r *VirtualRuntime) Available() bool {
	// The interpreter is built in.
	return true
}

// Validate checks that the command renders to a parseable shell line.
func (r *VirtualRuntime) Validate(ctx *ExecutionContext) error {
	if ctx.Command.Program == "" {
		return errors.New("command has no program to execute")
	}
	_, err := r.parse(ctx)
	return err
}

// Execute runs the command in the interpreter.
func (r *VirtualRuntime) Execute(ctx *ExecutionContext) *Result {
	prog, err := r.parse(ctx)
	if err != nil {
		return NewErrorResult(types.ExitFailure, err)
	}

	var missing string
	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(buildEnviron(ctx)...)),
		interp.StdIO(ctx.Stdin, ctx.Stdout, ctx.Stderr),
		interp.ExecHandlers(r.execHandler(&missing)),
	}
	if ctx.WorkDir != "" {
		opts = append(opts, interp.Dir(ctx.WorkDir))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return NewErrorResult(types.ExitFailure, fmt.Errorf("failed to create interpreter: %w", err))
	}

	if err := runner.Run(ctx.context(), prog); err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			code := types.Normalize(int(exitStatus))
			if code == ExitNotFound && missing != "" {
				return NewErrorResult(code, fmt.Errorf("%w: %s", ErrProgramNotFound, missing))
			}
			return NewExitCodeResult(code)
		}
		return NewErrorResult(types.ExitFailure, fmt.Errorf("%s: %w", ctx.Command.Program, err))
	}

	return NewSuccessResult()
}

// parse renders the command to a quoted shell line and parses it back.
func (r *VirtualRuntime) parse(ctx *ExecutionContext) (*syntax.File, error) {
	script, err := ctx.Command.Script()
	if err != nil {
		return nil, fmt.Errorf("cannot quote command: %w", err)
	}
	prog, err := syntax.NewParser().Parse(strings.NewReader(script), ctx.Command.Program)
	if err != nil {
		return nil, fmt.Errorf("command syntax error: %w", err)
	}
	return prog, nil
}

// execHandler routes builtin names to the registry and everything else to next.
// Programs that do not resolve on PATH are recorded in missing.
func (r *VirtualRuntime) execHandler(missing *string) func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
		return func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return next(ctx, args)
			}
			if r.Builtins != nil {
				if _, ok := r.Builtins.Lookup(args[0]); ok {
					if err := r.Builtins.Run(ctx, args[0], args); err != nil {
						hc := interp.HandlerCtx(ctx)
						fmt.Fprintln(hc.Stderr, err)
						return interp.ExitStatus(1)
					}
					return nil
				}
			}
			hc := interp.HandlerCtx(ctx)
			if _, err := interp.LookPathDir(hc.Dir, hc.Env, args[0]); err != nil {
				*missing = args[0]
			}
			return next(ctx, args)
		}
	}
}
