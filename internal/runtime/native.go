// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"fmt"
	"os/exec"
)

// NativeRuntime starts programs directly on the host.
type NativeRuntime struct {
	// PTY attaches the process to a pseudo-terminal, so tools that only colorize
	// or show progress bars on a terminal keep doing so. The terminal merges
	// stderr into Stdout. Ignored where unsupported.
	PTY bool
	// LookPath locates programs. Defaults to exec.LookPath.
	LookPath func(file string) (string, error)

	stdin stdinPumps
}

// NewNativeRuntime creates a native runtime.
func NewNativeRuntime(usePTY bool) *NativeRuntime {
	return &NativeRuntime{PTY: usePTY}
}

// Name returns the runtime name.
func (r *NativeRuntime) Name() string {
	return string(RuntimeTypeNative)
}

// Available returns whether this runtime is available.
func (r *NativeRuntime) Available() bool {
	return true
}

// Validate checks that the program exists.
func (r *NativeRuntime) Validate(ctx *ExecutionContext) error {
	program := ctx.Command.Program
	if program == "" {
		return errors.New("command has no program to execute")
	}
	if _, err := r.lookPath(program); err != nil {
		return fmt.Errorf("%w: %s", ErrProgramNotFound, program)
	}
	return nil
}

// Execute runs the command with the context's stdio and waits for it to exit.
func (r *NativeRuntime) Execute(ctx *ExecutionContext) *Result {
	program := ctx.Command.Program
	path, err := r.lookPath(program)
	if err != nil {
		return extractExitCode(program, err)
	}

	cmd := exec.CommandContext(ctx.context(), path, ctx.Command.Args...)
	cmd.Dir = ctx.WorkDir
	cmd.Env = buildEnviron(ctx)

	if r.PTY && ptySupported {
		return extractExitCode(program, runWithPTY(cmd, r.stdin.get(ctx.Stdin), ctx.Stdout))
	}

	cmd.Stdin = ctx.Stdin
	cmd.Stdout = ctx.Stdout
	cmd.Stderr = ctx.Stderr
	return extractExitCode(program, cmd.Run())
}

func (r *NativeRuntime) lookPath(file string) (string, error) {
	if r.LookPath != nil {
		return r.LookPath(file)
	}
	return exec.LookPath(file)
}
