// SPDX-License-Identifier: MPL-2.0

package builtin

import (
	"context"
	"fmt"
	"io"

	"mvdan.cc/sh/v3/interp"
)

type (
	// Command is an in-process utility callable from the virtual shell.
	Command interface {
		// Name returns the command name (e.g. "rm").
		Name() string
		// Run executes the command. args[0] is the command name.
		Run(ctx context.Context, args []string) error
		// SupportedFlags lists the flags the implementation understands.
		SupportedFlags() []FlagInfo
	}

	// FlagInfo describes a supported flag.
	FlagInfo struct {
		Name        string
		Description string
	}

	// HandlerContext carries the shell state a builtin needs.
	HandlerContext struct {
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
		// Dir is the shell's current working directory.
		Dir string
	}

	handlerContextKey struct{}
)

// WithHandlerContext stores hc in ctx. Tests use it to run builtins outside the interpreter.
func WithHandlerContext(ctx context.Context, hc *HandlerContext) context.Context {
	return context.WithValue(ctx, handlerContextKey{}, hc)
}

// GetHandlerContext returns the HandlerContext stored with WithHandlerContext, or
// the one derived from the mvdan/sh interpreter that invoked the builtin.
func GetHandlerContext(ctx context.Context) *HandlerContext {
	if hc, ok := ctx.Value(handlerContextKey{}).(*HandlerContext); ok {
		return hc
	}
	hc := interp.HandlerCtx(ctx)
	return &HandlerContext{
		Stdin:  hc.Stdin,
		Stdout: hc.Stdout,
		Stderr: hc.Stderr,
		Dir:    hc.Dir,
	}
}

// wrapError prefixes err with the builtin name. Returns nil if err is nil.
func wrapError(name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("[builtin] %s: %w", name, err)
}
