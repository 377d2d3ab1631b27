// SPDX-License-Identifier: MPL-2.0

// Package runtime executes task commands as external processes.
//
// Two runtime implementations are available:
//   - native: starts the program directly with os/exec, inheriting the terminal's
//     stdio (optionally through a pseudo-terminal)
//   - virtual: renders the command as a POSIX shell line and runs it in an embedded
//     interpreter (mvdan/sh), with in-process builtins such as rm
//
// All runtimes implement the Runtime interface with Name(), Available(), Validate()
// and Execute(). Execute blocks until the process exits and reports its exit status
// in a Result; a non-zero status is not an error by itself.
package runtime
