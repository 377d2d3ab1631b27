// SPDX-License-Identifier: MPL-2.0

//go:build windows

package runtime

import (
	"errors"
	"io"
	"os/exec"
)

const ptySupported = false

// runWithPTY is never reached on Windows; NativeRuntime checks ptySupported first.
func runWithPTY(_ *exec.Cmd, _ *stdinPump, _ io.Writer) error {
	return errors.New("pseudo-terminals are not supported on windows")
}
