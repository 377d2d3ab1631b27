// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package runtime

import (
	"io"
	"os/exec"

	"github.com/creack/pty"
)

const ptySupported = true

// runWithPTY starts cmd on a new pseudo-terminal and relays it to the given streams.
// The terminal merges stdout and stderr, so both arrive on stdout.
// Input is taken from stdin only while cmd runs.
func runWithPTY(cmd *exec.Cmd, stdin *stdinPump, stdout io.Writer) error {
	f, err := pty.Start(cmd)
	if err != nil {
		return err
	}
	defer f.Close()

	if stdin != nil {
		stop := stdin.attach(f)
		defer stop()
	}

	// Reading the master returns EIO on Linux once the child closes the terminal.
	_, _ = io.Copy(stdout, f)
	return cmd.Wait()
}
