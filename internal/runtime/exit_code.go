// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"fmt"
	"os/exec"

	"github.com/conbuild/conbuild/pkg/types"
)

// ExitNotFound is reported when the program could not be located, matching POSIX shells.
const ExitNotFound types.ExitCode = 127

// extractExitCode converts the error returned by exec.Cmd.Run/Wait into a Result.
func extractExitCode(program string, err error) *Result {
	if err == nil {
		return NewSuccessResult()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			// Terminated by a signal; there is no exit status to propagate.
			return NewErrorResult(types.ExitFailure, fmt.Errorf("%s: %w", program, err))
		}
		return NewExitCodeResult(types.Normalize(code))
	}

	if errors.Is(err, exec.ErrNotFound) {
		return NewErrorResult(ExitNotFound, fmt.Errorf("%w: %s", ErrProgramNotFound, program))
	}

	return NewErrorResult(types.ExitFailure, fmt.Errorf("failed to execute %s: %w", program, err))
}
