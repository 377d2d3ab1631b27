// SPDX-License-Identifier: MPL-2.0

package execute

import (
	"bytes"
	"io"
	"sync"

	"github.com/conbuild/conbuild/internal/task"
)

// lockedBuffer lets stdout and stderr share one buffer while keeping their
// interleaving.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Bytes()
}

// stepOutput holds the writers for one step and what they captured.
type stepOutput struct {
	stdout io.Writer
	stderr io.Writer

	// captured output is replayed to replayTo when the step fails.
	captured *lockedBuffer
	replayTo io.Writer
}

// newStepOutput routes a step's output for the given verbosity:
//   - VerbosityQuiet captures stdout and stderr together
//   - VerbosityErrors captures stdout and streams stderr
//   - VerbosityAll streams both
func newStepOutput(v task.Verbosity, stdout, stderr io.Writer) *stepOutput {
	switch v {
	case task.VerbosityQuiet:
		buf := &lockedBuffer{}
		return &stepOutput{stdout: buf, stderr: buf, captured: buf, replayTo: stderr}
	case task.VerbosityErrors:
		buf := &lockedBuffer{}
		return &stepOutput{stdout: buf, stderr: stderr, captured: buf, replayTo: stdout}
	default:
		return &stepOutput{stdout: stdout, stderr: stderr}
	}
}

// replay writes captured output to its destination. Called only for failed steps.
func (o *stepOutput) replay() {
	if o.captured == nil {
		return
	}
	if data := o.captured.Bytes(); len(data) > 0 {
		_, _ = o.replayTo.Write(data)
	}
}
