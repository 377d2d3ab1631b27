// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package runtime

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/conbuild/conbuild/internal/task"
)

func TestNativeRuntime_PTYStepsShareStdin(t *testing.T) {
	t.Parallel()
	requireSh(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })

	rt := NewNativeRuntime(true)
	run := func(script string) (*Result, string) {
		var out bytes.Buffer
		res := rt.Execute(&ExecutionContext{
			Context: ctx,
			Command: task.NewCommand("sh", "-c", script),
			Stdin:   pr,
			Stdout:  &out,
			Stderr:  &out,
		})
		return res, out.String()
	}

	if res, out := run("exit 0"); !res.Success() {
		t.Fatalf("first step = %+v, output %q", res, out)
	}

	go func() { _, _ = pw.Write([]byte("hello\n")) }()

	res, out := run(`read x; echo "got:$x"`)
	if !res.Success() {
		t.Fatalf("second step = %+v, output %q", res, out)
	}
	if !strings.Contains(out, "got:hello") {
		t.Errorf("second step output = %q, want it to contain %q", out, "got:hello")
	}
}

func TestNativeRuntime_PTYMergesStderr(t *testing.T) {
	t.Parallel()
	requireSh(t)

	var out, errOut bytes.Buffer
	res := NewNativeRuntime(true).Execute(&ExecutionContext{
		Context: context.Background(),
		Command: task.NewCommand("sh", "-c", "echo oops >&2; exit 3"),
		Stdin:   strings.NewReader(""),
		Stdout:  &out,
		Stderr:  &errOut,
	})
	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}
	if !strings.Contains(out.String(), "oops") {
		t.Errorf("stdout = %q, want the stderr text", out.String())
	}
	if errOut.Len() != 0 {
		t.Errorf("stderr = %q, want nothing", errOut.String())
	}
}
