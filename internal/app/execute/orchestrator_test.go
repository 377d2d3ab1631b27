// SPDX-License-Identifier: MPL-2.0

package execute

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/conbuild/conbuild/internal/issue"
	"github.com/conbuild/conbuild/internal/runtime"
	"github.com/conbuild/conbuild/internal/task"
	"github.com/conbuild/conbuild/pkg/types"
)

// fakeRuntime returns scripted exit codes in call order and records each command.
type fakeRuntime struct {
	codes   []types.ExitCode
	errs    []error
	stdout  string
	stderr  string
	invoked []task.Command
}

func (f *fakeRuntime) Name() string                             { return "fake" }
func (f *fakeRuntime) Available() bool                          { return true }
func (f *fakeRuntime) Validate(*runtime.ExecutionContext) error { return nil }

func (f *fakeRuntime) Execute(ctx *runtime.ExecutionContext) *runtime.Result {
	i := len(f.invoked)
	f.invoked = append(f.invoked, ctx.Command)
	fmt.Fprintf(ctx.Stdout, "%sstep%d\n", f.stdout, i+1)
	fmt.Fprintf(ctx.Stderr, "%sstep%d\n", f.stderr, i+1)

	code := types.ExitSuccess
	if i < len(f.codes) {
		code = f.codes[i]
	}
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	return &runtime.Result{ExitCode: code, Error: err}
}

func newTestOrchestrator(t *testing.T, rt runtime.Runtime, defs ...*task.Definition) (*Orchestrator, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	reg := task.NewRegistry()
	for _, d := range defs {
		if err := reg.Register(d); err != nil {
			t.Fatalf("Register(%s): %v", d.Name, err)
		}
	}
	rts := runtime.NewRegistry()
	rts.Register(runtime.RuntimeTypeNative, rt)

	var stdout, stderr bytes.Buffer
	return &Orchestrator{
		Tasks:    reg,
		Runtimes: rts,
		Stdout:   &stdout,
		Stderr:   &stderr,
	}, &stdout, &stderr
}

func echoAction(title string) task.Action {
	return task.CommandAction(title, func(task.Args) (task.Command, error) {
		return task.NewCommand("echo", title), nil
	})
}

func twoStepTask(v task.Verbosity) *task.Definition {
	return &task.Definition{
		Name:      "two",
		Doc:       "two steps",
		Actions:   []task.Action{echoAction("first"), echoAction("second")},
		Verbosity: v,
	}
}

func request(name string) Request {
	return Request{Task: name, WorkDir: "/work", Verbosity: VerbosityDefault}
}

func TestRun_AllStepsSucceed(t *testing.T) {
	t.Parallel()

	rt := &fakeRuntime{}
	o, _, _ := newTestOrchestrator(t, rt, twoStepTask(task.VerbosityAll))

	res, err := o.Run(context.Background(), request("two"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Success() || res.ExitCode != types.ExitSuccess {
		t.Errorf("ExitCode = %d, want 0", res.ExitCode)
	}
	if len(rt.invoked) != 2 {
		t.Fatalf("invoked %d commands, want 2", len(rt.invoked))
	}
	for i, s := range res.Steps {
		if s.Status != StatusSucceeded {
			t.Errorf("step %d status = %s, want succeeded", i, s.Status)
		}
		if s.Index != i {
			t.Errorf("step %d Index = %d", i, s.Index)
		}
	}
	if res.Steps[0].Command != "echo first" {
		t.Errorf("Command = %q", res.Steps[0].Command)
	}
}

func TestRun_FailFast(t *testing.T) {
	t.Parallel()

	rt := &fakeRuntime{codes: []types.ExitCode{1}}
	o, _, _ := newTestOrchestrator(t, rt, twoStepTask(task.VerbosityAll))

	res, err := o.Run(context.Background(), request("two"))
	if err == nil {
		t.Fatal("expected error from failing step")
	}
	if !errors.Is(err, ErrStepFailed) {
		t.Errorf("error should wrap ErrStepFailed: %v", err)
	}
	if len(rt.invoked) != 1 {
		t.Errorf("second action must never be invoked, got %d invocations", len(rt.invoked))
	}
	if res.ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", res.ExitCode)
	}
	if res.Steps[0].Status != StatusFailed || res.Steps[1].Status != StatusPending {
		t.Errorf("statuses = %s, %s", res.Steps[0].Status, res.Steps[1].Status)
	}
	failed, ok := res.FailedStep()
	if !ok || failed.Index != 0 {
		t.Errorf("FailedStep() = %+v, %v", failed, ok)
	}
	if got := issue.IssueOf(err); got == nil || got.Id() != issue.ActionFailedId {
		t.Errorf("expected ActionFailed issue, got %v", got)
	}
}

func TestRun_PropagatesExitCode(t *testing.T) {
	t.Parallel()

	rt := &fakeRuntime{codes: []types.ExitCode{0, 42}}
	o, _, _ := newTestOrchestrator(t, rt, twoStepTask(task.VerbosityAll))

	res, err := o.Run(context.Background(), request("two"))
	if err == nil {
		t.Fatal("expected error")
	}
	if res.ExitCode != 42 {
		t.Errorf("ExitCode = %d, want 42", res.ExitCode)
	}
	if res.Steps[0].Status != StatusSucceeded || res.Steps[1].ExitCode != 42 {
		t.Errorf("unexpected steps: %+v", res.Steps)
	}
}

func TestRun_ErrorWithoutExitCodeMapsToOne(t *testing.T) {
	t.Parallel()

	rt := &fakeRuntime{errs: []error{errors.New("could not start")}}
	o, _, _ := newTestOrchestrator(t, rt, twoStepTask(task.VerbosityAll))

	res, err := o.Run(context.Background(), request("two"))
	if err == nil {
		t.Fatal("expected error")
	}
	if res.ExitCode != types.ExitFailure {
		t.Errorf("ExitCode = %d, want 1", res.ExitCode)
	}
}

func TestRun_ToolNotFoundIssue(t *testing.T) {
	t.Parallel()

	notFound := fmt.Errorf("%w: conan", runtime.ErrProgramNotFound)
	rt := &fakeRuntime{codes: []types.ExitCode{runtime.ExitNotFound}, errs: []error{notFound}}
	o, _, _ := newTestOrchestrator(t, rt, twoStepTask(task.VerbosityAll))

	res, err := o.Run(context.Background(), request("two"))
	if res.ExitCode != runtime.ExitNotFound {
		t.Errorf("ExitCode = %d, want 127", res.ExitCode)
	}
	if got := issue.IssueOf(err); got == nil || got.Id() != issue.ToolNotFoundId {
		t.Errorf("expected ToolNotFound issue, got %v", got)
	}
}

func TestRun_TaskNotFound(t *testing.T) {
	t.Parallel()

	rt := &fakeRuntime{}
	o, _, _ := newTestOrchestrator(t, rt, twoStepTask(task.VerbosityAll))

	res, err := o.Run(context.Background(), request("missing"))
	if res != nil {
		t.Errorf("expected nil result, got %+v", res)
	}
	if !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
	var ae *issue.ActionableError
	if !errors.As(err, &ae) || ae.Issue != issue.TaskNotFoundId {
		t.Errorf("expected actionable TaskNotFound error, got %v", err)
	}
	if len(rt.invoked) != 0 {
		t.Error("nothing should run")
	}
}

func TestRun_ArgumentErrorsAbortBeforeAnyAction(t *testing.T) {
	t.Parallel()

	failing := task.CommandAction("broken", func(task.Args) (task.Command, error) {
		return task.Command{}, errors.New("output folder must not be empty")
	})
	def := &task.Definition{
		Name:      "bad",
		Doc:       "second builder fails",
		Actions:   []task.Action{echoAction("ok"), failing},
		Verbosity: task.VerbosityAll,
		Params:    []task.Param{task.StringParam("name", "n", "name", "x", "a name")},
	}

	tests := []struct {
		name      string
		overrides map[string]any
		verbosity int
	}{
		{"builder error", nil, VerbosityDefault},
		{"unknown override", map[string]any{"nope": "x"}, VerbosityDefault},
		{"mistyped override", map[string]any{"name": true}, VerbosityDefault},
		{"verbosity out of range", nil, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rt := &fakeRuntime{}
			o, _, _ := newTestOrchestrator(t, rt, def)
			req := request("bad")
			req.Overrides = tt.overrides
			req.Verbosity = tt.verbosity

			_, err := o.Run(context.Background(), req)
			if err == nil {
				t.Fatal("expected argument error")
			}
			if got := issue.IssueOf(err); got == nil || got.Id() != issue.InvalidArgumentId {
				t.Errorf("expected InvalidArgument issue, got %v", got)
			}
			if len(rt.invoked) != 0 {
				t.Errorf("no action may run, got %d", len(rt.invoked))
			}
		})
	}
}

func TestRun_DryRunExecutesNothing(t *testing.T) {
	t.Parallel()

	ran := false
	def := twoStepTask(task.VerbosityAll)
	def.Actions = append(def.Actions, task.Action{
		Title:    "inline",
		Run:      func(context.Context, task.FuncEnv) error { ran = true; return nil },
		Describe: func(task.Args) string { return "do inline work" },
	})
	rt := &fakeRuntime{}
	o, stdout, _ := newTestOrchestrator(t, rt, def)

	req := request("two")
	req.DryRun = true
	res, err := o.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rt.invoked) != 0 || ran {
		t.Error("dry run must not execute anything")
	}
	if !res.DryRun {
		t.Error("result should be marked as dry run")
	}
	want := []string{"echo first", "echo second", "do inline work"}
	for i, w := range want {
		if res.Steps[i].Command != w {
			t.Errorf("step %d Command = %q, want %q", i, res.Steps[i].Command, w)
		}
		if res.Steps[i].Status != StatusPending {
			t.Errorf("step %d status = %s, want pending", i, res.Steps[i].Status)
		}
	}
	if stdout.Len() != 0 {
		t.Errorf("dry run wrote process output: %q", stdout.String())
	}
}

func TestRun_VerbosityRouting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		verbosity  task.Verbosity
		fail       bool
		wantStdout string
		wantStderr string
	}{
		{"quiet success hides everything", task.VerbosityQuiet, false, "", ""},
		{"quiet failure replays both on stderr", task.VerbosityQuiet, true, "", "out:step1\nerr:step1\n"},
		{"errors success streams stderr only", task.VerbosityErrors, false, "", "err:step1\nerr:step2\n"},
		{"errors failure replays stdout", task.VerbosityErrors, true, "out:step1\n", "err:step1\n"},
		{"all streams both", task.VerbosityAll, false, "out:step1\nout:step2\n", "err:step1\nerr:step2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rt := &fakeRuntime{stdout: "out:", stderr: "err:"}
			if tt.fail {
				rt.codes = []types.ExitCode{2}
			}
			o, stdout, stderr := newTestOrchestrator(t, rt, twoStepTask(tt.verbosity))

			_, err := o.Run(context.Background(), request("two"))
			if (err != nil) != tt.fail {
				t.Fatalf("Run error = %v, fail = %v", err, tt.fail)
			}
			if stdout.String() != tt.wantStdout {
				t.Errorf("stdout = %q, want %q", stdout.String(), tt.wantStdout)
			}
			if stderr.String() != tt.wantStderr {
				t.Errorf("stderr = %q, want %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}

func TestRun_VerbosityOverride(t *testing.T) {
	t.Parallel()

	rt := &fakeRuntime{stdout: "out:", stderr: "err:"}
	o, stdout, _ := newTestOrchestrator(t, rt, twoStepTask(task.VerbosityAll))

	req := request("two")
	req.Verbosity = int(task.VerbosityQuiet)
	if _, err := o.Run(context.Background(), req); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stdout.Len() != 0 {
		t.Errorf("override to quiet should hide stdout, got %q", stdout.String())
	}
}

func TestRun_FuncAction(t *testing.T) {
	t.Parallel()

	var gotEnv task.FuncEnv
	def := &task.Definition{
		Name: "inline",
		Doc:  "in-process",
		Actions: []task.Action{{
			Title: "inline",
			Run: func(_ context.Context, env task.FuncEnv) error {
				gotEnv = env
				fmt.Fprintln(env.Stdout, "hello")
				return nil
			},
		}},
		Verbosity: task.VerbosityAll,
		Params:    []task.Param{task.BoolParam("flag", "f", "flag", true, "a flag")},
	}
	o, stdout, _ := newTestOrchestrator(t, &fakeRuntime{}, def)

	req := request("inline")
	req.Overrides = map[string]any{"flag": false}
	if _, err := o.Run(context.Background(), req); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if gotEnv.Dir != "/work" {
		t.Errorf("Dir = %q, want /work", gotEnv.Dir)
	}
	if gotEnv.Args.Bool("flag") {
		t.Error("override should reach the action")
	}
	if gotEnv.Logger == nil {
		t.Error("Logger must not be nil")
	}
	if strings.TrimSpace(stdout.String()) != "hello" {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestRun_FuncActionFailure(t *testing.T) {
	t.Parallel()

	def := &task.Definition{
		Name: "inline",
		Doc:  "in-process",
		Actions: []task.Action{
			{Title: "boom", Run: func(context.Context, task.FuncEnv) error { return errors.New("boom") }},
			echoAction("after"),
		},
		Verbosity: task.VerbosityAll,
	}
	rt := &fakeRuntime{}
	o, _, _ := newTestOrchestrator(t, rt, def)

	res, err := o.Run(context.Background(), request("inline"))
	if err == nil || res.ExitCode != types.ExitFailure {
		t.Fatalf("expected failure with exit 1, got %v / %+v", err, res)
	}
	if len(rt.invoked) != 0 {
		t.Error("later action must not run")
	}
}

func TestRun_CanceledContext(t *testing.T) {
	t.Parallel()

	rt := &fakeRuntime{}
	o, _, _ := newTestOrchestrator(t, rt, twoStepTask(task.VerbosityAll))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := o.Run(ctx, request("two"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(rt.invoked) != 0 || res.Steps[0].Status != StatusFailed {
		t.Errorf("canceled run should fail the first step without executing it")
	}
}

func TestResolveRuntime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		override   string
		configured string
		want       runtime.RuntimeType
		wantErr    bool
	}{
		{"default native", "", "", runtime.RuntimeTypeNative, false},
		{"config default", "", "virtual", runtime.RuntimeTypeVirtual, false},
		{"override wins", "native", "virtual", runtime.RuntimeTypeNative, false},
		{"invalid override", "container", "", "", true},
		{"invalid config", "", "container", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ResolveRuntime(tt.override, tt.configured)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStatusString(t *testing.T) {
	t.Parallel()

	for s, want := range map[Status]string{
		StatusPending:   "pending",
		StatusRunning:   "running",
		StatusSucceeded: "succeeded",
		StatusFailed:    "failed",
		Status(99):      "unknown",
	} {
		if got := s.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}
