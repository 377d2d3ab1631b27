// SPDX-License-Identifier: MPL-2.0

package execute

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/conbuild/conbuild/internal/issue"
	"github.com/conbuild/conbuild/internal/runtime"
	"github.com/conbuild/conbuild/internal/task"
	"github.com/conbuild/conbuild/pkg/types"
)

// VerbosityDefault selects the task's own verbosity.
const VerbosityDefault = -1

var (
	// ErrTaskNotFound is returned when no task is registered under the requested name.
	ErrTaskNotFound = errors.New("task not found")
	// ErrInvalidVerbosity is returned for verbosity overrides outside 0-2.
	ErrInvalidVerbosity = errors.New("verbosity must be between 0 and 2")
	// ErrStepFailed is wrapped by the error returned when an action fails.
	ErrStepFailed = errors.New("step failed")
)

type (
	// Request describes one task invocation.
	Request struct {
		// Task is the basename of the task to run.
		Task string
		// Overrides are parameter values given on the command line, keyed by param name.
		Overrides map[string]any
		// DryRun renders the commands without executing anything.
		DryRun bool
		// WorkDir is the directory processes start in. Empty means the current directory.
		WorkDir string
		// Runtime overrides the orchestrator's default runtime when set.
		Runtime runtime.RuntimeType
		// Verbosity overrides the task verbosity unless it is VerbosityDefault.
		Verbosity int
	}

	// Orchestrator runs tasks from a registry through a set of runtimes.
	Orchestrator struct {
		Tasks    *task.Registry
		Runtimes *runtime.Registry
		// DefaultRuntime is used when a Request does not name one.
		DefaultRuntime runtime.RuntimeType
		Logger         *log.Logger
		Stdin          io.Reader
		Stdout         io.Writer
		Stderr         io.Writer
	}
)

// ResolveRuntime applies runtime-selection precedence: the CLI override, then
// the configured default, then native.
func ResolveRuntime(override, configured string) (runtime.RuntimeType, error) {
	if override != "" {
		return runtime.ParseRuntimeType(override)
	}
	if configured != "" {
		typ, err := runtime.ParseRuntimeType(configured)
		if err != nil {
			return "", fmt.Errorf("invalid default_runtime in config: %w", err)
		}
		return typ, nil
	}
	return runtime.RuntimeTypeNative, nil
}

// Run executes the requested task. Actions run strictly in order; the first
// failure stops the task and later actions are never started. The returned
// Result is non-nil whenever the task was found and its arguments resolved.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	def, ok := o.Tasks.Lookup(req.Task)
	if !ok {
		return nil, issue.NewErrorContext().
			WithOperation("run task").
			WithResource(req.Task).
			WithIssue(issue.TaskNotFoundId).
			WithSuggestion("Run 'conbuild list' to see the available tasks").
			Wrap(ErrTaskNotFound).
			BuildError()
	}

	args, err := task.Resolve(def.Params, req.Overrides)
	if err != nil {
		return nil, invalidArgument(def.Name, err)
	}

	verbosity, err := effectiveVerbosity(def, req.Verbosity)
	if err != nil {
		return nil, invalidArgument(def.Name, err)
	}

	rtType := req.Runtime
	if rtType == "" {
		rtType = o.DefaultRuntime
	}
	if rtType == "" {
		rtType = runtime.RuntimeTypeNative
	}

	workDir := req.WorkDir
	if workDir == "" {
		if workDir, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
	}

	result := &Result{
		Task:   def.Name,
		DryRun: req.DryRun,
		Steps:  make([]StepReport, len(def.Actions)),
	}

	// Build every command up front so argument errors abort before anything runs.
	commands := make([]*task.Command, len(def.Actions))
	for i, action := range def.Actions {
		result.Steps[i] = StepReport{Index: i, Title: action.Title, Command: action.Summary(args)}
		if !action.IsCommand() {
			continue
		}
		cmd, err := action.Build(args)
		if err != nil {
			return nil, invalidArgument(def.Name, fmt.Errorf("action %q: %w", action.Title, err))
		}
		commands[i] = &cmd
	}

	logger := o.logger()
	if req.DryRun {
		logger.Debug("dry run", "task", def.Name, "actions", len(def.Actions))
		return result, nil
	}

	logger.Info("running task", "task", def.Name, "actions", len(def.Actions), "runtime", rtType, "verbosity", int(verbosity))
	start := time.Now()
	defer func() { result.Duration = time.Since(start) }()

	for i, action := range def.Actions {
		step := &result.Steps[i]
		step.Status = StatusRunning
		logger.Debug("running action", "task", def.Name, "step", i+1, "title", action.Title, "command", step.Command)

		out := newStepOutput(verbosity, o.stdout(), o.stderr())
		stepStart := time.Now()
		if commands[i] != nil {
			o.runCommand(ctx, step, *commands[i], rtType, workDir, out)
		} else {
			o.runFunc(ctx, step, action, args, workDir, out, logger)
		}
		step.Duration = time.Since(stepStart)

		if step.Status == StatusFailed {
			out.replay()
			result.ExitCode = step.ExitCode
			logger.Error("action failed", "task", def.Name, "step", i+1, "title", action.Title, "exit_code", int(step.ExitCode))
			return result, stepError(def.Name, step)
		}
	}

	logger.Info("task finished", "task", def.Name, "duration", time.Since(start).Round(time.Millisecond))
	return result, nil
}

func (o *Orchestrator) runCommand(ctx context.Context, step *StepReport, cmd task.Command, rtType runtime.RuntimeType, workDir string, out *stepOutput) {
	if err := ctx.Err(); err != nil {
		failStep(step, types.ExitFailure, err)
		return
	}

	res := o.Runtimes.Execute(rtType, &runtime.ExecutionContext{
		Context: ctx,
		Command: cmd,
		WorkDir: workDir,
		Stdin:   o.Stdin,
		Stdout:  out.stdout,
		Stderr:  out.stderr,
	})
	if res.Success() {
		step.Status = StatusSucceeded
		step.ExitCode = types.ExitSuccess
		return
	}

	code := res.ExitCode
	if code.IsSuccess() {
		code = types.ExitFailure
	}
	err := res.Error
	if err == nil {
		err = fmt.Errorf("%s exited with code %d", cmd.Program, int(code))
	}
	failStep(step, code, err)
}

func (o *Orchestrator) runFunc(ctx context.Context, step *StepReport, action task.Action, args task.Args, workDir string, out *stepOutput, logger *log.Logger) {
	if err := ctx.Err(); err != nil {
		failStep(step, types.ExitFailure, err)
		return
	}

	err := action.Run(ctx, task.FuncEnv{
		Dir:    workDir,
		Args:   args,
		Stdout: out.stdout,
		Stderr: out.stderr,
		Logger: logger,
	})
	if err != nil {
		failStep(step, types.ExitFailure, err)
		return
	}
	step.Status = StatusSucceeded
	step.ExitCode = types.ExitSuccess
}

func failStep(step *StepReport, code types.ExitCode, err error) {
	step.Status = StatusFailed
	step.ExitCode = code
	step.Err = err
}

func effectiveVerbosity(def *task.Definition, override int) (task.Verbosity, error) {
	if override == VerbosityDefault {
		return def.Verbosity, nil
	}
	v := task.Verbosity(override)
	if v < task.VerbosityQuiet || v > task.VerbosityAll {
		return 0, fmt.Errorf("%w, got %d", ErrInvalidVerbosity, override)
	}
	return v, nil
}

func invalidArgument(taskName string, err error) error {
	return issue.NewErrorContext().
		WithOperation("resolve arguments").
		WithResource(taskName).
		WithIssue(issue.InvalidArgumentId).
		WithSuggestion(fmt.Sprintf("Run 'conbuild %s --help' to see the accepted flags", taskName)).
		Wrap(err).
		BuildError()
}

func stepError(taskName string, step *StepReport) error {
	ec := issue.NewErrorContext().
		WithOperation("run task").
		WithResource(taskName).
		Wrap(fmt.Errorf("%w: step %d (%s): %w", ErrStepFailed, step.Index+1, step.Title, step.Err))

	if errors.Is(step.Err, runtime.ErrProgramNotFound) {
		return ec.WithIssue(issue.ToolNotFoundId).
			WithSuggestion("Install the missing program or add it to PATH").
			BuildError()
	}
	return ec.WithIssue(issue.ActionFailedId).
		WithSuggestion("Re-run with --verbosity 2 to see all output").
		BuildError()
}

func (o *Orchestrator) logger() *log.Logger {
	if o.Logger == nil {
		return log.New(io.Discard)
	}
	return o.Logger
}

func (o *Orchestrator) stdout() io.Writer {
	if o.Stdout == nil {
		return os.Stdout
	}
	return o.Stdout
}

func (o *Orchestrator) stderr() io.Writer {
	if o.Stderr == nil {
		return os.Stderr
	}
	return o.Stderr
}
