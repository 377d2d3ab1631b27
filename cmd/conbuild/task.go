// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	appexec "github.com/conbuild/conbuild/internal/app/execute"
	"github.com/conbuild/conbuild/internal/config"
	"github.com/conbuild/conbuild/internal/issue"
	"github.com/conbuild/conbuild/internal/task"
	"github.com/conbuild/conbuild/pkg/types"
)

// newTaskCommand exposes a task definition as a subcommand with one flag per param.
func newTaskCommand(app *App, opts *globalOptions, def *task.Definition) *cobra.Command {
	taskCmd := &cobra.Command{
		Use:   def.Name,
		Short: def.Doc,
		Long:  def.Doc + "\n\n" + SubtitleStyle.Render("Steps:") + "\n" + stepList(def),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			overrides, err := flagOverrides(cmd, def.Params)
			if err != nil {
				return err
			}
			return runTask(cmd.Context(), app, opts, def.Name, overrides)
		},
	}

	// Defining -h here makes cobra fall back to --help without a shorthand.
	for _, p := range def.Params {
		switch p.Type {
		case task.TypeBool:
			dflt, _ := p.Default.(bool)
			taskCmd.Flags().BoolP(p.Long, p.Short, dflt, p.Help)
		default:
			dflt, _ := p.Default.(string)
			help := p.Help
			if dflt == "" {
				help += " (default: working directory)"
			}
			taskCmd.Flags().StringP(p.Long, p.Short, dflt, help)
		}
	}

	return taskCmd
}

func stepList(def *task.Definition) string {
	var sb strings.Builder
	for i, a := range def.Actions {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, a.Title)
	}
	return sb.String()
}

// flagOverrides returns the values of the flags set on the command line,
// keyed by param name. Unset flags fall back to the per-invocation defaults.
func flagOverrides(cmd *cobra.Command, params []task.Param) (map[string]any, error) {
	overrides := make(map[string]any)
	for _, p := range params {
		if !cmd.Flags().Changed(p.Long) {
			continue
		}
		var (
			v   any
			err error
		)
		switch p.Type {
		case task.TypeBool:
			v, err = cmd.Flags().GetBool(p.Long)
		default:
			v, err = cmd.Flags().GetString(p.Long)
		}
		if err != nil {
			return nil, fmt.Errorf("flag --%s: %w", p.Long, err)
		}
		overrides[p.Name] = v
	}
	return overrides, nil
}

// runTask loads the invocation and runs the task. Failures are reported here
// and returned as an ExitError carrying the task's exit code.
func runTask(ctx context.Context, app *App, opts *globalOptions, name string, overrides map[string]any) error {
	inv, err := app.load(ctx, opts)
	if err != nil {
		reportFailure(app.stderr, issue.ConfigLoadFailedId, err, opts.verbose, glamourStyle(config.ColorSchemeAuto))
		return &ExitError{Code: types.ExitFailure}
	}

	result, err := inv.orch.Run(ctx, appexec.Request{
		Task:      name,
		Overrides: overrides,
		DryRun:    opts.dryRun,
		WorkDir:   inv.workDir,
		Verbosity: opts.verbosity,
	})
	if err != nil {
		reportFailure(app.stderr, issue.ActionFailedId, err, inv.verbose, glamourStyle(inv.cfg.UI.ColorScheme))
		code := types.ExitFailure
		if result != nil && !result.ExitCode.IsSuccess() {
			code = result.ExitCode
		}
		return &ExitError{Code: code}
	}

	if result.DryRun {
		renderDryRun(app.stdout, result, inv.orch.DefaultRuntime, inv.workDir)
	}
	return nil
}
