// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conbuild/conbuild/internal/builtin"
	"github.com/conbuild/conbuild/internal/config"
	"github.com/conbuild/conbuild/internal/issue"
	"github.com/conbuild/conbuild/internal/runtime"
	"github.com/conbuild/conbuild/internal/task"
	"github.com/conbuild/conbuild/pkg/types"
)

// newListCommand creates the `conbuild list` command. Defaults shown are the
// ones the next invocation would use, so configuration is loaded first.
// With --verbose it also lists the runtimes and the virtual shell builtins.
func newListCommand(app *App, opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			inv, err := app.load(cmd.Context(), opts)
			if err != nil {
				reportFailure(app.stderr, issue.ConfigLoadFailedId, err, opts.verbose, glamourStyle(config.ColorSchemeAuto))
				return &ExitError{Code: types.ExitFailure}
			}
			renderTaskList(app.stdout, inv.orch.Tasks)
			if inv.verbose {
				renderRuntimes(app.stdout, inv.orch.Runtimes, inv.orch.DefaultRuntime, builtin.DefaultRegistry)
			}
			return nil
		},
	}
}

func renderTaskList(w io.Writer, reg *task.Registry) {
	fmt.Fprintln(w, TitleStyle.Render("Available Tasks"))
	fmt.Fprintln(w)

	for _, def := range reg.All() {
		fmt.Fprintf(w, "  %s  %s\n", CmdStyle.Render(def.Name), SubtitleStyle.Render(def.Doc))
		for _, p := range def.Params {
			fmt.Fprintf(w, "      %s  %s %s\n",
				VerboseHighlightStyle.Render(flagUsage(p)),
				p.Help,
				VerboseStyle.Render(fmt.Sprintf("(default: %v)", p.Default)))
		}
	}
}

func renderRuntimes(w io.Writer, runtimes *runtime.Registry, selected runtime.RuntimeType, builtins *builtin.Registry) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render("Runtimes"))
	fmt.Fprintln(w)
	for _, typ := range runtimes.Available() {
		marker := " "
		if typ == selected {
			marker = "*"
		}
		fmt.Fprintf(w, "  %s %s\n", marker, CmdStyle.Render(string(typ)))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render("Virtual Shell Builtins"))
	fmt.Fprintln(w)
	for _, name := range builtins.Names() {
		b, ok := builtins.Lookup(name)
		if !ok {
			continue
		}
		fmt.Fprintf(w, "  %s\n", CmdStyle.Render(name))
		for _, f := range b.SupportedFlags() {
			fmt.Fprintf(w, "      %s  %s\n", VerboseHighlightStyle.Render("-"+f.Name), f.Description)
		}
	}
}

func flagUsage(p task.Param) string {
	var sb strings.Builder
	if p.Short != "" {
		sb.WriteString("-" + p.Short + ", ")
	}
	sb.WriteString("--" + p.Long)
	if p.Type == task.TypeString {
		sb.WriteString(" string")
	}
	return sb.String()
}
