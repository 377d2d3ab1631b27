// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	appexec "github.com/conbuild/conbuild/internal/app/execute"
	"github.com/conbuild/conbuild/internal/config"
	"github.com/conbuild/conbuild/internal/issue"
	"github.com/conbuild/conbuild/internal/runtime"
)

// renderDryRun prints the steps a task would run, in order, without running them.
func renderDryRun(w io.Writer, result *appexec.Result, rtType runtime.RuntimeType, workDir string) {
	fmt.Fprintln(w, TitleStyle.Render("Dry Run"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s %s\n", VerboseHighlightStyle.Render("Task:"), result.Task)
	fmt.Fprintf(w, "  %s %s\n", VerboseHighlightStyle.Render("Runtime:"), rtType)
	fmt.Fprintf(w, "  %s %s\n", VerboseHighlightStyle.Render("WorkDir:"), workDir)
	fmt.Fprintln(w)

	for _, step := range result.Steps {
		fmt.Fprintf(w, "  %s %s\n", SubtitleStyle.Render(fmt.Sprintf("%d.", step.Index+1)), step.Title)
		fmt.Fprintf(w, "     %s\n", CmdStyle.Render(step.Command))
	}
	fmt.Fprintln(w)
}

// glamourStyle maps a color scheme to a glamour style name.
func glamourStyle(scheme config.ColorScheme) string {
	switch scheme {
	case config.ColorSchemeDark:
		return "dark"
	case config.ColorSchemeLight:
		return "light"
	default:
		return "auto"
	}
}

// reportFailure renders the catalog issue linked to err (or fallback) followed
// by the error itself.
func reportFailure(w io.Writer, fallback issue.Id, err error, verbose bool, style string) {
	is := issue.IssueOf(err)
	if is == nil {
		is = issue.Get(fallback)
	}
	if is != nil {
		if rendered, renderErr := is.Render(style); renderErr == nil {
			fmt.Fprint(w, rendered)
		}
	}
	fmt.Fprintf(w, "\n%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, verbose))
}
