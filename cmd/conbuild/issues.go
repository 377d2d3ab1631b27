// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/conbuild/conbuild/internal/config"
	"github.com/conbuild/conbuild/internal/issue"
)

// newIssuesCommand creates the hidden `conbuild issues [id]` command, which
// lists the troubleshooting catalog or renders one entry.
func newIssuesCommand(app *App) *cobra.Command {
	var style string
	issuesCmd := &cobra.Command{
		Use:    "issues [id]",
		Short:  "Show troubleshooting guides",
		Hidden: true,
		Args:   cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				renderIssueList(app.stdout)
				return nil
			}
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid issue id %q: %w", args[0], err)
			}
			is := issue.Get(issue.Id(n))
			if is == nil {
				return fmt.Errorf("unknown issue id %d", n)
			}
			out, err := is.Render(style)
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, out)
			return nil
		},
	}
	issuesCmd.Flags().StringVar(&style, "style", glamourStyle(config.ColorSchemeAuto), "glamour style: auto, dark, light or notty")
	return issuesCmd
}

func renderIssueList(w io.Writer) {
	fmt.Fprintln(w, TitleStyle.Render("Troubleshooting Guides"))
	fmt.Fprintln(w)
	for _, is := range issue.Values() {
		fmt.Fprintf(w, "  %s  %s\n", CmdStyle.Render(strconv.Itoa(int(is.Id()))), is.Title())
	}
}
