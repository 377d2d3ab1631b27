// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for conbuild.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	appexec "github.com/conbuild/conbuild/internal/app/execute"
	"github.com/conbuild/conbuild/internal/issue"
	"github.com/conbuild/conbuild/internal/tasks"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree. Task subcommands come from the
// built-in catalog; their defaults are resolved again when a task runs.
func NewRootCommand(app *App) *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "conbuild",
		Short: "Conan and CMake task runner for C++ projects",
		Long: TitleStyle.Render("conbuild") + SubtitleStyle.Render(" - Conan and CMake task runner for C++ projects") + `

conbuild runs the usual steps of a Conan 2 + CMake (Ninja) build as named
tasks. Each task runs its commands in order and stops at the first failure.

` + SubtitleStyle.Render("Typical flow:") + `
  conbuild conan-install      Install dependencies into ./build
  conbuild cmake-configure    Configure with the Conan toolchain
  conbuild cmake-build        Build the configured project
  conbuild cmake-install      Install the build artifacts
  conbuild rm                 Remove the ./out directory

` + SubtitleStyle.Render("Examples:") + `
  conbuild list                          List all tasks
  conbuild cmake-build -t Debug          Build in Debug mode
  conbuild --dry-run conan-install       Print the commands without running them
  conbuild config show                   Show current configuration`,
		SilenceUsage: true,
	}
	rootCmd.SetIn(app.stdin)
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	pf.StringVar(&opts.cfgFile, "config", "", "config file (default is $HOME/.config/conbuild/config.cue)")
	pf.BoolVarP(&opts.dryRun, "dry-run", "n", false, "print the commands without executing them")
	pf.StringVar(&opts.runtime, "runtime", "", "runtime for external commands: native or virtual (default from config)")
	pf.StringVarP(&opts.workDir, "workdir", "C", "", "run as if started in this directory")
	pf.IntVar(&opts.verbosity, "verbosity", appexec.VerbosityDefault, "output verbosity 0-2 (-1 uses the task default)")
	pf.BoolVar(&opts.pty, "pty", false, "run native commands on a pseudo-terminal (stderr is merged into stdout)")

	catalog := tasks.NewRegistry(tasks.NewDefaults(""))
	for _, def := range catalog.All() {
		rootCmd.AddCommand(newTaskCommand(app, opts, def))
	}
	rootCmd.AddCommand(newListCommand(app, opts))
	rootCmd.AddCommand(newConfigCommand(app, opts))
	rootCmd.AddCommand(newCompletionCommand())
	rootCmd.AddCommand(newIssuesCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits with the task's exit code.
func Execute() {
	os.Exit(run(context.Background(), NewApp(Dependencies{}), os.Args[1:]))
}

func run(ctx context.Context, app *App, args []string) int {
	rootCmd := NewRootCommand(app)
	rootCmd.SetArgs(args)

	err := fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(handleError),
	)
	return exitCodeOf(err)
}

// handleError prints errors that were not already reported by a RunE handler.
func handleError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}

func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return int(exitErr.Code)
	}
	return 1
}

// formatErrorForDisplay formats an error for user display.
// ActionableErrors add suggestions and, in verbose mode, the error chain.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}
