// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/conbuild/conbuild/internal/config"
	"github.com/conbuild/conbuild/internal/issue"
	"github.com/conbuild/conbuild/pkg/types"
)

const (
	formatCUE  = "cue"
	formatTOML = "toml"
)

// newConfigCommand creates the `conbuild config` command tree.
func newConfigCommand(app *App, opts *globalOptions) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage conbuild configuration",
		Long: `Manage conbuild configuration.

Configuration is read from the first file found:
  - the file given with --config
  - the user config file:
      Linux: ~/.config/conbuild/config.cue
      macOS: ~/Library/Application Support/conbuild/config.cue
      Windows: %APPDATA%\conbuild\config.cue
  - conbuild.cue in the working directory

Environment variables prefixed with CONBUILD_ override file values,
for example CONBUILD_PROJECT_BUILD_TYPE=Debug.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showConfig(cmd.Context(), app, opts)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showConfigPath(app.stdout, opts)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(app.stdout)
		},
	})

	var format string
	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE or TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfigForDisplay(cmd.Context(), app, opts)
			if err != nil {
				return err
			}
			return dumpConfig(app.stdout, cfg, format)
		},
	}
	dumpCmd.Flags().StringVar(&format, "format", formatCUE, "output format: cue or toml")
	cfgCmd.AddCommand(dumpCmd)

	return cfgCmd
}

// loadConfigForDisplay loads the configuration the next task would use and
// reports load failures with the config issue.
func loadConfigForDisplay(ctx context.Context, app *App, opts *globalOptions) (*config.Config, error) {
	workDir, err := resolveWorkDir(opts.workDir)
	if err != nil {
		return nil, err
	}
	cfg, err := app.Config.Load(ctx, config.LoadOptions{ConfigFilePath: opts.cfgFile, ProjectDir: workDir})
	if err != nil {
		reportFailure(app.stderr, issue.ConfigLoadFailedId, err, opts.verbose, glamourStyle(config.ColorSchemeAuto))
		return nil, &ExitError{Code: types.ExitFailure}
	}
	return cfg, nil
}

func dumpConfig(w io.Writer, cfg *config.Config, format string) error {
	switch format {
	case formatCUE:
		fmt.Fprint(w, config.GenerateCUE(cfg))
		return nil
	case formatTOML:
		out, err := config.GenerateTOML(cfg)
		if err != nil {
			return err
		}
		fmt.Fprint(w, out)
		return nil
	default:
		return fmt.Errorf("unknown format %q (valid: %s, %s)", format, formatCUE, formatTOML)
	}
}

func showConfig(ctx context.Context, app *App, opts *globalOptions) error {
	workDir, err := resolveWorkDir(opts.workDir)
	if err != nil {
		return err
	}
	cfg, path, err := config.Resolve(ctx, config.LoadOptions{ConfigFilePath: opts.cfgFile, ProjectDir: workDir})
	if err != nil {
		reportFailure(app.stderr, issue.ConfigLoadFailedId, err, opts.verbose, glamourStyle(config.ColorSchemeAuto))
		return &ExitError{Code: types.ExitFailure}
	}

	w := app.stdout
	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	kv := func(indent, key string, value any) {
		fmt.Fprintf(w, "%s%s: %s\n", indent, keyStyle.Render(key), valueStyle.Render(fmt.Sprint(value)))
	}

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	if path != "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	kv("", "default_runtime", cfg.DefaultRuntime)

	fmt.Fprintf(w, "\n%s:\n", keyStyle.Render("project"))
	home := cfg.Project.HomeFolder
	if home == "" {
		home = workDir + " (working directory)"
	}
	kv("  ", "home_folder", home)
	kv("  ", "output_folder", cfg.Project.OutputFolder)
	kv("  ", "build_type", cfg.Project.BuildType)
	kv("  ", "out_dir", cfg.Project.OutDir)

	fmt.Fprintf(w, "\n%s:\n", keyStyle.Render("conan"))
	kv("  ", "home_dir", cfg.Conan.HomeDir)
	kv("  ", "remote", cfg.Conan.Remote)
	kv("  ", "remote_url", cfg.Conan.RemoteURL)
	kv("  ", "build_profile", cfg.Conan.BuildProfile)
	kv("  ", "host_profile", cfg.Conan.HostProfile)
	kv("  ", "build_policy", cfg.Conan.BuildPolicy)

	fmt.Fprintf(w, "\n%s:\n", keyStyle.Render("cmake"))
	kv("  ", "generator", cfg.CMake.Generator)

	fmt.Fprintf(w, "\n%s:\n", keyStyle.Render("ui"))
	kv("  ", "color_scheme", cfg.UI.ColorScheme)
	kv("  ", "verbose", cfg.UI.Verbose)
	kv("  ", "pty", cfg.UI.PTY)

	return nil
}

func showConfigPath(w io.Writer, opts *globalOptions) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	workDir, err := resolveWorkDir(opts.workDir)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Config directory: %s\n", cfgDir)
	fmt.Fprintf(w, "User config file: %s\n", filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))
	fmt.Fprintf(w, "Project config file: %s\n", filepath.Join(workDir, config.ProjectFileName))
	if opts.cfgFile != "" {
		fmt.Fprintf(w, "Explicit config file: %s\n", opts.cfgFile)
	}
	return nil
}

func initConfig(w io.Writer) error {
	path, created, err := config.CreateDefaultConfig()
	if err != nil {
		return issue.WrapWithOperation(err, "create default configuration")
	}

	if created {
		fmt.Fprintf(w, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
	} else {
		fmt.Fprintf(w, "%s Configuration already exists at %s\n", WarningStyle.Render("!"), path)
	}
	return nil
}
