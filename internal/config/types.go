// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/conbuild/conbuild/internal/tasks"
)

const (
	// RuntimeNative starts tools directly on the host.
	RuntimeNative RuntimeMode = "native"
	// RuntimeVirtual runs tools through the embedded mvdan/sh interpreter.
	RuntimeVirtual RuntimeMode = "virtual"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidRuntimeMode is returned when a RuntimeMode value is not recognized.
	ErrInvalidRuntimeMode = errors.New("invalid runtime mode")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// RuntimeMode selects the runtime used for external commands.
	RuntimeMode string

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig and collects field-level validation errors.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// DefaultRuntime is used unless --runtime is given.
		DefaultRuntime RuntimeMode `json:"default_runtime" mapstructure:"default_runtime" toml:"default_runtime"`
		// Project holds the task parameter defaults.
		Project ProjectConfig `json:"project" mapstructure:"project" toml:"project"`
		// Conan configures the Conan invocations.
		Conan ConanConfig `json:"conan" mapstructure:"conan" toml:"conan"`
		// CMake configures the CMake invocations.
		CMake CMakeConfig `json:"cmake" mapstructure:"cmake" toml:"cmake"`
		// UI configures terminal output.
		UI UIConfig `json:"ui" mapstructure:"ui" toml:"ui"`
	}

	// ProjectConfig holds the defaults of the task parameters.
	ProjectConfig struct {
		HomeFolder   string `json:"home_folder" mapstructure:"home_folder" toml:"home_folder"`
		OutputFolder string `json:"output_folder" mapstructure:"output_folder" toml:"output_folder"`
		BuildType    string `json:"build_type" mapstructure:"build_type" toml:"build_type"`
		OutDir       bool   `json:"out_dir" mapstructure:"out_dir" toml:"out_dir"`
	}

	// ConanConfig configures the Conan invocations.
	ConanConfig struct {
		HomeDir      string `json:"home_dir" mapstructure:"home_dir" toml:"home_dir"`
		Remote       string `json:"remote" mapstructure:"remote" toml:"remote"`
		RemoteURL    string `json:"remote_url" mapstructure:"remote_url" toml:"remote_url"`
		BuildProfile string `json:"build_profile" mapstructure:"build_profile" toml:"build_profile"`
		HostProfile  string `json:"host_profile" mapstructure:"host_profile" toml:"host_profile"`
		BuildPolicy  string `json:"build_policy" mapstructure:"build_policy" toml:"build_policy"`
	}

	// CMakeConfig configures the CMake invocations.
	CMakeConfig struct {
		Generator string `json:"generator" mapstructure:"generator" toml:"generator"`
	}

	// UIConfig configures terminal output.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme" toml:"color_scheme"`
		Verbose     bool        `json:"verbose" mapstructure:"verbose" toml:"verbose"`
		// PTY runs native commands on a pseudo-terminal.
		PTY bool `json:"pty" mapstructure:"pty" toml:"pty"`
	}
)

// Validate returns an error if the RuntimeMode is not recognized.
func (m RuntimeMode) Validate() error {
	switch m {
	case RuntimeNative, RuntimeVirtual:
		return nil
	default:
		return fmt.Errorf("%w %q (valid: %s, %s)", ErrInvalidRuntimeMode, m, RuntimeNative, RuntimeVirtual)
	}
}

// Validate returns an error if the ColorScheme is not recognized.
func (c ColorScheme) Validate() error {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	default:
		return fmt.Errorf("%w %q (valid: auto, dark, light)", ErrInvalidColorScheme, c)
	}
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig for errors.Is compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// Validate checks the values a CUE schema cannot see, such as those set via environment.
func (c *Config) Validate() error {
	var errs []error
	if err := c.DefaultRuntime.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("default_runtime: %w", err))
	}
	if err := c.UI.ColorScheme.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("ui.color_scheme: %w", err))
	}
	required := []struct {
		key, value string
	}{
		{"project.output_folder", c.Project.OutputFolder},
		{"project.build_type", c.Project.BuildType},
		{"conan.home_dir", c.Conan.HomeDir},
		{"conan.remote", c.Conan.Remote},
		{"conan.remote_url", c.Conan.RemoteURL},
		{"cmake.generator", c.CMake.Generator},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, fmt.Errorf("%s: must not be empty", r.key))
		}
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	d := tasks.NewDefaults("")
	return &Config{
		DefaultRuntime: RuntimeNative,
		Project: ProjectConfig{
			OutputFolder: d.OutputFolder,
			BuildType:    d.BuildType,
			OutDir:       d.OutDir,
		},
		Conan: ConanConfig{
			HomeDir:      d.Conan.HomeDir,
			Remote:       d.Conan.Remote,
			RemoteURL:    d.Conan.RemoteURL,
			BuildProfile: d.Conan.BuildProfile,
			HostProfile:  d.Conan.HostProfile,
			BuildPolicy:  d.Conan.BuildPolicy,
		},
		CMake: CMakeConfig{Generator: d.CMake.Generator},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
	}
}

// TaskDefaults converts the configuration into task defaults for one invocation.
// workDir is used as the home folder unless project.home_folder is set.
func (c *Config) TaskDefaults(workDir string) tasks.Defaults {
	home := c.Project.HomeFolder
	if home == "" {
		home = workDir
	}
	d := tasks.NewDefaults(home)
	d.OutputFolder = c.Project.OutputFolder
	d.BuildType = c.Project.BuildType
	d.OutDir = c.Project.OutDir
	d.Conan = tasks.ConanSettings{
		HomeDir:      c.Conan.HomeDir,
		Remote:       c.Conan.Remote,
		RemoteURL:    c.Conan.RemoteURL,
		BuildProfile: c.Conan.BuildProfile,
		HostProfile:  c.Conan.HostProfile,
		BuildPolicy:  c.Conan.BuildPolicy,
	}
	d.CMake = tasks.CMakeSettings{Generator: c.CMake.Generator}
	return d
}
