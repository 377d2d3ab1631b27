// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/conbuild/conbuild/internal/issue"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "conbuild"
	// ConfigFileName is the name of the user config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// ProjectFileName is the config file looked up in the project directory.
	ProjectFileName = AppName + "." + ConfigFileExt
	// EnvPrefix prefixes environment variable overrides (CONBUILD_PROJECT_BUILD_TYPE).
	EnvPrefix = "CONBUILD"
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the conbuild configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// Resolve loads the configuration and reports which file it came from.
// The returned path is empty when only defaults and environment apply.
func Resolve(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	return loadWithOptions(ctx, opts)
}

// loadWithOptions performs option-driven config loading without package-level state.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath, err := findConfigFile(opts)
	if err != nil {
		return nil, "", err
	}

	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Use 'conbuild config dump' to see a valid configuration").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	// Environment overrides bypass the CUE schema.
	if err := cfg.Validate(); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithSuggestion("Check CONBUILD_* environment variables for typos or empty values").
			Wrap(err).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// findConfigFile picks the single config file to load: the explicit path, the
// user config file, or the project file, in that order.
func findConfigFile(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				WithSuggestion("Use 'conbuild config show' to see the default configuration").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}
	if cuePath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt); fileExists(cuePath) {
		return cuePath, nil
	}

	if opts.ProjectDir != "" {
		if localPath := filepath.Join(opts.ProjectDir, ProjectFileName); fileExists(localPath) {
			return localPath, nil
		}
	}

	return "", nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("default_runtime", d.DefaultRuntime)
	v.SetDefault("project.home_folder", d.Project.HomeFolder)
	v.SetDefault("project.output_folder", d.Project.OutputFolder)
	v.SetDefault("project.build_type", d.Project.BuildType)
	v.SetDefault("project.out_dir", d.Project.OutDir)
	v.SetDefault("conan.home_dir", d.Conan.HomeDir)
	v.SetDefault("conan.remote", d.Conan.Remote)
	v.SetDefault("conan.remote_url", d.Conan.RemoteURL)
	v.SetDefault("conan.build_profile", d.Conan.BuildProfile)
	v.SetDefault("conan.host_profile", d.Conan.HostProfile)
	v.SetDefault("conan.build_policy", d.Conan.BuildPolicy)
	v.SetDefault("cmake.generator", d.CMake.Generator)
	v.SetDefault("ui.color_scheme", d.UI.ColorScheme)
	v.SetDefault("ui.verbose", d.UI.Verbose)
	v.SetDefault("ui.pty", d.UI.PTY)
}

func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	configMap, err := decodeCUE(data, path)
	if err != nil {
		return err
	}

	// Merging preserves defaults and env overrides.
	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// UserConfigPath returns the path of the user config file.
func UserConfigPath() (string, error) {
	cfgDir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt), nil
}

// CreateDefaultConfig writes a default config file if none exists and returns
// its path along with whether it was created.
func CreateDefaultConfig() (string, bool, error) {
	cfgPath, err := UserConfigPath()
	if err != nil {
		return "", false, err
	}

	if _, err := os.Stat(cfgPath); err == nil {
		return cfgPath, false, nil
	}

	if err := Save(DefaultConfig()); err != nil {
		return "", false, err
	}
	return cfgPath, true, nil
}

// Save writes the configuration to the user config file.
func Save(cfg *Config) error {
	cfgPath, err := UserConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(cfg)), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// conbuild configuration file\n")
	sb.WriteString("// Environment variables prefixed with CONBUILD_ override these values.\n\n")

	fmt.Fprintf(&sb, "default_runtime: %q\n", cfg.DefaultRuntime)

	sb.WriteString("\nproject: {\n")
	if cfg.Project.HomeFolder != "" {
		fmt.Fprintf(&sb, "\thome_folder: %q\n", cfg.Project.HomeFolder)
	}
	fmt.Fprintf(&sb, "\toutput_folder: %q\n", cfg.Project.OutputFolder)
	fmt.Fprintf(&sb, "\tbuild_type: %q\n", cfg.Project.BuildType)
	fmt.Fprintf(&sb, "\tout_dir: %v\n", cfg.Project.OutDir)
	sb.WriteString("}\n")

	sb.WriteString("\nconan: {\n")
	fmt.Fprintf(&sb, "\thome_dir: %q\n", cfg.Conan.HomeDir)
	fmt.Fprintf(&sb, "\tremote: %q\n", cfg.Conan.Remote)
	fmt.Fprintf(&sb, "\tremote_url: %q\n", cfg.Conan.RemoteURL)
	fmt.Fprintf(&sb, "\tbuild_profile: %q\n", cfg.Conan.BuildProfile)
	fmt.Fprintf(&sb, "\thost_profile: %q\n", cfg.Conan.HostProfile)
	fmt.Fprintf(&sb, "\tbuild_policy: %q\n", cfg.Conan.BuildPolicy)
	sb.WriteString("}\n")

	sb.WriteString("\ncmake: {\n")
	fmt.Fprintf(&sb, "\tgenerator: %q\n", cfg.CMake.Generator)
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	fmt.Fprintf(&sb, "\tpty: %v\n", cfg.UI.PTY)
	sb.WriteString("}\n")

	return sb.String()
}

// GenerateTOML renders the configuration as TOML.
func GenerateTOML(cfg *Config) (string, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to encode config as TOML: %w", err)
	}
	return string(data), nil
}
