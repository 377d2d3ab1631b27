// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/conbuild/conbuild/internal/issue"
	"github.com/conbuild/conbuild/internal/testutil"

	"github.com/pelletier/go-toml/v2"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.DefaultRuntime != RuntimeNative {
		t.Errorf("DefaultRuntime = %q, want native", cfg.DefaultRuntime)
	}
	if cfg.Project.HomeFolder != "" {
		t.Errorf("HomeFolder = %q, want empty (working directory)", cfg.Project.HomeFolder)
	}
	if cfg.Project.OutputFolder != "build" {
		t.Errorf("OutputFolder = %q, want build", cfg.Project.OutputFolder)
	}
	if cfg.Project.BuildType != "Release" {
		t.Errorf("BuildType = %q, want Release", cfg.Project.BuildType)
	}
	if !cfg.Project.OutDir {
		t.Error("OutDir should default to true")
	}
	if cfg.Conan.HomeDir != ".conan2" || cfg.Conan.Remote != "conancenter" {
		t.Errorf("unexpected conan defaults: %+v", cfg.Conan)
	}
	if cfg.CMake.Generator != "Ninja" {
		t.Errorf("Generator = %q, want Ninja", cfg.CMake.Generator)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoad_ReturnsDefaultsWhenNoConfigFile(t *testing.T) {
	t.Parallel()

	cfg, path, err := Resolve(context.Background(), LoadOptions{
		ConfigDirPath: t.TempDir(),
		ProjectDir:    t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if path != "" {
		t.Errorf("resolved path = %q, want empty", path)
	}
	if cfg.Project.BuildType != "Release" {
		t.Errorf("BuildType = %q, want Release", cfg.Project.BuildType)
	}
}

func TestLoad_UserConfigFile(t *testing.T) {
	t.Parallel()

	cfgDir := t.TempDir()
	cfgPath := filepath.Join(cfgDir, "config.cue")
	testutil.MustWriteFile(t, cfgPath, `
default_runtime: "virtual"
project: {
	build_type: "Debug"
	out_dir:    false
}
cmake: generator: "Unix Makefiles"
`)

	cfg, path, err := Resolve(context.Background(), LoadOptions{ConfigDirPath: cfgDir})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if path != cfgPath {
		t.Errorf("resolved path = %q, want %q", path, cfgPath)
	}
	if cfg.DefaultRuntime != RuntimeVirtual {
		t.Errorf("DefaultRuntime = %q, want virtual", cfg.DefaultRuntime)
	}
	if cfg.Project.BuildType != "Debug" || cfg.Project.OutDir {
		t.Errorf("unexpected project config: %+v", cfg.Project)
	}
	if cfg.Project.OutputFolder != "build" {
		t.Errorf("OutputFolder = %q, want default build", cfg.Project.OutputFolder)
	}
	if cfg.CMake.Generator != "Unix Makefiles" {
		t.Errorf("Generator = %q", cfg.CMake.Generator)
	}
}

func TestLoad_ProjectFileUsedWhenNoUserFile(t *testing.T) {
	t.Parallel()

	projectDir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(projectDir, ProjectFileName), `project: output_folder: "cmake-out"`)

	cfg, path, err := Resolve(context.Background(), LoadOptions{
		ConfigDirPath: t.TempDir(),
		ProjectDir:    projectDir,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if filepath.Base(path) != ProjectFileName {
		t.Errorf("resolved path = %q, want project file", path)
	}
	if cfg.Project.OutputFolder != "cmake-out" {
		t.Errorf("OutputFolder = %q, want cmake-out", cfg.Project.OutputFolder)
	}
}

func TestLoad_CustomPathTakesPrecedence(t *testing.T) {
	t.Parallel()

	cfgDir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(cfgDir, "config.cue"), `project: build_type: "Debug"`)
	custom := filepath.Join(t.TempDir(), "custom.cue")
	testutil.MustWriteFile(t, custom, `project: build_type: "RelWithDebInfo"`)

	cfg, path, err := Resolve(context.Background(), LoadOptions{ConfigFilePath: custom, ConfigDirPath: cfgDir})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if path != custom {
		t.Errorf("resolved path = %q, want %q", path, custom)
	}
	if cfg.Project.BuildType != "RelWithDebInfo" {
		t.Errorf("BuildType = %q, want RelWithDebInfo", cfg.Project.BuildType)
	}
}

func TestLoad_CustomPathNotFound(t *testing.T) {
	t.Parallel()

	_, _, err := Resolve(context.Background(), LoadOptions{
		ConfigFilePath: filepath.Join(t.TempDir(), "missing.cue"),
	})
	if err == nil {
		t.Fatal("expected error for missing config file")
	}

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("expected *issue.ActionableError, got %T", err)
	}
	if ae.Operation != "load configuration" {
		t.Errorf("Operation = %q", ae.Operation)
	}
	if len(ae.Suggestions) == 0 {
		t.Error("expected suggestions")
	}
}

func TestLoad_SchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{"unknown runtime", `default_runtime: "container"`, "default_runtime"},
		{"wrong type", `project: out_dir: "yes"`, "project.out_dir"},
		{"unknown field", `project: build_dir: "x"`, "build_dir"},
		{"bad remote url", `conan: remote_url: "ftp://example.com"`, "remote_url"},
		{"syntax error", `project: {`, "config.cue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfgDir := t.TempDir()
			testutil.MustWriteFile(t, filepath.Join(cfgDir, "config.cue"), tt.content)

			_, _, err := Resolve(context.Background(), LoadOptions{ConfigDirPath: cfgDir})
			if err == nil {
				t.Fatal("expected schema error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should mention %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("CONBUILD_PROJECT_BUILD_TYPE", "Debug")
	t.Setenv("CONBUILD_PROJECT_OUT_DIR", "false")
	t.Setenv("CONBUILD_CONAN_REMOTE", "internal")

	cfgDir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(cfgDir, "config.cue"), `project: build_type: "MinSizeRel"`)

	cfg, _, err := Resolve(context.Background(), LoadOptions{ConfigDirPath: cfgDir})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Project.BuildType != "Debug" {
		t.Errorf("BuildType = %q, want env override Debug", cfg.Project.BuildType)
	}
	if cfg.Project.OutDir {
		t.Error("OutDir should be overridden to false")
	}
	if cfg.Conan.Remote != "internal" {
		t.Errorf("Remote = %q, want internal", cfg.Conan.Remote)
	}
}

func TestLoad_InvalidEnvironmentValue(t *testing.T) {
	t.Setenv("CONBUILD_DEFAULT_RUNTIME", "docker")

	_, _, err := Resolve(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig in chain, got %v", err)
	}
}

func TestLoad_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := Resolve(ctx, LoadOptions{ConfigDirPath: t.TempDir()}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestGenerateCUE_RoundTrip(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.DefaultRuntime = RuntimeVirtual
	cfg.Project.HomeFolder = "/src/app"
	cfg.Project.BuildType = "Debug"
	cfg.UI.PTY = true

	cfgDir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(cfgDir, "config.cue"), GenerateCUE(cfg))

	loaded, _, err := Resolve(context.Background(), LoadOptions{ConfigDirPath: cfgDir})
	if err != nil {
		t.Fatalf("generated CUE should load: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", *loaded, *cfg)
	}
}

func TestGenerateTOML(t *testing.T) {
	t.Parallel()

	out, err := GenerateTOML(DefaultConfig())
	if err != nil {
		t.Fatalf("GenerateTOML: %v", err)
	}

	var decoded Config
	if err := toml.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid TOML: %v\n%s", err, out)
	}
	if decoded != *DefaultConfig() {
		t.Errorf("decoded TOML differs from defaults: %+v", decoded)
	}
	if !strings.Contains(out, "[conan]") {
		t.Errorf("expected a [conan] table in:\n%s", out)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	cfgDir := filepath.Join(t.TempDir(), "conbuild")
	SetConfigDirOverride(cfgDir)
	t.Cleanup(Reset)

	path, created, err := CreateDefaultConfig()
	if err != nil {
		t.Fatalf("CreateDefaultConfig: %v", err)
	}
	if !created {
		t.Error("expected file to be created")
	}
	if path != filepath.Join(cfgDir, "config.cue") {
		t.Errorf("path = %q", path)
	}

	_, created, err = CreateDefaultConfig()
	if err != nil {
		t.Fatalf("second CreateDefaultConfig: %v", err)
	}
	if created {
		t.Error("existing file must not be overwritten")
	}
}

func TestTaskDefaults(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	d := cfg.TaskDefaults("/work")
	if d.HomeFolder != "/work" {
		t.Errorf("HomeFolder = %q, want working directory", d.HomeFolder)
	}

	cfg.Project.HomeFolder = "/configured"
	cfg.Conan.Remote = "mirror"
	d = cfg.TaskDefaults("/work")
	if d.HomeFolder != "/configured" {
		t.Errorf("HomeFolder = %q, want configured value", d.HomeFolder)
	}
	if d.Conan.Remote != "mirror" {
		t.Errorf("Conan.Remote = %q, want mirror", d.Conan.Remote)
	}
}

func TestProvider_Load(t *testing.T) {
	t.Parallel()

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected config")
	}
}
