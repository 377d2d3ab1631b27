// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	appexec "github.com/conbuild/conbuild/internal/app/execute"
	"github.com/conbuild/conbuild/internal/config"
	"github.com/conbuild/conbuild/internal/runtime"
	"github.com/conbuild/conbuild/internal/tasks"
)

type (
	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// RuntimeFactory builds the runtime registry for one invocation.
	RuntimeFactory func(usePTY bool) *runtime.Registry

	// App wires CLI services and shared dependencies. Every cobra handler
	// receives the App and delegates through it.
	App struct {
		Config   ConfigProvider
		Runtimes RuntimeFactory
		stdin    io.Reader
		stdout   io.Writer
		stderr   io.Writer
	}

	// Dependencies are the injection points for NewApp. Nil fields get
	// production defaults.
	Dependencies struct {
		Config   ConfigProvider
		Runtimes RuntimeFactory
		Stdin    io.Reader
		Stdout   io.Writer
		Stderr   io.Writer
	}

	// globalOptions holds the persistent root flags.
	globalOptions struct {
		verbose   bool
		cfgFile   string
		dryRun    bool
		runtime   string
		workDir   string
		verbosity int
		pty       bool
	}

	// invocation is everything resolved before a task runs.
	invocation struct {
		cfg     *config.Config
		workDir string
		verbose bool
		logger  *log.Logger
		orch    *appexec.Orchestrator
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Runtimes == nil {
		deps.Runtimes = defaultRuntimes
	}

	return &App{
		Config:   deps.Config,
		Runtimes: deps.Runtimes,
		stdin:    deps.Stdin,
		stdout:   deps.Stdout,
		stderr:   deps.Stderr,
	}
}

func defaultRuntimes(usePTY bool) *runtime.Registry {
	reg := runtime.NewRegistry()
	reg.Register(runtime.RuntimeTypeNative, runtime.NewNativeRuntime(usePTY))
	reg.Register(runtime.RuntimeTypeVirtual, runtime.NewVirtualRuntime(true))
	return reg
}

// resolveWorkDir returns the absolute working directory for this invocation.
func resolveWorkDir(flagValue string) (string, error) {
	if flagValue == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(flagValue)
	if err != nil {
		return "", fmt.Errorf("invalid working directory %q: %w", flagValue, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("invalid working directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("invalid working directory %q: not a directory", abs)
	}
	return abs, nil
}

// newLogger returns the stderr logger. Verbose mode enables debug records.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix: config.AppName,
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// load resolves configuration, working directory, logger and orchestrator.
// Task defaults are derived here, per invocation, never at construction time.
func (a *App) load(ctx context.Context, opts *globalOptions) (*invocation, error) {
	workDir, err := resolveWorkDir(opts.workDir)
	if err != nil {
		return nil, err
	}

	cfg, err := a.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: opts.cfgFile,
		ProjectDir:     workDir,
	})
	if err != nil {
		return nil, err
	}

	verbose := opts.verbose || cfg.UI.Verbose
	rtType, err := appexec.ResolveRuntime(opts.runtime, string(cfg.DefaultRuntime))
	if err != nil {
		return nil, err
	}

	logger := newLogger(a.stderr, verbose)
	return &invocation{
		cfg:     cfg,
		workDir: workDir,
		verbose: verbose,
		logger:  logger,
		orch: &appexec.Orchestrator{
			Tasks:          tasks.NewRegistry(cfg.TaskDefaults(workDir)),
			Runtimes:       a.Runtimes(opts.pty || cfg.UI.PTY),
			DefaultRuntime: rtType,
			Logger:         logger,
			Stdin:          a.stdin,
			Stdout:         a.stdout,
			Stderr:         a.stderr,
		},
	}, nil
}
