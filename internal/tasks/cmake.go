// SPDX-License-Identifier: MPL-2.0

package tasks

import (
	"path/filepath"

	"github.com/conbuild/conbuild/internal/task"
)

// CMake task basenames.
const (
	CMakeConfigureTask = "cmake-configure"
	CMakeBuildTask     = "cmake-build"
	CMakeInstallTask   = "cmake-install"

	// ToolchainFile is generated by Conan into the output folder.
	ToolchainFile = "conan_toolchain.cmake"
)

// CMakeSettings configures the CMake invocations.
type CMakeSettings struct {
	// Generator is passed as -G.
	Generator string
}

// DefaultCMakeSettings returns settings for the Ninja generator.
func DefaultCMakeSettings() CMakeSettings {
	return CMakeSettings{Generator: "Ninja"}
}

// Configure generates the build tree under homeFolder/outputFolder using the
// Conan toolchain file found there. Paths are joined with filepath.Join, so they
// are cleaned lexically: "/repo/" and "build" give "/repo/build".
func (s CMakeSettings) Configure(homeFolder, outputFolder, buildType string) task.Command {
	buildDir := filepath.Join(homeFolder, outputFolder)
	return task.NewCommand("cmake",
		"..",
		"-G", s.Generator,
		"-DCMAKE_TOOLCHAIN_FILE="+filepath.Join(buildDir, ToolchainFile),
		"-DCMAKE_BUILD_TYPE="+buildType,
		"-S", homeFolder,
		"-B", buildDir,
	)
}

// Build compiles the configured tree.
func (s CMakeSettings) Build(homeFolder, outputFolder, buildType string) task.Command {
	return task.NewCommand("cmake", "--build", filepath.Join(homeFolder, outputFolder), "--config", buildType)
}

// Install installs the build artifacts of the configured tree.
func (s CMakeSettings) Install(homeFolder, outputFolder, buildType string) task.Command {
	return task.NewCommand("cmake", "--install", filepath.Join(homeFolder, outputFolder), "--config", buildType)
}

// cmakeBuilder adapts a CMakeSettings method to a task.CommandBuilder.
func cmakeBuilder(fn func(home, out, buildType string) task.Command) task.CommandBuilder {
	return func(args task.Args) (task.Command, error) {
		l, err := layoutOf(args)
		if err != nil {
			return task.Command{}, err
		}
		bt, err := buildTypeOf(args)
		if err != nil {
			return task.Command{}, err
		}
		return fn(l.home, l.output, bt), nil
	}
}

func cmakeParams(d Defaults) []task.Param {
	return []task.Param{
		BuildTypeParam(d.BuildType),
		HomeFolderParam(d.HomeFolder),
		OutputFolderParam(d.OutputFolder),
	}
}

// NewCMakeConfigure builds the cmake-configure task.
func NewCMakeConfigure(d Defaults) *task.Definition {
	return &task.Definition{
		Name:      CMakeConfigureTask,
		Doc:       "Configure CMake for build",
		Actions:   []task.Action{task.CommandAction("configure", cmakeBuilder(d.CMake.Configure))},
		Verbosity: task.VerbosityAll,
		Params:    cmakeParams(d),
	}
}

// NewCMakeBuild builds the cmake-build task.
func NewCMakeBuild(d Defaults) *task.Definition {
	return &task.Definition{
		Name:      CMakeBuildTask,
		Doc:       "Build project with configured cmake",
		Actions:   []task.Action{task.CommandAction("build", cmakeBuilder(d.CMake.Build))},
		Verbosity: task.VerbosityAll,
		Params:    cmakeParams(d),
	}
}

// NewCMakeInstall builds the cmake-install task.
func NewCMakeInstall(d Defaults) *task.Definition {
	return &task.Definition{
		Name:      CMakeInstallTask,
		Doc:       "Install cmake build artifacts",
		Actions:   []task.Action{task.CommandAction("install", cmakeBuilder(d.CMake.Install))},
		Verbosity: task.VerbosityAll,
		Params:    cmakeParams(d),
	}
}
