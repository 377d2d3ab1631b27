// SPDX-License-Identifier: MPL-2.0

package tasks

const (
	// DefaultOutputFolder is where Conan and CMake write generated files.
	DefaultOutputFolder = "build"
	// DefaultBuildType is the CMake build type used when none is given.
	DefaultBuildType = "Release"
	// ArtifactDir is the directory removed by the cleanup task.
	ArtifactDir = "out"
)

type (
	// Defaults are the parameter defaults and tool settings for one invocation.
	Defaults struct {
		// HomeFolder is the project root. Resolve it at invocation time.
		HomeFolder   string
		OutputFolder string
		BuildType    string
		// OutDir is the default of the cleanup task's out_dir flag.
		OutDir bool
		Conan  ConanSettings
		CMake  CMakeSettings
	}
)

// NewDefaults returns the standard defaults rooted at homeFolder.
func NewDefaults(homeFolder string) Defaults {
	return Defaults{
		HomeFolder:   homeFolder,
		OutputFolder: DefaultOutputFolder,
		BuildType:    DefaultBuildType,
		OutDir:       true,
		Conan:        DefaultConanSettings(),
		CMake:        DefaultCMakeSettings(),
	}
}
