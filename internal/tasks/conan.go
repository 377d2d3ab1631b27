// SPDX-License-Identifier: MPL-2.0

package tasks

import (
	"path/filepath"

	"github.com/conbuild/conbuild/internal/task"
)

const (
	// ConanInstallTask is the basename of the dependency installation task.
	ConanInstallTask = "conan-install"

	// ConanHomeEnv is the variable Conan reads its home directory from.
	ConanHomeEnv = "CONAN_HOME"
	// UserPresetsFile is generated by Conan next to the recipe and removed after install.
	UserPresetsFile = "CMakeUserPresets.json"
)

// ConanSettings configures the Conan invocations.
type ConanSettings struct {
	// HomeDir is the Conan home, relative to the project home folder.
	HomeDir string
	// Remote is the name of the remote packages are fetched from.
	Remote string
	// RemoteURL is the URL the remote is pointed at before installing.
	RemoteURL string
	// BuildProfile and HostProfile are relative to the project home folder.
	BuildProfile string
	HostProfile  string
	// BuildPolicy is passed as --build=<policy>.
	BuildPolicy string
}

// DefaultConanSettings returns the settings for ConanCenter with in-repo profiles.
func DefaultConanSettings() ConanSettings {
	return ConanSettings{
		HomeDir:      ".conan2",
		Remote:       "conancenter",
		RemoteURL:    "https://center2.conan.io",
		BuildProfile: filepath.Join("tools", "conan", "build-profile"),
		HostProfile:  filepath.Join("tools", "conan", "host-profile"),
		BuildPolicy:  "missing",
	}
}

// withHome prefixes cmd with the CONAN_HOME assignment for homeFolder.
func (s ConanSettings) withHome(homeFolder string, cmd task.Command) task.Command {
	return cmd.WithEnv(ConanHomeEnv, filepath.Join(homeFolder, s.HomeDir))
}

// RemoteUpdate points the configured remote at RemoteURL.
func (s ConanSettings) RemoteUpdate(homeFolder string) task.Command {
	return s.withHome(homeFolder, task.NewCommand("conan",
		"remote", "update", s.Remote, "--url="+s.RemoteURL,
	))
}

// Install resolves and materializes dependencies into the output folder.
// Like the CMake builders it joins paths with filepath.Join, which cleans them.
func (s ConanSettings) Install(homeFolder, outputFolder string) task.Command {
	return s.withHome(homeFolder, task.NewCommand("conan",
		"install", ".",
		"--build="+s.BuildPolicy,
		"-r="+s.Remote,
		"--profile:build="+filepath.Join(homeFolder, s.BuildProfile),
		"--profile:host="+filepath.Join(homeFolder, s.HostProfile),
		"--output-folder="+filepath.Join(homeFolder, outputFolder),
	))
}

// RemovePresets deletes the CMake user presets Conan leaves in the working directory.
func RemovePresets() task.Command {
	return task.NewCommand("rm", UserPresetsFile)
}

// NewConanInstall builds the conan-install task.
func NewConanInstall(d Defaults) *task.Definition {
	s := d.Conan
	return &task.Definition{
		Name: ConanInstallTask,
		Doc:  "Install conan deps",
		Actions: []task.Action{
			task.CommandAction("configure remote", func(args task.Args) (task.Command, error) {
				l, err := layoutOf(args)
				if err != nil {
					return task.Command{}, err
				}
				return s.RemoteUpdate(l.home), nil
			}),
			task.CommandAction("install dependencies", func(args task.Args) (task.Command, error) {
				l, err := layoutOf(args)
				if err != nil {
					return task.Command{}, err
				}
				return s.Install(l.home, l.output), nil
			}),
			task.CommandAction("remove user presets", func(task.Args) (task.Command, error) {
				return RemovePresets(), nil
			}),
		},
		Verbosity: task.VerbosityAll,
		Params: []task.Param{
			HomeFolderParam(d.HomeFolder),
			OutputFolderParam(d.OutputFolder),
		},
	}
}
