// SPDX-License-Identifier: MPL-2.0

package tasks

import (
	"context"
	"path/filepath"

	"github.com/conbuild/conbuild/internal/fsutil"
	"github.com/conbuild/conbuild/internal/task"
)

// CleanTask is the basename of the workspace cleanup task.
const CleanTask = "rm"

// CleanArtifacts removes the artifact directory below dir when enabled is true.
// A missing directory is not an error.
func CleanArtifacts(dir string, enabled bool) (removed bool, err error) {
	if !enabled {
		return false, nil
	}
	return fsutil.RemoveAllIfExists(filepath.Join(dir, ArtifactDir))
}

// NewClean builds the rm task.
func NewClean(d Defaults) *task.Definition {
	return &task.Definition{
		Name: CleanTask,
		Doc:  "Clear working space",
		Actions: []task.Action{{
			Title: "remove artifacts",
			Run: func(_ context.Context, env task.FuncEnv) error {
				enabled := env.Args.Bool(ParamOutDir)
				removed, err := CleanArtifacts(env.Dir, enabled)
				if err != nil {
					return err
				}
				switch {
				case !enabled:
					env.Logger.Debug("artifact removal disabled", "dir", ArtifactDir)
				case removed:
					env.Logger.Info("removed artifacts", "dir", filepath.Join(env.Dir, ArtifactDir))
				default:
					env.Logger.Debug("nothing to remove", "dir", filepath.Join(env.Dir, ArtifactDir))
				}
				return nil
			},
			Describe: func(args task.Args) string {
				if !args.Bool(ParamOutDir) {
					return "skip removing " + ArtifactDir + "/ (out-dir=false)"
				}
				return "remove " + ArtifactDir + "/ if present"
			},
		}},
		Verbosity: task.VerbosityAll,
		Params:    []task.Param{OutDirParam(d.OutDir)},
	}
}
