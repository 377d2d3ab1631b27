// SPDX-License-Identifier: MPL-2.0

package tasks

import "github.com/conbuild/conbuild/internal/task"

// Parameter names as they appear in task.Args.
const (
	ParamHomeFolder   = "home_folder"
	ParamOutputFolder = "output_folder"
	ParamBuildType    = "build_type"
	ParamOutDir       = "out_dir"
)

// HomeFolderParam declares the project root parameter.
func HomeFolderParam(def string) task.Param {
	return task.StringParam(ParamHomeFolder, "h", "home-folder", def, "Home folder to work in")
}

// OutputFolderParam declares the build output folder, relative to the home folder.
func OutputFolderParam(def string) task.Param {
	return task.StringParam(ParamOutputFolder, "o", "output-folder", def, "Output folder for conan")
}

// BuildTypeParam declares the CMake build type.
func BuildTypeParam(def string) task.Param {
	return task.StringParam(ParamBuildType, "t", "build-type", def, "Build type")
}

// OutDirParam declares whether the cleanup task removes the artifact directory.
func OutDirParam(def bool) task.Param {
	return task.BoolParam(ParamOutDir, "O", "out-dir", def, `Remove "out" directory with artifacts`)
}
