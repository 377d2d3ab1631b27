// SPDX-License-Identifier: MPL-2.0

package tasks

import (
	"errors"

	"github.com/conbuild/conbuild/internal/task"
)

var (
	// ErrEmptyHomeFolder is returned by builders when home_folder resolves to "".
	ErrEmptyHomeFolder = errors.New("home folder must not be empty")
	// ErrEmptyOutputFolder is returned by builders when output_folder resolves to "".
	ErrEmptyOutputFolder = errors.New("output folder must not be empty")
	// ErrEmptyBuildType is returned by builders when build_type resolves to "".
	ErrEmptyBuildType = errors.New("build type must not be empty")
)

// layout holds the validated directory arguments as given. Builders join
// output under home.
type layout struct {
	home   string
	output string
}

func layoutOf(args task.Args) (layout, error) {
	home := args.String(ParamHomeFolder)
	if home == "" {
		return layout{}, ErrEmptyHomeFolder
	}
	out := args.String(ParamOutputFolder)
	if out == "" {
		return layout{}, ErrEmptyOutputFolder
	}
	return layout{home: home, output: out}, nil
}

func buildTypeOf(args task.Args) (string, error) {
	bt := args.String(ParamBuildType)
	if bt == "" {
		return "", ErrEmptyBuildType
	}
	return bt, nil
}
