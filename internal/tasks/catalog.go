// SPDX-License-Identifier: MPL-2.0

package tasks

import "github.com/conbuild/conbuild/internal/task"

// NewRegistry returns a registry holding every built-in task, configured with d.
func NewRegistry(d Defaults) *task.Registry {
	reg := task.NewRegistry()
	for _, def := range []*task.Definition{
		NewConanInstall(d),
		NewCMakeConfigure(d),
		NewCMakeBuild(d),
		NewCMakeInstall(d),
		NewClean(d),
	} {
		reg.MustRegister(def)
	}
	return reg
}
