// SPDX-License-Identifier: MPL-2.0

// Package tasks is the built-in conbuild task catalog.
//
// It wires Conan and CMake invocations and the workspace cleanup step into
// task.Definitions. The command builders in this package are pure: they only
// turn resolved arguments into task.Command values.
//
// Defaults are passed in explicitly through a Defaults value built once per
// invocation, so the default home folder is the working directory at the time
// the CLI runs, not at the time the package was initialized.
package tasks
