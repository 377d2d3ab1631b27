// SPDX-License-Identifier: MPL-2.0

// Package execute runs registered tasks. It resolves arguments, selects the
// runtime, routes process output according to the task's verbosity and stops
// at the first failing action.
package execute
