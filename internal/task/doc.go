// SPDX-License-Identifier: MPL-2.0

// Package task defines the building blocks of conbuild tasks.
//
// A Definition binds a set of Params (named CLI parameters with typed defaults)
// to an ordered list of Actions. Each Action either builds a Command, a typed
// program-plus-arguments value that a runtime executes as an external process, or
// runs a small in-process function. Actions never execute anything while building.
//
// Parameter values are resolved per invocation by Resolve, which overlays user
// overrides on the declared defaults and produces Args. Definitions are collected
// in a Registry keyed by their unique basename.
package task
