// SPDX-License-Identifier: MPL-2.0

// Package builtin provides in-process utilities for conbuild's virtual shell runtime.
//
// When the virtual runtime is selected, its exec handler consults the Registry
// before looking up a program on PATH. Generated steps that rely on common file
// utilities (currently rm) therefore behave identically on every host, including
// those without a POSIX userland.
//
// Errors returned by builtins are prefixed with "[builtin] <name>:".
package builtin
