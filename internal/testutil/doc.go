// SPDX-License-Identifier: MPL-2.0

// Package testutil provides test helpers that fail the test on error and
// restore process state on cleanup.
package testutil
