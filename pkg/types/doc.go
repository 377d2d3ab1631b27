// SPDX-License-Identifier: MPL-2.0

// Package types holds small value types shared across conbuild packages.
package types
