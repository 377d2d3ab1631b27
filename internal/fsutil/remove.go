// SPDX-License-Identifier: MPL-2.0

// Package fsutil holds filesystem helpers shared by tasks and the virtual shell.
package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// RemoveAllIfExists removes path and everything below it.
// A missing path is not an error; removed reports whether anything was deleted.
// Permission and I/O errors are returned.
func RemoveAllIfExists(path string) (removed bool, err error) {
	if _, err := os.Lstat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	if err := os.RemoveAll(path); err != nil {
		return false, fmt.Errorf("remove %s: %w", path, err)
	}
	return true, nil
}
