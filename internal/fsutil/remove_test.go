// SPDX-License-Identifier: MPL-2.0

package fsutil

import (
	"path/filepath"
	"testing"

	"github.com/conbuild/conbuild/internal/testutil"
)

func TestRemoveAllIfExists(t *testing.T) {
	t.Parallel()

	t.Run("missing path is a no-op", func(t *testing.T) {
		t.Parallel()

		removed, err := RemoveAllIfExists(filepath.Join(t.TempDir(), "out"))
		if err != nil {
			t.Fatalf("RemoveAllIfExists() error = %v", err)
		}
		if removed {
			t.Error("removed = true for missing path")
		}
	})

	t.Run("removes a tree", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "out")
		nested := filepath.Join(dir, "build", "Release")
		testutil.MustWriteFile(t, filepath.Join(nested, "app"), "bin")

		removed, err := RemoveAllIfExists(dir)
		if err != nil {
			t.Fatalf("RemoveAllIfExists() error = %v", err)
		}
		if !removed {
			t.Error("removed = false for existing tree")
		}
		if testutil.Exists(t, dir) {
			t.Error("directory still exists after removal")
		}
	})

	t.Run("removes a single file", func(t *testing.T) {
		t.Parallel()

		file := filepath.Join(t.TempDir(), "CMakeUserPresets.json")
		testutil.MustWriteFile(t, file, "{}")
		if _, err := RemoveAllIfExists(file); err != nil {
			t.Fatalf("RemoveAllIfExists() error = %v", err)
		}
		if testutil.Exists(t, file) {
			t.Error("file still exists after removal")
		}
	})
}
