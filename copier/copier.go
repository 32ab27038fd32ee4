// Package copier copies selected photos to a destination folder.
package copier

import (
	"fmt"
	"os"
	"path/filepath"

	"phototriage/logging"

	"github.com/otiai10/copy"
)

// CopyFiles copies each source file into destDir, creating it if
// absent. Name collisions are overwritten. A failure on one file does
// not abort the batch; the returned count reflects only the copies that
// succeeded.
func CopyFiles(paths []string, destDir string) (int, error) {
	if destDir == "" {
		return 0, fmt.Errorf("destination directory is required")
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return 0, fmt.Errorf("cannot create destination %s: %v", destDir, err)
	}

	copied := 0
	for _, src := range paths {
		dst := filepath.Join(destDir, filepath.Base(src))
		if err := copy.Copy(src, dst); err != nil {
			logging.LogWarning("Copy failed for %s: %v", src, err)
			continue
		}
		copied++
	}

	logging.LogInfo("Copied %d/%d files to %s", copied, len(paths), destDir)
	return copied, nil
}
