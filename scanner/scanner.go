// Package scanner lists image files and folders under a root path.
// Directory recursion is delegated to fastwalk; EXIF capture dates are
// read with goexif so a scan never needs an exiftool round trip for them.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"phototriage/logging"
	"phototriage/types"

	"github.com/charlievieth/fastwalk"
	"github.com/rwcarlsen/goexif/exif"
)

// DefaultExtensions is the allow-list applied when none is configured.
const DefaultExtensions = "jpg,jpeg,png"

// ParseExtensions turns a comma-separated extension list into a
// case-insensitive lookup set. Leading dots and whitespace are tolerated.
func ParseExtensions(list string) map[string]bool {
	exts := make(map[string]bool)
	for _, e := range strings.Split(list, ",") {
		e = strings.ToLower(strings.TrimSpace(e))
		e = strings.TrimPrefix(e, ".")
		if e != "" {
			exts["."+e] = true
		}
	}
	return exts
}

// IsImageFile checks a path against the extension allow-list
func IsImageFile(path string, exts map[string]bool) bool {
	return exts[strings.ToLower(filepath.Ext(path))]
}

// ListImages returns every allowed image file under root. The result
// order is unspecified; callers sort. Recursive walks skip hidden
// directories.
func ListImages(root string, recursive bool, exts map[string]bool) ([]types.FileEntry, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot access folder %s: %v", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", root)
	}

	if !recursive {
		return listImagesFlat(root, exts)
	}

	var (
		mu      sync.Mutex
		entries []types.FileEntry
	)

	conf := fastwalk.Config{Follow: false}
	err = fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logging.DebugLog("Skipping inaccessible path %s: %v", path, err)
			return nil
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsImageFile(path, exts) {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			logging.DebugLog("Cannot stat %s: %v", path, err)
			return nil
		}

		mu.Lock()
		entries = append(entries, types.FileEntry{
			Path: path,
			Name: d.Name(),
			Size: fi.Size(),
		})
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk failed for %s: %v", root, err)
	}

	return entries, nil
}

// listImagesFlat lists allowed image files directly inside root
func listImagesFlat(root string, exts map[string]bool) ([]types.FileEntry, error) {
	dirEntries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("cannot read folder %s: %v", root, err)
	}

	var entries []types.FileEntry
	for _, d := range dirEntries {
		if d.IsDir() || !IsImageFile(d.Name(), exts) {
			continue
		}
		fi, err := d.Info()
		if err != nil {
			logging.DebugLog("Cannot stat %s: %v", filepath.Join(root, d.Name()), err)
			continue
		}
		entries = append(entries, types.FileEntry{
			Path: filepath.Join(root, d.Name()),
			Name: d.Name(),
			Size: fi.Size(),
		})
	}

	return entries, nil
}

// ListFolders returns the subdirectories of root, sorted by name.
// Hidden directories are skipped.
func ListFolders(root string) ([]types.FolderEntry, error) {
	dirEntries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("cannot read folder %s: %v", root, err)
	}

	folders := []types.FolderEntry{}
	for _, d := range dirEntries {
		if !d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			continue
		}
		folders = append(folders, types.FolderEntry{
			Name: d.Name(),
			Path: filepath.Join(root, d.Name()),
		})
	}

	sort.Slice(folders, func(i, j int) bool { return folders[i].Name < folders[j].Name })
	return folders, nil
}

// CaptureTime reads the EXIF DateTimeOriginal of an image. Files with
// no EXIF block, or formats goexif cannot parse, report ok=false.
func CaptureTime(path string) (time.Time, bool) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, false
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, false
	}
	t, err := x.DateTime()
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
