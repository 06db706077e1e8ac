// Package discovery enumerates and filters candidate archive paths.
package discovery

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"wxunpack/internal/fileutil"
	"wxunpack/internal/wxapkg"
)

// ErrRootNotFound reports that the requested root path does not exist.
var ErrRootNotFound = errors.New("root path not found")

// Discover returns the archive candidates under root. A file root yields at
// most itself; a directory root is walked recursively. Only entries with the
// archive extension are kept, and when filterFramework is set the bundled
// runtime framework archives are dropped as well.
func Discover(root string, filterFramework bool) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrRootNotFound
		}
		return nil, err
	}

	entries := []string{root}
	if info.IsDir() {
		entries, err = fileutil.ListFiles(root)
		if err != nil {
			return nil, err
		}
	}

	candidates := make([]string, 0, len(entries))
	for _, entry := range entries {
		if filepath.Ext(entry) != wxapkg.Ext {
			continue
		}
		if filterFramework && wxapkg.IsFramework(entry) {
			continue
		}
		candidates = append(candidates, entry)
	}
	return candidates, nil
}
