package module

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/odooup/odooup/internal/odoo"
)

// SkipDirs are directory names never searched for modules
var SkipDirs = map[string]bool{
	"__pycache__":  true,
	"node_modules": true,
}

// Location is a module directory found on disk
type Location struct {
	Name         string
	Dir          string
	Namespace    string
	ManifestPath string
}

// ManifestPath returns the manifest file of an Odoo module directory,
// or "" if dir is not a module
func ManifestPath(dir string) string {
	for _, name := range odoo.ManifestNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// IsModule checks if a directory is an Odoo module
func IsModule(dir string) bool {
	return ManifestPath(dir) != ""
}

// Find walks root and returns every Odoo module below it, sorted by path.
// Module directories are not descended into. Directories that cannot be
// read are skipped with a warning; only an unreadable root is an error.
func Find(root string) ([]Location, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var found []Location
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			zap.L().Warn("skipping unreadable path", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && (strings.HasPrefix(d.Name(), ".") || SkipDirs[d.Name()]) {
			return filepath.SkipDir
		}

		manifestPath := ManifestPath(path)
		if manifestPath == "" {
			return nil
		}
		if path != root {
			found = append(found, Location{
				Name:         d.Name(),
				Dir:          path,
				Namespace:    filepath.Dir(path),
				ManifestPath: manifestPath,
			})
		}
		return filepath.SkipDir
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(found, func(i, j int) bool {
		return found[i].Dir < found[j].Dir
	})
	return found, nil
}

// ExpandPatterns expands glob patterns to module names
func ExpandPatterns(patterns []string, available []string) []string {
	var result []string
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		if strings.ContainsAny(pattern, "*?[") {
			for _, mod := range available {
				matched, _ := filepath.Match(pattern, mod)
				if matched && !seen[mod] {
					result = append(result, mod)
					seen[mod] = true
				}
			}
		} else if !seen[pattern] {
			result = append(result, pattern)
			seen[pattern] = true
		}
	}

	return result
}
