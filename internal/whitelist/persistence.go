package whitelist

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// PersistenceFile returns the file that stores a namespace's sparse-checkout
// entries: a dotted sibling of the namespace directory, so it survives
// re-cloning the repository. The repository's sparse-checkout file is a
// symlink to it.
func PersistenceFile(namespace string) string {
	namespace = filepath.Clean(namespace)
	return filepath.Join(filepath.Dir(namespace), "."+filepath.Base(namespace))
}

// NamespaceFromPersistenceFile maps a persistence file back to its namespace,
// relative to root and slash separated: <root>/vendor/oca/.web -> vendor/oca/web
func NamespaceFromPersistenceFile(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	dir, base := filepath.Split(rel)
	return filepath.ToSlash(filepath.Join(dir, strings.TrimLeft(base, ".")))
}

// readLines returns the non-empty lines of a file
func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

func readSet(path string) (map[string]bool, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(lines))
	for _, line := range lines {
		set[line] = true
	}
	return set, nil
}

// appendLines appends lines to path, creating it if needed
func appendLines(path string, lines []string) error {
	prefix := ""
	if data, err := os.ReadFile(path); err == nil && len(data) > 0 && !bytes.HasSuffix(data, []byte("\n")) {
		prefix = "\n"
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(prefix + strings.Join(lines, "\n") + "\n"); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
