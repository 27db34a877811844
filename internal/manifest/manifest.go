package manifest

import (
	"fmt"
	"os"
)

// Manifest holds the parts of an Odoo module manifest odooup cares about
type Manifest struct {
	Name               string
	Version            string
	Depends            []string
	AutoInstall        bool
	Installable        bool
	Application        bool
	PythonDependencies []string
	Raw                map[string]any
}

// Load reads and parses a manifest file
func Load(path string) (*Manifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, content)
}

// Parse parses manifest source. path is only used in error messages.
func Parse(path string, content []byte) (*Manifest, error) {
	p := &parser{src: string(content), path: path}
	raw, err := p.parseDocument()
	if err != nil {
		return nil, err
	}

	m := &Manifest{
		Name:        stringValue(raw["name"]),
		Version:     stringValue(raw["version"]),
		AutoInstall: Truthy(raw["auto_install"]),
		Application: Truthy(raw["application"]),
		Installable: true,
		Raw:         raw,
	}
	if v, ok := raw["installable"]; ok {
		m.Installable = Truthy(v)
	}

	if m.Depends, err = stringList(raw["depends"]); err != nil {
		return nil, fmt.Errorf("%s: depends: %w", path, err)
	}

	// external_dependencies = {'python': [...], 'bin': [...]}
	if ext, ok := raw["external_dependencies"].(map[string]any); ok {
		if m.PythonDependencies, err = stringList(ext["python"]); err != nil {
			return nil, fmt.Errorf("%s: external_dependencies: %w", path, err)
		}
	}

	return m, nil
}

// Truthy applies Python truth rules to a parsed literal
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case int64:
		return t != 0
	case float64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	return true
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func stringList(v any) ([]string, error) {
	switch t := v.(type) {
	case nil, bool:
		return nil, nil
	case []any:
		out := make([]string, 0, len(t))
		seen := make(map[string]bool)
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected string, got %T", item)
			}
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected list, got %T", v)
}
