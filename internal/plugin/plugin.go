// Package plugin discovers and runs external odooup subcommands: any
// executable named odooup-<name> on PATH is available as `odooup <name>`.
package plugin

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Prefix is the executable name prefix of plugins
const Prefix = "odooup-"

// Plugin is an external subcommand
type Plugin struct {
	Name string
	Path string
}

// List returns the plugins on PATH sorted by name. When several PATH
// entries provide the same plugin the first one wins, as the shell would.
func List() []Plugin {
	seen := make(map[string]bool)
	var plugins []Plugin
	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		if dir == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			name := strings.TrimPrefix(entry.Name(), Prefix)
			if name == entry.Name() || name == "" || seen[name] || entry.IsDir() {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if !isExecutable(path) {
				continue
			}
			seen[name] = true
			plugins = append(plugins, Plugin{Name: name, Path: path})
		}
	}
	sort.Slice(plugins, func(i, j int) bool { return plugins[i].Name < plugins[j].Name })
	return plugins
}

// Lookup finds the plugin providing name
func Lookup(name string) (Plugin, bool) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return Plugin{}, false
	}
	path, err := exec.LookPath(Prefix + name)
	if err != nil {
		return Plugin{}, false
	}
	return Plugin{Name: name, Path: path}, true
}

// Run executes the plugin with args, attached to the process's stdio
func (p Plugin) Run(ctx context.Context, args []string) error {
	zap.L().Debug("running plugin", zap.String("plugin", p.Name), zap.String("path", p.Path), zap.Strings("args", args))

	cmd := exec.CommandContext(ctx, p.Path, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Mode()&0111 != 0
}
