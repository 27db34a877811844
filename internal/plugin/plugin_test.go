package plugin

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, dir, name, body string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), mode))
	return path
}

func TestListAndLookup(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("plugins are shell scripts")
	}

	first, second := t.TempDir(), t.TempDir()
	deploy := writeScript(t, first, "odooup-deploy", "exit 0", 0755)
	writeScript(t, second, "odooup-deploy", "exit 1", 0755)
	writeScript(t, second, "odooup-backup", "exit 0", 0755)
	writeScript(t, second, "odooup-notexec", "exit 0", 0644)
	writeScript(t, second, "other-tool", "exit 0", 0755)
	require.NoError(t, os.Mkdir(filepath.Join(second, "odooup-dir"), 0755))

	t.Setenv("PATH", first+string(os.PathListSeparator)+second)

	plugins := List()
	require.Len(t, plugins, 2)
	assert.Equal(t, "backup", plugins[0].Name)
	assert.Equal(t, Plugin{Name: "deploy", Path: deploy}, plugins[1])

	p, ok := Lookup("deploy")
	require.True(t, ok)
	assert.Equal(t, deploy, p.Path)

	_, ok = Lookup("notexec")
	assert.False(t, ok)
	_, ok = Lookup("../deploy")
	assert.False(t, ok)
	_, ok = Lookup("")
	assert.False(t, ok)
}

func TestRun(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("plugins are shell scripts")
	}

	dir := t.TempDir()
	out := filepath.Join(dir, "args")
	writeScript(t, dir, "odooup-echo", `echo "$@" > "`+out+`"`, 0755)
	writeScript(t, dir, "odooup-fail", "exit 3", 0755)
	t.Setenv("PATH", dir)

	p, ok := Lookup("echo")
	require.True(t, ok)
	require.NoError(t, p.Run(context.Background(), []string{"a", "b"}))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "a b\n", string(data))

	p, ok = Lookup("fail")
	require.True(t, ok)
	err = p.Run(context.Background(), nil)
	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.ExitCode())
}
