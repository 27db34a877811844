package module

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeModule(t *testing.T, root, rel, manifest string) {
	t.Helper()
	dir := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "__manifest__.py"), []byte(manifest), 0644))
}

func depends(names ...string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + n + "'"
	}
	return fmt.Sprintf("{'depends': [%s]}", strings.Join(quoted, ", "))
}

func newWorkspace(t *testing.T) string {
	root := t.TempDir()
	writeModule(t, root, "vendor/odoo/cc/addons/base", depends())
	writeModule(t, root, "vendor/odoo/cc/addons/web", depends("base"))
	writeModule(t, root, "vendor/oca/web/web_responsive", depends("web"))
	writeModule(t, root, "vendor/oca/web/web_auto", "{'depends': ['web_responsive'], 'auto_install': True}")
	writeModule(t, root, "src/acme_sale", "{'depends': ['web_responsive', 'web_tour'], 'application': True}")
	writeModule(t, root, "src/acme_old", "{'depends': ['base'], 'installable': False}")
	return root
}

// execute runs the module command under a root command carrying --root
func execute(t *testing.T, root string, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	flagMissing, flagDirect = false, false

	parent := &cobra.Command{Use: "odooup", SilenceUsage: true, SilenceErrors: true}
	parent.PersistentFlags().String("root", ".", "")
	parent.AddCommand(Cmd)

	var out bytes.Buffer
	parent.SetOut(&out)
	parent.SetErr(io.Discard)
	parent.SetArgs(append(append([]string{"module"}, args...), "--root", root))
	err := parent.Execute()
	return out.String(), err
}

func TestListTags(t *testing.T) {
	out, err := execute(t, newWorkspace(t), "list")
	require.NoError(t, err)

	assert.Regexp(t, `base\s+vendor/odoo/cc/addons\s+native\n`, out)
	assert.Regexp(t, `web_auto\s+vendor/oca/web\s+auto_install\n`, out)
	assert.Regexp(t, `acme_old\s+src\s+not installable\n`, out)
	assert.Regexp(t, `acme_sale\s+src\s+application\n`, out)
	assert.NotContains(t, out, "web_tour")
	assert.Contains(t, out, "\n6 module(s)\n")
}

func TestListMissing(t *testing.T) {
	out, err := execute(t, newWorkspace(t), "list", "--missing")
	require.NoError(t, err)

	assert.Regexp(t, `web_tour\s+missing\n`, out)
	assert.NotContains(t, out, "acme_sale")
	assert.Contains(t, out, "\n1 module(s)\n")
}

func TestListPatterns(t *testing.T) {
	out, err := execute(t, newWorkspace(t), "list", "web*", "unknown")
	require.NoError(t, err)

	assert.Contains(t, out, "web_responsive")
	assert.Contains(t, out, "web_auto")
	assert.NotContains(t, out, "acme_sale")
	assert.NotContains(t, out, "unknown")
	assert.Contains(t, out, "\n3 module(s)\n")
}

func TestDepsMarksMissingAndNative(t *testing.T) {
	out, err := execute(t, newWorkspace(t), "deps", "acme_sale")
	require.NoError(t, err)

	assert.Regexp(t, `✓ base\s+native\n`, out)
	assert.Regexp(t, `✓ web\s+native\n`, out)
	assert.Regexp(t, `✓ web_responsive\s+vendor/oca/web\n`, out)
	assert.Regexp(t, `✗ web_tour\s+missing\n`, out)
	assert.Less(t, strings.Index(out, "✓ base"), strings.Index(out, "✓ web_responsive"))
	assert.Contains(t, out, "4 dependencies, 1 missing\n")
	assert.Contains(t, out, "Longest dependency path: 3\n")
}

func TestDepsDirect(t *testing.T) {
	out, err := execute(t, newWorkspace(t), "deps", "acme_sale", "--direct")
	require.NoError(t, err)

	assert.Contains(t, out, "web_responsive")
	assert.NotContains(t, out, "✓ base")
	assert.Contains(t, out, "2 dependencies, 1 missing\n")
	assert.NotContains(t, out, "Longest dependency path")
}

func TestDepsUnknownModule(t *testing.T) {
	_, err := execute(t, newWorkspace(t), "deps", "crm")
	assert.ErrorContains(t, err, "unknown module: 'crm'")
}

func TestGraphOfModule(t *testing.T) {
	out, err := execute(t, newWorkspace(t), "graph", "web_responsive")
	require.NoError(t, err)

	assert.Contains(t, out, "odooup")
	assert.Regexp(t, `"?base"? -> "?web"?[;\s]`, out)
	assert.Regexp(t, `"?web"? -> "?web_responsive"?`, out)
	assert.NotContains(t, out, "acme_sale")
	assert.NotContains(t, out, "web_auto")
}

func TestGraphWhole(t *testing.T) {
	out, err := execute(t, newWorkspace(t), "graph")
	require.NoError(t, err)

	assert.Contains(t, out, "acme_sale")
	assert.Regexp(t, `web_tour.*dashed`, out)
}
