package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const saleManifest = `# -*- coding: utf-8 -*-
# Part of Odoo. See LICENSE file for full copyright and licensing details.

{
    'name': 'Sales',
    'version': '1.2',
    'category': 'Sales/Sales',
    'summary': 'Sales internal machinery',
    'description': """
This module contains all the common features of Sales Management.
    """,
    'depends': ['sales_team', 'payment', 'portal', 'utm'],
    'data': [
        'security/sale_security.xml',
        'security/ir.model.access.csv',
    ],
    'installable': True,
    'auto_install': False,
    'application': False,
    'license': 'LGPL-3',
}
`

func TestParseOdooManifest(t *testing.T) {
	m, err := Parse("sale/__manifest__.py", []byte(saleManifest))
	require.NoError(t, err)

	assert.Equal(t, "Sales", m.Name)
	assert.Equal(t, "1.2", m.Version)
	assert.Equal(t, []string{"sales_team", "payment", "portal", "utm"}, m.Depends)
	assert.True(t, m.Installable)
	assert.False(t, m.AutoInstall)
	assert.False(t, m.Application)
	assert.Contains(t, m.Raw["description"], "common features")
	assert.Equal(t, "LGPL-3", m.Raw["license"])
}

func TestParseSyntax(t *testing.T) {
	tests := []struct {
		name  string
		input string
		key   string
		want  any
	}{
		{
			name:  "double quotes and trailing comma",
			input: `{"name": "Web",}`,
			key:   "name",
			want:  "Web",
		},
		{
			name:  "adjacent string concatenation",
			input: "{'summary': ('Multi '\n  'line' \"s\")}",
			key:   "summary",
			want:  "Multi lines",
		},
		{
			name:  "escapes",
			input: `{'x': 'it\'s\ta\n\x41é'}`,
			key:   "x",
			want:  "it's\ta\nAé",
		},
		{
			name:  "line continuation",
			input: "{'x': 'Web \\\n client'}",
			key:   "x",
			want:  "Web  client",
		},
		{
			name:  "line continuation with CRLF",
			input: "{\r\n    'x': 'Web \\\r\n client',\r\n}\r\n",
			key:   "x",
			want:  "Web  client",
		},
		{
			name:  "raw string keeps backslashes",
			input: `{'x': r'\d+'}`,
			key:   "x",
			want:  `\d+`,
		},
		{
			name:  "unicode prefix",
			input: `{'x': u'caf\xe9'}`,
			key:   "x",
			want:  "café",
		},
		{
			name:  "integers and floats",
			input: `{'sequence': -10, 'ratio': 1.5e2}`,
			key:   "sequence",
			want:  int64(-10),
		},
		{
			name:  "float",
			input: `{'ratio': 1.5e2}`,
			key:   "ratio",
			want:  150.0,
		},
		{
			name:  "none",
			input: `{'x': None}`,
			key:   "x",
			want:  nil,
		},
		{
			name:  "tuple",
			input: `{'x': ('a', 'b',)}`,
			key:   "x",
			want:  []any{"a", "b"},
		},
		{
			name:  "empty tuple",
			input: `{'x': ()}`,
			key:   "x",
			want:  []any{},
		},
		{
			name:  "nested dict",
			input: `{'external_dependencies': {'python': ['lxml'], 'bin': []}}`,
			key:   "external_dependencies",
			want:  map[string]any{"python": []any{"lxml"}, "bin": []any{}},
		},
		{
			name:  "leading docstring",
			input: "\"\"\"Legacy module.\"\"\"\n{'x': 1}",
			key:   "x",
			want:  int64(1),
		},
		{
			name:  "comments between entries",
			input: "{\n  'x': 1,  # one\n  # skipped\n  'y': 2,\n}",
			key:   "y",
			want:  int64(2),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse("", []byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Raw[tt.key])
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"not a dict", "['a']"},
		{"unterminated string", "{'name': 'x}"},
		{"missing colon", "{'name' 'x'}"},
		{"unknown identifier", "{'name': foo}"},
		{"trailing content", "{'name': 'x'} extra"},
		{"unclosed dict", "{'name': 'x',"},
		{"depends not a list", "{'depends': 'base'}"},
		{"depends with non-string", "{'depends': ['base', 1]}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("broken/__manifest__.py", []byte(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "broken/__manifest__.py")
		})
	}
}

func TestParseErrorOffset(t *testing.T) {
	_, err := Parse("m.py", []byte("{'name': foo}"))

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 9, perr.Offset)
	assert.Equal(t, "m.py", perr.Path)
}

func TestAutoInstallAndInstallable(t *testing.T) {
	tests := []struct {
		name            string
		input           string
		wantAuto        bool
		wantInstallable bool
	}{
		{"defaults", `{}`, false, true},
		{"bool auto install", `{'auto_install': True}`, true, true},
		{"list auto install", `{'auto_install': ['sale']}`, true, true},
		{"empty list auto install", `{'auto_install': []}`, false, true},
		{"not installable", `{'installable': False}`, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse("", []byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.wantAuto, m.AutoInstall)
			assert.Equal(t, tt.wantInstallable, m.Installable)
		})
	}
}

func TestPythonDependencies(t *testing.T) {
	m, err := Parse("", []byte(`{'external_dependencies': {'python': ['lxml', 'requests', 'lxml']}}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"lxml", "requests"}, m.PythonDependencies)
}

func TestDependsDeduplicated(t *testing.T) {
	m, err := Parse("", []byte(`{'depends': ('base', 'web', 'base', '')}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"base", "web"}, m.Depends)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "__manifest__.py")
	require.NoError(t, os.WriteFile(path, []byte(saleManifest), 0644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Sales", m.Name)

	_, err = Load(filepath.Join(dir, "missing.py"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestTruthy(t *testing.T) {
	assert.False(t, Truthy(nil))
	assert.False(t, Truthy(""))
	assert.False(t, Truthy(int64(0)))
	assert.False(t, Truthy(0.0))
	assert.False(t, Truthy(map[string]any{}))
	assert.True(t, Truthy("x"))
	assert.True(t, Truthy(int64(2)))
	assert.True(t, Truthy([]any{false}))
}
