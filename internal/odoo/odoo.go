package odoo

import (
	"path/filepath"
	"strings"
)

// ManifestNames are the manifest file names Odoo recognizes, in lookup order
var ManifestNames = []string{
	"__manifest__.py",
	"__openerp__.py",
}

// NativeMarker identifies namespaces vendored from the Odoo repositories
// (community and enterprise live under vendor/odoo).
const NativeMarker = "vendor/odoo"

// IsNative reports whether a namespace path belongs to Odoo itself. The
// marker must match whole path components, so pass the namespace relative
// to the workspace root: vendor/odoo/cc matches, vendor/odoo-project does not.
func IsNative(namespace string) bool {
	if namespace == "" {
		return false
	}
	p := "/" + strings.Trim(filepath.ToSlash(namespace), "/") + "/"
	return strings.Contains(p, "/"+NativeMarker+"/")
}
