package importscan

import (
	"strings"

	"github.com/gauge-sh/tach/internal/modtree"
)

// FileDottedPath derives a file's import path by stripping the source
// root and file suffix, replacing path separators with ".", and collapsing
// a trailing package-init segment (spec.md §3 SourceRoot).
//
// isPackage reports whether relPath names an __init__.py/__init__.pyi: the
// returned path is then the package's own path, not a leaf module inside
// it, which matters for resolving a relative import written inside that
// file (see resolveRelative).
func FileDottedPath(relPath string) (path modtree.DottedPath, isPackage bool) {
	name := strings.TrimSuffix(relPath, ".pyi")
	name = strings.TrimSuffix(name, ".py")
	name = strings.ReplaceAll(name, "/", ".")

	trimmed := strings.TrimSuffix(name, ".__init__")
	if trimmed != name {
		return modtree.DottedPath(trimmed), true
	}
	if name == "__init__" {
		return "", true
	}
	return modtree.DottedPath(name), false
}
