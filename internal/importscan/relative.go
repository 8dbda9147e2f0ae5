package importscan

import (
	"strings"

	"github.com/gauge-sh/tach/internal/modtree"
)

// resolveRelative resolves a relative import (`from .x import y`, seen as
// leading dots plus an optional dotted tail) against the importing file's
// own dotted path, per spec.md §4.3 step 3.
//
// dots is the number of leading dots (one dot means "this package"); tail
// is whatever dotted name follows them, possibly empty. ok is false if the
// import walks past the project root (too many dots), in which case the
// caller emits a Configuration diagnostic rather than silently dropping it.
//
// isPackage is true when filePath is itself an __init__.py's package path
// (not a leaf module): one dot then means the package's own path, since an
// __init__.py's enclosing package is itself (Python's "one dot = current
// package" rule). For a leaf module, one dot means its enclosing directory,
// segs[:len(segs)-1].
func resolveRelative(filePath modtree.DottedPath, isPackage bool, dots int, tail string) (resolved modtree.DottedPath, ok bool) {
	segs := filePath.Segments()
	enclosing := segs
	if !isPackage {
		enclosing = segs[:len(segs)-1]
	}
	if dots-1 > len(enclosing) {
		return "", false
	}
	base := enclosing[:len(enclosing)-(dots-1)]

	baseStr := strings.Join(base, ".")
	if tail == "" {
		return modtree.DottedPath(baseStr), true
	}
	if baseStr == "" {
		return modtree.DottedPath(tail), true
	}
	return modtree.DottedPath(baseStr + "." + tail), true
}
