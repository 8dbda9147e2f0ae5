// Package boundary implements C5: the rule engine that classifies every
// import as allowed, disallowed, or deprecated under the project's
// dependency, visibility, layer, interface, and root-module policies.
package boundary

import (
	"sort"

	"github.com/gauge-sh/tach/internal/modtree"
)

// Severity is how seriously a Diagnostic should be taken.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityOff
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "off"
	}
}

// Kind discriminates the four diagnostic families spec.md §7 names.
type Kind int

const (
	KindConfiguration Kind = iota
	KindDependency
	KindInterface
	KindDeprecated
	KindUnused
)

// Diagnostic is a single structured violation or warning.
type Diagnostic struct {
	File       string
	Line       int
	ImportPath modtree.DottedPath
	Kind       Kind
	Severity   Severity
	Message    string
}

// Sort orders diagnostics by (file, line, import path, severity) and removes
// exact duplicates, per spec.md §4.5's "Ordering and determinism" clause.
func Sort(ds []Diagnostic) []Diagnostic {
	sort.Slice(ds, func(i, j int) bool {
		a, b := ds[i], ds[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.ImportPath != b.ImportPath {
			return a.ImportPath < b.ImportPath
		}
		return a.Severity < b.Severity
	})

	out := ds[:0]
	for i, d := range ds {
		if i > 0 && d == out[len(out)-1] {
			continue
		}
		out = append(out, d)
	}
	return out
}

// HasError reports whether any diagnostic in ds is an error-severity one
// (drives the check command's exit code).
func HasError(ds []Diagnostic) bool {
	for _, d := range ds {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
