// Package importscan implements C3: a syntactic (not semantic) scanner that
// extracts every import reference from one Python source file, together
// with its line number and whether it sits inside a TYPE_CHECKING-guarded
// block.
//
// The scanner is purely syntactic: it walks a tree-sitter parse tree and
// never evaluates expressions, matching spec.md §4.3's contract that "any
// construct that only a real interpreter could resolve is either ignored or
// surfaced as a Configuration diagnostic — never silently guessed."
package importscan

import "github.com/gauge-sh/tach/internal/modtree"

// Kind discriminates how an Import was written.
type Kind int

const (
	KindRuntime Kind = iota
	KindTypeChecking
	KindString
)

// Import is one extracted import reference.
type Import struct {
	ModulePath modtree.DottedPath
	Line       int
	Kind       Kind
	Alias      modtree.DottedPath // "" if not aliased

	// Opaque is true for "from X import *": the checker treats it as a
	// single edge to X and, for strictness, as matching every exposed
	// symbol of X (spec.md §9).
	Opaque bool

	// ignoreApplied records that an attached ignore directive suppresses this
	// import; a directive with a symbol list sets it only for imports whose
	// leaf name is in that list. ignoreSymbols is not set by Scan.
	ignoreApplied bool
	ignoreSymbols []string
}

// IgnoreApplied reports whether a `tach-ignore` directive suppresses
// diagnostics for this import.
func (im Import) IgnoreApplied() bool { return im.ignoreApplied }

// WithIgnoreAppliedForTest returns a copy of im with ignoreApplied set,
// for boundary package tests that need to construct an already-suppressed
// Import without driving it through Scan.
func (im Import) WithIgnoreAppliedForTest() Import {
	im.ignoreApplied = true
	return im
}

// Severity mirrors boundary.Severity's three-valued scale. importscan
// can't import boundary (boundary imports importscan), so it carries its
// own copy that the engine translates at the layer boundary.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityOff
)

// ScanDiagnostic is the subset of a Configuration-kind problem the scanner
// itself can raise (unresolvable relative imports, parse failures, unknown
// or reason-less ignore directives). The boundary checker (C5) defines the
// full Diagnostic type; the scanner only needs to describe *where*,
// *what*, and *how seriously*. Severity defaults to Error, matching a
// parse failure or an unresolvable relative import — the two cases that
// were unconditionally Error before Severity existed.
type ScanDiagnostic struct {
	Line     int
	Message  string
	Severity Severity
}

// Result is everything Scan produces for one file.
type Result struct {
	Imports     []Import
	Diagnostics []ScanDiagnostic
}
