package importscan

import (
	"testing"

	"github.com/gauge-sh/tach/internal/modtree"
)

func findImport(t *testing.T, imports []Import, modPath string) Import {
	t.Helper()
	for _, im := range imports {
		if string(im.ModulePath) == modPath {
			return im
		}
	}
	t.Fatalf("no import of %q found in %+v", modPath, imports)
	return Import{}
}

func TestScanAbsoluteImport(t *testing.T) {
	src := []byte("import a.b.c\n")
	res := Scan(src, "pkg.mod", false, Options{})

	if len(res.Diagnostics) != 0 {
		t.Fatalf("expected no diagnostics, got %+v", res.Diagnostics)
	}
	im := findImport(t, res.Imports, "a.b.c")
	if im.Kind != KindRuntime || im.Line != 1 {
		t.Fatalf("unexpected import record: %+v", im)
	}
}

func TestScanAliasedImport(t *testing.T) {
	src := []byte("import a.b as ab\n")
	res := Scan(src, "pkg.mod", false, Options{})

	im := findImport(t, res.Imports, "a.b")
	if im.Alias != "ab" {
		t.Fatalf("expected alias ab, got %+v", im)
	}
}

func TestScanFromImportWithAlias(t *testing.T) {
	src := []byte("from a.b import c, d as e\n")
	res := Scan(src, "pkg.mod", false, Options{})

	c := findImport(t, res.Imports, "a.b.c")
	if c.Alias != "" {
		t.Fatalf("c should have no alias, got %+v", c)
	}
	d := findImport(t, res.Imports, "a.b.d")
	if d.Alias != "e" {
		t.Fatalf("expected alias e, got %+v", d)
	}
}

func TestScanWildcardImport(t *testing.T) {
	src := []byte("from a.b import *\n")
	res := Scan(src, "pkg.mod", false, Options{})

	if len(res.Imports) != 1 {
		t.Fatalf("expected one import record, got %+v", res.Imports)
	}
	im := res.Imports[0]
	if !im.Opaque || string(im.ModulePath) != "a.b" {
		t.Fatalf("expected opaque import of a.b, got %+v", im)
	}
}

func TestScanRelativeImportFromLeafModule(t *testing.T) {
	// pkg/sub/leaf.py, one dot means "pkg.sub" (leaf's own package).
	src := []byte("from . import x\n")
	res := Scan(src, "pkg.sub.leaf", false, Options{})

	im := findImport(t, res.Imports, "pkg.sub.x")
	if im.Line != 1 {
		t.Fatalf("unexpected import record: %+v", im)
	}
}

func TestScanRelativeImportFromPackageInit(t *testing.T) {
	// pkg/sub/__init__.py: FileDottedPath collapses this to "pkg.sub"
	// itself (isPackage=true), not a leaf inside it. One dot means
	// "pkg.sub" (its own package), matching Python's "one dot = current
	// package" rule for a package's own __init__.py.
	src := []byte("from . import x\n")
	res := Scan(src, "pkg.sub", true, Options{})

	im := findImport(t, res.Imports, "pkg.sub.x")
	if im.Line != 1 {
		t.Fatalf("expected relative import inside __init__.py to resolve to pkg.sub.x, got %+v", res.Imports)
	}
}

func TestScanRelativeImportTooManyDots(t *testing.T) {
	src := []byte("from ... import x\n")
	res := Scan(src, "pkg.leaf", false, Options{})

	if len(res.Diagnostics) != 1 {
		t.Fatalf("expected one Configuration diagnostic for walking past the root, got %+v", res.Diagnostics)
	}
}

func TestScanTypeCheckingBlock(t *testing.T) {
	src := []byte("from typing import TYPE_CHECKING\nif TYPE_CHECKING:\n    import a.b\n")
	res := Scan(src, "pkg.mod", false, Options{})

	im := findImport(t, res.Imports, "a.b")
	if im.Kind != KindTypeChecking {
		t.Fatalf("expected a TYPE_CHECKING import, got %+v", im)
	}
}

func TestScanTypeCheckingImportSuppressed(t *testing.T) {
	src := []byte("from typing import TYPE_CHECKING\nif TYPE_CHECKING:\n    import a.b\n")
	res := Scan(src, "pkg.mod", false, Options{IgnoreTypeCheckingImports: true})

	for _, im := range res.Imports {
		if string(im.ModulePath) == "a.b" {
			t.Fatalf("expected the TYPE_CHECKING import to be dropped, got %+v", res.Imports)
		}
	}
}

func TestScanIgnoreDirectiveSuppressesImport(t *testing.T) {
	src := []byte("import a.b  # tach-ignore(no reason given)\n")
	res := Scan(src, "pkg.mod", false, Options{})

	im := findImport(t, res.Imports, "a.b")
	if !im.IgnoreApplied() {
		t.Fatalf("expected ignore directive to apply, got %+v", im)
	}
}

func TestScanMalformedDirectiveDefaultSeverity(t *testing.T) {
	src := []byte("import a.b  # tach-ignore(unterminated\n")
	res := Scan(src, "pkg.mod", false, Options{})

	if len(res.Diagnostics) != 1 {
		t.Fatalf("expected one diagnostic for the malformed directive, got %+v", res.Diagnostics)
	}
	if res.Diagnostics[0].Severity != SeverityError {
		t.Fatalf("expected default severity Error, got %+v", res.Diagnostics[0])
	}
}

func TestScanMalformedDirectiveOffSuppressesDiagnostic(t *testing.T) {
	src := []byte("import a.b  # tach-ignore(unterminated\n")
	res := Scan(src, "pkg.mod", false, Options{UnusedIgnoreDirectiveSeverity: SeverityOff})

	if len(res.Diagnostics) != 0 {
		t.Fatalf("expected no diagnostics with severity Off, got %+v", res.Diagnostics)
	}
}

func TestScanRequireReasonOffIsSilent(t *testing.T) {
	src := []byte("import a.b  # tach-ignore\n")
	res := Scan(src, "pkg.mod", false, Options{RequireIgnoreDirectiveReasons: "off"})

	if len(res.Diagnostics) != 0 {
		t.Fatalf("expected no diagnostics when require_ignore_directive_reasons is off, got %+v", res.Diagnostics)
	}
}

func TestScanRequireReasonWarnWithoutReason(t *testing.T) {
	src := []byte("import a.b  # tach-ignore\n")
	res := Scan(src, "pkg.mod", false, Options{RequireIgnoreDirectiveReasons: "warn"})

	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Severity != SeverityWarning {
		t.Fatalf("expected one Warning diagnostic, got %+v", res.Diagnostics)
	}
}

func TestScanRequireReasonErrorWithoutReason(t *testing.T) {
	src := []byte("import a.b  # tach-ignore\n")
	res := Scan(src, "pkg.mod", false, Options{RequireIgnoreDirectiveReasons: "error"})

	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Severity != SeverityError {
		t.Fatalf("expected one Error diagnostic, got %+v", res.Diagnostics)
	}
}

func TestScanRequireReasonSatisfiedIsSilent(t *testing.T) {
	src := []byte("import a.b  # tach-ignore(needed for compatibility)\n")
	res := Scan(src, "pkg.mod", false, Options{RequireIgnoreDirectiveReasons: "error"})

	if len(res.Diagnostics) != 0 {
		t.Fatalf("expected no diagnostics once a reason is given, got %+v", res.Diagnostics)
	}
}

func TestScanStringImport(t *testing.T) {
	src := []byte("importlib.import_module(\"a.b.c\")\n")
	res := Scan(src, "pkg.mod", false, Options{IncludeStringImports: true})

	im := findImport(t, res.Imports, "a.b.c")
	if im.Kind != KindString {
		t.Fatalf("expected a String import, got %+v", im)
	}
}

func TestScanStringImportBareCallee(t *testing.T) {
	src := []byte("__import__(\"a.b\")\n")
	res := Scan(src, "pkg.mod", false, Options{IncludeStringImports: true})

	im := findImport(t, res.Imports, "a.b")
	if im.Kind != KindString {
		t.Fatalf("expected a String import, got %+v", im)
	}
}

func TestScanStringImportDisabledByDefault(t *testing.T) {
	src := []byte("importlib.import_module(\"a.b.c\")\n")
	res := Scan(src, "pkg.mod", false, Options{})

	for _, im := range res.Imports {
		if string(im.ModulePath) == "a.b.c" {
			t.Fatalf("expected no String import without IncludeStringImports, got %+v", res.Imports)
		}
	}
}

func TestScanStringImportRejectsNonDottedShape(t *testing.T) {
	src := []byte("import_module(\"not a module path!\")\n")
	res := Scan(src, "pkg.mod", false, Options{IncludeStringImports: true})

	if len(res.Imports) != 0 {
		t.Fatalf("expected no import for a non-dotted-shaped string literal, got %+v", res.Imports)
	}
}

func TestScanStringImportIgnoresOtherCalls(t *testing.T) {
	src := []byte("some_other_call(\"a.b.c\")\n")
	res := Scan(src, "pkg.mod", false, Options{IncludeStringImports: true})

	if len(res.Imports) != 0 {
		t.Fatalf("expected no import from an unrelated call, got %+v", res.Imports)
	}
}

func TestFileDottedPathInit(t *testing.T) {
	path, isPackage := FileDottedPath("pkg/sub/__init__.py")
	if path != modtree.DottedPath("pkg.sub") || !isPackage {
		t.Fatalf("expected pkg.sub as a package, got %q isPackage=%v", path, isPackage)
	}
}

func TestFileDottedPathRootInit(t *testing.T) {
	path, isPackage := FileDottedPath("__init__.py")
	if path != modtree.DottedPath("") || !isPackage {
		t.Fatalf("expected empty root package, got %q isPackage=%v", path, isPackage)
	}
}

func TestFileDottedPathLeafModule(t *testing.T) {
	path, isPackage := FileDottedPath("pkg/sub/leaf.py")
	if path != modtree.DottedPath("pkg.sub.leaf") || isPackage {
		t.Fatalf("expected leaf module, got %q isPackage=%v", path, isPackage)
	}
}
