package importscan

import (
	"regexp"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/gauge-sh/tach/internal/modtree"
)

// Options controls the flags spec.md §4.3's contract names explicitly.
type Options struct {
	IgnoreTypeCheckingImports bool
	IncludeStringImports      bool
	// RequireIgnoreDirectiveReasons is "off" | "warn" | "error".
	RequireIgnoreDirectiveReasons string
	// UnusedIgnoreDirectiveSeverity controls whether a malformed tach-ignore
	// comment is reported, and at what severity, mirroring
	// rules.unused_ignore_directives (spec.md §4.3 step 6). A directive that
	// only lacks a reason is governed by RequireIgnoreDirectiveReasons.
	UnusedIgnoreDirectiveSeverity Severity
}

// stringImportCallees are the identifier/attribute names spec.md §4.3 step
// 5 means by "import_module or equivalent".
var stringImportCallees = map[string]bool{
	"import_module": true,
	"__import__":    true,
}

// dottedPathShapeRE matches a bare dotted identifier path, the "syntactic
// shape of a dotted import path" spec.md §4.3 step 5 requires before a
// string literal is treated as a String import.
var dottedPathShapeRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

var pythonLanguage = tree_sitter.NewLanguage(tree_sitter_python.Language())

// Scan parses src (the file at filePath's dotted import path) and returns
// every Import record in source order, plus any Configuration-kind
// diagnostics the scan itself raised.
//
// isPackage must be true when filePath came from an __init__.py/__init__.pyi
// (see FileDottedPath), so relative imports inside it resolve correctly.
//
// Scanning is linear in len(src) and allocates no state that outlives the
// call beyond the returned Result, per spec.md §4.3's performance contract.
func Scan(src []byte, filePath modtree.DottedPath, isPackage bool, opts Options) Result {
	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(pythonLanguage); err != nil {
		return Result{Diagnostics: []ScanDiagnostic{{Line: 1, Message: "internal error: " + err.Error()}}}
	}

	tree := parser.Parse(src, nil)
	if tree == nil {
		return Result{Diagnostics: []ScanDiagnostic{{Line: 1, Message: "failed to parse file"}}}
	}
	defer tree.Close()

	s := &scanState{src: src, filePath: filePath, isPackage: isPackage, opts: opts}
	root := tree.RootNode()

	if root.HasError() {
		if errNode := firstErrorNode(root); errNode != nil {
			s.diags = append(s.diags, ScanDiagnostic{
				Line:    line(errNode),
				Message: "syntax error: unable to parse statement",
			})
		}
	}

	walk(root, func(n *tree_sitter.Node) {
		switch n.Kind() {
		case "import_statement":
			s.scanImportStatement(n)
		case "import_from_statement":
			s.scanImportFromStatement(n)
		case "call":
			if s.opts.IncludeStringImports {
				s.scanStringImportCall(n)
			}
		}
	})

	return Result{Imports: s.imports, Diagnostics: s.diags}
}

type scanState struct {
	src       []byte
	filePath  modtree.DottedPath
	isPackage bool
	opts      Options
	imports   []Import
	diags     []ScanDiagnostic
}

func firstErrorNode(n *tree_sitter.Node) *tree_sitter.Node {
	if n.IsError() {
		return n
	}
	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		if found := firstErrorNode(n.Child(i)); found != nil {
			return found
		}
	}
	return nil
}

// scanImportStatement handles `import A.B.C [as X]`, one record per
// dotted_name/aliased_import child (spec.md §4.3 step 1).
func (s *scanState) scanImportStatement(n *tree_sitter.Node) {
	typeChecking := inTypeCheckingBlock(n, s.src)
	directive := s.attachedDirective(n)

	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "dotted_name":
			modPath := nodeText(child, s.src)
			s.emit(Import{
				ModulePath: modtree.DottedPath(modPath),
				Line:       line(n),
				Kind:       kindFor(typeChecking),
			}, directive, leafName(modPath))
		case "aliased_import":
			nameNode := child.ChildByFieldName("name")
			aliasNode := child.ChildByFieldName("alias")
			modPath := nodeText(nameNode, s.src)
			s.emit(Import{
				ModulePath: modtree.DottedPath(modPath),
				Line:       line(n),
				Kind:       kindFor(typeChecking),
				Alias:      modtree.DottedPath(nodeText(aliasNode, s.src)),
			}, directive, leafName(modPath))
		}
	}
}

// scanImportFromStatement handles `from A.B import c, d as e`, `from . import
// x`, and `from A.B import *` (spec.md §4.3 steps 2-3).
func (s *scanState) scanImportFromStatement(n *tree_sitter.Node) {
	typeChecking := inTypeCheckingBlock(n, s.src)
	directive := s.attachedDirective(n)

	modNode := n.ChildByFieldName("module_name")
	base, resolvedOK := s.resolveModuleNameNode(modNode)
	if !resolvedOK {
		s.diags = append(s.diags, ScanDiagnostic{
			Line:    line(n),
			Message: "relative import has too many leading dots for this file's location",
		})
		return
	}

	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "wildcard_import":
			s.emit(Import{
				ModulePath: base,
				Line:       line(n),
				Kind:       kindFor(typeChecking),
				Opaque:     true,
			}, directive, "*")
		case "dotted_name":
			if modNode != nil && child.StartByte() == modNode.StartByte() && child.EndByte() == modNode.EndByte() {
				continue
			}
			name := nodeText(child, s.src)
			s.emit(Import{
				ModulePath: joinDotted(base, name),
				Line:       line(n),
				Kind:       kindFor(typeChecking),
			}, directive, name)
		case "aliased_import":
			nameNode := child.ChildByFieldName("name")
			aliasNode := child.ChildByFieldName("alias")
			name := nodeText(nameNode, s.src)
			s.emit(Import{
				ModulePath: joinDotted(base, name),
				Line:       line(n),
				Kind:       kindFor(typeChecking),
				Alias:      modtree.DottedPath(nodeText(aliasNode, s.src)),
			}, directive, name)
		}
	}
}

// resolveModuleNameNode returns the absolute base module path named by an
// import_from_statement's module_name field, resolving relative_import
// nodes against the file's own path.
func (s *scanState) resolveModuleNameNode(modNode *tree_sitter.Node) (modtree.DottedPath, bool) {
	if modNode == nil {
		return "", true
	}
	if modNode.Kind() != "relative_import" {
		return modtree.DottedPath(nodeText(modNode, s.src)), true
	}

	text := nodeText(modNode, s.src)
	dots := 0
	for dots < len(text) && text[dots] == '.' {
		dots++
	}
	return resolveRelative(s.filePath, s.isPackage, dots, text[dots:])
}

// scanStringImportCall implements spec.md §4.3 step 5: a call to
// import_module/__import__ (or an attribute access ending in one of those
// names, e.g. importlib.import_module) whose first string-literal argument
// has the syntactic shape of a dotted path is emitted as a String import.
func (s *scanState) scanStringImportCall(n *tree_sitter.Node) {
	fn := n.ChildByFieldName("function")
	if fn == nil || !stringImportCallees[callTargetName(fn, s.src)] {
		return
	}
	args := n.ChildByFieldName("arguments")
	if args == nil {
		return
	}

	count := args.ChildCount()
	for i := uint(0); i < count; i++ {
		arg := args.Child(i)
		if arg == nil {
			continue
		}
		val, ok := stringLiteralValue(arg, s.src)
		if !ok {
			continue
		}
		if dottedPathShapeRE.MatchString(val) {
			directive := s.attachedDirective(n)
			s.emit(Import{
				ModulePath: modtree.DottedPath(val),
				Line:       line(n),
				Kind:       KindString,
			}, directive, leafName(val))
		}
		return
	}
}

// callTargetName returns the identifier a call expression's function
// resolves to: the bare name for `f(...)`, or the rightmost attribute name
// for `obj.f(...)`.
func callTargetName(fn *tree_sitter.Node, src []byte) string {
	switch fn.Kind() {
	case "identifier":
		return nodeText(fn, src)
	case "attribute":
		if attr := fn.ChildByFieldName("attribute"); attr != nil {
			return nodeText(attr, src)
		}
	}
	return ""
}

// stringLiteralValue extracts a plain string literal's value, or ok=false
// for anything with an f-string interpolation (not a constant, so never a
// dotted-path candidate).
func stringLiteralValue(n *tree_sitter.Node, src []byte) (string, bool) {
	if n.Kind() != "string" {
		return "", false
	}

	var sb strings.Builder
	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		switch c := n.Child(i); c.Kind() {
		case "string_content", "escape_sequence":
			sb.WriteString(nodeText(c, src))
		case "interpolation":
			return "", false
		}
	}
	if sb.Len() > 0 {
		return sb.String(), true
	}

	// Older grammars may not expose string_content as a distinct node;
	// strip the prefix letters and matching quote characters by hand.
	text := nodeText(n, src)
	i := 0
	for i < len(text) && strings.ContainsAny(text[i:i+1], "rRbBuUfF") {
		i++
	}
	text = text[i:]
	for _, q := range []string{`"""`, "'''", `"`, "'"} {
		if len(text) >= 2*len(q) && strings.HasPrefix(text, q) && strings.HasSuffix(text, q) {
			return text[len(q) : len(text)-len(q)], true
		}
	}
	return "", false
}

func (s *scanState) emit(im Import, directive *ignoreDirective, symbolName string) {
	if directive != nil && directive.appliesTo(symbolName) {
		im.ignoreApplied = true
	}
	if im.Kind == KindTypeChecking && s.opts.IgnoreTypeCheckingImports {
		return
	}
	s.imports = append(s.imports, im)
}

// attachedDirective finds an ignore-directive comment attached to the
// import statement n: a preceding-line comment takes effect unless a
// trailing same-line comment is also present, in which case the trailing
// one wins (see SPEC_FULL.md §4.3 supplement).
func (s *scanState) attachedDirective(n *tree_sitter.Node) *ignoreDirective {
	if trailing := trailingComment(n); trailing != nil {
		if d, ok := parseIgnoreDirective(nodeText(trailing, s.src)); ok {
			s.checkDirective(d, line(trailing))
			return &d
		}
	}
	if preceding := precedingComment(n); preceding != nil {
		if d, ok := parseIgnoreDirective(nodeText(preceding, s.src)); ok {
			s.checkDirective(d, line(preceding))
			return &d
		}
	}
	return nil
}

// checkDirective raises the two Configuration diagnostics a tach-ignore
// comment can earn: an unknown/malformed directive (spec.md §4.3 step 6,
// severity per rules.unused_ignore_directives) and, separately, a directive
// with no reason when rules.require_ignore_directive_reasons demands one
// (spec.md §8 scenario 8).
func (s *scanState) checkDirective(d ignoreDirective, ln int) {
	if d.malformed {
		if s.opts.UnusedIgnoreDirectiveSeverity != SeverityOff {
			s.diags = append(s.diags, ScanDiagnostic{
				Line:     ln,
				Message:  "unrecognized tach-ignore directive",
				Severity: s.opts.UnusedIgnoreDirectiveSeverity,
			})
		}
		return
	}

	if d.reason != "" {
		return
	}
	switch s.opts.RequireIgnoreDirectiveReasons {
	case "warn":
		s.diags = append(s.diags, ScanDiagnostic{
			Line:     ln,
			Message:  "tach-ignore directive is missing a reason",
			Severity: SeverityWarning,
		})
	case "error":
		s.diags = append(s.diags, ScanDiagnostic{
			Line:     ln,
			Message:  "tach-ignore directive is missing a reason",
			Severity: SeverityError,
		})
	}
}

func kindFor(typeChecking bool) Kind {
	if typeChecking {
		return KindTypeChecking
	}
	return KindRuntime
}

func leafName(dotted string) string {
	idx := strings.LastIndexByte(dotted, '.')
	if idx < 0 {
		return dotted
	}
	return dotted[idx+1:]
}

func joinDotted(base modtree.DottedPath, name string) modtree.DottedPath {
	if base == "" {
		return modtree.DottedPath(name)
	}
	return modtree.DottedPath(string(base) + "." + name)
}
