package boundary

import (
	"testing"

	"github.com/gauge-sh/tach/internal/importscan"
	"github.com/gauge-sh/tach/internal/modtree"
)

func buildTree(t *testing.T, modules map[string]*modtree.ModuleConfig) *modtree.ModuleTree {
	t.Helper()
	tree := modtree.NewModuleTree()
	for path, cfg := range modules {
		cfg.Path = modtree.DottedPath(path)
		tree.Insert(modtree.DottedPath(path), cfg)
	}
	return tree
}

func newResolver(t *testing.T, modules map[string]*modtree.ModuleConfig) *modtree.Resolver {
	t.Helper()
	tree := buildTree(t, modules)
	return modtree.NewResolver(tree, nil, nil, nil)
}

func TestSimpleViolation(t *testing.T) {
	a := &modtree.ModuleConfig{DependsOn: []modtree.Dependency{}, DependsOnSet: true}
	b := &modtree.ModuleConfig{}
	res := newResolver(t, map[string]*modtree.ModuleConfig{"a": a, "b": b})

	c := NewChecker(Options{Resolver: res, RootTreatment: modtree.RootAllow})
	im := importscan.Import{ModulePath: "b", Line: 1}
	diags, _ := c.CheckImport("a/x.py", a, "a.x", im)

	if len(diags) != 1 || diags[0].Kind != KindDependency || diags[0].Severity != SeverityError {
		t.Fatalf("expected one Dependency error, got %+v", diags)
	}
}

func TestAllowedDependency(t *testing.T) {
	a := &modtree.ModuleConfig{DependsOn: []modtree.Dependency{{Path: "b"}}, DependsOnSet: true}
	b := &modtree.ModuleConfig{}
	res := newResolver(t, map[string]*modtree.ModuleConfig{"a": a, "b": b})

	c := NewChecker(Options{Resolver: res, RootTreatment: modtree.RootAllow})
	im := importscan.Import{ModulePath: "b", Line: 1}
	diags, edge := c.CheckImport("a/x.py", a, "a.x", im)

	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %+v", diags)
	}
	if edge == nil || edge.Deprecated {
		t.Fatalf("expected a non-deprecated edge, got %+v", edge)
	}
}

func TestDeprecatedEdge(t *testing.T) {
	a := &modtree.ModuleConfig{DependsOn: []modtree.Dependency{{Path: "b", Deprecated: true}}, DependsOnSet: true}
	b := &modtree.ModuleConfig{}
	res := newResolver(t, map[string]*modtree.ModuleConfig{"a": a, "b": b})

	c := NewChecker(Options{Resolver: res, RootTreatment: modtree.RootAllow})
	im := importscan.Import{ModulePath: "b", Line: 1}
	diags, _ := c.CheckImport("a/x.py", a, "a.x", im)

	if len(diags) != 1 || diags[0].Kind != KindDeprecated || diags[0].Severity != SeverityWarning {
		t.Fatalf("expected one Deprecated warning, got %+v", diags)
	}
}

func TestStrictInterfaceMiss(t *testing.T) {
	b := &modtree.ModuleConfig{Strict: true}
	a := &modtree.ModuleConfig{}
	tree := buildTree(t, map[string]*modtree.ModuleConfig{"a": a, "b": b})
	resv := modtree.NewResolver(tree, nil, nil, []modtree.InterfaceConfig{
		{Expose: []string{"^API$"}, FromModules: []modtree.DottedPath{"b"}},
	})

	c := NewChecker(Options{Resolver: resv, RootTreatment: modtree.RootAllow})
	im := importscan.Import{ModulePath: "b.Internal", Line: 1}
	diags, _ := c.CheckImport("a/x.py", a, "a.x", im)

	if len(diags) != 1 || diags[0].Kind != KindInterface {
		t.Fatalf("expected one Interface error naming Internal, got %+v", diags)
	}
}

func TestTypeCheckingSuppressionIsCallerResponsibility(t *testing.T) {
	// The scanner (C3), not the checker, drops type-checking imports when
	// ignore_type_checking_imports is set; this just confirms a KindTypeChecking
	// import with no depends_on declared still behaves like any other import
	// once it reaches the checker (the opts.IgnoreTypeCheckingImports filter
	// runs inside importscan.Scan, not here).
	a := &modtree.ModuleConfig{DependsOn: []modtree.Dependency{}, DependsOnSet: true}
	b := &modtree.ModuleConfig{}
	res := newResolver(t, map[string]*modtree.ModuleConfig{"a": a, "b": b})

	c := NewChecker(Options{Resolver: res, RootTreatment: modtree.RootAllow})
	im := importscan.Import{ModulePath: "b", Line: 1, Kind: importscan.KindTypeChecking}
	diags, _ := c.CheckImport("a/x.py", a, "a.x", im)
	if len(diags) != 1 {
		t.Fatalf("expected the checker to still flag it, got %+v", diags)
	}
}

func TestCycleDetection(t *testing.T) {
	edges := []Edge{
		{From: "a", To: "b"},
		{From: "b", To: "a"},
	}
	diags := DetectCycles(edges)
	if len(diags) != 1 {
		t.Fatalf("expected one cycle diagnostic, got %+v", diags)
	}
	if diags[0].Severity != SeverityError {
		t.Fatalf("cycle diagnostic must be an error")
	}
}

func TestCycleDetectionIgnoresDeprecatedEdges(t *testing.T) {
	edges := []Edge{
		{From: "a", To: "b", Deprecated: true},
		{From: "b", To: "a"},
	}
	diags := DetectCycles(edges)
	if len(diags) != 0 {
		t.Fatalf("expected no cycle when one edge is deprecated, got %+v", diags)
	}
}

func TestIgnoreDirectiveSuppresses(t *testing.T) {
	a := &modtree.ModuleConfig{DependsOn: []modtree.Dependency{}, DependsOnSet: true}
	b := &modtree.ModuleConfig{}
	res := newResolver(t, map[string]*modtree.ModuleConfig{"a": a, "b": b})

	c := NewChecker(Options{Resolver: res, RootTreatment: modtree.RootAllow, UnusedIgnoreSeverity: SeverityWarning})

	im := importscan.Import{ModulePath: "b", Line: 1}
	diags, _ := c.CheckImport("a/x.py", a, "a.x", withIgnore(im))
	if len(diags) != 0 {
		t.Fatalf("expected suppression, got %+v", diags)
	}

	allowedIm := importscan.Import{ModulePath: "b", Line: 2}
	a.DependsOn = []modtree.Dependency{{Path: "b"}}
	diags, _ = c.CheckImport("a/x.py", a, "a.x", withIgnore(allowedIm))
	if len(diags) != 1 || diags[0].Kind != KindUnused {
		t.Fatalf("expected an unused-ignore warning, got %+v", diags)
	}
}

func TestDetectUnusedDependencies(t *testing.T) {
	a := &modtree.ModuleConfig{Path: "a", DependsOn: []modtree.Dependency{{Path: "b"}, {Path: "c"}}, DependsOnSet: true}
	edges := []Edge{{From: "a", To: "b"}}

	diags := DetectUnusedDependencies([]*modtree.ModuleConfig{a}, edges)
	if len(diags) != 1 || diags[0].ImportPath != "c" {
		t.Fatalf("expected one unused dependency on c, got %+v", diags)
	}
}

func withIgnore(im importscan.Import) importscan.Import {
	return im.WithIgnoreAppliedForTest()
}
