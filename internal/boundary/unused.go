package boundary

import (
	"fmt"

	"github.com/gauge-sh/tach/internal/modtree"
)

// DetectUnusedDependencies implements `check --exact` (spec.md §4.5): every
// declared depends_on edge not exercised by at least one real import is
// reported. edges is every Edge CheckImport returned across the whole run,
// deprecated or not — a deprecated edge that's never really used is still
// unused.
func DetectUnusedDependencies(modules []*modtree.ModuleConfig, edges []Edge) []Diagnostic {
	used := make(map[[2]modtree.DottedPath]bool, len(edges))
	for _, e := range edges {
		used[[2]modtree.DottedPath{e.From, e.To}] = true
	}

	var diags []Diagnostic
	for _, m := range modules {
		if !m.HasDependsOn() {
			continue
		}
		for _, dep := range m.DependsOn {
			if used[[2]modtree.DottedPath{m.Path, dep.Path}] {
				continue
			}
			diags = append(diags, Diagnostic{
				Kind:       KindUnused,
				Severity:   SeverityError,
				ImportPath: dep.Path,
				Message:    fmt.Sprintf("module %q declares a dependency on %q that no import uses", m.Path, dep.Path),
			})
		}
	}
	return diags
}
