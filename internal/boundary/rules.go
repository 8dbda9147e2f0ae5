package boundary

import (
	"fmt"

	"github.com/gauge-sh/tach/internal/importscan"
	"github.com/gauge-sh/tach/internal/modtree"
)

// Options configures the rule engine's project-wide policies — everything
// that isn't per-module configuration (spec.md §4.5 steps a-h).
type Options struct {
	Resolver      *modtree.Resolver
	Layers        []string // ordered highest-first
	RootTreatment modtree.RootModuleTreatment

	// ExternalExclude is the project-wide external.exclude allowlist used
	// when a module declares neither depends_on_external nor
	// cannot_depend_on_external (step g).
	ExternalExclude []string

	// UnusedIgnoreSeverity governs rules.unused_ignore_directives.
	UnusedIgnoreSeverity Severity

	// SkipDependencies/SkipInterfaces opt out of steps c-e and f
	// respectively, driven by `check --dependencies=false`/`--interfaces=false`.
	SkipDependencies bool
	SkipInterfaces   bool
}

// Checker applies the per-import rule chain against one immutable Options
// set. It holds no mutable state and is safe for concurrent use across the
// worker pool described in SPEC_FULL.md §4.5.
type Checker struct {
	opts Options
}

func NewChecker(opts Options) *Checker {
	return &Checker{opts: opts}
}

// Edge is one resolved internal dependency, recorded regardless of whether
// it passed the rule chain, for the circular-dependency graph.
type Edge struct {
	From, To   modtree.DottedPath
	Deprecated bool
}

// CheckImport applies spec.md §4.5 steps a-h to one (file, Import) pair.
// importerCfg is nil when the file belongs to no declared module (root
// code); importerPath is the file's own derived dotted path. The returned
// edge is non-nil only when the import resolved to a distinct internal
// module.
func (c *Checker) CheckImport(file string, importerCfg *modtree.ModuleConfig, importerPath modtree.DottedPath, im importscan.Import) ([]Diagnostic, *Edge) {
	if importerCfg != nil && importerCfg.Unchecked {
		return nil, nil
	}

	var diags []Diagnostic
	wouldEmit := false
	suppressed := im.IgnoreApplied()

	add := func(kind Kind, sev Severity, format string, args ...interface{}) {
		wouldEmit = true
		if suppressed {
			return
		}
		diags = append(diags, Diagnostic{
			File:       file,
			Line:       im.Line,
			ImportPath: im.ModulePath,
			Kind:       kind,
			Severity:   sev,
			Message:    fmt.Sprintf(format, args...),
		})
	}

	res := c.opts.Resolver.Resolve(im.ModulePath, c.opts.RootTreatment)

	var edge *Edge
	switch res.Kind {
	case modtree.KindInternal:
		edge = c.checkInternal(add, importerCfg, importerPath, res, im)
	case modtree.KindExternal:
		c.checkExternal(add, importerCfg, res)
	case modtree.KindRoot:
		c.checkRoot(add, importerCfg)
	case modtree.KindUnknown:
		add(KindConfiguration, SeverityError, "cannot resolve import %q", im.ModulePath)
	}

	if !wouldEmit && suppressed && c.opts.UnusedIgnoreSeverity != SeverityOff {
		diags = append(diags, Diagnostic{
			File:       file,
			Line:       im.Line,
			ImportPath: im.ModulePath,
			Kind:       KindUnused,
			Severity:   c.opts.UnusedIgnoreSeverity,
			Message:    fmt.Sprintf("unused ignore directive for %q", im.ModulePath),
		})
	}

	return diags, edge
}

type addFunc func(kind Kind, sev Severity, format string, args ...interface{})

func (c *Checker) checkInternal(add addFunc, I *modtree.ModuleConfig, importerPath modtree.DottedPath, res modtree.Resolution, im importscan.Import) *Edge {
	T := res.Module

	var edge *Edge
	if I != nil && T.Path != I.Path {
		_, deprecated := I.DependsOnPath(T.Path)
		edge = &Edge{From: I.Path, To: T.Path, Deprecated: deprecated}
	}

	// a. utility bypass
	if T.Utility {
		return edge
	}

	// b. same-module
	if I != nil && T.Path == I.Path {
		return edge
	}

	// c. visibility
	if !c.opts.SkipDependencies && len(T.Visibility) > 0 && !modtree.VisibilityAllows(T.Visibility, importerPathOf(I)) {
		add(KindDependency, SeverityError, "module %q is not permitted to see %q", importerPathOf(I), T.Path)
		return edge
	}

	// d. layer
	if !c.opts.SkipDependencies && I != nil && I.Layer != "" && T.Layer != "" {
		ti, tok := layerRank(c.opts.Layers, T.Layer)
		ii, iok := layerRank(c.opts.Layers, I.Layer)
		if tok && iok {
			if ti < ii {
				add(KindDependency, SeverityError, "layer %q is above %q", T.Layer, I.Layer)
				return edge
			}
			if ti == ii {
				if found, _ := I.DependsOnPath(T.Path); !found {
					add(KindDependency, SeverityError, "Cannot import %q. Module %q cannot depend on %q.", T.Path, I.Path, T.Path)
					return edge
				}
			}
		}
	}

	// e. dependency list (cannot_depend_on takes precedence)
	if !c.opts.SkipDependencies && I != nil {
		if I.Forbids(T.Path) {
			add(KindDependency, SeverityError, "Cannot import %q. Module %q cannot depend on %q.", T.Path, I.Path, T.Path)
			return edge
		}
		if I.HasDependsOn() {
			found, deprecated := I.DependsOnPath(T.Path)
			if !found {
				add(KindDependency, SeverityError, "Cannot import %q. Module %q cannot depend on %q.", T.Path, I.Path, T.Path)
				return edge
			}
			if deprecated {
				add(KindDeprecated, SeverityWarning, "import of %q via %q is deprecated", T.Path, I.Path)
			}
		}
	}

	// f. interface strictness
	if !c.opts.SkipInterfaces && T.Strict && !res.Exact {
		leaf := importLeafAgainst(T.Path, im)
		if leaf != "" && !c.opts.Resolver.MatchesAnyExposed(T.Path, leaf) {
			add(KindInterface, SeverityError, "module %q is strict; %q is not exposed", T.Path, leaf)
		}
	}

	return edge
}

// importLeafAgainst returns the symbol name im references relative to
// module T, by stripping T's own dotted path off the front of the import's
// full module path, or "" when there is no single symbol to check: the
// import names T itself (plain `import T`) rather than a member of it, or it
// is a star import, which counts as matching every exposed symbol.
func importLeafAgainst(T modtree.DottedPath, im importscan.Import) string {
	if im.Opaque {
		return ""
	}
	full := string(im.ModulePath)
	prefix := string(T) + "."
	if len(full) <= len(prefix) || full[:len(prefix)] != prefix {
		return ""
	}
	return full[len(prefix):]
}

func (c *Checker) checkExternal(add addFunc, I *modtree.ModuleConfig, res modtree.Resolution) {
	if I != nil {
		if containsStr(I.CannotDependOnExternal, res.Package) {
			add(KindDependency, SeverityError, "module %q cannot depend on external package %q", I.Path, res.Package)
			return
		}
		if I.DependsOnExternalSet {
			if !containsStr(I.DependsOnExternal, res.Package) {
				add(KindDependency, SeverityError, "module %q does not declare a dependency on external package %q", I.Path, res.Package)
			}
			return
		}
	}
	if len(c.opts.ExternalExclude) > 0 && !containsStr(c.opts.ExternalExclude, res.Package) {
		add(KindDependency, SeverityError, "external package %q is not in the project allowlist", res.Package)
	}
}

func (c *Checker) checkRoot(add addFunc, I *modtree.ModuleConfig) {
	switch c.opts.RootTreatment {
	case modtree.RootForbid:
		add(KindDependency, SeverityError, "module %q cannot depend on root module %s", importerPathOf(I), modtree.RootSentinel)
	case modtree.RootIgnore:
		return
	case modtree.RootDependenciesOnly:
		return
	case modtree.RootAllow:
		if I != nil && I.HasDependsOn() {
			if found, _ := I.DependsOnPath(modtree.RootSentinel); !found {
				add(KindDependency, SeverityError, "module %q must declare a dependency on %s", I.Path, modtree.RootSentinel)
			}
		}
	}
}

func importerPathOf(I *modtree.ModuleConfig) modtree.DottedPath {
	if I == nil {
		return modtree.RootSentinel
	}
	return I.Path
}

func layerRank(layers []string, name string) (int, bool) {
	for i, l := range layers {
		if l == name {
			return i, true
		}
	}
	return -1, false
}

func containsStr(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
