package modtree

import (
	"regexp"
	"strings"
	"sync"
)

// ResolutionKind discriminates the variants of Resolution.
type ResolutionKind int

const (
	KindInternal ResolutionKind = iota
	KindExternal
	KindRoot
	KindUnknown
)

// Resolution is the outcome of resolving one dotted import path.
type Resolution struct {
	Kind ResolutionKind

	// Set when Kind == KindInternal.
	Module *ModuleConfig
	Exact  bool

	// Set when Kind == KindExternal.
	Package string
}

// Resolver is the immutable, concurrency-safe product of C4: a module trie
// plus an external-package index and an interface index, built once per
// project run.
type Resolver struct {
	tree *ModuleTree

	mu          sync.RWMutex
	externals   map[string]string // first segment -> package name
	rename      map[string]string // distribution name -> import name
	interfaces  map[DottedPath][]*regexp.Regexp
	rootAllowed bool
}

// NewResolver builds a Resolver from a module tree, the project's external
// package/stdlib index, an optional rename table, and the interface set.
func NewResolver(tree *ModuleTree, externals map[string]string, rename map[string]string, interfaces []InterfaceConfig) *Resolver {
	r := &Resolver{
		tree:       tree,
		externals:  externals,
		rename:     rename,
		interfaces: make(map[DottedPath][]*regexp.Regexp),
	}
	for _, ic := range interfaces {
		var patterns []*regexp.Regexp
		for _, pat := range ic.Expose {
			if re, err := regexp.Compile(pat); err == nil {
				patterns = append(patterns, re)
			}
		}
		for _, from := range ic.FromModules {
			r.interfaces[from] = append(r.interfaces[from], patterns...)
		}
	}
	return r
}

// Resolve classifies a dotted import path as exactly one of Internal,
// External, Root, or Unknown (the resolver's totality property, §8).
func (r *Resolver) Resolve(p DottedPath, rootTreatment RootModuleTreatment) Resolution {
	if cfg, exact, ok := r.tree.NearestAncestor(p); ok {
		return Resolution{Kind: KindInternal, Module: cfg, Exact: exact}
	}

	first := p.Segments()[0]
	r.mu.RLock()
	pkg, isExternal := r.externals[first]
	r.mu.RUnlock()
	if isExternal {
		if renamed, ok := r.rename[pkg]; ok {
			pkg = renamed
		}
		return Resolution{Kind: KindExternal, Package: pkg}
	}

	if rootTreatment != RootForbid {
		return Resolution{Kind: KindRoot}
	}
	return Resolution{Kind: KindUnknown}
}

// ExposedPatterns returns the union of expose-regex patterns declared by
// interfaces whose from_modules contains module.
func (r *Resolver) ExposedPatterns(module DottedPath) []*regexp.Regexp {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.interfaces[module]
}

// MatchesAnyExposed reports whether name satisfies at least one exposed
// pattern for module.
func (r *Resolver) MatchesAnyExposed(module DottedPath, name string) bool {
	for _, re := range r.ExposedPatterns(module) {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// VisibilityAllows reports whether importerPath matches one of the glob
// patterns in visibility (nil/empty visibility means everyone is allowed).
func VisibilityAllows(visibility []string, importerPath DottedPath) bool {
	if len(visibility) == 0 {
		return true
	}
	for _, pat := range visibility {
		if globMatchDotted(pat, string(importerPath)) {
			return true
		}
	}
	return false
}

// globMatchDotted matches a dotted-path glob pattern ("*" = one segment run,
// "**" = any number of segments) against a dotted path.
func globMatchDotted(pattern, path string) bool {
	pp := strings.Split(pattern, ".")
	ps := strings.Split(path, ".")
	return matchSegments(pp, ps)
}

func matchSegments(pattern, path []string) bool {
	if len(pattern) == 0 {
		return len(path) == 0
	}
	head := pattern[0]
	if head == "**" {
		if len(pattern) == 1 {
			return true
		}
		for i := 0; i <= len(path); i++ {
			if matchSegments(pattern[1:], path[i:]) {
				return true
			}
		}
		return false
	}
	if len(path) == 0 {
		return false
	}
	if !segmentMatch(head, path[0]) {
		return false
	}
	return matchSegments(pattern[1:], path[1:])
}

func segmentMatch(pat, seg string) bool {
	if pat == "*" {
		return true
	}
	if !strings.Contains(pat, "*") {
		return pat == seg
	}
	re := "^" + strings.ReplaceAll(regexp.QuoteMeta(pat), `\*`, ".*") + "$"
	matched, _ := regexp.MatchString(re, seg)
	return matched
}
