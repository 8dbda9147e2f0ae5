// Package modtree builds the project's module table and resolves dotted
// import paths against it.
package modtree

import "strings"

// DottedPath is an ordered sequence of identifier segments separated by ".".
type DottedPath string

// RootSentinel is the module path that denotes the catch-all module for code
// outside every declared module.
const RootSentinel DottedPath = "<root>"

// Segments splits a DottedPath into its component identifiers.
func (p DottedPath) Segments() []string {
	if p == "" {
		return nil
	}
	return strings.Split(string(p), ".")
}

// IsAncestorOf reports whether p's segments are a strict prefix of other's.
func (p DottedPath) IsAncestorOf(other DottedPath) bool {
	if p == other || p == "" {
		return false
	}
	ps, os := p.Segments(), other.Segments()
	if len(ps) >= len(os) {
		return false
	}
	for i, s := range ps {
		if os[i] != s {
			return false
		}
	}
	return true
}

// Parent returns the path with its final segment removed, or "" if p has a
// single segment.
func (p DottedPath) Parent() DottedPath {
	segs := p.Segments()
	if len(segs) <= 1 {
		return ""
	}
	return DottedPath(strings.Join(segs[:len(segs)-1], "."))
}

// Join appends a child segment to p.
func (p DottedPath) Join(seg string) DottedPath {
	if p == "" {
		return DottedPath(seg)
	}
	return DottedPath(string(p) + "." + seg)
}

// String implements fmt.Stringer.
func (p DottedPath) String() string { return string(p) }
