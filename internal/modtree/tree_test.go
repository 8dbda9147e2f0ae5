package modtree

import "testing"

func TestNearestAncestorExact(t *testing.T) {
	tree := NewModuleTree()
	a := &ModuleConfig{Path: "a"}
	tree.Insert("a", a)

	cfg, exact, ok := tree.NearestAncestor("a")
	if !ok || !exact || cfg != a {
		t.Fatalf("got cfg=%v exact=%v ok=%v, want a/true/true", cfg, exact, ok)
	}
}

func TestNearestAncestorDescendant(t *testing.T) {
	tree := NewModuleTree()
	a := &ModuleConfig{Path: "a"}
	tree.Insert("a", a)

	cfg, exact, ok := tree.NearestAncestor("a.sub.mod")
	if !ok || exact || cfg != a {
		t.Fatalf("got cfg=%v exact=%v ok=%v, want a/false/true", cfg, exact, ok)
	}
}

func TestNearestAncestorDoesNotMatchNonDottedPrefix(t *testing.T) {
	tree := NewModuleTree()
	tree.Insert("ab", &ModuleConfig{Path: "ab"})

	_, _, ok := tree.NearestAncestor("abc.thing")
	if ok {
		t.Fatalf("expected no match, dotted ancestry must respect segment boundaries")
	}
}

func TestNearestAncestorPrefersDeepest(t *testing.T) {
	tree := NewModuleTree()
	outer := &ModuleConfig{Path: "a"}
	inner := &ModuleConfig{Path: "a.b"}
	tree.Insert("a", outer)
	tree.Insert("a.b", inner)

	cfg, _, ok := tree.NearestAncestor("a.b.c")
	if !ok || cfg != inner {
		t.Fatalf("got %v, want inner module a.b", cfg)
	}
}

func TestNearestAncestorMiss(t *testing.T) {
	tree := NewModuleTree()
	tree.Insert("a", &ModuleConfig{Path: "a"})

	_, _, ok := tree.NearestAncestor("z.y")
	if ok {
		t.Fatalf("expected no match")
	}
}
