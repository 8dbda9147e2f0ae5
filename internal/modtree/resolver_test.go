package modtree

import "testing"

func TestResolveInternalExternalRoot(t *testing.T) {
	tree := NewModuleTree()
	tree.Insert("a", &ModuleConfig{Path: "a"})

	r := NewResolver(tree, map[string]string{"django": "django"}, nil, nil)

	if res := r.Resolve("a.models", RootAllow); res.Kind != KindInternal {
		t.Fatalf("want internal, got %v", res.Kind)
	}
	if res := r.Resolve("django.db", RootAllow); res.Kind != KindExternal {
		t.Fatalf("want external, got %v", res.Kind)
	}
	if res := r.Resolve("unowned.thing", RootAllow); res.Kind != KindRoot {
		t.Fatalf("want root, got %v", res.Kind)
	}
	if res := r.Resolve("unowned.thing", RootForbid); res.Kind != KindUnknown {
		t.Fatalf("want unknown under forbid, got %v", res.Kind)
	}
}

func TestVisibilityAllows(t *testing.T) {
	cases := []struct {
		pattern  string
		importer DottedPath
		want     bool
	}{
		{"a.*", "a.b", true},
		{"a.*", "a.b.c", false},
		{"a.**", "a.b.c", true},
		{"a.b", "a.b", true},
		{"a.b", "a.c", false},
	}
	for _, c := range cases {
		if got := VisibilityAllows([]string{c.pattern}, c.importer); got != c.want {
			t.Errorf("VisibilityAllows(%q, %q) = %v, want %v", c.pattern, c.importer, got, c.want)
		}
	}
}

func TestMatchesAnyExposed(t *testing.T) {
	r := NewResolver(NewModuleTree(), nil, nil, []InterfaceConfig{
		{Expose: []string{"^API$", "^public_.*"}, FromModules: []DottedPath{"b"}},
	})
	if !r.MatchesAnyExposed("b", "API") {
		t.Fatalf("expected API to be exposed")
	}
	if !r.MatchesAnyExposed("b", "public_helper") {
		t.Fatalf("expected public_helper to be exposed")
	}
	if r.MatchesAnyExposed("b", "Internal") {
		t.Fatalf("did not expect Internal to be exposed")
	}
}
