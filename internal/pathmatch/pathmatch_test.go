package pathmatch

import "testing"

func TestDefaultExcludes(t *testing.T) {
	m, err := New(nil, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cases := map[string]bool{
		"pkg/__pycache__/mod.pyc": true,
		"pkg/.venv/lib/site.py":   true,
		"pkg/mod.py":              false,
		"dist/out.whl":            true,
	}
	for path, want := range cases {
		if got := m.Excluded(path); got != want {
			t.Errorf("Excluded(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestNoDefaultsOptOut(t *testing.T) {
	m, err := New(nil, true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if m.Excluded("pkg/__pycache__/mod.pyc") {
		t.Fatalf("expected no default excludes to apply")
	}
}

func TestUserExcludeGlob(t *testing.T) {
	m, err := New([]string{"vendor/**"}, true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !m.Excluded("vendor/thirdparty/x.py") {
		t.Fatalf("expected vendor/** to exclude nested path")
	}
	if m.Excluded("src/vendor_helper.py") {
		t.Fatalf("did not expect unrelated path to match")
	}
}
