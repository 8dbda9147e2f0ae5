package config

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func writeTOML(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tach.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadBasicModules(t *testing.T) {
	path := writeTOML(t, `
source_roots = ["src"]
root_module_treatment = "allow"

[[modules]]
path = "a"
depends_on = ["b", { path = "c", deprecated = true }]

[[modules]]
path = "b"
depends_on = []
`)

	cfg, unknown, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(unknown) != 0 {
		t.Fatalf("unexpected unknown keys: %v", unknown)
	}
	if len(cfg.Modules) != 2 {
		t.Fatalf("got %d modules, want 2", len(cfg.Modules))
	}

	a := cfg.Modules[0].ToModuleConfig()
	if !a.HasDependsOn() {
		t.Fatalf("expected a.depends_on to be set")
	}
	if len(a.DependsOn) != 2 || a.DependsOn[0].Path != "b" || a.DependsOn[1].Path != "c" || !a.DependsOn[1].Deprecated {
		t.Fatalf("unexpected depends_on: %+v", a.DependsOn)
	}

	b := cfg.Modules[1].ToModuleConfig()
	if !b.HasDependsOn() || len(b.DependsOn) != 0 {
		t.Fatalf("expected b.depends_on to be explicitly empty, got %+v set=%v", b.DependsOn, b.HasDependsOn())
	}
}

func TestLoadUncheckedDependsOn(t *testing.T) {
	path := writeTOML(t, `
[[modules]]
path = "a"
`)
	cfg, _, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	a := cfg.Modules[0].ToModuleConfig()
	if a.HasDependsOn() {
		t.Fatalf("expected depends_on absent to mean unchecked")
	}
}

func TestLoadUnknownTopLevelKeyIsWarningNotError(t *testing.T) {
	path := writeTOML(t, `
totally_unknown_option = true

[[modules]]
path = "a"
`)
	_, unknown, err := Load(path)
	if err != nil {
		t.Fatalf("unknown key must not be a hard error: %v", err)
	}
	sort.Strings(unknown)
	if len(unknown) != 1 || unknown[0] != "totally_unknown_option" {
		t.Fatalf("got unknown=%v, want [totally_unknown_option]", unknown)
	}
}
