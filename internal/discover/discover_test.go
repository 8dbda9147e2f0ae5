package discover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gauge-sh/tach/internal/pathmatch"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWalkSkipsExcludedDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "pkg", "mod.py"), "x = 1\n")
	writeFile(t, filepath.Join(root, "src", "pkg", "__pycache__", "mod.cpython.pyc"), "")
	writeFile(t, filepath.Join(root, "src", "pkg", "sub", "other.py"), "y = 2\n")
	writeFile(t, filepath.Join(root, "src", "README.md"), "not python")

	m, err := pathmatch.New(nil, false)
	if err != nil {
		t.Fatal(err)
	}

	files, err := Walk(root, []string{"src"}, m)
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]bool{"pkg/mod.py": true, "pkg/sub/other.py": true}
	if len(files) != len(want) {
		t.Fatalf("got %d files, want %d: %+v", len(files), len(want), files)
	}
	for _, f := range files {
		if !want[f.RelPath] {
			t.Errorf("unexpected file discovered: %s", f.RelPath)
		}
	}
}

func TestWalkDeterministicOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "b.py"), "")
	writeFile(t, filepath.Join(root, "src", "a.py"), "")

	m, err := pathmatch.New(nil, true)
	if err != nil {
		t.Fatal(err)
	}
	files, err := Walk(root, []string{"src"}, m)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 || files[0].RelPath != "a.py" || files[1].RelPath != "b.py" {
		t.Fatalf("expected sorted [a.py b.py], got %+v", files)
	}
}
