package cache

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
)

func TestFingerprintDeterministic(t *testing.T) {
	in := Inputs{
		InterpreterVersion: "3.11.0",
		Files: []FileHash{
			{Path: "a.py", Sum: [32]byte{1}},
			{Path: "b.py", Sum: [32]byte{2}},
		},
		DependencyPins: map[string]string{"requests": "2.31.0"},
		Action:         "test",
	}
	fp1, err := Compute(in)
	if err != nil {
		t.Fatal(err)
	}
	fp2, err := Compute(in)
	if err != nil {
		t.Fatal(err)
	}
	if fp1 != fp2 {
		t.Fatalf("expected identical fingerprints for identical inputs")
	}
}

func TestFingerprintChangesOnFileByteChange(t *testing.T) {
	base := Inputs{InterpreterVersion: "3.11", Files: []FileHash{{Path: "a.py", Sum: [32]byte{1}}}, Action: "test"}
	changed := base
	changed.Files = []FileHash{{Path: "a.py", Sum: [32]byte{2}}}

	fp1, _ := Compute(base)
	fp2, _ := Compute(changed)
	if fp1 == fp2 {
		t.Fatalf("expected fingerprint to change when a file's bytes change")
	}
}

func TestVersionNormalizationCollapsesEquivalentForms(t *testing.T) {
	a, _ := Compute(Inputs{InterpreterVersion: "1.0", Action: "x"})
	b, _ := Compute(Inputs{InterpreterVersion: "1.0.0", Action: "x"})
	if a != b {
		t.Fatalf("expected 1.0 and 1.0.0 to normalize to the same fingerprint")
	}
}

func TestStoreRoundTrip(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "cache"))
	var fp Fingerprint
	fp[0] = 0xAB

	entry := Entry{Stdout: []byte("hello\n"), Stderr: []byte("warn\n"), ExitCode: 3}
	if err := s.Store(fp, entry); err != nil {
		t.Fatal(err)
	}

	got, ok, err := s.Lookup(fp)
	if err != nil || !ok {
		t.Fatalf("expected a hit, got ok=%v err=%v", ok, err)
	}
	if string(got.Stdout) != "hello\n" || string(got.Stderr) != "warn\n" || got.ExitCode != 3 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestStoreMissForUnknownFingerprint(t *testing.T) {
	s := NewStore(t.TempDir())
	var fp Fingerprint
	_, ok, err := s.Lookup(fp)
	if err != nil || ok {
		t.Fatalf("expected a clean miss, got ok=%v err=%v", ok, err)
	}
}

func TestRunnerReplaysOnHit(t *testing.T) {
	s := NewStore(t.TempDir())
	var fp Fingerprint
	fp[0] = 1
	s.Store(fp, Entry{Stdout: []byte("first run\n"), ExitCode: 0})

	r := &Runner{Store: s}
	var stdout, stderr bytes.Buffer
	called := false
	code, err := r.Run(fp, &stdout, &stderr, func() (Entry, error) {
		called = true
		return Entry{}, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if called {
		t.Fatalf("action must not run on a cache hit")
	}
	if code != 0 || stdout.String() != "cached results (fingerprint "+fp.String()+")\nfirst run\n" {
		t.Fatalf("unexpected replay: code=%d stdout=%q", code, stdout.String())
	}
}

func TestRunnerDoesNotWriteEntryOnActionFailure(t *testing.T) {
	s := NewStore(t.TempDir())
	var fp Fingerprint
	fp[0] = 2

	r := &Runner{Store: s}
	var stdout, stderr bytes.Buffer
	_, err := r.Run(fp, &stdout, &stderr, func() (Entry, error) {
		return Entry{}, errors.New("capture failed mid-way")
	})
	if err == nil {
		t.Fatalf("expected the action's error to propagate")
	}

	_, ok, _ := s.Lookup(fp)
	if ok {
		t.Fatalf("expected no entry to be written after a failed capture")
	}
}
