// Package cache implements C6: a content-addressed, fingerprint-keyed
// memoization layer for arbitrary build/test actions, grounded on the
// teacher's internal/fs hashing and atomic-rename helpers
// (internal/fs/hash.go, internal/fs/fs.go).
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
)

// sectionHeader strings separate each ordered hash section, the way the
// teacher's gps/hash.go uses fixed header constants ahead of each
// contributing factor.
const (
	sectionInterpreter = "interpreter\x00"
	sectionFiles       = "files\x00"
	sectionPins        = "pins\x00"
	sectionFileDeps    = "file_deps\x00"
	sectionEnvDeps     = "env_deps\x00"
	sectionAction      = "action\x00"
)

// FileHash is one source file's path (relative to the project root) and the
// sha256 of its bytes.
type FileHash struct {
	Path string
	Sum  [sha256.Size]byte
}

// Inputs is every ordered contributor to a Fingerprint, per spec.md §4.6.
type Inputs struct {
	InterpreterVersion string
	Files              []FileHash // must already be sorted by Path
	DependencyPins     map[string]string
	FileDependencies   map[string][]byte // glob match -> resolved contents
	EnvDependencies    map[string]string // var name -> value ("" if unset)
	Action             string
}

// Fingerprint is a 256-bit content hash identifying one cacheable action.
type Fingerprint [sha256.Size]byte

// String renders the fingerprint as lowercase hex.
func (f Fingerprint) String() string { return hex.EncodeToString(f[:]) }

// Compute hashes Inputs into a Fingerprint. The interpreter version and
// every dependency pin are normalized through semver first so "1.0" and
// "1.0.0" fingerprint identically (spec.md §4.6 leaves exact normalization
// unspecified; this supplements it).
func Compute(in Inputs) (Fingerprint, error) {
	h := sha256.New()

	io.WriteString(h, sectionInterpreter)
	io.WriteString(h, normalizeVersion(in.InterpreterVersion))

	io.WriteString(h, sectionFiles)
	files := make([]FileHash, len(in.Files))
	copy(files, in.Files)
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	for _, f := range files {
		io.WriteString(h, f.Path)
		h.Write([]byte{0})
		h.Write(f.Sum[:])
	}

	io.WriteString(h, sectionPins)
	for _, name := range sortedKeys(in.DependencyPins) {
		io.WriteString(h, name)
		h.Write([]byte{0})
		io.WriteString(h, normalizeVersion(in.DependencyPins[name]))
		h.Write([]byte{0})
	}

	io.WriteString(h, sectionFileDeps)
	for _, name := range sortedKeysBytes(in.FileDependencies) {
		io.WriteString(h, name)
		h.Write([]byte{0})
		h.Write(in.FileDependencies[name])
	}

	io.WriteString(h, sectionEnvDeps)
	for _, name := range sortedKeysStr(in.EnvDependencies) {
		io.WriteString(h, name)
		h.Write([]byte{0})
		io.WriteString(h, in.EnvDependencies[name])
		h.Write([]byte{0})
	}

	io.WriteString(h, sectionAction)
	io.WriteString(h, in.Action)

	var fp Fingerprint
	copy(fp[:], h.Sum(nil))
	return fp, nil
}

// normalizeVersion canonicalizes a version string via semver so that
// equivalent versions hash identically; strings that aren't valid semver
// (e.g. an interpreter build tag) pass through unchanged.
func normalizeVersion(v string) string {
	if v == "" {
		return ""
	}
	sv, err := semver.NewVersion(v)
	if err != nil {
		return v
	}
	return sv.String()
}

// HashFile hashes one file's contents for inclusion in Inputs.Files.
func HashFile(path string) (FileHash, error) {
	f, err := os.Open(path)
	if err != nil {
		return FileHash{}, errors.Wrapf(err, "hashing %s", path)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return FileHash{}, errors.Wrapf(err, "hashing %s", path)
	}
	var fh FileHash
	fh.Path = path
	copy(fh.Sum[:], h.Sum(nil))
	return fh, nil
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedKeysStr(m map[string]string) []string { return sortedKeys(m) }

func sortedKeysBytes(m map[string][]byte) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
