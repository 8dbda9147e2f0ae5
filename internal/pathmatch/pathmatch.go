// Package pathmatch compiles the project's exclude globs and, optionally,
// the repository's .gitignore rules, and tests whether a path is excluded.
package pathmatch

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	dotignore "github.com/codeglyph/go-dotignore/v2"
	"github.com/pkg/errors"
)

// DefaultExcludes are seeded unconditionally unless the project opts out,
// covering compiled-artifact, build-output, and virtual-environment
// directories.
var DefaultExcludes = []string{
	"**/__pycache__/",
	"**/*.egg-info/",
	"**/.venv/",
	"**/venv/",
	"**/.tox/",
	"**/build/",
	"**/dist/",
	"**/.git/",
	"**/.mypy_cache/",
	"**/.pytest_cache/",
}

// Matcher tests whether a project-relative path is excluded.
type Matcher struct {
	patterns []string
	matcher  *dotignore.PatternMatcher
}

// New compiles exclude into a Matcher. Unless noDefaults is set, the
// default excludes (see DefaultExcludes) are added first, so user patterns
// can still negate them with a leading "!".
func New(exclude []string, noDefaults bool) (*Matcher, error) {
	m := &Matcher{}
	if !noDefaults {
		m.patterns = append(m.patterns, DefaultExcludes...)
	}
	m.patterns = append(m.patterns, exclude...)

	if err := m.recompile(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Matcher) recompile() error {
	pm, err := dotignore.NewPatternMatcher(m.patterns)
	if err != nil {
		return errors.Wrap(err, "compiling exclude patterns")
	}
	m.matcher = pm
	return nil
}

// Excluded reports whether path (relative to the project root, using either
// separator) is excluded.
func (m *Matcher) Excluded(path string) bool {
	path = filepath.ToSlash(path)
	ok, err := m.matcher.Matches(path)
	if err != nil {
		// A malformed pattern was already rejected at compile time; a
		// match-time error here means the path itself is unusable, which we
		// treat conservatively as "not excluded" so discovery can still
		// surface it.
		return false
	}
	return ok
}

// Clone returns an independent copy of m, so a caller can layer one-off
// extra patterns onto it (AddPatterns) without mutating the original.
func (m *Matcher) Clone() *Matcher {
	patterns := make([]string, len(m.patterns))
	copy(patterns, m.patterns)
	clone := &Matcher{patterns: patterns}
	clone.recompile()
	return clone
}

// AddPatterns merges extra glob patterns into m additively and recompiles,
// used for one-off CLI-supplied excludes (`check --exclude`) layered on top
// of the project's configured exclude list.
func (m *Matcher) AddPatterns(patterns []string) error {
	if len(patterns) == 0 {
		return nil
	}
	m.patterns = append(m.patterns, patterns...)
	return m.recompile()
}

// LoadGitignore reads .gitignore-style pattern lines from dir (if present)
// and merges them additively into m, as spec.md's respect_gitignore option
// requires. It is a no-op, not an error, if the file does not exist.
func (m *Matcher) LoadGitignore(dir string) error {
	f, err := os.Open(filepath.Join(dir, ".gitignore"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "reading .gitignore in %s", dir)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return errors.Wrap(err, "scanning .gitignore")
	}

	m.patterns = append(m.patterns, lines...)
	return m.recompile()
}
