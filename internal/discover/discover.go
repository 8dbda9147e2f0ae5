// Package discover walks the project's source roots and yields candidate
// Python source files, respecting excludes and (optionally) .gitignore.
package discover

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/karrick/godirwalk"
	"github.com/pkg/errors"

	"github.com/gauge-sh/tach/internal/pathmatch"
)

// File is one discovered candidate source file.
type File struct {
	// AbsPath is the file's absolute path on disk.
	AbsPath string
	// SourceRoot is the configured source root this file was found under.
	SourceRoot string
	// RelPath is AbsPath relative to SourceRoot, slash-separated.
	RelPath string
}

// isSourceFile reports whether name marks a target-language source file.
func isSourceFile(name string) bool {
	return strings.HasSuffix(name, ".py") || strings.HasSuffix(name, ".pyi")
}

// Walk enumerates every source file under roots (each relative to
// projectRoot, in declared order), skipping directories the matcher
// excludes before descending into them, and guarding against symlink
// cycles via a set of visited symlink targets, keyed by resolved path.
// Output is sorted lexicographically per
// directory for deterministic diagnostic ordering.
func Walk(projectRoot string, roots []string, m *pathmatch.Matcher) ([]File, error) {
	var out []File
	visited := make(map[string]bool)

	for _, root := range roots {
		absRoot := filepath.Join(projectRoot, root)
		info, err := os.Stat(absRoot)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.Wrapf(err, "stat source root %s", root)
		}
		if !info.IsDir() {
			continue
		}

		var found []File
		err = godirwalk.Walk(absRoot, &godirwalk.Options{
			Unsorted:            true,
			FollowSymbolicLinks: true,
			Callback: func(osPathname string, de *godirwalk.Dirent) error {
				rel, relErr := filepath.Rel(projectRoot, osPathname)
				if relErr != nil {
					rel = osPathname
				}
				rel = filepath.ToSlash(rel)

				isDir, statErr := de.IsDirOrSymlinkToDir()
				if statErr != nil {
					isDir = de.IsDir()
				}

				if isDir {
					if osPathname != absRoot && m.Excluded(rel+"/") {
						return filepath.SkipDir
					}
					if de.IsSymlink() {
						key, keyErr := inodeKey(osPathname)
						if keyErr == nil {
							if visited[key] {
								return filepath.SkipDir
							}
							visited[key] = true
						}
					}
					return nil
				}

				if !isSourceFile(de.Name()) {
					return nil
				}
				if m.Excluded(rel) {
					return nil
				}

				relToRoot, relErr := filepath.Rel(absRoot, osPathname)
				if relErr != nil {
					return errors.Wrapf(relErr, "relativizing %s", osPathname)
				}
				found = append(found, File{
					AbsPath:    osPathname,
					SourceRoot: root,
					RelPath:    filepath.ToSlash(relToRoot),
				})
				return nil
			},
			ErrorCallback: func(osPathname string, err error) godirwalk.ErrorAction {
				if os.IsPermission(err) {
					return godirwalk.SkipNode
				}
				return godirwalk.Halt
			},
		})
		if err != nil {
			return nil, errors.Wrapf(err, "walking source root %s", root)
		}

		sort.Slice(found, func(i, j int) bool { return found[i].RelPath < found[j].RelPath })
		out = append(out, found...)
	}

	return out, nil
}

// inodeKey identifies a filesystem entry for cycle detection across
// symlinks by its fully resolved path (filepath.EvalSymlinks). Device and
// inode numbers are not used on any platform.
func inodeKey(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", err
	}
	return resolved, nil
}
