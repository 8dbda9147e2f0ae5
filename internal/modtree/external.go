package modtree

import (
	"bufio"
	"os"
	"regexp"
	"strings"
)

// pythonStdlib is the set of top-level stdlib module names for the
// interpreter versions tach supports. It is not exhaustive of every minor
// release's additions/removals; it covers the stable core that matters for
// distinguishing "external" from "unowned".
var pythonStdlib = map[string]bool{}

func init() {
	for _, name := range strings.Fields(`
		abc aifc argparse array ast asynchat asyncio asyncore atexit
		base64 bdb binascii bisect builtins bz2
		calendar cgi cgitb chunk cmath cmd code codecs codeop collections
		colorsys compileall concurrent configparser contextlib contextvars
		copy copyreg cProfile csv ctypes
		dataclasses datetime dbm decimal difflib dis distutils doctest
		email encodings ensurepip enum errno
		faulthandler fcntl filecmp fileinput fnmatch fractions ftplib
		functools gc getopt getpass gettext glob graphlib grp gzip
		hashlib heapq hmac html http
		idlelib imaplib imghdr imp importlib inspect io ipaddress itertools
		json
		keyword
		lib2to3 linecache locale logging lzma
		mailbox mailcap marshal math mimetypes mmap modulefinder msilib
		msvcrt multiprocessing
		netrc nis nntplib numbers
		operator optparse os ossaudiodev
		pathlib pdb pickle pickletools pipes pkgutil platform plistlib
		poplib posix posixpath pprint profile pstats pty pwd pyclbr
		pydoc pydoc_data pyexpat
		queue quopri
		random re readline reprlib resource rlcompleter runpy
		sched secrets select selectors shelve shlex shutil signal site
		smtplib sndhdr socket socketserver spwd sqlite3 sre_compile sre_constants
		sre_parse ssl stat statistics string stringprep struct subprocess
		sunau symtable sys sysconfig syslog
		tabnanny tarfile telnetlib tempfile termios test textwrap threading
		time timeit tkinter token tokenize tomllib trace traceback tracemalloc
		tty turtle turtledemo types typing
		unicodedata unittest urllib uu uuid
		venv
		warnings wave weakref webbrowser wsgiref
		xdrlib xml xmlrpc
		zipapp zipfile zipimport zlib zoneinfo
		__future__ _thread
	`) {
		pythonStdlib[name] = true
	}
}

// BuildExternalIndex returns a map from top-level importable name to the
// package that owns it, seeded from the stdlib and from every declared
// third-party dependency manifest (requirements.txt / pyproject.toml style
// listings) found at manifestPaths.
func BuildExternalIndex(manifestPaths []string) map[string]string {
	idx := make(map[string]string, len(pythonStdlib)+64)
	for name := range pythonStdlib {
		idx[name] = name
	}
	for _, path := range manifestPaths {
		for name, pkg := range readManifestNames(path) {
			idx[name] = pkg
		}
	}
	return idx
}

var pep508Name = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*`)

// readManifestNames extracts {importable-name: distribution-name} pairs from
// a requirements.txt-style file. Every line of the file is scanned the same
// way, after stripping quotes, commas and brackets; no section of a
// pyproject.toml is singled out, so its other lines (table headers, keys)
// also yield names when they start with a PEP 508-shaped word.
func readManifestNames(path string) map[string]string {
	out := map[string]string{}
	f, err := os.Open(path)
	if err != nil {
		return out
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		line = strings.Trim(line, `"',[] `)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		m := pep508Name.FindString(line)
		if m == "" {
			continue
		}
		importName := strings.ReplaceAll(strings.ToLower(m), "-", "_")
		out[importName] = m
	}
	return out
}
