package importscan

import (
	"strings"
)

// ignoreDirective is a parsed `# tach-ignore[(reason)] [name[, name...]]`
// comment, per spec.md §3 IgnoreDirective / §6 ignore directive syntax.
type ignoreDirective struct {
	reason  string
	symbols []string
	// malformed is true for a comment that looks like it was meant to be a
	// directive (starts with the keyword) but doesn't parse; it is reported
	// per rules.unused_ignore_directives (see Options.UnusedIgnoreDirectiveSeverity),
	// since a broken directive silently suppressing nothing is its own bug
	// class.
	malformed bool
}

// parseIgnoreDirective extracts a directive from a single comment's text
// (including its leading "#"), or returns ok=false if the comment is not a
// tach-ignore comment at all.
func parseIgnoreDirective(commentText string) (d ignoreDirective, ok bool) {
	text := strings.TrimLeft(commentText, "#")
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "tach-ignore") {
		return ignoreDirective{}, false
	}
	rest := text[len("tach-ignore"):]

	if strings.HasPrefix(rest, "(") {
		closeIdx := strings.IndexByte(rest, ')')
		if closeIdx < 0 {
			return ignoreDirective{malformed: true}, true
		}
		d.reason = strings.TrimSpace(rest[1:closeIdx])
		rest = rest[closeIdx+1:]
	}

	rest = strings.TrimSpace(rest)
	if rest != "" {
		for _, name := range strings.Split(rest, ",") {
			name = strings.TrimSpace(name)
			if name != "" {
				d.symbols = append(d.symbols, name)
			}
		}
	}
	return d, true
}

// appliesTo reports whether the directive suppresses diagnostics for an
// import whose leaf symbol name is name. An empty symbol list applies to
// every import the directive is attached to.
func (d ignoreDirective) appliesTo(name string) bool {
	if len(d.symbols) == 0 {
		return true
	}
	for _, s := range d.symbols {
		if s == name {
			return true
		}
	}
	return false
}
