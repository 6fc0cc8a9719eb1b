package ignore

import (
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultRules are applied before any user rule.
var DefaultRules = []string{
	".git/",
	".moveprobe/cache/",
	"node_modules/",
	"build/",
	"target/",
	"*.tmp",
	"*.swp",
	".DS_Store",
}

// rule is one compiled ignore line. An anchored rule matches whole paths
// from the root; an unanchored one matches a single path segment.
type rule struct {
	re       *regexp.Regexp
	negated  bool
	dirOnly  bool
	anchored bool
}

// Matcher applies gitignore-like rules; the last matching rule wins.
type Matcher struct {
	rules []rule
}

// NewMatcher compiles DefaultRules followed by userRules. User negations can
// re-include what a default excludes.
func NewMatcher(userRules []string) *Matcher {
	m := &Matcher{rules: make([]rule, 0, len(DefaultRules)+len(userRules))}
	for _, lines := range [][]string{DefaultRules, userRules} {
		for _, line := range lines {
			if r, ok := compileRule(line); ok {
				m.rules = append(m.rules, r)
			}
		}
	}
	return m
}

// ShouldIgnore reports whether relPath is excluded. A path is excluded when a
// rule matches it or any of its parent directories.
func (m *Matcher) ShouldIgnore(relPath string, isDir bool) bool {
	parts := strings.Split(normalizePath(relPath), "/")
	ignored := false
	for _, r := range m.rules {
		if r.matches(parts, isDir) {
			ignored = !r.negated
		}
	}
	return ignored
}

func (r rule) matches(parts []string, isDir bool) bool {
	for depth := 1; depth <= len(parts); depth++ {
		leaf := depth == len(parts)
		if leaf && r.dirOnly && !isDir {
			return false
		}
		subject := parts[depth-1]
		if r.anchored {
			subject = strings.Join(parts[:depth], "/")
		}
		if r.re.MatchString(subject) {
			return true
		}
	}
	return false
}

func compileRule(line string) (rule, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return rule{}, false
	}

	var r rule
	if rest, ok := strings.CutPrefix(line, "!"); ok {
		r.negated = true
		line = rest
	}
	if rest, ok := strings.CutSuffix(line, "/"); ok {
		r.dirOnly = true
		line = rest
	}
	if strings.HasPrefix(line, "/") || strings.Contains(strings.TrimPrefix(line, "/"), "/") {
		r.anchored = true
	}
	line = normalizePath(line)
	if line == "" {
		return rule{}, false
	}

	re, err := regexp.Compile("^" + globToRegex(line) + "$")
	if err != nil {
		return rule{}, false
	}
	r.re = re
	return r, true
}

// globToRegex translates * (one segment), ** (any depth) and ? into a
// regular expression, quoting everything else.
func globToRegex(pattern string) string {
	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		switch ch := pattern[i]; {
		case ch == '*' && i+1 < len(pattern) && pattern[i+1] == '*':
			b.WriteString(".*")
			i++
		case ch == '*':
			b.WriteString("[^/]*")
		case ch == '?':
			b.WriteString("[^/]")
		default:
			b.WriteString(regexp.QuoteMeta(pattern[i : i+1]))
		}
	}
	return b.String()
}

func normalizePath(path string) string {
	path = filepath.ToSlash(path)
	path = strings.TrimPrefix(path, "./")
	return strings.TrimPrefix(path, "/")
}
