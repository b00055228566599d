// Package glob matches request paths against the patterns of the hosting
// configuration. "*" matches within one path segment, "**" matches across
// segments and "?" matches one non-separator character.
package glob

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Pattern is a compiled glob.
type Pattern struct {
	src      string
	re       *regexp.Regexp
	literals int
}

// Compile parses a glob.
func Compile(src string) (*Pattern, error) {
	if src == "" {
		return nil, fmt.Errorf("empty glob")
	}
	var b strings.Builder
	b.WriteString("^")
	literals := 0
	for i := 0; i < len(src); i++ {
		switch c := src[i]; c {
		case '*':
			if i+1 < len(src) && src[i+1] == '*' {
				b.WriteString(".*")
				i++
			} else {
				b.WriteString("[^/]*")
			}
		case '?':
			b.WriteString("[^/]")
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
			literals++
		}
	}
	b.WriteString("$")
	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", src, err)
	}
	return &Pattern{src: src, re: re, literals: literals}, nil
}

// String returns the source glob.
func (p *Pattern) String() string { return p.src }

// Match reports whether path matches the glob.
func (p *Pattern) Match(path string) bool { return p.re.MatchString(path) }

// Set is a list of globs ordered from most to least specific. A glob is
// more specific when it has more literal characters; ties go to the
// lexically smaller source.
type Set struct {
	patterns []*Pattern
}

// NewSet compiles every glob.
func NewSet(srcs []string) (*Set, error) {
	s := &Set{patterns: make([]*Pattern, 0, len(srcs))}
	for _, src := range srcs {
		p, err := Compile(src)
		if err != nil {
			return nil, err
		}
		s.patterns = append(s.patterns, p)
	}
	sort.Slice(s.patterns, func(i, j int) bool {
		a, b := s.patterns[i], s.patterns[j]
		if a.literals != b.literals {
			return a.literals > b.literals
		}
		return a.src < b.src
	})
	return s, nil
}

// First returns the most specific glob matching path.
func (s *Set) First(path string) (string, bool) {
	for _, p := range s.patterns {
		if p.Match(path) {
			return p.src, true
		}
	}
	return "", false
}

// All returns every glob matching path, least specific first, so that
// callers applying them in order let specific globs win.
func (s *Set) All(path string) []string {
	var out []string
	for i := len(s.patterns) - 1; i >= 0; i-- {
		if s.patterns[i].Match(path) {
			out = append(out, s.patterns[i].src)
		}
	}
	return out
}
