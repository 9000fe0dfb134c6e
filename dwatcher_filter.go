package main

import (
	"regexp"
	"strings"
)

/**
One ignore rule. The pattern grammar has exactly three cases:

	- Contains `**`: recursive glob. `**` spans path segments of arbitrary
	  depth, `*` spans within one segment.
	- Contains `*`: single-segment glob. The wildcard never crosses a path
	  separator.
	- No wildcard: plain substring containment.

Patterns are unanchored; callers pass paths already relativized to the watch
root. Compiled once at parse time, so matching is pure and safe to call from
any number of event goroutines.
*/
type IgnorePattern struct {
	Src string
	Reg *regexp.Regexp // Nil for substring patterns.
}

func IgnorePatternFrom(src string) IgnorePattern {
	if !strings.Contains(src, `*`) {
		return IgnorePattern{Src: src}
	}
	return IgnorePattern{Src: src, Reg: globToRegexp(src)}
}

func (self IgnorePattern) Match(path string) bool {
	if self.Reg != nil {
		return self.Reg.MatchString(path)
	}
	return strings.Contains(path, self.Src)
}

func globToRegexp(src string) *regexp.Regexp {
	var buf strings.Builder

	for ind := 0; ind < len(src); ind++ {
		char := src[ind]
		if char != '*' {
			buf.WriteString(regexp.QuoteMeta(string(char)))
			continue
		}
		if ind+1 < len(src) && src[ind+1] == '*' {
			buf.WriteString(`.*`)
			ind++
			continue
		}
		buf.WriteString(`[^/]*`)
	}

	return regexp.MustCompile(buf.String())
}
