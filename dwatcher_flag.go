package main

import (
	"strings"

	"github.com/mitranim/gg"
)

type FlagIgnorePatterns []IgnorePattern

func (self *FlagIgnorePatterns) Default() {
	if gg.IsEmpty(*self) {
		for _, val := range DEFAULT_IGNORE_PATTERNS {
			gg.Append(self, IgnorePatternFrom(val))
		}
	}
}

func (self *FlagIgnorePatterns) String() string {
	return commaJoin(gg.Map(gg.PtrGet(self), IgnorePattern.GetSrc))
}

// Repeatable. Each occurrence may also be comma-split.
func (self *FlagIgnorePatterns) Set(src string) error {
	for _, val := range commaSplit(src) {
		gg.Append(self, IgnorePatternFrom(val))
	}
	return nil
}

// Assumes that the input is relative to the watch root.
func (self FlagIgnorePatterns) Ignore(path string) bool {
	return gg.Some(self, func(val IgnorePattern) bool {
		return val.Match(path)
	})
}

/**
Variant of `.Ignore` for directories. `dir/**` must prune `dir` itself, not
just its contents, so we also test with a trailing separator.
*/
func (self FlagIgnorePatterns) IgnoreDir(path string) bool {
	return self.Ignore(path) || self.Ignore(path+`/`)
}

func (self IgnorePattern) GetSrc() string { return self.Src }

type FlagExtensions []string

func (self *FlagExtensions) Default() {
	if gg.IsEmpty(*self) {
		gg.Append(self, DEFAULT_EXTENSIONS...)
	}
}

func (self *FlagExtensions) String() string {
	return commaJoin(gg.PtrGet(self))
}

func (self *FlagExtensions) Set(src string) (err error) {
	defer gg.Rec(&err)
	for _, val := range commaSplit(src) {
		gg.Append(self, normExtension(val))
	}
	return
}

// An empty list is the watch-everything sentinel.
func (self FlagExtensions) Allow(path string) bool {
	return gg.IsEmpty(self) || gg.Some(self, func(ext string) bool {
		return strings.HasSuffix(path, ext)
	})
}

func normExtension(val string) string {
	val = strings.TrimPrefix(val, `.`)
	if !RE_WORD.MatchString(val) {
		panic(gg.Errf(`invalid extension %q`, val))
	}
	return `.` + val
}

func commaJoin(vals []string) string { return strings.Join(vals, `,`) }
