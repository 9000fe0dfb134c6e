package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestOptParse(t *testing.T) {
	var opt Opt
	opt.Init([]string{
		`-d=150ms`, `-v`, `-i=vendor/**`, `-i=*.gen,tmp`, `-e=go,mod`,
		`node`, `server.js`,
	})

	if opt.Debounce != 150*time.Millisecond {
		t.Error(opt.Debounce)
	}
	if !opt.Verb {
		t.Error(`expected verbose`)
	}
	if !reflect.DeepEqual([]string{`node`, `server.js`}, opt.Args) {
		t.Error(opt.Args)
	}
	if !reflect.DeepEqual(FlagExtensions{`.go`, `.mod`}, opt.Extensions) {
		t.Error(opt.Extensions)
	}

	// Repeatable and comma-split.
	srcs := []string{}
	for _, val := range opt.IgnorePatterns {
		srcs = append(srcs, val.Src)
	}
	if !reflect.DeepEqual([]string{`vendor/**`, `*.gen`, `tmp`}, srcs) {
		t.Error(srcs)
	}

	if !filepath.IsAbs(opt.AbsWatch) {
		t.Error(opt.AbsWatch)
	}
}

func TestOptDefaults(t *testing.T) {
	var opt Opt
	opt.Init([]string{`node`, `server.js`})

	if opt.Debounce != DEFAULT_DEBOUNCE {
		t.Error(opt.Debounce)
	}
	if opt.Verb || opt.NoClear || opt.Raw || opt.Recursive {
		t.Error(`unexpected non-default flags`)
	}
	if len(opt.IgnorePatterns) != len(DEFAULT_IGNORE_PATTERNS) {
		t.Error(opt.IgnorePatterns)
	}
	if !reflect.DeepEqual(FlagExtensions(DEFAULT_EXTENSIONS), opt.Extensions) {
		t.Error(opt.Extensions)
	}
}

func TestOptLoadFile(t *testing.T) {
	dir := t.TempDir()
	conf := `
debounce: 150
extensions: [go, mod]
ignore: ["vendor/**"]
verbose: true
clear: false
`
	err := os.WriteFile(filepath.Join(dir, CONFIG_FILE_NAME), []byte(conf), 0o644)
	if err != nil {
		t.Fatal(err)
	}

	var opt Opt
	opt.Init([]string{`-w=` + dir, `node`, `server.js`})

	if opt.Debounce != 150*time.Millisecond {
		t.Error(opt.Debounce)
	}
	if !reflect.DeepEqual(FlagExtensions{`.go`, `.mod`}, opt.Extensions) {
		t.Error(opt.Extensions)
	}
	if len(opt.IgnorePatterns) != 1 || opt.IgnorePatterns[0].Src != `vendor/**` {
		t.Error(opt.IgnorePatterns)
	}
	if !opt.Verb {
		t.Error(`expected verbose from config file`)
	}
	if !opt.NoClear {
		t.Error(`expected clearing disabled from config file`)
	}
	if opt.AbsWatch != dir {
		t.Error(dir, opt.AbsWatch)
	}
}

// Command-line flags win over the config file.
func TestOptFlagPrecedence(t *testing.T) {
	dir := t.TempDir()
	conf := "debounce: 150\nverbose: true\n"
	err := os.WriteFile(filepath.Join(dir, CONFIG_FILE_NAME), []byte(conf), 0o644)
	if err != nil {
		t.Fatal(err)
	}

	var opt Opt
	opt.Init([]string{`-w=` + dir, `-d=99ms`, `node`, `server.js`})

	if opt.Debounce != 99*time.Millisecond {
		t.Error(opt.Debounce)
	}
	// Not given on the command line; the file still applies.
	if !opt.Verb {
		t.Error(`expected verbose from config file`)
	}
}

// An invalid extension in the config file is reported and skipped, exactly
// like malformed YAML; it must not crash startup.
func TestOptFileInvalidExtension(t *testing.T) {
	dir := t.TempDir()
	conf := "extensions: [\"bad/ext\"]\ndebounce: 150\n"
	err := os.WriteFile(filepath.Join(dir, CONFIG_FILE_NAME), []byte(conf), 0o644)
	if err != nil {
		t.Fatal(err)
	}

	var opt Opt
	opt.Init([]string{`-w=` + dir, `node`, `server.js`})

	// The bad list is discarded; defaults apply. Valid fields still load.
	if !reflect.DeepEqual(FlagExtensions(DEFAULT_EXTENSIONS), opt.Extensions) {
		t.Error(opt.Extensions)
	}
	if opt.Debounce != 150*time.Millisecond {
		t.Error(opt.Debounce)
	}
}

func TestOptMalformedFile(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, CONFIG_FILE_NAME), []byte("]not yaml["), 0o644)
	if err != nil {
		t.Fatal(err)
	}

	var opt Opt
	opt.Init([]string{`-w=` + dir, `node`, `server.js`})

	// Malformed config is reported and skipped, not fatal.
	if opt.Debounce != DEFAULT_DEBOUNCE {
		t.Error(opt.Debounce)
	}
}
