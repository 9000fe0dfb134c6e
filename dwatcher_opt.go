package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/mitranim/gg"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

type Opt struct {
	flag.FlagSet
	Args           []string
	AbsWatch       string
	Debounce       time.Duration
	Verb           bool
	NoClear        bool
	Raw            bool
	Recursive      bool
	Watch          string
	IgnorePatterns FlagIgnorePatterns
	Extensions     FlagExtensions
}

func (self *Opt) Init(args []string) {
	self.FlagSet.Init(os.Args[0], flag.ExitOnError)

	self.DurationVar(&self.Debounce, `d`, DEFAULT_DEBOUNCE, ``)
	self.BoolVar(&self.Verb, `v`, false, ``)
	self.BoolVar(&self.NoClear, `C`, false, ``)
	self.BoolVar(&self.Raw, `r`, false, ``)
	self.BoolVar(&self.Recursive, `R`, false, ``)
	self.StringVar(&self.Watch, `w`, `.`, ``)
	self.Var(&self.IgnorePatterns, `i`, ``)
	self.Var(&self.Extensions, `e`, ``)

	self.Usage = self.PrintHelp
	gg.Try(self.FlagSet.Parse(args))

	self.Args = self.FlagSet.Args()
	if gg.IsEmpty(self.Args) {
		self.Usage()
		os.Exit(1)
	}

	self.LoadFile()

	self.IgnorePatterns.Default()
	self.Extensions.Default()
	self.AbsWatch = toAbsPath(self.Watch)
}

/**
Shape of the optional config file, looked up in the watch path. Pointer
fields distinguish "absent" from zero values. Flags given on the command
line win over the file.
*/
type FileConf struct {
	Debounce   *int     `yaml:"debounce"` // Milliseconds.
	Ignore     []string `yaml:"ignore"`
	Extensions []string `yaml:"extensions"`
	Verbose    *bool    `yaml:"verbose"`
	Clear      *bool    `yaml:"clear"`
	Watch      string   `yaml:"watch"`
}

func (self *Opt) LoadFile() {
	src, err := os.ReadFile(filepath.Join(toAbsPath(self.Watch), CONFIG_FILE_NAME))
	if err != nil {
		return
	}

	var conf FileConf
	err = yaml.Unmarshal(src, &conf)
	if err != nil {
		log.Printf(`ignoring malformed %v: %v`, CONFIG_FILE_NAME, err)
		return
	}

	given := map[string]bool{}
	self.Visit(func(val *flag.Flag) { given[val.Name] = true })

	if conf.Debounce != nil && !given[`d`] {
		self.Debounce = time.Duration(*conf.Debounce) * time.Millisecond
	}
	if len(conf.Ignore) > 0 && !given[`i`] {
		self.IgnorePatterns = nil
		for _, val := range conf.Ignore {
			gg.Append(&self.IgnorePatterns, IgnorePatternFrom(val))
		}
	}
	if len(conf.Extensions) > 0 && !given[`e`] {
		// Same parsing and error handling as the `-e` flag.
		for _, val := range conf.Extensions {
			err = self.Extensions.Set(val)
			if err != nil {
				log.Printf(`ignoring extensions in %v: %v`, CONFIG_FILE_NAME, err)
				self.Extensions = nil
				break
			}
		}
	}
	if conf.Verbose != nil && !given[`v`] {
		self.Verb = *conf.Verbose
	}
	if conf.Clear != nil && !given[`C`] {
		self.NoClear = !*conf.Clear
	}
	if conf.Watch != `` && !given[`w`] {
		self.Watch = conf.Watch
	}
}

func (self Opt) PrintHelp() {
	gg.Nop2(fmt.Fprintf(self.Output(), `"dwatcher" is a development-time process supervisor.
Runs an arbitrary command, watches files, and restarts on changes.

Usage:

	dwatcher <dwatcher_flags> <cmd> <cmd_args ...>

Examples:

	dwatcher                       node server.js
	dwatcher -v -d=500ms           npm start
	dwatcher -e=go,mod -w=src      make run
	dwatcher -i=vendor/** -i=*.gen node server.js

Flags:

	-h    Print help and exit.
	-v    Verbose logging.
	-d    Debounce interval; default: %[1]v.
	-i    Ignored patterns; multi; default: %[2]q.
	-e    Extensions to watch; multi; empty matches all; default: %[3]q.
	-w    Path to watch, relative to CWD; default: ".".
	-C    Do not clear the terminal on restart.
	-R    Use one recursive watch instead of per-directory watches.
	-r    Enable terminal raw mode and hotkeys.

"Multi" flags can be passed multiple times.
In addition, they support comma-separated parsing.

A %[4]q file in the watch path may provide the same settings;
command-line flags take precedence.

Supported control codes / hotkeys (raw mode):

	3     ^C          Kill subprocess or self with SIGINT.
	18    ^R          Kill subprocess with SIGTERM, restart.
	20    ^T          Kill subprocess with SIGTERM.
	28    ^\          Kill subprocess or self with SIGQUIT.
	31    ^- or ^?    Print currently running command.
`,
		DEFAULT_DEBOUNCE,
		DEFAULT_IGNORE_PATTERNS,
		DEFAULT_EXTENSIONS,
		CONFIG_FILE_NAME,
	))
}

func (self Opt) TermClear() {
	if self.NoClear {
		return
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return
	}
	gg.TermClearHard()
}

/**
The command line is handed to the shell, matching how supervised dev servers
expect to be launched. The process group is still ours via `Setpgid`, so a
broadcast kill reaches the shell's children too.
*/
func (self Opt) MakeCmd() *exec.Cmd {
	cmd := exec.Command(`/bin/sh`, `-c`, strings.Join(self.Args, ` `))

	// Causes the OS to assign process group ID = `cmd.Process.Pid`.
	// We use this to broadcast signals to the entire subprocess group.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), SUPERVISION_ENV_VAR+`=true`)
	return cmd
}

// Input must be relative to the watch root.
func (self Opt) AllowPath(path string) bool {
	return !self.IgnorePatterns.Ignore(path) && self.Extensions.Allow(path)
}
