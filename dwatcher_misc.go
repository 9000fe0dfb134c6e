package main

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"syscall"
	"time"

	"github.com/mitranim/gg"
)

const (
	// These names reflect standard naming and meaning.
	// Reference: https://en.wikipedia.org/wiki/Ascii.
	// See our re-interpretation below.
	ASCII_END_OF_TEXT      = 3  // ^C
	ASCII_FILE_SEPARATOR   = 28 // ^\
	ASCII_DEVICE_CONTROL_2 = 18 // ^R
	ASCII_DEVICE_CONTROL_4 = 20 // ^T
	ASCII_UNIT_SEPARATOR   = 31 // ^- or ^?

	// These names reflect our re-interpretation of standard codes.
	CODE_INTERRUPT     = ASCII_END_OF_TEXT
	CODE_QUIT          = ASCII_FILE_SEPARATOR
	CODE_RESTART       = ASCII_DEVICE_CONTROL_2
	CODE_STOP          = ASCII_DEVICE_CONTROL_4
	CODE_PRINT_COMMAND = ASCII_UNIT_SEPARATOR
)

const (
	DEFAULT_DEBOUNCE = 300 * time.Millisecond

	/**
	How long a subprocess gets to exit gracefully after SIGTERM before we
	SIGKILL its process group. Fixed on purpose; not a flag.
	*/
	KILL_GRACE = 5 * time.Second

	// Pause between signaling the subprocess at shutdown and exiting,
	// giving the stop sequence a chance to complete.
	SHUTDOWN_GRACE = time.Second

	// How often we re-enumerate directories to pick up ones created after
	// startup. Relevant only for the per-directory watch backend.
	WATCH_REFRESH_INTERVAL = 30 * time.Second

	CONFIG_FILE_NAME = `.dwatcher.yml`

	/**
	Set to "true" in the subprocess environment. Lets the subprocess detect
	that it runs under our supervision, for example to disable its own
	file watching.
	*/
	SUPERVISION_ENV_VAR = `DWATCHER`
)

var (
	FD_TERM      = syscall.Stdin
	KILL_SIGS    = []syscall.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM}
	KILL_SIGS_OS = gg.Map(KILL_SIGS, toOsSignal[syscall.Signal])
	KILL_SIG_SET = gg.SetOf(KILL_SIGS...)
	RE_WORD      = regexp.MustCompile(`^\w+$`)
	PATH_SEP     = string([]rune{os.PathSeparator})

	DEFAULT_IGNORE_PATTERNS = []string{
		`node_modules/**`, `.git/**`, `*.log`, `dist/**`, `build/**`,
		`coverage/**`, `.nyc_output/**`, `*.tmp`, `*.temp`,
	}

	DEFAULT_EXTENSIONS = []string{`.js`, `.mjs`, `.json`, `.ts`, `.jsx`, `.tsx`}
)

/*
Making `.main` private reduces the chance of accidental cyclic walking by
reflection tools such as pretty printers.
*/
type Mained struct{ main *Main }

func (self *Mained) Init(val *Main) { self.main = val }
func (self *Mained) Main() *Main    { return self.main }

/*
Implemented by `notify.EventInfo` and by our `fsEvent`.
Path must be an absolute filesystem path.
*/
type FsEvent interface{ Path() string }

// Adapts an "fsnotify" event path to `FsEvent`.
type fsEvent string

func (self fsEvent) Path() string { return string(self) }

func commaSplit(val string) []string {
	if len(val) <= 0 {
		return nil
	}
	return strings.Split(val, `,`)
}

func toAbsPath(val string) string {
	if !filepath.IsAbs(val) {
		val = filepath.Join(cwd, val)
	}
	return filepath.Clean(val)
}

func toOsSignal[A os.Signal](src A) os.Signal { return src }

func recLog() {
	val := recover()
	if val != nil {
		log.Println(val)
	}
}
