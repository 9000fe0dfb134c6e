/**
dwatcher: development-time process supervisor. Runs an arbitrary command,
watches a directory tree, and restarts the command after a quiet period once
file changes stop arriving.
*/
package main

import (
	l "log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/mitranim/gg"
)

var (
	log = l.New(os.Stderr, `[dwatcher] `, 0)
	cwd = gg.Cwd()
)

func main() {
	var main Main
	defer main.Exit()
	defer main.Deinit()
	main.Init()
	main.Run()
}

type Main struct {
	Opt         Opt
	Cmd         Cmd
	Deb         Debounce
	Sig         Sig
	Stdio       Stdio
	TermState   TermState
	Watcher     Watcher
	ChanRestart gg.Chan[struct{}]
	ChanKill    gg.Chan[syscall.Signal]
}

func (self *Main) Init() {
	self.Opt.Init(os.Args[1:])

	self.ChanRestart.InitCap(1)
	self.ChanKill.InitCap(1)

	self.Cmd.Init(self)
	self.Deb.Init(self)
	self.Sig.Init(self)
	self.WatchInit()

	if self.Opt.Raw {
		self.TermState.Init()
	}
	self.Stdio.Init(self)
}

/**
We MUST call this before exiting because:

	* We modify global OS state: terminal, subprocs.
	* OS will NOT auto-cleanup after us.

Otherwise:

	* Terminal is left in unusable state.
	* Subprocs become orphan daemons.

Idempotent; the shutdown path runs it inline and the deferred call in `main`
runs it again.
*/
func (self *Main) Deinit() {
	self.Stdio.Deinit()
	self.TermState.Deinit()
	self.WatchDeinit()
	self.Deb.Stop()
	self.Sig.Deinit()
	self.Cmd.Deinit()
}

func (self *Main) Run() {
	go self.Stdio.Run()
	go self.Sig.Run()
	go self.WatchRun()
	self.CmdRun()
}

func (self *Main) WatchInit() {
	if self.Opt.Recursive {
		self.Watcher = new(WatchRec)
	} else {
		self.Watcher = new(WatchSet)
	}
	self.Watcher.Init(self)
}

func (self *Main) WatchDeinit() {
	if self.Watcher != nil {
		self.Watcher.Deinit()
		self.Watcher = nil
	}
}

func (self *Main) WatchRun() {
	if self.Watcher != nil {
		self.Watcher.Run()
	}
}

func (self *Main) WatchRefresh() {
	if self.Watcher != nil {
		self.Watcher.Refresh(FindWatchDirs(self.Opt.AbsWatch, self.Opt.IgnorePatterns))
	}
}

/**
The sequential control loop. Restart requests, kill requests, and the
periodic watch refresh are all serviced here, one at a time, which keeps the
mutable state transitions ordered without further synchronization.
*/
func (self *Main) CmdRun() {
	self.Cmd.Restart()

	ticker := time.NewTicker(WATCH_REFRESH_INTERVAL)
	defer ticker.Stop()

	for {
		select {
		case <-self.ChanRestart:
			self.Cmd.Restart()

		case sig := <-self.ChanKill:
			if self.Opt.Verb {
				log.Println(`shutting down on signal:`, sig)
			}
			self.Cmd.Broadcast(syscall.SIGTERM)
			self.Deinit()
			time.Sleep(SHUTDOWN_GRACE)
			return

		case <-ticker.C:
			self.WatchRefresh()
		}
	}
}

/**
Runs on its own goroutine, one per spawned subprocess. Closes `done` first:
the stop sequence blocks on it for exit confirmation while holding the `Cmd`
lock, which `Forget` needs.
*/
func (self *Main) CmdWait(cmd *exec.Cmd, done chan struct{}) {
	err := cmd.Wait()
	close(done)

	if self.Cmd.WasStopped(cmd) {
		// We initiated this termination; not a crash.
		return
	}

	self.Cmd.Forget(cmd)

	/**
	An unexpected exit is reported but never retried. The next restart is
	driven only by the next file change; crash-looping a broken build would
	just spam the terminal.
	*/
	if err != nil {
		if self.Opt.Verb {
			log.Println(`subcommand exited:`, err)
		}
	} else if self.Opt.Verb {
		log.Println(`subcommand exited ok`)
	}
}

// Must be deferred.
func (self *Main) Exit() {
	err := gg.AnyErrTraced(recover())
	if err != nil {
		log.Println(err)
		os.Exit(1)
	}
	os.Exit(0)
}

/**
Entry point for both watcher backends. Relativizes the event path to the
watch root, applies the ignore patterns and the extension filter, and only
then touches the debounce timer. Ignored paths never reach the timer.
*/
func (self *Main) OnFsEvent(event FsEvent) {
	if event == nil {
		return
	}

	rel, err := filepath.Rel(self.Opt.AbsWatch, event.Path())
	if err != nil || rel == `.` || rel == `..` || strings.HasPrefix(rel, `..`+PATH_SEP) {
		return
	}
	rel = filepath.ToSlash(rel)

	if !self.Opt.AllowPath(rel) {
		return
	}

	if self.Opt.Verb {
		log.Println(`change detected:`, rel)
	}
	self.Deb.Touch()
}

func (self *Main) Restart() { self.ChanRestart.SendZeroOpt() }

func (self *Main) Kill(val syscall.Signal) { self.ChanKill.SendOpt(val) }
