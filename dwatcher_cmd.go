package main

import (
	e "errors"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/mitranim/gg"
)

/**
Owns the lifecycle of at most one subprocess at a time. A restart first runs
the full stop sequence synchronously, so there is never a window where two
supervised subprocesses overlap.
*/
type Cmd struct {
	Mained
	sync.Mutex
	Buf        [1]byte
	Cmd        *exec.Cmd
	Stdin      io.WriteCloser
	stopped    *exec.Cmd
	waited     chan struct{}
	restarting atomic.Bool
}

func (self *Cmd) Deinit() {
	defer gg.Lock(self).Unlock()
	self.DeinitUnsync()
}

/**
Shutdown path: signal the subprocess group and drop our references. The
graceful-exit window is provided by `SHUTDOWN_GRACE` in the main loop, not
here; a subprocess stuck past that simply outlives us as intended by the
fixed shutdown budget.
*/
func (self *Cmd) DeinitUnsync() {
	self.stopped = self.Cmd
	self.BroadcastUnsync(syscall.SIGTERM)
	self.Cmd = nil
	self.Stdin = nil
}

func (self *Cmd) Restart() {
	defer gg.Lock(self).Unlock()
	self.StopUnsync()

	main := self.Main()
	main.Opt.TermClear()

	cmd := main.Opt.MakeCmd()
	stdin, err := cmd.StdinPipe()
	if err != nil {
		log.Println(`unable to initialize subcommand stdin:`, err)
		return
	}

	// Starting the subprocess populates its `.Process`,
	// which allows us to kill the subprocess group on demand.
	err = cmd.Start()
	if err != nil {
		log.Println(`unable to start subcommand:`, err)
		return
	}

	self.Cmd = cmd
	self.Stdin = stdin
	self.waited = make(chan struct{})
	go main.CmdWait(cmd, self.waited)
}

/**
The stop sequence: SIGTERM the subprocess group, give it `KILL_GRACE` to
confirm exit, then SIGKILL the group and sweep any descendants that left the
group. Exit confirmation cancels the fallback immediately; there is no
delayed double-kill.

The restarting flag is held for the whole sequence; the debounce controller
consults it to drop events. The waiter instead checks `WasStopped`: the
outgoing subprocess is marked before the first signal goes out, so a kill we
initiated is never misreported as an unexpected exit, regardless of when the
waiter gets scheduled relative to the end of this sequence.
*/
func (self *Cmd) StopUnsync() {
	if self.ProcUnsync() == nil {
		self.Cmd = nil
		self.Stdin = nil
		return
	}

	self.restarting.Store(true)
	defer self.restarting.Store(false)

	self.stopped = self.Cmd
	self.BroadcastUnsync(syscall.SIGTERM)

	timer := time.NewTimer(KILL_GRACE)
	defer timer.Stop()

	select {
	case <-self.waited:
	case <-timer.C:
		self.BroadcastUnsync(syscall.SIGKILL)
		self.KillStragglersUnsync()
		if self.Stdin != nil {
			gg.Nop1(self.Stdin.Close())
		}
		// SIGKILL is not maskable; the waiter confirms promptly.
		<-self.waited
	}

	self.Cmd = nil
	self.Stdin = nil
}

/**
A subprocess may detach children from its process group via `setsid`. After
the group SIGKILL, sweep the remaining descendants individually so nothing
survives the forced kill.
*/
func (self *Cmd) KillStragglersUnsync() {
	verb := self.Main().Opt.Verb

	pids, err := SubPids(os.Getpid(), verb)
	if err != nil {
		if verb {
			log.Println(`unable to list subprocesses:`, err)
		}
		return
	}

	for _, pid := range pids {
		gg.Nop1(syscall.Kill(pid, syscall.SIGKILL))
	}
}

func (self *Cmd) Broadcast(sig syscall.Signal) {
	defer gg.Lock(self).Unlock()
	self.BroadcastUnsync(sig)
}

/**
Sends the signal to the subprocess group, denoted by the negative sign on the
PID. Requires `syscall.SysProcAttr{Setpgid: true}`.
*/
func (self *Cmd) BroadcastUnsync(sig syscall.Signal) {
	proc := self.ProcUnsync()
	if proc != nil {
		gg.Nop1(syscall.Kill(-proc.Pid, sig))
	}
}

func (self *Cmd) IsRunning() bool {
	defer gg.Lock(self).Unlock()
	return self.ProcUnsync() != nil
}

func (self *Cmd) IsRestarting() bool { return self.restarting.Load() }

/**
True when the given subprocess was terminated by us rather than exiting on
its own. Marked under the lock before the stop signal is sent, so the answer
is settled by the time the waiter can observe the exit.
*/
func (self *Cmd) WasStopped(cmd *exec.Cmd) bool {
	defer gg.Lock(self).Unlock()
	return self.stopped == cmd
}

/**
Invoked by the waiter after the subprocess exits on its own. Supervisor-
initiated teardown clears the references in the stop sequence instead.
*/
func (self *Cmd) Forget(cmd *exec.Cmd) {
	defer gg.Lock(self).Unlock()
	if self.Cmd == cmd {
		self.Cmd = nil
		self.Stdin = nil
	}
}

func (self *Cmd) WriteChar(char byte) {
	defer gg.Lock(self).Unlock()

	stdin := self.Stdin
	if stdin == nil {
		return
	}

	buf := &self.Buf
	buf[0] = char

	_, err := stdin.Write(buf[:])
	if err == nil {
		return
	}

	if e.Is(err, os.ErrClosed) {
		self.Stdin = nil
		return
	}

	panic(err)
}

func (self *Cmd) ProcUnsync() *os.Process {
	cmd := self.Cmd
	if cmd != nil {
		return cmd.Process
	}
	return nil
}
