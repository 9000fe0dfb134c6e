package main

import (
	"sync"
	"time"

	"github.com/mitranim/gg"
)

/**
Coalesces a burst of qualifying FS events into a single restart request.

There is at most one pending timer at any instant. Every new event cancels
and re-arms it, so the restart fires once per quiet period, timed from the
last event of the burst. Bulk FS operations such as a checkout or an install
produce many events in a short window; without this, each would trigger its
own restart.
*/
type Debounce struct {
	Mained
	sync.Mutex
	timer *time.Timer
}

func (self *Debounce) Touch() {
	main := self.Main()

	/**
	While the previous subprocess is being torn down, events are dropped
	outright rather than rescheduled. The teardown itself tends to generate
	FS noise, and a restart is already guaranteed to happen.
	*/
	if main.Cmd.IsRestarting() {
		return
	}

	defer gg.Lock(self).Unlock()
	if self.timer != nil {
		self.timer.Stop()
	}
	self.timer = time.AfterFunc(main.Opt.Debounce, main.Restart)
}

// Cancels any pending restart. Idempotent; used at shutdown.
func (self *Debounce) Stop() {
	defer gg.Lock(self).Unlock()
	if self.timer != nil {
		self.timer.Stop()
		self.timer = nil
	}
}
