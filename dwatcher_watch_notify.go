package main

import (
	"path/filepath"

	"github.com/mitranim/gg"
	"github.com/rjeczalik/notify"
)

/**
Alternative watcher backend using "github.com/rjeczalik/notify": one
recursive watch over the entire subtree. Efficient on platforms with native
recursive FS notifications (MacOS in particular); enabled with `-R`.
*/
type WatchRec struct {
	Mained
	Done   gg.Chan[struct{}]
	Events gg.Chan[notify.EventInfo]
}

func (self *WatchRec) Init(main *Main) {
	self.Mained.Init(main)
	self.Done.InitCap(1)
	self.Events.InitCap(1)

	path := filepath.Join(main.Opt.AbsWatch, `...`)
	if main.Opt.Verb {
		log.Printf(`watching %q`, path)
	}
	gg.Try(notify.Watch(path, self.Events, notify.All))
}

func (self *WatchRec) Deinit() {
	self.Done.SendZeroOpt()
	if self.Events != nil {
		notify.Stop(self.Events)
	}
}

// The recursive watch already covers directories created after startup.
func (self *WatchRec) Refresh([]string) {}

func (self *WatchRec) Run() {
	main := self.Main()

	for {
		select {
		case <-self.Done:
			return

		case event := <-self.Events:
			main.OnFsEvent(event)
		}
	}
}
