package main

import (
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/mitranim/gg"
)

// Implemented by `WatchSet` and `WatchRec`.
type Watcher interface {
	Init(*Main)
	Deinit()
	Run()
	Refresh([]string)
}

/**
The default watcher backend: one watch registration per directory, held in a
set that supports atomic teardown-and-rebuild. Directories created after
startup are picked up by the periodic refresh, which re-enumerates the tree
and rebuilds the set when the directory count changes.
*/
type WatchSet struct {
	Mained
	sync.Mutex
	Done gg.Chan[struct{}]
	Fs   *fsnotify.Watcher
	Dirs map[string]bool
}

func (self *WatchSet) Init(main *Main) {
	self.Mained.Init(main)
	self.Done.InitCap(1)

	fs, err := fsnotify.NewWatcher()
	gg.Try(gg.Wrap(err, `unable to initialize FS watcher`))

	self.Fs = fs
	self.Dirs = map[string]bool{}
	self.Rebuild(FindWatchDirs(main.Opt.AbsWatch, main.Opt.IgnorePatterns))
}

/**
Removes every currently-held registration, then adds one per requested
directory. A directory that fails to open is logged in verbose mode and
skipped; the rest of the rebuild proceeds. Only the refresh path and init
call this.
*/
func (self *WatchSet) Rebuild(dirs []string) {
	defer gg.Lock(self).Unlock()

	if self.Fs == nil {
		return
	}
	verb := self.Main().Opt.Verb

	for dir := range self.Dirs {
		gg.Nop1(self.Fs.Remove(dir))
		delete(self.Dirs, dir)
	}

	for _, dir := range dirs {
		err := self.Fs.Add(dir)
		if err != nil {
			if verb {
				log.Printf(`unable to watch %q: %v`, dir, err)
			}
			continue
		}
		self.Dirs[dir] = true
	}

	if verb {
		log.Printf(`watching %v directories`, len(self.Dirs))
	}
}

/**
Directory count is a coarse heuristic: renames that preserve the total are
not detected. Accepted approximation; the alternative is diffing full path
sets every interval.
*/
func (self *WatchSet) Refresh(dirs []string) {
	if len(dirs) == self.Count() {
		return
	}
	self.Rebuild(dirs)
}

func (self *WatchSet) Count() int {
	defer gg.Lock(self).Unlock()
	return len(self.Dirs)
}

// Idempotent.
func (self *WatchSet) Deinit() {
	defer gg.Lock(self).Unlock()
	self.Done.SendZeroOpt()

	if self.Fs != nil {
		gg.Nop1(self.Fs.Close())
		self.Fs = nil
		self.Dirs = nil
	}
}

func (self *WatchSet) Run() {
	main := self.Main()
	fs := self.Fs
	if fs == nil {
		return
	}

	for {
		select {
		case <-self.Done:
			return

		case event, ok := <-fs.Events:
			if !ok {
				return
			}
			// Permission-only changes don't affect the running code.
			if event.Op == fsnotify.Chmod {
				continue
			}
			main.OnFsEvent(fsEvent(event.Name))

		case err, ok := <-fs.Errors:
			if !ok {
				return
			}
			if main.Opt.Verb {
				log.Println(`FS watch error:`, err)
			}
		}
	}
}
