package main

import (
	"io/fs"
	"path/filepath"
	"sort"
	"sync"

	"github.com/charlievieth/fastwalk"
)

/**
Enumerates the directories to watch under the given root. Always includes the
root itself. Directories whose root-relative path matches an ignore pattern
are pruned, not descended into.

Traversal errors are swallowed per subtree: a permission failure or a
directory deleted mid-walk loses that subtree only, and siblings continue.
The walk also tolerates concurrent FS mutation, so the overall call never
fails. Callers compensate by re-running this periodically.
*/
func FindWatchDirs(root string, patterns FlagIgnorePatterns) []string {
	var lock sync.Mutex
	dirs := []string{root}

	conf := fastwalk.Config{Follow: false}

	// The walk is parallel; the callback may run on multiple goroutines.
	_ = fastwalk.Walk(&conf, root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !entry.IsDir() || path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}

		if patterns.IgnoreDir(filepath.ToSlash(rel)) {
			return fs.SkipDir
		}

		lock.Lock()
		defer lock.Unlock()
		dirs = append(dirs, path)
		return nil
	})

	sort.Strings(dirs)
	return dirs
}
