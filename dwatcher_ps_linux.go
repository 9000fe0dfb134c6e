//go:build linux

package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitranim/gg"
)

/**
Lists descendant pids of the given process, used by the forced-kill sweep.
Prefers "/proc"; falls back on "ps" when unavailable.
*/
func SubPids(topPid int, verb bool) ([]int, error) {
	pids, err := SubPidsViaProcDir(topPid)
	if err == nil {
		return pids, nil
	}
	if verb {
		log.Println(`unable to get pids from "/proc", falling back on "ps":`, err)
	}
	return SubPidsViaPs(topPid)
}

func SubPidsViaProcDir(topPid int) ([]int, error) {
	procEntries, err := os.ReadDir(`/proc`)
	if err != nil {
		return nil, gg.Wrap(err, `unable to read directory "/proc"`)
	}

	// Index of child pids by ppid.
	ppidToPids := map[int][]int{}

	for _, entry := range procEntries {
		if !entry.IsDir() {
			continue
		}

		pidStr := entry.Name()
		pid, err := strconv.Atoi(pidStr)
		if err != nil {
			// Non-numeric names don't describe processes, skip.
			continue
		}

		status, err := os.ReadFile(filepath.Join(`/proc`, pidStr, `status`))
		if err != nil {
			// Process may have terminated, skip.
			continue
		}

		ppid := statusToPpid(gg.ToString(status))
		if ppid != 0 {
			ppidToPids[ppid] = append(ppidToPids[ppid], pid)
		}
	}

	return procIndexToDescs(ppidToPids, topPid, 0), nil
}

func statusToPpid(src string) (_ int) {
	for _, line := range gg.SplitLines(src) {
		rest, ok := strings.CutPrefix(line, `PPid:`)
		if !ok {
			rest, ok = strings.CutPrefix(line, `Ppid:`)
		}
		if !ok {
			continue
		}
		out, _ := strconv.Atoi(strings.TrimSpace(rest))
		return out
	}
	return
}
