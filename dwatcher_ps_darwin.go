//go:build darwin

package main

import (
	"github.com/mitranim/gg"
	"golang.org/x/sys/unix"
)

/**
Lists descendant pids of the given process, used by the forced-kill sweep.
Prefers the kernel process table; falls back on "ps".
*/
func SubPids(topPid int, verb bool) ([]int, error) {
	pids, err := SubPidsViaSyscall(topPid)
	if err == nil {
		return pids, nil
	}
	if verb {
		log.Println(`unable to get pids via syscall, falling back on "ps":`, err)
	}
	return SubPidsViaPs(topPid)
}

func SubPidsViaSyscall(topPid int) ([]int, error) {
	// Get all processes.
	infos, err := unix.SysctlKinfoProcSlice(`kern.proc.all`)
	if err != nil {
		return nil, gg.Wrap(err, `failed to get process list`)
	}

	// Index child pids by ppid.
	ppidToPids := make(map[int][]int, len(infos))
	for _, info := range infos {
		pid := int(info.Proc.P_pid)
		ppid := int(info.Eproc.Ppid)
		ppidToPids[ppid] = append(ppidToPids[ppid], pid)
	}

	return procIndexToDescs(ppidToPids, topPid, 0), nil
}
