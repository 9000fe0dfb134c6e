package main

import (
	"testing"
	"time"
)

func testMain(debounce time.Duration) *Main {
	main := new(Main)
	main.Opt.Debounce = debounce
	main.Opt.NoClear = true
	main.ChanRestart.InitCap(1)
	main.ChanKill.InitCap(1)
	main.Cmd.Init(main)
	main.Deb.Init(main)
	return main
}

func expectRestart(t *testing.T, main *Main, within time.Duration) {
	t.Helper()
	select {
	case <-main.ChanRestart:
	case <-time.After(within):
		t.Fatal(`expected a restart within`, within)
	}
}

func expectNoRestart(t *testing.T, main *Main, during time.Duration) {
	t.Helper()
	select {
	case <-main.ChanRestart:
		t.Fatal(`unexpected restart`)
	case <-time.After(during):
	}
}

// A burst with gaps below the debounce interval produces exactly one
// restart, timed from the last event.
func TestDebounceCoalescing(t *testing.T) {
	main := testMain(100 * time.Millisecond)

	main.Deb.Touch()
	time.Sleep(50 * time.Millisecond)
	main.Deb.Touch()
	time.Sleep(40 * time.Millisecond)
	main.Deb.Touch()

	// The first event's deadline has long passed; only the last one counts.
	expectNoRestart(t, main, 50*time.Millisecond)
	expectRestart(t, main, 300*time.Millisecond)
	expectNoRestart(t, main, 200*time.Millisecond)
}

// Two events separated by more than the debounce interval produce two
// restarts.
func TestDebounceSeparateQuietPeriods(t *testing.T) {
	main := testMain(50 * time.Millisecond)

	main.Deb.Touch()
	expectRestart(t, main, time.Second)

	main.Deb.Touch()
	expectRestart(t, main, time.Second)
}

// Events arriving mid-restart are dropped, not rescheduled.
func TestDebounceDropsDuringRestart(t *testing.T) {
	main := testMain(30 * time.Millisecond)

	main.Cmd.restarting.Store(true)
	main.Deb.Touch()
	expectNoRestart(t, main, 200*time.Millisecond)

	main.Cmd.restarting.Store(false)
	main.Deb.Touch()
	expectRestart(t, main, time.Second)
}

func TestDebounceStop(t *testing.T) {
	main := testMain(30 * time.Millisecond)

	main.Deb.Touch()
	main.Deb.Stop()
	expectNoRestart(t, main, 200*time.Millisecond)

	// Idempotent.
	main.Deb.Stop()
	main.Deb.Stop()
}
