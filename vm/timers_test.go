package vm_test

import (
	"testing"

	"go.creack.net/chip8/vm"
)

func TestTimersFloorAtZero(t *testing.T) {
	for _, v := range []byte{0, 1, 5, 255} {
		tm := vm.Timers{Delay: v, Sound: v / 2}
		for range int(v) {
			tm.Tick()
		}
		if tm.Delay != 0 || tm.Sound != 0 {
			t.Errorf("After %d ticks\nwant: 0 0\nhave: %d %d", v, tm.Delay, tm.Sound)
		}
		for range 3 {
			tm.Tick()
		}
		if tm.Delay != 0 || tm.Sound != 0 || tm.Tone() {
			t.Errorf("Timers went below zero: %+v", tm)
		}
	}
}

func TestTimersTone(t *testing.T) {
	tm := vm.Timers{Sound: 2}
	if !tm.Tone() {
		t.Error("Tone should be on")
	}
	tm.Tick()
	tm.Tick()
	if tm.Tone() {
		t.Error("Tone should be off")
	}
}
