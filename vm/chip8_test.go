package vm_test

import (
	"errors"
	"testing"

	"go.creack.net/chip8/op"
	"go.creack.net/chip8/vm"
)

func TestNewChip8(t *testing.T) {
	if _, err := vm.NewChip8(nil, testConfig()); !errors.Is(err, vm.ErrEmptyProgram) {
		t.Errorf("Empty program\nwant: %v\nhave: %v", vm.ErrEmptyProgram, err)
	}
	if _, err := vm.NewChip8(make([]byte, op.MaxProgSize+1), testConfig()); !errors.Is(err, vm.ErrProgramTooLarge) {
		t.Errorf("Oversized program\nwant: %v\nhave: %v", vm.ErrProgramTooLarge, err)
	}

	m := newMachine(t, vm.Quirks{}, 0x00E0)
	if m.Regs.PC != op.ProgramOffset {
		t.Errorf("Initial PC\nwant: %#04x\nhave: %#04x", op.ProgramOffset, m.Regs.PC)
	}
	if m.Regs.SP != 0 || m.Regs.I != 0 || m.Timers.Delay != 0 || m.Timers.Sound != 0 {
		t.Error("Machine state not zeroed at boot")
	}
	if f := m.Display.Snapshot(); f.Lit() != 0 {
		t.Errorf("Display not blank at boot: %d pixels lit", f.Lit())
	}
}

func TestCycleLoop(t *testing.T) {
	m := newMachine(t, vm.Quirks{}, 0x00E0, 0x1202)

	ins, outcome, err := m.Cycle()
	if err != nil {
		t.Fatalf("Cycle: %s.", err)
	}
	if ins.Code != op.Cls || outcome != vm.Next {
		t.Errorf("First cycle\nwant: cls/next\nhave: %s/%s", ins, outcome)
	}
	for range 10 {
		if _, outcome, err = m.Cycle(); err != nil {
			t.Fatalf("Cycle: %s.", err)
		}
		if outcome != vm.Jump {
			t.Errorf("Loop outcome\nwant: %s\nhave: %s", vm.Jump, outcome)
		}
		if m.Regs.PC != 0x202 {
			t.Fatalf("Loop PC\nwant: 0x202\nhave: %#04x", m.Regs.PC)
		}
	}
	if m.Cycles != 11 {
		t.Errorf("Cycle count\nwant: 11\nhave: %d", m.Cycles)
	}
}

func TestCycleWaitKey(t *testing.T) {
	m := newMachine(t, vm.Quirks{}, 0xF30A, 0x1202)

	for range 3 {
		_, outcome, err := m.Cycle()
		if err != nil {
			t.Fatalf("Cycle: %s.", err)
		}
		if outcome != vm.Wait || m.Regs.PC != 0x200 {
			t.Fatalf("Waiting cycle\nwant: wait at 0x200\nhave: %s at %#04x", outcome, m.Regs.PC)
		}
	}
	m.Keys.SetPressed(0xC, true)
	m.Keys.SetPressed(0x7, true)
	if _, _, err := m.Cycle(); err != nil {
		t.Fatalf("Cycle: %s.", err)
	}
	if m.Waiting || m.Regs.PC != 0x202 {
		t.Errorf("Key press not taken, pc %#04x waiting %t", m.Regs.PC, m.Waiting)
	}
	if m.Regs.V[3] != 0x7 {
		t.Errorf("Key register\nwant: 0x7\nhave: %#x", m.Regs.V[3])
	}
}

func TestCycleErrorContext(t *testing.T) {
	m := newMachine(t, vm.Quirks{}, 0x00EE)
	_, _, err := m.Cycle()
	if !errors.Is(err, vm.ErrStackUnderflow) {
		t.Fatalf("Error mismatch\nwant: %v\nhave: %v", vm.ErrStackUnderflow, err)
	}
	if want, have := "pc 0x200 opcode 0x00ee: stack underflow", err.Error(); want != have {
		t.Errorf("Error message\nwant: %q\nhave: %q", want, have)
	}
	if m.Cycles != 0 {
		t.Errorf("Failed cycle counted: %d", m.Cycles)
	}
}

func TestTick(t *testing.T) {
	m := newMachine(t, vm.Quirks{}, 0x1200)
	m.Timers.Delay, m.Timers.Sound = 2, 1
	m.Tick()
	if m.Timers.Delay != 1 || m.Timers.Sound != 0 || m.Timers.Tone() {
		t.Errorf("After one tick: delay %d sound %d", m.Timers.Delay, m.Timers.Sound)
	}
	m.Tick()
	m.Tick()
	if m.Timers.Delay != 0 {
		t.Errorf("Delay below zero: %d", m.Timers.Delay)
	}
}
