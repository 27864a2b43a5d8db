package vm_test

import (
	"errors"
	"testing"

	"go.creack.net/chip8/op"
	"go.creack.net/chip8/vm"
)

func TestStackLIFO(t *testing.T) {
	var r vm.Registers
	r.Reset()

	for i := range op.StackDepth {
		if err := r.PushReturn(uint16(0x200 + 2*i)); err != nil {
			t.Fatalf("Push %d: %s.", i, err)
		}
	}
	if err := r.PushReturn(0x300); !errors.Is(err, vm.ErrStackOverflow) {
		t.Fatalf("Push past capacity\nwant: %v\nhave: %v", vm.ErrStackOverflow, err)
	}
	for i := op.StackDepth - 1; i >= 0; i-- {
		addr, err := r.PopReturn()
		if err != nil {
			t.Fatalf("Pop %d: %s.", i, err)
		}
		if want := uint16(0x200 + 2*i); addr != want {
			t.Errorf("Pop mismatch\nwant: %#04x\nhave: %#04x", want, addr)
		}
	}
	if _, err := r.PopReturn(); !errors.Is(err, vm.ErrStackUnderflow) {
		t.Fatalf("Pop of empty stack\nwant: %v\nhave: %v", vm.ErrStackUnderflow, err)
	}
}

func TestRegistersReset(t *testing.T) {
	r := vm.Registers{I: 12, SP: 3}
	r.V[4] = 9
	r.Reset()
	if r.PC != op.ProgramOffset || r.I != 0 || r.SP != 0 || r.V[4] != 0 {
		t.Errorf("Reset left state behind: %+v", r)
	}
}
