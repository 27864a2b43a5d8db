package vm

import (
	"fmt"

	"go.creack.net/chip8/op"
)

// Registers is the register file.
type Registers struct {
	V     [op.RegisterCount]byte // V0-VF, VF is the flag.
	I     uint16                 // Index register.
	PC    uint16                 // Program counter.
	Stack [op.StackDepth]uint16  // Return addresses.
	SP    int                    // Number of entries in Stack.
}

// Reset zeroes everything and points the PC at the program.
func (r *Registers) Reset() {
	*r = Registers{PC: op.ProgramOffset}
}

// SetFlag writes VF. Must be the last write of an operation.
func (r *Registers) SetFlag(set bool) {
	r.V[op.FlagRegister] = 0
	if set {
		r.V[op.FlagRegister] = 1
	}
}

func (r *Registers) PushReturn(addr uint16) error {
	if r.SP >= len(r.Stack) {
		return fmt.Errorf("%w: push 0x%04x at depth %d", ErrStackOverflow, addr, r.SP)
	}
	r.Stack[r.SP] = addr
	r.SP++
	return nil
}

func (r *Registers) PopReturn() (uint16, error) {
	if r.SP == 0 {
		return 0, ErrStackUnderflow
	}
	r.SP--
	return r.Stack[r.SP], nil
}
