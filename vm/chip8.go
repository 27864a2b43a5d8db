package vm

import (
	"fmt"
	"math/rand/v2"

	"go.creack.net/chip8/op"
)

// Chip8 holds the whole machine state and executes single cycles.
// It is not safe for concurrent use except for Keys.
type Chip8 struct {
	Ram     Ram
	Regs    Registers
	Display Display
	Timers  Timers
	Keys    *Keys
	Quirks  Quirks

	Cycles  uint64 // Executed instructions.
	Waiting bool   // Last cycle was held by FX0A.

	rand *rand.Rand
}

// NewChip8 boots a machine with the given program image.
func NewChip8(program []byte, cfg Config) (*Chip8, error) {
	if len(program) == 0 {
		return nil, ErrEmptyProgram
	}
	cfg = cfg.withDefaults()
	m := &Chip8{
		Keys:   &Keys{},
		Quirks: cfg.Quirks,
		rand:   cfg.Rand,
	}
	if err := m.Ram.Load(program); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	m.Regs.Reset()
	m.Display.Clear()
	return m, nil
}

// Fetch decodes the instruction at PC without executing it.
// The PC must be even.
func (m *Chip8) Fetch() (Instruction, error) {
	if m.Regs.PC%op.OpcodeSize != 0 {
		return Instruction{}, fmt.Errorf("pc 0x%03x: %w", m.Regs.PC, ErrMisaligned)
	}
	opcode, err := m.Ram.Opcode(m.Regs.PC)
	if err != nil {
		return Instruction{}, err
	}
	return Decode(opcode), nil
}

// Cycle fetches, decodes and executes one instruction, then moves the PC.
func (m *Chip8) Cycle() (Instruction, Outcome, error) {
	ins, err := m.Fetch()
	if err != nil {
		return ins, Next, err
	}
	outcome, err := Execute(m, ins)
	if err != nil {
		return ins, outcome, fmt.Errorf("pc 0x%03x opcode 0x%04x: %w", m.Regs.PC, ins.Raw, err)
	}
	switch outcome {
	case Next:
		m.Regs.PC += op.OpcodeSize
	case Skip:
		m.Regs.PC += 2 * op.OpcodeSize
	}
	m.Waiting = outcome == Wait
	m.Cycles++
	return ins, outcome, nil
}

// Tick advances the timers by one cadence interval.
func (m *Chip8) Tick() {
	m.Timers.Tick()
}

func (m *Chip8) shiftSource(ins Instruction) byte {
	if m.Quirks.ShiftUsesVY {
		return m.Regs.V[ins.Y]
	}
	return m.Regs.V[ins.X]
}
