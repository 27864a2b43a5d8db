package vm

import (
	"fmt"

	"go.creack.net/chip8/op"
)

// Outcome tells the cycle driver how to move the PC after an instruction.
type Outcome int

// Outcome values.
const (
	Next Outcome = iota // Advance one instruction.
	Skip                // Advance two instructions.
	Jump                // The instruction set the PC.
	Wait                // Not satisfied yet, hold the PC and retry next cycle.
)

func (o Outcome) String() string {
	switch o {
	case Next:
		return "next"
	case Skip:
		return "skip"
	case Jump:
		return "jump"
	case Wait:
		return "wait"
	default:
		return "unknown"
	}
}

type execFunc func(m *Chip8, ins Instruction) (Outcome, error)

func skipIf(cond bool) Outcome {
	if cond {
		return Skip
	}
	return Next
}

// logicOp returns the op function for the bitwise register operations.
func logicOp(operation func(a, b byte) byte) execFunc {
	return func(m *Chip8, ins Instruction) (Outcome, error) {
		r := &m.Regs
		r.V[ins.X] = operation(r.V[ins.X], r.V[ins.Y])
		if m.Quirks.LogicResetsVF {
			r.SetFlag(false)
		}
		return Next, nil
	}
}

func opOr(a, b byte) byte  { return a | b }
func opAnd(a, b byte) byte { return a & b }
func opXor(a, b byte) byte { return a ^ b }

var ops = func() [op.NumCodes]execFunc {
	var ops [op.NumCodes]execFunc

	// 0NNN. Machine code routines are not supported, treated as a noop.
	ops[op.Sys] = func(*Chip8, Instruction) (Outcome, error) { return Next, nil }

	ops[op.Cls] = func(m *Chip8, _ Instruction) (Outcome, error) {
		m.Display.Clear()
		return Next, nil
	}

	// 00EE. The stack holds the address of the instruction following the call.
	ops[op.Ret] = func(m *Chip8, _ Instruction) (Outcome, error) {
		addr, err := m.Regs.PopReturn()
		if err != nil {
			return Next, err
		}
		m.Regs.PC = addr
		return Jump, nil
	}

	ops[op.Jp] = func(m *Chip8, ins Instruction) (Outcome, error) {
		m.Regs.PC = ins.NNN
		return Jump, nil
	}

	ops[op.Call] = func(m *Chip8, ins Instruction) (Outcome, error) {
		if err := m.Regs.PushReturn(m.Regs.PC + op.OpcodeSize); err != nil {
			return Next, err
		}
		m.Regs.PC = ins.NNN
		return Jump, nil
	}

	ops[op.SeByte] = func(m *Chip8, ins Instruction) (Outcome, error) {
		return skipIf(m.Regs.V[ins.X] == ins.NN), nil
	}
	ops[op.SneByte] = func(m *Chip8, ins Instruction) (Outcome, error) {
		return skipIf(m.Regs.V[ins.X] != ins.NN), nil
	}
	ops[op.SeReg] = func(m *Chip8, ins Instruction) (Outcome, error) {
		return skipIf(m.Regs.V[ins.X] == m.Regs.V[ins.Y]), nil
	}
	ops[op.SneReg] = func(m *Chip8, ins Instruction) (Outcome, error) {
		return skipIf(m.Regs.V[ins.X] != m.Regs.V[ins.Y]), nil
	}

	ops[op.LdByte] = func(m *Chip8, ins Instruction) (Outcome, error) {
		m.Regs.V[ins.X] = ins.NN
		return Next, nil
	}

	// 7XNN. Wraps, VF untouched.
	ops[op.AddByte] = func(m *Chip8, ins Instruction) (Outcome, error) {
		m.Regs.V[ins.X] += ins.NN
		return Next, nil
	}

	ops[op.LdReg] = func(m *Chip8, ins Instruction) (Outcome, error) {
		m.Regs.V[ins.X] = m.Regs.V[ins.Y]
		return Next, nil
	}

	ops[op.Or] = logicOp(opOr)
	ops[op.And] = logicOp(opAnd)
	ops[op.Xor] = logicOp(opXor)

	// Arithmetic. Operands are read before any write, the flag is written last.
	ops[op.AddReg] = func(m *Chip8, ins Instruction) (Outcome, error) {
		sum := uint16(m.Regs.V[ins.X]) + uint16(m.Regs.V[ins.Y])
		m.Regs.V[ins.X] = byte(sum)
		m.Regs.SetFlag(sum > 0xFF)
		return Next, nil
	}
	ops[op.Sub] = func(m *Chip8, ins Instruction) (Outcome, error) {
		vx, vy := m.Regs.V[ins.X], m.Regs.V[ins.Y]
		m.Regs.V[ins.X] = vx - vy
		m.Regs.SetFlag(vx >= vy)
		return Next, nil
	}
	ops[op.Subn] = func(m *Chip8, ins Instruction) (Outcome, error) {
		vx, vy := m.Regs.V[ins.X], m.Regs.V[ins.Y]
		m.Regs.V[ins.X] = vy - vx
		m.Regs.SetFlag(vy >= vx)
		return Next, nil
	}
	ops[op.Shr] = func(m *Chip8, ins Instruction) (Outcome, error) {
		src := m.shiftSource(ins)
		m.Regs.V[ins.X] = src >> 1
		m.Regs.SetFlag(src&0x01 != 0)
		return Next, nil
	}
	ops[op.Shl] = func(m *Chip8, ins Instruction) (Outcome, error) {
		src := m.shiftSource(ins)
		m.Regs.V[ins.X] = src << 1
		m.Regs.SetFlag(src&0x80 != 0)
		return Next, nil
	}

	ops[op.LdI] = func(m *Chip8, ins Instruction) (Outcome, error) {
		m.Regs.I = ins.NNN
		return Next, nil
	}

	// BNNN. Indexed jump.
	ops[op.JpV0] = func(m *Chip8, ins Instruction) (Outcome, error) {
		base := m.Regs.V[0]
		if m.Quirks.JumpUsesVX {
			base = m.Regs.V[ins.X]
		}
		m.Regs.PC = ins.NNN + uint16(base)
		return Jump, nil
	}

	ops[op.Rnd] = func(m *Chip8, ins Instruction) (Outcome, error) {
		m.Regs.V[ins.X] = byte(m.rand.Uint32()) & ins.NN
		return Next, nil
	}

	// DXYN. Sprite rows are read from I, I stays unchanged.
	ops[op.Drw] = func(m *Chip8, ins Instruction) (Outcome, error) {
		rows, err := m.Ram.Bytes(m.Regs.I, int(ins.N))
		if err != nil {
			return Next, fmt.Errorf("sprite: %w", err)
		}
		collision := m.Display.DrawSprite(int(m.Regs.V[ins.X]), int(m.Regs.V[ins.Y]), rows)
		m.Regs.SetFlag(collision)
		return Next, nil
	}

	ops[op.Skp] = func(m *Chip8, ins Instruction) (Outcome, error) {
		return skipIf(m.Keys.IsPressed(m.Regs.V[ins.X] & 0xF)), nil
	}
	ops[op.Sknp] = func(m *Chip8, ins Instruction) (Outcome, error) {
		return skipIf(!m.Keys.IsPressed(m.Regs.V[ins.X] & 0xF)), nil
	}

	ops[op.LdVxDT] = func(m *Chip8, ins Instruction) (Outcome, error) {
		m.Regs.V[ins.X] = m.Timers.Delay
		return Next, nil
	}

	// FX0A. Never blocks, the driver retries until a key is down.
	ops[op.LdVxK] = func(m *Chip8, ins Instruction) (Outcome, error) {
		key, ok := m.Keys.FirstPressed()
		if !ok {
			return Wait, nil
		}
		m.Regs.V[ins.X] = key
		return Next, nil
	}

	ops[op.LdDTVx] = func(m *Chip8, ins Instruction) (Outcome, error) {
		m.Timers.Delay = m.Regs.V[ins.X]
		return Next, nil
	}
	ops[op.LdSTVx] = func(m *Chip8, ins Instruction) (Outcome, error) {
		m.Timers.Sound = m.Regs.V[ins.X]
		return Next, nil
	}

	// FX1E. VF untouched.
	ops[op.AddI] = func(m *Chip8, ins Instruction) (Outcome, error) {
		m.Regs.I += uint16(m.Regs.V[ins.X])
		return Next, nil
	}

	ops[op.LdF] = func(m *Chip8, ins Instruction) (Outcome, error) {
		m.Regs.I = op.FontOffset + uint16(m.Regs.V[ins.X]&0xF)*op.GlyphSize
		return Next, nil
	}

	ops[op.LdB] = func(m *Chip8, ins Instruction) (Outcome, error) {
		v := m.Regs.V[ins.X]
		if err := m.Ram.Store(m.Regs.I, []byte{v / 100, v / 10 % 10, v % 10}); err != nil {
			return Next, fmt.Errorf("bcd: %w", err)
		}
		return Next, nil
	}

	// FX55/FX65. Registers V0 through VX inclusive.
	ops[op.LdIVx] = func(m *Chip8, ins Instruction) (Outcome, error) {
		n := int(ins.X) + 1
		if err := m.Ram.Store(m.Regs.I, m.Regs.V[:n]); err != nil {
			return Next, fmt.Errorf("register dump: %w", err)
		}
		if m.Quirks.LoadStoreIncrementsI {
			m.Regs.I += uint16(n)
		}
		return Next, nil
	}
	ops[op.LdVxI] = func(m *Chip8, ins Instruction) (Outcome, error) {
		n := int(ins.X) + 1
		buf, err := m.Ram.Bytes(m.Regs.I, n)
		if err != nil {
			return Next, fmt.Errorf("register load: %w", err)
		}
		copy(m.Regs.V[:n], buf)
		if m.Quirks.LoadStoreIncrementsI {
			m.Regs.I += uint16(n)
		}
		return Next, nil
	}

	return ops
}()

// Execute applies the instruction to the machine.
// It does not move the PC unless the outcome is Jump.
func Execute(m *Chip8, ins Instruction) (Outcome, error) {
	var f execFunc
	if int(ins.Code) > 0 && int(ins.Code) < len(ops) {
		f = ops[ins.Code]
	}
	if f == nil {
		return Next, fmt.Errorf("%w: 0x%04x", ErrUnknownOpcode, ins.Raw)
	}
	return f(m, ins)
}
