package vm_test

import (
	"errors"
	"strconv"
	"testing"

	"go.creack.net/chip8/op"
	"go.creack.net/chip8/vm"
)

type execCase struct {
	Name    string
	Quirks  vm.Quirks
	Program []uint16
	Steps   int
	Input   func(m *vm.Chip8)

	WantPC  uint16
	WantV   map[int]byte
	WantI   int // -1 to skip.
	WantErr error
	Check   func(t *testing.T, m *vm.Chip8)
}

func testExec(t *testing.T, tc execCase) {
	t.Helper()
	m := newMachine(t, tc.Quirks, tc.Program...)
	if tc.Input != nil {
		tc.Input(m)
	}
	if tc.Steps == 0 {
		tc.Steps = 1
	}
	var err error
	for range tc.Steps {
		if _, _, err = m.Cycle(); err != nil {
			break
		}
	}
	if tc.WantErr != nil {
		if !errors.Is(err, tc.WantErr) {
			t.Fatalf("Error mismatch\nwant: %v\nhave: %v", tc.WantErr, err)
		}
		return
	}
	if err != nil {
		t.Fatalf("Unexpected error: %s.", err)
	}
	if m.Regs.PC != tc.WantPC {
		t.Errorf("Program counter mismatch\nwant: %#04x\nhave: %#04x", tc.WantPC, m.Regs.PC)
	}
	for r, want := range tc.WantV {
		if have := m.Regs.V[r]; have != want {
			t.Errorf("Register mismatch\nwant: %#02x (V%X)\nhave: %#02x", want, r, have)
		}
	}
	if tc.WantI >= 0 && m.Regs.I != uint16(tc.WantI) {
		t.Errorf("Index register mismatch\nwant: %#04x\nhave: %#04x", tc.WantI, m.Regs.I)
	}
	if tc.Check != nil {
		tc.Check(t, m)
	}
}

func setV(values map[int]byte) func(*vm.Chip8) {
	return func(m *vm.Chip8) {
		for r, v := range values {
			m.Regs.V[r] = v
		}
	}
}

func TestExecArithmetic(t *testing.T) {
	for _, tc := range []execCase{
		{Name: "add carry", Program: []uint16{0x8014}, Input: setV(map[int]byte{0: 200, 1: 100}),
			WantPC: 0x202, WantV: map[int]byte{0: 44, 0xF: 1}, WantI: -1},
		{Name: "add no carry", Program: []uint16{0x8014}, Input: setV(map[int]byte{0: 20, 1: 100, 0xF: 7}),
			WantPC: 0x202, WantV: map[int]byte{0: 120, 0xF: 0}, WantI: -1},
		{Name: "sub borrow", Program: []uint16{0x8015}, Input: setV(map[int]byte{0: 10, 1: 20}),
			WantPC: 0x202, WantV: map[int]byte{0: 246, 0xF: 0}, WantI: -1},
		{Name: "sub no borrow", Program: []uint16{0x8015}, Input: setV(map[int]byte{0: 20, 1: 20}),
			WantPC: 0x202, WantV: map[int]byte{0: 0, 0xF: 1}, WantI: -1},
		{Name: "subn", Program: []uint16{0x8017}, Input: setV(map[int]byte{0: 30, 1: 10}),
			WantPC: 0x202, WantV: map[int]byte{0: 236, 0xF: 0}, WantI: -1},
		{Name: "flag wins over vf destination", Program: []uint16{0x8F14}, Input: setV(map[int]byte{0xF: 255, 1: 1}),
			WantPC: 0x202, WantV: map[int]byte{0xF: 1}, WantI: -1},
		{Name: "add byte wraps without flag", Program: []uint16{0x7A10}, Input: setV(map[int]byte{0xA: 0xF8, 0xF: 9}),
			WantPC: 0x202, WantV: map[int]byte{0xA: 0x08, 0xF: 9}, WantI: -1},
		{Name: "shr in place", Program: []uint16{0x8126}, Input: setV(map[int]byte{1: 0x05, 2: 0x80}),
			WantPC: 0x202, WantV: map[int]byte{1: 0x02, 0xF: 1}, WantI: -1},
		{Name: "shl in place", Program: []uint16{0x812E}, Input: setV(map[int]byte{1: 0x81, 2: 0x01}),
			WantPC: 0x202, WantV: map[int]byte{1: 0x02, 0xF: 1}, WantI: -1},
		{Name: "shr from vy", Quirks: vm.Quirks{ShiftUsesVY: true}, Program: []uint16{0x8126}, Input: setV(map[int]byte{1: 0x05, 2: 0x80}),
			WantPC: 0x202, WantV: map[int]byte{1: 0x40, 2: 0x80, 0xF: 0}, WantI: -1},
		{Name: "logic", Program: []uint16{0x8011, 0x8122, 0x8233}, Steps: 3, Input: setV(map[int]byte{0: 0x0C, 1: 0x0A, 2: 0x0F, 3: 0xFF, 0xF: 5}),
			WantPC: 0x206, WantV: map[int]byte{0: 0x0E, 1: 0x0A, 2: 0xF0, 0xF: 5}, WantI: -1},
		{Name: "logic resets vf", Quirks: vm.Quirks{LogicResetsVF: true}, Program: []uint16{0x8013}, Input: setV(map[int]byte{0: 1, 1: 3, 0xF: 5}),
			WantPC: 0x202, WantV: map[int]byte{0: 2, 0xF: 0}, WantI: -1},
		{Name: "load", Program: []uint16{0x6A2B, 0x8BA0}, Steps: 2,
			WantPC: 0x204, WantV: map[int]byte{0xA: 0x2B, 0xB: 0x2B}, WantI: -1},
	} {
		t.Run(tc.Name, func(t *testing.T) { testExec(t, tc) })
	}
}

func TestExecFlow(t *testing.T) {
	for _, tc := range []execCase{
		{Name: "jump", Program: []uint16{0x1456}, WantPC: 0x456, WantI: -1},
		{Name: "indexed jump", Program: []uint16{0xB300}, Input: setV(map[int]byte{0: 0x10, 3: 0x20}), WantPC: 0x310, WantI: -1},
		{Name: "indexed jump vx", Quirks: vm.Quirks{JumpUsesVX: true}, Program: []uint16{0xB300}, Input: setV(map[int]byte{0: 0x10, 3: 0x20}), WantPC: 0x320, WantI: -1},
		{Name: "call and return", Program: []uint16{0x2204, 0x0000, 0x00EE}, Steps: 2, WantPC: 0x202, WantI: -1,
			Check: func(t *testing.T, m *vm.Chip8) {
				if m.Regs.SP != 0 {
					t.Errorf("Stack not empty: %d", m.Regs.SP)
				}
			}},
		{Name: "call pushes next", Program: []uint16{0x2300}, WantPC: 0x300, WantI: -1,
			Check: func(t *testing.T, m *vm.Chip8) {
				if m.Regs.SP != 1 || m.Regs.Stack[0] != 0x202 {
					t.Errorf("Stack mismatch: sp %d top %#04x", m.Regs.SP, m.Regs.Stack[0])
				}
			}},
		{Name: "return underflow", Program: []uint16{0x00EE}, WantErr: vm.ErrStackUnderflow},
		{Name: "call overflow", Program: []uint16{0x2200}, Steps: op.StackDepth + 1, WantErr: vm.ErrStackOverflow},
		{Name: "sys is ignored", Program: []uint16{0x0123}, WantPC: 0x202, WantI: -1},
		{Name: "unknown", Program: []uint16{0x5121}, WantErr: vm.ErrUnknownOpcode},
		{Name: "fetch out of memory", Program: []uint16{0x1FFE}, Steps: 3, WantErr: vm.ErrOutOfRange},
		{Name: "jump misaligned", Program: []uint16{0x1201}, Steps: 2, WantErr: vm.ErrMisaligned},
		{Name: "call misaligned", Program: []uint16{0x2203}, Steps: 2, WantErr: vm.ErrMisaligned},
		{Name: "jump v0 misaligned", Program: []uint16{0x6001, 0xB300}, Steps: 3, WantErr: vm.ErrMisaligned},

		{Name: "se byte taken", Program: []uint16{0x3A42}, Input: setV(map[int]byte{0xA: 0x42}), WantPC: 0x204, WantI: -1},
		{Name: "se byte not taken", Program: []uint16{0x3A42}, WantPC: 0x202, WantI: -1},
		{Name: "sne byte taken", Program: []uint16{0x4A42}, WantPC: 0x204, WantI: -1},
		{Name: "sne byte not taken", Program: []uint16{0x4A42}, Input: setV(map[int]byte{0xA: 0x42}), WantPC: 0x202, WantI: -1},
		{Name: "se reg taken", Program: []uint16{0x5120}, Input: setV(map[int]byte{1: 3, 2: 3}), WantPC: 0x204, WantI: -1},
		{Name: "sne reg taken", Program: []uint16{0x9120}, Input: setV(map[int]byte{1: 3, 2: 4}), WantPC: 0x204, WantI: -1},
		{Name: "sne reg not taken", Program: []uint16{0x9120}, WantPC: 0x202, WantI: -1},
	} {
		t.Run(tc.Name, func(t *testing.T) { testExec(t, tc) })
	}
}

func TestExecMemory(t *testing.T) {
	for _, tc := range []execCase{
		{Name: "load i", Program: []uint16{0xA2F0}, WantPC: 0x202, WantI: 0x2F0},
		{Name: "add i", Program: []uint16{0xF31E}, Input: func(m *vm.Chip8) { m.Regs.I = 0x300; m.Regs.V[3] = 0x22 },
			WantPC: 0x202, WantI: 0x322, WantV: map[int]byte{0xF: 0}},
		{Name: "glyph", Program: []uint16{0xF429}, Input: setV(map[int]byte{4: 0xB}), WantPC: 0x202, WantI: op.FontOffset + 0xB*op.GlyphSize},
		{Name: "bcd", Program: []uint16{0xF533}, Input: func(m *vm.Chip8) { m.Regs.I = 0x400; m.Regs.V[5] = 254 },
			WantPC: 0x202, WantI: 0x400,
			Check: func(t *testing.T, m *vm.Chip8) {
				if have := m.Ram[0x400:0x403]; have[0] != 2 || have[1] != 5 || have[2] != 4 {
					t.Errorf("BCD mismatch\nwant: [2 5 4]\nhave: %v", have)
				}
			}},
		{Name: "bcd out of range", Program: []uint16{0xF533}, Input: func(m *vm.Chip8) { m.Regs.I = op.MemSize - 2 }, WantErr: vm.ErrOutOfRange},
		{Name: "dump", Program: []uint16{0xF255}, Input: func(m *vm.Chip8) { m.Regs.I = 0x500; m.Regs.V = [16]byte{1, 2, 3, 4} },
			WantPC: 0x202, WantI: 0x500,
			Check: func(t *testing.T, m *vm.Chip8) {
				if have := m.Ram[0x500:0x504]; have[0] != 1 || have[1] != 2 || have[2] != 3 || have[3] != 0 {
					t.Errorf("Dump mismatch\nwant: [1 2 3 0]\nhave: %v", have)
				}
			}},
		{Name: "dump increments i", Quirks: vm.Quirks{LoadStoreIncrementsI: true}, Program: []uint16{0xF255}, Input: func(m *vm.Chip8) { m.Regs.I = 0x500 },
			WantPC: 0x202, WantI: 0x503},
		{Name: "load regs", Program: []uint16{0xF165}, Input: func(m *vm.Chip8) { m.Regs.I = 0x600; m.Ram[0x600] = 9; m.Ram[0x601] = 8; m.Ram[0x602] = 7 },
			WantPC: 0x202, WantI: 0x600, WantV: map[int]byte{0: 9, 1: 8, 2: 0}},
		{Name: "load regs out of range", Program: []uint16{0xFF65}, Input: func(m *vm.Chip8) { m.Regs.I = op.MemSize - 4 }, WantErr: vm.ErrOutOfRange},
		{Name: "dump out of range", Program: []uint16{0xFF55}, Input: func(m *vm.Chip8) { m.Regs.I = 0xFFFF }, WantErr: vm.ErrOutOfRange},
	} {
		t.Run(tc.Name, func(t *testing.T) { testExec(t, tc) })
	}
}

func TestExecTimersAndKeys(t *testing.T) {
	for _, tc := range []execCase{
		{Name: "set delay", Program: []uint16{0xF315}, Input: setV(map[int]byte{3: 42}), WantPC: 0x202, WantI: -1,
			Check: func(t *testing.T, m *vm.Chip8) {
				if m.Timers.Delay != 42 {
					t.Errorf("Delay timer\nwant: 42\nhave: %d", m.Timers.Delay)
				}
			}},
		{Name: "set sound", Program: []uint16{0xF318}, Input: setV(map[int]byte{3: 7}), WantPC: 0x202, WantI: -1,
			Check: func(t *testing.T, m *vm.Chip8) {
				if m.Timers.Sound != 7 || !m.Timers.Tone() {
					t.Errorf("Sound timer\nwant: 7\nhave: %d", m.Timers.Sound)
				}
			}},
		{Name: "read delay", Program: []uint16{0xF607}, Input: func(m *vm.Chip8) { m.Timers.Delay = 13 }, WantPC: 0x202, WantV: map[int]byte{6: 13}, WantI: -1},
		{Name: "skip if pressed", Program: []uint16{0xE19E}, Input: func(m *vm.Chip8) { m.Regs.V[1] = 0xA; m.Keys.SetPressed(0xA, true) }, WantPC: 0x204, WantI: -1},
		{Name: "skip if pressed not taken", Program: []uint16{0xE19E}, Input: func(m *vm.Chip8) { m.Regs.V[1] = 0xA; m.Keys.SetPressed(0xB, true) }, WantPC: 0x202, WantI: -1},
		{Name: "skip if not pressed", Program: []uint16{0xE1A1}, Input: setV(map[int]byte{1: 0xA}), WantPC: 0x204, WantI: -1},
		{Name: "wait for key", Program: []uint16{0xF20A}, Steps: 5, WantPC: 0x200, WantI: -1,
			Check: func(t *testing.T, m *vm.Chip8) {
				if !m.Waiting {
					t.Error("Machine should be waiting")
				}
			}},
		{Name: "random is masked", Program: []uint16{0xC70F, 0xC800}, Steps: 2, WantPC: 0x204, WantI: -1,
			Check: func(t *testing.T, m *vm.Chip8) {
				if m.Regs.V[7]&0xF0 != 0 || m.Regs.V[8] != 0 {
					t.Errorf("Random not masked: %#02x %#02x", m.Regs.V[7], m.Regs.V[8])
				}
			}},
	} {
		t.Run(tc.Name, func(t *testing.T) { testExec(t, tc) })
	}
}

func TestExecDraw(t *testing.T) {
	// Draw glyph 0 at 0,0 twice.
	m := newMachine(t, vm.Quirks{}, 0x6000, 0xF029, 0xD005, 0xD005)
	for range 3 {
		if _, _, err := m.Cycle(); err != nil {
			t.Fatalf("Cycle: %s.", err)
		}
	}
	f := m.Display.Snapshot()
	if f.Lit() != 14 || m.Regs.V[0xF] != 0 {
		t.Errorf("First draw\nwant: 14 pixels, vf 0\nhave: %d pixels, vf %d", f.Lit(), m.Regs.V[0xF])
	}
	if m.Regs.I != op.FontOffset {
		t.Errorf("Draw moved I to %#04x", m.Regs.I)
	}
	if _, _, err := m.Cycle(); err != nil {
		t.Fatalf("Cycle: %s.", err)
	}
	f = m.Display.Snapshot()
	if f.Lit() != 0 || m.Regs.V[0xF] != 1 {
		t.Errorf("Second draw\nwant: 0 pixels, vf 1\nhave: %d pixels, vf %d", f.Lit(), m.Regs.V[0xF])
	}

	m = newMachine(t, vm.Quirks{}, 0xAFFE, 0xD005)
	if _, _, err := m.Cycle(); err != nil {
		t.Fatalf("Cycle: %s.", err)
	}
	if _, _, err := m.Cycle(); !errors.Is(err, vm.ErrOutOfRange) {
		t.Errorf("Sprite past memory\nwant: %v\nhave: %v", vm.ErrOutOfRange, err)
	}
}

// formOpcode builds an opcode of the form with x=1, y=2, n=1, nn=0x01, nnn=0x300.
func formOpcode(form op.OpCode) uint16 {
	var opcode uint16
	for i, nibble := range form.Pattern {
		if v, err := strconv.ParseUint(string(nibble), 16, 4); err == nil && nibble < 'a' {
			opcode |= uint16(v) << (4 * (3 - i))
		}
	}
	if form.Params&op.PX != 0 {
		opcode |= 0x1 << 8
	}
	if form.Params&op.PY != 0 {
		opcode |= 0x2 << 4
	}
	switch {
	case form.Params&op.PN != 0:
		opcode |= 0x1
	case form.Params&op.PNN != 0:
		opcode |= 0x01
	case form.Params&op.PNNN != 0:
		opcode |= 0x300
	}
	return opcode
}

func TestExecFormFlags(t *testing.T) {
	setups := []struct {
		v1, v2 byte
		key    bool
	}{
		{0xFF, 0x01, false},
		{0x01, 0x01, true},
	}
	for _, form := range op.OpCodeTable {
		if form.Code == op.Unknown {
			continue
		}
		opcode := formOpcode(form)
		if code := vm.Decode(opcode).Code; code != form.Code {
			t.Fatalf("Opcode %#04x built for %s decodes as %s", opcode, form.Code, code)
		}
		redirected := false
		for _, setup := range setups {
			m := newMachine(t, vm.Quirks{}, opcode)
			m.Regs.V[1], m.Regs.V[2] = setup.v1, setup.v2
			m.Regs.V[0xF] = 0xAA
			m.Regs.I = 0x400
			m.Keys.SetPressed(1, setup.key)
			if err := m.Regs.PushReturn(0x300); err != nil {
				t.Fatalf("PushReturn: %s.", err)
			}

			outcome, err := vm.Execute(m, vm.Decode(opcode))
			if err != nil {
				t.Fatalf("Execute %s (%#04x): %s.", form.Code, opcode, err)
			}
			if wrote := m.Regs.V[0xF] != 0xAA; wrote != form.SetFlag {
				t.Errorf("%s %s: vf written %t, SetFlag %t", form.Name, form.Syntax, wrote, form.SetFlag)
			}
			if outcome != vm.Next {
				redirected = true
				if !form.RedirectPC {
					t.Errorf("%s %s: outcome %s without RedirectPC", form.Name, form.Syntax, outcome)
				}
			}
		}
		if form.RedirectPC && !redirected {
			t.Errorf("%s %s: RedirectPC but always Next", form.Name, form.Syntax)
		}
	}
}
