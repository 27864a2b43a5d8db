// Package disasm lists a program image as decoded instructions.
package disasm

import (
	"fmt"
	"io"
	"sort"

	"go.creack.net/chip8/op"
	"go.creack.net/chip8/vm"
)

// Line is a single listing entry.
type Line struct {
	Addr   uint16
	Opcode uint16
	Ins    vm.Instruction
	Odd    bool // Trailing byte of an odd sized image, only the high byte of Opcode is set.
}

func (l Line) String() string {
	if l.Odd {
		return fmt.Sprintf("0x%03x  %02x    db 0x%02x", l.Addr, l.Opcode>>8, l.Opcode>>8)
	}
	return fmt.Sprintf("0x%03x  %04x  %-16s ; %s", l.Addr, l.Opcode, l.Ins, l.Ins.Code.Lookup().Comment)
}

// Disasm decodes the program as if loaded at base.
// Data mixed with code is decoded too, it shows up as unknown opcodes or nonsense.
func Disasm(program []byte, base uint16) []Line {
	lines := make([]Line, 0, (len(program)+1)/op.OpcodeSize)
	for i := 0; i < len(program); i += op.OpcodeSize {
		addr := base + uint16(i)
		if i+1 >= len(program) {
			lines = append(lines, Line{Addr: addr, Opcode: uint16(program[i]) << 8, Odd: true})
			break
		}
		opcode := op.Endian.Uint16(program[i:])
		lines = append(lines, Line{Addr: addr, Opcode: opcode, Ins: vm.Decode(opcode)})
	}
	return lines
}

// Index returns the index of the line at addr.
// When addr falls between two lines (misaligned jump), the previous line is returned.
// -1 if addr is not covered.
func Index(lines []Line, addr uint16) int {
	if len(lines) == 0 || addr < lines[0].Addr || addr > lines[len(lines)-1].Addr+1 {
		return -1
	}
	i := sort.Search(len(lines), func(i int) bool { return lines[i].Addr > addr })
	return i - 1
}

// Window returns up to before lines before addr and after lines after it,
// plus the position of addr within the result (-1 when not covered).
func Window(lines []Line, addr uint16, before, after int) ([]Line, int) {
	idx := Index(lines, addr)
	if idx == -1 {
		return nil, -1
	}
	start := max(idx-before, 0)
	end := min(idx+after+1, len(lines))
	return lines[start:end], idx - start
}

// Fprint writes the listing, one line per instruction.
func Fprint(w io.Writer, lines []Line) error {
	for _, elem := range lines {
		if _, err := fmt.Fprintln(w, elem); err != nil {
			return fmt.Errorf("write listing: %w", err)
		}
	}
	return nil
}
