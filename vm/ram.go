package vm

import (
	"fmt"

	"go.creack.net/chip8/op"
)

// Ram is the flat addressable memory of the machine.
type Ram [op.MemSize]byte

// Load installs the glyphs and copies the program at the program offset.
func (r *Ram) Load(program []byte) error {
	if len(program) > op.MaxProgSize {
		return fmt.Errorf("%w: %d bytes, max %d", ErrProgramTooLarge, len(program), op.MaxProgSize)
	}
	*r = Ram{}
	copy(r[op.FontOffset:], op.Font[:])
	copy(r[op.ProgramOffset:], program)
	return nil
}

func (r *Ram) Read(addr uint16) (byte, error) {
	if int(addr) >= len(r) {
		return 0, fmt.Errorf("%w: read 0x%04x", ErrOutOfRange, addr)
	}
	return r[addr], nil
}

func (r *Ram) Write(addr uint16, value byte) error {
	if int(addr) >= len(r) {
		return fmt.Errorf("%w: write 0x%04x", ErrOutOfRange, addr)
	}
	r[addr] = value
	return nil
}

// Bytes returns a copy of size bytes starting at addr.
// The whole range must be addressable.
func (r *Ram) Bytes(addr uint16, size int) ([]byte, error) {
	if size < 0 || int(addr)+size > len(r) {
		return nil, fmt.Errorf("%w: read %d bytes at 0x%04x", ErrOutOfRange, size, addr)
	}
	out := make([]byte, size)
	copy(out, r[addr:int(addr)+size])
	return out, nil
}

// Opcode reads the big endian instruction at addr.
func (r *Ram) Opcode(addr uint16) (uint16, error) {
	if int(addr)+op.OpcodeSize > len(r) {
		return 0, fmt.Errorf("%w: fetch at 0x%04x", ErrOutOfRange, addr)
	}
	return op.Endian.Uint16(r[addr:]), nil
}

// Store copies data at addr. The whole range must be addressable,
// nothing is written otherwise.
func (r *Ram) Store(addr uint16, data []byte) error {
	if int(addr)+len(data) > len(r) {
		return fmt.Errorf("%w: write %d bytes at 0x%04x", ErrOutOfRange, len(data), addr)
	}
	copy(r[addr:], data)
	return nil
}
