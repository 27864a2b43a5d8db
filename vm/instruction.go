package vm

import (
	"fmt"
	"strings"

	"go.creack.net/chip8/op"
)

// Instruction is a decoded opcode.
type Instruction struct {
	Code op.Code
	Raw  uint16
	X    byte   // Bits 8-11.
	Y    byte   // Bits 4-7.
	N    byte   // Bits 0-3.
	NN   byte   // Bits 0-7.
	NNN  uint16 // Bits 0-11.
}

// Decode the opcode. Unrecognized patterns decode to op.Unknown.
func Decode(opcode uint16) Instruction {
	ins := Instruction{
		Raw: opcode,
		X:   byte(opcode>>8) & 0xF,
		Y:   byte(opcode>>4) & 0xF,
		N:   byte(opcode) & 0xF,
		NN:  byte(opcode),
		NNN: opcode & op.AddrMask,
	}
	ins.Code = decodeCode(opcode)
	return ins
}

func decodeCode(opcode uint16) op.Code {
	switch opcode & 0xF000 {
	case 0x0000:
		switch opcode {
		case 0x00E0:
			return op.Cls
		case 0x00EE:
			return op.Ret
		}
		return op.Sys
	case 0x1000:
		return op.Jp
	case 0x2000:
		return op.Call
	case 0x3000:
		return op.SeByte
	case 0x4000:
		return op.SneByte
	case 0x5000:
		if opcode&0xF == 0 {
			return op.SeReg
		}
	case 0x6000:
		return op.LdByte
	case 0x7000:
		return op.AddByte
	case 0x8000:
		switch opcode & 0xF {
		case 0x0:
			return op.LdReg
		case 0x1:
			return op.Or
		case 0x2:
			return op.And
		case 0x3:
			return op.Xor
		case 0x4:
			return op.AddReg
		case 0x5:
			return op.Sub
		case 0x6:
			return op.Shr
		case 0x7:
			return op.Subn
		case 0xE:
			return op.Shl
		}
	case 0x9000:
		if opcode&0xF == 0 {
			return op.SneReg
		}
	case 0xA000:
		return op.LdI
	case 0xB000:
		return op.JpV0
	case 0xC000:
		return op.Rnd
	case 0xD000:
		return op.Drw
	case 0xE000:
		switch opcode & 0xFF {
		case 0x9E:
			return op.Skp
		case 0xA1:
			return op.Sknp
		}
	case 0xF000:
		switch opcode & 0xFF {
		case 0x07:
			return op.LdVxDT
		case 0x0A:
			return op.LdVxK
		case 0x15:
			return op.LdDTVx
		case 0x18:
			return op.LdSTVx
		case 0x1E:
			return op.AddI
		case 0x29:
			return op.LdF
		case 0x33:
			return op.LdB
		case 0x55:
			return op.LdIVx
		case 0x65:
			return op.LdVxI
		}
	}
	return op.Unknown
}

// String formats the instruction in assembly notation.
func (ins Instruction) String() string {
	def := ins.Code.Lookup()
	if ins.Code == op.Unknown {
		return fmt.Sprintf("%s 0x%04x", def.Name, ins.Raw)
	}
	if def.Syntax == "" {
		return def.Name
	}
	operands := strings.Split(def.Syntax, ", ")
	for i, elem := range operands {
		switch elem {
		case "vx":
			operands[i] = fmt.Sprintf("v%x", ins.X)
		case "vy":
			operands[i] = fmt.Sprintf("v%x", ins.Y)
		case "n":
			operands[i] = fmt.Sprintf("%d", ins.N)
		case "nn":
			operands[i] = fmt.Sprintf("0x%02x", ins.NN)
		case "nnn":
			operands[i] = fmt.Sprintf("0x%03x", ins.NNN)
		}
	}
	return def.Name + " " + strings.Join(operands, ", ")
}
