// Package asm assembles CHIP-8 source into a program image.
//
// The syntax is the one produced by the disassembler:
//
//	start:
//		ld v0, 0x0a   ; comment
//		ld i, sprite
//		drw v0, v1, 5
//		jp start
//	sprite:
//		db 0xf0, 0x90, 0xf0
//
// Labels resolve to the address of the next statement, programs are
// assembled at op.ProgramOffset.
package asm

import (
	"fmt"
	"strconv"
	"strings"

	"go.creack.net/chip8/asm/parser"
	"go.creack.net/chip8/op"
)

// Directives emitting raw data.
const (
	DirectiveByte = "db"
	DirectiveWord = "dw"
)

// Program is the result of the assembly.
type Program struct {
	Statements []*parser.Statement
	Addrs      []uint16 // Address of each statement.
	Labels     map[string]uint16
}

var forms = func() map[string][]op.OpCode {
	out := map[string][]op.OpCode{}
	for _, elem := range op.OpCodeTable {
		if elem.Code == op.Unknown {
			continue
		}
		out[elem.Name] = append(out[elem.Name], elem)
	}
	return out
}()

// Compile assembles the input.
func Compile(inputName, inputData string) ([]byte, *Program, error) {
	// Parse the input.
	p := parser.NewParser(inputName, inputData)
	if err := p.Parse(); err != nil {
		return nil, nil, fmt.Errorf("failed to parse: %w", err)
	}

	pr := &Program{
		Statements: p.Statements,
		Addrs:      make([]uint16, 0, len(p.Statements)),
		Labels:     map[string]uint16{},
	}

	// First pass, addresses.
	addr := op.ProgramOffset
	for _, st := range pr.Statements {
		for _, label := range st.Labels {
			pr.Labels[label] = uint16(addr)
		}
		pr.Addrs = append(pr.Addrs, uint16(addr))
		size, err := statementSize(st)
		if err != nil {
			return nil, nil, positioned(inputName, st, err)
		}
		addr += size
	}
	if size := addr - op.ProgramOffset; size > op.MaxProgSize {
		return nil, nil, fmt.Errorf("%s: program too large: %d bytes, max %d", inputName, size, op.MaxProgSize)
	}

	// Second pass, encoding.
	buf := make([]byte, 0, addr-op.ProgramOffset)
	for _, st := range pr.Statements {
		var err error
		if buf, err = pr.encode(buf, st); err != nil {
			return nil, nil, positioned(inputName, st, err)
		}
	}
	return buf, pr, nil
}

func positioned(name string, st *parser.Statement, err error) error {
	return &parser.Error{Name: name, Line: st.Line, Msg: err.Error()}
}

func statementSize(st *parser.Statement) (int, error) {
	switch st.Mnemonic {
	case "":
		return 0, nil
	case DirectiveByte:
		return len(st.Operands), nil
	case DirectiveWord:
		return 2 * len(st.Operands), nil
	}
	if _, ok := forms[st.Mnemonic]; !ok {
		return 0, fmt.Errorf("unknown instruction %q", st.Mnemonic)
	}
	return op.OpcodeSize, nil
}

// value resolves a number or label operand.
func (pr *Program) value(o parser.Operand) (int, error) {
	switch o.Kind {
	case parser.OperandNumber:
		return o.Value, nil
	case parser.OperandLabel:
		addr, ok := pr.Labels[o.Text]
		if !ok {
			return 0, fmt.Errorf("undefined label %q", o.Text)
		}
		return int(addr), nil
	default:
		return 0, fmt.Errorf("expected a value, got %s %q", o.Kind, o.Text)
	}
}

func (pr *Program) encode(buf []byte, st *parser.Statement) ([]byte, error) {
	switch st.Mnemonic {
	case "":
		return buf, nil
	case DirectiveByte, DirectiveWord:
		if len(st.Operands) == 0 {
			return nil, fmt.Errorf("%s without values", st.Mnemonic)
		}
		for _, elem := range st.Operands {
			n, err := pr.value(elem)
			if err != nil {
				return nil, err
			}
			if st.Mnemonic == DirectiveByte {
				if n > 0xFF {
					return nil, fmt.Errorf("value %q out of range for %s", elem.Text, st.Mnemonic)
				}
				buf = append(buf, byte(n))
				continue
			}
			buf = op.Endian.AppendUint16(buf, uint16(n))
		}
		return buf, nil
	}

	var candidates []string
	for _, form := range forms[st.Mnemonic] {
		opcode, ok, err := pr.match(form, st.Operands)
		if err != nil {
			return nil, err
		}
		if ok {
			return op.Endian.AppendUint16(buf, opcode), nil
		}
		candidates = append(candidates, strings.TrimSpace(form.Name+" "+form.Syntax))
	}
	return nil, fmt.Errorf("invalid operands for %q, expected one of: %s", st.Mnemonic, strings.Join(candidates, " | "))
}

// match encodes the operands against the form. A kind mismatch is reported
// with ok false, an out of range value as an error. The fields named by the
// syntax must be exactly the form's Params.
func (pr *Program) match(form op.OpCode, operands []parser.Operand) (opcode uint16, ok bool, err error) {
	var syntax []string
	if form.Syntax != "" {
		syntax = strings.Split(form.Syntax, ", ")
	}
	if len(syntax) != len(operands) {
		return 0, false, nil
	}

	// Fixed nibbles are upper case hex.
	for i, nibble := range form.Pattern {
		if strings.ContainsRune("0123456789ABCDEF", nibble) {
			v, _ := strconv.ParseUint(string(nibble), 16, 4)
			opcode |= uint16(v) << (4 * (3 - i))
		}
	}

	type field struct {
		param op.ParamType
		shift int
		max   int
	}
	fields := map[string]field{
		"vx":  {op.PX, 8, 0xF},
		"vy":  {op.PY, 4, 0xF},
		"n":   {op.PN, 0, 0xF},
		"nn":  {op.PNN, 0, 0xFF},
		"nnn": {op.PNNN, 0, op.AddrMask},
	}

	var used op.ParamType
	for _, tok := range syntax {
		used |= fields[tok].param
	}
	if used != form.Params {
		return 0, false, fmt.Errorf("bad form %s %q: operands encode %s, params are %s", form.Name, form.Syntax, used, form.Params)
	}

	for i, tok := range syntax {
		o := operands[i]
		switch tok {
		case "vx", "vy":
			if o.Kind != parser.OperandRegister {
				return 0, false, nil
			}
			opcode |= uint16(o.Value) << fields[tok].shift
		case "v0":
			if o.Kind != parser.OperandRegister || o.Value != 0 {
				return 0, false, nil
			}
		case "n", "nn", "nnn":
			if o.Kind != parser.OperandNumber && (o.Kind != parser.OperandLabel || tok != "nnn") {
				return 0, false, nil
			}
			n, err := pr.value(o)
			if err != nil {
				return 0, false, err
			}
			if n > fields[tok].max {
				return 0, false, fmt.Errorf("value %q out of range for %s, max 0x%x", o.Text, tok, fields[tok].max)
			}
			opcode |= uint16(n)
		default:
			if o.Kind != parser.OperandKeyword || o.Text != tok {
				return 0, false, nil
			}
		}
	}
	return opcode, true, nil
}
