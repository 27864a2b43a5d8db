package op

import "strings"

// ParamType describes which fields of the opcode an instruction form uses.
type ParamType int

// ParamType values.
const (
	PNone ParamType = 0
	PX    ParamType = 1 << iota // Register index, bits 8-11.
	PY                          // Register index, bits 4-7.
	PN                          // Nibble, bits 0-3.
	PNN                         // Byte, bits 0-7.
	PNNN                        // Address, bits 0-11.
)

func (pt ParamType) String() string {
	var parts []string
	if pt&PX != 0 {
		parts = append(parts, "x")
	}
	if pt&PY != 0 {
		parts = append(parts, "y")
	}
	if pt&PN != 0 {
		parts = append(parts, "n")
	}
	if pt&PNN != 0 {
		parts = append(parts, "nn")
	}
	if pt&PNNN != 0 {
		parts = append(parts, "nnn")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}
