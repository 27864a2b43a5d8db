package op

// Code identifies an instruction form.
type Code int

// Instruction forms, in encoding order.
const (
	Unknown Code = iota
	Sys          // 0NNN
	Cls          // 00E0
	Ret          // 00EE
	Jp           // 1NNN
	Call         // 2NNN
	SeByte       // 3XNN
	SneByte      // 4XNN
	SeReg        // 5XY0
	LdByte       // 6XNN
	AddByte      // 7XNN
	LdReg        // 8XY0
	Or           // 8XY1
	And          // 8XY2
	Xor          // 8XY3
	AddReg       // 8XY4
	Sub          // 8XY5
	Shr          // 8XY6
	Subn         // 8XY7
	Shl          // 8XYE
	SneReg       // 9XY0
	LdI          // ANNN
	JpV0         // BNNN
	Rnd          // CXNN
	Drw          // DXYN
	Skp          // EX9E
	Sknp         // EXA1
	LdVxDT       // FX07
	LdVxK        // FX0A
	LdDTVx       // FX15
	LdSTVx       // FX18
	AddI         // FX1E
	LdF          // FX29
	LdB          // FX33
	LdIVx        // FX55
	LdVxI        // FX65

	NumCodes // Number of forms, not an instruction.
)

// OpCode is the definition of instructions.
type OpCode struct {
	Name       string
	Syntax     string // Operands in assembly notation, lower case letters are fields.
	Pattern    string // Nibble pattern, upper case hex are fixed.
	Params     ParamType
	Code       Code
	Comment    string
	SetFlag    bool // Writes VF.
	RedirectPC bool // May set the PC instead of advancing it.
}

// OpCodeTable is indexed by Code.
var OpCodeTable = []OpCode{
	{"???", "", "", PNone, Unknown, "unknown opcode", false, false},
	{"sys", "nnn", "0nnn", PNNN, Sys, "machine code routine, ignored", false, false},
	{"cls", "", "00E0", PNone, Cls, "clear the display", false, false},
	{"ret", "", "00EE", PNone, Ret, "return from subroutine", false, true},
	{"jp", "nnn", "1nnn", PNNN, Jp, "jump to nnn", false, true},
	{"call", "nnn", "2nnn", PNNN, Call, "call subroutine at nnn", false, true},
	{"se", "vx, nn", "3xnn", PX | PNN, SeByte, "skip if vx == nn", false, true},
	{"sne", "vx, nn", "4xnn", PX | PNN, SneByte, "skip if vx != nn", false, true},
	{"se", "vx, vy", "5xy0", PX | PY, SeReg, "skip if vx == vy", false, true},
	{"ld", "vx, nn", "6xnn", PX | PNN, LdByte, "vx = nn", false, false},
	{"add", "vx, nn", "7xnn", PX | PNN, AddByte, "vx += nn, no carry", false, false},
	{"ld", "vx, vy", "8xy0", PX | PY, LdReg, "vx = vy", false, false},
	{"or", "vx, vy", "8xy1", PX | PY, Or, "vx |= vy", false, false},
	{"and", "vx, vy", "8xy2", PX | PY, And, "vx &= vy", false, false},
	{"xor", "vx, vy", "8xy3", PX | PY, Xor, "vx ^= vy", false, false},
	{"add", "vx, vy", "8xy4", PX | PY, AddReg, "vx += vy, vf = carry", true, false},
	{"sub", "vx, vy", "8xy5", PX | PY, Sub, "vx -= vy, vf = not borrow", true, false},
	{"shr", "vx, vy", "8xy6", PX | PY, Shr, "vx >>= 1, vf = shifted out bit", true, false},
	{"subn", "vx, vy", "8xy7", PX | PY, Subn, "vx = vy - vx, vf = not borrow", true, false},
	{"shl", "vx, vy", "8xyE", PX | PY, Shl, "vx <<= 1, vf = shifted out bit", true, false},
	{"sne", "vx, vy", "9xy0", PX | PY, SneReg, "skip if vx != vy", false, true},
	{"ld", "i, nnn", "Annn", PNNN, LdI, "i = nnn", false, false},
	{"jp", "v0, nnn", "Bnnn", PNNN, JpV0, "jump to nnn + v0", false, true},
	{"rnd", "vx, nn", "Cxnn", PX | PNN, Rnd, "vx = random & nn", false, false},
	{"drw", "vx, vy, n", "Dxyn", PX | PY | PN, Drw, "draw n rows from i at vx,vy, vf = collision", true, false},
	{"skp", "vx", "Ex9E", PX, Skp, "skip if key vx is pressed", false, true},
	{"sknp", "vx", "ExA1", PX, Sknp, "skip if key vx is not pressed", false, true},
	{"ld", "vx, dt", "Fx07", PX, LdVxDT, "vx = delay timer", false, false},
	{"ld", "vx, k", "Fx0A", PX, LdVxK, "wait for a key press, vx = key", false, true},
	{"ld", "dt, vx", "Fx15", PX, LdDTVx, "delay timer = vx", false, false},
	{"ld", "st, vx", "Fx18", PX, LdSTVx, "sound timer = vx", false, false},
	{"add", "i, vx", "Fx1E", PX, AddI, "i += vx", false, false},
	{"ld", "f, vx", "Fx29", PX, LdF, "i = glyph address of vx", false, false},
	{"ld", "b, vx", "Fx33", PX, LdB, "store bcd of vx at i, i+1, i+2", false, false},
	{"ld", "[i], vx", "Fx55", PX, LdIVx, "store v0..vx at i", false, false},
	{"ld", "vx, [i]", "Fx65", PX, LdVxI, "load v0..vx from i", false, false},
}

func (c Code) String() string {
	if c < 0 || int(c) >= len(OpCodeTable) {
		return OpCodeTable[Unknown].Name
	}
	return OpCodeTable[c].Name
}

// Lookup returns the definition of the given form.
func (c Code) Lookup() OpCode {
	if c < 0 || int(c) >= len(OpCodeTable) {
		return OpCodeTable[Unknown]
	}
	return OpCodeTable[c]
}
