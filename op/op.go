package op

import (
	"encoding/binary"
	"time"
)

// Endian of opcodes in memory.
var Endian = binary.BigEndian

// Memory layout.
const (
	MemSize       = 4096  // 4Kb.
	ProgramOffset = 0x200 // Programs are loaded here, below is reserved.
	FontOffset    = 0x050 // Hexadecimal glyphs live here.
	GlyphSize     = 5     // Bytes per glyph.
	MaxProgSize   = MemSize - ProgramOffset
)

// Machine state.
const (
	RegisterCount = 16  // V0 <--> VF
	FlagRegister  = 0xF // VF doubles as carry/borrow/collision flag.
	StackDepth    = 16  // Return addresses.
	KeyCount      = 16  // Hexadecimal keypad.
	OpcodeSize    = 2   // Size of each instruction in bytes.
	AddrMask      = 0xFFF
)

// Display.
const (
	ScreenWidth  = 64
	ScreenHeight = 32
	SpriteWidth  = 8 // One byte per sprite row.
)

// Cadence.
const (
	TimerRate        = 60 // Timer decrements (and frames) per second.
	MinTimerRate     = 1
	MaxTimerRate     = 1000
	DefaultCycleRate = 700 // Instructions per second.
	MinCycleRate     = 1
	MaxCycleRate     = 100000
)

// TimerInterval is the fixed cadence interval.
const TimerInterval = time.Second / TimerRate
