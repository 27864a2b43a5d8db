package vm

import "errors"

// Boot errors.
var (
	ErrProgramTooLarge = errors.New("program too large")
	ErrEmptyProgram    = errors.New("empty program")
)

// Execution errors. All of them halt the machine.
var (
	ErrOutOfRange     = errors.New("out of range memory access")
	ErrMisaligned     = errors.New("misaligned program counter")
	ErrStackOverflow  = errors.New("stack overflow")
	ErrStackUnderflow = errors.New("stack underflow")
	ErrUnknownOpcode  = errors.New("unknown opcode")
)

// ErrHalted is returned when driving a machine that already stopped.
var ErrHalted = errors.New("halted")
