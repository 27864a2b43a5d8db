package vm

import (
	"sync/atomic"

	"go.creack.net/chip8/op"
)

// Renderer receives one frame per cadence interval.
type Renderer interface {
	Present(Frame)
}

// Speaker receives the tone gate once per cadence interval.
type Speaker interface {
	SetTone(on bool)
}

// Inspector is implemented by renderers that also display machine state.
type Inspector interface {
	Inspect(Status)
}

// Status is a consistent copy of the machine state.
type Status struct {
	Mode    Mode
	Halted  bool
	Waiting bool
	Cycles  uint64

	PC    uint16
	I     uint16
	V     [op.RegisterCount]byte
	Stack []uint16 // Bottom first.
	Delay byte
	Sound byte

	Next Instruction // Instruction at PC, op.Unknown if it can't be fetched.
}

// FrameSlot keeps the most recent frame only.
type FrameSlot struct {
	frame atomic.Pointer[Frame]
	count atomic.Uint64
}

func (s *FrameSlot) Present(f Frame) {
	s.frame.Store(&f)
	s.count.Add(1)
}

// Latest returns the last presented frame, false if none yet.
func (s *FrameSlot) Latest() (Frame, bool) {
	f := s.frame.Load()
	if f == nil {
		return Frame{}, false
	}
	return *f, true
}

// Count of presented frames.
func (s *FrameSlot) Count() uint64 {
	return s.count.Load()
}

// ToneFlag keeps the last tone gate.
type ToneFlag struct {
	on atomic.Bool
}

func (t *ToneFlag) SetTone(on bool) { t.on.Store(on) }
func (t *ToneFlag) On() bool        { return t.on.Load() }

type discard struct{}

func (discard) Present(Frame) {}
func (discard) SetTone(bool)  {}
