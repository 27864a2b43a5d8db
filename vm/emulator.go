package vm

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

type control int

const (
	ctlStep control = iota
	ctlToggle
)

// Emulator drives a Chip8: instruction cycles at CycleRate in Standard mode
// or one per Step in Debug mode, and timers plus frames at TimerRate in both.
// A single goroutine (Run, or the caller of Advance) owns the machine, the
// control methods and SetPressed are safe to call from any goroutine.
type Emulator struct {
	// Messages is a channel where the emulator sends messages.
	// Sends never block, messages are dropped when nobody reads.
	Messages chan Message `json:"-"`

	m        *Chip8
	cfg      Config
	log      *slog.Logger
	renderer Renderer
	speaker  Speaker

	control chan control
	wake    chan struct{}
	quit    atomic.Bool

	mode   atomic.Int32
	halted atomic.Bool
	errMu  sync.Mutex
	err    error
	status atomic.Pointer[Status]

	// Simulated time, only touched by the driver.
	now        time.Duration
	cycleClock time.Duration
	tickClock  time.Duration
	period     time.Duration
	interval   time.Duration
	skipBreak  bool
}

// NewEmulator boots the program. renderer and speaker may be nil.
func NewEmulator(program []byte, cfg Config, renderer Renderer, speaker Speaker) (*Emulator, error) {
	cfg = cfg.withDefaults()
	m, err := NewChip8(program, cfg)
	if err != nil {
		return nil, fmt.Errorf("boot: %w", err)
	}
	if renderer == nil {
		renderer = discard{}
	}
	if speaker == nil {
		speaker = discard{}
	}
	e := &Emulator{
		Messages: make(chan Message, 64), // Arbitrary size.

		m:        m,
		cfg:      cfg,
		log:      cfg.Logger,
		renderer: renderer,
		speaker:  speaker,

		control: make(chan control, 64),
		wake:    make(chan struct{}, 1),

		period:   time.Second / time.Duration(cfg.CycleRate),
		interval: time.Second / time.Duration(cfg.TimerRate),
	}
	e.mode.Store(int32(cfg.Mode))
	e.publishStatus()
	return e, nil
}

func (e *Emulator) Mode() Mode {
	return Mode(e.mode.Load())
}

func (e *Emulator) Halted() bool {
	return e.halted.Load()
}

// Err returns the fatal error, nil while running or after a quit.
func (e *Emulator) Err() error {
	e.errMu.Lock()
	defer e.errMu.Unlock()
	return e.err
}

// Status returns the state published after the last tick or step.
func (e *Emulator) Status() Status {
	return *e.status.Load()
}

// SetPressed is the keypad input.
func (e *Emulator) SetPressed(key byte, pressed bool) {
	e.m.Keys.SetPressed(key, pressed)
}

// Step executes one instruction in Debug mode. Ignored in Standard mode.
func (e *Emulator) Step() { e.signal(ctlStep) }

// ToggleMode switches between Standard and Debug.
func (e *Emulator) ToggleMode() { e.signal(ctlToggle) }

// Quit halts the emulator, even while waiting for a key.
func (e *Emulator) Quit() {
	e.quit.Store(true)
	e.poke()
}

func (e *Emulator) signal(c control) {
	select {
	case e.control <- c:
	default:
		e.log.Warn("control signal dropped", "queue", len(e.control))
	}
	e.poke()
}

func (e *Emulator) poke() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

func (e *Emulator) send(msg Message) {
	select {
	case e.Messages <- msg:
	default:
	}
}

// Run drives the emulator on the wall clock until quit, ctx cancellation
// or a fatal error. Quit and cancellation return nil.
func (e *Emulator) Run(ctx context.Context) error {
	resolution := max(min(e.period, e.interval), time.Millisecond)
	ticker := time.NewTicker(resolution)
	defer ticker.Stop()

	e.log.Info("running", "mode", e.Mode(), "cycle_rate", e.cfg.CycleRate, "timer_rate", e.cfg.TimerRate)

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			e.Quit()
		case <-e.wake:
		case <-ticker.C:
		}
		now := time.Now()
		err := e.Advance(now.Sub(last))
		last = now
		if err != nil {
			return err
		}
		if e.Halted() {
			return e.Err()
		}
	}
}

// Advance processes pending control signals, then moves simulated time
// forward by elapsed, interleaving instruction cycles and timer ticks in
// chronological order.
func (e *Emulator) Advance(elapsed time.Duration) error {
	if e.Halted() {
		if err := e.Err(); err != nil {
			return err
		}
		return ErrHalted
	}
	if err := e.handleControl(); err != nil || e.Halted() {
		return err
	}

	e.now += elapsed
	if e.Mode() == ModeStandard && e.now-e.cycleClock > e.cfg.MaxLag {
		dropped := (e.now - e.cycleClock - e.cfg.MaxLag) / e.period
		e.log.Warn("cycle backlog dropped", "cycles", int64(dropped))
		e.cycleClock = e.now - e.cfg.MaxLag
	}
	if e.now-e.tickClock > e.cfg.MaxLag {
		dropped := (e.now - e.tickClock - e.cfg.MaxLag) / e.interval
		e.log.Warn("tick backlog dropped", "ticks", int64(dropped))
		e.tickClock = e.now - e.cfg.MaxLag
	}

	for {
		nextTick := e.tickClock + e.interval
		nextCycle := e.cycleClock + e.period
		if e.Mode() == ModeStandard && nextCycle <= e.now && nextCycle <= nextTick {
			e.cycleClock = nextCycle
			if err := e.standardCycle(); err != nil {
				return e.halt(err)
			}
			continue
		}
		if nextTick <= e.now {
			e.tickClock = nextTick
			e.tick()
			continue
		}
		break
	}
	if e.Mode() == ModeDebug {
		// Debug does not accumulate a cycle backlog.
		e.cycleClock = e.now
	}
	return nil
}

func (e *Emulator) handleControl() error {
	if e.quit.Load() {
		_ = e.halt(nil)
		return nil
	}
	for {
		select {
		case c := <-e.control:
			switch c {
			case ctlToggle:
				e.setMode(1 - e.Mode())
			case ctlStep:
				if e.Mode() != ModeDebug {
					continue
				}
				if err := e.cycle(); err != nil {
					return e.halt(err)
				}
				e.publishStatus()
			}
		default:
			return nil
		}
	}
}

func (e *Emulator) setMode(mode Mode) {
	if mode == e.Mode() {
		return
	}
	e.mode.Store(int32(mode))
	e.cycleClock = e.now
	// Resuming on a breakpoint must not trip it again.
	e.skipBreak = mode == ModeStandard
	e.log.Info("mode changed", "mode", mode, "pc", fmt.Sprintf("0x%03x", e.m.Regs.PC))
	e.send(NewMessage(MsgMode, e.m.Regs.PC, mode.String()))
	e.publishStatus()
}

func (e *Emulator) standardCycle() error {
	pc := e.m.Regs.PC
	skip := e.skipBreak
	e.skipBreak = false
	if !skip && slices.Contains(e.cfg.Breakpoints, pc) {
		e.send(NewMessage(MsgBreak, pc, "breakpoint"))
		e.setMode(ModeDebug)
		return nil
	}
	return e.cycle()
}

func (e *Emulator) cycle() error {
	pc := e.m.Regs.PC
	ins, outcome, err := e.m.Cycle()
	if err != nil {
		return err
	}
	if e.log.Enabled(context.Background(), slog.LevelDebug) {
		e.log.Debug(
			"exec",
			"pc", fmt.Sprintf("0x%03x", pc),
			"opcode", fmt.Sprintf("0x%04x", ins.Raw),
			"instr", ins.String(),
			"outcome", outcome,
		)
	}
	if e.Mode() == ModeDebug {
		e.send(NewMessage(MsgDebug, pc, fmt.Sprintf("%04x %s (%s)", ins.Raw, ins, outcome)))
	}
	return nil
}

func (e *Emulator) tick() {
	e.m.Tick()
	e.renderer.Present(e.m.Display.Snapshot())
	e.speaker.SetTone(e.m.Timers.Tone())
	e.publishStatus()
}

func (e *Emulator) halt(err error) error {
	e.errMu.Lock()
	e.err = err
	e.errMu.Unlock()
	e.halted.Store(true)

	pc := e.m.Regs.PC
	if err != nil {
		e.log.Error("halted", "pc", fmt.Sprintf("0x%03x", pc), "error", err)
		e.send(NewMessage(MsgError, pc, err.Error()))
	} else {
		e.log.Info("quit", "pc", fmt.Sprintf("0x%03x", pc), "cycles", e.m.Cycles)
	}
	e.send(NewMessage(MsgHalt, pc, "halted"))
	e.speaker.SetTone(false)
	e.publishStatus()
	return err
}

func (e *Emulator) publishStatus() {
	m := e.m
	st := &Status{
		Mode:    e.Mode(),
		Halted:  e.Halted(),
		Waiting: m.Waiting,
		Cycles:  m.Cycles,
		PC:      m.Regs.PC,
		I:       m.Regs.I,
		V:       m.Regs.V,
		Stack:   slices.Clone(m.Regs.Stack[:m.Regs.SP]),
		Delay:   m.Timers.Delay,
		Sound:   m.Timers.Sound,
	}
	if ins, err := m.Fetch(); err == nil {
		st.Next = ins
	}
	e.status.Store(st)
	if in, ok := e.renderer.(Inspector); ok {
		in.Inspect(*st)
	}
}
