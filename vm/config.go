package vm

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"go.creack.net/chip8/op"
)

// Mode is the run mode.
type Mode int

// Mode values.
const (
	ModeStandard Mode = iota // Continuous execution at CycleRate.
	ModeDebug                // One instruction per Step.
)

func (m Mode) String() string {
	switch m {
	case ModeStandard:
		return "Standard"
	case ModeDebug:
		return "Debug"
	default:
		return "Unknown"
	}
}

// ParseMode accepts the mode names, case insensitive.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "standard", "std", "s":
		return ModeStandard, nil
	case "debug", "dbg", "d":
		return ModeDebug, nil
	default:
		return 0, fmt.Errorf("invalid mode %q, must be standard or debug", s)
	}
}

// Quirks selects between historical behaviors of ambiguous opcodes.
// The zero value is the default policy.
type Quirks struct {
	ShiftUsesVY          bool // 8XY6/8XYE shift VY into VX instead of shifting VX in place.
	LoadStoreIncrementsI bool // FX55/FX65 leave I at I+X+1.
	JumpUsesVX           bool // BXNN jumps to XNN + VX instead of NNN + V0.
	LogicResetsVF        bool // 8XY1/8XY2/8XY3 clear VF.
}

// Config of the machine and its cadence.
type Config struct {
	CycleRate   int           // Instructions per second in Standard mode.
	TimerRate   int           // Timer decrements and frames per second.
	MaxLag      time.Duration // Cycle and tick backlog dropped after a host stall.
	Mode        Mode          // Initial run mode.
	Quirks      Quirks
	Breakpoints []uint16 // Addresses switching Standard to Debug.

	Logger *slog.Logger
	Rand   *rand.Rand
}

// DefaultConfig returns the conventional settings.
func DefaultConfig() Config {
	return Config{
		CycleRate: op.DefaultCycleRate,
		TimerRate: op.TimerRate,
		MaxLag:    250 * time.Millisecond,
		Mode:      ModeStandard,
	}
}

func (cfg Config) withDefaults() Config {
	def := DefaultConfig()
	if cfg.CycleRate <= 0 {
		cfg.CycleRate = def.CycleRate
	}
	cfg.CycleRate = min(max(cfg.CycleRate, op.MinCycleRate), op.MaxCycleRate)
	if cfg.TimerRate <= 0 {
		cfg.TimerRate = def.TimerRate
	}
	cfg.TimerRate = min(max(cfg.TimerRate, op.MinTimerRate), op.MaxTimerRate)
	if cfg.MaxLag <= 0 {
		cfg.MaxLag = def.MaxLag
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x43484950))
	}
	return cfg
}
