// Package cli provides the flag parsing and program loading shared by the front ends.
package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"go.creack.net/chip8/op"
	"go.creack.net/chip8/vm"
)

// Config is the parsed command line.
type Config struct {
	VM vm.Config

	Scale   int    // Window and screenshot upscaling factor.
	Games   string // Directory listed by the start menu.
	Source  string // Program path or URL, empty to use the menu.
	Verbose bool
}

// ParseConfig parses os.Args.
func ParseConfig() (Config, error) {
	return Parse(os.Args[0], os.Args[1:], os.Stderr)
}

// Parse parses args. Usage and errors are written to output.
func Parse(name string, args []string, output io.Writer) (Config, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: %s [options] [program path or url]\n", name)
		fs.PrintDefaults()
	}

	cfg := Config{VM: vm.DefaultConfig()}
	var (
		mode        = fs.String("mode", "standard", "initial run mode, standard or debug")
		breakpoints = fs.String("break", "", "comma separated breakpoint addresses, hexadecimal")
	)
	fs.IntVar(&cfg.VM.CycleRate, "hz", op.DefaultCycleRate, "instructions per second")
	fs.IntVar(&cfg.VM.TimerRate, "timer-hz", op.TimerRate, "timer and frame rate")
	fs.DurationVar(&cfg.VM.MaxLag, "max-lag", cfg.VM.MaxLag, "cycle and tick backlog dropped after a stall")
	fs.BoolVar(&cfg.VM.Quirks.ShiftUsesVY, "quirk-shift", false, "8XY6/8XYE shift VY into VX")
	fs.BoolVar(&cfg.VM.Quirks.LoadStoreIncrementsI, "quirk-loadstore", false, "FX55/FX65 increment I")
	fs.BoolVar(&cfg.VM.Quirks.JumpUsesVX, "quirk-jump", false, "BXNN jumps to XNN + VX")
	fs.BoolVar(&cfg.VM.Quirks.LogicResetsVF, "quirk-logic", false, "8XY1/8XY2/8XY3 reset VF")
	fs.IntVar(&cfg.Scale, "scale", 10, "display scale")
	fs.StringVar(&cfg.Games, "games", "games", "directory of programs for the start menu")
	fs.BoolVar(&cfg.Verbose, "v", false, "trace every instruction")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if fs.NArg() > 1 {
		return Config{}, fmt.Errorf("too many arguments: %q", fs.Args())
	}
	cfg.Source = fs.Arg(0)

	m, err := vm.ParseMode(*mode)
	if err != nil {
		return Config{}, err
	}
	cfg.VM.Mode = m

	if cfg.VM.CycleRate < op.MinCycleRate || cfg.VM.CycleRate > op.MaxCycleRate {
		return Config{}, fmt.Errorf("invalid -hz %d, must be between %d and %d", cfg.VM.CycleRate, op.MinCycleRate, op.MaxCycleRate)
	}
	if cfg.VM.TimerRate < op.MinTimerRate || cfg.VM.TimerRate > op.MaxTimerRate {
		return Config{}, fmt.Errorf("invalid -timer-hz %d, must be between %d and %d", cfg.VM.TimerRate, op.MinTimerRate, op.MaxTimerRate)
	}
	if cfg.Scale < 1 {
		return Config{}, fmt.Errorf("invalid -scale %d", cfg.Scale)
	}

	if cfg.VM.Breakpoints, err = ParseBreakpoints(*breakpoints); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseBreakpoints parses a comma separated list of addresses.
// The 0x prefix is optional, the base is always 16.
func ParseBreakpoints(s string) ([]uint16, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []uint16
	for _, elem := range strings.Split(s, ",") {
		elem = strings.TrimSpace(elem)
		elem = strings.TrimPrefix(strings.ToLower(elem), "0x")
		addr, err := strconv.ParseUint(elem, 16, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid breakpoint %q: %w", elem, err)
		}
		if addr >= op.MemSize {
			return nil, fmt.Errorf("invalid breakpoint 0x%x, out of memory", addr)
		}
		out = append(out, uint16(addr))
	}
	return out, nil
}

// Logger returns the slog logger matching the verbosity, writing to w.
func (cfg Config) Logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
