package vm_test

import (
	"io"
	"log/slog"
	"math/rand/v2"
	"testing"

	"go.creack.net/chip8/op"
	"go.creack.net/chip8/vm"
)

func assemble(opcodes ...uint16) []byte {
	out := make([]byte, 0, 2*len(opcodes))
	for _, elem := range opcodes {
		out = op.Endian.AppendUint16(out, elem)
	}
	return out
}

func testConfig() vm.Config {
	cfg := vm.DefaultConfig()
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg.Rand = rand.New(rand.NewPCG(1, 2))
	return cfg
}

func newMachine(t *testing.T, quirks vm.Quirks, opcodes ...uint16) *vm.Chip8 {
	t.Helper()
	cfg := testConfig()
	cfg.Quirks = quirks
	m, err := vm.NewChip8(assemble(opcodes...), cfg)
	if err != nil {
		t.Fatalf("Failed to boot: %s.", err)
	}
	return m
}
