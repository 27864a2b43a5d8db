package main

import (
	"strings"
	"testing"

	"go.creack.net/chip8/disasm"
	"go.creack.net/chip8/op"
	"go.creack.net/chip8/vm"
)

func TestRenderFrame(t *testing.T) {
	var f vm.Frame
	f[0][0] = true
	f[1][1] = true
	f[2][2], f[3][2] = true, true

	lines := strings.Split(strings.TrimSuffix(renderFrame(&f), "\n"), "\n")
	if len(lines) != op.ScreenHeight/2 {
		t.Fatalf("Line count\nwant: %d\nhave: %d", op.ScreenHeight/2, len(lines))
	}
	for i, elem := range lines {
		if n := len([]rune(elem)); n != op.ScreenWidth {
			t.Fatalf("Line %d width\nwant: %d\nhave: %d", i, op.ScreenWidth, n)
		}
	}
	if want, have := "▀▄ ", string([]rune(lines[0])[:3]); want != have {
		t.Errorf("First line\nwant: %q\nhave: %q", want, have)
	}
	if want, have := "  █ ", string([]rune(lines[1])[:4]); want != have {
		t.Errorf("Second line\nwant: %q\nhave: %q", want, have)
	}
}

func TestKeypadKey(t *testing.T) {
	seen := map[byte]bool{}
	for r := range keypad {
		k, ok := keypadKey(r)
		if !ok || seen[k] {
			t.Fatalf("Key %q maps to %#x twice or not at all", r, k)
		}
		seen[k] = true
	}
	if len(seen) != op.KeyCount {
		t.Errorf("Keypad covers %d keys", len(seen))
	}
	if k, ok := keypadKey('V'); !ok || k != 0xF {
		t.Errorf("Upper case key: %#x %t", k, ok)
	}
	for _, r := range []rune{'n', 'p', ' '} {
		if _, ok := keypadKey(r); ok {
			t.Errorf("Control key %q shadowed by the keypad", r)
		}
	}
}

func TestRenderListing(t *testing.T) {
	lines := disasm.Disasm([]byte{0x00, 0xE0, 0xF2, 0x55, 0x12, 0x02}, op.ProgramOffset)
	out := renderListing(lines, 0x202, 1, 1)
	if !strings.Contains(out, "[::r]0x202  f255  ld [i[], v2       ; store v0..vx at i[::-]") {
		t.Errorf("Current line not highlighted:\n%s", out)
	}
	if strings.Count(out, "\n") != 3 {
		t.Errorf("Window size:\n%s", out)
	}
	if out := renderListing(lines, 0x300, 1, 1); !strings.Contains(out, "outside") {
		t.Errorf("Missing out of program notice: %s", out)
	}
}

func TestStateLine(t *testing.T) {
	if have := stateLine(vm.Status{Halted: true, Waiting: true}); have != "halted" {
		t.Errorf("Halted wins: %s", have)
	}
	if have := stateLine(vm.Status{Waiting: true}); have != "waiting for key" {
		t.Errorf("Waiting: %s", have)
	}
}

func TestSnapshotText(t *testing.T) {
	lines := disasm.Disasm([]byte{0x00, 0xE0, 0xF2, 0x55, 0x12, 0x02}, op.ProgramOffset)
	st := vm.Status{Mode: vm.ModeDebug, Cycles: 3, PC: 0x202, I: 0x300, Stack: []uint16{0x204}}
	st.V[0xA] = 0x42

	out := snapshotText(st, lines)
	for _, want := range []string{
		"mode Debug, running, 3 cycles\n",
		"pc 202  i 300",
		"va 42",
		"stack 204\n",
		"> 0x202  f255  ld [i], v2       ; store v0..vx at i\n",
		"  0x200  00e0  cls              ; clear the display\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Missing %q in:\n%s", want, out)
		}
	}
}
