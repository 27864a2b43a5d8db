package main

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/rivo/tview"

	"go.creack.net/chip8/disasm"
	"go.creack.net/chip8/op"
	"go.creack.net/chip8/vm"
)

// keypad maps the left hand block of a QWERTY keyboard to the hexadecimal keypad.
var keypad = map[rune]byte{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

func keypadKey(r rune) (byte, bool) {
	k, ok := keypad[unicode.ToLower(r)]
	return k, ok
}

// halfBlocks indexed by top | bottom<<1.
var halfBlocks = [4]rune{' ', '▀', '▄', '█'}

// renderFrame draws two pixel rows per text line.
func renderFrame(f *vm.Frame) string {
	out := &strings.Builder{}
	out.Grow((op.ScreenWidth*3 + 1) * op.ScreenHeight / 2)
	for y := 0; y < op.ScreenHeight; y += 2 {
		for x := range op.ScreenWidth {
			idx := 0
			if f[y][x] {
				idx |= 1
			}
			if f[y+1][x] {
				idx |= 2
			}
			out.WriteRune(halfBlocks[idx])
		}
		out.WriteByte('\n')
	}
	return out.String()
}

// renderListing highlights the line at pc.
func renderListing(lines []disasm.Line, pc uint16, before, after int) string {
	win, pos := disasm.Window(lines, pc, before, after)
	if pos == -1 {
		return fmt.Sprintf("[red]pc 0x%03x outside of the program[-]\n", pc)
	}
	out := &strings.Builder{}
	for i, elem := range win {
		if i == pos {
			fmt.Fprintf(out, "[::r]%s[::-]\n", tview.Escape(elem.String()))
			continue
		}
		fmt.Fprintf(out, "%s\n", tview.Escape(elem.String()))
	}
	return out.String()
}

// stateLine summarizes the run state.
func stateLine(st vm.Status) string {
	switch {
	case st.Halted:
		return "halted"
	case st.Waiting:
		return "waiting for key"
	default:
		return "running"
	}
}

func banner(mode vm.Mode) string {
	switch mode {
	case vm.ModeDebug:
		return "Debug mode: press n to execute one instruction, space to run continuously."
	default:
		return "Standard mode: press space to pause into debug mode, esc to quit."
	}
}

// snapshotText is the plain text dump copied to the clipboard.
func snapshotText(st vm.Status, lines []disasm.Line) string {
	out := &strings.Builder{}
	fmt.Fprintf(out, "mode %s, %s, %d cycles\n", st.Mode, stateLine(st), st.Cycles)
	fmt.Fprintf(out, "pc %03x  i %03x  dt %02x  st %02x\n", st.PC, st.I, st.Delay, st.Sound)
	for i, elem := range st.V {
		sep := " "
		if i%8 == 7 {
			sep = "\n"
		}
		fmt.Fprintf(out, "v%x %02x%s", i, elem, sep)
	}
	out.WriteString("stack")
	for _, elem := range st.Stack {
		fmt.Fprintf(out, " %03x", elem)
	}
	out.WriteString("\n\n")

	win, pos := disasm.Window(lines, st.PC, 6, 12)
	for i, elem := range win {
		marker := "  "
		if i == pos {
			marker = "> "
		}
		out.WriteString(marker + elem.String() + "\n")
	}
	return out.String()
}
