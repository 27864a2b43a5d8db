package vm

import (
	"strings"

	"go.creack.net/chip8/op"
)

// Frame is an immutable copy of the display, indexed [y][x].
type Frame [op.ScreenHeight][op.ScreenWidth]bool

// Pixel reports whether the cell at x,y is set. Coordinates wrap.
func (f *Frame) Pixel(x, y int) bool {
	return f[mod(y, op.ScreenHeight)][mod(x, op.ScreenWidth)]
}

// Lit returns the number of set cells.
func (f *Frame) Lit() int {
	n := 0
	for y := range f {
		for x := range f[y] {
			if f[y][x] {
				n++
			}
		}
	}
	return n
}

// String renders the frame with '#' for set cells and '.' for unset ones.
func (f *Frame) String() string {
	out := &strings.Builder{}
	out.Grow((op.ScreenWidth + 1) * op.ScreenHeight)
	for y := range f {
		for x := range f[y] {
			if f[y][x] {
				out.WriteByte('#')
			} else {
				out.WriteByte('.')
			}
		}
		out.WriteByte('\n')
	}
	return out.String()
}

// Display is the monochrome framebuffer.
type Display struct {
	cells Frame
}

func (d *Display) Clear() {
	d.cells = Frame{}
}

// DrawSprite XORs rows at x,y, one byte per row, MSB leftmost.
// Every pixel wraps around both edges.
// Returns true if any set cell was turned off.
func (d *Display) DrawSprite(x, y int, rows []byte) bool {
	collision := false
	for i, row := range rows {
		py := mod(y+i, op.ScreenHeight)
		for bit := range op.SpriteWidth {
			if row&(0x80>>bit) == 0 {
				continue
			}
			px := mod(x+bit, op.ScreenWidth)
			if d.cells[py][px] {
				collision = true
			}
			d.cells[py][px] = !d.cells[py][px]
		}
	}
	return collision
}

// Snapshot returns a copy safe to hand to another goroutine.
func (d *Display) Snapshot() Frame {
	return d.cells
}

func mod(a, n int) int {
	a %= n
	if a < 0 {
		a += n
	}
	return a
}
