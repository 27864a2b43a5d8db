// Package assets bundles a few programs so the front ends have something to run
// without a games directory.
package assets

import (
	"embed"
)

// ROMs holds the bundled programs under roms/.
//
//   - glyphs.ch8 draws the 16 hexadecimal glyphs and spins.
//   - keypad.ch8 shows the glyph of the last pressed key and beeps.
//
//go:embed roms/*.ch8
var ROMs embed.FS

// Sources holds the assembly of the bundled programs under src/, see cmd/asm.
//
//go:embed src/*.s
var Sources embed.FS

// Dir is the directory of the programs within ROMs.
const Dir = "roms"
