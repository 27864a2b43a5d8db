package main

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log"
	"os"
	"time"

	"github.com/hajimehoshi/bitmapfont/v3"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"go.creack.net/chip8/capture"
	"go.creack.net/chip8/cli"
	"go.creack.net/chip8/op"
	"go.creack.net/chip8/vm"
)

var fontFace = text.NewGoXFace(bitmapfont.Face)

const statusLines = 2

var (
	colorOn   = color.RGBA{R: 0xE0, G: 0xF0, B: 0xE0, A: 0xFF}
	colorOff  = color.RGBA{R: 0x10, G: 0x18, B: 0x10, A: 0xFF}
	colorText = color.RGBA{R: 0x80, G: 0xFF, B: 0x80, A: 0xFF}
	colorTone = color.RGBA{R: 0xFF, G: 0x60, B: 0x40, A: 0xFF}
)

// Game implements ebiten.Game interface.
type Game struct {
	emu    *vm.Emulator
	frames *vm.FrameSlot
	tone   *vm.ToneFlag
	scale  int

	screen *ebiten.Image
	pixels []byte

	notice      string
	noticeUntil time.Time

	done chan error // Result of the emulator loop.
	err  error
}

func NewGame(emu *vm.Emulator, frames *vm.FrameSlot, tone *vm.ToneFlag, scale int) *Game {
	return &Game{
		emu:    emu,
		frames: frames,
		tone:   tone,
		scale:  scale,

		screen: ebiten.NewImage(op.ScreenWidth, op.ScreenHeight),
		pixels: make([]byte, 4*op.ScreenWidth*op.ScreenHeight),

		done: make(chan error, 1),
	}
}

func (g *Game) statusHeight() int {
	return statusLines * int(fontFace.Metrics().HLineGap+fontFace.Metrics().HAscent+fontFace.Metrics().HDescent+1)
}

// Update translates the input. Called every tick (1/60 [s] by default).
func (g *Game) Update() error {
	select {
	case err := <-g.done:
		g.err = err
		return ebiten.Termination
	default:
	}
	if ebiten.IsWindowBeingClosed() || inpututil.IsKeyJustPressed(keyQuit) {
		g.emu.Quit()
		return nil
	}

	for key, hex := range keypad {
		if inpututil.IsKeyJustPressed(key) {
			g.emu.SetPressed(hex, true)
		} else if inpututil.IsKeyJustReleased(key) {
			g.emu.SetPressed(hex, false)
		}
	}

	if inpututil.IsKeyJustPressed(keyToggle) {
		g.emu.ToggleMode()
	}
	if inpututil.IsKeyJustPressed(keyStep) {
		g.emu.Step()
	}
	if inpututil.IsKeyJustPressed(keyScreenshot) {
		g.screenshot()
	}
	return nil
}

func (g *Game) screenshot() {
	frame, ok := g.frames.Latest()
	if !ok {
		return
	}
	name := capture.Name(time.Now())
	if err := capture.SaveFile(name, frame, g.scale); err != nil {
		log.Printf("Failed to save screenshot: %s.", err)
		g.setNotice("screenshot failed")
		return
	}
	log.Printf("Saved %s.", name)
	g.setNotice("saved " + name)
}

func (g *Game) setNotice(msg string) {
	g.notice = msg
	g.noticeUntil = time.Now().Add(2 * time.Second)
}

// Draw blits the latest frame and the status text.
func (g *Game) Draw(screen *ebiten.Image) {
	if frame, ok := g.frames.Latest(); ok {
		for y := range op.ScreenHeight {
			for x := range op.ScreenWidth {
				c := colorOff
				if frame[y][x] {
					c = colorOn
				}
				i := 4 * (y*op.ScreenWidth + x)
				g.pixels[i], g.pixels[i+1], g.pixels[i+2], g.pixels[i+3] = c.R, c.G, c.B, c.A
			}
		}
		g.screen.WritePixels(g.pixels)
	}
	drawOp := &ebiten.DrawImageOptions{}
	drawOp.GeoM.Scale(float64(g.scale), float64(g.scale))
	screen.DrawImage(g.screen, drawOp)

	st := g.emu.Status()
	line := fmt.Sprintf("%s  pc %03x  i %03x  dt %02x  st %02x  %d cycles", st.Mode, st.PC, st.I, st.Delay, st.Sound, st.Cycles)
	switch {
	case st.Halted:
		line += "  halted"
	case st.Waiting:
		line += "  waiting for key"
	}
	hint := "space: toggle mode  n: step  p: screenshot  esc: quit"
	if time.Now().Before(g.noticeUntil) {
		hint = g.notice
	}

	textOp := &text.DrawOptions{}
	textOp.LineSpacing = fontFace.Metrics().HLineGap + fontFace.Metrics().HAscent + fontFace.Metrics().HDescent
	textOp.GeoM.Translate(4, float64(op.ScreenHeight*g.scale))
	textOp.ColorScale.ScaleWithColor(colorText)
	text.Draw(screen, line+"\n"+hint, fontFace, textOp)

	if g.tone.On() {
		toneOp := &text.DrawOptions{}
		toneOp.GeoM.Translate(float64(op.ScreenWidth*g.scale-40), float64(op.ScreenHeight*g.scale))
		toneOp.ColorScale.ScaleWithColor(colorTone)
		text.Draw(screen, "BEEP", fontFace, toneOp)
	}
}

// Layout keeps the logical screen at the scaled framebuffer plus the status text.
func (g *Game) Layout(_, _ int) (screenWidth, screenHeight int) {
	return op.ScreenWidth * g.scale, op.ScreenHeight*g.scale + g.statusHeight()
}

func banner(mode vm.Mode) string {
	switch mode {
	case vm.ModeDebug:
		return "Debug mode: press n to execute one instruction, space to run continuously."
	default:
		return "Standard mode: press space to pause into debug mode, esc to quit."
	}
}

func main() {
	log.SetFlags(0)

	cfg, err := cli.ParseConfig()
	if err != nil {
		log.Fatalf("Failed to parse CLI config: %s.", err)
	}
	if cfg.Source == "" {
		games, err := cli.ListGames(cfg.Games)
		if err != nil {
			log.Fatalf("Failed to list games: %s.", err)
		}
		fmt.Fprintf(os.Stderr, "No program given. Available games:\n")
		for _, g := range games {
			fmt.Fprintf(os.Stderr, "  %s\n", g.Source)
		}
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	program, err := cli.Load(ctx, cfg.Source)
	if err != nil {
		log.Fatalf("Failed to load program: %s.", err)
	}

	cfg.VM.Logger = cfg.Logger(os.Stderr)
	frames, tone := &vm.FrameSlot{}, &vm.ToneFlag{}
	emu, err := vm.NewEmulator(program, cfg.VM, frames, tone)
	if err != nil {
		log.Fatalf("Failed to start emulator: %s.", err)
	}
	log.Print(banner(cfg.VM.Mode))

	game := NewGame(emu, frames, tone, cfg.Scale)
	go func() { game.done <- emu.Run(ctx) }()

	w, h := game.Layout(0, 0)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("CHIP-8 - " + cfg.Source)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetRunnableOnUnfocused(true)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
	cancel()
	if game.err != nil {
		log.Fatalf("Emulator halted: %s.", game.err)
	}
	log.Printf("Done")
}
