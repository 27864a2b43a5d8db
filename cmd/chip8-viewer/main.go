package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"golang.design/x/clipboard"
	"golang.org/x/term"

	"go.creack.net/chip8/capture"
	"go.creack.net/chip8/cli"
	"go.creack.net/chip8/disasm"
	"go.creack.net/chip8/op"
	"go.creack.net/chip8/vm"
)

// Terminals only report presses, keys are released after this delay.
const keyHold = 150 * time.Millisecond

const refreshRate = 30 // Redraws per second.

type Viewer struct {
	app  *tview.Application
	root *tview.Pages

	mainPage   *tview.Flex
	menuView   *tview.List
	gamesView  *tview.List
	modeView   *tview.List
	screenView *tview.TextView
	regsView   *tview.Table
	disasmView *tview.TextView
	logsView   *tview.TextView

	cfg cli.Config

	// Set once the program is started, only touched by the tview event loop.
	emu     *vm.Emulator
	frames  *vm.FrameSlot
	tone    *vm.ToneFlag
	listing []disasm.Line
	program []byte
	release map[byte]*time.Timer

	clipboardOnce sync.Once
	clipboardOK   bool

	ctx    context.Context
	cancel context.CancelFunc
}

func NewViewer(ctx context.Context, cfg cli.Config) *Viewer {
	app := tview.NewApplication()

	newTextView := func(title string) *tview.TextView {
		tv := tview.NewTextView().SetDynamicColors(true)
		tv.SetTitle(title).SetBorder(true)
		return tv
	}

	screenView := tview.NewTextView().SetDynamicColors(false).SetWrap(false)
	screenView.SetTitle("Screen").SetBorder(true)

	regsView := tview.NewTable().SetBorders(false)
	regsView.SetTitle("Registers").SetBorder(true)

	disasmView := newTextView("Disassembly")
	disasmView.SetWrap(false)

	logsView := newTextView("Logs")
	logsView.ScrollToEnd()
	logsView.SetMaxLines(1000)

	rightPane := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(regsView, 0, 2, false).
		AddItem(disasmView, 0, 3, false)

	top := tview.NewFlex().
		AddItem(screenView, op.ScreenWidth+2, 0, true).
		AddItem(rightPane, 0, 1, false)

	mainPage := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(top, op.ScreenHeight/2+2, 0, true).
		AddItem(logsView, 0, 1, false)

	menuView := tview.NewList()
	menuView.SetTitle("CHIP-8").SetBorder(true)

	gamesView := tview.NewList()
	gamesView.SetTitle("Select Game").SetBorder(true)

	modeView := tview.NewList()
	modeView.SetTitle("Run Mode").SetBorder(true)

	ctx, cancel := context.WithCancel(ctx)

	v := &Viewer{
		app:  app,
		root: tview.NewPages(),

		mainPage:   mainPage,
		menuView:   menuView,
		gamesView:  gamesView,
		modeView:   modeView,
		screenView: screenView,
		regsView:   regsView,
		disasmView: disasmView,
		logsView:   logsView,

		cfg:     cfg,
		release: map[byte]*time.Timer{},

		ctx:    ctx,
		cancel: cancel,
	}

	menuView.
		AddItem("Select Game", "from "+cfg.Games+" and the bundled programs", 'g', v.showGames).
		AddItem("Load Local Game", "by path", 'l', func() { v.showPrompt("Path", "local", "") }).
		AddItem("Download Remote Game", "by URL", 'u', func() { v.showPrompt("URL", "remote", "https://") }).
		AddItem("Quit", "", 'q', v.Stop)

	modeView.
		AddItem(vm.ModeStandard.String(), "run continuously, space pauses", 's', func() { v.start(vm.ModeStandard) }).
		AddItem(vm.ModeDebug.String(), "one instruction per n, space runs", 'd', func() { v.start(vm.ModeDebug) })

	modeView.SetCurrentItem(int(cfg.VM.Mode))

	v.root.AddPage("menu", center(menuView, 60, 12), true, true)
	v.root.AddPage("games", center(gamesView, 60, 20), true, false)
	v.root.AddPage("mode", center(modeView, 60, 8), true, false)
	v.root.AddPage("main", mainPage, true, false)
	return v
}

func center(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 1, true).
			AddItem(nil, 0, 1, false), width, 1, true).
		AddItem(nil, 0, 1, false)
}

func (v *Viewer) Stop() {
	if v.emu != nil {
		v.emu.Quit()
	}
	v.app.Stop()
	v.cancel()
}

func (v *Viewer) showPage(name string) {
	v.root.SwitchToPage(name)
}

func (v *Viewer) showError(msg string) {
	modal := tview.NewModal().
		SetText(msg).
		AddButtons([]string{"OK"}).
		SetDoneFunc(func(int, string) {
			v.root.RemovePage("error")
			v.showPage("menu")
		})
	v.root.AddPage("error", modal, false, true)
}

func (v *Viewer) showGames() {
	games, err := cli.ListGames(v.cfg.Games)
	if err != nil {
		v.showError(err.Error())
		return
	}
	v.gamesView.Clear()
	for _, g := range games {
		v.gamesView.AddItem(g.Name, "", 0, func() { v.load(g.Source) })
	}
	v.showPage("games")
}

func (v *Viewer) showPrompt(label, page, initial string) {
	form := tview.NewForm()
	form.AddInputField(label, initial, 60, nil, nil)
	form.AddButton("Load", func() {
		source := form.GetFormItemByLabel(label).(*tview.InputField).GetText()
		v.root.RemovePage(page)
		v.load(strings.TrimSpace(source))
	})
	form.AddButton("Back", func() {
		v.root.RemovePage(page)
		v.showPage("menu")
	})
	form.SetTitle("Load " + label).SetBorder(true)
	v.root.AddPage(page, center(form, 80, 7), true, true)
}

// load fetches the program off the event loop, then asks for the run mode.
func (v *Viewer) load(source string) {
	v.logf("[yellow]loading %s[-]", tview.Escape(source))
	go func() {
		program, err := cli.Load(v.ctx, source)
		v.app.QueueUpdateDraw(func() {
			if err != nil {
				v.showError(fmt.Sprintf("Failed to load program: %s.", err))
				return
			}
			v.program = program
			v.screenView.SetTitle("Screen - " + source)
			v.showPage("mode")
		})
	}()
}

func (v *Viewer) logf(format string, args ...any) {
	fmt.Fprintf(v.logsView, format+"\n", args...)
}

func (v *Viewer) start(mode vm.Mode) {
	cfg := v.cfg.VM
	cfg.Mode = mode
	cfg.Logger = v.cfg.Logger(v.logsView)

	frames, tone := &vm.FrameSlot{}, &vm.ToneFlag{}
	emu, err := vm.NewEmulator(v.program, cfg, frames, tone)
	if err != nil {
		v.showError(fmt.Sprintf("Failed to start emulator: %s.", err))
		return
	}
	v.emu, v.frames, v.tone = emu, frames, tone
	v.listing = disasm.Disasm(v.program, op.ProgramOffset)

	v.logf("[green]%s[-]", banner(mode))
	v.logf("keypad: 1234 qwer asdf zxcv, p: screenshot, y: copy state, esc: quit")
	v.showPage("main")
	v.app.SetFocus(v.mainPage)

	go func() {
		err := emu.Run(v.ctx)
		v.app.QueueUpdateDraw(func() {
			if err != nil {
				v.logf("[red]emulator halted: %s[-]", tview.Escape(err.Error()))
				return
			}
			v.logf("emulator stopped")
		})
	}()
	go v.forwardMessages(emu)
	go v.refresh(emu)
}

func (v *Viewer) forwardMessages(emu *vm.Emulator) {
	for {
		select {
		case msg := <-emu.Messages:
			// TextView.Write is safe outside of the event loop, the next refresh draws it.
			colorCode := "[" + tcell.ColorDefault.String() + ":::]"
			switch msg.Type {
			case vm.MsgError, vm.MsgHalt:
				colorCode = "[" + tcell.ColorRed.String() + ":::]"
			case vm.MsgBreak:
				colorCode = "[" + tcell.ColorYellow.String() + ":::]"
			case vm.MsgMode:
				colorCode = "[" + tcell.ColorLightBlue.String() + ":::]"
			}
			v.logf("%s%s[:::]", colorCode, tview.Escape(strings.TrimSuffix(msg.String(), "\n")))
		case <-v.ctx.Done():
			return
		}
	}
}

func (v *Viewer) refresh(emu *vm.Emulator) {
	ticker := time.NewTicker(time.Second / refreshRate)
	defer ticker.Stop()

	defer func() {
		if e := recover(); e != nil {
			v.app.Stop()
			log.Printf("Recovered from panic: %v", e)
			debug.PrintStack()
		}
	}()
	for {
		v.app.QueueUpdateDraw(func() { v.draw(emu) })
		select {
		case <-ticker.C:
		case <-v.ctx.Done():
			return
		}
	}
}

func (v *Viewer) draw(emu *vm.Emulator) {
	if f, ok := v.frames.Latest(); ok {
		v.screenView.SetText(renderFrame(&f))
	}
	st := emu.Status()
	v.drawRegisters(st)
	v.disasmView.SetText(renderListing(v.listing, st.PC, 6, 12))

	title := fmt.Sprintf("Registers - %s, %s", st.Mode, stateLine(st))
	if v.tone.On() {
		title += " - BEEP"
	}
	v.regsView.SetTitle(title)
}

func (v *Viewer) drawRegisters(st vm.Status) {
	set := func(row, col int, label, value string) {
		v.regsView.SetCell(row, col, tview.NewTableCell(label).SetAttributes(tcell.AttrBold))
		v.regsView.SetCell(row, col+1, tview.NewTableCell(value).SetAlign(tview.AlignRight))
	}
	for i, elem := range st.V {
		set(i%8, 2*(i/8), fmt.Sprintf("V%X ", i), fmt.Sprintf("%02x  ", elem))
	}
	set(0, 4, "PC ", fmt.Sprintf("%03x  ", st.PC))
	set(1, 4, "I ", fmt.Sprintf("%03x  ", st.I))
	set(2, 4, "DT ", fmt.Sprintf("%02x  ", st.Delay))
	set(3, 4, "ST ", fmt.Sprintf("%02x  ", st.Sound))
	set(4, 4, "SP ", fmt.Sprintf("%d  ", len(st.Stack)))
	set(5, 4, "Cycles ", fmt.Sprintf("%d  ", st.Cycles))

	stack := make([]string, 0, len(st.Stack))
	for _, elem := range st.Stack {
		stack = append(stack, fmt.Sprintf("%03x", elem))
	}
	set(6, 4, "Stack ", strings.Join(stack, " "))
	set(7, 4, "Next ", tview.Escape(st.Next.String()))
}

func (v *Viewer) press(key byte) {
	v.emu.SetPressed(key, true)
	if t, ok := v.release[key]; ok {
		t.Reset(keyHold)
		return
	}
	emu := v.emu
	v.release[key] = time.AfterFunc(keyHold, func() { emu.SetPressed(key, false) })
}

func (v *Viewer) screenshot() {
	frame, ok := v.frames.Latest()
	if !ok {
		return
	}
	name := capture.Name(time.Now())
	if err := capture.SaveFile(name, frame, v.cfg.Scale); err != nil {
		v.logf("[red]failed to save screenshot: %s[-]", tview.Escape(err.Error()))
		return
	}
	v.logf("saved %s", name)
}

func (v *Viewer) copyState() {
	v.clipboardOnce.Do(func() {
		if err := clipboard.Init(); err != nil {
			v.logf("[red]clipboard unavailable: %s[-]", tview.Escape(err.Error()))
			return
		}
		v.clipboardOK = true
	})
	if !v.clipboardOK {
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(snapshotText(v.emu.Status(), v.listing)))
	v.logf("state copied to the clipboard")
}

func (v *Viewer) Init() {
	f := func(event *tcell.EventKey) *tcell.EventKey {
		curPage, _ := v.root.GetFrontPage()
		switch event.Key() {
		case tcell.KeyCtrlC:
			v.Stop()
			return nil
		case tcell.KeyEscape:
			switch curPage {
			case "main", "menu":
				v.Stop()
			case "error":
				return event
			default:
				v.root.RemovePage("local")
				v.root.RemovePage("remote")
				v.showPage("menu")
			}
			return nil
		}
		if curPage != "main" || v.emu == nil {
			return event
		}
		switch r := event.Rune(); r {
		case 'n':
			v.emu.Step()
		case ' ':
			v.emu.ToggleMode()
		case 'p':
			v.screenshot()
		case 'y':
			v.copyState()
		default:
			if k, ok := keypadKey(r); ok {
				v.press(k)
			}
		}
		return nil
	}
	v.root.SetInputCapture(f)
}

func main() {
	log.SetFlags(0)

	cfg, err := cli.ParseConfig()
	if err != nil {
		log.Fatalf("Failed to parse CLI config: %s.", err)
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		log.Fatalf("The viewer needs a terminal, use the chip8 command instead.")
	}

	v := NewViewer(context.Background(), cfg)
	v.Init()
	if cfg.Source != "" {
		v.load(cfg.Source)
	}

	if err := v.app.SetRoot(v.root, true).SetFocus(v.root).Run(); err != nil {
		panic(err)
	}
	log.Printf("Done")
}
