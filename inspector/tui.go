package inspector

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/stephenwhippuk/pendragon/cpu"
)

// TUI is the terminal inspector attached to one running CPU. It never
// mutates CPU or memory state beyond stepping it at the user's request;
// every panel is a read view rendered from the render.go helpers.
type TUI struct {
	CPU *cpu.CPU

	app        *tview.Application
	layout     *tview.Flex
	registers  *tview.TextView
	flags      *tview.TextView
	memory     *tview.TextView
	stack      *tview.TextView
	output     *tview.TextView
	command    *tview.InputField
	numberFmt  NumberFormat
	memoryPage uint16
	memoryBase uint16
}

// NewTUI builds an inspector over c. format controls how register and
// address values render.
func NewTUI(c *cpu.CPU, format NumberFormat) *TUI {
	t := &TUI{
		CPU:       c,
		app:       tview.NewApplication(),
		numberFmt: format,
	}
	t.initViews()
	t.buildLayout()
	t.setupKeyBindings()
	return t
}

func (t *TUI) initViews() {
	t.registers = tview.NewTextView().SetDynamicColors(false)
	t.registers.SetBorder(true).SetTitle(" Registers ")

	t.flags = tview.NewTextView().SetDynamicColors(false)
	t.flags.SetBorder(true).SetTitle(" Flags ")

	t.memory = tview.NewTextView().SetScrollable(true).SetWrap(false)
	t.memory.SetBorder(true).SetTitle(" Memory ")

	t.stack = tview.NewTextView().SetScrollable(true).SetWrap(false)
	t.stack.SetBorder(true).SetTitle(" Stack ")

	t.output = tview.NewTextView().SetScrollable(true).SetWrap(true)
	t.output.SetBorder(true).SetTitle(" Output ")

	t.command = tview.NewInputField().SetLabel("> ")
	t.command.SetBorder(true).SetTitle(" Command (step/run/page N/quit) ")
	t.command.SetDoneFunc(t.handleCommand)
}

func (t *TUI) buildLayout() {
	top := tview.NewFlex().
		AddItem(t.registers, 0, 1, false).
		AddItem(t.flags, 0, 1, false).
		AddItem(t.memory, 0, 2, false).
		AddItem(t.stack, 0, 1, false)

	t.layout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(top, 0, 4, false).
		AddItem(t.output, 5, 0, false).
		AddItem(t.command, 3, 0, true)
}

func (t *TUI) setupKeyBindings() {
	t.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF10:
			t.runCommand("step")
			return nil
		case tcell.KeyF5:
			t.runCommand("run")
			return nil
		case tcell.KeyCtrlC:
			t.app.Stop()
			return nil
		}
		return event
	})
}

func (t *TUI) handleCommand(key tcell.Key) {
	if key != tcell.KeyEnter {
		return
	}
	cmd := t.command.GetText()
	t.command.SetText("")
	if cmd != "" {
		t.runCommand(cmd)
	}
}

// runCommand executes one inspector command and refreshes every panel.
// "step" advances the CPU exactly one instruction, "run" drives it to
// HALT or the configured cycle limit, "page N" switches the memory
// panel's data page, and "quit" stops the event loop.
func (t *TUI) runCommand(cmd string) {
	switch {
	case cmd == "step":
		if err := t.CPU.Step(); err != nil {
			t.writeOutput(err.Error())
		}
	case cmd == "run":
		if err := t.CPU.Run(); err != nil {
			t.writeOutput(err.Error())
		}
	case cmd == "quit":
		t.app.Stop()
		return
	default:
		var page uint16
		if n, _ := fmt.Sscanf(cmd, "page %d", &page); n == 1 {
			t.memoryPage = page
		} else {
			t.writeOutput("unrecognized command: " + cmd)
		}
	}
	t.Refresh()
}

func (t *TUI) writeOutput(s string) {
	fmt.Fprintln(t.output, s)
	t.output.ScrollToEnd()
}

// Refresh re-renders every panel from the CPU's current state.
func (t *TUI) Refresh() {
	t.registers.SetText(RenderCurrentInstruction(t.CPU, t.numberFmt) + "\n\n" + RenderRegisters(t.CPU, t.numberFmt))
	t.flags.SetText(RenderFlags(t.CPU, true))
	t.memory.SetText(RenderMemoryPage(t.CPU, t.memoryPage, t.memoryBase, 16, 16))
	t.stack.SetText(RenderStack(t.CPU, t.numberFmt))
	t.app.Draw()
}

// Run starts the inspector's event loop. It blocks until the user quits.
func (t *TUI) Run() error {
	t.Refresh()
	return t.app.SetRoot(t.layout, true).SetFocus(t.command).Run()
}
