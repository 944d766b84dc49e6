// Package inspector is a read-only terminal debugger for a loaded
// Pendragon image: registers, flags, a paged hex dump, and the frame-
// disciplined stack, with single-step/run control over the CPU it
// attaches to. It has no symbol table; every view is address-only.
package inspector

import (
	"fmt"
	"strings"

	"github.com/stephenwhippuk/pendragon/cpu"
	"github.com/stephenwhippuk/pendragon/isa"
)

// wideRegs is the fixed render order for the register panel.
var wideRegs = []isa.Reg{isa.AX, isa.BX, isa.CX, isa.DX, isa.EX}

// NumberFormat selects how the panels render register and address values.
type NumberFormat int

const (
	Hex NumberFormat = iota
	Decimal
)

func formatWord(f NumberFormat, v uint16) string {
	if f == Decimal {
		return fmt.Sprintf("%d", v)
	}
	return fmt.Sprintf("0x%04X", v)
}

// RenderRegisters renders the five wide registers and their IR, one per
// line, in the given number format. It never touches the halves: AL/AH
// etc. are views onto the same words and would only be noise here.
func RenderRegisters(c *cpu.CPU, f NumberFormat) string {
	var b strings.Builder
	for _, r := range wideRegs {
		fmt.Fprintf(&b, "%-2s %s\n", r, formatWord(f, c.Regs.Get(r)))
	}
	fmt.Fprintf(&b, "IR %s\n", formatWord(f, c.IR))
	return b.String()
}

// RenderFlags renders the shared flag register as four letters, upper
// case when set. showAll forces every letter to print even when clear;
// otherwise cleared flags are omitted.
func RenderFlags(c *cpu.CPU, showAll bool) string {
	letters := []struct {
		flag isa.Flag
		ch   string
	}{
		{isa.ZERO, "Z"},
		{isa.CARRY, "C"},
		{isa.SIGN, "S"},
		{isa.OVERFLOW, "O"},
	}
	var b strings.Builder
	for _, l := range letters {
		set := c.Flags&l.flag != 0
		switch {
		case set:
			b.WriteString(l.ch)
		case showAll:
			b.WriteString(strings.ToLower(l.ch))
		}
	}
	if b.Len() == 0 {
		return "-"
	}
	return b.String()
}

// RenderCurrentInstruction names the mnemonic at IR without stepping past
// it, for a status line above the other panels.
func RenderCurrentInstruction(c *cpu.CPU, f NumberFormat) string {
	mnemonic, err := c.PeekMnemonic()
	if err != nil {
		return fmt.Sprintf("%s: %v", formatWord(f, c.IR), err)
	}
	return fmt.Sprintf("%s: %s", formatWord(f, c.IR), mnemonic)
}

// RenderMemoryPage renders rows of bytesPerRow bytes each from the data
// context, starting at (page, base). A byte that cannot be read, and every
// byte after it, is shown as "--" rather than erroring the whole view — an
// inspector should show what exists, not refuse to render a boundary.
func RenderMemoryPage(c *cpu.CPU, page, base uint16, rows, bytesPerRow int) string {
	var b strings.Builder
	addr := base
	for row := 0; row < rows; row++ {
		fmt.Fprintf(&b, "%04X:", addr)
		rowBytes := make([]byte, 0, bytesPerRow)
		for col := 0; col < bytesPerRow; col++ {
			v, err := c.ReadDataByte(page, addr)
			if err != nil {
				fmt.Fprintf(&b, " --")
				continue
			}
			fmt.Fprintf(&b, " %02X", v)
			rowBytes = append(rowBytes, v)
			addr++
		}
		b.WriteString("  ")
		b.WriteString(printableASCII(rowBytes))
		b.WriteByte('\n')
	}
	return b.String()
}

func printableASCII(data []byte) string {
	out := make([]byte, len(data))
	for i, c := range data {
		if c >= 0x20 && c < 0x7F {
			out[i] = c
		} else {
			out[i] = '.'
		}
	}
	return string(out)
}

// RenderStack renders the data stack from the top down to offset 0, one
// byte per line, newest on top; bytes of enclosing frames are included. The
// byte at the current frame pointer is marked "->". When the current frame
// holds nothing it renders only "(empty)", even if enclosing frames still
// hold bytes below it.
func RenderStack(c *cpu.CPU, f NumberFormat) string {
	s := c.Stack()
	if s.IsEmpty() {
		return "(empty)\n"
	}
	fp := s.FP()
	var b strings.Builder
	for i := int64(s.SP()) - 1; i >= 0; i-- {
		v, err := s.PeekByteFromBase(uint32(i))
		if err != nil {
			continue
		}
		marker := "  "
		if int32(i) == fp {
			marker = "->"
		}
		fmt.Fprintf(&b, "%s [%d] %s\n", marker, i, formatWord(f, uint16(v)))
	}
	return b.String()
}
