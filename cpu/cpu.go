// Package cpu implements the instruction unit: the register file, the ALU,
// and the fetch-decode-execute loop that drives a Pendragon program from
// its entry point to HALT or a fatal error.
package cpu

import (
	"bufio"
	"fmt"
	"io"

	"github.com/stephenwhippuk/pendragon/isa"
	"github.com/stephenwhippuk/pendragon/memory"
	"github.com/stephenwhippuk/pendragon/stack"
)

// frame is one entry of the return-address stack CALL/RET maintain. It is
// kept as host-side state rather than on the data stack: it is never
// addressable by a running program.
type frame struct {
	ir uint16
	fp int32
}

// CPU is the instruction unit. It holds no opinion about how its code and
// data accessors were constructed; a caller (the machine that owns the
// memory unit) wires them up and is responsible for releasing them.
type CPU struct {
	Regs  Registers
	Flags isa.Flag
	IR    uint16

	code     *memory.PagedAccessor
	data     *memory.PagedAccessor
	dataPage uint16
	stk      *stack.Stack

	returnStack []frame

	syscalls *SyscallTable
	out      io.Writer
	inSource io.Reader
	in       *bufio.Reader

	Halted   bool
	Cycles   uint64
	MaxCycle uint64
}

// New constructs a CPU ready to run starting at entry. code must be a
// read-only paged accessor over the code context; data must be read-write
// over the data context; stk must already be constructed over a protected
// stack context. maxCycles of 0 means unbounded.
func New(code, data *memory.PagedAccessor, stk *stack.Stack, syscalls *SyscallTable, out io.Writer, in io.Reader, entry uint16, maxCycles uint64) *CPU {
	if syscalls == nil {
		syscalls = NewSyscallTable()
	}
	return &CPU{
		code:     code,
		data:     data,
		stk:      stk,
		syscalls: syscalls,
		out:      out,
		inSource: in,
		IR:       entry,
		MaxCycle: maxCycles,
	}
}

// Run steps the CPU until it halts or a runtime error occurs.
func (c *CPU) Run() error {
	for !c.Halted {
		if err := c.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Step fetches, decodes, and executes exactly one instruction.
func (c *CPU) Step() error {
	if c.Halted {
		return nil
	}
	if c.MaxCycle != 0 && c.Cycles >= c.MaxCycle {
		return newError(ErrorCycleLimitExceeded, "cycle limit of %d reached at IR=0x%04X", c.MaxCycle, c.IR)
	}

	startIR := c.IR
	opcodeByte, err := c.fetchByte()
	if err != nil {
		return err
	}
	variant, ok := isa.ByOpcode[isa.Opcode(opcodeByte)]
	if !ok {
		return newError(ErrorUnknownOpcode, "unknown opcode 0x%02X at IR=0x%04X", opcodeByte, startIR)
	}

	if err := c.execute(variant); err != nil {
		return fmt.Errorf("execute failed at IR=0x%04X (%s): %w", startIR, variant.Mnemonic, err)
	}
	c.Cycles++
	return nil
}

func (c *CPU) fetchByte() (byte, error) {
	b, err := c.code.ReadByte(0, c.IR)
	if err != nil {
		return 0, err
	}
	c.IR++
	return b, nil
}

func (c *CPU) fetchWord() (uint16, error) {
	lo, err := c.fetchByte()
	if err != nil {
		return 0, err
	}
	hi, err := c.fetchByte()
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

// testFlag reports whether every bit in want is currently set.
func (c *CPU) testFlag(want isa.Flag) bool { return c.Flags&want == want }

// Stack exposes the data stack for read-only inspection. Nothing in this
// package mutates it through the returned value; callers that do so step
// outside the CPU's own discipline.
func (c *CPU) Stack() *stack.Stack { return c.stk }

// DataPage reports the page last selected by PAGE, the page LDA/STA/LDAR/
// STAR currently address.
func (c *CPU) DataPage() uint16 { return c.dataPage }

// ReadDataByte reads one byte from the data context at the given page and
// offset, for inspection tools that want to dump memory without stepping
// the CPU.
func (c *CPU) ReadDataByte(page, offset uint16) (byte, error) {
	return c.data.ReadByte(page, offset)
}

// ReadCodeByte reads one byte from the code context, for disassembly-style
// inspection without advancing IR.
func (c *CPU) ReadCodeByte(offset uint16) (byte, error) {
	return c.code.ReadByte(0, offset)
}

// PeekMnemonic reports the mnemonic of the instruction at the current IR
// without advancing it or executing anything. It exists for tracing and
// inspection tools that want to label an instruction before Step consumes
// it.
func (c *CPU) PeekMnemonic() (string, error) {
	b, err := c.code.ReadByte(0, c.IR)
	if err != nil {
		return "", err
	}
	variant, ok := isa.ByOpcode[isa.Opcode(b)]
	if !ok {
		return "", newError(ErrorUnknownOpcode, "unknown opcode 0x%02X at IR=0x%04X", b, c.IR)
	}
	return variant.Mnemonic, nil
}
