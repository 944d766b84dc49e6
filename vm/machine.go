// Package vm assembles the pieces built elsewhere — isa, memory, stack,
// cpu, image — into a runnable machine: it owns the memory unit and its
// three contexts (code, data, stack), loads a binary image into them, and
// drives the CPU to completion.
package vm

import (
	"io"

	"github.com/stephenwhippuk/pendragon/cpu"
	"github.com/stephenwhippuk/pendragon/image"
	"github.com/stephenwhippuk/pendragon/memory"
	"github.com/stephenwhippuk/pendragon/stack"
)

// Config bounds the three contexts a Machine allocates. Capacities are
// raised to fit the image being loaded if the image is larger.
type Config struct {
	CodeCapacity  uint64
	DataCapacity  uint64
	StackCapacity uint64
	MaxCycles     uint64
}

// DefaultConfig matches the capacities named in the interface contract: a
// 1 KiB stack, 64 KiB code segment, 32 KiB data segment.
func DefaultConfig() Config {
	return Config{
		CodeCapacity:  64 * 1024,
		DataCapacity:  32 * 1024,
		StackCapacity: 1024,
	}
}

// Machine owns the memory unit for the lifetime of one program run. Its
// contexts and accessors are never exposed past construction; callers only
// ever see the CPU's architectural state (registers, flags) and the final
// error, if any.
type Machine struct {
	CPU *cpu.CPU

	unprotected *memory.UnprotectedUnit
}

// Load builds a Machine from a decoded image: it allocates code, data, and
// stack contexts, writes the code segment at offset 0 of the code context
// and the data segment at loadAddress within the data context, and wires a
// CPU over read-only/read-write accessors of each. loadAddress only moves
// where the data segment lands; the code segment — and the CPU's entry
// point — always starts at address 0, matching the assembler's own
// address-resolution pass.
func Load(img *image.Image, loadAddress uint16, cfg Config, syscalls *cpu.SyscallTable, out io.Writer, in io.Reader) (*Machine, error) {
	codeSize := cfg.CodeCapacity
	if need := uint64(len(img.Code)); need > codeSize {
		codeSize = need
	}
	dataSize := cfg.DataCapacity
	if need := uint64(loadAddress) + uint64(len(img.Data)); need > dataSize {
		dataSize = need
	}

	u := memory.NewUnit()
	codeID, err := u.CreateContext(codeSize)
	if err != nil {
		return nil, err
	}
	dataID, err := u.CreateContext(dataSize)
	if err != nil {
		return nil, err
	}
	stackID, err := u.CreateContext(cfg.StackCapacity)
	if err != nil {
		return nil, err
	}

	p := u.Protect()

	codeWriter, err := p.NewPagedAccessor(codeID, memory.ReadWrite)
	if err != nil {
		return nil, err
	}
	if err := codeWriter.WriteBytes(0, 0, img.Code); err != nil {
		return nil, err
	}
	codeReader, err := p.NewPagedAccessor(codeID, memory.ReadOnly)
	if err != nil {
		return nil, err
	}

	dataAcc, err := p.NewPagedAccessor(dataID, memory.ReadWrite)
	if err != nil {
		return nil, err
	}
	if err := dataAcc.WriteBytes(0, loadAddress, img.Data); err != nil {
		return nil, err
	}

	stk, err := stack.New(p, stackID, uint32(cfg.StackCapacity))
	if err != nil {
		return nil, err
	}

	c := cpu.New(codeReader, dataAcc, stk, syscalls, out, in, 0, cfg.MaxCycles)
	return &Machine{CPU: c, unprotected: u}, nil
}

// Run drives the CPU from its entry point to HALT or a fatal runtime error.
func (m *Machine) Run() error { return m.CPU.Run() }

// Step executes exactly one instruction; Run is just Step looped to HALT.
func (m *Machine) Step() error { return m.CPU.Step() }
