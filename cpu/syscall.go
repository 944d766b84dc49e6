package cpu

import (
	"bufio"
	"fmt"
)

// Well-known system call numbers. Only PRINT_LINE_FROM_STACK and
// DEBUG_PRINT_WORD are pinned by name in the source material; the stack
// I/O siblings are numbered adjacent to PRINT_LINE_FROM_STACK so the
// low 0x00xx range reads as one family and 0x15xx as the debug family.
const (
	PrintLineFromStack   uint16 = 0x0011
	PrintStringFromStack uint16 = 0x0012
	ReadLineToStack      uint16 = 0x0013
	DebugPrintWord       uint16 = 0x1500
)

// Syscall is a host-side handler for a SYSCALL instruction. It reads its
// arguments from and writes its results to c's data stack, following the
// convention that a handler consumes exactly what the caller pushed for it
// and pushes back exactly what it promises to return.
type Syscall func(c *CPU) error

// SyscallTable maps syscall numbers to handlers. The zero value is empty;
// NewSyscallTable pre-populates the reserved built-ins.
type SyscallTable struct {
	handlers map[uint16]Syscall
}

// NewSyscallTable builds a table with the reserved built-in handlers
// already registered.
func NewSyscallTable() *SyscallTable {
	t := &SyscallTable{handlers: make(map[uint16]Syscall)}
	t.handlers[PrintLineFromStack] = printLineFromStack
	t.handlers[PrintStringFromStack] = printStringFromStack
	t.handlers[ReadLineToStack] = readLineToStack
	t.handlers[DebugPrintWord] = debugPrintWord
	return t
}

// Register adds a handler for n. It is the extension point named in the
// interface contract ("extensible via registration at VM construction");
// registering over an already-bound number fails with DuplicateSyscall
// rather than silently shadowing the existing handler.
func (t *SyscallTable) Register(n uint16, h Syscall) error {
	if _, exists := t.handlers[n]; exists {
		return newError(ErrorDuplicateSyscall, "syscall number 0x%04X is already registered", n)
	}
	t.handlers[n] = h
	return nil
}

func (t *SyscallTable) lookup(n uint16) (Syscall, bool) {
	h, ok := t.handlers[n]
	return h, ok
}

// popPayload pops count bytes and returns them in the order they were
// originally written: callers push characters in reverse, so popping them
// off the top restores forward order.
func popPayload(c *CPU, count uint16) ([]byte, error) {
	buf := make([]byte, count)
	for i := range buf {
		b, err := c.stk.PopByte()
		if err != nil {
			return nil, err
		}
		buf[i] = b
	}
	return buf, nil
}

// pushPayload pushes bytes in reverse so a subsequent popPayload restores
// forward order for the caller.
func pushPayload(c *CPU, data []byte) error {
	for i := len(data) - 1; i >= 0; i-- {
		if err := c.stk.PushByte(data[i]); err != nil {
			return err
		}
	}
	return nil
}

func printLineFromStack(c *CPU) error {
	count, err := c.stk.PopWord()
	if err != nil {
		return err
	}
	data, err := popPayload(c, count)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.out, "%s\n", data)
	return err
}

func printStringFromStack(c *CPU) error {
	count, err := c.stk.PopWord()
	if err != nil {
		return err
	}
	data, err := popPayload(c, count)
	if err != nil {
		return err
	}
	_, err = c.out.Write(data)
	return err
}

func readLineToStack(c *CPU) error {
	maxLen, err := c.stk.PopWord()
	if err != nil {
		return err
	}
	if c.in == nil {
		c.in = bufio.NewReader(c.inSource)
	}
	line, _ := c.in.ReadString('\n')
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	if uint16(len(line)) > maxLen {
		line = line[:maxLen]
	}
	if err := pushPayload(c, []byte(line)); err != nil {
		return err
	}
	return c.stk.PushWord(uint16(len(line)))
}

func debugPrintWord(c *CPU) error {
	v, err := c.stk.PopWord()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.out, "%d\n", v)
	return err
}
