// Package stack implements a frame-disciplined stack: a stack pointer, a
// frame pointer marking the base of the active subroutine's locals, and
// pop operations that cannot cross below the active frame.
package stack

import "github.com/stephenwhippuk/pendragon/memory"

// Stack is a data stack of fixed capacity with frame-protected pops. It
// grows upward from offset 0; fp starts at -1, meaning "no frame above
// base".
type Stack struct {
	capacity uint32
	sp       uint32
	fp       int32
	acc      *memory.StackAccessor
}

// New creates a stack accessor of the given capacity over the context id,
// and wraps it with frame-pointer/stack-pointer bookkeeping. The memory
// unit must already be in PROTECTED mode; the returned Stack owns the
// accessor for as long as the unit remains protected.
func New(p *memory.ProtectedUnit, id memory.ContextID, capacity uint32) (*Stack, error) {
	acc, err := p.NewStackAccessor(id, memory.ReadWrite)
	if err != nil {
		return nil, err
	}
	return &Stack{capacity: capacity, sp: 0, fp: -1, acc: acc}, nil
}

// SP returns the current stack pointer (offset to the next free byte).
func (s *Stack) SP() uint32 { return s.sp }

// FP returns the current frame pointer. -1 means no frame is active.
func (s *Stack) FP() int32 { return s.fp }

// IsEmpty reports whether the stack holds nothing above the active frame.
func (s *Stack) IsEmpty() bool { return int32(s.sp) == s.fp+1 }

// IsFull reports whether the stack has no remaining capacity.
func (s *Stack) IsFull() bool { return s.sp == s.capacity }

// PushByte appends one byte and advances sp.
func (s *Stack) PushByte(v byte) error {
	if s.sp >= s.capacity {
		return newError(ErrorOverflow, "push at sp=%d exceeds capacity %d", s.sp, s.capacity)
	}
	if err := s.acc.WriteByte(s.sp, v); err != nil {
		return err
	}
	s.sp++
	return nil
}

// PushWord appends a little-endian word: low byte first, then high byte.
func (s *Stack) PushWord(v uint16) error {
	if err := s.PushByte(byte(v)); err != nil {
		return err
	}
	return s.PushByte(byte(v >> 8))
}

// floor is the lowest offset a pop may cross down to: one past the active
// frame's base, or 0 if no frame is active.
func (s *Stack) floor() uint32 {
	if s.fp < 0 {
		return 0
	}
	return uint32(s.fp) + 1
}

// PopByte removes and returns the top byte.
func (s *Stack) PopByte() (byte, error) {
	if s.sp <= s.floor() {
		return 0, newError(ErrorUnderflow, "pop at sp=%d would cross below frame floor %d", s.sp, s.floor())
	}
	s.sp--
	return s.acc.ReadByte(s.sp)
}

// PopWord removes and returns a little-endian word: high byte popped first,
// since PushWord pushes it last.
func (s *Stack) PopWord() (uint16, error) {
	hi, err := s.PopByte()
	if err != nil {
		return 0, err
	}
	lo, err := s.PopByte()
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

// PeekByteFromBase reads the byte at an absolute offset, bounded by sp.
func (s *Stack) PeekByteFromBase(off uint32) (byte, error) {
	if off >= s.sp {
		return 0, newError(ErrorUnderflow, "peek at offset %d is at or beyond sp=%d", off, s.sp)
	}
	return s.acc.ReadByte(off)
}

// PeekWordFromBase reads a little-endian word at an absolute offset.
func (s *Stack) PeekWordFromBase(off uint32) (uint16, error) {
	lo, err := s.PeekByteFromBase(off)
	if err != nil {
		return 0, err
	}
	hi, err := s.PeekByteFromBase(off + 1)
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

// PeekByteFromFrame reads the byte at fp+off. Offset 0 is the discipline
// flag at fp itself; offset 1 is the first byte pushed after the frame was
// established.
func (s *Stack) PeekByteFromFrame(off int32) (byte, error) {
	addr := s.fp + off
	if addr < 0 {
		return 0, newError(ErrorUnderflow, "peek from frame at fp+%d is negative (fp=%d)", off, s.fp)
	}
	return s.PeekByteFromBase(uint32(addr))
}

// PeekWordFromFrame reads a little-endian word at fp+off.
func (s *Stack) PeekWordFromFrame(off int32) (uint16, error) {
	lo, err := s.PeekByteFromFrame(off)
	if err != nil {
		return 0, err
	}
	hi, err := s.PeekByteFromFrame(off + 1)
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

// SetFrameToTop records fp = sp-1, so the most recently pushed byte becomes
// frame offset 0.
func (s *Stack) SetFrameToTop() {
	s.fp = int32(s.sp) - 1
}

// SetFramePointer restores a previously saved frame pointer.
func (s *Stack) SetFramePointer(v int32) {
	s.fp = v
}

// Flush truncates sp back to fp+1, discarding locals but preserving
// whatever the caller had on the stack below the frame.
func (s *Stack) Flush() {
	s.sp = uint32(s.floor())
}
