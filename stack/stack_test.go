package stack_test

import (
	"testing"

	"github.com/stephenwhippuk/pendragon/memory"
	"github.com/stephenwhippuk/pendragon/stack"
)

func newTestStack(t *testing.T, capacity uint32) *stack.Stack {
	t.Helper()
	u := memory.NewUnit()
	id, err := u.CreateContext(uint64(capacity))
	if err != nil {
		t.Fatalf("CreateContext: %v", err)
	}
	p := u.Protect()
	s, err := stack.New(p, id, capacity)
	if err != nil {
		t.Fatalf("stack.New: %v", err)
	}
	return s
}

func TestPushPopWordRoundTrip(t *testing.T) {
	s := newTestStack(t, 64)
	for _, v := range []uint16{0, 1, 0xBEEF, 0xFFFF} {
		if err := s.PushWord(v); err != nil {
			t.Fatalf("PushWord(%d): %v", v, err)
		}
		got, err := s.PopWord()
		if err != nil {
			t.Fatalf("PopWord: %v", err)
		}
		if got != v {
			t.Fatalf("got %d, want %d", got, v)
		}
	}
}

func TestPushPopReturnsSPToPrevious(t *testing.T) {
	s := newTestStack(t, 64)
	before := s.SP()
	if err := s.PushByte(42); err != nil {
		t.Fatalf("PushByte: %v", err)
	}
	if _, err := s.PopByte(); err != nil {
		t.Fatalf("PopByte: %v", err)
	}
	if s.SP() != before {
		t.Fatalf("sp after push/pop = %d, want %d", s.SP(), before)
	}
}

func TestOverflow(t *testing.T) {
	s := newTestStack(t, 2)
	if err := s.PushByte(1); err != nil {
		t.Fatalf("PushByte: %v", err)
	}
	if err := s.PushByte(2); err != nil {
		t.Fatalf("PushByte: %v", err)
	}
	if err := s.PushByte(3); err == nil {
		t.Fatal("expected Overflow")
	}
	if !s.IsFull() {
		t.Fatal("expected IsFull() == true")
	}
}

func TestUnderflowAtEmpty(t *testing.T) {
	s := newTestStack(t, 8)
	if !s.IsEmpty() {
		t.Fatal("expected a fresh stack to be empty")
	}
	if _, err := s.PopByte(); err == nil {
		t.Fatal("expected Underflow popping an empty stack")
	}
}

func TestFramePopCannotCrossBelowFrame(t *testing.T) {
	s := newTestStack(t, 8)
	if err := s.PushByte(1); err != nil {
		t.Fatalf("PushByte: %v", err)
	}
	s.SetFrameToTop() // fp = 0
	if err := s.PushByte(2); err != nil {
		t.Fatalf("PushByte: %v", err)
	}
	if _, err := s.PopByte(); err != nil {
		t.Fatalf("pop of local byte should succeed: %v", err)
	}
	if _, err := s.PopByte(); err == nil {
		t.Fatal("expected Underflow: pop would cross below fp+1")
	}
}

func TestPeekFromFrameOffsetZeroIsFrameByte(t *testing.T) {
	s := newTestStack(t, 8)
	if err := s.PushByte(0xAA); err != nil {
		t.Fatalf("PushByte: %v", err)
	}
	s.SetFrameToTop()
	if err := s.PushByte(0xBB); err != nil {
		t.Fatalf("PushByte: %v", err)
	}
	b0, err := s.PeekByteFromFrame(0)
	if err != nil {
		t.Fatalf("PeekByteFromFrame(0): %v", err)
	}
	if b0 != 0xAA {
		t.Fatalf("frame offset 0 = 0x%02X, want 0xAA", b0)
	}
	b1, err := s.PeekByteFromFrame(1)
	if err != nil {
		t.Fatalf("PeekByteFromFrame(1): %v", err)
	}
	if b1 != 0xBB {
		t.Fatalf("frame offset 1 = 0x%02X, want 0xBB", b1)
	}
}

func TestFlushDiscardsLocalsPreservesCallerData(t *testing.T) {
	s := newTestStack(t, 8)
	if err := s.PushByte(0x11); err != nil { // caller data
		t.Fatalf("PushByte: %v", err)
	}
	s.SetFrameToTop()
	_ = s.PushByte(0x22)
	_ = s.PushByte(0x33)
	s.Flush()
	if s.SP() != 1 {
		t.Fatalf("sp after flush = %d, want 1", s.SP())
	}
	v, err := s.PeekByteFromBase(0)
	if err != nil {
		t.Fatalf("PeekByteFromBase: %v", err)
	}
	if v != 0x11 {
		t.Fatalf("caller data corrupted: got 0x%02X, want 0x11", v)
	}
}

func TestWordIsLittleEndianOnWire(t *testing.T) {
	s := newTestStack(t, 8)
	if err := s.PushWord(0x1234); err != nil {
		t.Fatalf("PushWord: %v", err)
	}
	lo, _ := s.PeekByteFromBase(0)
	hi, _ := s.PeekByteFromBase(1)
	if lo != 0x34 || hi != 0x12 {
		t.Fatalf("expected little-endian bytes 0x34,0x12 on stack, got 0x%02X,0x%02X", lo, hi)
	}
}
