package memory_test

import (
	"testing"

	"github.com/stephenwhippuk/pendragon/memory"
)

func TestCreateContextAssignsDistinctIDs(t *testing.T) {
	u := memory.NewUnit()
	a, err := u.CreateContext(1024)
	if err != nil {
		t.Fatalf("CreateContext: %v", err)
	}
	b, err := u.CreateContext(2048)
	if err != nil {
		t.Fatalf("CreateContext: %v", err)
	}
	if a == b {
		t.Fatalf("expected distinct context ids, got %d and %d", a, b)
	}
}

func TestZeroSizeContextIsPermitted(t *testing.T) {
	u := memory.NewUnit()
	if _, err := u.CreateContext(0); err != nil {
		t.Fatalf("zero-size context should be permitted: %v", err)
	}
}

func TestCreateContextExceedingSizeLimitFails(t *testing.T) {
	u := memory.NewUnit()
	if _, err := u.CreateContext(uint64(1) << 33); err == nil {
		t.Fatal("expected Exhausted error for a context larger than 2^32")
	}
}

func TestPagedAccessorRoundTrip(t *testing.T) {
	u := memory.NewUnit()
	id, err := u.CreateContext(1 << 20)
	if err != nil {
		t.Fatalf("CreateContext: %v", err)
	}
	p := u.Protect()
	acc, err := p.NewPagedAccessor(id, memory.ReadWrite)
	if err != nil {
		t.Fatalf("NewPagedAccessor: %v", err)
	}
	if err := acc.WriteWord(0, 10, 0xBEEF); err != nil {
		t.Fatalf("WriteWord: %v", err)
	}
	got, err := acc.ReadWord(0, 10)
	if err != nil {
		t.Fatalf("ReadWord: %v", err)
	}
	if got != 0xBEEF {
		t.Fatalf("got 0x%04X, want 0xBEEF", got)
	}
}

func TestPagedAccessorWordIsLittleEndian(t *testing.T) {
	u := memory.NewUnit()
	id, _ := u.CreateContext(4096)
	p := u.Protect()
	acc, _ := p.NewPagedAccessor(id, memory.ReadWrite)
	_ = acc.WriteWord(0, 0, 0x1234)
	lo, _ := acc.ReadByte(0, 0)
	hi, _ := acc.ReadByte(0, 1)
	if lo != 0x34 || hi != 0x12 {
		t.Fatalf("expected little-endian bytes 0x34,0x12, got 0x%02X,0x%02X", lo, hi)
	}
}

func TestReadOnlyAccessorRejectsWrites(t *testing.T) {
	u := memory.NewUnit()
	id, _ := u.CreateContext(4096)
	p := u.Protect()
	acc, err := p.NewPagedAccessor(id, memory.ReadOnly)
	if err != nil {
		t.Fatalf("NewPagedAccessor: %v", err)
	}
	if err := acc.WriteByte(0, 0, 1); err == nil {
		t.Fatal("expected ReadOnlyViolation")
	}
}

func TestUntouchedBlockReadsAsZero(t *testing.T) {
	u := memory.NewUnit()
	id, _ := u.CreateContext(1 << 20)
	p := u.Protect()
	acc, _ := p.NewPagedAccessor(id, memory.ReadWrite)
	b, err := acc.ReadByte(3, 100)
	if err != nil {
		t.Fatalf("ReadByte: %v", err)
	}
	if b != 0 {
		t.Fatalf("expected zero-filled read, got %d", b)
	}
}

func TestOutOfBoundsAccessFails(t *testing.T) {
	u := memory.NewUnit()
	id, _ := u.CreateContext(16)
	p := u.Protect()
	acc, _ := p.NewPagedAccessor(id, memory.ReadWrite)
	if _, err := acc.ReadByte(0, 1000); err == nil {
		t.Fatal("expected OutOfBounds error")
	}
}

func TestDestroyContextRemovesIt(t *testing.T) {
	u := memory.NewUnit()
	id, _ := u.CreateContext(16)
	if err := u.DestroyContext(id); err != nil {
		t.Fatalf("DestroyContext: %v", err)
	}
	p := u.Protect()
	if _, err := p.NewPagedAccessor(id, memory.ReadWrite); err == nil {
		t.Fatal("expected error creating accessor over a destroyed context")
	}
}

func TestStackAccessorPreallocatesBlocks(t *testing.T) {
	u := memory.NewUnit()
	id, _ := u.CreateContext(1 << 20)
	p := u.Protect()
	acc, err := p.NewStackAccessor(id, memory.ReadWrite)
	if err != nil {
		t.Fatalf("NewStackAccessor: %v", err)
	}
	if err := acc.WriteWord(1<<20-2, 0xCAFE); err != nil {
		t.Fatalf("write at top of pre-allocated stack context should not fault: %v", err)
	}
}
