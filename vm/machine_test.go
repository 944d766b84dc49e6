package vm_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stephenwhippuk/pendragon/asm"
	"github.com/stephenwhippuk/pendragon/cpu"
	"github.com/stephenwhippuk/pendragon/image"
	"github.com/stephenwhippuk/pendragon/isa"
	"github.com/stephenwhippuk/pendragon/vm"
)

func assembleOrFail(t *testing.T, source string) *image.Image {
	t.Helper()
	var buf bytes.Buffer
	if err := asm.AssembleToImage(&buf, source, "test.asm", "roundtrip"); err != nil {
		t.Fatalf("AssembleToImage: %v", err)
	}
	img, err := image.Read(&buf)
	if err != nil {
		t.Fatalf("image.Read: %v", err)
	}
	return img
}

func TestAssembleLoadRunRoundTrip(t *testing.T) {
	source := "DATA\n" +
		"greeting: DB \"Hi!\"\n" +
		"CODE\n" +
		"    LD CX, 3\n" +
		"    PUSH CX\n" +
		"    POP CX\n" +
		"    HALT\n"
	img := assembleOrFail(t, source)

	out := &bytes.Buffer{}
	m, err := vm.Load(img, 0, vm.DefaultConfig(), cpu.NewSyscallTable(), out, strings.NewReader(""))
	if err != nil {
		t.Fatalf("vm.Load: %v", err)
	}
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !m.CPU.Halted {
		t.Fatal("expected machine to halt")
	}
}

func TestLoadRejectsForeignImage(t *testing.T) {
	var raw bytes.Buffer
	if err := image.Write(&raw, "foreign", nil, []byte{0x00}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data := raw.Bytes()
	// Corrupt the header's major version byte so image.Read rejects it
	// before vm.Load ever sees a decoded image; load-time validation is
	// entirely image.Read's responsibility.
	data[2] = 9
	if _, err := image.Read(bytes.NewReader(data)); err == nil {
		t.Fatal("expected image.Read to reject the unsupported header version")
	}
}

func TestMachineStepMatchesRun(t *testing.T) {
	source := "CODE\n    LD AX, 1\n    HALT\n"
	img := assembleOrFail(t, source)
	out := &bytes.Buffer{}
	m, err := vm.Load(img, 0, vm.DefaultConfig(), cpu.NewSyscallTable(), out, strings.NewReader(""))
	if err != nil {
		t.Fatalf("vm.Load: %v", err)
	}
	for !m.CPU.Halted {
		if err := m.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	ax, ok := isa.LookupRegister("AX")
	if !ok {
		t.Fatal("AX not found in register table")
	}
	if m.CPU.Regs.Get(ax) != 1 {
		t.Fatalf("AX = %d, want 1", m.CPU.Regs.Get(ax))
	}
}
