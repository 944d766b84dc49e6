package asm

import (
	"bytes"
	"testing"

	"github.com/stephenwhippuk/pendragon/image"
	"github.com/stephenwhippuk/pendragon/isa"
)

func TestAssembleSimpleProgramEncodesExpectedBytes(t *testing.T) {
	data, code, diags := Assemble("CODE\nLD AX, 5\nHALT\n", "t.asm")
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Error())
	}
	if len(data) != 0 {
		t.Errorf("expected no data segment, got %v", data)
	}
	// LD AX,5 -> opcode + reg byte + 16-bit immediate = 4 bytes; HALT -> 1 byte.
	want := []byte{byte(isa.LD), byte(isa.AX), 5, 0, byte(isa.HALT)}
	if !bytes.Equal(code, want) {
		t.Errorf("got code %v, want %v", code, want)
	}
}

func TestAssembleReportsAccumulatedDiagnostics(t *testing.T) {
	_, _, diags := Assemble("CODE\nFROB AX\nBAR BX\n", "t.asm")
	if len(diags.Items()) < 2 {
		t.Fatalf("expected at least 2 diagnostics, got %d: %v", len(diags.Items()), diags.Error())
	}
}

func TestAssembleToImageProducesReadableImage(t *testing.T) {
	var buf bytes.Buffer
	if err := AssembleToImage(&buf, "DATA\nmsg: DB \"hi\"\nCODE\nHALT\n", "t.asm", "greet"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	img, err := image.Read(&buf)
	if err != nil {
		t.Fatalf("image.Read: %v", err)
	}
	if img.Header.MachineName != image.MachineName {
		t.Errorf("got machine name %q", img.Header.MachineName)
	}
	if img.Header.ProgramName != "greet" {
		t.Errorf("got program name %q", img.Header.ProgramName)
	}
	if !bytes.Equal(img.Data, []byte("hi")) {
		t.Errorf("got data %v", img.Data)
	}
}

func TestAssembleToImagePropagatesDiagnosticsAsError(t *testing.T) {
	var buf bytes.Buffer
	err := AssembleToImage(&buf, "CODE\nNOSUCHOP\n", "t.asm", "broken")
	if err == nil {
		t.Fatal("expected an error for invalid source")
	}
}
