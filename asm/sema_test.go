package asm

import "testing"

func analyzeOK(t *testing.T, source string) *Program {
	t.Helper()
	p := NewParser(source, "t.asm")
	prog := p.Parse()
	diags := p.Diagnostics()
	Analyze(prog, diags)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Error())
	}
	return prog
}

func TestAnalyzeSelectsRegisterVariant(t *testing.T) {
	prog := analyzeOK(t, "CODE\nADD BX\n")
	v := prog.CodeItems[0].Instr.Variant
	if v == nil || v.Mnemonic != "ADD" {
		t.Fatalf("got variant %+v", v)
	}
	if len(v.Operands) != 1 {
		t.Fatalf("expected one operand slot, got %d", len(v.Operands))
	}
}

func TestAnalyzeSelectsImmediateVariant(t *testing.T) {
	prog := analyzeOK(t, "CODE\nADD 5\n")
	v := prog.CodeItems[0].Instr.Variant
	if v == nil || v.Mnemonic != "ADD" {
		t.Fatalf("got variant %+v", v)
	}
}

func TestAnalyzeRejectsUnknownMnemonic(t *testing.T) {
	p := NewParser("CODE\nFROBNICATE AX\n", "t.asm")
	prog := p.Parse()
	diags := p.Diagnostics()
	Analyze(prog, diags)
	if !diags.HasErrors() {
		t.Fatal("expected a diagnostic for the unknown mnemonic")
	}
}

func TestAnalyzeRejectsWrongOperandShape(t *testing.T) {
	p := NewParser("CODE\nHALT AX\n", "t.asm")
	prog := p.Parse()
	diags := p.Diagnostics()
	Analyze(prog, diags)
	if !diags.HasErrors() {
		t.Fatal("expected a diagnostic: HALT takes no operands")
	}
}

func TestAnalyzeRejectsUndefinedSymbol(t *testing.T) {
	p := NewParser("CODE\nJMP nowhere\n", "t.asm")
	prog := p.Parse()
	diags := p.Diagnostics()
	Analyze(prog, diags)
	if !diags.HasErrors() {
		t.Fatal("expected a diagnostic for the undefined symbol")
	}
}

func TestAnalyzeRejectsOutOfRangeImmediate(t *testing.T) {
	p := NewParser("CODE\nADDB 1000\n", "t.asm")
	prog := p.Parse()
	diags := p.Diagnostics()
	Analyze(prog, diags)
	if !diags.HasErrors() {
		t.Fatal("expected a diagnostic: 1000 does not fit in an 8-bit immediate")
	}
}

func TestAnalyzeMarksIndexedLoadForLowering(t *testing.T) {
	prog := analyzeOK(t, "DATA\ntable: DB 1, 2, 3\nCODE\nLDA AX, table[BX]\n")
	instr := prog.CodeItems[0].Instr
	if !instr.Indexed || instr.Variant != nil {
		t.Fatalf("expected Indexed=true, Variant=nil, got Indexed=%v Variant=%+v", instr.Indexed, instr.Variant)
	}
}
