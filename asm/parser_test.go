package asm

import (
	"testing"

	"github.com/stephenwhippuk/pendragon/isa"
)

func parseOK(t *testing.T, source string) *Program {
	t.Helper()
	p := NewParser(source, "t.asm")
	prog := p.Parse()
	if p.Diagnostics().HasErrors() {
		t.Fatalf("unexpected parse errors: %v", p.Diagnostics().Error())
	}
	return prog
}

func TestParseDataSectionDefinitions(t *testing.T) {
	prog := parseOK(t, "DATA\nmsg: DB \"hi\", 0\ncounts: DW 1, 2, 3\ntable: DA msg, counts\n")

	if len(prog.DataDefs) != 3 {
		t.Fatalf("got %d data defs, want 3", len(prog.DataDefs))
	}
	if prog.DataDefs[0].Kind != DefineBytes || len(prog.DataDefs[0].Bytes) != 3 {
		t.Errorf("msg: got kind %v bytes %v", prog.DataDefs[0].Kind, prog.DataDefs[0].Bytes)
	}
	if prog.DataDefs[1].Kind != DefineWords || len(prog.DataDefs[1].Words) != 3 {
		t.Errorf("counts: got kind %v words %v", prog.DataDefs[1].Kind, prog.DataDefs[1].Words)
	}
	if prog.DataDefs[2].Kind != DefineAddrs || len(prog.DataDefs[2].Labels) != 2 {
		t.Errorf("table: got kind %v labels %v", prog.DataDefs[2].Kind, prog.DataDefs[2].Labels)
	}
	if _, ok := prog.Symbols.Lookup("msg"); !ok {
		t.Error("expected msg to be defined in the symbol table")
	}
}

func TestParsePageDirectiveIsAccepted(t *testing.T) {
	prog := parseOK(t, "DATA\nPAGE video\nx: DB 1\n")
	if len(prog.Pages) != 1 || prog.Pages[0].Name != "video" {
		t.Fatalf("got pages %v", prog.Pages)
	}
}

func TestParseCodeSectionLabelsAndInstructions(t *testing.T) {
	prog := parseOK(t, "CODE\nstart:\nLD AX, 5\nADD BX\nHALT\n")

	if len(prog.CodeItems) != 4 {
		t.Fatalf("got %d code items, want 4", len(prog.CodeItems))
	}
	if prog.CodeItems[0].Label == nil || prog.CodeItems[0].Label.Name != "start" {
		t.Errorf("item 0: expected label 'start', got %+v", prog.CodeItems[0])
	}
	if prog.CodeItems[1].Instr == nil || prog.CodeItems[1].Instr.Mnemonic != "LD" {
		t.Errorf("item 1: expected LD instruction, got %+v", prog.CodeItems[1])
	}
}

func TestParseIndexedAddressSugar(t *testing.T) {
	prog := parseOK(t, "CODE\nLDA AX, table[BX]\n")
	instr := prog.CodeItems[0].Instr
	op := instr.Operands[1]
	bx, _ := isa.LookupRegister("BX")
	if op.Kind != OpSymbol || op.Symbol != "table" || !op.HasIndex || op.IndexReg != bx {
		t.Fatalf("got operand %+v", op)
	}
}

func TestParseParenthesisedSymbolExpression(t *testing.T) {
	prog := parseOK(t, "CODE\nLDA AX, (table + 2 + BX)\n")
	op := prog.CodeItems[0].Instr.Operands[1]
	if op.Symbol != "table" || op.Offset != 2 || !op.HasIndex {
		t.Fatalf("got operand %+v", op)
	}
}

func TestParseRegisterIndirectOperand(t *testing.T) {
	prog := parseOK(t, "CODE\nLDAR BX, (AX)\n")
	op := prog.CodeItems[0].Instr.Operands[1]
	ax, _ := isa.LookupRegister("AX")
	if op.Kind != OpRegAddr || op.Reg != ax {
		t.Fatalf("got operand %+v", op)
	}
}

func TestParseDuplicateLabelIsReported(t *testing.T) {
	p := NewParser("CODE\nstart:\nNOP\nstart:\nHALT\n", "t.asm")
	p.Parse()
	if !p.Diagnostics().HasErrors() {
		t.Fatal("expected a diagnostic for the duplicate label")
	}
}
