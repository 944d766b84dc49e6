package asm

import (
	"github.com/stephenwhippuk/pendragon/isa"
)

// valueKind classifies one flattened operand slot after an AST operand has
// been expanded (an indexed address operand expands into two slots: the
// address itself and its index register).
type valueKind int

const (
	vkReg valueKind = iota
	vkImm
	vkAddr
	vkRegAddr
)

// Analyze walks a parsed Program, resolves each instruction to a concrete
// isa.Variant, and checks that every symbol reference names something that
// was actually defined. Diagnostics are appended to diags; Analyze does not
// stop at the first error so a single run reports everything it can.
func Analyze(program *Program, diags *Diagnostics) {
	for _, def := range program.DataDefs {
		if def.Kind == DefineAddrs {
			for _, name := range def.Labels {
				if _, ok := program.Symbols.Lookup(name); !ok {
					diags.Add(def.Pos, ErrorSemantic, "data block %q references undefined symbol %q", def.Label, name)
				}
			}
		}
	}

	for i := range program.CodeItems {
		item := &program.CodeItems[i]
		if item.Instr == nil {
			continue
		}
		analyzeInstruction(program, item.Instr, diags)
	}
}

func analyzeInstruction(program *Program, instr *Instruction, diags *Diagnostics) {
	for _, op := range instr.Operands {
		checkSymbolReference(program, op, diags)
	}

	if isIndexedLoadStore(instr) {
		analyzeIndexedLoadStore(instr, diags)
		return
	}

	candidates, ok := isa.Variants[instr.Mnemonic]
	if !ok {
		diags.Add(instr.Pos, ErrorSemantic, "unknown instruction %q", instr.Mnemonic)
		return
	}

	for _, op := range instr.Operands {
		if op.Kind == OpSymbol && op.HasIndex {
			diags.Add(op.Pos, ErrorSemantic, "%s: a register-indexed address is only accepted as the address operand of LDA or STA", instr.Mnemonic)
			return
		}
	}

	slots, err := expandOperands(instr.Operands)
	if err != "" {
		diags.Add(instr.Pos, ErrorSemantic, "%s: %s", instr.Mnemonic, err)
		return
	}

	for _, cand := range candidates {
		if variantMatches(cand, slots) {
			instr.Variant = &cand
			checkImmediateRanges(instr, diags)
			return
		}
	}

	diags.Add(instr.Pos, ErrorSemantic, "no form of %q accepts the given operands", instr.Mnemonic)
}

// isIndexedLoadStore reports whether instr is an LDA/STA whose address
// operand carries a register index ("table[BX]" or "(table + 2 + BX)").
// Such an addressing mode has no single opcode (per the resolved design
// question on register-offset lowering) and is expanded by the code-graph
// builder into LD + ADD + LDA_LOAD_REG/LDA_STORE_REG instead.
func isIndexedLoadStore(instr *Instruction) bool {
	switch instr.Mnemonic {
	case "LDA":
		return len(instr.Operands) == 2 && instr.Operands[1].Kind == OpSymbol && instr.Operands[1].HasIndex
	case "STA":
		return len(instr.Operands) == 2 && instr.Operands[0].Kind == OpSymbol && instr.Operands[0].HasIndex
	default:
		return false
	}
}

func analyzeIndexedLoadStore(instr *Instruction, diags *Diagnostics) {
	reg, addr := instr.Operands[0], instr.Operands[1]
	if instr.Mnemonic == "STA" {
		addr, reg = instr.Operands[0], instr.Operands[1]
	}
	if reg.Kind != OpRegister {
		diags.Add(reg.Pos, ErrorSemantic, "%s: expected a register operand, got %v", instr.Mnemonic, reg.Kind)
	}
	if addr.Kind != OpSymbol || !addr.HasIndex {
		diags.Add(addr.Pos, ErrorSemantic, "%s: expected an indexed address operand", instr.Mnemonic)
	}
	instr.Indexed = true
}

func checkSymbolReference(program *Program, op Operand, diags *Diagnostics) {
	if op.Kind != OpSymbol {
		return
	}
	if _, ok := program.Symbols.Lookup(op.Symbol); !ok {
		diags.Add(op.Pos, ErrorSemantic, "undefined symbol %q", op.Symbol)
	}
}

// expandOperands flattens AST operands into the isa-level slot sequence an
// encoded instruction actually carries. An indexed address operand
// ("table[BX]" or "(table + 2 + BX)") expands into an address slot
// followed by a register slot; analyzeInstruction rejects an indexed
// operand anywhere other than the address operand of a two-operand LDA/STA
// (handled separately by isIndexedLoadStore) before reaching here.
func expandOperands(operands []Operand) ([]valueKind, string) {
	var slots []valueKind
	for _, op := range operands {
		switch op.Kind {
		case OpRegister:
			slots = append(slots, vkReg)
		case OpNumber:
			slots = append(slots, vkImm)
		case OpRegAddr:
			slots = append(slots, vkRegAddr)
		case OpSymbol:
			slots = append(slots, vkAddr)
			if op.HasIndex {
				slots = append(slots, vkReg)
			}
		case OpString:
			return nil, "a string literal cannot be used as an instruction operand"
		}
	}
	return slots, ""
}

func variantMatches(v isa.Variant, slots []valueKind) bool {
	if len(v.Operands) != len(slots) {
		return false
	}
	for i, want := range v.Operands {
		if !slotMatches(want, slots[i]) {
			return false
		}
	}
	return true
}

func slotMatches(want isa.OperandKind, got valueKind) bool {
	switch want {
	case isa.OperandReg:
		return got == vkReg
	case isa.OperandImm8, isa.OperandImm16:
		return got == vkImm
	case isa.OperandAddr:
		return got == vkAddr
	case isa.OperandRegAddr:
		return got == vkRegAddr
	default:
		return false
	}
}

// checkImmediateRanges reports immediate operands that don't fit the width
// the resolved variant actually encodes. Values are accepted both as
// unsigned and as the two's-complement signed range, since the lexer
// allows a leading '-'.
func checkImmediateRanges(instr *Instruction, diags *Diagnostics) {
	slotIdx := 0
	for _, op := range instr.Operands {
		kind := instr.Variant.Operands[slotIdx]
		switch op.Kind {
		case OpNumber:
			switch kind {
			case isa.OperandImm8:
				if op.Number < -128 || op.Number > 255 {
					diags.Add(op.Pos, ErrorSemantic, "value %d does not fit in an 8-bit immediate", op.Number)
				}
			case isa.OperandImm16:
				if op.Number < -32768 || op.Number > 65535 {
					diags.Add(op.Pos, ErrorSemantic, "value %d does not fit in a 16-bit immediate", op.Number)
				}
			}
			slotIdx++
		case OpSymbol:
			slotIdx++
			if op.HasIndex {
				slotIdx++
			}
		default:
			slotIdx++
		}
	}
}
