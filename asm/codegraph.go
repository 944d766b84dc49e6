package asm

import (
	"encoding/binary"

	"github.com/stephenwhippuk/pendragon/isa"
)

// DataBlock is one resolved-but-not-yet-addressed data segment entry.
// DefineAddrs blocks start with a 2-byte little-endian size prefix (the
// byte length of the address slots that follow) and zero-filled address
// placeholders after it; Refs names the symbol each 2-byte slot will be
// patched with once addresses are known.
type DataBlock struct {
	Label   string
	Kind    DefineKind
	Bytes   []byte
	Refs    []string
	Address uint16
	Size    int
}

// CodeNode is one entry of the code graph: either a zero-size label marker
// or an encoded instruction of known size (but not yet known address).
type CodeNode struct {
	IsLabel bool
	Label   string
	Instr   *Instruction
	Address uint16
	Size    int
}

// CodeGraph is the assembler's address-agnostic intermediate form: data
// blocks and code nodes with sizes fixed, ready for the resolver to lay out
// and patch.
type CodeGraph struct {
	DataBlocks []*DataBlock
	CodeNodes  []*CodeNode
}

// BuildCodeGraph lowers a semantically-checked Program into a CodeGraph.
// It assumes Analyze has already run; instructions whose Variant is nil
// (because semantic analysis rejected them) are skipped, since a diagnostic
// was already recorded for them.
func BuildCodeGraph(program *Program) *CodeGraph {
	graph := &CodeGraph{}

	for _, def := range program.DataDefs {
		graph.DataBlocks = append(graph.DataBlocks, buildDataBlock(def))
	}

	for i := range program.CodeItems {
		item := program.CodeItems[i]
		switch {
		case item.Label != nil:
			graph.CodeNodes = append(graph.CodeNodes, &CodeNode{
				IsLabel: true,
				Label:   item.Label.Name,
			})
		case item.Instr != nil && item.Instr.Indexed:
			for _, lowered := range lowerIndexedLoadStore(item.Instr) {
				graph.CodeNodes = append(graph.CodeNodes, &CodeNode{
					Instr: lowered,
					Size:  lowered.Variant.Size(),
				})
			}
		case item.Instr != nil && item.Instr.Variant != nil:
			graph.CodeNodes = append(graph.CodeNodes, &CodeNode{
				Instr: item.Instr,
				Size:  item.Instr.Variant.Size(),
			})
		}
	}

	return graph
}

func variant(mnemonic string, idx int) *isa.Variant {
	v := isa.Variants[mnemonic][idx]
	return &v
}

// lowerIndexedLoadStore expands a register-indexed LDA/STA into the
// resolved three-instruction sequence: load the symbol's base address
// into AX, add the index register to it, then load or store through the
// resulting address with LDA_LOAD_REG/LDA_STORE_REG. This is the sole
// addressing mode the ISA cannot encode in a single opcode.
func lowerIndexedLoadStore(instr *Instruction) []*Instruction {
	var target, addr Operand
	store := instr.Mnemonic == "STA"
	if store {
		addr, target = instr.Operands[0], instr.Operands[1]
	} else {
		target, addr = instr.Operands[0], instr.Operands[1]
	}

	ax := Operand{Pos: instr.Pos, Kind: OpRegister, Reg: isa.AX}
	base := Operand{Pos: addr.Pos, Kind: OpSymbol, Symbol: addr.Symbol, Offset: addr.Offset}
	idx := Operand{Pos: addr.Pos, Kind: OpRegister, Reg: addr.IndexReg}
	axAddr := Operand{Pos: instr.Pos, Kind: OpRegAddr, Reg: isa.AX}

	load := &Instruction{Pos: instr.Pos, Mnemonic: "LD", Operands: []Operand{ax, base}, Variant: variant("LD", 0)}
	add := &Instruction{Pos: instr.Pos, Mnemonic: "ADD", Operands: []Operand{idx}, Variant: variant("ADD", 0)}

	if store {
		st := &Instruction{Pos: instr.Pos, Mnemonic: "STAR", Operands: []Operand{axAddr, target}, Variant: variant("STAR", 0)}
		return []*Instruction{load, add, st}
	}
	ld := &Instruction{Pos: instr.Pos, Mnemonic: "LDAR", Operands: []Operand{target, axAddr}, Variant: variant("LDAR", 0)}
	return []*Instruction{load, add, ld}
}

func buildDataBlock(def *DataDef) *DataBlock {
	switch def.Kind {
	case DefineBytes:
		return &DataBlock{Label: def.Label, Kind: def.Kind, Bytes: append([]byte(nil), def.Bytes...), Size: len(def.Bytes)}

	case DefineWords:
		buf := make([]byte, len(def.Words)*2)
		for i, w := range def.Words {
			binary.LittleEndian.PutUint16(buf[i*2:], uint16(w))
		}
		return &DataBlock{Label: def.Label, Kind: def.Kind, Bytes: buf, Size: len(buf)}

	case DefineAddrs:
		payload := len(def.Labels) * 2
		buf := make([]byte, 2+payload)
		binary.LittleEndian.PutUint16(buf[0:2], uint16(payload))
		return &DataBlock{Label: def.Label, Kind: def.Kind, Bytes: buf, Refs: append([]string(nil), def.Labels...), Size: len(buf)}

	default:
		return &DataBlock{Label: def.Label, Kind: def.Kind}
	}
}
