package asm

import (
	"encoding/binary"

	"github.com/stephenwhippuk/pendragon/isa"
)

// EncodeData concatenates a resolved code graph's data blocks in address
// order into the image's data segment.
func EncodeData(graph *CodeGraph) []byte {
	var out []byte
	for _, block := range graph.DataBlocks {
		out = append(out, block.Bytes...)
	}
	return out
}

// EncodeCode concatenates a resolved code graph's instructions, in address
// order, into the image's code segment. Label nodes contribute nothing.
func EncodeCode(graph *CodeGraph) []byte {
	var out []byte
	for _, node := range graph.CodeNodes {
		if node.Instr == nil {
			continue
		}
		out = append(out, encodeInstruction(node.Instr)...)
	}
	return out
}

func encodeInstruction(instr *Instruction) []byte {
	out := []byte{byte(instr.Variant.Opcode)}

	slotIdx := 0
	for _, op := range instr.Operands {
		switch op.Kind {
		case OpRegister:
			out = append(out, byte(op.Reg))
			slotIdx++

		case OpRegAddr:
			out = append(out, byte(op.Reg))
			slotIdx++

		case OpNumber:
			switch instr.Variant.Operands[slotIdx] {
			case isa.OperandImm8:
				out = append(out, byte(op.Number))
			default:
				var buf [2]byte
				binary.LittleEndian.PutUint16(buf[:], uint16(op.Number))
				out = append(out, buf[:]...)
			}
			slotIdx++

		case OpSymbol:
			var buf [2]byte
			binary.LittleEndian.PutUint16(buf[:], op.ResolvedAddr)
			out = append(out, buf[:]...)
			slotIdx++
			if op.HasIndex {
				out = append(out, byte(op.IndexReg))
				slotIdx++
			}
		}
	}

	return out
}
