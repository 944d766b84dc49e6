package asm

import "encoding/binary"

// Resolve runs the four address-resolution sub-passes over a code graph in
// source order: data addresses, DA address-array fixups, code addresses,
// then operand resolution. Each pass depends only on the ones before it.
func Resolve(graph *CodeGraph, program *Program, diags *Diagnostics) {
	resolveDataAddresses(graph, program.Symbols)
	resolveAddrArrayFixups(graph, program.Symbols, diags)
	resolveCodeAddresses(graph, program.Symbols)
	resolveOperands(graph, program.Symbols, diags)
}

func resolveDataAddresses(graph *CodeGraph, symbols *SymbolTable) {
	var offset uint16
	for _, block := range graph.DataBlocks {
		block.Address = offset
		if block.Label != "" {
			symbols.SetAddress(block.Label, offset)
		}
		offset += uint16(block.Size)
	}
}

// resolveAddrArrayFixups patches each DA block's address slots, which sit
// after the block's leading 2-byte size prefix.
func resolveAddrArrayFixups(graph *CodeGraph, symbols *SymbolTable, diags *Diagnostics) {
	const prefixSize = 2
	for _, block := range graph.DataBlocks {
		if block.Kind != DefineAddrs {
			continue
		}
		for i, name := range block.Refs {
			sym, ok := symbols.Lookup(name)
			if !ok || !sym.Resolved {
				diags.Add(Position{}, ErrorResolve, "data block %q: address of %q could not be resolved", block.Label, name)
				continue
			}
			binary.LittleEndian.PutUint16(block.Bytes[prefixSize+i*2:], sym.Address)
		}
	}
}

func resolveCodeAddresses(graph *CodeGraph, symbols *SymbolTable) {
	var offset uint16
	for _, node := range graph.CodeNodes {
		node.Address = offset
		if node.IsLabel {
			symbols.SetAddress(node.Label, offset)
			continue
		}
		offset += uint16(node.Size)
	}
}

func resolveOperands(graph *CodeGraph, symbols *SymbolTable, diags *Diagnostics) {
	for _, node := range graph.CodeNodes {
		if node.Instr == nil {
			continue
		}
		for i := range node.Instr.Operands {
			op := &node.Instr.Operands[i]
			if op.Kind != OpSymbol {
				continue
			}
			sym, ok := symbols.Lookup(op.Symbol)
			if !ok || !sym.Resolved {
				diags.Add(op.Pos, ErrorResolve, "could not resolve address of %q", op.Symbol)
				continue
			}
			op.ResolvedAddr = sym.Address + uint16(op.Offset)
		}
	}
}
