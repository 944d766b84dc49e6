package asm

import "testing"

func TestBuildCodeGraphLowersIndexedLoadToThreeInstructions(t *testing.T) {
	prog := analyzeOK(t, "DATA\ntable: DB 1, 2, 3\nCODE\nLDA CX, table[BX]\n")
	graph := BuildCodeGraph(prog)

	if len(graph.CodeNodes) != 3 {
		t.Fatalf("got %d code nodes, want 3", len(graph.CodeNodes))
	}
	mnemonics := []string{"LD", "ADD", "LDAR"}
	for i, want := range mnemonics {
		if graph.CodeNodes[i].Instr.Mnemonic != want {
			t.Errorf("node %d: got %s, want %s", i, graph.CodeNodes[i].Instr.Mnemonic, want)
		}
	}
}

func TestBuildCodeGraphLowersIndexedStoreToThreeInstructions(t *testing.T) {
	prog := analyzeOK(t, "DATA\ntable: DB 1, 2, 3\nCODE\nSTA table[BX], CX\n")
	graph := BuildCodeGraph(prog)

	if len(graph.CodeNodes) != 3 {
		t.Fatalf("got %d code nodes, want 3", len(graph.CodeNodes))
	}
	mnemonics := []string{"LD", "ADD", "STAR"}
	for i, want := range mnemonics {
		if graph.CodeNodes[i].Instr.Mnemonic != want {
			t.Errorf("node %d: got %s, want %s", i, graph.CodeNodes[i].Instr.Mnemonic, want)
		}
	}
}

func TestBuildCodeGraphEncodesPlainDataBlocks(t *testing.T) {
	prog := analyzeOK(t, "DATA\na: DB 1, 2\nb: DW 0x0102\n")
	graph := BuildCodeGraph(prog)

	if len(graph.DataBlocks) != 2 {
		t.Fatalf("got %d data blocks, want 2", len(graph.DataBlocks))
	}
	if graph.DataBlocks[0].Size != 2 {
		t.Errorf("a: got size %d, want 2", graph.DataBlocks[0].Size)
	}
	want := []byte{0x02, 0x01}
	if string(graph.DataBlocks[1].Bytes) != string(want) {
		t.Errorf("b: got bytes %v, want %v (little-endian)", graph.DataBlocks[1].Bytes, want)
	}
}
