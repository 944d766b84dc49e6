package asm

import (
	"github.com/stephenwhippuk/pendragon/isa"
)

// OperandKind tags an AST-level operand's syntactic shape. This is
// distinct from isa.OperandKind, which tags the encoded shape a
// particular instruction variant expects; an OpSymbol AST operand, for
// instance, may end up encoded as either OperandAddr or lowered into a
// three-instruction sequence, depending on whether it carries a register
// index.
type OperandKind int

const (
	OpRegister OperandKind = iota
	OpNumber
	OpString
	OpSymbol
	OpRegAddr // "(REG)" register-indirect address, e.g. LDAR dst, (AX)
)

// Operand is a single parsed instruction operand. ResolvedAddr is filled in
// by the resolver's operand-resolution pass for OpSymbol operands, once the
// referenced symbol's address is known; encoding reads it directly instead
// of re-consulting the symbol table.
type Operand struct {
	Pos          Position
	Kind         OperandKind
	Reg          isa.Reg
	Number       int64
	Str          string
	Symbol       string
	Offset       int64
	HasIndex     bool
	IndexReg     isa.Reg
	ResolvedAddr uint16
}

// PageDirective records a "PAGE name" directive encountered in a DATA
// section. It is accepted syntactically but does not itself affect
// address assignment (data blocks are laid out linearly regardless of
// page grouping; see the resolver).
type PageDirective struct {
	Pos  Position
	Name string
}

// DefineKind distinguishes DB/DW/DA data definitions.
type DefineKind int

const (
	DefineBytes DefineKind = iota // DB
	DefineWords                  // DW
	DefineAddrs                  // DA
)

// DataDef is one "label: DB|DW|DA ..." definition in a DATA section.
type DataDef struct {
	Pos    Position
	Label  string
	Kind   DefineKind
	Bytes  []byte   // DB: literal bytes (numbers and expanded strings)
	Words  []int64  // DW: word values
	Labels []string // DA: referenced labels, one per address slot
}

// Label is a zero-size code node: "name:" on its own line in CODE.
type Label struct {
	Pos  Position
	Name string
}

// Instruction is one parsed mnemonic + operand list in a CODE section.
// Variant is filled in by semantic analysis once the concrete opcode
// encoding has been selected from the candidates isa.Variants offers for
// Mnemonic. Indexed is set instead, by semantic analysis, for an LDA/STA
// whose address operand carries a register index: such an instruction has
// no single opcode of its own and is lowered into a three-instruction
// sequence by the code-graph builder.
type Instruction struct {
	Pos      Position
	Mnemonic string
	Operands []Operand
	Variant  *isa.Variant
	Indexed  bool
}

// CodeItem is one entry of a CODE section in source order: exactly one of
// Label or Instr is set.
type CodeItem struct {
	Label *Label
	Instr *Instruction
}

// Program is the parser's output: the full sequence of data definitions
// and code items, plus the symbol table seeded during parsing.
type Program struct {
	Pages     []PageDirective
	DataDefs  []*DataDef
	CodeItems []CodeItem
	Symbols   *SymbolTable
}
