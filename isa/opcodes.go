package isa

// Opcode is the one-byte code that begins every instruction encoding.
type Opcode byte

// Control flow.
const (
	NOP Opcode = iota + 1
	HALT
	JMP
	JPZ
	JPNZ
	JPC
	JPNC
	JPS
	JPNS
	JPO
	JPNO
	CALL
	RET
)

// Data movement. Indexed addressing ("label + reg + const") has no
// opcode of its own: the assembler lowers it to LD + ADD + LDA_LOAD_REG
// (or the store equivalent), since it cannot fit a single opcode.
const (
	LD Opcode = iota + 64
	LDR
	LDH
	LDL
	SWP
	LDA_LOAD
	LDA_STORE
	LDA_LOAD_REG
	LDA_STORE_REG
)

// Stack.
const (
	PUSH Opcode = iota + 96
	POP
	PUSHB
	PUSHW
	PEEK
	FLSH
)

// Arithmetic (word/byte, register-source/immediate-source; all operate on
// the accumulator AX, or its low half AL for the byte forms).
const (
	ADDW_R Opcode = iota + 112
	ADDW_I
	ADDB_R
	ADDB_I
	SUBW_R
	SUBW_I
	SUBB_R
	SUBB_I
	MULW_R
	MULW_I
	MULB_R
	MULB_I
	DIVW_R
	DIVW_I
	DIVB_R
	DIVB_I
	REMW_R
	REMW_I
	REMB_R
	REMB_I
)

// Logical.
const (
	ANDW_R Opcode = iota + 160
	ANDW_I
	ANDB_R
	ANDB_I
	ORW_R
	ORW_I
	ORB_R
	ORB_I
	XORW_R
	XORW_I
	XORB_R
	XORB_I
	NOTW
	NOTB
)

// Bit (word only).
const (
	SHL_R Opcode = iota + 190
	SHL_I
	SHR_R
	SHR_I
	ROL_R
	ROL_I
	ROR_R
	ROR_I
)

// Compare.
const (
	INC Opcode = iota + 210
	DEC
	CMP_R
	CMP_I
	CPH_R
	CPH_I
	CPL_R
	CPL_I
)

// Memory/paging and system.
const (
	PAGE Opcode = iota + 230
	SETF
	SYSCALL
)

// Variant describes one concrete encoding of a mnemonic: the opcode byte,
// the ordered operand kinds it expects, and the resulting instruction size
// (1 opcode byte plus each operand's width).
type Variant struct {
	Mnemonic string
	Opcode   Opcode
	Operands []OperandKind
}

// Size returns the total encoded length of an instruction using this
// variant, including the opcode byte.
func (v Variant) Size() int {
	size := 1
	for _, k := range v.Operands {
		size += k.Width()
	}
	return size
}

// Table lists every variant in the instruction set. Mnemonic + operand
// kinds together select exactly one variant; the assembler's semantic pass
// and code-graph builder consult this table, and the CPU's decoder builds
// its opcode->variant index from the same slice, so the two halves of the
// toolchain can never drift apart.
var Table = []Variant{
	{"NOP", NOP, nil},
	{"HALT", HALT, nil},
	{"JMP", JMP, []OperandKind{OperandAddr}},
	{"JPZ", JPZ, []OperandKind{OperandAddr}},
	{"JPNZ", JPNZ, []OperandKind{OperandAddr}},
	{"JPC", JPC, []OperandKind{OperandAddr}},
	{"JPNC", JPNC, []OperandKind{OperandAddr}},
	{"JPS", JPS, []OperandKind{OperandAddr}},
	{"JPNS", JPNS, []OperandKind{OperandAddr}},
	{"JPO", JPO, []OperandKind{OperandAddr}},
	{"JPNO", JPNO, []OperandKind{OperandAddr}},
	{"CALL", CALL, []OperandKind{OperandAddr, OperandImm8}},
	{"RET", RET, nil},

	{"LD", LD, []OperandKind{OperandReg, OperandImm16}},
	{"LDR", LDR, []OperandKind{OperandReg, OperandReg}},
	{"LDH", LDH, []OperandKind{OperandReg, OperandImm8}},
	{"LDL", LDL, []OperandKind{OperandReg, OperandImm8}},
	{"SWP", SWP, []OperandKind{OperandReg, OperandReg}},
	{"LDA", LDA_LOAD, []OperandKind{OperandReg, OperandAddr}},
	{"STA", LDA_STORE, []OperandKind{OperandAddr, OperandReg}},
	{"LDAR", LDA_LOAD_REG, []OperandKind{OperandReg, OperandRegAddr}},
	{"STAR", LDA_STORE_REG, []OperandKind{OperandRegAddr, OperandReg}},

	{"PUSH", PUSH, []OperandKind{OperandReg}},
	{"POP", POP, []OperandKind{OperandReg}},
	{"PUSHB", PUSHB, []OperandKind{OperandImm8}},
	{"PUSHW", PUSHW, []OperandKind{OperandImm16}},
	{"PEEK", PEEK, []OperandKind{OperandReg}},
	{"FLSH", FLSH, nil},

	{"ADD", ADDW_R, []OperandKind{OperandReg}},
	{"ADD", ADDW_I, []OperandKind{OperandImm16}},
	{"ADDB", ADDB_R, []OperandKind{OperandReg}},
	{"ADDB", ADDB_I, []OperandKind{OperandImm8}},
	{"SUB", SUBW_R, []OperandKind{OperandReg}},
	{"SUB", SUBW_I, []OperandKind{OperandImm16}},
	{"SUBB", SUBB_R, []OperandKind{OperandReg}},
	{"SUBB", SUBB_I, []OperandKind{OperandImm8}},
	{"MUL", MULW_R, []OperandKind{OperandReg}},
	{"MUL", MULW_I, []OperandKind{OperandImm16}},
	{"MULB", MULB_R, []OperandKind{OperandReg}},
	{"MULB", MULB_I, []OperandKind{OperandImm8}},
	{"DIV", DIVW_R, []OperandKind{OperandReg}},
	{"DIV", DIVW_I, []OperandKind{OperandImm16}},
	{"DIVB", DIVB_R, []OperandKind{OperandReg}},
	{"DIVB", DIVB_I, []OperandKind{OperandImm8}},
	{"REM", REMW_R, []OperandKind{OperandReg}},
	{"REM", REMW_I, []OperandKind{OperandImm16}},
	{"REMB", REMB_R, []OperandKind{OperandReg}},
	{"REMB", REMB_I, []OperandKind{OperandImm8}},

	{"AND", ANDW_R, []OperandKind{OperandReg}},
	{"AND", ANDW_I, []OperandKind{OperandImm16}},
	{"ANDB", ANDB_R, []OperandKind{OperandReg}},
	{"ANDB", ANDB_I, []OperandKind{OperandImm8}},
	{"OR", ORW_R, []OperandKind{OperandReg}},
	{"OR", ORW_I, []OperandKind{OperandImm16}},
	{"ORB", ORB_R, []OperandKind{OperandReg}},
	{"ORB", ORB_I, []OperandKind{OperandImm8}},
	{"XOR", XORW_R, []OperandKind{OperandReg}},
	{"XOR", XORW_I, []OperandKind{OperandImm16}},
	{"XORB", XORB_R, []OperandKind{OperandReg}},
	{"XORB", XORB_I, []OperandKind{OperandImm8}},
	{"NOT", NOTW, nil},
	{"NOTB", NOTB, nil},

	{"SHL", SHL_R, []OperandKind{OperandReg}},
	{"SHL", SHL_I, []OperandKind{OperandImm8}},
	{"SHR", SHR_R, []OperandKind{OperandReg}},
	{"SHR", SHR_I, []OperandKind{OperandImm8}},
	{"ROL", ROL_R, []OperandKind{OperandReg}},
	{"ROL", ROL_I, []OperandKind{OperandImm8}},
	{"ROR", ROR_R, []OperandKind{OperandReg}},
	{"ROR", ROR_I, []OperandKind{OperandImm8}},

	{"INC", INC, []OperandKind{OperandReg}},
	{"DEC", DEC, []OperandKind{OperandReg}},
	{"CMP", CMP_R, []OperandKind{OperandReg}},
	{"CMP", CMP_I, []OperandKind{OperandImm16}},
	{"CPH", CPH_R, []OperandKind{OperandReg}},
	{"CPH", CPH_I, []OperandKind{OperandImm8}},
	{"CPL", CPL_R, []OperandKind{OperandReg}},
	{"CPL", CPL_I, []OperandKind{OperandImm8}},

	{"PAGE", PAGE, []OperandKind{OperandImm16}},
	{"SETF", SETF, []OperandKind{OperandImm8}},
	{"SYSCALL", SYSCALL, []OperandKind{OperandImm16}},
}

// ByOpcode indexes Table by opcode byte, for the CPU's decoder.
var ByOpcode = func() map[Opcode]Variant {
	m := make(map[Opcode]Variant, len(Table))
	for _, v := range Table {
		m[v.Opcode] = v
	}
	return m
}()

// Variants indexes Table by mnemonic, for the assembler's semantic pass.
var Variants = func() map[string][]Variant {
	m := make(map[string][]Variant)
	for _, v := range Table {
		m[v.Mnemonic] = append(m[v.Mnemonic], v)
	}
	return m
}()

// Keywords are reserved section/directive words that cannot be used as
// identifiers.
var Keywords = map[string]bool{
	"DATA": true, "CODE": true, "PAGE": true, "IN": true,
	"DB": true, "DW": true, "DA": true,
}
