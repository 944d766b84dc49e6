package asm

import (
	"strings"
)

// Parser builds an AST plus an initial symbol table from a token stream.
type Parser struct {
	filename string
	tokens   []Token
	pos      int
	cur      Token
	peek     Token
	diags    *Diagnostics
	symbols  *SymbolTable
}

// NewParser creates a parser over the given source.
func NewParser(source, filename string) *Parser {
	lexer := NewLexer(source, filename)
	toks := lexer.TokenizeAll()

	p := &Parser{
		filename: filename,
		tokens:   toks,
		diags:    &Diagnostics{},
		symbols:  NewSymbolTable(),
	}
	for _, d := range lexer.Diagnostics().Items() {
		p.diags.Add(d.Pos, d.Kind, "%s", d.Message)
	}
	p.advance()
	p.advance()
	return p
}

// Diagnostics returns the diagnostics accumulated during parsing.
func (p *Parser) Diagnostics() *Diagnostics { return p.diags }

func (p *Parser) advance() {
	p.cur = p.peek
	if p.pos < len(p.tokens) {
		p.peek = p.tokens[p.pos]
		p.pos++
	} else {
		p.peek = Token{Type: TokenEOF, Pos: p.cur.Pos}
	}
}

func (p *Parser) errorf(pos Position, format string, args ...any) {
	p.diags.Add(pos, ErrorParse, format, args...)
}

func (p *Parser) skipBlankLines() {
	for p.cur.Type == TokenEOL {
		p.advance()
	}
}

// Parse runs the grammar's top-level file := section* loop.
func (p *Parser) Parse() *Program {
	program := &Program{Symbols: p.symbols}

	for p.cur.Type != TokenEOF {
		p.skipBlankLines()
		if p.cur.Type == TokenEOF {
			break
		}
		if p.cur.Type != TokenKeyword || (p.cur.Literal != "DATA" && p.cur.Literal != "CODE") {
			p.errorf(p.cur.Pos, "expected DATA or CODE section, got %s", p.cur.Type)
			p.advance()
			continue
		}
		if p.cur.Literal == "DATA" {
			p.advance()
			p.expectEOL()
			p.parseDataSection(program)
		} else {
			p.advance()
			p.expectEOL()
			p.parseCodeSection(program)
		}
	}

	return program
}

func (p *Parser) expectEOL() {
	if p.cur.Type == TokenEOL || p.cur.Type == TokenEOF {
		if p.cur.Type == TokenEOL {
			p.advance()
		}
		return
	}
	p.errorf(p.cur.Pos, "missing end of line, got %s %q", p.cur.Type, p.cur.Literal)
	for p.cur.Type != TokenEOL && p.cur.Type != TokenEOF {
		p.advance()
	}
	if p.cur.Type == TokenEOL {
		p.advance()
	}
}

func (p *Parser) atSectionStart() bool {
	return p.cur.Type == TokenKeyword && (p.cur.Literal == "DATA" || p.cur.Literal == "CODE")
}

func (p *Parser) parseDataSection(program *Program) {
	for !p.atSectionStart() && p.cur.Type != TokenEOF {
		if p.cur.Type == TokenEOL {
			p.advance()
			continue
		}
		if p.cur.Type == TokenKeyword && p.cur.Literal == "PAGE" {
			p.parsePageDirective(program)
			continue
		}
		p.parseDataDef(program)
	}
}

func (p *Parser) parsePageDirective(program *Program) {
	pos := p.cur.Pos
	p.advance() // PAGE
	if p.cur.Type != TokenIdent {
		p.errorf(p.cur.Pos, "expected identifier after PAGE, got %s", p.cur.Type)
		p.expectEOL()
		return
	}
	name := p.cur.Literal
	p.advance()
	p.expectEOL()
	program.Pages = append(program.Pages, PageDirective{Pos: pos, Name: name})
}

func (p *Parser) parseDataDef(program *Program) {
	if p.cur.Type != TokenIdent {
		p.errorf(p.cur.Pos, "expected label, got %s %q", p.cur.Type, p.cur.Literal)
		p.advance()
		return
	}
	label := p.cur.Literal
	pos := p.cur.Pos
	p.advance()

	if p.cur.Type != TokenColon {
		p.errorf(p.cur.Pos, "expected ':' after label %q", label)
		p.expectEOL()
		return
	}
	p.advance()

	if p.cur.Type != TokenKeyword || (p.cur.Literal != "DB" && p.cur.Literal != "DW" && p.cur.Literal != "DA") {
		p.errorf(p.cur.Pos, "expected DB, DW, or DA after %q:", label)
		p.expectEOL()
		return
	}
	kind := p.cur.Literal
	p.advance()

	def := &DataDef{Pos: pos, Label: label}
	switch kind {
	case "DB":
		def.Kind = DefineBytes
		def.Bytes = p.parseByteList()
	case "DW":
		def.Kind = DefineWords
		def.Words = p.parseWordList()
	case "DA":
		def.Kind = DefineAddrs
		def.Labels = p.parseLabelList()
	}
	p.expectEOL()

	if err := p.symbols.Define(label, SymbolData, pos); err != nil {
		p.errorf(pos, "duplicate label %q", label)
	}
	program.DataDefs = append(program.DataDefs, def)
}

func (p *Parser) parseByteList() []byte {
	var out []byte
	for {
		switch p.cur.Type {
		case TokenNumber:
			out = append(out, byte(p.cur.Number))
			p.advance()
		case TokenString:
			out = append(out, []byte(p.cur.Literal)...)
			p.advance()
		default:
			p.errorf(p.cur.Pos, "expected byte value, got %s %q", p.cur.Type, p.cur.Literal)
			return out
		}
		if p.cur.Type != TokenComma {
			return out
		}
		p.advance()
	}
}

func (p *Parser) parseWordList() []int64 {
	var out []int64
	for {
		if p.cur.Type != TokenNumber {
			p.errorf(p.cur.Pos, "expected word value, got %s %q", p.cur.Type, p.cur.Literal)
			return out
		}
		out = append(out, p.cur.Number)
		p.advance()
		if p.cur.Type != TokenComma {
			return out
		}
		p.advance()
	}
}

func (p *Parser) parseLabelList() []string {
	var out []string
	for {
		if p.cur.Type != TokenIdent {
			p.errorf(p.cur.Pos, "expected label reference, got %s %q", p.cur.Type, p.cur.Literal)
			return out
		}
		out = append(out, p.cur.Literal)
		p.advance()
		if p.cur.Type != TokenComma {
			return out
		}
		p.advance()
	}
}

func (p *Parser) parseCodeSection(program *Program) {
	for !p.atSectionStart() && p.cur.Type != TokenEOF {
		if p.cur.Type == TokenEOL {
			p.advance()
			continue
		}
		if p.cur.Type == TokenIdent && p.peek.Type == TokenColon {
			pos := p.cur.Pos
			name := p.cur.Literal
			p.advance()
			p.advance()
			p.expectEOL()
			if err := p.symbols.Define(name, SymbolLabel, pos); err != nil {
				p.errorf(pos, "duplicate label %q", name)
			}
			program.CodeItems = append(program.CodeItems, CodeItem{Label: &Label{Pos: pos, Name: name}})
			continue
		}
		p.parseInstruction(program)
	}
}

func (p *Parser) parseInstruction(program *Program) {
	if p.cur.Type != TokenIdent {
		p.errorf(p.cur.Pos, "expected instruction mnemonic, got %s %q", p.cur.Type, p.cur.Literal)
		p.expectEOL()
		return
	}
	pos := p.cur.Pos
	mnemonic := strings.ToUpper(p.cur.Literal)
	p.advance()

	var operands []Operand
	if p.cur.Type != TokenEOL && p.cur.Type != TokenEOF {
		operands = append(operands, p.parseOperand())
		for p.cur.Type == TokenComma {
			p.advance()
			operands = append(operands, p.parseOperand())
		}
	}
	p.expectEOL()

	program.CodeItems = append(program.CodeItems, CodeItem{
		Instr: &Instruction{Pos: pos, Mnemonic: mnemonic, Operands: operands},
	})
}

// parseOperand implements the grammar's operand production:
//
//	operand := REGISTER | NUMBER | STRING | IDENT
//	         | IDENT "[" expr "]"
//	         | "(" IDENT ("+" (NUMBER|REGISTER))* ")"
func (p *Parser) parseOperand() Operand {
	pos := p.cur.Pos

	switch p.cur.Type {
	case TokenRegister:
		reg := p.cur.Reg
		p.advance()
		return Operand{Pos: pos, Kind: OpRegister, Reg: reg}

	case TokenNumber:
		n := p.cur.Number
		p.advance()
		return Operand{Pos: pos, Kind: OpNumber, Number: n}

	case TokenString:
		s := p.cur.Literal
		p.advance()
		return Operand{Pos: pos, Kind: OpString, Str: s}

	case TokenIdent:
		name := p.cur.Literal
		p.advance()
		if p.cur.Type == TokenLBracket {
			p.advance()
			op := p.parseIndexExpr(pos, name)
			if p.cur.Type != TokenRBracket {
				p.errorf(p.cur.Pos, "expected ']', got %s %q", p.cur.Type, p.cur.Literal)
			} else {
				p.advance()
			}
			return op
		}
		return Operand{Pos: pos, Kind: OpSymbol, Symbol: name}

	case TokenLParen:
		p.advance()
		return p.parseParenExpr(pos)

	default:
		p.errorf(pos, "unexpected token %s %q in operand", p.cur.Type, p.cur.Literal)
		tok := p.cur
		p.advance()
		return Operand{Pos: pos, Kind: OpSymbol, Symbol: tok.Literal}
	}
}

// parseIndexExpr parses the contents of "IDENT[ expr ]" sugar, equivalent
// to "(IDENT + expr)".
func (p *Parser) parseIndexExpr(pos Position, name string) Operand {
	op := Operand{Pos: pos, Kind: OpSymbol, Symbol: name}
	switch p.cur.Type {
	case TokenNumber:
		op.Offset = p.cur.Number
		p.advance()
	case TokenRegister:
		op.HasIndex = true
		op.IndexReg = p.cur.Reg
		p.advance()
	default:
		p.errorf(p.cur.Pos, "expected number or register inside '[...]', got %s %q", p.cur.Type, p.cur.Literal)
	}
	return op
}

// parseParenExpr parses "(IDENT ('+' (NUMBER|REGISTER))*)" or the
// register-indirect form "(REGISTER)".
func (p *Parser) parseParenExpr(pos Position) Operand {
	if p.cur.Type == TokenRegister {
		reg := p.cur.Reg
		p.advance()
		if p.cur.Type != TokenRParen {
			p.errorf(p.cur.Pos, "expected ')', got %s %q", p.cur.Type, p.cur.Literal)
		} else {
			p.advance()
		}
		return Operand{Pos: pos, Kind: OpRegAddr, Reg: reg}
	}
	if p.cur.Type != TokenIdent {
		p.errorf(p.cur.Pos, "expected identifier to begin parenthesised expression, got %s %q", p.cur.Type, p.cur.Literal)
		return Operand{Pos: pos, Kind: OpSymbol}
	}
	op := Operand{Pos: pos, Kind: OpSymbol, Symbol: p.cur.Literal}
	p.advance()

	for p.cur.Type == TokenPlus {
		p.advance()
		switch p.cur.Type {
		case TokenNumber:
			op.Offset += p.cur.Number
			p.advance()
		case TokenRegister:
			if op.HasIndex {
				p.errorf(p.cur.Pos, "expression already has a register index")
			}
			op.HasIndex = true
			op.IndexReg = p.cur.Reg
			p.advance()
		default:
			p.errorf(p.cur.Pos, "expected number or register after '+', got %s %q", p.cur.Type, p.cur.Literal)
			goto closeParen
		}
	}

closeParen:
	if p.cur.Type != TokenRParen {
		p.errorf(p.cur.Pos, "expected ')', got %s %q", p.cur.Type, p.cur.Literal)
	} else {
		p.advance()
	}
	return op
}
