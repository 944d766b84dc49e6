package cpu

import (
	"github.com/stephenwhippuk/pendragon/isa"
	"github.com/stephenwhippuk/pendragon/stack"
)

func (c *CPU) fetchReg() (isa.Reg, error) {
	b, err := c.fetchByte()
	return isa.Reg(b), err
}

// execute dispatches on mnemonic rather than opcode: several mnemonics
// (ADD/ADDB, LD/LDR, ...) share a concern but differ in implicit width or
// operand shape, and the mnemonic string says which unambiguously. A Variant
// in isa.ByOpcode whose mnemonic has no case here falls to the default case
// and fails at run time with ErrorUnknownOpcode.
func (c *CPU) execute(v isa.Variant) error {
	switch v.Mnemonic {

	case "NOP":
		return nil
	case "HALT":
		c.Halted = true
		return nil

	case "JMP":
		addr, err := c.fetchWord()
		if err != nil {
			return err
		}
		c.IR = addr
		return nil
	case "JPZ":
		return c.jumpIf(isa.ZERO, true)
	case "JPNZ":
		return c.jumpIf(isa.ZERO, false)
	case "JPC":
		return c.jumpIf(isa.CARRY, true)
	case "JPNC":
		return c.jumpIf(isa.CARRY, false)
	case "JPS":
		return c.jumpIf(isa.SIGN, true)
	case "JPNS":
		return c.jumpIf(isa.SIGN, false)
	case "JPO":
		return c.jumpIf(isa.OVERFLOW, true)
	case "JPNO":
		return c.jumpIf(isa.OVERFLOW, false)

	case "CALL":
		return c.call()
	case "RET":
		return c.ret()

	case "LD":
		reg, err := c.fetchReg()
		if err != nil {
			return err
		}
		imm, err := c.fetchWord()
		if err != nil {
			return err
		}
		c.Regs.Set(reg, imm)
		return nil
	case "LDR":
		dst, err := c.fetchReg()
		if err != nil {
			return err
		}
		src, err := c.fetchReg()
		if err != nil {
			return err
		}
		c.Regs.Set(dst, c.Regs.Get(src))
		return nil
	case "LDH":
		reg, err := c.fetchReg()
		if err != nil {
			return err
		}
		imm, err := c.fetchByte()
		if err != nil {
			return err
		}
		word := c.Regs.Get(reg)
		c.Regs.Set(reg, word&0x00FF|uint16(imm)<<8)
		return nil
	case "LDL":
		reg, err := c.fetchReg()
		if err != nil {
			return err
		}
		imm, err := c.fetchByte()
		if err != nil {
			return err
		}
		word := c.Regs.Get(reg)
		c.Regs.Set(reg, word&0xFF00|uint16(imm))
		return nil
	case "SWP":
		a, err := c.fetchReg()
		if err != nil {
			return err
		}
		b, err := c.fetchReg()
		if err != nil {
			return err
		}
		va, vb := c.Regs.Get(a), c.Regs.Get(b)
		c.Regs.Set(a, vb)
		c.Regs.Set(b, va)
		return nil

	case "LDA":
		reg, err := c.fetchReg()
		if err != nil {
			return err
		}
		addr, err := c.fetchWord()
		if err != nil {
			return err
		}
		return c.loadFromAddr(reg, addr)
	case "STA":
		addr, err := c.fetchWord()
		if err != nil {
			return err
		}
		reg, err := c.fetchReg()
		if err != nil {
			return err
		}
		return c.storeToAddr(addr, reg)
	case "LDAR":
		reg, err := c.fetchReg()
		if err != nil {
			return err
		}
		addrReg, err := c.fetchReg()
		if err != nil {
			return err
		}
		return c.loadFromAddr(reg, c.Regs.Get(addrReg))
	case "STAR":
		addrReg, err := c.fetchReg()
		if err != nil {
			return err
		}
		reg, err := c.fetchReg()
		if err != nil {
			return err
		}
		return c.storeToAddr(c.Regs.Get(addrReg), reg)

	case "PUSH":
		reg, err := c.fetchReg()
		if err != nil {
			return err
		}
		if reg.IsWide() {
			return c.stk.PushWord(c.Regs.Get(reg))
		}
		return c.stk.PushByte(c.Regs.GetByte(reg))
	case "POP":
		reg, err := c.fetchReg()
		if err != nil {
			return err
		}
		if reg.IsWide() {
			v, err := c.stk.PopWord()
			if err != nil {
				return err
			}
			c.Regs.Set(reg, v)
			return nil
		}
		v, err := c.stk.PopByte()
		if err != nil {
			return err
		}
		c.Regs.SetByte(reg, v)
		return nil
	case "PUSHB":
		imm, err := c.fetchByte()
		if err != nil {
			return err
		}
		return c.stk.PushByte(imm)
	case "PUSHW":
		imm, err := c.fetchWord()
		if err != nil {
			return err
		}
		return c.stk.PushWord(imm)
	case "PEEK":
		reg, err := c.fetchReg()
		if err != nil {
			return err
		}
		return c.peekInto(reg)
	case "FLSH":
		c.stk.Flush()
		return nil

	case "ADD", "SUB", "MUL", "DIV", "REM":
		return c.wordALU(v)
	case "ADDB", "SUBB", "MULB", "DIVB", "REMB":
		return c.byteALU(v)
	case "AND", "OR", "XOR":
		return c.wordLogic(v)
	case "ANDB", "ORB", "XORB":
		return c.byteLogic(v)
	case "NOT":
		r, f := notWord(c.Regs.Get(isa.AX))
		c.Regs.Set(isa.AX, r)
		c.Flags = f
		return nil
	case "NOTB":
		r, f := notByte(c.Regs.GetByte(isa.AL))
		c.Regs.SetByte(isa.AL, r)
		c.Flags = f
		return nil

	case "SHL", "SHR", "ROL", "ROR":
		return c.bitOp(v)

	case "INC", "DEC":
		reg, err := c.fetchReg()
		if err != nil {
			return err
		}
		return c.incDec(v.Mnemonic, reg)
	case "CMP":
		return c.compareWord(v, isa.AX)
	case "CPH":
		return c.compareByte(v, isa.AH)
	case "CPL":
		return c.compareByte(v, isa.AL)

	case "PAGE":
		page, err := c.fetchWord()
		if err != nil {
			return err
		}
		c.dataPage = page
		c.data.SetPage(page)
		return nil
	case "SETF":
		imm, err := c.fetchByte()
		if err != nil {
			return err
		}
		c.Flags = isa.Flag(imm)
		return nil
	case "SYSCALL":
		n, err := c.fetchWord()
		if err != nil {
			return err
		}
		handler, ok := c.syscalls.lookup(n)
		if !ok {
			return newError(ErrorUnknownSyscall, "no handler registered for syscall 0x%04X", n)
		}
		return handler(c)

	default:
		return newError(ErrorUnknownOpcode, "no execution case for mnemonic %q", v.Mnemonic)
	}
}

func (c *CPU) jumpIf(flag isa.Flag, want bool) error {
	addr, err := c.fetchWord()
	if err != nil {
		return err
	}
	if c.testFlag(flag) == want {
		c.IR = addr
	}
	return nil
}

func (c *CPU) loadFromAddr(reg isa.Reg, addr uint16) error {
	if reg.IsWide() {
		v, err := c.data.ReadWord(c.dataPage, addr)
		if err != nil {
			return err
		}
		c.Regs.Set(reg, v)
		return nil
	}
	v, err := c.data.ReadByte(c.dataPage, addr)
	if err != nil {
		return err
	}
	c.Regs.SetByte(reg, v)
	return nil
}

func (c *CPU) storeToAddr(addr uint16, reg isa.Reg) error {
	if reg.IsWide() {
		return c.data.WriteWord(c.dataPage, addr, c.Regs.Get(reg))
	}
	return c.data.WriteByte(c.dataPage, addr, c.Regs.GetByte(reg))
}

func (c *CPU) peekInto(reg isa.Reg) error {
	sp := c.stk.SP()
	if reg.IsWide() {
		if sp < 2 {
			return &stack.Error{Kind: stack.ErrorUnderflow, Message: "PEEK of a word with fewer than 2 bytes on the stack"}
		}
		v, err := c.stk.PeekWordFromBase(sp - 2)
		if err != nil {
			return err
		}
		c.Regs.Set(reg, v)
		return nil
	}
	if sp < 1 {
		return &stack.Error{Kind: stack.ErrorUnderflow, Message: "PEEK of a byte with nothing on the stack"}
	}
	v, err := c.stk.PeekByteFromBase(sp - 1)
	if err != nil {
		return err
	}
	c.Regs.SetByte(reg, v)
	return nil
}

// operandWord reads the ALU source operand a word-form variant carries:
// either a register (by isa.Reg) or a 16-bit immediate.
func (c *CPU) operandWord(v isa.Variant) (uint16, error) {
	if len(v.Operands) == 0 {
		return 0, nil
	}
	if v.Operands[0] == isa.OperandReg {
		reg, err := c.fetchReg()
		if err != nil {
			return 0, err
		}
		return c.Regs.Get(reg), nil
	}
	return c.fetchWord()
}

func (c *CPU) operandByte(v isa.Variant) (byte, error) {
	if len(v.Operands) == 0 {
		return 0, nil
	}
	if v.Operands[0] == isa.OperandReg {
		reg, err := c.fetchReg()
		if err != nil {
			return 0, err
		}
		return c.Regs.GetByte(reg), nil
	}
	return c.fetchByte()
}

func (c *CPU) wordALU(v isa.Variant) error {
	rhs, err := c.operandWord(v)
	if err != nil {
		return err
	}
	lhs := c.Regs.Get(isa.AX)
	var result uint16
	var flags isa.Flag
	switch v.Mnemonic {
	case "ADD":
		result, flags = addWord(lhs, rhs)
	case "SUB":
		result, flags = subWord(lhs, rhs)
	case "MUL":
		result, flags = mulWord(lhs, rhs)
	case "DIV":
		result, flags, err = divWord(lhs, rhs)
	case "REM":
		result, flags, err = remWord(lhs, rhs)
	}
	if err != nil {
		return err
	}
	c.Regs.Set(isa.AX, result)
	c.Flags = flags
	return nil
}

func (c *CPU) byteALU(v isa.Variant) error {
	rhs, err := c.operandByte(v)
	if err != nil {
		return err
	}
	lhs := c.Regs.GetByte(isa.AL)
	var result byte
	var flags isa.Flag
	switch v.Mnemonic {
	case "ADDB":
		result, flags = addByte(lhs, rhs)
	case "SUBB":
		result, flags = subByte(lhs, rhs)
	case "MULB":
		result, flags = mulByte(lhs, rhs)
	case "DIVB":
		result, flags, err = divByte(lhs, rhs)
	case "REMB":
		result, flags, err = remByte(lhs, rhs)
	}
	if err != nil {
		return err
	}
	c.Regs.SetByte(isa.AL, result)
	c.Flags = flags
	return nil
}

func (c *CPU) wordLogic(v isa.Variant) error {
	rhs, err := c.operandWord(v)
	if err != nil {
		return err
	}
	lhs := c.Regs.Get(isa.AX)
	var result uint16
	var flags isa.Flag
	switch v.Mnemonic {
	case "AND":
		result, flags = andWord(lhs, rhs)
	case "OR":
		result, flags = orWord(lhs, rhs)
	case "XOR":
		result, flags = xorWord(lhs, rhs)
	}
	c.Regs.Set(isa.AX, result)
	c.Flags = flags
	return nil
}

func (c *CPU) byteLogic(v isa.Variant) error {
	rhs, err := c.operandByte(v)
	if err != nil {
		return err
	}
	lhs := c.Regs.GetByte(isa.AL)
	var result byte
	var flags isa.Flag
	switch v.Mnemonic {
	case "ANDB":
		result, flags = andByte(lhs, rhs)
	case "ORB":
		result, flags = orByte(lhs, rhs)
	case "XORB":
		result, flags = xorByte(lhs, rhs)
	}
	c.Regs.SetByte(isa.AL, result)
	c.Flags = flags
	return nil
}

func (c *CPU) bitOp(v isa.Variant) error {
	count, err := c.operandWord(v)
	if err != nil {
		return err
	}
	lhs := c.Regs.Get(isa.AX)
	var result uint16
	var flags isa.Flag
	switch v.Mnemonic {
	case "SHL":
		result, flags = shl(lhs, count)
	case "SHR":
		result, flags = shr(lhs, count)
	case "ROL":
		result, flags = rol(lhs, count)
	case "ROR":
		result, flags = ror(lhs, count)
	}
	c.Regs.Set(isa.AX, result)
	c.Flags = flags
	return nil
}

func (c *CPU) incDec(mnemonic string, reg isa.Reg) error {
	if reg.IsWide() {
		v := c.Regs.Get(reg)
		var result uint16
		var flags isa.Flag
		if mnemonic == "INC" {
			result, flags = incWord(v)
		} else {
			result, flags = decWord(v)
		}
		c.Regs.Set(reg, result)
		c.Flags = flags
		return nil
	}
	v := c.Regs.GetByte(reg)
	var result byte
	var flags isa.Flag
	if mnemonic == "INC" {
		result, flags = incByte(v)
	} else {
		result, flags = decByte(v)
	}
	c.Regs.SetByte(reg, result)
	c.Flags = flags
	return nil
}

func (c *CPU) compareWord(v isa.Variant, dest isa.Reg) error {
	rhs, err := c.operandWord(v)
	if err != nil {
		return err
	}
	result, flags := cmpWord(c.Regs.Get(dest), rhs)
	c.Regs.Set(dest, result)
	c.Flags = flags
	return nil
}

func (c *CPU) compareByte(v isa.Variant, dest isa.Reg) error {
	rhs, err := c.operandByte(v)
	if err != nil {
		return err
	}
	result, flags := cmpByte(c.Regs.GetByte(dest), rhs)
	c.Regs.SetByte(dest, result)
	c.Flags = flags
	return nil
}

func (c *CPU) call() error {
	addr, err := c.fetchWord()
	if err != nil {
		return err
	}
	discipline, err := c.fetchByte()
	if err != nil {
		return err
	}
	c.returnStack = append(c.returnStack, frame{ir: c.IR, fp: c.stk.FP()})
	c.IR = addr
	if err := c.stk.PushByte(discipline); err != nil {
		return err
	}
	c.stk.SetFrameToTop()
	return nil
}

func (c *CPU) ret() error {
	if len(c.returnStack) == 0 {
		return &stack.Error{Kind: stack.ErrorReturnStackUnderflow, Message: "RET with no active call frame"}
	}
	top := c.returnStack[len(c.returnStack)-1]
	c.returnStack = c.returnStack[:len(c.returnStack)-1]

	discipline, err := c.stk.PeekByteFromFrame(0)
	if err != nil {
		return err
	}

	var retVal uint16
	if discipline == 1 {
		retVal, err = c.stk.PopWord()
		if err != nil {
			return err
		}
	}

	c.stk.Flush()
	c.stk.SetFramePointer(top.fp)

	if _, err := c.stk.PopByte(); err != nil {
		return err
	}

	if discipline == 1 {
		if err := c.stk.PushWord(retVal); err != nil {
			return err
		}
	}

	c.IR = top.ir
	return nil
}
