package cpu

import "github.com/stephenwhippuk/pendragon/isa"

// The ALU operates on plain machine words and bytes; CARRY tracks unsigned
// overflow/borrow, ZERO tracks a zero result, SIGN mirrors the result's top
// bit, and OVERFLOW (meaningful only for SUB) tracks signed sign inversion.
// Every helper returns the result together with the flag set it produces;
// callers decide whether to merge or replace the CPU's current flags.

func flagsWord(v uint16, carry bool) isa.Flag {
	var f isa.Flag
	if v == 0 {
		f |= isa.ZERO
	}
	if v&0x8000 != 0 {
		f |= isa.SIGN
	}
	if carry {
		f |= isa.CARRY
	}
	return f
}

func flagsByte(v byte, carry bool) isa.Flag {
	var f isa.Flag
	if v == 0 {
		f |= isa.ZERO
	}
	if v&0x80 != 0 {
		f |= isa.SIGN
	}
	if carry {
		f |= isa.CARRY
	}
	return f
}

func addWord(a, b uint16) (uint16, isa.Flag) {
	sum := uint32(a) + uint32(b)
	result := uint16(sum)
	return result, flagsWord(result, sum > 0xFFFF)
}

func addByte(a, b byte) (byte, isa.Flag) {
	sum := uint16(a) + uint16(b)
	result := byte(sum)
	return result, flagsByte(result, sum > 0xFF)
}

// signedOverflowSub16 reports whether a - b overflows as a signed subtraction:
// the operands have different signs and the result's sign differs from a's.
func signedOverflowSub16(a, b, result uint16) bool {
	return (a^b)&0x8000 != 0 && (a^result)&0x8000 != 0
}

func signedOverflowSub8(a, b, result byte) bool {
	return (a^b)&0x80 != 0 && (a^result)&0x80 != 0
}

func subWord(a, b uint16) (uint16, isa.Flag) {
	result := a - b
	f := flagsWord(result, a < b)
	if signedOverflowSub16(a, b, result) {
		f |= isa.OVERFLOW
	}
	return result, f
}

func subByte(a, b byte) (byte, isa.Flag) {
	result := a - b
	f := flagsByte(result, a < b)
	if signedOverflowSub8(a, b, result) {
		f |= isa.OVERFLOW
	}
	return result, f
}

func mulWord(a, b uint16) (uint16, isa.Flag) {
	product := uint32(a) * uint32(b)
	result := uint16(product)
	return result, flagsWord(result, product>>16 != 0)
}

func mulByte(a, b byte) (byte, isa.Flag) {
	product := uint16(a) * uint16(b)
	result := byte(product)
	return result, flagsByte(result, product>>8 != 0)
}

func divWord(a, b uint16) (uint16, isa.Flag, error) {
	if b == 0 {
		return 0, 0, newError(ErrorDivisionByZero, "DIV by zero")
	}
	result := a / b
	return result, flagsWord(result, false), nil
}

func divByte(a, b byte) (byte, isa.Flag, error) {
	if b == 0 {
		return 0, 0, newError(ErrorDivisionByZero, "DIVB by zero")
	}
	result := a / b
	return result, flagsByte(result, false), nil
}

func remWord(a, b uint16) (uint16, isa.Flag, error) {
	if b == 0 {
		return 0, 0, newError(ErrorDivisionByZero, "REM by zero")
	}
	result := a % b
	return result, flagsWord(result, false), nil
}

func remByte(a, b byte) (byte, isa.Flag, error) {
	if b == 0 {
		return 0, 0, newError(ErrorDivisionByZero, "REMB by zero")
	}
	result := a % b
	return result, flagsByte(result, false), nil
}

func andWord(a, b uint16) (uint16, isa.Flag) { r := a & b; return r, flagsWord(r, false) }
func orWord(a, b uint16) (uint16, isa.Flag)  { r := a | b; return r, flagsWord(r, false) }
func xorWord(a, b uint16) (uint16, isa.Flag) { r := a ^ b; return r, flagsWord(r, false) }
func notWord(a uint16) (uint16, isa.Flag)    { r := ^a; return r, flagsWord(r, false) }

func andByte(a, b byte) (byte, isa.Flag) { r := a & b; return r, flagsByte(r, false) }
func orByte(a, b byte) (byte, isa.Flag)  { r := a | b; return r, flagsByte(r, false) }
func xorByte(a, b byte) (byte, isa.Flag) { r := a ^ b; return r, flagsByte(r, false) }
func notByte(a byte) (byte, isa.Flag)    { r := ^a; return r, flagsByte(r, false) }

func shl(a uint16, n uint16) (uint16, isa.Flag) {
	if n == 0 {
		return a, flagsWord(a, false)
	}
	n %= 16
	carry := n > 0 && a&(1<<(16-n)) != 0
	r := a << n
	return r, flagsWord(r, carry)
}

func shr(a uint16, n uint16) (uint16, isa.Flag) {
	if n == 0 {
		return a, flagsWord(a, false)
	}
	n %= 16
	carry := n > 0 && a&(1<<(n-1)) != 0
	r := a >> n
	return r, flagsWord(r, carry)
}

func rol(a uint16, n uint16) (uint16, isa.Flag) {
	n %= 16
	r := a<<n | a>>(16-n)
	if n == 0 {
		r = a
	}
	return r, flagsWord(r, r&1 != 0)
}

func ror(a uint16, n uint16) (uint16, isa.Flag) {
	n %= 16
	r := a>>n | a<<(16-n)
	if n == 0 {
		r = a
	}
	return r, flagsWord(r, r&0x8000 != 0)
}

func incWord(a uint16) (uint16, isa.Flag) { return addWord(a, 1) }
func decWord(a uint16) (uint16, isa.Flag) { return subWord(a, 1) }
func incByte(a byte) (byte, isa.Flag)     { return addByte(a, 1) }
func decByte(a byte) (byte, isa.Flag)     { return subByte(a, 1) }

// cmpWord performs an unsigned comparison, returning 0 if equal, 1 if a>b,
// or 0xFFFF if a<b, alongside the flags a subtraction a-b would have set.
func cmpWord(a, b uint16) (uint16, isa.Flag) {
	_, f := subWord(a, b)
	switch {
	case a == b:
		return 0, f
	case a > b:
		return 1, f
	default:
		return 0xFFFF, f
	}
}

func cmpByte(a, b byte) (byte, isa.Flag) {
	_, f := subByte(a, b)
	switch {
	case a == b:
		return 0, f
	case a > b:
		return 1, f
	default:
		return 0xFF, f
	}
}
