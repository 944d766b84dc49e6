package cpu

import "github.com/stephenwhippuk/pendragon/isa"

// Registers holds the five 16-bit general-purpose registers. Each is
// addressable whole (AX..EX) or as its high/low byte half (AH/AL..EH/EL);
// a half is simply the corresponding half of the parent word, so writing
// through a half leaves the other half untouched.
type Registers struct {
	words [5]uint16
}

func wordIndex(r isa.Reg) int {
	if r.IsWide() {
		return int(r - isa.AX)
	}
	// AL,AH,BL,BH,CL,CH,DL,DH,EL,EH follow the five words in pairs.
	return int(r-isa.AL) / 2
}

func isHighHalf(r isa.Reg) bool {
	return !r.IsWide() && int(r-isa.AL)%2 == 1
}

// Get reads a register, wide or half, by its isa.Reg code.
func (r *Registers) Get(reg isa.Reg) uint16 {
	w := r.words[wordIndex(reg)]
	if reg.IsWide() {
		return w
	}
	if isHighHalf(reg) {
		return w >> 8
	}
	return w & 0xFF
}

// GetByte reads an 8-bit half register as a byte.
func (r *Registers) GetByte(reg isa.Reg) byte {
	return byte(r.Get(reg))
}

// Set writes a register, wide or half. Writing a half preserves the other
// half of its parent word.
func (r *Registers) Set(reg isa.Reg, v uint16) {
	idx := wordIndex(reg)
	if reg.IsWide() {
		r.words[idx] = v
		return
	}
	if isHighHalf(reg) {
		r.words[idx] = r.words[idx]&0x00FF | uint16(byte(v))<<8
	} else {
		r.words[idx] = r.words[idx]&0xFF00 | uint16(byte(v))
	}
}

// SetByte writes an 8-bit half register from a byte.
func (r *Registers) SetByte(reg isa.Reg, v byte) {
	r.Set(reg, uint16(v))
}
