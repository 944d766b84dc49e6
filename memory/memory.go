// Package memory implements Pendragon's paged virtual memory: a 40-bit
// virtual address space partitioned into isolated contexts, with two
// accessor flavors (paged and flat) gated by an UNPROTECTED/PROTECTED
// mode type-state.
package memory

import "sync"

const (
	blockSize   = 4096
	vaddrBits   = 40
	maxVAddr    = uint64(1) << vaddrBits
	maxCtxBytes = uint64(1) << 32
)

// ContextID uniquely identifies a context within a Unit.
type ContextID uint32

// Context is a contiguous, isolated region of the 40-bit virtual address
// space. Physical memory backing it is allocated on demand in 4 KB blocks.
type Context struct {
	id          ContextID
	base        uint64
	size        uint64
	blocks      map[uint32][]byte
	currentPage uint16
}

// Size returns the context's byte size.
func (c *Context) Size() uint64 { return c.size }

// Base returns the context's base virtual address.
func (c *Context) Base() uint64 { return c.base }

func (c *Context) block(index uint32, create bool) []byte {
	b, ok := c.blocks[index]
	if !ok {
		if !create {
			return nil
		}
		b = make([]byte, blockSize)
		c.blocks[index] = b
	}
	return b
}

func (c *Context) readByte(addr uint32) (byte, error) {
	if uint64(addr) >= c.size {
		return 0, newError(ErrorOutOfBounds, "read at 0x%08X exceeds context size %d", addr, c.size)
	}
	b := c.block(addr/blockSize, false)
	if b == nil {
		return 0, nil
	}
	return b[addr%blockSize], nil
}

func (c *Context) writeByte(addr uint32, v byte) error {
	if uint64(addr) >= c.size {
		return newError(ErrorOutOfBounds, "write at 0x%08X exceeds context size %d", addr, c.size)
	}
	b := c.block(addr/blockSize, true)
	b[addr%blockSize] = v
	return nil
}

func (c *Context) ensureBlocksUpTo(size uint64) {
	blocks := (size + blockSize - 1) / blockSize
	for i := uint32(0); uint64(i) < blocks; i++ {
		c.block(i, true)
	}
}

// core holds the state shared by UnprotectedUnit and ProtectedUnit; the two
// wrapper types exist purely to make accessor-creation and
// context-lifecycle operations mutually exclusive at compile time.
type core struct {
	mu       sync.Mutex
	contexts map[ContextID]*Context
	nextID   ContextID
	nextVA   uint64
}

// UnprotectedUnit permits context creation and destruction; it does not
// permit accessor creation.
type UnprotectedUnit struct{ c *core }

// ProtectedUnit permits accessor creation and memory access; it does not
// permit context lifecycle changes.
type ProtectedUnit struct{ c *core }

// NewUnit creates a fresh memory unit in UNPROTECTED mode.
func NewUnit() *UnprotectedUnit {
	return &UnprotectedUnit{c: &core{contexts: make(map[ContextID]*Context)}}
}

// Protect transitions to PROTECTED mode.
func (u *UnprotectedUnit) Protect() *ProtectedUnit {
	return &ProtectedUnit{c: u.c}
}

// Unprotect transitions back to UNPROTECTED mode.
func (p *ProtectedUnit) Unprotect() *UnprotectedUnit {
	return &UnprotectedUnit{c: p.c}
}

// CreateContext allocates a new context of the given byte size at the next
// free virtual address, bump-allocating within the 40-bit space. Zero size
// is permitted (a degenerate, empty context).
func (u *UnprotectedUnit) CreateContext(size uint64) (ContextID, error) {
	if size > maxCtxBytes {
		return 0, newError(ErrorExhausted, "context size %d exceeds 2^32", size)
	}
	c := u.c
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.nextVA+size > maxVAddr {
		return 0, newError(ErrorExhausted, "virtual address space exhausted (need %d bytes at 0x%X)", size, c.nextVA)
	}

	id := c.nextID
	c.nextID++
	ctx := &Context{
		id:     id,
		base:   c.nextVA,
		size:   size,
		blocks: make(map[uint32][]byte),
	}
	c.contexts[id] = ctx
	c.nextVA += size
	return id, nil
}

// DestroyContext releases a context. It is an error to reference the id
// afterward.
func (u *UnprotectedUnit) DestroyContext(id ContextID) error {
	c := u.c
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.contexts[id]; !ok {
		return newError(ErrorModeViolation, "context %d does not exist", id)
	}
	delete(c.contexts, id)
	return nil
}

func (p *ProtectedUnit) context(id ContextID) (*Context, error) {
	c := p.c
	c.mu.Lock()
	defer c.mu.Unlock()
	ctx, ok := c.contexts[id]
	if !ok {
		return nil, newError(ErrorModeViolation, "context %d does not exist", id)
	}
	return ctx, nil
}
