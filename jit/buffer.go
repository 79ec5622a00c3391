package jit

import (
	"fmt"

	"github.com/r3tima/ct-memcmp/internal/cacheops"
	"github.com/r3tima/ct-memcmp/internal/mem"
)

// Buffer is a page-aligned code buffer. It is writable until Seal, then
// read-execute only.
type Buffer struct {
	region *mem.Region
	sealed bool
}

// NewBuffer maps a writable buffer of at least size bytes.
func NewBuffer(size int) (*Buffer, error) {
	region, err := mem.Map(size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAllocation, err)
	}
	return &Buffer{region: region}, nil
}

// Write copies code into the buffer at off.
func (b *Buffer) Write(off int, code []byte) error {
	if b.sealed {
		return ErrSealed
	}
	buf := b.region.Bytes()
	if off < 0 || off+len(code) > len(buf) {
		return fmt.Errorf("jit: write of %d bytes at %d exceeds buffer of %d", len(code), off, len(buf))
	}
	copy(buf[off:], code)
	return nil
}

// Seal makes the buffer read-execute. Further writes fail.
func (b *Buffer) Seal() error {
	if b.sealed {
		return nil
	}
	if err := b.region.Protect(0, b.region.Len(), mem.ReadExec); err != nil {
		return err
	}
	cacheops.MFence()
	b.sealed = true
	return nil
}

// Bytes returns the buffer contents. Read-only once sealed.
func (b *Buffer) Bytes() []byte {
	return b.region.Bytes()
}

// Close unmaps the buffer.
func (b *Buffer) Close() error {
	return b.region.Unmap()
}
