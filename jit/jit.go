// Package jit generates the byte comparison as native code at run time.
//
// The generated function has the same contract as ctmemcmp.Compare. Which
// scratch registers it uses is decided by a pluggable Strategy, so each
// compilation can produce a different but equivalent instruction stream.
// Only amd64 can execute the result; Emit works on every platform.
package jit

import (
	"errors"
	"fmt"
	"unsafe"
)

var (
	// ErrAllocation is returned when the code buffer cannot be mapped.
	ErrAllocation = errors.New("jit: code buffer allocation failed")

	// ErrInvalidRegisters is returned for an unusable register assignment.
	ErrInvalidRegisters = errors.New("jit: invalid register assignment")

	// ErrSealed is returned when writing to a sealed buffer.
	ErrSealed = errors.New("jit: buffer is sealed")

	// ErrUnsupported is returned by Compile on architectures that cannot
	// execute the generated code.
	ErrUnsupported = errors.New("jit: native code execution not supported on this architecture")
)

// Func is a compiled comparison.
type Func struct {
	buf  *Buffer
	regs Registers
	size int
}

// Compile generates, loads and seals a comparison using s.
func Compile(s Strategy) (*Func, error) {
	if !canExecute {
		return nil, ErrUnsupported
	}

	code, regs, err := Generate(s)
	if err != nil {
		return nil, err
	}

	buf, err := NewBuffer(len(code))
	if err != nil {
		return nil, err
	}
	if err := buf.Write(0, code); err != nil {
		buf.Close()
		return nil, err
	}
	if err := buf.Seal(); err != nil {
		buf.Close()
		return nil, fmt.Errorf("jit: seal: %w", err)
	}

	return &Func{buf: buf, regs: regs, size: len(code)}, nil
}

// Registers returns the register assignment the code was generated with.
func (f *Func) Registers() Registers {
	return f.regs
}

// Code returns the generated instructions.
func (f *Func) Code() []byte {
	return f.buf.Bytes()[:f.size]
}

// Compare runs the generated code over lhs[:n] and rhs[:n]. Like
// ctmemcmp.Compare it panics if either slice is shorter than n.
func (f *Func) Compare(lhs, rhs []byte, n int) int {
	lhs, rhs = lhs[:n], rhs[:n]
	entry := uintptr(unsafe.Pointer(&f.buf.Bytes()[0]))
	return int(call(entry, unsafe.SliceData(lhs), unsafe.SliceData(rhs), uintptr(n)))
}

// Close unmaps the code. The Func must not be called afterwards.
func (f *Func) Close() error {
	return f.buf.Close()
}
