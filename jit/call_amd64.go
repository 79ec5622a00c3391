//go:build amd64

package jit

const canExecute = true

// call jumps to generated code with lhs in RDI, rhs in RSI and n in RDX
// and returns EAX.
// Implemented in call_amd64.s
//
//go:noescape
func call(entry uintptr, lhs, rhs *byte, n uintptr) int32
