//go:build !amd64

package jit

const canExecute = false

func call(entry uintptr, lhs, rhs *byte, n uintptr) int32 {
	panic(ErrUnsupported)
}
