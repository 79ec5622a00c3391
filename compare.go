package ctmemcmp

// Comparator is the calling contract of the comparison under attack: zero
// when the first n bytes of lhs and rhs are pairwise equal, nonzero
// otherwise. Implementations read all n bytes of both operands.
type Comparator func(lhs, rhs []byte, n int) int

// Compare is the baseline comparison. It reads every byte of lhs[:n] and
// rhs[:n] with no early exit and returns the OR of their XORs. It panics
// if either slice is shorter than n.
//
//go:noinline
func Compare(lhs, rhs []byte, n int) int {
	lhs, rhs = lhs[:n], rhs[:n]
	var acc byte
	for i := range lhs {
		acc |= lhs[i] ^ rhs[i]
	}
	return int(acc)
}
