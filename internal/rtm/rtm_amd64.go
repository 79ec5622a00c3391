//go:build amd64

package rtm

// CPUID feature bits
const (
	cpuidRTM            = 1 << 11 // EBX bit 11 in CPUID function 7
	cpuidRTMAlwaysAbort = 1 << 11 // EDX bit 11 in CPUID function 7
)

// cpuid executes the CPUID instruction.
// Implemented in rtm_amd64.s
func cpuid(eaxArg, ecxArg uint32) (eax, ebx, ecx, edx uint32)

// xbegin starts a transaction. It returns started when the body should run,
// otherwise the abort status word.
func xbegin() uint32

// xend commits the current transaction.
func xend()

// xtest reports whether the processor is executing a transaction.
func xtest() bool

func detect() bool {
	maxFunc, _, _, _ := cpuid(0, 0)
	if maxFunc < 7 {
		return false
	}
	_, ebx, _, edx := cpuid(7, 0)
	if edx&cpuidRTMAlwaysAbort != 0 {
		// TSX force-abort microcode: XBEGIN is legal but never enters.
		return false
	}
	return ebx&cpuidRTM != 0
}
