package jit

import "fmt"

// Reg is an x86-64 general purpose register number.
type Reg uint8

// General purpose registers, numbered as in ModRM/REX encoding.
const (
	RAX Reg = iota
	RCX
	RDX
	RBX
	RSP
	RBP
	RSI
	RDI
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
)

var regNames = [...]string{
	"RAX", "RCX", "RDX", "RBX", "RSP", "RBP", "RSI", "RDI",
	"R8", "R9", "R10", "R11", "R12", "R13", "R14", "R15",
}

// String returns the register name.
func (r Reg) String() string {
	if int(r) < len(regNames) {
		return regNames[r]
	}
	return fmt.Sprintf("Reg(%d)", r)
}

// low returns the three register bits that go into ModRM/SIB.
func (r Reg) low() byte { return byte(r) & 7 }

// ext returns the REX extension bit for r.
func (r Reg) ext() byte { return byte(r>>3) & 1 }

// Argument registers of the generated function: lhs, rhs, length.
const (
	argLHS = RDI
	argRHS = RSI
	argLen = RDX
)

// Scratch is the register pool a Strategy chooses from. It leaves out the
// argument registers, the stack and frame pointers, and R12-R15 (the Go
// runtime reserves R14 and R15, and R12/R13 need special SIB forms).
var Scratch = []Reg{RAX, RCX, RBX, R8, R9, R10, R11}

// Registers is the register assignment for one generated function.
type Registers struct {
	Acc   Reg // OR of all byte differences, the return value
	Index Reg // loop counter
	Left  Reg // byte loaded from lhs
	Right Reg // byte loaded from rhs
}

func (r Registers) list() [4]Reg {
	return [4]Reg{r.Acc, r.Index, r.Left, r.Right}
}

// Validate checks that the four registers are distinct members of Scratch.
func (r Registers) Validate() error {
	regs := r.list()
	for i, a := range regs {
		inPool := false
		for _, p := range Scratch {
			if a == p {
				inPool = true
				break
			}
		}
		if !inPool {
			return fmt.Errorf("%w: %s is not a scratch register", ErrInvalidRegisters, a)
		}
		for _, b := range regs[i+1:] {
			if a == b {
				return fmt.Errorf("%w: %s assigned twice", ErrInvalidRegisters, a)
			}
		}
	}
	return nil
}
