package jit

// assembler appends x86-64 machine code. Every instruction it knows is the
// 64-bit (REX.W) register form the comparison needs.
type assembler struct {
	buf []byte
}

func rexW(reg, index, base Reg) byte {
	return 0x48 | reg.ext()<<2 | index.ext()<<1 | base.ext()
}

func modrm(mod, reg, rm byte) byte {
	return mod<<6 | (reg&7)<<3 | rm&7
}

// rr emits "op r/m64, r64" with both operands in registers.
func (a *assembler) rr(op byte, dst, src Reg) {
	a.buf = append(a.buf, rexW(src, 0, dst), op, modrm(3, src.low(), dst.low()))
}

func (a *assembler) xor(dst, src Reg) { a.rr(0x31, dst, src) }
func (a *assembler) or(dst, src Reg) { a.rr(0x09, dst, src) }
func (a *assembler) mov(dst, src Reg) { a.rr(0x89, dst, src) }
func (a *assembler) test(dst, src Reg) { a.rr(0x85, dst, src) }
func (a *assembler) cmp(dst, src Reg) { a.rr(0x39, dst, src) }

// inc emits "inc r64" (FF /0).
func (a *assembler) inc(r Reg) {
	a.buf = append(a.buf, rexW(0, 0, r), 0xFF, modrm(3, 0, r.low()))
}

// loadByte emits "movzx dst, byte [base+index]" (0F B6 /r with SIB).
// base must not be RBP/R13 and index must not be RSP.
func (a *assembler) loadByte(dst, base, index Reg) {
	sib := index.low()<<3 | base.low()
	a.buf = append(a.buf, rexW(dst, index, base), 0x0F, 0xB6, modrm(0, dst.low(), 4), sib)
}

// jcc emits a short conditional jump and returns the offset of its rel8
// for patching.
func (a *assembler) jcc(op byte) int {
	a.buf = append(a.buf, op, 0)
	return len(a.buf) - 1
}

// patch points the rel8 at pos to target.
func (a *assembler) patch(pos, target int) {
	a.buf[pos] = byte(int8(target - (pos + 1)))
}

func (a *assembler) ret() {
	a.buf = append(a.buf, 0xC3)
}

const (
	opJZ = 0x74
	opJB = 0x72
)

// Emit generates the comparison for regs. The function takes lhs in RDI,
// rhs in RSI and the length in RDX, reads every byte of both operands and
// returns the OR of their XORs in RAX.
//
//	xor   acc, acc
//	xor   idx, idx
//	test  rdx, rdx
//	jz    done
//	loop:
//	movzx left, byte [rdi+idx]
//	movzx right, byte [rsi+idx]
//	xor   left, right
//	or    acc, left
//	inc   idx
//	cmp   idx, rdx
//	jb    loop
//	done:
//	mov   rax, acc   ; omitted when acc is RAX
//	ret
func Emit(regs Registers) ([]byte, error) {
	if err := regs.Validate(); err != nil {
		return nil, err
	}

	var a assembler
	a.xor(regs.Acc, regs.Acc)
	a.xor(regs.Index, regs.Index)
	a.test(argLen, argLen)
	skip := a.jcc(opJZ)

	loop := len(a.buf)
	a.loadByte(regs.Left, argLHS, regs.Index)
	a.loadByte(regs.Right, argRHS, regs.Index)
	a.xor(regs.Left, regs.Right)
	a.or(regs.Acc, regs.Left)
	a.inc(regs.Index)
	a.cmp(regs.Index, argLen)
	back := a.jcc(opJB)
	a.patch(back, loop)

	a.patch(skip, len(a.buf))
	if regs.Acc != RAX {
		a.mov(RAX, regs.Acc)
	}
	a.ret()

	return a.buf, nil
}

// Generate asks s for a register assignment and emits code for it.
func Generate(s Strategy) ([]byte, Registers, error) {
	regs := s.Assign(Scratch)
	code, err := Emit(regs)
	if err != nil {
		return nil, Registers{}, err
	}
	return code, regs, nil
}
