package jit

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"runtime"
	"testing"

	"golang.org/x/arch/x86/x86asm"

	ctmemcmp "github.com/r3tima/ct-memcmp"
)

// decode disassembles code into instructions.
func decode(t *testing.T, code []byte) []x86asm.Inst {
	t.Helper()
	var insts []x86asm.Inst
	for len(code) > 0 {
		inst, err := x86asm.Decode(code, 64)
		if err != nil {
			t.Fatalf("decode at offset %d: %v", len(insts), err)
		}
		insts = append(insts, inst)
		code = code[inst.Len:]
	}
	return insts
}

func asmReg(r Reg) x86asm.Reg {
	return x86asm.RAX + x86asm.Reg(r)
}

func ops(insts []x86asm.Inst) []x86asm.Op {
	out := make([]x86asm.Op, len(insts))
	for i, inst := range insts {
		out[i] = inst.Op
	}
	return out
}

// TestEmitDecodes verifies the emitted bytes decode to the intended program.
func TestEmitDecodes(t *testing.T) {
	regs := Registers{Acc: R10, Index: RBX, Left: R8, Right: RCX}
	code, err := Emit(regs)
	if err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	insts := decode(t, code)
	for _, inst := range insts {
		t.Logf("  %s", x86asm.IntelSyntax(inst, 0, nil))
	}

	want := []x86asm.Op{
		x86asm.XOR, x86asm.XOR, x86asm.TEST, x86asm.JE,
		x86asm.MOVZX, x86asm.MOVZX, x86asm.XOR, x86asm.OR, x86asm.INC, x86asm.CMP, x86asm.JB,
		x86asm.MOV, x86asm.RET,
	}
	got := ops(insts)
	if len(got) != len(want) {
		t.Fatalf("got %d instructions, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("instruction %d = %v, want %v", i, got[i], want[i])
		}
	}

	// xor acc, acc
	if insts[0].Args[0] != asmReg(R10) || insts[0].Args[1] != asmReg(R10) {
		t.Errorf("acc clear uses %v", insts[0].Args)
	}
	// movzx left, byte [rdi+idx]
	load := insts[4]
	if load.Args[0] != asmReg(R8) {
		t.Errorf("lhs load destination %v, want R8", load.Args[0])
	}
	m, ok := load.Args[1].(x86asm.Mem)
	if !ok || m.Base != x86asm.RDI || m.Index != asmReg(RBX) || m.Scale != 1 || m.Disp != 0 {
		t.Errorf("lhs load operand %#v", load.Args[1])
	}
	// movzx right, byte [rsi+idx]
	m, ok = insts[5].Args[1].(x86asm.Mem)
	if !ok || m.Base != x86asm.RSI || m.Index != asmReg(RBX) {
		t.Errorf("rhs load operand %#v", insts[5].Args[1])
	}
	// mov rax, acc
	if insts[11].Args[0] != x86asm.RAX || insts[11].Args[1] != asmReg(R10) {
		t.Errorf("return move %v", insts[11].Args)
	}

	// Jump targets: jz lands on the final mov, jb on the first load.
	offsets := make([]int, len(insts)+1)
	for i, inst := range insts {
		offsets[i+1] = offsets[i] + inst.Len
	}
	if rel := int(insts[3].Args[0].(x86asm.Rel)); offsets[4]+rel != offsets[11] {
		t.Errorf("jz target %d, want %d", offsets[4]+rel, offsets[11])
	}
	if rel := int(insts[10].Args[0].(x86asm.Rel)); offsets[11]+rel != offsets[4] {
		t.Errorf("jb target %d, want %d", offsets[11]+rel, offsets[4])
	}
}

func TestEmitAccInRAXSkipsMove(t *testing.T) {
	code, err := Emit(Registers(DefaultRegisters))
	if err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	insts := decode(t, code)
	if n := len(insts); n != 12 || insts[n-1].Op != x86asm.RET || insts[n-2].Op != x86asm.JB {
		t.Fatalf("unexpected tail: %v", ops(insts))
	}
}

// TestEmitStrategyAgnostic verifies the instruction stream shape does not
// depend on the register choice.
func TestEmitStrategyAgnostic(t *testing.T) {
	s := NewShuffled(7)
	seen := map[Registers]bool{}
	for i := 0; i < 50; i++ {
		code, regs, err := Generate(s)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		seen[regs] = true

		got := ops(decode(t, code))
		if regs.Acc == RAX {
			got = append(got[:len(got)-1], x86asm.MOV, x86asm.RET)
		}
		if len(got) != 13 || got[4] != x86asm.MOVZX || got[12] != x86asm.RET {
			t.Fatalf("assignment %+v produced %v", regs, got)
		}
	}
	if len(seen) < 2 {
		t.Fatalf("shuffled strategy produced %d distinct assignments", len(seen))
	}
	t.Logf("distinct assignments: %d", len(seen))
}

func TestShuffledDeterministic(t *testing.T) {
	a, b := NewShuffled(42), NewShuffled(42)
	for i := 0; i < 10; i++ {
		ra, rb := a.Assign(Scratch), b.Assign(Scratch)
		if ra != rb {
			t.Fatalf("round %d: %+v != %+v", i, ra, rb)
		}
		if err := ra.Validate(); err != nil {
			t.Fatalf("invalid assignment: %v", err)
		}
	}
}

func TestRegistersValidate(t *testing.T) {
	tests := []struct {
		name string
		regs Registers
	}{
		{"duplicate", Registers{Acc: RAX, Index: RAX, Left: R8, Right: R9}},
		{"stack pointer", Registers{Acc: RAX, Index: RSP, Left: R8, Right: R9}},
		{"argument register", Registers{Acc: RDI, Index: RCX, Left: R8, Right: R9}},
		{"runtime register", Registers{Acc: RAX, Index: RCX, Left: R14, Right: R9}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Emit(tc.regs); !errors.Is(err, ErrInvalidRegisters) {
				t.Fatalf("Emit error = %v, want ErrInvalidRegisters", err)
			}
		})
	}
}

func TestBufferSeal(t *testing.T) {
	b, err := NewBuffer(16)
	if err != nil {
		t.Fatalf("NewBuffer failed: %v", err)
	}
	defer b.Close()

	if err := b.Write(0, []byte{0xC3}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := b.Write(len(b.Bytes()), []byte{0x90}); err == nil {
		t.Fatal("out of range write accepted")
	}
	if err := b.Seal(); err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if err := b.Write(0, []byte{0x90}); !errors.Is(err, ErrSealed) {
		t.Fatalf("Write after seal = %v, want ErrSealed", err)
	}
	if b.Bytes()[0] != 0xC3 {
		t.Fatal("code lost after seal")
	}
}

// TestCompileMatchesCompare runs generated code against a reference.
func TestCompileMatchesCompare(t *testing.T) {
	if runtime.GOARCH != "amd64" {
		if _, err := Compile(DefaultRegisters); !errors.Is(err, ErrUnsupported) {
			t.Fatalf("Compile error = %v, want ErrUnsupported", err)
		}
		t.Skip("native execution requires amd64")
	}

	s := NewShuffled(1234)
	rng := rand.New(rand.NewPCG(1, 2))
	for round := 0; round < 8; round++ {
		f, err := Compile(s)
		if err != nil {
			t.Fatalf("Compile failed: %v", err)
		}
		t.Logf("round %d: %+v, %d bytes", round, f.Registers(), len(f.Code()))

		for trial := 0; trial < 64; trial++ {
			n := rng.IntN(100)
			a := make([]byte, n)
			for i := range a {
				a[i] = byte(rng.UintN(256))
			}
			b := bytes.Clone(a)
			if n > 0 && trial%2 == 1 {
				b[rng.IntN(n)] ^= byte(1 + rng.UintN(255))
			}

			got := f.Compare(a, b, n)
			if (got == 0) != bytes.Equal(a, b) {
				t.Fatalf("Compare(n=%d) = %d, equal=%v", n, got, bytes.Equal(a, b))
			}
		}

		// Last-byte mismatch must still be seen.
		a := []byte("SECRET")
		if f.Compare(a, []byte("SECREX"), 6) == 0 {
			t.Fatal("last-byte mismatch not detected")
		}
		if got := f.Compare(a, a, 6); got != 0 {
			t.Fatalf("Compare(a, a) = %d", got)
		}
		if got := f.Compare(nil, nil, 0); got != 0 {
			t.Fatalf("empty Compare = %d", got)
		}
		f.Close()
	}
}

// FuzzCompile checks generated code against the Go comparison.
func FuzzCompile(f *testing.F) {
	f.Add([]byte("SECRETXECRET"), uint64(1))
	f.Add([]byte("SECRETSECRET"), uint64(7))
	f.Add([]byte{0x80, 0x00}, uint64(0xdeadbeef))

	if runtime.GOARCH != "amd64" {
		f.Skip("native execution requires amd64")
	}

	f.Fuzz(func(t *testing.T, data []byte, seed uint64) {
		fn, err := Compile(NewShuffled(seed | 1))
		if err != nil {
			t.Fatalf("Compile failed: %v", err)
		}
		defer fn.Close()

		mid := len(data) / 2
		lhs, rhs := data[:mid], data[mid:]
		n := min(len(lhs), len(rhs))
		if got, want := fn.Compare(lhs, rhs, n), ctmemcmp.Compare(lhs, rhs, n); got != want {
			t.Fatalf("%+v: Compare(%x, %x, %d) = %d, want %d", fn.Registers(), lhs, rhs, n, got, want)
		}
	})
}
