// This file is part of intcode - https://github.com/db47h/intcode
//
// Copyright 2019 Denis Bernard <db047h@gmail.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vm_test

import (
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/db47h/intcode/asm"
	"github.com/db47h/intcode/port"
	"github.com/db47h/intcode/vm"
)

type C []vm.Cell

func equal(a, b []vm.Cell) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// run runs code to completion with the given input and returns the process
// and its output.
func run(t *testing.T, name string, code []vm.Cell, input C, opts ...vm.Option) (*vm.Process, []vm.Cell) {
	t.Helper()
	in, out := port.NewFIFO(input...), port.NewFIFO()
	p, err := vm.New(0, code, in, out, opts...)
	if err != nil {
		t.Fatalf("%s: %+v", name, err)
	}
	o, err := p.Run()
	if err != nil {
		t.Fatalf("%s: %+v", name, err)
	}
	if o != vm.Halted {
		t.Fatalf("%s: expected halted, got %v", name, o)
	}
	return p, out.Values()
}

const cmp8 = "3,21,1008,21,8,20,1005,20,22,107,8,21,20,1006,20,31,1106,0,36,98,0,0," +
	"1002,21,125,20,4,20,1105,1,46,104,999,1105,1,46,1101,1000,1,20,4,20,1105,1,46,98,99"

const quine = "109,1,204,-1,1001,100,1,100,1008,100,16,101,1006,101,0,99"

var programs = [...]struct {
	name string
	code string
	in   C
	out  C
}{
	{"eq8 position", "3,9,8,9,10,9,4,9,99,-1,8", C{8}, C{1}},
	{"eq8 position false", "3,9,8,9,10,9,4,9,99,-1,8", C{7}, C{0}},
	{"lt8 position", "3,9,7,9,10,9,4,9,99,-1,8", C{5}, C{1}},
	{"eq8 immediate", "3,3,1108,-1,8,3,4,3,99", C{8}, C{1}},
	{"lt8 immediate", "3,3,1107,-1,8,3,4,3,99", C{9}, C{0}},
	{"jump position", "3,12,6,12,15,1,13,14,13,4,13,99,-1,0,1,9", C{0}, C{0}},
	{"jump immediate", "3,3,1105,-1,9,1101,0,0,12,4,12,99,1", C{3}, C{1}},
	{"cmp8 below", cmp8, C{7}, C{999}},
	{"cmp8 equal", cmp8, C{8}, C{1000}},
	{"cmp8 above", cmp8, C{9}, C{1001}},
	{"large output", "104,1125899906842624,99", nil, C{1125899906842624}},
	{"16 digits", "1102,34915192,34915192,7,4,7,99", nil, C{1219070632396864}},
}

func TestPrograms(t *testing.T) {
	for _, test := range programs {
		code, err := asm.ParseString(test.code)
		if err != nil {
			t.Errorf("%s: %v", test.name, err)
			continue
		}
		_, out := run(t, test.name, code, test.in)
		if !equal(out, test.out) {
			t.Errorf("%s: expected output %v, got %v", test.name, test.out, out)
		}
	}
}

// modeCode returns a program computing op on a and b with all operands in
// mode m, and the address where the result is stored.
func modeCode(op vm.Opcode, m vm.Mode, a, b vm.Cell) ([]vm.Cell, int) {
	switch m {
	case vm.Immediate:
		return C{vm.Encode(op, vm.Immediate, vm.Immediate, vm.Position), a, b, 5, 99, 0}, 5
	case vm.Relative:
		// relative base 10, operands at 7, 8 and 9
		return C{109, 10, vm.Encode(op, vm.Relative, vm.Relative, vm.Relative), -3, -2, -1, 99, a, b, 0}, 9
	}
	return C{vm.Encode(op, vm.Position, vm.Position, vm.Position), 5, 6, 7, 99, a, b, 0}, 7
}

func TestAddressingModes(t *testing.T) {
	tests := []struct {
		op   vm.Opcode
		a, b vm.Cell
		exp  vm.Cell
	}{
		{vm.OpAdd, 6, 7, 13},
		{vm.OpAdd, -6, 2, -4},
		{vm.OpMul, 6, 7, 42},
		{vm.OpMul, -3, 5, -15},
		{vm.OpLessThan, 6, 7, 1},
		{vm.OpLessThan, 7, 7, 0},
		{vm.OpEquals, 6, 7, 0},
		{vm.OpEquals, 7, 7, 1},
	}
	for _, test := range tests {
		for _, m := range []vm.Mode{vm.Position, vm.Immediate, vm.Relative} {
			name := test.op.String() + " " + m.String()
			code, dst := modeCode(test.op, m, test.a, test.b)
			p, _ := run(t, name, code, nil)
			if v := p.Memory()[dst]; v != test.exp {
				t.Errorf("%s %d, %d: expected %d, got %d", name, test.a, test.b, test.exp, v)
			}
		}
	}
}

func TestGrowth(t *testing.T) {
	code := C{1102, 34915192, 34915192, 7, 4, 7, 99}
	p, out := run(t, "growth", code, nil)
	if !equal(out, C{1219070632396864}) {
		t.Errorf("expected output [1219070632396864], got %v", out)
	}
	if len(p.Memory()) != 8 {
		t.Errorf("expected memory size 8, got %d", len(p.Memory()))
	}
}

func TestQuine(t *testing.T) {
	code, err := asm.ParseString(quine)
	if err != nil {
		t.Fatal(err)
	}
	p, out := run(t, "quine", code, nil)
	if !equal(out, code) {
		t.Errorf("expected %v, got %v", code, out)
	}
	if len(p.Memory()) <= 101 {
		t.Errorf("memory not extended: size %d", len(p.Memory()))
	}
}

var memTests = [...]struct {
	name  string
	code  string
	mem   C
	pc    int
	steps int64
}{
	{"add", "1,0,0,0,99", C{2, 0, 0, 0, 99}, 5, 2},
	{"mul", "2,3,0,3,99", C{2, 3, 0, 6, 99}, 5, 2},
	{"mul far", "2,4,4,5,99,0", C{2, 4, 4, 5, 99, 9801}, 5, 2},
	{"self modify", "1,1,1,4,99,5,6,0,99", C{30, 1, 1, 4, 2, 5, 6, 0, 99}, 9, 3},
	{"immediate", "1002,4,3,4,33", C{1002, 4, 3, 4, 99}, 5, 2},
	{"negative", "1101,100,-1,4,0", C{1101, 100, -1, 4, 99}, 5, 2},
	{"grow", "1101,1,2,9,99", C{1101, 1, 2, 9, 99, 0, 0, 0, 0, 3}, 5, 2},
}

func TestMemory(t *testing.T) {
	for _, test := range memTests {
		code, err := asm.ParseString(test.code)
		if err != nil {
			t.Errorf("%s: %v", test.name, err)
			continue
		}
		p, _ := run(t, test.name, code, nil)
		if !equal(p.Memory(), test.mem) {
			t.Errorf("%s: expected memory %v, got %v", test.name, test.mem, p.Memory())
		}
		if p.PC() != test.pc {
			t.Errorf("%s: expected pc %d, got %d", test.name, test.pc, p.PC())
		}
		if p.Steps() != test.steps {
			t.Errorf("%s: expected %d steps, got %d", test.name, test.steps, p.Steps())
		}
		if p.State() != vm.Halt {
			t.Errorf("%s: expected state %v, got %v", test.name, vm.Halt, p.State())
		}
	}
}

func TestNew_copiesImage(t *testing.T) {
	code := C{1101, 1, 1, 0, 99}
	p, _ := run(t, "copy", code, nil)
	if code[0] != 1101 {
		t.Errorf("image modified: %v", code)
	}
	if p.Memory()[0] != 2 {
		t.Errorf("expected 2 at address 0, got %d", p.Memory()[0])
	}
}

func TestRelativeBase(t *testing.T) {
	code := make([]vm.Cell, 1986)
	copy(code, C{109, 19, 204, -34, 99})
	code[1985] = 1125899906842624
	p, out := run(t, "relative", code, nil, vm.RelativeBase(2000))
	if !equal(out, C{1125899906842624}) {
		t.Errorf("expected output [1125899906842624], got %v", out)
	}
	if p.RelativeBase() != 2019 {
		t.Errorf("expected relative base 2019, got %d", p.RelativeBase())
	}

	// relative write
	p, _ = run(t, "relative write", C{109, 10, 21101, 3, 4, 0, 99}, nil)
	mem := p.Memory()
	if v := mem.Read(10); v != 7 {
		t.Errorf("expected 7 at address 10, got %d", v)
	}
}

func TestBlock(t *testing.T) {
	in, out := port.NewFIFO(), port.NewFIFO()
	p, err := vm.New(0, C{3, 0, 4, 0, 99}, in, out)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		o, err := p.Run()
		if err != nil {
			t.Fatal(err)
		}
		if o != vm.StillBlocked || p.State() != vm.Block || p.PC() != 0 || p.Steps() != 0 {
			t.Fatalf("run #%d: got %v, state %v, pc %d, steps %d", i, o, p.State(), p.PC(), p.Steps())
		}
	}
	if p.Wake() != true {
		t.Fatal("Wake returned false on a blocked process")
	}
	if p.State() != vm.Ready {
		t.Fatalf("expected ready, got %v", p.State())
	}
	// ready but still no input
	if o, _ := p.Run(); o != vm.StillBlocked {
		t.Fatalf("expected blocked, got %v", o)
	}
	in.Put(42)
	p.Wake()
	o, err := p.Run()
	if err != nil {
		t.Fatal(err)
	}
	if o != vm.Halted {
		t.Fatalf("expected halted, got %v", o)
	}
	if !equal(out.Values(), C{42}) || p.Memory()[0] != 42 {
		t.Errorf("bad output %v or memory %v", out.Values(), p.Memory())
	}
	if p.Wake() {
		t.Error("Wake returned true on a halted process")
	}
	if o, err = p.Run(); o != vm.Halted || err != nil || p.Steps() != 3 {
		t.Errorf("halted Run: got %v, %v, %d steps", o, err, p.Steps())
	}
}

func TestOutputWakesConsumer(t *testing.T) {
	link := port.NewFIFO()
	link.RegisterConsumer(7)
	var woken []vm.PID
	p, err := vm.New(0, C{104, 1, 104, 2, 99}, nil, link, vm.OnWake(vm.WakerFunc(func(pid vm.PID) {
		woken = append(woken, pid)
	})))
	if err != nil {
		t.Fatal(err)
	}
	if _, err = p.Run(); err != nil {
		t.Fatal(err)
	}
	if len(woken) != 2 || woken[0] != 7 || woken[1] != 7 {
		t.Errorf("expected two wake ups of process 7, got %v", woken)
	}
}

var errTests = [...]struct {
	name  string
	code  C
	in    C
	cause error
	pc    int
}{
	{"missing operands", C{5}, nil, vm.ErrMissingOperands, 0},
	{"truncated add", C{1101, 1, 1, 0, 1, 0, 0}, nil, vm.ErrMissingOperands, 4},
	{"negative opcode", C{-1}, nil, vm.ErrUnknownOpcode, 0},
	{"unknown opcode", C{42, 0, 0}, nil, vm.ErrUnknownOpcode, 0},
	{"unknown mode", C{301, 0, 0, 0, 99}, nil, vm.ErrUnknownMode, 0},
	{"negative address", C{1101, 1, 1, -1, 99}, nil, vm.ErrInvalidAddress, 0},
	{"negative relative", C{204, -1, 99}, nil, vm.ErrInvalidAddress, 0},
	{"huge write", C{1101, 1, 1, 1 << 50, 99}, nil, vm.ErrInvalidAddress, 0},
	{"huge read", C{4, 1 << 36, 99}, nil, vm.ErrInvalidAddress, 0},
	{"huge relative", C{109, vm.MaxAddress, 204, 1, 99}, nil, vm.ErrInvalidAddress, 2},
	{"immediate write", C{11101, 1, 1, 0, 99}, nil, vm.ErrInvalidWriteMode, 0},
	{"immediate input", C{103, 0, 99}, C{1}, vm.ErrInvalidWriteMode, 0},
	{"negative jump", C{1105, 1, -5}, nil, vm.ErrInvalidJump, 0},
	{"jump out", C{1105, 1, 100}, nil, vm.ErrPCOutOfRange, 100},
	{"fall off", C{1101, 1, 1, 0}, nil, vm.ErrPCOutOfRange, 4},
}

func TestErrors(t *testing.T) {
	for _, test := range errTests {
		in := port.NewFIFO(test.in...)
		p, err := vm.New(3, test.code, in, nil)
		if err != nil {
			t.Fatal(err)
		}
		o, err := p.Run()
		if o != vm.Failed || err == nil {
			t.Errorf("%s: expected failure, got %v, %v", test.name, o, err)
			continue
		}
		if c := errors.Cause(err); c != test.cause {
			t.Errorf("%s: expected cause %v, got %v", test.name, test.cause, c)
		}
		e, ok := err.(*vm.Error)
		if !ok {
			t.Errorf("%s: expected *vm.Error, got %T", test.name, err)
			continue
		}
		if e.PC != test.pc || e.PID != 3 {
			t.Errorf("%s: expected process 3 @pc=%d, got %d @pc=%d", test.name, test.pc, e.PID, e.PC)
		}
		if p.State() != vm.Running {
			t.Errorf("%s: expected state running, got %v", test.name, p.State())
		}
		if in.Len() != len(test.in) {
			t.Errorf("%s: input consumed", test.name)
		}
		if !vm.IsDecodeError(err) && !vm.IsAddressError(err) {
			t.Errorf("%s: unclassified error %v", test.name, err)
		}
		if len(p.Memory()) > len(test.code) {
			t.Errorf("%s: memory grew to %d cells", test.name, len(p.Memory()))
		}
		// sticky
		if o2, err2 := p.Run(); o2 != vm.Failed || err2 != err || p.Err() != err {
			t.Errorf("%s: second Run returned %v, %v", test.name, o2, err2)
		}
	}
}

func TestErrorClasses(t *testing.T) {
	for _, e := range []error{vm.ErrUnknownOpcode, vm.ErrUnknownMode, vm.ErrMissingOperands, vm.ErrPCOutOfRange} {
		if !vm.IsDecodeError(errors.Wrap(e, "x")) || vm.IsAddressError(e) {
			t.Errorf("%v misclassified", e)
		}
	}
	for _, e := range []error{vm.ErrInvalidAddress, vm.ErrInvalidWriteMode, vm.ErrInvalidJump} {
		if !vm.IsAddressError(&vm.Error{Err: errors.Wrap(e, "x")}) || vm.IsDecodeError(e) {
			t.Errorf("%v misclassified", e)
		}
	}
}

func TestDecode(t *testing.T) {
	mem := vm.Memory{1002, 4, 3, 4, 33, 21107, -1, 8, 3}
	in, err := vm.Decode(mem, 0)
	if err != nil {
		t.Fatal(err)
	}
	if s := in.String(); s != "mul 4, #3, 4" {
		t.Errorf("got %q", s)
	}
	if in.Len() != 4 {
		t.Errorf("expected length 4, got %d", in.Len())
	}
	in, err = vm.Decode(mem, 5)
	if err != nil {
		t.Fatal(err)
	}
	if s := in.String(); s != "lt #-1, #8, @3" {
		t.Errorf("got %q", s)
	}
	if _, err = vm.Decode(mem, 4); errors.Cause(err) != vm.ErrUnknownOpcode {
		t.Errorf("expected unknown opcode, got %v", err)
	}
	if _, err = vm.Decode(mem, len(mem)); errors.Cause(err) != vm.ErrPCOutOfRange {
		t.Errorf("expected pc out of range, got %v", err)
	}
	if len(mem) != 9 {
		t.Error("Decode extended memory")
	}
}

func TestEncode(t *testing.T) {
	if w := vm.Encode(vm.OpMul, vm.Position, vm.Immediate); w != 1002 {
		t.Errorf("expected 1002, got %d", w)
	}
	if w := vm.Encode(vm.OpAdd, vm.Relative, vm.Immediate, vm.Relative); w != 21201 {
		t.Errorf("expected 21201, got %d", w)
	}
	for _, m := range []string{"add", "mul", "in", "out", "jnz", "jz", "lt", "eq", "arb", "hlt"} {
		op, ok := vm.Lookup(m)
		if !ok || op.String() != m || !op.Valid() {
			t.Errorf("bad lookup for %s: %v, %v", m, op, ok)
		}
	}
	if vm.Opcode(42).Operands() != -1 {
		t.Error("opcode 42 has operands")
	}
}

func TestSnapshot(t *testing.T) {
	p, _ := run(t, "snapshot", C{1101, 1, 1, 0, 99}, nil)
	s := p.Snapshot()
	s.Memory[0] = 1000
	if p.Memory()[0] != 2 {
		t.Error("snapshot shares memory with the process")
	}
	var b strings.Builder
	if err := s.Dump(&b); err != nil {
		t.Fatal(err)
	}
	exp := "process 0 halted steps=2 pc=5\n1000,1,1,0,99\n"
	if b.String() != exp {
		t.Errorf("expected %q, got %q", exp, b.String())
	}
}
