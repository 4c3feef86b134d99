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

package vm

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Instruction is a decoded instruction.
type Instruction struct {
	Op    Opcode
	N     int // operand count
	Modes [maxOperands]Mode
	Args  [maxOperands]Cell
}

// Len returns the length of the instruction in cells.
func (in *Instruction) Len() int {
	return 1 + in.N
}

// String returns the assembler representation of the instruction.
func (in *Instruction) String() string {
	var b strings.Builder
	b.WriteString(in.Op.String())
	for i := 0; i < in.N; i++ {
		if i == 0 {
			b.WriteByte(' ')
		} else {
			b.WriteString(", ")
		}
		b.WriteString(in.Modes[i].Prefix())
		b.WriteString(strconv.FormatInt(int64(in.Args[i]), 10))
	}
	return b.String()
}

// Decode decodes the instruction at address pc in mem. Decode never extends
// memory.
func Decode(mem Memory, pc int) (in Instruction, err error) {
	if pc < 0 || pc >= len(mem) {
		return in, errors.Wrapf(ErrPCOutOfRange, "pc %d, memory size %d", pc, len(mem))
	}
	w := mem[pc]
	if w < 0 {
		return in, errors.Wrapf(ErrUnknownOpcode, "negative opcode word %d", w)
	}
	in.Op = Opcode(w % opcodeModulus)
	in.N = in.Op.Operands()
	if in.N < 0 {
		return in, errors.Wrapf(ErrUnknownOpcode, "opcode %d", in.Op)
	}
	if avail := len(mem) - pc - 1; avail < in.N {
		return in, errors.Wrapf(ErrMissingOperands, "%v needs %d operands, %d available", in.Op, in.N, avail)
	}
	w /= opcodeModulus
	for i := 0; i < in.N; i++ {
		d := w % 10
		if d > Cell(Relative) {
			return in, errors.Wrapf(ErrUnknownMode, "mode %d for operand %d", d, i)
		}
		in.Modes[i] = Mode(d)
		in.Args[i] = mem[pc+1+i]
		w /= 10
	}
	return in, nil
}
