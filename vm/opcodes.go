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

import "strconv"

// Opcode is an operation kind, i.e. the opcode word modulo 100.
type Opcode Cell

// IntCode opcodes.
const (
	OpAdd         Opcode = 1
	OpMul         Opcode = 2
	OpIn          Opcode = 3
	OpOut         Opcode = 4
	OpJumpIfTrue  Opcode = 5
	OpJumpIfFalse Opcode = 6
	OpLessThan    Opcode = 7
	OpEquals      Opcode = 8
	OpAdjustBase  Opcode = 9
	OpHalt        Opcode = 99
)

const (
	maxOperands   = 3
	opcodeModulus = 100
)

type opInfo struct {
	name string
	n    int // operand count
	dst  int // index of the written operand, -1 if none
}

var opcodes = map[Opcode]opInfo{
	OpAdd:         {"add", 3, 2},
	OpMul:         {"mul", 3, 2},
	OpIn:          {"in", 1, 0},
	OpOut:         {"out", 1, -1},
	OpJumpIfTrue:  {"jnz", 2, -1},
	OpJumpIfFalse: {"jz", 2, -1},
	OpLessThan:    {"lt", 3, 2},
	OpEquals:      {"eq", 3, 2},
	OpAdjustBase:  {"arb", 1, -1},
	OpHalt:        {"hlt", 0, -1},
}

var opcodeIndex = make(map[string]Opcode)

func init() {
	for op, info := range opcodes {
		opcodeIndex[info.name] = op
	}
}

// Valid returns true if op is one of the defined opcodes.
func (op Opcode) Valid() bool {
	_, ok := opcodes[op]
	return ok
}

// Operands returns the number of operands that op consumes, or -1 for an
// invalid opcode.
func (op Opcode) Operands() int {
	if info, ok := opcodes[op]; ok {
		return info.n
	}
	return -1
}

// Writes returns true if the i-th operand of op is a write target.
func (op Opcode) Writes(i int) bool {
	info, ok := opcodes[op]
	return ok && info.dst == i
}

// String returns the assembler mnemonic of op.
func (op Opcode) String() string {
	if info, ok := opcodes[op]; ok {
		return info.name
	}
	return "op(" + strconv.FormatInt(int64(op), 10) + ")"
}

// Lookup returns the opcode for the given assembler mnemonic.
func Lookup(mnemonic string) (Opcode, bool) {
	op, ok := opcodeIndex[mnemonic]
	return op, ok
}

// Mode is an operand addressing mode.
type Mode uint8

// Addressing modes.
const (
	Position Mode = iota
	Immediate
	Relative
)

var modePrefix = [...]string{"", "#", "@"}

// Prefix returns the assembler prefix for the addressing mode m: "" for
// position mode, "#" for immediate mode and "@" for relative mode.
func (m Mode) Prefix() string {
	if int(m) < len(modePrefix) {
		return modePrefix[m]
	}
	return "?"
}

func (m Mode) String() string {
	switch m {
	case Position:
		return "position"
	case Immediate:
		return "immediate"
	case Relative:
		return "relative"
	}
	return "mode(" + strconv.Itoa(int(m)) + ")"
}

// Encode returns the opcode word for op with the given operand modes.
func Encode(op Opcode, modes ...Mode) Cell {
	w := Cell(op)
	f := Cell(opcodeModulus)
	for _, m := range modes {
		w += Cell(m) * f
		f *= 10
	}
	return w
}
