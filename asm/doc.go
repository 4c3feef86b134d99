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

// Package asm provides utility functions to load, assemble and disassemble
// IntCode programs.
//
// Program text
//
// The usual distribution format of IntCode programs is a single line of comma
// separated decimal integers. Parse and ParseFile read this format, Format
// writes it.
//
// Assembler mnemonics
//
//	opcode	asm	operands	description
//	------	---	--------	-------------------------------------------------
//	1	add	a, b, dst	dst = a + b
//	2	mul	a, b, dst	dst = a * b
//	3	in	dst		read a value from the input port into dst
//	4	out	a		write a to the output port
//	5	jnz	c, t		jump to t if c != 0
//	6	jz	c, t		jump to t if c == 0
//	7	lt	a, b, dst	dst = 1 if a < b, else 0
//	8	eq	a, b, dst	dst = 1 if a == b, else 0
//	9	arb	a		add a to the relative base
//	99	hlt			halt
//
// The pseudo instruction "data" emits its operands verbatim.
//
// Operands
//
// An operand is an integer or a label name, optionally followed by a signed
// offset (e.g. "buf+2"). The prefix selects the addressing mode:
//
//	42	position mode: the value at address 42
//	#42	immediate mode: the value 42
//	@-3	relative mode: the value at address relative base - 3
//
// Labels and comments
//
// A label is an identifier followed by a colon at the beginning of a line. It
// evaluates to the address of the next emitted cell. Comments start with a
// semicolon and extend to the end of the line.
//
//	; echo the input until a zero is read
//	loop:	in	val
//		jz	val, #end
//		out	val
//		jz	#0, #loop
//	end:	hlt
//	val:	data	0
package asm
