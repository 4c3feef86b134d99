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

// Package vm implements the IntCode virtual machine.
//
// An IntCode program is a flat sequence of signed integers. Each instruction
// is an opcode word followed by its operands. The two low decimal digits of
// the opcode word select the operation, and each higher digit selects the
// addressing mode of the corresponding operand: 0 for position mode, 1 for
// immediate mode and 2 for relative mode. Relative mode operands are offsets
// from the process' relative base register.
//
// A Process owns its Memory, which grows on demand: reading past the end
// yields zero and writing past the end extends it, up to MaxAddress. Processes talk to the
// outside world through an InputPort and an OutputPort. When an input
// instruction finds its port empty, the process blocks: Run returns
// StillBlocked with the PC still pointing at the input instruction, so that a
// later Run retries it. A process is made runnable again with Wake, which is
// usually called by the Waker bound to the process that produced the data.
//
// The vm package does not schedule processes by itself. See package
// github.com/db47h/intcode/computer for a cooperative scheduler and a parallel
// runner, and package github.com/db47h/intcode/port for FIFO ports.
//
// For all intents and purposes, an instruction either completes or has no
// effect at all. The exceptions are fatal errors (see Error), after which the
// process is left in the Running state and must not be trusted anymore.
package vm
