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
	"github.com/pkg/errors"
)

// effect is the control flow effect of an executed instruction.
type effect int

const (
	advance effect = iota // pc += instruction length
	jump                  // pc already set
	block                 // no input, pc unchanged
	halt
)

// address returns the effective address of a position or relative operand.
func (p *Process) address(m Mode, raw Cell) (int, error) {
	a := raw
	if m == Relative {
		a += p.rb
	}
	if a < 0 {
		return 0, errors.Wrapf(ErrInvalidAddress, "%v operand %d resolves to %d", m, raw, a)
	}
	if a > MaxAddress {
		return 0, errors.Wrapf(ErrInvalidAddress, "%v operand %d resolves to %d, past the memory limit", m, raw, a)
	}
	return int(a), nil
}

// read resolves a read operand.
func (p *Process) read(m Mode, raw Cell) (Cell, error) {
	switch m {
	case Immediate:
		return raw, nil
	case Position, Relative:
		a, err := p.address(m, raw)
		if err != nil {
			return 0, err
		}
		return p.mem.Read(a), nil
	}
	return 0, errors.Wrapf(ErrUnknownMode, "mode %d", m)
}

// location resolves a write operand.
func (p *Process) location(m Mode, raw Cell) (int, error) {
	switch m {
	case Immediate:
		return 0, errors.Wrapf(ErrInvalidWriteMode, "write to immediate operand %d", raw)
	case Position, Relative:
		return p.address(m, raw)
	}
	return 0, errors.Wrapf(ErrUnknownMode, "mode %d", m)
}

// operands resolves the first n read operands of in.
func (p *Process) operands(in *Instruction, n int) (v [maxOperands]Cell, err error) {
	for i := 0; i < n; i++ {
		if v[i], err = p.read(in.Modes[i], in.Args[i]); err != nil {
			return v, err
		}
	}
	return v, nil
}

// store writes v to the location designated by the i-th operand of in.
func (p *Process) store(in *Instruction, i int, v Cell) error {
	a, err := p.location(in.Modes[i], in.Args[i])
	if err != nil {
		return err
	}
	p.mem.Write(a, v)
	return nil
}

func (p *Process) jumpTo(target Cell) error {
	if target < 0 {
		return errors.Wrapf(ErrInvalidJump, "jump to %d", target)
	}
	p.pc = int(target)
	return nil
}

func boolCell(b bool) Cell {
	if b {
		return 1
	}
	return 0
}

// execute executes a single decoded instruction. It only moves the pc for
// jumps; the caller deals with the other effects.
func (p *Process) execute(in *Instruction) (effect, error) {
	switch in.Op {
	case OpAdd, OpMul, OpLessThan, OpEquals:
		v, err := p.operands(in, 2)
		if err != nil {
			return advance, err
		}
		var r Cell
		switch in.Op {
		case OpAdd:
			r = v[0] + v[1]
		case OpMul:
			r = v[0] * v[1]
		case OpLessThan:
			r = boolCell(v[0] < v[1])
		case OpEquals:
			r = boolCell(v[0] == v[1])
		}
		return advance, p.store(in, 2, r)
	case OpIn:
		// resolve first so that a bad operand does not consume input
		a, err := p.location(in.Modes[0], in.Args[0])
		if err != nil {
			return advance, err
		}
		v, ok := p.in.Get()
		if !ok {
			return block, nil
		}
		p.mem.Write(a, v)
		return advance, nil
	case OpOut:
		v, err := p.read(in.Modes[0], in.Args[0])
		if err != nil {
			return advance, err
		}
		if err = p.out.Put(v); err != nil {
			return advance, errors.Wrap(err, "output failed")
		}
		if id, ok := p.out.WaitingConsumer(); ok && p.waker != nil {
			if p.trace {
				log.Debugf("process %d output %d and tries to wake process %d", p.id, v, id)
			}
			p.waker.Wake(id)
		}
		return advance, nil
	case OpJumpIfTrue, OpJumpIfFalse:
		c, err := p.read(in.Modes[0], in.Args[0])
		if err != nil {
			return advance, err
		}
		if (c != 0) != (in.Op == OpJumpIfTrue) {
			return advance, nil
		}
		t, err := p.read(in.Modes[1], in.Args[1])
		if err != nil {
			return advance, err
		}
		return jump, p.jumpTo(t)
	case OpAdjustBase:
		v, err := p.read(in.Modes[0], in.Args[0])
		if err != nil {
			return advance, err
		}
		p.rb += v
		return advance, nil
	case OpHalt:
		return halt, nil
	}
	return advance, errors.Wrapf(ErrUnknownOpcode, "opcode %d", in.Op)
}

func (p *Process) fail(err error) *Error {
	e := &Error{PID: p.id, PC: p.pc, Err: err}
	if p.pc >= 0 && p.pc < len(p.mem) {
		e.Op = p.mem[p.pc]
	}
	p.err = e
	return e
}

// Run executes instructions until the process halts, blocks on input or
// fails.
//
// Run is a no-op if the process is not Ready: it returns Halted for a halted
// process, StillBlocked for a blocked one, and Failed along with the original
// error for a process that previously failed.
//
// On a fatal error, Run returns Failed and an *Error. The PC points to the
// instruction that triggered the error and the process stays in the Running
// state.
func (p *Process) Run() (o Outcome, err error) {
	switch p.state {
	case Halt:
		return Halted, nil
	case Block:
		return StillBlocked, nil
	case Running:
		if p.err != nil {
			return Failed, p.err
		}
		return Failed, p.fail(errors.New("process already running"))
	}
	defer func() {
		if e := recover(); e != nil {
			switch e := e.(type) {
			case error:
				o, err = Failed, p.fail(errors.Wrapf(e, "recovered error, memory size %d", len(p.mem)))
			default:
				panic(e)
			}
		}
	}()

	p.state = Running
	for {
		in, err := Decode(p.mem, p.pc)
		if err != nil {
			return Failed, p.fail(err)
		}
		if p.trace {
			log.Debugf("process %d step #%d: %v @ %d", p.id, p.steps, &in, p.pc)
		}
		eff, err := p.execute(&in)
		if err != nil {
			return Failed, p.fail(err)
		}
		switch eff {
		case block:
			p.state = Block
			if p.trace {
				log.Debugf("process %d blocked by input @ %d", p.id, p.pc)
			}
			return StillBlocked, nil
		case advance:
			p.pc += in.Len()
		case halt:
			p.pc += in.Len()
			p.steps++
			p.state = Halt
			if p.trace {
				log.Debugf("process %d halted after %d steps", p.id, p.steps)
			}
			return Halted, nil
		}
		p.steps++
	}
}
