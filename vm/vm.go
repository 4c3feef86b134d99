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

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("intcode.vm")

// PID identifies a process.
type PID int

// State is the lifecycle state of a process.
type State int

// Process states.
//
// A process starts Ready and is Running only while its Run method executes.
// It leaves Running for Halt (terminal) or Block (input port empty). Block
// goes back to Ready through Wake.
const (
	Ready State = iota
	Running
	Block
	Halt
)

var stateNames = [...]string{"ready", "running", "blocked", "halted"}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "state(" + strconv.Itoa(int(s)) + ")"
}

// Outcome is the result of a call to Run.
type Outcome int

// Run outcomes.
const (
	StillBlocked Outcome = iota
	Halted
	Failed
)

var outcomeNames = [...]string{"blocked", "halted", "failed"}

func (o Outcome) String() string {
	if o >= 0 && int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return "outcome(" + strconv.Itoa(int(o)) + ")"
}

// Process is an IntCode process: memory, registers and I/O ports.
type Process struct {
	id    PID
	mem   Memory
	pc    int
	rb    Cell
	state State
	in    InputPort
	out   OutputPort
	waker Waker
	steps int64
	trace bool
	err   error
}

// Option interface
type Option func(*Process) error

// Trace enables or disables per-instruction debug logging. Logging happens
// through the "intcode.vm" commonlog logger at debug level.
func Trace(enable bool) Option {
	return func(p *Process) error {
		p.trace = enable
		return nil
	}
}

// OnWake sets the Waker notified when the process outputs data to a port that
// has a registered consumer. Without a Waker, consumers are never woken by
// this process.
func OnWake(w Waker) Option {
	return func(p *Process) error {
		p.waker = w
		return nil
	}
}

// RelativeBase sets the initial value of the relative base register. The
// default is 0.
func RelativeBase(rb Cell) Option {
	return func(p *Process) error {
		p.rb = rb
		return nil
	}
}

// SetOptions sets the provided options.
func (p *Process) SetOptions(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return err
		}
	}
	return nil
}

// New creates a new process with the given id.
//
// The image is copied into the process memory. in and out are the process
// I/O ports; a nil port never yields data or discards output. New registers
// the process as the consumer of its input port.
//
// Options will be set by calling SetOptions.
func New(id PID, image []Cell, in InputPort, out OutputPort, opts ...Option) (*Process, error) {
	if in == nil {
		in = nullPort{}
	}
	if out == nil {
		out = nullPort{}
	}
	p := &Process{
		id:    id,
		mem:   Memory(image).Clone(),
		in:    in,
		out:   out,
		state: Ready,
	}
	if p.mem == nil {
		p.mem = Memory{}
	}
	if err := p.SetOptions(opts...); err != nil {
		return nil, err
	}
	in.RegisterConsumer(id)
	return p, nil
}

// ID returns the process id.
func (p *Process) ID() PID { return p.id }

// State returns the lifecycle state of the process.
func (p *Process) State() State { return p.state }

// PC returns the instruction pointer.
func (p *Process) PC() int { return p.pc }

// RelativeBase returns the value of the relative base register.
func (p *Process) RelativeBase() Cell { return p.rb }

// Steps returns the number of instructions executed so far.
func (p *Process) Steps() int64 { return p.steps }

// Memory returns the process memory. The returned slice is only valid until
// the next call to Run.
func (p *Process) Memory() Memory { return p.mem }

// Err returns the fatal error that stopped the process, if any.
func (p *Process) Err() error { return p.err }

// Wake moves a blocked process back to the Ready state. It returns false if
// the process was not blocked, in which case nothing changes.
func (p *Process) Wake() bool {
	if p.state != Block {
		return false
	}
	p.state = Ready
	return true
}
