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

// Package computer runs groups of IntCode processes connected through ports.
//
// A Computer owns a registry of processes and an arena of ports, both
// addressed by integer ids. RunAll schedules a group of processes
// cooperatively on the calling goroutine: exactly one process executes at a
// time, until it halts or blocks on input. A Group runs each process on its
// own goroutine with mutex guarded ports. Both honor the same semantics:
// FIFO port ordering and the Ready/Block/Halt state machine of package vm.
package computer

import (
	"github.com/pkg/errors"
	"github.com/tliron/commonlog"

	"github.com/db47h/intcode/port"
	"github.com/db47h/intcode/vm"
)

var log = commonlog.GetLogger("intcode.computer")

// Scheduling errors.
var (
	ErrUnknownProcess = errors.New("running unknown process")
	ErrUnknownPort    = errors.New("unknown port")
)

// PortID identifies a port in a Computer.
type PortID int

type portSlot struct {
	in   vm.InputPort
	out  vm.OutputPort
	fifo *port.FIFO // nil for external devices
}

// Computer is a registry of processes and ports. A Computer is not safe for
// concurrent use.
type Computer struct {
	procs []*vm.Process // nil entries are free slots
	free  []vm.PID
	ports []portSlot
	trace bool
}

// Option interface
type Option func(*Computer)

// Trace enables per-instruction debug logging for every process created
// afterwards.
func Trace(enable bool) Option {
	return func(c *Computer) { c.trace = enable }
}

// New returns a new empty Computer.
func New(opts ...Option) *Computer {
	c := &Computer{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewPort creates a FIFO port preloaded with values and returns its id.
func (c *Computer) NewPort(values ...vm.Cell) PortID {
	f := port.NewFIFO(values...)
	c.ports = append(c.ports, portSlot{in: f, out: f, fifo: f})
	return PortID(len(c.ports) - 1)
}

// Attach registers an external device as a port and returns its id. The
// device must implement vm.InputPort, vm.OutputPort or both.
func (c *Computer) Attach(dev interface{}) (PortID, error) {
	var s portSlot
	s.in, _ = dev.(vm.InputPort)
	s.out, _ = dev.(vm.OutputPort)
	s.fifo, _ = dev.(*port.FIFO)
	if s.in == nil && s.out == nil {
		return -1, errors.Errorf("%T implements neither vm.InputPort nor vm.OutputPort", dev)
	}
	c.ports = append(c.ports, s)
	return PortID(len(c.ports) - 1), nil
}

func (c *Computer) port(id PortID) (*portSlot, error) {
	if id < 0 || int(id) >= len(c.ports) {
		return nil, errors.Wrapf(ErrUnknownPort, "port %d", id)
	}
	return &c.ports[id], nil
}

// Port returns the FIFO behind a port created with NewPort, or nil if the id
// is unknown or refers to an attached device.
func (c *Computer) Port(id PortID) *port.FIFO {
	s, err := c.port(id)
	if err != nil {
		return nil
	}
	return s.fifo
}

// Feed appends values to the port id and wakes its registered consumer.
func (c *Computer) Feed(id PortID, values ...vm.Cell) error {
	s, err := c.port(id)
	if err != nil {
		return err
	}
	if s.out == nil {
		return errors.Errorf("port %d does not accept values", id)
	}
	for _, v := range values {
		if err = s.out.Put(v); err != nil {
			return errors.Wrapf(err, "feeding port %d", id)
		}
	}
	if pid, ok := s.out.WaitingConsumer(); ok && len(values) > 0 {
		c.Wake(pid)
	}
	return nil
}

// NewProcess creates a process running a copy of image, with ports in and out
// as input and output. Ids of retired processes are reused before new ones
// are allocated.
func (c *Computer) NewProcess(image []vm.Cell, in, out PortID, opts ...vm.Option) (vm.PID, error) {
	inSlot, err := c.port(in)
	if err != nil {
		return -1, err
	}
	if inSlot.in == nil {
		return -1, errors.Errorf("port %d is not an input port", in)
	}
	outSlot, err := c.port(out)
	if err != nil {
		return -1, err
	}
	if outSlot.out == nil {
		return -1, errors.Errorf("port %d is not an output port", out)
	}

	var pid vm.PID
	if n := len(c.free); n > 0 {
		pid = c.free[n-1]
	} else {
		pid = vm.PID(len(c.procs))
	}
	opts = append([]vm.Option{vm.Trace(c.trace), vm.OnWake(c)}, opts...)
	p, err := vm.New(pid, image, inSlot.in, outSlot.out, opts...)
	if err != nil {
		return -1, err
	}
	if n := len(c.free); n > 0 {
		c.free = c.free[:n-1]
		c.procs[pid] = p
	} else {
		c.procs = append(c.procs, p)
	}
	return pid, nil
}

// Process returns the process with the given id, or nil.
func (c *Computer) Process(pid vm.PID) *vm.Process {
	if pid < 0 || int(pid) >= len(c.procs) {
		return nil
	}
	return c.procs[pid]
}

func (c *Computer) process(pid vm.PID) (*vm.Process, error) {
	p := c.Process(pid)
	if p == nil {
		return nil, errors.Wrapf(ErrUnknownProcess, "process %d", pid)
	}
	return p, nil
}

// Wake moves the process pid from Block to Ready. It is a no-op for any other
// state or an unknown process.
func (c *Computer) Wake(pid vm.PID) {
	p := c.Process(pid)
	if p == nil {
		return
	}
	if p.Wake() && c.trace {
		log.Debugf("process %d woken up", pid)
	}
}

// Run runs the process pid until it halts or blocks. See vm.Process.Run.
func (c *Computer) Run(pid vm.PID) (vm.Outcome, error) {
	p, err := c.process(pid)
	if err != nil {
		return vm.Failed, err
	}
	return p.Run()
}

// Retire removes the process pid from the registry and returns its final
// snapshot. Its slot will be reused by NewProcess.
func (c *Computer) Retire(pid vm.PID) (vm.Snapshot, error) {
	p, err := c.process(pid)
	if err != nil {
		return vm.Snapshot{}, err
	}
	s := p.Snapshot()
	c.procs[pid] = nil
	c.free = append(c.free, pid)
	return s, nil
}
