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

// Package port provides FIFO buffers implementing both vm.InputPort and
// vm.OutputPort.
//
// The same port type serves as a preloaded input for a single process, as an
// output collector, or as a link between the output of one process and the
// input of another. At most one process may consume a given port; this is not
// checked.
package port

import (
	"sync"

	"github.com/db47h/intcode/vm"
)

// FIFO is a queue of values with an optional registered consumer. The zero
// value is an empty FIFO with no consumer.
type FIFO struct {
	q        []vm.Cell
	head     int
	consumer vm.PID
	hasCons  bool
}

// NewFIFO returns a new FIFO preloaded with values.
func NewFIFO(values ...vm.Cell) *FIFO {
	f := &FIFO{}
	f.q = append(f.q, values...)
	return f
}

// Get pops the value at the front of the queue.
func (f *FIFO) Get() (vm.Cell, bool) {
	if f.head >= len(f.q) {
		return 0, false
	}
	v := f.q[f.head]
	f.head++
	if f.head == len(f.q) {
		// reuse the backing array once drained
		f.q, f.head = f.q[:0], 0
	}
	return v, true
}

// Put appends v at the back of the queue. It never fails.
func (f *FIFO) Put(v vm.Cell) error {
	f.q = append(f.q, v)
	return nil
}

// RegisterConsumer sets the id of the process consuming this port.
func (f *FIFO) RegisterConsumer(pid vm.PID) {
	f.consumer, f.hasCons = pid, true
}

// WaitingConsumer returns the registered consumer, if any.
func (f *FIFO) WaitingConsumer() (vm.PID, bool) {
	return f.consumer, f.hasCons
}

// Len returns the number of pending values.
func (f *FIFO) Len() int {
	return len(f.q) - f.head
}

// Values returns a copy of the pending values, oldest first.
func (f *FIFO) Values() []vm.Cell {
	v := make([]vm.Cell, f.Len())
	copy(v, f.q[f.head:])
	return v
}

// Drain removes and returns all pending values.
func (f *FIFO) Drain() []vm.Cell {
	v := f.Values()
	f.q, f.head = f.q[:0], 0
	return v
}

// Locked is a FIFO guarded by a mutex. It is safe for concurrent use by a
// producer and a consumer running on different goroutines. The mutex is the
// only synchronization point, so values are observed in the order they were
// put.
type Locked struct {
	mu sync.Mutex
	f  FIFO
}

// NewLocked returns a new Locked FIFO preloaded with values.
func NewLocked(values ...vm.Cell) *Locked {
	l := &Locked{}
	l.f.q = append(l.f.q, values...)
	return l
}

// Get pops the value at the front of the queue.
func (l *Locked) Get() (vm.Cell, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Get()
}

// Put appends v at the back of the queue.
func (l *Locked) Put(v vm.Cell) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Put(v)
}

// RegisterConsumer sets the id of the process consuming this port.
func (l *Locked) RegisterConsumer(pid vm.PID) {
	l.mu.Lock()
	l.f.RegisterConsumer(pid)
	l.mu.Unlock()
}

// WaitingConsumer returns the registered consumer, if any.
func (l *Locked) WaitingConsumer() (vm.PID, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.WaitingConsumer()
}

// Len returns the number of pending values.
func (l *Locked) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Len()
}

// Values returns a copy of the pending values, oldest first.
func (l *Locked) Values() []vm.Cell {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Values()
}

// Drain removes and returns all pending values.
func (l *Locked) Drain() []vm.Cell {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Drain()
}
