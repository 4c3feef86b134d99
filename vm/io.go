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

// InputPort is the data source of a process.
//
// Get returns the next value and true, or false if no value is available yet.
// A false return is not an error: the consuming process blocks until woken.
//
// RegisterConsumer is called once by New so that producers writing to the
// same port know which process to wake. A port has at most one consumer.
type InputPort interface {
	Get() (Cell, bool)
	RegisterConsumer(pid PID)
}

// OutputPort is the data sink of a process.
//
// Put appends a value to the port. An error returned by Put is fatal to the
// producing process.
//
// WaitingConsumer returns the id of the process registered as consumer of
// the port, if any.
type OutputPort interface {
	Put(v Cell) error
	WaitingConsumer() (PID, bool)
}

// Waker is implemented by schedulers. After a successful output, a process
// calls Wake with the id of the port's registered consumer.
type Waker interface {
	Wake(pid PID)
}

// WakerFunc is an adapter to use ordinary functions as Wakers.
type WakerFunc func(pid PID)

// Wake calls f(pid).
func (f WakerFunc) Wake(pid PID) { f(pid) }

// nullPort is used when a process is created without input or output. It
// never has data and discards output.
type nullPort struct{}

func (nullPort) Get() (Cell, bool)            { return 0, false }
func (nullPort) RegisterConsumer(PID)         {}
func (nullPort) Put(Cell) error               { return nil }
func (nullPort) WaitingConsumer() (PID, bool) { return 0, false }
