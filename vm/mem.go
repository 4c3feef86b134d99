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

// Cell is the raw type stored in a memory location.
type Cell int64

// MaxAddress is the highest memory address a process may access. It caps the
// memory of a process at 16M cells.
const MaxAddress = 1<<24 - 1

// Memory is the growable memory of a process. Conceptually infinite: cells
// past the end read as 0.
type Memory []Cell

// grow extends m with zeroes so that addr is a valid index.
func (m *Memory) grow(addr int) {
	if addr < len(*m) {
		return
	}
	*m = append(*m, make([]Cell, addr+1-len(*m))...)
}

// Read returns the value at address addr. Reading past the end of memory
// extends it up to and including addr and returns 0.
func (m *Memory) Read(addr int) Cell {
	m.grow(addr)
	return (*m)[addr]
}

// Write stores v at address addr, extending memory as needed.
func (m *Memory) Write(addr int, v Cell) {
	m.grow(addr)
	(*m)[addr] = v
}

// Clone returns a copy of m.
func (m Memory) Clone() Memory {
	if m == nil {
		return nil
	}
	c := make(Memory, len(m))
	copy(c, m)
	return c
}
