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
	"io"
	"strconv"

	"github.com/db47h/intcode/internal/errw"
)

// Snapshot is the observable state of a process after a run.
type Snapshot struct {
	ID     PID    `cbor:"1,keyasint"`
	State  State  `cbor:"2,keyasint"`
	Steps  int64  `cbor:"3,keyasint"`
	PC     int    `cbor:"4,keyasint"`
	Memory Memory `cbor:"5,keyasint"`
}

// Snapshot returns a snapshot of the process. The memory is copied.
func (p *Process) Snapshot() Snapshot {
	return Snapshot{
		ID:     p.id,
		State:  p.state,
		Steps:  p.steps,
		PC:     p.pc,
		Memory: p.mem.Clone(),
	}
}

// Dump writes a human readable form of the snapshot to w: a header line with
// the process id, state, step count and pc, followed by the memory image as
// comma separated values.
func (s *Snapshot) Dump(w io.Writer) error {
	ew := errw.New(w)
	ew.WriteString("process ")
	ew.WriteString(strconv.Itoa(int(s.ID)))
	ew.WriteString(" ")
	ew.WriteString(s.State.String())
	ew.WriteString(" steps=")
	ew.WriteString(strconv.FormatInt(s.Steps, 10))
	ew.WriteString(" pc=")
	ew.WriteString(strconv.Itoa(s.PC))
	ew.WriteByte('\n')
	l := len(s.Memory) - 1
	if l >= 0 {
		for i := 0; i < l; i++ {
			ew.WriteString(strconv.FormatInt(int64(s.Memory[i]), 10))
			ew.WriteByte(',')
		}
		ew.WriteString(strconv.FormatInt(int64(s.Memory[l]), 10))
	}
	ew.WriteByte('\n')
	return ew.Err
}
