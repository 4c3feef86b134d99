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

package computer

import (
	"github.com/pkg/errors"

	"github.com/db47h/intcode/vm"
)

// Snapshots holds the final snapshots of a group of processes, in the order
// the processes were given.
type Snapshots []vm.Snapshot

// Get returns the snapshot of process pid.
func (s Snapshots) Get(pid vm.PID) (vm.Snapshot, bool) {
	for i := range s {
		if s[i].ID == pid {
			return s[i], true
		}
	}
	return vm.Snapshot{}, false
}

// Stalled returns true if no process halted, i.e. every process ended
// blocked on input. This is how a total deadlock looks like.
func (s Snapshots) Stalled() bool {
	for i := range s {
		if s[i].State == vm.Halt {
			return false
		}
	}
	return len(s) > 0
}

// RunAll runs the given processes in a round robin fashion, starting with
// process start, until none of them is Ready.
//
// After each run slice, the next process to run is the first Ready one found
// after the current process in pids, wrapping around. When no process is
// Ready, the processes are retired from the registry and their snapshots
// returned. A group where every process is blocked ends the same way as one
// where all processes halted; use Snapshots.Stalled to tell them apart.
//
// Any fatal error aborts the whole group and is returned as is. In this
// case, no process is retired.
func (c *Computer) RunAll(pids []vm.PID, start vm.PID) (Snapshots, error) {
	cur := -1
	for i, pid := range pids {
		if _, err := c.process(pid); err != nil {
			return nil, err
		}
		if pid == start && cur < 0 {
			cur = i
		}
	}
	if cur < 0 {
		return nil, errors.Wrapf(ErrUnknownProcess, "start process %d not in group", start)
	}

	for cur >= 0 {
		pid := pids[cur]
		o, err := c.procs[pid].Run()
		if err != nil {
			return nil, err
		}
		if c.trace {
			log.Debugf("process %d: %v", pid, o)
		}
		cur = c.nextReady(pids, cur)
	}

	snaps := make(Snapshots, 0, len(pids))
	for _, pid := range pids {
		if c.procs[pid] == nil {
			// listed twice
			continue
		}
		s, err := c.Retire(pid)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, s)
	}
	return snaps, nil
}

// nextReady returns the index in pids of the first Ready process after cur,
// wrapping around, or -1.
func (c *Computer) nextReady(pids []vm.PID, cur int) int {
	for i := 1; i <= len(pids); i++ {
		j := (cur + i) % len(pids)
		if c.procs[pids[j]].State() == vm.Ready {
			return j
		}
	}
	return -1
}

// Execute runs a single process on image with the given input values until it
// halts or blocks. It returns the final memory and everything written to the
// output port.
func Execute(image []vm.Cell, inputs ...vm.Cell) (vm.Memory, []vm.Cell, error) {
	c := New()
	in, out := c.NewPort(inputs...), c.NewPort()
	pid, err := c.NewProcess(image, in, out)
	if err != nil {
		return nil, nil, err
	}
	snaps, err := c.RunAll([]vm.PID{pid}, pid)
	if err != nil {
		return nil, nil, err
	}
	return snaps[0].Memory, c.Port(out).Values(), nil
}
