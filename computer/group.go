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
	"context"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/db47h/intcode/vm"
)

// Group runs processes in parallel, one goroutine per process. Ports shared
// between processes of a Group must be safe for concurrent use, like
// port.Locked.
//
// A process blocked on input parks its goroutine until another process of
// the group outputs to its input port. The group completes when every
// process is either halted or parked with no pending wake up.
type Group struct {
	mu      sync.Mutex
	cond    *sync.Cond
	procs   []*vm.Process
	parked  []bool // goroutine waiting for a wake up
	kicked  []bool // wake up received while not parked
	active  int
	done    bool
	started bool
	trace   bool
}

// NewGroup returns a new empty Group. If trace is true, processes log every
// instruction they execute.
func NewGroup(trace bool) *Group {
	g := &Group{trace: trace}
	g.cond = sync.NewCond(&g.mu)
	return g
}

// Add creates a new process in the group. Process ids are allocated
// sequentially from 0.
func (g *Group) Add(image []vm.Cell, in vm.InputPort, out vm.OutputPort, opts ...vm.Option) (vm.PID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.started {
		return -1, errors.New("group already started")
	}
	pid := vm.PID(len(g.procs))
	opts = append([]vm.Option{vm.Trace(g.trace), vm.OnWake(g)}, opts...)
	p, err := vm.New(pid, image, in, out, opts...)
	if err != nil {
		return -1, err
	}
	g.procs = append(g.procs, p)
	g.parked = append(g.parked, false)
	g.kicked = append(g.kicked, false)
	return pid, nil
}

// Wake implements vm.Waker.
func (g *Group) Wake(pid vm.PID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := int(pid)
	if i < 0 || i >= len(g.procs) {
		return
	}
	if g.parked[i] {
		g.parked[i] = false
		g.active++
		g.cond.Broadcast()
		if g.trace {
			log.Debugf("process %d woken up", pid)
		}
		return
	}
	g.kicked[i] = true
}

// stop marks the group as done. Parked goroutines return.
func (g *Group) stop() {
	g.mu.Lock()
	g.done = true
	g.cond.Broadcast()
	g.mu.Unlock()
}

// park waits for a wake up of process i. It returns false if the group is
// done.
func (g *Group) park(i int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.kicked[i] {
		g.kicked[i] = false
		return true
	}
	g.parked[i] = true
	g.active--
	if g.active == 0 {
		g.done = true
		g.cond.Broadcast()
	}
	for g.parked[i] && !g.done {
		g.cond.Wait()
	}
	if g.parked[i] {
		return false
	}
	g.kicked[i] = false
	return true
}

func (g *Group) halted() {
	g.mu.Lock()
	g.active--
	if g.active == 0 {
		g.done = true
		g.cond.Broadcast()
	}
	g.mu.Unlock()
}

func (g *Group) worker(i int) error {
	p := g.procs[i]
	for {
		o, err := p.Run()
		if err != nil {
			return err
		}
		if o == vm.Halted {
			g.halted()
			return nil
		}
		if !g.park(i) {
			return nil
		}
		p.Wake()
	}
}

// Run starts all processes and waits for the group to complete. A Group can
// only be run once.
//
// The first fatal error stops the group and is returned; processes that are
// running at that time stop at their next suspension point. Canceling ctx
// also stops the group, in which case ctx.Err() is returned.
func (g *Group) Run(ctx context.Context) (Snapshots, error) {
	g.mu.Lock()
	if g.started {
		g.mu.Unlock()
		return nil, errors.New("group already started")
	}
	g.started = true
	g.active = len(g.procs)
	g.mu.Unlock()

	eg, ectx := errgroup.WithContext(ctx)
	stop := context.AfterFunc(ectx, g.stop)
	defer stop()
	for i := range g.procs {
		i := i
		eg.Go(func() error { return g.worker(i) })
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snaps := make(Snapshots, len(g.procs))
	for i, p := range g.procs {
		snaps[i] = p.Snapshot()
	}
	return snaps, nil
}
