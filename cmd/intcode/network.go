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

package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/db47h/intcode/asm"
	"github.com/db47h/intcode/computer"
	"github.com/db47h/intcode/internal/errw"
	"github.com/db47h/intcode/port"
	"github.com/db47h/intcode/vm"
)

// Network run modes.
const (
	modeSequential = "sequential"
	modeParallel   = "parallel"
)

type portConfig struct {
	Values []int64 `toml:"values"`
}

type processConfig struct {
	Name   string `toml:"name"`
	Image  string `toml:"image"`
	Asm    bool   `toml:"asm"`
	Input  string `toml:"input"`
	Output string `toml:"output"`
}

// networkConfig describes a group of processes connected through named ports.
//
//	mode = "sequential"  # or "parallel"
//	start = "A"          # first process to run, sequential mode only
//
//	[ports.a]
//	values = [9, 0]
//
//	[[process]]
//	name = "A"
//	image = "amp.txt"    # relative to the config file
//	input = "a"
//	output = "b"
type networkConfig struct {
	Mode      string                `toml:"mode"`
	Start     string                `toml:"start"`
	Ports     map[string]portConfig `toml:"ports"`
	Processes []processConfig       `toml:"process"`

	images map[string][]vm.Cell // by process name
}

func loadNetwork(fileName string) (*networkConfig, error) {
	n := &networkConfig{}
	md, err := toml.DecodeFile(fileName, n)
	if err != nil {
		return nil, errors.Wrap(err, fileName)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return nil, errors.Errorf("%s: unknown key %s", fileName, keys[0])
	}
	if err = n.validate(); err != nil {
		return nil, errors.Wrap(err, fileName)
	}
	if err = n.loadImages(filepath.Dir(fileName)); err != nil {
		return nil, errors.Wrap(err, fileName)
	}
	return n, nil
}

func (n *networkConfig) validate() error {
	switch n.Mode {
	case "":
		n.Mode = modeSequential
	case modeSequential, modeParallel:
	default:
		return errors.Errorf("unknown mode %q", n.Mode)
	}
	if len(n.Processes) == 0 {
		return errors.New("no processes")
	}
	if n.Start == "" {
		n.Start = n.Processes[0].Name
	}
	names := make(map[string]bool)
	consumers := make(map[string]string)
	for _, p := range n.Processes {
		if p.Name == "" {
			return errors.New("unnamed process")
		}
		if names[p.Name] {
			return errors.Errorf("duplicate process %s", p.Name)
		}
		names[p.Name] = true
		if p.Image == "" {
			return errors.Errorf("process %s: no image", p.Name)
		}
		for _, id := range []string{p.Input, p.Output} {
			if _, ok := n.Ports[id]; !ok {
				return errors.Errorf("process %s: undefined port %q", p.Name, id)
			}
		}
		if c, ok := consumers[p.Input]; ok {
			return errors.Errorf("port %s is the input of both %s and %s", p.Input, c, p.Name)
		}
		consumers[p.Input] = p.Name
	}
	if !names[n.Start] {
		return errors.Errorf("undefined start process %s", n.Start)
	}
	return nil
}

func (n *networkConfig) loadImages(dir string) error {
	type key struct {
		path string
		asm  bool
	}
	cache := make(map[key][]vm.Cell)
	n.images = make(map[string][]vm.Cell)
	for _, p := range n.Processes {
		k := key{p.Image, p.Asm}
		if !filepath.IsAbs(k.path) {
			k.path = filepath.Join(dir, k.path)
		}
		img, ok := cache[k]
		if !ok {
			var err error
			if k.asm {
				img, err = assembleFile(k.path)
			} else {
				img, err = asm.ParseFile(k.path)
			}
			if err != nil {
				return errors.Wrapf(err, "process %s", p.Name)
			}
			cache[k] = img
		}
		n.images[p.Name] = img
	}
	return nil
}

func assembleFile(name string) ([]vm.Cell, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "open failed")
	}
	defer f.Close()
	return asm.Assemble(name, f)
}

func (n *networkConfig) portNames() []string {
	names := make([]string, 0, len(n.Ports))
	for name := range n.Ports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func cells(v []int64) []vm.Cell {
	c := make([]vm.Cell, len(v))
	for i := range v {
		c[i] = vm.Cell(v[i])
	}
	return c
}

type networkResult struct {
	snapshots computer.Snapshots
	names     map[vm.PID]string
	ports     map[string][]vm.Cell // values left in each port
	portNames []string
}

func (n *networkConfig) run(trace bool) (*networkResult, error) {
	if n.Mode == modeParallel {
		return n.runParallel(trace)
	}
	c := computer.New(computer.Trace(trace))
	res := &networkResult{
		names:     make(map[vm.PID]string),
		ports:     make(map[string][]vm.Cell),
		portNames: n.portNames(),
	}
	ids := make(map[string]computer.PortID)
	for _, name := range res.portNames {
		ids[name] = c.NewPort(cells(n.Ports[name].Values)...)
	}
	var (
		pids  []vm.PID
		start vm.PID
	)
	for _, p := range n.Processes {
		pid, err := c.NewProcess(n.images[p.Name], ids[p.Input], ids[p.Output])
		if err != nil {
			return nil, errors.Wrapf(err, "process %s", p.Name)
		}
		pids = append(pids, pid)
		res.names[pid] = p.Name
		if p.Name == n.Start {
			start = pid
		}
	}
	snaps, err := c.RunAll(pids, start)
	if err != nil {
		return nil, res.wrap(err)
	}
	res.snapshots = snaps
	for name, id := range ids {
		res.ports[name] = c.Port(id).Values()
	}
	return res, nil
}

func (n *networkConfig) runParallel(trace bool) (*networkResult, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g := computer.NewGroup(trace)
	res := &networkResult{
		names:     make(map[vm.PID]string),
		ports:     make(map[string][]vm.Cell),
		portNames: n.portNames(),
	}
	ports := make(map[string]*port.Locked)
	for _, name := range res.portNames {
		ports[name] = port.NewLocked(cells(n.Ports[name].Values)...)
	}
	for _, p := range n.Processes {
		pid, err := g.Add(n.images[p.Name], ports[p.Input], ports[p.Output])
		if err != nil {
			return nil, errors.Wrapf(err, "process %s", p.Name)
		}
		res.names[pid] = p.Name
	}
	snaps, err := g.Run(ctx)
	if err != nil {
		return nil, res.wrap(err)
	}
	res.snapshots = snaps
	for name, p := range ports {
		res.ports[name] = p.Values()
	}
	return res, nil
}

// wrap adds the name of the failing process to a fatal error.
func (r *networkResult) wrap(err error) error {
	if e, ok := err.(*vm.Error); ok {
		return errors.Wrapf(err, "process %s", r.names[e.PID])
	}
	return err
}

// print writes the values left in non empty ports to w, one port per line.
func (r *networkResult) print(w io.Writer) error {
	for _, s := range r.snapshots {
		log.Infof("process %s %v after %d steps", r.names[s.ID], s.State, s.Steps)
	}
	if r.snapshots.Stalled() {
		log.Warning("all processes blocked on input")
	}
	ew := errw.New(w)
	for _, name := range r.portNames {
		v := r.ports[name]
		if len(v) == 0 {
			continue
		}
		ew.WriteString(name)
		ew.WriteString(": ")
		asm.Format(ew, v)
	}
	return ew.Err
}
