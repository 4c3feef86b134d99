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

package asm

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/db47h/intcode/internal/errw"
	"github.com/db47h/intcode/vm"
)

// ErrEmpty is returned by Parse when the program text is empty.
var ErrEmpty = errors.New("empty program")

// Parse reads a program in the comma separated text format. White space
// around values, including new lines, is ignored.
func Parse(r io.Reader) ([]vm.Cell, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read failed")
	}
	s := strings.TrimSpace(string(b))
	if s == "" {
		return nil, ErrEmpty
	}
	fields := strings.Split(s, ",")
	img := make([]vm.Cell, len(fields))
	for i, f := range fields {
		n, err := strconv.ParseInt(strings.TrimSpace(f), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "value #%d", i)
		}
		img[i] = vm.Cell(n)
	}
	return img, nil
}

// ParseFile loads a program in the comma separated text format from file
// fileName.
func ParseFile(fileName string) ([]vm.Cell, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrap(err, "open failed")
	}
	defer f.Close()
	img, err := Parse(f)
	return img, errors.Wrap(err, fileName)
}

// ParseString is a shorthand for Parse(strings.NewReader(s)).
func ParseString(s string) ([]vm.Cell, error) {
	return Parse(strings.NewReader(s))
}

// Format writes mem to w in the comma separated text format, followed by a new
// line.
func Format(w io.Writer, mem []vm.Cell) error {
	ew := errw.New(w)
	for i, v := range mem {
		if i > 0 {
			ew.WriteByte(',')
		}
		ew.WriteString(strconv.FormatInt(int64(v), 10))
	}
	ew.WriteByte('\n')
	return ew.Err
}

// Assemble compiles assembly read from the supplied io.Reader and returns the
// resulting image and error if any.
//
// Then name parameter is used only in error messages to name the source of the
// error. If the io.Reader is a file, name should be the file name.
//
// The returned error, if not nil, is an ErrAsm value unless reading from r
// failed.
func Assemble(name string, r io.Reader) ([]vm.Cell, error) {
	a := &assembler{labels: make(map[string]int)}
	return a.assemble(name, r)
}

// Disassemble writes a disassembly of the instruction at position pc in mem
// to the specified io.Writer and returns the position of the next instruction
// and any write error. Cells that do not decode to a valid instruction are
// written as a data directive.
func Disassemble(mem []vm.Cell, pc int, w io.Writer) (next int, err error) {
	ew := errw.New(w)
	in, derr := vm.Decode(mem, pc)
	if derr != nil {
		if pc < 0 || pc >= len(mem) {
			return pc, ew.Err
		}
		ew.WriteString("data ")
		ew.WriteString(strconv.FormatInt(int64(mem[pc]), 10))
		return pc + 1, ew.Err
	}
	ew.WriteString(in.String())
	return pc + in.Len(), ew.Err
}

// DisassembleAll writes a disassembly of all cells in mem to the specified
// io.Writer, one instruction per line, prefixed with its address.
func DisassembleAll(mem []vm.Cell, w io.Writer) error {
	ew := errw.New(w)
	for pc := 0; pc < len(mem); {
		fmt.Fprintf(ew, "% 6d\t", pc)
		pc, _ = Disassemble(mem, pc, ew)
		ew.WriteByte('\n')
		if ew.Err != nil {
			return ew.Err
		}
	}
	return nil
}

// DisassembleString returns the disassembly of mem as a string.
func DisassembleString(mem []vm.Cell) string {
	var b bytes.Buffer
	DisassembleAll(mem, &b)
	return b.String()
}
