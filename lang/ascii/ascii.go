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

// Package ascii provides I/O devices for IntCode programs that talk ASCII:
// each input value is a character code, and output values are character codes
// except for values outside of the ASCII range, which programs use to report
// numeric results.
package ascii

import (
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/db47h/intcode/vm"
)

// Encode returns the character codes of s.
func Encode(s string) []vm.Cell {
	v := make([]vm.Cell, 0, len(s))
	for _, r := range s {
		v = append(v, vm.Cell(r))
	}
	return v
}

// Decode splits values into ASCII text and the remaining non-ASCII values.
func Decode(values []vm.Cell) (text string, rest []vm.Cell) {
	var b strings.Builder
	for _, v := range values {
		if v >= 0 && v < utf8.RuneSelf {
			b.WriteByte(byte(v))
		} else {
			rest = append(rest, v)
		}
	}
	return b.String(), rest
}

// Input is an input device reading characters from a stack of io.Readers.
// When the current reader is exhausted, it is discarded, closed if it
// implements io.Closer, and reading continues with the next one. Get reports
// no data once all readers are exhausted, or after a read error.
//
// Readers are read one byte at a time, so that Input never consumes more than
// the characters it returns.
type Input struct {
	readers  []io.Reader
	consumer vm.PID
	hasCons  bool
	err      error
}

// NewInput returns a new Input reading from the given readers in order.
func NewInput(readers ...io.Reader) *Input {
	in := &Input{}
	for i := len(readers) - 1; i >= 0; i-- {
		in.Push(readers[i])
	}
	return in
}

// Push pushes r on top of the input stack: it will be read before any
// previously pushed reader.
func (in *Input) Push(r io.Reader) {
	in.readers = append([]io.Reader{r}, in.readers...)
}

// readCell decodes a single UTF-8 encoded character from r. An incomplete
// sequence at the end of input decodes as utf8.RuneError.
func readCell(r io.Reader) (vm.Cell, error) {
	var (
		b = [utf8.UTFMax]byte{}
		i = 0
	)
	for i < utf8.UTFMax && !utf8.FullRune(b[:i]) {
		n, err := r.Read(b[i : i+1])
		i += n
		if err != nil {
			if i == 0 {
				return 0, err
			}
			break
		}
	}
	if b[0] < utf8.RuneSelf {
		return vm.Cell(b[0]), nil
	}
	c, _ := utf8.DecodeRune(b[:i])
	return vm.Cell(c), nil
}

// Get returns the next character.
func (in *Input) Get() (vm.Cell, bool) {
	for in.err == nil && len(in.readers) > 0 {
		v, err := readCell(in.readers[0])
		if err == nil {
			return v, true
		}
		if err != io.EOF {
			in.err = errors.Wrap(err, "input read failed")
			break
		}
		if c, ok := in.readers[0].(io.Closer); ok {
			c.Close()
		}
		in.readers = in.readers[1:]
	}
	return 0, false
}

// RegisterConsumer implements vm.InputPort.
func (in *Input) RegisterConsumer(pid vm.PID) {
	in.consumer, in.hasCons = pid, true
}

// Consumer returns the id of the process reading from in.
func (in *Input) Consumer() (vm.PID, bool) {
	return in.consumer, in.hasCons
}

// Err returns the read error that stopped input, if any. Reaching the end of
// all readers is not an error.
func (in *Input) Err() error {
	return in.err
}

type flusher interface {
	Flush() error
}

// Output is an output device writing characters to an io.Writer. Values that
// are not valid ASCII codes are written in decimal on a line of their own.
type Output struct {
	w    io.Writer
	buf  []byte
	last vm.Cell
}

// NewOutput returns a new Output writing to w.
func NewOutput(w io.Writer) *Output {
	return &Output{w: w}
}

// Put implements vm.OutputPort. Each value results in a single write.
func (o *Output) Put(v vm.Cell) error {
	o.buf = o.buf[:0]
	if v >= 0 && v < utf8.RuneSelf {
		o.buf = append(o.buf, byte(v))
	} else {
		if o.last != '\n' && o.last != 0 {
			o.buf = append(o.buf, '\n')
		}
		o.buf = strconv.AppendInt(o.buf, int64(v), 10)
		o.buf = append(o.buf, '\n')
		v = '\n'
	}
	o.last = v
	_, err := o.w.Write(o.buf)
	return errors.Wrap(err, "output write failed")
}

// WaitingConsumer implements vm.OutputPort. Devices never have consumers.
func (o *Output) WaitingConsumer() (vm.PID, bool) {
	return 0, false
}

// Flush flushes the underlying writer if it supports it.
func (o *Output) Flush() error {
	if f, ok := o.w.(flusher); ok {
		return f.Flush()
	}
	return nil
}
