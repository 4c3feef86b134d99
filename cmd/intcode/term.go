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
	"bufio"
	"io"
	"unicode"
	"unicode/utf8"
)

const (
	ctrlD = 4
	del   = 127
)

// flushWriter flushes the underlying buffer after each write so that
// interactive output is visible before the next read from the terminal.
type flushWriter struct {
	w *bufio.Writer
}

func (f flushWriter) Write(p []byte) (int, error) {
	n, err := f.w.Write(p)
	if err == nil {
		err = f.w.Flush()
	}
	return n, err
}

// lineEditor does minimal line editing on a terminal in raw mode: typed
// characters are echoed, backspace erases the last one, and CTRL-D on an
// empty line ends input. Lines are made available to Read once complete.
type lineEditor struct {
	r       io.RuneReader
	echo    io.Writer
	line    []byte
	pending []byte
	eof     bool
}

func newLineEditor(r io.Reader, echo io.Writer) *lineEditor {
	return &lineEditor{r: bufio.NewReader(r), echo: echo}
}

func (e *lineEditor) Read(p []byte) (int, error) {
	for len(e.pending) == 0 {
		if e.eof {
			return 0, io.EOF
		}
		if err := e.readLine(); err != nil {
			return 0, err
		}
	}
	n := copy(p, e.pending)
	e.pending = e.pending[n:]
	return n, nil
}

func (e *lineEditor) readLine() error {
	for {
		r, _, err := e.r.ReadRune()
		if err == io.EOF {
			e.eof = true
			e.pending, e.line = e.line, nil
			return nil
		}
		if err != nil {
			return err
		}
		switch {
		case r == ctrlD:
			if len(e.line) == 0 {
				e.eof = true
				return nil
			}
		case r == '\b' || r == del:
			if len(e.line) > 0 {
				_, size := utf8.DecodeLastRune(e.line)
				e.line = e.line[:len(e.line)-size]
				io.WriteString(e.echo, "\b \b")
			}
		case r == '\r' || r == '\n':
			e.line = append(e.line, '\n')
			io.WriteString(e.echo, "\n")
			e.pending, e.line = e.line, nil
			return nil
		case r == '\t' || unicode.IsPrint(r):
			l := len(e.line)
			e.line = utf8.AppendRune(e.line, r)
			e.echo.Write(e.line[l:])
		}
	}
}
