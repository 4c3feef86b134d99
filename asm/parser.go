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
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/db47h/intcode/vm"
)

var asmLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `;[^\n]*`},
	{Name: "EOL", Pattern: `\n`},
	{Name: "Space", Pattern: `[ \t\r]+`},
	{Name: "Label", Pattern: `[A-Za-z_][A-Za-z0-9_]*:`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Int", Pattern: `[-+]?[0-9]+`},
	{Name: "Punct", Pattern: `[#@,]`},
})

type source struct {
	Lines []*line `@@*`
}

type line struct {
	Pos   lexer.Position
	Label string     `@Label?`
	Op    string     `( @Ident`
	Args  []*operand `  ( @@ ( "," @@ )* )? )? EOL`
}

type operand struct {
	Pos    lexer.Position
	Mode   string `@( "#" | "@" )?`
	Value  *int64 `( @Int`
	Ref    string `| @Ident`
	Offset int64  `  @Int? )`
}

var asmParser = participle.MustBuild[source](
	participle.Lexer(asmLexer),
	participle.Elide("Space", "Comment"),
)

// Error is a single assembly error.
type Error struct {
	Pos lexer.Position
	Msg string
}

func (e *Error) Error() string {
	return e.Pos.String() + ": " + e.Msg
}

// ErrAsm is the error type returned by Assemble. It holds up to 10 errors,
// in source order.
type ErrAsm []Error

func (e ErrAsm) Error() string {
	var b strings.Builder
	for i := range e {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(e[i].Error())
	}
	return b.String()
}

const maxErrors = 10

type assembler struct {
	img    []vm.Cell
	labels map[string]int
	errs   ErrAsm
}

func (a *assembler) errorf(pos lexer.Position, format string, args ...interface{}) {
	if len(a.errs) < maxErrors {
		a.errs = append(a.errs, Error{pos, fmt.Sprintf(format, args...)})
	}
}

// size returns the number of cells emitted by l.
func (a *assembler) size(l *line) int {
	if l.Op == "" {
		return 0
	}
	if l.Op == "data" {
		return len(l.Args)
	}
	op, ok := vm.Lookup(l.Op)
	if !ok {
		a.errorf(l.Pos, "unknown mnemonic %s", l.Op)
		return len(l.Args) + 1
	}
	if n := op.Operands(); n != len(l.Args) {
		a.errorf(l.Pos, "%s expects %d operands, got %d", l.Op, n, len(l.Args))
	}
	return op.Operands() + 1
}

func (a *assembler) value(o *operand) vm.Cell {
	if o.Value != nil {
		return vm.Cell(*o.Value)
	}
	addr, ok := a.labels[o.Ref]
	if !ok {
		a.errorf(o.Pos, "undefined label %s", o.Ref)
		return 0
	}
	return vm.Cell(addr) + vm.Cell(o.Offset)
}

func mode(o *operand) vm.Mode {
	switch o.Mode {
	case "#":
		return vm.Immediate
	case "@":
		return vm.Relative
	}
	return vm.Position
}

func (a *assembler) emit(l *line) {
	switch l.Op {
	case "":
		return
	case "data":
		for _, o := range l.Args {
			if o.Mode != "" {
				a.errorf(o.Pos, "addressing mode %s not allowed in data", o.Mode)
			}
			a.img = append(a.img, a.value(o))
		}
		return
	}
	op, ok := vm.Lookup(l.Op)
	if !ok || op.Operands() != len(l.Args) {
		// already reported
		a.img = append(a.img, make([]vm.Cell, a.size(l))...)
		return
	}
	modes := make([]vm.Mode, len(l.Args))
	args := make([]vm.Cell, len(l.Args))
	for i, o := range l.Args {
		modes[i] = mode(o)
		if modes[i] == vm.Immediate && op.Writes(i) {
			a.errorf(o.Pos, "immediate mode on write operand of %s", l.Op)
		}
		args[i] = a.value(o)
	}
	a.img = append(a.img, vm.Encode(op, modes...))
	a.img = append(a.img, args...)
}

func (a *assembler) assemble(name string, r io.Reader) ([]vm.Cell, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	src := string(b)
	if !strings.HasSuffix(src, "\n") {
		src += "\n"
	}
	ast, err := asmParser.ParseString(name, src)
	if err != nil {
		if pe, ok := err.(participle.Error); ok {
			return nil, ErrAsm{{pe.Position(), pe.Message()}}
		}
		return nil, err
	}

	// pass 1: labels
	pc := 0
	for _, l := range ast.Lines {
		if l.Label != "" {
			name := strings.TrimSuffix(l.Label, ":")
			if _, ok := a.labels[name]; ok {
				a.errorf(l.Pos, "duplicate label %s", name)
			}
			a.labels[name] = pc
		}
		pc += a.size(l)
	}
	if len(a.errs) > 0 {
		return nil, a.errs
	}

	// pass 2: code
	a.img = make([]vm.Cell, 0, pc)
	for _, l := range ast.Lines {
		a.emit(l)
	}
	if len(a.errs) > 0 {
		return nil, a.errs
	}
	return a.img, nil
}
