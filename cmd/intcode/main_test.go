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
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/db47h/intcode/computer"
	"github.com/db47h/intcode/vm"
)

const ampLoop = "3,26,1001,26,-4,26,3,27,1002,27,2,27,1,27,26,27,4,27,1001,28,-1,28,1005,28,6,99,0,0,5\n"

const feedback = `
start = "A"

[ports.a]
values = [9, 0]
[ports.b]
values = [8]
[ports.c]
values = [7]
[ports.d]
values = [6]
[ports.e]
values = [5]

[[process]]
name = "A"
image = "amp.txt"
input = "a"
output = "b"

[[process]]
name = "B"
image = "amp.txt"
input = "b"
output = "c"

[[process]]
name = "C"
image = "amp.txt"
input = "c"
output = "d"

[[process]]
name = "D"
image = "amp.txt"
input = "d"
output = "e"

[[process]]
name = "E"
image = "amp.txt"
input = "e"
output = "a"
`

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestNetwork(t *testing.T) {
	for _, mode := range []string{modeSequential, modeParallel} {
		dir := writeFiles(t, map[string]string{
			"amp.txt":  ampLoop,
			"net.toml": "mode = \"" + mode + "\"\n" + feedback,
		})
		n, err := loadNetwork(filepath.Join(dir, "net.toml"))
		require.NoError(t, err, mode)
		res, err := n.run(false)
		require.NoError(t, err, mode)

		require.Len(t, res.snapshots, 5, mode)
		for _, s := range res.snapshots {
			assert.Equal(t, vm.Halt, s.State, "%s: process %s", mode, res.names[s.ID])
		}
		var b bytes.Buffer
		require.NoError(t, res.print(&b))
		assert.Equal(t, "a: 139629729\n", b.String(), mode)
	}
}

func TestNetwork_asm(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"double.s": "\tin\tv\n\tmul\tv, #2, v\n\tout\tv\n\thlt\nv:\tdata\t0\n",
		"net.toml": `
[ports.in]
values = [21]
[ports.out]

[[process]]
name = "double"
image = "double.s"
asm = true
input = "in"
output = "out"
`,
	})
	n, err := loadNetwork(filepath.Join(dir, "net.toml"))
	require.NoError(t, err)
	assert.Equal(t, modeSequential, n.Mode)
	assert.Equal(t, "double", n.Start)
	res, err := n.run(false)
	require.NoError(t, err)
	assert.Equal(t, []vm.Cell{42}, res.ports["out"])
}

func TestNetwork_errors(t *testing.T) {
	tests := []struct {
		name string
		conf string
		msg  string
	}{
		{"mode", "mode = \"random\"\n[[process]]\nname = \"A\"", "unknown mode"},
		{"empty", "[ports.a]", "no processes"},
		{"key", "color = \"blue\"", "unknown key color"},
		{"port", "[[process]]\nname = \"A\"\nimage = \"amp.txt\"\ninput = \"x\"\noutput = \"x\"", "undefined port"},
		{"consumers", "[ports.a]\n[[process]]\nname = \"A\"\nimage = \"amp.txt\"\ninput = \"a\"\noutput = \"a\"\n" +
			"[[process]]\nname = \"B\"\nimage = \"amp.txt\"\ninput = \"a\"\noutput = \"a\"", "input of both A and B"},
		{"start", "start = \"Z\"\n[ports.a]\n[[process]]\nname = \"A\"\nimage = \"amp.txt\"\ninput = \"a\"\noutput = \"a\"", "undefined start"},
		{"image", "[ports.a]\n[[process]]\nname = \"A\"\nimage = \"nope.txt\"\ninput = \"a\"\noutput = \"a\"", "process A"},
	}
	for _, test := range tests {
		dir := writeFiles(t, map[string]string{"amp.txt": ampLoop, "net.toml": test.conf})
		_, err := loadNetwork(filepath.Join(dir, "net.toml"))
		require.Error(t, err, test.name)
		assert.Contains(t, err.Error(), test.msg, test.name)
	}
}

func TestNetwork_fatal(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"bad.txt": "104,1,1105,1,-1\n",
		"net.toml": `
[ports.a]
[[process]]
name = "broken"
image = "bad.txt"
input = "a"
output = "a"
`,
	})
	n, err := loadNetwork(filepath.Join(dir, "net.toml"))
	require.NoError(t, err)
	_, err = n.run(false)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "process broken: "))
	assert.True(t, vm.IsAddressError(err))
}

func TestRunASCII(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.txt": "hi", "b.txt": " there"})
	files, err := openFiles([]string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt")})
	require.NoError(t, err)

	// echo input until a 0 is read
	img := []vm.Cell{3, 100, 1006, 100, 10, 4, 100, 1106, 0, 0, 99}
	var out bytes.Buffer
	snaps, err := runASCII(img, files, strings.NewReader("!\x00"), &out)
	require.NoError(t, err)
	assert.Equal(t, "hi there!", out.String())
	require.Len(t, snaps, 1)
	assert.Equal(t, vm.Halt, snaps[0].State)
	for _, f := range files {
		assert.ErrorIs(t, f.Close(), os.ErrClosed, f.Name())
	}

	_, err = openFiles([]string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "missing.txt")})
	assert.Error(t, err)
}

func TestDump(t *testing.T) {
	snaps := computer.Snapshots{{ID: 1, State: vm.Halt, Steps: 2, PC: 5, Memory: vm.Memory{2, 0, 0, 0, 99}}}

	var b bytes.Buffer
	require.NoError(t, dump(&b, snaps, "text"))
	assert.Equal(t, "process 1 halted steps=2 pc=5\n2,0,0,0,99\n", b.String())

	b.Reset()
	require.NoError(t, dump(&b, snaps, "cbor"))
	var got computer.Snapshots
	require.NoError(t, cbor.Unmarshal(b.Bytes(), &got))
	assert.Equal(t, snaps, got)

	assert.Error(t, dump(&b, snaps, "xml"))
}

func TestLineEditor(t *testing.T) {
	var echo bytes.Buffer
	in := "ab\x7fc\r\x01d\x04\n\x04ignored"
	e := newLineEditor(strings.NewReader(in), &echo)
	b, err := readAll(e)
	require.NoError(t, err)
	assert.Equal(t, "ac\nd\n", string(b))
	assert.Equal(t, "ab\b \bc\nd\n", echo.String())
}

func readAll(e *lineEditor) ([]byte, error) {
	var b bytes.Buffer
	_, err := b.ReadFrom(e)
	return b.Bytes(), err
}

func TestValueFlags(t *testing.T) {
	var l valueList
	require.NoError(t, l.Set("1,2"))
	require.NoError(t, l.Set("-3"))
	assert.Equal(t, "1,2,-3", l.String())
	assert.Error(t, l.Set("x"))

	var d dumpFormat
	assert.NoError(t, d.Set("cbor"))
	assert.Error(t, d.Set("xml"))
	assert.Equal(t, "cbor", d.String())
}
