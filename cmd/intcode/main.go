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
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"golang.org/x/term"

	"github.com/db47h/intcode/asm"
	"github.com/db47h/intcode/computer"
	"github.com/db47h/intcode/lang/ascii"
	"github.com/db47h/intcode/vm"
)

var log = commonlog.GetLogger("intcode")

type fileList []string

func (f *fileList) String() string     { return strings.Join(*f, ",") }
func (f *fileList) Set(s string) error { *f = append(*f, s); return nil }
func (f *fileList) Type() string       { return "filename" }

type valueList []vm.Cell

func (l *valueList) String() string {
	var b strings.Builder
	asm.Format(&b, *l)
	return strings.TrimSpace(b.String())
}

func (l *valueList) Set(s string) error {
	v, err := asm.ParseString(s)
	if err != nil {
		return err
	}
	*l = append(*l, v...)
	return nil
}

func (l *valueList) Type() string { return "values" }

type dumpFormat string

func (d *dumpFormat) String() string { return string(*d) }
func (d *dumpFormat) Set(s string) error {
	switch s {
	case "", "text", "cbor":
		*d = dumpFormat(s)
		return nil
	default:
		return fmt.Errorf("unsupported dump format %q", s)
	}
}
func (d *dumpFormat) Type() string { return "format" }

var (
	asmSource bool
	asciiIO   bool
	noRawIO   bool
	disasm    bool
	trace     bool
	debug     bool
	verbosity int
	dumpFmt   dumpFormat
	inputs    valueList
	network   string
	withFiles fileList
)

func setupIO() (raw bool, tearDown func()) {
	if noRawIO || !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, nil
	}
	tearDown, err := setRawIO(os.Stdin.Fd())
	if err != nil {
		log.Infof("raw terminal IO unavailable: %v", err)
		return false, nil
	}
	return true, tearDown
}

func loadImage(name string) ([]vm.Cell, error) {
	if asmSource {
		return assembleFile(name)
	}
	return asm.ParseFile(name)
}

// openFiles opens the named files for reading.
func openFiles(names []string) ([]*os.File, error) {
	files := make([]*os.File, 0, len(names))
	for _, name := range names {
		f, err := os.Open(name)
		if err != nil {
			closeFiles(files)
			return nil, errors.Wrap(err, "open failed")
		}
		files = append(files, f)
	}
	return files, nil
}

func closeFiles(files []*os.File) {
	for _, f := range files {
		f.Close()
	}
}

// runASCII runs a single process talking ASCII on the standard input and
// output. The given files are read before stdin and closed once exhausted.
func runASCII(img []vm.Cell, files []*os.File, stdin io.Reader, stdout io.Writer) (computer.Snapshots, error) {
	readers := make([]io.Reader, 0, len(files)+1)
	for _, f := range files {
		readers = append(readers, f)
	}
	readers = append(readers, stdin)
	in := ascii.NewInput(readers...)
	out := ascii.NewOutput(stdout)
	defer out.Flush()

	c := computer.New(computer.Trace(trace))
	inID, err := c.Attach(in)
	if err != nil {
		return nil, err
	}
	outID, err := c.Attach(out)
	if err != nil {
		return nil, err
	}
	pid, err := c.NewProcess(img, inID, outID)
	if err != nil {
		return nil, err
	}
	snaps, err := c.RunAll([]vm.PID{pid}, pid)
	if err != nil {
		return nil, err
	}
	if err = in.Err(); err != nil {
		return snaps, err
	}
	if snaps.Stalled() {
		log.Notice("end of input")
	}
	return snaps, nil
}

// runNumeric runs a single process fed with --input values. When it blocks,
// values are read from stdin, one line of comma separated values at a time.
// Output values are printed one per line as they are produced.
func runNumeric(img []vm.Cell, stdin io.Reader, stdout io.Writer) (computer.Snapshots, error) {
	c := computer.New(computer.Trace(trace))
	in, out := c.NewPort(inputs...), c.NewPort()
	pid, err := c.NewProcess(img, in, out)
	if err != nil {
		return nil, err
	}
	sc := bufio.NewScanner(stdin)
	for {
		o, err := c.Run(pid)
		for _, v := range c.Port(out).Drain() {
			io.WriteString(stdout, strconv.FormatInt(int64(v), 10)+"\n")
		}
		if err != nil {
			return nil, err
		}
		if o == vm.Halted {
			break
		}
		if !sc.Scan() {
			if err = sc.Err(); err != nil {
				return nil, errors.Wrap(err, "input read failed")
			}
			log.Notice("end of input")
			break
		}
		v, err := asm.ParseString(sc.Text())
		if err == asm.ErrEmpty {
			continue
		}
		if err != nil {
			return nil, err
		}
		if err = c.Feed(in, v...); err != nil {
			return nil, err
		}
	}
	s, err := c.Retire(pid)
	if err != nil {
		return nil, err
	}
	return computer.Snapshots{s}, nil
}

func atExit(err error) {
	if err == nil {
		return
	}
	if !debug {
		fmt.Fprintf(os.Stderr, "\n%v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "\n%+v\n", err)
	os.Exit(1)
}

func main() {
	var err error
	var snaps computer.Snapshots

	stdout := bufio.NewWriter(os.Stdout)

	// flush output, catch and log errors
	defer func() {
		if err == nil && dumpFmt != "" {
			err = dump(stdout, snaps, dumpFmt)
		}
		stdout.Flush()
		atExit(err)
	}()

	flag.BoolVar(&asmSource, "asm", false, "the program file is assembly source instead of comma separated values")
	flag.VarP(&inputs, "input", "i", "comma separated `values` to feed the program (can be specified multiple times)")
	flag.BoolVar(&asciiIO, "ascii", false, "ASCII mode: read characters from stdin and print output as text")
	flag.Var(&withFiles, "with", "in ASCII mode, add `filename` to the input list (can be specified multiple times)")
	flag.BoolVar(&noRawIO, "noraw", false, "disable raw terminal IO in ASCII mode")
	flag.StringVar(&network, "network", "", "run the network of processes described in TOML `file`")
	flag.Var(&dumpFmt, "dump", "dump final process snapshots in `format` text or cbor")
	flag.BoolVar(&disasm, "disasm", false, "print a disassembly of the program and exit")
	flag.BoolVar(&trace, "trace", false, "log every executed instruction (needs -vv)")
	flag.CountVarP(&verbosity, "verbose", "v", "increase log verbosity (can be repeated)")
	flag.BoolVar(&debug, "debug", false, "enable debug diagnostics")

	flag.Parse()
	commonlog.Configure(verbosity, nil)

	if network != "" {
		var n *networkConfig
		if n, err = loadNetwork(network); err != nil {
			return
		}
		var res *networkResult
		if res, err = n.run(trace); err != nil {
			return
		}
		snaps = res.snapshots
		err = res.print(stdout)
		return
	}

	if flag.NArg() != 1 {
		err = errors.New("usage: intcode [flags] program")
		return
	}
	var img []vm.Cell
	if img, err = loadImage(flag.Arg(0)); err != nil {
		return
	}
	if disasm {
		err = asm.DisassembleAll(img, stdout)
		return
	}

	if !asciiIO {
		snaps, err = runNumeric(img, os.Stdin, flushWriter{stdout})
		return
	}

	var stdin io.Reader = bufio.NewReader(os.Stdin)
	rawtty, ioTearDownFn := setupIO()
	if ioTearDownFn != nil {
		defer ioTearDownFn()
	}
	if rawtty {
		// the terminal does not echo nor edit lines anymore
		stdin = newLineEditor(os.Stdin, flushWriter{stdout})
	}
	var files []*os.File
	if files, err = openFiles(withFiles); err != nil {
		return
	}
	// no-op for files already closed by the input device
	defer closeFiles(files)
	snaps, err = runASCII(img, files, stdin, flushWriter{stdout})
}
