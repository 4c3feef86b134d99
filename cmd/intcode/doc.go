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

// The intcode command line tool runs IntCode programs, either alone or as a
// network of processes connected through ports.
//
// Usage:
//
//	intcode [flags] program
//	intcode --network file.toml
//
//	    --ascii           ASCII mode: read characters from stdin and print output as text
//	    --asm             the program file is assembly source instead of comma separated values
//	    --debug           enable debug diagnostics
//	    --disasm          print a disassembly of the program and exit
//	    --dump format     dump final process snapshots in format text or cbor
//	-i, --input values    comma separated values to feed the program (can be specified multiple times)
//	    --network file    run the network of processes described in TOML file
//	    --noraw           disable raw terminal IO in ASCII mode
//	    --trace           log every executed instruction (needs -vv)
//	-v, --verbose         increase log verbosity (can be repeated)
//	    --with filename   in ASCII mode, add filename to the input list (can be specified multiple times)
//
// By default, the program reads values given with --input. Once they are
// exhausted, it reads lines of comma separated values from stdin. Output
// values are printed one per line.
//
// --ascii: input and output are text. Files given with --with are fed to the
// program before stdin. Output values outside of the ASCII range are printed
// in decimal on their own line. If stdin is a terminal, it is switched to raw
// mode and intcode does its own line editing; --noraw disables this.
//
// --network: the TOML file describes named ports with their initial values
// and a list of processes, each with an image file (relative to the TOML
// file), an input port and an output port:
//
//	mode = "sequential"  # or "parallel"
//	start = "A"
//
//	[ports.a]
//	values = [9, 0]
//	[ports.b]
//	values = [8]
//
//	[[process]]
//	name = "A"
//	image = "amp.txt"
//	input = "a"
//	output = "b"
//
//	[[process]]
//	name = "B"
//	image = "amp.txt"
//	input = "b"
//	output = "a"
//
// In sequential mode, processes are scheduled round robin on a single
// goroutine, starting with the start process. In parallel mode, each process
// runs on its own goroutine. When all processes are done, the values left in
// each port are printed.
//
// --dump: after the run, print the final snapshot of each process. The text
// format is a header line followed by the memory as comma separated values.
//
// --debug: print a full stacktrace should a process crash.
package main
