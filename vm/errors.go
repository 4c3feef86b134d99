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

package vm

import (
	"fmt"

	"github.com/pkg/errors"
)

// Decode errors.
var (
	ErrUnknownOpcode   = errors.New("unknown opcode")
	ErrUnknownMode     = errors.New("unknown parameter mode")
	ErrMissingOperands = errors.New("missing operands")
	ErrPCOutOfRange    = errors.New("pc out of memory range")
)

// Address errors.
var (
	ErrInvalidAddress   = errors.New("invalid address")
	ErrInvalidWriteMode = errors.New("invalid write mode")
	ErrInvalidJump      = errors.New("invalid jump target")
)

// Error is the error returned by Run on a fatal condition. Err holds the
// violated contract, wrapped with its details. The root cause can be checked
// with errors.Cause:
//
//	if errors.Cause(err) == vm.ErrInvalidAddress {
//		// ...
//	}
type Error struct {
	PID PID  // failing process
	PC  int  // address of the failing instruction
	Op  Cell // opcode word at PC, 0 if PC is out of range
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("process %d @pc=%d (%d): %v", e.PID, e.PC, e.Op, e.Err)
}

// Cause returns the underlying error.
func (e *Error) Cause() error { return e.Err }

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// Format implements fmt.Formatter. With the %+v verb, the stack trace of the
// underlying error is printed as well.
func (e *Error) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "process %d @pc=%d (%d): %+v", e.PID, e.PC, e.Op, e.Err)
		return
	}
	fmt.Fprint(s, e.Error())
}

// IsDecodeError returns true if the root cause of err is a decode error.
func IsDecodeError(err error) bool {
	switch errors.Cause(err) {
	case ErrUnknownOpcode, ErrUnknownMode, ErrMissingOperands, ErrPCOutOfRange:
		return true
	}
	return false
}

// IsAddressError returns true if the root cause of err is an address error.
func IsAddressError(err error) bool {
	switch errors.Cause(err) {
	case ErrInvalidAddress, ErrInvalidWriteMode, ErrInvalidJump:
		return true
	}
	return false
}
