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
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"

	"github.com/db47h/intcode/computer"
)

// dump writes the final snapshots of processes to w, either in human readable
// form or as a CBOR array.
func dump(w io.Writer, snaps computer.Snapshots, format dumpFormat) error {
	switch format {
	case "text":
		for i := range snaps {
			if err := snaps[i].Dump(w); err != nil {
				return err
			}
		}
		return nil
	case "cbor":
		return errors.Wrap(cbor.NewEncoder(w).Encode(snaps), "cbor encoding failed")
	}
	return errors.Errorf("unsupported dump format %q", format)
}
