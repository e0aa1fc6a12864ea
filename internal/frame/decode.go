// go-nina
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-nina.
//
// go-nina is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-nina is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-nina; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package frame

import (
	"fmt"
	"io"
)

// Reader is the byte source a reply is decoded from. On a real link every
// read clocks Dummy bytes out on the bus.
type Reader interface {
	io.ByteReader
	io.Reader
}

// ReadHeader hunts for StartCmd within probeLimit bytes, checks the echoed
// opcode and returns the parameter count announced by the module. A
// non-positive probeLimit selects DefaultProbeLimit.
func ReadHeader(r Reader, opcode byte, probeLimit int) (int, error) {
	if probeLimit <= 0 {
		probeLimit = DefaultProbeLimit
	}

	found := false
	for range probeLimit {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		if b == StartCmd {
			found = true
			break
		}
	}
	if !found {
		return 0, fmt.Errorf("%w within %d bytes", ErrFraming, probeLimit)
	}

	echo, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	if echo == ErrCmd {
		// The error reply still carries a count and END; read them so the
		// module finishes the frame before chip select is released.
		var tail [2]byte
		if _, err := io.ReadFull(r, tail[:]); err != nil {
			return 0, err
		}
		return 0, fmt.Errorf("%w for opcode 0x%02X", ErrDeviceErrorReply, opcode)
	}
	if want := opcode | ReplyFlag; echo != want {
		return 0, fmt.Errorf("%w: got 0x%02X, want 0x%02X", ErrUnexpectedCommandEcho, echo, want)
	}

	count, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// ReadTerminator consumes the byte following the last parameter and checks
// that it is EndCmd.
func ReadTerminator(r Reader) error {
	b, err := r.ReadByte()
	if err != nil {
		return err
	}
	if b != EndCmd {
		return fmt.Errorf("%w: got 0x%02X", ErrMissingTerminator, b)
	}
	return nil
}

// Decode reads a reply to opcode that must carry exactly want parameters.
func Decode(r Reader, opcode byte, want, probeLimit int) ([][]byte, error) {
	count, err := ReadHeader(r, opcode, probeLimit)
	if err != nil {
		return nil, err
	}
	if count != want {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrParamCountMismatch, count, want)
	}

	params := make([][]byte, count)
	for i := range params {
		if params[i], err = readParam(r); err != nil {
			return nil, err
		}
	}

	if err := ReadTerminator(r); err != nil {
		return nil, err
	}
	return params, nil
}

func readParam(r Reader) ([]byte, error) {
	n, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	p := make([]byte, n)
	if _, err := io.ReadFull(r, p); err != nil {
		return nil, err
	}
	return p, nil
}

func discard(r Reader, n int) error {
	if n == 0 {
		return nil
	}
	_, err := io.CopyN(io.Discard, r, int64(n))
	return err
}
