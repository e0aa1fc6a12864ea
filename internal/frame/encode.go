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

import "fmt"

// Encode builds a request frame for opcode carrying params:
//
//	START, opcode, count, (len, bytes...)*, END, pad...
//
// The frame is padded with Dummy bytes to a multiple of Alignment.
func Encode(opcode byte, params ...[]byte) ([]byte, error) {
	return build(opcode&^ReplyFlag, MaxParams, true, params)
}

// EncodeReply builds the frame a module sends back for opcode. Replies are not
// padded and may announce up to MaxReplyParams parameters. It is used by the
// mock transport and tests to script module behaviour.
func EncodeReply(opcode byte, params ...[]byte) ([]byte, error) {
	return build(opcode|ReplyFlag, MaxReplyParams, false, params)
}

// EncodeErrorReply builds the frame a module sends when it rejects a command.
func EncodeErrorReply() []byte {
	return []byte{StartCmd, ErrCmd, 0x00, EndCmd}
}

// UnpaddedLen returns the length of a frame carrying params before padding.
func UnpaddedLen(params ...[]byte) int {
	n := headerLen + 1
	for _, p := range params {
		n += 1 + len(p)
	}
	return n
}

// PaddedLen rounds n up to the next multiple of Alignment.
func PaddedLen(n int) int {
	if rem := n % Alignment; rem != 0 {
		return n + Alignment - rem
	}
	return n
}

func build(opcode byte, maxParams int, pad bool, params [][]byte) ([]byte, error) {
	if len(params) > maxParams {
		return nil, fmt.Errorf("%w: %d parameters, maximum is %d", ErrArgumentOutOfRange, len(params), maxParams)
	}
	for i, p := range params {
		if len(p) > MaxParamLen {
			return nil, fmt.Errorf("%w: parameter %d is %d bytes, maximum is %d",
				ErrArgumentOutOfRange, i, len(p), MaxParamLen)
		}
	}

	size := UnpaddedLen(params...)
	capacity := size
	if pad {
		capacity = PaddedLen(size)
	}

	buf := make([]byte, 0, capacity)
	buf = append(buf, StartCmd, opcode, byte(len(params)))
	for _, p := range params {
		buf = append(buf, byte(len(p)))
		buf = append(buf, p...)
	}
	buf = append(buf, EndCmd)
	for len(buf) < capacity {
		buf = append(buf, Dummy)
	}
	return buf, nil
}
