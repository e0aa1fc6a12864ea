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

// List is a reply whose parameter count is chosen by the module.
type List struct {
	Records  [][]byte
	Reported int // count announced by the module
}

// Truncated reports whether records were dropped to fit the caller's limit.
func (l *List) Truncated() bool {
	return l.Reported > len(l.Records)
}

// DecodeList reads a list reply to opcode. At most maxRecords records are
// kept; the rest are read and discarded so the end marker is still checked.
// A kept record longer than maxLen is drained and ErrBufferTooSmall is
// returned once the whole frame has been consumed.
func DecodeList(r Reader, opcode byte, maxRecords, maxLen, probeLimit int) (*List, error) {
	if maxRecords <= 0 || maxRecords > MaxReplyParams {
		return nil, fmt.Errorf("%w: record limit %d", ErrArgumentOutOfRange, maxRecords)
	}
	if maxLen < 0 || maxLen > MaxParamLen {
		return nil, fmt.Errorf("%w: record length %d", ErrArgumentOutOfRange, maxLen)
	}

	count, err := ReadHeader(r, opcode, probeLimit)
	if err != nil {
		return nil, err
	}

	keep := min(count, maxRecords)
	list := &List{Records: make([][]byte, 0, keep), Reported: count}

	var oversize error
	for i := range count {
		n, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		switch {
		case i >= keep:
			err = discard(r, int(n))
		case int(n) > maxLen:
			if oversize == nil {
				oversize = fmt.Errorf("%w: record %d is %d bytes, capacity %d", ErrBufferTooSmall, i, n, maxLen)
			}
			err = discard(r, int(n))
		default:
			rec := make([]byte, n)
			if _, err = io.ReadFull(r, rec); err == nil {
				list.Records = append(list.Records, rec)
			}
		}
		if err != nil {
			return nil, err
		}
	}

	if err := ReadTerminator(r); err != nil {
		return nil, err
	}
	if oversize != nil {
		return nil, oversize
	}
	return list, nil
}
