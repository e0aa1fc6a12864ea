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

import "errors"

// Codec errors. The root package re-exports these so callers can match them
// with errors.Is without importing an internal package.
var (
	ErrArgumentOutOfRange    = errors.New("argument out of range")
	ErrFraming               = errors.New("start marker not found")
	ErrDeviceErrorReply      = errors.New("device returned error reply")
	ErrUnexpectedCommandEcho = errors.New("unexpected command echo")
	ErrParamCountMismatch    = errors.New("parameter count mismatch")
	ErrMissingTerminator     = errors.New("missing end marker")
	ErrBufferTooSmall        = errors.New("buffer too small for record")
)
