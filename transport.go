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

package nina

import (
	"context"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Transport is the physical link to a NINA module: a full-duplex SPI bus that
// may be shared with other devices, a chip-select line the driver drives by
// hand, and the ready, reset and boot lines.
//
// The bus is exclusive between Acquire and Release. Every other method is only
// called while the bus is held, except Close and Type.
type Transport interface {
	// Acquire takes exclusive use of the shared bus. It blocks until the bus
	// is free or ctx is done.
	Acquire(ctx context.Context) error

	// Release gives the bus back. It must be called exactly once for every
	// successful Acquire.
	Release() error

	// TransferByte clocks out one byte and returns the byte clocked in.
	// keepSelected controls whether chip select stays asserted afterwards.
	TransferByte(keepSelected bool, out byte) (byte, error)

	// TransferBlock clocks len(out) or len(in) bytes, whichever is larger.
	// A nil out sends Dummy bytes and a nil in discards what is received.
	TransferBlock(keepSelected bool, out, in []byte) error

	// ConfigureLine sets the direction and bias of a control line.
	ConfigureLine(line Line, mode LineMode) error

	// ReadLine samples a control line.
	ReadLine(line Line) (gpio.Level, error)

	// SetLine drives a control line configured as an output.
	SetLine(line Line, level gpio.Level) error

	// Delay waits for d or until ctx is done.
	Delay(ctx context.Context, d time.Duration) error

	// Close releases the underlying bus and pins.
	Close() error

	// Type returns the transport type
	Type() TransportType
}

// TransportType represents the type of transport
type TransportType string

const (
	// TransportSPI represents a hardware SPI bus with GPIO control lines.
	TransportSPI TransportType = "spi"
	// TransportMock represents a mock transport for testing
	TransportMock TransportType = "mock"
)

// Line identifies one of the module's control lines
type Line int

const (
	// LineChipSelect is the active-low chip select, driven by the host.
	LineChipSelect Line = iota
	// LineReady is the active-low ready (ACK/BUSY) line driven by the module.
	LineReady
	// LineReset is the active-low reset input of the module.
	LineReset
	// LineBoot selects the module's boot mode while it comes out of reset.
	LineBoot
)

// String returns the line name
func (l Line) String() string {
	switch l {
	case LineChipSelect:
		return "cs"
	case LineReady:
		return "ready"
	case LineReset:
		return "reset"
	case LineBoot:
		return "boot"
	default:
		return "unknown"
	}
}

// LineMode is the electrical configuration of a control line
type LineMode int

const (
	// LineOutput drives the line. It starts high.
	LineOutput LineMode = iota
	// LineInput samples a floating line.
	LineInput
	// LineInputPullUp samples the line with the internal pull-up enabled.
	LineInputPullUp
)

// String returns the mode name
func (m LineMode) String() string {
	switch m {
	case LineOutput:
		return "output"
	case LineInput:
		return "input"
	case LineInputPullUp:
		return "input-pullup"
	default:
		return "unknown"
	}
}

// TransportFactory creates a transport for a link configuration
type TransportFactory func(config LinkConfig) (Transport, error)
