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

// Package spi provides the SPI transport for NINA modules on Linux hosts,
// built on periph.io. Chip select is driven as a GPIO so it can stay asserted
// across the many small transfers that make up one reply.
package spi

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	nina "github.com/ZaparooProject/go-nina"
	"go.uber.org/multierr"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

const dummyByte = 0xFF

// Transport implements the nina.Transport interface for a periph SPI port
// and GPIO control lines
type Transport struct {
	port    spi.PortCloser
	conn    spi.Conn
	bus     *sharedBus
	pins    map[nina.Line]gpio.PinIO
	busName string
	mu      sync.Mutex
	closed  bool
}

// Factory opens a Transport and is suitable for nina.Open
func Factory(config nina.LinkConfig) (nina.Transport, error) {
	return New(config)
}

// New opens the SPI port and control lines named by config
func New(config nina.LinkConfig) (*Transport, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	pins, err := lookupPins(config)
	if err != nil {
		return nil, err
	}

	port, err := spireg.Open(config.Bus)
	if err != nil {
		return nil, fmt.Errorf("failed to open SPI port %s: %w", config.Bus, err)
	}

	conn, err := port.Connect(config.Clock, config.Mode|spi.NoCS, 8)
	if err != nil {
		return nil, multierr.Append(
			fmt.Errorf("failed to configure SPI port %s: %w", config.Bus, err), port.Close())
	}

	transport := newTransport(config.Bus, port, conn, pins)
	if err := transport.initLines(); err != nil {
		return nil, multierr.Append(err, transport.Close())
	}
	return transport, nil
}

func newTransport(busName string, port spi.PortCloser, conn spi.Conn, pins map[nina.Line]gpio.PinIO) *Transport {
	return &Transport{
		port:    port,
		conn:    conn,
		bus:     openSharedBus(busName),
		pins:    pins,
		busName: busName,
	}
}

func lookupPins(config nina.LinkConfig) (map[nina.Line]gpio.PinIO, error) {
	names := map[nina.Line]string{
		nina.LineChipSelect: config.ChipSelect,
		nina.LineReady:      config.Ready,
		nina.LineReset:      config.Reset,
		nina.LineBoot:       config.Boot,
	}

	pins := make(map[nina.Line]gpio.PinIO, len(names))
	for line, name := range names {
		if name == "" {
			continue
		}
		pin := gpioreg.ByName(name)
		if pin == nil {
			return nil, fmt.Errorf("%w: %s pin %q not found", nina.ErrInvalidConfig, line, name)
		}
		pins[line] = pin
	}
	return pins, nil
}

// initLines leaves chip select released and the ready line readable
func (t *Transport) initLines() error {
	if err := t.ConfigureLine(nina.LineChipSelect, nina.LineOutput); err != nil {
		return err
	}
	return t.ConfigureLine(nina.LineReady, nina.LineInput)
}

// Acquire implements nina.Transport
func (t *Transport) Acquire(ctx context.Context) error {
	if t.isClosed() {
		return nina.ErrTransportClosed
	}
	return t.bus.lock(ctx, t)
}

// Release implements nina.Transport
func (t *Transport) Release() error {
	return t.bus.unlock(t)
}

// TransferByte implements nina.Transport
func (t *Transport) TransferByte(keepSelected bool, out byte) (byte, error) {
	var in [1]byte
	if err := t.TransferBlock(keepSelected, []byte{out}, in[:]); err != nil {
		return 0, err
	}
	return in[0], nil
}

// TransferBlock implements nina.Transport
func (t *Transport) TransferBlock(keepSelected bool, out, in []byte) error {
	if t.conn == nil {
		return errNotOpen
	}
	if n := max(len(out), len(in)); n > 0 {
		w := out
		if len(w) < n {
			w = make([]byte, n)
			copy(w, out)
			for i := len(out); i < n; i++ {
				w[i] = dummyByte
			}
		}
		r := in
		if len(r) < n {
			r = make([]byte, n)
		}

		if err := t.conn.Tx(w, r); err != nil {
			return fmt.Errorf("spi transfer on %s: %w", t.busName, err)
		}
		if len(in) > 0 && len(in) < n {
			copy(in, r)
		}
	}

	if !keepSelected {
		return t.SetLine(nina.LineChipSelect, gpio.High)
	}
	return nil
}

// ConfigureLine implements nina.Transport. Operations on the optional boot
// line are ignored when it is not wired.
func (t *Transport) ConfigureLine(line nina.Line, mode nina.LineMode) error {
	pin, ok := t.pins[line]
	if !ok {
		return t.missing(line)
	}

	var err error
	switch mode {
	case nina.LineOutput:
		err = pin.Out(gpio.High)
	case nina.LineInput:
		err = pin.In(gpio.Float, gpio.NoEdge)
	case nina.LineInputPullUp:
		err = pin.In(gpio.PullUp, gpio.NoEdge)
	default:
		return fmt.Errorf("%w: line mode %d", nina.ErrInvalidConfig, mode)
	}
	if err != nil {
		return fmt.Errorf("configure %s line as %s: %w", line, mode, err)
	}
	return nil
}

// ReadLine implements nina.Transport
func (t *Transport) ReadLine(line nina.Line) (gpio.Level, error) {
	pin, ok := t.pins[line]
	if !ok {
		return gpio.High, t.missing(line)
	}
	return pin.Read(), nil
}

// SetLine implements nina.Transport
func (t *Transport) SetLine(line nina.Line, level gpio.Level) error {
	pin, ok := t.pins[line]
	if !ok {
		return t.missing(line)
	}
	if err := pin.Out(level); err != nil {
		return fmt.Errorf("drive %s line %v: %w", line, level, err)
	}
	return nil
}

func (*Transport) missing(line nina.Line) error {
	if line == nina.LineBoot {
		return nil
	}
	return fmt.Errorf("%w: %s line not wired", nina.ErrInvalidConfig, line)
}

// Delay implements nina.Transport
func (*Transport) Delay(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Close releases chip select and closes the SPI port
func (t *Transport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	var err error
	if pin, ok := t.pins[nina.LineChipSelect]; ok {
		err = multierr.Append(err, pin.Out(gpio.High))
	}
	// A transport closed mid-exchange must not leave the bus locked.
	_ = t.bus.unlock(t)
	t.bus.close()
	if t.port != nil {
		err = multierr.Append(err, t.port.Close())
	}
	if err != nil {
		return fmt.Errorf("failed to close SPI transport %s: %w", t.busName, err)
	}
	return nil
}

func (t *Transport) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// Type returns the transport type
func (*Transport) Type() nina.TransportType {
	return nina.TransportSPI
}

// String returns the bus the transport is attached to
func (t *Transport) String() string {
	return "spi:" + t.busName
}

var _ nina.Transport = (*Transport)(nil)

// errNotOpen is returned by operations on a zero Transport
var errNotOpen = errors.New("spi transport not open")
