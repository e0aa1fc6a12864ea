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
	"fmt"

	"github.com/ZaparooProject/go-nina/internal/frame"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// phase is a step of a single request/response exchange
type phase int

const (
	phaseAcquireBus phase = iota
	phaseAwaitReady
	phaseSelect
	phaseSendFrame
	phaseDeselect
	phaseReceiveFrame
	phaseReleaseBus
	phaseDone
	phaseFailed
)

func (p phase) String() string {
	switch p {
	case phaseAcquireBus:
		return "AcquireBus"
	case phaseAwaitReady:
		return "AwaitReady"
	case phaseSelect:
		return "Select"
	case phaseSendFrame:
		return "SendFrame"
	case phaseDeselect:
		return "Deselect"
	case phaseReceiveFrame:
		return "ReceiveFrame"
	case phaseReleaseBus:
		return "ReleaseBus"
	case phaseDone:
		return "Done"
	case phaseFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// exchange describes one request/response round trip
type exchange struct {
	decode func(r frame.Reader) error
	trace  *TraceBuffer
	op     string
	params [][]byte
	opcode byte
}

// transact runs one exchange with the module:
//
//	AcquireBus, AwaitReady, Select, SendFrame, Deselect,
//	AwaitReady, Select, ReceiveFrame, Deselect, ReleaseBus
//
// Chip select is deasserted and the bus released on every path out.
func (d *Device) transact(ctx context.Context, ex *exchange) (err error) {
	ex.trace = NewTraceBuffer(ex.op, d.port(), d.config.TraceSize, d.clock.Now)
	start := d.clock.Now()

	request, err := frame.Encode(ex.opcode, ex.params...)
	if err != nil {
		return d.failed(ex, err)
	}

	d.enter(ex, phaseAcquireBus)
	if err = d.transport.Acquire(ctx); err != nil {
		return d.failed(ex, fmt.Errorf("acquire bus: %w", err))
	}

	selected := false
	defer func() {
		if selected {
			d.enter(ex, phaseDeselect)
			err = multierr.Append(err, d.deselectModule(context.WithoutCancel(ctx)))
		}
		d.enter(ex, phaseReleaseBus)
		err = multierr.Append(err, d.transport.Release())
		if err != nil {
			err = d.failed(ex, err)
			return
		}
		d.logger.Debug("exchange complete",
			zap.String("op", ex.op),
			zap.Stringer("phase", phaseDone),
			zap.Duration("elapsed", d.clock.Since(start)))
	}()

	d.enter(ex, phaseAwaitReady)
	if err = d.waitReady(ctx, ex.trace); err != nil {
		return err
	}

	d.enter(ex, phaseSelect)
	if err = d.selectModule(); err != nil {
		return err
	}
	selected = true

	d.enter(ex, phaseSendFrame)
	ex.trace.RecordTX(request, "request")
	if err = d.transport.TransferBlock(true, request, nil); err != nil {
		return fmt.Errorf("%w: %w", ErrTransportWrite, err)
	}

	d.enter(ex, phaseDeselect)
	selected = false
	if err = d.deselectModule(ctx); err != nil {
		return err
	}

	d.enter(ex, phaseAwaitReady)
	if err = d.waitReady(ctx, ex.trace); err != nil {
		return err
	}

	d.enter(ex, phaseSelect)
	if err = d.selectModule(); err != nil {
		return err
	}
	selected = true

	d.enter(ex, phaseReceiveFrame)
	reader := &wireReader{ctx: ctx, transport: d.transport, record: ex.trace != nil}
	err = ex.decode(reader)
	ex.trace.RecordRX(reader.seen, "reply")
	if err != nil {
		return err
	}

	d.enter(ex, phaseDeselect)
	selected = false
	return d.deselectModule(ctx)
}

func (d *Device) enter(ex *exchange, p phase) {
	d.logger.Debug("phase",
		zap.String("op", ex.op),
		zap.Uint8("opcode", ex.opcode),
		zap.Stringer("phase", p))
}

func (d *Device) failed(ex *exchange, err error) error {
	d.logger.Debug("exchange failed",
		zap.String("op", ex.op),
		zap.Uint8("opcode", ex.opcode),
		zap.Stringer("phase", phaseFailed),
		zap.Error(err))
	return ex.trace.WrapError(NewProtocolError(ex.op, ex.opcode, d.port(), err))
}

// wireReader clocks reply bytes in from the module. Every read sends Dummy
// bytes and keeps chip select asserted.
type wireReader struct {
	ctx       context.Context
	transport Transport
	seen      []byte
	record    bool
}

func (w *wireReader) ReadByte() (byte, error) {
	if err := w.ctx.Err(); err != nil {
		return 0, err
	}
	b, err := w.transport.TransferByte(true, frame.Dummy)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrTransportRead, err)
	}
	if w.record {
		w.seen = append(w.seen, b)
	}
	return b, nil
}

func (w *wireReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := w.ctx.Err(); err != nil {
		return 0, err
	}
	if err := w.transport.TransferBlock(true, nil, p); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrTransportRead, err)
	}
	if w.record {
		w.seen = append(w.seen, p...)
	}
	return len(p), nil
}

// query runs an exchange whose reply carries exactly want parameters
func (d *Device) query(ctx context.Context, op string, opcode byte, want int, params ...[]byte) ([][]byte, error) {
	var reply [][]byte
	err := d.transact(ctx, &exchange{
		op:     op,
		opcode: opcode,
		params: params,
		decode: func(r frame.Reader) error {
			p, err := frame.Decode(r, opcode, want, d.config.ProbeLimit)
			if err != nil {
				return err
			}
			reply = p
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}

// queryList runs an exchange whose reply carries a module-chosen number of
// records
func (d *Device) queryList(
	ctx context.Context, op string, opcode byte, maxRecords, maxLen int, params ...[]byte,
) (*frame.List, error) {
	var list *frame.List
	err := d.transact(ctx, &exchange{
		op:     op,
		opcode: opcode,
		params: params,
		decode: func(r frame.Reader) error {
			l, err := frame.DecodeList(r, opcode, maxRecords, maxLen, d.config.ProbeLimit)
			if err != nil {
				return err
			}
			list = l
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}
