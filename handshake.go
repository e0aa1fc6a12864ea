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
	"errors"
	"fmt"

	itransport "github.com/ZaparooProject/go-nina/internal/transport"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"periph.io/x/conn/v3/gpio"
)

// Reset restarts the module in run mode
func (d *Device) Reset() error {
	return d.ResetContext(context.Background())
}

// ResetContext restarts the module in run mode. The boot line is held high
// while reset is pulsed so the module does not enter its bootloader, then
// released to an input once the module has had time to boot.
func (d *Device) ResetContext(ctx context.Context) (err error) {
	t := d.transport
	if err := t.Acquire(ctx); err != nil {
		return fmt.Errorf("reset: acquire bus: %w", err)
	}
	defer func() {
		err = multierr.Append(err, t.Release())
	}()

	d.logger.Debug("resetting module", zap.String("port", d.port()))
	start := d.clock.Now()

	steps := []struct {
		run  func() error
		name string
	}{
		{name: "boot output", run: func() error { return t.ConfigureLine(LineBoot, LineOutput) }},
		{name: "boot high", run: func() error { return t.SetLine(LineBoot, gpio.High) }},
		{name: "cs output", run: func() error { return t.ConfigureLine(LineChipSelect, LineOutput) }},
		{name: "cs high", run: func() error { return t.SetLine(LineChipSelect, gpio.High) }},
		{name: "reset output", run: func() error { return t.ConfigureLine(LineReset, LineOutput) }},
		{name: "reset low", run: func() error { return t.SetLine(LineReset, gpio.Low) }},
		{name: "reset hold", run: func() error { return t.Delay(ctx, ResetHoldTime) }},
		{name: "reset high", run: func() error { return t.SetLine(LineReset, gpio.High) }},
		{name: "boot wait", run: func() error { return t.Delay(ctx, BootTime) }},
		{name: "boot release", run: func() error { return t.ConfigureLine(LineBoot, LineInputPullUp) }},
		{name: "ready input", run: func() error { return t.ConfigureLine(LineReady, LineInput) }},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			d.logger.Debug("reset failed", zap.String("step", step.name), zap.Error(err))
			return fmt.Errorf("reset: %s: %w", step.name, err)
		}
	}

	d.logger.Debug("module reset", zap.Duration("elapsed", d.clock.Since(start)))
	return nil
}

// waitReady blocks until the module drives the ready line low. No bytes are
// clocked while waiting.
func (d *Device) waitReady(ctx context.Context, trace *TraceBuffer) error {
	timeout := d.ReadyTimeout()
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := d.clock.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	polls, err := itransport.Poll(ctx, itransport.PollConfig{
		Clock:    d.clock,
		Sleep:    d.transport.Delay,
		Timeout:  timeout,
		Interval: d.config.PollInterval,
	}, func() (bool, error) {
		level, err := d.transport.ReadLine(LineReady)
		if err != nil {
			return false, fmt.Errorf("read ready line: %w", err)
		}
		return level == gpio.Low, nil
	})

	if errors.Is(err, itransport.ErrPollTimeout) {
		trace.RecordWait(fmt.Sprintf("ready not asserted after %d polls", polls))
		return fmt.Errorf("%w after %v", ErrHandshakeTimeout, timeout)
	}
	if err != nil {
		return err
	}
	trace.RecordWait(fmt.Sprintf("ready after %d polls", polls))
	return nil
}

func (d *Device) selectModule() error {
	if err := d.transport.SetLine(LineChipSelect, gpio.Low); err != nil {
		return fmt.Errorf("assert chip select: %w", err)
	}
	return nil
}

func (d *Device) deselectModule(ctx context.Context) error {
	if err := d.transport.SetLine(LineChipSelect, gpio.High); err != nil {
		return fmt.Errorf("release chip select: %w", err)
	}
	return d.transport.Delay(ctx, SettleTime)
}
