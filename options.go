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
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// Option is a functional option for configuring a Device
type Option func(*Device) error

// WithLinkConfig records the wiring the device was opened with. It is used to
// label errors and logs.
func WithLinkConfig(config LinkConfig) Option {
	return func(d *Device) error {
		if err := config.Validate(); err != nil {
			return err
		}
		d.config.Link = config
		return nil
	}
}

// WithReadyTimeout sets how long a transaction waits for the ready line
func WithReadyTimeout(timeout time.Duration) Option {
	return func(d *Device) error {
		return d.SetReadyTimeout(timeout)
	}
}

// WithPollInterval sets the delay between samples of the ready line
func WithPollInterval(interval time.Duration) Option {
	return func(d *Device) error {
		d.config.PollInterval = interval
		return nil
	}
}

// WithProbeLimit sets how many bytes are examined for a reply start marker
func WithProbeLimit(limit int) Option {
	return func(d *Device) error {
		d.config.ProbeLimit = limit
		return nil
	}
}

// WithTraceSize sets how many wire events are attached to errors
func WithTraceSize(size int) Option {
	return func(d *Device) error {
		d.config.TraceSize = size
		return nil
	}
}

// WithLogger sets the logger used for phase transitions and failures
func WithLogger(logger *zap.Logger) Option {
	return func(d *Device) error {
		if logger == nil {
			logger = zap.NewNop()
		}
		d.logger = logger
		return nil
	}
}

// WithClock replaces the clock used for handshake deadlines
func WithClock(clk clock.Clock) Option {
	return func(d *Device) error {
		if clk == nil {
			clk = clock.New()
		}
		d.clock = clk
		return nil
	}
}
