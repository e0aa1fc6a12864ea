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

// Package transport provides internal link utilities shared by the device and
// the polling helpers.
package transport

import (
	"context"
	"errors"
	"time"

	"github.com/benbjohnson/clock"
)

// ErrPollTimeout is returned by Poll when the condition did not hold before the
// timeout elapsed.
var ErrPollTimeout = errors.New("poll timeout")

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// PollConfig configures Poll
type PollConfig struct {
	Clock    clock.Clock
	Sleep    SleepFunc
	Timeout  time.Duration
	Interval time.Duration
}

// Condition reports whether the awaited state has been reached. A non-nil
// error stops polling immediately.
type Condition func() (bool, error)

// Poll evaluates cond until it reports done, the timeout elapses or ctx is
// done. The condition is evaluated at least once and the number of
// evaluations is returned alongside the result.
func Poll(ctx context.Context, config PollConfig, cond Condition) (int, error) {
	clk := config.Clock
	if clk == nil {
		clk = clock.New()
	}
	sleep := config.Sleep
	if sleep == nil {
		sleep = ClockSleep(clk)
	}

	deadline := clk.Now().Add(config.Timeout)
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return attempt - 1, err
		}

		done, err := cond()
		if err != nil {
			return attempt, err
		}
		if done {
			return attempt, nil
		}

		if !clk.Now().Before(deadline) {
			return attempt, ErrPollTimeout
		}
		if err := sleep(ctx, config.Interval); err != nil {
			return attempt, err
		}
	}
}

// ClockSleep returns a SleepFunc backed by clk's timers.
func ClockSleep(clk clock.Clock) SleepFunc {
	return func(ctx context.Context, d time.Duration) error {
		if d <= 0 {
			return ctx.Err()
		}
		timer := clk.Timer(d)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		}
	}
}
