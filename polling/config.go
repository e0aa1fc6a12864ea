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

// Package polling provides connection management on top of a nina.Device:
// joining a network and waiting for association, and monitoring the
// connection status in the background.
package polling

import (
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
)

// Config holds configuration for joining and monitoring
type Config struct {
	// Clock drives poll intervals and deadlines. Nil selects the wall clock.
	Clock clock.Clock
	// PollInterval is the monitor's interval while the status is changing.
	PollInterval time.Duration
	// IdleInterval is the monitor's interval once the status has been stable
	// for StableAfter.
	IdleInterval time.Duration
	StableAfter  time.Duration
	// JoinTimeout bounds how long Join waits for association.
	JoinTimeout time.Duration
	// JoinPollInterval is the delay between status checks during Join.
	JoinPollInterval time.Duration
}

// DefaultConfig returns the default polling configuration
func DefaultConfig() *Config {
	return &Config{
		PollInterval:     250 * time.Millisecond,
		IdleInterval:     2 * time.Second,
		StableAfter:      10 * time.Second,
		JoinTimeout:      15 * time.Second,
		JoinPollInterval: 100 * time.Millisecond,
	}
}

// ErrInvalidConfig is returned by Validate
var ErrInvalidConfig = errors.New("invalid polling configuration")

// Validate checks the configuration
func (c *Config) Validate() error {
	switch {
	case c.PollInterval <= 0:
		return fmt.Errorf("%w: poll interval %v", ErrInvalidConfig, c.PollInterval)
	case c.IdleInterval < c.PollInterval:
		return fmt.Errorf("%w: idle interval %v below poll interval", ErrInvalidConfig, c.IdleInterval)
	case c.JoinTimeout <= 0:
		return fmt.Errorf("%w: join timeout %v", ErrInvalidConfig, c.JoinTimeout)
	case c.JoinPollInterval <= 0:
		return fmt.Errorf("%w: join poll interval %v", ErrInvalidConfig, c.JoinPollInterval)
	}
	return nil
}

func (c *Config) clock() clock.Clock {
	if c.Clock == nil {
		return clock.New()
	}
	return c.Clock
}
