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
	"fmt"
	"time"

	"github.com/ZaparooProject/go-nina/internal/frame"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Link defaults
const (
	DefaultBus          = "SPI0.0"
	DefaultClock        = 100 * physic.KiloHertz
	DefaultChipSelect   = "GPIO8"
	DefaultReadyPin     = "GPIO24"
	DefaultResetPin     = "GPIO25"
	DefaultBootPin      = "GPIO23"
	DefaultReadyTimeout = 2 * time.Second
	DefaultPollInterval = 250 * time.Microsecond
	DefaultTraceSize    = 16
)

// Reset timing the module needs to come out of reset in run mode. These are
// minimums and are not configurable.
const (
	ResetHoldTime = 10 * time.Millisecond
	BootTime      = 750 * time.Millisecond
	SettleTime    = time.Microsecond
)

// LinkConfig names the bus and control lines a module is wired to. Names are
// resolved through the periph registries, e.g. "SPI0.0" and "GPIO24".
type LinkConfig struct {
	Bus        string
	ChipSelect string
	Ready      string
	Reset      string
	Boot       string
	Clock      physic.Frequency
	Mode       spi.Mode
}

// DefaultLinkConfig returns the wiring of the common Raspberry Pi hats.
func DefaultLinkConfig() LinkConfig {
	return LinkConfig{
		Bus:        DefaultBus,
		ChipSelect: DefaultChipSelect,
		Ready:      DefaultReadyPin,
		Reset:      DefaultResetPin,
		Boot:       DefaultBootPin,
		Clock:      DefaultClock,
		Mode:       spi.Mode0,
	}
}

// Validate checks the link configuration. The boot line is optional.
func (c LinkConfig) Validate() error {
	switch {
	case c.Bus == "":
		return fmt.Errorf("%w: bus name is empty", ErrInvalidConfig)
	case c.ChipSelect == "":
		return fmt.Errorf("%w: chip select pin is empty", ErrInvalidConfig)
	case c.Ready == "":
		return fmt.Errorf("%w: ready pin is empty", ErrInvalidConfig)
	case c.Reset == "":
		return fmt.Errorf("%w: reset pin is empty", ErrInvalidConfig)
	case c.Clock <= 0:
		return fmt.Errorf("%w: clock %v", ErrInvalidConfig, c.Clock)
	case c.Mode&^spi.Mode3 != 0:
		return fmt.Errorf("%w: spi mode %d", ErrInvalidConfig, c.Mode)
	}
	return nil
}

// DeviceConfig contains configuration options for the Device
type DeviceConfig struct {
	Link LinkConfig
	// ReadyTimeout bounds every wait for the ready line. A context deadline
	// that expires sooner takes precedence.
	ReadyTimeout time.Duration
	// PollInterval is the delay between samples of the ready line.
	PollInterval time.Duration
	// ProbeLimit is the number of bytes examined while hunting for a reply's
	// start marker.
	ProbeLimit int
	// TraceSize is the number of wire events kept for error reports. Zero
	// disables tracing.
	TraceSize int
}

// DefaultDeviceConfig returns default device configuration
func DefaultDeviceConfig() *DeviceConfig {
	return &DeviceConfig{
		Link:         DefaultLinkConfig(),
		ReadyTimeout: DefaultReadyTimeout,
		PollInterval: DefaultPollInterval,
		ProbeLimit:   frame.DefaultProbeLimit,
		TraceSize:    DefaultTraceSize,
	}
}

// Validate checks the device configuration
func (c *DeviceConfig) Validate() error {
	switch {
	case c.ReadyTimeout <= 0:
		return fmt.Errorf("%w: ready timeout %v", ErrInvalidConfig, c.ReadyTimeout)
	case c.PollInterval < 0:
		return fmt.Errorf("%w: poll interval %v", ErrInvalidConfig, c.PollInterval)
	case c.ProbeLimit <= 0:
		return fmt.Errorf("%w: probe limit %d", ErrInvalidConfig, c.ProbeLimit)
	case c.TraceSize < 0:
		return fmt.Errorf("%w: trace size %d", ErrInvalidConfig, c.TraceSize)
	}
	return nil
}
