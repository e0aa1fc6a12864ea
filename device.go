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
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Device represents a NINA WiFi co-processor reached over a Transport.
//
// Thread Safety: Device is safe for concurrent use. Each operation holds the
// transport's bus for its whole exchange, so operations issued from several
// goroutines are serialised on the bus and never interleave. No state is kept
// between operations apart from configuration. The ready timeout is the only
// setting that may change after New.
type Device struct {
	transport    Transport
	config       *DeviceConfig
	logger       *zap.Logger
	clock        clock.Clock
	readyTimeout atomic.Int64
}

// New creates a new NINA device with the given transport
func New(transport Transport, opts ...Option) (*Device, error) {
	if transport == nil {
		return nil, ErrNilTransport
	}

	device := &Device{
		transport: transport,
		config:    DefaultDeviceConfig(),
		logger:    defaultLogger(),
		clock:     clock.New(),
	}
	device.readyTimeout.Store(int64(device.config.ReadyTimeout))

	for _, opt := range opts {
		if err := opt(device); err != nil {
			return nil, err
		}
	}

	if err := device.config.Validate(); err != nil {
		return nil, err
	}
	return device, nil
}

// Open creates a transport for config with factory, resets the module and
// checks that it answers. The transport is closed if any step fails.
//
// Example usage:
//
//	device, err := nina.Open(ctx, nina.DefaultLinkConfig(), spi.Factory)
func Open(ctx context.Context, config LinkConfig, factory TransportFactory, opts ...Option) (*Device, error) {
	if factory == nil {
		return nil, errors.New("transport factory not provided")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	transport, err := factory(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport for %s: %w", config.Bus, err)
	}

	device, err := New(transport, append([]Option{WithLinkConfig(config)}, opts...)...)
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("failed to create device: %w", err), transport.Close())
	}

	if err := device.InitContext(ctx); err != nil {
		return nil, multierr.Append(fmt.Errorf("failed to initialize device: %w", err), transport.Close())
	}
	return device, nil
}

// Transport returns the underlying transport
func (d *Device) Transport() Transport {
	return d.transport
}

// Config returns a copy of the device configuration
func (d *Device) Config() DeviceConfig {
	cfg := *d.config
	cfg.ReadyTimeout = d.ReadyTimeout()
	return cfg
}

// Logger returns the logger the device reports to
func (d *Device) Logger() *zap.Logger {
	return d.logger
}

// SetReadyTimeout sets how long each wait for the ready line may take
func (d *Device) SetReadyTimeout(timeout time.Duration) error {
	if timeout <= 0 {
		return fmt.Errorf("%w: ready timeout %v", ErrInvalidConfig, timeout)
	}
	d.readyTimeout.Store(int64(timeout))
	return nil
}

// ReadyTimeout returns how long each wait for the ready line may take
func (d *Device) ReadyTimeout() time.Duration {
	return time.Duration(d.readyTimeout.Load())
}

// Init resets the module and checks that it answers
func (d *Device) Init() error {
	return d.InitContext(context.Background())
}

// InitContext resets the module and checks that it answers by reading its
// firmware version.
func (d *Device) InitContext(ctx context.Context) error {
	if err := d.ResetContext(ctx); err != nil {
		return err
	}

	version, err := d.FirmwareVersionContext(ctx)
	if err != nil {
		return err
	}
	d.logger.Info("module ready",
		zap.String("port", d.port()),
		zap.String("firmware", version))
	return nil
}

// Close closes the device connection
func (d *Device) Close() error {
	if err := d.transport.Close(); err != nil {
		return fmt.Errorf("failed to close transport: %w", err)
	}
	return nil
}

func (d *Device) port() string {
	return d.config.Link.Bus
}
