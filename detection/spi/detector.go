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

// Package spi finds spidev nodes a NINA module may be attached to. Importing
// the package registers the detector.
package spi

import (
	"context"
	"fmt"
	"runtime"

	nina "github.com/ZaparooProject/go-nina"
	"github.com/ZaparooProject/go-nina/detection"
	spitransport "github.com/ZaparooProject/go-nina/transport/spi"
)

// detector implements the Detector interface for SPI buses
type detector struct{}

// New creates a new SPI detector
func New() detection.Detector {
	return &detector{}
}

func init() {
	detection.RegisterDetector(New())
}

// Transport returns the transport type
func (*detector) Transport() string {
	return "spi"
}

// Detect lists spidev nodes. In Full mode each node is probed with the
// default control lines and the module's firmware version is recorded.
func (*detector) Detect(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	if runtime.GOOS != "linux" {
		return nil, detection.ErrUnsupportedPlatform
	}
	return detectLinux(ctx, opts)
}

// BusName returns the periph.io name of spidev bus.cs
func BusName(bus, cs int) string {
	return fmt.Sprintf("SPI%d.%d", bus, cs)
}

// Probe opens bus with the default control lines and reads the module's
// firmware version. It's a variable so tests can replace it.
var Probe = func(ctx context.Context, bus string) (string, error) {
	cfg := nina.DefaultLinkConfig()
	cfg.Bus = bus

	device, err := nina.Open(ctx, cfg, spitransport.Factory)
	if err != nil {
		return "", err
	}
	defer func() { _ = device.Close() }()

	return device.FirmwareVersionContext(ctx)
}
