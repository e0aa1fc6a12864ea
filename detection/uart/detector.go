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

// Package uart finds USB serial ports that may carry a NINA module's debug
// console. Importing the package registers the detector.
package uart

import (
	"context"

	"github.com/ZaparooProject/go-nina/detection"
	"go.bug.st/serial/enumerator"
)

// knownBridges maps USB VID:PID pairs of boards that route the module's
// UART to USB
var knownBridges = map[string]string{
	"2341:8057": "Arduino Nano 33 IoT",
	"2341:8054": "Arduino MKR WiFi 1010",
	"2341:005A": "Arduino Nano RP2040 Connect",
	"239A:8022": "Adafruit Feather M4",
	"303A:1001": "Espressif USB JTAG/serial",
	"10C4:EA60": "CP210x UART bridge",
	"1A86:7523": "CH340 UART bridge",
}

// detector implements the Detector interface for serial ports
type detector struct{}

// New creates a new serial port detector
func New() detection.Detector {
	return &detector{}
}

func init() {
	detection.RegisterDetector(New())
}

// Transport returns the transport type
func (*detector) Transport() string {
	return "uart"
}

// ListPorts returns the system's serial ports. It's a variable so tests can
// replace it.
var ListPorts = enumerator.GetDetailedPortsList

// Detect lists serial ports, ranking known module boards first. Ports that
// are not USB devices are only reported outside Passive mode.
func (*detector) Detect(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	ports, err := ListPorts()
	if err != nil {
		return nil, err
	}

	devices := make([]detection.DeviceInfo, 0, len(ports))
	for _, port := range ports {
		select {
		case <-ctx.Done():
			return devices, detection.ErrDetectionTimeout
		default:
		}

		device, skip := createDeviceInfo(port, opts)
		if skip {
			continue
		}
		devices = append(devices, device)
	}

	if len(devices) == 0 {
		return nil, detection.ErrNoDevicesFound
	}
	return devices, nil
}

func createDeviceInfo(port *enumerator.PortDetails, opts *detection.Options) (detection.DeviceInfo, bool) {
	if detection.IsPathIgnored(port.Name, opts.IgnorePaths) {
		return detection.DeviceInfo{}, true
	}

	device := detection.DeviceInfo{
		Transport:  "uart",
		Path:       port.Name,
		Name:       port.Name,
		Confidence: detection.Low,
		Metadata:   map[string]string{},
	}

	if !port.IsUSB {
		return device, opts.Mode == detection.Passive
	}

	vidpid := detection.ParseVIDPID(port.VID + ":" + port.PID)
	if vidpid != "" {
		if detection.IsBlocked(vidpid, opts.Blocklist) {
			return detection.DeviceInfo{}, true
		}
		device.Metadata["vidpid"] = vidpid
	}
	if port.SerialNumber != "" {
		device.Metadata["serial"] = port.SerialNumber
	}
	if port.Product != "" {
		device.Name = port.Product
	}
	if board, ok := knownBridges[vidpid]; ok {
		device.Name = board
		device.Confidence = detection.Medium
	}
	return device, false
}
