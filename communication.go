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
	"net"
	"strings"
)

// FirmwareVersion returns the firmware version string of the module
func (d *Device) FirmwareVersion() (string, error) {
	return d.FirmwareVersionContext(context.Background())
}

// FirmwareVersionContext returns the firmware version string of the module
func (d *Device) FirmwareVersionContext(ctx context.Context) (string, error) {
	reply, err := d.query(ctx, "FirmwareVersion", cmdGetFwVersion, 1)
	if err != nil {
		return "", err
	}
	return cString(reply[0]), nil
}

// ConnectionStatus returns the WiFi connection status
func (d *Device) ConnectionStatus() (Status, error) {
	return d.ConnectionStatusContext(context.Background())
}

// ConnectionStatusContext returns the WiFi connection status
func (d *Device) ConnectionStatusContext(ctx context.Context) (Status, error) {
	b, err := d.queryByte(ctx, "ConnectionStatus", cmdGetConnStatus)
	if err != nil {
		return StatusNoModule, err
	}
	return Status(b), nil
}

// MACAddress returns the station MAC address
func (d *Device) MACAddress() (net.HardwareAddr, error) {
	return d.MACAddressContext(context.Background())
}

// MACAddressContext returns the station MAC address. The module sends it
// least significant byte first; the result is in the usual display order.
func (d *Device) MACAddressContext(ctx context.Context) (net.HardwareAddr, error) {
	return d.queryHardwareAddr(ctx, "MACAddress", cmdGetMACAddr)
}

// StartScanNetworks asks the module to begin a network scan
func (d *Device) StartScanNetworks() (CommandResult, error) {
	return d.StartScanNetworksContext(context.Background())
}

// StartScanNetworksContext asks the module to begin a network scan
func (d *Device) StartScanNetworksContext(ctx context.Context) (CommandResult, error) {
	return d.queryResult(ctx, "StartScanNetworks", cmdStartScanNetworks)
}

// ScanNetworks returns the SSIDs found by the last scan
func (d *Device) ScanNetworks(maxNetworks int) (*ScanResult, error) {
	return d.ScanNetworksContext(context.Background(), maxNetworks)
}

// ScanNetworksContext returns at most maxNetworks SSIDs found by the last
// scan. When the module reports more, the excess is discarded and the result
// is marked truncated.
func (d *Device) ScanNetworksContext(ctx context.Context, maxNetworks int) (*ScanResult, error) {
	if maxNetworks < 1 || maxNetworks > MaxScanRecords {
		return nil, fmt.Errorf("%w: network limit %d", ErrArgumentOutOfRange, maxNetworks)
	}

	list, err := d.queryList(ctx, "ScanNetworks", cmdScanNetworks, maxNetworks, MaxSSIDLength)
	if err != nil {
		return nil, err
	}

	result := &ScanResult{
		SSIDs:     make([]string, len(list.Records)),
		Reported:  list.Reported,
		Truncated: list.Truncated(),
	}
	for i, rec := range list.Records {
		result.SSIDs[i] = cString(rec)
	}
	if result.Truncated {
		d.logger.Debug("scan result truncated")
	}
	return result, nil
}

// Connect joins a WPA network
func (d *Device) Connect(ssid, passphrase string) (CommandResult, error) {
	return d.ConnectContext(context.Background(), ssid, passphrase)
}

// ConnectContext joins a WPA network. Success means the module accepted the
// request; poll ConnectionStatus to learn when the join completes.
func (d *Device) ConnectContext(ctx context.Context, ssid, passphrase string) (CommandResult, error) {
	if err := validateSSID(ssid); err != nil {
		return ResultFailure, err
	}
	if len(passphrase) == 0 || len(passphrase) > MaxPassphraseLength {
		return ResultFailure, fmt.Errorf("%w: passphrase is %d bytes, must be 1-%d",
			ErrArgumentOutOfRange, len(passphrase), MaxPassphraseLength)
	}
	return d.queryResult(ctx, "Connect", cmdSetPassphrase, []byte(ssid), []byte(passphrase))
}

// Disconnect leaves the current network
func (d *Device) Disconnect() (CommandResult, error) {
	return d.DisconnectContext(context.Background())
}

// DisconnectContext leaves the current network
func (d *Device) DisconnectContext(ctx context.Context) (CommandResult, error) {
	return d.queryResult(ctx, "Disconnect", cmdDisconnect)
}

func (d *Device) queryByte(ctx context.Context, op string, opcode byte, params ...[]byte) (byte, error) {
	reply, err := d.query(ctx, op, opcode, 1, params...)
	if err != nil {
		return 0, err
	}
	if len(reply[0]) != 1 {
		return 0, d.invalidResponse(op, opcode, "want 1 byte, got %d", len(reply[0]))
	}
	return reply[0][0], nil
}

func (d *Device) queryResult(ctx context.Context, op string, opcode byte, params ...[]byte) (CommandResult, error) {
	b, err := d.queryByte(ctx, op, opcode, params...)
	if err != nil {
		return ResultFailure, err
	}
	return CommandResult(b), nil
}

func (d *Device) queryHardwareAddr(
	ctx context.Context, op string, opcode byte, params ...[]byte,
) (net.HardwareAddr, error) {
	reply, err := d.query(ctx, op, opcode, 1, params...)
	if err != nil {
		return nil, err
	}
	if len(reply[0]) != MACLength {
		return nil, d.invalidResponse(op, opcode, "want %d address bytes, got %d", MACLength, len(reply[0]))
	}

	addr := make(net.HardwareAddr, MACLength)
	for i, b := range reply[0] {
		addr[MACLength-1-i] = b
	}
	return addr, nil
}

func (d *Device) invalidResponse(op string, opcode byte, format string, args ...any) error {
	return NewProtocolError(op, opcode, d.port(),
		fmt.Errorf("%w: %s", ErrInvalidResponse, fmt.Sprintf(format, args...)))
}

func validateSSID(ssid string) error {
	if len(ssid) == 0 || len(ssid) > MaxSSIDLength {
		return fmt.Errorf("%w: ssid is %d bytes, must be 1-%d", ErrArgumentOutOfRange, len(ssid), MaxSSIDLength)
	}
	return nil
}

// cString converts a length-delimited field to a string, dropping the
// terminator some firmware versions include.
func cString(b []byte) string {
	return strings.TrimRight(string(b), "\x00")
}
