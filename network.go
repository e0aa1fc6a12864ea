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
	"encoding/binary"
	"fmt"
	"math"
	"net"
	"time"
)

// CurrentSSID returns the SSID of the network the station is joined to
func (d *Device) CurrentSSID() (string, error) {
	return d.CurrentSSIDContext(context.Background())
}

// CurrentSSIDContext returns the SSID of the network the station is joined to
func (d *Device) CurrentSSIDContext(ctx context.Context) (string, error) {
	reply, err := d.query(ctx, "CurrentSSID", cmdGetCurrSSID, 1, dummyParam)
	if err != nil {
		return "", err
	}
	return cString(reply[0]), nil
}

// CurrentBSSID returns the address of the access point the station is joined to
func (d *Device) CurrentBSSID() (net.HardwareAddr, error) {
	return d.CurrentBSSIDContext(context.Background())
}

// CurrentBSSIDContext returns the address of the access point the station is joined to
func (d *Device) CurrentBSSIDContext(ctx context.Context) (net.HardwareAddr, error) {
	return d.queryHardwareAddr(ctx, "CurrentBSSID", cmdGetCurrBSSID, dummyParam)
}

// CurrentRSSI returns the signal strength of the current network in dBm
func (d *Device) CurrentRSSI() (int32, error) {
	return d.CurrentRSSIContext(context.Background())
}

// CurrentRSSIContext returns the signal strength of the current network in dBm
func (d *Device) CurrentRSSIContext(ctx context.Context) (int32, error) {
	v, err := d.queryUint32(ctx, "CurrentRSSI", cmdGetCurrRSSI, dummyParam)
	return int32(v), err
}

// CurrentEncryption returns the security of the current network
func (d *Device) CurrentEncryption() (EncryptionType, error) {
	return d.CurrentEncryptionContext(context.Background())
}

// CurrentEncryptionContext returns the security of the current network
func (d *Device) CurrentEncryptionContext(ctx context.Context) (EncryptionType, error) {
	b, err := d.queryByte(ctx, "CurrentEncryption", cmdGetCurrEnct, dummyParam)
	if err != nil {
		return EncryptionUnknown, err
	}
	return EncryptionType(b), nil
}

// IPAddress returns the station's address, netmask and gateway
func (d *Device) IPAddress() (*IPConfig, error) {
	return d.IPAddressContext(context.Background())
}

// IPAddressContext returns the station's address, netmask and gateway
func (d *Device) IPAddressContext(ctx context.Context) (*IPConfig, error) {
	const op = "IPAddress"
	reply, err := d.query(ctx, op, cmdGetIPAddr, 3, dummyParam)
	if err != nil {
		return nil, err
	}
	for i, p := range reply {
		if len(p) != net.IPv4len {
			return nil, d.invalidResponse(op, cmdGetIPAddr, "field %d is %d bytes", i, len(p))
		}
	}
	return &IPConfig{
		IP:      net.IPv4(reply[0][0], reply[0][1], reply[0][2], reply[0][3]),
		Mask:    net.IPv4Mask(reply[1][0], reply[1][1], reply[1][2], reply[1][3]),
		Gateway: net.IPv4(reply[2][0], reply[2][1], reply[2][2], reply[2][3]),
	}, nil
}

// ReasonCode returns the 802.11 reason code of the last disconnect
func (d *Device) ReasonCode() (uint8, error) {
	return d.ReasonCodeContext(context.Background())
}

// ReasonCodeContext returns the 802.11 reason code of the last disconnect
func (d *Device) ReasonCodeContext(ctx context.Context) (uint8, error) {
	return d.queryByte(ctx, "ReasonCode", cmdGetReasonCode)
}

// Temperature returns the module's die temperature in degrees Celsius
func (d *Device) Temperature() (float32, error) {
	return d.TemperatureContext(context.Background())
}

// TemperatureContext returns the module's die temperature in degrees Celsius
func (d *Device) TemperatureContext(ctx context.Context) (float32, error) {
	v, err := d.queryUint32(ctx, "Temperature", cmdGetTemperature)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// Time returns the module's network time. The zero time is returned while
// the module has not synchronised its clock.
func (d *Device) Time() (time.Time, error) {
	return d.TimeContext(context.Background())
}

// TimeContext returns the module's network time. The zero time is returned while
// the module has not synchronised its clock.
func (d *Device) TimeContext(ctx context.Context) (time.Time, error) {
	const op = "Time"
	reply, err := d.query(ctx, op, cmdGetTime, 1)
	if err != nil {
		return time.Time{}, err
	}

	var secs uint64
	switch p := reply[0]; len(p) {
	case 4:
		secs = uint64(binary.LittleEndian.Uint32(p))
	case 8:
		secs = binary.LittleEndian.Uint64(p)
	default:
		return time.Time{}, d.invalidResponse(op, cmdGetTime, "time is %d bytes", len(p))
	}
	if secs == 0 {
		return time.Time{}, nil
	}
	return time.Unix(int64(secs), 0).UTC(), nil
}

// ScanRSSI returns the signal strength of scan result idx in dBm
func (d *Device) ScanRSSI(idx uint8) (int32, error) {
	return d.ScanRSSIContext(context.Background(), idx)
}

// ScanRSSIContext returns the signal strength of scan result idx in dBm
func (d *Device) ScanRSSIContext(ctx context.Context, idx uint8) (int32, error) {
	v, err := d.queryUint32(ctx, "ScanRSSI", cmdGetIdxRSSI, []byte{idx})
	return int32(v), err
}

// ScanEncryption returns the security of scan result idx
func (d *Device) ScanEncryption(idx uint8) (EncryptionType, error) {
	return d.ScanEncryptionContext(context.Background(), idx)
}

// ScanEncryptionContext returns the security of scan result idx
func (d *Device) ScanEncryptionContext(ctx context.Context, idx uint8) (EncryptionType, error) {
	b, err := d.queryByte(ctx, "ScanEncryption", cmdGetIdxEnct, []byte{idx})
	if err != nil {
		return EncryptionUnknown, err
	}
	return EncryptionType(b), nil
}

// ScanBSSID returns the access point address of scan result idx
func (d *Device) ScanBSSID(idx uint8) (net.HardwareAddr, error) {
	return d.ScanBSSIDContext(context.Background(), idx)
}

// ScanBSSIDContext returns the access point address of scan result idx
func (d *Device) ScanBSSIDContext(ctx context.Context, idx uint8) (net.HardwareAddr, error) {
	return d.queryHardwareAddr(ctx, "ScanBSSID", cmdGetIdxBSSID, []byte{idx})
}

// ScanChannel returns the channel of scan result idx
func (d *Device) ScanChannel(idx uint8) (uint8, error) {
	return d.ScanChannelContext(context.Background(), idx)
}

// ScanChannelContext returns the channel of scan result idx
func (d *Device) ScanChannelContext(ctx context.Context, idx uint8) (uint8, error) {
	return d.queryByte(ctx, "ScanChannel", cmdGetIdxChannel, []byte{idx})
}

// ScanNetworkDetails reads the last scan and the details of every network in
// it. Each detail is a separate exchange.
func (d *Device) ScanNetworkDetails(maxNetworks int) ([]Network, error) {
	return d.ScanNetworkDetailsContext(context.Background(), maxNetworks)
}

// ScanNetworkDetailsContext reads the last scan and the details of every network in
// it. Each detail is a separate exchange.
func (d *Device) ScanNetworkDetailsContext(ctx context.Context, maxNetworks int) ([]Network, error) {
	scan, err := d.ScanNetworksContext(ctx, maxNetworks)
	if err != nil {
		return nil, err
	}

	networks := make([]Network, len(scan.SSIDs))
	for i, ssid := range scan.SSIDs {
		idx := uint8(i)
		n := Network{SSID: ssid}
		if n.RSSI, err = d.ScanRSSIContext(ctx, idx); err != nil {
			return nil, fmt.Errorf("network %d: %w", i, err)
		}
		if n.Encryption, err = d.ScanEncryptionContext(ctx, idx); err != nil {
			return nil, fmt.Errorf("network %d: %w", i, err)
		}
		if n.BSSID, err = d.ScanBSSIDContext(ctx, idx); err != nil {
			return nil, fmt.Errorf("network %d: %w", i, err)
		}
		if n.Channel, err = d.ScanChannelContext(ctx, idx); err != nil {
			return nil, fmt.Errorf("network %d: %w", i, err)
		}
		networks[i] = n
	}
	return networks, nil
}

// SetNetwork joins an open network
func (d *Device) SetNetwork(ssid string) (CommandResult, error) {
	return d.SetNetworkContext(context.Background(), ssid)
}

// SetNetworkContext joins an open network
func (d *Device) SetNetworkContext(ctx context.Context, ssid string) (CommandResult, error) {
	if err := validateSSID(ssid); err != nil {
		return ResultFailure, err
	}
	return d.queryResult(ctx, "SetNetwork", cmdSetNet, []byte(ssid))
}

// SetHostname sets the DHCP hostname the module announces
func (d *Device) SetHostname(hostname string) (CommandResult, error) {
	return d.SetHostnameContext(context.Background(), hostname)
}

// SetHostnameContext sets the DHCP hostname the module announces
func (d *Device) SetHostnameContext(ctx context.Context, hostname string) (CommandResult, error) {
	if len(hostname) == 0 || len(hostname) > MaxHostnameLength {
		return ResultFailure, fmt.Errorf("%w: hostname is %d bytes, must be 1-%d",
			ErrArgumentOutOfRange, len(hostname), MaxHostnameLength)
	}
	return d.queryResult(ctx, "SetHostname", cmdSetHostname, []byte(hostname))
}

// SetDebug turns the module's own debug output on its UART on or off
func (d *Device) SetDebug(enabled bool) (CommandResult, error) {
	return d.SetDebugContext(context.Background(), enabled)
}

// SetDebugContext turns the module's own debug output on its UART on or off
func (d *Device) SetDebugContext(ctx context.Context, enabled bool) (CommandResult, error) {
	var flag byte
	if enabled {
		flag = 1
	}
	return d.queryResult(ctx, "SetDebug", cmdSetDebug, []byte{flag})
}

func (d *Device) queryUint32(ctx context.Context, op string, opcode byte, params ...[]byte) (uint32, error) {
	reply, err := d.query(ctx, op, opcode, 1, params...)
	if err != nil {
		return 0, err
	}
	if len(reply[0]) != 4 {
		return 0, d.invalidResponse(op, opcode, "want 4 bytes, got %d", len(reply[0]))
	}
	return binary.LittleEndian.Uint32(reply[0]), nil
}
