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

// Package testing provides reply builders that script a NINA module's side of
// the SPI link in tests.
package testing

import (
	"encoding/binary"
	"math"

	"github.com/ZaparooProject/go-nina/internal/frame"
)

// BuildReply returns the reply frame a module sends for opcode. It panics on
// parameters the codec rejects, which is a bug in the test itself.
func BuildReply(opcode byte, params ...[]byte) []byte {
	reply, err := frame.EncodeReply(opcode, params...)
	if err != nil {
		panic(err)
	}
	return reply
}

// BuildByteReply creates a single one-byte parameter reply, the shape used by
// status and command result replies.
func BuildByteReply(opcode, value byte) []byte {
	return BuildReply(opcode, []byte{value})
}

// BuildFirmwareVersionResponse creates a GET_FW_VERSION reply. The module
// includes the string terminator in the parameter.
func BuildFirmwareVersionResponse(version string) []byte {
	return BuildReply(frame.CmdGetFwVersion, append([]byte(version), 0x00))
}

// BuildConnectionStatusResponse creates a GET_CONN_STATUS reply.
func BuildConnectionStatusResponse(status byte) []byte {
	return BuildByteReply(frame.CmdGetConnStatus, status)
}

// BuildMACResponse creates a GET_MACADDR reply. The module sends the address
// least significant byte first.
func BuildMACResponse(mac []byte) []byte {
	return BuildReply(frame.CmdGetMACAddr, Reversed(mac))
}

// BuildScanResponse creates a SCAN_NETWORKS reply with one record per SSID.
func BuildScanResponse(ssids ...string) []byte {
	params := make([][]byte, len(ssids))
	for i, s := range ssids {
		params[i] = []byte(s)
	}
	return BuildReply(frame.CmdScanNetworks, params...)
}

// BuildInt32Response creates a reply carrying a little-endian 32-bit value.
func BuildInt32Response(opcode byte, v int32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(v))
	return BuildReply(opcode, buf)
}

// BuildFloat32Response creates a reply carrying a little-endian float.
func BuildFloat32Response(opcode byte, v float32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
	return BuildReply(opcode, buf)
}

// BuildIPConfigResponse creates a GET_IPADDR reply.
func BuildIPConfigResponse(ip, mask, gateway []byte) []byte {
	return BuildReply(frame.CmdGetIPAddr, ip, mask, gateway)
}

// BuildErrorResponse creates the reply a module sends for a rejected command.
func BuildErrorResponse() []byte {
	return frame.EncodeErrorReply()
}

// Reversed returns a reversed copy of b.
func Reversed(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

// Common fixtures
var (
	// TestMAC is a sample station MAC address in display order.
	TestMAC = []byte{0x24, 0x0A, 0xC4, 0x12, 0x34, 0x56}

	// TestBSSID is a sample access point address in display order.
	TestBSSID = []byte{0xA4, 0x2B, 0xB0, 0xDE, 0xAD, 0x01}

	// TestFirmwareVersion is the version string used across tests.
	TestFirmwareVersion = "1.5.0"
)

// Status bytes the module reports
const (
	StatusIdle          = 0
	StatusNoSSIDAvail   = 1
	StatusScanCompleted = 2
	StatusConnected     = 3
	StatusConnectFailed = 4
	StatusDisconnected  = 6
)
