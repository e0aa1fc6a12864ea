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
	"net"

	"github.com/ZaparooProject/go-nina/internal/frame"
)

// Field limits of the NINA command set
const (
	MaxSSIDLength       = 32
	MaxPassphraseLength = 64
	MaxHostnameLength   = 32
	MACLength           = 6
	// MaxScanRecords is the largest record count a scan reply can announce.
	MaxScanRecords = frame.MaxReplyParams
)

// Status is the module's WiFi connection status
type Status byte

// Connection status values reported by the module
const (
	StatusIdle           Status = 0
	StatusNoSSIDAvail    Status = 1
	StatusScanCompleted  Status = 2
	StatusConnected      Status = 3
	StatusConnectFailed  Status = 4
	StatusConnectionLost Status = 5
	StatusDisconnected   Status = 6
	StatusAPListening    Status = 7
	StatusAPConnected    Status = 8
	StatusAPFailed       Status = 9
	StatusNoModule       Status = 255
)

// String returns the status name
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusNoSSIDAvail:
		return "no-ssid-available"
	case StatusScanCompleted:
		return "scan-completed"
	case StatusConnected:
		return "connected"
	case StatusConnectFailed:
		return "connect-failed"
	case StatusConnectionLost:
		return "connection-lost"
	case StatusDisconnected:
		return "disconnected"
	case StatusAPListening:
		return "ap-listening"
	case StatusAPConnected:
		return "ap-connected"
	case StatusAPFailed:
		return "ap-failed"
	case StatusNoModule:
		return "no-module"
	default:
		return fmt.Sprintf("status(%d)", byte(s))
	}
}

// IsConnected reports whether the station is associated
func (s Status) IsConnected() bool {
	return s == StatusConnected
}

// IsTerminalFailure reports whether a join attempt has definitely failed
func (s Status) IsTerminalFailure() bool {
	return s == StatusConnectFailed || s == StatusNoSSIDAvail
}

// CommandResult is the one-byte outcome of a command
type CommandResult byte

// Command results
const (
	ResultFailure CommandResult = 0
	ResultSuccess CommandResult = 1
)

// OK reports whether the module accepted the command
func (r CommandResult) OK() bool {
	return r == ResultSuccess
}

// String returns the result name
func (r CommandResult) String() string {
	switch r {
	case ResultFailure:
		return "failure"
	case ResultSuccess:
		return "success"
	default:
		return fmt.Sprintf("result(%d)", byte(r))
	}
}

// Err returns nil for success and ErrCommandFailed otherwise
func (r CommandResult) Err() error {
	if r.OK() {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrCommandFailed, r)
}

// EncryptionType is the security of a network
type EncryptionType byte

// Encryption types reported by the module
const (
	EncryptionTKIP    EncryptionType = 2
	EncryptionCCMP    EncryptionType = 4
	EncryptionWEP     EncryptionType = 5
	EncryptionNone    EncryptionType = 7
	EncryptionAuto    EncryptionType = 8
	EncryptionUnknown EncryptionType = 255
)

// String returns the encryption name
func (e EncryptionType) String() string {
	switch e {
	case EncryptionTKIP:
		return "wpa-tkip"
	case EncryptionCCMP:
		return "wpa2-ccmp"
	case EncryptionWEP:
		return "wep"
	case EncryptionNone:
		return "open"
	case EncryptionAuto:
		return "auto"
	case EncryptionUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("encryption(%d)", byte(e))
	}
}

// ScanResult is the outcome of GetScanNetworks
type ScanResult struct {
	SSIDs []string
	// Reported is the number of networks the module announced.
	Reported int
	// Truncated is set when Reported exceeded the requested maximum.
	Truncated bool
}

// Network describes one scanned access point
type Network struct {
	SSID       string
	BSSID      net.HardwareAddr
	RSSI       int32
	Encryption EncryptionType
	Channel    uint8
}

// IPConfig is the station's IPv4 configuration
type IPConfig struct {
	IP      net.IP
	Mask    net.IPMask
	Gateway net.IP
}

// Opcodes used by the device operations
const (
	cmdSetNet            = frame.CmdSetNet
	cmdSetPassphrase     = frame.CmdSetPassphrase
	cmdSetHostname       = frame.CmdSetHostname
	cmdSetDebug          = frame.CmdSetDebug
	cmdGetTemperature    = frame.CmdGetTemperature
	cmdGetReasonCode     = frame.CmdGetReasonCode
	cmdGetConnStatus     = frame.CmdGetConnStatus
	cmdGetIPAddr         = frame.CmdGetIPAddr
	cmdGetMACAddr        = frame.CmdGetMACAddr
	cmdGetCurrSSID       = frame.CmdGetCurrSSID
	cmdGetCurrBSSID      = frame.CmdGetCurrBSSID
	cmdGetCurrRSSI       = frame.CmdGetCurrRSSI
	cmdGetCurrEnct       = frame.CmdGetCurrEnct
	cmdScanNetworks      = frame.CmdScanNetworks
	cmdDisconnect        = frame.CmdDisconnect
	cmdGetIdxRSSI        = frame.CmdGetIdxRSSI
	cmdGetIdxEnct        = frame.CmdGetIdxEnct
	cmdStartScanNetworks = frame.CmdStartScanNetworks
	cmdGetFwVersion      = frame.CmdGetFwVersion
	cmdGetTime           = frame.CmdGetTime
	cmdGetIdxBSSID       = frame.CmdGetIdxBSSID
	cmdGetIdxChannel     = frame.CmdGetIdxChannel
)

// dummyParam is sent by queries the module expects to carry one ignored byte
var dummyParam = []byte{frame.Dummy}
