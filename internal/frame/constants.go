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

// Package frame provides frame encoding, decoding and protocol constants for
// the NINA co-processor SPI link.
package frame

// Frame markers and control bytes
const (
	StartCmd  = 0xE0 // First byte of every frame
	EndCmd    = 0xEE // Last meaningful byte of every frame
	ErrCmd    = 0xEF // Sent in place of the echoed opcode when the module rejects a command
	ReplyFlag = 0x80 // OR-ed into the opcode of a reply
	Dummy     = 0xFF // Pad byte and filler clocked out while reading
)

// Frame size limits
const (
	MaxParams         = 7   // Maximum parameters in a request frame
	MaxReplyParams    = 255 // Maximum parameters a reply can announce
	MaxParamLen       = 255 // Parameter lengths are a single byte
	Alignment         = 4   // Request frames are padded to this boundary
	DefaultProbeLimit = 100 // Bytes examined while hunting for StartCmd
	headerLen         = 3   // START, opcode, count
)

// Station mode commands
const (
	CmdSetNet          = 0x10
	CmdSetPassphrase   = 0x11
	CmdSetKey          = 0x12
	CmdSetIPConfig     = 0x14
	CmdSetDNSConfig    = 0x15
	CmdSetHostname     = 0x16
	CmdSetPowerMode    = 0x17
	CmdSetAPNet        = 0x18
	CmdSetAPPassphrase = 0x19
	CmdSetDebug        = 0x1A
	CmdGetTemperature  = 0x1B
	CmdGetReasonCode   = 0x1F
)

// Status queries
const (
	CmdGetConnStatus = 0x20
	CmdGetIPAddr     = 0x21
	CmdGetMACAddr    = 0x22
	CmdGetCurrSSID   = 0x23
	CmdGetCurrBSSID  = 0x24
	CmdGetCurrRSSI   = 0x25
	CmdGetCurrEnct   = 0x26
	CmdScanNetworks  = 0x27
)

// Socket commands. The driver does not issue these; they are listed so traces
// can be annotated.
const (
	CmdStartServerTCP = 0x28
	CmdGetStateTCP    = 0x29
	CmdDataSentTCP    = 0x2A
	CmdAvailDataTCP   = 0x2B
	CmdGetDataTCP     = 0x2C
	CmdStartClientTCP = 0x2D
	CmdStopClientTCP  = 0x2E
	CmdGetClientState = 0x2F
)

// Network management
const (
	CmdDisconnect        = 0x30
	CmdGetIdxRSSI        = 0x32
	CmdGetIdxEnct        = 0x33
	CmdReqHostByName     = 0x34
	CmdGetHostByName     = 0x35
	CmdStartScanNetworks = 0x36
	CmdGetFwVersion      = 0x37
	CmdSendDataUDP       = 0x39
	CmdGetRemoteData     = 0x3A
	CmdGetTime           = 0x3B
	CmdGetIdxBSSID       = 0x3C
	CmdGetIdxChannel     = 0x3D
	CmdPing              = 0x3E
	CmdGetSocket         = 0x3F
)

// Enterprise, buffer, pin and file commands (not issued by the driver)
const (
	CmdSetEnt          = 0x40
	CmdSendDataTCP     = 0x44
	CmdGetDatabufTCP   = 0x45
	CmdInsertDatabuf   = 0x46
	CmdSetPinMode      = 0x50
	CmdSetDigitalWrite = 0x51
	CmdSetAnalogWrite  = 0x52
	CmdWriteFile       = 0x60
	CmdReadFile        = 0x61
	CmdDeleteFile      = 0x62
	CmdExistsFile      = 0x63
	CmdDownloadFile    = 0x64
	CmdApplyOTA        = 0x65
	CmdRenameFile      = 0x66
	CmdDownloadOTA     = 0x67
)

var commandNames = map[byte]string{
	CmdSetNet: "SET_NET", CmdSetPassphrase: "SET_PASSPHRASE", CmdSetKey: "SET_KEY",
	CmdSetIPConfig: "SET_IP_CONFIG", CmdSetDNSConfig: "SET_DNS_CONFIG", CmdSetHostname: "SET_HOSTNAME",
	CmdSetPowerMode: "SET_POWER_MODE", CmdSetAPNet: "SET_AP_NET", CmdSetAPPassphrase: "SET_AP_PASSPHRASE",
	CmdSetDebug: "SET_DEBUG", CmdGetTemperature: "GET_TEMPERATURE", CmdGetReasonCode: "GET_REASON_CODE",
	CmdGetConnStatus: "GET_CONN_STATUS", CmdGetIPAddr: "GET_IPADDR", CmdGetMACAddr: "GET_MACADDR",
	CmdGetCurrSSID: "GET_CURR_SSID", CmdGetCurrBSSID: "GET_CURR_BSSID", CmdGetCurrRSSI: "GET_CURR_RSSI",
	CmdGetCurrEnct: "GET_CURR_ENCT", CmdScanNetworks: "SCAN_NETWORKS",
	CmdStartServerTCP: "START_SERVER_TCP", CmdGetStateTCP: "GET_STATE_TCP", CmdDataSentTCP: "DATA_SENT_TCP",
	CmdAvailDataTCP: "AVAIL_DATA_TCP", CmdGetDataTCP: "GET_DATA_TCP", CmdStartClientTCP: "START_CLIENT_TCP",
	CmdStopClientTCP: "STOP_CLIENT_TCP", CmdGetClientState: "GET_CLIENT_STATE_TCP",
	CmdDisconnect: "DISCONNECT", CmdGetIdxRSSI: "GET_IDX_RSSI", CmdGetIdxEnct: "GET_IDX_ENCT",
	CmdReqHostByName: "REQ_HOST_BY_NAME", CmdGetHostByName: "GET_HOST_BY_NAME",
	CmdStartScanNetworks: "START_SCAN_NETWORKS", CmdGetFwVersion: "GET_FW_VERSION",
	CmdSendDataUDP: "SEND_DATA_UDP", CmdGetRemoteData: "GET_REMOTE_DATA", CmdGetTime: "GET_TIME",
	CmdGetIdxBSSID: "GET_IDX_BSSID", CmdGetIdxChannel: "GET_IDX_CHANNEL", CmdPing: "PING",
	CmdGetSocket: "GET_SOCKET", CmdSetEnt: "SET_ENT", CmdSendDataTCP: "SEND_DATA_TCP",
	CmdGetDatabufTCP: "GET_DATABUF_TCP", CmdInsertDatabuf: "INSERT_DATABUF",
	CmdSetPinMode: "SET_PIN_MODE", CmdSetDigitalWrite: "SET_DIGITAL_WRITE", CmdSetAnalogWrite: "SET_ANALOG_WRITE",
	CmdWriteFile: "WRITE_FILE", CmdReadFile: "READ_FILE", CmdDeleteFile: "DELETE_FILE",
	CmdExistsFile: "EXISTS_FILE", CmdDownloadFile: "DOWNLOAD_FILE", CmdApplyOTA: "APPLY_OTA",
	CmdRenameFile: "RENAME_FILE", CmdDownloadOTA: "DOWNLOAD_OTA",
}

// CommandName returns the mnemonic for an opcode, or an empty string if the
// opcode is unknown. The reply flag is ignored.
func CommandName(opcode byte) string {
	return commandNames[opcode&^ReplyFlag]
}
