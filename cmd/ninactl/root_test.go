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

package main

import (
	"bytes"
	"context"
	"testing"

	nina "github.com/ZaparooProject/go-nina"
	"github.com/ZaparooProject/go-nina/internal/frame"
	testutil "github.com/ZaparooProject/go-nina/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes ninactl against a mock module and returns its output
func runCLI(t *testing.T, mock *nina.MockTransport, args ...string) (string, error) {
	t.Helper()

	mock.SetResponse(frame.CmdGetFwVersion, testutil.BuildFirmwareVersionResponse(testutil.TestFirmwareVersion))
	a := &app{factory: func(nina.LinkConfig) (nina.Transport, error) { return mock, nil }}

	var out bytes.Buffer
	cmd := newRootCmdFor(a)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	mock := nina.NewMockTransport()
	out, err := runCLI(t, mock, "version")
	require.NoError(t, err)
	assert.Equal(t, "Firmware: 1.5.0\n", out)
	assert.True(t, mock.IsClosed())
	assert.Equal(t, 2, mock.GetCallCount(frame.CmdGetFwVersion), "reset check plus command")
}

func TestVersionCommandWithoutReset(t *testing.T) {
	t.Parallel()

	mock := nina.NewMockTransport()
	out, err := runCLI(t, mock, "version", "--reset=false")
	require.NoError(t, err)
	assert.Equal(t, "Firmware: 1.5.0\n", out)
	assert.Equal(t, 1, mock.GetCallCount(frame.CmdGetFwVersion))
	assert.NotContains(t, mock.Delays(), nina.BootTime, "no reset")
}

func TestMACCommand(t *testing.T) {
	t.Parallel()

	mock := nina.NewMockTransport()
	mock.SetResponse(frame.CmdGetMACAddr, testutil.BuildMACResponse(testutil.TestMAC))

	out, err := runCLI(t, mock, "mac")
	require.NoError(t, err)
	assert.Equal(t, "MAC: 24:0a:c4:12:34:56\n", out)
}

func TestStatusCommand(t *testing.T) {
	t.Parallel()

	mock := nina.NewMockTransport()
	mock.SetResponse(frame.CmdGetConnStatus, testutil.BuildConnectionStatusResponse(testutil.StatusIdle))

	out, err := runCLI(t, mock, "status")
	require.NoError(t, err)
	assert.Equal(t, "Status: idle\n", out)
}

func TestStatusCommandConnected(t *testing.T) {
	t.Parallel()

	mock := nina.NewMockTransport()
	mock.SetResponse(frame.CmdGetConnStatus, testutil.BuildConnectionStatusResponse(testutil.StatusConnected))
	mock.SetResponse(frame.CmdGetCurrSSID, testutil.BuildReply(frame.CmdGetCurrSSID, []byte("home")))
	mock.SetResponse(frame.CmdGetCurrBSSID, testutil.BuildReply(frame.CmdGetCurrBSSID, testutil.Reversed(testutil.TestBSSID)))
	mock.SetResponse(frame.CmdGetCurrRSSI, testutil.BuildInt32Response(frame.CmdGetCurrRSSI, -52))
	mock.SetResponse(frame.CmdGetCurrEnct, testutil.BuildByteReply(frame.CmdGetCurrEnct, 4))
	mock.SetResponse(frame.CmdGetIPAddr, testutil.BuildIPConfigResponse(
		[]byte{192, 168, 1, 20}, []byte{255, 255, 255, 0}, []byte{192, 168, 1, 1}))

	out, err := runCLI(t, mock, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Status: connected\n")
	assert.Contains(t, out, "SSID: home\n")
	assert.Contains(t, out, "RSSI: -52 dBm\n")
	assert.Contains(t, out, "Security: wpa2-ccmp\n")
	assert.Contains(t, out, "IP: 192.168.1.20/255.255.255.0 gateway 192.168.1.1\n")
}

func TestScanCommand(t *testing.T) {
	t.Parallel()

	mock := nina.NewMockTransport()
	mock.SetResponse(frame.CmdStartScanNetworks, testutil.BuildByteReply(frame.CmdStartScanNetworks, 1))
	mock.SetResponse(frame.CmdScanNetworks, testutil.BuildScanResponse("home", "cafe"))
	mock.SetResponse(frame.CmdGetIdxRSSI, testutil.BuildInt32Response(frame.CmdGetIdxRSSI, -60))
	mock.SetResponse(frame.CmdGetIdxEnct, testutil.BuildByteReply(frame.CmdGetIdxEnct, 7))
	mock.SetResponse(frame.CmdGetIdxBSSID, testutil.BuildReply(frame.CmdGetIdxBSSID, testutil.Reversed(testutil.TestBSSID)))
	mock.SetResponse(frame.CmdGetIdxChannel, testutil.BuildByteReply(frame.CmdGetIdxChannel, 6))

	out, err := runCLI(t, mock, "scan")
	require.NoError(t, err)
	assert.Contains(t, out, "SSID")
	assert.Contains(t, out, "home")
	assert.Contains(t, out, "cafe")
	assert.Contains(t, out, "open")
	assert.Equal(t, 2, mock.GetCallCount(frame.CmdGetIdxChannel))

	simple := nina.NewMockTransport()
	simple.SetResponse(frame.CmdStartScanNetworks, testutil.BuildByteReply(frame.CmdStartScanNetworks, 1))
	simple.SetResponse(frame.CmdScanNetworks, testutil.BuildScanResponse("home", "cafe", "lab"))

	out, err = runCLI(t, simple, "scan", "--simple", "--max", "2")
	require.NoError(t, err)
	assert.Equal(t, " 0  home\n 1  cafe\n(1 more not shown)\n", out)
}

func TestScanCommandRejected(t *testing.T) {
	t.Parallel()

	mock := nina.NewMockTransport()
	mock.SetResponse(frame.CmdStartScanNetworks, testutil.BuildByteReply(frame.CmdStartScanNetworks, 0))

	out, err := runCLI(t, mock, "scan")
	require.ErrorIs(t, err, nina.ErrCommandFailed)
	assert.Contains(t, out, "ERROR: start scan")
}

func TestConnectCommand(t *testing.T) {
	t.Parallel()

	mock := nina.NewMockTransport()
	mock.SetResponse(frame.CmdSetPassphrase, testutil.BuildByteReply(frame.CmdSetPassphrase, 1))
	mock.SetResponse(frame.CmdGetConnStatus, testutil.BuildConnectionStatusResponse(testutil.StatusConnected))

	out, err := runCLI(t, mock, "connect", "home", "--passphrase", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "Status: connected\n", out)

	request := mock.Requests()[len(mock.Requests())-2]
	assert.Equal(t, byte(frame.CmdSetPassphrase), request[1])
}

func TestConnectCommandNeedsSSID(t *testing.T) {
	t.Parallel()

	_, err := runCLI(t, nina.NewMockTransport(), "connect")
	require.Error(t, err)
}

func TestDisconnectCommand(t *testing.T) {
	t.Parallel()

	mock := nina.NewMockTransport()
	mock.SetResponse(frame.CmdDisconnect, testutil.BuildByteReply(frame.CmdDisconnect, 1))

	out, err := runCLI(t, mock, "disconnect")
	require.NoError(t, err)
	assert.Equal(t, "OK: disconnect\n", out)
}

func TestResetCommand(t *testing.T) {
	t.Parallel()

	mock := nina.NewMockTransport()
	out, err := runCLI(t, mock, "reset", "--reset=false")
	require.NoError(t, err)
	assert.Equal(t, "Firmware: 1.5.0\n", out)
	assert.Contains(t, mock.Delays(), nina.BootTime)
}

func TestBusFlagOverridesConfig(t *testing.T) {
	t.Parallel()

	var gotBus string
	mock := nina.NewMockTransport()
	mock.SetResponse(frame.CmdGetFwVersion, testutil.BuildFirmwareVersionResponse("1.5.0"))
	a := &app{factory: func(cfg nina.LinkConfig) (nina.Transport, error) {
		gotBus = cfg.Bus
		return mock, nil
	}}

	cmd := newRootCmdFor(a)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"version", "--bus", "SPI1.0"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Equal(t, "SPI1.0", gotBus)
}
