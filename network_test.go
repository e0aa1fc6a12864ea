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
	"net"
	"testing"
	"time"

	"github.com/ZaparooProject/go-nina/internal/frame"
	testutil "github.com/ZaparooProject/go-nina/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentNetworkQueries(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	device, mock := newTestDevice(t)
	mock.SetResponse(frame.CmdGetCurrSSID, testutil.BuildReply(frame.CmdGetCurrSSID, []byte("HomeNet\x00")))
	mock.SetResponse(frame.CmdGetCurrBSSID, testutil.BuildReply(frame.CmdGetCurrBSSID, testutil.Reversed(testutil.TestBSSID)))
	mock.SetResponse(frame.CmdGetCurrRSSI, testutil.BuildInt32Response(frame.CmdGetCurrRSSI, -61))
	mock.SetResponse(frame.CmdGetCurrEnct, testutil.BuildByteReply(frame.CmdGetCurrEnct, 4))

	ssid, err := device.CurrentSSIDContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "HomeNet", ssid)
	assert.Equal(t, []byte{0xE0, 0x23, 0x01, 0x01, 0xFF, 0xEE, 0xFF, 0xFF}, mock.LastRequest())

	bssid, err := device.CurrentBSSIDContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, net.HardwareAddr(testutil.TestBSSID), bssid)

	rssi, err := device.CurrentRSSIContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(-61), rssi)

	enc, err := device.CurrentEncryptionContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, EncryptionCCMP, enc)

	requireReleased(t, mock)
	assert.Equal(t, 4, mock.AcquireCount())
}

func TestIPAddress(t *testing.T) {
	t.Parallel()

	device, mock := newTestDevice(t)
	mock.SetResponse(frame.CmdGetIPAddr, testutil.BuildIPConfigResponse(
		[]byte{192, 168, 1, 20}, []byte{255, 255, 255, 0}, []byte{192, 168, 1, 1}))

	cfg, err := device.IPAddressContext(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.20", cfg.IP.String())
	assert.Equal(t, "ffffff00", cfg.Mask.String())
	assert.Equal(t, "192.168.1.1", cfg.Gateway.String())
}

func TestIPAddress_WrongShape(t *testing.T) {
	t.Parallel()

	device, mock := newTestDevice(t)
	mock.SetResponse(frame.CmdGetIPAddr, testutil.BuildIPConfigResponse(
		[]byte{192, 168, 1, 20}, []byte{255, 255, 255}, []byte{192, 168, 1, 1}))

	_, err := device.IPAddressContext(context.Background())
	require.ErrorIs(t, err, ErrInvalidResponse)

	mock.SetResponse(frame.CmdGetIPAddr, testutil.BuildReply(frame.CmdGetIPAddr, []byte{1, 2, 3, 4}))
	_, err = device.IPAddressContext(context.Background())
	require.ErrorIs(t, err, ErrParamCountMismatch)
}

func TestModuleQueries(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	device, mock := newTestDevice(t)
	mock.SetResponse(frame.CmdGetReasonCode, testutil.BuildByteReply(frame.CmdGetReasonCode, 201))
	mock.SetResponse(frame.CmdGetTemperature, testutil.BuildFloat32Response(frame.CmdGetTemperature, 41.5))
	mock.SetResponse(frame.CmdGetTime, testutil.BuildInt32Response(frame.CmdGetTime, 1_700_000_000))

	reason, err := device.ReasonCodeContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint8(201), reason)

	temp, err := device.TemperatureContext(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 41.5, temp, 0.001)

	now, err := device.TimeContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, time.Unix(1_700_000_000, 0).UTC(), now)
}

func TestTime_NotSynchronised(t *testing.T) {
	t.Parallel()

	device, mock := newTestDevice(t)
	mock.SetResponse(frame.CmdGetTime, testutil.BuildInt32Response(frame.CmdGetTime, 0))

	now, err := device.TimeContext(context.Background())
	require.NoError(t, err)
	assert.True(t, now.IsZero())
}

func TestScanNetworkDetails(t *testing.T) {
	t.Parallel()

	device, mock := newTestDevice(t)
	mock.SetReplyFunc(func(request []byte) []byte {
		switch request[1] {
		case frame.CmdScanNetworks:
			return testutil.BuildScanResponse("HomeNet", "Cafe")
		case frame.CmdGetIdxRSSI:
			return testutil.BuildInt32Response(frame.CmdGetIdxRSSI, -40-int32(request[4]))
		case frame.CmdGetIdxEnct:
			return testutil.BuildByteReply(frame.CmdGetIdxEnct, 7)
		case frame.CmdGetIdxBSSID:
			bssid := append([]byte(nil), testutil.TestBSSID...)
			bssid[5] = request[4]
			return testutil.BuildReply(frame.CmdGetIdxBSSID, testutil.Reversed(bssid))
		case frame.CmdGetIdxChannel:
			return testutil.BuildByteReply(frame.CmdGetIdxChannel, 6+request[4]*5)
		default:
			return testutil.BuildErrorResponse()
		}
	})

	networks, err := device.ScanNetworkDetailsContext(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, networks, 2)

	assert.Equal(t, "Cafe", networks[1].SSID)
	assert.Equal(t, int32(-41), networks[1].RSSI)
	assert.Equal(t, EncryptionNone, networks[1].Encryption)
	assert.Equal(t, uint8(11), networks[1].Channel)
	assert.Equal(t, byte(1), networks[1].BSSID[5])
	assert.Equal(t, 1, mock.GetCallCount(frame.CmdScanNetworks))
	assert.Equal(t, 2, mock.GetCallCount(frame.CmdGetIdxChannel))
	requireReleased(t, mock)
}

func TestStationSetup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	device, mock := newTestDevice(t)
	mock.SetResponse(frame.CmdSetNet, testutil.BuildByteReply(frame.CmdSetNet, 1))
	mock.SetResponse(frame.CmdSetHostname, testutil.BuildByteReply(frame.CmdSetHostname, 1))
	mock.SetResponse(frame.CmdSetDebug, testutil.BuildByteReply(frame.CmdSetDebug, 1))

	result, err := device.SetNetworkContext(ctx, "OpenCafe")
	require.NoError(t, err)
	assert.True(t, result.OK())

	result, err = device.SetHostnameContext(ctx, "ninactl")
	require.NoError(t, err)
	assert.True(t, result.OK())

	result, err = device.SetDebugContext(ctx, true)
	require.NoError(t, err)
	assert.True(t, result.OK())
	assert.Equal(t, []byte{0xE0, 0x1A, 0x01, 0x01, 0x01, 0xEE, 0xFF, 0xFF}, mock.LastRequest())

	_, err = device.SetHostnameContext(ctx, "")
	require.ErrorIs(t, err, ErrArgumentOutOfRange)
	_, err = device.SetNetworkContext(ctx, "")
	require.ErrorIs(t, err, ErrArgumentOutOfRange)
}

func TestNetworkQueriesWithoutContext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		call   func(*testing.T, *Device) error
		name   string
		cmd    byte
		reply  []byte
		expect []byte
	}{
		{
			name:   "CurrentSSID",
			cmd:    frame.CmdGetCurrSSID,
			reply:  testutil.BuildReply(frame.CmdGetCurrSSID, []byte("HomeNet\x00")),
			expect: []byte{0xE0, 0x23, 0x01, 0x01, 0xFF, 0xEE, 0xFF, 0xFF},
			call: func(t *testing.T, d *Device) error {
				ssid, err := d.CurrentSSID()
				assert.Equal(t, "HomeNet", ssid)
				return err
			},
		},
		{
			name:   "SetDebug",
			cmd:    frame.CmdSetDebug,
			reply:  testutil.BuildByteReply(frame.CmdSetDebug, 1),
			expect: []byte{0xE0, 0x1A, 0x01, 0x01, 0x01, 0xEE, 0xFF, 0xFF},
			call: func(t *testing.T, d *Device) error {
				_, err := d.SetDebug(true)
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			device, mock := newTestDevice(t)
			mock.SetResponse(tt.cmd, tt.reply)

			require.NoError(t, tt.call(t, device))
			assert.Equal(t, tt.expect, mock.LastRequest())
			requireReleased(t, mock)
		})
	}
}
