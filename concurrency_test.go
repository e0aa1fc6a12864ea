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
	"sync"
	"testing"
	"time"

	"github.com/ZaparooProject/go-nina/internal/frame"
	testutil "github.com/ZaparooProject/go-nina/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentOperationsSerialise verifies that operations issued from
// several goroutines never interleave on the bus.
func TestConcurrentOperationsSerialise(t *testing.T) {
	t.Parallel()

	device, mock := newTestDevice(t)
	mock.SetResponse(frame.CmdGetFwVersion, testutil.BuildFirmwareVersionResponse("1.5.0"))
	mock.SetResponse(frame.CmdGetConnStatus, testutil.BuildConnectionStatusResponse(testutil.StatusConnected))
	mock.SetResponse(frame.CmdGetMACAddr, testutil.BuildMACResponse(testutil.TestMAC))

	const workers = 8
	const perWorker = 5

	var wg sync.WaitGroup
	errs := make(chan error, workers*perWorker*3)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWorker {
				if _, err := device.FirmwareVersion(); err != nil {
					errs <- err
				}
				if _, err := device.ConnectionStatus(); err != nil {
					errs <- err
				}
				if _, err := device.MACAddress(); err != nil {
					errs <- err
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, workers*perWorker*3, mock.AcquireCount())
	requireReleased(t, mock)
}

// TestCancelWhileWaitingForBus verifies a caller blocked on a held bus gives
// up when its context ends and leaves nothing behind.
func TestCancelWhileWaitingForBus(t *testing.T) {
	t.Parallel()

	device, mock := newTestDevice(t)
	require.NoError(t, mock.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := device.FirmwareVersionContext(ctx)
		done <- err
	}()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(time.Second):
		t.Fatal("operation did not give up waiting for the bus")
	}

	require.NoError(t, mock.Release())
	requireReleased(t, mock)
	assert.Zero(t, mock.TransferredBytes())
}

// TestFailedOperationsDoNotWedgeBus runs failing and succeeding operations
// back to back to make sure a failure never leaves the bus held.
func TestFailedOperationsDoNotWedgeBus(t *testing.T) {
	t.Parallel()

	device, mock := newTestDevice(t)
	mock.SetResponse(frame.CmdGetConnStatus, testutil.BuildErrorResponse())
	mock.SetResponse(frame.CmdGetFwVersion, testutil.BuildFirmwareVersionResponse("1.5.0"))

	for range 5 {
		_, err := device.ConnectionStatus()
		require.ErrorIs(t, err, ErrDeviceErrorReply)

		version, err := device.FirmwareVersion()
		require.NoError(t, err)
		assert.Equal(t, "1.5.0", version)
	}
	requireReleased(t, mock)
}

func TestSetReadyTimeoutDuringExchanges(t *testing.T) {
	t.Parallel()

	device, mock := newTestDevice(t)
	mock.SetResponse(frame.CmdGetConnStatus, testutil.BuildConnectionStatusResponse(testutil.StatusIdle))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for range 50 {
			_, err := device.ConnectionStatus()
			assert.NoError(t, err)
		}
	}()
	go func() {
		defer wg.Done()
		for i := range 50 {
			assert.NoError(t, device.SetReadyTimeout(time.Duration(50+i)*time.Millisecond))
		}
	}()
	wg.Wait()

	assert.Equal(t, 99*time.Millisecond, device.ReadyTimeout())
	assert.Equal(t, 99*time.Millisecond, device.Config().ReadyTimeout)
	requireReleased(t, mock)
}
