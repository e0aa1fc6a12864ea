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
	"testing"
	"time"

	"github.com/ZaparooProject/go-nina/internal/frame"
	testutil "github.com/ZaparooProject/go-nina/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(attempts int) *RetryConfig {
	return &RetryConfig{
		MaxAttempts:       attempts,
		InitialBackoff:    time.Microsecond,
		MaxBackoff:        10 * time.Microsecond,
		BackoffMultiplier: 2.0,
		Jitter:            0.1,
		RetryTimeout:      time.Second,
	}
}

func TestRetryWithConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		wantErr   error
		fail      error
		name      string
		failures  int
		attempts  int
		wantCalls int
	}{
		{name: "first try", attempts: 3, wantCalls: 1},
		{name: "recovers", fail: ErrFraming, failures: 2, attempts: 3, wantCalls: 3},
		{name: "exhausted", fail: ErrFraming, failures: 5, attempts: 3, wantCalls: 3, wantErr: ErrFraming},
		{name: "permanent", fail: ErrDeviceErrorReply, failures: 5, attempts: 3, wantCalls: 1, wantErr: ErrDeviceErrorReply},
		{name: "zero attempts runs once", fail: ErrFraming, failures: 5, attempts: 0, wantCalls: 1, wantErr: ErrFraming},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			calls := 0
			err := RetryWithConfig(context.Background(), fastRetry(tt.attempts), func() error {
				calls++
				if calls <= tt.failures {
					return tt.fail
				}
				return nil
			})

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, calls)
		})
	}
}

func TestRetryWithConfig_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithConfig(ctx, nil, func() error { return nil })
	require.ErrorIs(t, err, context.Canceled)
}

func TestWithRetry_Device(t *testing.T) {
	t.Parallel()

	device, mock := newTestDevice(t)
	good := testutil.BuildConnectionStatusResponse(testutil.StatusConnected)
	calls := 0
	mock.SetReplyFunc(func([]byte) []byte {
		calls++
		if calls == 1 {
			return []byte{0xE0, 0xA0, 0x01, 0x01, 0x03, 0x00}
		}
		return good
	})

	status, err := WithRetry(context.Background(), fastRetry(3), device.ConnectionStatusContext)
	require.NoError(t, err)
	assert.Equal(t, StatusConnected, status)
	assert.Equal(t, 2, mock.GetCallCount(frame.CmdGetConnStatus))
	requireReleased(t, mock)
}

func TestJittered(t *testing.T) {
	t.Parallel()

	assert.Equal(t, time.Second, jittered(time.Second, 0))
	for range 100 {
		d := jittered(100*time.Millisecond, 0.1)
		assert.GreaterOrEqual(t, d, 90*time.Millisecond)
		assert.LessOrEqual(t, d, 110*time.Millisecond)
	}
}
