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

package polling

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	nina "github.com/ZaparooProject/go-nina"
	"github.com/ZaparooProject/go-nina/internal/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type transition struct {
	previous nina.Status
	current  nina.Status
}

type recorder struct {
	transitions []transition
	lost        []nina.Status
	errs        []error
	connected   int
	mu          sync.Mutex
}

func (r *recorder) callbacks() MonitorCallbacks {
	return MonitorCallbacks{
		OnStatusChanged: func(previous, current nina.Status) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.transitions = append(r.transitions, transition{previous, current})
		},
		OnConnected: func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.connected++
		},
		OnConnectionLost: func(current nina.Status) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.lost = append(r.lost, current)
		},
		OnError: func(err error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.errs = append(r.errs, err)
		},
	}
}

func (r *recorder) snapshot() (transitions []transition, lost []nina.Status, connected, errs int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]transition(nil), r.transitions...), append([]nina.Status(nil), r.lost...),
		r.connected, len(r.errs)
}

func TestMonitorPollOnceDispatchesTransitions(t *testing.T) {
	t.Parallel()

	script := newStatusScript(0, 0, 3, 5)
	device, _ := newScriptedDevice(t, script)
	rec := &recorder{}

	monitor, err := NewMonitor(device, fastConfig(), rec.callbacks())
	require.NoError(t, err)

	ctx := context.Background()
	for _, want := range []nina.Status{
		nina.StatusIdle, nina.StatusIdle, nina.StatusConnected, nina.StatusConnectionLost,
	} {
		got, pollErr := monitor.PollOnce(ctx)
		require.NoError(t, pollErr)
		assert.Equal(t, want, got)
	}

	transitions, lost, connected, errs := rec.snapshot()
	assert.Equal(t, []transition{
		{nina.StatusIdle, nina.StatusConnected},
		{nina.StatusConnected, nina.StatusConnectionLost},
	}, transitions)
	assert.Equal(t, []nina.Status{nina.StatusConnectionLost}, lost)
	assert.Equal(t, 1, connected)
	assert.Zero(t, errs)

	state := monitor.State()
	assert.Equal(t, nina.StatusConnectionLost, state.Status)
	assert.Equal(t, 2, state.Changes)
	assert.False(t, state.Connected())

	metrics := monitor.Metrics()
	assert.Equal(t, int64(4), metrics.PollCycles)
	assert.Equal(t, int64(2), metrics.StatusChanges)
	assert.Zero(t, metrics.PollErrors)
}

func TestMonitorConnectedOnFirstPoll(t *testing.T) {
	t.Parallel()

	device, _ := newScriptedDevice(t, newStatusScript(3))
	rec := &recorder{}

	monitor, err := NewMonitor(device, fastConfig(), rec.callbacks())
	require.NoError(t, err)

	_, err = monitor.PollOnce(context.Background())
	require.NoError(t, err)

	transitions, _, connected, _ := rec.snapshot()
	assert.Empty(t, transitions)
	assert.Equal(t, 1, connected)
	assert.True(t, monitor.State().Connected())
}

func TestMonitorReportsErrors(t *testing.T) {
	t.Parallel()

	device, mock := newScriptedDevice(t, newStatusScript(3))
	rec := &recorder{}

	monitor, err := NewMonitor(device, fastConfig(), rec.callbacks())
	require.NoError(t, err)

	mock.SetError(frame.CmdGetConnStatus, errors.New("bus fault"))
	_, err = monitor.PollOnce(context.Background())
	require.Error(t, err)

	_, _, _, errs := rec.snapshot()
	assert.Equal(t, 1, errs)
	assert.Equal(t, int64(1), monitor.Metrics().PollErrors)
	assert.False(t, monitor.State().Known)
}

func TestMonitorAdaptiveInterval(t *testing.T) {
	t.Parallel()

	device, _ := newScriptedDevice(t, newStatusScript(3))
	cfg := fastConfig()
	cfg.StableAfter = 0

	monitor, err := NewMonitor(device, cfg, MonitorCallbacks{})
	require.NoError(t, err)
	assert.Equal(t, cfg.PollInterval, monitor.CurrentInterval())

	cfg.StableAfter = time.Nanosecond
	_, err = monitor.PollOnce(context.Background())
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		_, pollErr := monitor.PollOnce(context.Background())
		return pollErr == nil && monitor.CurrentInterval() == cfg.IdleInterval
	}, time.Second, time.Millisecond)
}

func TestMonitorStartStop(t *testing.T) {
	t.Parallel()

	script := newStatusScript(0, 3)
	device, mock := newScriptedDevice(t, script)
	rec := &recorder{}

	monitor, err := NewMonitor(device, fastConfig(), rec.callbacks())
	require.NoError(t, err)

	require.NoError(t, monitor.Start(context.Background()))
	require.ErrorIs(t, monitor.Start(context.Background()), ErrMonitorRunning)

	require.Eventually(t, func() bool {
		return monitor.State().Connected()
	}, time.Second, time.Millisecond)

	monitor.Stop()
	monitor.Stop()

	polls := script.pollCount()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, polls, script.pollCount(), "no polling after Stop")
	assert.False(t, mock.IsHeld())
	assert.Same(t, device, monitor.Device())

	_, _, connected, _ := rec.snapshot()
	assert.Equal(t, 1, connected)
}

func TestMonitorStopsWithContext(t *testing.T) {
	t.Parallel()

	device, _ := newScriptedDevice(t, newStatusScript(0))
	monitor, err := NewMonitor(device, fastConfig(), MonitorCallbacks{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, monitor.Start(ctx))
	require.Eventually(t, func() bool {
		return monitor.Metrics().PollCycles > 2
	}, time.Second, time.Millisecond)

	cancel()
	monitor.Stop()
}

func TestNewMonitorInvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := NewMonitor(nil, &Config{}, MonitorCallbacks{})
	require.ErrorIs(t, err, ErrInvalidConfig)
}
