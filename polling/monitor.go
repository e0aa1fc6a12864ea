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
	"sync/atomic"
	"time"

	nina "github.com/ZaparooProject/go-nina"
	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// ErrMonitorRunning is returned by Start on a monitor that is already running
var ErrMonitorRunning = errors.New("monitor already running")

// MonitorCallbacks receives connection events. Callbacks run on the monitor
// goroutine and must not block for long.
type MonitorCallbacks struct {
	OnStatusChanged  func(previous, current nina.Status)
	OnConnected      func()
	OnConnectionLost func(current nina.Status)
	OnError          func(err error)
}

// MonitorMetrics tracks operational metrics for a Monitor
type MonitorMetrics struct {
	PollCycles      int64         // Total number of polling cycles
	PollErrors      int64         // Number of polling errors
	StatusChanges   int64         // Number of status transitions
	LastPollLatency time.Duration // Duration of last polling operation
}

// Monitor polls the module's connection status in the background and
// reports transitions. The interval backs off to IdleInterval once the
// status has been stable for StableAfter.
type Monitor struct {
	device          *nina.Device
	config          *Config
	clock           clock.Clock
	cancel          context.CancelFunc
	done            chan struct{}
	callbacks       MonitorCallbacks
	state           LinkState
	pollCycles      atomic.Int64
	pollErrors      atomic.Int64
	statusChanges   atomic.Int64
	lastPollLatency atomic.Int64
	currentInterval atomic.Int64
	mu              sync.Mutex
}

// NewMonitor creates a new connection monitor
func NewMonitor(device *nina.Device, config *Config, callbacks MonitorCallbacks) (*Monitor, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	m := &Monitor{
		device:    device,
		config:    config,
		clock:     config.clock(),
		callbacks: callbacks,
	}
	m.currentInterval.Store(int64(config.PollInterval))
	return m, nil
}

// Start begins monitoring in a new goroutine. The monitor stops when ctx is
// done or Stop is called.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.done != nil {
		return ErrMonitorRunning
	}

	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	go m.pollLoop(ctx, m.done)
	return nil
}

// Stop ends monitoring and waits for the goroutine to exit
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// pollLoop runs continuous polling until ctx is done
func (m *Monitor) pollLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		_, _ = m.PollOnce(ctx)

		timer := m.clock.Timer(m.CurrentInterval())
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// PollOnce reads the connection status once and dispatches callbacks
func (m *Monitor) PollOnce(ctx context.Context) (nina.Status, error) {
	start := m.clock.Now()
	status, err := m.device.ConnectionStatusContext(ctx)
	m.lastPollLatency.Store(int64(m.clock.Since(start)))
	m.pollCycles.Add(1)

	if err != nil {
		if ctx.Err() != nil {
			return status, err
		}
		m.pollErrors.Add(1)
		m.device.Logger().Debug("status poll failed", zap.Error(err))
		if m.callbacks.OnError != nil {
			m.callbacks.OnError(err)
		}
		return status, err
	}

	m.mu.Lock()
	wasKnown := m.state.Known
	previous, changed := m.state.observe(status, start)
	stable := m.state.StableFor(m.clock.Now())
	m.mu.Unlock()

	m.adjustPollInterval(stable)

	switch {
	case changed:
		m.statusChanges.Add(1)
		m.device.Logger().Debug("connection status changed",
			zap.Stringer("previous", previous),
			zap.Stringer("current", status))
		m.dispatchChange(previous, status)
	case !wasKnown && status.IsConnected():
		if m.callbacks.OnConnected != nil {
			m.callbacks.OnConnected()
		}
	}
	return status, nil
}

func (m *Monitor) dispatchChange(previous, current nina.Status) {
	if m.callbacks.OnStatusChanged != nil {
		m.callbacks.OnStatusChanged(previous, current)
	}
	switch {
	case current.IsConnected():
		if m.callbacks.OnConnected != nil {
			m.callbacks.OnConnected()
		}
	case previous.IsConnected():
		if m.callbacks.OnConnectionLost != nil {
			m.callbacks.OnConnectionLost(current)
		}
	}
}

// adjustPollInterval slows polling once the status has settled
func (m *Monitor) adjustPollInterval(stable time.Duration) {
	interval := m.config.PollInterval
	if m.config.StableAfter > 0 && stable >= m.config.StableAfter {
		interval = m.config.IdleInterval
	}
	m.currentInterval.Store(int64(interval))
}

// State returns the current link state
func (m *Monitor) State() LinkState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Metrics returns current operational metrics
func (m *Monitor) Metrics() MonitorMetrics {
	return MonitorMetrics{
		PollCycles:      m.pollCycles.Load(),
		PollErrors:      m.pollErrors.Load(),
		StatusChanges:   m.statusChanges.Load(),
		LastPollLatency: time.Duration(m.lastPollLatency.Load()),
	}
}

// CurrentInterval returns the current adaptive polling interval
func (m *Monitor) CurrentInterval() time.Duration {
	return time.Duration(m.currentInterval.Load())
}

// Device returns the monitored device
func (m *Monitor) Device() *nina.Device {
	return m.device
}
