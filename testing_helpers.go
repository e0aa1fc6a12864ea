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
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ZaparooProject/go-nina/internal/frame"
	"github.com/benbjohnson/clock"
	"periph.io/x/conn/v3/gpio"
)

// LineEvent is a control line change seen by MockTransport
type LineEvent struct {
	Line  Line
	Level gpio.Level
}

// MockTransport emulates a NINA module on the far side of the link.
//
// A request is captured when chip select is released after bytes were
// written. The reply scripted for the request's opcode is then clocked out
// during the next selection. Reads with nothing queued return Dummy bytes,
// as an idle module does. Delays advance a mock clock instead of sleeping.
type MockTransport struct {
	readErr     error
	acquireErr  error
	transferErr error
	clock       *clock.Mock
	replyFunc   func(request []byte) []byte
	responses   map[byte][]byte
	errors      map[byte]error
	callCount   map[byte]int
	lines       map[Line]gpio.Level
	modes       map[Line]LineMode
	bus         chan struct{}
	requests    [][]byte
	lineEvents  []LineEvent
	delays      []time.Duration
	violations  []string
	tx          []byte
	rx          []byte
	idleBytes   int
	readyDelay  int
	pending     int
	acquires    int
	releases    int
	transferred int
	mu          sync.Mutex
	held        bool
	selected    bool
	closed      bool
	neverReady  bool
}

// NewMockTransport creates a new mock transport with a ready module
func NewMockTransport() *MockTransport {
	return &MockTransport{
		clock:     clock.NewMock(),
		responses: make(map[byte][]byte),
		errors:    make(map[byte]error),
		callCount: make(map[byte]int),
		lines:     map[Line]gpio.Level{LineChipSelect: gpio.High, LineReset: gpio.High, LineBoot: gpio.High},
		modes:     make(map[Line]LineMode),
		bus:       make(chan struct{}, 1),
	}
}

// Clock returns the mock clock advanced by Delay
func (m *MockTransport) Clock() *clock.Mock {
	return m.clock
}

// SetResponse scripts the reply frame sent for opcode
func (m *MockTransport) SetResponse(opcode byte, reply []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[opcode] = append([]byte(nil), reply...)
}

// SetResponseParams scripts a well-formed reply to opcode carrying params
func (m *MockTransport) SetResponseParams(opcode byte, params ...[]byte) error {
	reply, err := frame.EncodeReply(opcode, params...)
	if err != nil {
		return err
	}
	m.SetResponse(opcode, reply)
	return nil
}

// SetReplyFunc computes replies from the captured request. It takes
// precedence over scripted responses.
func (m *MockTransport) SetReplyFunc(fn func(request []byte) []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replyFunc = fn
}

// SetError makes the first reply read after a request for opcode fail with err
func (m *MockTransport) SetError(opcode byte, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[opcode] = err
}

// SetTransferError makes every transfer fail with err. Nil clears it.
func (m *MockTransport) SetTransferError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transferErr = err
}

// SetAcquireError makes Acquire fail with err. Nil clears it.
func (m *MockTransport) SetAcquireError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acquireErr = err
}

// SetIdleBytes sets how many Dummy bytes precede each reply
func (m *MockTransport) SetIdleBytes(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.idleBytes = n
}

// SetNeverReady keeps the ready line deasserted
func (m *MockTransport) SetNeverReady(never bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.neverReady = never
}

// SetReadyDelay sets how many samples of the ready line read high before it
// asserts, for every wait
func (m *MockTransport) SetReadyDelay(polls int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readyDelay = polls
	m.pending = polls
}

// Acquire implements Transport
func (m *MockTransport) Acquire(ctx context.Context) error {
	m.mu.Lock()
	acquireErr := m.acquireErr
	m.mu.Unlock()
	if acquireErr != nil {
		return acquireErr
	}

	select {
	case m.bus <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		<-m.bus
		return ErrTransportClosed
	}
	m.held = true
	m.acquires++
	m.pending = m.readyDelay
	m.readErr = nil
	return nil
}

// Release implements Transport
func (m *MockTransport) Release() error {
	m.mu.Lock()
	if !m.held {
		m.mu.Unlock()
		return ErrBusNotHeld
	}
	if m.selected {
		m.violations = append(m.violations, "bus released with chip select asserted")
	}
	m.held = false
	m.releases++
	m.mu.Unlock()

	<-m.bus
	return nil
}

// TransferByte implements Transport
func (m *MockTransport) TransferByte(keepSelected bool, out byte) (byte, error) {
	in := []byte{0}
	if err := m.TransferBlock(keepSelected, []byte{out}, in); err != nil {
		return 0, err
	}
	return in[0], nil
}

// TransferBlock implements Transport
func (m *MockTransport) TransferBlock(keepSelected bool, out, in []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkTransfer(); err != nil {
		return err
	}

	n := max(len(out), len(in))
	m.transferred += n
	reading := m.rx != nil
	if !reading {
		m.tx = append(m.tx, out...)
	}
	for i := range in {
		in[i] = m.nextByte()
	}
	if len(in) == 0 && reading {
		for range n {
			m.nextByte()
		}
	}

	if !keepSelected {
		m.deselect()
	}
	return nil
}

func (m *MockTransport) checkTransfer() error {
	if m.transferErr != nil {
		return m.transferErr
	}
	if !m.held || !m.selected {
		m.violations = append(m.violations, "transfer without bus and chip select")
		return errors.New("mock: transfer without bus and chip select")
	}
	if m.readErr != nil {
		err := m.readErr
		m.readErr = nil
		return err
	}
	return nil
}

func (m *MockTransport) nextByte() byte {
	if len(m.rx) == 0 {
		return frame.Dummy
	}
	b := m.rx[0]
	m.rx = m.rx[1:]
	return b
}

// deselect models the module's view of chip select going high: a written
// request is complete, or the reply phase is over.
func (m *MockTransport) deselect() {
	m.selected = false
	m.pending = m.readyDelay

	if len(m.tx) == 0 {
		m.rx = nil
		return
	}

	request := m.tx
	m.tx = nil
	m.requests = append(m.requests, request)

	var opcode byte
	if len(request) > 1 {
		opcode = request[1]
	}
	m.callCount[opcode]++

	var reply []byte
	switch {
	case m.replyFunc != nil:
		reply = m.replyFunc(request)
	default:
		reply = m.responses[opcode]
	}
	m.rx = make([]byte, 0, m.idleBytes+len(reply))
	for range m.idleBytes {
		m.rx = append(m.rx, frame.Dummy)
	}
	m.rx = append(m.rx, reply...)

	if err, ok := m.errors[opcode]; ok {
		m.readErr = err
	}
}

// ConfigureLine implements Transport
func (m *MockTransport) ConfigureLine(line Line, mode LineMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modes[line] = mode
	if mode == LineOutput {
		m.setLine(line, gpio.High)
	}
	return nil
}

// ReadLine implements Transport
func (m *MockTransport) ReadLine(line Line) (gpio.Level, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if line != LineReady {
		return m.lines[line], nil
	}
	if m.neverReady {
		return gpio.High, nil
	}
	if m.pending > 0 {
		m.pending--
		return gpio.High, nil
	}
	return gpio.Low, nil
}

// SetLine implements Transport
func (m *MockTransport) SetLine(line Line, level gpio.Level) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrTransportClosed
	}
	m.setLine(line, level)
	return nil
}

func (m *MockTransport) setLine(line Line, level gpio.Level) {
	m.lineEvents = append(m.lineEvents, LineEvent{Line: line, Level: level})
	m.lines[line] = level

	if line != LineChipSelect {
		return
	}
	switch {
	case level == gpio.Low && !m.selected:
		if !m.held {
			m.violations = append(m.violations, "chip select asserted without bus")
		}
		m.selected = true
	case level == gpio.High && m.selected:
		m.deselect()
	}
}

// Delay implements Transport by advancing the mock clock
func (m *MockTransport) Delay(ctx context.Context, d time.Duration) error {
	m.mu.Lock()
	m.delays = append(m.delays, d)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	m.clock.Add(d)
	return nil
}

// Close implements Transport
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Type implements Transport
func (*MockTransport) Type() TransportType {
	return TransportMock
}

// Requests returns every request frame captured so far
func (m *MockTransport) Requests() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.requests))
	for i, r := range m.requests {
		out[i] = append([]byte(nil), r...)
	}
	return out
}

// LastRequest returns the most recent request frame, or nil
func (m *MockTransport) LastRequest() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	return append([]byte(nil), m.requests[len(m.requests)-1]...)
}

// GetCallCount returns how many requests carried opcode
func (m *MockTransport) GetCallCount(opcode byte) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount[opcode]
}

// AcquireCount returns how many times the bus was acquired
func (m *MockTransport) AcquireCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.acquires
}

// ReleaseCount returns how many times the bus was released
func (m *MockTransport) ReleaseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.releases
}

// IsHeld reports whether the bus is currently acquired
func (m *MockTransport) IsHeld() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.held
}

// IsSelected reports whether chip select is asserted
func (m *MockTransport) IsSelected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selected
}

// IsClosed reports whether Close was called
func (m *MockTransport) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// TransferredBytes returns the number of bytes clocked in either direction
func (m *MockTransport) TransferredBytes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transferred
}

// LineEvents returns every control line change, oldest first
func (m *MockTransport) LineEvents() []LineEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]LineEvent(nil), m.lineEvents...)
}

// LineMode returns the last mode set for line
func (m *MockTransport) LineMode(line Line) (LineMode, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mode, ok := m.modes[line]
	return mode, ok
}

// Delays returns every delay requested, oldest first
func (m *MockTransport) Delays() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.delays...)
}

// Violations returns link discipline breaches such as transfers without
// chip select
func (m *MockTransport) Violations() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.violations...)
}

// String describes the mock for test failure messages
func (m *MockTransport) String() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fmt.Sprintf("mock(held=%t selected=%t requests=%d)", m.held, m.selected, len(m.requests))
}
