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
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// TraceDirection marks which way a traced event travelled
type TraceDirection string

const (
	// TraceTX is a frame sent to the module
	TraceTX TraceDirection = "TX"
	// TraceRX is bytes clocked in from the module
	TraceRX TraceDirection = "RX"
	// TraceWait is a wait on the ready line
	TraceWait TraceDirection = "WAIT"
)

// TraceEntry is one event on the wire
type TraceEntry struct {
	Timestamp time.Time
	Direction TraceDirection
	Note      string
	Data      []byte
}

// TraceBuffer keeps the most recent wire events of one transaction so a
// failure can be reported with the bytes that caused it.
type TraceBuffer struct {
	op      string
	port    string
	entries []TraceEntry
	size    int
	now     func() time.Time
}

// NewTraceBuffer creates a trace buffer keeping at most size entries. A nil
// buffer is returned for size <= 0 and all methods accept a nil receiver.
func NewTraceBuffer(op, port string, size int, now func() time.Time) *TraceBuffer {
	if size <= 0 {
		return nil
	}
	if now == nil {
		now = time.Now
	}
	return &TraceBuffer{op: op, port: port, size: size, now: now}
}

// RecordTX records a frame sent to the module
func (t *TraceBuffer) RecordTX(data []byte, note string) {
	t.record(TraceTX, data, note)
}

// RecordRX records bytes received from the module
func (t *TraceBuffer) RecordRX(data []byte, note string) {
	t.record(TraceRX, data, note)
}

// RecordWait records the outcome of a ready line wait
func (t *TraceBuffer) RecordWait(note string) {
	t.record(TraceWait, nil, note)
}

func (t *TraceBuffer) record(dir TraceDirection, data []byte, note string) {
	if t == nil {
		return
	}
	entry := TraceEntry{
		Timestamp: t.now(),
		Direction: dir,
		Note:      note,
		Data:      append([]byte(nil), data...),
	}
	if len(t.entries) == t.size {
		copy(t.entries, t.entries[1:])
		t.entries = t.entries[:t.size-1]
	}
	t.entries = append(t.entries, entry)
}

// Entries returns a copy of the recorded events, oldest first
func (t *TraceBuffer) Entries() []TraceEntry {
	if t == nil {
		return nil
	}
	return append([]TraceEntry(nil), t.entries...)
}

// WrapError attaches the recorded events to err
func (t *TraceBuffer) WrapError(err error) error {
	if t == nil || err == nil {
		return err
	}
	return &TraceError{
		Err:     err,
		Op:      t.op,
		Port:    t.port,
		Entries: t.Entries(),
	}
}

// TraceError is an error carrying the wire events that led to it
type TraceError struct {
	Err     error
	Op      string
	Port    string
	Entries []TraceEntry
}

// Error implements the error interface
func (e *TraceError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error
func (e *TraceError) Unwrap() error {
	return e.Err
}

// Dump renders the trace one event per line
func (e *TraceError) Dump() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "trace for %s on %s:\n", e.Op, e.Port)
	if len(e.Entries) == 0 {
		return sb.String()
	}
	start := e.Entries[0].Timestamp
	for _, entry := range e.Entries {
		fmt.Fprintf(&sb, "  +%-10v %-4s %s", entry.Timestamp.Sub(start), entry.Direction, entry.Note)
		if len(entry.Data) > 0 {
			fmt.Fprintf(&sb, " [% X]", entry.Data)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// HexDump returns the bytes of every entry in direction dir concatenated
func (e *TraceError) HexDump(dir TraceDirection) string {
	var data []byte
	for _, entry := range e.Entries {
		if entry.Direction == dir {
			data = append(data, entry.Data...)
		}
	}
	return hex.EncodeToString(data)
}
