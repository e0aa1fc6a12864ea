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
	"time"

	nina "github.com/ZaparooProject/go-nina"
)

// LinkState tracks the connection status seen by a Monitor
type LinkState struct {
	// LastChange is when Status last differed from the previous poll.
	LastChange time.Time
	// LastPoll is when the status was last read successfully.
	LastPoll time.Time
	Status   nina.Status
	// Changes counts status transitions since the monitor started.
	Changes int
	// Known is false until the first successful poll.
	Known bool
}

// Connected reports whether the last known status is connected
func (s LinkState) Connected() bool {
	return s.Known && s.Status.IsConnected()
}

// StableFor returns how long the status has not changed as of now
func (s LinkState) StableFor(now time.Time) time.Duration {
	if !s.Known {
		return 0
	}
	return now.Sub(s.LastChange)
}

// observe records a polled status and reports whether it changed
func (s *LinkState) observe(status nina.Status, now time.Time) (previous nina.Status, changed bool) {
	previous = s.Status
	s.LastPoll = now

	if s.Known && status == s.Status {
		return previous, false
	}
	if s.Known {
		s.Changes++
	}
	changed = s.Known
	s.Known = true
	s.Status = status
	s.LastChange = now
	return previous, changed
}
