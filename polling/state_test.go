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
	"testing"
	"time"

	nina "github.com/ZaparooProject/go-nina"
	"github.com/stretchr/testify/assert"
)

func TestLinkStateObserve(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var s LinkState

	assert.False(t, s.Connected())
	assert.Zero(t, s.StableFor(start))

	_, changed := s.observe(nina.StatusIdle, start)
	assert.False(t, changed, "first observation is not a change")
	assert.True(t, s.Known)
	assert.Equal(t, start, s.LastChange)

	_, changed = s.observe(nina.StatusIdle, start.Add(time.Second))
	assert.False(t, changed)
	assert.Equal(t, start, s.LastChange)
	assert.Equal(t, start.Add(time.Second), s.LastPoll)
	assert.Equal(t, 3*time.Second, s.StableFor(start.Add(3*time.Second)))

	previous, changed := s.observe(nina.StatusConnected, start.Add(2*time.Second))
	assert.True(t, changed)
	assert.Equal(t, nina.StatusIdle, previous)
	assert.True(t, s.Connected())
	assert.Equal(t, 1, s.Changes)
	assert.Equal(t, start.Add(2*time.Second), s.LastChange)
}
