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
	"sync"
	"testing"
	"time"

	nina "github.com/ZaparooProject/go-nina"
	"github.com/ZaparooProject/go-nina/internal/frame"
	testutil "github.com/ZaparooProject/go-nina/internal/testing"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// statusScript answers status requests from a fixed sequence, repeating the
// last entry once the sequence is exhausted.
type statusScript struct {
	statuses []byte
	results  map[byte]byte
	polls    int
	mu       sync.Mutex
}

func newStatusScript(statuses ...byte) *statusScript {
	return &statusScript{
		statuses: statuses,
		results: map[byte]byte{
			frame.CmdSetNet:        byte(nina.ResultSuccess),
			frame.CmdSetPassphrase: byte(nina.ResultSuccess),
		},
	}
}

func (s *statusScript) reply(request []byte) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	opcode := request[1]
	if opcode != frame.CmdGetConnStatus {
		result, ok := s.results[opcode]
		if !ok {
			return nil
		}
		return testutil.BuildByteReply(opcode, result)
	}

	idx := s.polls
	if idx >= len(s.statuses) {
		idx = len(s.statuses) - 1
	}
	s.polls++
	return testutil.BuildConnectionStatusResponse(s.statuses[idx])
}

func (s *statusScript) setResult(opcode, result byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[opcode] = result
}

func (s *statusScript) pollCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.polls
}

func newScriptedDevice(t *testing.T, script *statusScript) (*nina.Device, *nina.MockTransport) {
	t.Helper()

	mock := nina.NewMockTransport()
	mock.SetReplyFunc(script.reply)
	device, err := nina.New(mock,
		nina.WithClock(mock.Clock()),
		nina.WithPollInterval(time.Millisecond),
		nina.WithReadyTimeout(50*time.Millisecond),
	)
	require.NoError(t, err)
	return device, mock
}

func fastConfig() *Config {
	return &Config{
		PollInterval:     time.Millisecond,
		IdleInterval:     5 * time.Millisecond,
		StableAfter:      time.Hour,
		JoinTimeout:      500 * time.Millisecond,
		JoinPollInterval: time.Millisecond,
	}
}
