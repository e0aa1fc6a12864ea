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
	"fmt"

	nina "github.com/ZaparooProject/go-nina"
	itransport "github.com/ZaparooProject/go-nina/internal/transport"
	"go.uber.org/zap"
)

// Join errors
var (
	ErrJoinRejected = errors.New("module rejected join request")
	ErrJoinFailed   = errors.New("join failed")
	ErrJoinTimeout  = errors.New("join timed out")
)

// Join asks the module to join ssid and waits until it reports connected.
// An empty passphrase joins an open network. Transient link errors while
// polling are tolerated; the module is often slow to answer while it
// associates.
func Join(ctx context.Context, device *nina.Device, ssid, passphrase string, config *Config) (nina.Status, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nina.StatusIdle, err
	}

	var (
		result nina.CommandResult
		err    error
	)
	if passphrase == "" {
		result, err = device.SetNetworkContext(ctx, ssid)
	} else {
		result, err = device.ConnectContext(ctx, ssid, passphrase)
	}
	if err != nil {
		return nina.StatusIdle, err
	}
	if !result.OK() {
		return nina.StatusIdle, fmt.Errorf("%w: %v", ErrJoinRejected, result)
	}

	status := nina.StatusIdle
	var lastErr error
	_, err = itransport.Poll(ctx, itransport.PollConfig{
		Clock:    config.clock(),
		Timeout:  config.JoinTimeout,
		Interval: config.JoinPollInterval,
	}, func() (bool, error) {
		s, err := device.ConnectionStatusContext(ctx)
		if err != nil {
			if nina.IsRetryable(err) {
				lastErr = err
				return false, nil
			}
			return false, err
		}
		status = s
		switch {
		case s.IsConnected():
			return true, nil
		case s.IsTerminalFailure():
			return false, fmt.Errorf("%w: module reports %v", ErrJoinFailed, s)
		default:
			return false, nil
		}
	})

	if errors.Is(err, itransport.ErrPollTimeout) {
		err = fmt.Errorf("%w: still %v after %v", ErrJoinTimeout, status, config.JoinTimeout)
		if lastErr != nil {
			err = errors.Join(err, lastErr)
		}
	}
	if err != nil {
		device.Logger().Debug("join failed", zap.String("ssid", ssid), zap.Stringer("status", status), zap.Error(err))
	}
	return status, err
}
