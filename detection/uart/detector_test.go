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

package uart

import (
	"context"
	"errors"
	"testing"

	"github.com/ZaparooProject/go-nina/detection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial/enumerator"
)

func stubPorts(t *testing.T, ports []*enumerator.PortDetails, err error) {
	t.Helper()

	saved := ListPorts
	ListPorts = func() ([]*enumerator.PortDetails, error) { return ports, err }
	t.Cleanup(func() { ListPorts = saved })
}

//nolint:paralleltest // replaces ListPorts
func TestDetect(t *testing.T) {
	stubPorts(t, []*enumerator.PortDetails{
		{Name: "/dev/ttyACM0", IsUSB: true, VID: "2341", PID: "8057", SerialNumber: "ABC123"},
		{Name: "/dev/ttyACM1", IsUSB: true, VID: "0483", PID: "374b"},
		{Name: "/dev/ttyUSB0", IsUSB: true, VID: "0403", PID: "6001", Product: "FT232R USB UART"},
		{Name: "/dev/ttyS0"},
	}, nil)

	tests := []struct {
		name string
		want []string
		mode detection.Mode
	}{
		{name: "safe", mode: detection.Safe, want: []string{"/dev/ttyACM0", "/dev/ttyUSB0"}},
		{name: "passive", mode: detection.Passive, want: []string{"/dev/ttyACM0", "/dev/ttyUSB0", "/dev/ttyS0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := detection.DefaultOptions()
			opts.Mode = tt.mode

			devices, err := New().Detect(context.Background(), &opts)
			require.NoError(t, err)

			paths := make([]string, 0, len(devices))
			for _, d := range devices {
				paths = append(paths, d.Path)
			}
			assert.Equal(t, tt.want, paths)

			assert.Equal(t, "Arduino Nano 33 IoT", devices[0].Name)
			assert.Equal(t, detection.Medium, devices[0].Confidence)
			assert.Equal(t, "ABC123", devices[0].Metadata["serial"])
			assert.Equal(t, "FT232R USB UART", devices[1].Name)
			assert.Equal(t, detection.Low, devices[1].Confidence)
		})
	}
}

//nolint:paralleltest // replaces ListPorts
func TestDetectNoPorts(t *testing.T) {
	stubPorts(t, nil, nil)

	opts := detection.DefaultOptions()
	_, err := New().Detect(context.Background(), &opts)
	require.ErrorIs(t, err, detection.ErrNoDevicesFound)
}

//nolint:paralleltest // replaces ListPorts
func TestDetectEnumerationError(t *testing.T) {
	boom := errors.New("enumeration failed")
	stubPorts(t, nil, boom)

	opts := detection.DefaultOptions()
	_, err := New().Detect(context.Background(), &opts)
	require.ErrorIs(t, err, boom)
}

//nolint:paralleltest // replaces ListPorts
func TestDetectNormalisesVIDPID(t *testing.T) {
	stubPorts(t, []*enumerator.PortDetails{
		{Name: "/dev/ttyACM0", IsUSB: true, VID: "2341", PID: "805a"},
		{Name: "/dev/ttyACM1", IsUSB: true, VID: "0483", PID: "374b"},
		{Name: "/dev/ttyACM2", IsUSB: true},
	}, nil)

	opts := detection.DefaultOptions()
	devices, err := New().Detect(context.Background(), &opts)
	require.NoError(t, err)
	require.Len(t, devices, 2)

	assert.Equal(t, "2341:805A", devices[0].Metadata["vidpid"])
	assert.Equal(t, "/dev/ttyACM2", devices[1].Path)
	assert.NotContains(t, devices[1].Metadata, "vidpid", "missing IDs are not recorded")
}
