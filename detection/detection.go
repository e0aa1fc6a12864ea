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

// Package detection discovers buses a NINA module may be attached to.
//
// Detectors register themselves when their package is imported:
//
//	import (
//		"github.com/ZaparooProject/go-nina/detection"
//		_ "github.com/ZaparooProject/go-nina/detection/spi"
//		_ "github.com/ZaparooProject/go-nina/detection/uart"
//	)
//
//	devices, err := detection.DetectAll(detection.DefaultOptions())
package detection

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Detection errors
var (
	ErrNoDevicesFound      = errors.New("no devices found")
	ErrUnsupportedPlatform = errors.New("detection not supported on this platform")
	ErrDetectionTimeout    = errors.New("detection timed out")
	ErrNoDetectors         = errors.New("no detectors registered")
)

// Mode controls how intrusive detection is
type Mode int

const (
	// Passive only enumerates device nodes
	Passive Mode = iota
	// Safe enumerates and checks that nodes are accessible
	Safe
	// Full opens candidates and talks to the module
	Full
)

// String returns the mode name
func (m Mode) String() string {
	switch m {
	case Passive:
		return "passive"
	case Safe:
		return "safe"
	case Full:
		return "full"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Confidence is how likely a candidate is a NINA module
type Confidence int

// Confidence levels
const (
	Low Confidence = iota
	Medium
	High
)

// String returns the confidence name
func (c Confidence) String() string {
	switch c {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	default:
		return fmt.Sprintf("confidence(%d)", int(c))
	}
}

// DeviceInfo describes a candidate device
type DeviceInfo struct {
	Metadata   map[string]string
	Transport  string
	Path       string
	Name       string
	Confidence Confidence
}

// Options configures detection
type Options struct {
	// IgnorePaths lists device paths to skip
	IgnorePaths []string
	// Blocklist lists USB VID:PID pairs to skip
	Blocklist []string
	Timeout   time.Duration
	Mode      Mode
}

// DefaultOptions returns safe detection options
func DefaultOptions() Options {
	return Options{
		Mode:      Safe,
		Timeout:   5 * time.Second,
		Blocklist: DefaultBlocklist(),
	}
}

// Detector finds candidate devices on one kind of transport
type Detector interface {
	Detect(ctx context.Context, opts *Options) ([]DeviceInfo, error)
	Transport() string
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Detector)
)

// RegisterDetector adds d to the registry, replacing any detector for the
// same transport
func RegisterDetector(d Detector) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[d.Transport()] = d
}

// Detectors returns the registered detectors sorted by transport
func Detectors() []Detector {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]Detector, 0, len(registry))
	for _, d := range registry {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Transport() < out[j].Transport() })
	return out
}

// DetectAll runs every registered detector
func DetectAll(opts Options) ([]DeviceInfo, error) {
	return DetectAllContext(context.Background(), opts)
}

// DetectAllContext runs every registered detector until ctx is done or the
// options timeout elapses. Detectors that find nothing or do not support
// the platform are skipped.
func DetectAllContext(ctx context.Context, opts Options) ([]DeviceInfo, error) {
	detectors := Detectors()
	if len(detectors) == 0 {
		return nil, ErrNoDetectors
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var (
		devices []DeviceInfo
		errs    []error
	)
	for _, d := range detectors {
		if ctx.Err() != nil {
			return devices, fmt.Errorf("%w: %w", ErrDetectionTimeout, ctx.Err())
		}

		found, err := d.Detect(ctx, &opts)
		switch {
		case err == nil:
			devices = append(devices, found...)
		case errors.Is(err, ErrNoDevicesFound), errors.Is(err, ErrUnsupportedPlatform):
		default:
			errs = append(errs, fmt.Errorf("%s: %w", d.Transport(), err))
		}
	}

	if len(devices) == 0 {
		if len(errs) > 0 {
			return nil, errors.Join(errs...)
		}
		return nil, ErrNoDevicesFound
	}

	sort.SliceStable(devices, func(i, j int) bool {
		return devices[i].Confidence > devices[j].Confidence
	})
	return devices, nil
}

// Filter returns the devices that pass the options' ignore and block lists
func Filter(devices []DeviceInfo, opts *Options) []DeviceInfo {
	out := devices[:0:0]
	for _, d := range devices {
		if IsPathIgnored(d.Path, opts.IgnorePaths) {
			continue
		}
		if vidpid := d.Metadata["vidpid"]; vidpid != "" && IsBlocked(vidpid, opts.Blocklist) {
			continue
		}
		out = append(out, d)
	}
	return out
}
