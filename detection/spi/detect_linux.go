//go:build linux

package spi

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ZaparooProject/go-nina/detection"
	"golang.org/x/sys/unix"
)

// devRoot is where spidev nodes are looked up
var devRoot = "/dev"

// probeTimeout bounds a single Full mode probe
const probeTimeout = 3 * time.Second

// spidevNode is a /dev/spidevB.C node
type spidevNode struct {
	Path string
	Bus  int
	CS   int
}

// detectLinux searches for spidev nodes
func detectLinux(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	nodes, err := findSpidevNodes()
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, detection.ErrNoDevicesFound
	}

	devices := make([]detection.DeviceInfo, 0, len(nodes))
	for _, node := range nodes {
		select {
		case <-ctx.Done():
			return devices, detection.ErrDetectionTimeout
		default:
		}

		device, skip := createDeviceInfo(ctx, node, opts)
		if skip {
			continue
		}
		devices = append(devices, device)
	}

	if len(devices) == 0 {
		return nil, detection.ErrNoDevicesFound
	}
	return devices, nil
}

// createDeviceInfo creates a DeviceInfo for a single node
func createDeviceInfo(ctx context.Context, node spidevNode, opts *detection.Options) (detection.DeviceInfo, bool) {
	if detection.IsPathIgnored(node.Path, opts.IgnorePaths) {
		return detection.DeviceInfo{}, true
	}

	bus := BusName(node.Bus, node.CS)
	device := detection.DeviceInfo{
		Transport:  "spi",
		Path:       node.Path,
		Name:       bus,
		Confidence: detection.Low,
		Metadata: map[string]string{
			"bus":         bus,
			"chip_select": fmt.Sprintf("%d", node.CS),
		},
	}
	if opts.Mode == detection.Passive {
		return device, false
	}

	// The node must be usable by this process
	if err := unix.Access(node.Path, unix.R_OK|unix.W_OK); err != nil {
		return detection.DeviceInfo{}, true
	}
	device.Confidence = detection.Medium

	if opts.Mode == detection.Full {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		firmware, err := Probe(probeCtx, bus)
		cancel()

		if err != nil {
			device.Metadata["probe_error"] = err.Error()
		} else {
			device.Confidence = detection.High
			device.Metadata["firmware"] = firmware
		}
	}
	return device, false
}

// findSpidevNodes lists spidev nodes in bus then chip select order
func findSpidevNodes() ([]spidevNode, error) {
	matches, err := filepath.Glob(filepath.Join(devRoot, "spidev*"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan for SPI devices: %w", err)
	}

	nodes := make([]spidevNode, 0, len(matches))
	for _, path := range matches {
		var node spidevNode
		if _, err := fmt.Sscanf(filepath.Base(path), "spidev%d.%d", &node.Bus, &node.CS); err != nil {
			continue
		}
		node.Path = path
		nodes = append(nodes, node)
	}
	return nodes, nil
}
