//go:build !linux

package spi

import (
	"context"

	"github.com/ZaparooProject/go-nina/detection"
)

// detectLinux is a stub for non-Linux platforms
func detectLinux(context.Context, *detection.Options) ([]detection.DeviceInfo, error) {
	return nil, detection.ErrUnsupportedPlatform
}
