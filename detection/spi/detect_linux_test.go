//go:build linux

package spi

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZaparooProject/go-nina/detection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDev creates empty spidev nodes under a temp dir and points devRoot at it
func fakeDev(t *testing.T, names ...string) string {
	t.Helper()

	dir := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}
	saved := devRoot
	devRoot = dir
	t.Cleanup(func() { devRoot = saved })
	return dir
}

func stubProbe(t *testing.T, fn func(ctx context.Context, bus string) (string, error)) {
	t.Helper()

	saved := Probe
	Probe = fn
	t.Cleanup(func() { Probe = saved })
}

//nolint:paralleltest // replaces package-level hooks
func TestDetectListsNodes(t *testing.T) {
	dir := fakeDev(t, "spidev0.0", "spidev0.1", "spidev1.0", "spidevX")

	opts := detection.DefaultOptions()
	opts.Mode = detection.Passive
	opts.IgnorePaths = []string{filepath.Join(dir, "spidev0.1")}

	devices, err := New().Detect(context.Background(), &opts)
	require.NoError(t, err)
	require.Len(t, devices, 2)

	assert.Equal(t, "SPI0.0", devices[0].Name)
	assert.Equal(t, "SPI1.0", devices[1].Metadata["bus"])
	assert.Equal(t, detection.Low, devices[0].Confidence)
}

//nolint:paralleltest // replaces package-level hooks
func TestDetectSafeModeChecksAccess(t *testing.T) {
	fakeDev(t, "spidev0.0")

	opts := detection.DefaultOptions()
	devices, err := New().Detect(context.Background(), &opts)
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, detection.Medium, devices[0].Confidence)
}

//nolint:paralleltest // replaces package-level hooks
func TestDetectFullModeProbes(t *testing.T) {
	fakeDev(t, "spidev0.0", "spidev0.1")
	stubProbe(t, func(_ context.Context, bus string) (string, error) {
		if bus == "SPI0.0" {
			return "1.5.0", nil
		}
		return "", errors.New("ready line never asserted")
	})

	opts := detection.DefaultOptions()
	opts.Mode = detection.Full
	devices, err := New().Detect(context.Background(), &opts)
	require.NoError(t, err)
	require.Len(t, devices, 2)

	assert.Equal(t, detection.High, devices[0].Confidence)
	assert.Equal(t, "1.5.0", devices[0].Metadata["firmware"])
	assert.Equal(t, detection.Medium, devices[1].Confidence)
	assert.Contains(t, devices[1].Metadata["probe_error"], "ready line")
}

//nolint:paralleltest // replaces package-level hooks
func TestDetectNoNodes(t *testing.T) {
	fakeDev(t)

	opts := detection.DefaultOptions()
	_, err := New().Detect(context.Background(), &opts)
	require.ErrorIs(t, err, detection.ErrNoDevicesFound)
}

func TestBusName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "SPI1.2", BusName(1, 2))
}
