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

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	nina "github.com/ZaparooProject/go-nina"
	"github.com/ZaparooProject/go-nina/console"
	"github.com/ZaparooProject/go-nina/detection"
	itransport "github.com/ZaparooProject/go-nina/internal/transport"
	"github.com/ZaparooProject/go-nina/polling"
	"github.com/spf13/cobra"

	// Import detection packages to register detectors
	_ "github.com/ZaparooProject/go-nina/detection/spi"
	_ "github.com/ZaparooProject/go-nina/detection/uart"
)

// passphraseEnv supplies the passphrase for connect when --passphrase is
// not given
const passphraseEnv = "NINA_PASSPHRASE"

// Link is the detail shown for a connected station
type Link struct {
	IP         *nina.IPConfig
	SSID       string
	BSSID      net.HardwareAddr
	RSSI       int32
	Encryption nina.EncryptionType
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the module firmware version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withDevice(cmd, func(ctx context.Context, device *nina.Device) error {
				version, err := device.FirmwareVersionContext(ctx)
				if err != nil {
					return err
				}
				a.output.Firmware(version)
				return nil
			})
		},
	}
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the connection status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withDevice(cmd, func(ctx context.Context, device *nina.Device) error {
				status, err := device.ConnectionStatusContext(ctx)
				if err != nil {
					return err
				}
				if !status.IsConnected() {
					a.output.Status(status, nil)
					return nil
				}
				link, err := readLink(ctx, device)
				if err != nil {
					return err
				}
				a.output.Status(status, link)
				return nil
			})
		},
	}
}

// readLink collects the details of the current association
func readLink(ctx context.Context, device *nina.Device) (*Link, error) {
	var (
		link Link
		err  error
	)
	if link.SSID, err = device.CurrentSSIDContext(ctx); err != nil {
		return nil, err
	}
	if link.BSSID, err = device.CurrentBSSIDContext(ctx); err != nil {
		return nil, err
	}
	if link.RSSI, err = device.CurrentRSSIContext(ctx); err != nil {
		return nil, err
	}
	if link.Encryption, err = device.CurrentEncryptionContext(ctx); err != nil {
		return nil, err
	}
	if link.IP, err = device.IPAddressContext(ctx); err != nil {
		return nil, err
	}
	return &link, nil
}

func (a *app) macCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mac",
		Short: "Print the station MAC address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withDevice(cmd, func(ctx context.Context, device *nina.Device) error {
				mac, err := device.MACAddressContext(ctx)
				if err != nil {
					return err
				}
				a.output.MAC(mac)
				return nil
			})
		},
	}
}

func (a *app) scanCmd() *cobra.Command {
	var (
		maxNetworks int
		simple      bool
		wait        time.Duration
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan for networks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withDevice(cmd, func(ctx context.Context, device *nina.Device) error {
				result, err := device.StartScanNetworksContext(ctx)
				if err != nil {
					return err
				}
				if err := result.Err(); err != nil {
					return fmt.Errorf("start scan: %w", err)
				}

				// The module answers with an empty list until the scan completes
				var scan *nina.ScanResult
				_, err = itransport.Poll(ctx, itransport.PollConfig{
					Timeout:  wait,
					Interval: 500 * time.Millisecond,
				}, func() (bool, error) {
					var scanErr error
					scan, scanErr = device.ScanNetworksContext(ctx, maxNetworks)
					return scanErr == nil && scan.Reported > 0, scanErr
				})
				if errors.Is(err, itransport.ErrPollTimeout) {
					a.output.Networks(nil, 0)
					return nil
				}
				if err != nil {
					return err
				}

				if simple {
					a.output.SSIDs(scan)
					return nil
				}
				networks, err := device.ScanNetworkDetailsContext(ctx, maxNetworks)
				if err != nil {
					return err
				}
				a.output.Networks(networks, scan.Reported)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&maxNetworks, "max", "m", 32, "Maximum networks to list")
	cmd.Flags().BoolVar(&simple, "simple", false, "List names only")
	cmd.Flags().DurationVar(&wait, "wait", 10*time.Second, "How long to wait for results")
	return cmd
}

func (a *app) connectCmd() *cobra.Command {
	var (
		passphrase string
		joinWait   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "connect SSID",
		Short: "Join a network and wait for association",
		Long: `Join a network and wait for association.

The passphrase is taken from --passphrase or the NINA_PASSPHRASE environment
variable. Without either, the network is joined as an open network.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				passphrase = os.Getenv(passphraseEnv)
			}
			return a.withDevice(cmd, func(ctx context.Context, device *nina.Device) error {
				cfg := polling.DefaultConfig()
				cfg.JoinTimeout = joinWait

				status, err := polling.Join(ctx, device, args[0], passphrase, cfg)
				if err != nil {
					return err
				}
				a.output.Status(status, nil)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&passphrase, "passphrase", "p", "", "WPA passphrase")
	cmd.Flags().DurationVar(&joinWait, "wait", 15*time.Second, "How long to wait for association")
	return cmd
}

func (a *app) disconnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect",
		Short: "Leave the current network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withDevice(cmd, func(ctx context.Context, device *nina.Device) error {
				result, err := device.DisconnectContext(ctx)
				if err != nil {
					return err
				}
				a.output.Result("disconnect", result)
				return result.Err()
			})
		},
	}
}

func (a *app) resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset the module and check that it answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withDevice(cmd, func(ctx context.Context, device *nina.Device) error {
				if !a.reset {
					if err := device.ResetContext(ctx); err != nil {
						return err
					}
				}
				version, err := device.FirmwareVersionContext(ctx)
				if err != nil {
					return err
				}
				a.output.Firmware(version)
				return nil
			})
		},
	}
}

func (a *app) monitorCmd() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Print connection status changes until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			device, err := a.openDevice(cmd.Context())
			if err != nil {
				a.output.Error("%v", err)
				return err
			}
			defer func() { _ = device.Close() }()

			cfg := polling.DefaultConfig()
			cfg.PollInterval = interval
			cfg.IdleInterval = max(cfg.IdleInterval, interval)

			monitor, err := polling.NewMonitor(device, cfg, polling.MonitorCallbacks{
				OnStatusChanged: a.output.StatusChange,
				OnConnected: func() {
					a.output.Info("connected")
				},
				OnError: func(err error) {
					a.output.Error("%v", err)
				},
			})
			if err != nil {
				return err
			}

			status, err := monitor.PollOnce(cmd.Context())
			if err == nil {
				a.output.Status(status, nil)
			}
			if err := monitor.Start(cmd.Context()); err != nil {
				return err
			}
			<-cmd.Context().Done()
			monitor.Stop()

			m := monitor.Metrics()
			a.output.Info("polls=%d errors=%d changes=%d", m.PollCycles, m.PollErrors, m.StatusChanges)
			return nil
		},
	}
	cmd.Flags().DurationVarP(&interval, "interval", "i", 250*time.Millisecond, "Poll interval")
	return cmd
}

func (a *app) consoleCmd() *cobra.Command {
	var (
		port        string
		moduleDebug bool
	)

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Stream the module's debug console until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := console.DefaultConfig(a.config.ConsolePort)
			cfg.BaudRate = a.config.ConsoleBaud
			if port != "" {
				cfg.Port = port
			}

			if moduleDebug {
				if err := a.withDevice(cmd, func(ctx context.Context, device *nina.Device) error {
					result, err := device.SetDebugContext(ctx, true)
					if err != nil {
						return err
					}
					return result.Err()
				}); err != nil {
					return err
				}
			}

			c, err := console.Open(cfg, a.logger.Named("console"))
			if err != nil {
				a.output.Error("%v", err)
				return err
			}
			defer func() { _ = c.Close() }()

			err = c.Run(cmd.Context(), func(line string) {
				a.output.printf("%s\n", line)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "Serial port, overrides console_port")
	cmd.Flags().BoolVar(&moduleDebug, "enable", false, "Turn on module debug output first")
	return cmd
}

func (a *app) detectCmd() *cobra.Command {
	var (
		mode   string
		ignore []string
	)

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "List buses a module may be attached to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := detection.DefaultOptions()
			opts.IgnorePaths = ignore
			switch strings.ToLower(mode) {
			case "passive":
				opts.Mode = detection.Passive
			case "safe":
				opts.Mode = detection.Safe
			case "full":
				opts.Mode = detection.Full
			default:
				return fmt.Errorf("unknown detection mode %q", mode)
			}

			ctx, cancel := a.commandContext(cmd)
			defer cancel()

			devices, err := detection.DetectAllContext(ctx, opts)
			if err != nil {
				a.output.Error("%v", err)
				return err
			}
			a.output.Devices(detection.Filter(devices, &opts))
			return nil
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", "safe", "Detection mode: passive, safe or full")
	cmd.Flags().StringSliceVar(&ignore, "ignore", nil, "Device paths to skip")
	return cmd
}
