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
	"fmt"
	"time"

	nina "github.com/ZaparooProject/go-nina"
	spitransport "github.com/ZaparooProject/go-nina/transport/spi"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds state shared by all subcommands
type app struct {
	logger     *zap.Logger
	factory    nina.TransportFactory
	output     *Output
	configPath string
	bus        string
	config     Config
	timeout    time.Duration
	debug      bool
	reset      bool
}

func newRootCmd() *cobra.Command {
	return newRootCmdFor(&app{factory: spitransport.Factory})
}

func newRootCmdFor(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "ninactl",
		Short: "NINA WiFi module tool",
		Long: `ninactl talks to a u-blox NINA WiFi co-processor over SPI.

It reads identity and connection status, scans for networks, joins and
leaves networks, and streams the module's debug console.

Wiring defaults to the common Raspberry Pi hat layout and can be changed
with a TOML file passed to --config.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "TOML config file")
	flags.StringVarP(&a.bus, "bus", "b", "", "SPI bus name, overrides the config file")
	flags.BoolVarP(&a.debug, "debug", "d", false, "Log every link phase")
	flags.DurationVarP(&a.timeout, "timeout", "t", 30*time.Second, "Overall command timeout")
	flags.BoolVar(&a.reset, "reset", true, "Reset the module before the command")

	root.AddCommand(
		a.versionCmd(),
		a.statusCmd(),
		a.macCmd(),
		a.scanCmd(),
		a.connectCmd(),
		a.disconnectCmd(),
		a.resetCmd(),
		a.monitorCmd(),
		a.consoleCmd(),
		a.detectCmd(),
	)
	return root
}

// setup resolves configuration and logging before any subcommand runs
func (a *app) setup(cmd *cobra.Command) error {
	a.output = NewOutput(cmd.OutOrStdout(), a.debug)

	cfg := DefaultConfig()
	if a.configPath != "" {
		loaded, err := loadConfig(a.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if a.bus != "" {
		cfg.Link.Bus = a.bus
	}
	a.config = cfg

	nina.SetDebugEnabled(a.debug)
	if a.debug {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		a.logger = logger.Named("ninactl")
	} else {
		a.logger = zap.NewNop()
	}
	return nil
}

// commandContext bounds a command with --timeout
func (a *app) commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(cmd.Context())
	}
	return context.WithTimeout(cmd.Context(), a.timeout)
}

// openDevice opens the module. With --reset=false the module is used as is.
func (a *app) openDevice(ctx context.Context) (*nina.Device, error) {
	opts := []nina.Option{
		nina.WithReadyTimeout(a.config.ReadyTimeout),
		nina.WithLogger(a.logger.Named("nina")),
	}
	if a.reset {
		return nina.Open(ctx, a.config.Link, a.factory, opts...)
	}

	if err := a.config.Link.Validate(); err != nil {
		return nil, err
	}
	transport, err := a.factory(a.config.Link)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", a.config.Link.Bus, err)
	}
	device, err := nina.New(transport, append([]nina.Option{nina.WithLinkConfig(a.config.Link)}, opts...)...)
	if err != nil {
		_ = transport.Close()
		return nil, err
	}
	return device, nil
}

// withDevice opens the module, runs fn and closes the module
func (a *app) withDevice(cmd *cobra.Command, fn func(ctx context.Context, device *nina.Device) error) error {
	ctx, cancel := a.commandContext(cmd)
	defer cancel()

	device, err := a.openDevice(ctx)
	if err != nil {
		a.output.Error("%v", err)
		return err
	}
	defer func() { _ = device.Close() }()

	if err := fn(ctx, device); err != nil {
		a.output.Error("%v", err)
		return err
	}
	return nil
}
