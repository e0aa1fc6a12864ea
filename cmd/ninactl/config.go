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
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	nina "github.com/ZaparooProject/go-nina"
	"github.com/ZaparooProject/go-nina/console"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Config is the resolved ninactl configuration
type Config struct {
	ConsolePort  string
	Link         nina.LinkConfig
	ReadyTimeout time.Duration
	ConsoleBaud  int
}

// DefaultConfig returns the configuration used without a config file
func DefaultConfig() Config {
	return Config{
		Link:         nina.DefaultLinkConfig(),
		ReadyTimeout: nina.DefaultReadyTimeout,
		ConsoleBaud:  console.DefaultBaudRate,
	}
}

// ninactl config.toml key mapping to runtime settings.
type fileConfig struct {
	Bus          string `toml:"bus"`
	ChipSelect   string `toml:"chip_select"`
	Ready        string `toml:"ready"`
	Reset        string `toml:"reset"`
	Boot         string `toml:"boot"`
	ReadyTimeout string `toml:"ready_timeout"`
	ConsolePort  string `toml:"console_port"`
	ClockHz      int64  `toml:"clock_hz"`
	Mode         int    `toml:"mode"`
	ConsoleBaud  int    `toml:"console_baud"`
}

var errConfig = errors.New("invalid config")

// loadConfig reads a TOML config file and overlays it on the defaults.
// Keys that are absent keep their default.
func loadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load ninactl config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%w: unknown key %q", errConfig, undecoded[0].String())
	}

	if meta.IsDefined("bus") {
		cfg.Link.Bus = strings.TrimSpace(raw.Bus)
	}
	if meta.IsDefined("chip_select") {
		cfg.Link.ChipSelect = strings.TrimSpace(raw.ChipSelect)
	}
	if meta.IsDefined("ready") {
		cfg.Link.Ready = strings.TrimSpace(raw.Ready)
	}
	if meta.IsDefined("reset") {
		cfg.Link.Reset = strings.TrimSpace(raw.Reset)
	}
	if meta.IsDefined("boot") {
		cfg.Link.Boot = strings.TrimSpace(raw.Boot)
	}
	if meta.IsDefined("clock_hz") {
		if raw.ClockHz <= 0 {
			return Config{}, fmt.Errorf("%w: clock_hz %d", errConfig, raw.ClockHz)
		}
		cfg.Link.Clock = physic.Frequency(raw.ClockHz) * physic.Hertz
	}
	if meta.IsDefined("mode") {
		if raw.Mode < 0 || raw.Mode > 3 {
			return Config{}, fmt.Errorf("%w: mode %d", errConfig, raw.Mode)
		}
		cfg.Link.Mode = spi.Mode(raw.Mode)
	}
	if meta.IsDefined("ready_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.ReadyTimeout))
		if err != nil {
			return Config{}, fmt.Errorf("%w: ready_timeout: %w", errConfig, err)
		}
		cfg.ReadyTimeout = d
	}
	if meta.IsDefined("console_port") {
		cfg.ConsolePort = strings.TrimSpace(raw.ConsolePort)
	}
	if meta.IsDefined("console_baud") {
		cfg.ConsoleBaud = raw.ConsoleBaud
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration
func (c Config) Validate() error {
	if err := c.Link.Validate(); err != nil {
		return err
	}
	if c.ReadyTimeout <= 0 {
		return fmt.Errorf("%w: ready_timeout %v", errConfig, c.ReadyTimeout)
	}
	if c.ConsoleBaud <= 0 {
		return fmt.Errorf("%w: console_baud %d", errConfig, c.ConsoleBaud)
	}
	return nil
}
