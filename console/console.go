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

// Package console streams the debug output a NINA module prints on its UART.
// The firmware logs to the console at 115200 baud when SetDebug is enabled.
package console

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"
)

const (
	// DefaultBaudRate is the rate the module firmware prints at
	DefaultBaudRate = 115200
	// DefaultReadTimeout bounds each read so cancellation is noticed
	DefaultReadTimeout = 100 * time.Millisecond
	// DefaultMaxLineLength splits lines that never terminate
	DefaultMaxLineLength = 1024
)

// ErrInvalidConfig is returned for unusable console settings
var ErrInvalidConfig = errors.New("invalid console configuration")

// Config describes the serial port the module's console is wired to
type Config struct {
	Port          string
	BaudRate      int
	ReadTimeout   time.Duration
	MaxLineLength int
}

// DefaultConfig returns console settings for port
func DefaultConfig(port string) Config {
	return Config{
		Port:          port,
		BaudRate:      DefaultBaudRate,
		ReadTimeout:   DefaultReadTimeout,
		MaxLineLength: DefaultMaxLineLength,
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	switch {
	case c.Port == "":
		return fmt.Errorf("%w: port not set", ErrInvalidConfig)
	case c.BaudRate <= 0:
		return fmt.Errorf("%w: baud rate %d", ErrInvalidConfig, c.BaudRate)
	case c.MaxLineLength <= 0:
		return fmt.Errorf("%w: max line length %d", ErrInvalidConfig, c.MaxLineLength)
	}
	return nil
}

// OpenPort opens a serial port in 8N1 mode. It's a variable so tests can
// replace it.
var OpenPort = func(name string, baudRate int, readTimeout time.Duration) (io.ReadWriteCloser, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	if readTimeout > 0 {
		if err := port.SetReadTimeout(readTimeout); err != nil {
			_ = port.Close()
			return nil, fmt.Errorf("set read timeout on %s: %w", name, err)
		}
	}
	return port, nil
}

// Console reads newline-terminated log lines from the module
type Console struct {
	r         io.ReadCloser
	logger    *zap.Logger
	closeErr  error
	name      string
	maxLine   int
	closeOnce sync.Once
}

// Open opens the console port described by cfg
func Open(cfg Config, logger *zap.Logger) (*Console, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	port, err := OpenPort(cfg.Port, cfg.BaudRate, cfg.ReadTimeout)
	if err != nil {
		return nil, err
	}
	c := New(port, logger)
	c.name = cfg.Port
	c.maxLine = cfg.MaxLineLength
	return c, nil
}

// New wraps an already open reader
func New(r io.ReadCloser, logger *zap.Logger) *Console {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Console{
		r:       r,
		logger:  logger,
		name:    "console",
		maxLine: DefaultMaxLineLength,
	}
}

// Run reads lines until ctx is done or the port reaches EOF. Each line is
// logged and passed to onLine when it is not nil. Carriage returns are
// stripped. A read that returns no data is a read timeout, not EOF.
func (c *Console) Run(ctx context.Context, onLine func(line string)) error {
	stop := context.AfterFunc(ctx, func() { _ = c.Close() })
	defer stop()

	var (
		pending []byte
		buf     = make([]byte, 256)
	)
	emit := func(line []byte) {
		line = bytes.TrimRight(line, "\r")
		text := string(line)
		c.logger.Info("module", zap.String("port", c.name), zap.String("line", text))
		if onLine != nil {
			onLine(text)
		}
	}

	for {
		n, err := c.r.Read(buf)
		pending = append(pending, buf[:n]...)

		for {
			idx := bytes.IndexByte(pending, '\n')
			if idx >= 0 && idx <= c.maxLine {
				emit(pending[:idx])
				pending = pending[idx+1:]
				continue
			}
			if len(pending) < c.maxLine {
				break
			}
			emit(pending[:c.maxLine])
			pending = pending[c.maxLine:]
		}

		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, io.EOF):
			if len(pending) > 0 {
				emit(pending)
			}
			return nil
		case err != nil:
			return fmt.Errorf("read %s: %w", c.name, err)
		}
	}
}

// Close closes the underlying port. It is safe to call more than once.
func (c *Console) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.r.Close()
	})
	return c.closeErr
}
