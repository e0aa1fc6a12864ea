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

package nina

import (
	"context"
	"errors"
	"fmt"

	"github.com/ZaparooProject/go-nina/internal/frame"
)

// Framing and protocol errors. Each one is raised by the codec or the
// response demultiplexer and can be matched with errors.Is through any
// wrapping the device adds.
var (
	ErrArgumentOutOfRange    = frame.ErrArgumentOutOfRange
	ErrFraming               = frame.ErrFraming
	ErrDeviceErrorReply      = frame.ErrDeviceErrorReply
	ErrUnexpectedCommandEcho = frame.ErrUnexpectedCommandEcho
	ErrParamCountMismatch    = frame.ErrParamCountMismatch
	ErrMissingTerminator     = frame.ErrMissingTerminator
	ErrBufferTooSmall        = frame.ErrBufferTooSmall
)

// Link errors
var (
	ErrHandshakeTimeout = errors.New("handshake timeout: ready line not asserted")
	ErrTransportRead    = errors.New("transport read failed")
	ErrTransportWrite   = errors.New("transport write failed")
	ErrBusNotHeld       = errors.New("bus released without being acquired")
	ErrTransportClosed  = errors.New("transport closed")
	ErrNilTransport     = errors.New("transport is nil")
)

// Device errors
var (
	ErrInvalidResponse = errors.New("invalid response")
	ErrCommandFailed   = errors.New("command reported failure")
	ErrInvalidConfig   = errors.New("invalid configuration")
)

// ErrorType classifies errors for retry decisions
type ErrorType int

const (
	// ErrorTypePermanent indicates an error that will not go away by retrying
	ErrorTypePermanent ErrorType = iota
	// ErrorTypeTransient indicates a bus glitch or garbled frame
	ErrorTypeTransient
	// ErrorTypeTimeout indicates the module did not become ready in time
	ErrorTypeTimeout
)

// String returns a string representation of the error type
func (t ErrorType) String() string {
	switch t {
	case ErrorTypePermanent:
		return "permanent"
	case ErrorTypeTransient:
		return "transient"
	case ErrorTypeTimeout:
		return "timeout"
	default:
		return fmt.Sprintf("ErrorType(%d)", int(t))
	}
}

// ProtocolError describes a failed transaction with the module
type ProtocolError struct {
	Err       error
	Op        string
	Port      string
	Type      ErrorType
	Opcode    byte
	Retryable bool
}

// Error implements the error interface
func (e *ProtocolError) Error() string {
	name := frame.CommandName(e.Opcode)
	if name == "" {
		name = "unknown"
	}
	if e.Port != "" {
		return fmt.Sprintf("%s (%s 0x%02X) on %s: %v", e.Op, name, e.Opcode, e.Port, e.Err)
	}
	return fmt.Sprintf("%s (%s 0x%02X): %v", e.Op, name, e.Opcode, e.Err)
}

// Unwrap returns the underlying error
func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// NewProtocolError wraps err with the operation that produced it and
// classifies it for retry decisions.
func NewProtocolError(op string, opcode byte, port string, err error) *ProtocolError {
	errType := classify(err)
	return &ProtocolError{
		Err:       err,
		Op:        op,
		Port:      port,
		Type:      errType,
		Opcode:    opcode,
		Retryable: errType != ErrorTypePermanent,
	}
}

// NewHandshakeTimeoutError creates a ProtocolError for a ready line that never
// asserted.
func NewHandshakeTimeoutError(op string, opcode byte, port string) *ProtocolError {
	return NewProtocolError(op, opcode, port, ErrHandshakeTimeout)
}

func classify(err error) ErrorType {
	switch {
	case err == nil:
		return ErrorTypePermanent
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrorTypePermanent
	case errors.Is(err, ErrArgumentOutOfRange),
		errors.Is(err, ErrDeviceErrorReply),
		errors.Is(err, ErrBufferTooSmall),
		errors.Is(err, ErrBusNotHeld),
		errors.Is(err, ErrTransportClosed):
		return ErrorTypePermanent
	case errors.Is(err, ErrHandshakeTimeout):
		return ErrorTypeTimeout
	case errors.Is(err, ErrFraming),
		errors.Is(err, ErrUnexpectedCommandEcho),
		errors.Is(err, ErrParamCountMismatch),
		errors.Is(err, ErrMissingTerminator),
		errors.Is(err, ErrInvalidResponse),
		errors.Is(err, ErrTransportRead),
		errors.Is(err, ErrTransportWrite):
		return ErrorTypeTransient
	default:
		return ErrorTypePermanent
	}
}

// IsRetryable returns true if the error is worth retrying
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe.Retryable
	}

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	default:
		return classify(err) != ErrorTypePermanent
	}
}

// GetErrorType returns the classification of err
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ErrorTypePermanent
	}

	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe.Type
	}
	return classify(err)
}

// IsHandshakeTimeout returns true if err reports a ready line that never asserted
func IsHandshakeTimeout(err error) bool {
	return errors.Is(err, ErrHandshakeTimeout)
}
