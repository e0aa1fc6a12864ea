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

/*
Package nina is a pure Go driver for the u-blox NINA WiFi co-processor
running the Arduino NINA firmware, talking to the module over SPI.

The host is the bus master. Every operation is one request/response round
trip: the driver waits for the module's ready line, writes a framed request
under chip select, waits for ready again and clocks out the framed reply.

Features:
  - Link bring-up: reset sequence and bounded ready waits
  - Firmware version, MAC address and connection status
  - Network scan with per-network RSSI, BSSID, channel and security
  - Joining and leaving networks, open or WPA
  - Per-exchange phase logging and byte traces on failure
  - Concurrent devices sharing one SPI bus

Basic Usage:

	import (
	    "github.com/ZaparooProject/go-nina"
	    "github.com/ZaparooProject/go-nina/transport/spi"
	)

	// Open the module on the default Raspberry Pi wiring. Open resets the
	// module and checks that it answers.
	device, err := nina.Open(ctx, nina.DefaultLinkConfig(), spi.Factory)
	if err != nil {
	    log.Fatal(err)
	}
	defer device.Close()

	version, err := device.FirmwareVersionContext(ctx)
	if err != nil {
	    log.Fatal(err)
	}
	fmt.Printf("firmware %s\n", version)

	// Join a network and wait for association
	status, err := polling.Join(ctx, device, "home", "passphrase", nil)

Custom Wiring:

	cfg := nina.DefaultLinkConfig()
	cfg.Bus = "SPI1.0"
	cfg.Ready = "GPIO5"
	cfg.Boot = "" // boot line not connected

Error Handling:

Failed exchanges return a *ProtocolError naming the operation and opcode.
Sentinels can be matched with errors.Is:

	if errors.Is(err, nina.ErrHandshakeTimeout) {
	    // module never raised its ready line
	}

When tracing is enabled (the default) the error also carries a *TraceError
with the bytes exchanged, useful when a module answers with garbage.

Thread Safety:

Device operations are safe for concurrent use. Each exchange holds the bus
from the first ready wait until the reply has been read, so exchanges from
different goroutines or different devices on one bus never interleave.
*/
package nina
