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
	"fmt"
	"io"
	"net"
	"text/tabwriter"

	nina "github.com/ZaparooProject/go-nina"
	"github.com/ZaparooProject/go-nina/detection"
)

// Output handles consistent formatting of messages
type Output struct {
	w       io.Writer
	verbose bool
}

// NewOutput creates a new output handler
func NewOutput(w io.Writer, verbose bool) *Output {
	return &Output{w: w, verbose: verbose}
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

// Firmware prints the module firmware version
func (o *Output) Firmware(version string) {
	o.printf("Firmware: %s\n", version)
}

// MAC prints the station MAC address
func (o *Output) MAC(mac net.HardwareAddr) {
	o.printf("MAC: %s\n", mac)
}

// Status prints the connection status and, when connected, the link details
func (o *Output) Status(status nina.Status, link *Link) {
	o.printf("Status: %s\n", status)
	if link == nil {
		return
	}
	o.printf("SSID: %s\n", link.SSID)
	o.printf("BSSID: %s\n", link.BSSID)
	o.printf("RSSI: %d dBm\n", link.RSSI)
	o.printf("Security: %s\n", link.Encryption)
	if link.IP != nil {
		o.printf("IP: %s/%s gateway %s\n", link.IP.IP, net.IP(link.IP.Mask), link.IP.Gateway)
	}
}

// Networks prints scan results as a table
func (o *Output) Networks(networks []nina.Network, reported int) {
	if len(networks) == 0 {
		o.printf("No networks found\n")
		return
	}

	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "SSID\tBSSID\tCH\tRSSI\tSECURITY")
	for _, n := range networks {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", n.SSID, n.BSSID, n.Channel, n.RSSI, n.Encryption)
	}
	_ = tw.Flush()

	if reported > len(networks) {
		o.printf("(%d more not shown)\n", reported-len(networks))
	}
}

// SSIDs prints a plain list of scanned network names
func (o *Output) SSIDs(scan *nina.ScanResult) {
	for i, ssid := range scan.SSIDs {
		o.printf("%2d  %s\n", i, ssid)
	}
	if scan.Truncated {
		o.printf("(%d more not shown)\n", scan.Reported-len(scan.SSIDs))
	}
}

// Result prints the outcome of a command
func (o *Output) Result(op string, result nina.CommandResult) {
	if result.OK() {
		o.printf("OK: %s\n", op)
		return
	}
	o.printf("FAIL: %s (%s)\n", op, result)
}

// StatusChange prints a monitored status transition
func (o *Output) StatusChange(previous, current nina.Status) {
	o.printf("STATUS: %s -> %s\n", previous, current)
}

// Devices prints detected candidate devices
func (o *Output) Devices(devices []detection.DeviceInfo) {
	for _, d := range devices {
		o.printf("%-5s %-20s %-8s %s\n", d.Transport, d.Path, d.Confidence, d.Name)
		if !o.verbose {
			continue
		}
		for k, v := range d.Metadata {
			o.printf("      %s=%s\n", k, v)
		}
	}
}

// Info prints a message only in verbose mode
func (o *Output) Info(format string, args ...any) {
	if o.verbose {
		o.printf(format+"\n", args...)
	}
}

// Error prints an error message
func (o *Output) Error(format string, args ...any) {
	o.printf("ERROR: "+format+"\n", args...)
}
