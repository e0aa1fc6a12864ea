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

package spi

import (
	"context"
	"sync"

	nina "github.com/ZaparooProject/go-nina"
)

// sharedBus serialises transports that share one SPI controller. Modules on
// the same bus differ only in their chip-select line, so exclusion is keyed
// by bus name rather than by transport. Only the transport holding the bus
// may release it.
type sharedBus struct {
	holder any
	sem    chan struct{}
	name   string
	refs   int
	mu     sync.Mutex
}

var (
	busRegistryMu sync.Mutex
	busRegistry   = make(map[string]*sharedBus)
)

// openSharedBus returns the lock for name, creating it on first use.
func openSharedBus(name string) *sharedBus {
	busRegistryMu.Lock()
	defer busRegistryMu.Unlock()

	bus, ok := busRegistry[name]
	if !ok {
		bus = &sharedBus{name: name, sem: make(chan struct{}, 1)}
		busRegistry[name] = bus
	}
	bus.refs++
	return bus
}

// close drops one reference and forgets the bus when none remain.
func (b *sharedBus) close() {
	busRegistryMu.Lock()
	defer busRegistryMu.Unlock()

	b.refs--
	if b.refs <= 0 {
		delete(busRegistry, b.name)
	}
}

func (b *sharedBus) lock(ctx context.Context, owner any) error {
	select {
	case b.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	b.mu.Lock()
	b.holder = owner
	b.mu.Unlock()
	return nil
}

func (b *sharedBus) unlock(owner any) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.holder == nil || b.holder != owner {
		return nina.ErrBusNotHeld
	}
	b.holder = nil
	<-b.sem
	return nil
}
