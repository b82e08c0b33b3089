// Copyright 2015 The go-probeum Authors
// This file is part of the go-probeum library.
//
// The go-probeum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-probeum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-probeum library. If not, see <http://www.gnu.org/licenses/>.

// Package metrics is the minimal metrics registry this family of clients
// carries alongside every protocol handler, so that network-facing code
// never has to check a nil pointer before recording a sample.
package metrics

import "sync/atomic"

// Counter is a monotonically increasing count, safe for concurrent use.
type Counter interface {
	Inc(delta int64)
	Count() int64
}

type counter struct{ n int64 }

func NewCounter() Counter                { return &counter{} }
func (c *counter) Inc(delta int64)       { atomic.AddInt64(&c.n, delta) }
func (c *counter) Count() int64          { return atomic.LoadInt64(&c.n) }

// Gauge holds the most recently reported value of a quantity.
type Gauge interface {
	Update(v int64)
	Value() int64
}

type gauge struct{ v int64 }

func NewGauge() Gauge          { return &gauge{} }
func (g *gauge) Update(v int64) { atomic.StoreInt64(&g.v, v) }
func (g *gauge) Value() int64   { return atomic.LoadInt64(&g.v) }

// Meter accumulates the values passed to Mark, e.g. the cumulative byte
// size of notifications delivered. Count returns that sum; the number of
// Mark calls is not tracked.
type Meter interface {
	Mark(n int64)
	Count() int64
}

type meter struct{ n int64 }

func NewMeter() Meter          { return &meter{} }
func (m *meter) Mark(n int64)   { atomic.AddInt64(&m.n, n) }
func (m *meter) Count() int64   { return atomic.LoadInt64(&m.n) }
