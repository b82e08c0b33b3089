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

package metrics

import "sync"

// Registry is a named collection of samples, one per protocol instance so
// two protocols registered on the same process don't clobber each other's
// counters.
type Registry struct {
	mu      sync.Mutex
	samples map[string]interface{}
}

// NewRegistry allocates an empty registry. A nil *Registry is valid and
// every accessor on it is a no-op, so callers that don't care about metrics
// (as ProtocolEndpoint.SetMetrics(nil) permits) never need a nil check.
func NewRegistry() *Registry {
	return &Registry{samples: make(map[string]interface{})}
}

func (r *Registry) GetOrRegisterCounter(name string) Counter {
	if r == nil {
		return NewCounter()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.samples[name].(Counter); ok {
		return c
	}
	c := NewCounter()
	r.samples[name] = c
	return c
}

func (r *Registry) GetOrRegisterGauge(name string) Gauge {
	if r == nil {
		return NewGauge()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.samples[name].(Gauge); ok {
		return g
	}
	g := NewGauge()
	r.samples[name] = g
	return g
}

func (r *Registry) GetOrRegisterMeter(name string) Meter {
	if r == nil {
		return NewMeter()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.samples[name].(Meter); ok {
		return m
	}
	m := NewMeter()
	r.samples[name] = m
	return m
}

// Each calls fn for every registered sample, the shape the influx reporter
// walks to build points for a push.
func (r *Registry) Each(fn func(name string, i interface{})) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, i := range r.samples {
		fn(name, i)
	}
}
