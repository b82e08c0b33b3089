// Copyright 2023 The go-probeum Authors
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

package notify

import (
	"context"
	"sync"

	"github.com/probeum/subp2p-notify/log"
	"github.com/probeum/subp2p-notify/metrics"
)

// SinkRef is a distributable, swappable handle to a peer's current
// outbound TransportSink. Any number of holders may keep a *SinkRef
// (sharing the pointer is enough in Go — unlike a Rust Arc<Mutex<..>>,
// there is no separate Clone step: handing out the pointer already gives
// every holder the same shared cell, and the Go runtime keeps it alive
// as long as any holder does). Interior mutation is serialized by a
// short, never-suspending critical section.
type SinkRef struct {
	mu   sync.Mutex
	sink TransportSink
	name ProtocolName

	metrics *metrics.Registry
	sent    metrics.Meter
}

// newSinkRef wraps sink under name. The ProtocolName never changes for
// the lifetime of the SinkRef; only the TransportSink slot is replaced.
func newSinkRef(name ProtocolName, sink TransportSink, reg *metrics.Registry) *SinkRef {
	return &SinkRef{
		sink:    sink,
		name:    name,
		metrics: reg,
		sent:    reg.GetOrRegisterMeter(string(name) + ".sinkref.sent"),
	}
}

// Protocol returns the ProtocolName this sink is addressed under.
func (s *SinkRef) Protocol() ProtocolName {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// SendSync acquires the critical section, reads the current sink, and
// delegates a synchronous, non-suspending, best-effort send. The
// transport is permitted to drop b under overload; SendSync reports
// whether it was accepted into the sink's queue.
func (s *SinkRef) SendSync(b []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok := s.sink.TrySend(b)
	if ok {
		s.sent.Mark(int64(len(b)))
	}
	return ok
}

// SendAsync clones the sink reference out of the critical section so the
// section is never held across the reservation's suspension point, then
// awaits a send permit and delivers b.
func (s *SinkRef) SendAsync(ctx context.Context, b []byte) error {
	s.mu.Lock()
	sink := s.sink
	s.mu.Unlock()

	resv, err := sink.ReserveSend(ctx)
	if err != nil {
		return ErrConnectionClosed
	}
	if err := resv.Send(b); err != nil {
		return ErrChannelClosed
	}
	s.sent.Mark(int64(len(b)))
	return nil
}

// SwapSink replaces the underlying TransportSink under the same
// ProtocolName. Readers that already hold this *SinkRef observe the new
// sink on their very next call; no reader ever sees a torn (sink, name).
func (s *SinkRef) SwapSink(newSink TransportSink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink = newSink
	log.Debug("Notification sink replaced", "protocol", s.name, "tag", newSink.MetricsTag())
}
