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

package main

import (
	"context"
	"sync"

	"github.com/probeum/subp2p-notify/notify"
)

// loopbackSink is a minimal notify.TransportSink with no real network
// underneath: every send is appended to an in-process log a consumer
// goroutine drains, standing in for the wire the broker otherwise assumes.
type loopbackSink struct {
	tag string

	mu     sync.Mutex
	closed bool
	out    chan []byte
}

func newLoopbackSink(tag string) *loopbackSink {
	return &loopbackSink{tag: tag, out: make(chan []byte, 16)}
}

func (s *loopbackSink) TrySend(b []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.out <- b:
		return true
	default:
		return false
	}
}

func (s *loopbackSink) ReserveSend(ctx context.Context) (notify.Reservation, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, context.Canceled
	}
	return loopbackReservation{s}, nil
}

func (s *loopbackSink) MetricsTag() string { return s.tag }

func (s *loopbackSink) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.out)
	}
}

type loopbackReservation struct{ s *loopbackSink }

func (r loopbackReservation) Send(b []byte) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.closed {
		return context.Canceled
	}
	r.s.out <- b
	return nil
}
