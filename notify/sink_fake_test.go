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
)

// fakeSink is a minimal in-memory TransportSink for tests: every TrySend
// and every reserved Send appends to sent, guarded by mu.
type fakeSink struct {
	mu      sync.Mutex
	tag     string
	sent    [][]byte
	closed  bool
	reserve error
}

func newFakeSink(tag string) *fakeSink {
	return &fakeSink{tag: tag}
}

func (f *fakeSink) TrySend(b []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	f.sent = append(f.sent, b)
	return true
}

func (f *fakeSink) ReserveSend(ctx context.Context) (Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reserve != nil {
		return nil, f.reserve
	}
	if f.closed {
		return nil, ErrConnectionClosed
	}
	return fakeReservation{f}, nil
}

func (f *fakeSink) MetricsTag() string { return f.tag }

func (f *fakeSink) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeSink) messages() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.sent))
	copy(out, f.sent)
	return out
}

type fakeReservation struct{ f *fakeSink }

func (r fakeReservation) Send(b []byte) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if r.f.closed {
		return ErrChannelClosed
	}
	r.f.sent = append(r.f.sent, b)
	return nil
}
