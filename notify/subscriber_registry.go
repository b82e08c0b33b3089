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
	"sync"
	"sync/atomic"
)

// subscriberSlot is a named event-stream sender feeding one Handle's
// inbound event queue. closed is set once by the owning Handle when it
// stops consuming (Handle.Close); Go gives us no "receiver dropped"
// signal the way a Rust mpsc::Receiver's Drop does, so an explicit flag
// stands in for it.
type subscriberSlot struct {
	ch     chan internalEvent
	closed int32
}

func (s *subscriberSlot) send(ev internalEvent) bool {
	if atomic.LoadInt32(&s.closed) == 1 {
		return false
	}
	select {
	case s.ch <- ev:
		return true
	default:
		return false
	}
}

func (s *subscriberSlot) release() {
	atomic.StoreInt32(&s.closed, 1)
}

// subscriberRegistry is the ordered sequence of subscriberSlots shared by
// a ProtocolEndpoint and every Handle cloned from it. Appends happen on
// Handle.Clone; removal happens lazily, only from broadcast, when a
// slot's send fails.
type subscriberRegistry struct {
	mu   sync.Mutex
	subs []*subscriberSlot
}

func newSubscriberRegistry() *subscriberRegistry {
	return &subscriberRegistry{}
}

func (r *subscriberRegistry) append(slot *subscriberSlot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = append(r.subs, slot)
}

func (r *subscriberRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

// broadcast sends ev to every live subscriber. A subscriber whose send
// fails is dropped from the registry; it is taken as evidence the
// consuming Handle is gone.
func (r *subscriberRegistry) broadcast(ev internalEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	live := r.subs[:0]
	for _, s := range r.subs {
		if s.send(ev) {
			live = append(live, s)
		}
	}
	r.subs = live
}

// broadcastValidation fans a validation event out to every subscriber,
// building a distinct event (and therefore a distinct verdict channel)
// per subscriber via makeEvent. Unlike broadcast, a failed send is simply
// omitted from the returned receivers — the subscriber is NOT reaped
// here, per the one broadcast-policy exception spec.md calls out.
//
// total is the subscriber count observed under the same critical section
// the sends happened in, so a caller can distinguish "no subscribers
// existed" from "the sole subscriber's send failed" — the two cases
// ReportIncomingSubstream treats differently.
func (r *subscriberRegistry) broadcastValidation(makeEvent func() (internalEvent, <-chan ValidationVerdict)) (receivers []<-chan ValidationVerdict, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	total = len(r.subs)
	for _, s := range r.subs {
		ev, recv := makeEvent()
		if s.send(ev) {
			receivers = append(receivers, recv)
		}
	}
	return receivers, total
}
