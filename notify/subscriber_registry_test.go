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

import "testing"

func TestSubscriberRegistryBroadcastReapsDeadSlot(t *testing.T) {
	r := newSubscriberRegistry()

	alive := &subscriberSlot{ch: make(chan internalEvent, 1)}
	dead := &subscriberSlot{ch: make(chan internalEvent, 1)}
	dead.release()

	r.append(alive)
	r.append(dead)

	if r.len() != 2 {
		t.Fatalf("len = %d, want 2", r.len())
	}

	r.broadcast(internalEvent{kind: EventStreamClosed, peer: "p"})

	if r.len() != 1 {
		t.Fatalf("len after broadcast = %d, want 1", r.len())
	}
	select {
	case ev := <-alive.ch:
		if ev.peer != "p" {
			t.Fatalf("peer = %q, want p", ev.peer)
		}
	default:
		t.Fatal("surviving subscriber did not receive the broadcast")
	}
}

func TestSubscriberRegistryBroadcastFullChannelReaps(t *testing.T) {
	r := newSubscriberRegistry()
	full := &subscriberSlot{ch: make(chan internalEvent)} // unbuffered, no reader
	r.append(full)

	r.broadcast(internalEvent{kind: EventStreamClosed, peer: "p"})

	if r.len() != 0 {
		t.Fatalf("len = %d, want 0 after a send into a full channel", r.len())
	}
}

func TestSubscriberRegistryBroadcastValidationDoesNotReap(t *testing.T) {
	r := newSubscriberRegistry()
	full := &subscriberSlot{ch: make(chan internalEvent)} // unbuffered, no reader, send fails
	r.append(full)

	receivers, total := r.broadcastValidation(func() (internalEvent, <-chan ValidationVerdict) {
		v := make(chan ValidationVerdict, 1)
		return internalEvent{kind: EventValidateInbound, peer: "p", verdict: v}, v
	})

	if total != 1 {
		t.Fatalf("total = %d, want 1", total)
	}
	if len(receivers) != 0 {
		t.Fatalf("receivers = %v, want none (send into full channel fails)", receivers)
	}
	// The one broadcast-policy exception: a failed validation send must
	// not prune the subscriber.
	if r.len() != 1 {
		t.Fatalf("len = %d, want 1 (validation broadcasts never reap)", r.len())
	}
}

func TestSubscriberRegistryBroadcastValidationDistinctEventPerSubscriber(t *testing.T) {
	r := newSubscriberRegistry()
	s1 := &subscriberSlot{ch: make(chan internalEvent, 1)}
	s2 := &subscriberSlot{ch: make(chan internalEvent, 1)}
	r.append(s1)
	r.append(s2)

	receivers, total := r.broadcastValidation(func() (internalEvent, <-chan ValidationVerdict) {
		v := make(chan ValidationVerdict, 1)
		return internalEvent{kind: EventValidateInbound, peer: "p", verdict: v}, v
	})

	if total != 2 || len(receivers) != 2 {
		t.Fatalf("total=%d receivers=%d, want 2/2", total, len(receivers))
	}

	ev1 := <-s1.ch
	ev2 := <-s2.ch
	if ev1.verdict == ev2.verdict {
		t.Fatal("both subscribers got the same verdict channel, want distinct")
	}
}
