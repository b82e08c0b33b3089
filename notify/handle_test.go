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
	"testing"
	"time"
)

func TestCloneStartsWithEmptyPeerTable(t *testing.T) {
	pe, h1 := newTestService()
	pe.ReportSubstreamOpened("peerA", DirInbound, nil, "", newFakeSink("a"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, ok := h1.NextEvent(ctx); !ok {
		t.Fatal("h1 NextEvent failed")
	}
	if h1.MessageSink("peerA") == nil {
		t.Fatal("h1 should know about peerA")
	}

	h2 := h1.Clone()
	if h2.MessageSink("peerA") != nil {
		t.Fatal("h2's PeerTable should start empty, independent of h1's")
	}
}

func TestCloneObservesFutureNotPastEvents(t *testing.T) {
	pe, h1 := newTestService()
	pe.ReportSubstreamOpened("peerA", DirInbound, nil, "", newFakeSink("a"))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if _, ok := h1.NextEvent(ctx); !ok {
		t.Fatal("h1 NextEvent failed")
	}

	h2 := h1.Clone()
	select {
	case ev := <-h2.events:
		t.Fatalf("h2 unexpectedly observed a pre-existing event: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}

	pe.ReportSubstreamOpened("peerB", DirInbound, nil, "", newFakeSink("b"))
	ev, ok := h2.NextEvent(ctx)
	if !ok || ev.Peer != "peerB" {
		t.Fatalf("h2 should observe future events; got ev=%+v ok=%v", ev, ok)
	}
}

func TestOpenCloseSubstreamEnqueuesCommand(t *testing.T) {
	pe, h := newTestService()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := h.OpenSubstream(ctx, "peerA"); err != nil {
		t.Fatalf("OpenSubstream: %v", err)
	}
	if err := h.CloseSubstream(ctx, "peerA"); err != nil {
		t.Fatalf("CloseSubstream: %v", err)
	}

	cmd1 := <-pe.Commands()
	if _, ok := cmd1.(OpenSubstreamCommand); !ok {
		t.Fatalf("first command = %T, want OpenSubstreamCommand", cmd1)
	}
	cmd2 := <-pe.Commands()
	if _, ok := cmd2.(CloseSubstreamCommand); !ok {
		t.Fatalf("second command = %T, want CloseSubstreamCommand", cmd2)
	}
}

func TestTrySetHandshakeFailsWhenChannelFull(t *testing.T) {
	h := &Handle{commands: make(chan ControlCommand)} // unbuffered, nobody reading

	if err := h.TrySetHandshake([]byte("hs")); err != ErrControlChannelBlocked {
		t.Fatalf("err = %v, want ErrControlChannelBlocked", err)
	}
}

func TestCloseMarksSlotDefunct(t *testing.T) {
	pe, h1 := newTestService()
	h2 := h1.Clone()
	h2.Close()

	if h2.slot.send(internalEvent{kind: EventStreamClosed}) {
		t.Fatal("send on a closed slot should fail")
	}
	_ = pe
}

func TestHandleLabel(t *testing.T) {
	_, h := newTestService()
	if got, want := h.label(), "mpsc-notification-to-protocol-2-transactions"; got != want {
		t.Fatalf("label() = %q, want %q", got, want)
	}
}
