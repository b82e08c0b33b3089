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

	"github.com/probeum/subp2p-notify/log"
	"github.com/probeum/subp2p-notify/metrics"
	"github.com/probeum/subp2p-notify/notify/notifyconfig"
)

// Handle is the application-facing side of a notification service: it
// observes substream lifecycle events, maintains its own peer table, and
// sends outbound notifications directly through per-peer sinks,
// bypassing the broker entirely on the send path.
type Handle struct {
	protocol    ProtocolName
	registry    *subscriberRegistry
	commands    chan<- ControlCommand
	labelPrefix string

	slot   *subscriberSlot
	events <-chan internalEvent

	table *peerTable

	metrics *metrics.Registry
	log     log.Logger
}

// Protocol returns the ProtocolName this handle was built for.
func (h *Handle) Protocol() ProtocolName {
	return h.protocol
}

// OpenSubstream asks the transport layer to open a substream to peer.
// Implemented by enqueuing a ControlCommand, per SPEC_FULL.md's
// resolution of spec.md §9 open question (b): a blocked or closed
// command channel already produces a well-defined failure, so there is
// no need for a separate NotSupported path.
func (h *Handle) OpenSubstream(ctx context.Context, peer PeerID) error {
	return h.enqueueCommand(ctx, OpenSubstreamCommand{Peer: peer})
}

// CloseSubstream asks the transport layer to close peer's substream.
func (h *Handle) CloseSubstream(ctx context.Context, peer PeerID) error {
	return h.enqueueCommand(ctx, CloseSubstreamCommand{Peer: peer})
}

func (h *Handle) enqueueCommand(ctx context.Context, cmd ControlCommand) error {
	select {
	case h.commands <- cmd:
		return nil
	case <-ctx.Done():
		return ErrControlChannelBlocked
	}
}

// SendSyncNotification looks up peer's PeerContext and, if present,
// enqueues b synchronously on its primary sink. An unknown peer is
// silently dropped, matching spec.md §4.5.
func (h *Handle) SendSyncNotification(peer PeerID, b []byte) {
	ctx, ok := h.table.get(peer)
	if !ok {
		return
	}
	if ctx.primary.TrySend(b) {
		h.metrics.GetOrRegisterMeter(h.label() + ".notificationSent").Mark(int64(len(b)))
	}
}

// SendAsyncNotification reserves a send permit on peer's primary sink and
// delivers b, reporting ErrPeerDoesNotExist/ErrConnectionClosed/
// ErrChannelClosed as spec.md §4.5/§7 require.
func (h *Handle) SendAsyncNotification(ctx context.Context, peer PeerID, b []byte) error {
	pctx, ok := h.table.get(peer)
	if !ok {
		return ErrPeerDoesNotExist
	}
	resv, err := pctx.primary.ReserveSend(ctx)
	if err != nil {
		return ErrConnectionClosed
	}
	if err := resv.Send(b); err != nil {
		return ErrChannelClosed
	}
	h.metrics.GetOrRegisterMeter(h.label() + ".notificationSent").Mark(int64(len(b)))
	return nil
}

// SetHandshake enqueues a SetHandshake command, blocking until there is
// room or ctx is done.
func (h *Handle) SetHandshake(ctx context.Context, handshake []byte) error {
	return h.enqueueCommand(ctx, SetHandshakeCommand{Handshake: handshake})
}

// TrySetHandshake is the non-blocking variant of SetHandshake: it fails
// immediately if the command channel is full or closed instead of
// waiting.
func (h *Handle) TrySetHandshake(handshake []byte) error {
	select {
	case h.commands <- SetHandshakeCommand{Handshake: handshake}:
		return nil
	default:
		return ErrControlChannelBlocked
	}
}

// NextEvent awaits the next internal event, performs PeerTable
// bookkeeping, and translates it into a public NotificationEvent. It
// returns ok=false once the internal event stream closes.
func (h *Handle) NextEvent(ctx context.Context) (NotificationEvent, bool) {
	for {
		select {
		case ev, open := <-h.events:
			if !open {
				return NotificationEvent{}, false
			}
			if out, surface := h.apply(ev); surface {
				return out, true
			}
			// SinkReplaced (or any other non-surfacing event): loop for
			// the next one.
		case <-ctx.Done():
			return NotificationEvent{}, false
		}
	}
}

// apply performs the bookkeeping translation spec.md §4.5 describes for
// NextEvent, and reports whether the event should be surfaced.
func (h *Handle) apply(ev internalEvent) (NotificationEvent, bool) {
	switch ev.kind {
	case EventValidateInbound:
		return NotificationEvent{
			Kind:      EventValidateInbound,
			Peer:      ev.peer,
			Handshake: ev.handshake,
			Verdict:   ev.verdict,
		}, true

	case EventStreamOpened:
		h.table.insert(ev.peer, &peerContext{
			primary: ev.sink,
			shared:  newSinkRef(h.protocol, ev.sink, h.metrics),
		})
		return NotificationEvent{
			Kind:               EventStreamOpened,
			Peer:               ev.peer,
			Direction:          ev.direction,
			Handshake:          ev.handshake,
			NegotiatedFallback: ev.negotiatedFallback,
		}, true

	case EventStreamClosed:
		h.table.remove(ev.peer)
		return NotificationEvent{Kind: EventStreamClosed, Peer: ev.peer}, true

	case EventNotificationReceived:
		return NotificationEvent{Kind: EventNotificationReceived, Peer: ev.peer, Bytes: ev.bytes}, true

	case eventSinkReplaced:
		if !h.table.replaceSink(ev.peer, ev.sink) {
			h.log.Error("SinkReplaced for unknown peer", "peer", ev.peer)
		}
		return NotificationEvent{}, false

	default:
		h.log.Error("Unrecognized internal event kind", "kind", ev.kind)
		return NotificationEvent{}, false
	}
}

// Clone allocates a new event-stream channel, registers it with the
// shared subscriber registry, and returns a new Handle that shares this
// one's ProtocolName, command channel, and registry but starts with an
// empty PeerTable. The new handle observes every future event and none
// of the past ones.
func (h *Handle) Clone() *Handle {
	ch := make(chan internalEvent, notifyconfig.EventChannelCapacity)
	slot := &subscriberSlot{ch: ch}
	h.registry.append(slot)

	return &Handle{
		protocol:    h.protocol,
		registry:    h.registry,
		commands:    h.commands,
		labelPrefix: h.labelPrefix,
		slot:        slot,
		events:      ch,
		table:       newPeerTable(),
		metrics:     h.metrics,
		log:         h.log,
	}
}

// MessageSink returns a clone of peer's SinkRef, or nil if peer is
// unknown. Because SinkRef is a shared cell reached through a pointer,
// "clone" is simply handing out the same pointer: the returned SinkRef
// stays live and current across any number of future sink replacements
// for that peer.
func (h *Handle) MessageSink(peer PeerID) *SinkRef {
	ctx, ok := h.table.get(peer)
	if !ok {
		return nil
	}
	return ctx.shared
}

// Close marks this handle's subscriber slot defunct. The registry reaps
// it lazily, on its next broadcast — this is the Go-idiomatic stand-in
// for "dropping" a handle, since Go has no destructor to hook a Receiver
// going out of scope.
func (h *Handle) Close() {
	if h.slot != nil {
		h.slot.release()
	}
}

func (h *Handle) label() string {
	return h.protocol.MetricLabel(h.labelPrefix)
}
