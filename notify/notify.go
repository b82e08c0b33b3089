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

// Package notify implements the per-protocol notification service
// brokerage that sits between a transport layer (responsible for raw
// substream lifecycle) and one or more cloned application protocol
// handles speaking a notifications protocol over those substreams.
//
// A ProtocolEndpoint is the transport-facing side: it injects lifecycle
// events and collects validation verdicts. A Handle is the
// application-facing side: it observes those events, maintains its own
// peer table, and sends outbound notifications directly through
// per-peer sinks. FactoryGlue (NewNotificationService) builds a linked
// pair over a shared subscriber registry and command channel.
package notify

import (
	"context"
	"errors"
	"strings"
)

// ProtocolName identifies a notifications sub-protocol, e.g.
// "/sup/1/transactions/2". Equality is byte-equality; a ProtocolName is
// immutable once a handle pair has been constructed from it.
type ProtocolName string

// Segments splits the protocol name on "/", the same tokenization the
// metrics-label derivation below is built on.
func (p ProtocolName) Segments() []string {
	return strings.Split(string(p), "/")
}

// MetricLabel derives the per-protocol metrics-channel label: the last
// two "/"-separated segments, most-recent first, appended to prefix.
// Bit-exact with the original implementation's
// `keys.iter().rev().take(2).fold(prefix, |acc, val| "{acc}-{val}")`.
func (p ProtocolName) MetricLabel(prefix string) string {
	keys := p.Segments()
	n := len(keys)
	take := 2
	if n < take {
		take = n
	}
	acc := prefix
	for i := 0; i < take; i++ {
		acc = acc + "-" + keys[n-1-i]
	}
	return acc
}

// PeerID is an opaque, comparable, transport-level peer identifier.
type PeerID string

// Direction records whether a substream was dialed or accepted.
type Direction int

const (
	DirInbound Direction = iota
	DirOutbound
)

func (d Direction) String() string {
	if d == DirOutbound {
		return "outbound"
	}
	return "inbound"
}

// ValidationVerdict is the accept/reject answer a subscriber gives for an
// inbound substream.
type ValidationVerdict int

const (
	Accept ValidationVerdict = iota
	Reject
)

func (v ValidationVerdict) String() string {
	if v == Reject {
		return "reject"
	}
	return "accept"
}

// Reservation is a confirmed send permit obtained from a TransportSink's
// backpressure-aware reservation call; Send consumes it exactly once.
type Reservation interface {
	Send(b []byte) error
}

// TransportSink is the external collaborator this package never
// implements: a capability handed to us by the transport layer that can
// enqueue a notification synchronously (dropping under overload is
// permitted), reserve a send permit asynchronously for backpressure, and
// report a tag for metrics. Cloning a TransportSink (at the transport
// layer) yields another reference to the same underlying queue.
type TransportSink interface {
	// TrySend enqueues b without blocking. It may drop b and return false
	// under overload; it must never block or allocate unboundedly.
	TrySend(b []byte) bool

	// ReserveSend awaits a send permit, honoring ctx cancellation.
	ReserveSend(ctx context.Context) (Reservation, error)

	// MetricsTag names this sink for metric attribution.
	MetricsTag() string
}

// ControlCommand is issued by a Handle and consumed by the transport
// layer over the bounded command channel.
type ControlCommand interface {
	isControlCommand()
}

type OpenSubstreamCommand struct{ Peer PeerID }
type CloseSubstreamCommand struct{ Peer PeerID }
type SetHandshakeCommand struct{ Handshake []byte }

func (OpenSubstreamCommand) isControlCommand()  {}
func (CloseSubstreamCommand) isControlCommand() {}
func (SetHandshakeCommand) isControlCommand()   {}

// EventKind tags a NotificationEvent/internalEvent variant.
type EventKind int

const (
	EventValidateInbound EventKind = iota
	EventStreamOpened
	EventStreamClosed
	EventNotificationReceived

	// eventSinkReplaced is internal-only: it never crosses into a public
	// NotificationEvent (spec requires sink replacement stay invisible to
	// the application).
	eventSinkReplaced
)

// NotificationEvent is the public, application-facing event surfaced by
// Handle.NextEvent. Only the fields relevant to Kind are meaningful; the
// zero value of the others is ignored.
type NotificationEvent struct {
	Kind EventKind

	Peer PeerID

	// ValidateInbound (Handshake is also set on StreamOpened)
	Handshake []byte
	Verdict   chan<- ValidationVerdict

	// StreamOpened
	Direction          Direction
	NegotiatedFallback ProtocolName

	// NotificationReceived
	Bytes []byte
}

// internalEvent is the broker-bus superset of NotificationEvent: it
// additionally carries the sink on StreamOpened and SinkReplaced, which
// Handle consumes to maintain its PeerTable but never republishes.
type internalEvent struct {
	kind EventKind

	peer PeerID

	handshake []byte
	verdict   chan<- ValidationVerdict

	direction          Direction
	negotiatedFallback ProtocolName

	bytes []byte

	sink TransportSink
}

// Sentinel errors for the taxonomy of spec §7. Compare with errors.Is.
var (
	ErrPeerDoesNotExist      = errors.New("notify: peer does not exist")
	ErrConnectionClosed      = errors.New("notify: connection closed")
	ErrChannelClosed         = errors.New("notify: channel closed")
	ErrControlChannelBlocked = errors.New("notify: control channel blocked")
	ErrControlChannelClosed  = errors.New("notify: control channel closed")
	ErrNotSupported          = errors.New("notify: operation not supported")
)
