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
	"sync/atomic"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/google/uuid"

	"github.com/probeum/subp2p-notify/log"
	"github.com/probeum/subp2p-notify/metrics"
)

// ValidationOutcome tags how ReportIncomingSubstream resolved.
type ValidationOutcome int

const (
	// OutcomeDelegated means validation was handed off to the external
	// peerset; there is no verdict channel to wait on.
	OutcomeDelegated ValidationOutcome = iota
	// OutcomeAwait means Verdict will yield the merged verdict.
	OutcomeAwait
	// OutcomeSendFailed means the sole subscriber's event channel was
	// full or released; the caller is responsible for treating this as
	// a rejection.
	OutcomeSendFailed
)

// ValidationCallResult is what ReportIncomingSubstream hands back to the
// transport layer.
type ValidationCallResult struct {
	Outcome ValidationOutcome
	Verdict <-chan ValidationVerdict
}

// ProtocolEndpoint is the transport-facing side of a notification
// service: it injects substream lifecycle events into the registry and
// collects validation verdicts, without ever blocking the caller.
type ProtocolEndpoint struct {
	protocol    ProtocolName
	registry    *subscriberRegistry
	commands    <-chan ControlCommand
	labelPrefix string

	metrics           *metrics.Registry
	delegateToPeerset int32 // atomic bool
	numPeers          uint64

	rejections *fastcache.Cache // recent-rejection diagnostics, see DESIGN.md
}

// SetMetrics wires a metrics registry in. Not thread-hot: called before
// any peer event, same contract as the teacher's own config setters.
func (p *ProtocolEndpoint) SetMetrics(m *metrics.Registry) {
	p.metrics = m
}

// SetDelegateToPeerset switches ReportIncomingSubstream to always answer
// Delegated, handing validation to the external peerset component.
func (p *ProtocolEndpoint) SetDelegateToPeerset(delegate bool) {
	v := int32(0)
	if delegate {
		v = 1
	}
	atomic.StoreInt32(&p.delegateToPeerset, v)
}

func (p *ProtocolEndpoint) delegating() bool {
	return atomic.LoadInt32(&p.delegateToPeerset) == 1
}

// Commands returns the control-command stream consumed by the transport
// layer — the "split"-style decomposition spec.md §6 calls out.
func (p *ProtocolEndpoint) Commands() <-chan ControlCommand {
	return p.commands
}

// NumPeers returns the live peer count, saturating at zero; it can never
// go negative even if ReportSubstreamClosed arrives without a matching
// open (e.g. after a restart).
func (p *ProtocolEndpoint) NumPeers() uint64 {
	return atomic.LoadUint64(&p.numPeers)
}

// ReportIncomingSubstream asks every live subscriber whether peer should
// be admitted. See ValidationOutcome for how to interpret the result.
func (p *ProtocolEndpoint) ReportIncomingSubstream(ctx context.Context, peer PeerID, handshake []byte) (ValidationCallResult, error) {
	if p.delegating() {
		return ValidationCallResult{Outcome: OutcomeDelegated}, nil
	}

	corr := uuid.NewString()
	receivers, total := p.registry.broadcastValidation(func() (internalEvent, <-chan ValidationVerdict) {
		verdict := make(chan ValidationVerdict, 1)
		ev := internalEvent{
			kind:      EventValidateInbound,
			peer:      peer,
			handshake: handshake,
			verdict:   verdict,
		}
		return ev, verdict
	})

	if total == 1 && len(receivers) == 0 {
		log.Debug("Validation send failed for sole subscriber", "protocol", p.protocol, "peer", peer, "corr", corr)
		return ValidationCallResult{Outcome: OutcomeSendFailed}, ErrChannelClosed
	}

	result := make(chan ValidationVerdict, 1)
	go func() {
		v := aggregateValidation(ctx, receivers)
		if v == Reject {
			p.recordRejection(peer)
		}
		log.Debug("Validation resolved", "protocol", p.protocol, "peer", peer, "corr", corr, "verdict", v, "subscribers", total)
		result <- v
	}()
	return ValidationCallResult{Outcome: OutcomeAwait, Verdict: result}, nil
}

// ReportSubstreamOpened broadcasts StreamOpened to all live subscribers
// and increments the peer count.
func (p *ProtocolEndpoint) ReportSubstreamOpened(peer PeerID, direction Direction, handshake []byte, negotiatedFallback ProtocolName, sink TransportSink) {
	p.registry.broadcast(internalEvent{
		kind:               EventStreamOpened,
		peer:               peer,
		direction:          direction,
		handshake:          handshake,
		negotiatedFallback: negotiatedFallback,
		sink:               sink,
	})
	atomic.AddUint64(&p.numPeers, 1)
	p.metrics.GetOrRegisterCounter(p.label() + ".substreamOpened").Inc(1)
}

// ReportSubstreamClosed broadcasts StreamClosed and decrements the peer
// count, saturating at zero.
func (p *ProtocolEndpoint) ReportSubstreamClosed(peer PeerID) {
	p.registry.broadcast(internalEvent{kind: EventStreamClosed, peer: peer})
	saturatingDecr(&p.numPeers)
	p.metrics.GetOrRegisterCounter(p.label() + ".substreamClosed").Inc(1)
}

// ReportNotificationReceived broadcasts an inbound notification.
func (p *ProtocolEndpoint) ReportNotificationReceived(peer PeerID, data []byte) {
	p.registry.broadcast(internalEvent{kind: EventNotificationReceived, peer: peer, bytes: data})
	p.metrics.GetOrRegisterMeter(p.label() + ".notificationReceived").Mark(int64(len(data)))
}

// ReportNotificationSinkReplaced broadcasts an internal SinkReplaced
// event. This is never surfaced to the application; only Handle consumes
// it to keep its PeerTable (and third-party SinkRef holders) current.
func (p *ProtocolEndpoint) ReportNotificationSinkReplaced(peer PeerID, sink TransportSink) {
	p.registry.broadcast(internalEvent{kind: eventSinkReplaced, peer: peer, sink: sink})
}

// WasRecentlyRejected reports whether a Reject verdict has been recorded
// for peer. A later Accept does not clear the entry; only eviction from
// the cache does. This is diagnostic only, backed by a bounded
// fastcache rather than an ever-growing map — this broker has no
// ledger/state of its own to cache, but it does accumulate verdict
// history, and fastcache gives that a fixed memory footprint for free.
func (p *ProtocolEndpoint) WasRecentlyRejected(peer PeerID) bool {
	if p.rejections == nil {
		return false
	}
	return p.rejections.Has([]byte(peer))
}

func (p *ProtocolEndpoint) recordRejection(peer PeerID) {
	if p.rejections == nil {
		return
	}
	p.rejections.Set([]byte(peer), []byte{1})
}

func (p *ProtocolEndpoint) label() string {
	return p.protocol.MetricLabel(p.labelPrefix)
}

func saturatingDecr(v *uint64) {
	for {
		cur := atomic.LoadUint64(v)
		if cur == 0 {
			return
		}
		if atomic.CompareAndSwapUint64(v, cur, cur-1) {
			return
		}
	}
}
