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
	"github.com/VictoriaMetrics/fastcache"

	"github.com/probeum/subp2p-notify/log"
	"github.com/probeum/subp2p-notify/notify/notifyconfig"
)

// recentRejectionsCacheBytes sizes the fastcache-backed rejection
// diagnostic; fastcache rounds this up to its minimum bucket size
// internally, so a small protocol's footprint stays negligible.
const recentRejectionsCacheBytes = 1 << 20 // 1MiB

// NewNotificationService builds a linked (ProtocolEndpoint, Handle) pair
// for name: a bounded control-command channel, an event channel seeded
// into a fresh subscriber registry, and the two endpoints sharing both.
// This is FactoryGlue (spec.md §4.8).
func NewNotificationService(name ProtocolName, cfg notifyconfig.Config) (*ProtocolEndpoint, *Handle) {
	commands := make(chan ControlCommand, notifyconfig.CommandChannelCapacity)
	events := make(chan internalEvent, notifyconfig.EventChannelCapacity)

	slot := &subscriberSlot{ch: events}
	registry := newSubscriberRegistry()
	registry.append(slot)

	pe := &ProtocolEndpoint{
		protocol:    name,
		registry:    registry,
		commands:    commands,
		labelPrefix: cfg.LabelPrefix(),
		rejections:  fastcache.New(recentRejectionsCacheBytes),
	}
	pe.SetDelegateToPeerset(cfg.DelegateToPeerset)

	h := &Handle{
		protocol:    name,
		registry:    registry,
		commands:    commands,
		labelPrefix: cfg.LabelPrefix(),
		slot:        slot,
		events:      events,
		table:       newPeerTable(),
		log:         log.New("protocol", name),
	}

	return pe, h
}
