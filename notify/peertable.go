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

import "sync"

// peerContext is the per-peer record a Handle keeps: primary always
// references the same underlying TransportSink as the one inside shared,
// kept in lockstep on every SinkReplaced.
type peerContext struct {
	primary TransportSink
	shared  *SinkRef
}

// peerTable maps PeerID to peerContext, private to exactly one Handle.
// Nothing outside this package ever reaches into it directly; a separate
// Handle created via Clone gets its own, independently empty, peerTable.
type peerTable struct {
	mu    sync.RWMutex
	peers map[PeerID]*peerContext
}

func newPeerTable() *peerTable {
	return &peerTable{peers: make(map[PeerID]*peerContext)}
}

func (t *peerTable) insert(id PeerID, ctx *peerContext) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.peers[id] = ctx
}

func (t *peerTable) remove(id PeerID) (*peerContext, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ctx, ok := t.peers[id]
	if ok {
		delete(t.peers, id)
	}
	return ctx, ok
}

func (t *peerTable) get(id PeerID) (*peerContext, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ctx, ok := t.peers[id]
	return ctx, ok
}

// replaceSink swaps both halves of a peerContext (the raw primary sink
// and the shared SinkRef's interior) so third-party SinkRef holders and
// the Handle's own sendSync/sendAsync observe the same new sink.
func (t *peerTable) replaceSink(id PeerID, newSink TransportSink) bool {
	t.mu.Lock()
	ctx, ok := t.peers[id]
	t.mu.Unlock()
	if !ok {
		return false
	}
	t.mu.Lock()
	ctx.primary = newSink
	t.mu.Unlock()
	ctx.shared.SwapSink(newSink)
	return true
}
