// Frame dispatch and the three protocol handlers (hello, lsa, resync),
// plus the transport-level disconnect handler that drives link-down
// detection. See spec §4.5 for the state machine these implement.
/*
 * Copyright (c) 2024, link-state-router contributors. All rights reserved.
 */
package engine

import (
	"github.com/aistore-contrib/lsrouter/cmn/nlog"
	"github.com/aistore-contrib/lsrouter/model"
	"github.com/aistore-contrib/lsrouter/xport"
)

func (n *Node) onFrame(conn *xport.Conn, f model.Frame) {
	switch v := f.(type) {
	case *model.HelloFrame:
		n.handleHello(conn, v)
	case *model.LSAFrame:
		n.handleLSA(conn, v)
	case *model.ResyncFrame:
		n.handleResync(conn, v)
	default:
		nlog.Warningf("node %d: dropping frame of unhandled type %T", n.id, f)
	}
}

// handleHello implements the hello handler of §4.5: a hello from a
// previously-Down neighbor brings the link back Up and, only when
// this node's id sorts lower, amends this node's own LSA with the
// restored adjacency and resyncs the sender directly (the id-ordering
// rule that keeps both ends from bulk-transferring at once).
func (n *Node) handleHello(conn *xport.Conn, h *model.HelloFrame) {
	n.mu.Lock()
	if !n.on {
		n.mu.Unlock()
		return
	}
	link, exists := n.links[h.ID]
	wasDown := exists && !link.up

	switch {
	case wasDown:
		n.conns[h.ID] = conn
		link.up = true
		link.cost = h.Cost
	case !exists:
		n.conns[h.ID] = conn
		n.links[h.ID] = &linkState{peer: h.ID, up: true, cost: h.Cost}
	default:
		link.cost = h.Cost
	}
	ownID := n.id
	n.mu.Unlock()

	if wasDown && ownID < h.ID {
		n.amendOwnLSA(h.ID, h.Cost)
		n.sendResyncTo(conn, h.ID)
	}
}

// handleLSA implements the LSA flooding handler: dedup against the
// bounded per-originator high-water mark, then consult the LSDB to
// decide install-and-flood, replace-and-flood (the spec's documented
// ">=" asymmetry with resync's ">"), or correct-the-sender-back.
func (n *Node) handleLSA(conn *xport.Conn, f *model.LSAFrame) {
	for i := range f.LSAs {
		lsa := f.LSAs[i]

		n.mu.Lock()
		if !n.on {
			n.mu.Unlock()
			return
		}
		last, seen := n.processed[lsa.LinkStateID]
		if seen && lsa.SequenceNumber <= last {
			n.mu.Unlock()
			continue
		}
		n.processed[lsa.LinkStateID] = lsa.SequenceNumber
		n.mu.Unlock()

		existing := n.db.Get(lsa.LinkStateID)
		switch {
		case existing == nil:
			n.db.Add(lsa.Clone())
			n.floodExcept(conn, &lsa)
		case lsa.SequenceNumber >= existing.SequenceNumber:
			n.db.Add(lsa.Clone())
			n.floodExcept(conn, &lsa)
		default:
			// Stale: correct the sender with our newer copy instead of
			// propagating their stale one.
			stale := existing.Clone()
			_ = conn.Send(&model.LSAFrame{ID: n.id, LSAs: []model.LSA{*stale}})
			n.metrics.staleCorrected.Inc()
		}
	}
}

// handleResync implements the bulk-transfer handshake: the
// higher-id'd side replies with its own LSDB first (so a fresh link
// converges in one round trip), then both sides install any strictly
// newer incoming entries before re-originating their own LSA so
// neighbors learn the current topology.
func (n *Node) handleResync(conn *xport.Conn, f *model.ResyncFrame) {
	n.mu.Lock()
	if !n.on {
		n.mu.Unlock()
		return
	}
	ownID := n.id
	n.mu.Unlock()

	if ownID > f.ID {
		n.sendResyncTo(conn, f.ID)
	}

	for i := range f.LSAs {
		lsa := &f.LSAs[i]
		cur := n.db.Get(lsa.LinkStateID)
		if cur == nil || lsa.SequenceNumber > cur.SequenceNumber {
			n.db.Add(lsa.Clone())
		}
	}
	n.SendNeighborLSA()
}

// onDisconnect implements the transport-level failure path of §4.5
// accept_connections: any peer whose outbound handle matches the dead
// connection goes Down, its LSA is purged, and an amended own-LSA
// (with the failed link stripped) is flooded to the survivors.
func (n *Node) onDisconnect(conn *xport.Conn, err error) {
	n.mu.Lock()
	if !n.on {
		n.mu.Unlock()
		return
	}
	var failed []model.NodeId
	for id, c := range n.conns {
		if c == conn {
			failed = append(failed, id)
		}
	}
	for _, id := range failed {
		delete(n.conns, id)
		if link, ok := n.links[id]; ok {
			link.up = false
			link.cost = 0
		}
	}
	n.mu.Unlock()

	for _, id := range failed {
		nlog.Warningf("node %d: link to %d down (%v)", n.id, id, err)
		n.db.Remove(id)
		n.metrics.linkDown.Inc()
		n.floodLinkDown(id)
	}
}
