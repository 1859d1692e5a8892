// Origination and flooding: the node's own hello and LSA traffic, and
// the relay/correction paths for LSAs received from others. See spec
// §4.5 send_hello / send_neighbor_lsa / forward_lsa.
/*
 * Copyright (c) 2024, link-state-router contributors. All rights reserved.
 */
package engine

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/aistore-contrib/lsrouter/cmn/cos"
	"github.com/aistore-contrib/lsrouter/cmn/nlog"
	"github.com/aistore-contrib/lsrouter/model"
	"github.com/aistore-contrib/lsrouter/xport"
)

// neighborEntry is a point-in-time copy of one neighbor table row,
// taken under lock so sends (which may block on I/O) never happen
// while holding n.mu.
type neighborEntry struct {
	id   model.NodeId
	conn *xport.Conn
	cost int64
}

func (n *Node) snapshotNeighbors() []neighborEntry {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]neighborEntry, 0, len(n.conns))
	for id, c := range n.conns {
		cost := int64(0)
		if l, ok := n.links[id]; ok {
			cost = l.cost
		}
		out = append(out, neighborEntry{id: id, conn: c, cost: cost})
	}
	return out
}

// sendToAll fans a frame out to every neighbor concurrently via
// errgroup: spec §5 guarantees per-neighbor send ordering only, never
// cross-neighbor ordering, so nothing requires these sends to
// serialize. build is called per neighbor so callers like SendHello,
// whose payload varies by recipient, and floodAll/floodExcept, whose
// payload is fixed, share one fan-out path. A per-neighbor send
// failure is logged and doesn't cancel the others.
func (n *Node) sendToAll(neighbors []neighborEntry, label string, counter prometheus.Counter, build func(neighborEntry) model.Frame) {
	var g errgroup.Group
	var failures cos.Errs
	for _, nb := range neighbors {
		nb := nb
		g.Go(func() error {
			if err := nb.conn.Send(build(nb)); err != nil {
				failures.Add(fmt.Errorf("%s to %d: %w", label, nb.id, err))
				return nil
			}
			counter.Inc()
			return nil
		})
	}
	_ = g.Wait()
	// All failures go out in one joined log line rather than one line per
	// neighbor. Each message names its neighbor, so failures to different
	// neighbors are never merged by Errs' dedup; at most maxErrs are kept.
	if failures.Cnt() > 0 {
		nlog.Warningf("node %d: %v", n.id, failures.JoinErr())
	}
}

// SendHello emits one Hello frame per neighbor carrying the
// locally-stored cost for that neighbor.
func (n *Node) SendHello() {
	n.sendToAll(n.snapshotNeighbors(), "hello", n.metrics.helloSent, func(nb neighborEntry) model.Frame {
		return &model.HelloFrame{ID: n.id, Cost: nb.cost}
	})
}

// SendNeighborLSA originates (or refreshes) this node's own LSA from
// its current adjacency list and floods it to every neighbor.
func (n *Node) SendNeighborLSA() {
	neighbors := n.snapshotNeighbors()
	links := make([]model.Link, 0, len(neighbors))
	for _, nb := range neighbors {
		links = append(links, model.Link{LinkID: nb.id, Cost: nb.cost})
	}

	old := n.db.Get(n.id)
	var lsa *model.LSA
	if old == nil {
		lsa = &model.LSA{RouterID: n.id, SequenceNumber: 0, LinkStateID: n.id, Links: links, TTL: lsaInitialTTL}
	} else {
		lsa = old.Clone()
		lsa.Links = links
		lsa.SequenceNumber++
		lsa.TTL = lsaInitialTTL
	}
	n.db.Add(lsa.Clone())

	frame := &model.LSAFrame{ID: n.id, LSAs: []model.LSA{*lsa}}
	n.sendToAll(neighbors, "lsa refresh", n.metrics.lsaFlooded, func(neighborEntry) model.Frame { return frame })
}

// floodExcept relays lsa to every neighbor except the one it arrived
// on (split horizon).
func (n *Node) floodExcept(except *xport.Conn, lsa *model.LSA) {
	all := n.snapshotNeighbors()
	rest := make([]neighborEntry, 0, len(all))
	for _, nb := range all {
		if nb.conn != except {
			rest = append(rest, nb)
		}
	}
	frame := &model.LSAFrame{ID: n.id, LSAs: []model.LSA{*lsa}}
	n.sendToAll(rest, "flood", n.metrics.lsaFlooded, func(neighborEntry) model.Frame { return frame })
}

// floodAll relays lsa to every current neighbor with no exclusion;
// used for the failure-propagation path where the failed conn is
// already gone from the neighbor table.
func (n *Node) floodAll(lsa *model.LSA) {
	frame := &model.LSAFrame{ID: n.id, LSAs: []model.LSA{*lsa}}
	n.sendToAll(n.snapshotNeighbors(), "flood", n.metrics.lsaFlooded, func(neighborEntry) model.Frame { return frame })
}

// sendResyncTo sends the entire LSDB, excluding excludeID's own LSA,
// as a single Resync frame over conn.
func (n *Node) sendResyncTo(conn *xport.Conn, excludeID model.NodeId) {
	snap := n.db.Snapshot()
	lsas := make([]model.LSA, 0, len(snap))
	for id, lsa := range snap {
		if id == excludeID {
			continue
		}
		lsas = append(lsas, *lsa)
	}
	if err := conn.Send(&model.ResyncFrame{ID: n.id, LSAs: lsas}); err != nil {
		nlog.Warningf("node %d: resync to %d failed: %v", n.id, excludeID, err)
		return
	}
	n.metrics.resyncSent.Inc()
}

// amendOwnLSA appends a restored adjacency to this node's own LSA and
// bumps its sequence number. The original this is ported from appends
// a raw (id, cost) tuple here where a Link record belongs; the spec
// calls the record form the correct intent (§9), which is what this
// builds.
func (n *Node) amendOwnLSA(peer model.NodeId, cost int64) {
	old := n.db.Get(n.id)
	if old == nil {
		nlog.Warningf("node %d: no own LSA yet, skipping amend for %d", n.id, peer)
		return
	}
	lsa := old.Clone()
	if !lsa.HasLink(peer) {
		lsa.Links = append(lsa.Links, model.Link{LinkID: peer, Cost: cost})
	}
	lsa.SequenceNumber++
	n.db.Add(lsa)
}

// floodLinkDown strips the failed neighbor from this node's own LSA,
// bumps its sequence number, and floods the amended LSA to whatever
// neighbors remain.
func (n *Node) floodLinkDown(failed model.NodeId) {
	old := n.db.Get(n.id)
	if old == nil {
		return
	}
	lsa := old.Clone()
	lsa.Links = model.WithoutLink(lsa.Links, failed)
	lsa.SequenceNumber++
	n.db.Add(lsa.Clone())
	n.floodAll(lsa)
}
