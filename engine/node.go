// Package engine implements the link-state protocol engine: the
// neighbor table, hello generator, LSA originator, flooder, resync
// responder, and link-up/down handler described by the spec's §4.5.
// It owns an lsdb.LSDB and an xport.Listener/Conn set, with the codec
// sitting between them and the wire.
/*
 * Copyright (c) 2024, link-state-router contributors. All rights reserved.
 */
package engine

import (
	"math/rand"
	"sync"
	"time"

	"github.com/aistore-contrib/lsrouter/cmn/cos"
	"github.com/aistore-contrib/lsrouter/cmn/debug"
	"github.com/aistore-contrib/lsrouter/cmn/nlog"
	"github.com/aistore-contrib/lsrouter/hk"
	"github.com/aistore-contrib/lsrouter/lsdb"
	"github.com/aistore-contrib/lsrouter/model"
	"github.com/aistore-contrib/lsrouter/xport"
)

const (
	helloInterval  = 15 * time.Second
	refreshBase    = 30 * time.Second
	refreshJitter  = 5 // seconds, +/-
	lsaInitialTTL  = 60
	helloJobName   = "send-hello"
	refreshJobName = "refresh-own-lsa"
)

// linkState is one neighbor's recorded link, per §9 REDESIGN FLAGS: a
// two-variant Up(cost)/Down tag rather than the original's cost=-1
// sentinel.
type linkState struct {
	peer model.NodeId
	up   bool
	cost int64
}

// Node is one link-state router. The zero value is not usable;
// construct with New.
type Node struct {
	id model.NodeId

	mu    sync.Mutex
	on    bool
	conns map[model.NodeId]*xport.Conn
	links map[model.NodeId]*linkState
	// processed bounds the dedup set by originator (§9 REDESIGN
	// FLAGS): only the highest sequence number ever seen per
	// link_state_id, giving finite memory instead of the unbounded
	// (id, seq) set the original keeps forever.
	processed map[model.NodeId]uint64

	db       *lsdb.LSDB
	hk       *hk.HK
	listener *xport.Listener

	metrics *metrics
}

func New(id model.NodeId) *Node {
	return &Node{
		id:      id,
		metrics: newMetrics(id),
	}
}

// ID returns the node's identifier (and listening port).
func (n *Node) ID() model.NodeId { return n.id }

// TurnOn binds the listener, starts the housekeeper-driven hello and
// own-LSA refresh ticks, and marks the node reachable. Calling TurnOn
// on an already-on node is a no-op.
func (n *Node) TurnOn() error {
	n.mu.Lock()
	if n.on {
		n.mu.Unlock()
		return nil
	}
	n.conns = make(map[model.NodeId]*xport.Conn)
	n.links = make(map[model.NodeId]*linkState)
	n.processed = make(map[model.NodeId]uint64)
	n.hk = hk.New()
	n.db = lsdb.New(n.hk)
	n.on = true
	n.mu.Unlock()

	ln, err := xport.Listen(n.id, n.onFrame, n.onDisconnect)
	if err != nil {
		n.mu.Lock()
		n.on = false
		n.mu.Unlock()
		return err
	}
	n.mu.Lock()
	n.listener = ln
	n.mu.Unlock()

	go n.hk.Run()
	// Both ticks fire once immediately, matching the original's
	// send_hello/send_neighbor_lsa-then-sleep loop structure, so a
	// freshly turned-on node originates its (empty) own LSA and a round
	// of hellos without waiting out a full interval first.
	n.hk.Reg(helloJobName, func() time.Duration {
		n.SendHello()
		return helloInterval
	}, 0)
	n.hk.Reg(refreshJobName, func() time.Duration {
		n.SendNeighborLSA()
		return jitteredRefresh()
	}, 0)

	nlog.Infof("node %d: turned on, listening on localhost:%d", n.id, n.id)
	return nil
}

func jitteredRefresh() time.Duration {
	jitter := rand.Intn(2*refreshJitter+1) - refreshJitter
	return refreshBase + time.Duration(jitter)*time.Second
}

// TurnOff stops the listener, closes every outbound stream, clears
// neighbor state, and drops the LSDB — turn_on() afterward starts
// completely fresh, matching the original's "self.lsdb = LinkStateDatabase()".
func (n *Node) TurnOff() {
	n.mu.Lock()
	if !n.on {
		n.mu.Unlock()
		return
	}
	n.on = false
	ln := n.listener
	conns := n.conns
	h := n.hk
	db := n.db
	n.listener = nil
	n.conns = nil
	n.links = nil
	n.processed = nil
	n.mu.Unlock()

	if ln != nil {
		_ = ln.Close()
	}
	for _, c := range conns {
		_ = c.Close()
	}
	if db != nil {
		db.Stop()
	}
	if h != nil {
		h.Stop()
	}
	nlog.Infof("node %d: turned off", n.id)
}

// AddLink implements §4.5 add_link: dial (or redial) the neighbor,
// transition the link state, and, for a link that was Down, run the
// id-ordered resync handshake so only one side of the recovered link
// bulk-transfers its LSDB. A brand-new link sends no resync.
func (n *Node) AddLink(peer model.NodeId, cost int64) error {
	n.mu.Lock()
	if !n.on {
		n.mu.Unlock()
		return cos.NewErrNodeOff("add_link")
	}
	link, exists := n.links[peer]
	if exists && link.up {
		n.mu.Unlock() // Up -> no-op
		return nil
	}
	wasDown := exists && !link.up
	n.mu.Unlock()

	conn, err := xport.Dial(peer, n.onFrame, n.onDisconnect)
	if err != nil {
		return err
	}

	n.mu.Lock()
	n.conns[peer] = conn
	n.links[peer] = &linkState{peer: peer, up: true, cost: cost}
	n.mu.Unlock()

	n.SendHello()
	n.metrics.linkUp.Inc()

	if wasDown && n.id < peer {
		n.sendResyncTo(conn, peer)
	}
	return nil
}

// RemoveLink implements §4.5 remove_link: tear down the outbound
// stream, drop the neighbor's LSA, and let the remaining neighbors
// learn via the next hello (and, once it fires, the next LSA refresh).
func (n *Node) RemoveLink(peer model.NodeId) error {
	n.mu.Lock()
	if !n.on {
		n.mu.Unlock()
		return cos.NewErrNodeOff("remove_link")
	}
	conn, ok := n.conns[peer]
	if !ok {
		n.mu.Unlock()
		return nil
	}
	delete(n.conns, peer)
	delete(n.links, peer)
	n.mu.Unlock()

	_ = conn.Close()
	n.db.Remove(peer)
	n.SendHello()
	n.metrics.linkDown.Inc()
	return nil
}

// ShowPeers returns the ids currently directly connected.
func (n *Node) ShowPeers() []model.NodeId {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]model.NodeId, 0, len(n.conns))
	for id := range n.conns {
		out = append(out, id)
	}
	return out
}

// LSDB exposes the node's database for introspection (tests, the
// driver's convergence checks).
func (n *Node) LSDB() *lsdb.LSDB {
	n.mu.Lock()
	defer n.mu.Unlock()
	debug.Assert(n.db != nil, "LSDB called before TurnOn")
	return n.db
}
