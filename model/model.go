// Package model holds the wire-level data types shared by the codec,
// the LSDB, and the protocol engine: links, LSAs, and the three frame
// kinds that travel between nodes. Keeping these in their own package
// (rather than nesting them in `engine`) mirrors how aistore keeps its
// wire/meta types in `core/meta` separate from the runtime that uses
// them.
/*
 * Copyright (c) 2024, link-state-router contributors. All rights reserved.
 */
package model

import "fmt"

// NodeId identifies a router; in this deployment it doubles as the
// node's localhost listening TCP port.
type NodeId int32

// Link is one directed adjacency, owner toward neighbor. Immutable
// once constructed.
type Link struct {
	LinkID NodeId `json:"link_id"`
	Cost   int64  `json:"cost"`
}

// LSA is a link-state advertisement: one router's self-reported
// adjacency list, at a given sequence number and TTL.
//
// RouterID and LinkStateID both identify the originator and are kept
// as distinct fields only to match the wire format; callers should
// treat them as always equal.
type LSA struct {
	RouterID       NodeId `json:"router_id"`
	SequenceNumber uint64 `json:"sequence_number"`
	LinkStateID    NodeId `json:"link_state_id"`
	Links          []Link `json:"links"`
	TTL            uint16 `json:"ttl"`
}

// Key is an LSA's equality identity: (router_id, sequence_number, link_state_id).
// The LSDB and the engine's dedup map are keyed by LinkStateID alone, not by Key.
type Key struct {
	RouterID       NodeId
	SequenceNumber uint64
	LinkStateID    NodeId
}

func (l *LSA) Key() Key {
	return Key{RouterID: l.RouterID, SequenceNumber: l.SequenceNumber, LinkStateID: l.LinkStateID}
}

// Clone returns a deep copy; callers that hand an *LSA to the LSDB and
// then keep mutating their own copy must clone first.
func (l *LSA) Clone() *LSA {
	cp := *l
	cp.Links = append([]Link(nil), l.Links...)
	return &cp
}

func (l *LSA) String() string {
	return fmt.Sprintf("LSA(router=%d,seq=%d,lsid=%d,links=%v,ttl=%d)",
		l.RouterID, l.SequenceNumber, l.LinkStateID, l.Links, l.TTL)
}

// HasLink reports whether the LSA advertises an adjacency to id.
func (l *LSA) HasLink(id NodeId) bool {
	for i := range l.Links {
		if l.Links[i].LinkID == id {
			return true
		}
	}
	return false
}

// WithoutLink returns a copy of links with id removed.
func WithoutLink(links []Link, id NodeId) []Link {
	out := make([]Link, 0, len(links))
	for _, l := range links {
		if l.LinkID != id {
			out = append(out, l)
		}
	}
	return out
}

// Frame is the sum type of the three messages exchanged between
// nodes: Hello, LSA (flood), and Resync (bulk transfer).
type Frame interface {
	frameType() string
}

type (
	// HelloFrame advertises the sender's id and the sender-side cost
	// of the link it's sent on.
	HelloFrame struct {
		ID   NodeId `json:"id"`
		Cost int64  `json:"cost"`
	}
	// LSAFrame carries one or more LSAs being flooded; ID is the
	// forwarder, not necessarily the originator.
	LSAFrame struct {
		ID   NodeId `json:"id"`
		LSAs []LSA  `json:"lsas"`
	}
	// ResyncFrame carries a bulk LSDB transfer during link-up
	// handshakes.
	ResyncFrame struct {
		ID   NodeId `json:"id"`
		LSAs []LSA  `json:"lsas"`
	}
)

func (*HelloFrame) frameType() string  { return "hello" }
func (*LSAFrame) frameType() string    { return "lsa" }
func (*ResyncFrame) frameType() string { return "resync" }
