// Package lsdb implements the in-memory link-state database: a
// mutex-serialized map from originator to its most recent LSA, aged
// out by TTL on a one-second tick. It mirrors the teacher's
// lock-everything-under-one-mutex discipline (see cmn/cos.Errs for
// the same pattern at smaller scale) rather than a lock-free or
// sharded design, since the spec requires linearizable reads.
/*
 * Copyright (c) 2024, link-state-router contributors. All rights reserved.
 */
package lsdb

import (
	"sync"
	"time"

	"github.com/aistore-contrib/lsrouter/cmn/debug"
	"github.com/aistore-contrib/lsrouter/hk"
	"github.com/aistore-contrib/lsrouter/model"
)

const agingJobName = "lsdb-ttl-aging"

// LSDB is a per-node link-state database. The zero value is not
// usable; construct with New.
type LSDB struct {
	mu sync.Mutex
	m  map[model.NodeId]*model.LSA
	hk *hk.HK
}

// New creates an LSDB and registers its TTL-aging tick with hk. hk is
// the node's shared housekeeper so that turn_off() stopping hk also
// stops aging, with no separate cancellation plumbing needed here.
func New(h *hk.HK) *LSDB {
	db := &LSDB{m: make(map[model.NodeId]*model.LSA), hk: h}
	h.Reg(agingJobName, db.age, time.Second)
	return db
}

// Add stores lsa keyed by its link_state_id, replacing whatever was
// there. Callers must not mutate lsa afterward; pass a clone if they
// intend to keep using their copy.
func (db *LSDB) Add(lsa *model.LSA) {
	db.mu.Lock()
	db.m[lsa.LinkStateID] = lsa
	db.mu.Unlock()
}

// Get returns the stored LSA for id, or nil if absent. The returned
// pointer is shared state; callers that want to mutate it must clone.
func (db *LSDB) Get(id model.NodeId) *model.LSA {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.m[id]
}

// Remove deletes id's entry; a no-op if absent.
func (db *LSDB) Remove(id model.NodeId) {
	db.mu.Lock()
	delete(db.m, id)
	db.mu.Unlock()
}

// Snapshot returns a shallow copy of the whole database, safe to range
// over without holding the lock. Used for resync transfers.
func (db *LSDB) Snapshot() map[model.NodeId]*model.LSA {
	db.mu.Lock()
	defer db.mu.Unlock()
	out := make(map[model.NodeId]*model.LSA, len(db.m))
	for k, v := range db.m {
		out[k] = v
	}
	return out
}

// Len reports the current entry count; mainly for tests and metrics.
func (db *LSDB) Len() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.m)
}

// age runs once per second under hk: deletes every entry whose TTL is
// already zero and decrements the rest, so an entry that reaches zero
// is removed on the following tick. Returns the fixed one-second interval
// to keep itself rescheduled for the housekeeper's lifetime.
func (db *LSDB) age() time.Duration {
	db.mu.Lock()
	for k, v := range db.m {
		if v.TTL == 0 {
			delete(db.m, k)
			continue
		}
		v.TTL--
	}
	db.mu.Unlock()
	return time.Second
}

// Stop unregisters the aging tick; called by turn_off() when it drops
// the LSDB entirely rather than leaving a dangling hk registration.
func (db *LSDB) Stop() {
	debug.Assert(db.hk != nil)
	db.hk.Unreg(agingJobName)
}
