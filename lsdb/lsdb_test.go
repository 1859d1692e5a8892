/*
 * Copyright (c) 2024, link-state-router contributors. All rights reserved.
 */
package lsdb

import (
	"sync"
	"testing"
	"time"

	"github.com/aistore-contrib/lsrouter/hk"
	"github.com/aistore-contrib/lsrouter/model"
)

func newTestDB(t *testing.T) (*LSDB, *hk.HK) {
	t.Helper()
	h := hk.New()
	go h.Run()
	t.Cleanup(h.Stop)
	return New(h), h
}

func TestAddGet(t *testing.T) {
	db, _ := newTestDB(t)
	lsa := &model.LSA{RouterID: 1, LinkStateID: 1, SequenceNumber: 0, TTL: 60}
	db.Add(lsa)

	got := db.Get(1)
	if got == nil || got.RouterID != 1 {
		t.Fatalf("Get(1) = %v, want router 1", got)
	}
	if db.Get(2) != nil {
		t.Fatal("Get(2) on empty key should be nil")
	}
}

func TestRemove(t *testing.T) {
	db, _ := newTestDB(t)
	db.Add(&model.LSA{RouterID: 1, LinkStateID: 1, TTL: 60})
	db.Remove(1)
	if db.Get(1) != nil {
		t.Fatal("expected entry gone after Remove")
	}
	db.Remove(99) // no-op, must not panic
}

func TestSnapshotIsIndependentCopy(t *testing.T) {
	db, _ := newTestDB(t)
	db.Add(&model.LSA{RouterID: 1, LinkStateID: 1, TTL: 60})
	snap := db.Snapshot()
	db.Add(&model.LSA{RouterID: 2, LinkStateID: 2, TTL: 60})
	if len(snap) != 1 {
		t.Fatalf("snapshot mutated by later Add: len=%d, want 1", len(snap))
	}
}

func TestTTLAgingRemovesExpiredEntries(t *testing.T) {
	db, _ := newTestDB(t)
	db.Add(&model.LSA{RouterID: 1, LinkStateID: 1, TTL: 1})

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if db.Get(1) == nil {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("expected entry to age out within 3s of a 1s-TTL aging tick")
}

func TestConcurrentAccessIsSerialized(t *testing.T) {
	db, _ := newTestDB(t)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := model.NodeId(i % 5)
			db.Add(&model.LSA{RouterID: id, LinkStateID: id, SequenceNumber: uint64(i), TTL: 60})
			db.Get(id)
			db.Snapshot()
		}(i)
	}
	wg.Wait()
	if db.Len() > 5 {
		t.Fatalf("Len() = %d, want <= 5", db.Len())
	}
}
