/*
 * Copyright (c) 2024, link-state-router contributors. All rights reserved.
 */
package model

import "testing"

func TestLSACloneIsIndependent(t *testing.T) {
	orig := &LSA{RouterID: 1, SequenceNumber: 3, LinkStateID: 1, Links: []Link{{LinkID: 2, Cost: 5}}, TTL: 60}
	clone := orig.Clone()
	clone.Links[0].Cost = 99
	clone.SequenceNumber = 4

	if orig.Links[0].Cost != 5 {
		t.Fatalf("mutating clone's links affected original: %v", orig)
	}
	if orig.SequenceNumber != 3 {
		t.Fatalf("mutating clone's fields affected original: %v", orig)
	}
}

func TestLSAHasLink(t *testing.T) {
	lsa := &LSA{Links: []Link{{LinkID: 2, Cost: 1}, {LinkID: 3, Cost: 2}}}
	if !lsa.HasLink(2) || !lsa.HasLink(3) {
		t.Fatal("expected both links present")
	}
	if lsa.HasLink(4) {
		t.Fatal("expected link 4 absent")
	}
}

func TestWithoutLink(t *testing.T) {
	links := []Link{{LinkID: 1, Cost: 1}, {LinkID: 2, Cost: 2}, {LinkID: 3, Cost: 3}}
	out := WithoutLink(links, 2)
	if len(out) != 2 {
		t.Fatalf("expected 2 links, got %d", len(out))
	}
	for _, l := range out {
		if l.LinkID == 2 {
			t.Fatal("link 2 should have been removed")
		}
	}
}

func TestLSAKeyIdentity(t *testing.T) {
	a := &LSA{RouterID: 1, SequenceNumber: 5, LinkStateID: 1}
	b := &LSA{RouterID: 1, SequenceNumber: 5, LinkStateID: 1, TTL: 10}
	if a.Key() != b.Key() {
		t.Fatal("LSAs differing only by TTL should share the same key")
	}
	c := &LSA{RouterID: 1, SequenceNumber: 6, LinkStateID: 1}
	if a.Key() == c.Key() {
		t.Fatal("LSAs with different sequence numbers must not share a key")
	}
}
