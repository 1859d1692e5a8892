/*
 * Copyright (c) 2024, link-state-router contributors. All rights reserved.
 */
package xport

import (
	"testing"
	"time"

	"github.com/aistore-contrib/lsrouter/model"
)

func TestDialListenRoundTrip(t *testing.T) {
	const port model.NodeId = 29090

	received := make(chan model.Frame, 1)
	ln, err := Listen(port, func(_ *Conn, f model.Frame) {
		received <- f
	}, func(_ *Conn, _ error) {})
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	conn, err := Dial(port, func(_ *Conn, _ model.Frame) {}, func(_ *Conn, _ error) {})
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	want := &model.HelloFrame{ID: 1234, Cost: 7}
	if err := conn.Send(want); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-received:
		h, ok := got.(*model.HelloFrame)
		if !ok || *h != *want {
			t.Fatalf("received %#v, want %#v", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
	}
}

func TestDisconnectCallbackFiresOnOwnClose(t *testing.T) {
	const port model.NodeId = 29091

	ln, err := Listen(port, func(_ *Conn, _ model.Frame) {}, func(_ *Conn, _ error) {})
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	disconnected := make(chan struct{}, 1)
	conn, err := Dial(port, func(_ *Conn, _ model.Frame) {}, func(_ *Conn, _ error) {
		disconnected <- struct{}{}
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := conn.Send(&model.HelloFrame{ID: 1, Cost: 1}); err != nil {
		t.Fatal(err)
	}
	// Force-close the dial side's own connection so its Serve loop's
	// next read fails and the disconnect callback fires.
	conn.Close()

	select {
	case <-disconnected:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for disconnect callback")
	}
}
