// Package xport is the transport adapter: it accepts inbound TCP
// connections on a node's id-as-port, dials outbound connections to
// neighbors, and frames messages with the codec's delimiter. It knows
// nothing about link-state semantics — that's the engine's job — only
// about moving codec.Frame values across a stream and reporting when a
// stream dies.
/*
 * Copyright (c) 2024, link-state-router contributors. All rights reserved.
 */
package xport

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/aistore-contrib/lsrouter/cmn/nlog"
	"github.com/aistore-contrib/lsrouter/codec"
	"github.com/aistore-contrib/lsrouter/model"
)

// Conn wraps one TCP connection with framed, flush-on-write sends. A
// single Conn is used for both directions of a link: the side that
// dialed uses it to write, and the reader goroutine spawned on it
// (either by Accept or by Dial) uses it to read.
type Conn struct {
	raw net.Conn
	bw  *bufio.Writer
	mu  sync.Mutex // serializes writes; reads happen on one goroutine only
}

func newConn(raw net.Conn) *Conn {
	return &Conn{raw: raw, bw: bufio.NewWriter(raw)}
}

// Send encodes f and writes it followed by the frame delimiter,
// flushing immediately so ordering per spec §5 ("frames delivered in
// send order") is observable to the peer without internal buffering
// delay.
func (c *Conn) Send(f model.Frame) error {
	b, err := codec.Encode(f)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.bw.Write(b); err != nil {
		return err
	}
	if _, err := c.bw.WriteString(codec.Delim); err != nil {
		return err
	}
	return c.bw.Flush()
}

func (c *Conn) Close() error { return c.raw.Close() }

// RecvFunc is invoked once per decoded frame read from a Conn.
// DisconnectFunc is invoked exactly once when the read loop ends,
// whatever the cause (peer close, reset, decode error fatal to the
// stream never occurs — decode errors are skipped per spec §7).
type (
	RecvFunc       func(c *Conn, f model.Frame)
	DisconnectFunc func(c *Conn, err error)
)

// Serve reads delimited frames from c until error, dispatching each to
// onFrame. Malformed frames are logged and skipped, never torn down
// the connection (§7: decode error -> log and skip). Returns once the
// stream is unusable, having already invoked onDisconnect.
func Serve(c *Conn, onFrame RecvFunc, onDisconnect DisconnectFunc) {
	r := bufio.NewReader(c.raw)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			onDisconnect(c, err)
			return
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}
		frame, derr := codec.Decode([]byte(line))
		if derr != nil {
			nlog.Warningf("xport: decode error, skipping frame: %v", derr)
			continue
		}
		onFrame(c, frame)
	}
}

// Listener accepts inbound connections on a node's id-as-port and
// spawns a reader goroutine per connection.
type Listener struct {
	ln net.Listener
}

// Listen binds localhost:port and begins accepting in the background.
// Each accepted connection gets its own Serve goroutine.
func Listen(port model.NodeId, onFrame RecvFunc, onDisconnect DisconnectFunc) (*Listener, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
	if err != nil {
		return nil, err
	}
	l := &Listener{ln: ln}
	go l.acceptLoop(onFrame, onDisconnect)
	return l, nil
}

func (l *Listener) acceptLoop(onFrame RecvFunc, onDisconnect DisconnectFunc) {
	for {
		raw, err := l.ln.Accept()
		if err != nil {
			return // listener closed; turn_off() in progress
		}
		c := newConn(raw)
		go Serve(c, onFrame, onDisconnect)
	}
}

func (l *Listener) Close() error { return l.ln.Close() }

// Dial opens an outbound connection to a neighbor's id-as-port and
// spawns its reader goroutine, mirroring the accept side's framing.
func Dial(peer model.NodeId, onFrame RecvFunc, onDisconnect DisconnectFunc) (*Conn, error) {
	raw, err := net.Dial("tcp", fmt.Sprintf("localhost:%d", peer))
	if err != nil {
		return nil, err
	}
	c := newConn(raw)
	go Serve(c, onFrame, onDisconnect)
	return c, nil
}
