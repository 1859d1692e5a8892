// Package hk provides a mechanism for registering periodic callbacks
// that are invoked at specified intervals, in the style of aistore's
// `hk` (housekeeper) package. Each link-state node owns one *HK
// instance driving its hello, LSA-refresh, and LSDB-aging ticks, so
// that turn_off() has a single place to cancel all of them instead of
// threading a stop channel through every goroutine individually.
/*
 * Copyright (c) 2024, link-state-router contributors. All rights reserved.
 */
package hk

import (
	"container/heap"
	"sync"
	"time"
)

// CB is a housekeeping callback. Its return value is the delay until
// it should run again; returning <= 0 unregisters it.
type CB func() time.Duration

type job struct {
	name     string
	cb       CB
	due      time.Time
	index    int
	canceled bool
}

type jobQueue []*job

func (q jobQueue) Len() int            { return len(q) }
func (q jobQueue) Less(i, j int) bool  { return q[i].due.Before(q[j].due) }
func (q jobQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i]; q[i].index, q[j].index = i, j }
func (q *jobQueue) Push(x any)         { j := x.(*job); j.index = len(*q); *q = append(*q, j) }
func (q *jobQueue) Pop() any {
	old := *q
	n := len(old)
	j := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return j
}

// HK is one node's housekeeper: a min-heap of pending jobs woken by a
// single timer, so N periodic tasks cost one goroutine instead of N.
type HK struct {
	mu      sync.Mutex
	queue   jobQueue
	byName  map[string]*job
	wake    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

func New() *HK {
	return &HK{
		byName:  make(map[string]*job),
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
}

// Reg schedules cb to run once after the initial delay and then again
// after whatever the callback returns. Registering under a name that's
// already scheduled replaces it.
func (h *HK) Reg(name string, cb CB, initial time.Duration) {
	h.mu.Lock()
	if old, ok := h.byName[name]; ok {
		old.canceled = true
	}
	j := &job{name: name, cb: cb, due: time.Now().Add(initial)}
	h.byName[name] = j
	heap.Push(&h.queue, j)
	h.mu.Unlock()
	h.poke()
}

// Unreg cancels a previously registered callback; a no-op if absent.
func (h *HK) Unreg(name string) {
	h.mu.Lock()
	if j, ok := h.byName[name]; ok {
		j.canceled = true
		delete(h.byName, name)
	}
	h.mu.Unlock()
}

func (h *HK) poke() {
	select {
	case h.wake <- struct{}{}:
	default:
	}
}

// Run drives the housekeeper until Stop is called. Intended to run in
// its own goroutine, one per node, started by turn_on().
func (h *HK) Run() {
	for {
		h.mu.Lock()
		var timer <-chan time.Time
		if len(h.queue) > 0 {
			d := time.Until(h.queue[0].due)
			if d < 0 {
				d = 0
			}
			timer = time.After(d)
		}
		h.mu.Unlock()

		// A nil timer channel (empty queue) simply blocks forever in the
		// select below, which is exactly what's wanted until Reg wakes us.
		select {
		case <-h.stopped:
			return
		case <-h.wake:
			continue
		case <-timer:
			h.runDue()
		}
	}
}

func (h *HK) runDue() {
	now := time.Now()
	for {
		h.mu.Lock()
		if len(h.queue) == 0 || h.queue[0].due.After(now) {
			h.mu.Unlock()
			return
		}
		j := heap.Pop(&h.queue).(*job)
		h.mu.Unlock()

		if j.canceled {
			continue
		}
		next := j.cb()
		if next <= 0 {
			h.mu.Lock()
			delete(h.byName, j.name)
			h.mu.Unlock()
			continue
		}
		h.mu.Lock()
		if !j.canceled {
			j.due = time.Now().Add(next)
			heap.Push(&h.queue, j)
		}
		h.mu.Unlock()
	}
}

// Stop cancels all pending jobs and terminates Run. Safe to call more
// than once and from any goroutine.
func (h *HK) Stop() {
	h.once.Do(func() { close(h.stopped) })
}
