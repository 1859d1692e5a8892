// Package cos provides common low-level types shared across the
// link-state packages: typed errors and a small multi-error
// aggregator, in the style of aistore's `cmn/cos`.
/*
 * Copyright (c) 2024, link-state-router contributors. All rights reserved.
 */
package cos

import (
	"errors"
	"fmt"
	"sync"
)

type (
	// ErrUnknownMsgType is returned by the codec when a frame's "type"
	// discriminator doesn't match hello/lsa/resync.
	ErrUnknownMsgType struct {
		kind string
	}
	// ErrNodeOff is returned (never panicked on) whenever a caller
	// invokes an engine operation on a node that hasn't been turned on.
	ErrNodeOff struct {
		op string
	}
	// Errs aggregates up to maxErrs distinct errors, deduplicated by
	// message text; used where a single operation may fan out failures
	// across several neighbors and the caller wants them all at once.
	Errs struct {
		mu   sync.Mutex
		errs []error
	}
)

func NewErrUnknownMsgType(kind string) *ErrUnknownMsgType { return &ErrUnknownMsgType{kind} }
func (e *ErrUnknownMsgType) Error() string                { return fmt.Sprintf("unknown message type %q", e.kind) }

func NewErrNodeOff(op string) *ErrNodeOff { return &ErrNodeOff{op} }
func (e *ErrNodeOff) Error() string       { return fmt.Sprintf("node is off: cannot %s", e.op) }

func IsErrNodeOff(err error) bool {
	var e *ErrNodeOff
	return errors.As(err, &e)
}

const maxErrs = 8

func (e *Errs) Add(err error) {
	if err == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, added := range e.errs {
		if added.Error() == err.Error() {
			return
		}
	}
	if len(e.errs) < maxErrs {
		e.errs = append(e.errs, err)
	}
}

func (e *Errs) Cnt() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.errs)
}

func (e *Errs) JoinErr() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.errs) == 0 {
		return nil
	}
	return errors.Join(e.errs...)
}
