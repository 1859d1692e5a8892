//go:build !debug

// Package debug provides assertion helpers for the link-state protocol
// engine and the LPM trie. Without the "debug" build tag every call here
// compiles to a no-op, so invariant checks can stay in the hot paths
// (flooding, trie insert/remove) without any runtime cost in production
// builds.
/*
 * Copyright (c) 2024, link-state-router contributors. All rights reserved.
 */
package debug

import "sync"

func ON() bool { return false }

func Assert(_ bool, _ ...any)            {}
func Assertf(_ bool, _ string, _ ...any) {}
func AssertNoErr(_ error)                {}
func Func(_ func())                      {}

func AssertMutexLocked(_ *sync.Mutex)      {}
func AssertRWMutexLocked(_ *sync.RWMutex)  {}
func AssertRWMutexRLocked(_ *sync.RWMutex) {}
