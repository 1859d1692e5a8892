// Package nlog is a small severity-leveled logger in the style of the
// upstream aistore `cmn/nlog` package, trimmed down: no file rotation,
// no on-disk buffering pools — just a mutex-guarded writer with
// timestamped, leveled lines. The driver/console layer is an external
// collaborator; this package only shapes what gets written to it.
/*
 * Copyright (c) 2024, link-state-router contributors. All rights reserved.
 */
package nlog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

type severity int

const (
	sevInfo severity = iota
	sevWarn
	sevErr
)

func (s severity) tag() string {
	switch s {
	case sevWarn:
		return "W"
	case sevErr:
		return "E"
	default:
		return "I"
	}
}

var (
	mu  sync.Mutex
	out io.Writer = os.Stdout
)

// SetOutput redirects all subsequent log lines; primarily for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	out = w
	mu.Unlock()
}

func logf(sev severity, format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	ts := time.Now().Format("15:04:05.000")
	mu.Lock()
	fmt.Fprintf(out, "%s %s %s\n", ts, sev.tag(), line)
	mu.Unlock()
}

func Infof(format string, args ...any)    { logf(sevInfo, format, args...) }
func Warningf(format string, args ...any) { logf(sevWarn, format, args...) }
func Errorf(format string, args ...any)   { logf(sevErr, format, args...) }

// Infoln and friends mirror the teacher's convenience wrappers for
// call sites that just want to log a handful of values.
func Infoln(args ...any)    { logf(sevInfo, "%s", fmt.Sprintln(args...)) }
func Warningln(args ...any) { logf(sevWarn, "%s", fmt.Sprintln(args...)) }
func Errorln(args ...any)   { logf(sevErr, "%s", fmt.Sprintln(args...)) }
