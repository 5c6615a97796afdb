package server

import "errors"

// ErrPoolFull is returned by acceptOne when the worker pool has no free
// slot. acceptLoop logs it and keeps accepting; it is never treated as a
// fatal condition.
var ErrPoolFull = errors.New("server: worker pool full")

// ErrServerClosed is returned by Start when Stop was the reason the
// engine loop exited, as opposed to ctx cancellation (which yields nil).
var ErrServerClosed = errors.New("server: closed")

// ErrSessionNotFound is returned by Registry.WriteTo and WithSession when
// the target id is not (or no longer) present.
var ErrSessionNotFound = errors.New("server: session not found")
