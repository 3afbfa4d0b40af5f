// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

// Package gringerr defines the error taxonomy shared by the chain,
// txhashset and storage packages.
package gringerr

import "fmt"

// Kind classifies a failure so callers can decide how to react without
// string-matching error messages.
type Kind uint8

const (
	// Codec is malformed bytes on deserialization.
	Codec Kind = iota
	// DbIO is an underlying KV failure; fatal to the surrounding write,
	// recoverable across processes.
	DbIO
	// BadData is a consensus-rule violation. The block is rejected and not
	// retried.
	BadData
	// Orphaned means the parent of a block is unknown; it is non-fatal.
	Orphaned
	// InvalidState means an internal invariant was broken. It aborts the
	// current write and escalates.
	InvalidState
	// Session is an unknown or expired wallet session token.
	Session
)

func (k Kind) String() string {
	switch k {
	case Codec:
		return "Codec"
	case DbIO:
		return "DbIO"
	case BadData:
		return "BadData"
	case Orphaned:
		return "Orphaned"
	case InvalidState:
		return "InvalidState"
	case Session:
		return "Session"
	default:
		return "Unknown"
	}
}

// Error is a Kind-tagged error that records which operation produced it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, target) match when target is any *Error of the
// same Kind (such as gringerr.Sentinel(gringerr.BadData)), whatever its Op
// or wrapped cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New builds an *Error of the given kind for operation op wrapping cause.
func New(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

// Of reports the Kind of err, or false if err is not a *Error.
func Of(err error) (Kind, bool) {
	e, ok := err.(*Error)
	if !ok {
		return 0, false
	}
	return e.Kind, true
}

// Sentinel returns an *Error with no wrapped cause, usable as a comparison
// target for errors.Is(err, gringerr.Sentinel(gringerr.Orphaned)).
func Sentinel(kind Kind) *Error {
	return &Error{Kind: kind}
}
