// Copyright (c) 2024-2026 ScribeAI
//
// Licensed under GPL-2.0 with Scribe Additional Terms.
// See LICENSE.md for commercial usage.
package internal_type

import (
	"errors"
	"strings"
)

var (
	// ErrPermissionDenied: the OS denied microphone access. Terminal for the
	// start attempt; the user must retry after granting access.
	ErrPermissionDenied = errors.New("microphone permission denied")

	// ErrDeviceUnavailable: no usable input device. Terminal for the start
	// attempt.
	ErrDeviceUnavailable = errors.New("audio device unavailable")

	// ErrInvalidTransition: the requested session operation is not legal from
	// the current state.
	ErrInvalidTransition = errors.New("invalid session state transition")
)

// expectedClosurePatterns are message fragments produced when a websocket is
// torn down by its own owner. Matching is by substring because the underlying
// libraries do not expose a distinct error code for a caller-initiated close.
var expectedClosurePatterns = []string{
	"use of closed network connection",
	"websocket: close sent",
	"websocket: close 1000",
	"already closed",
}

// IsExpectedClosure reports whether err looks like the benign closure that
// follows a caller-initiated pause/reset/finalize, as opposed to a genuine
// link failure. Callers suppress these from user-facing error reporting.
func IsExpectedClosure(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, pattern := range expectedClosurePatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
