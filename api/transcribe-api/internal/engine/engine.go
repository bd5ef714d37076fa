// Copyright (c) 2024-2026 ScribeAI
//
// Licensed under GPL-2.0 with Scribe Additional Terms.
// See LICENSE.md for commercial usage.
package internal_engine

import "context"

// EngineEvents carries decoded results and failures from an upstream speech
// engine back to the relay session that owns it.
type EngineEvents struct {
	// OnResult receives every decoded result event exactly as the engine
	// produced it, in arrival order. The relay forwards it downstream
	// unmodified.
	OnResult func(raw []byte)
	// OnError receives upstream connection failures. The relay reports them
	// downstream and terminates the upstream link; there is no retry.
	OnError func(err error)
}

// SpeechEngine is one upstream connection to a third-party speech
// recognition service. One instance serves exactly one relay session; no
// cross-session sharing.
type SpeechEngine interface {
	Name() string
	Connect(ctx context.Context) error
	// SendAudio forwards one binary audio frame upstream, preserving order.
	SendAudio(data []byte) error
	Close(ctx context.Context) error
}
