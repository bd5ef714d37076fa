// Copyright (c) 2024-2026 ScribeAI
//
// Licensed under GPL-2.0 with Scribe Additional Terms.
// See LICENSE.md for commercial usage.
package internal_type

import "context"

// TranscriptSegment is one decoded result event from the relay. Only final
// segments are durable; interim segments are advisory and must never be
// committed to the aggregate transcript.
type TranscriptSegment struct {
	Text    string
	IsFinal bool
}

// CaptureEngine acquires the microphone and produces an ordered, infinite
// sequence of raw mono float32 frames at the device-native rate.
//
// A single engine instance is reused across pause/resume within one session;
// a fresh Acquire only happens on a transition out of Idle. Release is
// idempotent and safe from any state, including after a failed Acquire.
type CaptureEngine interface {
	Acquire(ctx context.Context) error
	Frames() <-chan []float32
	SampleRate() int
	Release() error
}

// Recorder accumulates encoded audio chunks independent of the live
// transcription link and renders them into one contiguous audio object.
type Recorder interface {
	// Append stores a chunk in strict call order. It never blocks the caller
	// and never fails.
	Append(chunk []byte)
	// Finalize flushes any pending unflushed data and returns a single WAV
	// object concatenating every appended chunk in order, or nil when nothing
	// has been recorded. Repeated calls before further appends return
	// equivalent output.
	Finalize() []byte
	// PCMBytes reports the number of encoded PCM bytes recorded so far,
	// pending data included.
	PCMBytes() int
	// Clear discards all recorded chunks.
	Clear()
}

// Transport is the duplex channel to the relay: outbound binary audio chunks,
// inbound transcript events. Reconnection is caller-driven; Close is
// idempotent.
type Transport interface {
	Open(ctx context.Context) error
	// Send pushes one encoded chunk, fire-and-forget: the chunk is silently
	// dropped (never reordered, never queued indefinitely) when the link is
	// not established.
	Send(chunk []byte)
	Close() error
	IsOpen() bool
}

// TransportEvents carries inbound transcript events and link failures from a
// Transport back to its owner.
type TransportEvents struct {
	// OnSegment is invoked for every decoded transcript event, interim or
	// final, in arrival order.
	OnSegment func(segment TranscriptSegment)
	// OnError is invoked for genuine link failures. Closures caused by the
	// owner's own Close are classified as expected and never reported here.
	OnError func(err error)
}
