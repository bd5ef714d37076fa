// Copyright (c) 2024-2026 ScribeAI
//
// Licensed under GPL-2.0 with Scribe Additional Terms.
// See LICENSE.md for commercial usage.
package internal_session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	internal_audio "github.com/scribeai/api/capture-api/internal/audio"
	internal_resampler "github.com/scribeai/api/capture-api/internal/audio/resampler"
	internal_transcript "github.com/scribeai/api/capture-api/internal/transcript"
	internal_type "github.com/scribeai/api/capture-api/internal/type"
	"github.com/scribeai/pkg/commons"
	"github.com/scribeai/pkg/utils"
)

// State is the recording session lifecycle position.
type State string

const (
	StateIdle       State = "idle"
	StateRecording  State = "recording"
	StatePaused     State = "paused"
	StateFinalizing State = "finalizing"
)

// Result is what a finalized session hands off for upload: the contiguous
// recording, the committed transcript and the computed duration.
type Result struct {
	Audio      []byte
	Transcript string
	Duration   time.Duration
}

// TransportFactory builds the session's transport wired to the given event
// callbacks. Exactly one transport instance exists per session; the session
// opens and closes it across pause/resume.
type TransportFactory func(events internal_type.TransportEvents) internal_type.Transport

// Session orchestrates the capture engine, recording buffer and streaming
// transport across Idle/Recording/Paused/Finalizing. It is the only component
// allowed to start or stop the others: it exclusively owns the device handle,
// the recording buffer and the active transport, and is the sole mutator of
// its state.
//
// The recording buffer is decoupled from the transcription link on purpose:
// audio keeps accumulating while the link is down, and a dropped link never
// destroys audio or transcript already captured.
type Session struct {
	mu     sync.Mutex
	logger commons.Logger
	id     string

	engine     internal_type.CaptureEngine
	recorder   internal_type.Recorder
	transport  internal_type.Transport
	aggregator *internal_transcript.Aggregator

	state     State
	capturing bool // gate: frames are encoded and appended only while true
	pumpDone  chan struct{}
	lastErr   error
}

// NewSession wires a session from its collaborators. The transport factory
// receives callbacks that fold transcript events into the aggregator and
// surface genuine link failures as the session's current error.
func NewSession(
	logger commons.Logger,
	engine internal_type.CaptureEngine,
	recorder internal_type.Recorder,
	transportFactory TransportFactory,
) *Session {
	s := &Session{
		logger:     logger,
		id:         uuid.New().String(),
		engine:     engine,
		recorder:   recorder,
		aggregator: internal_transcript.NewAggregator(),
		state:      StateIdle,
	}
	s.transport = transportFactory(internal_type.TransportEvents{
		OnSegment: s.aggregator.Observe,
		OnError:   s.setErr,
	})
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle position.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the current surfaced error. It is cleared by the next
// successful operation; expected closures never appear here.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Transcript returns the committed transcript so far.
func (s *Session) Transcript() string {
	return s.aggregator.Current()
}

// Interim returns the latest advisory segment for live display.
func (s *Session) Interim() string {
	return s.aggregator.Interim()
}

func (s *Session) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
}

// Start moves Idle → Recording: acquires the capture engine, opens the
// transport and begins appending to the recording buffer. A device
// acquisition failure is fatal to the attempt and leaves the session Idle
// with nothing opened. A transport failure is not fatal: recording proceeds
// without the live link and the failure is surfaced as the current error.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return fmt.Errorf("%w: start from %s", internal_type.ErrInvalidTransition, s.state)
	}

	if err := s.engine.Acquire(ctx); err != nil {
		s.lastErr = err
		s.logger.Errorw("device acquisition failed", "session", s.id, "error", err)
		return err
	}

	s.lastErr = nil
	if err := s.transport.Open(ctx); err != nil {
		// Recording is durable without the link; keep capturing and let the
		// caller reconnect through pause/resume.
		s.lastErr = err
		s.logger.Warnw("transport open failed, recording without live transcription",
			"session", s.id, "error", err)
	}

	s.state = StateRecording
	s.capturing = true
	s.pumpDone = make(chan struct{})
	go s.pump(s.engine.Frames(), s.engine.SampleRate(), s.pumpDone)

	s.logger.Infow("session started", "session", s.id)
	return nil
}

// pump is the single consumer of the capture engine's frame sequence. Each
// frame is resampled and encoded exactly once; the encoded chunk always goes
// to the recording buffer and, link permitting, to the transport. It exits
// when the engine is released and its frame channel closes.
func (s *Session) pump(frames <-chan []float32, sourceRate int, done chan<- struct{}) {
	defer close(done)
	target := int(internal_audio.SCRIBE_INTERNAL_AUDIO_CONFIG.SampleRate)

	for frame := range frames {
		s.mu.Lock()
		capturing := s.capturing
		s.mu.Unlock()
		if !capturing {
			continue
		}

		chunk := internal_resampler.EncodeFrame(frame, sourceRate, target)
		if len(chunk) == 0 {
			continue
		}
		s.recorder.Append(chunk)
		s.transport.Send(chunk)
	}
}

// Pause moves Recording → Paused: closes the transport only. The capture
// engine stays acquired and the recording buffer intact; no new audio is
// captured until resume.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRecording {
		return fmt.Errorf("%w: pause from %s", internal_type.ErrInvalidTransition, s.state)
	}

	s.capturing = false
	if err := s.transport.Close(); err != nil && !internal_type.IsExpectedClosure(err) {
		s.logger.Warnw("transport close failed on pause", "session", s.id, "error", err)
	}
	s.state = StatePaused
	s.lastErr = nil

	s.logger.Infow("session paused", "session", s.id)
	return nil
}

// Resume moves Paused → Recording: reopens the transport and continues
// feeding the same recording buffer, no gap tracking. A reopen failure keeps
// the session Paused with the failure surfaced.
func (s *Session) Resume(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePaused {
		return fmt.Errorf("%w: resume from %s", internal_type.ErrInvalidTransition, s.state)
	}

	if err := s.transport.Open(ctx); err != nil {
		s.lastErr = err
		s.logger.Errorw("transport reopen failed", "session", s.id, "error", err)
		return err
	}

	s.state = StateRecording
	s.capturing = true
	s.lastErr = nil

	s.logger.Infow("session resumed", "session", s.id)
	return nil
}

// Finalize moves Recording|Paused → Finalizing → Idle. New frame production
// is halted synchronously before any asynchronous teardown begins, pending
// recorder data is flushed, the transport closed, and the finalized audio,
// transcript and duration handed back. Buffer and transcript are cleared and
// the capture engine released exactly once.
func (s *Session) Finalize() (*Result, error) {
	if err := s.beginTeardown("finalize"); err != nil {
		return nil, err
	}

	wav := s.recorder.Finalize()
	result := &Result{
		Audio:      wav,
		Transcript: s.aggregator.Current(),
		Duration:   s.duration(wav),
	}

	s.completeTeardown()
	s.logger.Infow("session finalized",
		"session", s.id,
		"audioBytes", len(result.Audio),
		"duration", result.Duration,
	)
	return result, nil
}

// Reset moves Recording|Paused → Idle with the identical teardown to
// Finalize, but discards the audio and transcript instead of returning them.
// A following start behaves identically to a first-ever start.
func (s *Session) Reset() error {
	if err := s.beginTeardown("reset"); err != nil {
		return err
	}
	s.completeTeardown()
	s.logger.Infow("session reset", "session", s.id)
	return nil
}

// beginTeardown validates the transition, synchronously disconnects the
// capture source from the processing graph, then performs the asynchronous
// teardown: engine release (which ends the frame sequence), pump drain and
// transport close.
func (s *Session) beginTeardown(op string) error {
	s.mu.Lock()
	if s.state != StateRecording && s.state != StatePaused {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: %s from %s", internal_type.ErrInvalidTransition, op, state)
	}
	s.state = StateFinalizing
	s.capturing = false
	pumpDone := s.pumpDone
	s.pumpDone = nil
	s.mu.Unlock()

	if err := s.engine.Release(); err != nil {
		s.logger.Warnw("capture engine release failed", "session", s.id, "error", err)
	}
	if pumpDone != nil {
		<-pumpDone
	}
	if err := s.transport.Close(); err != nil && !internal_type.IsExpectedClosure(err) {
		s.logger.Warnw("transport close failed", "session", s.id, "error", err)
	}
	return nil
}

// completeTeardown clears buffer and transcript and returns to Idle.
func (s *Session) completeTeardown() {
	s.recorder.Clear()
	s.aggregator.Reset()

	s.mu.Lock()
	s.state = StateIdle
	s.lastErr = nil
	s.mu.Unlock()
}

// duration derives playback length from the finalized object. A malformed
// object degrades to zero rather than failing the finalize.
func (s *Session) duration(wav []byte) time.Duration {
	if len(wav) == 0 {
		return 0
	}
	d, err := utils.WAVDuration(wav)
	if err != nil {
		s.logger.Warnw("could not decode finalized audio duration, defaulting to zero",
			"session", s.id, "error", err)
		return 0
	}
	return d
}
