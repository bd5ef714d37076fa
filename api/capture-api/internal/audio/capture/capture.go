// Copyright (c) 2024-2026 ScribeAI
//
// Licensed under GPL-2.0 with Scribe Additional Terms.
// See LICENSE.md for commercial usage.
package internal_capture

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gordonklaus/portaudio"
	internal_type "github.com/scribeai/api/capture-api/internal/type"
	"github.com/scribeai/pkg/commons"
)

// FrameQueueSize bounds the frame channel. The consumer normally keeps up;
// if it stalls, frames are dropped in production order rather than blocking
// the device read loop.
const FrameQueueSize = 32

// portaudioEngine captures mono float32 frames from the default input device.
// One engine instance is reused across pause/resume within a session; Acquire
// happens once on the transition out of Idle and Release exactly once on
// finalize/reset.
type portaudioEngine struct {
	mu           sync.Mutex
	logger       commons.Logger
	sampleRate   int
	frameSamples int

	stream   *portaudio.Stream
	frames   chan []float32
	stop     chan struct{}
	pumpDone chan struct{}
	acquired bool
}

// NewPortaudioEngine creates a capture engine reading frameSamples-sized mono
// frames at the device-native sampleRate.
func NewPortaudioEngine(logger commons.Logger, sampleRate, frameSamples int) internal_type.CaptureEngine {
	return &portaudioEngine{
		logger:       logger,
		sampleRate:   sampleRate,
		frameSamples: frameSamples,
	}
}

// classifyAcquireError maps a device acquisition failure onto the error
// taxonomy. PortAudio reports OS permission refusals only through the error
// text, so classification is by message.
func classifyAcquireError(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "permission") || strings.Contains(msg, "access denied") {
		return fmt.Errorf("%w: %v", internal_type.ErrPermissionDenied, err)
	}
	return fmt.Errorf("%w: %v", internal_type.ErrDeviceUnavailable, err)
}

// Acquire opens the default input device and starts the frame pump. Every
// failure path releases whatever was initialised; a failed Acquire leaves the
// engine exactly as it was.
func (e *portaudioEngine) Acquire(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.acquired {
		return fmt.Errorf("capture engine already acquired")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := portaudio.Initialize(); err != nil {
		return classifyAcquireError(err)
	}

	buf := make([]float32, e.frameSamples)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(e.sampleRate), e.frameSamples, buf)
	if err != nil {
		portaudio.Terminate()
		return classifyAcquireError(err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return classifyAcquireError(err)
	}

	e.stream = stream
	e.frames = make(chan []float32, FrameQueueSize)
	e.stop = make(chan struct{})
	e.pumpDone = make(chan struct{})
	e.acquired = true

	go e.pump(stream, buf, e.frames, e.stop, e.pumpDone)

	e.logger.Infow("capture engine acquired", "sampleRate", e.sampleRate, "frameSamples", e.frameSamples)
	return nil
}

// pump reads device frames and pushes copies onto the frame channel in strict
// production order until stopped. The channel is closed on exit so consumers
// ranging over Frames() terminate.
func (e *portaudioEngine) pump(stream *portaudio.Stream, buf []float32, frames chan<- []float32, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer close(frames)

	for {
		select {
		case <-stop:
			return
		default:
		}

		if err := stream.Read(); err != nil {
			select {
			case <-stop:
			default:
				e.logger.Errorw("device read failed, stopping capture", "error", err)
			}
			return
		}

		frame := make([]float32, len(buf))
		copy(frame, buf)
		select {
		case frames <- frame:
		default:
			e.logger.Warnw("frame queue full, dropping frame", "samples", len(frame))
		}
	}
}

// Frames returns the ordered frame sequence for the current acquisition.
// The channel is closed when the engine is released.
func (e *portaudioEngine) Frames() <-chan []float32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frames
}

// SampleRate reports the device-native capture rate.
func (e *portaudioEngine) SampleRate() int {
	return e.sampleRate
}

// Release stops the pump, closes the device and terminates the host API.
// Idempotent and safe from any state, including after a failed Acquire.
func (e *portaudioEngine) Release() error {
	e.mu.Lock()
	if !e.acquired {
		e.mu.Unlock()
		return nil
	}
	stream := e.stream
	stop := e.stop
	pumpDone := e.pumpDone
	e.stream = nil
	e.stop = nil
	e.pumpDone = nil
	e.acquired = false
	e.mu.Unlock()

	// Halt new frame production before tearing the device down.
	close(stop)
	stream.Abort()
	<-pumpDone

	stream.Close()
	portaudio.Terminate()
	e.logger.Info("capture engine released")
	return nil
}
