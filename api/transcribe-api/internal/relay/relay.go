// Copyright (c) 2024-2026 ScribeAI
//
// Licensed under GPL-2.0 with Scribe Additional Terms.
// See LICENSE.md for commercial usage.
package internal_relay

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	internal_engine "github.com/scribeai/api/transcribe-api/internal/engine"
	"github.com/scribeai/pkg/commons"
)

// EngineFactory builds the upstream speech-engine connection for one relay
// session. The factory receives the event sinks the session wires up; the
// returned engine is owned and closed by the session.
type EngineFactory func(ctx context.Context, events internal_engine.EngineEvents) (internal_engine.SpeechEngine, error)

// relaySession bridges exactly one downstream client websocket to exactly one
// upstream speech engine. Audio flows client -> engine as binary frames in
// arrival order; results flow engine -> client as the raw JSON the engine
// produced. Sessions share nothing; a failure here never touches another
// client.
type relaySession struct {
	mu     sync.Mutex // serializes writes to the client connection
	logger commons.Logger
	client *websocket.Conn
	engine internal_engine.SpeechEngine
	done   chan struct{}
}

// errorMessage is the downstream failure envelope.
type errorMessage struct {
	Error string `json:"error"`
}

// Serve runs one relay session to completion. It dials the upstream engine,
// pumps client audio upstream until the client disconnects, and tears the
// engine down on exit. Blocks until the session is over.
func Serve(ctx context.Context, logger commons.Logger, client *websocket.Conn, factory EngineFactory) error {
	session := &relaySession{
		logger: logger,
		client: client,
		done:   make(chan struct{}),
	}

	engine, err := factory(ctx, internal_engine.EngineEvents{
		OnResult: session.forwardResult,
		OnError:  session.reportFailure,
	})
	if err != nil {
		session.writeError(fmt.Sprintf("speech engine unavailable: %v", err))
		return fmt.Errorf("relay: engine setup failed: %w", err)
	}
	session.engine = engine

	if err := engine.Connect(ctx); err != nil {
		session.writeError(fmt.Sprintf("speech engine unavailable: %v", err))
		return fmt.Errorf("relay: engine connect failed: %w", err)
	}
	logger.Infow("relay: session started", "engine", engine.Name())

	defer func() {
		close(session.done)
		if err := engine.Close(ctx); err != nil {
			logger.Warnf("relay: engine close failed: %v", err)
		}
	}()

	for {
		messageType, payload, err := client.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warnf("relay: client connection lost: %v", err)
			}
			return nil
		}
		if messageType != websocket.BinaryMessage {
			continue
		}
		if err := engine.SendAudio(payload); err != nil {
			logger.Errorf("relay: forwarding audio upstream failed: %v", err)
			session.writeError(fmt.Sprintf("speech engine write failed: %v", err))
			return nil
		}
	}
}

// forwardResult relays one raw engine result downstream unmodified.
func (s *relaySession) forwardResult(raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.client.WriteMessage(websocket.TextMessage, raw); err != nil {
		s.logger.Warnf("relay: forwarding result downstream failed: %v", err)
	}
}

// reportFailure tells the client the upstream link died. The engine does not
// reconnect; the client owns recovery.
func (s *relaySession) reportFailure(err error) {
	select {
	case <-s.done:
		return
	default:
	}
	s.logger.Errorf("relay: upstream failure: %v", err)
	s.writeError(err.Error())
}

func (s *relaySession) writeError(message string) {
	payload, err := json.Marshal(errorMessage{Error: message})
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.client.WriteMessage(websocket.TextMessage, payload); err != nil {
		s.logger.Warnf("relay: writing error downstream failed: %v", err)
	}
}
