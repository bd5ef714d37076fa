// Copyright (c) 2024-2026 ScribeAI
//
// Licensed under GPL-2.0 with Scribe Additional Terms.
// See LICENSE.md for commercial usage.
package internal_engine

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/scribeai/config"
	"github.com/scribeai/pkg/commons"
)

// deepgramSpeechEngine streams LINEAR16 audio to the Deepgram live-listen
// websocket and hands every result message back through EngineEvents. The
// raw wire protocol is used rather than a vendor SDK so that result events
// reach the relay byte-for-byte in the shape clients consume.
type deepgramSpeechEngine struct {
	*deepgramOption
	mu         sync.Mutex
	logger     commons.Logger
	ctx        context.Context
	connection *websocket.Conn
	closed     bool
	events     EngineEvents
}

// Name implements SpeechEngine.
func (*deepgramSpeechEngine) Name() string {
	return "deepgram-speech-to-text"
}

func NewDeepgramSpeechEngine(
	ctx context.Context,
	logger commons.Logger,
	cfg config.SpeechEngineConfig,
	events EngineEvents,
) (SpeechEngine, error) {
	opts, err := NewDeepgramOption(logger, cfg)
	if err != nil {
		logger.Errorf("deepgram-stt: initializing deepgram failed %+v", err)
		return nil, err
	}
	return &deepgramSpeechEngine{
		ctx:            ctx,
		logger:         logger,
		deepgramOption: opts,
		events:         events,
	}, nil
}

// Connect dials the live-listen endpoint and starts the result listener.
func (d *deepgramSpeechEngine) Connect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	header := http.Header{}
	header.Set("Authorization", "Token "+d.GetKey())
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, d.GetSpeechToTextConnectionString(), header)
	if err != nil {
		return fmt.Errorf("deepgram-stt: failed to connect to Deepgram WebSocket: %w", err)
	}
	d.connection = conn
	go d.speechToTextCallback(d.ctx, conn)
	return nil
}

// speechToTextCallback reads result messages until the connection dies and
// dispatches them in arrival order.
func (d *deepgramSpeechEngine) speechToTextCallback(ctx context.Context, conn *websocket.Conn) {
	for {
		select {
		case <-ctx.Done():
			d.logger.Infof("deepgram-stt: context cancelled, stopping response listener")
			return
		default:
			_, msg, err := conn.ReadMessage()
			if err != nil {
				d.mu.Lock()
				closed := d.closed
				d.mu.Unlock()
				if !closed {
					d.logger.Errorw("deepgram-stt: error reading from Deepgram WebSocket", "error", err)
					if d.events.OnError != nil {
						d.events.OnError(fmt.Errorf("speech engine connection lost: %w", err))
					}
				}
				return
			}
			if d.events.OnResult != nil {
				d.events.OnResult(msg)
			}
		}
	}
}

// SendAudio forwards one binary frame upstream.
func (d *deepgramSpeechEngine) SendAudio(data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connection == nil {
		return fmt.Errorf("deepgram-stt: websocket connection is not initialized")
	}
	if err := d.connection.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return fmt.Errorf("failed to send audio data: %w", err)
	}
	return nil
}

// Close tears the upstream connection down. Idempotent.
func (d *deepgramSpeechEngine) Close(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed || d.connection == nil {
		d.closed = true
		return nil
	}
	d.closed = true
	if err := d.connection.Close(); err != nil {
		return fmt.Errorf("error closing WebSocket connection: %w", err)
	}
	d.connection = nil
	d.logger.Info("deepgram-stt: deepgram websocket connection closed")
	return nil
}
