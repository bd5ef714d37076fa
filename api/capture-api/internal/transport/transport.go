// Copyright (c) 2024-2026 ScribeAI
//
// Licensed under GPL-2.0 with Scribe Additional Terms.
// See LICENSE.md for commercial usage.
package internal_transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	internal_type "github.com/scribeai/api/capture-api/internal/type"
	"github.com/scribeai/pkg/commons"
)

// SendQueueSize bounds the outbound audio queue. A slow or dead link drops
// frames instead of building unbounded backpressure; frames are never
// reordered or duplicated.
const SendQueueSize = 64

// inboundMessage mirrors the relay's wire shape. Absence of is_final=true
// marks an advisory segment.
type inboundMessage struct {
	Error   string `json:"error,omitempty"`
	IsFinal bool   `json:"is_final,omitempty"`
	Channel struct {
		Alternatives []struct {
			Transcript string `json:"transcript,omitempty"`
		} `json:"alternatives,omitempty"`
	} `json:"channel,omitempty"`
}

// wsTransport is the duplex channel to the relay. Outbound binary audio
// frames flow through a bounded queue drained by a single writer goroutine;
// inbound transcript events are decoded by a single reader goroutine and
// handed to the owner through callbacks. Reconnection is caller-driven: the
// session state machine re-opens on resume, the transport never redials on
// its own.
type wsTransport struct {
	mu     sync.Mutex
	logger commons.Logger
	url    string
	token  string
	events internal_type.TransportEvents

	conn       *websocket.Conn
	sendCh     chan []byte
	done       chan struct{} // per-connection writer stop signal
	writerDone chan struct{} // closed by the writer on exit
	closing    bool          // true while a caller-initiated Close is in progress
}

// NewWebsocketTransport creates a transport dialing url with the given bearer
// credential on every Open.
func NewWebsocketTransport(logger commons.Logger, url, token string, events internal_type.TransportEvents) internal_type.Transport {
	return &wsTransport{
		logger: logger,
		url:    url,
		token:  token,
		events: events,
	}
}

// Open dials the relay and starts the reader and writer loops. At most one
// connection is established at a time; opening an already-open transport is
// an error.
func (t *wsTransport) Open(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn != nil {
		return fmt.Errorf("transport already open")
	}

	header := http.Header{}
	if t.token != "" {
		header.Set("Authorization", "Bearer "+t.token)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, t.url, header)
	if err != nil {
		return fmt.Errorf("failed to connect to relay: %w", err)
	}

	t.conn = conn
	t.closing = false
	t.sendCh = make(chan []byte, SendQueueSize)
	t.done = make(chan struct{})
	t.writerDone = make(chan struct{})

	go t.runWriter(conn, t.sendCh, t.done, t.writerDone)
	go t.runReader(conn)

	t.logger.Infow("transport opened", "url", t.url)
	return nil
}

// Send pushes one encoded chunk, fire-and-forget. Chunks are dropped when the
// link is not established or the queue is full.
func (t *wsTransport) Send(chunk []byte) {
	t.mu.Lock()
	ch := t.sendCh
	open := t.conn != nil
	t.mu.Unlock()

	if !open || ch == nil {
		return
	}
	select {
	case ch <- chunk:
	default:
		t.logger.Warnw("send queue full, dropping audio chunk", "bytes", len(chunk))
	}
}

// IsOpen reports whether a connection is currently established.
func (t *wsTransport) IsOpen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn != nil
}

// Close tears the connection down. It is idempotent and marks the closure as
// caller-initiated so that the reader's resulting error is suppressed.
func (t *wsTransport) Close() error {
	t.mu.Lock()
	conn := t.conn
	done := t.done
	writerDone := t.writerDone
	t.conn = nil
	t.sendCh = nil
	t.done = nil
	t.writerDone = nil
	t.closing = true
	t.mu.Unlock()

	if conn == nil {
		return nil
	}
	// The send queue is never closed: a Send that raced past the nil check
	// lands in the orphaned buffer and is dropped. The done signal stops the
	// writer instead.
	close(done)
	select {
	case <-writerDone:
		// Writer drained; best-effort close handshake. The peer may already
		// be gone.
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	case <-time.After(time.Second):
		// Writer is wedged on a dead peer; skip the handshake, the socket
		// close below unblocks it.
	}
	if err := conn.Close(); err != nil && !internal_type.IsExpectedClosure(err) {
		return err
	}
	t.logger.Info("transport closed")
	return nil
}

// runWriter drains the send queue onto the socket in order. Exits on the
// connection's done signal or a failed write; a failed write leaves error
// reporting to the reader, which observes the same broken socket.
func (t *wsTransport) runWriter(conn *websocket.Conn, ch <-chan []byte, done <-chan struct{}, writerDone chan<- struct{}) {
	defer close(writerDone)
	for {
		select {
		case <-done:
			return
		case chunk := <-ch:
			if err := conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
				if !internal_type.IsExpectedClosure(err) {
					t.logger.Debugw("transport write failed", "error", err)
				}
				return
			}
		}
	}
}

// runReader decodes inbound transcript events until the connection dies.
// Caller-initiated closures are classified as expected and never surfaced.
func (t *wsTransport) runReader(conn *websocket.Conn) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.mu.Lock()
			callerInitiated := t.closing
			// A reader death also invalidates the conn for Send. Teardown
			// belongs to whoever nils the fields first; when Close got there
			// already it owns the done signal and the conn.
			owned := t.conn == conn
			var done chan struct{}
			if owned {
				done = t.done
				t.conn = nil
				t.sendCh = nil
				t.done = nil
				t.writerDone = nil
			}
			t.mu.Unlock()

			if owned {
				close(done)
				conn.Close()
			}
			if callerInitiated || internal_type.IsExpectedClosure(err) {
				return
			}
			t.logger.Errorw("transport link failed", "error", err)
			if t.events.OnError != nil {
				t.events.OnError(fmt.Errorf("transcription link lost: %w", err))
			}
			return
		}
		t.dispatch(msg)
	}
}

// dispatch decodes one wire message and invokes the owner's callbacks.
func (t *wsTransport) dispatch(msg []byte) {
	var in inboundMessage
	if err := json.Unmarshal(msg, &in); err != nil {
		t.logger.Debugw("undecodable transcript event, skipping", "error", err)
		return
	}
	if in.Error != "" {
		if t.events.OnError != nil {
			t.events.OnError(fmt.Errorf("relay error: %s", in.Error))
		}
		return
	}
	text := ""
	if len(in.Channel.Alternatives) > 0 {
		text = in.Channel.Alternatives[0].Transcript
	}
	if t.events.OnSegment != nil {
		t.events.OnSegment(internal_type.TranscriptSegment{
			Text:    text,
			IsFinal: in.IsFinal,
		})
	}
}
