// Copyright (c) 2024-2026 ScribeAI
//
// Licensed under GPL-2.0 with Scribe Additional Terms.
// See LICENSE.md for commercial usage.
package internal_transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	internal_type "github.com/scribeai/api/capture-api/internal/type"
	"github.com/scribeai/pkg/commons"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) commons.Logger {
	t.Helper()
	logger, err := commons.NewApplicationLogger(
		commons.Name("test-transport"),
		commons.Level("debug"),
	)
	require.NoError(t, err)
	return logger
}

// fakeRelay is a websocket endpoint recording received binary frames and
// replaying scripted JSON events.
type fakeRelay struct {
	t        *testing.T
	upgrader websocket.Upgrader

	mu       sync.Mutex
	conns    []*websocket.Conn
	received [][]byte
	authz    []string
}

func newFakeRelay(t *testing.T) (*fakeRelay, *httptest.Server) {
	relay := &fakeRelay{t: t}
	server := httptest.NewServer(http.HandlerFunc(relay.handle))
	t.Cleanup(server.Close)
	return relay, server
}

func (f *fakeRelay) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.authz = append(f.authz, r.Header.Get("Authorization"))
	f.mu.Unlock()

	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	f.mu.Lock()
	f.conns = append(f.conns, conn)
	f.mu.Unlock()

	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if mt == websocket.BinaryMessage {
			f.mu.Lock()
			f.received = append(f.received, msg)
			f.mu.Unlock()
		}
	}
}

func (f *fakeRelay) emit(payload string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.conns {
		c.WriteMessage(websocket.TextMessage, []byte(payload))
	}
}

func (f *fakeRelay) dropConnections() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.conns {
		c.Close() // abrupt, no close handshake
	}
	f.conns = nil
}

func (f *fakeRelay) frames() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.received))
	copy(out, f.received)
	return out
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestOpenAttachesBearerCredential(t *testing.T) {
	relay, server := newFakeRelay(t)
	tr := NewWebsocketTransport(newTestLogger(t), wsURL(server), "tok-123", internal_type.TransportEvents{})
	require.NoError(t, tr.Open(context.Background()))
	defer tr.Close()

	waitFor(t, func() bool {
		relay.mu.Lock()
		defer relay.mu.Unlock()
		return len(relay.authz) == 1
	}, "relay never saw the upgrade")
	assert.Equal(t, "Bearer tok-123", relay.authz[0])
}

func TestOpenTwiceFails(t *testing.T) {
	_, server := newFakeRelay(t)
	tr := NewWebsocketTransport(newTestLogger(t), wsURL(server), "", internal_type.TransportEvents{})
	require.NoError(t, tr.Open(context.Background()))
	defer tr.Close()
	assert.Error(t, tr.Open(context.Background()))
}

func TestSendDeliversFramesInOrder(t *testing.T) {
	relay, server := newFakeRelay(t)
	tr := NewWebsocketTransport(newTestLogger(t), wsURL(server), "", internal_type.TransportEvents{})
	require.NoError(t, tr.Open(context.Background()))
	defer tr.Close()

	for i := 0; i < 5; i++ {
		tr.Send([]byte{byte(i), 0xAA})
	}
	waitFor(t, func() bool { return len(relay.frames()) == 5 }, "frames not delivered")
	for i, frame := range relay.frames() {
		assert.Equal(t, byte(i), frame[0], "frame %d out of order", i)
	}
}

func TestSendWhileClosedDropsSilently(t *testing.T) {
	tr := NewWebsocketTransport(newTestLogger(t), "ws://127.0.0.1:1/unused", "", internal_type.TransportEvents{})
	tr.Send([]byte{0x01}) // must not panic or block
	assert.False(t, tr.IsOpen())
}

func TestInboundSegmentsDispatched(t *testing.T) {
	relay, server := newFakeRelay(t)

	var mu sync.Mutex
	var segments []internal_type.TranscriptSegment
	tr := NewWebsocketTransport(newTestLogger(t), wsURL(server), "", internal_type.TransportEvents{
		OnSegment: func(s internal_type.TranscriptSegment) {
			mu.Lock()
			segments = append(segments, s)
			mu.Unlock()
		},
	})
	require.NoError(t, tr.Open(context.Background()))
	defer tr.Close()

	waitFor(t, func() bool {
		relay.mu.Lock()
		defer relay.mu.Unlock()
		return len(relay.conns) == 1
	}, "relay connection not established")

	relay.emit(`{"is_final":false,"channel":{"alternatives":[{"transcript":"hel"}]}}`)
	relay.emit(`{"is_final":true,"channel":{"alternatives":[{"transcript":"hello"}]}}`)

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(segments) == 2
	}, "segments not dispatched")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, internal_type.TranscriptSegment{Text: "hel", IsFinal: false}, segments[0])
	assert.Equal(t, internal_type.TranscriptSegment{Text: "hello", IsFinal: true}, segments[1])
}

func TestInboundErrorEventDispatched(t *testing.T) {
	relay, server := newFakeRelay(t)

	errCh := make(chan error, 1)
	tr := NewWebsocketTransport(newTestLogger(t), wsURL(server), "", internal_type.TransportEvents{
		OnError: func(err error) { errCh <- err },
	})
	require.NoError(t, tr.Open(context.Background()))
	defer tr.Close()

	waitFor(t, func() bool {
		relay.mu.Lock()
		defer relay.mu.Unlock()
		return len(relay.conns) == 1
	}, "relay connection not established")
	relay.emit(`{"error":"engine unavailable"}`)

	select {
	case err := <-errCh:
		assert.Contains(t, err.Error(), "engine unavailable")
	case <-time.After(2 * time.Second):
		t.Fatal("error event not dispatched")
	}
}

func TestLinkDropSurfacesError(t *testing.T) {
	relay, server := newFakeRelay(t)

	errCh := make(chan error, 1)
	tr := NewWebsocketTransport(newTestLogger(t), wsURL(server), "", internal_type.TransportEvents{
		OnError: func(err error) { errCh <- err },
	})
	require.NoError(t, tr.Open(context.Background()))
	defer tr.Close()

	waitFor(t, func() bool {
		relay.mu.Lock()
		defer relay.mu.Unlock()
		return len(relay.conns) == 1
	}, "relay connection not established")
	relay.dropConnections()

	select {
	case err := <-errCh:
		assert.Contains(t, err.Error(), "transcription link lost")
	case <-time.After(2 * time.Second):
		t.Fatal("link failure not surfaced")
	}
	assert.False(t, tr.IsOpen())
}

func TestCallerCloseIsSuppressed(t *testing.T) {
	_, server := newFakeRelay(t)

	errCh := make(chan error, 1)
	tr := NewWebsocketTransport(newTestLogger(t), wsURL(server), "", internal_type.TransportEvents{
		OnError: func(err error) { errCh <- err },
	})
	require.NoError(t, tr.Open(context.Background()))
	require.NoError(t, tr.Close())

	select {
	case err := <-errCh:
		t.Fatalf("expected closure must not be surfaced, got: %v", err)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	_, server := newFakeRelay(t)
	tr := NewWebsocketTransport(newTestLogger(t), wsURL(server), "", internal_type.TransportEvents{})
	require.NoError(t, tr.Open(context.Background()))
	assert.NoError(t, tr.Close())
	assert.NoError(t, tr.Close())
	assert.NoError(t, tr.Close())
}

func TestLinkDropsDoNotLeakWriters(t *testing.T) {
	relay, server := newFakeRelay(t)
	tr := NewWebsocketTransport(newTestLogger(t), wsURL(server), "", internal_type.TransportEvents{})

	baseline := runtime.NumGoroutine()
	for i := 0; i < 20; i++ {
		require.NoError(t, tr.Open(context.Background()))
		waitFor(t, func() bool {
			relay.mu.Lock()
			defer relay.mu.Unlock()
			return len(relay.conns) == 1
		}, "relay connection not established")
		relay.dropConnections()
		waitFor(t, func() bool { return !tr.IsOpen() }, "link drop not observed")
	}

	// both per-connection goroutines must have exited for every drop
	waitFor(t, func() bool {
		return runtime.NumGoroutine() <= baseline+2
	}, "goroutines leaked across link drops")
}

func TestConcurrentSendAndCloseDoesNotPanic(t *testing.T) {
	_, server := newFakeRelay(t)
	tr := NewWebsocketTransport(newTestLogger(t), wsURL(server), "", internal_type.TransportEvents{})

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					tr.Send([]byte{0x7F, 0x00})
				}
			}
		}()
	}

	for i := 0; i < 100; i++ {
		require.NoError(t, tr.Open(context.Background()))
		require.NoError(t, tr.Close())
	}
	close(stop)
	wg.Wait()
	assert.False(t, tr.IsOpen())
}

func TestReopenAfterClose(t *testing.T) {
	relay, server := newFakeRelay(t)
	tr := NewWebsocketTransport(newTestLogger(t), wsURL(server), "", internal_type.TransportEvents{})

	require.NoError(t, tr.Open(context.Background()))
	require.NoError(t, tr.Close())
	require.NoError(t, tr.Open(context.Background()))
	defer tr.Close()

	tr.Send([]byte{0x42})
	waitFor(t, func() bool { return len(relay.frames()) == 1 }, "frame not delivered on reopened link")
}
