// Copyright (c) 2024-2026 ScribeAI
//
// Licensed under GPL-2.0 with Scribe Additional Terms.
// See LICENSE.md for commercial usage.
package transcribe_listen_api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	internal_engine "github.com/scribeai/api/transcribe-api/internal/engine"
	internal_relay "github.com/scribeai/api/transcribe-api/internal/relay"
	"github.com/scribeai/config"
	"github.com/scribeai/pkg/commons"
)

var listenUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type ListenApi struct {
	cfg     *config.AppConfig
	logger  commons.Logger
	factory internal_relay.EngineFactory
}

// NewListenApi builds the live-listen endpoint backed by the configured
// speech engine.
func NewListenApi(cfg *config.AppConfig, logger commons.Logger) *ListenApi {
	return &ListenApi{
		cfg:    cfg,
		logger: logger,
		factory: func(ctx context.Context, events internal_engine.EngineEvents) (internal_engine.SpeechEngine, error) {
			return internal_engine.NewDeepgramSpeechEngine(ctx, logger, cfg.SpeechEngine, events)
		},
	}
}

// Listen upgrades the request to a websocket and relays audio between the
// client and the upstream speech engine for the lifetime of the connection.
//
// @Router /v1/listen [get]
// @Summary Stream audio for live transcription
// @Produce json
// @Success 101 "Switching Protocols"
// @Failure 400 {object} gin.H
// @Failure 401 {object} gin.H
func (lApi *ListenApi) Listen(c *gin.Context) {
	conn, err := listenUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		lApi.logger.Errorf("listen: websocket upgrade failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unable to upgrade to WebSocket"})
		return
	}
	defer conn.Close()

	if err := internal_relay.Serve(c.Request.Context(), lApi.logger, conn, lApi.factory); err != nil {
		lApi.logger.Errorf("listen: relay session ended with error: %v", err)
	}
}
