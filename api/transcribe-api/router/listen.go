// Copyright (c) 2024-2026 ScribeAI
//
// Licensed under GPL-2.0 with Scribe Additional Terms.
// See LICENSE.md for commercial usage.
package transcribe_routers

import (
	"github.com/gin-gonic/gin"
	listenApi "github.com/scribeai/api/transcribe-api/api/listen"
	internal_auth "github.com/scribeai/api/transcribe-api/internal/auth"
	"github.com/scribeai/config"
	"github.com/scribeai/pkg/commons"
)

func ListenRoutes(cfg *config.AppConfig, engine *gin.Engine, logger commons.Logger) {
	logger.Info("Listen routes added to engine.")
	apiv1 := engine.Group("v1")
	lApi := listenApi.NewListenApi(cfg, logger)
	{
		apiv1.GET("/listen", internal_auth.BearerAuthorizer(cfg, logger), lApi.Listen)
	}
}
