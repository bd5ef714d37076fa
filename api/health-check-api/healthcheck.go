// Copyright (c) 2024-2026 ScribeAI
//
// Licensed under GPL-2.0 with Scribe Additional Terms.
// See LICENSE.md for commercial usage.
package health_check_api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scribeai/config"
	"github.com/scribeai/pkg/commons"
)

type HealthCheckApi struct {
	cfg    *config.AppConfig
	logger commons.Logger
}

func New(cfg *config.AppConfig, logger commons.Logger) *HealthCheckApi {
	return &HealthCheckApi{cfg: cfg, logger: logger}
}

// Healthz reports process liveness.
func (hcApi *HealthCheckApi) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"name":    hcApi.cfg.Name,
		"version": hcApi.cfg.Version,
	})
}

// Readiness reports whether the service can take traffic. The relay holds no
// persistent connections of its own, so readiness follows liveness.
func (hcApi *HealthCheckApi) Readiness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
