// Copyright (c) 2024-2026 ScribeAI
//
// Licensed under GPL-2.0 with Scribe Additional Terms.
// See LICENSE.md for commercial usage.
package internal_auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/scribeai/config"
	"github.com/scribeai/pkg/commons"
)

// PrincipalKey is the gin context key holding the verified subject id.
const PrincipalKey = "auth.principal"

// requiredAudience matches the audience the identity provider stamps on
// every user token.
const requiredAudience = "authenticated"

// VerifyToken checks an HS256 bearer token against the application secret
// and returns the subject claim.
func VerifyToken(secret, token string) (string, error) {
	if secret == "" {
		return "", errors.New("verification secret is not configured")
	}
	parsed, err := jwt.Parse(token,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(secret), nil
		},
		jwt.WithAudience(requiredAudience),
		jwt.WithValidMethods([]string{"HS256"}),
	)
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	subject, err := parsed.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", errors.New("token missing sub claim")
	}
	return subject, nil
}

// BearerAuthorizer rejects requests without a valid Authorization bearer
// token before the websocket upgrade happens. The verified subject is stored
// under PrincipalKey for downstream handlers.
func BearerAuthorizer(cfg *config.AppConfig, logger commons.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		subject, err := VerifyToken(cfg.Secret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			logger.Warnf("auth: rejected request: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Set(PrincipalKey, subject)
		c.Next()
	}
}
