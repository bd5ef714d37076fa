// Copyright (c) 2024-2026 ScribeAI
//
// Licensed under GPL-2.0 with Scribe Additional Terms.
// See LICENSE.md for commercial usage.
package internal_auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/scribeai/config"
	"github.com/scribeai/pkg/commons"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-secret"

func mintToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func userClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub": "user-42",
		"aud": "authenticated",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
}

func TestVerifyToken_Valid(t *testing.T) {
	subject, err := VerifyToken(testSecret, mintToken(t, testSecret, userClaims()))
	assert.NoError(t, err)
	assert.Equal(t, "user-42", subject)
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	_, err := VerifyToken(testSecret, mintToken(t, "other-secret", userClaims()))
	assert.Error(t, err)
}

func TestVerifyToken_Expired(t *testing.T) {
	claims := userClaims()
	claims["exp"] = time.Now().Add(-time.Hour).Unix()
	_, err := VerifyToken(testSecret, mintToken(t, testSecret, claims))
	assert.Error(t, err)
}

func TestVerifyToken_WrongAudience(t *testing.T) {
	claims := userClaims()
	claims["aud"] = "anon"
	_, err := VerifyToken(testSecret, mintToken(t, testSecret, claims))
	assert.Error(t, err)
}

func TestVerifyToken_MissingSubject(t *testing.T) {
	claims := userClaims()
	delete(claims, "sub")
	_, err := VerifyToken(testSecret, mintToken(t, testSecret, claims))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "sub claim")
}

func TestVerifyToken_NoSecretConfigured(t *testing.T) {
	_, err := VerifyToken("", mintToken(t, testSecret, userClaims()))
	assert.Error(t, err)
}

func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger, err := commons.NewApplicationLogger(
		commons.Name("test-auth"),
		commons.Level("debug"),
	)
	require.NoError(t, err)
	cfg := &config.AppConfig{Secret: testSecret}

	engine := gin.New()
	engine.GET("/protected", BearerAuthorizer(cfg, logger), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"principal": c.GetString(PrincipalKey)})
	})
	return engine
}

func TestBearerAuthorizer_MissingHeader(t *testing.T) {
	router := newAuthRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBearerAuthorizer_InvalidToken(t *testing.T) {
	router := newAuthRouter(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBearerAuthorizer_ValidToken(t *testing.T) {
	router := newAuthRouter(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, testSecret, userClaims()))
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "user-42")
}
