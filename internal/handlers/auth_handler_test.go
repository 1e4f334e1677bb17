package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"transient-cache-api/internal/auth"
	"transient-cache-api/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newLoginRouter() (*gin.Engine, *auth.Issuer) {
	gin.SetMode(gin.TestMode)
	issuer := auth.NewIssuer(config.AuthConfig{
		Secret:   "test-secret",
		Issuer:   "transient-cache-api",
		Audience: "transient-cache-clients",
		TokenTTL: time.Hour,
	})
	r := gin.New()
	r.POST("/api/login", NewAuthHandler(issuer, "correct-horse").Login)
	return r, issuer
}

func TestLogin_IssuesToken(t *testing.T) {
	r, issuer := newLoginRouter()

	w := do(r, http.MethodPost, "/api/login", map[string]string{
		"username": "ops",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	claims, err := issuer.ValidateToken(resp.Token)
	require.NoError(t, err)
	require.Equal(t, "admin:ops", claims.Subject)
}

func TestLogin_WrongPassword(t *testing.T) {
	r, _ := newLoginRouter()

	w := do(r, http.MethodPost, "/api/login", map[string]string{
		"username": "ops",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_MissingFields(t *testing.T) {
	r, _ := newLoginRouter()

	w := do(r, http.MethodPost, "/api/login", map[string]string{"username": "ops"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}
