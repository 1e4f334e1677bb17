package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"transient-cache-api/internal/auth"
	"transient-cache-api/internal/cache"
	"transient-cache-api/internal/config"
	"transient-cache-api/internal/transient"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func setup() *gin.Engine {
	gin.SetMode(gin.TestMode)
	store := transient.NewMemoryStore(transient.MemoryOptions{ConcurrencySafe: true})
	return SetupRoutes(Deps{
		Cache: cache.New[json.RawMessage](store, cache.Options{Prefix: "test."}),
		Issuer: auth.NewIssuer(config.AuthConfig{
			Secret:   "test-secret",
			Issuer:   "transient-cache-api",
			Audience: "transient-cache-clients",
			TokenTTL: time.Hour,
		}),
		AdminPassword: "correct-horse",
	})
}

func TestHealth(t *testing.T) {
	r := setup()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Cache-Control"), "no-store")
}

func TestCacheRoutesRequireToken(t *testing.T) {
	r := setup()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cache/k", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginThenUseCache(t *testing.T) {
	r := setup()

	body, _ := json.Marshal(map[string]string{"username": "ops", "password": "correct-horse"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var login struct{ Token string }
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)

	put, _ := json.Marshal(map[string]any{"value": 42})
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/api/cache/answer", bytes.NewReader(put))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+login.Token)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/cache/answer", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"key":"answer","value":42}`, w.Body.String())
	require.Equal(t, "no-cache, must-revalidate, max-age=0, no-store, private", w.Header().Get("Cache-Control"))
}
