package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/blagoySimandov/teachermail/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMe(t *testing.T) {
	s := newTestServer(t)
	userID := s.seedUser(t, "acct-1", 4)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set(testAccountHeader, "acct-1")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out api.MeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, userID, out.ID)
	assert.Equal(t, "acct-1@example.com", out.Email)
	assert.Equal(t, 4, out.Tokens)
}

func TestMe_Unauthorized(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
}

func TestMe_WrongMethod(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/me", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.JSONEq(t, `{"error":"Method not allowed"}`, rec.Body.String())
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHealth_StoreDown(t *testing.T) {
	rec := httptest.NewRecorder()
	api.NewHealthHandler(failingPinger{}).Check(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unavailable"}`, rec.Body.String())
}

func TestMetricsEndpointExposesGenerationOutcomes(t *testing.T) {
	s := newTestServer(t)
	s.seedUser(t, "acct-1", 2)
	doGenerate(t, s, http.MethodPost, "acct-1", validBody)

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "teachermail_generations_total")
	assert.True(t, strings.Contains(body, `outcome="success"`))
}

func TestNotFound(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/generate", nil)
	req.Header.Set("Origin", testOrigin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, testOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRecoveryMiddleware(t *testing.T) {
	h := api.RecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
}
