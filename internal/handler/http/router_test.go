package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masumislambadsha/zavisoft/internal/store"
	"github.com/masumislambadsha/zavisoft/pkg/middleware"
)

func TestCreateSession(t *testing.T) {
	s := newTestServer(t, store.RecoverReset)

	rec := s.do(t, http.MethodPost, "/api/v1/sessions", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var body sessionResponse
	decodeResponse(t, rec, &body)
	assert.True(t, middleware.ValidSessionID(body.SessionID))
	assert.Equal(t, body.SessionID, rec.Header().Get(middleware.HeaderSessionID))

	// The issued id is accepted by the session-scoped routes.
	rec = s.do(t, http.MethodGet, "/api/v1/cart", body.SessionID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t, store.RecoverReset)

	rec := s.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_Metrics(t *testing.T) {
	s := newTestServer(t, store.RecoverReset)
	s.do(t, http.MethodGet, "/api/v1/cart", testSession, nil)

	rec := s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestRouter_PprofDeniedByDefault(t *testing.T) {
	s := newTestServer(t, store.RecoverReset)

	rec := s.do(t, http.MethodGet, "/debug/pprof/", "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	s := newTestServer(t, store.RecoverReset)

	req := s.request(t, http.MethodOptions, "/api/v1/cart")
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := s.serve(req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), middleware.HeaderSessionID)
}
