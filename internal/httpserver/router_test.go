package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"habitpulse/internal/api"
)

func newTestRouter(checks map[string]ReadinessCheck) *Router {
	gin.SetMode(gin.TestMode)
	return NewRouter(Dependencies{
		Dashboard: api.NewDashboardHandler(nil, zap.NewNop()),
		JWTSecret: "secret",
		Checks:    checks,
		Logger:    zap.NewNop(),
	})
}

func serve(r *Router, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.Engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(nil)
	w := serve(r, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))
}

func TestReadyz(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	r := newTestRouter(map[string]ReadinessCheck{"db": ok, "redis": ok})
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/readyz").Code)

	r = newTestRouter(map[string]ReadinessCheck{"db": ok, "redis": down})
	w := serve(r, http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "redis_not_ready")
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(nil)
	w := serve(r, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newTestRouter(nil)
	for _, path := range []string{"/v1/dashboard/overview", "/v1/dashboard/due", "/v1/habits/1/analytics", "/v1/habits/1/intervals"} {
		assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, path).Code, path)
	}
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodPost, "/v1/analytics/compute").Code)
}
