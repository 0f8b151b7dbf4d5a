package routes

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soukplace/soukplace-backend/pkg/config"
	"github.com/soukplace/soukplace-backend/pkg/logger"
)

func testRouter() http.Handler {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.Issuer = "soukplace-test"
	return NewRouter(Deps{
		Config: cfg,
		Logger: logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
}

func TestHealthLiveRoute(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	testRouter().ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "test", resp.Header().Get("X-Soukplace-Env"))
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	paths := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/api/v1/cart"},
		{http.MethodPost, "/api/v1/checkout"},
		{http.MethodGet, "/api/v1/orders"},
		{http.MethodGet, "/api/v1/notifications"},
		{http.MethodGet, "/api/admin/v1/shops"},
	}
	router := testRouter()
	for _, tc := range paths {
		req := httptest.NewRequest(tc.method, tc.target, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		require.Equalf(t, http.StatusUnauthorized, resp.Code, "%s %s", tc.method, tc.target)
	}
}

func TestMetricsRouteExposed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	testRouter().ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
}
