package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"folio/pkg/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:              "test",
		AppPort:             ":0",
		APIBasePath:         "/api",
		ShutdownTimeout:     5 * time.Second,
		LogLevel:            "error",
		LogFormat:           "json",
		DatabaseDriver:      "sqlite",
		DatabaseDSN:         "file:" + uuid.New().String() + "?mode=memory&cache=shared",
		JWTSecret:           "test_jwt_secret",
		TokenTTL:            time.Hour,
		CORSOrigin:          "http://localhost:5173",
		FrontendCallbackURL: "http://localhost:5173/auth/callback",
		OAuthStateTTL:       10 * time.Minute,
		AssetBackend:        "none",
		AssetFolder:         "user_profiles",
		ReconcileSchedule:   "@every 1h",
		DefaultProfileImage: "/assets/images/default-profile.png",
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	app, err := NewApp(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		assert.NoError(t, app.Shutdown(ctx))
	})
	return app
}

func TestNewApp_HealthAndMetrics(t *testing.T) {
	app := newTestApp(t, testConfig())

	resp, err := app.Fiber.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "healthy", health["status"])

	resp, err = app.Fiber.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "folio_http_requests_total")
}

func TestNewApp_RoutesUnderBasePath(t *testing.T) {
	app := newTestApp(t, testConfig())

	resp, err := app.Fiber.Test(httptest.NewRequest(http.MethodGet, "/api/portfolio", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Fiber.Test(httptest.NewRequest(http.MethodGet, "/api/portfolio/public/nobody/nothing", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = app.Fiber.Test(httptest.NewRequest(http.MethodGet, "/no/such/route", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNewApp_GoogleDisabled(t *testing.T) {
	app := newTestApp(t, testConfig())

	resp, err := app.Fiber.Test(httptest.NewRequest(http.MethodGet, "/api/auth/google", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Server error", string(body))
}

func TestNewApp_CORS(t *testing.T) {
	app := newTestApp(t, testConfig())

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := app.Fiber.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
}

func TestNewApp_BadSchedule(t *testing.T) {
	cfg := testConfig()
	cfg.ReconcileSchedule = "every now and then"

	_, err := NewApp(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestNewApp_ScheduleOff(t *testing.T) {
	cfg := testConfig()
	cfg.ReconcileSchedule = "off"

	app := newTestApp(t, cfg)
	assert.Nil(t, app.scheduler)
}
