package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AnshRaj112/socialapp-backend/internal/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Environment:     "test",
		Port:            "0",
		StoreDriver:     "memory",
		AssetDriver:     "memory",
		JWTSecret:       "test-secret",
		TokenTTL:        time.Hour,
		OTPTTL:          5 * time.Minute,
		OwnershipStrict: true,
		AllowedOrigins:  []string{"http://localhost:3000"},
	}
}

func TestConnectMemoryBackends(t *testing.T) {
	t.Parallel()

	cfg := memoryConfig()
	require.NoError(t, cfg.Validate())

	b, err := connect(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(b.close)
	require.Nil(t, b.expiring)
	require.NotNil(t, b.mailer)

	srv := httptest.NewServer(newRouter(cfg, b, zap.NewNop()))
	t.Cleanup(srv.Close)

	res, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "nosniff", res.Header.Get("X-Content-Type-Options"))
}
