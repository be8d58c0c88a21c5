package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nutriscan/backend/config"
	"github.com/nutriscan/backend/internal/infrastructure/storage"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:            "0",
			Environment:     "test",
			AllowedOrigins:  []string{"*"},
			ShutdownTimeout: time.Second,
		},
		OpenFoodFacts: config.OpenFoodFactsConfig{BaseURL: "http://127.0.0.1:1"},
		Reasoning:     config.ReasoningConfig{Provider: "gemini", APIKey: "test-key", Timeout: time.Second},
		Cache:         config.CacheConfig{Type: "memory", Size: 8, TTL: time.Minute},
		Storage:       config.StorageConfig{Type: "none"},
		Session:       config.SessionConfig{Name: "profile", MaxAge: 3600},
	}
}

func TestNewUploadStore(t *testing.T) {
	t.Run("none disables archiving", func(t *testing.T) {
		store, err := newUploadStore(config.StorageConfig{Type: "none"})
		require.NoError(t, err)
		assert.Nil(t, store)
	})

	t.Run("local", func(t *testing.T) {
		store, err := newUploadStore(config.StorageConfig{Type: "local", LocalDir: t.TempDir()})
		require.NoError(t, err)
		assert.IsType(t, &storage.LocalStore{}, store)
	})

	t.Run("minio", func(t *testing.T) {
		store, err := newUploadStore(config.StorageConfig{Type: "minio", Minio: config.MinioConfig{
			Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s", Bucket: "b",
		}})
		require.NoError(t, err)
		assert.IsType(t, &storage.MinioStore{}, store)
	})
}

func TestNewSessionStore(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Environment = "production"
	cfg.Session.Secret = "secret"

	store := NewSessionStore(cfg)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	session, err := store.Get(req, "profile")
	require.NoError(t, err)
	assert.True(t, session.Options.Secure)
	assert.True(t, session.Options.HttpOnly)
	assert.Equal(t, 3600, session.Options.MaxAge)
}

func TestNewAndRouter(t *testing.T) {
	logger := zerolog.Nop()
	application, err := New(context.Background(), testConfig(), &logger)
	require.NoError(t, err)
	require.NotNil(t, application.Service)

	w := httptest.NewRecorder()
	application.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServe_StopsOnCancel(t *testing.T) {
	logger := zerolog.Nop()
	application, err := New(context.Background(), testConfig(), &logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- application.Serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}
