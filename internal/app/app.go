package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/nutriscan/backend/config"
	httpDelivery "github.com/nutriscan/backend/internal/delivery/http"
	"github.com/nutriscan/backend/internal/domain"
	"github.com/nutriscan/backend/internal/infrastructure/barcode"
	"github.com/nutriscan/backend/internal/infrastructure/cache"
	"github.com/nutriscan/backend/internal/infrastructure/gemini"
	"github.com/nutriscan/backend/internal/infrastructure/openfoodfacts"
	"github.com/nutriscan/backend/internal/infrastructure/storage"
	"github.com/nutriscan/backend/internal/usecase"
	"github.com/rs/zerolog"
)

const version = "1.0.0"

// App is the wired application shared by the server and the CLI
type App struct {
	Config  *config.Config
	Logger  *zerolog.Logger
	Service *usecase.AssessmentService
}

// New builds every collaborator from configuration
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	products := openfoodfacts.NewClient(openfoodfacts.ClientConfig{
		BaseURL:           cfg.OpenFoodFacts.BaseURL,
		UserAgent:         cfg.OpenFoodFacts.UserAgent,
		Timeout:           cfg.OpenFoodFacts.Timeout,
		RequestsPerMinute: cfg.OpenFoodFacts.RequestsPerMinute,
	}, logger)

	reasoning, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:            cfg.Reasoning.APIKey,
		Model:             cfg.Reasoning.Model,
		MaxOutputTokens:   cfg.Reasoning.MaxOutputTokens,
		Temperature:       cfg.Reasoning.Temperature,
		RequestsPerMinute: cfg.Reasoning.RequestsPerMinute,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("reasoning client: %w", err)
	}

	uploads, err := newUploadStore(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("upload storage: %w", err)
	}

	deps := usecase.AssessmentDeps{
		Products:  products,
		Reasoning: reasoning,
		Decoder:   barcode.NewDecoder(),
		Uploads:   uploads,
	}
	if cfg.Cache.Type == "memory" {
		deps.Cache = cache.NewMemoryCache(cfg.Cache.Size, cfg.Cache.TTL)
	}

	service := usecase.NewAssessmentService(deps, logger, usecase.AssessmentServiceConfig{
		ReasoningTimeout: cfg.Reasoning.Timeout,
	})

	logger.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("reasoning", reasoning.Name()).
		Str("cache", cfg.Cache.Type).
		Str("storage", cfg.Storage.Type).
		Msg("application initialised")

	return &App{Config: cfg, Logger: logger, Service: service}, nil
}

// newUploadStore returns nil when archiving is disabled
func newUploadStore(cfg config.StorageConfig) (domain.UploadStore, error) {
	switch cfg.Type {
	case "local":
		return storage.NewLocalStore(cfg.LocalDir)
	case "minio":
		return storage.NewMinioStore(storage.MinioConfig{
			Endpoint:  cfg.Minio.Endpoint,
			Region:    cfg.Minio.Region,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			Bucket:    cfg.Minio.Bucket,
			UseSSL:    cfg.Minio.UseSSL,
		})
	default:
		return nil, nil
	}
}

// NewSessionStore builds the signed cookie store for dietary profiles
func NewSessionStore(cfg *config.Config) sessions.Store {
	secret := cfg.Session.Secret
	if secret == "" {
		// development only, validation requires a secret in production
		secret = "nutriscan-development-session-key"
	}
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.Session.MaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// Router builds the HTTP router around the assessment service
func (a *App) Router() *gin.Engine {
	handler := httpDelivery.NewHandler(a.Service, NewSessionStore(a.Config), a.Logger, httpDelivery.HandlerConfig{
		SessionName:    a.Config.Session.Name,
		MaxUploadBytes: a.Config.Server.MaxUploadBytes,
	})
	return httpDelivery.SetupRouter(a.Config, handler, a.Logger)
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down gracefully
func (a *App) Serve(ctx context.Context) error {
	server := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		// reasoning calls can take up to the configured timeout
		WriteTimeout: a.Config.Reasoning.Timeout + a.Config.OpenFoodFacts.Timeout + 10*time.Second,
		IdleTimeout:  time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
	}

	a.Logger.Info().Msg("shutting down gracefully")
	timeout := a.Config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	a.Logger.Info().Msg("graceful shutdown complete")
	return nil
}
