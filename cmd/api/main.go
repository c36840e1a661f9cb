package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"raseed/internal/auth"
	"raseed/internal/chat"
	"raseed/internal/config"
	transporthttp "raseed/internal/http"
	"raseed/internal/images"
	"raseed/internal/platform/database"
	"raseed/internal/platform/logging"
	"raseed/internal/platform/migrate"
)

const (
	janitorInterval = time.Hour
	uploadMaxAge    = 7 * 24 * time.Hour
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.New(cfg.LogLevel)

	repo, cleanup, err := buildRepository(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize repository", "error", err)
		os.Exit(1)
	}
	if cleanup != nil {
		defer cleanup()
	}

	google, err := auth.NewGoogleAuthenticator(ctx, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthRedirectURL)
	if err != nil {
		logger.Error("failed to initialize google authenticator", "error", err)
		os.Exit(1)
	}

	authSvc := auth.NewService(repo, google, cfg.SessionTTL)

	graphClient := &http.Client{Timeout: 30 * time.Second}
	chatSvc := chat.NewService(graphClient, chat.WithGraphURL(cfg.GraphURL))

	store, storeCleanup, err := buildImageStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize image storage", "error", err)
		os.Exit(1)
	}
	if storeCleanup != nil {
		defer storeCleanup()
	}

	go runJanitor(ctx, authSvc, store, logger)

	router := transporthttp.NewRouter(cfg, authSvc, google, chatSvc, store, logger)

	srv := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}

	go func() {
		logger.Info("Raseed API listening", "addr", srv.Addr, "store", cfg.DataStore, "storage", cfg.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func buildRepository(ctx context.Context, cfg config.Config, logger *slog.Logger) (auth.Repository, func(), error) {
	if cfg.UseInMemoryStore() {
		logger.Info("using in-memory session repository")
		return auth.NewInMemoryRepository(), nil, nil
	}

	db, err := database.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		_ = db.Close()
	}

	if err := migrate.Apply(ctx, db, logger); err != nil {
		cleanup()
		return nil, nil, err
	}

	logger.Info("connected to postgres")
	return auth.NewPostgresRepository(db), cleanup, nil
}

func buildImageStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (images.Store, func(), error) {
	if cfg.StorageBackend == "gcs" {
		store, err := images.NewCloudStore(ctx, cfg.GCSBucket, cfg.CredentialsFile, logger)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using cloud image storage", "bucket", cfg.GCSBucket)
		return store, func() { _ = store.Close() }, nil
	}

	logger.Info("using local image storage", "dir", cfg.UploadDir)
	return images.NewLocalStore(cfg.UploadDir, logger), nil, nil
}

// runJanitor periodically purges expired sessions and stale uploads.
func runJanitor(ctx context.Context, authSvc *auth.Service, store images.Store, logger *slog.Logger) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed, err := authSvc.CleanupExpiredSessions(ctx); err != nil {
				logger.Error("session cleanup failed", "error", err)
			} else if removed > 0 {
				logger.Info("expired sessions removed", "count", removed)
			}

			if removed, err := store.PurgeOlderThan(ctx, uploadMaxAge); err != nil {
				logger.Error("upload purge failed", "error", err)
			} else if removed > 0 {
				logger.Info("stale uploads removed", "count", removed)
			}
		}
	}
}
