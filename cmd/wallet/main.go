package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"raseed/internal/config"
	transporthttp "raseed/internal/http"
	"raseed/internal/platform/logging"
	"raseed/internal/wallet"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.New(cfg.LogLevel)

	if cfg.WalletIssuerID == "" {
		logger.Error("WALLET_ISSUER_ID is required")
		os.Exit(1)
	}
	if cfg.CredentialsFile == "" {
		logger.Error("GOOGLE_APPLICATION_CREDENTIALS is required")
		os.Exit(1)
	}

	credentialsJSON, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		logger.Error("failed to read service account credentials", "path", cfg.CredentialsFile, "error", err)
		os.Exit(1)
	}

	client, err := wallet.NewServiceAccountClient(ctx, credentialsJSON)
	if err != nil {
		logger.Error("failed to initialize wallet client", "error", err)
		os.Exit(1)
	}

	minter, err := wallet.NewSaveLinkMinter(credentialsJSON, cfg.WalletOrigins)
	if err != nil {
		logger.Error("failed to initialize save link minter", "error", err)
		os.Exit(1)
	}

	svc := wallet.NewService(client, wallet.NewBuilder(cfg.WalletIssuerID), minter, logger)
	router := transporthttp.NewWalletRouter(svc, cfg.Environment, logger)

	srv := &http.Server{
		Addr:              cfg.WalletAddress(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}

	go func() {
		logger.Info("Raseed wallet service listening", "addr", srv.Addr, "issuer", cfg.WalletIssuerID)
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
