package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the Raseed services.
type Config struct {
	Environment    string
	HTTPPort       int
	WalletPort     int
	LogLevel       string
	AllowedOrigins []string
	FrontendURL    string

	// OAuth login
	GoogleClientID     string
	GoogleClientSecret string
	OAuthRedirectURL   string

	// Session persistence
	DataStore   string
	DatabaseURL string
	SessionTTL  time.Duration

	// Image storage
	StorageBackend  string
	UploadDir       string
	GCSBucket       string
	CredentialsFile string

	// Chat graph
	GraphURL string

	// Wallet pass issuing
	WalletIssuerID string
	WalletOrigins  []string
}

// Load reads configuration from the environment (and an optional .env file)
// with sensible defaults for local development.
func Load() (Config, error) {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	clientSecret, err := getEnvOrFile("GOOGLE_CLIENT_SECRET", "/run/secrets/raseed_google_client_secret")
	if err != nil {
		return Config{}, err
	}

	databaseURL, err := getEnvOrFile("DATABASE_URL", "/run/secrets/raseed_database_url")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Environment:        getEnv("APP_ENV", "development"),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", "info")),
		AllowedOrigins:     parseCSV(getEnv("ALLOWED_ORIGINS", "http://localhost:4200,http://localhost:8080")),
		FrontendURL:        strings.TrimSuffix(getEnv("FRONTEND_URL", "http://localhost:8080"), "/"),
		GoogleClientID:     strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_ID")),
		GoogleClientSecret: strings.TrimSpace(clientSecret),
		OAuthRedirectURL:   getEnv("OAUTH_REDIRECT_URL", "http://localhost:8080/auth/google"),
		DataStore:          strings.ToLower(getEnv("DATA_STORE", "memory")),
		DatabaseURL:        databaseURL,
		StorageBackend:     strings.ToLower(getEnv("STORAGE_BACKEND", "local")),
		UploadDir:          getEnv("UPLOAD_DIR", "uploads"),
		GCSBucket:          strings.TrimSpace(os.Getenv("GCS_BUCKET")),
		CredentialsFile:    strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")),
		GraphURL:           getEnv("GRAPH_URL", "http://localhost:9000"),
		WalletIssuerID:     strings.TrimSpace(os.Getenv("WALLET_ISSUER_ID")),
		WalletOrigins:      parseCSV(getEnv("WALLET_ORIGINS", "http://localhost:5000")),
	}

	port, err := parsePort(getEnv("PORT", getEnv("HTTP_PORT", "8080")))
	if err != nil {
		return Config{}, err
	}
	cfg.HTTPPort = port

	walletPort, err := parsePort(getEnv("WALLET_PORT", "8090"))
	if err != nil {
		return Config{}, err
	}
	cfg.WalletPort = walletPort

	ttlValue := getEnv("SESSION_TTL_MINUTES", "30")
	ttlMinutes, err := strconv.Atoi(ttlValue)
	if err != nil || ttlMinutes <= 0 {
		return Config{}, fmt.Errorf("invalid SESSION_TTL_MINUTES %q", ttlValue)
	}
	cfg.SessionTTL = time.Duration(ttlMinutes) * time.Minute

	if cfg.DataStore == "postgres" && cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATA_STORE is postgres but DATABASE_URL is not set")
	}

	switch cfg.StorageBackend {
	case "local":
	case "gcs":
		if cfg.GCSBucket == "" {
			return Config{}, fmt.Errorf("STORAGE_BACKEND is gcs but GCS_BUCKET is not set")
		}
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	if !cfg.IsDevelopment() && (cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "") {
		return Config{}, fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required outside development")
	}

	return cfg, nil
}

// HTTPAddress returns the address the API server should bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// WalletAddress returns the address the wallet pass service should bind to.
func (c Config) WalletAddress() string {
	return fmt.Sprintf(":%d", c.WalletPort)
}

// UseInMemoryStore returns true if the in-memory session repository should be used.
func (c Config) UseInMemoryStore() bool {
	return c.DataStore == "memory"
}

// IsDevelopment reports whether the service runs in development mode.
func (c Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

func parsePort(value string) (int, error) {
	port, err := strconv.Atoi(value)
	if err != nil || port <= 0 || port > 65535 {
		return 0, fmt.Errorf("invalid port %q", value)
	}
	return port, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvOrFile(key, defaultPath string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}

	fileKey := key + "_FILE"
	if path := os.Getenv(fileKey); path != "" {
		return readSecret(path, fileKey)
	}

	if defaultPath != "" {
		return readSecret(defaultPath, key)
	}

	return "", nil
}

func readSecret(path, name string) (string, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("config: reading %s (%s): %w", name, path, err)
	}

	value := strings.TrimSpace(string(contents))
	if value == "" {
		return "", fmt.Errorf("config: %s (%s) is empty", name, path)
	}
	return value, nil
}
