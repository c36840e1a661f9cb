package http

import (
	"net/http"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"raseed/internal/auth"
	"raseed/internal/config"
	"raseed/internal/images"
)

// NewRouter wires the API server routes and middleware using chi.
func NewRouter(cfg config.Config, authSvc *auth.Service, google googleAuthenticator, gateway chatGateway, store images.Store, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(newSecurityHeadersMiddleware(cfg.Environment))
	r.Use(newSlogMiddleware(logger))

	oauthHandler := NewOAuthHandler(google, authSvc, cfg.FrontendURL, cfg.Environment, cfg.SessionTTL, logger)
	chatHandler := NewChatHandler(gateway, logger)
	imageHandler := NewImageHandler(store, logger)

	r.Get("/", oauthHandler.Index)
	r.Get("/login", oauthHandler.Login)
	r.Get("/auth/google", oauthHandler.Callback)
	r.Get("/logout", oauthHandler.Logout)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":      "ok",
			"environment": cfg.Environment,
		})
	})

	r.Get("/test-config", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"environment":          cfg.Environment,
			"client_id_configured": cfg.GoogleClientID != "",
			"redirect_url":         cfg.OAuthRedirectURL,
			"frontend_url":         cfg.FrontendURL,
			"data_store":           cfg.DataStore,
			"storage_backend":      cfg.StorageBackend,
			"graph_url":            cfg.GraphURL,
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(newAuthMiddleware(authSvc, logger))
		r.Get("/user", oauthHandler.CurrentUser)
		r.Get("/refresh-token", oauthHandler.RefreshToken)
		r.Post("/chat", chatHandler.Send)
		r.Post("/upload-image", imageHandler.Upload)
	})

	r.NotFound(http.NotFoundHandler().ServeHTTP)

	return r
}

// NewWalletRouter wires the wallet pass service routes.
func NewWalletRouter(service passCreator, environment string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(newSlogMiddleware(logger))

	handler := NewWalletHandler(service, logger)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service": "raseed-wallet",
			"endpoints": []string{
				"POST /create-grouped-passes",
				"POST /create-shopping-lists",
				"GET /health",
			},
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":      "ok",
			"environment": environment,
		})
	})

	r.Post("/create-grouped-passes", handler.CreateGroupedPasses)
	r.Post("/create-shopping-lists", handler.CreateShoppingLists)

	r.NotFound(http.NotFoundHandler().ServeHTTP)

	return r
}
