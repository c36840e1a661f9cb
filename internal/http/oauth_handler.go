package http

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"raseed/internal/auth"
)

const (
	sessionCookieName = "raseed_session"

	stateCookieName = "raseed_oauth_state"
	stateCookieTTL  = 10 * time.Minute
)

type googleAuthenticator interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GoogleClaims, *oauth2.Token, error)
	Scopes() []string
}

// OAuthHandler drives the Google login flow and the session endpoints.
type OAuthHandler struct {
	google       googleAuthenticator
	authService  *auth.Service
	logger       *slog.Logger
	secureCookie bool
	frontendURL  string
	sessionTTL   time.Duration
}

// NewOAuthHandler creates an OAuthHandler.
func NewOAuthHandler(google googleAuthenticator, authService *auth.Service, frontendURL, env string, sessionTTL time.Duration, logger *slog.Logger) *OAuthHandler {
	return &OAuthHandler{
		google:       google,
		authService:  authService,
		logger:       logger,
		secureCookie: !strings.EqualFold(env, "development"),
		frontendURL:  strings.TrimSuffix(frontendURL, "/"),
		sessionTTL:   sessionTTL,
	}
}

// Index handles GET /. Authenticated visitors land on the chat page,
// everyone else on the login page.
func (h *OAuthHandler) Index(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		user, err := h.authService.ValidateSession(r.Context(), cookie.Value)
		if err == nil && user != nil {
			http.Redirect(w, r, h.frontendURL+"/chatbot", http.StatusTemporaryRedirect)
			return
		}
	}
	http.Redirect(w, r, h.frontendURL+"/login", http.StatusTemporaryRedirect)
}

// Login handles GET /login. Stores a fresh anti-forgery state in a cookie and
// redirects to Google's consent screen.
func (h *OAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state, err := auth.GenerateState()
	if err != nil {
		h.logger.Error("failed to generate state", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(stateCookieTTL.Seconds()),
	})

	http.Redirect(w, r, h.google.AuthURL(state), http.StatusTemporaryRedirect)
}

// Callback handles GET /auth/google.
//
// Provider errors and a mismatched state fail with 400; a missing stored
// state restarts the flow at /login without attempting a token exchange.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Warn("oauth callback: provider error", "error", errParam)
		writeError(w, http.StatusBadRequest, auth.ErrProviderError.Error())
		return
	}

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" {
		h.logger.Warn("oauth callback: no stored state, restarting login")
		http.Redirect(w, r, "/login", http.StatusTemporaryRedirect)
		return
	}

	stateParam := r.URL.Query().Get("state")
	if subtle.ConstantTimeCompare([]byte(stateParam), []byte(stateCookie.Value)) != 1 {
		h.logger.Warn("oauth callback: state mismatch")
		writeError(w, http.StatusBadRequest, auth.ErrStateMismatch.Error())
		return
	}

	h.clearCookie(w, stateCookieName)

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	claims, token, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("oauth callback: exchange failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to complete authentication")
		return
	}

	if !claims.EmailVerified {
		h.logger.Warn("oauth callback: email not verified", "email", claims.Email)
		writeError(w, http.StatusBadRequest, auth.ErrUnverifiedEmail.Error())
		return
	}

	user, err := h.authService.CreateOrUpdateUser(r.Context(), claims)
	if err != nil {
		h.logger.Error("oauth callback: user creation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create user account")
		return
	}

	creds := auth.Credentials{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenExpiry:  token.Expiry,
		Scopes:       h.google.Scopes(),
	}

	sessionToken, err := h.authService.CreateSession(r.Context(), user.ID, creds, r.UserAgent(), clientIPFromRequest(r))
	if err != nil {
		h.logger.Error("oauth callback: session creation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.sessionTTL.Seconds()),
	})

	h.logger.Info("oauth login successful", "user_id", user.ID, "email", user.Email)

	http.Redirect(w, r, h.frontendURL+"/chatbot", http.StatusTemporaryRedirect)
}

// Logout handles GET /logout. Deletes the server-side session and clears the
// cookie before sending the visitor back to the landing page.
func (h *OAuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if err := h.authService.DeleteSession(r.Context(), cookie.Value); err != nil {
			h.logger.Error("logout: delete session failed", "error", err)
		}
	}

	h.clearCookie(w, sessionCookieName)
	http.Redirect(w, r, h.frontendURL+"/", http.StatusTemporaryRedirect)
}

// CurrentUser handles GET /api/user.
func (h *OAuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		unauthorized(w)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// RefreshToken handles GET /api/refresh-token. Overwrites the session's stored
// access token using its refresh token.
func (h *OAuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		unauthorized(w)
		return
	}

	if err := h.authService.RefreshAccessToken(r.Context(), cookie.Value); err != nil {
		if errors.Is(err, auth.ErrNoCredentials) {
			writeError(w, http.StatusUnauthorized, auth.ErrNoCredentials.Error())
			return
		}
		h.logger.Error("refresh token failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to refresh token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "token refreshed"})
}

func (h *OAuthHandler) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
	})
}
