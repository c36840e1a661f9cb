package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// tokenRefresher exchanges a refresh token for a fresh access token.
type tokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// Service provides authentication business logic.
type Service struct {
	repo       Repository
	refresher  tokenRefresher
	sessionTTL time.Duration
}

// NewService creates a new auth Service.
func NewService(repo Repository, refresher tokenRefresher, sessionTTL time.Duration) *Service {
	if sessionTTL == 0 {
		sessionTTL = 30 * time.Minute
	}
	return &Service{
		repo:       repo,
		refresher:  refresher,
		sessionTTL: sessionTTL,
	}
}

// CreateOrUpdateUser finds an existing user by OAuth credentials or creates a new one.
func (s *Service) CreateOrUpdateUser(ctx context.Context, claims *GoogleClaims) (*User, error) {
	existing, err := s.repo.FindUserByOAuth(ctx, "google", claims.Sub)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	locale := claims.Locale
	if locale == "" {
		locale = "en"
	}

	if existing != nil {
		if err := s.repo.UpdateUserLogin(ctx, existing.ID, claims.Name, claims.Picture, locale); err != nil {
			return nil, fmt.Errorf("update user login: %w", err)
		}
		existing.Name = claims.Name
		existing.PictureURL = claims.Picture
		existing.Locale = locale
		existing.LastLoginAt = time.Now()
		return existing, nil
	}

	now := time.Now()
	newUser := User{
		ID:              uuid.New(),
		Email:           claims.Email,
		Name:            claims.Name,
		PictureURL:      claims.Picture,
		Locale:          locale,
		OAuthProvider:   "google",
		OAuthProviderID: claims.Sub,
		CreatedAt:       now,
		UpdatedAt:       now,
		LastLoginAt:     now,
	}

	created, err := s.repo.CreateUser(ctx, newUser)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return &created, nil
}

// CreateSession creates a new session holding the granted OAuth credentials
// and returns the opaque session token.
func (s *Service) CreateSession(ctx context.Context, userID uuid.UUID, creds Credentials, userAgent, ipAddress string) (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	token := base64.URLEncoding.EncodeToString(tokenBytes)
	tokenHash := hashToken(token)

	now := time.Now()
	session := Session{
		ID:          uuid.New(),
		UserID:      userID,
		Credentials: creds,
		ExpiresAt:   now.Add(s.sessionTTL),
		CreatedAt:   now,
		UserAgent:   truncateString(userAgent, 512),
		IPAddress:   truncateString(ipAddress, 45),
	}

	if err := s.repo.CreateSession(ctx, session, tokenHash); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	return token, nil
}

// ValidateSession checks if the token is valid and returns the associated user.
func (s *Service) ValidateSession(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, nil
	}

	tokenHash := hashToken(token)
	session, user, err := s.repo.FindSessionByTokenHash(ctx, tokenHash)
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}

	if session == nil || user == nil {
		return nil, nil
	}

	if time.Now().After(session.ExpiresAt) {
		_ = s.repo.DeleteSession(ctx, session.ID)
		return nil, nil
	}

	return user, nil
}

// RefreshAccessToken refreshes the access token stored for the session
// identified by the given token, overwriting it in place.
func (s *Service) RefreshAccessToken(ctx context.Context, token string) error {
	if token == "" {
		return ErrNoCredentials
	}

	tokenHash := hashToken(token)
	session, _, err := s.repo.FindSessionByTokenHash(ctx, tokenHash)
	if err != nil {
		return fmt.Errorf("find session: %w", err)
	}

	if session == nil || session.Credentials.RefreshToken == "" {
		return ErrNoCredentials
	}

	fresh, err := s.refresher.Refresh(ctx, session.Credentials.RefreshToken)
	if err != nil {
		return fmt.Errorf("refresh access token: %w", err)
	}

	if err := s.repo.UpdateSessionCredentials(ctx, session.ID, fresh.AccessToken, fresh.Expiry); err != nil {
		return fmt.Errorf("store refreshed token: %w", err)
	}

	return nil
}

// DeleteSession removes the session associated with the given token.
func (s *Service) DeleteSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	tokenHash := hashToken(token)
	session, _, err := s.repo.FindSessionByTokenHash(ctx, tokenHash)
	if err != nil {
		return fmt.Errorf("find session: %w", err)
	}

	if session == nil {
		return nil
	}

	return s.repo.DeleteSession(ctx, session.ID)
}

// CleanupExpiredSessions removes all expired sessions from the store.
func (s *Service) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpiredSessions(ctx)
}

// hashToken returns the SHA-256 hash of the token as a hex string.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// truncateString truncates a string to the given max length.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
