package auth

import (
	"time"

	"github.com/google/uuid"
)

// User represents an authenticated user in the system.
type User struct {
	ID              uuid.UUID `json:"id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	PictureURL      string    `json:"picture"`
	Locale          string    `json:"locale"`
	OAuthProvider   string    `json:"-"`
	OAuthProviderID string    `json:"-"`
	CreatedAt       time.Time `json:"-"`
	UpdatedAt       time.Time `json:"-"`
	LastLoginAt     time.Time `json:"loginTime"`
}

// Credentials holds the OAuth tokens granted to a session.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	TokenExpiry  time.Time
	Scopes       []string
}

// Session represents an authenticated user session.
type Session struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Credentials Credentials
	ExpiresAt   time.Time
	CreatedAt   time.Time
	UserAgent   string
	IPAddress   string
}

// GoogleClaims contains the relevant claims from a Google ID token.
type GoogleClaims struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	Locale        string `json:"locale"`
}
