package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for user and session persistence.
type Repository interface {
	// User operations
	FindUserByOAuth(ctx context.Context, provider, providerID string) (*User, error)
	CreateUser(ctx context.Context, user User) (User, error)
	UpdateUserLogin(ctx context.Context, id uuid.UUID, name, pictureURL, locale string) error

	// Session operations
	CreateSession(ctx context.Context, session Session, tokenHash string) error
	FindSessionByTokenHash(ctx context.Context, tokenHash string) (*Session, *User, error)
	UpdateSessionCredentials(ctx context.Context, id uuid.UUID, accessToken string, expiry time.Time) error
	DeleteSession(ctx context.Context, id uuid.UUID) error
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}
