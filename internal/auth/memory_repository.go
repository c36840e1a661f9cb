package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository implements Repository with process-local maps.
// Sessions do not survive a restart; suitable for development only.
type InMemoryRepository struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]User
	sessions map[string]Session // keyed by token hash
}

// NewInMemoryRepository creates an empty InMemoryRepository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		users:    make(map[uuid.UUID]User),
		sessions: make(map[string]Session),
	}
}

// FindUserByOAuth looks up a user by their OAuth provider and provider ID.
func (r *InMemoryRepository) FindUserByOAuth(_ context.Context, provider, providerID string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.OAuthProvider == provider && user.OAuthProviderID == providerID {
			copied := user
			return &copied, nil
		}
	}
	return nil, nil
}

// CreateUser stores a new user.
func (r *InMemoryRepository) CreateUser(_ context.Context, user User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[user.ID] = user
	return user, nil
}

// UpdateUserLogin refreshes profile data and the last login timestamp.
func (r *InMemoryRepository) UpdateUserLogin(_ context.Context, id uuid.UUID, name, pictureURL, locale string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil
	}
	now := time.Now()
	user.Name = name
	user.PictureURL = pictureURL
	user.Locale = locale
	user.LastLoginAt = now
	user.UpdatedAt = now
	r.users[id] = user
	return nil
}

// CreateSession stores a new session keyed by its token hash.
func (r *InMemoryRepository) CreateSession(_ context.Context, session Session, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[tokenHash] = session
	return nil
}

// FindSessionByTokenHash looks up a session and its user by token hash.
func (r *InMemoryRepository) FindSessionByTokenHash(_ context.Context, tokenHash string) (*Session, *User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[tokenHash]
	if !ok {
		return nil, nil, nil
	}

	user, ok := r.users[session.UserID]
	if !ok {
		return nil, nil, nil
	}

	sessionCopy := session
	userCopy := user
	return &sessionCopy, &userCopy, nil
}

// UpdateSessionCredentials overwrites the access token stored for a session.
func (r *InMemoryRepository) UpdateSessionCredentials(_ context.Context, id uuid.UUID, accessToken string, expiry time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for hash, session := range r.sessions {
		if session.ID == id {
			session.Credentials.AccessToken = accessToken
			session.Credentials.TokenExpiry = expiry
			r.sessions[hash] = session
			return nil
		}
	}
	return nil
}

// DeleteSession removes a session by ID.
func (r *InMemoryRepository) DeleteSession(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for hash, session := range r.sessions {
		if session.ID == id {
			delete(r.sessions, hash)
			return nil
		}
	}
	return nil
}

// DeleteExpiredSessions removes all sessions past their expiry.
func (r *InMemoryRepository) DeleteExpiredSessions(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	var removed int64
	for hash, session := range r.sessions {
		if now.After(session.ExpiresAt) {
			delete(r.sessions, hash)
			removed++
		}
	}
	return removed, nil
}
