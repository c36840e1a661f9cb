package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

type repoStub struct {
	findUserByOAuth       func(ctx context.Context, provider, providerID string) (*User, error)
	createUser            func(ctx context.Context, user User) (User, error)
	updateUserLogin       func(ctx context.Context, id uuid.UUID, name, pictureURL, locale string) error
	createSession         func(ctx context.Context, session Session, tokenHash string) error
	findSessionByHash     func(ctx context.Context, tokenHash string) (*Session, *User, error)
	updateSessionCreds    func(ctx context.Context, id uuid.UUID, accessToken string, expiry time.Time) error
	deleteSession         func(ctx context.Context, id uuid.UUID) error
	deleteExpiredSessions func(ctx context.Context) (int64, error)
}

func (r *repoStub) FindUserByOAuth(ctx context.Context, provider, providerID string) (*User, error) {
	if r.findUserByOAuth != nil {
		return r.findUserByOAuth(ctx, provider, providerID)
	}
	return nil, nil
}

func (r *repoStub) CreateUser(ctx context.Context, user User) (User, error) {
	if r.createUser != nil {
		return r.createUser(ctx, user)
	}
	return user, nil
}

func (r *repoStub) UpdateUserLogin(ctx context.Context, id uuid.UUID, name, pictureURL, locale string) error {
	if r.updateUserLogin != nil {
		return r.updateUserLogin(ctx, id, name, pictureURL, locale)
	}
	return nil
}

func (r *repoStub) CreateSession(ctx context.Context, session Session, tokenHash string) error {
	if r.createSession != nil {
		return r.createSession(ctx, session, tokenHash)
	}
	return nil
}

func (r *repoStub) FindSessionByTokenHash(ctx context.Context, tokenHash string) (*Session, *User, error) {
	if r.findSessionByHash != nil {
		return r.findSessionByHash(ctx, tokenHash)
	}
	return nil, nil, nil
}

func (r *repoStub) UpdateSessionCredentials(ctx context.Context, id uuid.UUID, accessToken string, expiry time.Time) error {
	if r.updateSessionCreds != nil {
		return r.updateSessionCreds(ctx, id, accessToken, expiry)
	}
	return nil
}

func (r *repoStub) DeleteSession(ctx context.Context, id uuid.UUID) error {
	if r.deleteSession != nil {
		return r.deleteSession(ctx, id)
	}
	return nil
}

func (r *repoStub) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	if r.deleteExpiredSessions != nil {
		return r.deleteExpiredSessions(ctx)
	}
	return 0, nil
}

type refresherStub struct {
	refresh func(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

func (r *refresherStub) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if r.refresh != nil {
		return r.refresh(ctx, refreshToken)
	}
	return &oauth2.Token{AccessToken: "fresh"}, nil
}

func TestCreateOrUpdateUserExisting(t *testing.T) {
	userID := uuid.New()
	existing := &User{
		ID:         userID,
		Email:      "old@example.com",
		Name:       "Old Name",
		PictureURL: "https://old.example.com/pic.png",
	}

	var updatedName, updatedLocale string
	repo := &repoStub{
		findUserByOAuth: func(ctx context.Context, provider, providerID string) (*User, error) {
			if provider != "google" || providerID != "sub-123" {
				t.Fatalf("unexpected lookup %q/%q", provider, providerID)
			}
			return existing, nil
		},
		updateUserLogin: func(ctx context.Context, id uuid.UUID, name, pictureURL, locale string) error {
			updatedName = name
			updatedLocale = locale
			return nil
		},
	}

	svc := NewService(repo, nil, time.Hour)
	user, err := svc.CreateOrUpdateUser(context.Background(), &GoogleClaims{
		Sub:     "sub-123",
		Email:   "old@example.com",
		Name:    "New Name",
		Picture: "https://new.example.com/pic.png",
	})
	if err != nil {
		t.Fatalf("CreateOrUpdateUser returned error: %v", err)
	}

	if user.ID != userID {
		t.Fatalf("expected existing user ID %s, got %s", userID, user.ID)
	}
	if updatedName != "New Name" {
		t.Fatalf("expected login update with new name, got %q", updatedName)
	}
	if updatedLocale != "en" {
		t.Fatalf("expected locale to default to en, got %q", updatedLocale)
	}
}

func TestCreateOrUpdateUserNew(t *testing.T) {
	var created User
	repo := &repoStub{
		createUser: func(ctx context.Context, user User) (User, error) {
			created = user
			return user, nil
		},
	}

	svc := NewService(repo, nil, time.Hour)
	user, err := svc.CreateOrUpdateUser(context.Background(), &GoogleClaims{
		Sub:    "sub-456",
		Email:  "new@example.com",
		Name:   "New User",
		Locale: "hi",
	})
	if err != nil {
		t.Fatalf("CreateOrUpdateUser returned error: %v", err)
	}

	if created.OAuthProviderID != "sub-456" {
		t.Fatalf("expected provider ID recorded, got %q", created.OAuthProviderID)
	}
	if user.Locale != "hi" {
		t.Fatalf("expected locale hi, got %q", user.Locale)
	}
}

func TestCreateSessionStoresCredentialsAndHashedToken(t *testing.T) {
	var stored Session
	var storedHash string
	repo := &repoStub{
		createSession: func(ctx context.Context, session Session, tokenHash string) error {
			stored = session
			storedHash = tokenHash
			return nil
		},
	}

	svc := NewService(repo, nil, time.Hour)
	creds := Credentials{AccessToken: "access", RefreshToken: "refresh", Scopes: []string{"openid"}}
	token, err := svc.CreateSession(context.Background(), uuid.New(), creds, "agent", "127.0.0.1")
	if err != nil {
		t.Fatalf("CreateSession returned error: %v", err)
	}

	if token == "" {
		t.Fatal("expected a session token")
	}
	if storedHash == token {
		t.Fatal("expected token to be stored hashed, not in clear")
	}
	if stored.Credentials.RefreshToken != "refresh" {
		t.Fatalf("expected refresh token stored, got %q", stored.Credentials.RefreshToken)
	}
	if hashToken(token) != storedHash {
		t.Fatal("stored hash does not match token hash")
	}
}

func TestValidateSessionExpired(t *testing.T) {
	deleted := false
	sessionID := uuid.New()
	repo := &repoStub{
		findSessionByHash: func(ctx context.Context, tokenHash string) (*Session, *User, error) {
			return &Session{ID: sessionID, ExpiresAt: time.Now().Add(-time.Minute)}, &User{}, nil
		},
		deleteSession: func(ctx context.Context, id uuid.UUID) error {
			if id != sessionID {
				t.Fatalf("expected delete of %s, got %s", sessionID, id)
			}
			deleted = true
			return nil
		},
	}

	svc := NewService(repo, nil, time.Hour)
	user, err := svc.ValidateSession(context.Background(), "some-token")
	if err != nil {
		t.Fatalf("ValidateSession returned error: %v", err)
	}
	if user != nil {
		t.Fatal("expected nil user for expired session")
	}
	if !deleted {
		t.Fatal("expected expired session to be deleted")
	}
}

func TestRefreshAccessTokenNoCredentials(t *testing.T) {
	repo := &repoStub{
		findSessionByHash: func(ctx context.Context, tokenHash string) (*Session, *User, error) {
			return &Session{ID: uuid.New()}, &User{}, nil
		},
	}

	svc := NewService(repo, &refresherStub{}, time.Hour)
	err := svc.RefreshAccessToken(context.Background(), "token")
	if !errors.Is(err, ErrNoCredentials) {
		t.Fatalf("expected ErrNoCredentials, got %v", err)
	}
}

func TestRefreshAccessTokenOverwritesStoredToken(t *testing.T) {
	sessionID := uuid.New()
	expiry := time.Now().Add(time.Hour)
	var gotAccess string
	repo := &repoStub{
		findSessionByHash: func(ctx context.Context, tokenHash string) (*Session, *User, error) {
			return &Session{
				ID:          sessionID,
				Credentials: Credentials{AccessToken: "stale", RefreshToken: "refresh"},
				ExpiresAt:   time.Now().Add(time.Hour),
			}, &User{}, nil
		},
		updateSessionCreds: func(ctx context.Context, id uuid.UUID, accessToken string, tokenExpiry time.Time) error {
			if id != sessionID {
				t.Fatalf("expected update of %s, got %s", sessionID, id)
			}
			gotAccess = accessToken
			return nil
		},
	}
	refresher := &refresherStub{
		refresh: func(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
			if refreshToken != "refresh" {
				t.Fatalf("unexpected refresh token %q", refreshToken)
			}
			return &oauth2.Token{AccessToken: "brand-new", Expiry: expiry}, nil
		},
	}

	svc := NewService(repo, refresher, time.Hour)
	if err := svc.RefreshAccessToken(context.Background(), "token"); err != nil {
		t.Fatalf("RefreshAccessToken returned error: %v", err)
	}
	if gotAccess != "brand-new" {
		t.Fatalf("expected new access token stored, got %q", gotAccess)
	}
}

func TestRefreshAccessTokenUpstreamFailure(t *testing.T) {
	repo := &repoStub{
		findSessionByHash: func(ctx context.Context, tokenHash string) (*Session, *User, error) {
			return &Session{
				ID:          uuid.New(),
				Credentials: Credentials{RefreshToken: "refresh"},
			}, &User{}, nil
		},
	}
	refresher := &refresherStub{
		refresh: func(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
			return nil, errors.New("boom")
		},
	}

	svc := NewService(repo, refresher, time.Hour)
	if err := svc.RefreshAccessToken(context.Background(), "token"); err == nil {
		t.Fatal("expected error from failed refresh")
	}
}

func TestDeleteSessionUnknownTokenIsNoop(t *testing.T) {
	svc := NewService(&repoStub{}, nil, time.Hour)
	if err := svc.DeleteSession(context.Background(), "missing"); err != nil {
		t.Fatalf("DeleteSession returned error: %v", err)
	}
}
