package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"raseed/internal/auth"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeGoogleAuthenticator struct {
	authURLBase    string
	lastState      string
	exchangeCalled bool
	exchangeClaims *auth.GoogleClaims
	exchangeToken  *oauth2.Token
	exchangeErr    error
}

func (f *fakeGoogleAuthenticator) AuthURL(state string) string {
	f.lastState = state
	if f.authURLBase == "" {
		f.authURLBase = "https://accounts.google.com/auth?state="
	}
	return f.authURLBase + state
}

func (f *fakeGoogleAuthenticator) Exchange(ctx context.Context, code string) (*auth.GoogleClaims, *oauth2.Token, error) {
	f.exchangeCalled = true
	if f.exchangeErr != nil {
		return nil, nil, f.exchangeErr
	}
	token := f.exchangeToken
	if token == nil {
		token = &oauth2.Token{
			AccessToken:  "access-token",
			RefreshToken: "refresh-token",
			Expiry:       time.Now().Add(time.Hour),
		}
	}
	return f.exchangeClaims, token, nil
}

func (f *fakeGoogleAuthenticator) Scopes() []string {
	return []string{"openid", "email", "profile"}
}

type fakeRefresher struct {
	token *oauth2.Token
	err   error
}

func (f *fakeRefresher) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.token != nil {
		return f.token, nil
	}
	return &oauth2.Token{AccessToken: "fresh-access", Expiry: time.Now().Add(time.Hour)}, nil
}

func newTestAuthService() *auth.Service {
	return auth.NewService(auth.NewInMemoryRepository(), &fakeRefresher{}, time.Hour)
}

func verifiedClaims() *auth.GoogleClaims {
	return &auth.GoogleClaims{
		Sub:           "google-sub-1",
		Email:         "user@example.com",
		EmailVerified: true,
		Name:          "Test User",
		Picture:       "https://example.com/avatar.png",
		Locale:        "en",
	}
}

// createTestSession establishes a user and session and returns the session cookie.
func createTestSession(t *testing.T, svc *auth.Service) *http.Cookie {
	t.Helper()

	user, err := svc.CreateOrUpdateUser(context.Background(), verifiedClaims())
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	creds := auth.Credentials{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		TokenExpiry:  time.Now().Add(time.Hour),
		Scopes:       []string{"openid", "email", "profile"},
	}

	token, err := svc.CreateSession(context.Background(), user.ID, creds, "test-agent", "127.0.0.1")
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	return &http.Cookie{Name: sessionCookieName, Value: token}
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}
