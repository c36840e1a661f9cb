package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type userRow struct {
	ID              uuid.UUID `db:"id"`
	Email           string    `db:"email"`
	Name            string    `db:"name"`
	PictureURL      string    `db:"picture_url"`
	Locale          string    `db:"locale"`
	OAuthProvider   string    `db:"oauth_provider"`
	OAuthProviderID string    `db:"oauth_provider_id"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
	LastLoginAt     time.Time `db:"last_login_at"`
}

func (r userRow) toUser() *User {
	return &User{
		ID:              r.ID,
		Email:           r.Email,
		Name:            r.Name,
		PictureURL:      r.PictureURL,
		Locale:          r.Locale,
		OAuthProvider:   r.OAuthProvider,
		OAuthProviderID: r.OAuthProviderID,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
		LastLoginAt:     r.LastLoginAt,
	}
}

type sessionRow struct {
	ID           uuid.UUID    `db:"id"`
	UserID       uuid.UUID    `db:"user_id"`
	AccessToken  string       `db:"access_token"`
	RefreshToken string       `db:"refresh_token"`
	TokenExpiry  sql.NullTime `db:"token_expiry"`
	Scopes       string       `db:"scopes"`
	ExpiresAt    time.Time    `db:"expires_at"`
	CreatedAt    time.Time    `db:"created_at"`
	UserAgent    string       `db:"user_agent"`
	IPAddress    string       `db:"ip_address"`
}

func (r sessionRow) toSession() *Session {
	session := &Session{
		ID:     r.ID,
		UserID: r.UserID,
		Credentials: Credentials{
			AccessToken:  r.AccessToken,
			RefreshToken: r.RefreshToken,
		},
		ExpiresAt: r.ExpiresAt,
		CreatedAt: r.CreatedAt,
		UserAgent: r.UserAgent,
		IPAddress: r.IPAddress,
	}
	if r.TokenExpiry.Valid {
		session.Credentials.TokenExpiry = r.TokenExpiry.Time
	}
	if r.Scopes != "" {
		session.Credentials.Scopes = strings.Split(r.Scopes, " ")
	}
	return session
}

// FindUserByOAuth looks up a user by their OAuth provider and provider ID.
func (r *PostgresRepository) FindUserByOAuth(ctx context.Context, provider, providerID string) (*User, error) {
	const query = `
		SELECT id, email, name, picture_url, locale, oauth_provider, oauth_provider_id, created_at, updated_at, last_login_at
		FROM users
		WHERE oauth_provider = $1 AND oauth_provider_id = $2
	`

	var row userRow
	if err := r.db.GetContext(ctx, &row, query, provider, providerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return row.toUser(), nil
}

// CreateUser inserts a new user into the database.
func (r *PostgresRepository) CreateUser(ctx context.Context, user User) (User, error) {
	const query = `
		INSERT INTO users (id, email, name, picture_url, locale, oauth_provider, oauth_provider_id, created_at, updated_at, last_login_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.PictureURL,
		user.Locale,
		user.OAuthProvider,
		user.OAuthProviderID,
		user.CreatedAt,
		user.UpdatedAt,
		user.LastLoginAt,
	)
	if err != nil {
		return User{}, err
	}

	return user, nil
}

// UpdateUserLogin updates the user's last login time and refreshes profile data.
func (r *PostgresRepository) UpdateUserLogin(ctx context.Context, id uuid.UUID, name, pictureURL, locale string) error {
	const query = `
		UPDATE users
		SET name = $2, picture_url = $3, locale = $4, last_login_at = $5, updated_at = $5
		WHERE id = $1
	`

	now := time.Now()
	_, err := r.db.ExecContext(ctx, query, id, name, pictureURL, locale, now)
	return err
}

// CreateSession inserts a new session into the database.
func (r *PostgresRepository) CreateSession(ctx context.Context, session Session, tokenHash string) error {
	const query = `
		INSERT INTO sessions (id, user_id, token_hash, access_token, refresh_token, token_expiry, scopes, expires_at, created_at, user_agent, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	var expiry sql.NullTime
	if !session.Credentials.TokenExpiry.IsZero() {
		expiry = sql.NullTime{Time: session.Credentials.TokenExpiry, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		tokenHash,
		session.Credentials.AccessToken,
		session.Credentials.RefreshToken,
		expiry,
		strings.Join(session.Credentials.Scopes, " "),
		session.ExpiresAt,
		session.CreatedAt,
		session.UserAgent,
		session.IPAddress,
	)
	return err
}

// FindSessionByTokenHash looks up a session and its user by the session token hash.
func (r *PostgresRepository) FindSessionByTokenHash(ctx context.Context, tokenHash string) (*Session, *User, error) {
	const query = `
		SELECT
			s.id, s.user_id, s.access_token, s.refresh_token, s.token_expiry, s.scopes,
			s.expires_at, s.created_at, s.user_agent, s.ip_address,
			u.id AS user_id_u, u.email, u.name, u.picture_url, u.locale,
			u.oauth_provider, u.oauth_provider_id, u.created_at AS user_created_at,
			u.updated_at AS user_updated_at, u.last_login_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token_hash = $1
	`

	var row struct {
		sessionRow
		UserIDU       uuid.UUID `db:"user_id_u"`
		Email         string    `db:"email"`
		Name          string    `db:"name"`
		PictureURL    string    `db:"picture_url"`
		Locale        string    `db:"locale"`
		OAuthProvider string    `db:"oauth_provider"`
		OAuthProvID   string    `db:"oauth_provider_id"`
		UserCreatedAt time.Time `db:"user_created_at"`
		UserUpdatedAt time.Time `db:"user_updated_at"`
		LastLoginAt   time.Time `db:"last_login_at"`
	}

	if err := r.db.GetContext(ctx, &row, query, tokenHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	user := &User{
		ID:              row.UserIDU,
		Email:           row.Email,
		Name:            row.Name,
		PictureURL:      row.PictureURL,
		Locale:          row.Locale,
		OAuthProvider:   row.OAuthProvider,
		OAuthProviderID: row.OAuthProvID,
		CreatedAt:       row.UserCreatedAt,
		UpdatedAt:       row.UserUpdatedAt,
		LastLoginAt:     row.LastLoginAt,
	}

	return row.toSession(), user, nil
}

// UpdateSessionCredentials overwrites the access token stored for a session.
func (r *PostgresRepository) UpdateSessionCredentials(ctx context.Context, id uuid.UUID, accessToken string, expiry time.Time) error {
	const query = `
		UPDATE sessions
		SET access_token = $2, token_expiry = $3
		WHERE id = $1
	`

	var tokenExpiry sql.NullTime
	if !expiry.IsZero() {
		tokenExpiry = sql.NullTime{Time: expiry, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query, id, accessToken, tokenExpiry)
	return err
}

// DeleteSession removes a session by ID.
func (r *PostgresRepository) DeleteSession(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

// DeleteExpiredSessions removes all sessions past their expiry.
func (r *PostgresRepository) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < NOW()`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
