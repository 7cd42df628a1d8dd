package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/ads-insights-api/infrastructure/database/postgres"
)

const credentialTable = "google_credentials"

// StoredCredential is a user's Google OAuth credential pair. The access token
// is short-lived; the refresh token is the durable part.
type StoredCredential struct {
	UserID               string
	RefreshToken         string
	AccessToken          string
	AccessTokenExpiresAt time.Time
}

// CredentialRepository stores the Google OAuth credentials the token
// refresher works with.
type CredentialRepository interface {
	GetByUserID(userID string) (*StoredCredential, error)
	SaveAccessToken(userID, accessToken string, expiresAt time.Time) error
}

type credentialRepository struct {
	conn *postgres.Connection
}

func NewCredentialRepository(conn *postgres.Connection) CredentialRepository {
	return &credentialRepository{
		conn: conn,
	}
}

// GetByUserID returns the stored credential, or nil when the user never
// connected a Google Ads account.
func (r *credentialRepository) GetByUserID(userID string) (*StoredCredential, error) {
	query, args, err := squirrel.
		Select("user_id", "refresh_token", "access_token", "access_token_expires_at").
		From(credentialTable).
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building credential query: %w", err)
	}

	cred := &StoredCredential{}
	var accessToken sql.NullString
	var expiresAt sql.NullTime

	row := r.conn.QueryRow(query, args...)
	if err := row.Scan(&cred.UserID, &cred.RefreshToken, &accessToken, &expiresAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error scanning credential: %w", err)
	}

	cred.AccessToken = accessToken.String
	cred.AccessTokenExpiresAt = expiresAt.Time

	return cred, nil
}

// SaveAccessToken persists a freshly minted access token and its expiry.
func (r *credentialRepository) SaveAccessToken(userID, accessToken string, expiresAt time.Time) error {
	query, args, err := squirrel.
		Update(credentialTable).
		Set("access_token", accessToken).
		Set("access_token_expires_at", expiresAt).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building credential update: %w", err)
	}

	if _, err := r.conn.Exec(query, args...); err != nil {
		return fmt.Errorf("error saving access token: %w", err)
	}

	return nil
}
