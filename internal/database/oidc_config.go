package database

import (
	"context"
	"fmt"
	"time"

	"github.com/gideonapp/engage/internal/models"
	"github.com/google/uuid"
)

// OIDCConfigRepository handles OIDC provider configuration in the database.
type OIDCConfigRepository struct {
	db *DB
}

// NewOIDCConfigRepository creates a new OIDC config repository.
func NewOIDCConfigRepository(db *DB) *OIDCConfigRepository {
	return &OIDCConfigRepository{db: db}
}

// GetByProvider retrieves configuration for a named provider.
func (r *OIDCConfigRepository) GetByProvider(ctx context.Context, provider string) (*models.OIDCConfig, error) {
	c := &models.OIDCConfig{}
	query := `
		SELECT id, provider, issuer, client_id, client_secret, redirect_uri, jwks_url, created_at, updated_at
		FROM oidc_config
		WHERE provider = $1
	`

	err := r.db.QueryRowContext(ctx, query, provider).Scan(
		&c.ID, &c.Provider, &c.Issuer, &c.ClientID, &c.ClientSecret,
		&c.RedirectURI, &c.JWKSUrl, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get oidc config: %w", err)
	}
	return c, nil
}

// Upsert creates or replaces a provider's configuration.
func (r *OIDCConfigRepository) Upsert(ctx context.Context, c *models.OIDCConfig) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	query := `
		INSERT INTO oidc_config (id, provider, issuer, client_id, client_secret, redirect_uri, jwks_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (provider) DO UPDATE SET
			issuer = EXCLUDED.issuer,
			client_id = EXCLUDED.client_id,
			client_secret = EXCLUDED.client_secret,
			redirect_uri = EXCLUDED.redirect_uri,
			jwks_url = EXCLUDED.jwks_url,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		c.ID, c.Provider, c.Issuer, c.ClientID, c.ClientSecret,
		c.RedirectURI, c.JWKSUrl, now, now,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert oidc config: %w", err)
	}
	return nil
}

// List returns every configured provider.
func (r *OIDCConfigRepository) List(ctx context.Context) ([]*models.OIDCConfig, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, provider, issuer, client_id, client_secret, redirect_uri, jwks_url, created_at, updated_at
		FROM oidc_config ORDER BY provider
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list oidc configs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []*models.OIDCConfig
	for rows.Next() {
		c := &models.OIDCConfig{}
		if err := rows.Scan(&c.ID, &c.Provider, &c.Issuer, &c.ClientID, &c.ClientSecret, &c.RedirectURI, &c.JWKSUrl, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan oidc config: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
