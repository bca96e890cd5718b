package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-edu-platform/internal/model"
)

type OAuthRepository struct {
	pool *pgxpool.Pool
}

func NewOAuthRepository(pool *pgxpool.Pool) *OAuthRepository {
	return &OAuthRepository{pool: pool}
}

func (r *OAuthRepository) FindByProviderUserID(ctx context.Context, provider string, providerUserID string) (model.OAuthAccount, error) {
	var a model.OAuthAccount
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, provider, provider_user_id, email, full_name, picture, created_at, updated_at
		 FROM oauth_accounts WHERE provider = $1 AND provider_user_id = $2`,
		provider, providerUserID).
		Scan(&a.ID, &a.UserID, &a.Provider, &a.ProviderUserID, &a.Email, &a.FullName, &a.Picture,
			&a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.OAuthAccount{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.OAuthAccount{}, fmt.Errorf("find oauth account: %w", err)
	}
	return a, nil
}

func (r *OAuthRepository) Create(ctx context.Context, a model.OAuthAccount) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO oauth_accounts (id, user_id, provider, provider_user_id, email, full_name, picture, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.UserID, a.Provider, a.ProviderUserID, a.Email, a.FullName, a.Picture, a.CreatedAt, a.UpdatedAt)
	if isUniqueViolation(err) {
		return model.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("create oauth account: %w", err)
	}
	return nil
}

// UpdateProfile refreshes the provider-supplied profile fields on login.
func (r *OAuthRepository) UpdateProfile(ctx context.Context, id string, email *string, fullName *string, picture *string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE oauth_accounts
		 SET email = COALESCE($2, email),
		     full_name = COALESCE($3, full_name),
		     picture = COALESCE($4, picture),
		     updated_at = $5
		 WHERE id = $1`,
		id, email, fullName, picture, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update oauth account: %w", err)
	}
	return nil
}
