package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-session-service/internal/domain"
)

// TokenVerifier resolves opaque bearer tokens from the auth_tokens table.
type TokenVerifier struct {
	pool *pgxpool.Pool
}

func NewTokenVerifier(pool *pgxpool.Pool) *TokenVerifier {
	return &TokenVerifier{pool: pool}
}

func (v *TokenVerifier) Verify(ctx context.Context, token string) (domain.Principal, error) {
	var principal domain.Principal
	err := v.pool.QueryRow(ctx,
		`SELECT role, user_id FROM auth_tokens WHERE token = $1`, token,
	).Scan(&principal.Role, &principal.UserID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Principal{}, domain.ErrInvalidToken
	}
	if err != nil {
		return domain.Principal{}, fmt.Errorf("verify token: %w", err)
	}
	return principal, nil
}
