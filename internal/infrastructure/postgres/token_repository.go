package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alphinus/kewa-app-sub000/internal/domain/token"
)

// TokenRepository implements token.Repository.
type TokenRepository struct {
	pool *pgxpool.Pool
}

func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

func (r *TokenRepository) Create(ctx context.Context, t *token.AccessToken) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO access_tokens
		(token_id, token_hash, work_order_id, contractor_email, issued_at, expires_at, revoked_at, last_used_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, t.TokenID, t.TokenHash, t.WorkOrderID, t.ContractorEmail, t.IssuedAt, t.ExpiresAt, t.RevokedAt, t.LastUsedAt)
	return err
}

func (r *TokenRepository) GetByHash(ctx context.Context, tokenHash string) (*token.AccessToken, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, token_id, token_hash, work_order_id, contractor_email, issued_at, expires_at, revoked_at, last_used_at
		FROM access_tokens WHERE token_hash=$1
	`, tokenHash)
	var t token.AccessToken
	if err := row.Scan(&t.ID, &t.TokenID, &t.TokenHash, &t.WorkOrderID, &t.ContractorEmail, &t.IssuedAt, &t.ExpiresAt, &t.RevokedAt, &t.LastUsedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TokenRepository) MarkUsed(ctx context.Context, tokenID uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE access_tokens SET last_used_at=$1 WHERE token_id=$2`, at, tokenID)
	return err
}

func (r *TokenRepository) Revoke(ctx context.Context, tokenID uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE access_tokens SET revoked_at=$1 WHERE token_id=$2 AND revoked_at IS NULL
	`, at, tokenID)
	return err
}

func (r *TokenRepository) RevokeActive(ctx context.Context, workOrderID uuid.UUID, contractorEmail string, at time.Time) (int, error) {
	res, err := r.pool.Exec(ctx, `
		UPDATE access_tokens SET revoked_at=$1
		WHERE work_order_id=$2 AND contractor_email=$3 AND revoked_at IS NULL
	`, at, workOrderID, contractorEmail)
	if err != nil {
		return 0, err
	}
	return int(res.RowsAffected()), nil
}

func (r *TokenRepository) RevokeAllForWorkOrder(ctx context.Context, workOrderID uuid.UUID, at time.Time) (int, error) {
	res, err := r.pool.Exec(ctx, `
		UPDATE access_tokens SET revoked_at=$1 WHERE work_order_id=$2 AND revoked_at IS NULL
	`, at, workOrderID)
	if err != nil {
		return 0, err
	}
	return int(res.RowsAffected()), nil
}
