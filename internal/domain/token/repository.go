package token

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines persistence for access tokens. Tokens are revoked,
// never deleted, so the audit trail stays intact.
type Repository interface {
	Create(ctx context.Context, t *AccessToken) error
	GetByHash(ctx context.Context, tokenHash string) (*AccessToken, error)
	MarkUsed(ctx context.Context, tokenID uuid.UUID, at time.Time) error
	Revoke(ctx context.Context, tokenID uuid.UUID, at time.Time) error
	RevokeActive(ctx context.Context, workOrderID uuid.UUID, contractorEmail string, at time.Time) (int, error)
	RevokeAllForWorkOrder(ctx context.Context, workOrderID uuid.UUID, at time.Time) (int, error)
}
