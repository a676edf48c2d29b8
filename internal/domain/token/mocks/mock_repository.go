package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/alphinus/kewa-app-sub000/internal/domain/token"
)

// MockRepository is a mock implementation of token.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, t *token.AccessToken) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockRepository) GetByHash(ctx context.Context, tokenHash string) (*token.AccessToken, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*token.AccessToken), args.Error(1)
}

func (m *MockRepository) MarkUsed(ctx context.Context, tokenID uuid.UUID, at time.Time) error {
	args := m.Called(ctx, tokenID, at)
	return args.Error(0)
}

func (m *MockRepository) Revoke(ctx context.Context, tokenID uuid.UUID, at time.Time) error {
	args := m.Called(ctx, tokenID, at)
	return args.Error(0)
}

func (m *MockRepository) RevokeActive(ctx context.Context, workOrderID uuid.UUID, contractorEmail string, at time.Time) (int, error) {
	args := m.Called(ctx, workOrderID, contractorEmail, at)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) RevokeAllForWorkOrder(ctx context.Context, workOrderID uuid.UUID, at time.Time) (int, error) {
	args := m.Called(ctx, workOrderID, at)
	return args.Int(0), args.Error(1)
}
