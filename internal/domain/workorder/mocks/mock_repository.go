package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/alphinus/kewa-app-sub000/internal/domain/workorder"
)

// MockRepository is a mock implementation of workorder.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, w *workorder.WorkOrder) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, workOrderID uuid.UUID) (*workorder.WorkOrder, error) {
	args := m.Called(ctx, workOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workorder.WorkOrder), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, filter workorder.Filter, limit, offset int) ([]*workorder.WorkOrder, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*workorder.WorkOrder), args.Error(1)
}

func (m *MockRepository) UpdateVersioned(ctx context.Context, w *workorder.WorkOrder, expectedVersion int64) error {
	args := m.Called(ctx, w, expectedVersion)
	return args.Error(0)
}
