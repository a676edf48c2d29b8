package workorder

import (
	"context"

	"github.com/google/uuid"
)

// Filter controls work order listing.
type Filter struct {
	Status          *Status
	ContractorEmail *string
}

// Repository defines persistence for work orders. UpdateVersioned is the
// single mutation point: a compare-and-swap keyed on (work_order_id,
// version) that bumps the version on success and returns
// ErrVersionConflict when the persisted version has moved.
type Repository interface {
	Create(ctx context.Context, w *WorkOrder) error
	GetByID(ctx context.Context, workOrderID uuid.UUID) (*WorkOrder, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]*WorkOrder, error)
	UpdateVersioned(ctx context.Context, w *WorkOrder, expectedVersion int64) error
}
