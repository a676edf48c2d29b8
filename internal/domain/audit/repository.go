package audit

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence for audit events. Append and read only.
type Repository interface {
	Create(ctx context.Context, ev *Event) error
	ListByWorkOrder(ctx context.Context, workOrderID uuid.UUID, limit int) ([]*Event, error)
}

// Recorder emits one event per state-affecting call. Implementations must
// never fail the calling operation.
type Recorder interface {
	Record(ctx context.Context, entry *Entry)
}
