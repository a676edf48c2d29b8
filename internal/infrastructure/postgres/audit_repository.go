package postgres

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alphinus/kewa-app-sub000/internal/domain/audit"
)

// AuditRepository implements audit.Repository.
type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

func (r *AuditRepository) Create(ctx context.Context, ev *audit.Event) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_events
		(event_id, work_order_id, token_id, actor, action, from_status, to_status, detail, signature, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, ev.EventID, ev.WorkOrderID, ev.TokenID, ev.Actor, ev.Action, ev.FromStatus, ev.ToStatus, ev.Detail, ev.Signature, ev.CreatedAt)
	return err
}

func (r *AuditRepository) ListByWorkOrder(ctx context.Context, workOrderID uuid.UUID, limit int) ([]*audit.Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, event_id, work_order_id, token_id, actor, action, from_status, to_status, detail, signature, created_at
		FROM audit_events WHERE work_order_id=$1
		ORDER BY created_at DESC, id DESC LIMIT $2
	`, workOrderID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var events []*audit.Event
	for rows.Next() {
		var ev audit.Event
		var detail json.RawMessage
		if err := rows.Scan(&ev.ID, &ev.EventID, &ev.WorkOrderID, &ev.TokenID, &ev.Actor, &ev.Action, &ev.FromStatus, &ev.ToStatus, &detail, &ev.Signature, &ev.CreatedAt); err != nil {
			return nil, err
		}
		if len(detail) > 0 {
			ev.Detail = detail
		}
		events = append(events, &ev)
	}
	return events, rows.Err()
}
