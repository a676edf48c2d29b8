package postgres

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/alphinus/kewa-app-sub000/internal/domain/workorder"
)

// WorkOrderRepository implements workorder.Repository.
type WorkOrderRepository struct {
	pool *pgxpool.Pool
}

func NewWorkOrderRepository(pool *pgxpool.Pool) *WorkOrderRepository {
	return &WorkOrderRepository{pool: pool}
}

const workOrderColumns = `
	id, work_order_id, title, description, contractor_email, status,
	estimated_cost::text, requested_start_date, requested_end_date,
	counter_offer_status, proposed_cost::text, proposed_start_date, proposed_end_date,
	contractor_notes, rejection_reason, acceptance_deadline, version,
	created_at, updated_at,
	sent_at, viewed_at, accepted_at, rejected_at, started_at, completed_at, inspected_at, closed_at`

func (r *WorkOrderRepository) Create(ctx context.Context, w *workorder.WorkOrder) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO work_orders
		(work_order_id, title, description, contractor_email, status,
		 estimated_cost, requested_start_date, requested_end_date,
		 counter_offer_status, proposed_cost, proposed_start_date, proposed_end_date,
		 contractor_notes, rejection_reason, acceptance_deadline, version,
		 created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
	`, w.WorkOrderID, w.Title, w.Description, nullableString(w.ContractorEmail), w.Status,
		w.EstimatedCost.String(), w.RequestedStartDate, w.RequestedEndDate,
		w.CounterOfferStatus, decimalOrNil(w.ProposedCost), w.ProposedStartDate, w.ProposedEndDate,
		w.ContractorNotes, w.RejectionReason, w.AcceptanceDeadline, w.Version,
		w.CreatedAt, w.UpdatedAt)
	return err
}

func (r *WorkOrderRepository) GetByID(ctx context.Context, workOrderID uuid.UUID) (*workorder.WorkOrder, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+workOrderColumns+`
		FROM work_orders WHERE work_order_id=$1
	`, workOrderID)
	return scanWorkOrder(row)
}

func (r *WorkOrderRepository) List(ctx context.Context, filter workorder.Filter, limit, offset int) ([]*workorder.WorkOrder, error) {
	query := `SELECT ` + workOrderColumns + ` FROM work_orders`
	args := []interface{}{}
	if filter.Status != nil {
		query += " WHERE status=$1"
		args = append(args, *filter.Status)
	}
	if filter.ContractorEmail != nil {
		if len(args) == 0 {
			query += " WHERE contractor_email=$1"
		} else {
			query += " AND contractor_email=$2"
		}
		args = append(args, *filter.ContractorEmail)
	}
	query += " ORDER BY created_at DESC LIMIT $" + itoa(len(args)+1) + " OFFSET $" + itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var orders []*workorder.WorkOrder
	for rows.Next() {
		w, err := scanWorkOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, w)
	}
	return orders, rows.Err()
}

// UpdateVersioned writes all mutable fields in a single compare-and-swap
// keyed on (work_order_id, version). Zero matched rows after a successful
// read means a concurrent writer won.
func (r *WorkOrderRepository) UpdateVersioned(ctx context.Context, w *workorder.WorkOrder, expectedVersion int64) error {
	now := time.Now().UTC()
	res, err := r.pool.Exec(ctx, `
		UPDATE work_orders SET
			contractor_email=$1, status=$2,
			estimated_cost=$3, requested_start_date=$4, requested_end_date=$5,
			counter_offer_status=$6, proposed_cost=$7, proposed_start_date=$8, proposed_end_date=$9,
			contractor_notes=$10, rejection_reason=$11, acceptance_deadline=$12,
			sent_at=$13, viewed_at=$14, accepted_at=$15, rejected_at=$16,
			started_at=$17, completed_at=$18, inspected_at=$19, closed_at=$20,
			version=version+1, updated_at=$21
		WHERE work_order_id=$22 AND version=$23
	`, nullableString(w.ContractorEmail), w.Status,
		w.EstimatedCost.String(), w.RequestedStartDate, w.RequestedEndDate,
		w.CounterOfferStatus, decimalOrNil(w.ProposedCost), w.ProposedStartDate, w.ProposedEndDate,
		w.ContractorNotes, w.RejectionReason, w.AcceptanceDeadline,
		w.SentAt, w.ViewedAt, w.AcceptedAt, w.RejectedAt,
		w.StartedAt, w.CompletedAt, w.InspectedAt, w.ClosedAt,
		now, w.WorkOrderID, expectedVersion)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return workorder.ErrVersionConflict
	}
	w.Version = expectedVersion + 1
	w.UpdatedAt = now
	return nil
}

func scanWorkOrder(row pgx.Row) (*workorder.WorkOrder, error) {
	var w workorder.WorkOrder
	var contractorEmail *string
	var estimatedCost string
	var proposedCost *string
	if err := row.Scan(
		&w.ID, &w.WorkOrderID, &w.Title, &w.Description, &contractorEmail, &w.Status,
		&estimatedCost, &w.RequestedStartDate, &w.RequestedEndDate,
		&w.CounterOfferStatus, &proposedCost, &w.ProposedStartDate, &w.ProposedEndDate,
		&w.ContractorNotes, &w.RejectionReason, &w.AcceptanceDeadline, &w.Version,
		&w.CreatedAt, &w.UpdatedAt,
		&w.SentAt, &w.ViewedAt, &w.AcceptedAt, &w.RejectedAt,
		&w.StartedAt, &w.CompletedAt, &w.InspectedAt, &w.ClosedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if contractorEmail != nil {
		w.ContractorEmail = *contractorEmail
	}
	cost, err := decimal.NewFromString(estimatedCost)
	if err != nil {
		return nil, err
	}
	w.EstimatedCost = cost
	if proposedCost != nil {
		p, err := decimal.NewFromString(*proposedCost)
		if err != nil {
			return nil, err
		}
		w.ProposedCost = &p
	}
	return &w, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func decimalOrNil(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return d.String()
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
