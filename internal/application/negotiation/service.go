package negotiation

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/alphinus/kewa-app-sub000/internal/domain/audit"
	"github.com/alphinus/kewa-app-sub000/internal/domain/notification"
	"github.com/alphinus/kewa-app-sub000/internal/domain/workorder"
)

// CounterDecision is the operator's verdict on a pending counter-offer.
type CounterDecision string

const (
	CounterApproved CounterDecision = "approved"
	CounterRejected CounterDecision = "rejected"
)

// Service orchestrates the counter-offer sub-protocol on top of the viewed
// state. Every mutation is a compare-and-swap on (work_order_id,
// expected_version); a losing writer gets workorder.ErrVersionConflict.
type Service struct {
	orders  workorder.Repository
	auditor audit.Recorder
	hub     notification.Hub
	logger  zerolog.Logger
}

// NewService creates a negotiation service.
func NewService(orders workorder.Repository, auditor audit.Recorder, hub notification.Hub, logger zerolog.Logger) *Service {
	return &Service{
		orders:  orders,
		auditor: auditor,
		hub:     hub,
		logger:  logger.With().Str("service", "negotiation").Logger(),
	}
}

// ProposeCounter places the contractor's alternative terms into the single
// pending slot. Requires status=viewed and no proposal currently pending;
// resubmission after a rejected proposal is allowed.
func (s *Service) ProposeCounter(ctx context.Context, workOrderID uuid.UUID, expectedVersion int64, p workorder.Proposal, actor string) (*workorder.WorkOrder, error) {
	wo, err := s.load(ctx, workOrderID, expectedVersion)
	if err != nil {
		return nil, err
	}
	next, err := workorder.SubmitCounterOffer(*wo, p, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.orders.UpdateVersioned(ctx, &next, expectedVersion); err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, &audit.Entry{
		WorkOrderID: next.WorkOrderID,
		Actor:       actor,
		Action:      audit.ActionCounterProposed,
		FromStatus:  string(workorder.StatusViewed),
		ToStatus:    string(next.Status),
		Detail:      proposalDetail(next),
	})
	s.notify(notification.EventCounterSubmitted, &next)
	s.logger.Info().Str("work_order_id", workOrderID.String()).Msg("counter-offer submitted")
	return &next, nil
}

// DecideCounter applies the operator's decision to the pending proposal. On
// approval the proposal is promoted into the baseline and the order becomes
// accepted in the same write; on rejection the order stays viewed and the
// contractor may retry, accept or reject outright.
func (s *Service) DecideCounter(ctx context.Context, workOrderID uuid.UUID, expectedVersion int64, decision CounterDecision, note *string, actor string) (*workorder.WorkOrder, error) {
	wo, err := s.load(ctx, workOrderID, expectedVersion)
	if err != nil {
		return nil, err
	}

	var next workorder.WorkOrder
	action := audit.ActionCounterRejected
	switch decision {
	case CounterApproved:
		next, err = workorder.ApproveCounterOffer(*wo, time.Now().UTC())
		action = audit.ActionCounterApproved
	case CounterRejected:
		next, err = workorder.RejectCounterOffer(*wo)
	default:
		return nil, &workorder.IllegalTransitionError{From: wo.Status, Event: workorder.EventCounterOffer}
	}
	if err != nil {
		return nil, err
	}
	if err := s.orders.UpdateVersioned(ctx, &next, expectedVersion); err != nil {
		return nil, err
	}
	detail := map[string]interface{}{"decision": decision}
	if note != nil {
		detail["note"] = *note
	}
	s.auditor.Record(ctx, &audit.Entry{
		WorkOrderID: next.WorkOrderID,
		Actor:       actor,
		Action:      action,
		FromStatus:  string(wo.Status),
		ToStatus:    string(next.Status),
		Detail:      detail,
	})
	s.notify(notification.EventCounterDecided, &next)
	s.logger.Info().
		Str("work_order_id", workOrderID.String()).
		Str("decision", string(decision)).
		Msg("counter-offer decided")
	return &next, nil
}

// DirectAccept accepts the baseline terms outright. A supplied cost that
// deviates from the baseline is refused; deviations always travel through
// ProposeCounter so the operator sees and approves them explicitly.
func (s *Service) DirectAccept(ctx context.Context, workOrderID uuid.UUID, expectedVersion int64, offeredCost *decimal.Decimal, actor string) (*workorder.WorkOrder, error) {
	wo, err := s.load(ctx, workOrderID, expectedVersion)
	if err != nil {
		return nil, err
	}
	next, err := workorder.AcceptDirect(*wo, offeredCost, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.orders.UpdateVersioned(ctx, &next, expectedVersion); err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, &audit.Entry{
		WorkOrderID: next.WorkOrderID,
		Actor:       actor,
		Action:      audit.ActionAccepted,
		FromStatus:  string(wo.Status),
		ToStatus:    string(next.Status),
	})
	s.notify(notification.EventWorkOrderAccepted, &next)
	s.logger.Info().Str("work_order_id", workOrderID.String()).Msg("work order accepted")
	return &next, nil
}

// load fetches the order and fails fast on a stale expected version. The
// versioned update remains the authoritative check.
func (s *Service) load(ctx context.Context, workOrderID uuid.UUID, expectedVersion int64) (*workorder.WorkOrder, error) {
	wo, err := s.orders.GetByID(ctx, workOrderID)
	if err != nil {
		return nil, err
	}
	if wo == nil {
		return nil, workorder.ErrNotFound
	}
	if wo.Version != expectedVersion {
		return nil, workorder.ErrVersionConflict
	}
	return wo, nil
}

func (s *Service) notify(event string, wo *workorder.WorkOrder) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"workOrderId":        wo.WorkOrderID.String(),
		"status":             wo.Status,
		"counterOfferStatus": wo.CounterOfferStatus,
		"version":            wo.Version,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to marshal negotiation notification")
		return
	}
	s.hub.Broadcast(notification.NewStreamMessage(event, payload))
}

func proposalDetail(wo workorder.WorkOrder) map[string]interface{} {
	detail := map[string]interface{}{}
	if wo.ProposedCost != nil {
		detail["proposedCost"] = wo.ProposedCost.String()
	}
	if wo.ProposedStartDate != nil {
		detail["proposedStartDate"] = wo.ProposedStartDate
	}
	if wo.ProposedEndDate != nil {
		detail["proposedEndDate"] = wo.ProposedEndDate
	}
	if wo.ContractorNotes != nil {
		detail["contractorNotes"] = *wo.ContractorNotes
	}
	return detail
}
