package workorder

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/alphinus/kewa-app-sub000/internal/domain/audit"
	"github.com/alphinus/kewa-app-sub000/internal/domain/notification"
	"github.com/alphinus/kewa-app-sub000/internal/domain/token"
	"github.com/alphinus/kewa-app-sub000/internal/domain/workorder"
)

// LinkSender delivers the magic link to the contractor. Email delivery is an
// external collaborator; implementations must never log the plaintext token.
type LinkSender interface {
	SendWorkOrderLink(ctx context.Context, email string, workOrderID uuid.UUID, plaintext string, expiresAt time.Time) error
}

// CreateInput carries operator-authored baseline terms.
type CreateInput struct {
	Title              string
	Description        string
	EstimatedCost      decimal.Decimal
	RequestedStartDate time.Time
	RequestedEndDate   time.Time
	AcceptanceDeadline *time.Time
}

// Service handles the work order lifecycle outside the negotiation
// sub-protocol: operator operations plus the contractor progress
// transitions reached through the portal.
type Service struct {
	orders  workorder.Repository
	tokens  token.Repository
	auditor audit.Recorder
	hub     notification.Hub
	links   LinkSender
	linkTTL time.Duration
	logger  zerolog.Logger
}

// NewService creates a work order service.
func NewService(orders workorder.Repository, tokens token.Repository, auditor audit.Recorder, hub notification.Hub, links LinkSender, linkTTL time.Duration, logger zerolog.Logger) *Service {
	return &Service{
		orders:  orders,
		tokens:  tokens,
		auditor: auditor,
		hub:     hub,
		links:   links,
		linkTTL: linkTTL,
		logger:  logger.With().Str("service", "workorder").Logger(),
	}
}

// CreateDraft creates a new draft work order.
func (s *Service) CreateDraft(ctx context.Context, in CreateInput, actor string) (*workorder.WorkOrder, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("title is required")
	}
	if in.RequestedEndDate.Before(in.RequestedStartDate) {
		return nil, fmt.Errorf("requested end date precedes start date")
	}
	now := time.Now().UTC()
	wo := &workorder.WorkOrder{
		WorkOrderID:        uuid.New(),
		Title:              strings.TrimSpace(in.Title),
		Description:        in.Description,
		Status:             workorder.StatusDraft,
		EstimatedCost:      in.EstimatedCost,
		RequestedStartDate: in.RequestedStartDate,
		RequestedEndDate:   in.RequestedEndDate,
		AcceptanceDeadline: in.AcceptanceDeadline,
		CounterOfferStatus: workorder.CounterOfferNone,
		Version:            1,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.orders.Create(ctx, wo); err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, &audit.Entry{
		WorkOrderID: wo.WorkOrderID,
		Actor:       actor,
		Action:      audit.ActionCreated,
		ToStatus:    string(workorder.StatusDraft),
	})
	return wo, nil
}

// Send assigns the contractor, moves the draft to sent and issues a fresh
// magic link. Any prior active token for the same recipient is revoked
// first, so at most one active token exists per (work order, email) pair.
func (s *Service) Send(ctx context.Context, workOrderID uuid.UUID, expectedVersion int64, contractorEmail, actor string) (*workorder.WorkOrder, error) {
	wo, err := s.load(ctx, workOrderID, expectedVersion)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	next, err := workorder.Send(*wo, now)
	if err != nil {
		return nil, err
	}
	next.ContractorEmail = contractorEmail
	if err := s.orders.UpdateVersioned(ctx, &next, expectedVersion); err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, &audit.Entry{
		WorkOrderID: next.WorkOrderID,
		Actor:       actor,
		Action:      audit.ActionSent,
		FromStatus:  string(workorder.StatusDraft),
		ToStatus:    string(workorder.StatusSent),
		Detail:      map[string]string{"contractorEmail": contractorEmail},
	})
	if _, err := s.issueLink(ctx, &next, actor); err != nil {
		return nil, err
	}
	return &next, nil
}

// ReissueLink revokes the recipient's outstanding link and issues a new one.
// Only meaningful for orders the contractor can still act on.
func (s *Service) ReissueLink(ctx context.Context, workOrderID uuid.UUID, actor string) (*token.AccessToken, error) {
	wo, err := s.orders.GetByID(ctx, workOrderID)
	if err != nil {
		return nil, err
	}
	if wo == nil {
		return nil, workorder.ErrNotFound
	}
	if wo.Status == workorder.StatusDraft {
		return nil, &workorder.IllegalTransitionError{From: wo.Status, Event: workorder.EventSend}
	}
	if wo.ClosedToContractor() {
		return nil, &workorder.IllegalTransitionError{From: wo.Status, Event: workorder.EventSend}
	}
	return s.issueLink(ctx, wo, actor)
}

// Reject records the contractor's outright rejection with its reason.
func (s *Service) Reject(ctx context.Context, workOrderID uuid.UUID, expectedVersion int64, reason, actor string) (*workorder.WorkOrder, error) {
	wo, err := s.apply(ctx, workOrderID, expectedVersion, actor, audit.ActionRejected, func(w workorder.WorkOrder, now time.Time) (workorder.WorkOrder, error) {
		return workorder.Reject(w, reason, now)
	})
	if err != nil {
		return nil, err
	}
	s.notify(notification.EventWorkOrderRejected, wo)
	return wo, nil
}

// Start records that the contractor began the work.
func (s *Service) Start(ctx context.Context, workOrderID uuid.UUID, expectedVersion int64, actor string) (*workorder.WorkOrder, error) {
	wo, err := s.apply(ctx, workOrderID, expectedVersion, actor, audit.ActionStarted, workorder.Start)
	if err != nil {
		return nil, err
	}
	s.notify(notification.EventWorkOrderProgressed, wo)
	return wo, nil
}

// Block records a blocking issue.
func (s *Service) Block(ctx context.Context, workOrderID uuid.UUID, expectedVersion int64, actor string) (*workorder.WorkOrder, error) {
	wo, err := s.apply(ctx, workOrderID, expectedVersion, actor, audit.ActionBlocked, func(w workorder.WorkOrder, _ time.Time) (workorder.WorkOrder, error) {
		return workorder.Block(w)
	})
	if err != nil {
		return nil, err
	}
	s.notify(notification.EventWorkOrderProgressed, wo)
	return wo, nil
}

// Unblock resumes blocked work.
func (s *Service) Unblock(ctx context.Context, workOrderID uuid.UUID, expectedVersion int64, actor string) (*workorder.WorkOrder, error) {
	wo, err := s.apply(ctx, workOrderID, expectedVersion, actor, audit.ActionUnblocked, func(w workorder.WorkOrder, _ time.Time) (workorder.WorkOrder, error) {
		return workorder.Unblock(w)
	})
	if err != nil {
		return nil, err
	}
	s.notify(notification.EventWorkOrderProgressed, wo)
	return wo, nil
}

// MarkDone records completion of the work.
func (s *Service) MarkDone(ctx context.Context, workOrderID uuid.UUID, expectedVersion int64, actor string) (*workorder.WorkOrder, error) {
	wo, err := s.apply(ctx, workOrderID, expectedVersion, actor, audit.ActionDone, workorder.MarkDone)
	if err != nil {
		return nil, err
	}
	s.notify(notification.EventWorkOrderProgressed, wo)
	return wo, nil
}

// Inspect records the operator inspection.
func (s *Service) Inspect(ctx context.Context, workOrderID uuid.UUID, expectedVersion int64, actor string) (*workorder.WorkOrder, error) {
	return s.apply(ctx, workOrderID, expectedVersion, actor, audit.ActionInspected, workorder.Inspect)
}

// Close finalizes the order and revokes all outstanding links; a closed
// order must invalidate them immediately, without waiting for their TTL.
func (s *Service) Close(ctx context.Context, workOrderID uuid.UUID, expectedVersion int64, actor string) (*workorder.WorkOrder, error) {
	wo, err := s.apply(ctx, workOrderID, expectedVersion, actor, audit.ActionClosed, workorder.Close)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	n, err := s.tokens.RevokeAllForWorkOrder(ctx, workOrderID, now)
	if err != nil {
		s.logger.Error().Err(err).Str("work_order_id", workOrderID.String()).Msg("failed to revoke links on close")
	} else if n > 0 {
		s.auditor.Record(ctx, &audit.Entry{
			WorkOrderID: workOrderID,
			Actor:       actor,
			Action:      audit.ActionLinkRevoked,
			Detail:      map[string]int{"revoked": n},
		})
	}
	return wo, nil
}

// Get retrieves a work order by ID.
func (s *Service) Get(ctx context.Context, workOrderID uuid.UUID) (*workorder.WorkOrder, error) {
	return s.orders.GetByID(ctx, workOrderID)
}

// List returns work orders.
func (s *Service) List(ctx context.Context, filter workorder.Filter, limit, offset int) ([]*workorder.WorkOrder, error) {
	return s.orders.List(ctx, filter, limit, offset)
}

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

func (s *Service) apply(ctx context.Context, workOrderID uuid.UUID, expectedVersion int64, actor string, action audit.Action, fn func(workorder.WorkOrder, time.Time) (workorder.WorkOrder, error)) (*workorder.WorkOrder, error) {
	wo, err := s.load(ctx, workOrderID, expectedVersion)
	if err != nil {
		return nil, err
	}
	next, err := fn(*wo, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.orders.UpdateVersioned(ctx, &next, expectedVersion); err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, &audit.Entry{
		WorkOrderID: next.WorkOrderID,
		Actor:       actor,
		Action:      action,
		FromStatus:  string(wo.Status),
		ToStatus:    string(next.Status),
	})
	return &next, nil
}

func (s *Service) issueLink(ctx context.Context, wo *workorder.WorkOrder, actor string) (*token.AccessToken, error) {
	if wo.ContractorEmail == "" {
		return nil, fmt.Errorf("work order %s has no contractor assigned", wo.WorkOrderID)
	}
	now := time.Now().UTC()
	revoked, err := s.tokens.RevokeActive(ctx, wo.WorkOrderID, wo.ContractorEmail, now)
	if err != nil {
		return nil, fmt.Errorf("failed to revoke prior links: %w", err)
	}
	plaintext, hash, err := token.Mint()
	if err != nil {
		return nil, fmt.Errorf("failed to mint link token: %w", err)
	}
	tok := &token.AccessToken{
		TokenID:         uuid.New(),
		TokenHash:       hash,
		WorkOrderID:     wo.WorkOrderID,
		ContractorEmail: wo.ContractorEmail,
		IssuedAt:        now,
		ExpiresAt:       now.Add(s.linkTTL),
	}
	// The store holds a unique partial index on active tokens per
	// (work order, contractor); a concurrent issuer loses here.
	if err := s.tokens.Create(ctx, tok); err != nil {
		return nil, fmt.Errorf("failed to store link token: %w", err)
	}
	tokenID := tok.TokenID
	s.auditor.Record(ctx, &audit.Entry{
		WorkOrderID: wo.WorkOrderID,
		TokenID:     &tokenID,
		Actor:       actor,
		Action:      audit.ActionLinkIssued,
		Detail:      map[string]interface{}{"revokedPrior": revoked, "expiresAt": tok.ExpiresAt},
	})
	if err := s.links.SendWorkOrderLink(ctx, wo.ContractorEmail, wo.WorkOrderID, plaintext, tok.ExpiresAt); err != nil {
		// Delivery is an external collaborator; the link can be reissued.
		s.logger.Warn().Err(err).Str("work_order_id", wo.WorkOrderID.String()).Msg("failed to deliver work order link")
	}
	s.logger.Info().
		Str("work_order_id", wo.WorkOrderID.String()).
		Str("token_id", tok.TokenID.String()).
		Int("revoked_prior", revoked).
		Msg("work order link issued")
	return tok, nil
}

func (s *Service) notify(event string, wo *workorder.WorkOrder) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"workOrderId": wo.WorkOrderID.String(),
		"status":      wo.Status,
		"version":     wo.Version,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to marshal work order notification")
		return
	}
	s.hub.Broadcast(notification.NewStreamMessage(event, payload))
}
