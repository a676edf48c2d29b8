package access

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/alphinus/kewa-app-sub000/internal/domain/audit"
	"github.com/alphinus/kewa-app-sub000/internal/domain/notification"
	"github.com/alphinus/kewa-app-sub000/internal/domain/token"
	"github.com/alphinus/kewa-app-sub000/internal/domain/workorder"
)

// Kind classifies the outcome of resolving a presented token. Every kind
// other than ok is an expected outcome, not an error: the caller picks the
// user-visible recovery action from it.
type Kind string

const (
	KindOK              Kind = "ok"
	KindNotFound        Kind = "not_found"
	KindExpired         Kind = "expired"
	KindRevoked         Kind = "revoked"
	KindWorkOrderClosed Kind = "work_order_closed"
)

// Decision is the result of resolving a token against its work order. The
// snapshot is attached only on ok; a dead link reveals nothing.
type Decision struct {
	Kind            Kind
	WorkOrder       *workorder.WorkOrder
	TokenID         uuid.UUID
	ContractorEmail string
}

func (d *Decision) OK() bool {
	return d.Kind == KindOK
}

// Service resolves presented tokens into access decisions. Usability of a
// token depends on its own expiry and revocation and on the referenced work
// order's lifecycle state.
type Service struct {
	tokens  token.Repository
	orders  workorder.Repository
	auditor audit.Recorder
	hub     notification.Hub
	logger  zerolog.Logger
}

// NewService creates an access service.
func NewService(tokens token.Repository, orders workorder.Repository, auditor audit.Recorder, hub notification.Hub, logger zerolog.Logger) *Service {
	return &Service{
		tokens:  tokens,
		orders:  orders,
		auditor: auditor,
		hub:     hub,
		logger:  logger.With().Str("service", "access").Logger(),
	}
}

// Peek validates the token/work-order pair without committing any side
// effect. Safe to call on every page load.
func (s *Service) Peek(ctx context.Context, presented string, workOrderID uuid.UUID) (*Decision, error) {
	return s.validate(ctx, presented, workOrderID)
}

// Consume validates like Peek, then marks usage and performs the one-time
// sent→viewed transition. It is the only entry point allowed to trigger
// downstream state changes for a contractor.
func (s *Service) Consume(ctx context.Context, presented string, workOrderID uuid.UUID) (*Decision, error) {
	d, err := s.validate(ctx, presented, workOrderID)
	if err != nil || !d.OK() {
		return d, err
	}

	// Usage marking is best-effort telemetry; it never blocks or fails the
	// access decision.
	_ = s.tokens.MarkUsed(ctx, d.TokenID, time.Now().UTC())

	if d.WorkOrder.Status == workorder.StatusSent {
		wo, err := s.markViewed(ctx, d)
		if err != nil {
			return nil, err
		}
		d.WorkOrder = wo
	}
	return d, nil
}

// validate implements the shared check order: token lookup, revocation,
// expiry, entity lookup with confusion guard, then status-derived
// invalidity. A closed or rejected order beats an unexpired token.
func (s *Service) validate(ctx context.Context, presented string, workOrderID uuid.UUID) (*Decision, error) {
	tok, err := s.tokens.GetByHash(ctx, token.Hash(presented))
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return &Decision{Kind: KindNotFound}, nil
	}
	if tok.IsRevoked() {
		return &Decision{Kind: KindRevoked, TokenID: tok.TokenID}, nil
	}
	if tok.IsExpired(time.Now().UTC()) {
		return &Decision{Kind: KindExpired, TokenID: tok.TokenID}, nil
	}
	if tok.WorkOrderID != workOrderID {
		// Token confusion guard: a valid token presented against the wrong
		// entity is indistinguishable from an unknown link.
		return &Decision{Kind: KindNotFound, TokenID: tok.TokenID}, nil
	}
	wo, err := s.orders.GetByID(ctx, workOrderID)
	if err != nil {
		return nil, err
	}
	if wo == nil {
		return &Decision{Kind: KindNotFound, TokenID: tok.TokenID}, nil
	}
	if wo.ClosedToContractor() {
		return &Decision{Kind: KindWorkOrderClosed, TokenID: tok.TokenID}, nil
	}
	return &Decision{
		Kind:            KindOK,
		WorkOrder:       wo,
		TokenID:         tok.TokenID,
		ContractorEmail: tok.ContractorEmail,
	}, nil
}

// markViewed applies the sent→viewed auto-transition with a compare-and-swap
// guarded on status=sent. Under concurrent first views exactly one write
// succeeds; losers observe the order already viewed and treat that as
// success.
func (s *Service) markViewed(ctx context.Context, d *Decision) (*workorder.WorkOrder, error) {
	wo := d.WorkOrder
	for attempt := 0; attempt < 3; attempt++ {
		if wo.Status != workorder.StatusSent {
			return wo, nil
		}
		next, err := workorder.MarkViewed(*wo, time.Now().UTC())
		if err != nil {
			return wo, nil
		}
		err = s.orders.UpdateVersioned(ctx, &next, wo.Version)
		if err == nil {
			tokenID := d.TokenID
			s.auditor.Record(ctx, &audit.Entry{
				WorkOrderID: next.WorkOrderID,
				TokenID:     &tokenID,
				Actor:       "contractor:" + d.ContractorEmail,
				Action:      audit.ActionViewed,
				FromStatus:  string(workorder.StatusSent),
				ToStatus:    string(workorder.StatusViewed),
			})
			s.notifyViewed(&next)
			return &next, nil
		}
		if !errors.Is(err, workorder.ErrVersionConflict) {
			return nil, err
		}
		fresh, err := s.orders.GetByID(ctx, wo.WorkOrderID)
		if err != nil {
			return nil, err
		}
		if fresh == nil {
			return nil, fmt.Errorf("work order vanished during first view: %s", wo.WorkOrderID)
		}
		wo = fresh
	}
	return wo, nil
}

func (s *Service) notifyViewed(wo *workorder.WorkOrder) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"workOrderId": wo.WorkOrderID.String(),
		"status":      wo.Status,
		"viewedAt":    wo.ViewedAt,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to marshal viewed notification")
		return
	}
	s.hub.Broadcast(notification.NewStreamMessage(notification.EventWorkOrderViewed, payload))
}
