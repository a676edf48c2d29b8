package portal

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	appAccess "github.com/alphinus/kewa-app-sub000/internal/application/access"
	appNegotiation "github.com/alphinus/kewa-app-sub000/internal/application/negotiation"
	appWorkOrder "github.com/alphinus/kewa-app-sub000/internal/application/workorder"
	"github.com/alphinus/kewa-app-sub000/internal/domain/workorder"
)

// Action is a contractor action on a work order.
type Action string

const (
	ActionAccept       Action = "accept"
	ActionReject       Action = "reject"
	ActionCounterOffer Action = "counter_offer"
	ActionStart        Action = "start"
	ActionBlock        Action = "block"
	ActionUnblock      Action = "unblock"
	ActionMarkDone     Action = "done"
)

// ErrUnknownAction is returned for an action outside the portal contract.
var ErrUnknownAction = errors.New("unknown portal action")

// RespondInput carries the action-specific payload. For accept,
// ProposedCost is the optional matching cost check.
type RespondInput struct {
	Action            Action
	ProposedCost      *decimal.Decimal
	ProposedStartDate *time.Time
	ProposedEndDate   *time.Time
	ContractorNotes   *string
	RejectionReason   *string
}

// Service is the contractor-facing entry point: every call resolves the
// token first, then dispatches to the negotiation engine or the plain state
// machine. The updated snapshot returned by a mutation is the single source
// of truth for the new state; callers re-render from it instead of
// re-fetching.
type Service struct {
	gateway     *appAccess.Service
	negotiation *appNegotiation.Service
	orders      *appWorkOrder.Service
	logger      zerolog.Logger
}

// NewService creates a portal service.
func NewService(gateway *appAccess.Service, negotiation *appNegotiation.Service, orders *appWorkOrder.Service, logger zerolog.Logger) *Service {
	return &Service{
		gateway:     gateway,
		negotiation: negotiation,
		orders:      orders,
		logger:      logger.With().Str("service", "portal").Logger(),
	}
}

// Peek resolves the token for a page load. The first load of a sent order
// registers the view through Consume, which owns the one-time sent -> viewed
// transition; every later load is a pure read, so repeat GETs stay idempotent.
func (s *Service) Peek(ctx context.Context, presented string, workOrderID uuid.UUID) (*appAccess.Decision, error) {
	d, err := s.gateway.Peek(ctx, presented, workOrderID)
	if err != nil || !d.OK() {
		return d, err
	}
	if d.WorkOrder.Status == workorder.StatusSent {
		return s.gateway.Consume(ctx, presented, workOrderID)
	}
	return d, nil
}

// Respond consumes the token and applies the contractor action against the
// snapshot version the consume returned. A version conflict is retried
// exactly once with a freshly validated snapshot before being surfaced.
func (s *Service) Respond(ctx context.Context, presented string, workOrderID uuid.UUID, in RespondInput) (*appAccess.Decision, *workorder.WorkOrder, error) {
	d, err := s.gateway.Consume(ctx, presented, workOrderID)
	if err != nil {
		return nil, nil, err
	}
	if !d.OK() {
		return d, nil, nil
	}
	actor := "contractor:" + d.ContractorEmail
	wo, err := s.dispatch(ctx, d.WorkOrder, actor, in)
	if errors.Is(err, workorder.ErrVersionConflict) {
		s.logger.Debug().
			Str("work_order_id", workOrderID.String()).
			Str("action", string(in.Action)).
			Msg("version conflict, retrying with fresh snapshot")
		d, err = s.gateway.Consume(ctx, presented, workOrderID)
		if err != nil {
			return nil, nil, err
		}
		if !d.OK() {
			return d, nil, nil
		}
		wo, err = s.dispatch(ctx, d.WorkOrder, actor, in)
	}
	return d, wo, err
}

func (s *Service) dispatch(ctx context.Context, wo *workorder.WorkOrder, actor string, in RespondInput) (*workorder.WorkOrder, error) {
	id := wo.WorkOrderID
	version := wo.Version
	switch in.Action {
	case ActionAccept:
		return s.negotiation.DirectAccept(ctx, id, version, in.ProposedCost, actor)
	case ActionReject:
		reason := ""
		if in.RejectionReason != nil {
			reason = *in.RejectionReason
		}
		return s.orders.Reject(ctx, id, version, reason, actor)
	case ActionCounterOffer:
		return s.negotiation.ProposeCounter(ctx, id, version, workorder.Proposal{
			Cost:      in.ProposedCost,
			StartDate: in.ProposedStartDate,
			EndDate:   in.ProposedEndDate,
			Notes:     in.ContractorNotes,
		}, actor)
	case ActionStart:
		return s.orders.Start(ctx, id, version, actor)
	case ActionBlock:
		return s.orders.Block(ctx, id, version, actor)
	case ActionUnblock:
		return s.orders.Unblock(ctx, id, version, actor)
	case ActionMarkDone:
		return s.orders.MarkDone(ctx, id, version, actor)
	default:
		return nil, ErrUnknownAction
	}
}
