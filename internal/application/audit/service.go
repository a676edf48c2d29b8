package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/alphinus/kewa-app-sub000/internal/domain/audit"
)

// Service records protocol events. It implements audit.Recorder.
type Service struct {
	repo    audit.Repository
	signKey []byte
	logger  zerolog.Logger
}

// NewService creates an audit service. With a non-empty signKey every event
// is HMAC-signed before it is stored.
func NewService(repo audit.Repository, logger zerolog.Logger, signKey []byte) *Service {
	return &Service{
		repo:    repo,
		signKey: signKey,
		logger:  logger.With().Str("service", "audit").Logger(),
	}
}

// Record writes an event asynchronously. Failures are logged, never
// propagated; an audit write must not fail the access decision or
// transition that produced it.
func (s *Service) Record(ctx context.Context, entry *audit.Entry) {
	go func() {
		if err := s.RecordSync(context.Background(), entry); err != nil {
			s.logger.Error().Err(err).
				Str("work_order_id", entry.WorkOrderID.String()).
				Str("action", string(entry.Action)).
				Msg("failed to record audit event")
		}
	}()
}

// RecordSync writes an event synchronously.
func (s *Service) RecordSync(ctx context.Context, entry *audit.Entry) error {
	ev, err := audit.NewEvent(entry)
	if err != nil {
		return fmt.Errorf("failed to build audit event: %w", err)
	}
	if len(s.signKey) > 0 {
		sig, err := audit.Sign(ev, s.signKey)
		if err != nil {
			return fmt.Errorf("failed to sign audit event: %w", err)
		}
		ev.Signature = sig
	}
	if err := s.repo.Create(ctx, ev); err != nil {
		return fmt.Errorf("failed to save audit event: %w", err)
	}
	s.logger.Debug().
		Str("event_id", ev.EventID.String()).
		Str("work_order_id", ev.WorkOrderID.String()).
		Str("action", string(ev.Action)).
		Str("actor", ev.Actor).
		Msg("audit event recorded")
	return nil
}

// History returns the audit trail for a work order, newest first.
func (s *Service) History(ctx context.Context, workOrderID uuid.UUID, limit int) ([]*audit.Event, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}
	return s.repo.ListByWorkOrder(ctx, workOrderID, limit)
}
