package maillog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Sender is a stand-in link sender that records the delivery intent in the
// log. It composes the portal link a real mailer would deliver but logs it
// with the token redacted; the plaintext token never reaches the log.
type Sender struct {
	baseURL string
	logger  zerolog.Logger
}

func NewSender(baseURL string, logger zerolog.Logger) *Sender {
	return &Sender{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.With().Str("service", "maillog").Logger(),
	}
}

func (s *Sender) SendWorkOrderLink(ctx context.Context, email string, workOrderID uuid.UUID, plaintext string, expiresAt time.Time) error {
	link := fmt.Sprintf("%s/v1/portal/{token}/work-orders/%s", s.baseURL, workOrderID)
	s.logger.Info().
		Str("email", email).
		Str("work_order_id", workOrderID.String()).
		Str("link", link).
		Time("expires_at", expiresAt).
		Msg("work order link ready for delivery")
	return nil
}
