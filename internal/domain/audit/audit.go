package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Action identifies the state-affecting call that produced an event.
type Action string

const (
	ActionCreated         Action = "created"
	ActionLinkIssued      Action = "link_issued"
	ActionLinkRevoked     Action = "link_revoked"
	ActionSent            Action = "sent"
	ActionViewed          Action = "viewed"
	ActionAccepted        Action = "accepted"
	ActionRejected        Action = "rejected"
	ActionCounterProposed Action = "counter_proposed"
	ActionCounterApproved Action = "counter_approved"
	ActionCounterRejected Action = "counter_rejected"
	ActionStarted         Action = "started"
	ActionBlocked         Action = "blocked"
	ActionUnblocked       Action = "unblocked"
	ActionDone            Action = "done"
	ActionInspected       Action = "inspected"
	ActionClosed          Action = "closed"
)

// Event is one immutable record of a state-affecting call.
type Event struct {
	ID          int64           `json:"id"`
	EventID     uuid.UUID       `json:"eventId"`
	WorkOrderID uuid.UUID       `json:"workOrderId"`
	TokenID     *uuid.UUID      `json:"tokenId,omitempty"`
	Actor       string          `json:"actor"`
	Action      Action          `json:"action"`
	FromStatus  string          `json:"fromStatus,omitempty"`
	ToStatus    string          `json:"toStatus,omitempty"`
	Detail      json.RawMessage `json:"detail,omitempty"`
	Signature   []byte          `json:"signature,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Entry is the input for creating an event.
type Entry struct {
	WorkOrderID uuid.UUID
	TokenID     *uuid.UUID
	Actor       string
	Action      Action
	FromStatus  string
	ToStatus    string
	Detail      interface{}
}

// NewEvent builds an immutable event from an entry.
func NewEvent(e *Entry) (*Event, error) {
	var detail json.RawMessage
	if e.Detail != nil {
		data, err := json.Marshal(e.Detail)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal event detail: %w", err)
		}
		detail = data
	}
	return &Event{
		EventID:     uuid.New(),
		WorkOrderID: e.WorkOrderID,
		TokenID:     e.TokenID,
		Actor:       e.Actor,
		Action:      e.Action,
		FromStatus:  e.FromStatus,
		ToStatus:    e.ToStatus,
		Detail:      detail,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
