package workorder

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents work order lifecycle status.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusSent       Status = "sent"
	StatusViewed     Status = "viewed"
	StatusAccepted   Status = "accepted"
	StatusRejected   Status = "rejected"
	StatusInProgress Status = "in_progress"
	StatusBlocked    Status = "blocked"
	StatusDone       Status = "done"
	StatusInspected  Status = "inspected"
	StatusClosed     Status = "closed"
)

// CounterOfferStatus tracks the single negotiation slot on a work order.
type CounterOfferStatus string

const (
	CounterOfferNone     CounterOfferStatus = "none"
	CounterOfferPending  CounterOfferStatus = "pending"
	CounterOfferApproved CounterOfferStatus = "approved"
	CounterOfferRejected CounterOfferStatus = "rejected"
)

// WorkOrder is the shared mutable resource of the protocol. The proposal
// fields are a field set, not a child table, so "at most one pending
// counter-offer" holds by construction.
type WorkOrder struct {
	ID                 int64              `json:"id"`
	WorkOrderID        uuid.UUID          `json:"workOrderId"`
	Title              string             `json:"title"`
	Description        string             `json:"description,omitempty"`
	ContractorEmail    string             `json:"contractorEmail,omitempty"`
	Status             Status             `json:"status"`
	EstimatedCost      decimal.Decimal    `json:"estimatedCost"`
	RequestedStartDate time.Time          `json:"requestedStartDate"`
	RequestedEndDate   time.Time          `json:"requestedEndDate"`
	CounterOfferStatus CounterOfferStatus `json:"counterOfferStatus"`
	ProposedCost       *decimal.Decimal   `json:"proposedCost,omitempty"`
	ProposedStartDate  *time.Time         `json:"proposedStartDate,omitempty"`
	ProposedEndDate    *time.Time         `json:"proposedEndDate,omitempty"`
	ContractorNotes    *string            `json:"contractorNotes,omitempty"`
	RejectionReason    *string            `json:"rejectionReason,omitempty"`
	AcceptanceDeadline *time.Time         `json:"acceptanceDeadline,omitempty"`
	Version            int64              `json:"version"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
	SentAt             *time.Time         `json:"sentAt,omitempty"`
	ViewedAt           *time.Time         `json:"viewedAt,omitempty"`
	AcceptedAt         *time.Time         `json:"acceptedAt,omitempty"`
	RejectedAt         *time.Time         `json:"rejectedAt,omitempty"`
	StartedAt          *time.Time         `json:"startedAt,omitempty"`
	CompletedAt        *time.Time         `json:"completedAt,omitempty"`
	InspectedAt        *time.Time         `json:"inspectedAt,omitempty"`
	ClosedAt           *time.Time         `json:"closedAt,omitempty"`
}

// IsTerminal reports whether the order has reached its final state.
func (w *WorkOrder) IsTerminal() bool {
	return w.Status == StatusClosed
}

// ClosedToContractor reports whether contractor links must stop working
// regardless of their own expiry. Distinct from token expiry so the caller
// can tell the recipient the right thing: a rejected or closed order will
// never reopen, so "request a new link" would be wrong advice.
func (w *WorkOrder) ClosedToContractor() bool {
	return w.Status == StatusClosed || w.Status == StatusRejected
}
