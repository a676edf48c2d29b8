package workorder

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestSubmitCounterOffer(t *testing.T) {
	now := time.Now().UTC()
	wo := newOrder(StatusViewed)

	got, err := SubmitCounterOffer(wo, Proposal{Cost: decPtr(4500)}, now)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if got.CounterOfferStatus != CounterOfferPending {
		t.Fatalf("expected pending, got %s", got.CounterOfferStatus)
	}
	if got.Status != StatusViewed {
		t.Fatalf("status must stay viewed, got %s", got.Status)
	}
	if got.ProposedCost == nil || !got.ProposedCost.Equal(decimal.NewFromInt(4500)) {
		t.Fatalf("expected proposed cost 4500, got %v", got.ProposedCost)
	}
	if !got.EstimatedCost.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("baseline must not move on submission")
	}
}

func TestSubmitCounterOfferGuards(t *testing.T) {
	now := time.Now().UTC()

	wo := newOrder(StatusSent)
	var illegal *IllegalTransitionError
	if _, err := SubmitCounterOffer(wo, Proposal{Cost: decPtr(4500)}, now); !errors.As(err, &illegal) {
		t.Fatalf("expected illegal transition from sent, got %v", err)
	}

	wo = newOrder(StatusViewed)
	wo.CounterOfferStatus = CounterOfferPending
	if _, err := SubmitCounterOffer(wo, Proposal{Cost: decPtr(4000)}, now); !errors.Is(err, ErrAlreadyPending) {
		t.Fatalf("expected ErrAlreadyPending, got %v", err)
	}

	wo = newOrder(StatusViewed)
	if _, err := SubmitCounterOffer(wo, Proposal{Cost: decPtr(5000)}, now); !errors.Is(err, ErrNoChangeProposed) {
		t.Fatalf("expected ErrNoChangeProposed for matching terms, got %v", err)
	}
	if _, err := SubmitCounterOffer(wo, Proposal{}, now); !errors.Is(err, ErrNoChangeProposed) {
		t.Fatalf("expected ErrNoChangeProposed for empty proposal, got %v", err)
	}
}

func TestResubmitAfterRejectedCounterOffer(t *testing.T) {
	now := time.Now().UTC()
	wo := newOrder(StatusViewed)

	wo, err := SubmitCounterOffer(wo, Proposal{Cost: decPtr(4000)}, now)
	if err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	wo, err = RejectCounterOffer(wo)
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if wo.CounterOfferStatus != CounterOfferRejected {
		t.Fatalf("expected rejected, got %s", wo.CounterOfferStatus)
	}
	if wo.Status != StatusViewed {
		t.Fatalf("order must stay viewed after a rejected counter-offer")
	}
	if wo.ProposedCost == nil {
		t.Fatalf("rejected proposal must be kept as history")
	}

	wo, err = SubmitCounterOffer(wo, Proposal{Cost: decPtr(4500)}, now)
	if err != nil {
		t.Fatalf("resubmission failed: %v", err)
	}
	if wo.CounterOfferStatus != CounterOfferPending {
		t.Fatalf("expected pending after resubmission, got %s", wo.CounterOfferStatus)
	}
	if !wo.ProposedCost.Equal(decimal.NewFromInt(4500)) {
		t.Fatalf("expected fresh proposal, got %v", wo.ProposedCost)
	}
}

func TestApproveCounterOffer(t *testing.T) {
	now := time.Now().UTC()
	newStart := time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)
	wo := newOrder(StatusViewed)

	wo, err := SubmitCounterOffer(wo, Proposal{Cost: decPtr(4500), StartDate: &newStart}, now)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	got, err := ApproveCounterOffer(wo, now)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if !got.EstimatedCost.Equal(decimal.NewFromInt(4500)) {
		t.Fatalf("approval must promote the proposed cost, got %s", got.EstimatedCost)
	}
	if !got.RequestedStartDate.Equal(newStart) {
		t.Fatalf("approval must promote the proposed start date")
	}
	if got.Status != StatusAccepted || got.AcceptedAt == nil {
		t.Fatalf("approval must accept the order, got %s", got.Status)
	}
	if got.CounterOfferStatus != CounterOfferApproved {
		t.Fatalf("expected approved, got %s", got.CounterOfferStatus)
	}
}

func TestDecideWithoutPending(t *testing.T) {
	now := time.Now().UTC()
	wo := newOrder(StatusViewed)
	if _, err := ApproveCounterOffer(wo, now); !errors.Is(err, ErrNothingPending) {
		t.Fatalf("expected ErrNothingPending on approve, got %v", err)
	}
	if _, err := RejectCounterOffer(wo); !errors.Is(err, ErrNothingPending) {
		t.Fatalf("expected ErrNothingPending on reject, got %v", err)
	}
}

func TestAcceptDirect(t *testing.T) {
	now := time.Now().UTC()

	wo := newOrder(StatusViewed)
	got, err := AcceptDirect(wo, nil, now)
	if err != nil {
		t.Fatalf("accept without cost failed: %v", err)
	}
	if got.Status != StatusAccepted {
		t.Fatalf("expected accepted, got %s", got.Status)
	}

	got, err = AcceptDirect(newOrder(StatusViewed), decPtr(5000), now)
	if err != nil {
		t.Fatalf("accept with matching cost failed: %v", err)
	}
	if got.Status != StatusAccepted {
		t.Fatalf("expected accepted, got %s", got.Status)
	}

	if _, err := AcceptDirect(newOrder(StatusViewed), decPtr(4500), now); !errors.Is(err, ErrUseCounterOffer) {
		t.Fatalf("expected ErrUseCounterOffer for differing cost, got %v", err)
	}

	wo = newOrder(StatusViewed)
	wo.CounterOfferStatus = CounterOfferPending
	if _, err := AcceptDirect(wo, nil, now); !errors.Is(err, ErrAlreadyPending) {
		t.Fatalf("expected ErrAlreadyPending with a pending proposal, got %v", err)
	}
}
