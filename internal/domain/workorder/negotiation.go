package workorder

import (
	"time"

	"github.com/shopspring/decimal"
)

// Proposal carries the contractor's counter-offered terms. A nil field means
// "keep the baseline value".
type Proposal struct {
	Cost      *decimal.Decimal
	StartDate *time.Time
	EndDate   *time.Time
	Notes     *string
}

// DiffersFromBaseline reports whether at least one of price/start/end
// actually deviates from the operator-authored terms.
func (p Proposal) DiffersFromBaseline(w WorkOrder) bool {
	if p.Cost != nil && !p.Cost.Equal(w.EstimatedCost) {
		return true
	}
	if p.StartDate != nil && !p.StartDate.Equal(w.RequestedStartDate) {
		return true
	}
	if p.EndDate != nil && !p.EndDate.Equal(w.RequestedEndDate) {
		return true
	}
	return false
}

// SubmitCounterOffer places the proposal into the single negotiation slot.
// Status stays viewed; only counter_offer_status moves to pending.
// Resubmission after a rejected counter-offer is allowed.
func SubmitCounterOffer(w WorkOrder, p Proposal, now time.Time) (WorkOrder, error) {
	if w.Status != StatusViewed {
		return w, &IllegalTransitionError{From: w.Status, Event: EventCounterOffer}
	}
	switch w.CounterOfferStatus {
	case CounterOfferPending:
		return w, ErrAlreadyPending
	case CounterOfferNone, CounterOfferRejected:
	default:
		return w, &IllegalTransitionError{From: w.Status, Event: EventCounterOffer}
	}
	if !p.DiffersFromBaseline(w) {
		return w, ErrNoChangeProposed
	}
	w.CounterOfferStatus = CounterOfferPending
	if p.Cost != nil {
		c := *p.Cost
		w.ProposedCost = &c
	} else {
		w.ProposedCost = nil
	}
	if p.StartDate != nil {
		d := *p.StartDate
		w.ProposedStartDate = &d
	} else {
		w.ProposedStartDate = nil
	}
	if p.EndDate != nil {
		d := *p.EndDate
		w.ProposedEndDate = &d
	} else {
		w.ProposedEndDate = nil
	}
	w.ContractorNotes = p.Notes
	return w, nil
}

// ApproveCounterOffer promotes the pending proposal into the baseline and
// accepts the order, all on the same snapshot so the two changes persist
// together or not at all.
func ApproveCounterOffer(w WorkOrder, now time.Time) (WorkOrder, error) {
	if w.CounterOfferStatus != CounterOfferPending {
		return w, ErrNothingPending
	}
	if w.ProposedCost != nil {
		w.EstimatedCost = *w.ProposedCost
	}
	if w.ProposedStartDate != nil {
		w.RequestedStartDate = *w.ProposedStartDate
	}
	if w.ProposedEndDate != nil {
		w.RequestedEndDate = *w.ProposedEndDate
	}
	w.CounterOfferStatus = CounterOfferApproved
	w.Status = StatusAccepted
	w.AcceptedAt = &now
	return w, nil
}

// RejectCounterOffer declines the pending proposal. Status stays viewed and
// the proposal fields remain as a historical record; the contractor may
// resubmit, accept the baseline or reject outright.
func RejectCounterOffer(w WorkOrder) (WorkOrder, error) {
	if w.CounterOfferStatus != CounterOfferPending {
		return w, ErrNothingPending
	}
	w.CounterOfferStatus = CounterOfferRejected
	return w, nil
}

// AcceptDirect accepts the baseline terms outright. A supplied cost must
// match the baseline exactly; anything else belongs in a counter-offer.
func AcceptDirect(w WorkOrder, offeredCost *decimal.Decimal, now time.Time) (WorkOrder, error) {
	if w.CounterOfferStatus == CounterOfferPending {
		return w, ErrAlreadyPending
	}
	if offeredCost != nil && !offeredCost.Equal(w.EstimatedCost) {
		return w, ErrUseCounterOffer
	}
	return Accept(w, now)
}
