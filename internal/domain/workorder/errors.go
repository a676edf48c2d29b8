package workorder

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the referenced work order does not exist.
	ErrNotFound = errors.New("work order not found")

	// ErrVersionConflict is returned when a compare-and-swap write loses to a
	// concurrent writer. Callers retry with a re-read snapshot or surface
	// "this order changed, please reload".
	ErrVersionConflict = errors.New("work order was modified concurrently")

	// ErrAlreadyPending is returned when a counter-offer is submitted while
	// another one is awaiting a decision.
	ErrAlreadyPending = errors.New("a counter-offer is already awaiting a decision")

	// ErrNothingPending is returned when a decision is applied with no
	// counter-offer pending.
	ErrNothingPending = errors.New("no counter-offer is awaiting a decision")

	// ErrUseCounterOffer is returned when a direct accept carries terms that
	// differ from the baseline. Deviations must go through the negotiation
	// path so the operator approves them explicitly.
	ErrUseCounterOffer = errors.New("terms differ from the baseline; submit a counter-offer instead")

	// ErrNoChangeProposed is returned when a counter-offer proposes terms
	// identical to the baseline.
	ErrNoChangeProposed = errors.New("proposed terms match the baseline; accept instead")

	// ErrReasonRequired is returned when a rejection carries no reason.
	ErrReasonRequired = errors.New("a rejection reason is required")
)

// IllegalTransitionError reports an event that is not legal in the current
// status, carrying both for diagnostics.
type IllegalTransitionError struct {
	From  Status
	Event Event
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition: event %q in status %q", e.Event, e.From)
}
