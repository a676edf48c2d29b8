package workorder

import (
	"strings"
	"time"
)

// Event identifies a requested lifecycle transition.
type Event string

const (
	EventSend         Event = "send"
	EventFirstView    Event = "first_view"
	EventAccept       Event = "accept"
	EventReject       Event = "reject"
	EventCounterOffer Event = "counter_offer"
	EventStart        Event = "start"
	EventBlock        Event = "block"
	EventUnblock      Event = "unblock"
	EventMarkDone     Event = "mark_done"
	EventInspect      Event = "inspect"
	EventClose        Event = "close"
)

// Transitions are pure functions from snapshot to snapshot: they take the
// work order by value, compute the new field set and perform no I/O.
// Persisting the result through the versioned store is the caller's job.

// Send moves a draft to sent.
func Send(w WorkOrder, now time.Time) (WorkOrder, error) {
	if w.Status != StatusDraft {
		return w, &IllegalTransitionError{From: w.Status, Event: EventSend}
	}
	w.Status = StatusSent
	w.SentAt = &now
	return w, nil
}

// MarkViewed records the one-time contractor first view.
func MarkViewed(w WorkOrder, now time.Time) (WorkOrder, error) {
	if w.Status != StatusSent {
		return w, &IllegalTransitionError{From: w.Status, Event: EventFirstView}
	}
	w.Status = StatusViewed
	w.ViewedAt = &now
	return w, nil
}

// Accept moves a viewed order to accepted under the baseline terms.
func Accept(w WorkOrder, now time.Time) (WorkOrder, error) {
	if w.Status != StatusViewed {
		return w, &IllegalTransitionError{From: w.Status, Event: EventAccept}
	}
	w.Status = StatusAccepted
	w.AcceptedAt = &now
	return w, nil
}

// Reject moves a viewed order to rejected. A reason is mandatory.
func Reject(w WorkOrder, reason string, now time.Time) (WorkOrder, error) {
	if w.Status != StatusViewed {
		return w, &IllegalTransitionError{From: w.Status, Event: EventReject}
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return w, ErrReasonRequired
	}
	w.Status = StatusRejected
	w.RejectionReason = &reason
	w.RejectedAt = &now
	return w, nil
}

// Start moves an accepted order to in_progress.
func Start(w WorkOrder, now time.Time) (WorkOrder, error) {
	if w.Status != StatusAccepted {
		return w, &IllegalTransitionError{From: w.Status, Event: EventStart}
	}
	w.Status = StatusInProgress
	w.StartedAt = &now
	return w, nil
}

// Block records a blocking issue on work in progress. No timestamp.
func Block(w WorkOrder) (WorkOrder, error) {
	if w.Status != StatusInProgress {
		return w, &IllegalTransitionError{From: w.Status, Event: EventBlock}
	}
	w.Status = StatusBlocked
	return w, nil
}

// Unblock resumes blocked work.
func Unblock(w WorkOrder) (WorkOrder, error) {
	if w.Status != StatusBlocked {
		return w, &IllegalTransitionError{From: w.Status, Event: EventUnblock}
	}
	w.Status = StatusInProgress
	return w, nil
}

// MarkDone records completion of the work.
func MarkDone(w WorkOrder, now time.Time) (WorkOrder, error) {
	if w.Status != StatusInProgress {
		return w, &IllegalTransitionError{From: w.Status, Event: EventMarkDone}
	}
	w.Status = StatusDone
	w.CompletedAt = &now
	return w, nil
}

// Inspect records the operator inspection of completed work.
func Inspect(w WorkOrder, now time.Time) (WorkOrder, error) {
	if w.Status != StatusDone {
		return w, &IllegalTransitionError{From: w.Status, Event: EventInspect}
	}
	w.Status = StatusInspected
	w.InspectedAt = &now
	return w, nil
}

// Close finalizes the order. Legal from inspected, done or rejected.
func Close(w WorkOrder, now time.Time) (WorkOrder, error) {
	switch w.Status {
	case StatusInspected, StatusDone, StatusRejected:
	default:
		return w, &IllegalTransitionError{From: w.Status, Event: EventClose}
	}
	w.Status = StatusClosed
	w.ClosedAt = &now
	return w, nil
}
