package workorder

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func newOrder(status Status) WorkOrder {
	return WorkOrder{
		Title:              "Repair roof",
		Status:             status,
		EstimatedCost:      decimal.NewFromInt(5000),
		RequestedStartDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		RequestedEndDate:   time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		CounterOfferStatus: CounterOfferNone,
		Version:            1,
	}
}

func TestLifecycleHappyPath(t *testing.T) {
	now := time.Now().UTC()
	wo := newOrder(StatusDraft)

	wo, err := Send(wo, now)
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if wo.Status != StatusSent || wo.SentAt == nil {
		t.Fatalf("expected sent with timestamp, got %s", wo.Status)
	}

	wo, err = MarkViewed(wo, now)
	if err != nil {
		t.Fatalf("mark viewed failed: %v", err)
	}
	if wo.Status != StatusViewed || wo.ViewedAt == nil {
		t.Fatalf("expected viewed with timestamp, got %s", wo.Status)
	}

	wo, err = Accept(wo, now)
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if wo.Status != StatusAccepted || wo.AcceptedAt == nil {
		t.Fatalf("expected accepted with timestamp, got %s", wo.Status)
	}

	wo, err = Start(wo, now)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if wo.Status != StatusInProgress || wo.StartedAt == nil {
		t.Fatalf("expected in_progress with timestamp, got %s", wo.Status)
	}

	wo, err = Block(wo)
	if err != nil {
		t.Fatalf("block failed: %v", err)
	}
	if wo.Status != StatusBlocked {
		t.Fatalf("expected blocked, got %s", wo.Status)
	}

	wo, err = Unblock(wo)
	if err != nil {
		t.Fatalf("unblock failed: %v", err)
	}
	if wo.Status != StatusInProgress {
		t.Fatalf("expected in_progress after unblock, got %s", wo.Status)
	}

	wo, err = MarkDone(wo, now)
	if err != nil {
		t.Fatalf("mark done failed: %v", err)
	}
	if wo.Status != StatusDone || wo.CompletedAt == nil {
		t.Fatalf("expected done with timestamp, got %s", wo.Status)
	}

	wo, err = Inspect(wo, now)
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	if wo.Status != StatusInspected || wo.InspectedAt == nil {
		t.Fatalf("expected inspected with timestamp, got %s", wo.Status)
	}

	wo, err = Close(wo, now)
	if err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if wo.Status != StatusClosed || wo.ClosedAt == nil {
		t.Fatalf("expected closed with timestamp, got %s", wo.Status)
	}
	if !wo.IsTerminal() {
		t.Fatalf("closed order must be terminal")
	}
}

func TestRejectRequiresReason(t *testing.T) {
	now := time.Now().UTC()
	wo := newOrder(StatusViewed)

	if _, err := Reject(wo, "  ", now); !errors.Is(err, ErrReasonRequired) {
		t.Fatalf("expected ErrReasonRequired, got %v", err)
	}

	got, err := Reject(wo, "  timeline too tight  ", now)
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if got.Status != StatusRejected || got.RejectedAt == nil {
		t.Fatalf("expected rejected with timestamp, got %s", got.Status)
	}
	if got.RejectionReason == nil || *got.RejectionReason != "timeline too tight" {
		t.Fatalf("expected trimmed reason, got %v", got.RejectionReason)
	}
}

func TestCloseFromRejectedAndDone(t *testing.T) {
	now := time.Now().UTC()
	for _, st := range []Status{StatusRejected, StatusDone, StatusInspected} {
		wo := newOrder(st)
		got, err := Close(wo, now)
		if err != nil {
			t.Fatalf("close from %s failed: %v", st, err)
		}
		if got.Status != StatusClosed {
			t.Fatalf("expected closed from %s, got %s", st, got.Status)
		}
	}
}

func TestIllegalTransitions(t *testing.T) {
	now := time.Now().UTC()

	cases := []struct {
		name string
		run  func() error
	}{
		{"send from viewed", func() error { _, err := Send(newOrder(StatusViewed), now); return err }},
		{"view from draft", func() error { _, err := MarkViewed(newOrder(StatusDraft), now); return err }},
		{"accept from sent", func() error { _, err := Accept(newOrder(StatusSent), now); return err }},
		{"reject from accepted", func() error { _, err := Reject(newOrder(StatusAccepted), "no", now); return err }},
		{"start from viewed", func() error { _, err := Start(newOrder(StatusViewed), now); return err }},
		{"block from accepted", func() error { _, err := Block(newOrder(StatusAccepted)); return err }},
		{"unblock from in_progress", func() error { _, err := Unblock(newOrder(StatusInProgress)); return err }},
		{"done from blocked", func() error { _, err := MarkDone(newOrder(StatusBlocked), now); return err }},
		{"inspect from in_progress", func() error { _, err := Inspect(newOrder(StatusInProgress), now); return err }},
		{"close from viewed", func() error { _, err := Close(newOrder(StatusViewed), now); return err }},
		{"close from closed", func() error { _, err := Close(newOrder(StatusClosed), now); return err }},
	}
	for _, tc := range cases {
		err := tc.run()
		var illegal *IllegalTransitionError
		if !errors.As(err, &illegal) {
			t.Fatalf("%s: expected IllegalTransitionError, got %v", tc.name, err)
		}
	}
}

func TestClosedToContractor(t *testing.T) {
	for _, st := range []Status{StatusClosed, StatusRejected} {
		wo := newOrder(st)
		if !wo.ClosedToContractor() {
			t.Fatalf("%s order must be closed to the contractor", st)
		}
	}
	for _, st := range []Status{StatusSent, StatusViewed, StatusAccepted, StatusInProgress, StatusBlocked, StatusDone, StatusInspected} {
		wo := newOrder(st)
		if wo.ClosedToContractor() {
			t.Fatalf("%s order must stay open to the contractor", st)
		}
	}
}
