package negotiation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/alphinus/kewa-app-sub000/internal/domain/audit"
	"github.com/alphinus/kewa-app-sub000/internal/domain/workorder"
	"github.com/alphinus/kewa-app-sub000/internal/domain/workorder/mocks"
)

type recorderStub struct {
	mu      sync.Mutex
	entries []*audit.Entry
}

func (r *recorderStub) Record(ctx context.Context, entry *audit.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *recorderStub) last() *audit.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		return nil
	}
	return r.entries[len(r.entries)-1]
}

func viewedOrder(version int64) *workorder.WorkOrder {
	now := time.Now().UTC()
	return &workorder.WorkOrder{
		WorkOrderID:        uuid.New(),
		Title:              "Repaint facade",
		Status:             workorder.StatusViewed,
		ContractorEmail:    "jo@example.com",
		EstimatedCost:      decimal.NewFromInt(5000),
		RequestedStartDate: now,
		RequestedEndDate:   now.AddDate(0, 0, 30),
		CounterOfferStatus: workorder.CounterOfferNone,
		Version:            version,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func TestProposeCounter(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.Nop()

	t.Run("places proposal into pending slot", func(t *testing.T) {
		repo := new(mocks.MockRepository)
		rec := &recorderStub{}
		svc := NewService(repo, rec, nil, logger)

		wo := viewedOrder(3)
		cost := decimal.NewFromInt(4500)
		repo.On("GetByID", ctx, wo.WorkOrderID).Return(wo, nil)
		repo.On("UpdateVersioned", ctx, mock.AnythingOfType("*workorder.WorkOrder"), int64(3)).Return(nil)

		got, err := svc.ProposeCounter(ctx, wo.WorkOrderID, 3, workorder.Proposal{Cost: &cost}, "contractor:jo@example.com")

		require.NoError(t, err)
		assert.Equal(t, workorder.CounterOfferPending, got.CounterOfferStatus)
		assert.Equal(t, workorder.StatusViewed, got.Status)
		require.NotNil(t, got.ProposedCost)
		assert.True(t, got.ProposedCost.Equal(cost))

		entry := rec.last()
		require.NotNil(t, entry)
		assert.Equal(t, audit.ActionCounterProposed, entry.Action)

		repo.AssertExpectations(t)
	})

	t.Run("stale expected version fails fast", func(t *testing.T) {
		repo := new(mocks.MockRepository)
		svc := NewService(repo, &recorderStub{}, nil, logger)

		wo := viewedOrder(4)
		cost := decimal.NewFromInt(4500)
		repo.On("GetByID", ctx, wo.WorkOrderID).Return(wo, nil)

		_, err := svc.ProposeCounter(ctx, wo.WorkOrderID, 3, workorder.Proposal{Cost: &cost}, "contractor:jo@example.com")

		require.ErrorIs(t, err, workorder.ErrVersionConflict)
		repo.AssertNotCalled(t, "UpdateVersioned", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown order", func(t *testing.T) {
		repo := new(mocks.MockRepository)
		svc := NewService(repo, &recorderStub{}, nil, logger)

		id := uuid.New()
		cost := decimal.NewFromInt(4500)
		repo.On("GetByID", ctx, id).Return(nil, nil)

		_, err := svc.ProposeCounter(ctx, id, 1, workorder.Proposal{Cost: &cost}, "contractor:jo@example.com")
		require.ErrorIs(t, err, workorder.ErrNotFound)
	})
}

func TestDecideCounter(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.Nop()

	pendingOrder := func(version int64) *workorder.WorkOrder {
		wo := viewedOrder(version)
		cost := decimal.NewFromInt(4500)
		wo.CounterOfferStatus = workorder.CounterOfferPending
		wo.ProposedCost = &cost
		return wo
	}

	t.Run("approval promotes proposal and accepts atomically", func(t *testing.T) {
		repo := new(mocks.MockRepository)
		rec := &recorderStub{}
		svc := NewService(repo, rec, nil, logger)

		wo := pendingOrder(5)
		repo.On("GetByID", ctx, wo.WorkOrderID).Return(wo, nil)
		repo.On("UpdateVersioned", ctx, mock.AnythingOfType("*workorder.WorkOrder"), int64(5)).Return(nil)

		got, err := svc.DecideCounter(ctx, wo.WorkOrderID, 5, CounterApproved, nil, "operator:kim")

		require.NoError(t, err)
		assert.True(t, got.EstimatedCost.Equal(decimal.NewFromInt(4500)))
		assert.Equal(t, workorder.StatusAccepted, got.Status)
		assert.Equal(t, workorder.CounterOfferApproved, got.CounterOfferStatus)
		require.NotNil(t, got.AcceptedAt)

		entry := rec.last()
		require.NotNil(t, entry)
		assert.Equal(t, audit.ActionCounterApproved, entry.Action)

		repo.AssertExpectations(t)
	})

	t.Run("rejection keeps order viewed", func(t *testing.T) {
		repo := new(mocks.MockRepository)
		rec := &recorderStub{}
		svc := NewService(repo, rec, nil, logger)

		wo := pendingOrder(2)
		note := "budget cap"
		repo.On("GetByID", ctx, wo.WorkOrderID).Return(wo, nil)
		repo.On("UpdateVersioned", ctx, mock.AnythingOfType("*workorder.WorkOrder"), int64(2)).Return(nil)

		got, err := svc.DecideCounter(ctx, wo.WorkOrderID, 2, CounterRejected, &note, "operator:kim")

		require.NoError(t, err)
		assert.Equal(t, workorder.StatusViewed, got.Status)
		assert.Equal(t, workorder.CounterOfferRejected, got.CounterOfferStatus)
		assert.True(t, got.EstimatedCost.Equal(decimal.NewFromInt(5000)))

		entry := rec.last()
		require.NotNil(t, entry)
		assert.Equal(t, audit.ActionCounterRejected, entry.Action)
	})

	t.Run("nothing pending", func(t *testing.T) {
		repo := new(mocks.MockRepository)
		svc := NewService(repo, &recorderStub{}, nil, logger)

		wo := viewedOrder(2)
		repo.On("GetByID", ctx, wo.WorkOrderID).Return(wo, nil)

		_, err := svc.DecideCounter(ctx, wo.WorkOrderID, 2, CounterApproved, nil, "operator:kim")
		require.ErrorIs(t, err, workorder.ErrNothingPending)
		repo.AssertNotCalled(t, "UpdateVersioned", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("losing writer surfaces version conflict", func(t *testing.T) {
		repo := new(mocks.MockRepository)
		svc := NewService(repo, &recorderStub{}, nil, logger)

		wo := pendingOrder(5)
		repo.On("GetByID", ctx, wo.WorkOrderID).Return(wo, nil)
		repo.On("UpdateVersioned", ctx, mock.AnythingOfType("*workorder.WorkOrder"), int64(5)).Return(workorder.ErrVersionConflict)

		_, err := svc.DecideCounter(ctx, wo.WorkOrderID, 5, CounterApproved, nil, "operator:kim")
		require.ErrorIs(t, err, workorder.ErrVersionConflict)
	})
}

func TestDirectAccept(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.Nop()

	t.Run("accepts baseline terms", func(t *testing.T) {
		repo := new(mocks.MockRepository)
		rec := &recorderStub{}
		svc := NewService(repo, rec, nil, logger)

		wo := viewedOrder(2)
		repo.On("GetByID", ctx, wo.WorkOrderID).Return(wo, nil)
		repo.On("UpdateVersioned", ctx, mock.AnythingOfType("*workorder.WorkOrder"), int64(2)).Return(nil)

		got, err := svc.DirectAccept(ctx, wo.WorkOrderID, 2, nil, "contractor:jo@example.com")

		require.NoError(t, err)
		assert.Equal(t, workorder.StatusAccepted, got.Status)
		require.NotNil(t, got.AcceptedAt)

		entry := rec.last()
		require.NotNil(t, entry)
		assert.Equal(t, audit.ActionAccepted, entry.Action)
	})

	t.Run("differing cost must go through a counter-offer", func(t *testing.T) {
		repo := new(mocks.MockRepository)
		svc := NewService(repo, &recorderStub{}, nil, logger)

		wo := viewedOrder(2)
		cost := decimal.NewFromInt(4500)
		repo.On("GetByID", ctx, wo.WorkOrderID).Return(wo, nil)

		_, err := svc.DirectAccept(ctx, wo.WorkOrderID, 2, &cost, "contractor:jo@example.com")
		require.ErrorIs(t, err, workorder.ErrUseCounterOffer)
		repo.AssertNotCalled(t, "UpdateVersioned", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("pending proposal blocks direct accept", func(t *testing.T) {
		repo := new(mocks.MockRepository)
		svc := NewService(repo, &recorderStub{}, nil, logger)

		wo := viewedOrder(2)
		cost := decimal.NewFromInt(4500)
		wo.CounterOfferStatus = workorder.CounterOfferPending
		wo.ProposedCost = &cost
		repo.On("GetByID", ctx, wo.WorkOrderID).Return(wo, nil)

		_, err := svc.DirectAccept(ctx, wo.WorkOrderID, 2, nil, "contractor:jo@example.com")
		require.ErrorIs(t, err, workorder.ErrAlreadyPending)
	})

	t.Run("concurrent accepts with the same version yield one winner", func(t *testing.T) {
		store := &casOrders{}
		store.wo = *viewedOrder(1)
		svc := NewService(store, &recorderStub{}, nil, logger)

		const n = 8
		id := store.wo.WorkOrderID
		var wg sync.WaitGroup
		results := make(chan error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.DirectAccept(ctx, id, 1, nil, "contractor:jo@example.com")
				results <- err
			}()
		}
		wg.Wait()
		close(results)

		wins, conflicts := 0, 0
		for err := range results {
			switch {
			case err == nil:
				wins++
			case errors.Is(err, workorder.ErrVersionConflict):
				conflicts++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		assert.Equal(t, 1, wins)
		assert.Equal(t, n-1, conflicts)

		store.mu.Lock()
		defer store.mu.Unlock()
		assert.Equal(t, workorder.StatusAccepted, store.wo.Status)
		assert.Equal(t, int64(2), store.wo.Version)
	})
}

// casOrders is a single-order store with real compare-and-swap semantics.
type casOrders struct {
	mu sync.Mutex
	wo workorder.WorkOrder
}

func (s *casOrders) Create(ctx context.Context, w *workorder.WorkOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wo = *w
	return nil
}

func (s *casOrders) GetByID(ctx context.Context, workOrderID uuid.UUID) (*workorder.WorkOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.wo.WorkOrderID != workOrderID {
		return nil, nil
	}
	cp := s.wo
	return &cp, nil
}

func (s *casOrders) List(ctx context.Context, filter workorder.Filter, limit, offset int) ([]*workorder.WorkOrder, error) {
	return nil, nil
}

func (s *casOrders) UpdateVersioned(ctx context.Context, w *workorder.WorkOrder, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.wo.WorkOrderID != w.WorkOrderID || s.wo.Version != expectedVersion {
		return workorder.ErrVersionConflict
	}
	next := *w
	next.Version = expectedVersion + 1
	s.wo = next
	w.Version = next.Version
	return nil
}
