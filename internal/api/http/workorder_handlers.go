package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appNegotiation "github.com/alphinus/kewa-app-sub000/internal/application/negotiation"
	appWorkOrder "github.com/alphinus/kewa-app-sub000/internal/application/workorder"
	"github.com/alphinus/kewa-app-sub000/internal/domain/notification"
	"github.com/alphinus/kewa-app-sub000/internal/domain/workorder"
)

type createWorkOrderRequest struct {
	Title              string     `json:"title" validate:"required,max=200"`
	Description        string     `json:"description"`
	EstimatedCost      string     `json:"estimatedCost" validate:"required"`
	RequestedStartDate time.Time  `json:"requestedStartDate" validate:"required"`
	RequestedEndDate   time.Time  `json:"requestedEndDate" validate:"required"`
	AcceptanceDeadline *time.Time `json:"acceptanceDeadline,omitempty"`
}

type sendWorkOrderRequest struct {
	ContractorEmail string `json:"contractorEmail" validate:"required,email"`
	ExpectedVersion int64  `json:"expectedVersion" validate:"required,min=1"`
}

type counterDecisionRequest struct {
	Decision        string  `json:"decision" validate:"required,oneof=approved rejected"`
	Note            *string `json:"note,omitempty"`
	ExpectedVersion int64   `json:"expectedVersion" validate:"required,min=1"`
}

type versionedRequest struct {
	ExpectedVersion int64 `json:"expectedVersion" validate:"required,min=1"`
}

func (s *Server) createWorkOrder(w http.ResponseWriter, r *http.Request) {
	var req createWorkOrderRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	cost, err := decimal.NewFromString(req.EstimatedCost)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "estimatedCost is not a valid decimal")
		return
	}

	wo, err := s.workOrderSvc.CreateDraft(r.Context(), appWorkOrder.CreateInput{
		Title:              req.Title,
		Description:        req.Description,
		EstimatedCost:      cost,
		RequestedStartDate: req.RequestedStartDate,
		RequestedEndDate:   req.RequestedEndDate,
		AcceptanceDeadline: req.AcceptanceDeadline,
	}, operatorActor(r))
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, wo)
}

func (s *Server) listWorkOrders(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r, 50, 200)
	var filter workorder.Filter
	if v := r.URL.Query().Get("status"); v != "" {
		st := workorder.Status(v)
		filter.Status = &st
	}
	if v := r.URL.Query().Get("contractorEmail"); v != "" {
		filter.ContractorEmail = &v
	}

	orders, err := s.workOrderSvc.List(r.Context(), filter, limit, offset)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	if orders == nil {
		orders = []*workorder.WorkOrder{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"workOrders": orders,
		"limit":      limit,
		"offset":     offset,
	})
}

func (s *Server) getWorkOrder(w http.ResponseWriter, r *http.Request) {
	workOrderID, err := parseUUIDParam(r, "workOrderId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid work order id")
		return
	}
	wo, err := s.workOrderSvc.Get(r.Context(), workOrderID)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	if wo == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "work order not found")
		return
	}
	respondJSON(w, http.StatusOK, wo)
}

func (s *Server) sendWorkOrder(w http.ResponseWriter, r *http.Request) {
	workOrderID, err := parseUUIDParam(r, "workOrderId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid work order id")
		return
	}
	var req sendWorkOrderRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	wo, err := s.workOrderSvc.Send(r.Context(), workOrderID, req.ExpectedVersion, req.ContractorEmail, operatorActor(r))
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, wo)
}

func (s *Server) reissueLink(w http.ResponseWriter, r *http.Request) {
	workOrderID, err := parseUUIDParam(r, "workOrderId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid work order id")
		return
	}
	tok, err := s.workOrderSvc.ReissueLink(r.Context(), workOrderID, operatorActor(r))
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	// The plaintext travels to the contractor only; operators see metadata.
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"tokenId":   tok.TokenID,
		"issuedAt":  tok.IssuedAt,
		"expiresAt": tok.ExpiresAt,
	})
}

func (s *Server) decideCounterOffer(w http.ResponseWriter, r *http.Request) {
	workOrderID, err := parseUUIDParam(r, "workOrderId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid work order id")
		return
	}
	var req counterDecisionRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	wo, err := s.negotiationSvc.DecideCounter(r.Context(), workOrderID, req.ExpectedVersion, appNegotiation.CounterDecision(req.Decision), req.Note, operatorActor(r))
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, wo)
}

func (s *Server) inspectWorkOrder(w http.ResponseWriter, r *http.Request) {
	s.applyVersioned(w, r, s.workOrderSvc.Inspect)
}

func (s *Server) closeWorkOrder(w http.ResponseWriter, r *http.Request) {
	s.applyVersioned(w, r, s.workOrderSvc.Close)
}

func (s *Server) applyVersioned(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id uuid.UUID, expectedVersion int64, actor string) (*workorder.WorkOrder, error)) {
	workOrderID, err := parseUUIDParam(r, "workOrderId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid work order id")
		return
	}
	var req versionedRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	wo, err := fn(r.Context(), workOrderID, req.ExpectedVersion, operatorActor(r))
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, wo)
}

func (s *Server) listAuditTrail(w http.ResponseWriter, r *http.Request) {
	workOrderID, err := parseUUIDParam(r, "workOrderId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid work order id")
		return
	}
	limit, _ := parseLimitOffset(r, 100, 500)
	events, err := s.auditSvc.History(r.Context(), workOrderID, limit)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
	})
}

// streamEvents serves the operator event stream over SSE.
func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	client := notification.NewStreamClient(uuid.New().String())
	s.hub.Register(client)
	defer s.hub.Unregister(client.ClientID)

	s.logger.Debug().Str("client_id", client.ClientID).Msg("stream client connected")

	fmt.Fprintf(w, "event: connected\ndata: {\"clientId\":%q}\n\n", client.ClientID)
	flusher.Flush()

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		case msg, ok := <-client.MessageChan:
			if !ok {
				return
			}
			fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", msg.ID, msg.Event, msg.Data)
			flusher.Flush()
		}
	}
}
