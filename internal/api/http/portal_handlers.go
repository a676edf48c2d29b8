package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	appPortal "github.com/alphinus/kewa-app-sub000/internal/application/portal"
)

type respondRequest struct {
	Action            string     `json:"action" validate:"required,oneof=accept reject counter_offer start block unblock done"`
	ProposedCost      *string    `json:"proposedCost,omitempty"`
	ProposedStartDate *time.Time `json:"proposedStartDate,omitempty"`
	ProposedEndDate   *time.Time `json:"proposedEndDate,omitempty"`
	ContractorNotes   *string    `json:"contractorNotes,omitempty"`
	RejectionReason   *string    `json:"rejectionReason,omitempty"`
}

// peekWorkOrder resolves the link read-only. Repeatable; never changes state.
func (s *Server) peekWorkOrder(w http.ResponseWriter, r *http.Request) {
	presented := chi.URLParam(r, "token")
	workOrderID, err := parseUUIDParam(r, "workOrderId")
	if err != nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "link not found")
		return
	}

	d, err := s.portalSvc.Peek(r.Context(), presented, workOrderID)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	if !d.OK() {
		respondAccessDenied(w, d)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"workOrder": d.WorkOrder,
	})
}

// respondWorkOrder consumes the link and applies the contractor action.
func (s *Server) respondWorkOrder(w http.ResponseWriter, r *http.Request) {
	presented := chi.URLParam(r, "token")
	workOrderID, err := parseUUIDParam(r, "workOrderId")
	if err != nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "link not found")
		return
	}

	var req respondRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	in := appPortal.RespondInput{
		Action:            appPortal.Action(req.Action),
		ProposedStartDate: req.ProposedStartDate,
		ProposedEndDate:   req.ProposedEndDate,
		ContractorNotes:   req.ContractorNotes,
		RejectionReason:   req.RejectionReason,
	}
	if req.ProposedCost != nil {
		cost, err := decimal.NewFromString(*req.ProposedCost)
		if err != nil {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "proposedCost is not a valid decimal")
			return
		}
		in.ProposedCost = &cost
	}

	d, wo, err := s.portalSvc.Respond(r.Context(), presented, workOrderID, in)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	if !d.OK() {
		respondAccessDenied(w, d)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"workOrder": wo,
	})
}
