package httpapi

import (
	"errors"
	"net/http"

	appAccess "github.com/alphinus/kewa-app-sub000/internal/application/access"
	appPortal "github.com/alphinus/kewa-app-sub000/internal/application/portal"
	"github.com/alphinus/kewa-app-sub000/internal/domain/workorder"
)

// respondDomainError maps protocol errors to HTTP responses. Unknown errors
// stay opaque; nothing from the infrastructure leaks to the caller.
func (s *Server) respondDomainError(w http.ResponseWriter, err error) {
	var illegal *workorder.IllegalTransitionError
	switch {
	case errors.Is(err, workorder.ErrNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", "work order not found")
	case errors.Is(err, workorder.ErrVersionConflict):
		respondError(w, http.StatusConflict, "VERSION_CONFLICT", "work order was modified concurrently, reload and retry")
	case errors.Is(err, workorder.ErrAlreadyPending):
		respondError(w, http.StatusConflict, "COUNTER_OFFER_PENDING", "a counter-offer is already pending")
	case errors.Is(err, workorder.ErrNothingPending):
		respondError(w, http.StatusConflict, "NO_COUNTER_OFFER_PENDING", "no counter-offer is pending")
	case errors.Is(err, workorder.ErrUseCounterOffer):
		respondError(w, http.StatusUnprocessableEntity, "USE_COUNTER_OFFER", "the offered cost differs from the baseline, submit a counter-offer instead")
	case errors.Is(err, workorder.ErrNoChangeProposed):
		respondError(w, http.StatusUnprocessableEntity, "NO_CHANGE_PROPOSED", "the proposal matches the current terms")
	case errors.Is(err, workorder.ErrReasonRequired):
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "a rejection reason is required")
	case errors.Is(err, appPortal.ErrUnknownAction):
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "unknown action")
	case errors.As(err, &illegal):
		respondError(w, http.StatusUnprocessableEntity, "ILLEGAL_TRANSITION", illegal.Error())
	default:
		s.logger.Error().Err(err).Msg("request failed")
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// respondAccessDenied renders the non-ok access decision kinds. A dead link
// carries no detail about the order it pointed at.
func respondAccessDenied(w http.ResponseWriter, d *appAccess.Decision) {
	switch d.Kind {
	case appAccess.KindExpired:
		respondError(w, http.StatusGone, "LINK_EXPIRED", "this link has expired, request a new one")
	case appAccess.KindRevoked:
		respondError(w, http.StatusGone, "LINK_REVOKED", "this link has been revoked, request a new one")
	case appAccess.KindWorkOrderClosed:
		respondError(w, http.StatusConflict, "WORK_ORDER_CLOSED", "this work order is no longer open to responses")
	default:
		respondError(w, http.StatusNotFound, "NOT_FOUND", "link not found")
	}
}
