package httpapi

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appAudit "github.com/alphinus/kewa-app-sub000/internal/application/audit"
	appNegotiation "github.com/alphinus/kewa-app-sub000/internal/application/negotiation"
	appPortal "github.com/alphinus/kewa-app-sub000/internal/application/portal"
	appWorkOrder "github.com/alphinus/kewa-app-sub000/internal/application/workorder"
	"github.com/alphinus/kewa-app-sub000/internal/infrastructure/sse"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	portalSvc      *appPortal.Service
	workOrderSvc   *appWorkOrder.Service
	negotiationSvc *appNegotiation.Service
	auditSvc       *appAudit.Service
	hub            *sse.Hub
	operatorAPIKey string
	validate       *validator.Validate
	logger         zerolog.Logger
}

func NewServer(
	portalSvc *appPortal.Service,
	workOrderSvc *appWorkOrder.Service,
	negotiationSvc *appNegotiation.Service,
	auditSvc *appAudit.Service,
	hub *sse.Hub,
	operatorAPIKey string,
	logger zerolog.Logger,
) *Server {
	return &Server{
		portalSvc:      portalSvc,
		workOrderSvc:   workOrderSvc,
		negotiationSvc: negotiationSvc,
		auditSvc:       auditSvc,
		hub:            hub,
		operatorAPIKey: operatorAPIKey,
		validate:       validator.New(),
		logger:         logger.With().Str("component", "http").Logger(),
	}
}

// Router builds the HTTP router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		// Contractor portal: the token in the path is the only credential.
		r.Route("/portal/{token}/work-orders/{workOrderId}", func(r chi.Router) {
			r.Get("/", s.peekWorkOrder)
			r.Post("/respond", s.respondWorkOrder)
		})

		// Operator API.
		r.Group(func(r chi.Router) {
			r.Use(s.requireOperatorKey)

			r.Route("/work-orders", func(r chi.Router) {
				r.Post("/", s.createWorkOrder)
				r.Get("/", s.listWorkOrders)
				r.Get("/{workOrderId}", s.getWorkOrder)
				r.Post("/{workOrderId}/send", s.sendWorkOrder)
				r.Post("/{workOrderId}/reissue-link", s.reissueLink)
				r.Post("/{workOrderId}/counter-offer/decision", s.decideCounterOffer)
				r.Post("/{workOrderId}/inspect", s.inspectWorkOrder)
				r.Post("/{workOrderId}/close", s.closeWorkOrder)
				r.Get("/{workOrderId}/audit", s.listAuditTrail)
			})

			r.Get("/events", s.streamEvents)
		})
	})

	return r
}

func (s *Server) requireOperatorKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-API-Key")
		if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(s.operatorAPIKey)) != 1 {
			respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// operatorActor derives the audit actor string for operator calls.
func operatorActor(r *http.Request) string {
	name := r.Header.Get("X-Operator")
	if name == "" {
		name = "operator"
	}
	return "operator:" + name
}

// Helpers
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error":   code,
		"message": message,
	})
}

func parseUUIDParam(r *http.Request, key string) (uuid.UUID, error) {
	val := chi.URLParam(r, key)
	return uuid.Parse(val)
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func parseLimitOffset(r *http.Request, defaultLimit, maxLimit int) (int, int) {
	limit := defaultLimit
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil {
			limit = l
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if o, err := strconv.Atoi(v); err == nil {
			offset = o
		}
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
