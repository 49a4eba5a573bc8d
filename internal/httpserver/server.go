// Package httpserver exposes a read-only diagnostic surface over the decision
// trail and the activity-failure ledger. It is operator tooling around the
// engine; nothing here participates in negotiation or acceptance decisions.
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gridmarket/negotiator/internal/auth"
	"github.com/gridmarket/negotiator/internal/ledger"
	"github.com/gridmarket/negotiator/internal/trail"
)

type Server struct {
	store    trail.Store
	recorder trail.Recorder
	ledger   *ledger.Ledger
}

// New builds the server. The recorder receives decisions posted by an
// embedding process; when nil, posted decisions go straight to the store.
func New(store trail.Store, recorder trail.Recorder, ledger *ledger.Ledger) *Server {
	return &Server{store: store, recorder: recorder, ledger: ledger}
}

// Router builds the chi router. When jwtSecret is empty the API is open;
// otherwise every route except the health check requires a bearer token.
func (s *Server) Router(jwtSecret string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealth)

	r.Group(func(r chi.Router) {
		if jwtSecret != "" {
			r.Use(auth.BearerMiddleware(jwtSecret))
		}
		r.Post("/decisions", s.handleAppendDecision)
		r.Get("/decisions", s.handleListDecisions)
		r.Get("/decisions/{id}", s.handleGetDecision)
		r.Get("/agreements/{id}/acceptance", s.handleAgreementAcceptance)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAppendDecision(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var d trail.Decision
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if d.Kind == "" {
		respondError(w, http.StatusBadRequest, "kind required")
		return
	}
	if d.ID == "" {
		d.ID = trail.NewUUID()
	}
	if s.recorder != nil {
		s.recorder.Record(r.Context(), d)
	} else if err := s.store.AppendDecision(r.Context(), &d); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"id": d.ID})
}

func (s *Server) handleGetDecision(w http.ResponseWriter, r *http.Request) {
	d, err := s.store.GetDecision(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, trail.ErrNotFound) {
		respondError(w, http.StatusNotFound, "decision not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, d)
}

func (s *Server) handleListDecisions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := trail.Filter{
		AgreementID: q.Get("agreementId"),
		ActivityID:  q.Get("activityId"),
		Kind:        trail.Kind(q.Get("kind")),
	}
	decisions, err := s.store.ListDecisions(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"decisions": decisions})
}

func (s *Server) handleAgreementAcceptance(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil {
		respondError(w, http.StatusNotFound, "no ledger attached")
		return
	}
	agreementID := chi.URLParam(r, "id")
	activities := s.ledger.AgreementActivities(agreementID)
	perActivity := make(map[string]string, len(activities))
	for _, id := range activities {
		perActivity[id] = s.ledger.AcceptedAmount(id).String()
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"agreementId":       agreementID,
		"hasFailedActivity": s.ledger.HasFailedActivity(agreementID),
		"acceptedTotal":     s.ledger.AgreementAcceptedTotal(agreementID).String(),
		"acceptedAmounts":   perActivity,
	})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
