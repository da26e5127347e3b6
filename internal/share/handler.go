package share

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"ai-study-planner/internal/plan"

	"github.com/go-chi/chi/v5"
)

// PlanSource returns the owner's stored plan and the week it belongs to.
// A nil plan means nothing is stored.
type PlanSource func(owner string) (*plan.Plan, string, error)

// Handler serves GET /share/{token}.
type Handler struct {
	signer *Signer
	source PlanSource
}

// NewHandler creates a share Handler.
func NewHandler(signer *Signer, source PlanSource) *Handler {
	return &Handler{signer: signer, source: source}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, err := h.signer.Verify(chi.URLParam(r, "token"))
	if errors.Is(err, ErrExpiredToken) {
		http.Error(w, "This share link has expired.", http.StatusGone)
		return
	}
	if err != nil {
		http.Error(w, "Invalid share link.", http.StatusNotFound)
		return
	}

	p, weekKey, err := h.source(claims.Owner())
	if err != nil {
		log.Printf("Failed to load shared plan for %s: %v", claims.Owner(), err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if p == nil || weekKey != claims.WeekKey {
		http.Error(w, "This plan is no longer available.", http.StatusGone)
		return
	}

	if r.URL.Query().Get("format") == "json" {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(p); err != nil {
			log.Printf("Failed to encode shared plan: %v", err)
		}
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(plan.FormatText(p)))
}
