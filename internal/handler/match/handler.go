// Package match exposes the university matcher over HTTP.
package match

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	matchmodel "github.com/abaanfida/unixora/internal/model/match"
	matchservice "github.com/abaanfida/unixora/internal/service/match"
	"github.com/abaanfida/unixora/pkg/utils"
)

// Handler serves the match endpoint.
type Handler struct {
	matchSvc *matchservice.Service
}

// New creates the match handler.
func New(matchSvc *matchservice.Service) *Handler {
	return &Handler{matchSvc: matchSvc}
}

// RegisterRoutes registers the match routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/match", h.handleMatch)
}

func (h *Handler) handleMatch(w http.ResponseWriter, r *http.Request) {
	var form matchmodel.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if form.FieldOfStudy == "" {
		utils.RespondError(w, http.StatusBadRequest, "field_of_study is required")
		return
	}

	response, err := h.matchSvc.Find(r.Context(), form)
	if err != nil {
		log.Printf("[match] find failed: %v", err)
		utils.RespondError(w, http.StatusBadGateway, "Failed to find matches. Please check if the API server is running.")
		return
	}

	utils.RespondJSON(w, http.StatusOK, response)
}
