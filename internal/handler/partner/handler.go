package partner

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tandemapp/tandem/backend/internal/model/partner"
	aiservice "github.com/tandemapp/tandem/backend/internal/service/ai"
	"github.com/tandemapp/tandem/backend/pkg/utils"
)

// Handler exposes the AI conversation partner catalog.
type Handler struct {
	partners partner.Store
	aiSvc    *aiservice.Service
}

// New creates the partner handler. aiSvc may be nil; generation is then
// unavailable.
func New(partners partner.Store, aiSvc *aiservice.Service) *Handler {
	return &Handler{partners: partners, aiSvc: aiSvc}
}

// RegisterRoutes registers partner routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/partners", h.handleList)
	r.Post("/partners/generate", h.handleGenerate)
}

func (h *Handler) handleList(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.partners.List())
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if h.aiSvc == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "partner generation unavailable")
		return
	}

	var payload struct {
		Language string `json:"language"`
		Level    string `json:"level"`
		Hints    string `json:"hints"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Language == "" {
		utils.RespondError(w, http.StatusBadRequest, "language is required")
		return
	}
	if payload.Level == "" {
		payload.Level = "beginner"
	}

	generated, err := h.aiSvc.GeneratePartner(r.Context(), payload.Language, payload.Level, payload.Hints)
	if err != nil {
		log.Printf("[partner] generation failed: %v", err)
		utils.RespondError(w, http.StatusBadGateway, "partner generation failed")
		return
	}

	h.partners.Add(generated)
	utils.RespondJSON(w, http.StatusCreated, generated)
}
