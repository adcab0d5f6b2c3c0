package lesson

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	lessonservice "github.com/tandemapp/tandem/backend/internal/service/lesson"
	"github.com/tandemapp/tandem/backend/pkg/utils"
)

// Handler serves generated lessons.
type Handler struct {
	svc *lessonservice.Service
}

// New creates the lesson handler.
func New(svc *lessonservice.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers lesson routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/lessons", h.handleGet)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	language := r.URL.Query().Get("language")
	level := r.URL.Query().Get("level")
	topic := r.URL.Query().Get("topic")

	if language == "" || topic == "" {
		utils.RespondError(w, http.StatusBadRequest, "language and topic query parameters are required")
		return
	}
	if level == "" {
		level = "beginner"
	}

	lesson, err := h.svc.Get(r.Context(), language, level, topic)
	if err != nil {
		log.Printf("[lesson] generation failed for %s/%s/%s: %v", language, level, topic, err)
		utils.RespondError(w, http.StatusBadGateway, "lesson generation failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, lesson)
}
