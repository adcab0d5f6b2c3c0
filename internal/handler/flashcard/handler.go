package flashcard

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tandemapp/tandem/backend/internal/middleware"
	flashcardservice "github.com/tandemapp/tandem/backend/internal/service/flashcard"
	"github.com/tandemapp/tandem/backend/pkg/utils"
)

// Handler exposes flashcard decks; requires the authenticator.
type Handler struct {
	svc *flashcardservice.Service
}

// New creates the flashcard handler.
func New(svc *flashcardservice.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers deck routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/decks", h.handleCreateDeck)
	r.Get("/decks", h.handleListDecks)
	r.Get("/decks/{deckID}", h.handleGetDeck)
	r.Delete("/decks/{deckID}", h.handleDeleteDeck)
	r.Post("/decks/{deckID}/cards", h.handleAddCard)
	r.Delete("/decks/{deckID}/cards/{cardID}", h.handleDeleteCard)
	r.Put("/decks/{deckID}/order", h.handleReorder)
}

func (h *Handler) handleCreateDeck(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var payload struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Name == "" {
		utils.RespondError(w, http.StatusBadRequest, "name is required")
		return
	}

	deck, err := h.svc.CreateDeck(r.Context(), identity.ID, payload.Name)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not create deck")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, deck)
}

func (h *Handler) handleListDecks(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	utils.RespondJSON(w, http.StatusOK, h.svc.ListDecks(r.Context(), identity.ID))
}

func (h *Handler) handleGetDeck(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	deck, err := h.svc.GetDeck(r.Context(), identity.ID, chi.URLParam(r, "deckID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, deck)
}

func (h *Handler) handleDeleteDeck(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.svc.DeleteDeck(r.Context(), identity.ID, chi.URLParam(r, "deckID")); err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) handleAddCard(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var payload struct {
		Front string `json:"front"`
		Back  string `json:"back"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Front == "" {
		utils.RespondError(w, http.StatusBadRequest, "front is required")
		return
	}

	card, err := h.svc.AddCard(r.Context(), identity.ID, chi.URLParam(r, "deckID"), payload.Front, payload.Back)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, card)
}

func (h *Handler) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	err := h.svc.DeleteCard(r.Context(), identity.ID, chi.URLParam(r, "deckID"), chi.URLParam(r, "cardID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) handleReorder(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var payload struct {
		CardIDs []string `json:"cardIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.Reorder(r.Context(), identity.ID, chi.URLParam(r, "deckID"), payload.CardIDs); err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "reordered"})
}

func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, flashcardservice.ErrDeckNotFound):
		utils.RespondError(w, http.StatusNotFound, "deck not found")
	case errors.Is(err, flashcardservice.ErrCardNotFound):
		utils.RespondError(w, http.StatusBadRequest, "card not found")
	case errors.Is(err, flashcardservice.ErrNotOwner):
		utils.RespondError(w, http.StatusForbidden, "deck belongs to another user")
	default:
		utils.RespondError(w, http.StatusInternalServerError, "deck operation failed")
	}
}
