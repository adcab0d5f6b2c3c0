package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tandemapp/tandem/backend/internal/middleware"
	"github.com/tandemapp/tandem/backend/internal/model/chat"
	"github.com/tandemapp/tandem/backend/internal/model/partner"
	chatservice "github.com/tandemapp/tandem/backend/internal/service/chat"
	"github.com/tandemapp/tandem/backend/pkg/utils"
)

// ChatService abstracts conversation state for testing.
type ChatService interface {
	CreateSession(ctx context.Context, userID, partnerID string) (chat.Session, error)
	GetSession(ctx context.Context, sessionID string) (chat.Session, error)
	SaveMessage(ctx context.Context, message chat.Message) error
	LoadTranscript(ctx context.Context, sessionID string) ([]chat.Message, error)
}

// Handler exposes one-on-one partner conversations.
type Handler struct {
	chatSvc      ChatService
	partnerStore partner.Store
}

// New creates the chat handler.
func New(chatSvc ChatService, partnerStore partner.Store) *Handler {
	return &Handler{
		chatSvc:      chatSvc,
		partnerStore: partnerStore,
	}
}

// RegisterRoutes registers chat routes; requires the authenticator.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat/sessions", h.handleCreateSession)
	r.Get("/chat/sessions/{sessionID}/messages", h.handleTranscript)
	r.Post("/chat/messages", h.handleSaveMessage)
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var payload struct {
		PartnerID string `json:"partnerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if payload.PartnerID == "" {
		utils.RespondError(w, http.StatusBadRequest, "partnerId is required")
		return
	}

	if _, ok := h.partnerStore.FindByID(payload.PartnerID); !ok {
		utils.RespondError(w, http.StatusBadRequest, "partner not found")
		return
	}

	session, err := h.chatSvc.CreateSession(r.Context(), identity.ID, payload.PartnerID)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	session, err := h.chatSvc.GetSession(r.Context(), sessionID)
	if errors.Is(err, chatservice.ErrSessionNotFound) {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		log.Printf("[chat] session lookup failed for session=%s: %v", sessionID, err)
		utils.RespondError(w, http.StatusInternalServerError, "could not load session")
		return
	}
	if session.UserID != identity.ID {
		utils.RespondError(w, http.StatusForbidden, "session belongs to another user")
		return
	}

	messages, err := h.chatSvc.LoadTranscript(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	utils.RespondJSON(w, http.StatusOK, messages)
}

func (h *Handler) handleSaveMessage(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var payload struct {
		SessionID   string `json:"sessionId"`
		Sender      string `json:"sender"`
		Content     string `json:"content"`
		Correction  string `json:"correction"`
		Translation string `json:"translation"`
		AudioRef    string `json:"audioRef"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.chatSvc.GetSession(r.Context(), payload.SessionID)
	if errors.Is(err, chatservice.ErrSessionNotFound) {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		log.Printf("[chat] session lookup failed for session=%s: %v", payload.SessionID, err)
		utils.RespondError(w, http.StatusInternalServerError, "could not load session")
		return
	}
	if session.UserID != identity.ID {
		utils.RespondError(w, http.StatusForbidden, "session belongs to another user")
		return
	}

	message := chat.Message{
		SessionID:   payload.SessionID,
		Sender:      payload.Sender,
		Content:     payload.Content,
		Correction:  payload.Correction,
		Translation: payload.Translation,
		AudioRef:    payload.AudioRef,
	}

	if err := h.chatSvc.SaveMessage(r.Context(), message); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, chatservice.ErrSessionNotFound) {
			status = http.StatusNotFound
		}
		utils.RespondError(w, status, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}
