package group

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tandemapp/tandem/backend/internal/middleware"
	groupservice "github.com/tandemapp/tandem/backend/internal/service/group"
	"github.com/tandemapp/tandem/backend/pkg/utils"
)

// Handler exposes group sessions over HTTP. The join endpoint is the
// landing target of shared links, so its responses are the terminal
// outcomes a join page can render directly.
type Handler struct {
	svc *groupservice.Service
}

// New creates the group handler.
func New(svc *groupservice.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers group routes; the router must have applied the
// authenticator first.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/groups", h.handleCreate)
	r.Get("/groups/active", h.handleActive)
	r.Get("/groups/{groupID}", h.handleGet)
	r.Post("/groups/{groupID}/join", h.handleJoin)
	r.Post("/groups/{groupID}/leave", h.handleLeave)
	r.Post("/groups/{groupID}/messages", h.handlePostMessage)
	r.Put("/groups/{groupID}/topic", h.handleSetTopic)
	r.Get("/groups/{groupID}/ws", h.handleWebSocket)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var payload struct {
		Text  string `json:"text"`
		Topic string `json:"topic"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Text == "" {
		utils.RespondError(w, http.StatusBadRequest, "text is required")
		return
	}

	session, err := h.svc.Create(r.Context(), identity.ID, identity.Name, payload.Text, payload.Topic)
	if err != nil {
		log.Printf("[group] create failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "could not create session")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	if groupID == "" {
		utils.RespondError(w, http.StatusBadRequest, "no id provided")
		return
	}

	session, err := h.svc.Get(r.Context(), groupID)
	if errors.Is(err, groupservice.ErrSessionNotFound) {
		utils.RespondError(w, http.StatusNotFound, "session does not exist or is unavailable")
		return
	}
	if err != nil {
		log.Printf("[group] get failed for session=%s: %v", groupID, err)
		utils.RespondError(w, http.StatusInternalServerError, "could not load session")
		return
	}

	utils.RespondJSON(w, http.StatusOK, session)
}

// handleJoin runs the single-shot join sequence. NotFound and unexpected
// failures both render as an unavailable session to the user; the status
// codes stay distinct for clients that care.
func (h *Handler) handleJoin(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	groupID := chi.URLParam(r, "groupID")
	if groupID == "" {
		utils.RespondError(w, http.StatusBadRequest, "no id provided")
		return
	}

	outcome, err := h.svc.Join(r.Context(), groupID, identity.ID)
	if err != nil {
		log.Printf("[group] join failed for session=%s user=%s: %v", groupID, identity.ID, err)
	}

	switch outcome {
	case groupservice.JoinOutcomeJoined, groupservice.JoinOutcomeAlreadyMember:
		utils.RespondJSON(w, http.StatusOK, map[string]string{"outcome": string(outcome), "sessionId": groupID})
	case groupservice.JoinOutcomeNotFound:
		utils.RespondError(w, http.StatusNotFound, "session does not exist or is unavailable")
	case groupservice.JoinOutcomeFull:
		utils.RespondError(w, http.StatusConflict, "session is full")
	default:
		utils.RespondError(w, http.StatusInternalServerError, "could not join")
	}
}

func (h *Handler) handleLeave(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	groupID := chi.URLParam(r, "groupID")
	err := h.svc.Leave(r.Context(), groupID, identity.ID)
	if errors.Is(err, groupservice.ErrSessionNotFound) {
		utils.RespondError(w, http.StatusNotFound, "session does not exist or is unavailable")
		return
	}
	if err != nil {
		log.Printf("[group] leave failed for session=%s user=%s: %v", groupID, identity.ID, err)
		utils.RespondError(w, http.StatusInternalServerError, "could not leave session")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "left"})
}

func (h *Handler) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	groupID := chi.URLParam(r, "groupID")

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Text == "" {
		utils.RespondError(w, http.StatusBadRequest, "text is required")
		return
	}

	msg, err := h.svc.Post(r.Context(), groupID, identity.ID, identity.Name, payload.Text)
	switch {
	case errors.Is(err, groupservice.ErrSessionNotFound):
		utils.RespondError(w, http.StatusNotFound, "session does not exist or is unavailable")
	case errors.Is(err, groupservice.ErrNotMember):
		utils.RespondError(w, http.StatusForbidden, "not a member of this session")
	case err != nil:
		log.Printf("[group] post failed for session=%s: %v", groupID, err)
		utils.RespondError(w, http.StatusInternalServerError, "could not send message")
	default:
		utils.RespondJSON(w, http.StatusCreated, msg)
	}
}

func (h *Handler) handleSetTopic(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	groupID := chi.URLParam(r, "groupID")

	var payload struct {
		Topic string `json:"topic"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.svc.SetTopic(r.Context(), groupID, identity.ID, payload.Topic)
	switch {
	case errors.Is(err, groupservice.ErrSessionNotFound):
		utils.RespondError(w, http.StatusNotFound, "session does not exist or is unavailable")
	case errors.Is(err, groupservice.ErrNotMember):
		utils.RespondError(w, http.StatusForbidden, "not a member of this session")
	case err != nil:
		log.Printf("[group] set topic failed for session=%s: %v", groupID, err)
		utils.RespondError(w, http.StatusInternalServerError, "could not set topic")
	default:
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
	}
}

// handleActive lets the default view discover the caller's current
// session after a join redirect.
func (h *Handler) handleActive(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	sessionID, err := h.svc.Active(r.Context(), identity.ID)
	if err != nil {
		log.Printf("[group] active lookup failed for user=%s: %v", identity.ID, err)
		utils.RespondError(w, http.StatusInternalServerError, "could not read active session")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"sessionId": sessionID})
}
