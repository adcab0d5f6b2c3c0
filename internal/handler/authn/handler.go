package authn

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tandemapp/tandem/backend/internal/auth"
	"github.com/tandemapp/tandem/backend/internal/config"
	"github.com/tandemapp/tandem/backend/pkg/utils"
)

// Handler issues guest identities. There is no password flow; a guest
// token is the only credential the app needs.
type Handler struct {
	cfg config.AuthConfig
}

// New creates the auth handler.
func New(cfg config.AuthConfig) *Handler {
	return &Handler{cfg: cfg}
}

// RegisterRoutes registers auth routes on the public router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/guest", h.handleGuest)
}

func (h *Handler) handleGuest(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := strings.TrimSpace(payload.Name)
	if name == "" {
		utils.RespondError(w, http.StatusBadRequest, "name is required")
		return
	}

	expiresAt := time.Now().Add(h.cfg.TokenTTL)
	claims := auth.Claims{
		Sub:  uuid.NewString(),
		Name: name,
		JTI:  uuid.NewString(),
		Exp:  expiresAt.Unix(),
	}

	token, err := auth.IssueToken([]byte(h.cfg.Secret), claims)
	if err != nil {
		log.Printf("[auth] token issue failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "could not issue token")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]any{
		"token":     token,
		"userId":    claims.Sub,
		"name":      claims.Name,
		"expiresAt": expiresAt.UTC().Format(time.RFC3339),
	})
}
