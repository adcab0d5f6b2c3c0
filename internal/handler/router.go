package handler

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tandemapp/tandem/backend/internal/config"
	authnhandler "github.com/tandemapp/tandem/backend/internal/handler/authn"
	chathandler "github.com/tandemapp/tandem/backend/internal/handler/chat"
	flashcardhandler "github.com/tandemapp/tandem/backend/internal/handler/flashcard"
	grouphandler "github.com/tandemapp/tandem/backend/internal/handler/group"
	lessonhandler "github.com/tandemapp/tandem/backend/internal/handler/lesson"
	partnerhandler "github.com/tandemapp/tandem/backend/internal/handler/partner"
	speechhandler "github.com/tandemapp/tandem/backend/internal/handler/speech"
	"github.com/tandemapp/tandem/backend/internal/handler/stream"
	middlewarePkg "github.com/tandemapp/tandem/backend/internal/middleware"
	partnermodel "github.com/tandemapp/tandem/backend/internal/model/partner"
	aiservice "github.com/tandemapp/tandem/backend/internal/service/ai"
	chatservice "github.com/tandemapp/tandem/backend/internal/service/chat"
	flashcardservice "github.com/tandemapp/tandem/backend/internal/service/flashcard"
	groupservice "github.com/tandemapp/tandem/backend/internal/service/group"
	lessonservice "github.com/tandemapp/tandem/backend/internal/service/lesson"
	speechservice "github.com/tandemapp/tandem/backend/internal/service/speech"
	"github.com/tandemapp/tandem/backend/pkg/utils"
)

// Services bundles everything the router wires up. AI, Lessons and Speech
// may be nil when their credentials are missing; the matching routes then
// respond 503.
type Services struct {
	AuthCfg    config.AuthConfig
	Partners   partnermodel.Store
	Chat       *chatservice.Service
	Group      *groupservice.Service
	Flashcards *flashcardservice.Service
	AI         *aiservice.Service
	Lessons    *lessonservice.Service
	Speech     *speechservice.Service
}

// NewRouter wires HTTP routes to core services.
func NewRouter(s Services) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	authnHandler := authnhandler.New(s.AuthCfg)
	partnerHandler := partnerhandler.New(s.Partners, s.AI)
	chatHandler := chathandler.New(s.Chat, s.Partners)
	groupHandler := grouphandler.New(s.Group)
	flashcardHandler := flashcardhandler.New(s.Flashcards)

	var streamHandler *stream.Handler
	if s.AI != nil {
		streamHandler = stream.New(s.AI, s.Chat, s.Partners)
	}

	r.Route("/api", func(api chi.Router) {
		// Public surface: sign-in, the partner catalog and lessons.
		authnHandler.RegisterRoutes(api)
		partnerHandler.RegisterRoutes(api)

		if s.Lessons != nil {
			lessonhandler.New(s.Lessons).RegisterRoutes(api)
		} else {
			api.Get("/lessons", func(w http.ResponseWriter, _ *http.Request) {
				utils.RespondError(w, http.StatusServiceUnavailable, "lesson generation unavailable")
			})
		}

		// Everything below requires an authenticated caller.
		api.Group(func(private chi.Router) {
			private.Use(middlewarePkg.Authenticator([]byte(s.AuthCfg.Secret)))

			chatHandler.RegisterRoutes(private)
			groupHandler.RegisterRoutes(private)
			flashcardHandler.RegisterRoutes(private)

			private.Get("/stream/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
				sessionID := chi.URLParam(r, "sessionID")
				userMessage := r.URL.Query().Get("message")

				if streamHandler == nil {
					utils.RespondError(w, http.StatusServiceUnavailable, "ai streaming unavailable")
					return
				}
				if userMessage == "" {
					utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
					return
				}

				identity, ok := middlewarePkg.IdentityFromContext(r.Context())
				if !ok {
					utils.RespondError(w, http.StatusUnauthorized, "authentication required")
					return
				}

				if err := streamHandler.HandleStreamRequest(r.Context(), w, sessionID, userMessage, identity.ID); err != nil {
					log.Printf("[stream] error handling request: %v", err)
				}
			})

			if s.Speech != nil {
				speechhandler.New(s.Speech).RegisterRoutes(private)
			}
		})
	})

	return r
}
