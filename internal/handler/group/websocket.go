package group

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/tandemapp/tandem/backend/internal/model/group"
	"github.com/tandemapp/tandem/backend/pkg/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// feedEvent is one change-feed delivery. Session carries the full current
// state; a "deleted" event has no session and ends the feed.
type feedEvent struct {
	Type      string         `json:"type"`
	Session   *group.Session `json:"session,omitempty"`
	Timestamp int64          `json:"timestamp"`
}

// handleWebSocket attaches the caller to the session's change feed. The
// full current state is pushed immediately and again after every store
// commit; a fast burst of mutations may coalesce to the latest state.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	if groupID == "" {
		utils.RespondError(w, http.StatusBadRequest, "no id provided")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[group] websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// Buffered so a slow socket never blocks store mutations; dropped
	// intermediate states are fine because every delivery is the full
	// current state.
	updates := make(chan *group.Session, 16)
	unsubscribe, err := h.svc.Subscribe(r.Context(), groupID, func(s *group.Session) {
		select {
		case updates <- s:
		default:
			select {
			case <-updates:
			default:
			}
			updates <- s
		}
	})
	if err != nil {
		_ = conn.WriteJSON(feedEvent{Type: "error", Timestamp: time.Now().UnixMilli()})
		return
	}
	defer unsubscribe()

	// Reader goroutine only detects the client going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case session := <-updates:
			event := feedEvent{Type: "session", Session: session, Timestamp: time.Now().UnixMilli()}
			if session == nil {
				event.Type = "deleted"
			}
			if err := conn.WriteJSON(event); err != nil {
				log.Printf("[group] websocket write failed for session=%s: %v", groupID, err)
				return
			}
			if session == nil {
				return
			}
		}
	}
}
