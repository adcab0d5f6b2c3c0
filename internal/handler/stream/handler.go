package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/cloudwego/eino/schema"

	"github.com/tandemapp/tandem/backend/internal/model/chat"
	"github.com/tandemapp/tandem/backend/internal/model/partner"
	aiservice "github.com/tandemapp/tandem/backend/internal/service/ai"
	chatservice "github.com/tandemapp/tandem/backend/internal/service/chat"
	"github.com/tandemapp/tandem/backend/pkg/utils"
)

// Handler streams AI partner replies via Server-Sent Events.
type Handler struct {
	aiService *aiservice.Service
	chatSvc   *chatservice.Service
	partners  partner.Store
}

// New creates a new stream handler.
func New(aiSvc *aiservice.Service, chatSvc *chatservice.Service, partners partner.Store) *Handler {
	return &Handler{
		aiService: aiSvc,
		chatSvc:   chatSvc,
		partners:  partners,
	}
}

// StreamResponse represents a streaming response chunk.
type StreamResponse struct {
	Event     string `json:"event"`
	Content   string `json:"content,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Finished  bool   `json:"finished,omitempty"`
	Error     string `json:"error,omitempty"`
}

// HandleStreamRequest generates and streams the partner's reply for one
// user message. userID must own the session.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, sessionID, userMessage, userID string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("streaming unsupported")
	}

	utils.SetupSSEHeaders(w)

	session, p, err := h.getSessionPartner(ctx, sessionID)
	if err != nil {
		h.sendSSEError(w, flusher, fmt.Sprintf("failed to resolve session: %v", err))
		return err
	}
	if session.UserID != userID {
		err := fmt.Errorf("session %s belongs to another user", sessionID)
		h.sendSSEError(w, flusher, "session belongs to another user")
		return err
	}

	messages, err := h.chatSvc.LoadTranscript(ctx, session.ID)
	if err != nil {
		h.sendSSEError(w, flusher, fmt.Sprintf("failed to load conversation: %v", err))
		return err
	}

	// Save the user message unless the client already persisted it via REST.
	if !hasMatchingUserMessage(messages, sessionID, userMessage) {
		userMsg := chat.Message{
			SessionID: sessionID,
			Sender:    "user",
			Content:   userMessage,
		}
		if err := h.chatSvc.SaveMessage(ctx, userMsg); err != nil {
			log.Printf("failed to save user message: %v", err)
		} else {
			messages = append(messages, userMsg)
		}
	}

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "start",
		SessionID: sessionID,
	})

	response, err := h.dispatchAIResponse(ctx, w, flusher, sessionID, p, messages, userMessage)
	if err != nil {
		h.sendSSEError(w, flusher, fmt.Sprintf("AI generation failed: %v", err))
		return err
	}

	assistantMsg := chat.Message{
		SessionID: sessionID,
		Sender:    "assistant",
		Content:   response.Content,
	}
	if err := h.chatSvc.SaveMessage(ctx, assistantMsg); err != nil {
		log.Printf("failed to save assistant message: %v", err)
	}

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "end",
		SessionID: sessionID,
		Finished:  true,
	})

	log.Printf("[stream] completed reply for session=%s, partner=%s", sessionID, p.ID)
	return nil
}

func (h *Handler) dispatchAIResponse(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, sessionID string, p *partner.Partner, messages []chat.Message, userMessage string) (*schema.Message, error) {
	if h.aiService.StreamingEnabled() {
		return h.streamAIResponse(ctx, w, flusher, sessionID, p, messages, userMessage)
	}

	response, err := h.aiService.GenerateReply(ctx, sessionID, p, messages, userMessage)
	if err != nil {
		return nil, err
	}

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "message",
		SessionID: sessionID,
		Content:   response.Content,
	})

	return response, nil
}

func (h *Handler) streamAIResponse(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, sessionID string, p *partner.Partner, messages []chat.Message, userMessage string) (*schema.Message, error) {
	stream, err := h.aiService.StreamReply(ctx, p, messages, userMessage)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	chunks := make([]*schema.Message, 0, 8)

	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return nil, recvErr
		}
		if chunk == nil {
			continue
		}

		chunks = append(chunks, chunk)
		if chunk.Content != "" {
			h.sendSSE(w, flusher, StreamResponse{
				Event:     "delta",
				SessionID: sessionID,
				Content:   chunk.Content,
			})
		}
	}

	response, err := schema.ConcatMessages(chunks)
	if err != nil {
		return nil, fmt.Errorf("failed to concatenate stream chunks: %w", err)
	}
	return response, nil
}

func (h *Handler) getSessionPartner(ctx context.Context, sessionID string) (*chat.Session, *partner.Partner, error) {
	session, err := h.chatSvc.GetSession(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("session not found: %w", err)
	}

	p, ok := h.partners.FindByID(session.PartnerID)
	if !ok {
		return nil, nil, fmt.Errorf("partner %s not found", session.PartnerID)
	}

	return &session, &p, nil
}

func hasMatchingUserMessage(messages []chat.Message, sessionID, content string) bool {
	if len(messages) == 0 {
		return false
	}

	last := messages[len(messages)-1]
	if last.SessionID != sessionID {
		return false
	}

	if last.Sender != "user" {
		return false
	}

	return last.Content == content
}

func (h *Handler) sendSSE(w http.ResponseWriter, flusher http.Flusher, response StreamResponse) {
	utils.SendSSEChunk(w, flusher, response)
}

func (h *Handler) sendSSEError(w http.ResponseWriter, flusher http.Flusher, errorMsg string) {
	h.sendSSE(w, flusher, StreamResponse{
		Event: "error",
		Error: errorMsg,
	})
}
