package speech

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tandemapp/tandem/backend/internal/model/speech"
	"github.com/tandemapp/tandem/backend/pkg/utils"
)

// SpeechService abstracts the audio/image proxy for testing.
type SpeechService interface {
	SynthesizeSpeech(ctx context.Context, req *speech.TTSRequest) (*speech.TTSResponse, error)
	TranscribeAudio(ctx context.Context, req *speech.ASRRequest) (*speech.ASRResponse, error)
	GenerateImage(ctx context.Context, req *speech.ImageRequest) (*speech.ImageResponse, error)
}

// Handler exposes the speech and image proxy endpoints.
type Handler struct {
	speechSvc SpeechService
}

// New creates the speech handler.
func New(speechSvc SpeechService) *Handler {
	return &Handler{speechSvc: speechSvc}
}

// RegisterRoutes registers speech and media routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/speech/tts", h.handleSynthesize)
	r.Post("/speech/transcribe", h.handleTranscribe)
	r.Post("/media/image", h.handleGenerateImage)
}

func (h *Handler) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	var payload speech.TTSRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Text == "" {
		utils.RespondError(w, http.StatusBadRequest, "text is required")
		return
	}

	resp, err := h.speechSvc.SynthesizeSpeech(r.Context(), &payload)
	if err != nil {
		log.Printf("[speech] synthesis failed: %v", err)
		utils.RespondError(w, http.StatusBadGateway, "speech synthesis failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"audio":  base64.StdEncoding.EncodeToString(resp.Audio),
		"format": resp.Format,
	})
}

func (h *Handler) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Audio    string `json:"audio"`
		Format   string `json:"format"`
		Language string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Audio == "" {
		utils.RespondError(w, http.StatusBadRequest, "audio is required")
		return
	}

	audio, err := base64.StdEncoding.DecodeString(payload.Audio)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "audio must be base64-encoded")
		return
	}

	resp, err := h.speechSvc.TranscribeAudio(r.Context(), &speech.ASRRequest{
		Audio:    audio,
		Format:   payload.Format,
		Language: payload.Language,
	})
	if err != nil {
		log.Printf("[speech] transcription failed: %v", err)
		utils.RespondError(w, http.StatusBadGateway, "transcription failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGenerateImage(w http.ResponseWriter, r *http.Request) {
	var payload speech.ImageRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Prompt == "" {
		utils.RespondError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	resp, err := h.speechSvc.GenerateImage(r.Context(), &payload)
	if err != nil {
		log.Printf("[speech] image generation failed: %v", err)
		utils.RespondError(w, http.StatusBadGateway, "image generation failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"image":  base64.StdEncoding.EncodeToString(resp.Image),
		"format": resp.Format,
	})
}
