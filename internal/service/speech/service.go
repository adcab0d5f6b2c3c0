package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tandemapp/tandem/backend/internal/model/speech"
)

// Service proxies text-to-speech, transcription and image generation to
// the upstream generative-language API. Each call is one JSON round trip
// bounded by the configured timeout; failures propagate to the caller
// without retry.
type Service struct {
	config *speech.SpeechConfig
	client *http.Client
}

// NewService creates a speech service instance.
func NewService(config *speech.SpeechConfig) *Service {
	timeout := time.Duration(config.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Service{
		config: config,
		client: &http.Client{Timeout: timeout},
	}
}

// SynthesizeSpeech converts text to audio.
func (s *Service) SynthesizeSpeech(ctx context.Context, req *speech.TTSRequest) (*speech.TTSResponse, error) {
	if req.Voice == "" {
		req.Voice = s.config.TTSVoice
	}
	if req.Language == "" {
		req.Language = s.config.TTSLanguage
	}

	var upstream struct {
		Audio     string `json:"audio"`
		Format    string `json:"format"`
		RequestID string `json:"requestId"`
	}
	if err := s.post(ctx, "/v1/audio/speech", req, &upstream); err != nil {
		return nil, fmt.Errorf("synthesize speech: %w", err)
	}

	audio, err := base64.StdEncoding.DecodeString(upstream.Audio)
	if err != nil {
		return nil, fmt.Errorf("decode synthesized audio: %w", err)
	}

	return &speech.TTSResponse{
		Audio:     audio,
		Format:    upstream.Format,
		RequestID: upstream.RequestID,
	}, nil
}

// TranscribeAudio converts an audio clip to text.
func (s *Service) TranscribeAudio(ctx context.Context, req *speech.ASRRequest) (*speech.ASRResponse, error) {
	if req.Language == "" {
		req.Language = s.config.ASRLanguage
	}

	payload := map[string]string{
		"audio":    base64.StdEncoding.EncodeToString(req.Audio),
		"format":   req.Format,
		"language": req.Language,
	}

	var resp speech.ASRResponse
	if err := s.post(ctx, "/v1/audio/transcriptions", payload, &resp); err != nil {
		return nil, fmt.Errorf("transcribe audio: %w", err)
	}
	return &resp, nil
}

// GenerateImage renders an illustration for a prompt.
func (s *Service) GenerateImage(ctx context.Context, req *speech.ImageRequest) (*speech.ImageResponse, error) {
	var upstream struct {
		Image     string `json:"image"`
		Format    string `json:"format"`
		RequestID string `json:"requestId"`
	}
	if err := s.post(ctx, "/v1/images/generations", req, &upstream); err != nil {
		return nil, fmt.Errorf("generate image: %w", err)
	}

	image, err := base64.StdEncoding.DecodeString(upstream.Image)
	if err != nil {
		return nil, fmt.Errorf("decode generated image: %w", err)
	}

	return &speech.ImageResponse{
		Image:     image,
		Format:    upstream.Format,
		RequestID: upstream.RequestID,
	}, nil
}

func (s *Service) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("call upstream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("upstream returned %d: %s", resp.StatusCode, snippet)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode upstream response: %w", err)
	}
	return nil
}
