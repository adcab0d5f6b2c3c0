package speech

// TTSRequest asks the upstream API to synthesize speech for a text.
type TTSRequest struct {
	Text     string `json:"text"`
	Voice    string `json:"voice,omitempty"`
	Language string `json:"language,omitempty"`
}

// ASRRequest asks the upstream API to transcribe an audio clip. Audio is
// base64-encoded by the transport layer.
type ASRRequest struct {
	Audio    []byte `json:"audio"`
	Format   string `json:"format,omitempty"`
	Language string `json:"language,omitempty"`
}

// ImageRequest asks the upstream API to render an illustration.
type ImageRequest struct {
	Prompt string `json:"prompt"`
	Size   string `json:"size,omitempty"`
}
