package speech

// TTSResponse carries synthesized audio. Audio is base64-encoded on the
// wire.
type TTSResponse struct {
	Audio     []byte `json:"audio"`
	Format    string `json:"format,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// ASRResponse carries a transcription result.
type ASRResponse struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"`
	RequestID  string  `json:"requestId,omitempty"`
}

// ImageResponse carries a generated image, base64-encoded on the wire.
type ImageResponse struct {
	Image     []byte `json:"image"`
	Format    string `json:"format,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}
