package speech

// SpeechConfig holds the upstream generative-language API settings for the
// audio and image proxy.
type SpeechConfig struct {
	BaseURL     string
	APIKey      string
	TTSVoice    string
	TTSLanguage string
	ASRLanguage string
	Timeout     int
	Enabled     bool
}
