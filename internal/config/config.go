package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every section of the service configuration.
type Config struct {
	Server ServerConfig
	Auth   AuthConfig
	Redis  RedisConfig
	AI     AIConfig
	Speech SpeechConfig
	Lesson LessonConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	auth, err := loadAuthConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	speech, err := loadSpeechConfig()
	if err != nil {
		return nil, err
	}

	lesson, err := loadLessonConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: server,
		Auth:   auth,
		Redis:  RedisConfig{URL: strings.TrimSpace(os.Getenv("REDIS_URL"))},
		AI:     ai,
		Speech: speech,
		Lesson: lesson,
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Allow passing ":8080" or "127.0.0.1:8080" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AuthConfig holds the token-signing secret and token lifetime.
type AuthConfig struct {
	Secret   string
	TokenTTL time.Duration
}

func loadAuthConfig() (AuthConfig, error) {
	secret := strings.TrimSpace(os.Getenv("AUTH_SECRET"))
	if secret == "" {
		return AuthConfig{}, fmt.Errorf("AUTH_SECRET is required")
	}

	ttlHours := 72
	if override, err := parseOptionalIntEnv("AUTH_TOKEN_TTL_HOURS"); err != nil {
		return AuthConfig{}, err
	} else if override != nil && *override > 0 {
		ttlHours = *override
	}

	return AuthConfig{
		Secret:   secret,
		TokenTTL: time.Duration(ttlHours) * time.Hour,
	}, nil
}

// RedisConfig points at the group-session and cache store. Empty URL means
// the in-memory fallbacks are used.
type RedisConfig struct {
	URL string
}

// Enabled reports whether a Redis URL was supplied.
func (c RedisConfig) Enabled() bool {
	return c.URL != ""
}

// AIConfig describes the generative model.
type AIConfig struct {
	APIKey         string
	AccessKey      string
	SecretKey      string
	Model          string
	BaseURL        string
	Region         string
	Temperature    *float64
	TopP           *float64
	MaxTokens      *int
	StreamResponse bool
}

// Enabled reports whether the required credentials were supplied.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel creates a model instance from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("model credentials missing: provide ARK_API_KEY + ARK_MODEL or an AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	var maxTokens *int
	if c.MaxTokens != nil {
		val := *c.MaxTokens
		maxTokens = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	stream, err := parseBoolEnv("ARK_STREAM", true)
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:         strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:      strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:      strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:          strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:        getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:         getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature:    temperature,
		TopP:           topP,
		MaxTokens:      maxTokens,
		StreamResponse: stream,
	}, nil
}

// SpeechConfig describes the audio/image proxy upstream.
type SpeechConfig struct {
	BaseURL     string
	APIKey      string
	TTSVoice    string
	TTSLanguage string
	ASRLanguage string
	Timeout     int
	Enabled     bool
}

func loadSpeechConfig() (SpeechConfig, error) {
	timeout, err := parseOptionalIntEnv("SPEECH_TIMEOUT")
	if err != nil {
		return SpeechConfig{}, err
	}
	timeoutSeconds := 30
	if timeout != nil {
		timeoutSeconds = *timeout
	}

	baseURL := strings.TrimSpace(os.Getenv("SPEECH_BASE_URL"))
	apiKey := strings.TrimSpace(os.Getenv("SPEECH_API_KEY"))
	if apiKey == "" {
		// Fall back to the model credentials when no dedicated key is set.
		apiKey = strings.TrimSpace(os.Getenv("ARK_API_KEY"))
	}

	enabled := baseURL != "" && apiKey != ""

	return SpeechConfig{
		BaseURL:     baseURL,
		APIKey:      apiKey,
		TTSVoice:    getEnvOrDefault("SPEECH_TTS_VOICE", ""),
		TTSLanguage: getEnvOrDefault("SPEECH_TTS_LANGUAGE", "en"),
		ASRLanguage: getEnvOrDefault("SPEECH_ASR_LANGUAGE", "en"),
		Timeout:     timeoutSeconds,
		Enabled:     enabled,
	}, nil
}

// LessonConfig controls lesson cache freshness.
type LessonConfig struct {
	CacheTTL time.Duration
}

func loadLessonConfig() (LessonConfig, error) {
	ttlHours := 24
	if override, err := parseOptionalIntEnv("LESSON_CACHE_TTL_HOURS"); err != nil {
		return LessonConfig{}, err
	} else if override != nil && *override > 0 {
		ttlHours = *override
	}
	return LessonConfig{CacheTTL: time.Duration(ttlHours) * time.Hour}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
