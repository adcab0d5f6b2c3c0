package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/tandemapp/tandem/backend/internal/config"
	"github.com/tandemapp/tandem/backend/internal/model/chat"
	"github.com/tandemapp/tandem/backend/internal/model/lesson"
	"github.com/tandemapp/tandem/backend/internal/model/partner"
)

// Service encapsulates every call to the generative-language model:
// partner replies, partner profile generation and lesson generation all
// run through one compiled chain.
type Service struct {
	chatModel model.ChatModel
	partners  partner.Store
	cfg       config.AIConfig
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService creates a new AI service instance.
func NewService(ctx context.Context, partners partner.Store, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{
		chatModel: chatModel,
		partners:  partners,
		cfg:       cfg,
		chain:     runnable,
	}, nil
}

// StreamingEnabled indicates whether SSE streaming output is on.
func (s *Service) StreamingEnabled() bool {
	return s.cfg.StreamResponse
}

// GenerateReply produces the partner's next turn for a conversation.
func (s *Service) GenerateReply(ctx context.Context, sessionID string, p *partner.Partner, messages []chat.Message, userMessage string) (*schema.Message, error) {
	input := s.buildChainInput(p, messages, userMessage)

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to run AI chain: %w", err)
	}

	log.Printf("[ai] generated reply for session=%s, partner=%s, length=%d", sessionID, p.ID, len(response.Content))
	return response, nil
}

// StreamReply streams the partner's reply chunks via the configured chain.
func (s *Service) StreamReply(ctx context.Context, p *partner.Partner, messages []chat.Message, userMessage string) (*schema.StreamReader[*schema.Message], error) {
	if !s.StreamingEnabled() {
		return nil, fmt.Errorf("streaming disabled in configuration")
	}

	input := s.buildChainInput(p, messages, userMessage)

	stream, err := s.chain.Stream(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to stream AI chain output: %w", err)
	}

	return stream, nil
}

// GeneratePartner asks the model for a brand-new partner profile matching
// the requested language and level.
func (s *Service) GeneratePartner(ctx context.Context, language, level, hints string) (partner.Partner, error) {
	input := map[string]any{
		"system": partnerGenerationPrompt(language, level),
		"query":  partnerGenerationQuery(hints),
	}

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return partner.Partner{}, fmt.Errorf("failed to generate partner: %w", err)
	}

	var p partner.Partner
	if err := decodeJSONBlock(response.Content, &p); err != nil {
		return partner.Partner{}, fmt.Errorf("parse generated partner: %w", err)
	}

	p.ID = uuid.NewString()
	if p.TeachingLanguage == "" {
		p.TeachingLanguage = language
	}
	if p.Level == "" {
		p.Level = level
	}
	return p, nil
}

// GenerateLesson asks the model for a lesson with vocabulary and a quiz.
func (s *Service) GenerateLesson(ctx context.Context, language, level, topic string) (lesson.Lesson, error) {
	input := map[string]any{
		"system": lessonGenerationPrompt(language, level),
		"query":  lessonGenerationQuery(topic),
	}

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return lesson.Lesson{}, fmt.Errorf("failed to generate lesson: %w", err)
	}

	var l lesson.Lesson
	if err := decodeJSONBlock(response.Content, &l); err != nil {
		return lesson.Lesson{}, fmt.Errorf("parse generated lesson: %w", err)
	}

	l.Language = language
	l.Level = level
	l.Topic = topic
	l.GeneratedAt = time.Now().UTC()
	return l, nil
}

// GetChatModel returns the underlying chat model.
func (s *Service) GetChatModel() model.ChatModel {
	return s.chatModel
}

// buildChainInput creates the message context for the AI model.
func (s *Service) buildChainInput(p *partner.Partner, messages []chat.Message, userMessage string) map[string]any {
	return map[string]any{
		"system":  buildPartnerSystemPrompt(p),
		"history": s.buildHistoryMessages(messages),
		"query":   userMessage,
	}
}

func (s *Service) buildHistoryMessages(messages []chat.Message) []*schema.Message {
	const historyLimit = 10

	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > historyLimit {
		startIdx = len(messages) - historyLimit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Sender {
		case "user":
			history = append(history, schema.UserMessage(msg.Content))
		case "assistant":
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}

	return history
}

// decodeJSONBlock tolerates prose or code fences around the JSON object
// models like to emit.
func decodeJSONBlock(content string, v any) error {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return fmt.Errorf("no JSON object in model output")
	}
	return json.Unmarshal([]byte(content[start:end+1]), v)
}
