package lesson

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/tandemapp/tandem/backend/internal/model/lesson"
)

// Generator produces a fresh lesson; the AI service satisfies this.
type Generator interface {
	GenerateLesson(ctx context.Context, language, level, topic string) (lesson.Lesson, error)
}

// Cache is a single-document-per-key byte store. Freshness is judged by
// the GeneratedAt timestamp embedded in the cached lesson, not by the
// cache itself.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Service serves lessons, regenerating through the Generator when the
// cached copy is older than the configured TTL.
type Service struct {
	generator Generator
	cache     Cache
	ttl       time.Duration
}

// NewService wires the lesson service.
func NewService(generator Generator, cache Cache, ttl time.Duration) *Service {
	return &Service{generator: generator, cache: cache, ttl: ttl}
}

// Get returns the lesson for (language, level, topic), from cache when the
// cached copy is still fresh.
func (s *Service) Get(ctx context.Context, language, level, topic string) (lesson.Lesson, error) {
	key := cacheKey(language, level, topic)

	if cached, ok, err := s.cache.Get(ctx, key); err != nil {
		log.Printf("[lesson] cache read failed for key=%s: %v", key, err)
	} else if ok {
		var l lesson.Lesson
		if err := json.Unmarshal(cached, &l); err != nil {
			log.Printf("[lesson] discarding corrupt cache entry key=%s: %v", key, err)
		} else if time.Since(l.GeneratedAt) < s.ttl {
			return l, nil
		}
	}

	l, err := s.generator.GenerateLesson(ctx, language, level, topic)
	if err != nil {
		return lesson.Lesson{}, fmt.Errorf("generate lesson: %w", err)
	}

	payload, err := json.Marshal(l)
	if err != nil {
		return lesson.Lesson{}, fmt.Errorf("marshal lesson: %w", err)
	}
	if err := s.cache.Set(ctx, key, payload); err != nil {
		// Serve the fresh lesson anyway; only the next request pays.
		log.Printf("[lesson] cache write failed for key=%s: %v", key, err)
	}

	return l, nil
}

func cacheKey(language, level, topic string) string {
	norm := func(s string) string {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return fmt.Sprintf("lesson:%s:%s:%s", norm(language), norm(level), norm(topic))
}
