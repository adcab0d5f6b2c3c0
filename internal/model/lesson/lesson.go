package lesson

import "time"

// Lesson is an AI-generated study unit with vocabulary and a short quiz.
type Lesson struct {
	Language    string         `json:"language"`
	Level       string         `json:"level"`
	Topic       string         `json:"topic"`
	Body        string         `json:"body"`
	Vocabulary  []VocabItem    `json:"vocabulary"`
	Quiz        []QuizQuestion `json:"quiz"`
	GeneratedAt time.Time      `json:"generatedAt"`
}

// VocabItem pairs a term with its gloss and an example sentence.
type VocabItem struct {
	Term    string `json:"term"`
	Gloss   string `json:"gloss"`
	Example string `json:"example,omitempty"`
}

// QuizQuestion is one multiple-choice question. AnswerIndex points into
// Choices.
type QuizQuestion struct {
	Prompt      string   `json:"prompt"`
	Choices     []string `json:"choices"`
	AnswerIndex int      `json:"answerIndex"`
	Explanation string   `json:"explanation,omitempty"`
}
