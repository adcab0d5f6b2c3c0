package ai

import (
	"fmt"
	"strings"

	"github.com/tandemapp/tandem/backend/internal/model/partner"
)

// buildPartnerSystemPrompt turns a partner profile into the system prompt
// for a language-exchange conversation.
func buildPartnerSystemPrompt(p *partner.Partner) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s, %s.\n", p.Name, p.Tagline)
	fmt.Fprintf(&b, "You are a native %s speaker helping a %s-level learner practice %s.\n",
		p.NativeLanguage, p.Level, p.TeachingLanguage)
	fmt.Fprintf(&b, "Conversation style: %s.\n", p.Style)
	if len(p.Interests) > 0 {
		fmt.Fprintf(&b, "You enjoy talking about: %s.\n", strings.Join(p.Interests, ", "))
	}

	b.WriteString("\nGuidelines:\n")
	b.WriteString("- Reply primarily in the language being practiced, adjusted to the learner's level.\n")
	b.WriteString("- Keep replies conversational and short; ask a follow-up question when natural.\n")
	b.WriteString("- When the learner makes a mistake, first respond to what they said, then offer one gentle correction.\n")
	b.WriteString("- Stay in character; never mention being an AI model.\n")

	return b.String()
}

func partnerGenerationPrompt(language, level string) string {
	return fmt.Sprintf(`You design conversation partner profiles for a language-exchange app.
Create one fictional native %s speaker suited to a %s-level learner.
Respond with a single JSON object and nothing else, using exactly these keys:
{"name": "", "tagline": "", "nativeLanguage": "%s", "teachingLanguage": "%s", "level": "%s", "style": "", "interests": [], "openingLine": ""}
The openingLine must be written in %s.`, language, level, language, language, level, language)
}

func partnerGenerationQuery(hints string) string {
	if strings.TrimSpace(hints) == "" {
		return "Create the partner profile now."
	}
	return "Create the partner profile now. Learner preferences: " + hints
}

func lessonGenerationPrompt(language, level string) string {
	return fmt.Sprintf(`You write short language lessons for a %s-level learner of %s.
Respond with a single JSON object and nothing else, using exactly these keys:
{"body": "", "vocabulary": [{"term": "", "gloss": "", "example": ""}], "quiz": [{"prompt": "", "choices": ["", "", "", ""], "answerIndex": 0, "explanation": ""}]}
Include 5-8 vocabulary items and exactly 4 quiz questions.`, level, language)
}

func lessonGenerationQuery(topic string) string {
	return "Write the lesson about: " + topic
}
