package group

import "time"

// Sender values for group messages.
const (
	SenderUser = "user"
	SenderAI   = "ai"
)

// Message is one turn in a group session log. The log is append-only:
// messages are never edited or removed once stored. Correction,
// Translation and AudioRef are additive annotations with no effect on
// ordering or membership.
type Message struct {
	ID          string    `json:"id"`
	Sender      string    `json:"sender"`
	SenderID    string    `json:"senderId,omitempty"`
	SenderName  string    `json:"senderName,omitempty"`
	Text        string    `json:"text"`
	Correction  string    `json:"correction,omitempty"`
	Translation string    `json:"translation,omitempty"`
	AudioRef    string    `json:"audioRef,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
