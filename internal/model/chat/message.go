package chat

import "time"

// Message persists individual turns for transcript display and AI history.
// Correction and Translation are learning annotations attached to a turn;
// they never alter the turn itself.
type Message struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"sessionId"`
	Sender      string    `json:"sender"`
	Content     string    `json:"content"`
	Correction  string    `json:"correction,omitempty"`
	Translation string    `json:"translation,omitempty"`
	AudioRef    string    `json:"audioRef,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
