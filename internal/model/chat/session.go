package chat

import "time"

// Session captures a one-on-one conversation between a user and an AI
// conversation partner.
type Session struct {
	ID        string    `json:"id"`
	PartnerID string    `json:"partnerId"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}
