package group

import "time"

// MaxMembers caps how many people can share one group session.
const MaxMembers = 3

// Session is a small group conversation reachable through a shared link.
// Members is authoritative for membership; the per-user active-session
// pointer kept by the store is a denormalized lookup, never a source of
// truth.
type Session struct {
	ID        string    `json:"id"`
	CreatorID string    `json:"creatorId"`
	Members   []string  `json:"members"`
	Topic     *string   `json:"topic"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
}

// HasMember reports whether userID is currently in the membership set.
func (s *Session) HasMember(userID string) bool {
	for _, m := range s.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// Full reports whether the session has reached MaxMembers.
func (s *Session) Full() bool {
	return len(s.Members) >= MaxMembers
}

// Clone returns a deep copy safe to hand to subscribers.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Members = append([]string(nil), s.Members...)
	out.Messages = append([]Message(nil), s.Messages...)
	if s.Topic != nil {
		topic := *s.Topic
		out.Topic = &topic
	}
	return &out
}
