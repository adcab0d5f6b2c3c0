package group

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tandemapp/tandem/backend/internal/model/group"
)

// JoinOutcome is the terminal state of one join attempt. A join attempt
// never retries; every attempt runs the full check sequence from scratch.
type JoinOutcome string

const (
	JoinOutcomeJoined        JoinOutcome = "joined"
	JoinOutcomeAlreadyMember JoinOutcome = "already_member"
	JoinOutcomeNotFound      JoinOutcome = "not_found"
	JoinOutcomeFull          JoinOutcome = "full"
	JoinOutcomeFailed        JoinOutcome = "failed"
)

// Service wraps a Store with the group-session business rules: seeded
// creation, membership-gated mutation and the join flow.
type Service struct {
	store Store
}

// NewService builds the group service on the supplied store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create opens a session seeded with exactly one message from the creator,
// who becomes the sole member. Topic stays unset unless supplied.
func (s *Service) Create(ctx context.Context, creatorID, creatorName, seedText, topic string) (*group.Session, error) {
	seed := group.Message{
		ID:         uuid.NewString(),
		Sender:     group.SenderUser,
		SenderID:   creatorID,
		SenderName: creatorName,
		Text:       seedText,
		CreatedAt:  time.Now().UTC(),
	}

	session := group.Session{
		ID:        uuid.NewString(),
		CreatorID: creatorID,
		Members:   []string{creatorID},
		Messages:  []group.Message{seed},
		CreatedAt: time.Now().UTC(),
	}
	if topic = strings.TrimSpace(topic); topic != "" {
		session.Topic = &topic
	}

	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Get returns the current full session state.
func (s *Service) Get(ctx context.Context, id string) (*group.Session, error) {
	return s.store.GetSession(ctx, id)
}

// Join runs the join sequence for an authenticated caller, short-circuiting
// on the first applicable outcome. Any unexpected failure is downgraded to
// JoinOutcomeFailed; the accompanying error is for logging only.
func (s *Service) Join(ctx context.Context, id, userID string) (JoinOutcome, error) {
	session, err := s.store.GetSession(ctx, id)
	if errors.Is(err, ErrSessionNotFound) {
		return JoinOutcomeNotFound, nil
	}
	if err != nil {
		return JoinOutcomeFailed, err
	}

	if session.HasMember(userID) {
		// Idempotent join: re-point the user at the session they are
		// already in.
		if err := s.store.JoinSession(ctx, id, userID); err != nil {
			return JoinOutcomeFailed, err
		}
		return JoinOutcomeAlreadyMember, nil
	}

	if session.Full() {
		return JoinOutcomeFull, nil
	}

	if err := s.store.JoinSession(ctx, id, userID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return JoinOutcomeNotFound, nil
		}
		return JoinOutcomeFailed, err
	}
	return JoinOutcomeJoined, nil
}

// Leave removes the caller from the session; the store deletes the record
// when the last member leaves.
func (s *Service) Leave(ctx context.Context, id, userID string) error {
	return s.store.LeaveSession(ctx, id, userID)
}

// Post appends a message from a current member. Non-members are rejected
// before anything is written.
func (s *Service) Post(ctx context.Context, id, userID, userName, text string) (group.Message, error) {
	session, err := s.store.GetSession(ctx, id)
	if err != nil {
		return group.Message{}, err
	}
	if !session.HasMember(userID) {
		return group.Message{}, ErrNotMember
	}

	msg := group.Message{
		ID:         uuid.NewString(),
		Sender:     group.SenderUser,
		SenderID:   userID,
		SenderName: userName,
		Text:       text,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.AppendMessage(ctx, id, msg); err != nil {
		return group.Message{}, err
	}
	return msg, nil
}

// SetTopic updates the shared learning focus; any current member may set
// it (last write wins).
func (s *Service) SetTopic(ctx context.Context, id, userID, topic string) error {
	session, err := s.store.GetSession(ctx, id)
	if err != nil {
		return err
	}
	if !session.HasMember(userID) {
		return ErrNotMember
	}
	return s.store.SetTopic(ctx, id, topic)
}

// Active returns the caller's active-session pointer, "" when none.
func (s *Service) Active(ctx context.Context, userID string) (string, error) {
	return s.store.ActiveSession(ctx, userID)
}

// Subscribe attaches a change-feed callback for the session.
func (s *Service) Subscribe(ctx context.Context, id string, fn func(*group.Session)) (func(), error) {
	unsubscribe, err := s.store.Subscribe(ctx, id, fn)
	if err != nil {
		log.Printf("[group] subscribe failed for session=%s: %v", id, err)
		return nil, err
	}
	return unsubscribe, nil
}
