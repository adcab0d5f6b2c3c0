package group

import (
	"context"
	"sync"

	"github.com/tandemapp/tandem/backend/internal/model/group"
)

// MemoryStore implements Store with in-process maps, suitable for local
// development and tests. Holding one mutex across every mutation gives it
// stronger guarantees than a remote store: leave-then-delete-on-empty is
// genuinely atomic here.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*group.Session
	pointers map[string]string
	subs     map[string]map[int]func(*group.Session)
	nextSub  int
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*group.Session),
		pointers: make(map[string]string),
		subs:     make(map[string]map[int]func(*group.Session)),
	}
}

// CreateSession persists the session, then the creator's pointer.
func (s *MemoryStore) CreateSession(_ context.Context, session group.Session) error {
	s.mu.Lock()
	stored := session.Clone()
	s.sessions[session.ID] = stored
	s.pointers[session.CreatorID] = session.ID
	snapshot, fns := stored.Clone(), s.subscribers(session.ID)
	s.mu.Unlock()

	notify(fns, snapshot)
	return nil
}

// GetSession returns a copy of the current state.
func (s *MemoryStore) GetSession(_ context.Context, id string) (*group.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session.Clone(), nil
}

// AppendMessage appends under the store lock; concurrent appends from
// different members interleave but never overwrite each other.
func (s *MemoryStore) AppendMessage(_ context.Context, id string, msg group.Message) error {
	s.mu.Lock()
	session, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return ErrSessionNotFound
	}
	session.Messages = append(session.Messages, msg)
	snapshot, fns := session.Clone(), s.subscribers(id)
	s.mu.Unlock()

	notify(fns, snapshot)
	return nil
}

// SetTopic replaces the topic field.
func (s *MemoryStore) SetTopic(_ context.Context, id string, topic string) error {
	s.mu.Lock()
	session, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return ErrSessionNotFound
	}
	session.Topic = &topic
	snapshot, fns := session.Clone(), s.subscribers(id)
	s.mu.Unlock()

	notify(fns, snapshot)
	return nil
}

// JoinSession adds the member (idempotently) and sets the pointer.
func (s *MemoryStore) JoinSession(_ context.Context, id, userID string) error {
	s.mu.Lock()
	session, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return ErrSessionNotFound
	}
	if !session.HasMember(userID) {
		session.Members = append(session.Members, userID)
	}
	s.pointers[userID] = id
	snapshot, fns := session.Clone(), s.subscribers(id)
	s.mu.Unlock()

	notify(fns, snapshot)
	return nil
}

// LeaveSession removes the member, clears their pointer, and deletes the
// session when it is now empty.
func (s *MemoryStore) LeaveSession(_ context.Context, id, userID string) error {
	s.mu.Lock()
	session, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return ErrSessionNotFound
	}

	kept := session.Members[:0]
	for _, m := range session.Members {
		if m != userID {
			kept = append(kept, m)
		}
	}
	session.Members = kept
	delete(s.pointers, userID)

	var snapshot *group.Session
	if len(session.Members) == 0 {
		delete(s.sessions, id)
	} else {
		snapshot = session.Clone()
	}
	fns := s.subscribers(id)
	s.mu.Unlock()

	notify(fns, snapshot)
	return nil
}

// ActiveSession returns the user's pointer, "" when unset.
func (s *MemoryStore) ActiveSession(_ context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pointers[userID], nil
}

// Subscribe registers fn and delivers the current state before returning.
// The initial delivery happens under the store lock, so no mutation can
// notify fn with fresher state before the snapshot arrives; fn must not
// call back into the store during that first delivery.
func (s *MemoryStore) Subscribe(_ context.Context, id string, fn func(*group.Session)) (func(), error) {
	s.mu.Lock()
	if s.subs[id] == nil {
		s.subs[id] = make(map[int]func(*group.Session))
	}
	token := s.nextSub
	s.nextSub++
	s.subs[id][token] = fn

	var snapshot *group.Session
	if session, ok := s.sessions[id]; ok {
		snapshot = session.Clone()
	}
	fn(snapshot)
	s.mu.Unlock()

	unsubscribe := func() {
		s.mu.Lock()
		if set, ok := s.subs[id]; ok {
			delete(set, token)
			if len(set) == 0 {
				delete(s.subs, id)
			}
		}
		s.mu.Unlock()
	}
	return unsubscribe, nil
}

// subscribers snapshots the callback set for id; caller must hold the lock.
func (s *MemoryStore) subscribers(id string) []func(*group.Session) {
	set := s.subs[id]
	if len(set) == 0 {
		return nil
	}
	fns := make([]func(*group.Session), 0, len(set))
	for _, fn := range set {
		fns = append(fns, fn)
	}
	return fns
}

// notify runs outside the store lock so callbacks may call back into the
// store.
func notify(fns []func(*group.Session), snapshot *group.Session) {
	for _, fn := range fns {
		fn(snapshot.Clone())
	}
}
