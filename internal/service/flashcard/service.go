package flashcard

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tandemapp/tandem/backend/internal/model/flashcard"
)

var (
	ErrDeckNotFound = errors.New("deck not found")
	ErrCardNotFound = errors.New("card not found")
	ErrNotOwner     = errors.New("deck belongs to another user")
)

// Service manages flashcard decks in memory. Display order is the explicit
// Position field on each card; Reorder rewrites positions instead of
// relying on slice order, so two clients reordering at once cannot
// silently shuffle each other's cards.
type Service struct {
	mu    sync.RWMutex
	decks map[string]*flashcard.Deck
}

// NewService bootstraps the in-memory flashcard service.
func NewService() *Service {
	return &Service{decks: make(map[string]*flashcard.Deck)}
}

// CreateDeck provisions an empty deck owned by userID.
func (s *Service) CreateDeck(_ context.Context, userID, name string) (flashcard.Deck, error) {
	now := time.Now().UTC()
	deck := flashcard.Deck{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Cards:     []flashcard.Card{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.decks[deck.ID] = cloneDeck(&deck)
	s.mu.Unlock()

	return deck, nil
}

// ListDecks returns all decks owned by userID, sorted by creation time.
func (s *Service) ListDecks(_ context.Context, userID string) []flashcard.Deck {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]flashcard.Deck, 0, 4)
	for _, deck := range s.decks {
		if deck.UserID == userID {
			out = append(out, *cloneDeck(deck))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// GetDeck returns a deck with its cards sorted by Position.
func (s *Service) GetDeck(_ context.Context, userID, deckID string) (flashcard.Deck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	deck, ok := s.decks[deckID]
	if !ok {
		return flashcard.Deck{}, ErrDeckNotFound
	}
	if deck.UserID != userID {
		return flashcard.Deck{}, ErrNotOwner
	}

	out := cloneDeck(deck)
	sort.Slice(out.Cards, func(i, j int) bool { return out.Cards[i].Position < out.Cards[j].Position })
	return *out, nil
}

// AddCard appends a card at the end of the deck's order.
func (s *Service) AddCard(_ context.Context, userID, deckID, front, back string) (flashcard.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deck, ok := s.decks[deckID]
	if !ok {
		return flashcard.Card{}, ErrDeckNotFound
	}
	if deck.UserID != userID {
		return flashcard.Card{}, ErrNotOwner
	}

	position := 0
	for _, c := range deck.Cards {
		if c.Position >= position {
			position = c.Position + 1
		}
	}

	card := flashcard.Card{
		ID:       uuid.NewString(),
		Front:    front,
		Back:     back,
		Position: position,
	}
	deck.Cards = append(deck.Cards, card)
	deck.UpdatedAt = time.Now().UTC()
	return card, nil
}

// DeleteCard removes a card; remaining positions keep their values (gaps
// are fine, order is still total).
func (s *Service) DeleteCard(_ context.Context, userID, deckID, cardID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	deck, ok := s.decks[deckID]
	if !ok {
		return ErrDeckNotFound
	}
	if deck.UserID != userID {
		return ErrNotOwner
	}

	for i, c := range deck.Cards {
		if c.ID == cardID {
			deck.Cards = append(deck.Cards[:i], deck.Cards[i+1:]...)
			deck.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return ErrCardNotFound
}

// Reorder rewrites Position to match orderedCardIDs. Every card in the
// deck must appear exactly once.
func (s *Service) Reorder(_ context.Context, userID, deckID string, orderedCardIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	deck, ok := s.decks[deckID]
	if !ok {
		return ErrDeckNotFound
	}
	if deck.UserID != userID {
		return ErrNotOwner
	}
	if len(orderedCardIDs) != len(deck.Cards) {
		return ErrCardNotFound
	}

	index := make(map[string]*flashcard.Card, len(deck.Cards))
	for i := range deck.Cards {
		index[deck.Cards[i].ID] = &deck.Cards[i]
	}

	// Validate the whole list before touching any position; a rejected
	// reorder must leave the deck exactly as it was.
	positions := make(map[string]int, len(orderedCardIDs))
	for position, cardID := range orderedCardIDs {
		if _, ok := index[cardID]; !ok {
			return ErrCardNotFound
		}
		if _, dup := positions[cardID]; dup {
			return ErrCardNotFound
		}
		positions[cardID] = position
	}

	for cardID, position := range positions {
		index[cardID].Position = position
	}
	deck.UpdatedAt = time.Now().UTC()
	return nil
}

// DeleteDeck removes a deck entirely.
func (s *Service) DeleteDeck(_ context.Context, userID, deckID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	deck, ok := s.decks[deckID]
	if !ok {
		return ErrDeckNotFound
	}
	if deck.UserID != userID {
		return ErrNotOwner
	}
	delete(s.decks, deckID)
	return nil
}

func cloneDeck(d *flashcard.Deck) *flashcard.Deck {
	out := *d
	out.Cards = append([]flashcard.Card(nil), d.Cards...)
	return &out
}
