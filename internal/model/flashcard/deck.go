package flashcard

import "time"

// Deck is a user-owned collection of flashcards. Cards carry an explicit
// Position index; display order is Position, never slice order, so that
// reordering survives concurrent edits.
type Deck struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Cards     []Card    `json:"cards"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Card is a single front/back study item.
type Card struct {
	ID       string `json:"id"`
	Front    string `json:"front"`
	Back     string `json:"back"`
	Position int    `json:"position"`
}
