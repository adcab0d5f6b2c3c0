package flashcard_test

import (
	"context"
	"testing"

	flashcardservice "github.com/tandemapp/tandem/backend/internal/service/flashcard"
)

func TestAddCardAssignsIncreasingPositions(t *testing.T) {
	svc := flashcardservice.NewService()
	ctx := context.Background()

	deck, err := svc.CreateDeck(ctx, "user-1", "Spanish verbs")
	if err != nil {
		t.Fatalf("CreateDeck err: %v", err)
	}

	for _, front := range []string{"hablar", "comer", "vivir"} {
		if _, err := svc.AddCard(ctx, "user-1", deck.ID, front, "to "+front); err != nil {
			t.Fatalf("AddCard %q err: %v", front, err)
		}
	}

	got, err := svc.GetDeck(ctx, "user-1", deck.ID)
	if err != nil {
		t.Fatalf("GetDeck err: %v", err)
	}
	for i, card := range got.Cards {
		if card.Position != i {
			t.Fatalf("card %d has position %d", i, card.Position)
		}
	}
}

func TestReorderRewritesPositions(t *testing.T) {
	svc := flashcardservice.NewService()
	ctx := context.Background()

	deck, _ := svc.CreateDeck(ctx, "user-1", "Kanji")
	var ids []string
	for _, front := range []string{"a", "b", "c"} {
		card, err := svc.AddCard(ctx, "user-1", deck.ID, front, front)
		if err != nil {
			t.Fatalf("AddCard err: %v", err)
		}
		ids = append(ids, card.ID)
	}

	// c, a, b
	if err := svc.Reorder(ctx, "user-1", deck.ID, []string{ids[2], ids[0], ids[1]}); err != nil {
		t.Fatalf("Reorder err: %v", err)
	}

	got, _ := svc.GetDeck(ctx, "user-1", deck.ID)
	want := []string{"c", "a", "b"}
	for i, card := range got.Cards {
		if card.Front != want[i] {
			t.Fatalf("position %d: got %q want %q", i, card.Front, want[i])
		}
		if card.Position != i {
			t.Fatalf("position %d not rewritten: %d", i, card.Position)
		}
	}
}

func TestReorderRejectsUnknownCard(t *testing.T) {
	svc := flashcardservice.NewService()
	ctx := context.Background()

	deck, _ := svc.CreateDeck(ctx, "user-1", "Mixed")
	card, _ := svc.AddCard(ctx, "user-1", deck.ID, "x", "y")

	if err := svc.Reorder(ctx, "user-1", deck.ID, []string{"bogus"}); err != flashcardservice.ErrCardNotFound {
		t.Fatalf("expected ErrCardNotFound, got %v", err)
	}

	// Unchanged after a rejected reorder.
	got, _ := svc.GetDeck(ctx, "user-1", deck.ID)
	if len(got.Cards) != 1 || got.Cards[0].ID != card.ID || got.Cards[0].Position != 0 {
		t.Fatalf("deck mutated by rejected reorder: %+v", got.Cards)
	}
}

func TestReorderFailureLeavesPositionsIntact(t *testing.T) {
	svc := flashcardservice.NewService()
	ctx := context.Background()

	deck, _ := svc.CreateDeck(ctx, "user-1", "Verbs")
	var ids []string
	for _, front := range []string{"a", "b", "c"} {
		card, err := svc.AddCard(ctx, "user-1", deck.ID, front, front)
		if err != nil {
			t.Fatalf("AddCard err: %v", err)
		}
		ids = append(ids, card.ID)
	}

	// Right length, but a duplicate entry hides a missing card.
	err := svc.Reorder(ctx, "user-1", deck.ID, []string{ids[2], ids[2], ids[0]})
	if err != flashcardservice.ErrCardNotFound {
		t.Fatalf("expected ErrCardNotFound, got %v", err)
	}

	got, _ := svc.GetDeck(ctx, "user-1", deck.ID)
	want := []string{"a", "b", "c"}
	seen := make(map[int]string, len(got.Cards))
	for i, card := range got.Cards {
		if card.Front != want[i] || card.Position != i {
			t.Fatalf("position %d changed by failed reorder: %+v", i, card)
		}
		if other, dup := seen[card.Position]; dup {
			t.Fatalf("cards %q and %q share position %d", other, card.Front, card.Position)
		}
		seen[card.Position] = card.Front
	}
}

func TestDeckOwnership(t *testing.T) {
	svc := flashcardservice.NewService()
	ctx := context.Background()

	deck, _ := svc.CreateDeck(ctx, "user-1", "Private")
	if _, err := svc.GetDeck(ctx, "user-2", deck.ID); err != flashcardservice.ErrNotOwner {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if err := svc.DeleteDeck(ctx, "user-2", deck.ID); err != flashcardservice.ErrNotOwner {
		t.Fatalf("expected ErrNotOwner on delete, got %v", err)
	}
}

func TestDeleteCardKeepsOrder(t *testing.T) {
	svc := flashcardservice.NewService()
	ctx := context.Background()

	deck, _ := svc.CreateDeck(ctx, "user-1", "Order")
	var ids []string
	for _, front := range []string{"a", "b", "c"} {
		card, _ := svc.AddCard(ctx, "user-1", deck.ID, front, front)
		ids = append(ids, card.ID)
	}

	if err := svc.DeleteCard(ctx, "user-1", deck.ID, ids[1]); err != nil {
		t.Fatalf("DeleteCard err: %v", err)
	}

	got, _ := svc.GetDeck(ctx, "user-1", deck.ID)
	if len(got.Cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(got.Cards))
	}
	if got.Cards[0].Front != "a" || got.Cards[1].Front != "c" {
		t.Fatalf("order broken after delete: %+v", got.Cards)
	}
}
