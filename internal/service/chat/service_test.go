package chat_test

import (
	"context"
	"testing"

	chatmodel "github.com/tandemapp/tandem/backend/internal/model/chat"
	chat "github.com/tandemapp/tandem/backend/internal/service/chat"
)

func TestServiceGetSession(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "user-1", "sofia-madrid")
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	got, err := svc.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession err: %v", err)
	}

	if got.ID != session.ID {
		t.Fatalf("unexpected session ID: got %s want %s", got.ID, session.ID)
	}
	if got.PartnerID != "sofia-madrid" {
		t.Fatalf("unexpected partner ID: got %s", got.PartnerID)
	}
	if got.UserID != "user-1" {
		t.Fatalf("unexpected user ID: got %s", got.UserID)
	}
}

func TestServiceGetSessionNotFound(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	if _, err := svc.GetSession(ctx, "missing"); err == nil {
		t.Fatal("expected error for missing session")
	}
}

func TestServiceTranscriptOrder(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "user-1", "hiro-osaka")
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	for _, content := range []string{"konnichiwa", "genki desu"} {
		msg := chatmodel.Message{SessionID: session.ID, Sender: "user", Content: content}
		if err := svc.SaveMessage(ctx, msg); err != nil {
			t.Fatalf("SaveMessage err: %v", err)
		}
	}

	transcript, err := svc.LoadTranscript(ctx, session.ID)
	if err != nil {
		t.Fatalf("LoadTranscript err: %v", err)
	}
	if len(transcript) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(transcript))
	}
	if transcript[0].Content != "konnichiwa" || transcript[1].Content != "genki desu" {
		t.Fatalf("transcript out of order: %+v", transcript)
	}
}

func TestSaveMessageMissingSession(t *testing.T) {
	svc := chat.NewService()

	err := svc.SaveMessage(context.Background(), chatmodel.Message{SessionID: "missing", Content: "hi"})
	if err != chat.ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
