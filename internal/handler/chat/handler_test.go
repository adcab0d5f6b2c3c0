package chat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tandemapp/tandem/backend/internal/auth"
	"github.com/tandemapp/tandem/backend/internal/middleware"
	chatmodel "github.com/tandemapp/tandem/backend/internal/model/chat"
	"github.com/tandemapp/tandem/backend/internal/model/partner"
)

const testSecret = "chat-handler-test-secret"

// stubChatService lets tests inject arbitrary session-lookup results.
type stubChatService struct {
	session    chatmodel.Session
	getErr     error
	saveErr    error
	transcript []chatmodel.Message
}

func (s *stubChatService) CreateSession(_ context.Context, userID, partnerID string) (chatmodel.Session, error) {
	return chatmodel.Session{ID: "session-1", UserID: userID, PartnerID: partnerID}, nil
}

func (s *stubChatService) GetSession(_ context.Context, _ string) (chatmodel.Session, error) {
	return s.session, s.getErr
}

func (s *stubChatService) SaveMessage(_ context.Context, _ chatmodel.Message) error {
	return s.saveErr
}

func (s *stubChatService) LoadTranscript(_ context.Context, _ string) ([]chatmodel.Message, error) {
	return s.transcript, nil
}

func newChatRouter(svc ChatService) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Authenticator([]byte(testSecret)))
	New(svc, partner.NewMemoryStore(partner.Seed())).RegisterRoutes(r)
	return r
}

func tokenFor(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.IssueToken([]byte(testSecret), auth.Claims{
		Sub:  userID,
		Name: "Tester",
		JTI:  "test-" + userID,
		Exp:  time.Now().Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func doRequest(t *testing.T, router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestTranscriptStorageFailureIsNotForbidden(t *testing.T) {
	svc := &stubChatService{getErr: context.DeadlineExceeded}
	router := newChatRouter(svc)

	rec := doRequest(t, router, http.MethodGet, "/chat/sessions/session-1/messages", tokenFor(t, "user-1"), "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on storage failure, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSaveMessageStorageFailureIsNotForbidden(t *testing.T) {
	svc := &stubChatService{getErr: context.DeadlineExceeded}
	router := newChatRouter(svc)

	body := `{"sessionId":"session-1","sender":"user","content":"hola"}`
	rec := doRequest(t, router, http.MethodPost, "/chat/messages", tokenFor(t, "user-1"), body)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on storage failure, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestTranscriptRejectsOtherUsersSession(t *testing.T) {
	svc := &stubChatService{session: chatmodel.Session{ID: "session-1", UserID: "owner"}}
	router := newChatRouter(svc)

	rec := doRequest(t, router, http.MethodGet, "/chat/sessions/session-1/messages", tokenFor(t, "intruder"), "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign session, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateSessionRequiresKnownPartner(t *testing.T) {
	svc := &stubChatService{}
	router := newChatRouter(svc)

	rec := doRequest(t, router, http.MethodPost, "/chat/sessions", tokenFor(t, "user-1"), `{"partnerId":"nobody"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown partner, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodPost, "/chat/sessions", tokenFor(t, "user-1"), `{"partnerId":"sofia-madrid"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}
