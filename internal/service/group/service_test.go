package group_test

import (
	"context"
	"sync"
	"testing"

	"github.com/tandemapp/tandem/backend/internal/model/group"
	groupservice "github.com/tandemapp/tandem/backend/internal/service/group"
)

func newService() *groupservice.Service {
	return groupservice.NewService(groupservice.NewMemoryStore())
}

func mustCreate(t *testing.T, svc *groupservice.Service, creatorID, seed string) *group.Session {
	t.Helper()
	session, err := svc.Create(context.Background(), creatorID, "Creator", seed, "")
	if err != nil {
		t.Fatalf("Create err: %v", err)
	}
	return session
}

func TestCreateSeedsSessionAndPointer(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	session := mustCreate(t, svc, "alice", "hola a todos")

	got, err := svc.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	if len(got.Members) != 1 || got.Members[0] != "alice" {
		t.Fatalf("unexpected members: %v", got.Members)
	}
	if len(got.Messages) != 1 || got.Messages[0].Text != "hola a todos" {
		t.Fatalf("unexpected messages: %+v", got.Messages)
	}
	if got.Topic != nil {
		t.Fatalf("expected nil topic, got %q", *got.Topic)
	}

	active, err := svc.Active(ctx, "alice")
	if err != nil {
		t.Fatalf("Active err: %v", err)
	}
	if active != session.ID {
		t.Fatalf("pointer not set: got %q want %q", active, session.ID)
	}
}

func TestJoinMissingSession(t *testing.T) {
	svc := newService()

	outcome, err := svc.Join(context.Background(), "abc123", "dave")
	if err != nil {
		t.Fatalf("Join err: %v", err)
	}
	if outcome != groupservice.JoinOutcomeNotFound {
		t.Fatalf("expected not_found, got %s", outcome)
	}
}

func TestJoinFullSession(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	session := mustCreate(t, svc, "alice", "hi")
	for _, u := range []string{"bob", "carol"} {
		if outcome, _ := svc.Join(ctx, session.ID, u); outcome != groupservice.JoinOutcomeJoined {
			t.Fatalf("setup join for %s failed: %s", u, outcome)
		}
	}

	outcome, err := svc.Join(ctx, session.ID, "dave")
	if err != nil {
		t.Fatalf("Join err: %v", err)
	}
	if outcome != groupservice.JoinOutcomeFull {
		t.Fatalf("expected full, got %s", outcome)
	}

	got, err := svc.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	if len(got.Members) != group.MaxMembers {
		t.Fatalf("rejected join mutated members: %v", got.Members)
	}
	if got.HasMember("dave") {
		t.Fatal("rejected caller ended up in members")
	}
}

func TestJoinSecondMember(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	session := mustCreate(t, svc, "alice", "hi")

	outcome, err := svc.Join(ctx, session.ID, "bob")
	if err != nil {
		t.Fatalf("Join err: %v", err)
	}
	if outcome != groupservice.JoinOutcomeJoined {
		t.Fatalf("expected joined, got %s", outcome)
	}

	got, _ := svc.Get(ctx, session.ID)
	if len(got.Members) != 2 || !got.HasMember("alice") || !got.HasMember("bob") {
		t.Fatalf("unexpected members: %v", got.Members)
	}

	active, _ := svc.Active(ctx, "bob")
	if active != session.ID {
		t.Fatalf("joiner pointer not set: %q", active)
	}
}

func TestJoinIdempotent(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	session := mustCreate(t, svc, "alice", "hi")

	outcome, err := svc.Join(ctx, session.ID, "alice")
	if err != nil {
		t.Fatalf("Join err: %v", err)
	}
	if outcome != groupservice.JoinOutcomeAlreadyMember {
		t.Fatalf("expected already_member, got %s", outcome)
	}

	got, _ := svc.Get(ctx, session.ID)
	if len(got.Members) != 1 {
		t.Fatalf("idempotent join changed members: %v", got.Members)
	}
	active, _ := svc.Active(ctx, "alice")
	if active != session.ID {
		t.Fatalf("pointer lost on idempotent join: %q", active)
	}
}

func TestLeaveLastMemberDeletesSession(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	session := mustCreate(t, svc, "alice", "hi")
	if err := svc.Leave(ctx, session.ID, "alice"); err != nil {
		t.Fatalf("Leave err: %v", err)
	}

	if _, err := svc.Get(ctx, session.ID); err != groupservice.ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	active, _ := svc.Active(ctx, "alice")
	if active != "" {
		t.Fatalf("pointer not cleared: %q", active)
	}
}

func TestLeaveWithRemainingMembers(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	session := mustCreate(t, svc, "alice", "hi")
	svc.Join(ctx, session.ID, "bob")

	if err := svc.Leave(ctx, session.ID, "alice"); err != nil {
		t.Fatalf("Leave err: %v", err)
	}

	got, err := svc.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("session deleted despite remaining member: %v", err)
	}
	if got.HasMember("alice") {
		t.Fatal("leaver still in members")
	}
	if !got.HasMember("bob") {
		t.Fatal("remaining member lost")
	}
	active, _ := svc.Active(ctx, "alice")
	if active != "" {
		t.Fatalf("leaver pointer not cleared: %q", active)
	}
}

func TestConcurrentAppendsKeepBothMessages(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	session := mustCreate(t, svc, "alice", "hi")
	svc.Join(ctx, session.ID, "bob")

	var wg sync.WaitGroup
	for _, post := range []struct{ user, text string }{
		{"alice", "from alice"},
		{"bob", "from bob"},
	} {
		wg.Add(1)
		go func(user, text string) {
			defer wg.Done()
			if _, err := svc.Post(ctx, session.ID, user, user, text); err != nil {
				t.Errorf("Post %s err: %v", user, err)
			}
		}(post.user, post.text)
	}
	wg.Wait()

	got, _ := svc.Get(ctx, session.ID)
	// seed + two concurrent posts, neither clobbered
	if len(got.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(got.Messages))
	}
	seen := map[string]bool{}
	for _, m := range got.Messages {
		seen[m.Text] = true
	}
	if !seen["from alice"] || !seen["from bob"] {
		t.Fatalf("lost a concurrent append: %+v", got.Messages)
	}
}

func TestPostRequiresMembership(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	session := mustCreate(t, svc, "alice", "hi")
	if _, err := svc.Post(ctx, session.ID, "mallory", "Mallory", "let me in"); err != groupservice.ErrNotMember {
		t.Fatalf("expected ErrNotMember, got %v", err)
	}
}

func TestSetTopic(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	session := mustCreate(t, svc, "alice", "hi")
	if err := svc.SetTopic(ctx, session.ID, "alice", "past tense drills"); err != nil {
		t.Fatalf("SetTopic err: %v", err)
	}

	got, _ := svc.Get(ctx, session.ID)
	if got.Topic == nil || *got.Topic != "past tense drills" {
		t.Fatalf("topic not set: %v", got.Topic)
	}
}

func TestSubscribeDeliversSnapshotAndUpdates(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	session := mustCreate(t, svc, "alice", "hi")

	var mu sync.Mutex
	var states []*group.Session
	unsubscribe, err := svc.Subscribe(ctx, session.ID, func(s *group.Session) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("Subscribe err: %v", err)
	}
	defer unsubscribe()

	mu.Lock()
	if len(states) != 1 {
		mu.Unlock()
		t.Fatalf("expected immediate snapshot, got %d deliveries", len(states))
	}
	current, _ := svc.Get(ctx, session.ID)
	if states[0] == nil || states[0].ID != current.ID || len(states[0].Messages) != len(current.Messages) {
		mu.Unlock()
		t.Fatalf("snapshot does not match Get: %+v vs %+v", states[0], current)
	}
	mu.Unlock()

	if _, err := svc.Post(ctx, session.ID, "alice", "Alice", "second"); err != nil {
		t.Fatalf("Post err: %v", err)
	}

	mu.Lock()
	last := states[len(states)-1]
	mu.Unlock()
	if last == nil || len(last.Messages) != 2 {
		t.Fatalf("update not delivered: %+v", last)
	}
}

func TestSubscribeSeesDeletion(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	session := mustCreate(t, svc, "alice", "hi")

	var mu sync.Mutex
	var last *group.Session
	gotNil := false
	unsubscribe, err := svc.Subscribe(ctx, session.ID, func(s *group.Session) {
		mu.Lock()
		last = s
		if s == nil {
			gotNil = true
		}
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("Subscribe err: %v", err)
	}
	defer unsubscribe()

	if err := svc.Leave(ctx, session.ID, "alice"); err != nil {
		t.Fatalf("Leave err: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if !gotNil || last != nil {
		t.Fatalf("expected nil delivery after deletion, last=%+v", last)
	}
}

func TestUnsubscribeStopsDeliveries(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	session := mustCreate(t, svc, "alice", "hi")

	var mu sync.Mutex
	count := 0
	unsubscribe, err := svc.Subscribe(ctx, session.ID, func(*group.Session) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("Subscribe err: %v", err)
	}
	unsubscribe()

	if _, err := svc.Post(ctx, session.ID, "alice", "Alice", "after unsubscribe"); err != nil {
		t.Fatalf("Post err: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if count != 1 {
		t.Fatalf("expected only the initial snapshot, got %d deliveries", count)
	}
}

func TestSubscribeNeverDeliversStaleSnapshotLast(t *testing.T) {
	ctx := context.Background()

	// An append racing the subscription must not land before the initial
	// snapshot; deliveries are checked for monotonic message counts.
	for i := 0; i < 50; i++ {
		svc := newService()
		session := mustCreate(t, svc, "alice", "hi")

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Post(ctx, session.ID, "alice", "Alice", "racing"); err != nil {
				t.Errorf("Post err: %v", err)
			}
		}()

		var mu sync.Mutex
		var counts []int
		unsubscribe, err := svc.Subscribe(ctx, session.ID, func(s *group.Session) {
			mu.Lock()
			counts = append(counts, len(s.Messages))
			mu.Unlock()
		})
		if err != nil {
			t.Fatalf("Subscribe err: %v", err)
		}
		wg.Wait()
		unsubscribe()

		mu.Lock()
		for j := 1; j < len(counts); j++ {
			if counts[j] < counts[j-1] {
				mu.Unlock()
				t.Fatalf("delivery went backwards: %v", counts)
			}
		}
		mu.Unlock()
	}
}
