package group

import (
	"context"
	"errors"
	"fmt"

	"github.com/tandemapp/tandem/backend/internal/model/group"
)

var (
	// ErrSessionNotFound is returned for lookups and mutations whose
	// target session does not exist (including sessions deleted by a
	// concurrent leave).
	ErrSessionNotFound = errors.New("group session not found")
	// ErrNotMember is returned when a caller mutates a session they do
	// not belong to.
	ErrNotMember = errors.New("not a member of this session")
	// ErrStorage wraps failures from the underlying store. No retry is
	// performed here; retry policy belongs to the caller.
	ErrStorage = errors.New("group storage error")
)

// storageErr tags an underlying store failure so callers can match it
// with errors.Is(err, ErrStorage).
func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
}

// Store is the durable home for group sessions and per-user active-session
// pointers. Implementations must make member add/remove and message append
// atomic operations against the stored document, never a read-modify-write
// of the whole record, so concurrent writers cannot clobber each other.
type Store interface {
	// CreateSession persists a new session record, then sets the
	// creator's active-session pointer. The session write happens
	// before the pointer write so a reader of the pointer never sees a
	// dangling reference.
	CreateSession(ctx context.Context, session group.Session) error

	// GetSession returns the current session state, or
	// ErrSessionNotFound when no such session exists.
	GetSession(ctx context.Context, id string) (*group.Session, error)

	// AppendMessage atomically appends one message to the session log.
	AppendMessage(ctx context.Context, id string, msg group.Message) error

	// SetTopic replaces the session topic.
	SetTopic(ctx context.Context, id string, topic string) error

	// JoinSession adds userID to the membership set (a no-op when
	// already present) and sets the user's pointer. It does not check
	// capacity; that is the join flow's job, and the check-then-act
	// split can overshoot under concurrent joins.
	JoinSession(ctx context.Context, id, userID string) error

	// LeaveSession removes userID from the membership set and clears
	// the user's pointer, then deletes the session when the membership
	// re-read comes back empty. The re-read is best-effort cleanup, not
	// a transaction.
	LeaveSession(ctx context.Context, id, userID string) error

	// ActiveSession returns the user's active-session pointer, or ""
	// when none is set.
	ActiveSession(ctx context.Context, userID string) (string, error)

	// Subscribe registers fn for session id. fn receives the full
	// current state immediately, and again after every commit; a nil
	// session marks deletion. Bursts of mutations may coalesce to the
	// latest state. The returned func stops further callbacks.
	Subscribe(ctx context.Context, id string, fn func(*group.Session)) (func(), error)
}
