package group

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tandemapp/tandem/backend/internal/model/group"
)

// RedisStore implements Store on Redis. A session is a hash (meta), a set
// (members) and a list (messages); SADD/SREM and RPUSH give the atomic
// member and append operations the Store contract requires. Change-feed
// delivery rides a pub/sub channel per session: mutations publish a nudge
// and each subscriber re-reads the full current state, which coalesces
// bursts naturally.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to redisURL and verifies the connection.
func NewRedisStore(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisStore{client: client, prefix: "tandem:"}, nil
}

// NewRedisStoreWithClient creates a store from an existing Redis client.
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "tandem:"}
}

func (s *RedisStore) metaKey(id string) string     { return s.prefix + "group:" + id }
func (s *RedisStore) membersKey(id string) string  { return s.prefix + "group:" + id + ":members" }
func (s *RedisStore) messagesKey(id string) string { return s.prefix + "group:" + id + ":messages" }
func (s *RedisStore) pointerKey(uid string) string { return s.prefix + "user:" + uid + ":activegroup" }
func (s *RedisStore) channel(id string) string     { return s.prefix + "groupfeed:" + id }

// CreateSession writes the session document first, the creator pointer
// second, so a pointer reader never observes a dangling session id.
func (s *RedisStore) CreateSession(ctx context.Context, session group.Session) error {
	pipe := s.client.TxPipeline()
	meta := map[string]interface{}{
		"id":        session.ID,
		"creatorId": session.CreatorID,
		"createdAt": session.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if session.Topic != nil {
		meta["topic"] = *session.Topic
	}
	pipe.HSet(ctx, s.metaKey(session.ID), meta)
	for _, m := range session.Members {
		pipe.SAdd(ctx, s.membersKey(session.ID), m)
	}
	for _, msg := range session.Messages {
		payload, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("marshal seed message: %w", err)
		}
		pipe.RPush(ctx, s.messagesKey(session.ID), payload)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return storageErr("create session", err)
	}

	if err := s.client.Set(ctx, s.pointerKey(session.CreatorID), session.ID, 0).Err(); err != nil {
		return storageErr("set creator pointer", err)
	}

	s.publish(ctx, session.ID)
	return nil
}

// GetSession assembles the full session from its three keys.
func (s *RedisStore) GetSession(ctx context.Context, id string) (*group.Session, error) {
	meta, err := s.client.HGetAll(ctx, s.metaKey(id)).Result()
	if err != nil {
		return nil, storageErr("read session meta", err)
	}
	if len(meta) == 0 {
		return nil, ErrSessionNotFound
	}

	members, err := s.client.SMembers(ctx, s.membersKey(id)).Result()
	if err != nil {
		return nil, storageErr("read members", err)
	}

	raw, err := s.client.LRange(ctx, s.messagesKey(id), 0, -1).Result()
	if err != nil {
		return nil, storageErr("read messages", err)
	}

	session := &group.Session{
		ID:        id,
		CreatorID: meta["creatorId"],
		Members:   members,
		Messages:  make([]group.Message, 0, len(raw)),
	}
	if topic, ok := meta["topic"]; ok {
		session.Topic = &topic
	}
	if created, ok := meta["createdAt"]; ok {
		if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
			session.CreatedAt = ts
		}
	}
	for _, item := range raw {
		var msg group.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("unmarshal message: %w", err)
		}
		session.Messages = append(session.Messages, msg)
	}
	return session, nil
}

// AppendMessage pushes onto the message list. RPUSH is a single atomic
// command, so concurrent appends from different members interleave without
// loss.
func (s *RedisStore) AppendMessage(ctx context.Context, id string, msg group.Message) error {
	if err := s.exists(ctx, id); err != nil {
		return err
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := s.client.RPush(ctx, s.messagesKey(id), payload).Err(); err != nil {
		return storageErr("append message", err)
	}
	s.publish(ctx, id)
	return nil
}

// SetTopic replaces the topic field (last-write-wins).
func (s *RedisStore) SetTopic(ctx context.Context, id string, topic string) error {
	if err := s.exists(ctx, id); err != nil {
		return err
	}
	if err := s.client.HSet(ctx, s.metaKey(id), "topic", topic).Err(); err != nil {
		return storageErr("set topic", err)
	}
	s.publish(ctx, id)
	return nil
}

// JoinSession adds the member (SADD is a no-op for an existing member) and
// sets the pointer. Capacity is not re-checked here; see the Store
// contract.
func (s *RedisStore) JoinSession(ctx context.Context, id, userID string) error {
	if err := s.exists(ctx, id); err != nil {
		return err
	}
	if err := s.client.SAdd(ctx, s.membersKey(id), userID).Err(); err != nil {
		return storageErr("add member", err)
	}
	if err := s.client.Set(ctx, s.pointerKey(userID), id, 0).Err(); err != nil {
		return storageErr("set pointer", err)
	}
	s.publish(ctx, id)
	return nil
}

// LeaveSession removes the member and their pointer, then re-reads the
// member count and deletes the whole record when it reached zero. The
// re-read is not transactional with the removal: a join landing between
// SREM and SCARD keeps the session alive (correct), while a join landing
// between SCARD and DEL can still lose the session. Accepted as
// best-effort cleanup.
func (s *RedisStore) LeaveSession(ctx context.Context, id, userID string) error {
	if err := s.exists(ctx, id); err != nil {
		return err
	}
	if err := s.client.SRem(ctx, s.membersKey(id), userID).Err(); err != nil {
		return storageErr("remove member", err)
	}
	if err := s.client.Del(ctx, s.pointerKey(userID)).Err(); err != nil {
		return storageErr("clear pointer", err)
	}

	remaining, err := s.client.SCard(ctx, s.membersKey(id)).Result()
	if err != nil {
		return storageErr("count members", err)
	}
	if remaining == 0 {
		if err := s.client.Del(ctx, s.metaKey(id), s.membersKey(id), s.messagesKey(id)).Err(); err != nil {
			return storageErr("delete empty session", err)
		}
	}
	s.publish(ctx, id)
	return nil
}

// ActiveSession reads the user's pointer; "" when unset.
func (s *RedisStore) ActiveSession(ctx context.Context, userID string) (string, error) {
	id, err := s.client.Get(ctx, s.pointerKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", storageErr("read pointer", err)
	}
	return id, nil
}

// Subscribe delivers the current state immediately, then re-reads and
// redelivers after every published mutation until unsubscribed.
func (s *RedisStore) Subscribe(ctx context.Context, id string, fn func(*group.Session)) (func(), error) {
	pubsub := s.client.Subscribe(ctx, s.channel(id))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, storageErr("subscribe", err)
	}

	deliver := func() {
		session, err := s.GetSession(ctx, id)
		if errors.Is(err, ErrSessionNotFound) {
			fn(nil)
			return
		}
		if err != nil {
			log.Printf("[group] feed read failed for session=%s: %v", id, err)
			return
		}
		fn(session)
	}

	deliver()

	go func() {
		for range pubsub.Channel() {
			deliver()
		}
	}()

	unsubscribe := func() {
		_ = pubsub.Close()
	}
	return unsubscribe, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks if Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) exists(ctx context.Context, id string) error {
	n, err := s.client.Exists(ctx, s.metaKey(id)).Result()
	if err != nil {
		return storageErr("check session", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *RedisStore) publish(ctx context.Context, id string) {
	if err := s.client.Publish(ctx, s.channel(id), "update").Err(); err != nil {
		log.Printf("[group] publish failed for session=%s: %v", id, err)
	}
}
