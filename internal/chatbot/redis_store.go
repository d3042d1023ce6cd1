package chatbot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const sessionKeyPrefix = "session:"

// DefaultSessionTTL bounds how long an idle conversation survives in Redis.
const DefaultSessionTTL = 24 * time.Hour

// RedisStore keeps sessions in Redis so conversations survive process
// restarts and can be shared across instances.
type RedisStore struct {
	redis  *redis.Client
	tracer trace.Tracer
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("chatbot: redis client required")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisStore{
		redis:  client,
		tracer: otel.Tracer("refibot.internal.chatbot.sessions"),
		ttl:    ttl,
	}, nil
}

// GetOrCreate loads the session for chatID, creating and persisting a fresh
// one when none exists. SetNX makes concurrent first contacts converge on a
// single record.
func (r *RedisStore) GetOrCreate(ctx context.Context, chatID string) (*Session, error) {
	if chatID == "" {
		return nil, errors.New("chatbot: chat id required")
	}
	ctx, span := r.tracer.Start(ctx, "chatbot.sessions.get_or_create")
	defer span.End()

	key := sessionKey(chatID)

	fresh := NewSession(chatID)
	data, err := json.Marshal(fresh)
	if err != nil {
		return nil, fmt.Errorf("chatbot: marshal session: %w", err)
	}
	created, err := r.redis.SetNX(ctx, key, data, r.ttl).Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("chatbot: session create failed: %w", err)
	}
	if created {
		return fresh, nil
	}

	raw, err := r.redis.Get(ctx, key).Bytes()
	if err != nil {
		// The key can expire between SetNX and Get. Fall back to a fresh
		// session rather than failing the turn.
		if errors.Is(err, redis.Nil) {
			return fresh, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("chatbot: session load failed: %w", err)
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("chatbot: unmarshal session: %w", err)
	}
	return &s, nil
}

// Save persists the session and refreshes its TTL.
func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	if s == nil || s.ChatID == "" {
		return errors.New("chatbot: session with chat id required")
	}
	ctx, span := r.tracer.Start(ctx, "chatbot.sessions.save")
	defer span.End()

	s.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("chatbot: marshal session: %w", err)
	}
	if err := r.redis.Set(ctx, sessionKey(s.ChatID), data, r.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("chatbot: session save failed: %w", err)
	}
	return nil
}

func sessionKey(chatID string) string {
	return sessionKeyPrefix + chatID
}

var _ SessionStore = (*RedisStore)(nil)
