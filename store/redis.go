package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	mbtichat "github.com/personaverse/mbtichat-go"
)

// RedisConversationStore implements mbtichat.ConversationStore on Redis.
// Each session is a list under "{prefix}:{sessionID}" holding JSON-encoded
// entries.
type RedisConversationStore struct {
	client  *redis.Client
	prefix  string
	ttl     time.Duration
	maxSize int64
}

// RedisStoreConfig configures the conversation store.
type RedisStoreConfig struct {
	Prefix  string        // key prefix, default "chat"
	TTL     time.Duration // session expiry, 0 = no expiry
	MaxSize int64         // max entries kept per session, 0 = unbounded
}

// NewRedisConversationStore creates a ConversationStore backed by the given
// Redis client.
func NewRedisConversationStore(client *redis.Client, config ...RedisStoreConfig) *RedisConversationStore {
	cfg := RedisStoreConfig{Prefix: "chat"}
	if len(config) > 0 {
		cfg = config[0]
		if cfg.Prefix == "" {
			cfg.Prefix = "chat"
		}
	}
	return &RedisConversationStore{
		client:  client,
		prefix:  cfg.Prefix,
		ttl:     cfg.TTL,
		maxSize: cfg.MaxSize,
	}
}

func (s *RedisConversationStore) key(sessionID string) string {
	return fmt.Sprintf("%s:%s", s.prefix, sessionID)
}

// Append pushes an entry onto the session list, trimming and refreshing the
// TTL as configured.
func (s *RedisConversationStore) Append(ctx context.Context, sessionID string, e mbtichat.ConversationEntry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode conversation entry: %w", err)
	}

	key := s.key(sessionID)
	if err := s.client.RPush(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("append to %s: %w", key, err)
	}
	if s.maxSize > 0 {
		if err := s.client.LTrim(ctx, key, -s.maxSize, -1).Err(); err != nil {
			return fmt.Errorf("trim %s: %w", key, err)
		}
	}
	if s.ttl > 0 {
		if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
			return fmt.Errorf("expire %s: %w", key, err)
		}
	}
	return nil
}

// History returns the most recent entries in order; limit <= 0 means all.
func (s *RedisConversationStore) History(ctx context.Context, sessionID string, limit int) ([]mbtichat.ConversationEntry, error) {
	start := int64(0)
	if limit > 0 {
		start = int64(-limit)
	}

	raw, err := s.client.LRange(ctx, s.key(sessionID), start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read history for %s: %w", sessionID, err)
	}

	entries := make([]mbtichat.ConversationEntry, 0, len(raw))
	for _, item := range raw {
		var e mbtichat.ConversationEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("decode conversation entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Clear removes the session.
func (s *RedisConversationStore) Clear(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.key(sessionID)).Err()
}
