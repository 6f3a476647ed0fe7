package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wricardo/mcp-training/minesweeper/game/service"
)

// RedisKeyPrefix namespaces session keys
const RedisKeyPrefix = "minesweeper:session:"

// RedisPersistence implements SessionPersistence on Redis. Each session is
// one JSON value; an optional TTL expires sessions nobody touches.
type RedisPersistence struct {
	client  *redis.Client
	prefix  string
	ttl     time.Duration
	timeout time.Duration
}

// NewRedisPersistence connects to addr and verifies the connection
func NewRedisPersistence(addr, password string, db int, ttl time.Duration) (*RedisPersistence, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &RedisPersistence{
		client:  client,
		prefix:  RedisKeyPrefix,
		ttl:     ttl,
		timeout: 5 * time.Second,
	}, nil
}

// WithPrefix overrides the key prefix, used to isolate tests
func (rp *RedisPersistence) WithPrefix(prefix string) *RedisPersistence {
	rp.prefix = prefix
	return rp
}

// Close closes the client
func (rp *RedisPersistence) Close() error {
	return rp.client.Close()
}

func (rp *RedisPersistence) key(id string) string {
	return rp.prefix + strings.ToLower(id)
}

func (rp *RedisPersistence) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), rp.timeout)
}

// Save stores the session JSON
func (rp *RedisPersistence) Save(session *service.Session) error {
	data, err := toPersisted(session)
	if err != nil {
		return err
	}
	blob, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	ctx, cancel := rp.ctx()
	defer cancel()
	if err := rp.client.Set(ctx, rp.key(data.ID), blob, rp.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session %s: %w", data.ID, err)
	}
	return nil
}

// Load reads the session JSON
func (rp *RedisPersistence) Load(id string) (*service.Session, error) {
	ctx, cancel := rp.ctx()
	defer cancel()

	blob, err := rp.client.Get(ctx, rp.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}

	var data PersistedSessionData
	if err := json.Unmarshal(blob, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}
	return data.restore()
}

// Delete removes the session key
func (rp *RedisPersistence) Delete(id string) error {
	ctx, cancel := rp.ctx()
	defer cancel()

	n, err := rp.client.Del(ctx, rp.key(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll scans for session keys under the prefix
func (rp *RedisPersistence) ListAll() ([]string, error) {
	ctx, cancel := rp.ctx()
	defer cancel()

	var ids []string
	iter := rp.client.Scan(ctx, 0, rp.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), rp.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return ids, nil
}

// Exists checks whether the session key is present
func (rp *RedisPersistence) Exists(id string) bool {
	ctx, cancel := rp.ctx()
	defer cancel()

	n, err := rp.client.Exists(ctx, rp.key(id)).Result()
	return err == nil && n > 0
}
