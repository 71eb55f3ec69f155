package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore backs flow secrets and login sessions with Redis so multiple
// replicas can serve the same flow. Expiry is delegated to Redis TTLs.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) stateKey(flowID, providerID string) string {
	return "sso:state:" + flowID + ":" + providerID
}

func (r *RedisStore) sessionKey(id string) string {
	return "sso:session:" + id
}

func (r *RedisStore) PutStateSecret(ctx context.Context, flowID, providerID string, secret []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("session: ttl must be positive")
	}
	return r.client.Set(ctx, r.stateKey(flowID, providerID), secret, ttl).Err()
}

func (r *RedisStore) TakeStateSecret(ctx context.Context, flowID, providerID string) ([]byte, error) {
	val, err := r.client.GetDel(ctx, r.stateKey(flowID, providerID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(val), nil
}

func (r *RedisStore) CreateSession(ctx context.Context, s Session) error {
	if s.ID == "" || s.AccountID == "" {
		return fmt.Errorf("session: missing id or account_id")
	}

	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session: expires_at must be in the future")
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session: failed to marshal: %w", err)
	}

	return r.client.Set(ctx, r.sessionKey(s.ID), data, ttl).Err()
}

func (r *RedisStore) GetSession(ctx context.Context, id string) (Session, error) {
	val, err := r.client.Get(ctx, r.sessionKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, err
	}

	var s Session
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return Session{}, fmt.Errorf("session: failed to unmarshal: %w", err)
	}
	return s, nil
}

func (r *RedisStore) DeleteSession(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.sessionKey(id)).Err()
}

func (r *RedisStore) Close() error { return r.client.Close() }
