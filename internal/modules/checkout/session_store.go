package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"homechef-delivery/internal/models"

	"github.com/redis/go-redis/v9"
)

// SessionStore persists checkout sessions.
type SessionStore interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	// Update loads the session, applies fn and writes it back atomically. When
	// fn fails nothing is written.
	Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// RedisStore keeps sessions as JSON under checkout:session:<id>. Updates are
// optimistic: a concurrent write to the same session makes Update fail with
// ErrSessionBusy instead of overwriting it.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, now: time.Now}
}

func sessionKey(id string) string {
	return "checkout:session:" + id
}

func (r *RedisStore) Create(ctx context.Context, s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("store.Create: %w", err)
	}
	ok, err := r.client.SetNX(ctx, sessionKey(s.ID), raw, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("store.Create: %w", err)
	}
	if !ok {
		return models.ErrConflict
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	return r.load(ctx, r.client, id)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *RedisStore) load(ctx context.Context, c getter, id string) (*Session, error) {
	raw, err := c.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, models.ErrSessionNotFound
		}
		return nil, fmt.Errorf("store.Get: %w", err)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("store.Get: decode: %w", err)
	}
	return &s, nil
}

func (r *RedisStore) Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	key := sessionKey(id)
	var updated *Session

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		s, err := r.load(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(s); err != nil {
			return err
		}
		s.UpdatedAt = r.now()

		raw, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("store.Update: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, r.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		updated = s
		return nil
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return nil, models.ErrSessionBusy
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := r.client.Del(ctx, sessionKey(id)).Result()
	if err != nil {
		return fmt.Errorf("store.Delete: %w", err)
	}
	if n == 0 {
		return models.ErrSessionNotFound
	}
	return nil
}
