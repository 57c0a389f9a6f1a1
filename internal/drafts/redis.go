package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"custom-print-backend/internal/store"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// RedisStore keeps drafts as JSON values that expire after ttl.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient connects to redisURL, e.g. redis://:password@host:6379/0.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) Save(ctx context.Context, d *Draft) error {
	if !ValidID(d.ID) {
		return ErrInvalidID
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}
	if err := r.client.Set(ctx, key(d.UserID, d.ID), raw, r.ttl).Err(); err != nil {
		return &store.TransientError{Op: "save draft", Err: err}
	}
	return nil
}

func (r *RedisStore) Load(ctx context.Context, userID uuid.UUID, id string) (*Draft, error) {
	if !ValidID(id) {
		return nil, ErrInvalidID
	}
	raw, err := r.client.Get(ctx, key(userID, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &store.TransientError{Op: "load draft", Err: err}
	}

	var d Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("failed to decode draft: %w", err)
	}
	return &d, nil
}

// maxUpdateAttempts bounds the optimistic retries of Update when the draft
// keeps changing under it.
const maxUpdateAttempts = 16

// Update reads the draft under WATCH and writes the result in a MULTI/EXEC
// transaction, retrying when another writer got there first.
func (r *RedisStore) Update(ctx context.Context, userID uuid.UUID, id string, fn UpdateFunc) (*Draft, error) {
	if !ValidID(id) {
		return nil, ErrInvalidID
	}
	k := key(userID, id)

	var (
		result *Draft
		fnErr  error
	)
	txf := func(tx *redis.Tx) error {
		d := &Draft{ID: id, UserID: userID}
		raw, err := tx.Get(ctx, k).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			if err := json.Unmarshal(raw, d); err != nil {
				fnErr = fmt.Errorf("failed to decode draft: %w", err)
				return fnErr
			}
		}

		changed, err := fn(d)
		if err != nil {
			fnErr = err
			return err
		}
		result = d
		if !changed {
			return nil
		}

		out, err := json.Marshal(d)
		if err != nil {
			fnErr = fmt.Errorf("failed to encode draft: %w", err)
			return fnErr
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, out, r.ttl)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		fnErr = nil
		err := r.client.Watch(ctx, txf, k)
		switch {
		case err == nil:
			return result, nil
		case fnErr != nil:
			return nil, fnErr
		case errors.Is(err, redis.TxFailedErr):
			continue
		default:
			return nil, &store.TransientError{Op: "update draft", Err: err}
		}
	}
	return nil, &store.TransientError{Op: "update draft", Err: redis.TxFailedErr}
}

func (r *RedisStore) Delete(ctx context.Context, userID uuid.UUID, id string) error {
	if err := r.client.Del(ctx, key(userID, id)).Err(); err != nil {
		return &store.TransientError{Op: "delete draft", Err: err}
	}
	return nil
}
