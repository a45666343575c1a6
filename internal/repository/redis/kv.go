package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/masumislambadsha/zavisoft/internal/repository"
	"github.com/masumislambadsha/zavisoft/pkg/database"
	apperrors "github.com/masumislambadsha/zavisoft/pkg/errors"
)

// KV implements repository.KV on Redis. Keys are written without a TTL:
// carts and wishlists live until they are cleared.
type KV struct {
	client *redis.Client
}

// NewKV creates a Redis-backed key/value store.
func NewKV(client *redis.Client) *KV {
	return &KV{client: client}
}

// Get retrieves the blob stored under key.
func (r *KV) Get(ctx context.Context, key string) (_ []byte, err error) {
	ctx, end := database.TraceOp(ctx, database.SystemRedis, "kv.get", "GET "+key)
	defer func() { end(err) }()

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("key", key)
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

var errValueChanged = errors.New("value changed")

// CompareAndSet writes value with no expiry inside a WATCH transaction, so
// the write is dropped when key stopped holding old before EXEC.
func (r *KV) CompareAndSet(ctx context.Context, key string, old, value []byte) (_ bool, err error) {
	ctx, end := database.TraceOp(ctx, database.SystemRedis, "kv.compare_and_set", "WATCH/SET "+key)
	defer func() { end(err) }()

	txf := func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, key).Bytes()
		present := true
		if errors.Is(err, redis.Nil) {
			present = false
		} else if err != nil {
			return err
		}
		if !repository.Matches(cur, present, old) {
			return errValueChanged
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, value, 0)
			return nil
		})
		return err
	}

	switch err := r.client.Watch(ctx, txf, key); {
	case err == nil:
		return true, nil
	case errors.Is(err, errValueChanged), errors.Is(err, redis.TxFailedErr):
		return false, nil
	default:
		return false, fmt.Errorf("redis compare-and-set %s: %w", key, err)
	}
}

// Delete removes key.
func (r *KV) Delete(ctx context.Context, key string) (err error) {
	ctx, end := database.TraceOp(ctx, database.SystemRedis, "kv.delete", "DEL "+key)
	defer func() { end(err) }()

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Ping checks connectivity.
func (r *KV) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
