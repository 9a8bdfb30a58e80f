package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/storefront"

	"github.com/redis/go-redis/v9"
)

const maxTxRetries = 5

// RedisStore keeps session state as JSON under "storefront:session:<id>" and uses
// WATCH/MULTI so concurrent updates to one session never interleave.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

var _ Store = (*RedisStore)(nil)

func key(id string) string {
	return "storefront:session:" + id
}

func (s *RedisStore) Get(ctx context.Context, id string) (*storefront.State, error) {
	return s.load(ctx, s.rdb, id)
}

func (s *RedisStore) Update(ctx context.Context, id string, fn func(*storefront.State) error) (*storefront.State, error) {
	k := key(id)
	var result *storefront.State

	txf := func(tx *redis.Tx) error {
		st, err := s.load(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(st); err != nil {
			return err
		}
		data, err := json.Marshal(st)
		if err != nil {
			return fmt.Errorf("session: encode: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, data, s.ttl)
			return nil
		})
		if err == nil {
			result = st
		}
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.rdb.Watch(ctx, txf, k)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	return nil, ErrConflict
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, key(id)).Err()
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *RedisStore) load(ctx context.Context, c getter, id string) (*storefront.State, error) {
	b, err := c.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return storefront.NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: load: %w", err)
	}
	st := storefront.NewState()
	if err := json.Unmarshal(b, st); err != nil {
		return nil, fmt.Errorf("session: decode: %w", err)
	}
	return st, nil
}
