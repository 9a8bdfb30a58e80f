package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"storefront/internal/storefront"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb, 30*time.Minute), mr
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t)

	_, err := s.Update(ctx, "a", func(st *storefront.State) error {
		if err := addSweater(st); err != nil {
			return err
		}
		_, err := st.Dispatch(storefront.OpenCheckout{})
		return err
	})
	require.NoError(t, err)

	st, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, st.Cart.Len())
	assert.Equal(t, int64(27000), st.Cart.Total())
	assert.Equal(t, storefront.CheckoutVisible, st.Checkout)

	assert.True(t, mr.Exists("storefront:session:a"))
	assert.Equal(t, 30*time.Minute, mr.TTL("storefront:session:a"))
}

func TestRedisStore_FailedUpdateNotWritten(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t)

	_, err := s.Update(ctx, "a", func(st *storefront.State) error {
		_, err := st.Dispatch(storefront.SubmitOrder{})
		return err
	})
	assert.True(t, errors.Is(err, storefront.ErrCheckoutClosed))
	assert.False(t, mr.Exists("storefront:session:a"))
}

func TestRedisStore_ConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	s, _ := newRedisStore(t)

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Update(ctx, "a", addSweater); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			} else {
				assert.True(t, errors.Is(err, ErrConflict))
			}
		}()
	}
	wg.Wait()

	st, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, ok, st.Cart.Len())
}

func TestRedisStore_Delete(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t)

	_, err := s.Update(ctx, "a", addSweater)
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, "a"))
	assert.False(t, mr.Exists("storefront:session:a"))
}
