package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redisClient "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T) (*miniredis.Miniredis, *RedisAdapter) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redisClient.NewClient(&redisClient.Options{Addr: server.Addr()})
	return server, NewRedisAdapter(client).(*RedisAdapter)
}

func TestSetGetDelete(t *testing.T) {
	_, adapter := newTestAdapter(t)
	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "user:1", []byte(`{"memberId":1}`), time.Minute))

	value, err := adapter.Get(ctx, "user:1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"memberId":1}`), value)

	require.NoError(t, adapter.Delete(ctx, "user:1"))

	_, err = adapter.Get(ctx, "user:1")
	assert.Error(t, err)
}

func TestGet_MissingKey(t *testing.T) {
	_, adapter := newTestAdapter(t)

	_, err := adapter.Get(context.Background(), "nope")
	assert.Error(t, err)
}

func TestSet_TTLExpires(t *testing.T) {
	server, adapter := newTestAdapter(t)
	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "user_email:wanjiku@example.com", []byte("cached"), time.Minute))

	server.FastForward(2 * time.Minute)

	_, err := adapter.Get(ctx, "user_email:wanjiku@example.com")
	assert.Error(t, err)
}
