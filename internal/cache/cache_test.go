package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestClient_DisabledIsNoop(t *testing.T) {
	ctx := context.Background()
	for _, c := range []*Client{nil, New("", "", 0)} {
		assert.False(t, c.Enabled())
		assert.NoError(t, c.Ping(ctx))
		assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
		v, err := c.Get(ctx, "k")
		assert.NoError(t, err)
		assert.Nil(t, v)
		assert.NoError(t, c.Delete(ctx, "k"))
		assert.NoError(t, c.Close())
	}
}

func TestClient_UnreachableServerFailsSafe(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c := NewFromRedis(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	}))
	defer c.Close()

	assert.True(t, c.Enabled())
	assert.Error(t, c.Ping(ctx))
	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	v, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, v)
}

func TestNew_WithAddressIsEnabled(t *testing.T) {
	c := New("127.0.0.1:1", "", 0)
	defer c.Close()
	assert.True(t, c.Enabled())
}
