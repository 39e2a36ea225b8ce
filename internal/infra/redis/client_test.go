package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cached struct {
	Slug  string   `json:"slug"`
	Names []string `json:"names"`
}

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewClient(Config{URL: "redis://" + mr.Addr(), Prefix: "lg:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestJSONRoundTrip(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	in := cached{Slug: "comer-agora", Names: []string{"Pizzaria Bella"}}
	require.NoError(t, c.SetJSON(ctx, "businesses:comer-agora:20", in, time.Minute))
	assert.True(t, mr.Exists("lg:businesses:comer-agora:20"))

	var out cached
	found, err := c.GetJSON(ctx, "businesses:comer-agora:20", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, in, out)

	ttl, err := c.TTL(ctx, "businesses:comer-agora:20")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, ttl)
}

func TestGetJSON_Expired(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, "k", cached{Slug: "x"}, time.Second))
	mr.FastForward(2 * time.Second)

	var out cached
	found, err := c.GetJSON(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetJSON_CorruptValue(t *testing.T) {
	c, mr := newTestClient(t)
	require.NoError(t, mr.Set("lg:k", "{not json"))

	var out cached
	found, err := c.GetJSON(context.Background(), "k", &out)
	assert.Error(t, err)
	assert.False(t, found)
}

func TestDeletePrefix(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	for _, k := range []string{"businesses:a:1", "businesses:b:1", "other:c"} {
		require.NoError(t, c.SetJSON(ctx, k, cached{}, time.Minute))
	}

	n, err := c.DeletePrefix(ctx, "businesses:")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, mr.Exists("lg:other:c"))

	require.NoError(t, c.Delete(ctx, "other:c"))
	assert.False(t, mr.Exists("lg:other:c"))
	assert.NoError(t, c.Delete(ctx))
}

func TestNewClient_Errors(t *testing.T) {
	_, err := NewClient(Config{URL: "://bad"})
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err = NewClient(Config{URL: "redis://" + addr})
	assert.Error(t, err)
}
