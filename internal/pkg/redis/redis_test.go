package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := Connect("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	ctx := context.Background()

	got, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, "", got)

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	got, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
	assert.Equal(t, time.Minute, mr.TTL("k"))

	require.NoError(t, c.Del(ctx, "k"))
	assert.False(t, mr.Exists("k"))
	assert.NotNil(t, c.Raw())
}

func TestConnectErrors(t *testing.T) {
	_, err := Connect("not-a-url")
	assert.ErrorContains(t, err, "invalid redis url")

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err = Connect("redis://" + addr)
	assert.ErrorContains(t, err, "redis ping failed")
}
