package redisclient

import (
	"context"
	"testing"

	"reelsocial/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions(t *testing.T) {
	opts, err := Options("localhost:6379")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)

	opts, err = Options("redis://:pw@cache:6380/2")
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 2, opts.DB)

	_, err = Options("redis://host:notaport/x")
	assert.Error(t, err)
}

func TestInitRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	c := InitRedis(mr.Addr())
	require.NotNil(t, c)
	t.Cleanup(func() { _ = c.Close() })
	assert.Same(t, c, GetClient())

	require.NoError(t, c.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestInitRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	assert.Nil(t, InitRedis(addr))
	assert.Nil(t, GetClient())
}

func TestMetricsHook_CountsFailures(t *testing.T) {
	mr := miniredis.RunT(t)
	c := InitRedis(mr.Addr())
	require.NotNil(t, c)
	t.Cleanup(func() { _ = c.Close() })

	before := testutil.ToFloat64(middleware.RedisErrors.WithLabelValues("incr"))

	require.NoError(t, c.Set(context.Background(), "notanumber", "abc", 0).Err())
	require.Error(t, c.Incr(context.Background(), "notanumber").Err())

	after := testutil.ToFloat64(middleware.RedisErrors.WithLabelValues("incr"))
	assert.Equal(t, before+1, after)
}
