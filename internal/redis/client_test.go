package redisclient

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClientSelectsDB(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := NewRedisClient(context.Background(), ClientOptions{Addr: mr.Addr(), DB: 2}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	require.NoError(t, rdb.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.DB(2).Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
	assert.Equal(t, defaultPoolSize, rdb.Options().PoolSize)
}

func TestNewRedisClientAuth(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.RequireUserAuth("booking", "secret")

	_, err := NewRedisClient(context.Background(), ClientOptions{Addr: mr.Addr(), Username: "booking", Password: "wrong"}, nil)
	assert.Error(t, err)

	rdb, err := NewRedisClient(context.Background(), ClientOptions{Addr: mr.Addr(), Username: "booking", Password: "secret", PoolSize: 3}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	assert.Equal(t, 3, rdb.Options().PoolSize)
}

func TestNewRedisClientUnreachable(t *testing.T) {
	_, err := NewRedisClient(context.Background(), ClientOptions{Addr: "127.0.0.1:1"}, nil)
	assert.ErrorContains(t, err, "ping redis")
}
