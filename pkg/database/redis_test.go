package database

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClient_Connects(t *testing.T) {
	mr := miniredis.RunT(t)

	host, portStr, ok := strings.Cut(mr.Addr(), ":")
	require.True(t, ok)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	cfg := DefaultRedisConfig()
	cfg.Host = host
	cfg.Port = port

	client, err := NewRedisClient(context.Background(), cfg)
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	mr.CheckGet(t, "k", "v")
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	host, portStr, _ := strings.Cut(addr, ":")
	port, _ := strconv.Atoi(portStr)

	cfg := DefaultRedisConfig()
	cfg.Host = host
	cfg.Port = port
	cfg.DialTimeout = 200 * time.Millisecond

	client, err := NewRedisClient(context.Background(), cfg)
	require.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "ping redis at "+addr)
}

func TestRedisConfig_Options(t *testing.T) {
	cfg := DefaultRedisConfig()
	cfg.Password = "secret"
	cfg.DB = 2

	opts := cfg.Options()
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 10, opts.PoolSize)
}
