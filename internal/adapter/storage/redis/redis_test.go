package redis

import (
	"context"
	"net"
	"strconv"
	"testing"

	"wallet-ledger-service/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func splitAddr(t *testing.T, addr string) (string, int) {
	t.Helper()
	host, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return host, port
}

func TestRedisAddr(t *testing.T) {
	cfg := config.RedisConfig{
		Host: "redis.example.com",
		Port: 6380,
	}

	assert.Equal(t, "redis.example.com:6380", cfg.Addr())
}

func TestNewClient_ConnectsAndPings(t *testing.T) {
	s := miniredis.RunT(t)

	host, port := splitAddr(t, s.Addr())
	cfg := config.RedisConfig{Host: host, Port: port}

	client, err := NewClient(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()).Err())
}

func TestNewClient_FailsWhenUnreachable(t *testing.T) {
	// Port 1 is never a redis server.
	cfg := config.RedisConfig{Host: "127.0.0.1", Port: 1}

	client, err := NewClient(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
	assert.Nil(t, client)
}
