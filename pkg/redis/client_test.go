package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/campuseats/campuseats-backend/pkg/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetNXAndDel(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}

	ok, err := client.SetNX(ctx, "k", "v1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.SetNX(ctx, "k", "v2", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := client.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v1", got)

	require.NoError(t, client.Del(ctx, "k"))
	_, err = client.Get(ctx, "k")
	assert.ErrorIs(t, err, Nil)
}

func TestCompareAndDelete(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}
	mock.data["ce:lock:cron"] = "owner-a"

	deleted, err := client.CompareAndDelete(ctx, "ce:lock:cron", "owner-b")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, "owner-a", mock.data["ce:lock:cron"])

	deleted, err = client.CompareAndDelete(ctx, "ce:lock:cron", "owner-a")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.NotContains(t, mock.data, "ce:lock:cron")
}

func TestUninitializedClient(t *testing.T) {
	client := &Client{}
	assert.Error(t, client.Ping(context.Background()))
	_, err := client.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.NoError(t, client.Close())
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	assert.Equal(t, "ce:idempotency:orders.create:abc", client.IdempotencyKey("orders.create", "abc"))
	assert.Equal(t, "ce:cache:vendors:all", client.CacheKey("vendors", "all"))
	assert.Equal(t, "ce:cache:items", client.CacheKey("items", " "))
	assert.Equal(t, "ce:lock:cron", client.LockKey("cron"))
}

func TestOptionsFromConfig(t *testing.T) {
	_, err := optionsFromConfig(config.RedisConfig{})
	require.Error(t, err)

	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6379/2", PoolSize: 7})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 7, opts.PoolSize)

	opts, err = optionsFromConfig(config.RedisConfig{Address: "cache:6380", DB: 1, DialTimeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 1, opts.DB)
	assert.Equal(t, time.Second, opts.DialTimeout)
}

type mockCmdable struct {
	data map[string]string
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{data: make(map[string]string)}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(_ context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

// Eval understands only the compare-and-delete script.
func (m *mockCmdable) Eval(_ context.Context, _ string, keys []string, args ...any) *redis.Cmd {
	cmd := redis.NewCmd(context.Background())
	if m.data[keys[0]] == fmt.Sprint(args[0]) {
		delete(m.data, keys[0])
		cmd.SetVal(int64(1))
		return cmd
	}
	cmd.SetVal(int64(0))
	return cmd
}
