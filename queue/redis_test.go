package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRedisClient implements RedisClient for testing
type mockRedisClient struct {
	zScoreFunc func(ctx context.Context, key, member string) *goredis.FloatCmd
	zAddNXFunc func(ctx context.Context, key string, members ...goredis.Z) *goredis.IntCmd
}

func (m *mockRedisClient) ZScore(ctx context.Context, key, member string) *goredis.FloatCmd {
	if m.zScoreFunc != nil {
		return m.zScoreFunc(ctx, key, member)
	}
	return goredis.NewFloatResult(0, goredis.Nil)
}

func (m *mockRedisClient) ZAddNX(ctx context.Context, key string, members ...goredis.Z) *goredis.IntCmd {
	if m.zAddNXFunc != nil {
		return m.zAddNXFunc(ctx, key, members...)
	}
	return goredis.NewIntResult(int64(len(members)), nil)
}

func TestRedisQueue_Contains(t *testing.T) {
	var capturedKey, capturedMember string

	client := &mockRedisClient{
		zScoreFunc: func(ctx context.Context, key, member string) *goredis.FloatCmd {
			capturedKey, capturedMember = key, member
			return goredis.NewFloatResult(1714564800000, nil)
		},
	}

	q := NewRedisQueue(client)
	ok, err := q.Contains(context.Background(), "httpQ", "t1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, DefaultKeyPrefix+"httpQ", capturedKey)
	assert.Equal(t, "t1", capturedMember)
}

func TestRedisQueue_Contains_Missing(t *testing.T) {
	q := NewRedisQueue(&mockRedisClient{})

	ok, err := q.Contains(context.Background(), "httpQ", "t1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisQueue_Contains_Error(t *testing.T) {
	connErr := errors.New("connection refused")
	client := &mockRedisClient{
		zScoreFunc: func(ctx context.Context, key, member string) *goredis.FloatCmd {
			return goredis.NewFloatResult(0, connErr)
		},
	}

	q := NewRedisQueue(client)
	ok, err := q.Contains(context.Background(), "httpQ", "t1")
	assert.False(t, ok)
	assert.ErrorIs(t, err, connErr)
}

func TestRedisQueue_Push(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var capturedKey string
	var captured []goredis.Z

	client := &mockRedisClient{
		zAddNXFunc: func(ctx context.Context, key string, members ...goredis.Z) *goredis.IntCmd {
			capturedKey = key
			captured = members
			return goredis.NewIntResult(1, nil)
		},
	}

	q := NewRedisQueue(client, WithKeyPrefix("test:"), WithClock(func() time.Time { return now }))
	require.NoError(t, q.Push(context.Background(), "_deciderQueue", "w2", 30))

	assert.Equal(t, "test:_deciderQueue", capturedKey)
	require.Len(t, captured, 1)
	assert.Equal(t, "w2", captured[0].Member)
	assert.Equal(t, float64(now.Add(30*time.Second).UnixMilli()), captured[0].Score)
}

func TestRedisQueue_Push_AlreadyQueued(t *testing.T) {
	client := &mockRedisClient{
		zAddNXFunc: func(ctx context.Context, key string, members ...goredis.Z) *goredis.IntCmd {
			// NX: nothing added, not an error
			return goredis.NewIntResult(0, nil)
		},
	}

	q := NewRedisQueue(client)
	assert.NoError(t, q.Push(context.Background(), "httpQ", "t1", 0))
}

func TestRedisQueue_Push_Error(t *testing.T) {
	connErr := errors.New("READONLY You can't write against a read only replica")
	client := &mockRedisClient{
		zAddNXFunc: func(ctx context.Context, key string, members ...goredis.Z) *goredis.IntCmd {
			return goredis.NewIntResult(0, connErr)
		},
	}

	q := NewRedisQueue(client)
	err := q.Push(context.Background(), "httpQ", "t1", 0)
	assert.ErrorIs(t, err, connErr)
}
