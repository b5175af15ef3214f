package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/sicko7947/gorkrepair"
)

// DefaultKeyPrefix namespaces queue keys: {prefix}{queueName}
const DefaultKeyPrefix = "conductor:queue:"

// RedisClient defines the Redis commands used by RedisQueue.
// This interface allows mocking in tests without a running Redis.
type RedisClient interface {
	ZScore(ctx context.Context, key, member string) *goredis.FloatCmd
	ZAddNX(ctx context.Context, key string, members ...goredis.Z) *goredis.IntCmd
}

// Verify that the real Redis clients implement our interface
var (
	_ RedisClient = (*goredis.Client)(nil)
	_ RedisClient = (*goredis.ClusterClient)(nil)
)

// RedisOption configures a RedisQueue
type RedisOption func(*RedisQueue)

// WithKeyPrefix sets the key namespace
func WithKeyPrefix(prefix string) RedisOption {
	return func(q *RedisQueue) { q.keyPrefix = prefix }
}

// WithClock sets the time source used to score pushed messages
func WithClock(now func() time.Time) RedisOption {
	return func(q *RedisQueue) { q.now = now }
}

// RedisQueue implements gorkrepair.QueueLayer with one sorted set per queue.
// Members are message ids; scores are the visibility time in unix millis.
type RedisQueue struct {
	client    RedisClient
	keyPrefix string
	now       func() time.Time
}

var _ gorkrepair.QueueLayer = (*RedisQueue)(nil)

// NewRedisQueue creates a Redis-backed queue layer. The caller owns the
// client lifecycle.
func NewRedisQueue(client RedisClient, opts ...RedisOption) *RedisQueue {
	q := &RedisQueue{
		client:    client,
		keyPrefix: DefaultKeyPrefix,
		now:       time.Now,
	}
	for _, o := range opts {
		o(q)
	}
	return q
}

func (q *RedisQueue) key(queueName string) string {
	return q.keyPrefix + queueName
}

// Contains checks membership with ZSCORE
func (q *RedisQueue) Contains(ctx context.Context, queueName, id string) (bool, error) {
	err := q.client.ZScore(ctx, q.key(queueName), id).Err()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis queue contains %s/%s: %w", queueName, id, err)
	}
	return true, nil
}

// Push adds id with ZADD NX so an already queued id keeps its score
func (q *RedisQueue) Push(ctx context.Context, queueName, id string, delaySeconds int64) error {
	visibleAt := q.now().Add(time.Duration(delaySeconds) * time.Second)
	err := q.client.ZAddNX(ctx, q.key(queueName), goredis.Z{
		Score:  float64(visibleAt.UnixMilli()),
		Member: id,
	}).Err()
	if err != nil {
		return fmt.Errorf("redis queue push %s/%s: %w", queueName, id, err)
	}
	return nil
}
