package queue

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultDispatchKey = "jobs:dispatch"

// RedisQueue is the dispatch channel between job creation and the worker.
// Delivery is at-least-once: a message may be redelivered or lost, the worker
// deduplicates via the claim transition and sweeps pending jobs as a backstop.
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisQueue builds a dispatch queue on an existing Redis client.
func NewRedisQueue(client *redis.Client) *RedisQueue {
	return &RedisQueue{client: client, key: defaultDispatchKey}
}

// Publish enqueues a job id for worker pickup.
func (q *RedisQueue) Publish(ctx context.Context, jobID string) error {
	return q.client.RPush(ctx, q.key, jobID).Err()
}

// Next blocks up to timeout for the next job id. It returns "" with a nil
// error when no message arrived in time.
func (q *RedisQueue) Next(ctx context.Context, timeout time.Duration) (string, error) {
	res, err := q.client.BLPop(ctx, timeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	// BLPop returns [key, value].
	if len(res) != 2 {
		return "", nil
	}
	return res[1], nil
}

// Depth returns the number of undelivered dispatch messages.
func (q *RedisQueue) Depth(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}
