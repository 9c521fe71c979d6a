package offline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// KeyPrefix namespaces offline lists in Redis.
const KeyPrefix = "offline:"

type RedisQueue struct {
	client *redis.Client
	max    int
}

var _ Queue = (*RedisQueue)(nil)

// NewRedisClient connects to Redis and checks the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func NewRedisQueue(client *redis.Client, max int) *RedisQueue {
	return &RedisQueue{client: client, max: max}
}

func (q *RedisQueue) Append(ctx context.Context, key string, action json.RawMessage) (int, error) {
	if key == "" {
		return 0, ErrEmptyKey
	}
	k := KeyPrefix + key

	var length *redis.IntCmd
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, k, []byte(action))
		if q.max > 0 {
			pipe.LTrim(ctx, k, int64(-q.max), -1)
		}
		length = pipe.LLen(ctx, k)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("append offline action: %w", err)
	}
	return int(length.Val()), nil
}

func (q *RedisQueue) Read(ctx context.Context, key string) ([]json.RawMessage, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	data, err := q.client.LRange(ctx, KeyPrefix+key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read offline actions: %w", err)
	}

	out := make([]json.RawMessage, 0, len(data))
	for _, d := range data {
		out = append(out, json.RawMessage(d))
	}
	return out, nil
}

func (q *RedisQueue) Clear(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := q.client.Del(ctx, KeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("clear offline actions: %w", err)
	}
	return nil
}
