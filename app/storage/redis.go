package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis backs the billing namespace with a Redis database. Values never
// expire; the namespace is append-only.
type Redis struct {
	client *redis.Client
}

func NewRedis(url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Redis{client: client}, nil
}

func (r *Redis) Get(ctx context.Context, key []byte) ([]byte, error) {
	value, err := r.client.Get(ctx, string(key)).Bytes()
	if err == redis.Nil {
		return nil, ErrKeyNotFound
	} else if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return value, nil
}

func (r *Redis) Has(ctx context.Context, key []byte) (bool, error) {
	n, err := r.client.Exists(ctx, string(key)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists failed: %w", err)
	}
	return n > 0, nil
}

// ApplyBatch applies all writes inside one MULTI/EXEC pipeline.
func (r *Redis) ApplyBatch(ctx context.Context, writes []Write) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, w := range writes {
			pipe.Set(ctx, string(w.Key), w.Value, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis batch failed: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
