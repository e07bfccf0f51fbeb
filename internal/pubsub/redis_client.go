package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mohamedkhairy/stock-cruncher/internal/config"
	"github.com/mohamedkhairy/stock-cruncher/internal/storage"
	"github.com/mohamedkhairy/stock-cruncher/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// RedisClient implements storage.StreamClient on Redis streams
type RedisClient struct {
	client *redis.Client
}

var _ storage.StreamClient = (*RedisClient)(nil)

// RedisOptions maps the Redis configuration onto go-redis options
func RedisOptions(cfg config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	}
}

// NewRedisClient creates a new Redis client and verifies the connection
func NewRedisClient(cfg config.RedisConfig) (*RedisClient, error) {
	rdb := redis.NewClient(RedisOptions(cfg))

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Connected to Redis",
		logger.String("host", cfg.Host),
		logger.Int("port", cfg.Port),
	)

	return &RedisClient{client: rdb}, nil
}

// PublishToStream publishes a message to a Redis stream
func (r *RedisClient) PublishToStream(ctx context.Context, stream string, key string, value interface{}) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	// Publish to stream with key as field name
	err = r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			key: string(jsonData),
		},
	}).Err()

	if err != nil {
		return fmt.Errorf("failed to publish to stream %s: %w", stream, err)
	}

	return nil
}

// PublishBatchToStream publishes multiple messages to a Redis stream using a pipeline
func (r *RedisClient) PublishBatchToStream(ctx context.Context, stream string, messages []map[string]interface{}) error {
	if len(messages) == 0 {
		return nil
	}

	pipe := r.client.Pipeline()

	for _, msg := range messages {
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: stream,
			Values: msg,
		})
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish batch to stream %s: %w", stream, err)
	}

	return nil
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	return r.client.Close()
}
