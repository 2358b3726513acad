package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"resume-review-go/internal/config"
	"resume-review-go/internal/constants"
	"resume-review-go/internal/tracing"
	"resume-review-go/internal/types"
	"resume-review-go/pkg/utils"
)

// ErrNotFound 缓存未命中
var ErrNotFound = errors.New("storage: 缓存未命中")

var redisTracer = otel.Tracer("resume-review-go/storage/redis")

// Redis wraps the Redis client
type Redis struct {
	Client *redis.Client
	ttl    time.Duration
}

// NewRedisAdapter 创建 Redis 连接并挂上 OpenTelemetry 钩子
func NewRedisAdapter(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	opt := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,

		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,

		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,

		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: time.Duration(cfg.MinRetryBackoffMS) * time.Millisecond,
		MaxRetryBackoff: time.Duration(cfg.MaxRetryBackoffMS) * time.Millisecond,
	}

	client := redis.NewClient(opt)

	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("failed to instrument Redis with OpenTelemetry: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	return &Redis{
		Client: client,
		ttl:    cfg.CacheTTL(),
	}, nil
}

// Close closes the Redis client connection
func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

// Ping checks the Redis connection
func (r *Redis) Ping(ctx context.Context) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	return r.Client.Ping(ctx).Err()
}

// ExtractionKey 抽取结果的缓存键，只包含正文的摘要
func ExtractionKey(text string) string {
	return fmt.Sprintf(constants.KeyExtractionCache, utils.CalculateMD5([]byte(text)))
}

// GetExtraction 读取缓存的抽取结果，未命中返回 ErrNotFound
func (r *Redis) GetExtraction(ctx context.Context, text string) (*types.ExtractionResult, error) {
	if r.Client == nil {
		return nil, fmt.Errorf("redis客户端未初始化")
	}
	key := ExtractionKey(text)

	ctx, span := redisTracer.Start(ctx, "Redis.GetExtraction", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		semconv.DBSystemRedis,
		attribute.String("db.operation", "GET"),
		attribute.String("db.redis.key", tracing.SafeRedisKey(key)),
	)

	val, err := r.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		span.SetStatus(codes.Ok, "key not found")
		span.SetAttributes(attribute.Bool("db.redis.key_exists", false))
		return nil, ErrNotFound
	}
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return nil, err
	}

	var res types.ExtractionResult
	if err := json.Unmarshal(val, &res); err != nil {
		// 损坏的缓存条目按未命中处理，由下一次写入覆盖
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return nil, ErrNotFound
	}
	span.SetAttributes(
		attribute.Bool("db.redis.key_exists", true),
		attribute.Int("db.redis.value_length", len(val)),
	)
	span.SetStatus(codes.Ok, "")
	return &res, nil
}

// SetExtraction 写入抽取结果，过期时间取配置的 cache_ttl_minutes
func (r *Redis) SetExtraction(ctx context.Context, text string, res *types.ExtractionResult) error {
	if r.Client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}
	if res == nil {
		return nil
	}
	key := ExtractionKey(text)

	ctx, span := redisTracer.Start(ctx, "Redis.SetExtraction", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	data, err := json.Marshal(res)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeInternal)
		return fmt.Errorf("序列化抽取结果失败: %w", err)
	}
	span.SetAttributes(
		semconv.DBSystemRedis,
		attribute.String("db.operation", "SET"),
		attribute.String("db.redis.key", tracing.SafeRedisKey(key)),
		attribute.Int("db.redis.value_length", len(data)),
		attribute.Int64("db.redis.expiration_ms", r.ttl.Milliseconds()),
	)

	if err := r.Client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}
