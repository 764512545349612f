package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"ats-go/internal/config"
	"ats-go/internal/tracing"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// ErrNotFound is returned when a key is not found in Redis.
var ErrNotFound = redis.Nil

var redisTracer = otel.Tracer("ats-go/storage/redis")

// Redis 包装 go-redis 客户端，用作 AI 结果缓存
type Redis struct {
	Client *redis.Client
	config *config.RedisConfig
}

// NewRedisAdapter 创建 Redis 客户端并检查连通性
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

		MaxRetries: cfg.MaxRetries,
	}

	client := redis.NewClient(opt)

	// 添加OpenTelemetry钩子, 记录所有Redis操作
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
		config: cfg,
	}, nil
}

// FormatKey 用配置的前缀和 constants 中的键模板拼出完整的 key。
// 例如 FormatKey(constants.KeyInsights, digest) => "ats:application:insights:<digest>"
func (r *Redis) FormatKey(keyConstant string, parts ...interface{}) string {
	key := keyConstant
	if len(parts) > 0 {
		key = fmt.Sprintf(keyConstant, parts...)
	}
	prefix := ""
	if r.config != nil {
		prefix = strings.TrimSuffix(r.config.KeyPrefix, ":")
	}
	if prefix == "" {
		return key
	}
	return prefix + ":" + key
}

// GetJSON 读取 key 并反序列化到 dest。key 不存在时返回 (false, nil)
func (r *Redis) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	ctx, span := r.startSpan(ctx, "Redis.GetJSON", "GET", key)
	defer span.End()

	if r.Client == nil {
		err := fmt.Errorf("redis client is not initialized")
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return false, err
	}

	val, err := r.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		span.SetAttributes(attribute.Bool("cache.hit", false))
		return false, nil
	}
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return false, fmt.Errorf("读取缓存 %s 失败: %w", key, err)
	}

	if err := json.Unmarshal(val, dest); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return false, fmt.Errorf("反序列化缓存 %s 失败: %w", key, err)
	}
	span.SetAttributes(attribute.Bool("cache.hit", true))
	span.SetStatus(codes.Ok, "")
	return true, nil
}

// SetJSON 序列化 value 并写入 key，ttl<=0 时使用配置的缓存时长
func (r *Redis) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	ctx, span := r.startSpan(ctx, "Redis.SetJSON", "SET", key)
	defer span.End()

	if r.Client == nil {
		err := fmt.Errorf("redis client is not initialized")
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return err
	}
	if ttl <= 0 {
		ttl = r.CacheTTL()
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("序列化缓存值失败: %w", err)
	}
	if err := r.Client.Set(ctx, key, data, ttl).Err(); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return fmt.Errorf("写入缓存 %s 失败: %w", key, err)
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

// CacheTTL 返回配置的缓存时长
func (r *Redis) CacheTTL() time.Duration {
	if r.config == nil {
		return 24 * time.Hour
	}
	return config.GetDuration(r.config.CacheTTL, 24*time.Hour)
}

func (r *Redis) startSpan(ctx context.Context, name, op, key string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		semconv.DBSystemRedis,
		attribute.String("db.operation", op),
		attribute.String("db.redis.key", tracing.SafeRedisKey(key)),
	}
	if r.config != nil {
		attrs = append(attrs,
			attribute.Int("db.redis.database_index", r.config.DB),
			attribute.String("net.peer.name", r.config.Address),
		)
	}
	return redisTracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(attrs...))
}

// Ping checks the Redis connection
func (r *Redis) Ping(ctx context.Context) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	return r.Client.Ping(ctx).Err()
}

// Close closes the Redis client connection
func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}
