package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/garageops/dispatch-service/internal/config"
	apperrors "github.com/garageops/dispatch-service/pkg/util"
)

// Redis wraps the go-redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis using the provided configuration.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// RequestLease is an advisory lock keyed by request id. Dispatch operations
// take the lease before their read-modify-write so that two concurrent
// assigns on the same request serialize instead of both reading "unassigned".
// The TTL bounds how long a crashed holder can block others.
type RequestLease struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRequestLease builds the lease helper.
func NewRequestLease(r *Redis, ttl time.Duration) *RequestLease {
	return &RequestLease{client: r.Client, ttl: ttl}
}

// Acquire takes the lease for a request and returns the release token.
// A lease already held by someone else surfaces as a concurrency conflict.
func (l *RequestLease) Acquire(ctx context.Context, requestID string) (string, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, leaseKey(requestID), token, l.ttl).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", apperrors.NewConcurrencyConflict("request", map[string]any{"request_id": requestID})
	}
	return token, nil
}

// Release drops the lease if the token still owns it. An expired or stolen
// lease is left alone.
func (l *RequestLease) Release(ctx context.Context, requestID, token string) error {
	key := leaseKey(requestID)
	held, err := l.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}
	if held != token {
		return nil
	}
	return l.client.Del(ctx, key).Err()
}

func leaseKey(requestID string) string {
	return "dispatch:lease:" + requestID
}
