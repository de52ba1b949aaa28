package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"studio-api/core/config"
	"studio-api/core/constants"
	"studio-api/core/logger"
)

var client *redis.Client

// Init connects the redis client used for token blacklisting and the
// membership-restriction lookup cache.
func Init(cfg config.RedisConfig) error {
	client = redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}

	logger.Info("Redis initialized successfully", "addr", cfg.Addr, "db", cfg.DB)
	return nil
}

// Client exposes the raw client for collaborators that need it (asynq
// shares the same redis instance but manages its own connection).
func Client() *redis.Client {
	return client
}

func AddToTokenBlacklist(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = constants.TokenBlacklistDefaultTTL
	}
	return client.Set(ctx, constants.RedisKeyTokenBlacklist+token, "1", ttl).Err()
}

func IsTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	res, err := client.Exists(ctx, constants.RedisKeyTokenBlacklist+token).Result()
	if err != nil {
		return false, err
	}
	return res > 0, nil
}

// GetMemberRestriction returns the cached restriction behavior for a
// (membershipType, category) pair. ok is false on miss; cache errors are
// treated as misses so the caller falls through to the database.
func GetMemberRestriction(ctx context.Context, membershipType, category string) (string, bool) {
	key := constants.RedisKeyMemberRestriction + membershipType + ":" + category
	val, err := client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		logger.Warn("Cache:GetMemberRestriction:Error", "error", err, "key", key)
		return "", false
	}
	return val, true
}

func SetMemberRestriction(ctx context.Context, membershipType, category, behavior string) {
	key := constants.RedisKeyMemberRestriction + membershipType + ":" + category
	if err := client.Set(ctx, key, behavior, constants.MemberRestrictionCacheTTL).Err(); err != nil {
		logger.Warn("Cache:SetMemberRestriction:Error", "error", err, "key", key)
	}
}
