package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/identity"
)

const redisKeyPrefix = "ccd:identity:"

type redisEntry struct {
	UserID   uuid.UUID     `json:"user_id"`
	TenantID uuid.UUID     `json:"tenant_id"`
	Role     identity.Role `json:"role"`
	Email    string        `json:"email"`
}

// Redis caches resolved identities in a shared Redis so multiple API replicas
// benefit from each other's lookups. All operations are best effort; backend
// errors degrade to cache misses and are logged at debug level.
type Redis struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedis wraps an existing go-redis client.
func NewRedis(client *redis.Client, logger *zap.Logger) *Redis {
	if client == nil {
		panic("redis cache: client is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{client: client, logger: logger}
}

func (r *Redis) Get(ctx context.Context, subject string) (identity.Identity, bool) {
	raw, err := r.client.Get(ctx, redisKeyPrefix+subject).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.Debug("identity cache get failed", zap.Error(err))
		}
		return identity.Identity{}, false
	}

	var entry redisEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		r.logger.Debug("identity cache entry corrupt", zap.Error(err))
		return identity.Identity{}, false
	}

	return identity.Identity{
		UserID:   entry.UserID,
		TenantID: entry.TenantID,
		Role:     entry.Role,
		Email:    entry.Email,
	}, true
}

func (r *Redis) Set(ctx context.Context, subject string, id identity.Identity, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	raw, err := json.Marshal(redisEntry{
		UserID:   id.UserID,
		TenantID: id.TenantID,
		Role:     id.Role,
		Email:    id.Email,
	})
	if err != nil {
		return
	}

	if err := r.client.Set(ctx, redisKeyPrefix+subject, raw, ttl).Err(); err != nil {
		r.logger.Debug("identity cache set failed", zap.Error(err))
	}
}

func (r *Redis) Invalidate(ctx context.Context, subject string) {
	if err := r.client.Del(ctx, redisKeyPrefix+subject).Err(); err != nil {
		r.logger.Debug("identity cache invalidate failed", zap.Error(err))
	}
}
