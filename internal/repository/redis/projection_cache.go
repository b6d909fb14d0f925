package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/core/port"
)

const projectionField = "data"

// ProjectionCacheRepository keeps account projections warm for read-heavy
// downstream services. Entries live in a hash per account so future fields
// can be added without re-reading the full projection.
type ProjectionCacheRepository struct {
	client    *redis.Client
	keyPrefix string
}

// NewProjectionCacheRepository constructs a cache storing projections under
// keys of the form "<prefix>:<account id>".
func NewProjectionCacheRepository(client *redis.Client, keyPrefix string) *ProjectionCacheRepository {
	return &ProjectionCacheRepository{client: client, keyPrefix: keyPrefix}
}

// Populate serializes the projection and writes it to the account's hash.
func (r *ProjectionCacheRepository) Populate(ctx context.Context, projection domain.AccountProjection) error {
	payload, err := json.Marshal(projection)
	if err != nil {
		return fmt.Errorf("marshal account projection: %w", err)
	}

	if err := r.client.HSet(ctx, r.key(projection.ID), projectionField, payload).Err(); err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}

	return nil
}

// Invalidate drops the cached projection for the account.
func (r *ProjectionCacheRepository) Invalidate(ctx context.Context, accountID string) error {
	if err := r.client.Del(ctx, r.key(accountID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Get returns the cached projection when present.
func (r *ProjectionCacheRepository) Get(ctx context.Context, accountID string) (*domain.AccountProjection, error) {
	payload, err := r.client.HGet(ctx, r.key(accountID), projectionField).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis hget: %w", err)
	}

	var projection domain.AccountProjection
	if err := json.Unmarshal([]byte(payload), &projection); err != nil {
		return nil, fmt.Errorf("unmarshal account projection: %w", err)
	}

	return &projection, nil
}

func (r *ProjectionCacheRepository) key(accountID string) string {
	return fmt.Sprintf("%s:%s", r.keyPrefix, accountID)
}

var _ port.ProjectionCache = (*ProjectionCacheRepository)(nil)
