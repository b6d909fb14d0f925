package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/arklim/social-platform-accounts/internal/core/port"
)

const ipBlacklistMaxRetries = 3

// IPBlacklistRepository maintains the shared set of denied source addresses.
// The set is consulted on every request before any identity is established,
// so membership checks stay a single round trip.
type IPBlacklistRepository struct {
	client *redis.Client
	key    string
}

// NewIPBlacklistRepository constructs a repository storing denied IPs under key.
func NewIPBlacklistRepository(client *redis.Client, key string) *IPBlacklistRepository {
	return &IPBlacklistRepository{client: client, key: key}
}

// Add inserts the address into the denied set. Concurrent writers to the set
// are serialized with an optimistic WATCH so the membership survives a
// competing Remove of a different address.
func (r *IPBlacklistRepository) Add(ctx context.Context, ip string) error {
	return r.mutate(ctx, func(pipe redis.Pipeliner) {
		pipe.SAdd(ctx, r.key, ip)
	})
}

// Remove deletes the address from the denied set.
func (r *IPBlacklistRepository) Remove(ctx context.Context, ip string) error {
	return r.mutate(ctx, func(pipe redis.Pipeliner) {
		pipe.SRem(ctx, r.key, ip)
	})
}

// Contains reports whether the address is denied.
func (r *IPBlacklistRepository) Contains(ctx context.Context, ip string) (bool, error) {
	member, err := r.client.SIsMember(ctx, r.key, ip).Result()
	if err != nil {
		return false, fmt.Errorf("redis sismember: %w", err)
	}
	return member, nil
}

func (r *IPBlacklistRepository) mutate(ctx context.Context, queue func(pipe redis.Pipeliner)) error {
	txn := func(tx *redis.Tx) error {
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			queue(pipe)
			return nil
		})
		return err
	}

	var err error
	for attempt := 0; attempt < ipBlacklistMaxRetries; attempt++ {
		err = r.client.Watch(ctx, txn, r.key)
		if err == nil {
			return nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return fmt.Errorf("redis ip set transaction: %w", err)
		}
	}

	return fmt.Errorf("redis ip set transaction: %w", err)
}

var _ port.IPBlacklistStore = (*IPBlacklistRepository)(nil)
