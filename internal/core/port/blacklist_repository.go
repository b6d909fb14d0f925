package port

import (
	"context"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
)

// BlacklistRepository owns BlacklistEntry persistence.
// BlacklistUser must apply the account block flag, the refresh token
// revocation, and the entry upsert inside one atomic transaction.
type BlacklistRepository interface {
	BlacklistUser(ctx context.Context, userID, ip string) error
	IsUserBlacklisted(ctx context.Context, userID string) (bool, error)
	GetByUser(ctx context.Context, userID string) (*domain.BlacklistEntry, error)
}

// IPBlacklistStore maintains the identity-independent set of denied addresses.
type IPBlacklistStore interface {
	Add(ctx context.Context, ip string) error
	Remove(ctx context.Context, ip string) error
	Contains(ctx context.Context, ip string) (bool, error)
}
