package port

import (
	"context"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
)

// ProjectionCache keeps the read-mostly account projection warm.
// Cache failures must not fail the originating operation; callers log them.
type ProjectionCache interface {
	Populate(ctx context.Context, projection domain.AccountProjection) error
	Invalidate(ctx context.Context, accountID string) error
}
