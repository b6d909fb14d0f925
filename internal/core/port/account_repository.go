package port

import (
	"context"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
)

// AccountRepository exposes persistence behavior for accounts.
// Save persists the full set of authentication-relevant fields in a single
// statement so concurrent flows observe either the old or the new state,
// never a mix.
type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByPhone(ctx context.Context, prefix, number string) (*domain.Account, error)
	EmailInUse(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, account domain.Account) error
}
