package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/core/port"
	"github.com/arklim/social-platform-accounts/internal/infra/config"
	"github.com/arklim/social-platform-accounts/internal/infra/security"
	"github.com/arklim/social-platform-accounts/internal/repository"
)

// ErrNotInTwoFactorLogin indicates no two-factor sign-in is in progress for the account.
var ErrNotInTwoFactorLogin = errors.New("no two-factor sign-in in progress")

// TwoFactorService completes and restarts pending two-factor sign-ins.
// Both operations require the account to be parked in the 2FA-pending
// sub-state by a prior SignIn.
type TwoFactorService struct {
	cfg      *config.AppConfig
	accounts port.AccountRepository
	cache    port.ProjectionCache
	notifier port.Notifier
	tokens   *security.TokenIssuer
	log      *zap.Logger
	now      func() time.Time
}

// NewTwoFactorService constructs a TwoFactorService instance.
func NewTwoFactorService(
	cfg *config.AppConfig,
	accounts port.AccountRepository,
	cache port.ProjectionCache,
	notifier port.Notifier,
	tokens *security.TokenIssuer,
	log *zap.Logger,
) *TwoFactorService {
	if log == nil {
		log = zap.NewNop()
	}
	return &TwoFactorService{
		cfg:      cfg,
		accounts: accounts,
		cache:    cache,
		notifier: notifier,
		tokens:   tokens,
		log:      log,
		now:      time.Now,
	}
}

// WithClock overrides the internal clock, used in tests.
func (s *TwoFactorService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// Complete verifies the submitted code and turns the pending sign-in into a
// session. A wrong code may be retried while the code is live; once the code
// has expired any submission ends the flow and revokes the stored refresh
// token so the abandoned sign-in cannot be resumed.
func (s *TwoFactorService) Complete(ctx context.Context, accountID, code string) (*AuthResult, error) {
	account, err := s.pendingAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	pending := account.Code(domain.CodeSlotTwoFactor)
	if pending == nil {
		return nil, ErrNotInTwoFactorLogin
	}

	check, err := security.VerifyCode(code, pending.Hash, pending.ExpiresAt, s.now().UTC(), true)
	if err != nil {
		return nil, err
	}
	if check.Expired {
		account.EndTwoFactorLogin()
		account.ClearRefreshToken()
		if err := s.accounts.Save(ctx, *account); err != nil {
			return nil, fmt.Errorf("save account: %w", err)
		}
		return nil, ErrCodeExpired
	}
	if !check.Valid {
		return nil, ErrWrongCode
	}

	account.EndTwoFactorLogin()
	result, err := openSession(s.tokens, account)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.Save(ctx, *account); err != nil {
		return nil, fmt.Errorf("save account: %w", err)
	}
	s.refreshCache(ctx, *account)

	return result, nil
}

// Resend replaces the pending two-factor code and redelivers it by SMS.
func (s *TwoFactorService) Resend(ctx context.Context, accountID string) error {
	account, err := s.pendingAccount(ctx, accountID)
	if err != nil {
		return err
	}

	length := s.cfg.Codes.Length
	if length <= 0 {
		length = security.DefaultCodeLength
	}
	plaintext, issued, err := security.IssueCode(length, s.cfg.Codes.TwoFactorTTL, s.now().UTC())
	if err != nil {
		return fmt.Errorf("issue two-factor code: %w", err)
	}
	account.SetCode(domain.CodeSlotTwoFactor, domain.OneTimeCode{Hash: issued.Hash, ExpiresAt: issued.ExpiresAt})

	if err := s.accounts.Save(ctx, *account); err != nil {
		return fmt.Errorf("save account: %w", err)
	}

	notification := port.CodeNotification{
		Channel:   port.ChannelSMS,
		Recipient: account.Phone.String(),
		Code:      plaintext,
		Purpose:   string(domain.CodeSlotTwoFactor),
	}
	go func() {
		detached, cancel := context.WithTimeout(context.WithoutCancel(ctx), dispatchTimeout)
		defer cancel()
		if err := s.notifier.SendCode(detached, notification); err != nil {
			s.log.Error("dispatch two-factor code", zap.Error(err))
		}
	}()

	return nil
}

func (s *TwoFactorService) pendingAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	if account.IsBlocked {
		return nil, ErrBlocked
	}
	if !account.Is2FALoginOngoing {
		return nil, ErrNotInTwoFactorLogin
	}

	return account, nil
}

func (s *TwoFactorService) refreshCache(ctx context.Context, account domain.Account) {
	if s.cache == nil {
		return
	}
	projection := account.Projection()
	go func() {
		detached, cancel := context.WithTimeout(context.WithoutCancel(ctx), dispatchTimeout)
		defer cancel()
		if err := s.cache.Populate(detached, projection); err != nil {
			s.log.Warn("populate account cache",
				zap.String("account_id", projection.ID),
				zap.Error(err),
			)
		}
	}()
}
