package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/core/port"
	"github.com/arklim/social-platform-accounts/internal/infra/config"
	"github.com/arklim/social-platform-accounts/internal/infra/logger"
	"github.com/arklim/social-platform-accounts/internal/infra/security"
	"github.com/arklim/social-platform-accounts/internal/repository"
)

var (
	// ErrInvalidCredentials indicates the provided identifier or password are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated indicates the caller presented no usable proof of identity.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrBlocked indicates the account has been blacklisted.
	ErrBlocked = errors.New("account blocked")
	// ErrForbidden indicates the caller's role does not grant the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrEmailInUse indicates the email is already registered.
	ErrEmailInUse = errors.New("email already in use")
	// ErrAccountNotFound indicates no account matches the identifier.
	ErrAccountNotFound = errors.New("account not found")
	// ErrPreconditionFailed indicates the account state does not admit the operation.
	ErrPreconditionFailed = errors.New("operation precondition not met")
	// ErrAlreadyVerified indicates the contact point was verified before.
	ErrAlreadyVerified = errors.New("already verified")
	// ErrWrongCode indicates the submitted code does not match; the attempt may be retried.
	ErrWrongCode = errors.New("wrong code")
	// ErrCodeExpired indicates the code matched but its validity window elapsed; the flow is over.
	ErrCodeExpired = errors.New("code expired")
	// ErrNoResetRequested indicates a reset was submitted without a pending recovery.
	ErrNoResetRequested = errors.New("no password reset requested")
	// ErrWeakPassword indicates the candidate password fails the strength policy.
	ErrWeakPassword = errors.New("password too weak")
)

// dispatchTimeout bounds the detached goroutines that deliver codes and warm the cache.
const dispatchTimeout = 5 * time.Second

// AuthResult is returned by every operation that establishes a session.
type AuthResult struct {
	Account      domain.AccountProjection
	AccessToken  string
	RefreshToken string
}

// SignInResult is an AuthResult or, for 2FA-enabled accounts, a challenge.
// When TwoFactorPending is set the token fields are empty and ChallengeToken
// is only accepted by the 2FA completion endpoints.
type SignInResult struct {
	AuthResult
	TwoFactorPending bool
	ChallengeToken   string
}

// SignUpInput carries the fields required to register an account.
type SignUpInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     *domain.Phone
}

// AccountService coordinates registration, session, verification and
// credential flows around the account aggregate.
type AccountService struct {
	cfg       *config.AppConfig
	accounts  port.AccountRepository
	blacklist port.BlacklistRepository
	cache     port.ProjectionCache
	notifier  port.Notifier
	limiter   port.RateLimitStore
	tokens    *security.TokenIssuer
	passwords *security.PasswordValidator
	log       *zap.Logger
	now       func() time.Time
}

// NewAccountService constructs an AccountService instance.
func NewAccountService(
	cfg *config.AppConfig,
	accounts port.AccountRepository,
	blacklist port.BlacklistRepository,
	cache port.ProjectionCache,
	notifier port.Notifier,
	limiter port.RateLimitStore,
	tokens *security.TokenIssuer,
	passwords *security.PasswordValidator,
	log *zap.Logger,
) *AccountService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AccountService{
		cfg:       cfg,
		accounts:  accounts,
		blacklist: blacklist,
		cache:     cache,
		notifier:  notifier,
		limiter:   limiter,
		tokens:    tokens,
		passwords: passwords,
		log:       log,
		now:       time.Now,
	}
}

// WithClock overrides the internal clock, used in tests.
func (s *AccountService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// SignUp registers a new end-user account and opens its first session.
// A verification code for the email (and the phone, when given) is issued
// and dispatched out of band.
func (s *AccountService) SignUp(ctx context.Context, input SignUpInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email is required", ErrPreconditionFailed)
	}
	if err := s.passwords.Validate(input.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWeakPassword, err)
	}
	if score := security.PasswordStrength(input.Password); score < security.PasswordWarnScore {
		s.log.Warn("weak password accepted at registration",
			zap.String("email", logger.MaskEmail(email)),
			zap.Int("score", score),
		)
	}

	inUse, err := s.accounts.EmailInUse(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if inUse {
		return nil, ErrEmailInUse
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	account := domain.Account{
		ID:           uuid.NewString(),
		Email:        email,
		Phone:        input.Phone,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		PasswordHash: passwordHash,
		Role:         domain.RoleEndUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	emailCode, err := s.issueCode(&account, domain.CodeSlotEmailVerification, s.cfg.Codes.VerificationTTL)
	if err != nil {
		return nil, err
	}
	var phoneCode string
	if account.Phone != nil {
		phoneCode, err = s.issueCode(&account, domain.CodeSlotPhoneVerification, s.cfg.Codes.VerificationTTL)
		if err != nil {
			return nil, err
		}
	}

	result, err := s.openSession(&account)
	if err != nil {
		return nil, err
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailInUse
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.dispatchCode(ctx, port.CodeNotification{
		Channel:   port.ChannelEmail,
		Recipient: account.Email,
		Code:      emailCode,
		Purpose:   string(domain.CodeSlotEmailVerification),
	})
	if phoneCode != "" {
		s.dispatchCode(ctx, port.CodeNotification{
			Channel:   port.ChannelSMS,
			Recipient: account.Phone.String(),
			Code:      phoneCode,
			Purpose:   string(domain.CodeSlotPhoneVerification),
		})
	}
	s.populateCache(ctx, account)

	s.log.Info("account registered",
		zap.String("account_id", account.ID),
		zap.String("email", logger.MaskEmail(account.Email)),
	)

	return result, nil
}

// SignIn authenticates by email and password. Accounts with 2FA enabled
// receive a challenge instead of tokens; ip feeds the abuse monitor.
func (s *AccountService) SignIn(ctx context.Context, email, password, ip string) (*SignInResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	if account.IsBlocked {
		return nil, ErrBlocked
	}

	ok, err := security.VerifyPassword(password, account.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.recordFailedSignIn(ctx, account.ID, ip)
		return nil, ErrInvalidCredentials
	}

	if account.Is2FAEnabled {
		return s.beginTwoFactorSignIn(ctx, account)
	}

	result, err := s.openSession(account)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.Save(ctx, *account); err != nil {
		return nil, fmt.Errorf("save account: %w", err)
	}
	s.populateCache(ctx, *account)

	return &SignInResult{AuthResult: *result}, nil
}

// SignOut revokes the account's refresh token and abandons any pending
// two-factor sign-in. Signing out twice is a no-op.
func (s *AccountService) SignOut(ctx context.Context, accountID string) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("lookup account: %w", err)
	}

	if account.RefreshTokenHash == nil && !account.Is2FALoginOngoing && account.TwoFactorCode == nil {
		return nil
	}

	account.EndTwoFactorLogin()
	account.ClearRefreshToken()
	if err := s.accounts.Save(ctx, *account); err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	s.populateCache(ctx, *account)

	return nil
}

// RefreshAccessToken exchanges a live refresh token for a fresh access
// token. The refresh token itself is not rotated. Any failure is reported
// as ErrUnauthenticated; a token that names an account but fails the
// stored-hash check revokes that account's session before returning.
func (s *AccountService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return "", ErrUnauthenticated
	}

	account, err := s.accounts.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUnauthenticated
		}
		return "", fmt.Errorf("lookup account: %w", err)
	}

	if account.IsBlocked {
		return "", ErrBlocked
	}
	if account.RefreshTokenHash == nil {
		return "", ErrUnauthenticated
	}

	match, err := security.VerifySecret(refreshToken, *account.RefreshTokenHash)
	if err != nil {
		return "", fmt.Errorf("verify refresh token: %w", err)
	}
	if !match {
		account.EndTwoFactorLogin()
		account.ClearRefreshToken()
		if err := s.accounts.Save(ctx, *account); err != nil {
			return "", fmt.Errorf("save account: %w", err)
		}
		s.populateCache(ctx, *account)
		s.log.Warn("refresh token mismatch, session revoked",
			zap.String("account_id", account.ID),
		)
		return "", ErrUnauthenticated
	}

	access, err := s.tokens.IssueAccessToken(account.ID, false)
	if err != nil {
		return "", fmt.Errorf("issue access token: %w", err)
	}

	return access, nil
}

// VerifyInfo confirms ownership of the email or phone using the pending code.
func (s *AccountService) VerifyInfo(ctx context.Context, accountID string, slot domain.CodeSlot, code string) error {
	if slot != domain.CodeSlotEmailVerification && slot != domain.CodeSlotPhoneVerification {
		return fmt.Errorf("%w: unknown verification target", ErrPreconditionFailed)
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("lookup account: %w", err)
	}

	if slot == domain.CodeSlotEmailVerification && account.IsEmailVerified {
		return ErrAlreadyVerified
	}
	if slot == domain.CodeSlotPhoneVerification {
		if account.Phone == nil {
			return fmt.Errorf("%w: no phone on record", ErrPreconditionFailed)
		}
		if account.IsPhoneVerified {
			return ErrAlreadyVerified
		}
	}

	pending := account.Code(slot)
	if pending == nil {
		return fmt.Errorf("%w: no verification pending", ErrPreconditionFailed)
	}

	check, err := security.VerifyCode(code, pending.Hash, pending.ExpiresAt, s.now().UTC(), false)
	if err != nil {
		return err
	}
	if check.Expired {
		account.ClearCode(slot)
		if err := s.accounts.Save(ctx, *account); err != nil {
			return fmt.Errorf("save account: %w", err)
		}
		return ErrCodeExpired
	}
	if !check.Valid {
		return ErrWrongCode
	}

	if slot == domain.CodeSlotEmailVerification {
		account.MarkEmailVerified()
	} else {
		account.MarkPhoneVerified()
	}
	if err := s.accounts.Save(ctx, *account); err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	s.populateCache(ctx, *account)

	return nil
}

// ResendVerification issues a replacement verification code for the email
// or phone, invalidating the previous one.
func (s *AccountService) ResendVerification(ctx context.Context, accountID string, slot domain.CodeSlot) error {
	if slot != domain.CodeSlotEmailVerification && slot != domain.CodeSlotPhoneVerification {
		return fmt.Errorf("%w: unknown verification target", ErrPreconditionFailed)
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("lookup account: %w", err)
	}

	notification := port.CodeNotification{Purpose: string(slot)}
	switch slot {
	case domain.CodeSlotEmailVerification:
		if account.IsEmailVerified {
			return ErrAlreadyVerified
		}
		notification.Channel = port.ChannelEmail
		notification.Recipient = account.Email
	case domain.CodeSlotPhoneVerification:
		if account.Phone == nil {
			return fmt.Errorf("%w: no phone on record", ErrPreconditionFailed)
		}
		if account.IsPhoneVerified {
			return ErrAlreadyVerified
		}
		notification.Channel = port.ChannelSMS
		notification.Recipient = account.Phone.String()
	}

	code, err := s.issueCode(account, slot, s.cfg.Codes.VerificationTTL)
	if err != nil {
		return err
	}
	if err := s.accounts.Save(ctx, *account); err != nil {
		return fmt.Errorf("save account: %w", err)
	}

	notification.Code = code
	s.dispatchCode(ctx, notification)

	return nil
}

// RecoverAccount starts a password recovery for the identifier, which is
// either an email or a phone in "prefix-number" form. The reset code goes
// out over the channel matching the identifier.
func (s *AccountService) RecoverAccount(ctx context.Context, identifier string) error {
	account, channel, recipient, err := s.lookupByIdentifier(ctx, identifier)
	if err != nil {
		return err
	}
	if account.IsBlocked {
		return ErrBlocked
	}

	code, err := s.issueCode(account, domain.CodeSlotPasswordReset, s.cfg.Codes.ResetTTL)
	if err != nil {
		return err
	}
	if err := s.accounts.Save(ctx, *account); err != nil {
		return fmt.Errorf("save account: %w", err)
	}

	s.dispatchCode(ctx, port.CodeNotification{
		Channel:   channel,
		Recipient: recipient,
		Code:      code,
		Purpose:   string(domain.CodeSlotPasswordReset),
	})

	return nil
}

// ResetPassword consumes a pending reset code, installs the new password
// and opens a fresh session, revoking whatever session existed before.
func (s *AccountService) ResetPassword(ctx context.Context, identifier, code, newPassword string) (*AuthResult, error) {
	account, _, _, err := s.lookupByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if account.IsBlocked {
		return nil, ErrBlocked
	}

	pending := account.Code(domain.CodeSlotPasswordReset)
	if pending == nil {
		return nil, ErrNoResetRequested
	}

	check, err := security.VerifyCode(code, pending.Hash, pending.ExpiresAt, s.now().UTC(), false)
	if err != nil {
		return nil, err
	}
	if check.Expired {
		account.ClearCode(domain.CodeSlotPasswordReset)
		if err := s.accounts.Save(ctx, *account); err != nil {
			return nil, fmt.Errorf("save account: %w", err)
		}
		return nil, ErrCodeExpired
	}
	if !check.Valid {
		return nil, ErrWrongCode
	}

	if err := s.passwords.Validate(newPassword); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWeakPassword, err)
	}
	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account.PasswordHash = passwordHash
	account.ClearCode(domain.CodeSlotPasswordReset)
	account.EndTwoFactorLogin()

	result, err := s.openSession(account)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.Save(ctx, *account); err != nil {
		return nil, fmt.Errorf("save account: %w", err)
	}
	s.populateCache(ctx, *account)

	s.log.Info("password reset completed", zap.String("account_id", account.ID))

	return result, nil
}

// ChangePassword swaps the password after re-proving the current one.
// The active session is revoked so other devices must sign in again.
func (s *AccountService) ChangePassword(ctx context.Context, accountID, current, next string) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("lookup account: %w", err)
	}

	ok, err := security.VerifyPassword(current, account.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return ErrInvalidCredentials
	}

	if err := s.passwords.Validate(next); err != nil {
		return fmt.Errorf("%w: %v", ErrWeakPassword, err)
	}
	passwordHash, err := security.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	account.PasswordHash = passwordHash
	account.ClearRefreshToken()
	if err := s.accounts.Save(ctx, *account); err != nil {
		return fmt.Errorf("save account: %w", err)
	}

	return nil
}

// Toggle2FA enables or disables two-factor sign-in. Enabling requires a
// verified phone number.
func (s *AccountService) Toggle2FA(ctx context.Context, accountID string, enable bool) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("lookup account: %w", err)
	}

	if enable {
		if !account.Enable2FA() {
			return fmt.Errorf("%w: verified phone required", ErrPreconditionFailed)
		}
	} else {
		account.Disable2FA()
	}

	if err := s.accounts.Save(ctx, *account); err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	s.populateCache(ctx, *account)

	return nil
}

// beginTwoFactorSignIn parks the account in the 2FA-pending sub-state and
// hands back a challenge token instead of a session.
func (s *AccountService) beginTwoFactorSignIn(ctx context.Context, account *domain.Account) (*SignInResult, error) {
	if !account.BeginTwoFactorLogin() {
		return nil, fmt.Errorf("%w: two-factor unavailable", ErrPreconditionFailed)
	}

	code, err := s.issueCode(account, domain.CodeSlotTwoFactor, s.cfg.Codes.TwoFactorTTL)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.Save(ctx, *account); err != nil {
		return nil, fmt.Errorf("save account: %w", err)
	}

	challenge, err := s.tokens.IssueAccessToken(account.ID, true)
	if err != nil {
		return nil, fmt.Errorf("issue challenge token: %w", err)
	}

	s.dispatchCode(ctx, port.CodeNotification{
		Channel:   port.ChannelSMS,
		Recipient: account.Phone.String(),
		Code:      code,
		Purpose:   string(domain.CodeSlotTwoFactor),
	})

	return &SignInResult{
		AuthResult:       AuthResult{Account: account.Projection()},
		TwoFactorPending: true,
		ChallengeToken:   challenge,
	}, nil
}

func (s *AccountService) openSession(account *domain.Account) (*AuthResult, error) {
	return openSession(s.tokens, account)
}

// openSession mints an access and refresh token pair and records the refresh
// hash on the aggregate. The caller persists the account afterwards.
func openSession(tokens *security.TokenIssuer, account *domain.Account) (*AuthResult, error) {
	access, err := tokens.IssueAccessToken(account.ID, false)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := tokens.IssueRefreshToken(account.ID)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	refreshHash, err := security.HashSecret(refresh)
	if err != nil {
		return nil, fmt.Errorf("hash refresh token: %w", err)
	}
	account.SetRefreshTokenHash(refreshHash)

	return &AuthResult{
		Account:      account.Projection(),
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// issueCode fills the slot with a freshly generated code and returns the plaintext.
func (s *AccountService) issueCode(account *domain.Account, slot domain.CodeSlot, ttl time.Duration) (string, error) {
	length := s.cfg.Codes.Length
	if length <= 0 {
		length = security.DefaultCodeLength
	}

	plaintext, issued, err := security.IssueCode(length, ttl, s.now().UTC())
	if err != nil {
		return "", fmt.Errorf("issue %s code: %w", slot, err)
	}

	account.SetCode(slot, domain.OneTimeCode{Hash: issued.Hash, ExpiresAt: issued.ExpiresAt})
	return plaintext, nil
}

// lookupByIdentifier resolves an email or a "prefix-number" phone string to
// an account together with the notification channel it implies.
func (s *AccountService) lookupByIdentifier(ctx context.Context, identifier string) (*domain.Account, port.NotificationChannel, string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, "", "", ErrAccountNotFound
	}

	if strings.Contains(identifier, "@") {
		account, err := s.accounts.GetByEmail(ctx, strings.ToLower(identifier))
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, "", "", ErrAccountNotFound
			}
			return nil, "", "", fmt.Errorf("lookup account: %w", err)
		}
		return account, port.ChannelEmail, account.Email, nil
	}

	prefix, number, found := strings.Cut(identifier, "-")
	if !found || prefix == "" || number == "" {
		return nil, "", "", ErrAccountNotFound
	}
	account, err := s.accounts.GetByPhone(ctx, prefix, number)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", "", ErrAccountNotFound
		}
		return nil, "", "", fmt.Errorf("lookup account: %w", err)
	}
	return account, port.ChannelSMS, identifier, nil
}

// recordFailedSignIn feeds the abuse monitor. Crossing the threshold inside
// the window blacklists the account from the offending address. Failures
// here never surface to the caller.
func (s *AccountService) recordFailedSignIn(ctx context.Context, accountID, ip string) {
	if s.limiter == nil {
		return
	}

	now := s.now().UTC()
	key := "signin_fail:" + accountID
	window := s.cfg.RateLimit.BlacklistWindowSize

	if err := s.limiter.RecordAttempt(ctx, key, now); err != nil {
		s.log.Warn("record failed sign-in", zap.Error(err))
		return
	}
	count, err := s.limiter.CountAttempts(ctx, key, window, now)
	if err != nil {
		s.log.Warn("count failed sign-ins", zap.Error(err))
		return
	}
	if count < s.cfg.RateLimit.BlacklistThreshold || s.blacklist == nil {
		return
	}

	go func() {
		detached, cancel := context.WithTimeout(context.WithoutCancel(ctx), dispatchTimeout)
		defer cancel()
		if err := s.blacklist.BlacklistUser(detached, accountID, ip); err != nil {
			s.log.Error("blacklist abusive account",
				zap.String("account_id", accountID),
				zap.String("ip", logger.MaskIP(ip)),
				zap.Error(err),
			)
			return
		}
		s.invalidateCache(detached, accountID)
		s.log.Warn("account blacklisted after repeated sign-in failures",
			zap.String("account_id", accountID),
			zap.String("ip", logger.MaskIP(ip)),
		)
	}()
}

// dispatchCode hands the code to the notifier on a detached goroutine so
// delivery latency or failure never blocks the business operation.
func (s *AccountService) dispatchCode(ctx context.Context, notification port.CodeNotification) {
	if s.notifier == nil {
		return
	}
	go func() {
		detached, cancel := context.WithTimeout(context.WithoutCancel(ctx), dispatchTimeout)
		defer cancel()
		if err := s.notifier.SendCode(detached, notification); err != nil {
			s.log.Error("dispatch code notification",
				zap.String("purpose", notification.Purpose),
				zap.String("channel", string(notification.Channel)),
				zap.Error(err),
			)
		}
	}()
}

// populateCache refreshes the account projection cache, logging failures only.
func (s *AccountService) populateCache(ctx context.Context, account domain.Account) {
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

func (s *AccountService) invalidateCache(ctx context.Context, accountID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, accountID); err != nil {
		s.log.Warn("invalidate account cache",
			zap.String("account_id", accountID),
			zap.Error(err),
		)
	}
}
