package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/core/port"
	"github.com/arklim/social-platform-accounts/internal/infra/config"
	"github.com/arklim/social-platform-accounts/internal/infra/security"
	"github.com/arklim/social-platform-accounts/internal/repository"
)

type testAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
	saves    int
}

func newTestAccountRepo(accounts ...*domain.Account) *testAccountRepo {
	repo := &testAccountRepo{accounts: make(map[string]*domain.Account)}
	for _, account := range accounts {
		copied := *account
		repo.accounts[account.ID] = &copied
	}
	return repo
}

func (r *testAccountRepo) Create(_ context.Context, account domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.Email == account.Email {
			return repository.ErrDuplicate
		}
	}
	copied := account
	r.accounts[account.ID] = &copied
	return nil
}

func (r *testAccountRepo) GetByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if account, ok := r.accounts[id]; ok {
		copied := *account
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (r *testAccountRepo) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if account.Email == email {
			copied := *account
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *testAccountRepo) GetByPhone(_ context.Context, prefix, number string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if account.Phone != nil && account.Phone.Prefix == prefix && account.Phone.Number == number {
			copied := *account
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *testAccountRepo) EmailInUse(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if account.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *testAccountRepo) Save(_ context.Context, account domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[account.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := account
	r.accounts[account.ID] = &copied
	r.saves++
	return nil
}

func (r *testAccountRepo) stored(t *testing.T, id string) *domain.Account {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		t.Fatalf("account %s not stored", id)
	}
	copied := *account
	return &copied
}

func (r *testAccountRepo) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

type testBlacklistRepo struct {
	mu      sync.Mutex
	blocked map[string][]string
	calls   chan string
}

func newTestBlacklistRepo() *testBlacklistRepo {
	return &testBlacklistRepo{
		blocked: make(map[string][]string),
		calls:   make(chan string, 8),
	}
}

func (r *testBlacklistRepo) BlacklistUser(_ context.Context, userID, ip string) error {
	r.mu.Lock()
	r.blocked[userID] = append(r.blocked[userID], ip)
	r.mu.Unlock()
	r.calls <- userID
	return nil
}

func (r *testBlacklistRepo) IsUserBlacklisted(_ context.Context, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.blocked[userID]
	return ok, nil
}

func (r *testBlacklistRepo) GetByUser(_ context.Context, userID string) (*domain.BlacklistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ips, ok := r.blocked[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &domain.BlacklistEntry{UserID: userID, IPs: ips}, nil
}

type testNotifier struct {
	sent chan port.CodeNotification
}

func newTestNotifier() *testNotifier {
	return &testNotifier{sent: make(chan port.CodeNotification, 8)}
}

func (n *testNotifier) SendCode(_ context.Context, notification port.CodeNotification) error {
	n.sent <- notification
	return nil
}

func (n *testNotifier) waitForCode(t *testing.T) port.CodeNotification {
	t.Helper()
	select {
	case notification := <-n.sent:
		return notification
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for code notification")
		return port.CodeNotification{}
	}
}

type testCache struct {
	mu          sync.Mutex
	populated   []string
	invalidated []string
}

func newTestCache() *testCache {
	return &testCache{}
}

func (c *testCache) Populate(_ context.Context, projection domain.AccountProjection) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.populated = append(c.populated, projection.ID)
	return nil
}

func (c *testCache) Invalidate(_ context.Context, accountID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, accountID)
	return nil
}

type testRateLimitStore struct {
	mu       sync.Mutex
	attempts map[string]int
}

func newTestRateLimitStore() *testRateLimitStore {
	return &testRateLimitStore{attempts: make(map[string]int)}
}

func (s *testRateLimitStore) TrimWindow(context.Context, string, time.Duration, time.Time) error {
	return nil
}

func (s *testRateLimitStore) CountAttempts(_ context.Context, identifier string, _ time.Duration, _ time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts[identifier], nil
}

func (s *testRateLimitStore) RecordAttempt(_ context.Context, identifier string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[identifier]++
	return nil
}

func (s *testRateLimitStore) OldestAttempt(context.Context, string, time.Duration, time.Time) (time.Time, bool, error) {
	return time.Time{}, false, errors.New("unexpected call")
}

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		App: config.AppSettings{Name: "accounts-test", Env: "test"},
		Codes: config.CodeSettings{
			Length:          6,
			VerificationTTL: 48 * time.Hour,
			ResetTTL:        48 * time.Hour,
			TwoFactorTTL:    6 * time.Hour,
		},
		RateLimit: config.RateLimitSettings{
			WindowDuration:      time.Minute,
			SignInMaxAttempts:   5,
			BlacklistThreshold:  3,
			BlacklistWindowSize: 10 * time.Minute,
		},
	}
}

func testTokenIssuer(t *testing.T) *security.TokenIssuer {
	t.Helper()
	issuer, err := security.NewTokenIssuer(security.TokenIssuerConfig{
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
		Issuer:        "accounts-test",
	})
	if err != nil {
		t.Fatalf("token issuer: %v", err)
	}
	return issuer
}

type accountServiceFixture struct {
	service   *AccountService
	repo      *testAccountRepo
	blacklist *testBlacklistRepo
	cache     *testCache
	notifier  *testNotifier
	limiter   *testRateLimitStore
	tokens    *security.TokenIssuer
}

func newAccountServiceFixture(t *testing.T, accounts ...*domain.Account) *accountServiceFixture {
	t.Helper()

	repo := newTestAccountRepo(accounts...)
	blacklist := newTestBlacklistRepo()
	cache := newTestCache()
	notifier := newTestNotifier()
	limiter := newTestRateLimitStore()
	tokens := testTokenIssuer(t)

	service := NewAccountService(
		testConfig(), repo, blacklist, cache, notifier, limiter,
		tokens, security.DefaultPasswordValidator(), zap.NewNop(),
	)

	return &accountServiceFixture{
		service:   service,
		repo:      repo,
		blacklist: blacklist,
		cache:     cache,
		notifier:  notifier,
		limiter:   limiter,
		tokens:    tokens,
	}
}

// seedAccount builds a persisted account with a known password.
func seedAccount(t *testing.T, password string, mutate func(*domain.Account)) *domain.Account {
	t.Helper()

	hash, err := security.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	account := &domain.Account{
		ID:           "acct-1",
		Email:        "user@example.com",
		FirstName:    "Dana",
		LastName:     "Keller",
		PasswordHash: hash,
		Role:         domain.RoleEndUser,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	if mutate != nil {
		mutate(account)
	}
	return account
}
