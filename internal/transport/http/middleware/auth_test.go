package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/infra/security"
	"github.com/arklim/social-platform-accounts/internal/repository"
)

type stubAccountRepo struct {
	accounts map[string]*domain.Account
}

func (s *stubAccountRepo) Create(context.Context, domain.Account) error { return nil }
func (s *stubAccountRepo) GetByEmail(context.Context, string) (*domain.Account, error) {
	return nil, repository.ErrNotFound
}
func (s *stubAccountRepo) GetByPhone(context.Context, string, string) (*domain.Account, error) {
	return nil, repository.ErrNotFound
}
func (s *stubAccountRepo) EmailInUse(context.Context, string) (bool, error) { return false, nil }
func (s *stubAccountRepo) Save(context.Context, domain.Account) error       { return nil }

func (s *stubAccountRepo) GetByID(_ context.Context, id string) (*domain.Account, error) {
	account, ok := s.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *account
	return &copied, nil
}

func newAuthTestIssuer(t *testing.T) *security.TokenIssuer {
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

func authRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", handler, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"account_id": GetAccountID(c)})
	})
	return router
}

func performRequest(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestRequireAuthAcceptsAccessToken(t *testing.T) {
	issuer := newAuthTestIssuer(t)
	repo := &stubAccountRepo{accounts: map[string]*domain.Account{
		"acct-1": {ID: "acct-1", Email: "user@example.com"},
	}}
	router := authRouter(RequireAuth(issuer, repo, NotBlocked(), NotInTwoFactorLogin()))

	token, err := issuer.IssueAccessToken("acct-1", false)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	resp := performRequest(router, token)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestRequireAuthRejectsMissingHeader(t *testing.T) {
	issuer := newAuthTestIssuer(t)
	router := authRouter(RequireAuth(issuer, &stubAccountRepo{}))

	resp := performRequest(router, "")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestRequireAuthRejectsMalformedHeader(t *testing.T) {
	issuer := newAuthTestIssuer(t)
	router := authRouter(RequireAuth(issuer, &stubAccountRepo{}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", recorder.Code)
	}
}

func TestRequireAuthRejectsExpiredToken(t *testing.T) {
	issuer := newAuthTestIssuer(t)
	issued := time.Now().UTC()
	issuer.WithClock(func() time.Time { return issued })

	token, err := issuer.IssueAccessToken("acct-1", false)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	issuer.WithClock(func() time.Time { return issued.Add(16 * time.Minute) })
	router := authRouter(RequireAuth(issuer, &stubAccountRepo{}))

	resp := performRequest(router, token)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestRequireAuthRejectsChallengeToken(t *testing.T) {
	issuer := newAuthTestIssuer(t)
	repo := &stubAccountRepo{accounts: map[string]*domain.Account{
		"acct-1": {ID: "acct-1"},
	}}
	router := authRouter(RequireAuth(issuer, repo))

	challenge, err := issuer.IssueAccessToken("acct-1", true)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	resp := performRequest(router, challenge)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for challenge token, got %d", resp.Code)
	}
}

func TestRequireAuthRejectsUnknownAccount(t *testing.T) {
	issuer := newAuthTestIssuer(t)
	router := authRouter(RequireAuth(issuer, &stubAccountRepo{}))

	token, err := issuer.IssueAccessToken("ghost", false)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	resp := performRequest(router, token)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for deleted account, got %d", resp.Code)
	}
}

func TestRequireAuthGuards(t *testing.T) {
	issuer := newAuthTestIssuer(t)
	repo := &stubAccountRepo{accounts: map[string]*domain.Account{
		"blocked": {ID: "blocked", IsBlocked: true},
		"pending": {ID: "pending", Is2FALoginOngoing: true},
		"user":    {ID: "user", Role: domain.RoleEndUser},
	}}

	tests := []struct {
		name      string
		accountID string
		guards    []Guard
		want      int
	}{
		{"blocked account", "blocked", []Guard{NotBlocked()}, http.StatusForbidden},
		{"pending two-factor", "pending", []Guard{NotInTwoFactorLogin()}, http.StatusForbidden},
		{"insufficient role", "user", []Guard{RoleAtLeast(domain.RoleAdmin)}, http.StatusForbidden},
		{"unverified phone", "user", []Guard{PhoneVerified()}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := authRouter(RequireAuth(issuer, repo, tt.guards...))

			token, err := issuer.IssueAccessToken(tt.accountID, false)
			if err != nil {
				t.Fatalf("issue token: %v", err)
			}

			resp := performRequest(router, token)
			if resp.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, resp.Code, resp.Body.String())
			}
		})
	}
}

func TestRequireChallengeAdmitsOnlyChallengeTokens(t *testing.T) {
	issuer := newAuthTestIssuer(t)
	repo := &stubAccountRepo{accounts: map[string]*domain.Account{
		"acct-1":  {ID: "acct-1", Is2FALoginOngoing: true},
		"blocked": {ID: "blocked", Is2FALoginOngoing: true, IsBlocked: true},
	}}
	router := authRouter(RequireChallenge(issuer, repo))

	access, err := issuer.IssueAccessToken("acct-1", false)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if resp := performRequest(router, access); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for regular access token, got %d", resp.Code)
	}

	challenge, err := issuer.IssueAccessToken("acct-1", true)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if resp := performRequest(router, challenge); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for challenge token, got %d", resp.Code)
	}

	blockedChallenge, err := issuer.IssueAccessToken("blocked", true)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if resp := performRequest(router, blockedChallenge); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for blocked account, got %d", resp.Code)
	}
}
