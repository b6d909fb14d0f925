package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenInvalid indicates the token is malformed or its signature does not verify.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenExpired indicates a structurally valid token past its expiry.
	ErrTokenExpired = errors.New("token expired")
)

// AccessTokenClaims is the payload of a short-lived stateless access token.
// TwoFactorPending marks challenge tokens minted mid 2FA sign-in; those are
// only good for the 2FA completion endpoints.
type AccessTokenClaims struct {
	UserID           string `json:"uid"`
	TwoFactorPending bool   `json:"tfa_pending,omitempty"`
	jwt.RegisteredClaims
}

// RefreshTokenClaims binds a long-lived refresh token to its account.
type RefreshTokenClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// TokenIssuerConfig carries the shared signing secrets and lifetimes.
type TokenIssuerConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// TokenIssuer mints and verifies HMAC-signed access and refresh tokens.
type TokenIssuer struct {
	cfg TokenIssuerConfig
	now func() time.Time
}

// NewTokenIssuer constructs a TokenIssuer after validating the secrets.
func NewTokenIssuer(cfg TokenIssuerConfig) (*TokenIssuer, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, fmt.Errorf("token issuer: signing secrets are required")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 15 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 365 * 24 * time.Hour
	}
	return &TokenIssuer{cfg: cfg, now: time.Now}, nil
}

// WithClock overrides the internal clock, used in tests.
func (t *TokenIssuer) WithClock(clock func() time.Time) {
	if clock != nil {
		t.now = clock
	}
}

// AccessTTL reports the configured access token lifetime.
func (t *TokenIssuer) AccessTTL() time.Duration {
	return t.cfg.AccessTTL
}

// IssueAccessToken mints a short-lived stateless token for the account.
func (t *TokenIssuer) IssueAccessToken(accountID string, twoFactorPending bool) (string, error) {
	if accountID == "" {
		return "", fmt.Errorf("account id is required")
	}

	now := t.now().UTC()
	claims := AccessTokenClaims{
		UserID:           accountID,
		TwoFactorPending: twoFactorPending,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			Issuer:    t.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.cfg.AccessTTL)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.cfg.AccessSecret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}

	return signed, nil
}

// ParseAccessToken validates an access token and returns its claims.
func (t *TokenIssuer) ParseAccessToken(token string) (*AccessTokenClaims, error) {
	claims := &AccessTokenClaims{}
	if err := t.parse(token, claims, t.cfg.AccessSecret); err != nil {
		return nil, err
	}
	if strings.TrimSpace(claims.UserID) == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// IssueRefreshToken mints a long-lived token bound to the account id.
// The caller persists only its hash; the plaintext is shown exactly once.
func (t *TokenIssuer) IssueRefreshToken(accountID string) (string, error) {
	if accountID == "" {
		return "", fmt.Errorf("account id is required")
	}

	now := t.now().UTC()
	claims := RefreshTokenClaims{
		UserID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			Issuer:    t.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.cfg.RefreshTTL)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.cfg.RefreshSecret)
	if err != nil {
		return "", fmt.Errorf("sign refresh token: %w", err)
	}

	return signed, nil
}

// ParseRefreshToken validates a refresh token and returns its claims.
func (t *TokenIssuer) ParseRefreshToken(token string) (*RefreshTokenClaims, error) {
	claims := &RefreshTokenClaims{}
	if err := t.parse(token, claims, t.cfg.RefreshSecret); err != nil {
		return nil, err
	}
	if strings.TrimSpace(claims.UserID) == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func (t *TokenIssuer) parse(token string, claims jwt.Claims, secret []byte) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrTokenInvalid
	}

	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return t.now() }))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrTokenInvalid
	}

	if parsed == nil || !parsed.Valid {
		return ErrTokenInvalid
	}

	return nil
}
