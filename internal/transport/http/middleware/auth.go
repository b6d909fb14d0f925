package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/core/port"
	"github.com/arklim/social-platform-accounts/internal/infra/security"
	"github.com/arklim/social-platform-accounts/internal/usecase"
)

// ErrorResponse matches the handlers.ErrorResponse structure.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

func newErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: GetTraceID(c),
	}
}

// Guard is a predicate over the authenticated account, evaluated in order
// after the token check. Returning an error aborts the request.
type Guard func(account *domain.Account, c *gin.Context) error

// NotBlocked rejects blacklisted accounts.
func NotBlocked() Guard {
	return func(account *domain.Account, _ *gin.Context) error {
		if account.IsBlocked {
			return usecase.ErrBlocked
		}
		return nil
	}
}

// NotInTwoFactorLogin rejects accounts parked mid two-factor sign-in;
// those may only reach the 2FA completion endpoints.
func NotInTwoFactorLogin() Guard {
	return func(account *domain.Account, _ *gin.Context) error {
		if account.Is2FALoginOngoing {
			return fmt.Errorf("%w: two-factor sign-in pending", usecase.ErrForbidden)
		}
		return nil
	}
}

// PhoneVerified requires a verified phone number on the account.
func PhoneVerified() Guard {
	return func(account *domain.Account, _ *gin.Context) error {
		if account.Phone == nil || !account.IsPhoneVerified {
			return fmt.Errorf("%w: verified phone required", usecase.ErrPreconditionFailed)
		}
		return nil
	}
}

// RoleAtLeast requires the account's role to grant the given role's privileges.
func RoleAtLeast(required domain.Role) Guard {
	return func(account *domain.Account, _ *gin.Context) error {
		if !account.Role.AtLeast(required) {
			return fmt.Errorf("%w: insufficient role", usecase.ErrForbidden)
		}
		return nil
	}
}

// RequireAuth validates the Authorization header, loads the account, and
// evaluates the guards in order. Challenge tokens minted mid two-factor
// sign-in are rejected here; they are only good for RequireChallenge routes.
func RequireAuth(tokens *security.TokenIssuer, accounts port.AccountRepository, guards ...Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c, tokens)
		if !ok {
			return
		}

		if claims.TwoFactorPending {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "two-factor sign-in must be completed first"))
			return
		}

		account, ok := loadAccount(c, accounts, claims.UserID)
		if !ok {
			return
		}

		for _, guard := range guards {
			if err := guard(account, c); err != nil {
				c.AbortWithStatusJSON(guardStatus(err), newErrorResponse(c, err.Error()))
				return
			}
		}

		c.Set(AccountIDKey, account.ID)
		c.Set(accountKey, account)
		c.Set(claimsKey, claims)

		c.Next()
	}
}

// RequireChallenge admits only challenge tokens from a pending two-factor
// sign-in. All other tokens, including regular access tokens, are rejected.
func RequireChallenge(tokens *security.TokenIssuer, accounts port.AccountRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c, tokens)
		if !ok {
			return
		}

		if !claims.TwoFactorPending {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "two-factor challenge token required"))
			return
		}

		account, ok := loadAccount(c, accounts, claims.UserID)
		if !ok {
			return
		}

		if account.IsBlocked {
			c.AbortWithStatusJSON(http.StatusForbidden, newErrorResponse(c, "account blocked"))
			return
		}

		c.Set(AccountIDKey, account.ID)
		c.Set(accountKey, account)
		c.Set(claimsKey, claims)

		c.Next()
	}
}

func parseBearer(c *gin.Context, tokens *security.TokenIssuer) (*security.AccessTokenClaims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized,
			newErrorResponse(c, "missing authorization header"))
		return nil, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		c.AbortWithStatusJSON(http.StatusUnauthorized,
			newErrorResponse(c, "invalid authorization format: expected 'Bearer <token>'"))
		return nil, false
	}

	claims, err := tokens.ParseAccessToken(strings.TrimSpace(parts[1]))
	if err != nil {
		switch {
		case errors.Is(err, security.ErrTokenExpired):
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "access token expired"))
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "invalid access token"))
		}
		return nil, false
	}

	return claims, true
}

func loadAccount(c *gin.Context, accounts port.AccountRepository, accountID string) (*domain.Account, bool) {
	account, err := accounts.GetByID(c.Request.Context(), accountID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized,
			newErrorResponse(c, "account no longer exists"))
		return nil, false
	}
	return account, true
}

func guardStatus(err error) int {
	switch {
	case errors.Is(err, usecase.ErrBlocked), errors.Is(err, usecase.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}
