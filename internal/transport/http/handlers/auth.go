package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/infra/security"
	"github.com/arklim/social-platform-accounts/internal/transport/http/middleware"
	"github.com/arklim/social-platform-accounts/internal/usecase"
)

const tokenTypeBearer = "Bearer"

// AuthHandler exposes sign-up, sign-in, sign-out and token refresh endpoints.
type AuthHandler struct {
	accounts *usecase.AccountService
	tokens   *security.TokenIssuer
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(accounts *usecase.AccountService, tokens *security.TokenIssuer) *AuthHandler {
	return &AuthHandler{accounts: accounts, tokens: tokens}
}

// SignUp registers an account and returns its first session.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid sign-up payload"))
		return
	}

	input := usecase.SignUpInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}

	prefix := strings.TrimSpace(req.PhonePrefix)
	number := strings.TrimSpace(req.PhoneNumber)
	if (prefix == "") != (number == "") {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "phone prefix and number must be provided together"))
		return
	}
	if prefix != "" {
		input.Phone = &domain.Phone{Prefix: prefix, Number: number}
	}

	result, err := h.accounts.SignUp(c.Request.Context(), input)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrEmailInUse, Status: http.StatusBadRequest, Message: "email already in use"},
			{Err: usecase.ErrWeakPassword, Status: http.StatusBadRequest, Message: "password does not meet requirements"},
			{Err: usecase.ErrPreconditionFailed, Status: http.StatusBadRequest, Message: "invalid sign-up payload"},
		}, http.StatusInternalServerError, "sign-up failed")
		return
	}

	c.JSON(http.StatusCreated, h.sessionResponse(result))
}

// SignIn authenticates by email and password. Accounts with two-factor
// sign-in enabled receive a challenge token instead of a session.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid sign-in payload"))
		return
	}

	result, err := h.accounts.SignIn(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "invalid credentials"},
			{Err: usecase.ErrBlocked, Status: http.StatusForbidden, Message: "account blocked"},
			{Err: usecase.ErrPreconditionFailed, Status: http.StatusBadRequest, Message: "sign-in unavailable for this account"},
		}, http.StatusInternalServerError, "sign-in failed")
		return
	}

	if result.TwoFactorPending {
		c.JSON(http.StatusOK, TwoFactorPendingResponse{
			Message:        "a verification code has been sent to your phone",
			ChallengeToken: result.ChallengeToken,
			Account:        result.Account,
		})
		return
	}

	c.JSON(http.StatusOK, h.sessionResponse(&result.AuthResult))
}

// SignOut revokes the caller's refresh token.
func (h *AuthHandler) SignOut(c *gin.Context) {
	accountID := middleware.GetAccountID(c)

	if err := h.accounts.SignOut(c.Request.Context(), accountID); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account not found"},
		}, http.StatusInternalServerError, "sign-out failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "signed out"})
}

// Refresh exchanges a live refresh token for a fresh access token. Any
// rejection answers 401 so clients fall back to a full sign-out.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid refresh payload"))
		return
	}

	access, err := h.accounts.RefreshAccessToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUnauthenticated, Status: http.StatusUnauthorized, Message: "session expired, sign in again"},
			{Err: usecase.ErrBlocked, Status: http.StatusForbidden, Message: "account blocked"},
		}, http.StatusInternalServerError, "token refresh failed")
		return
	}

	c.JSON(http.StatusOK, RefreshResponse{
		AccessToken: access,
		TokenType:   tokenTypeBearer,
		ExpiresIn:   int(h.tokens.AccessTTL().Seconds()),
	})
}

func (h *AuthHandler) sessionResponse(result *usecase.AuthResult) SessionResponse {
	return SessionResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		TokenType:    tokenTypeBearer,
		ExpiresIn:    int(h.tokens.AccessTTL().Seconds()),
		Account:      result.Account,
	}
}
