package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-accounts/internal/infra/security"
	"github.com/arklim/social-platform-accounts/internal/transport/http/middleware"
	"github.com/arklim/social-platform-accounts/internal/usecase"
)

// PasswordHandler exposes recovery, reset, and change endpoints.
type PasswordHandler struct {
	accounts *usecase.AccountService
	tokens   *security.TokenIssuer
}

// NewPasswordHandler constructs PasswordHandler.
func NewPasswordHandler(accounts *usecase.AccountService, tokens *security.TokenIssuer) *PasswordHandler {
	return &PasswordHandler{accounts: accounts, tokens: tokens}
}

// Recover starts a password recovery for the identifier. The reset code is
// delivered over the channel matching the identifier form.
func (h *PasswordHandler) Recover(c *gin.Context) {
	var req RecoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid recovery payload"))
		return
	}

	err := h.accounts.RecoverAccount(c.Request.Context(), req.Identifier)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "no account matches this identifier"},
			{Err: usecase.ErrBlocked, Status: http.StatusForbidden, Message: "account blocked"},
		}, http.StatusInternalServerError, "recovery failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "a recovery code has been sent"})
}

// Reset consumes the recovery code, installs the new password, and opens a
// fresh session.
func (h *PasswordHandler) Reset(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid reset payload"))
		return
	}

	result, err := h.accounts.ResetPassword(c.Request.Context(), req.Identifier, req.Code, req.NewPassword)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "no account matches this identifier"},
			{Err: usecase.ErrNoResetRequested, Status: http.StatusBadRequest, Message: "no password reset was requested"},
			{Err: usecase.ErrWrongCode, Status: http.StatusBadRequest, Message: "wrong code"},
			{Err: usecase.ErrCodeExpired, Status: http.StatusBadRequest, Message: "code expired, request recovery again"},
			{Err: usecase.ErrWeakPassword, Status: http.StatusBadRequest, Message: "password does not meet requirements"},
			{Err: usecase.ErrBlocked, Status: http.StatusForbidden, Message: "account blocked"},
		}, http.StatusInternalServerError, "password reset failed")
		return
	}

	c.JSON(http.StatusOK, SessionResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		TokenType:    tokenTypeBearer,
		ExpiresIn:    int(h.tokens.AccessTTL().Seconds()),
		Account:      result.Account,
	})
}

// Change swaps the caller's password after re-proving the current one.
func (h *PasswordHandler) Change(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid change payload"))
		return
	}

	err := h.accounts.ChangePassword(c.Request.Context(), middleware.GetAccountID(c), req.CurrentPassword, req.NewPassword)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "current password is incorrect"},
			{Err: usecase.ErrWeakPassword, Status: http.StatusBadRequest, Message: "password does not meet requirements"},
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account not found"},
		}, http.StatusInternalServerError, "password change failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password changed, sign in again"})
}
