package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-accounts/internal/infra/security"
	"github.com/arklim/social-platform-accounts/internal/transport/http/middleware"
	"github.com/arklim/social-platform-accounts/internal/usecase"
)

// TwoFactorHandler exposes the two-factor sign-in completion endpoints and
// the enable/disable toggle.
type TwoFactorHandler struct {
	twoFactor *usecase.TwoFactorService
	accounts  *usecase.AccountService
	tokens    *security.TokenIssuer
}

// NewTwoFactorHandler constructs TwoFactorHandler.
func NewTwoFactorHandler(twoFactor *usecase.TwoFactorService, accounts *usecase.AccountService, tokens *security.TokenIssuer) *TwoFactorHandler {
	return &TwoFactorHandler{twoFactor: twoFactor, accounts: accounts, tokens: tokens}
}

// Verify completes a pending two-factor sign-in with the submitted code.
// A wrong code can be retried; an expired one ends the sign-in for good.
func (h *TwoFactorHandler) Verify(c *gin.Context) {
	var req CodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid verification payload"))
		return
	}

	result, err := h.twoFactor.Complete(c.Request.Context(), middleware.GetAccountID(c), req.Code)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrNotInTwoFactorLogin, Status: http.StatusBadRequest, Message: "no two-factor sign-in in progress"},
			{Err: usecase.ErrWrongCode, Status: http.StatusBadRequest, Message: "wrong code"},
			{Err: usecase.ErrCodeExpired, Status: http.StatusBadRequest, Message: "code expired, sign in again"},
			{Err: usecase.ErrBlocked, Status: http.StatusForbidden, Message: "account blocked"},
		}, http.StatusInternalServerError, "two-factor verification failed")
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

// Resend replaces and redelivers the pending two-factor code.
func (h *TwoFactorHandler) Resend(c *gin.Context) {
	err := h.twoFactor.Resend(c.Request.Context(), middleware.GetAccountID(c))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrNotInTwoFactorLogin, Status: http.StatusBadRequest, Message: "no two-factor sign-in in progress"},
			{Err: usecase.ErrBlocked, Status: http.StatusForbidden, Message: "account blocked"},
		}, http.StatusInternalServerError, "resend failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "a new code has been sent to your phone"})
}

// Toggle enables or disables two-factor sign-in for the caller.
func (h *TwoFactorHandler) Toggle(c *gin.Context) {
	var req Toggle2FARequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Enable == nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid toggle payload"))
		return
	}

	err := h.accounts.Toggle2FA(c.Request.Context(), middleware.GetAccountID(c), *req.Enable)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrPreconditionFailed, Status: http.StatusBadRequest, Message: "a verified phone number is required"},
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account not found"},
		}, http.StatusInternalServerError, "two-factor toggle failed")
		return
	}

	if *req.Enable {
		c.JSON(http.StatusOK, MessageResponse{Message: "two-factor sign-in enabled"})
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "two-factor sign-in disabled"})
}
