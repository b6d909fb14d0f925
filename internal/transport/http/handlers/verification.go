package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/transport/http/middleware"
	"github.com/arklim/social-platform-accounts/internal/usecase"
)

// VerificationHandler confirms ownership of the email and phone contact points.
type VerificationHandler struct {
	accounts *usecase.AccountService
}

// NewVerificationHandler constructs VerificationHandler.
func NewVerificationHandler(accounts *usecase.AccountService) *VerificationHandler {
	return &VerificationHandler{accounts: accounts}
}

// Verify consumes a pending verification code for the :info contact point.
func (h *VerificationHandler) Verify(c *gin.Context) {
	slot, ok := verificationSlot(c)
	if !ok {
		return
	}

	var req CodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid verification payload"))
		return
	}

	err := h.accounts.VerifyInfo(c.Request.Context(), middleware.GetAccountID(c), slot, req.Code)
	if err != nil {
		RespondWithMappedError(c, err, verificationErrorCases(), http.StatusInternalServerError, "verification failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "verified"})
}

// Resend issues a replacement verification code for the :info contact point.
func (h *VerificationHandler) Resend(c *gin.Context) {
	slot, ok := verificationSlot(c)
	if !ok {
		return
	}

	err := h.accounts.ResendVerification(c.Request.Context(), middleware.GetAccountID(c), slot)
	if err != nil {
		RespondWithMappedError(c, err, verificationErrorCases(), http.StatusInternalServerError, "resend failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "a new code has been sent"})
}

func verificationSlot(c *gin.Context) (domain.CodeSlot, bool) {
	switch c.Param("info") {
	case "email":
		return domain.CodeSlotEmailVerification, true
	case "phone":
		return domain.CodeSlotPhoneVerification, true
	default:
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "verification target must be 'email' or 'phone'"))
		return "", false
	}
}

func verificationErrorCases() []ErrorCase {
	return []ErrorCase{
		{Err: usecase.ErrAlreadyVerified, Status: http.StatusBadRequest, Message: "already verified"},
		{Err: usecase.ErrPreconditionFailed, Status: http.StatusBadRequest, Message: "verification unavailable for this account"},
		{Err: usecase.ErrWrongCode, Status: http.StatusBadRequest, Message: "wrong code"},
		{Err: usecase.ErrCodeExpired, Status: http.StatusBadRequest, Message: "code expired, request a new one"},
		{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account not found"},
	}
}
