package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context.
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// SignUpRequest defines the account registration payload.
type SignUpRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	PhonePrefix string `json:"phone_prefix"`
	PhoneNumber string `json:"phone_number"`
}

// SignInRequest defines the payload for the sign-in endpoint.
type SignInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SessionResponse is returned whenever a session is established.
type SessionResponse struct {
	AccessToken  string                   `json:"access_token"`
	RefreshToken string                   `json:"refresh_token"`
	TokenType    string                   `json:"token_type"`
	ExpiresIn    int                      `json:"expires_in"`
	Account      domain.AccountProjection `json:"account"`
}

// TwoFactorPendingResponse is returned when sign-in requires a second factor.
// The challenge token is only accepted by the 2FA completion endpoints.
type TwoFactorPendingResponse struct {
	Message        string                   `json:"message"`
	ChallengeToken string                   `json:"challenge_token"`
	Account        domain.AccountProjection `json:"account"`
}

// RefreshRequest represents the payload to refresh an access token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshResponse contains the access token issued by the refresh endpoint.
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// CodeRequest holds a one-time code submission.
type CodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// RecoverRequest starts a password recovery. The identifier is an email or
// a phone in "prefix-number" form.
type RecoverRequest struct {
	Identifier string `json:"identifier" binding:"required"`
}

// ResetPasswordRequest completes a password recovery.
type ResetPasswordRequest struct {
	Identifier  string `json:"identifier" binding:"required"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangePasswordRequest swaps the password for an authenticated account.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// Toggle2FARequest turns two-factor sign-in on or off.
type Toggle2FARequest struct {
	Enable *bool `json:"enable" binding:"required"`
}

// BlacklistUserRequest records the address the blocked user was seen from.
type BlacklistUserRequest struct {
	IP string `json:"ip" binding:"required"`
}

// BlacklistIPRequest denies a source address at the edge.
type BlacklistIPRequest struct {
	IP string `json:"ip" binding:"required"`
}

// HealthResponse reports service status.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports per-dependency readiness.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
