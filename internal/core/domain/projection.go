package domain

import "time"

// AccountProjection is the externally-visible view of an account.
// Credentials and code slots never appear here.
type AccountProjection struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	PhonePrefix       string    `json:"phone_prefix,omitempty"`
	PhoneNumber       string    `json:"phone_number,omitempty"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	Role              Role      `json:"role"`
	IsEmailVerified   bool      `json:"is_email_verified"`
	IsPhoneVerified   bool      `json:"is_phone_verified"`
	Is2FAEnabled      bool      `json:"is_2fa_enabled"`
	Is2FALoginOngoing bool      `json:"is_2fa_login_ongoing"`
	IsBlocked         bool      `json:"is_blocked"`
	CreatedAt         time.Time `json:"created_at"`
}

// Projection strips the aggregate down to its externally-visible fields.
func (a *Account) Projection() AccountProjection {
	p := AccountProjection{
		ID:                a.ID,
		Email:             a.Email,
		FirstName:         a.FirstName,
		LastName:          a.LastName,
		Role:              a.Role,
		IsEmailVerified:   a.IsEmailVerified,
		IsPhoneVerified:   a.IsPhoneVerified,
		Is2FAEnabled:      a.Is2FAEnabled,
		Is2FALoginOngoing: a.Is2FALoginOngoing,
		IsBlocked:         a.IsBlocked,
		CreatedAt:         a.CreatedAt,
	}
	if a.Phone != nil {
		p.PhonePrefix = a.Phone.Prefix
		p.PhoneNumber = a.Phone.Number
	}
	return p
}
