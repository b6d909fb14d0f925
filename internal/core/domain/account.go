package domain

import "time"

// Role enumerates the closed set of account roles.
type Role string

const (
	RoleEndUser    Role = "end_user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Valid reports whether the role belongs to the known enumeration.
func (r Role) Valid() bool {
	switch r {
	case RoleEndUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// AtLeast reports whether the role grants the privileges of the required role.
func (r Role) AtLeast(required Role) bool {
	rank := map[Role]int{RoleEndUser: 0, RoleAdmin: 1, RoleSuperAdmin: 2}
	return rank[r] >= rank[required]
}

// Phone is a structured phone number split into dialing prefix and subscriber number.
type Phone struct {
	Prefix string
	Number string
}

// String renders the phone in the "prefix-number" form used by recovery lookups.
func (p Phone) String() string {
	return p.Prefix + "-" + p.Number
}

// CodeSlot names one of the independent one-time code slots on an account.
type CodeSlot string

const (
	CodeSlotEmailVerification CodeSlot = "email_verification"
	CodeSlotPhoneVerification CodeSlot = "phone_verification"
	CodeSlotPasswordReset     CodeSlot = "password_reset"
	CodeSlotTwoFactor         CodeSlot = "two_factor"
)

// OneTimeCode is a hashed, time-boxed secret code occupying a slot.
// The plaintext is never stored; only the slow hash and the expiry instant.
type OneTimeCode struct {
	Hash      string
	ExpiresAt time.Time
}

// IsExpired reports whether the code has elapsed its validity window.
func (c OneTimeCode) IsExpired(at time.Time) bool {
	return !c.ExpiresAt.After(at)
}

// Account is the central aggregate owning all authentication-relevant state.
// Mutations that touch the verification/2FA flags must go through the
// methods below so the invariant chain
// is2FALoginOngoing => is2FAEnabled => isPhoneVerified => phone present
// holds after every change.
type Account struct {
	ID        string
	Email     string
	Phone     *Phone
	FirstName string
	LastName  string

	PasswordHash     string
	RefreshTokenHash *string

	Role Role

	IsEmailVerified   bool
	IsPhoneVerified   bool
	Is2FAEnabled      bool
	Is2FALoginOngoing bool
	IsBlocked         bool

	EmailVerificationCode *OneTimeCode
	PhoneVerificationCode *OneTimeCode
	PasswordResetCode     *OneTimeCode
	TwoFactorCode         *OneTimeCode

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Code returns the code currently occupying the slot, or nil when unused.
func (a *Account) Code(slot CodeSlot) *OneTimeCode {
	switch slot {
	case CodeSlotEmailVerification:
		return a.EmailVerificationCode
	case CodeSlotPhoneVerification:
		return a.PhoneVerificationCode
	case CodeSlotPasswordReset:
		return a.PasswordResetCode
	case CodeSlotTwoFactor:
		return a.TwoFactorCode
	}
	return nil
}

// SetCode overwrites the slot with a fresh code, invalidating any prior one.
func (a *Account) SetCode(slot CodeSlot, code OneTimeCode) {
	switch slot {
	case CodeSlotEmailVerification:
		a.EmailVerificationCode = &code
	case CodeSlotPhoneVerification:
		a.PhoneVerificationCode = &code
	case CodeSlotPasswordReset:
		a.PasswordResetCode = &code
	case CodeSlotTwoFactor:
		a.TwoFactorCode = &code
	}
}

// ClearCode consumes the slot.
func (a *Account) ClearCode(slot CodeSlot) {
	switch slot {
	case CodeSlotEmailVerification:
		a.EmailVerificationCode = nil
	case CodeSlotPhoneVerification:
		a.PhoneVerificationCode = nil
	case CodeSlotPasswordReset:
		a.PasswordResetCode = nil
	case CodeSlotTwoFactor:
		a.TwoFactorCode = nil
	}
}

// SetPhone replaces the phone number. The new number starts unverified,
// which in turn disables 2FA until it is verified again.
func (a *Account) SetPhone(phone *Phone) {
	a.Phone = phone
	a.IsPhoneVerified = false
	a.normalize()
}

// MarkEmailVerified flips the email verification flag.
func (a *Account) MarkEmailVerified() {
	a.IsEmailVerified = true
	a.EmailVerificationCode = nil
}

// MarkPhoneVerified flips the phone verification flag.
// It is a no-op when no phone is set.
func (a *Account) MarkPhoneVerified() {
	if a.Phone == nil {
		return
	}
	a.IsPhoneVerified = true
	a.PhoneVerificationCode = nil
}

// Enable2FA turns on two-factor authentication. It returns false, leaving
// the account untouched, when the phone precondition is not met.
func (a *Account) Enable2FA() bool {
	if a.Phone == nil || !a.IsPhoneVerified {
		return false
	}
	a.Is2FAEnabled = true
	return true
}

// Disable2FA turns off two-factor authentication and any pending login state.
func (a *Account) Disable2FA() {
	a.Is2FAEnabled = false
	a.Is2FALoginOngoing = false
	a.TwoFactorCode = nil
}

// BeginTwoFactorLogin enters the 2FA-pending sub-state. It returns false
// when 2FA is not effectively enabled.
func (a *Account) BeginTwoFactorLogin() bool {
	a.normalize()
	if !a.Is2FAEnabled {
		return false
	}
	a.Is2FALoginOngoing = true
	return true
}

// EndTwoFactorLogin leaves the 2FA-pending sub-state and consumes the code.
func (a *Account) EndTwoFactorLogin() {
	a.Is2FALoginOngoing = false
	a.TwoFactorCode = nil
}

// SetRefreshTokenHash records the hash of a freshly issued refresh token.
func (a *Account) SetRefreshTokenHash(hash string) {
	a.RefreshTokenHash = &hash
}

// ClearRefreshToken revokes the active session so rotation fails closed.
func (a *Account) ClearRefreshToken() {
	a.RefreshTokenHash = nil
}

// normalize coerces the flag chain back into a consistent state.
func (a *Account) normalize() {
	if a.Phone == nil {
		a.IsPhoneVerified = false
	}
	if !a.IsPhoneVerified {
		a.Is2FAEnabled = false
	}
	if !a.Is2FAEnabled {
		a.Is2FALoginOngoing = false
	}
}
