package security

import (
	"fmt"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

const (
	passwordMinLength = 8
	passwordMaxLength = 16

	// PasswordWarnScore is the zxcvbn score below which a password is
	// considered weak. Strength is advisory, only length is enforced.
	PasswordWarnScore = 2
)

// PasswordRule validates a password according to a specific policy rule.
type PasswordRule interface {
	Validate(password string) error
}

// PasswordRuleFunc adapts a function to be used as a PasswordRule.
type PasswordRuleFunc func(password string) error

// Validate executes the underlying rule function.
func (f PasswordRuleFunc) Validate(password string) error {
	return f(password)
}

// PasswordValidator applies a sequence of password rules.
type PasswordValidator struct {
	rules []PasswordRule
}

// NewPasswordValidator constructs a validator with the provided rules.
func NewPasswordValidator(rules ...PasswordRule) *PasswordValidator {
	copied := make([]PasswordRule, len(rules))
	copy(copied, rules)
	return &PasswordValidator{rules: copied}
}

// Validate executes all rules and returns the first encountered violation.
func (v *PasswordValidator) Validate(password string) error {
	if v == nil {
		return fmt.Errorf("password validator not configured")
	}
	for _, rule := range v.rules {
		if err := rule.Validate(password); err != nil {
			return err
		}
	}
	return nil
}

// DefaultPasswordValidator enforces the 8-16 length bounds.
func DefaultPasswordValidator() *PasswordValidator {
	return NewPasswordValidator(
		PasswordRuleFunc(func(password string) error {
			if len(password) < passwordMinLength {
				return fmt.Errorf("password must be at least %d characters", passwordMinLength)
			}
			if len(password) > passwordMaxLength {
				return fmt.Errorf("password must be at most %d characters", passwordMaxLength)
			}
			return nil
		}),
	)
}

// PasswordStrength returns the zxcvbn score (0-4) for the candidate password.
func PasswordStrength(password string) int {
	return zxcvbn.PasswordStrength(password, nil).Score
}
