package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/core/port"
	"github.com/arklim/social-platform-accounts/internal/infra/security"
)

const testPassword = "tr0ub4&Xk9"

func TestSignUpOpensSessionAndDispatchesCode(t *testing.T) {
	f := newAccountServiceFixture(t)

	result, err := f.service.SignUp(context.Background(), SignUpInput{
		Email:     "New.User@Example.com",
		Password:  testPassword,
		FirstName: "Dana",
		LastName:  "Keller",
	})
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}

	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatal("expected a full token pair")
	}
	if result.Account.Email != "new.user@example.com" {
		t.Fatalf("email not normalized: %s", result.Account.Email)
	}

	stored := f.repo.stored(t, result.Account.ID)
	if stored.PasswordHash == testPassword {
		t.Fatal("password stored in plaintext")
	}
	if stored.RefreshTokenHash == nil {
		t.Fatal("refresh hash not persisted")
	}
	if ok, _ := security.VerifySecret(result.RefreshToken, *stored.RefreshTokenHash); !ok {
		t.Fatal("stored hash does not match issued refresh token")
	}
	if stored.EmailVerificationCode == nil {
		t.Fatal("email verification code not issued")
	}
	if stored.Role != domain.RoleEndUser {
		t.Fatalf("unexpected role %s", stored.Role)
	}

	notification := f.notifier.waitForCode(t)
	if notification.Channel != port.ChannelEmail || notification.Recipient != "new.user@example.com" {
		t.Fatalf("unexpected notification %+v", notification)
	}
	if check, _ := security.VerifyCode(notification.Code, stored.EmailVerificationCode.Hash, stored.EmailVerificationCode.ExpiresAt, time.Now().UTC(), false); !check.Valid {
		t.Fatal("dispatched code does not match stored hash")
	}
}

func TestSignUpWithPhoneIssuesBothCodes(t *testing.T) {
	f := newAccountServiceFixture(t)

	result, err := f.service.SignUp(context.Background(), SignUpInput{
		Email:     "user@example.com",
		Password:  testPassword,
		FirstName: "Dana",
		LastName:  "Keller",
		Phone:     &domain.Phone{Prefix: "44", Number: "7700900123"},
	})
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}

	stored := f.repo.stored(t, result.Account.ID)
	if stored.PhoneVerificationCode == nil {
		t.Fatal("phone verification code not issued")
	}

	channels := map[port.NotificationChannel]bool{}
	channels[f.notifier.waitForCode(t).Channel] = true
	channels[f.notifier.waitForCode(t).Channel] = true
	if !channels[port.ChannelEmail] || !channels[port.ChannelSMS] {
		t.Fatalf("expected one email and one sms notification, got %v", channels)
	}
}

func TestSignUpRejectsDuplicateEmail(t *testing.T) {
	existing := seedAccount(t, testPassword, nil)
	f := newAccountServiceFixture(t, existing)

	_, err := f.service.SignUp(context.Background(), SignUpInput{
		Email:     existing.Email,
		Password:  testPassword,
		FirstName: "Dana",
		LastName:  "Keller",
	})
	if !errors.Is(err, ErrEmailInUse) {
		t.Fatalf("expected ErrEmailInUse, got %v", err)
	}
}

func TestSignUpRejectsShortPassword(t *testing.T) {
	f := newAccountServiceFixture(t)

	_, err := f.service.SignUp(context.Background(), SignUpInput{
		Email:     "user@example.com",
		Password:  "short1",
		FirstName: "Dana",
		LastName:  "Keller",
	})
	if !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}

func TestSignUpAcceptsLowEntropyPassword(t *testing.T) {
	f := newAccountServiceFixture(t)

	result, err := f.service.SignUp(context.Background(), SignUpInput{
		Email:     "a@b.com",
		Password:  "test1234",
		FirstName: "Dana",
		LastName:  "Keller",
	})
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatal("expected a full token pair")
	}
}

func TestSignInSuccess(t *testing.T) {
	account := seedAccount(t, testPassword, nil)
	f := newAccountServiceFixture(t, account)

	result, err := f.service.SignIn(context.Background(), account.Email, testPassword, "203.0.113.7")
	if err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}
	if result.TwoFactorPending {
		t.Fatal("unexpected 2FA challenge")
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatal("expected a full token pair")
	}

	stored := f.repo.stored(t, account.ID)
	if stored.RefreshTokenHash == nil {
		t.Fatal("refresh hash not persisted")
	}
}

func TestSignInWrongPasswordLeavesStateUntouched(t *testing.T) {
	account := seedAccount(t, testPassword, func(a *domain.Account) {
		hash := "existing-session-hash"
		a.RefreshTokenHash = &hash
	})
	f := newAccountServiceFixture(t, account)

	_, err := f.service.SignIn(context.Background(), account.Email, "wrong-password", "203.0.113.7")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	stored := f.repo.stored(t, account.ID)
	if stored.RefreshTokenHash == nil || *stored.RefreshTokenHash != "existing-session-hash" {
		t.Fatal("failed attempt must not disturb the active session")
	}
	if f.repo.saveCount() != 0 {
		t.Fatal("failed attempt must not write the account")
	}
}

func TestSignInUnknownEmailIsIndistinguishable(t *testing.T) {
	f := newAccountServiceFixture(t)

	_, err := f.service.SignIn(context.Background(), "nobody@example.com", testPassword, "203.0.113.7")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSignInBlockedAccount(t *testing.T) {
	account := seedAccount(t, testPassword, func(a *domain.Account) { a.IsBlocked = true })
	f := newAccountServiceFixture(t, account)

	_, err := f.service.SignIn(context.Background(), account.Email, testPassword, "203.0.113.7")
	if !errors.Is(err, ErrBlocked) {
		t.Fatalf("expected ErrBlocked, got %v", err)
	}
}

func TestSignInWithTwoFactorReturnsChallenge(t *testing.T) {
	account := seedAccount(t, testPassword, func(a *domain.Account) {
		a.Phone = &domain.Phone{Prefix: "44", Number: "7700900123"}
		a.IsPhoneVerified = true
		a.Is2FAEnabled = true
	})
	f := newAccountServiceFixture(t, account)

	result, err := f.service.SignIn(context.Background(), account.Email, testPassword, "203.0.113.7")
	if err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}

	if !result.TwoFactorPending {
		t.Fatal("expected a 2FA challenge")
	}
	if result.AccessToken != "" || result.RefreshToken != "" {
		t.Fatal("challenge must not include session tokens")
	}

	claims, err := f.tokens.ParseAccessToken(result.ChallengeToken)
	if err != nil {
		t.Fatalf("challenge token does not parse: %v", err)
	}
	if !claims.TwoFactorPending {
		t.Fatal("challenge token missing the pending flag")
	}

	stored := f.repo.stored(t, account.ID)
	if !stored.Is2FALoginOngoing {
		t.Fatal("account not parked in the pending sub-state")
	}
	if stored.TwoFactorCode == nil {
		t.Fatal("two-factor code not issued")
	}

	notification := f.notifier.waitForCode(t)
	if notification.Channel != port.ChannelSMS {
		t.Fatalf("expected sms delivery, got %s", notification.Channel)
	}
}

func TestRepeatedSignInFailuresBlacklistAccount(t *testing.T) {
	account := seedAccount(t, testPassword, nil)
	f := newAccountServiceFixture(t, account)

	for i := 0; i < 3; i++ {
		if _, err := f.service.SignIn(context.Background(), account.Email, "wrong-password", "203.0.113.7"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	}

	select {
	case userID := <-f.blacklist.calls:
		if userID != account.ID {
			t.Fatalf("blacklisted wrong user %s", userID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected abuse threshold to trigger blacklisting")
	}
}

func TestSignOutIsIdempotent(t *testing.T) {
	account := seedAccount(t, testPassword, func(a *domain.Account) {
		hash := "session-hash"
		a.RefreshTokenHash = &hash
	})
	f := newAccountServiceFixture(t, account)

	if err := f.service.SignOut(context.Background(), account.ID); err != nil {
		t.Fatalf("SignOut returned error: %v", err)
	}
	if f.repo.stored(t, account.ID).RefreshTokenHash != nil {
		t.Fatal("refresh hash not cleared")
	}

	saves := f.repo.saveCount()
	if err := f.service.SignOut(context.Background(), account.ID); err != nil {
		t.Fatalf("second SignOut returned error: %v", err)
	}
	if f.repo.saveCount() != saves {
		t.Fatal("second sign-out must not write")
	}
}

func TestSignOutAbandonsPendingTwoFactorSignIn(t *testing.T) {
	account, _ := seedPendingAccount(t, 6*time.Hour, time.Now().UTC())
	f := newAccountServiceFixture(t, account)

	if err := f.service.SignOut(context.Background(), account.ID); err != nil {
		t.Fatalf("SignOut returned error: %v", err)
	}

	stored := f.repo.stored(t, account.ID)
	if stored.Is2FALoginOngoing {
		t.Fatal("pending sub-state not cleared")
	}
	if stored.TwoFactorCode != nil {
		t.Fatal("two-factor code slot not cleared")
	}
	if stored.RefreshTokenHash != nil {
		t.Fatal("refresh hash not cleared")
	}
}

func TestRefreshAccessToken(t *testing.T) {
	account := seedAccount(t, testPassword, nil)
	f := newAccountServiceFixture(t, account)

	result, err := f.service.SignIn(context.Background(), account.Email, testPassword, "203.0.113.7")
	if err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}

	access, err := f.service.RefreshAccessToken(context.Background(), result.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshAccessToken returned error: %v", err)
	}

	claims, err := f.tokens.ParseAccessToken(access)
	if err != nil {
		t.Fatalf("refreshed token does not parse: %v", err)
	}
	if claims.UserID != account.ID {
		t.Fatalf("token bound to wrong account %s", claims.UserID)
	}
}

func TestRefreshAccessTokenFailureModes(t *testing.T) {
	account := seedAccount(t, testPassword, nil)
	f := newAccountServiceFixture(t, account)

	result, err := f.service.SignIn(context.Background(), account.Email, testPassword, "203.0.113.7")
	if err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}

	if _, err := f.service.RefreshAccessToken(context.Background(), "garbage"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for garbage, got %v", err)
	}

	// A structurally valid token that does not match the stored hash is a
	// replay of a stale session.
	stale, err := f.tokens.IssueRefreshToken(account.ID)
	if err != nil {
		t.Fatalf("issue stale token: %v", err)
	}
	if _, err := f.service.RefreshAccessToken(context.Background(), stale); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for stale token, got %v", err)
	}

	if err := f.service.SignOut(context.Background(), account.ID); err != nil {
		t.Fatalf("SignOut returned error: %v", err)
	}
	if _, err := f.service.RefreshAccessToken(context.Background(), result.RefreshToken); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated after sign-out, got %v", err)
	}
}

func TestRefreshWithMismatchedTokenRevokesSession(t *testing.T) {
	account := seedAccount(t, testPassword, nil)
	f := newAccountServiceFixture(t, account)

	if _, err := f.service.SignIn(context.Background(), account.Email, testPassword, "203.0.113.7"); err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}
	if f.repo.stored(t, account.ID).RefreshTokenHash == nil {
		t.Fatal("expected a live session before the replay")
	}

	stale, err := f.tokens.IssueRefreshToken(account.ID)
	if err != nil {
		t.Fatalf("issue stale token: %v", err)
	}
	if _, err := f.service.RefreshAccessToken(context.Background(), stale); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	if f.repo.stored(t, account.ID).RefreshTokenHash != nil {
		t.Fatal("mismatched refresh must revoke the stored session")
	}
}

func TestVerifyInfoEmail(t *testing.T) {
	now := time.Now().UTC()
	plaintext, issued, err := security.IssueCode(6, 48*time.Hour, now)
	if err != nil {
		t.Fatalf("issue code: %v", err)
	}

	account := seedAccount(t, testPassword, func(a *domain.Account) {
		a.SetCode(domain.CodeSlotEmailVerification, domain.OneTimeCode{Hash: issued.Hash, ExpiresAt: issued.ExpiresAt})
	})
	f := newAccountServiceFixture(t, account)

	if err := f.service.VerifyInfo(context.Background(), account.ID, domain.CodeSlotEmailVerification, "WRONG1"); !errors.Is(err, ErrWrongCode) {
		t.Fatalf("expected ErrWrongCode, got %v", err)
	}

	// The wrong attempt must not consume the slot.
	if err := f.service.VerifyInfo(context.Background(), account.ID, domain.CodeSlotEmailVerification, plaintext); err != nil {
		t.Fatalf("VerifyInfo returned error: %v", err)
	}

	stored := f.repo.stored(t, account.ID)
	if !stored.IsEmailVerified {
		t.Fatal("email not marked verified")
	}
	if stored.EmailVerificationCode != nil {
		t.Fatal("code slot not consumed")
	}

	if err := f.service.VerifyInfo(context.Background(), account.ID, domain.CodeSlotEmailVerification, plaintext); !errors.Is(err, ErrAlreadyVerified) {
		t.Fatalf("expected ErrAlreadyVerified, got %v", err)
	}
}

func TestVerifyInfoExpiredCodeIsTerminal(t *testing.T) {
	now := time.Now().UTC()
	plaintext, issued, err := security.IssueCode(6, time.Minute, now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("issue code: %v", err)
	}

	account := seedAccount(t, testPassword, func(a *domain.Account) {
		a.SetCode(domain.CodeSlotEmailVerification, domain.OneTimeCode{Hash: issued.Hash, ExpiresAt: issued.ExpiresAt})
	})
	f := newAccountServiceFixture(t, account)

	if err := f.service.VerifyInfo(context.Background(), account.ID, domain.CodeSlotEmailVerification, plaintext); !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("expected ErrCodeExpired, got %v", err)
	}

	stored := f.repo.stored(t, account.ID)
	if stored.EmailVerificationCode != nil {
		t.Fatal("expired slot must be cleared")
	}
	if stored.IsEmailVerified {
		t.Fatal("expired code must not verify")
	}
}

func TestVerifyInfoPhoneRequiresPhone(t *testing.T) {
	account := seedAccount(t, testPassword, nil)
	f := newAccountServiceFixture(t, account)

	err := f.service.VerifyInfo(context.Background(), account.ID, domain.CodeSlotPhoneVerification, "ABC123")
	if !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("expected ErrPreconditionFailed, got %v", err)
	}
}

func TestResendVerificationReplacesCode(t *testing.T) {
	account := seedAccount(t, testPassword, func(a *domain.Account) {
		a.SetCode(domain.CodeSlotEmailVerification, domain.OneTimeCode{Hash: "old", ExpiresAt: time.Now().Add(time.Hour)})
	})
	f := newAccountServiceFixture(t, account)

	if err := f.service.ResendVerification(context.Background(), account.ID, domain.CodeSlotEmailVerification); err != nil {
		t.Fatalf("ResendVerification returned error: %v", err)
	}

	stored := f.repo.stored(t, account.ID)
	if stored.EmailVerificationCode == nil || stored.EmailVerificationCode.Hash == "old" {
		t.Fatal("code slot not replaced")
	}

	notification := f.notifier.waitForCode(t)
	if notification.Channel != port.ChannelEmail {
		t.Fatalf("expected email delivery, got %s", notification.Channel)
	}
}

func TestResendVerificationGuards(t *testing.T) {
	account := seedAccount(t, testPassword, func(a *domain.Account) { a.IsEmailVerified = true })
	f := newAccountServiceFixture(t, account)

	if err := f.service.ResendVerification(context.Background(), account.ID, domain.CodeSlotEmailVerification); !errors.Is(err, ErrAlreadyVerified) {
		t.Fatalf("expected ErrAlreadyVerified, got %v", err)
	}
	if err := f.service.ResendVerification(context.Background(), account.ID, domain.CodeSlotPhoneVerification); !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("expected ErrPreconditionFailed, got %v", err)
	}
	if err := f.service.ResendVerification(context.Background(), account.ID, domain.CodeSlotTwoFactor); !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("expected ErrPreconditionFailed for unknown target, got %v", err)
	}
}

func TestRecoverAccountByEmail(t *testing.T) {
	account := seedAccount(t, testPassword, nil)
	f := newAccountServiceFixture(t, account)

	if err := f.service.RecoverAccount(context.Background(), account.Email); err != nil {
		t.Fatalf("RecoverAccount returned error: %v", err)
	}

	stored := f.repo.stored(t, account.ID)
	if stored.PasswordResetCode == nil {
		t.Fatal("reset code not issued")
	}

	notification := f.notifier.waitForCode(t)
	if notification.Channel != port.ChannelEmail {
		t.Fatalf("expected email delivery, got %s", notification.Channel)
	}
}

func TestRecoverAccountByPhoneIdentifier(t *testing.T) {
	account := seedAccount(t, testPassword, func(a *domain.Account) {
		a.Phone = &domain.Phone{Prefix: "44", Number: "7700900123"}
		a.IsPhoneVerified = true
	})
	f := newAccountServiceFixture(t, account)

	if err := f.service.RecoverAccount(context.Background(), "44-7700900123"); err != nil {
		t.Fatalf("RecoverAccount returned error: %v", err)
	}

	notification := f.notifier.waitForCode(t)
	if notification.Channel != port.ChannelSMS || notification.Recipient != "44-7700900123" {
		t.Fatalf("unexpected notification %+v", notification)
	}
}

func TestRecoverAccountUnknownIdentifier(t *testing.T) {
	f := newAccountServiceFixture(t)

	if err := f.service.RecoverAccount(context.Background(), "nobody@example.com"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if err := f.service.RecoverAccount(context.Background(), "not-an-identifier-at-all "); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestResetPasswordFlow(t *testing.T) {
	now := time.Now().UTC()
	plaintext, issued, err := security.IssueCode(6, 48*time.Hour, now)
	if err != nil {
		t.Fatalf("issue code: %v", err)
	}

	account := seedAccount(t, testPassword, func(a *domain.Account) {
		a.SetCode(domain.CodeSlotPasswordReset, domain.OneTimeCode{Hash: issued.Hash, ExpiresAt: issued.ExpiresAt})
	})
	f := newAccountServiceFixture(t, account)

	if _, err := f.service.ResetPassword(context.Background(), account.Email, "WRONG1", "n3w&S3cret!"); !errors.Is(err, ErrWrongCode) {
		t.Fatalf("expected ErrWrongCode, got %v", err)
	}

	result, err := f.service.ResetPassword(context.Background(), account.Email, plaintext, "n3w&S3cret!")
	if err != nil {
		t.Fatalf("ResetPassword returned error: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatal("reset must open a fresh session")
	}

	stored := f.repo.stored(t, account.ID)
	if stored.PasswordResetCode != nil {
		t.Fatal("reset slot not consumed")
	}
	if ok, _ := security.VerifyPassword("n3w&S3cret!", stored.PasswordHash); !ok {
		t.Fatal("new password not installed")
	}
	if ok, _ := security.VerifyPassword(testPassword, stored.PasswordHash); ok {
		t.Fatal("old password still verifies")
	}

	// The consumed code can not be replayed.
	if _, err := f.service.ResetPassword(context.Background(), account.Email, plaintext, "an0ther&S3cret"); !errors.Is(err, ErrNoResetRequested) {
		t.Fatalf("expected ErrNoResetRequested, got %v", err)
	}
}

func TestResetPasswordWithoutRecovery(t *testing.T) {
	account := seedAccount(t, testPassword, nil)
	f := newAccountServiceFixture(t, account)

	if _, err := f.service.ResetPassword(context.Background(), account.Email, "ABC123", "n3w&S3cret!"); !errors.Is(err, ErrNoResetRequested) {
		t.Fatalf("expected ErrNoResetRequested, got %v", err)
	}
}

func TestResetPasswordExpiredCodeIsTerminal(t *testing.T) {
	plaintext, issued, err := security.IssueCode(6, time.Minute, time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatalf("issue code: %v", err)
	}

	account := seedAccount(t, testPassword, func(a *domain.Account) {
		a.SetCode(domain.CodeSlotPasswordReset, domain.OneTimeCode{Hash: issued.Hash, ExpiresAt: issued.ExpiresAt})
	})
	f := newAccountServiceFixture(t, account)

	if _, err := f.service.ResetPassword(context.Background(), account.Email, plaintext, "n3w&S3cret!"); !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("expected ErrCodeExpired, got %v", err)
	}
	if f.repo.stored(t, account.ID).PasswordResetCode != nil {
		t.Fatal("expired slot must be cleared")
	}
}

func TestChangePassword(t *testing.T) {
	account := seedAccount(t, testPassword, func(a *domain.Account) {
		hash := "session-hash"
		a.RefreshTokenHash = &hash
	})
	f := newAccountServiceFixture(t, account)

	if err := f.service.ChangePassword(context.Background(), account.ID, "wrong-password", "n3w&S3cret!"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	if err := f.service.ChangePassword(context.Background(), account.ID, testPassword, "n3w&S3cret!"); err != nil {
		t.Fatalf("ChangePassword returned error: %v", err)
	}

	stored := f.repo.stored(t, account.ID)
	if ok, _ := security.VerifyPassword("n3w&S3cret!", stored.PasswordHash); !ok {
		t.Fatal("new password not installed")
	}
	if stored.RefreshTokenHash != nil {
		t.Fatal("active session must be revoked")
	}
}

func TestToggle2FA(t *testing.T) {
	account := seedAccount(t, testPassword, nil)
	f := newAccountServiceFixture(t, account)

	if err := f.service.Toggle2FA(context.Background(), account.ID, true); !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("expected ErrPreconditionFailed without verified phone, got %v", err)
	}

	verified := seedAccount(t, testPassword, func(a *domain.Account) {
		a.ID = "acct-2"
		a.Email = "verified@example.com"
		a.Phone = &domain.Phone{Prefix: "44", Number: "7700900123"}
		a.IsPhoneVerified = true
	})
	f = newAccountServiceFixture(t, verified)

	if err := f.service.Toggle2FA(context.Background(), verified.ID, true); err != nil {
		t.Fatalf("Toggle2FA returned error: %v", err)
	}
	if !f.repo.stored(t, verified.ID).Is2FAEnabled {
		t.Fatal("2FA not enabled")
	}

	if err := f.service.Toggle2FA(context.Background(), verified.ID, false); err != nil {
		t.Fatalf("Toggle2FA returned error: %v", err)
	}
	if f.repo.stored(t, verified.ID).Is2FAEnabled {
		t.Fatal("2FA not disabled")
	}
}
