package security

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateCodeLengthAndCharset(t *testing.T) {
	code, err := GenerateCode(DefaultCodeLength, DefaultCodeCharset)
	if err != nil {
		t.Fatalf("GenerateCode returned error: %v", err)
	}
	if len(code) != DefaultCodeLength {
		t.Fatalf("expected %d characters, got %d", DefaultCodeLength, len(code))
	}
	for _, r := range code {
		if !strings.ContainsRune(DefaultCodeCharset, r) {
			t.Fatalf("character %q not in charset", r)
		}
	}
}

func TestGenerateCodeRejectsNonPositiveLength(t *testing.T) {
	if _, err := GenerateCode(0, DefaultCodeCharset); err == nil {
		t.Fatal("expected error for zero length")
	}
}

func TestIssueAndVerifyCode(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	plaintext, issued, err := IssueCode(DefaultCodeLength, 48*time.Hour, now)
	if err != nil {
		t.Fatalf("IssueCode returned error: %v", err)
	}
	if issued.Hash == plaintext {
		t.Fatal("hash must not equal plaintext")
	}
	if !issued.ExpiresAt.Equal(now.Add(48 * time.Hour)) {
		t.Fatalf("unexpected expiry %v", issued.ExpiresAt)
	}

	check, err := VerifyCode(plaintext, issued.Hash, issued.ExpiresAt, now.Add(time.Hour), false)
	if err != nil {
		t.Fatalf("VerifyCode returned error: %v", err)
	}
	if !check.Valid || check.Expired {
		t.Fatalf("expected valid unexpired code, got %+v", check)
	}

	check, err = VerifyCode("nope42", issued.Hash, issued.ExpiresAt, now.Add(time.Hour), false)
	if err != nil {
		t.Fatalf("VerifyCode returned error: %v", err)
	}
	if check.Valid {
		t.Fatal("expected wrong code to be invalid")
	}
}

func TestVerifyCodeExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	plaintext, issued, err := IssueCode(DefaultCodeLength, time.Minute, now)
	if err != nil {
		t.Fatalf("IssueCode returned error: %v", err)
	}

	late := now.Add(2 * time.Minute)

	check, err := VerifyCode(plaintext, issued.Hash, issued.ExpiresAt, late, false)
	if err != nil {
		t.Fatalf("VerifyCode returned error: %v", err)
	}
	if !check.Expired || check.Valid {
		t.Fatalf("expected expired short-circuit, got %+v", check)
	}

	// With ignoreExpiration the hash check still runs, so a correct but
	// expired code is distinguishable from a wrong one.
	check, err = VerifyCode(plaintext, issued.Hash, issued.ExpiresAt, late, true)
	if err != nil {
		t.Fatalf("VerifyCode returned error: %v", err)
	}
	if !check.Valid || !check.Expired {
		t.Fatalf("expected valid+expired, got %+v", check)
	}

	check, err = VerifyCode("nope42", issued.Hash, issued.ExpiresAt, late, true)
	if err != nil {
		t.Fatalf("VerifyCode returned error: %v", err)
	}
	if check.Valid {
		t.Fatalf("expected wrong expired code to stay invalid, got %+v", check)
	}
}

func TestIssueCodeRejectsNonPositiveTTL(t *testing.T) {
	if _, _, err := IssueCode(DefaultCodeLength, 0, time.Now()); err == nil {
		t.Fatal("expected error for zero ttl")
	}
}
