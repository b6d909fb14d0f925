package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// DefaultCodeLength is the number of characters in a generated one-time code.
const DefaultCodeLength = 6

// DefaultCodeCharset mixes digits, letters, and symbols for generated codes.
const DefaultCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789#$%&*+-=?"

// IssuedCode is the at-rest representation of a freshly generated code.
type IssuedCode struct {
	Hash      string
	ExpiresAt time.Time
}

// CodeCheck reports the outcome of validating a code attempt.
type CodeCheck struct {
	Valid   bool
	Expired bool
}

// GenerateCode returns a uniformly random code of the given length drawn
// from the charset. An empty charset falls back to the default.
func GenerateCode(length int, charset string) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be positive")
	}
	if charset == "" {
		charset = DefaultCodeCharset
	}

	max := big.NewInt(int64(len(charset)))
	out := make([]byte, length)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}
		out[i] = charset[idx.Int64()]
	}

	return string(out), nil
}

// IssueCode generates a code, hashes it with the reduced-work Argon2 profile,
// and stamps the expiry. The plaintext is returned exactly once; only the
// hash is meant to be persisted.
func IssueCode(length int, ttl time.Duration, now time.Time) (string, IssuedCode, error) {
	if ttl <= 0 {
		return "", IssuedCode{}, fmt.Errorf("ttl must be positive")
	}

	plaintext, err := GenerateCode(length, DefaultCodeCharset)
	if err != nil {
		return "", IssuedCode{}, err
	}

	hash, err := HashSecret(plaintext)
	if err != nil {
		return "", IssuedCode{}, fmt.Errorf("hash code: %w", err)
	}

	return plaintext, IssuedCode{Hash: hash, ExpiresAt: now.Add(ttl)}, nil
}

// VerifyCode checks an attempt against the stored hash and expiry.
// With ignoreExpiration the hash comparison still runs on an expired code,
// letting callers tell "correct but expired" (terminal) apart from "wrong
// code" (retryable). Comparison always goes through the hash-verify
// primitive, never plaintext equality.
func VerifyCode(attempt, hash string, expiresAt time.Time, now time.Time, ignoreExpiration bool) (CodeCheck, error) {
	expired := !expiresAt.After(now)
	if expired && !ignoreExpiration {
		return CodeCheck{Expired: true}, nil
	}

	valid, err := VerifySecret(attempt, hash)
	if err != nil {
		return CodeCheck{}, fmt.Errorf("verify code: %w", err)
	}

	return CodeCheck{Valid: valid, Expired: expired}, nil
}
