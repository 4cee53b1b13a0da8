// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package totp implements RFC 6238 time-based one-time passwords:
// secret generation, code validation with clock-drift tolerance,
// enrollment URIs with QR rendering, and one-time backup codes.
package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base32"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
)

const (
	// Digits is the code length. Authenticator apps assume 6.
	Digits = 6

	// Period is the code validity window in seconds (RFC 6238 standard).
	Period = 30

	// DefaultWindow is how many adjacent periods on each side of "now"
	// a code is accepted for. 1 gives a total tolerance of 90 seconds.
	DefaultWindow = 1

	secretBytes = 20 // 160-bit secret, RFC 4226 recommendation
)

var (
	secretRegex = regexp.MustCompile(`^[A-Z2-7]+$`)
	codeRegex   = regexp.MustCompile(`^\d{6}$`)

	b32 = base32.StdEncoding.WithPadding(base32.NoPadding)
)

// GenerateSecret returns a fresh base32-encoded shared secret. The 20
// random bytes encode to exactly 32 characters without padding.
func GenerateSecret() (string, error) {
	secret := make([]byte, secretBytes)
	if _, err := rand.Read(secret); err != nil {
		return "", fmt.Errorf("generate totp secret: %w", err)
	}
	return b32.EncodeToString(secret), nil
}

// ValidateCode reports whether code is valid for secret at the current
// time, accepting the window adjacent periods on each side to tolerate
// clock drift. A malformed secret or code yields an error rather than a
// silent false so callers can distinguish configuration problems from a
// simple wrong code.
func ValidateCode(secret, code string, window int) (bool, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return false, err
	}

	code = strings.TrimSpace(code)
	if !codeRegex.MatchString(code) {
		return false, ErrInvalidCode
	}

	counter := time.Now().Unix() / Period
	for i := -window; i <= window; i++ {
		if formatCode(hotp(key, counter+int64(i))) == code {
			return true, nil
		}
	}

	return false, nil
}

// GenerateCode returns the code for the current 30-second window.
func GenerateCode(secret string) (string, error) {
	return CodeAt(secret, time.Now())
}

// CodeAt returns the code for the window containing t. Used by tests and
// by rotation flows that need a code for a candidate secret.
func CodeAt(secret string, t time.Time) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}
	return formatCode(hotp(key, t.Unix()/Period)), nil
}

func decodeSecret(secret string) ([]byte, error) {
	secret = strings.TrimSpace(strings.ToUpper(secret))
	if !secretRegex.MatchString(secret) {
		return nil, ErrInvalidSecret
	}
	key, err := b32.DecodeString(secret)
	if err != nil {
		return nil, ErrInvalidSecret
	}
	return key, nil
}

func formatCode(code int) string {
	return fmt.Sprintf("%06d", code)
}

// hotp implements the RFC 4226 HMAC-based one-time password algorithm:
// HMAC-SHA1 over the big-endian counter, then dynamic truncation to a
// 31-bit value reduced to Digits decimal digits.
func hotp(key []byte, counter int64) int {
	counterBytes := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		counterBytes[i] = byte(counter & 0xff)
		counter >>= 8
	}

	mac := hmac.New(sha1.New, key)
	mac.Write(counterBytes)
	sum := mac.Sum(nil)

	// Dynamic truncation: low 4 bits of the last byte pick the offset.
	offset := sum[len(sum)-1] & 0x0f
	code := (int(sum[offset]&0x7f) << 24) |
		(int(sum[offset+1]) << 16) |
		(int(sum[offset+2]) << 8) |
		int(sum[offset+3])

	return code % int(math.Pow10(Digits))
}
