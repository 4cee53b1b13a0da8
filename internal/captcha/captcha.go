// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package captcha issues image challenges for the registration and login
// endpoints. The server stays stateless: the expected answer travels back
// to the client inside a signed, short-lived token instead of a session.
package captcha

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mojocn/base64Captcha"
)

const (
	// challengeLength is the number of characters in a challenge.
	challengeLength = 4

	// DefaultTTL is how long a challenge token stays valid.
	DefaultTTL = 5 * time.Minute

	// alphabet deliberately omits lowercase: the image renders uppercase
	// and verification is case-insensitive anyway.
	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	imageHeight = 60
	imageWidth  = 200
)

// Challenge is one issued CAPTCHA: the signed token binding the answer
// and the rendered image as a base64 data URI.
type Challenge struct {
	Token string
	Image string
}

// Service issues and verifies CAPTCHA challenges. Safe for concurrent use.
type Service interface {
	// Challenge generates a new challenge.
	Challenge() (Challenge, error)

	// Verify reports whether input answers the challenge bound to token.
	// Comparison is case-insensitive. Expired, malformed, or forged
	// tokens simply verify false; this method never returns an error
	// and never panics.
	Verify(token, input string) bool
}

// captchaClaims binds the expected answer into the signed token. The
// answer is stored lowercase so verification is a plain comparison.
type captchaClaims struct {
	Answer string `json:"answer"`
	jwt.RegisteredClaims
}

type service struct {
	signKey []byte
	ttl     time.Duration
	driver  *base64Captcha.DriverString
}

// NewService builds a CAPTCHA [Service] signing tokens with signKey.
// A non-positive ttl falls back to DefaultTTL.
func NewService(signKey string, ttl time.Duration) Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &service{
		signKey: []byte(signKey),
		ttl:     ttl,
		driver: base64Captcha.NewDriverString(
			imageHeight, imageWidth,
			2,  // noise dots
			base64Captcha.OptionShowHollowLine,
			challengeLength,
			alphabet,
			nil, nil, nil,
		),
	}
}

// Challenge implements [Service].
func (s *service) Challenge() (Challenge, error) {
	text, err := randomText(challengeLength)
	if err != nil {
		return Challenge{}, fmt.Errorf("generate captcha text: %w", err)
	}

	item, err := s.driver.DrawCaptcha(text)
	if err != nil {
		return Challenge{}, fmt.Errorf("draw captcha: %w", err)
	}

	now := time.Now()
	claims := captchaClaims{
		Answer: strings.ToLower(text),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signKey)
	if err != nil {
		return Challenge{}, fmt.Errorf("sign captcha token: %w", err)
	}

	return Challenge{Token: token, Image: item.EncodeB64string()}, nil
}

// Verify implements [Service]. Every failure path returns false; callers
// treat a failed CAPTCHA like any other credential failure.
func (s *service) Verify(token, input string) bool {
	if token == "" || input == "" {
		return false
	}

	claims := &captchaClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.signKey, nil
	})
	if err != nil || !parsed.Valid {
		return false
	}

	return strings.ToLower(strings.TrimSpace(input)) == claims.Answer
}

func randomText(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(buf), nil
}
