// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adminpath generates the per-process obfuscated admin console
// location. The token is created once at startup, held only in memory,
// and injected into the components that need it; nothing in the process
// can change it afterwards.
package adminpath

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// DefaultLength is the token length used in production.
const DefaultLength = 16

// alphabet is lowercase alphanumerics minus the visually ambiguous
// l, 1, o, 0. Operators read this token over the shoulder; ambiguity
// costs real support time.
const alphabet = "abcdefghijkmnpqrstuvwxyz23456789"

// State is the immutable admin path for one process lifetime. The zero
// value is unusable; construct with [New].
type State struct {
	token string
}

// New generates a State with a random token of the given length
// (DefaultLength if non-positive).
func New(length int) (State, error) {
	if length <= 0 {
		length = DefaultLength
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return State{}, fmt.Errorf("generate admin path token: %w", err)
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}

	return State{token: string(buf)}, nil
}

// Token returns the raw token.
func (s State) Token() string {
	return s.token
}

// PagePath returns the obfuscated admin console page path.
func (s State) PagePath() string {
	return "/sec/" + s.token + ".html"
}

// APIPrefix returns the obfuscated admin API mount point.
func (s State) APIPrefix() string {
	return "/api/sec/" + s.token
}

// VerifyPage reports whether path is exactly the admin console page.
func (s State) VerifyPage(path string) bool {
	return s.token != "" && path == s.PagePath()
}

// VerifyAPI reports whether path falls under the admin API prefix.
func (s State) VerifyAPI(path string) bool {
	if s.token == "" {
		return false
	}
	prefix := s.APIPrefix()
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
