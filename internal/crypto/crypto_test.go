// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	salt := []byte("0123456789abcdef")

	k1 := DeriveKey("master-secret", salt)
	k2 := DeriveKey("master-secret", salt)

	if len(k1) != 32 {
		t.Fatalf("derived key length = %d, want 32", len(k1))
	}
	if !bytes.Equal(k1, k2) {
		t.Fatalf("same secret and salt must derive the same key")
	}
}

func TestDeriveKey_DifferentInputsDifferentKeys(t *testing.T) {
	salt := []byte("0123456789abcdef")

	base := DeriveKey("master-secret", salt)
	otherSecret := DeriveKey("another-secret", salt)
	otherSalt := DeriveKey("master-secret", []byte("fedcba9876543210"))

	if bytes.Equal(base, otherSecret) {
		t.Fatalf("different secrets must not derive the same key")
	}
	if bytes.Equal(base, otherSalt) {
		t.Fatalf("different salts must not derive the same key")
	}
}

func TestGenerateSalt_LengthAndRandomness(t *testing.T) {
	s1, err := GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt error: %v", err)
	}
	s2, err := GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt error: %v", err)
	}

	if len(s1) != 16 {
		t.Fatalf("salt length = %d, want 16", len(s1))
	}
	if bytes.Equal(s1, s2) {
		t.Fatalf("expected salts to differ, but they are equal")
	}
}

func TestNewCipher_RejectsBadKeySize(t *testing.T) {
	if _, err := NewCipher(make([]byte, 16)); !errors.Is(err, ErrInvalidKeySize) {
		t.Fatalf("expected ErrInvalidKeySize, got %v", err)
	}
}

func TestCipher_RoundTrip(t *testing.T) {
	c, err := NewCipher(DeriveKey("master-secret", []byte("0123456789abcdef")))
	if err != nil {
		t.Fatalf("NewCipher error: %v", err)
	}

	plaintext := "sk-proj-abcdef1234567890"
	encrypted, err := c.EncryptString(plaintext)
	if err != nil {
		t.Fatalf("EncryptString error: %v", err)
	}
	if encrypted == plaintext {
		t.Fatalf("ciphertext must not equal plaintext")
	}

	decrypted, err := c.DecryptString(encrypted)
	if err != nil {
		t.Fatalf("DecryptString error: %v", err)
	}
	if decrypted != plaintext {
		t.Fatalf("round trip = %q, want %q", decrypted, plaintext)
	}
}

func TestCipher_SamePlaintextDifferentCiphertexts(t *testing.T) {
	c, err := NewCipher(DeriveKey("master-secret", []byte("0123456789abcdef")))
	if err != nil {
		t.Fatalf("NewCipher error: %v", err)
	}

	e1, err := c.EncryptString("sk-same-key")
	if err != nil {
		t.Fatalf("EncryptString error: %v", err)
	}
	e2, err := c.EncryptString("sk-same-key")
	if err != nil {
		t.Fatalf("EncryptString error: %v", err)
	}

	if e1 == e2 {
		t.Fatalf("two encryptions of the same plaintext must differ")
	}
}

func TestCipher_TamperedCiphertextFails(t *testing.T) {
	c, err := NewCipher(DeriveKey("master-secret", []byte("0123456789abcdef")))
	if err != nil {
		t.Fatalf("NewCipher error: %v", err)
	}

	encrypted, err := c.EncryptString("sk-proj-tamperme")
	if err != nil {
		t.Fatalf("EncryptString error: %v", err)
	}

	// Flip the last character of the base64 blob.
	last := encrypted[len(encrypted)-1]
	flip := "A"
	if last == 'A' {
		flip = "B"
	}
	tampered := encrypted[:len(encrypted)-1] + flip

	if _, err := c.DecryptString(tampered); !errors.Is(err, ErrDecryptionFailed) {
		t.Fatalf("expected ErrDecryptionFailed, got %v", err)
	}
}

func TestCipher_WrongKeyFails(t *testing.T) {
	salt := []byte("0123456789abcdef")
	c1, err := NewCipher(DeriveKey("master-secret", salt))
	if err != nil {
		t.Fatalf("NewCipher error: %v", err)
	}
	c2, err := NewCipher(DeriveKey("another-secret", salt))
	if err != nil {
		t.Fatalf("NewCipher error: %v", err)
	}

	encrypted, err := c1.EncryptString("sk-proj-wrongkey")
	if err != nil {
		t.Fatalf("EncryptString error: %v", err)
	}

	if _, err := c2.DecryptString(encrypted); !errors.Is(err, ErrDecryptionFailed) {
		t.Fatalf("expected ErrDecryptionFailed, got %v", err)
	}
}

func TestCipher_MalformedBlobsFail(t *testing.T) {
	c, err := NewCipher(DeriveKey("master-secret", []byte("0123456789abcdef")))
	if err != nil {
		t.Fatalf("NewCipher error: %v", err)
	}

	for _, blob := range []string{"", "not base64!!!", "QUJD"} { // "ABC" decodes shorter than a nonce
		if _, err := c.DecryptString(blob); !errors.Is(err, ErrDecryptionFailed) {
			t.Fatalf("blob %q: expected ErrDecryptionFailed, got %v", blob, err)
		}
	}
}

func TestPreview(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{name: "typical key", key: "sk-proj-abcdef1234567890", want: "sk-p...7890"},
		{name: "nine chars", key: "123456789", want: "1234...6789"},
		{name: "exactly eight", key: "12345678", want: "********"},
		{name: "short", key: "abc", want: "***"},
		{name: "empty", key: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Preview(tt.key); got != tt.want {
				t.Fatalf("Preview(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestPreview_NotReversible(t *testing.T) {
	key := "sk-proj-abcdef1234567890"
	preview := Preview(key)
	if strings.Contains(preview, key[4:len(key)-4]) {
		t.Fatalf("preview %q leaks the key middle", preview)
	}
	if len(preview) >= len(key) {
		t.Fatalf("preview of a long key must be shorter than the key")
	}
}
