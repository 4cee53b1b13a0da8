// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ikunfydeos-tech/APIKey/models"
)

func TestGetUserIDFromContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), UserIDCtxKey, int64(42))

	userID, ok := GetUserIDFromContext(ctx)
	if !ok {
		t.Fatal("expected ok=true, got false")
	}
	if userID != 42 {
		t.Fatalf("userID = %d, want 42", userID)
	}

	if _, ok := GetUserIDFromContext(context.Background()); ok {
		t.Fatal("expected ok=false for empty context")
	}
}

func TestGetUserFromContext(t *testing.T) {
	user := &models.User{UserID: 7, Username: "alice", Role: models.RoleAdmin}
	ctx := context.WithValue(context.Background(), UserCtxKey, user)

	got, ok := GetUserFromContext(ctx)
	if !ok {
		t.Fatal("expected ok=true, got false")
	}
	if got.UserID != 7 || got.Username != "alice" {
		t.Fatalf("unexpected user %+v", got)
	}

	if _, ok := GetUserFromContext(context.Background()); ok {
		t.Fatal("expected ok=false for empty context")
	}
}

func TestGenerateAndValidateJWTToken(t *testing.T) {
	token, err := GenerateJWTToken("api-key-vault", 42, time.Hour, "secret")
	if err != nil {
		t.Fatalf("GenerateJWTToken error: %v", err)
	}
	if token.SignedString == "" {
		t.Fatal("signed string is empty")
	}

	parsed, err := ValidateAndParseJWTToken(token.SignedString, "secret", "api-key-vault")
	if err != nil {
		t.Fatalf("ValidateAndParseJWTToken error: %v", err)
	}
	if parsed.UserID != 42 {
		t.Fatalf("UserID = %d, want 42", parsed.UserID)
	}
}

func TestValidateJWTToken_Failures(t *testing.T) {
	token, err := GenerateJWTToken("api-key-vault", 42, time.Hour, "secret")
	if err != nil {
		t.Fatalf("GenerateJWTToken error: %v", err)
	}

	if _, err := ValidateAndParseJWTToken(token.SignedString, "wrong-key", "api-key-vault"); err == nil {
		t.Fatal("expected error for wrong sign key")
	}
	if _, err := ValidateAndParseJWTToken(token.SignedString, "secret", "other-issuer"); err == nil {
		t.Fatal("expected error for wrong issuer")
	}

	expired, err := GenerateJWTToken("api-key-vault", 42, -time.Hour, "secret")
	if err != nil {
		t.Fatalf("GenerateJWTToken error: %v", err)
	}
	if _, err := ValidateAndParseJWTToken(expired.SignedString, "secret", "api-key-vault"); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestGenerateJWTToken_InvalidParams(t *testing.T) {
	if _, err := GenerateJWTToken("", 42, time.Hour, "secret"); err == nil {
		t.Fatal("expected error for empty issuer")
	}
	if _, err := GenerateJWTToken("issuer", 42, 0, "secret"); err == nil {
		t.Fatal("expected error for zero duration")
	}
	if _, err := GenerateJWTToken("issuer", 42, time.Hour, ""); err == nil {
		t.Fatal("expected error for empty sign key")
	}
}

func TestParseBearerToken(t *testing.T) {
	token, err := ParseBearerToken("Bearer abc.def.ghi")
	if err != nil {
		t.Fatalf("ParseBearerToken error: %v", err)
	}
	if token != "abc.def.ghi" {
		t.Fatalf("token = %q, want abc.def.ghi", token)
	}

	for _, header := range []string{"", "Bearer", "Bearer ", "abc"} {
		if _, err := ParseBearerToken(header); err == nil {
			t.Fatalf("header %q: expected error", header)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()

	n, err := WriteJSON(w, models.MessageResponse{Message: "ok"}, http.StatusCreated)
	if err != nil {
		t.Fatalf("WriteJSON error: %v", err)
	}
	if n == 0 {
		t.Fatal("expected body bytes to be written")
	}
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("Content-Type = %q, want application/json", ct)
	}

	var body models.MessageResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body.Message != "ok" {
		t.Fatalf("message = %q, want ok", body.Message)
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("hash must not equal the plaintext")
	}

	if !CheckPassword(hash, "correct horse battery staple") {
		t.Fatal("correct password rejected")
	}
	if CheckPassword(hash, "wrong password") {
		t.Fatal("wrong password accepted")
	}
}
