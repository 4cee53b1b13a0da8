// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package ratelimit

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewSlidingWindow_Validation(t *testing.T) {
	if _, err := NewSlidingWindow(0, time.Minute); !errors.Is(err, ErrInvalidLimit) {
		t.Fatalf("expected ErrInvalidLimit, got %v", err)
	}
	if _, err := NewSlidingWindow(5, 0); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}
}

func TestSlidingWindow_AllowsUpToLimit(t *testing.T) {
	limiter, err := NewSlidingWindow(3, time.Minute)
	if err != nil {
		t.Fatalf("NewSlidingWindow error: %v", err)
	}

	for i := 0; i < 3; i++ {
		result := limiter.Allow("10.0.0.1")
		if !result.Allowed {
			t.Fatalf("request %d denied, want allowed", i+1)
		}
		if result.Remaining != 3-(i+1) {
			t.Fatalf("request %d remaining = %d, want %d", i+1, result.Remaining, 3-(i+1))
		}
	}

	result := limiter.Allow("10.0.0.1")
	if result.Allowed {
		t.Fatalf("request over the limit allowed")
	}
	if result.RetryAfter() <= 0 {
		t.Fatalf("denied result must carry a positive retry-after")
	}
}

func TestSlidingWindow_KeysAreIndependent(t *testing.T) {
	limiter, err := NewSlidingWindow(1, time.Minute)
	if err != nil {
		t.Fatalf("NewSlidingWindow error: %v", err)
	}

	if !limiter.Allow("10.0.0.1").Allowed {
		t.Fatalf("first key first request denied")
	}
	if limiter.Allow("10.0.0.1").Allowed {
		t.Fatalf("first key second request allowed")
	}
	if !limiter.Allow("10.0.0.2").Allowed {
		t.Fatalf("second key must have its own budget")
	}
}

func TestSlidingWindow_WindowSlides(t *testing.T) {
	limiter, err := NewSlidingWindow(1, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("NewSlidingWindow error: %v", err)
	}

	if !limiter.Allow("k").Allowed {
		t.Fatalf("first request denied")
	}
	if limiter.Allow("k").Allowed {
		t.Fatalf("second immediate request allowed")
	}

	time.Sleep(60 * time.Millisecond)

	if !limiter.Allow("k").Allowed {
		t.Fatalf("request after the window slid must be allowed")
	}
}

func TestSlidingWindow_Reset(t *testing.T) {
	limiter, err := NewSlidingWindow(1, time.Minute)
	if err != nil {
		t.Fatalf("NewSlidingWindow error: %v", err)
	}

	limiter.Allow("k")
	limiter.Reset("k")

	if !limiter.Allow("k").Allowed {
		t.Fatalf("request after Reset denied")
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.10:54321"
	if got := ClientIP(r); got != "192.0.2.10" {
		t.Fatalf("ClientIP = %q, want 192.0.2.10", got)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.7, 192.0.2.10")
	if got := ClientIP(r); got != "203.0.113.7" {
		t.Fatalf("ClientIP = %q, want first forwarded hop", got)
	}
}

func TestMiddleware(t *testing.T) {
	limiter, err := NewSlidingWindow(2, time.Minute)
	if err != nil {
		t.Fatalf("NewSlidingWindow error: %v", err)
	}

	handler := Middleware(limiter, ClientIP)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func() *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/api/login", nil)
		r.RemoteAddr = "192.0.2.10:54321"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w
	}

	for i := 0; i < 2; i++ {
		if w := do(); w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, w.Code)
		}
	}

	w := do()
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("429 response missing Retry-After header")
	}
	if w.Header().Get("X-RateLimit-Limit") != "2" {
		t.Fatalf("X-RateLimit-Limit = %q, want 2", w.Header().Get("X-RateLimit-Limit"))
	}
}
