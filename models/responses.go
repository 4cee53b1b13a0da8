// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// CaptchaResponse carries one CAPTCHA challenge: the signed token binding
// the expected answer, and the rendered image as a base64 data URI.
type CaptchaResponse struct {
	Token string `json:"captcha_token"`
	Image string `json:"captcha_image"`
}

// LoginResponse is returned on successful authentication.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

// KeyListResponse is a paginated page of stored keys.
type KeyListResponse struct {
	Keys  []APIKey `json:"keys"`
	Total int64    `json:"total"`
}

// KeyLimitsResponse reports the membership key quota and current usage.
type KeyLimitsResponse struct {
	Tier  string `json:"tier"`
	Limit int64  `json:"limit"`
	Used  int64  `json:"used"`
}

// KeyProbeResponse is the result of a provider connectivity check.
// The probed key never appears here.
type KeyProbeResponse struct {
	Reachable  bool   `json:"reachable"`
	StatusCode int    `json:"status_code,omitempty"`
	LatencyMS  int64  `json:"latency_ms"`
	Message    string `json:"message,omitempty"`
}

// TOTPEnrollmentResponse carries the material the authenticator app needs.
// This is the only place the secret crosses the wire.
type TOTPEnrollmentResponse struct {
	Secret string `json:"secret"`
	URI    string `json:"uri"`
	QRCode string `json:"qr_code"`
}

// TOTPStatusResponse reports whether TOTP is configured and enabled.
type TOTPStatusResponse struct {
	Enrolled bool `json:"enrolled"`
	Enabled  bool `json:"enabled"`
}

// BackupCodesResponse carries one-time recovery codes. They are shown
// once and not retrievable afterwards.
type BackupCodesResponse struct {
	Codes []string `json:"codes"`
}

// MembershipStatusResponse summarizes the caller's tier state.
type MembershipStatusResponse struct {
	Tier      string     `json:"tier"`
	Active    bool       `json:"active"`
	ExpireAt  *time.Time `json:"expire_at,omitempty"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	DaysLeft  int        `json:"days_left"`
}

// AdminPathResponse is returned by the role-gated discovery endpoint.
type AdminPathResponse struct {
	AdminPath string `json:"admin_path"`
	AdminURL  string `json:"admin_url"`
}

// AdminOverviewResponse aggregates the dashboard counters.
type AdminOverviewResponse struct {
	TotalUsers      int64 `json:"total_users"`
	ActiveUsers     int64 `json:"active_users"`
	TotalKeys       int64 `json:"total_keys"`
	RecentUsers     int64 `json:"recent_users"`
	PaidMemberships int64 `json:"paid_memberships"`
}

// TrendPoint is one day of the registration trend series.
type TrendPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// UserListResponse is a paginated page of accounts for the admin console.
type UserListResponse struct {
	Users []User `json:"users"`
	Total int64  `json:"total"`
}

// LogListResponse is a paginated page of audit records.
type LogListResponse struct {
	Logs  []LogEntry `json:"logs"`
	Total int64      `json:"total"`
}

// LoginHistoryResponse is a page of authentication attempts.
type LoginHistoryResponse struct {
	History []LoginHistory `json:"history"`
	Total   int64          `json:"total"`
}

// KeyRevealResponse carries the decrypted credential for its owner. This
// is the only response that contains plaintext key material.
type KeyRevealResponse struct {
	Key    APIKey `json:"key"`
	APIKey string `json:"api_key"`
}

// LogActionsResponse lists the distinct audit actions a user has, for
// building filter dropdowns.
type LogActionsResponse struct {
	Actions []string `json:"actions"`
}

// WebhookAckResponse is the body the payment platform receives. The
// platform retries on non-200; disputes about one order must not block
// the queue, so "ignored" still answers 200.
type WebhookAckResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// MessageResponse is the generic {"message": ...} acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the uniform error body written by the HTTP layer.
type ErrorResponse struct {
	Error string `json:"error"`
}
