// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// Typed request bodies for every mutating endpoint. Handlers decode into
// these structs directly; no endpoint accepts a free-form map.

// RegisterRequest is the body of POST /api/register.
type RegisterRequest struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	CaptchaToken string `json:"captcha_token"`
	CaptchaInput string `json:"captcha_input"`
}

// LoginRequest is the body of POST /api/login. TOTPCode is required only
// when the account has TOTP enabled.
type LoginRequest struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	TOTPCode     string `json:"totp_code,omitempty"`
	CaptchaToken string `json:"captcha_token"`
	CaptchaInput string `json:"captcha_input"`
}

// ChangePasswordRequest is the body of POST /api/auth/change-password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// DeleteAccountRequest is the body of DELETE /api/auth/account.
type DeleteAccountRequest struct {
	Password string `json:"password"`
}

// CreateKeyRequest is the body of POST /api/keys. APIKey is the plaintext
// credential; it is encrypted before it reaches the store and never logged.
type CreateKeyRequest struct {
	ProviderID int64  `json:"provider_id"`
	ModelID    *int64 `json:"model_id,omitempty"`
	KeyName    string `json:"key_name"`
	APIKey     string `json:"api_key"`
	Notes      string `json:"notes,omitempty"`
	ExpiresAt  string `json:"expires_at,omitempty"` // RFC 3339, optional
}

// UpdateKeyRequest is the body of PUT /api/keys/{id}. Nil pointers leave
// the corresponding column untouched; a non-nil APIKey triggers
// re-encryption and a fresh preview.
type UpdateKeyRequest struct {
	KeyName   *string `json:"key_name,omitempty"`
	APIKey    *string `json:"api_key,omitempty"`
	ModelID   *int64  `json:"model_id,omitempty"`
	Status    *string `json:"status,omitempty"`
	Notes     *string `json:"notes,omitempty"`
	ExpiresAt *string `json:"expires_at,omitempty"`
}

// ProbeKeyRequest is the body of POST /api/keys/test.
type ProbeKeyRequest struct {
	KeyID int64 `json:"key_id"`
}

// CreateCustomProviderRequest is the body of POST /api/keys/providers.
type CreateCustomProviderRequest struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	BaseURL     string `json:"base_url"`
	DocsURL     string `json:"docs_url,omitempty"`
}

// TOTPCodeRequest carries a single six-digit code (activate, verify,
// disable preflight).
type TOTPCodeRequest struct {
	Code string `json:"code"`
}

// TOTPRotateConfirmRequest is the body of POST /api/totp/rotate/confirm.
// OldCode proves possession of the current secret, NewCode of the
// candidate issued by the rotate call.
type TOTPRotateConfirmRequest struct {
	NewSecret string `json:"new_secret"`
	OldCode   string `json:"old_code"`
	NewCode   string `json:"new_code"`
}

// TOTPDisableRequest is the body of POST /api/totp/disable.
type TOTPDisableRequest struct {
	Password string `json:"password"`
	Code     string `json:"code"`
}

// UpdateUserRoleRequest is the body of PUT {admin}/users/{id}/role.
type UpdateUserRoleRequest struct {
	Role string `json:"role"`
}

// UpdateUserStatusRequest is the body of PUT {admin}/users/{id}/status.
type UpdateUserStatusRequest struct {
	IsActive bool `json:"is_active"`
}

// ProviderRequest is the body of admin provider create/update calls.
type ProviderRequest struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	BaseURL     string `json:"base_url"`
	DocsURL     string `json:"docs_url,omitempty"`
	SortOrder   int    `json:"sort_order"`
}

// ProviderStatusRequest is the body of PUT {admin}/providers/{id}/status.
type ProviderStatusRequest struct {
	IsActive bool `json:"is_active"`
}

// APIModelRequest is the body of admin model create/update calls.
type APIModelRequest struct {
	ProviderID    int64  `json:"provider_id"`
	Name          string `json:"name"`
	DisplayName   string `json:"display_name"`
	Category      string `json:"category"`
	ContextWindow int    `json:"context_window"`
	IsDefault     bool   `json:"is_default"`
}

// PaymentWebhookRequest is the body posted by the payment platform.
// Sign is the MD5 signature over the sorted parameters plus the shared
// token; Data.Order carries the purchase details.
type PaymentWebhookRequest struct {
	EC   int    `json:"ec"`
	EM   string `json:"em"`
	Sign string `json:"sign,omitempty"`

	// Params is the flat parameter set the platform signs. The MD5 is
	// computed over these sorted key=value pairs plus the shared token.
	Params map[string]string `json:"params,omitempty"`

	Data struct {
		Type  string       `json:"type"`
		Order PaymentOrder `json:"order"`
	} `json:"data"`
}

// PaymentOrder is one order inside a payment webhook event.
type PaymentOrder struct {
	OutTradeNo  string `json:"out_trade_no"`
	UserID      string `json:"user_id"`
	PlanID      string `json:"plan_id"`
	Month       int    `json:"month"`
	TotalAmount string `json:"total_amount"`
	ShowAmount  string `json:"show_amount"`
	Status      int    `json:"status"`
	Remark      string `json:"remark"`
}
