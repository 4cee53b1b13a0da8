// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// Provider is an LLM API provider catalogue entry. Global rows are seeded
// by migrations and managed by administrators; custom rows belong to the
// user who created them and are visible only to that user.
type Provider struct {
	ProviderID  int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`

	// BaseURL is the API endpoint root used by the connectivity probe.
	BaseURL string `json:"base_url"`

	// DocsURL points at the provider's API documentation. Optional.
	DocsURL string `json:"docs_url,omitempty"`

	// IsCustom marks user-created providers. CreatedBy is nil for
	// global catalogue rows.
	IsCustom  bool   `json:"is_custom"`
	CreatedBy *int64 `json:"created_by,omitempty"`

	IsActive  bool      `json:"is_active"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the name of the database table
// associated with the Provider model.
func (p Provider) TableName() string {
	return "api_providers"
}

// APIModel is a concrete model offered by a provider (e.g. a chat or
// embedding model), used to annotate stored keys.
type APIModel struct {
	ModelID     int64  `json:"id"`
	ProviderID  int64  `json:"provider_id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`

	// Category groups models by capability: chat, embedding, image, audio.
	Category string `json:"category"`

	// ContextWindow is the maximum context size in tokens, 0 if unknown.
	ContextWindow int `json:"context_window"`

	IsDefault bool      `json:"is_default"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the name of the database table
// associated with the APIModel model.
func (m APIModel) TableName() string {
	return "api_models"
}
