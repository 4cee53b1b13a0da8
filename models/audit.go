// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// Audit outcome values for LogEntry.Status.
const (
	LogStatusSuccess = "success"
	LogStatusFailure = "failure"
)

// LogEntry is an append-only operation audit record. Details carries a
// short human-readable description; it must never contain credential
// material.
type LogEntry struct {
	LogID     int64     `json:"id"`
	UserID    *int64    `json:"user_id,omitempty"`
	Action    string    `json:"action"`
	Status    string    `json:"status"`
	Details   string    `json:"details,omitempty"`
	IPAddress string    `json:"ip_address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the name of the database table
// associated with the LogEntry model.
func (l LogEntry) TableName() string {
	return "log_entries"
}

// LoginHistory records one authentication attempt, successful or not.
type LoginHistory struct {
	HistoryID int64     `json:"id"`
	UserID    int64     `json:"-"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	Success   bool      `json:"success"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the name of the database table
// associated with the LoginHistory model.
func (h LoginHistory) TableName() string {
	return "login_history"
}
