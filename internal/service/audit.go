// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"

	"github.com/ikunfydeos-tech/APIKey/internal/logger"
	"github.com/ikunfydeos-tech/APIKey/internal/store"
	"github.com/ikunfydeos-tech/APIKey/models"
)

// Audit action names shared between services and queries.
const (
	ActionRegister       = "register"
	ActionLogin          = "login"
	ActionChangePassword = "change_password"
	ActionDeleteAccount  = "delete_account"
	ActionKeyCreate      = "key_create"
	ActionKeyReveal      = "key_reveal"
	ActionKeyUpdate      = "key_update"
	ActionKeyDelete      = "key_delete"
	ActionMembership     = "membership_update"
	ActionMembershipLoss = "membership_expired"
)

// auditRecorder appends operation log records without failing the calling
// operation: an audit write error is logged and swallowed.
type auditRecorder struct {
	auditRepository store.AuditRepository
}

func (a *auditRecorder) record(ctx context.Context, userID int64, action, status, details, ip string) {
	log := logger.FromContext(ctx)

	entry := models.LogEntry{
		Action:    action,
		Status:    status,
		Details:   details,
		IPAddress: ip,
	}
	if userID > 0 {
		entry.UserID = &userID
	}

	if err := a.auditRepository.InsertLog(ctx, entry); err != nil {
		log.Err(err).Str("action", action).Msg("audit record write failed")
	}
}
