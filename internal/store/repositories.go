// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"github.com/ikunfydeos-tech/APIKey/internal/logger"
)

// Repositories bundles every repository implementation behind its
// interface, ready for injection into the service layer.
type Repositories struct {
	UserRepository     UserRepository
	KeyRepository      KeyRepository
	ProviderRepository ProviderRepository
	TOTPRepository     TOTPRepository
	AuditRepository    AuditRepository
}

// NewRepositories wires all PostgreSQL repositories to the given
// connection.
func NewRepositories(db *DB, log *logger.Logger) *Repositories {
	return &Repositories{
		UserRepository:     NewUserRepository(db, log),
		KeyRepository:      NewKeyRepository(db, log),
		ProviderRepository: NewProviderRepository(db, log),
		TOTPRepository:     NewTOTPRepository(db, log),
		AuditRepository:    NewAuditRepository(db, log),
	}
}
