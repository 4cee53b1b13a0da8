// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package store implements the PostgreSQL persistence layer: the connection
// wrapper and the repositories for users, API keys, the provider catalogue,
// TOTP configuration, and audit records.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ikunfydeos-tech/APIKey/internal/config"
	"github.com/ikunfydeos-tech/APIKey/internal/logger"
	"github.com/ikunfydeos-tech/APIKey/migrations"
)

// psql is the shared squirrel builder configured for PostgreSQL $n
// placeholders. Repositories use it for every dynamically composed query.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// DB wraps the SQL connection together with the error classifier used to
// decide whether a failed operation is worth retrying.
type DB struct {
	*sql.DB
	errorClassifier *PostgresErrorClassifier
	logger          *logger.Logger
}

// NewConnectPostgres opens and pings a PostgreSQL connection for the given
// DSN and returns the wrapped [DB].
func NewConnectPostgres(ctx context.Context, cfg config.DB, log *logger.Logger) (*DB, error) {
	conn, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		log.Err(err).Str("func", "NewConnectPostgres").Msg("error occurred during database connection")
		return nil, fmt.Errorf("error occurred during database connection: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(4)

	if err := conn.PingContext(ctx); err != nil {
		log.Err(err).Str("func", "NewConnectPostgres").Msg("error connecting database (ping)")
		return nil, err
	}
	log.Info().Str("func", "NewConnectPostgres").Msg("connected to database successfully")

	return &DB{
		DB:              conn,
		logger:          log,
		errorClassifier: NewPostgresErrorClassifier(),
	}, nil
}

// Migrate applies all pending schema migrations.
func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB)
}

// Retryable reports whether err represents a transient database failure
// (connection loss, serialization failure, deadlock).
func (db *DB) Retryable(err error) bool {
	return db.errorClassifier.Classify(err) == Retryable
}

// postgresError extracts the PostgreSQL error code from err, or returns an
// empty string when err did not originate from the driver.
func postgresError(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}

	return ""
}
