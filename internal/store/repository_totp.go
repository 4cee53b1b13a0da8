// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ikunfydeos-tech/APIKey/internal/logger"
	"github.com/ikunfydeos-tech/APIKey/models"
)

const totpColumns = `id, user_id, secret, is_enabled, created_at, updated_at`

const (
	findTOTPByUserQuery = `SELECT ` + totpColumns + `
	FROM totp_configs
	WHERE user_id = $1;`

	upsertTOTPQuery = `INSERT INTO totp_configs (user_id, secret, is_enabled)
	VALUES ($1, $2, FALSE)
	ON CONFLICT (user_id) DO UPDATE
	SET secret = EXCLUDED.secret, is_enabled = FALSE, updated_at = now()
	RETURNING ` + totpColumns + `;`

	setTOTPEnabledQuery = `UPDATE totp_configs
	SET is_enabled = $2, updated_at = now()
	WHERE user_id = $1;`

	replaceTOTPSecretQuery = `UPDATE totp_configs
	SET secret = $2, updated_at = now()
	WHERE user_id = $1;`
)

// totpRepository is the PostgreSQL-backed implementation of
// [TOTPRepository]. The user_id UNIQUE constraint enforces the
// one-config-per-user invariant at the schema level.
type totpRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewTOTPRepository constructs a [TOTPRepository] backed by the provided
// database connection and logger.
func NewTOTPRepository(db *DB, logger *logger.Logger) TOTPRepository {
	logger.Debug().Msg("creating totp repository")
	return &totpRepository{
		db:     db,
		logger: logger,
	}
}

func scanTOTP(row interface{ Scan(dest ...any) error }) (models.TOTPConfig, error) {
	var c models.TOTPConfig
	err := row.Scan(&c.ConfigID, &c.UserID, &c.Secret, &c.IsEnabled, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// FindByUser retrieves the user's TOTP configuration. Returns
// [ErrTOTPNotFound] when the user never enrolled.
func (r *totpRepository) FindByUser(ctx context.Context, userID int64) (models.TOTPConfig, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, findTOTPByUserQuery, userID)
	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*totpRepository.FindByUser").Msg("error querying totp config")
		return models.TOTPConfig{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	config, err := scanTOTP(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.TOTPConfig{}, ErrTOTPNotFound
		}
		log.Err(err).Str("func", "*totpRepository.FindByUser").Msg("error scanning totp config")
		return models.TOTPConfig{}, err
	}

	return config, nil
}

// Upsert implements [TOTPRepository]. Re-enrolling always lands the row in
// the not-yet-activated state, even if a previous secret was enabled.
func (r *totpRepository) Upsert(ctx context.Context, userID int64, secret string) (models.TOTPConfig, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, upsertTOTPQuery, userID, secret)
	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*totpRepository.Upsert").Msg("error upserting totp config")
		return models.TOTPConfig{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	config, err := scanTOTP(row)
	if err != nil {
		log.Err(err).Str("func", "*totpRepository.Upsert").Msg("error scanning upserted totp config")
		return models.TOTPConfig{}, err
	}

	return config, nil
}

// SetEnabled flips the activation flag. Returns [ErrTOTPNotFound] when the
// user has no configuration row.
func (r *totpRepository) SetEnabled(ctx context.Context, userID int64, enabled bool) error {
	return r.execExpectingRow(ctx, "*totpRepository.SetEnabled", setTOTPEnabledQuery, userID, enabled)
}

// ReplaceSecret implements [TOTPRepository].
func (r *totpRepository) ReplaceSecret(ctx context.Context, userID int64, secret string) error {
	return r.execExpectingRow(ctx, "*totpRepository.ReplaceSecret", replaceTOTPSecretQuery, userID, secret)
}

// Delete removes the user's TOTP configuration entirely.
func (r *totpRepository) Delete(ctx context.Context, userID int64) error {
	return r.execExpectingRow(ctx, "*totpRepository.Delete",
		`DELETE FROM totp_configs WHERE user_id = $1;`, userID)
}

func (r *totpRepository) execExpectingRow(ctx context.Context, fn, query string, args ...any) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", fn).Msg("error executing statement")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("unexpected DB error: %w", err)
	}
	if affected == 0 {
		return ErrTOTPNotFound
	}

	return nil
}
