// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"

	"github.com/ikunfydeos-tech/APIKey/internal/logger"
	"github.com/ikunfydeos-tech/APIKey/models"
)

const keyColumns = `id, user_id, provider_id, model_id, key_name, api_key_encrypted,
	api_key_preview, status, notes, expires_at, last_used_at, created_at, updated_at`

const (
	createKeyQuery = `INSERT INTO user_api_keys
	(user_id, provider_id, model_id, key_name, api_key_encrypted, api_key_preview, status, notes, expires_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING ` + keyColumns + `;`

	findKeyByIDQuery = `SELECT ` + keyColumns + `
	FROM user_api_keys
	WHERE user_id = $1 AND id = $2;`

	touchKeyLastUsedQuery = `UPDATE user_api_keys
	SET last_used_at = now()
	WHERE id = $1;`
)

// keyRepository is the PostgreSQL-backed implementation of [KeyRepository].
// The repository never sees plaintext key material: callers hand it the
// ciphertext blob and the preview fragment already computed upstream.
type keyRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewKeyRepository constructs a [KeyRepository] backed by the provided
// database connection and logger.
func NewKeyRepository(db *DB, logger *logger.Logger) KeyRepository {
	logger.Debug().Msg("creating key repository")
	return &keyRepository{
		db:     db,
		logger: logger,
	}
}

func scanKey(row interface{ Scan(dest ...any) error }) (models.APIKey, error) {
	var k models.APIKey
	err := row.Scan(
		&k.KeyID, &k.UserID, &k.ProviderID, &k.ModelID, &k.KeyName,
		&k.EncryptedKey, &k.Preview, &k.Status, &k.Notes,
		&k.ExpiresAt, &k.LastUsedAt, &k.CreatedAt, &k.UpdatedAt,
	)
	return k, err
}

// Create persists a new credential row.
//
// Error handling:
//   - unique_violation on (user_id, key_name) → [ErrKeyNameAlreadyExists].
//   - foreign_key_violation on provider_id → [ErrProviderNotFound].
func (r *keyRepository) Create(ctx context.Context, key models.APIKey) (models.APIKey, error) {
	log := logger.FromContext(ctx)

	status := key.Status
	if status == "" {
		status = models.KeyStatusActive
	}

	row := r.db.QueryRowContext(ctx, createKeyQuery,
		key.UserID, key.ProviderID, key.ModelID, key.KeyName,
		key.EncryptedKey, key.Preview, status, key.Notes, key.ExpiresAt)
	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*keyRepository.Create").Msg("error inserting api key")

		switch postgresError(err) {
		case pgerrcode.UniqueViolation:
			return models.APIKey{}, ErrKeyNameAlreadyExists
		case pgerrcode.ForeignKeyViolation:
			return models.APIKey{}, ErrProviderNotFound
		default:
			return models.APIKey{}, fmt.Errorf("unexpected DB error: %w", err)
		}
	}

	created, err := scanKey(row)
	if err != nil {
		switch postgresError(err) {
		case pgerrcode.UniqueViolation:
			return models.APIKey{}, ErrKeyNameAlreadyExists
		case pgerrcode.ForeignKeyViolation:
			return models.APIKey{}, ErrProviderNotFound
		}
		log.Err(err).Str("func", "*keyRepository.Create").Msg("error scanning created api key")
		return models.APIKey{}, err
	}

	return created, nil
}

// FindByID retrieves one key scoped to its owner. Returns [ErrKeyNotFound]
// when the key does not exist or belongs to another user.
func (r *keyRepository) FindByID(ctx context.Context, userID, keyID int64) (models.APIKey, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, findKeyByIDQuery, userID, keyID)
	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*keyRepository.FindByID").Msg("error querying api key")
		return models.APIKey{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	key, err := scanKey(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.APIKey{}, ErrKeyNotFound
		}
		log.Err(err).Str("func", "*keyRepository.FindByID").Msg("error scanning api key")
		return models.APIKey{}, err
	}

	return key, nil
}

// List pages the owner's keys, optionally filtered by status and provider.
func (r *keyRepository) List(ctx context.Context, userID int64, filter KeyFilter) ([]models.APIKey, int64, error) {
	log := logger.FromContext(ctx)

	where := sq.And{sq.Eq{"user_id": userID}}
	if filter.Status != "" {
		where = append(where, sq.Eq{"status": filter.Status})
	}
	if filter.ProviderID > 0 {
		where = append(where, sq.Eq{"provider_id": filter.ProviderID})
	}

	countQuery, countArgs, err := psql.Select("count(*)").From("user_api_keys").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		log.Err(err).Str("func", "*keyRepository.List").Msg("error counting api keys")
		return nil, 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	listBuilder := psql.Select(keyColumns).From("user_api_keys").
		Where(where).
		OrderBy("created_at DESC")
	if filter.Limit > 0 {
		listBuilder = listBuilder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		listBuilder = listBuilder.Offset(uint64(filter.Offset))
	}

	listQuery, listArgs, err := listBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, listQuery, listArgs...)
	if err != nil {
		log.Err(err).Str("func", "*keyRepository.List").Msg("error listing api keys")
		return nil, 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	keys := make([]models.APIKey, 0)
	for rows.Next() {
		key, err := scanKey(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return keys, total, nil
}

// Update applies a partial update scoped to the owner and returns the
// refreshed row. A no-op update (all fields nil) still bumps updated_at.
func (r *keyRepository) Update(ctx context.Context, userID, keyID int64, upd KeyUpdate) (models.APIKey, error) {
	log := logger.FromContext(ctx)

	builder := psql.Update("user_api_keys").
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"user_id": userID, "id": keyID}).
		Suffix("RETURNING " + keyColumns)

	if upd.KeyName != nil {
		builder = builder.Set("key_name", *upd.KeyName)
	}
	if upd.Encrypted != nil {
		builder = builder.Set("api_key_encrypted", *upd.Encrypted)
	}
	if upd.Preview != nil {
		builder = builder.Set("api_key_preview", *upd.Preview)
	}
	if upd.ModelID != nil {
		builder = builder.Set("model_id", *upd.ModelID)
	}
	if upd.Status != nil {
		builder = builder.Set("status", *upd.Status)
	}
	if upd.Notes != nil {
		builder = builder.Set("notes", *upd.Notes)
	}
	if upd.ExpiresAt != nil {
		builder = builder.Set("expires_at", *upd.ExpiresAt)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return models.APIKey{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	row := r.db.QueryRowContext(ctx, query, args...)
	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*keyRepository.Update").Msg("error updating api key")

		switch postgresError(err) {
		case pgerrcode.UniqueViolation:
			return models.APIKey{}, ErrKeyNameAlreadyExists
		default:
			return models.APIKey{}, fmt.Errorf("unexpected DB error: %w", err)
		}
	}

	updated, err := scanKey(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.APIKey{}, ErrKeyNotFound
		}
		if postgresError(err) == pgerrcode.UniqueViolation {
			return models.APIKey{}, ErrKeyNameAlreadyExists
		}
		log.Err(err).Str("func", "*keyRepository.Update").Msg("error scanning updated api key")
		return models.APIKey{}, err
	}

	return updated, nil
}

// Delete removes a key scoped to its owner. Returns [ErrKeyNotFound] when
// nothing was deleted.
func (r *keyRepository) Delete(ctx context.Context, userID, keyID int64) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM user_api_keys WHERE user_id = $1 AND id = $2;`, userID, keyID)
	if err != nil {
		log.Err(err).Str("func", "*keyRepository.Delete").Msg("error deleting api key")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("unexpected DB error: %w", err)
	}
	if affected == 0 {
		return ErrKeyNotFound
	}

	return nil
}

// TouchLastUsed bumps last_used_at. Best effort: a missing row is not an
// error because the key may have been deleted between read and touch.
func (r *keyRepository) TouchLastUsed(ctx context.Context, keyID int64) error {
	log := logger.FromContext(ctx)

	if _, err := r.db.ExecContext(ctx, touchKeyLastUsedQuery, keyID); err != nil {
		log.Err(err).Str("func", "*keyRepository.TouchLastUsed").Msg("error touching api key")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	return nil
}

// CountByUser returns the number of keys the user currently stores. Used
// for tier quota enforcement.
func (r *keyRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	return r.count(ctx, sq.Eq{"user_id": userID})
}

// CountAll returns the total number of stored keys across all users.
func (r *keyRepository) CountAll(ctx context.Context) (int64, error) {
	return r.count(ctx, sq.Expr("TRUE"))
}

func (r *keyRepository) count(ctx context.Context, where any) (int64, error) {
	log := logger.FromContext(ctx)

	query, args, err := psql.Select("count(*)").From("user_api_keys").Where(where).ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var count int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		log.Err(err).Str("func", "*keyRepository.count").Msg("error counting api keys")
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return count, nil
}
