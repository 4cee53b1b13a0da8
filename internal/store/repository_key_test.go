// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikunfydeos-tech/APIKey/models"
)

func newTestKeyRepo(t *testing.T) (KeyRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock := newTestDB(t)
	return NewKeyRepository(db, db.logger), mock
}

func keyRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "provider_id", "model_id", "key_name", "api_key_encrypted",
		"api_key_preview", "status", "notes", "expires_at", "last_used_at",
		"created_at", "updated_at",
	})
}

func TestKeyRepository_Create(t *testing.T) {
	now := time.Now()

	t.Run("created key is returned with assigned fields", func(t *testing.T) {
		repo, mock := newTestKeyRepo(t)

		mock.ExpectQuery("INSERT INTO user_api_keys").
			WithArgs(int64(1), int64(2), nil, "prod key", "Y2lwaGVydGV4dA==", "sk-p...7890",
				models.KeyStatusActive, "", nil).
			WillReturnRows(keyRows().AddRow(
				int64(10), int64(1), int64(2), nil, "prod key", "Y2lwaGVydGV4dA==",
				"sk-p...7890", models.KeyStatusActive, "", nil, nil, now, now,
			))

		created, err := repo.Create(context.Background(), models.APIKey{
			UserID:       1,
			ProviderID:   2,
			KeyName:      "prod key",
			EncryptedKey: "Y2lwaGVydGV4dA==",
			Preview:      "sk-p...7890",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(10), created.KeyID)
		assert.Equal(t, "sk-p...7890", created.Preview)
		assert.Equal(t, models.KeyStatusActive, created.Status)
	})

	t.Run("duplicate name maps to ErrKeyNameAlreadyExists", func(t *testing.T) {
		repo, mock := newTestKeyRepo(t)

		mock.ExpectQuery("INSERT INTO user_api_keys").
			WillReturnError(pgError(pgerrcode.UniqueViolation))

		_, err := repo.Create(context.Background(), models.APIKey{UserID: 1, ProviderID: 2, KeyName: "prod key"})
		assert.ErrorIs(t, err, ErrKeyNameAlreadyExists)
	})

	t.Run("unknown provider maps to ErrProviderNotFound", func(t *testing.T) {
		repo, mock := newTestKeyRepo(t)

		mock.ExpectQuery("INSERT INTO user_api_keys").
			WillReturnError(pgError(pgerrcode.ForeignKeyViolation))

		_, err := repo.Create(context.Background(), models.APIKey{UserID: 1, ProviderID: 999, KeyName: "prod key"})
		assert.ErrorIs(t, err, ErrProviderNotFound)
	})
}

func TestKeyRepository_FindByID(t *testing.T) {
	t.Run("foreign key is invisible to a different owner", func(t *testing.T) {
		repo, mock := newTestKeyRepo(t)

		mock.ExpectQuery("SELECT (.+) FROM user_api_keys").
			WithArgs(int64(2), int64(10)).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.FindByID(context.Background(), 2, 10)
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})
}

func TestKeyRepository_List(t *testing.T) {
	repo, mock := newTestKeyRepo(t)

	now := time.Now()

	mock.ExpectQuery(`SELECT count\(\*\) FROM user_api_keys`).
		WithArgs(int64(1), models.KeyStatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("SELECT (.+) FROM user_api_keys").
		WithArgs(int64(1), models.KeyStatusActive).
		WillReturnRows(keyRows().
			AddRow(int64(11), int64(1), int64(2), nil, "key a", "blob-a", "sk-a...aaaa",
				models.KeyStatusActive, "", nil, nil, now, now).
			AddRow(int64(10), int64(1), int64(3), int64(5), "key b", "blob-b", "sk-b...bbbb",
				models.KeyStatusActive, "backup", nil, now, now, now))

	keys, total, err := repo.List(context.Background(), 1, KeyFilter{Status: models.KeyStatusActive, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, keys, 2)
	assert.Equal(t, "key a", keys[0].KeyName)
	require.NotNil(t, keys[1].ModelID)
	assert.Equal(t, int64(5), *keys[1].ModelID)
}

func TestKeyRepository_Update(t *testing.T) {
	now := time.Now()

	t.Run("partial update returns refreshed row", func(t *testing.T) {
		repo, mock := newTestKeyRepo(t)

		newName := "renamed"
		mock.ExpectQuery("UPDATE user_api_keys").
			WillReturnRows(keyRows().AddRow(
				int64(10), int64(1), int64(2), nil, "renamed", "blob", "sk-a...aaaa",
				models.KeyStatusActive, "", nil, nil, now, now,
			))

		updated, err := repo.Update(context.Background(), 1, 10, KeyUpdate{KeyName: &newName})
		require.NoError(t, err)
		assert.Equal(t, "renamed", updated.KeyName)
	})

	t.Run("missing key maps to ErrKeyNotFound", func(t *testing.T) {
		repo, mock := newTestKeyRepo(t)

		mock.ExpectQuery("UPDATE user_api_keys").
			WillReturnError(sql.ErrNoRows)

		status := models.KeyStatusInactive
		_, err := repo.Update(context.Background(), 1, 99, KeyUpdate{Status: &status})
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("rename collision maps to ErrKeyNameAlreadyExists", func(t *testing.T) {
		repo, mock := newTestKeyRepo(t)

		mock.ExpectQuery("UPDATE user_api_keys").
			WillReturnError(pgError(pgerrcode.UniqueViolation))

		newName := "taken"
		_, err := repo.Update(context.Background(), 1, 10, KeyUpdate{KeyName: &newName})
		assert.ErrorIs(t, err, ErrKeyNameAlreadyExists)
	})
}

func TestKeyRepository_Delete(t *testing.T) {
	t.Run("deleting a foreign key maps to ErrKeyNotFound", func(t *testing.T) {
		repo, mock := newTestKeyRepo(t)

		mock.ExpectExec("DELETE FROM user_api_keys").
			WithArgs(int64(2), int64(10)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), 2, 10)
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})
}

func TestKeyRepository_CountByUser(t *testing.T) {
	repo, mock := newTestKeyRepo(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM user_api_keys`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountByUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
