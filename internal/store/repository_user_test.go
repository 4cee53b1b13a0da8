// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikunfydeos-tech/APIKey/internal/logger"
	"github.com/ikunfydeos-tech/APIKey/models"
)

func newTestDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	log := logger.Nop()
	return &DB{DB: conn, errorClassifier: NewPostgresErrorClassifier(), logger: log}, mock
}

func newTestUserRepo(t *testing.T) (UserRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock := newTestDB(t)
	return NewUserRepository(db, db.logger), mock
}

func pgError(code string) error {
	return &pgconn.PgError{Code: code}
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "username", "email", "password_hash", "role", "membership_tier",
		"membership_expire_at", "membership_started_at", "login_attempts",
		"locked_until", "last_login", "is_active", "created_at", "updated_at",
	})
}

func TestUserRepository_Create(t *testing.T) {
	now := time.Now()

	t.Run("created user is returned with assigned fields", func(t *testing.T) {
		repo, mock := newTestUserRepo(t)

		mock.ExpectQuery("INSERT INTO users").
			WithArgs("alice", "alice@example.com", "$2a$10$hash", models.RoleUser).
			WillReturnRows(userRows().AddRow(
				int64(1), "alice", "alice@example.com", "$2a$10$hash", models.RoleUser,
				models.TierFree, nil, nil, 0, nil, nil, true, now, now,
			))

		created, err := repo.Create(context.Background(), models.User{
			Username:     "alice",
			Email:        "alice@example.com",
			PasswordHash: "$2a$10$hash",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), created.UserID)
		assert.Equal(t, models.RoleUser, created.Role)
		assert.Equal(t, models.TierFree, created.MembershipTier)
		assert.True(t, created.IsActive)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate username maps to ErrUserAlreadyExists", func(t *testing.T) {
		repo, mock := newTestUserRepo(t)

		mock.ExpectQuery("INSERT INTO users").
			WithArgs("alice", "alice@example.com", "$2a$10$hash", models.RoleUser).
			WillReturnError(pgError(pgerrcode.UniqueViolation))

		_, err := repo.Create(context.Background(), models.User{
			Username:     "alice",
			Email:        "alice@example.com",
			PasswordHash: "$2a$10$hash",
		})
		assert.ErrorIs(t, err, ErrUserAlreadyExists)
	})

	t.Run("unexpected driver error is wrapped", func(t *testing.T) {
		repo, mock := newTestUserRepo(t)

		mock.ExpectQuery("INSERT INTO users").
			WillReturnError(pgError(pgerrcode.ConnectionFailure))

		_, err := repo.Create(context.Background(), models.User{Username: "alice"})
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUserAlreadyExists)
	})
}

func TestUserRepository_FindByUsername(t *testing.T) {
	now := time.Now()

	t.Run("existing user is found", func(t *testing.T) {
		repo, mock := newTestUserRepo(t)

		mock.ExpectQuery("SELECT (.+) FROM users").
			WithArgs("alice").
			WillReturnRows(userRows().AddRow(
				int64(7), "alice", "alice@example.com", "$2a$10$hash", models.RoleAdmin,
				models.TierPro, now.Add(24*time.Hour), now.Add(-time.Hour), 0, nil, now, true, now, now,
			))

		user, err := repo.FindByUsername(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(7), user.UserID)
		assert.True(t, user.IsAdmin())
		require.NotNil(t, user.MembershipExpireAt)
	})

	t.Run("missing user maps to ErrUserNotFound", func(t *testing.T) {
		repo, mock := newTestUserRepo(t)

		mock.ExpectQuery("SELECT (.+) FROM users").
			WithArgs("ghost").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.FindByUsername(context.Background(), "ghost")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestUserRepository_RecordLoginFailure(t *testing.T) {
	t.Run("returns updated attempt counter", func(t *testing.T) {
		repo, mock := newTestUserRepo(t)

		mock.ExpectQuery("UPDATE users").
			WithArgs(int64(3), 5, "1800 seconds").
			WillReturnRows(sqlmock.NewRows([]string{"login_attempts"}).AddRow(5))

		attempts, err := repo.RecordLoginFailure(context.Background(), 3, 5, 30*time.Minute)
		require.NoError(t, err)
		assert.Equal(t, 5, attempts)
	})

	t.Run("missing user maps to ErrUserNotFound", func(t *testing.T) {
		repo, mock := newTestUserRepo(t)

		mock.ExpectQuery("UPDATE users").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.RecordLoginFailure(context.Background(), 99, 5, 30*time.Minute)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestUserRepository_ResetLoginSecurity(t *testing.T) {
	repo, mock := newTestUserRepo(t)

	mock.ExpectExec("UPDATE users").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.ResetLoginSecurity(context.Background(), 3)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateMembership(t *testing.T) {
	repo, mock := newTestUserRepo(t)

	expireAt := time.Now().Add(30 * 24 * time.Hour)
	startedAt := time.Now()

	mock.ExpectExec("UPDATE users").
		WithArgs(int64(3), models.TierPro, expireAt, &startedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateMembership(context.Background(), 3, models.TierPro, expireAt, &startedAt)
	assert.NoError(t, err)
}

func TestUserRepository_DowngradeExpired(t *testing.T) {
	repo, mock := newTestUserRepo(t)

	now := time.Now()
	expired := now.Add(-time.Hour)

	mock.ExpectQuery("UPDATE users").
		WithArgs(now).
		WillReturnRows(userRows().AddRow(
			int64(4), "bob", "bob@example.com", "$2a$10$hash", models.RoleUser,
			models.TierFree, expired, now.Add(-40*24*time.Hour), 0, nil, nil, true, now, now,
		))

	downgraded, err := repo.DowngradeExpired(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, downgraded, 1)
	assert.Equal(t, models.TierFree, downgraded[0].MembershipTier)
	require.NotNil(t, downgraded[0].MembershipExpireAt)
}

func TestUserRepository_List(t *testing.T) {
	repo, mock := newTestUserRepo(t)

	now := time.Now()

	mock.ExpectQuery(`SELECT count\(\*\) FROM users`).
		WithArgs("%ali%", "%ali%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs("%ali%", "%ali%").
		WillReturnRows(userRows().AddRow(
			int64(1), "alice", "alice@example.com", "$2a$10$hash", models.RoleUser,
			models.TierFree, nil, nil, 0, nil, nil, true, now, now,
		))

	users, total, err := repo.List(context.Background(), UserFilter{Search: "ali", Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)
}

func TestUserRepository_Counts(t *testing.T) {
	repo, mock := newTestUserRepo(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM users`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	total, err := repo.CountAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), total)

	mock.ExpectQuery(`SELECT count\(\*\) FROM users`).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(40))

	active, err := repo.CountActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(40), active)
}

func TestUserRepository_RegistrationTrend(t *testing.T) {
	repo, mock := newTestUserRepo(t)

	mock.ExpectQuery("SELECT to_char").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"day", "count"}).
			AddRow("2026-08-30", 2).
			AddRow("2026-08-31", 5))

	points, err := repo.RegistrationTrend(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "2026-08-30", points[0].Date)
	assert.Equal(t, int64(5), points[1].Count)
}

func TestUserRepository_Delete(t *testing.T) {
	t.Run("deleting missing user maps to ErrUserNotFound", func(t *testing.T) {
		repo, mock := newTestUserRepo(t)

		mock.ExpectExec("DELETE FROM users").
			WithArgs(int64(99)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), 99)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("driver error is wrapped", func(t *testing.T) {
		repo, mock := newTestUserRepo(t)

		mock.ExpectExec("DELETE FROM users").
			WillReturnError(errors.New("connection reset"))

		err := repo.Delete(context.Background(), 1)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUserNotFound)
	})
}
