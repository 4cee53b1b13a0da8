// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"

	"github.com/ikunfydeos-tech/APIKey/internal/logger"
	"github.com/ikunfydeos-tech/APIKey/models"
)

// userColumns is the canonical column order shared by every user query and
// the scanUser helper.
const userColumns = `id, username, email, password_hash, role, membership_tier,
	membership_expire_at, membership_started_at, login_attempts, locked_until,
	last_login, is_active, created_at, updated_at`

const (
	createUserQuery = `INSERT INTO users (username, email, password_hash, role)
	VALUES ($1, $2, $3, $4)
	RETURNING ` + userColumns + `;`

	findUserByUsernameQuery = `SELECT ` + userColumns + `
	FROM users
	WHERE username = $1;`

	findUserByIDQuery = `SELECT ` + userColumns + `
	FROM users
	WHERE id = $1;`

	recordLoginFailureQuery = `UPDATE users
	SET login_attempts = login_attempts + 1,
		locked_until = CASE WHEN login_attempts + 1 >= $2 THEN now() + $3::interval ELSE locked_until END,
		updated_at = now()
	WHERE id = $1
	RETURNING login_attempts;`

	resetLoginSecurityQuery = `UPDATE users
	SET login_attempts = 0,
		locked_until = NULL,
		last_login = now(),
		updated_at = now()
	WHERE id = $1;`

	updateMembershipQuery = `UPDATE users
	SET membership_tier = $2,
		membership_expire_at = $3,
		membership_started_at = COALESCE(membership_started_at, $4),
		updated_at = now()
	WHERE id = $1;`

	downgradeExpiredQuery = `UPDATE users
	SET membership_tier = 'free',
		updated_at = now()
	WHERE membership_tier <> 'free'
		AND membership_expire_at IS NOT NULL
		AND membership_expire_at < $1
	RETURNING ` + userColumns + `;`

	registrationTrendQuery = `SELECT to_char(created_at::date, 'YYYY-MM-DD') AS day, count(*)
	FROM users
	WHERE created_at >= now() - ($1 || ' days')::interval
	GROUP BY day
	ORDER BY day;`
)

// userRepository is the PostgreSQL-backed implementation of [UserRepository].
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured, request-level tracing of database interactions.
type userRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewUserRepository constructs a [UserRepository] backed by the provided
// database connection and logger.
func NewUserRepository(db *DB, logger *logger.Logger) UserRepository {
	logger.Debug().Msg("creating user repository")
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// scanUser reads one row in userColumns order.
func scanUser(row interface{ Scan(dest ...any) error }) (models.User, error) {
	var u models.User
	err := row.Scan(
		&u.UserID, &u.Username, &u.Email, &u.PasswordHash, &u.Role,
		&u.MembershipTier, &u.MembershipExpireAt, &u.MembershipStartedAt,
		&u.LoginAttempts, &u.LockedUntil, &u.LastLogin, &u.IsActive,
		&u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}

// Create persists a new account and returns the fully populated
// [models.User] with server-assigned fields.
//
// Error handling:
//   - PostgreSQL unique_violation (23505) → [ErrUserAlreadyExists].
//   - Any other driver-level error → wrapped as "unexpected DB error".
func (r *userRepository) Create(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	role := user.Role
	if role == "" {
		role = models.RoleUser
	}

	row := r.db.QueryRowContext(ctx, createUserQuery, user.Username, user.Email, user.PasswordHash, role)
	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*userRepository.Create").Msg("error inserting user")

		switch postgresError(err) {
		case pgerrcode.UniqueViolation:
			return models.User{}, ErrUserAlreadyExists
		default:
			return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
		}
	}

	created, err := scanUser(row)
	if err != nil {
		if postgresError(err) == pgerrcode.UniqueViolation {
			return models.User{}, ErrUserAlreadyExists
		}
		log.Err(err).Str("func", "*userRepository.Create").Msg("error scanning created user")
		return models.User{}, err
	}

	return created, nil
}

// FindByUsername retrieves the account whose username matches exactly.
// Returns [ErrUserNotFound] when no row matches.
func (r *userRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	return r.findOne(ctx, findUserByUsernameQuery, username)
}

// FindByID retrieves the account by primary key. Returns [ErrUserNotFound]
// when no row matches.
func (r *userRepository) FindByID(ctx context.Context, userID int64) (models.User, error) {
	return r.findOne(ctx, findUserByIDQuery, userID)
}

func (r *userRepository) findOne(ctx context.Context, query string, arg any) (models.User, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, query, arg)
	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*userRepository.findOne").Msg("error querying user")
		return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		log.Err(err).Str("func", "*userRepository.findOne").Msg("error scanning user")
		return models.User{}, err
	}

	return user, nil
}

// List pages accounts for the admin console. Filters compose via squirrel:
// search matches username or email, role and tier match exactly.
func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]models.User, int64, error) {
	log := logger.FromContext(ctx)

	base := psql.Select().From("users")
	base = applyUserFilter(base, filter)

	countQuery, countArgs, err := base.Column("count(*)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		log.Err(err).Str("func", "*userRepository.List").Msg("error counting users")
		return nil, 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	listBuilder := applyUserFilter(psql.Select(userColumns).From("users"), filter).
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
		log.Err(err).Str("func", "*userRepository.List").Msg("error listing users")
		return nil, 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return users, total, nil
}

func applyUserFilter(b sq.SelectBuilder, filter UserFilter) sq.SelectBuilder {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		b = b.Where(sq.Or{
			sq.ILike{"username": pattern},
			sq.ILike{"email": pattern},
		})
	}
	if filter.Role != "" {
		b = b.Where(sq.Eq{"role": filter.Role})
	}
	if filter.Tier != "" {
		b = b.Where(sq.Eq{"membership_tier": filter.Tier})
	}
	return b
}

// Delete removes the account. Dependent rows (keys, TOTP, logs, history)
// go with it via ON DELETE CASCADE.
func (r *userRepository) Delete(ctx context.Context, userID int64) error {
	return r.execExpectingRow(ctx, "*userRepository.Delete",
		`DELETE FROM users WHERE id = $1;`, userID)
}

// RecordLoginFailure implements [UserRepository]. The counter increment and
// the conditional lock are a single UPDATE, so concurrent failures cannot
// race past the threshold.
func (r *userRepository) RecordLoginFailure(ctx context.Context, userID int64, threshold int, lockFor time.Duration) (int, error) {
	log := logger.FromContext(ctx)

	interval := fmt.Sprintf("%d seconds", int(lockFor.Seconds()))
	row := r.db.QueryRowContext(ctx, recordLoginFailureQuery, userID, threshold, interval)

	var attempts int
	if err := row.Scan(&attempts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		log.Err(err).Str("func", "*userRepository.RecordLoginFailure").Msg("error recording login failure")
		return 0, fmt.Errorf("unexpected DB error: %w", err)
	}

	return attempts, nil
}

// ResetLoginSecurity implements [UserRepository].
func (r *userRepository) ResetLoginSecurity(ctx context.Context, userID int64) error {
	return r.execExpectingRow(ctx, "*userRepository.ResetLoginSecurity",
		resetLoginSecurityQuery, userID)
}

// UpdatePassword replaces the stored bcrypt hash.
func (r *userRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	return r.execExpectingRow(ctx, "*userRepository.UpdatePassword",
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1;`, userID, passwordHash)
}

// UpdateRole changes the account role.
func (r *userRepository) UpdateRole(ctx context.Context, userID int64, role string) error {
	return r.execExpectingRow(ctx, "*userRepository.UpdateRole",
		`UPDATE users SET role = $2, updated_at = now() WHERE id = $1;`, userID, role)
}

// UpdateActive suspends or reinstates the account.
func (r *userRepository) UpdateActive(ctx context.Context, userID int64, active bool) error {
	return r.execExpectingRow(ctx, "*userRepository.UpdateActive",
		`UPDATE users SET is_active = $2, updated_at = now() WHERE id = $1;`, userID, active)
}

// UpdateMembership sets the tier and expiry. started_at is only written
// the first time a membership is purchased (COALESCE keeps the original).
func (r *userRepository) UpdateMembership(ctx context.Context, userID int64, tier string, expireAt time.Time, startedAt *time.Time) error {
	return r.execExpectingRow(ctx, "*userRepository.UpdateMembership",
		updateMembershipQuery, userID, tier, expireAt, startedAt)
}

// DowngradeExpired implements [UserRepository].
func (r *userRepository) DowngradeExpired(ctx context.Context, now time.Time) ([]models.User, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, downgradeExpiredQuery, now)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.DowngradeExpired").Msg("error downgrading expired memberships")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return users, nil
}

// CountAll returns the total number of accounts.
func (r *userRepository) CountAll(ctx context.Context) (int64, error) {
	return r.countWhere(ctx, sq.Expr("TRUE"))
}

// CountActive returns the number of non-suspended accounts.
func (r *userRepository) CountActive(ctx context.Context) (int64, error) {
	return r.countWhere(ctx, sq.Eq{"is_active": true})
}

// CountPaid returns the number of accounts with an unexpired paid tier.
func (r *userRepository) CountPaid(ctx context.Context, now time.Time) (int64, error) {
	return r.countWhere(ctx, sq.And{
		sq.NotEq{"membership_tier": models.TierFree},
		sq.Gt{"membership_expire_at": now},
	})
}

// CountCreatedSince returns the number of accounts registered after since.
func (r *userRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	return r.countWhere(ctx, sq.GtOrEq{"created_at": since})
}

func (r *userRepository) countWhere(ctx context.Context, where any) (int64, error) {
	log := logger.FromContext(ctx)

	query, args, err := psql.Select("count(*)").From("users").Where(where).ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var count int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		log.Err(err).Str("func", "*userRepository.countWhere").Msg("error counting users")
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return count, nil
}

// RegistrationTrend returns per-day registration counts for the last days
// days. Days without registrations are absent from the result.
func (r *userRepository) RegistrationTrend(ctx context.Context, days int) ([]models.TrendPoint, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, registrationTrendQuery, days)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.RegistrationTrend").Msg("error querying registration trend")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	points := make([]models.TrendPoint, 0)
	for rows.Next() {
		var p models.TrendPoint
		if err := rows.Scan(&p.Date, &p.Count); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return points, nil
}

// execExpectingRow runs a DML statement that must affect exactly one user
// row; zero affected rows maps to [ErrUserNotFound].
func (r *userRepository) execExpectingRow(ctx context.Context, fn, query string, args ...any) error {
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
		return ErrUserNotFound
	}

	return nil
}
