// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/ikunfydeos-tech/APIKey/internal/logger"
	"github.com/ikunfydeos-tech/APIKey/models"
)

const logColumns = `id, user_id, action, status, details, ip_address, created_at`

const historyColumns = `id, user_id, ip_address, user_agent, success, created_at`

const (
	insertLogQuery = `INSERT INTO log_entries (user_id, action, status, details, ip_address)
	VALUES ($1, $2, $3, $4, $5);`

	distinctActionsQuery = `SELECT DISTINCT action
	FROM log_entries
	WHERE user_id = $1
	ORDER BY action;`

	insertLoginHistoryQuery = `INSERT INTO login_history (user_id, ip_address, user_agent, success)
	VALUES ($1, $2, $3, $4);`
)

// auditRepository is the PostgreSQL-backed implementation of
// [AuditRepository]. Inserts retry once on transient driver errors so a
// flaky connection does not silently drop audit records.
type auditRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewAuditRepository constructs an [AuditRepository] backed by the provided
// database connection and logger.
func NewAuditRepository(db *DB, logger *logger.Logger) AuditRepository {
	logger.Debug().Msg("creating audit repository")
	return &auditRepository{
		db:     db,
		logger: logger,
	}
}

// InsertLog appends one operation audit record.
func (r *auditRepository) InsertLog(ctx context.Context, entry models.LogEntry) error {
	log := logger.FromContext(ctx)

	_, err := r.db.ExecContext(ctx, insertLogQuery,
		entry.UserID, entry.Action, entry.Status, entry.Details, entry.IPAddress)
	if err != nil && r.db.Retryable(err) {
		log.Warn().Str("func", "*auditRepository.InsertLog").Msg("retrying audit insert after transient error")
		_, err = r.db.ExecContext(ctx, insertLogQuery,
			entry.UserID, entry.Action, entry.Status, entry.Details, entry.IPAddress)
	}
	if err != nil {
		log.Err(err).Str("func", "*auditRepository.InsertLog").Msg("error inserting log entry")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	return nil
}

// ListLogs pages the user's audit records, newest first.
func (r *auditRepository) ListLogs(ctx context.Context, userID int64, filter LogFilter) ([]models.LogEntry, int64, error) {
	log := logger.FromContext(ctx)

	where := sq.And{sq.Eq{"user_id": userID}}
	if filter.Action != "" {
		where = append(where, sq.Eq{"action": filter.Action})
	}
	if filter.Status != "" {
		where = append(where, sq.Eq{"status": filter.Status})
	}

	countQuery, countArgs, err := psql.Select("count(*)").From("log_entries").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		log.Err(err).Str("func", "*auditRepository.ListLogs").Msg("error counting log entries")
		return nil, 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	listBuilder := psql.Select(logColumns).From("log_entries").
		Where(where).
		OrderBy("created_at DESC", "id DESC")
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
		log.Err(err).Str("func", "*auditRepository.ListLogs").Msg("error listing log entries")
		return nil, 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	entries := make([]models.LogEntry, 0)
	for rows.Next() {
		var e models.LogEntry
		if err := rows.Scan(&e.LogID, &e.UserID, &e.Action, &e.Status, &e.Details, &e.IPAddress, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return entries, total, nil
}

// DistinctActions returns the action names present in the user's log, for
// filter dropdowns.
func (r *auditRepository) DistinctActions(ctx context.Context, userID int64) ([]string, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, distinctActionsQuery, userID)
	if err != nil {
		log.Err(err).Str("func", "*auditRepository.DistinctActions").Msg("error querying distinct actions")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	actions := make([]string, 0)
	for rows.Next() {
		var action string
		if err := rows.Scan(&action); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		actions = append(actions, action)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return actions, nil
}

// InsertLoginHistory appends one authentication attempt record.
func (r *auditRepository) InsertLoginHistory(ctx context.Context, record models.LoginHistory) error {
	log := logger.FromContext(ctx)

	_, err := r.db.ExecContext(ctx, insertLoginHistoryQuery,
		record.UserID, record.IPAddress, record.UserAgent, record.Success)
	if err != nil {
		log.Err(err).Str("func", "*auditRepository.InsertLoginHistory").Msg("error inserting login history")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	return nil
}

// ListLoginHistory pages the user's authentication attempts, newest first.
func (r *auditRepository) ListLoginHistory(ctx context.Context, userID int64, limit, offset int) ([]models.LoginHistory, int64, error) {
	log := logger.FromContext(ctx)

	var total int64
	countQuery := `SELECT count(*) FROM login_history WHERE user_id = $1;`
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&total); err != nil {
		log.Err(err).Str("func", "*auditRepository.ListLoginHistory").Msg("error counting login history")
		return nil, 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	listBuilder := psql.Select(historyColumns).From("login_history").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		listBuilder = listBuilder.Limit(uint64(limit))
	}
	if offset > 0 {
		listBuilder = listBuilder.Offset(uint64(offset))
	}

	listQuery, listArgs, err := listBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, listQuery, listArgs...)
	if err != nil {
		log.Err(err).Str("func", "*auditRepository.ListLoginHistory").Msg("error listing login history")
		return nil, 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	records := make([]models.LoginHistory, 0)
	for rows.Next() {
		var h models.LoginHistory
		if err := rows.Scan(&h.HistoryID, &h.UserID, &h.IPAddress, &h.UserAgent, &h.Success, &h.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		records = append(records, h)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return records, total, nil
}
