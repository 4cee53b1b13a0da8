// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"

	"github.com/ikunfydeos-tech/APIKey/internal/logger"
	"github.com/ikunfydeos-tech/APIKey/models"
)

const providerColumns = `id, name, display_name, base_url, docs_url, is_custom,
	created_by, is_active, sort_order, created_at`

const modelColumns = `id, provider_id, name, display_name, category,
	context_window, is_default, is_active, created_at`

const (
	listVisibleProvidersQuery = `SELECT ` + providerColumns + `
	FROM api_providers
	WHERE is_active AND (NOT is_custom OR created_by = $1)
	ORDER BY sort_order, id;`

	listAllProvidersQuery = `SELECT ` + providerColumns + `
	FROM api_providers
	ORDER BY sort_order, id;`

	findProviderByIDQuery = `SELECT ` + providerColumns + `
	FROM api_providers
	WHERE id = $1;`

	createProviderQuery = `INSERT INTO api_providers
	(name, display_name, base_url, docs_url, is_custom, created_by, is_active, sort_order)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING ` + providerColumns + `;`

	updateProviderQuery = `UPDATE api_providers
	SET name = $2, display_name = $3, base_url = $4, docs_url = $5, sort_order = $6
	WHERE id = $1;`

	listModelsQuery = `SELECT ` + modelColumns + `
	FROM api_models
	ORDER BY provider_id, id;`

	modelsByProviderQuery = `SELECT ` + modelColumns + `
	FROM api_models
	WHERE provider_id = $1 AND is_active
	ORDER BY is_default DESC, id;`

	createModelQuery = `INSERT INTO api_models
	(provider_id, name, display_name, category, context_window, is_default, is_active)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING ` + modelColumns + `;`

	updateModelQuery = `UPDATE api_models
	SET name = $2, display_name = $3, category = $4, context_window = $5, is_default = $6, is_active = $7
	WHERE id = $1;`
)

// providerRepository is the PostgreSQL-backed implementation of
// [ProviderRepository]. Global catalogue rows and user-created custom rows
// share the api_providers table, disambiguated by is_custom/created_by.
type providerRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewProviderRepository constructs a [ProviderRepository] backed by the
// provided database connection and logger.
func NewProviderRepository(db *DB, logger *logger.Logger) ProviderRepository {
	logger.Debug().Msg("creating provider repository")
	return &providerRepository{
		db:     db,
		logger: logger,
	}
}

func scanProvider(row interface{ Scan(dest ...any) error }) (models.Provider, error) {
	var p models.Provider
	err := row.Scan(
		&p.ProviderID, &p.Name, &p.DisplayName, &p.BaseURL, &p.DocsURL,
		&p.IsCustom, &p.CreatedBy, &p.IsActive, &p.SortOrder, &p.CreatedAt,
	)
	return p, err
}

func scanModel(row interface{ Scan(dest ...any) error }) (models.APIModel, error) {
	var m models.APIModel
	err := row.Scan(
		&m.ModelID, &m.ProviderID, &m.Name, &m.DisplayName, &m.Category,
		&m.ContextWindow, &m.IsDefault, &m.IsActive, &m.CreatedAt,
	)
	return m, err
}

// ListVisible implements [ProviderRepository].
func (r *providerRepository) ListVisible(ctx context.Context, userID int64) ([]models.Provider, error) {
	return r.listProviders(ctx, listVisibleProvidersQuery, userID)
}

// ListAll returns every catalogue row, including inactive and custom ones.
// Admin-console use only.
func (r *providerRepository) ListAll(ctx context.Context) ([]models.Provider, error) {
	return r.listProviders(ctx, listAllProvidersQuery)
}

func (r *providerRepository) listProviders(ctx context.Context, query string, args ...any) ([]models.Provider, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*providerRepository.listProviders").Msg("error listing providers")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	providers := make([]models.Provider, 0)
	for rows.Next() {
		provider, err := scanProvider(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		providers = append(providers, provider)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return providers, nil
}

// FindByID retrieves one provider. Returns [ErrProviderNotFound] when no
// row matches.
func (r *providerRepository) FindByID(ctx context.Context, providerID int64) (models.Provider, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, findProviderByIDQuery, providerID)
	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*providerRepository.FindByID").Msg("error querying provider")
		return models.Provider{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	provider, err := scanProvider(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Provider{}, ErrProviderNotFound
		}
		log.Err(err).Str("func", "*providerRepository.FindByID").Msg("error scanning provider")
		return models.Provider{}, err
	}

	return provider, nil
}

// Create persists a catalogue or custom provider row. A global name clash
// maps to [ErrProviderAlreadyExists].
func (r *providerRepository) Create(ctx context.Context, provider models.Provider) (models.Provider, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, createProviderQuery,
		provider.Name, provider.DisplayName, provider.BaseURL, provider.DocsURL,
		provider.IsCustom, provider.CreatedBy, true, provider.SortOrder)
	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*providerRepository.Create").Msg("error inserting provider")

		switch postgresError(err) {
		case pgerrcode.UniqueViolation:
			return models.Provider{}, ErrProviderAlreadyExists
		default:
			return models.Provider{}, fmt.Errorf("unexpected DB error: %w", err)
		}
	}

	created, err := scanProvider(row)
	if err != nil {
		if postgresError(err) == pgerrcode.UniqueViolation {
			return models.Provider{}, ErrProviderAlreadyExists
		}
		log.Err(err).Str("func", "*providerRepository.Create").Msg("error scanning created provider")
		return models.Provider{}, err
	}

	return created, nil
}

// Update rewrites the descriptive fields of a provider row.
func (r *providerRepository) Update(ctx context.Context, provider models.Provider) error {
	err := r.execExpectingRow(ctx, "*providerRepository.Update", updateProviderQuery,
		provider.ProviderID, provider.Name, provider.DisplayName,
		provider.BaseURL, provider.DocsURL, provider.SortOrder)
	if errors.Is(err, errNoRowsAffected) {
		return ErrProviderNotFound
	}
	return err
}

// SetActive toggles provider visibility without deleting its keys.
func (r *providerRepository) SetActive(ctx context.Context, providerID int64, active bool) error {
	err := r.execExpectingRow(ctx, "*providerRepository.SetActive",
		`UPDATE api_providers SET is_active = $2 WHERE id = $1;`, providerID, active)
	if errors.Is(err, errNoRowsAffected) {
		return ErrProviderNotFound
	}
	return err
}

// Delete removes a provider and cascades to its models and stored keys.
func (r *providerRepository) Delete(ctx context.Context, providerID int64) error {
	err := r.execExpectingRow(ctx, "*providerRepository.Delete",
		`DELETE FROM api_providers WHERE id = $1;`, providerID)
	if errors.Is(err, errNoRowsAffected) {
		return ErrProviderNotFound
	}
	return err
}

// DeleteCustom implements [ProviderRepository]. The ownership predicate is
// part of the statement, so a user cannot remove global or foreign rows.
func (r *providerRepository) DeleteCustom(ctx context.Context, userID, providerID int64) error {
	err := r.execExpectingRow(ctx, "*providerRepository.DeleteCustom",
		`DELETE FROM api_providers WHERE id = $1 AND is_custom AND created_by = $2;`,
		providerID, userID)
	if errors.Is(err, errNoRowsAffected) {
		return ErrProviderNotFound
	}
	return err
}

// ListModels returns the full model catalogue.
func (r *providerRepository) ListModels(ctx context.Context) ([]models.APIModel, error) {
	return r.listModels(ctx, listModelsQuery)
}

// ModelsByProvider returns the active models of one provider, defaults first.
func (r *providerRepository) ModelsByProvider(ctx context.Context, providerID int64) ([]models.APIModel, error) {
	return r.listModels(ctx, modelsByProviderQuery, providerID)
}

func (r *providerRepository) listModels(ctx context.Context, query string, args ...any) ([]models.APIModel, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*providerRepository.listModels").Msg("error listing models")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	out := make([]models.APIModel, 0)
	for rows.Next() {
		model, err := scanModel(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		out = append(out, model)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return out, nil
}

// CreateModel persists a catalogue model row.
func (r *providerRepository) CreateModel(ctx context.Context, model models.APIModel) (models.APIModel, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, createModelQuery,
		model.ProviderID, model.Name, model.DisplayName, model.Category,
		model.ContextWindow, model.IsDefault, true)
	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*providerRepository.CreateModel").Msg("error inserting model")

		switch postgresError(err) {
		case pgerrcode.ForeignKeyViolation:
			return models.APIModel{}, ErrProviderNotFound
		default:
			return models.APIModel{}, fmt.Errorf("unexpected DB error: %w", err)
		}
	}

	created, err := scanModel(row)
	if err != nil {
		if postgresError(err) == pgerrcode.ForeignKeyViolation {
			return models.APIModel{}, ErrProviderNotFound
		}
		log.Err(err).Str("func", "*providerRepository.CreateModel").Msg("error scanning created model")
		return models.APIModel{}, err
	}

	return created, nil
}

// UpdateModel rewrites a catalogue model row.
func (r *providerRepository) UpdateModel(ctx context.Context, model models.APIModel) error {
	err := r.execExpectingRow(ctx, "*providerRepository.UpdateModel", updateModelQuery,
		model.ModelID, model.Name, model.DisplayName, model.Category,
		model.ContextWindow, model.IsDefault, model.IsActive)
	if errors.Is(err, errNoRowsAffected) {
		return ErrModelNotFound
	}
	return err
}

// DeleteModel removes a catalogue model row. Stored keys referencing it
// fall back to NULL model_id.
func (r *providerRepository) DeleteModel(ctx context.Context, modelID int64) error {
	err := r.execExpectingRow(ctx, "*providerRepository.DeleteModel",
		`DELETE FROM api_models WHERE id = $1;`, modelID)
	if errors.Is(err, errNoRowsAffected) {
		return ErrModelNotFound
	}
	return err
}

// errNoRowsAffected is internal to the provider repository: callers map it
// to the sentinel matching the entity they touched.
var errNoRowsAffected = errors.New("no rows affected")

func (r *providerRepository) execExpectingRow(ctx context.Context, fn, query string, args ...any) error {
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
		return errNoRowsAffected
	}

	return nil
}
