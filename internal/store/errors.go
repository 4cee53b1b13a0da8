// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrUserAlreadyExists is returned when registration collides with an
	// existing username or email (PostgreSQL unique violation).
	ErrUserAlreadyExists = errors.New("username or email already exists")

	// ErrUserNotFound is returned when a query expected to match a user
	// record produces an empty result set.
	ErrUserNotFound = errors.New("user not found")

	// ErrKeyNotFound is returned when an API key lookup scoped to a user
	// matches nothing, either because the key does not exist or it belongs
	// to another account.
	ErrKeyNotFound = errors.New("api key not found")

	// ErrKeyNameAlreadyExists is returned when an API key insert or rename
	// collides with the per-user unique key name constraint.
	ErrKeyNameAlreadyExists = errors.New("key name already exists")

	// ErrProviderNotFound is returned when a provider lookup matches
	// nothing visible to the caller.
	ErrProviderNotFound = errors.New("provider not found")

	// ErrProviderAlreadyExists is returned when a global provider insert
	// collides with an existing provider name.
	ErrProviderAlreadyExists = errors.New("provider already exists")

	// ErrModelNotFound is returned when a catalogue model lookup matches
	// nothing.
	ErrModelNotFound = errors.New("model not found")

	// ErrTOTPNotFound is returned when the user has no TOTP configuration
	// row.
	ErrTOTPNotFound = errors.New("totp configuration not found")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a query against the
	// database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrScanningRow is returned when scanning column values from a single
	// result row into a destination struct fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")
)
