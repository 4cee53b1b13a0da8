// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package ratelimit

import "errors"

var (
	// ErrInvalidLimit is returned when a limiter is built with a
	// non-positive request limit.
	ErrInvalidLimit = errors.New("rate limit must be positive")

	// ErrInvalidWindow is returned when a limiter is built with a
	// non-positive window duration.
	ErrInvalidWindow = errors.New("rate limit window must be positive")
)
