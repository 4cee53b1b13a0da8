// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package workers runs the application's background jobs. It defines the
// Worker lifecycle interface, a Workers aggregate for unified start and
// shutdown, and the membership expiry sweeper.
package workers

import "context"

// Worker is a background job with an explicit lifecycle.
//
// Start launches the job's goroutine and returns immediately; the job
// stops when ctx is cancelled or Stop is called. Stop blocks until the
// job has fully drained.
type Worker interface {
	Start(ctx context.Context)
	Stop()
}
