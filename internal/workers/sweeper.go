// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"sync"
	"time"

	"github.com/ikunfydeos-tech/APIKey/internal/logger"
	"github.com/ikunfydeos-tech/APIKey/internal/service"
)

// DefaultSweepInterval is how often expired memberships are downgraded
// when the configuration does not say otherwise.
const DefaultSweepInterval = 24 * time.Hour

// MembershipSweeper periodically downgrades lapsed paid accounts. Expiry
// is also evaluated lazily on read, so a delayed or missed sweep never
// grants extra paid time; the sweep only settles the stored tier.
type MembershipSweeper struct {
	membershipService service.MembershipService
	interval          time.Duration
	logger            *logger.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMembershipSweeper builds a sweeper running every interval
// (DefaultSweepInterval if non-positive).
func NewMembershipSweeper(membershipService service.MembershipService, interval time.Duration, logger *logger.Logger) *MembershipSweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &MembershipSweeper{
		membershipService: membershipService,
		interval:          interval,
		logger:            logger,
	}
}

// Start implements [Worker]. One pass runs immediately so expiries that
// happened while the process was down are settled before the first tick.
func (s *MembershipSweeper) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info().Dur("interval", s.interval).Msg("membership sweeper started")
}

// Stop implements [Worker].
func (s *MembershipSweeper) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.wg.Wait()
	s.logger.Info().Msg("membership sweeper stopped")
}

func (s *MembershipSweeper) run(ctx context.Context) {
	defer s.wg.Done()

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *MembershipSweeper) sweep(ctx context.Context) {
	downgraded, err := s.membershipService.SweepExpired(ctx)
	if err != nil {
		s.logger.Err(err).Msg("membership sweep failed")
		return
	}
	if downgraded > 0 {
		s.logger.Info().Int("downgraded", downgraded).Msg("expired memberships downgraded")
	}
}
