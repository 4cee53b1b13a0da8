// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ikunfydeos-tech/APIKey/internal/config"
	"github.com/ikunfydeos-tech/APIKey/internal/logger"
	"github.com/ikunfydeos-tech/APIKey/internal/store"
	"github.com/ikunfydeos-tech/APIKey/models"
)

// Webhook processing constants per the payment platform contract.
const (
	orderStatusPaid = 2
	daysPerMonth    = 30

	proAmountThreshold   = 49
	basicAmountThreshold = 19
)

// Platform-facing webhook outcomes.
const (
	WebhookOK      = "ok"
	WebhookIgnored = "ignored"
)

// membershipService is the concrete implementation of MembershipService.
type membershipService struct {
	userRepository store.UserRepository
	audit          auditRecorder

	// webhookToken signs platform callbacks. Verification is mandatory
	// in production; in development an empty token skips it.
	webhookToken    string
	requireWebhooks bool

	logger *logger.Logger
}

// NewMembershipService constructs a MembershipService from the payment
// configuration.
func NewMembershipService(
	userRepository store.UserRepository,
	auditRepository store.AuditRepository,
	appCfg config.App,
	paymentCfg config.Payment,
	logger *logger.Logger,
) MembershipService {
	return &membershipService{
		userRepository:  userRepository,
		audit:           auditRecorder{auditRepository: auditRepository},
		webhookToken:    paymentCfg.WebhookToken,
		requireWebhooks: appCfg.IsProduction(),
		logger:          logger,
	}
}

// HandlePaymentEvent processes one platform callback.
//
// A valid paid order (status 2) with a parsable "user_N" remark extends
// the account's membership: the tier follows the paid amount (>=49 pro,
// >=19 basic, below that ignored), the duration is months x 30 days, and
// the extension starts from the later of now and the current expiry.
// membership_started_at is written only on the first purchase.
//
// Returns ErrInvalidSignature on a failed MD5 check, WebhookIgnored for
// unpaid/underpaid/unattributable orders, and WebhookOK on success.
func (m *membershipService) HandlePaymentEvent(ctx context.Context, event models.PaymentWebhookRequest) (string, error) {
	log := logger.FromContext(ctx)

	if err := m.verifySignature(event); err != nil {
		return "", err
	}

	if event.EC != 200 {
		log.Warn().Int("ec", event.EC).Str("em", event.EM).Msg("payment platform reported an error")
		return WebhookIgnored, nil
	}

	order := event.Data.Order
	if order.Status != orderStatusPaid {
		return WebhookIgnored, nil
	}

	userID, err := parseOrderUserID(order.Remark)
	if err != nil {
		log.Warn().Str("remark", order.Remark).Msg("order remark does not identify a user")
		return WebhookIgnored, nil
	}

	tier, ok := tierForAmount(order.TotalAmount)
	if !ok {
		log.Warn().Str("amount", order.TotalAmount).Msg("paid amount below membership threshold")
		return WebhookIgnored, nil
	}

	months := order.Month
	if months < 1 {
		months = 1
	}
	extension := time.Duration(months*daysPerMonth) * 24 * time.Hour

	user, err := m.userRepository.FindByID(ctx, userID)
	if err != nil {
		log.Err(err).Int64("userID", userID).Msg("webhook user lookup failed")
		return "", fmt.Errorf("webhook user lookup failed: %w", err)
	}

	now := time.Now()
	base := now
	if user.MembershipExpireAt != nil && user.MembershipExpireAt.After(now) {
		base = *user.MembershipExpireAt
	}
	expireAt := base.Add(extension)

	startedAt := now
	if err := m.userRepository.UpdateMembership(ctx, userID, tier, expireAt, &startedAt); err != nil {
		return "", fmt.Errorf("membership update failed: %w", err)
	}

	m.audit.record(ctx, userID, ActionMembership, models.LogStatusSuccess,
		fmt.Sprintf("%s until %s (order %s)", tier, expireAt.Format("2006-01-02"), order.OutTradeNo), "")
	log.Info().Int64("userID", userID).Str("tier", tier).Time("expireAt", expireAt).Msg("membership extended")

	return WebhookOK, nil
}

// verifySignature checks the MD5 over the sorted signed parameters plus
// the shared token. Production rejects unverifiable calls; development
// verifies only when a token is configured.
func (m *membershipService) verifySignature(event models.PaymentWebhookRequest) error {
	if m.webhookToken == "" {
		if m.requireWebhooks {
			return ErrInvalidSignature
		}
		return nil
	}

	if len(event.Params) == 0 || event.Sign == "" {
		if m.requireWebhooks {
			return ErrInvalidSignature
		}
		return nil
	}

	keys := make([]string, 0, len(event.Params))
	for k := range event.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+event.Params[k])
	}
	signStr := strings.Join(pairs, "&") + m.webhookToken

	sum := md5.Sum([]byte(signStr))
	if hex.EncodeToString(sum[:]) != event.Sign {
		return ErrInvalidSignature
	}

	return nil
}

// parseOrderUserID extracts the account id from the order remark, which
// carries either "user_N" or a bare numeric id.
func parseOrderUserID(remark string) (int64, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(remark), "user_")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid order remark %q", remark)
	}
	return id, nil
}

// tierForAmount maps the paid amount to a membership tier.
func tierForAmount(amount string) (string, bool) {
	value, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return "", false
	}
	switch {
	case value >= proAmountThreshold:
		return models.TierPro, true
	case value >= basicAmountThreshold:
		return models.TierBasic, true
	default:
		return "", false
	}
}

// Status summarizes the caller's tier state without touching the store.
func (m *membershipService) Status(ctx context.Context, user models.User) models.MembershipStatusResponse {
	now := time.Now()
	resp := models.MembershipStatusResponse{
		Tier:      user.MembershipTier,
		Active:    user.MembershipActive(now),
		ExpireAt:  user.MembershipExpireAt,
		StartedAt: user.MembershipStartedAt,
	}
	if resp.Active {
		resp.DaysLeft = int(user.MembershipExpireAt.Sub(now).Hours() / 24)
	}
	return resp
}

// SweepExpired downgrades every lapsed paid tier to free in one statement.
// The expiry timestamp is kept on the row for support queries; only the
// tier changes.
func (m *membershipService) SweepExpired(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx)

	downgraded, err := m.userRepository.DowngradeExpired(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("membership sweep failed: %w", err)
	}

	for _, user := range downgraded {
		m.audit.record(ctx, user.UserID, ActionMembershipLoss, models.LogStatusSuccess, "downgraded to free", "")
	}
	if len(downgraded) > 0 {
		log.Info().Int("count", len(downgraded)).Msg("expired memberships downgraded")
	}

	return len(downgraded), nil
}
