// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ikunfydeos-tech/APIKey/internal/crypto"
	"github.com/ikunfydeos-tech/APIKey/internal/logger"
	"github.com/ikunfydeos-tech/APIKey/internal/store"
	"github.com/ikunfydeos-tech/APIKey/internal/utils"
	"github.com/ikunfydeos-tech/APIKey/models"
)

// Per-tier stored key quotas. -1 means unlimited.
var tierKeyLimits = map[string]int64{
	models.TierFree:  10,
	models.TierBasic: 100,
	models.TierPro:   -1,
}

const probeTimeout = 10 * time.Second

// keyService is the concrete implementation of KeyService.
//
// Plaintext credentials are encrypted and previewed at write time; the
// store only ever holds the ciphertext blob and the masked preview.
type keyService struct {
	keyRepository      store.KeyRepository
	providerRepository store.ProviderRepository
	audit              auditRecorder
	cipher             crypto.Cipher
	httpClient         *utils.HTTPClient
	logger             *logger.Logger
}

// NewKeyService constructs a KeyService around the given repositories and
// the AES-GCM cipher derived from the deployment master secret.
func NewKeyService(
	keyRepository store.KeyRepository,
	providerRepository store.ProviderRepository,
	auditRepository store.AuditRepository,
	cipher crypto.Cipher,
	logger *logger.Logger,
) KeyService {
	return &keyService{
		keyRepository:      keyRepository,
		providerRepository: providerRepository,
		audit:              auditRecorder{auditRepository: auditRepository},
		cipher:             cipher,
		httpClient:         utils.NewHTTPClient(probeTimeout),
		logger:             logger,
	}
}

// Create validates, encrypts, and stores a new credential.
//
// Returns the stored key (ciphertext omitted from serialization) or:
//   - ErrInvalidDataProvided for a missing name, key, or provider.
//   - ErrKeyQuotaExceeded when the tier quota is reached.
//   - store.ErrKeyNameAlreadyExists (wrapped) on a per-user name clash.
func (s *keyService) Create(ctx context.Context, user models.User, req models.CreateKeyRequest, client ClientInfo) (models.APIKey, error) {
	log := logger.FromContext(ctx)

	if req.KeyName == "" || req.APIKey == "" || req.ProviderID <= 0 {
		return models.APIKey{}, ErrInvalidDataProvided
	}

	limit := keyLimitForTier(effectiveTier(user))
	if limit >= 0 {
		used, err := s.keyRepository.CountByUser(ctx, user.UserID)
		if err != nil {
			return models.APIKey{}, fmt.Errorf("key count failed: %w", err)
		}
		if used >= limit {
			return models.APIKey{}, ErrKeyQuotaExceeded
		}
	}

	if _, err := s.providerRepository.FindByID(ctx, req.ProviderID); err != nil {
		return models.APIKey{}, fmt.Errorf("provider lookup failed: %w", err)
	}

	expiresAt, err := parseExpiry(req.ExpiresAt)
	if err != nil {
		return models.APIKey{}, ErrInvalidDataProvided
	}

	encrypted, err := s.cipher.EncryptString(req.APIKey)
	if err != nil {
		log.Err(err).Str("func", "*keyService.Create").Msg("key encryption failed")
		return models.APIKey{}, fmt.Errorf("key encryption failed: %w", err)
	}

	created, err := s.keyRepository.Create(ctx, models.APIKey{
		UserID:       user.UserID,
		ProviderID:   req.ProviderID,
		ModelID:      req.ModelID,
		KeyName:      req.KeyName,
		EncryptedKey: encrypted,
		Preview:      crypto.Preview(req.APIKey),
		Notes:        req.Notes,
		ExpiresAt:    expiresAt,
	})
	if err != nil {
		return models.APIKey{}, fmt.Errorf("key creation failed: %w", err)
	}

	s.audit.record(ctx, user.UserID, ActionKeyCreate, models.LogStatusSuccess, created.KeyName, client.IPAddress)

	return created, nil
}

// List pages the caller's keys. Ciphertext stays in the struct but is
// never serialized.
func (s *keyService) List(ctx context.Context, userID int64, filter store.KeyFilter) ([]models.APIKey, int64, error) {
	return s.keyRepository.List(ctx, userID, filter)
}

// Reveal decrypts the stored credential for its owner and bumps
// last_used_at. The plaintext is returned to the caller and never logged.
func (s *keyService) Reveal(ctx context.Context, userID, keyID int64, client ClientInfo) (models.APIKey, string, error) {
	log := logger.FromContext(ctx)

	key, err := s.keyRepository.FindByID(ctx, userID, keyID)
	if err != nil {
		return models.APIKey{}, "", fmt.Errorf("key lookup failed: %w", err)
	}

	plaintext, err := s.cipher.DecryptString(key.EncryptedKey)
	if err != nil {
		log.Err(err).Int64("keyID", keyID).Msg("key decryption failed")
		return models.APIKey{}, "", fmt.Errorf("key decryption failed: %w", err)
	}

	if err := s.keyRepository.TouchLastUsed(ctx, keyID); err != nil {
		log.Err(err).Int64("keyID", keyID).Msg("touching last_used_at failed")
	}
	s.audit.record(ctx, userID, ActionKeyReveal, models.LogStatusSuccess, key.KeyName, client.IPAddress)

	return key, plaintext, nil
}

// Update applies a partial update. A new plaintext in req.APIKey triggers
// re-encryption and a fresh preview in the same statement; all other
// fields never touch the stored ciphertext.
func (s *keyService) Update(ctx context.Context, userID, keyID int64, req models.UpdateKeyRequest, client ClientInfo) (models.APIKey, error) {
	log := logger.FromContext(ctx)

	upd := store.KeyUpdate{
		KeyName: req.KeyName,
		ModelID: req.ModelID,
		Status:  req.Status,
		Notes:   req.Notes,
	}

	if req.ExpiresAt != nil {
		expiresAt, err := parseExpiry(*req.ExpiresAt)
		if err != nil {
			return models.APIKey{}, ErrInvalidDataProvided
		}
		upd.ExpiresAt = expiresAt
	}

	if req.APIKey != nil {
		if *req.APIKey == "" {
			return models.APIKey{}, ErrInvalidDataProvided
		}
		encrypted, err := s.cipher.EncryptString(*req.APIKey)
		if err != nil {
			log.Err(err).Str("func", "*keyService.Update").Msg("key encryption failed")
			return models.APIKey{}, fmt.Errorf("key encryption failed: %w", err)
		}
		preview := crypto.Preview(*req.APIKey)
		upd.Encrypted = &encrypted
		upd.Preview = &preview
	}

	updated, err := s.keyRepository.Update(ctx, userID, keyID, upd)
	if err != nil {
		return models.APIKey{}, fmt.Errorf("key update failed: %w", err)
	}

	s.audit.record(ctx, userID, ActionKeyUpdate, models.LogStatusSuccess, updated.KeyName, client.IPAddress)

	return updated, nil
}

// Delete removes a stored credential.
func (s *keyService) Delete(ctx context.Context, userID, keyID int64, client ClientInfo) error {
	key, err := s.keyRepository.FindByID(ctx, userID, keyID)
	if err != nil {
		return fmt.Errorf("key lookup failed: %w", err)
	}

	if err := s.keyRepository.Delete(ctx, userID, keyID); err != nil {
		return fmt.Errorf("key deletion failed: %w", err)
	}

	s.audit.record(ctx, userID, ActionKeyDelete, models.LogStatusSuccess, key.KeyName, client.IPAddress)

	return nil
}

// Limits reports the tier quota and current usage.
func (s *keyService) Limits(ctx context.Context, user models.User) (models.KeyLimitsResponse, error) {
	used, err := s.keyRepository.CountByUser(ctx, user.UserID)
	if err != nil {
		return models.KeyLimitsResponse{}, fmt.Errorf("key count failed: %w", err)
	}

	tier := effectiveTier(user)
	return models.KeyLimitsResponse{
		Tier:  tier,
		Limit: keyLimitForTier(tier),
		Used:  used,
	}, nil
}

// Probe checks whether the provider endpoint accepts the stored key by
// listing its model catalogue, which consumes no quota. The decrypted key
// travels only inside the outbound request.
func (s *keyService) Probe(ctx context.Context, userID, keyID int64) (models.KeyProbeResponse, error) {
	log := logger.FromContext(ctx)

	key, err := s.keyRepository.FindByID(ctx, userID, keyID)
	if err != nil {
		return models.KeyProbeResponse{}, fmt.Errorf("key lookup failed: %w", err)
	}
	provider, err := s.providerRepository.FindByID(ctx, key.ProviderID)
	if err != nil {
		return models.KeyProbeResponse{}, fmt.Errorf("provider lookup failed: %w", err)
	}

	if provider.IsCustom {
		return models.KeyProbeResponse{Message: "custom providers do not support connectivity checks"}, nil
	}
	// No public catalogue endpoint; only the key format can be checked.
	if provider.Name == "anthropic" {
		return models.KeyProbeResponse{Reachable: true, Message: "key format accepted; validity not verified"}, nil
	}

	plaintext, err := s.cipher.DecryptString(key.EncryptedKey)
	if err != nil {
		log.Err(err).Int64("keyID", keyID).Msg("key decryption failed")
		return models.KeyProbeResponse{}, fmt.Errorf("key decryption failed: %w", err)
	}

	request := s.httpClient.R().SetContext(ctx)
	url := strings.TrimRight(provider.BaseURL, "/") + "/models"

	// Google passes the key as a query parameter instead of a header.
	if provider.Name == "google" {
		request.SetQueryParam("key", plaintext)
	} else {
		request.SetAuthToken(plaintext)
	}

	start := time.Now()
	resp, err := request.Get(url)
	latency := time.Since(start).Milliseconds()

	if err := s.keyRepository.TouchLastUsed(ctx, keyID); err != nil {
		log.Err(err).Int64("keyID", keyID).Msg("touching last_used_at failed")
	}

	if err != nil {
		return models.KeyProbeResponse{LatencyMS: latency, Message: "provider unreachable"}, nil
	}

	result := models.KeyProbeResponse{
		Reachable:  resp.StatusCode() >= 200 && resp.StatusCode() < 300,
		StatusCode: resp.StatusCode(),
		LatencyMS:  latency,
	}
	if !result.Reachable {
		result.Message = "provider rejected the key"
	}

	return result, nil
}

// VisibleProviders lists active global providers plus the caller's custom
// ones.
func (s *keyService) VisibleProviders(ctx context.Context, userID int64) ([]models.Provider, error) {
	return s.providerRepository.ListVisible(ctx, userID)
}

// CreateCustomProvider stores a user-private provider row.
func (s *keyService) CreateCustomProvider(ctx context.Context, userID int64, req models.CreateCustomProviderRequest) (models.Provider, error) {
	if req.Name == "" || req.BaseURL == "" {
		return models.Provider{}, ErrInvalidDataProvided
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = req.Name
	}

	created, err := s.providerRepository.Create(ctx, models.Provider{
		Name:        req.Name,
		DisplayName: displayName,
		BaseURL:     req.BaseURL,
		DocsURL:     req.DocsURL,
		IsCustom:    true,
		CreatedBy:   &userID,
	})
	if err != nil {
		return models.Provider{}, fmt.Errorf("custom provider creation failed: %w", err)
	}

	return created, nil
}

// DeleteCustomProvider removes a custom provider owned by the caller,
// cascading to its stored keys.
func (s *keyService) DeleteCustomProvider(ctx context.Context, userID, providerID int64) error {
	if err := s.providerRepository.DeleteCustom(ctx, userID, providerID); err != nil {
		return fmt.Errorf("custom provider deletion failed: %w", err)
	}
	return nil
}

// Models lists the full model catalogue.
func (s *keyService) Models(ctx context.Context) ([]models.APIModel, error) {
	return s.providerRepository.ListModels(ctx)
}

// ModelsByProvider lists one provider's active models.
func (s *keyService) ModelsByProvider(ctx context.Context, providerID int64) ([]models.APIModel, error) {
	return s.providerRepository.ModelsByProvider(ctx, providerID)
}

// effectiveTier treats a lapsed paid tier as free for quota purposes even
// before the sweep worker has downgraded the row.
func effectiveTier(user models.User) string {
	if user.MembershipTier != models.TierFree && !user.MembershipActive(time.Now()) {
		return models.TierFree
	}
	return user.MembershipTier
}

func keyLimitForTier(tier string) int64 {
	if limit, ok := tierKeyLimits[tier]; ok {
		return limit
	}
	return tierKeyLimits[models.TierFree]
}

func parseExpiry(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
