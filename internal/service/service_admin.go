// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ikunfydeos-tech/APIKey/internal/logger"
	"github.com/ikunfydeos-tech/APIKey/internal/store"
	"github.com/ikunfydeos-tech/APIKey/models"
)

const recentUserWindow = 7 * 24 * time.Hour

// adminService is the concrete implementation of AdminService. Role checks
// happen in the middleware chain; self-targeting guards live here because
// they depend on both actor and target.
type adminService struct {
	userRepository     store.UserRepository
	keyRepository      store.KeyRepository
	providerRepository store.ProviderRepository
	logger             *logger.Logger
}

// NewAdminService constructs an AdminService over the given repositories.
func NewAdminService(
	userRepository store.UserRepository,
	keyRepository store.KeyRepository,
	providerRepository store.ProviderRepository,
	logger *logger.Logger,
) AdminService {
	return &adminService{
		userRepository:     userRepository,
		keyRepository:      keyRepository,
		providerRepository: providerRepository,
		logger:             logger,
	}
}

// Overview aggregates the dashboard counters.
func (s *adminService) Overview(ctx context.Context) (models.AdminOverviewResponse, error) {
	now := time.Now()

	totalUsers, err := s.userRepository.CountAll(ctx)
	if err != nil {
		return models.AdminOverviewResponse{}, fmt.Errorf("user count failed: %w", err)
	}
	activeUsers, err := s.userRepository.CountActive(ctx)
	if err != nil {
		return models.AdminOverviewResponse{}, fmt.Errorf("active user count failed: %w", err)
	}
	totalKeys, err := s.keyRepository.CountAll(ctx)
	if err != nil {
		return models.AdminOverviewResponse{}, fmt.Errorf("key count failed: %w", err)
	}
	recentUsers, err := s.userRepository.CountCreatedSince(ctx, now.Add(-recentUserWindow))
	if err != nil {
		return models.AdminOverviewResponse{}, fmt.Errorf("recent user count failed: %w", err)
	}
	paid, err := s.userRepository.CountPaid(ctx, now)
	if err != nil {
		return models.AdminOverviewResponse{}, fmt.Errorf("paid membership count failed: %w", err)
	}

	return models.AdminOverviewResponse{
		TotalUsers:      totalUsers,
		ActiveUsers:     activeUsers,
		TotalKeys:       totalKeys,
		RecentUsers:     recentUsers,
		PaidMemberships: paid,
	}, nil
}

// RegistrationTrend returns per-day registration counts. days is clamped
// to [1, 90].
func (s *adminService) RegistrationTrend(ctx context.Context, days int) ([]models.TrendPoint, error) {
	if days < 1 {
		days = 7
	}
	if days > 90 {
		days = 90
	}
	return s.userRepository.RegistrationTrend(ctx, days)
}

// ListUsers pages accounts for the console.
func (s *adminService) ListUsers(ctx context.Context, filter store.UserFilter) ([]models.User, int64, error) {
	return s.userRepository.List(ctx, filter)
}

// UserDetail loads one account.
func (s *adminService) UserDetail(ctx context.Context, userID int64) (models.User, error) {
	return s.userRepository.FindByID(ctx, userID)
}

// UpdateUserRole changes an account's role. Admins cannot demote
// themselves, which would risk locking the last admin out.
func (s *adminService) UpdateUserRole(ctx context.Context, actor models.User, userID int64, role string) error {
	if role != models.RoleUser && role != models.RoleAdmin {
		return ErrInvalidDataProvided
	}
	if actor.UserID == userID {
		return ErrInvalidDataProvided
	}

	if err := s.userRepository.UpdateRole(ctx, userID, role); err != nil {
		return fmt.Errorf("role update failed: %w", err)
	}
	return nil
}

// UpdateUserStatus suspends or reinstates an account. Self-suspension is
// rejected.
func (s *adminService) UpdateUserStatus(ctx context.Context, actor models.User, userID int64, active bool) error {
	if actor.UserID == userID {
		return ErrInvalidDataProvided
	}

	if err := s.userRepository.UpdateActive(ctx, userID, active); err != nil {
		return fmt.Errorf("status update failed: %w", err)
	}
	return nil
}

// DeleteUser removes an account and everything attached to it.
// Self-deletion goes through the account endpoint instead.
func (s *adminService) DeleteUser(ctx context.Context, actor models.User, userID int64) error {
	if actor.UserID == userID {
		return ErrInvalidDataProvided
	}

	if err := s.userRepository.Delete(ctx, userID); err != nil {
		return fmt.Errorf("user deletion failed: %w", err)
	}
	return nil
}

// ListProviders returns the full catalogue, including inactive rows.
func (s *adminService) ListProviders(ctx context.Context) ([]models.Provider, error) {
	return s.providerRepository.ListAll(ctx)
}

// CreateProvider adds a global catalogue row.
func (s *adminService) CreateProvider(ctx context.Context, req models.ProviderRequest) (models.Provider, error) {
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
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		return models.Provider{}, fmt.Errorf("provider creation failed: %w", err)
	}

	return created, nil
}

// UpdateProvider rewrites a catalogue row's descriptive fields.
func (s *adminService) UpdateProvider(ctx context.Context, providerID int64, req models.ProviderRequest) error {
	if req.Name == "" || req.BaseURL == "" {
		return ErrInvalidDataProvided
	}

	err := s.providerRepository.Update(ctx, models.Provider{
		ProviderID:  providerID,
		Name:        req.Name,
		DisplayName: req.DisplayName,
		BaseURL:     req.BaseURL,
		DocsURL:     req.DocsURL,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		return fmt.Errorf("provider update failed: %w", err)
	}
	return nil
}

// SetProviderActive toggles catalogue visibility.
func (s *adminService) SetProviderActive(ctx context.Context, providerID int64, active bool) error {
	if err := s.providerRepository.SetActive(ctx, providerID, active); err != nil {
		return fmt.Errorf("provider status update failed: %w", err)
	}
	return nil
}

// DeleteProvider removes a catalogue row, cascading to models and keys.
func (s *adminService) DeleteProvider(ctx context.Context, providerID int64) error {
	if err := s.providerRepository.Delete(ctx, providerID); err != nil {
		return fmt.Errorf("provider deletion failed: %w", err)
	}
	return nil
}

// ListModels returns the full model catalogue.
func (s *adminService) ListModels(ctx context.Context) ([]models.APIModel, error) {
	return s.providerRepository.ListModels(ctx)
}

// CreateModel adds a catalogue model.
func (s *adminService) CreateModel(ctx context.Context, req models.APIModelRequest) (models.APIModel, error) {
	if req.ProviderID <= 0 || req.Name == "" {
		return models.APIModel{}, ErrInvalidDataProvided
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = req.Name
	}
	category := req.Category
	if category == "" {
		category = "chat"
	}

	created, err := s.providerRepository.CreateModel(ctx, models.APIModel{
		ProviderID:    req.ProviderID,
		Name:          req.Name,
		DisplayName:   displayName,
		Category:      category,
		ContextWindow: req.ContextWindow,
		IsDefault:     req.IsDefault,
	})
	if err != nil {
		return models.APIModel{}, fmt.Errorf("model creation failed: %w", err)
	}

	return created, nil
}

// UpdateModel rewrites a catalogue model.
func (s *adminService) UpdateModel(ctx context.Context, modelID int64, req models.APIModelRequest) error {
	if req.Name == "" {
		return ErrInvalidDataProvided
	}

	err := s.providerRepository.UpdateModel(ctx, models.APIModel{
		ModelID:       modelID,
		Name:          req.Name,
		DisplayName:   req.DisplayName,
		Category:      req.Category,
		ContextWindow: req.ContextWindow,
		IsDefault:     req.IsDefault,
		IsActive:      true,
	})
	if err != nil {
		return fmt.Errorf("model update failed: %w", err)
	}
	return nil
}

// DeleteModel removes a catalogue model.
func (s *adminService) DeleteModel(ctx context.Context, modelID int64) error {
	if err := s.providerRepository.DeleteModel(ctx, modelID); err != nil {
		return fmt.Errorf("model deletion failed: %w", err)
	}
	return nil
}
