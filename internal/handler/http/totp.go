// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/ikunfydeos-tech/APIKey/internal/service"
	"github.com/ikunfydeos-tech/APIKey/internal/utils"
	"github.com/ikunfydeos-tech/APIKey/models"
)

func (h *Handler) totpStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		h.writeError(w, r, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	status, err := h.services.TOTPService.Status(ctx, userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, status, http.StatusOK)
}

// totpEnroll issues fresh secret material. The account stays on password
// auth until the first valid code arrives at the activate endpoint.
func (h *Handler) totpEnroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := utils.GetUserFromContext(ctx)
	if !ok {
		h.writeError(w, r, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	enrollment, err := h.services.TOTPService.Enroll(ctx, *user)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, enrollment, http.StatusOK)
}

func (h *Handler) totpActivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		h.writeError(w, r, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	var req models.TOTPCodeRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if err := h.services.TOTPService.Activate(ctx, userID, req.Code); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, models.MessageResponse{Message: "two-factor authentication enabled"}, http.StatusOK)
}

func (h *Handler) totpVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		h.writeError(w, r, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	var req models.TOTPCodeRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if err := h.services.TOTPService.Verify(ctx, userID, req.Code); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, models.MessageResponse{Message: "code accepted"}, http.StatusOK)
}

func (h *Handler) totpRotate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := utils.GetUserFromContext(ctx)
	if !ok {
		h.writeError(w, r, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	candidate, err := h.services.TOTPService.BeginRotation(ctx, *user)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, candidate, http.StatusOK)
}

func (h *Handler) totpRotateConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		h.writeError(w, r, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	var req models.TOTPRotateConfirmRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if err := h.services.TOTPService.ConfirmRotation(ctx, userID, req); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, models.MessageResponse{Message: "secret rotated"}, http.StatusOK)
}

func (h *Handler) totpDisable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := utils.GetUserFromContext(ctx)
	if !ok {
		h.writeError(w, r, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	var req models.TOTPDisableRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if err := h.services.TOTPService.Disable(ctx, *user, req); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, models.MessageResponse{Message: "two-factor authentication disabled"}, http.StatusOK)
}

func (h *Handler) totpBackupCodes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		h.writeError(w, r, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	codes, err := h.services.TOTPService.BackupCodes(ctx, userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, codes, http.StatusOK)
}
