// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"fmt"
	"net/http"

	"github.com/ikunfydeos-tech/APIKey/internal/logger"
	"github.com/ikunfydeos-tech/APIKey/internal/service"
	"github.com/ikunfydeos-tech/APIKey/internal/store"
	"github.com/ikunfydeos-tech/APIKey/internal/utils"
	"github.com/ikunfydeos-tech/APIKey/models"
)

// Pagination guards for listing endpoints.
const (
	defaultPageSize = 50
	maxPageSize     = 200
)

func pageParams(r *http.Request) (limit, offset int) {
	limit = queryInt(r, "limit", defaultPageSize)
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	offset = max(0, queryInt(r, "offset", 0))
	return limit, offset
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, models.MessageResponse{Message: "ok"}, http.StatusOK)
}

// captchaChallenge issues a fresh challenge. The answer travels back
// inside the signed token, so nothing is stored server-side.
func (h *Handler) captchaChallenge(w http.ResponseWriter, r *http.Request) {
	challenge, err := h.captcha.Challenge()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, models.CaptchaResponse{
		Token: challenge.Token,
		Image: challenge.Image,
	}, http.StatusOK)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.RegisterRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	user, err := h.services.AuthService.Register(ctx, req, clientInfo(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	token, err := h.services.AuthService.CreateToken(ctx, user)
	if err != nil {
		log.Err(err).Msg("creation of token failed")
		h.writeError(w, r, service.ErrTokenCreationFailed)
		return
	}

	log.Info().Int64("id", user.UserID).Msg("user registered")

	w.Header().Set("Authorization", fmt.Sprintf("Bearer %s", token.SignedString))
	h.writeJSON(w, r, models.LoginResponse{
		AccessToken: token.SignedString,
		TokenType:   "Bearer",
		User:        user,
	}, http.StatusCreated)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.LoginRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	user, err := h.services.AuthService.Login(ctx, req, clientInfo(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	token, err := h.services.AuthService.CreateToken(ctx, user)
	if err != nil {
		log.Err(err).Msg("creation of token failed")
		h.writeError(w, r, service.ErrTokenCreationFailed)
		return
	}

	log.Debug().Int64("id", user.UserID).Msg("user successfully logged in")

	w.Header().Set("Authorization", fmt.Sprintf("Bearer %s", token.SignedString))
	h.writeJSON(w, r, models.LoginResponse{
		AccessToken: token.SignedString,
		TokenType:   "Bearer",
		User:        user,
	}, http.StatusOK)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.GetUserFromContext(r.Context())
	if !ok {
		h.writeError(w, r, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	h.writeJSON(w, r, user, http.StatusOK)
}

// logout exists for client symmetry. Tokens are stateless; the client
// discards its copy and the token ages out on its own expiry.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, models.MessageResponse{Message: "logged out"}, http.StatusOK)
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		h.writeError(w, r, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	var req models.ChangePasswordRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if err := h.services.AuthService.ChangePassword(ctx, userID, req); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, models.MessageResponse{Message: "password changed"}, http.StatusOK)
}

func (h *Handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		h.writeError(w, r, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	var req models.DeleteAccountRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if err := h.services.AuthService.DeleteAccount(ctx, userID, req.Password, clientInfo(r)); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, models.MessageResponse{Message: "account deleted"}, http.StatusOK)
}

func (h *Handler) loginHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		h.writeError(w, r, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	limit, offset := pageParams(r)
	history, total, err := h.services.AuthService.LoginHistory(ctx, userID, limit, offset)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, models.LoginHistoryResponse{History: history, Total: total}, http.StatusOK)
}

func (h *Handler) logs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		h.writeError(w, r, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	limit, offset := pageParams(r)
	filter := store.LogFilter{
		Action: r.URL.Query().Get("action"),
		Status: r.URL.Query().Get("status"),
		Limit:  limit,
		Offset: offset,
	}

	logs, total, err := h.services.AuthService.Logs(ctx, userID, filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, models.LogListResponse{Logs: logs, Total: total}, http.StatusOK)
}

func (h *Handler) logActions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		h.writeError(w, r, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	actions, err := h.services.AuthService.LogActions(ctx, userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, models.LogActionsResponse{Actions: actions}, http.StatusOK)
}
