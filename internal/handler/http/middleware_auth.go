// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package http implements the HTTP transport layer of the application:
// middleware, route handlers, and the typed error mapping between the
// service layer and JSON responses. Authentication, tracing, logging,
// rate limiting, admin-path resolution, and high-risk-operation
// confirmation are all handled here before requests reach the services.
package http

import (
	"context"
	"net/http"

	"github.com/ikunfydeos-tech/APIKey/internal/logger"
	"github.com/ikunfydeos-tech/APIKey/internal/service"
	"github.com/ikunfydeos-tech/APIKey/internal/utils"
	"github.com/ikunfydeos-tech/APIKey/models"
)

// auth enforces JWT bearer authentication.
//
// It extracts the bearer token from the "Authorization" header, validates
// it via [service.AuthService.ParseToken], loads the account, and stores
// both the user ID and the full user record in the request context so
// downstream handlers never re-parse the token or re-query the account.
//
// Requests are rejected with 401 for a missing/malformed header or an
// invalid token, and with 403 when the account has been suspended since
// the token was issued.
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			log.Warn().Err(ErrEmptyAuthorizationHeader).Msg("request without credentials")
			h.writeError(w, r, service.ErrTokenIsExpiredOrInvalid)
			return
		}

		tokenString, err := utils.ParseBearerToken(authHeader)
		if err != nil {
			log.Warn().Err(err).Msg("malformed authorization header")
			h.writeError(w, r, service.ErrTokenIsExpiredOrInvalid)
			return
		}

		ctx := r.Context()
		token, err := h.services.AuthService.ParseToken(ctx, tokenString)
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		userID := token.UserID
		if userID <= 0 {
			log.Warn().Msg("token carries no subject")
			h.writeError(w, r, service.ErrTokenIsExpiredOrInvalid)
			return
		}

		user, err := h.services.AuthService.User(ctx, userID)
		if err != nil {
			h.writeError(w, r, service.ErrTokenIsExpiredOrInvalid)
			return
		}
		if !user.IsActive {
			h.writeError(w, r, service.ErrAccountDisabled)
			return
		}

		ctx = context.WithValue(ctx, utils.UserIDCtxKey, userID)
		ctx = context.WithValue(ctx, utils.UserCtxKey, &user)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin rejects non-admin accounts. It must run after auth.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := utils.GetUserFromContext(r.Context())
		if !ok || !user.IsAdmin() {
			// A plain 404 keeps privileged surfaces undiscoverable.
			http.NotFound(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

const confirmHeader = "X-Confirm-Action"

// requireConfirmation guards destructive operations: the client must send
// "X-Confirm-Action: true" explicitly, so a replayed or accidental call
// cannot delete anything.
func (h *Handler) requireConfirmation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(confirmHeader) != "true" {
			log := logger.FromRequest(r)
			log.Warn().Str("uri", r.RequestURI).Msg("high-risk operation without confirmation header")
			h.writeJSON(w, r, models.ErrorResponse{Error: ErrMissingConfirmation.Error()}, http.StatusPreconditionRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}
