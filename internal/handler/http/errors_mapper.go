// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"errors"
	"net/http"

	"github.com/ikunfydeos-tech/APIKey/internal/logger"
	"github.com/ikunfydeos-tech/APIKey/internal/service"
	"github.com/ikunfydeos-tech/APIKey/internal/store"
	"github.com/ikunfydeos-tech/APIKey/internal/utils"
	"github.com/ikunfydeos-tech/APIKey/models"
)

var errorStatusMap = map[error]int{
	service.ErrInvalidDataProvided:     http.StatusBadRequest,
	service.ErrWeakPassword:            http.StatusBadRequest,
	service.ErrInvalidCredentials:      http.StatusUnauthorized,
	service.ErrTokenIsExpiredOrInvalid: http.StatusUnauthorized,
	service.ErrTOTPRequired:            http.StatusUnauthorized,
	service.ErrAccountLocked:           http.StatusTooManyRequests,
	service.ErrAccountDisabled:         http.StatusForbidden,
	service.ErrKeyQuotaExceeded:        http.StatusForbidden,
	service.ErrTOTPAlreadyEnabled:      http.StatusConflict,
	service.ErrTOTPNotEnabled:          http.StatusConflict,
	service.ErrInvalidSignature:        http.StatusBadRequest,

	store.ErrUserAlreadyExists:    http.StatusConflict,
	store.ErrUserNotFound:         http.StatusNotFound,
	store.ErrKeyNotFound:          http.StatusNotFound,
	store.ErrKeyNameAlreadyExists: http.StatusConflict,
	store.ErrProviderNotFound:     http.StatusNotFound,
	store.ErrProviderAlreadyExists: http.StatusConflict,
	store.ErrModelNotFound:         http.StatusNotFound,
	store.ErrTOTPNotFound:          http.StatusNotFound,

	store.ErrBuildingSQLQuery: http.StatusInternalServerError,
	store.ErrExecutingQuery:   http.StatusInternalServerError,
	store.ErrScanningRow:      http.StatusInternalServerError,
	store.ErrScanningRows:     http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// publicMessage strips internal detail from error bodies. Mapped sentinels
// surface their own text; anything else collapses to the status text, and
// in production that is all a client ever sees for a 500.
func publicMessage(err error, status int) string {
	if status == http.StatusInternalServerError {
		return http.StatusText(status)
	}
	for target := range errorStatusMap {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return http.StatusText(status)
}

// writeJSON serializes a success body; a failed write is logged, not
// surfaced, because the status line is already on the wire.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, data any, status int) {
	if _, err := utils.WriteJSON(w, data, status); err != nil {
		logger.FromRequest(r).Err(err).Msg("error writing response")
	}
}

// writeError maps a service or store error onto the uniform JSON error
// body.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromRequest(r)

	status := statusFromError(err)
	if status == http.StatusInternalServerError {
		log.Err(err).Msg("request failed")
	} else {
		log.Warn().Err(err).Int("status", status).Msg("request rejected")
	}

	message := publicMessage(err, status)
	if status == http.StatusInternalServerError && !h.production {
		// Development builds surface the real failure; production keeps
		// internals out of response bodies.
		message = err.Error()
	}

	if _, werr := utils.WriteJSON(w, models.ErrorResponse{Error: message}, status); werr != nil {
		log.Err(werr).Msg("error writing error response")
	}
}
