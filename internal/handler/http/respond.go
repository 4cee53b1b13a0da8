// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ikunfydeos-tech/APIKey/internal/logger"
	"github.com/ikunfydeos-tech/APIKey/internal/ratelimit"
	"github.com/ikunfydeos-tech/APIKey/internal/service"
)

// decodeBody decodes the JSON request body into dst. On failure it writes
// a 400 response and returns false; the caller just returns.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		log := logger.FromRequest(r)
		log.Warn().Err(err).Msg("invalid JSON was passed")
		h.writeError(w, r, service.ErrInvalidDataProvided)
		return false
	}
	return true
}

// urlParamInt64 parses a numeric chi URL parameter. Zero and false when
// the segment is missing or not a number.
func urlParamInt64(r *http.Request, name string) (int64, bool) {
	value, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || value <= 0 {
		return 0, false
	}
	return value, true
}

// queryInt reads an integer query parameter, falling back to def when the
// parameter is absent or malformed.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return value
}

// clientInfo captures the caller's address and agent for audit records.
func clientInfo(r *http.Request) service.ClientInfo {
	return service.ClientInfo{
		IPAddress: ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
	}
}
