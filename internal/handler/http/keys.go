// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/ikunfydeos-tech/APIKey/internal/service"
	"github.com/ikunfydeos-tech/APIKey/internal/store"
	"github.com/ikunfydeos-tech/APIKey/internal/utils"
	"github.com/ikunfydeos-tech/APIKey/models"
)

func (h *Handler) listKeys(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		h.writeError(w, r, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	limit, offset := pageParams(r)
	filter := store.KeyFilter{
		Status: r.URL.Query().Get("status"),
		Limit:  limit,
		Offset: offset,
	}
	if providerID := queryInt(r, "provider_id", 0); providerID > 0 {
		filter.ProviderID = int64(providerID)
	}

	keys, total, err := h.services.KeyService.List(ctx, userID, filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, models.KeyListResponse{Keys: keys, Total: total}, http.StatusOK)
}

func (h *Handler) createKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := utils.GetUserFromContext(ctx)
	if !ok {
		h.writeError(w, r, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	var req models.CreateKeyRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	key, err := h.services.KeyService.Create(ctx, *user, req, clientInfo(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, key, http.StatusCreated)
}

// revealKey returns the stored record together with the decrypted
// credential. The owner check lives in the repository: a foreign key id
// behaves like a missing row.
func (h *Handler) revealKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		h.writeError(w, r, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	keyID, ok := urlParamInt64(r, "id")
	if !ok {
		h.writeError(w, r, service.ErrInvalidDataProvided)
		return
	}

	key, plaintext, err := h.services.KeyService.Reveal(ctx, userID, keyID, clientInfo(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, models.KeyRevealResponse{Key: key, APIKey: plaintext}, http.StatusOK)
}

func (h *Handler) updateKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		h.writeError(w, r, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	keyID, ok := urlParamInt64(r, "id")
	if !ok {
		h.writeError(w, r, service.ErrInvalidDataProvided)
		return
	}

	var req models.UpdateKeyRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	key, err := h.services.KeyService.Update(ctx, userID, keyID, req, clientInfo(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, key, http.StatusOK)
}

func (h *Handler) deleteKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		h.writeError(w, r, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	keyID, ok := urlParamInt64(r, "id")
	if !ok {
		h.writeError(w, r, service.ErrInvalidDataProvided)
		return
	}

	if err := h.services.KeyService.Delete(ctx, userID, keyID, clientInfo(r)); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, models.MessageResponse{Message: "key deleted"}, http.StatusOK)
}

func (h *Handler) keyLimits(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := utils.GetUserFromContext(ctx)
	if !ok {
		h.writeError(w, r, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	limits, err := h.services.KeyService.Limits(ctx, *user)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, limits, http.StatusOK)
}

func (h *Handler) probeKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		h.writeError(w, r, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	var req models.ProbeKeyRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if req.KeyID <= 0 {
		h.writeError(w, r, service.ErrInvalidDataProvided)
		return
	}

	result, err := h.services.KeyService.Probe(ctx, userID, req.KeyID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, result, http.StatusOK)
}

func (h *Handler) listProviders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		h.writeError(w, r, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	providers, err := h.services.KeyService.VisibleProviders(ctx, userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, providers, http.StatusOK)
}

func (h *Handler) createCustomProvider(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		h.writeError(w, r, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	var req models.CreateCustomProviderRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	provider, err := h.services.KeyService.CreateCustomProvider(ctx, userID, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, provider, http.StatusCreated)
}

func (h *Handler) deleteCustomProvider(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		h.writeError(w, r, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	providerID, ok := urlParamInt64(r, "id")
	if !ok {
		h.writeError(w, r, service.ErrInvalidDataProvided)
		return
	}

	if err := h.services.KeyService.DeleteCustomProvider(ctx, userID, providerID); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, models.MessageResponse{Message: "provider deleted"}, http.StatusOK)
}

func (h *Handler) listModels(w http.ResponseWriter, r *http.Request) {
	catalogue, err := h.services.KeyService.Models(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, catalogue, http.StatusOK)
}

func (h *Handler) modelsByProvider(w http.ResponseWriter, r *http.Request) {
	providerID, ok := urlParamInt64(r, "providerID")
	if !ok {
		h.writeError(w, r, service.ErrInvalidDataProvided)
		return
	}

	catalogue, err := h.services.KeyService.ModelsByProvider(r.Context(), providerID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, catalogue, http.StatusOK)
}
