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

// adminPathDiscovery tells an authenticated admin where the obfuscated
// console lives. This is the only place the path is ever disclosed.
func (h *Handler) adminPathDiscovery(w http.ResponseWriter, r *http.Request) {
	pagePath := h.adminPath.PagePath()
	h.writeJSON(w, r, models.AdminPathResponse{
		AdminPath: pagePath,
		AdminURL:  h.publicBaseURL + pagePath,
	}, http.StatusOK)
}

// adminConsolePage serves the console shell at the obfuscated location.
// Any other path under /sec/ is indistinguishable from a missing page.
func (h *Handler) adminConsolePage(w http.ResponseWriter, r *http.Request) {
	if !h.adminPath.VerifyPage(r.URL.Path) {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(adminConsoleHTML))
}

// adminConsoleHTML is the minimal console shell. The real interface is
// fetched by the client over the admin API; the page itself carries no
// privileged data.
const adminConsoleHTML = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Console</title></head>
<body><div id="app">Loading…</div></body>
</html>
`

func (h *Handler) adminOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.services.AdminService.Overview(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, overview, http.StatusOK)
}

func (h *Handler) adminRegistrationTrend(w http.ResponseWriter, r *http.Request) {
	trend, err := h.services.AdminService.RegistrationTrend(r.Context(), queryInt(r, "days", 7))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, trend, http.StatusOK)
}

func (h *Handler) adminListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	filter := store.UserFilter{
		Search: r.URL.Query().Get("search"),
		Role:   r.URL.Query().Get("role"),
		Tier:   r.URL.Query().Get("tier"),
		Limit:  limit,
		Offset: offset,
	}

	users, total, err := h.services.AdminService.ListUsers(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, models.UserListResponse{Users: users, Total: total}, http.StatusOK)
}

func (h *Handler) adminUserDetail(w http.ResponseWriter, r *http.Request) {
	userID, ok := urlParamInt64(r, "id")
	if !ok {
		h.writeError(w, r, service.ErrInvalidDataProvided)
		return
	}

	user, err := h.services.AdminService.UserDetail(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, user, http.StatusOK)
}

func (h *Handler) adminUpdateUserRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := utils.GetUserFromContext(ctx)
	if !ok {
		h.writeError(w, r, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	userID, ok := urlParamInt64(r, "id")
	if !ok {
		h.writeError(w, r, service.ErrInvalidDataProvided)
		return
	}

	var req models.UpdateUserRoleRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if err := h.services.AdminService.UpdateUserRole(ctx, *actor, userID, req.Role); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, models.MessageResponse{Message: "role updated"}, http.StatusOK)
}

func (h *Handler) adminUpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := utils.GetUserFromContext(ctx)
	if !ok {
		h.writeError(w, r, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	userID, ok := urlParamInt64(r, "id")
	if !ok {
		h.writeError(w, r, service.ErrInvalidDataProvided)
		return
	}

	var req models.UpdateUserStatusRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if err := h.services.AdminService.UpdateUserStatus(ctx, *actor, userID, req.IsActive); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, models.MessageResponse{Message: "status updated"}, http.StatusOK)
}

func (h *Handler) adminDeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := utils.GetUserFromContext(ctx)
	if !ok {
		h.writeError(w, r, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	userID, ok := urlParamInt64(r, "id")
	if !ok {
		h.writeError(w, r, service.ErrInvalidDataProvided)
		return
	}

	if err := h.services.AdminService.DeleteUser(ctx, *actor, userID); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, models.MessageResponse{Message: "user deleted"}, http.StatusOK)
}

func (h *Handler) adminListProviders(w http.ResponseWriter, r *http.Request) {
	providers, err := h.services.AdminService.ListProviders(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, providers, http.StatusOK)
}

func (h *Handler) adminCreateProvider(w http.ResponseWriter, r *http.Request) {
	var req models.ProviderRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	provider, err := h.services.AdminService.CreateProvider(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, provider, http.StatusCreated)
}

func (h *Handler) adminUpdateProvider(w http.ResponseWriter, r *http.Request) {
	providerID, ok := urlParamInt64(r, "id")
	if !ok {
		h.writeError(w, r, service.ErrInvalidDataProvided)
		return
	}

	var req models.ProviderRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if err := h.services.AdminService.UpdateProvider(r.Context(), providerID, req); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, models.MessageResponse{Message: "provider updated"}, http.StatusOK)
}

func (h *Handler) adminSetProviderActive(w http.ResponseWriter, r *http.Request) {
	providerID, ok := urlParamInt64(r, "id")
	if !ok {
		h.writeError(w, r, service.ErrInvalidDataProvided)
		return
	}

	var req models.ProviderStatusRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if err := h.services.AdminService.SetProviderActive(r.Context(), providerID, req.IsActive); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, models.MessageResponse{Message: "provider status updated"}, http.StatusOK)
}

func (h *Handler) adminDeleteProvider(w http.ResponseWriter, r *http.Request) {
	providerID, ok := urlParamInt64(r, "id")
	if !ok {
		h.writeError(w, r, service.ErrInvalidDataProvided)
		return
	}

	if err := h.services.AdminService.DeleteProvider(r.Context(), providerID); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, models.MessageResponse{Message: "provider deleted"}, http.StatusOK)
}

func (h *Handler) adminListModels(w http.ResponseWriter, r *http.Request) {
	catalogue, err := h.services.AdminService.ListModels(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, catalogue, http.StatusOK)
}

func (h *Handler) adminCreateModel(w http.ResponseWriter, r *http.Request) {
	var req models.APIModelRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	model, err := h.services.AdminService.CreateModel(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, model, http.StatusCreated)
}

func (h *Handler) adminUpdateModel(w http.ResponseWriter, r *http.Request) {
	modelID, ok := urlParamInt64(r, "id")
	if !ok {
		h.writeError(w, r, service.ErrInvalidDataProvided)
		return
	}

	var req models.APIModelRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if err := h.services.AdminService.UpdateModel(r.Context(), modelID, req); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, models.MessageResponse{Message: "model updated"}, http.StatusOK)
}

func (h *Handler) adminDeleteModel(w http.ResponseWriter, r *http.Request) {
	modelID, ok := urlParamInt64(r, "id")
	if !ok {
		h.writeError(w, r, service.ErrInvalidDataProvided)
		return
	}

	if err := h.services.AdminService.DeleteModel(r.Context(), modelID); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, models.MessageResponse{Message: "model deleted"}, http.StatusOK)
}
