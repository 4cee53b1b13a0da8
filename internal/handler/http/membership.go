// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/ikunfydeos-tech/APIKey/internal/logger"
	"github.com/ikunfydeos-tech/APIKey/internal/service"
	"github.com/ikunfydeos-tech/APIKey/internal/utils"
	"github.com/ikunfydeos-tech/APIKey/models"
)

// paymentWebhook ingests one payment platform callback. Ignored orders
// still answer 200 so the platform does not retry them forever; only a
// bad signature or an internal failure produces an error status.
func (h *Handler) paymentWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var event models.PaymentWebhookRequest
	if !h.decodeBody(w, r, &event) {
		return
	}

	status, err := h.services.MembershipService.HandlePaymentEvent(ctx, event)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	log.Info().Str("status", status).Str("order", event.Data.Order.OutTradeNo).Msg("payment event processed")
	h.writeJSON(w, r, models.WebhookAckResponse{Status: status}, http.StatusOK)
}

func (h *Handler) membershipStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := utils.GetUserFromContext(ctx)
	if !ok {
		h.writeError(w, r, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	h.writeJSON(w, r, h.services.MembershipService.Status(ctx, *user), http.StatusOK)
}
