// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ikunfydeos-tech/APIKey/internal/ratelimit"
)

// Per-IP rate limits on the unauthenticated surface. Everything behind
// auth is already gated by credentials.
const (
	loginRateLimit    = 10
	registerRateLimit = 5
	captchaRateLimit  = 30
	webhookRateLimit  = 60

	rateLimitWindow = time.Minute
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	router.Get("/health", h.health)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.With(h.limit(captchaRateLimit)).Get("/api/captcha", h.captchaChallenge)
		r.With(h.limit(registerRateLimit)).Post("/api/register", h.register)
		r.With(h.limit(loginRateLimit)).Post("/api/login", h.login)
		r.With(h.limit(webhookRateLimit)).Post("/webhook/afdian", h.paymentWebhook)
	})

	// routes behind JWT authentication
	router.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Get("/api/me", h.me)
		r.Post("/api/logout", h.logout)
		r.Post("/api/auth/change-password", h.changePassword)
		r.With(h.requireConfirmation).Delete("/api/auth/account", h.deleteAccount)
		r.Get("/api/auth/login-history", h.loginHistory)
		r.Get("/api/auth/logs", h.logs)
		r.Get("/api/auth/log-actions", h.logActions)

		r.Route("/api/keys", func(r chi.Router) {
			r.Get("/", h.listKeys)
			r.Post("/", h.createKey)
			r.Get("/limits", h.keyLimits)
			r.Post("/test", h.probeKey)

			r.Get("/providers", h.listProviders)
			r.Post("/providers", h.createCustomProvider)
			r.Delete("/providers/{id}", h.deleteCustomProvider)

			r.Get("/models", h.listModels)
			r.Get("/models/{providerID}", h.modelsByProvider)

			r.Get("/{id}", h.revealKey)
			r.Put("/{id}", h.updateKey)
			r.With(h.requireConfirmation).Delete("/{id}", h.deleteKey)
		})

		r.Route("/api/totp", func(r chi.Router) {
			r.Get("/status", h.totpStatus)
			r.Post("/enroll", h.totpEnroll)
			r.Post("/activate", h.totpActivate)
			r.Post("/verify", h.totpVerify)
			r.Post("/rotate", h.totpRotate)
			r.Post("/rotate/confirm", h.totpRotateConfirm)
			r.With(h.requireConfirmation).Post("/disable", h.totpDisable)
			r.Get("/backup-codes", h.totpBackupCodes)
		})

		r.Get("/api/membership/status", h.membershipStatus)

		r.With(h.requireAdmin).Get("/api/admin-path", h.adminPathDiscovery)
	})

	// The console API mounts at the per-process obfuscated prefix. The
	// fixed legacy location answers 404 no matter what, so scanners see
	// the same response whether or not an admin surface exists.
	router.Route(h.adminPath.APIPrefix(), func(r chi.Router) {
		r.Use(h.auth)
		r.Use(h.requireAdmin)

		r.Get("/stats/overview", h.adminOverview)
		r.Get("/stats/registration-trend", h.adminRegistrationTrend)

		r.Get("/users", h.adminListUsers)
		r.Get("/users/{id}", h.adminUserDetail)
		r.With(h.requireConfirmation).Put("/users/{id}/role", h.adminUpdateUserRole)
		r.With(h.requireConfirmation).Put("/users/{id}/status", h.adminUpdateUserStatus)
		r.With(h.requireConfirmation).Delete("/users/{id}", h.adminDeleteUser)

		r.Get("/providers", h.adminListProviders)
		r.Post("/providers", h.adminCreateProvider)
		r.Put("/providers/{id}", h.adminUpdateProvider)
		r.Put("/providers/{id}/status", h.adminSetProviderActive)
		r.With(h.requireConfirmation).Delete("/providers/{id}", h.adminDeleteProvider)

		r.Get("/models", h.adminListModels)
		r.Post("/models", h.adminCreateModel)
		r.Put("/models/{id}", h.adminUpdateModel)
		r.With(h.requireConfirmation).Delete("/models/{id}", h.adminDeleteModel)
	})

	router.HandleFunc("/api/admin", http.NotFound)
	router.HandleFunc("/api/admin/*", http.NotFound)

	// Console page lives only at the obfuscated token path; the handler
	// itself 404s anything else under /sec/.
	router.Get("/sec/*", h.adminConsolePage)

	router.MethodNotAllowed(hideMethodNotAllowed)

	return router
}

// limit builds the per-IP middleware for one public route.
func (h *Handler) limit(perMinute int) func(http.Handler) http.Handler {
	limiter, err := ratelimit.NewSlidingWindow(perMinute, rateLimitWindow)
	if err != nil {
		h.logger.Fatal().Err(err).Msg("building rate limiter failed")
	}
	return ratelimit.Middleware(limiter, ratelimit.ClientIP)
}

// hideMethodNotAllowed answers 404 where chi would answer 405. A wrong
// method on a privileged path must not confirm the path exists.
func hideMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
}
