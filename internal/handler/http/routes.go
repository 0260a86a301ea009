// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/strixun/edge-core/internal/service"
)

// InitRoutes builds the full route tree with the middleware chain:
// recovery, trace IDs, request logging, timeouts, CORS, inbound integrity
// verification and the sealing post-processor wrap everything; auth, CSRF
// and rate limits apply per group.
func (h *Handler) InitRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(h.TraceID)
	r.Use(h.RequestLogger)
	r.Use(middleware.Timeout(h.cfg.Server.RequestTimeout))
	r.Use(h.CORS)
	r.Use(h.VerifyRequestIntegrity)
	r.Use(h.Seal)

	r.Route("/auth", func(r chi.Router) {
		// The otp-request bucket is applied per emailHash inside the
		// identity service, not here.
		r.Post("/request-otp", h.RequestOTP)
		r.Post("/verify-otp", h.VerifyOTP)

		r.Group(func(r chi.Router) {
			r.Use(h.Authenticate)
			r.Use(h.RequireCSRF)
			r.Post("/refresh", h.Refresh)
			r.Post("/logout", h.Logout)
			r.With(h.RateLimit(service.BucketRead)).Get("/me", h.Me)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(h.Authenticate)
		r.Get("/health", h.Health)
	})

	r.Route("/data-requests", func(r chi.Router) {
		r.Use(h.Authenticate)
		r.Use(h.RequireCSRF)
		r.With(h.RateLimit(service.BucketRead)).Get("/", h.ListDataRequests)
		r.With(h.RateLimit(service.BucketWrite)).Post("/{requestID}/approve", h.ApproveDataRequest)
		r.With(h.RateLimit(service.BucketWrite)).Post("/{requestID}/reject", h.RejectDataRequest)
		r.With(h.RateLimit(service.BucketRead)).Get("/{requestID}/collect", h.CollectDataRequest)
	})

	r.Route("/objects", func(r chi.Router) {
		r.Use(h.Authenticate)
		r.With(h.RequireCSRF, h.RateLimit(service.BucketWrite)).Post("/{objectID}", h.UploadObject)
		r.With(h.RateLimit(service.BucketRead)).Get("/{objectID}", h.DownloadObject)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(h.Authenticate)
		r.Use(h.RequireSuperAdmin)
		r.Use(h.RequireCSRF)
		r.Use(h.RateLimit(service.BucketAdmin))
		r.Post("/migrate", h.Migrate)
		r.Get("/migrations/{migrationID}", h.GetMigration)
		r.Post("/data-requests", h.CreateDataRequest)
	})

	return r
}
