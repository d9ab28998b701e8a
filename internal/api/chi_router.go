// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/cpsync/internal/middleware"
)

// Router binds handlers to routes.
type Router struct {
	handler *Handler
	mw      *ChiMiddleware
}

// NewRouter creates a router. A nil mw uses DefaultChiMiddlewareConfig.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, mw: mw}
}

// SetupChi builds the route tree.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.mw.CORS())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)
		r.Use(APISecurityHeaders())

		r.Route("/cron", func(r chi.Router) {
			r.Get("/health", router.handler.Health)

			r.Group(func(r chi.Router) {
				r.Use(router.mw.RateLimitTrigger())
				r.Use(router.handler.RequireCronToken)

				r.Post("/activity", router.handler.TriggerActivity)
				r.Post("/contests", router.handler.TriggerContests)
				r.Post("/ratings", router.handler.TriggerRatings)
			})

			r.Group(func(r chi.Router) {
				r.Use(router.mw.RateLimit())
				r.Use(router.handler.RequireCronToken)

				r.Get("/runs", router.handler.RunHistory)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(router.mw.RateLimit())
			r.Use(chimiddleware.Compress(5, "application/json"))

			r.Get("/contests/upcoming", router.handler.UpcomingContests)
			r.Get("/contests/past", router.handler.PastContests)
			r.Get("/leaderboard", router.handler.Leaderboard)
			r.Get("/users/{username}/activity", router.handler.UserActivity)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
