// Package http provides HTTP routing and middleware configuration
// for the dev verification backend.
package http

import (
	"net/http"

	"github.com/atinyakov/VeriFlow/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs the HTTP handler serving the verification API.
//
// Routes:
//
//	POST /api/verify/initiate                   → multipart submission
//	GET  /api/verify/status/{verificationID}    → job status
//	POST /api/verify/create-account             → account creation (JSON only)
//	GET  /metrics                               → Prometheus metrics
func NewRouter(verifyHandler *VerificationHandler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))

	r.Route("/api/verify", func(r chi.Router) {
		// The initiate endpoint takes multipart bodies, so the JSON
		// content-type guard applies only to account creation.
		r.Post("/initiate", verifyHandler.Initiate)
		r.Get("/status/{verificationID}", verifyHandler.Status)

		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware.AllowContentType("application/json"))
			r.Post("/create-account", verifyHandler.CreateAccount)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
