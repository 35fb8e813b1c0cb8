package routers

import (
	"github.com/go-chi/chi/v5"

	"github.com/zhikangxie107/intr.vu/internal/handlers"
	"github.com/zhikangxie107/intr.vu/internal/metrics"
)

func HealthRoutes(router *chi.Mux, healthHandler *handlers.HealthHandler) {
	router.Get("/healthz", healthHandler.HealthzHandler)
	router.Get("/readyz", healthHandler.ReadyzHandler)
	router.Method("GET", "/metrics", metrics.Handler())
}
