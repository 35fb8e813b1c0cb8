package routers

import (
	"github.com/go-chi/chi/v5"

	"github.com/zhikangxie107/intr.vu/internal/handlers"
	"github.com/zhikangxie107/intr.vu/internal/middleware"
	"github.com/zhikangxie107/intr.vu/internal/models"
)

func RunRoutes(router *chi.Mux, runHandler *handlers.RunHandler) {
	router.Route("/api/v1/run", func(r chi.Router) {
		r.With(middleware.ValidateRequest[*models.RunCodeRequest]()).Post("/", runHandler.RunHandler)
	})
}
