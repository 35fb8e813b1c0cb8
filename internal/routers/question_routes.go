package routers

import (
	"github.com/go-chi/chi/v5"

	"github.com/zhikangxie107/intr.vu/internal/handlers"
)

func QuestionRoutes(router *chi.Mux, questionHandler *handlers.QuestionHandler) {
	router.Route("/api/v1/question", func(r chi.Router) {
		r.Get("/", questionHandler.ListHandler)
		r.Get("/{name}", questionHandler.GetHandler)
	})
}
