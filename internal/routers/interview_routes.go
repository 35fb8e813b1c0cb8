package routers

import (
	"github.com/go-chi/chi/v5"

	"github.com/zhikangxie107/intr.vu/internal/handlers"
	"github.com/zhikangxie107/intr.vu/internal/middleware"
	"github.com/zhikangxie107/intr.vu/internal/models"
)

func InterviewRoutes(router *chi.Mux, interviewHandler *handlers.InterviewHandler) {
	router.Route("/api/v1/interview", func(r chi.Router) {
		r.With(middleware.ValidateRequest[*models.AskRequest]()).Post("/ask", interviewHandler.AskHandler)
		r.With(middleware.ValidateRequest[*models.ReviewRequest]()).Post("/review", interviewHandler.ReviewHandler)
	})
}
