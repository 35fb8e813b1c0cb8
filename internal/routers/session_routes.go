package routers

import (
	"github.com/go-chi/chi/v5"

	"github.com/zhikangxie107/intr.vu/internal/handlers"
	"github.com/zhikangxie107/intr.vu/internal/middleware"
	"github.com/zhikangxie107/intr.vu/internal/models"
)

func SessionRoutes(router *chi.Mux, sessionHandler *handlers.SessionHandler) {
	router.Route("/api/v1/session", func(r chi.Router) {
		r.With(middleware.ValidateRequest[*models.CreateSessionRequest]()).Post("/", sessionHandler.CreateHandler)
		r.With(middleware.ValidateRequest[*models.CompleteSessionRequest]()).Post("/complete", sessionHandler.CompleteHandler)
		r.With(middleware.ValidateRequest[*models.UploadCodeRequest]()).Post("/code", sessionHandler.UploadCodeHandler)
		r.With(middleware.ValidateRequest[*models.AppendChatRequest]()).Post("/chat", sessionHandler.AppendChatHandler)
		r.Get("/{id}", sessionHandler.GetHandler)
		r.Delete("/{id}", sessionHandler.DeleteHandler)
	})
}
