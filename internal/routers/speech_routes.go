package routers

import (
	"github.com/go-chi/chi/v5"

	"github.com/zhikangxie107/intr.vu/internal/handlers"
	"github.com/zhikangxie107/intr.vu/internal/middleware"
	"github.com/zhikangxie107/intr.vu/internal/models"
)

func SpeechRoutes(router *chi.Mux, speechHandler *handlers.SpeechHandler) {
	router.Route("/api/v1/speech", func(r chi.Router) {
		r.With(middleware.ValidateRequest[*models.TTSRequest]()).Post("/tts", speechHandler.TTSHandler)
		r.Post("/stt", speechHandler.STTHandler)
	})
}
