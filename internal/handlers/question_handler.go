package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/zhikangxie107/intr.vu/internal/models"
	"github.com/zhikangxie107/intr.vu/internal/questions"
	"github.com/zhikangxie107/intr.vu/internal/utils"
)

type QuestionHandler struct {
	catalog *questions.Catalog
}

func NewQuestionHandler(catalog *questions.Catalog) *QuestionHandler {
	return &QuestionHandler{catalog: catalog}
}

// ListHandler returns the metadata cards for every question, in catalog
// order.
func (h *QuestionHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, h.catalog.List())
}

func (h *QuestionHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	// Question names contain spaces, so the path segment arrives escaped.
	name := chi.URLParam(r, "name")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}

	question, err := h.catalog.Get(name)
	if err != nil {
		if errors.Is(err, questions.ErrQuestionNotFound) {
			utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
				Code:    "question_not_found",
				Message: "Question not found",
			})
			return
		}
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "catalog_error",
			Message: "Failed to load question",
		})
		return
	}
	utils.JSON(w, http.StatusOK, question)
}
