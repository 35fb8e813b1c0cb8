package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/zhikangxie107/intr.vu/internal/interviewer"
	"github.com/zhikangxie107/intr.vu/internal/metrics"
	"github.com/zhikangxie107/intr.vu/internal/middleware"
	"github.com/zhikangxie107/intr.vu/internal/models"
	"github.com/zhikangxie107/intr.vu/internal/questions"
	"github.com/zhikangxie107/intr.vu/internal/repositories"
	"github.com/zhikangxie107/intr.vu/internal/utils"
)

// Interviewer is the orchestrator surface the HTTP layer needs.
type Interviewer interface {
	Ask(ctx context.Context, sessionID, prompt string) (*models.AskResponse, error)
	Review(ctx context.Context, sessionID string, categories []string) (*models.ReviewResponse, error)
}

type InterviewHandler struct {
	orchestrator Interviewer
	logger       *zap.Logger
}

func NewInterviewHandler(orchestrator Interviewer, logger *zap.Logger) *InterviewHandler {
	return &InterviewHandler{orchestrator: orchestrator, logger: logger}
}

// AskHandler runs one interviewer completion. The reply is not appended
// to the transcript; clients record it through appendChat once spoken.
func (h *InterviewHandler) AskHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.AskRequest](r)

	resp, err := h.orchestrator.Ask(r.Context(), req.SessionID, req.Prompt)
	if err != nil {
		metrics.ObserveLLM("ask", 0, 0, err)
		h.writeInterviewError(w, err, req.SessionID)
		return
	}
	metrics.ObserveLLM("ask", resp.Usage.PromptTokens, resp.Usage.CompletionTokens, nil)

	utils.JSON(w, http.StatusOK, resp)
}

func (h *InterviewHandler) ReviewHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.ReviewRequest](r)

	resp, err := h.orchestrator.Review(r.Context(), req.SessionID, req.Categories)
	if err != nil {
		metrics.ObserveLLM("review", 0, 0, err)
		h.writeInterviewError(w, err, req.SessionID)
		return
	}
	metrics.ObserveLLM("review", resp.Usage.PromptTokens, resp.Usage.CompletionTokens, nil)

	utils.JSON(w, http.StatusOK, resp)
}

func (h *InterviewHandler) writeInterviewError(w http.ResponseWriter, err error, sessionID string) {
	switch {
	case errors.Is(err, repositories.ErrSessionNotFound):
		utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
			Code:    "session_not_found",
			Message: "Session not found",
		})
	case errors.Is(err, questions.ErrQuestionNotFound):
		utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
			Code:    "question_not_found",
			Message: "Question not found",
		})
	case errors.Is(err, interviewer.ErrEmptyPrompt):
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "missing_prompt",
			Message: "prompt is required",
		})
	default:
		h.logger.Error("interview request failed", zap.Error(err), zap.String("session_id", sessionID))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "ai_error",
			Message: "Failed to generate response",
		})
	}
}
