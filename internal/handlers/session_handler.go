package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zhikangxie107/intr.vu/internal/middleware"
	"github.com/zhikangxie107/intr.vu/internal/models"
	"github.com/zhikangxie107/intr.vu/internal/repositories"
	"github.com/zhikangxie107/intr.vu/internal/utils"
)

// SessionDriver is the poller surface the session lifecycle controls.
// Create starts it, complete and delete stop it.
type SessionDriver interface {
	Start(sessionID string)
	Stop(sessionID string)
}

// noopDriver keeps the handler usable without a poller, mainly in tests.
type noopDriver struct{}

func (noopDriver) Start(string) {}
func (noopDriver) Stop(string)  {}

type SessionHandler struct {
	sessions *repositories.SessionRepository
	driver   SessionDriver
	logger   *zap.Logger
}

func NewSessionHandler(sessions *repositories.SessionRepository, driver SessionDriver, logger *zap.Logger) *SessionHandler {
	if driver == nil {
		driver = noopDriver{}
	}
	return &SessionHandler{sessions: sessions, driver: driver, logger: logger}
}

// CreateHandler creates a session or resumes the live one for the same
// (username, questionName) pair. 201 on create, 200 on resume.
func (h *SessionHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.CreateSessionRequest](r)

	session, resumed, err := h.sessions.CreateOrResume(req.Username, req.QuestionName)
	if err != nil {
		h.logger.Error("session create failed", zap.Error(err), zap.String("username", req.Username))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "session_error",
			Message: "Failed to create session",
		})
		return
	}

	h.driver.Start(session.ID)

	status := http.StatusCreated
	if resumed {
		status = http.StatusOK
	}
	h.logger.Info("session ready",
		zap.String("session_id", session.ID),
		zap.Bool("resumed", resumed))
	utils.JSON(w, status, session)
}

func (h *SessionHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, session)
}

// CompleteHandler marks a session COMPLETED by id or by pair. Completing
// an already completed session succeeds.
func (h *SessionHandler) CompleteHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.CompleteSessionRequest](r)

	session, err := h.sessions.Complete(req.SessionID, req.Username, req.QuestionName)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}

	h.driver.Stop(session.ID)
	h.logger.Info("session completed", zap.String("session_id", session.ID))
	utils.JSON(w, http.StatusOK, session)
}

// DeleteHandler removes a completed session. Live sessions get 409.
func (h *SessionHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	session, err := h.sessions.Delete(id)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}

	h.driver.Stop(id)
	h.logger.Info("session deleted", zap.String("session_id", id))
	utils.JSON(w, http.StatusOK, session)
}

func (h *SessionHandler) UploadCodeHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.UploadCodeRequest](r)

	session, err := h.sessions.UploadCode(req.SessionID, *req.CodeContent)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, session)
}

func (h *SessionHandler) AppendChatHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.AppendChatRequest](r)

	session, err := h.sessions.AppendExchange(req.SessionID, *req.Prompt, *req.Response)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, session)
}

func (h *SessionHandler) writeRepoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repositories.ErrSessionNotFound):
		utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
			Code:    "session_not_found",
			Message: "Session not found",
		})
	case errors.Is(err, repositories.ErrSessionNotCompleted):
		utils.JSON(w, http.StatusConflict, models.ErrorResponse{
			Code:    "session_not_completed",
			Message: "Session must be completed first",
		})
	case errors.Is(err, repositories.ErrSessionCompleted):
		utils.JSON(w, http.StatusConflict, models.ErrorResponse{
			Code:    "session_completed",
			Message: "Session is already completed",
		})
	default:
		h.logger.Error("session operation failed", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "session_error",
			Message: "Session operation failed",
		})
	}
}
