package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/zhikangxie107/intr.vu/internal/exec"
	"github.com/zhikangxie107/intr.vu/internal/middleware"
	"github.com/zhikangxie107/intr.vu/internal/models"
	"github.com/zhikangxie107/intr.vu/internal/utils"
)

// Runner is the remote executor surface.
type Runner interface {
	Run(ctx context.Context, script, language, versionIndex, stdin string) (*models.RunCodeResponse, error)
}

type RunHandler struct {
	runner Runner
	logger *zap.Logger
}

func NewRunHandler(runner Runner, logger *zap.Logger) *RunHandler {
	return &RunHandler{runner: runner, logger: logger}
}

// RunHandler forwards candidate code to the remote executor and returns
// its result verbatim.
func (h *RunHandler) RunHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.RunCodeRequest](r)

	out, err := h.runner.Run(r.Context(), req.Script, req.Language, req.VersionIndex, req.Stdin)
	if err != nil {
		var uerr *exec.UpstreamError
		if errors.As(err, &uerr) {
			h.logger.Error("executor upstream error", zap.Int("status", uerr.Status))
		} else {
			h.logger.Error("code execution failed", zap.Error(err))
		}
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "execution_error",
			Message: "Failed to execute code",
		})
		return
	}
	utils.JSON(w, http.StatusOK, out)
}
