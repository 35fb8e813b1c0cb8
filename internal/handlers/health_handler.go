package handlers

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/zhikangxie107/intr.vu/internal/llm"
	"github.com/zhikangxie107/intr.vu/internal/questions"
	"github.com/zhikangxie107/intr.vu/internal/utils"
)

type ReadinessCheck struct {
	Status  string `json:"status"` // "ok" | "failed"
	Message string `json:"message,omitempty"`
}

type ReadinessResponse struct {
	Status string                    `json:"status"` // "ready" | "not_ready"
	Checks map[string]ReadinessCheck `json:"checks"`
}

type HealthHandler struct {
	db       *gorm.DB
	provider llm.Provider
	catalog  *questions.Catalog
}

func NewHealthHandler(db *gorm.DB, provider llm.Provider, catalog *questions.Catalog) *HealthHandler {
	return &HealthHandler{db: db, provider: provider, catalog: catalog}
}

func (h *HealthHandler) HealthzHandler(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "intrvu",
		"version": "1.0.0",
	})
}

func (h *HealthHandler) ReadyzHandler(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]ReadinessCheck)
	ready := true

	if h.db == nil {
		checks["database"] = ReadinessCheck{Status: "failed", Message: "Database not initialized"}
		ready = false
	} else if sqlDB, err := h.db.DB(); err != nil || sqlDB.Ping() != nil {
		checks["database"] = ReadinessCheck{Status: "failed", Message: "Database unreachable"}
		ready = false
	} else {
		checks["database"] = ReadinessCheck{Status: "ok"}
	}

	if h.provider == nil {
		checks["provider"] = ReadinessCheck{Status: "failed", Message: "LLM provider not initialized"}
		ready = false
	} else {
		checks["provider"] = ReadinessCheck{Status: "ok"}
	}

	if h.catalog == nil || h.catalog.Len() == 0 {
		checks["catalog"] = ReadinessCheck{Status: "failed", Message: "Question catalog empty"}
		ready = false
	} else {
		checks["catalog"] = ReadinessCheck{Status: "ok"}
	}

	resp := ReadinessResponse{Checks: checks}
	if ready {
		resp.Status = "ready"
		utils.JSON(w, http.StatusOK, resp)
		return
	}
	resp.Status = "not_ready"
	utils.JSON(w, http.StatusServiceUnavailable, resp)
}
