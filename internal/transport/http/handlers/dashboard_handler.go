package handlers

import (
	"net/http"

	"github.com/vedran77/campusconnect/internal/service"
	"github.com/vedran77/campusconnect/internal/transport/http/middleware"
	"github.com/vedran77/campusconnect/pkg/logger"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
	log              logger.Logger
}

func NewDashboardHandler(dashboardService *service.DashboardService, log logger.Logger) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, log: log}
}

func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	dashboard, err := h.dashboardService.Get(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, r, h.log, "dashboard", err)
		return
	}

	writeJSON(w, http.StatusOK, dashboard)
}
