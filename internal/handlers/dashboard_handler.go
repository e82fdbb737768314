package handlers

import (
	"net/http"

	"github.com/kirin765/naver-smartstore/internal/services"
)

type DashboardHandler struct {
	service *services.DashboardService
}

func NewDashboardHandler(service *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// GetDashboard returns the dashboard summary
// @Summary Dashboard
// @Description Balance, lifetime usage, product count and the five most recent products
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.DashboardStats
// @Failure 401 {object} services.ErrorResponse
// @Router /dashboard [get]
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	stats, err := h.service.Stats(r.Context(), userID)
	if err != nil {
		writeError(w, "DASHBOARD", err)
		return
	}
	services.SendJSON(w, http.StatusOK, stats)
}
