package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/Marga-Ghale/ora-interior-backend/internal/api/middleware"
	"github.com/Marga-Ghale/ora-interior-backend/internal/models"
	"github.com/Marga-Ghale/ora-interior-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ============================================
// Dashboard Handler
// ============================================

type DashboardHandler struct {
	dashboardService service.DashboardService
}

// Feeds - Names of the configured chart feeds
// GET /api/dashboard/feeds
func (h *DashboardHandler) Feeds(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"feeds": h.dashboardService.Feeds()})
}

// Feed - One chart feed, always a JSON array
// GET /api/dashboard/feeds/:name
func (h *DashboardHandler) Feed(c *gin.Context) {
	name := c.Param("name")
	data, err := h.dashboardService.Feed(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, service.ErrUnknownFeed) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Unknown feed"})
			return
		}
		log.Printf("⚠️ [Dashboard] Feed %s unavailable: %v", name, err)
		c.JSON(http.StatusBadGateway, models.ErrorResponse{Error: "Feed is temporarily unavailable"})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// KPI - Designer lead and project counters
// GET /api/dashboard/kpi
func (h *DashboardHandler) KPI(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	kpi, err := h.dashboardService.DesignerKPI(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err, "Failed to compute dashboard")
		return
	}
	c.JSON(http.StatusOK, kpi)
}
