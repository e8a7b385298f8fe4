package handler

import (
	"net/http"

	"buildledger/internal/middleware"
	"buildledger/internal/service"
	"buildledger/pkg/pagination"
	"buildledger/pkg/response"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
	activityService  service.ActivityService
}

func NewDashboardHandler(dashboardService service.DashboardService, activityService service.ActivityService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, activityService: activityService}
}

func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/dashboard", middleware.RequireAuth(), h.GetDashboard)
	router.GET("/api/activity", middleware.RequireAuth(), h.ListActivity)
}

// GetDashboard returns document counts and money totals for the account
// @Summary      Dashboard summary
// @Tags         dashboard
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	dashboard, err := h.dashboardService.GetDashboard(c.Request.Context(), tenant)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, dashboard))
}

// ListActivity returns the account's recent activity, newest first
// @Summary      Activity feed
// @Tags         dashboard
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default: 1)"
// @Param        limit  query     int  false  "Items per page (default: 20)"
// @Success      200    {object}  response.Response
// @Router       /api/activity [get]
func (h *DashboardHandler) ListActivity(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	params := pagination.Parse(c)
	entries, total, err := h.activityService.ListActivity(c.Request.Context(), tenant, params.Page, params.Limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, entries, params.Page, params.Limit, total))
}
