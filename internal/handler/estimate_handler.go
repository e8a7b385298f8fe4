package handler

import (
	"net/http"

	"buildledger/internal/middleware"
	"buildledger/internal/service"
	"buildledger/pkg/pagination"
	"buildledger/pkg/response"

	"github.com/gin-gonic/gin"
)

type EstimateHandler struct {
	estimateService service.EstimateService
}

func NewEstimateHandler(estimateService service.EstimateService) *EstimateHandler {
	return &EstimateHandler{estimateService: estimateService}
}

func (h *EstimateHandler) RegisterRoutes(router *gin.RouterGroup) {
	estimates := router.Group("/api/estimates", middleware.RequireAuth())
	{
		estimates.GET("", h.ListEstimates)
		estimates.POST("", h.CreateEstimate)
		estimates.GET("/:id", h.GetEstimate)
		estimates.PUT("/:id", h.UpdateEstimate)
		estimates.DELETE("/:id", h.DeleteEstimate)
		estimates.PUT("/:id/status", h.ChangeStatus)
		estimates.POST("/:id/send", h.SendEstimate)
		estimates.POST("/:id/convert", h.ConvertEstimate)
		estimates.PUT("/:id/archive", h.ArchiveEstimate)
		estimates.PUT("/:id/unarchive", h.UnarchiveEstimate)
	}
}

// ListEstimates returns paginated estimates with optional status/search filter
// @Summary      List estimates
// @Tags         estimates
// @Security     BearerAuth
// @Produce      json
// @Param        page      query     int     false  "Page number (default: 1)"
// @Param        limit     query     int     false  "Items per page (default: 20)"
// @Param        status    query     string  false  "Filter by status: draft, sent, approved, declined"
// @Param        search    query     string  false  "Search by number or title"
// @Param        archived  query     bool    false  "Show archived estimates instead of active"
// @Success      200       {object}  response.Response
// @Router       /api/estimates [get]
func (h *EstimateHandler) ListEstimates(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	params := pagination.Parse(c)
	filter := service.EstimateFilter{
		Status:   c.Query("status"),
		Search:   c.Query("search"),
		Archived: c.Query("archived") == "true",
		Page:     params.Page,
		Limit:    params.Limit,
	}

	estimates, total, err := h.estimateService.ListEstimates(c.Request.Context(), tenant, filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, estimates, params.Page, params.Limit, total))
}

// CreateEstimate creates a new estimate with its line items
// @Summary      Create estimate
// @Tags         estimates
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateEstimateRequest  true  "Estimate payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/estimates [post]
func (h *EstimateHandler) CreateEstimate(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	var req service.CreateEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	estimate, err := h.estimateService.CreateEstimate(c.Request.Context(), tenant, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, estimate))
}

// GetEstimate returns one estimate with its line items
// @Summary      Get estimate
// @Tags         estimates
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Estimate ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/estimates/{id} [get]
func (h *EstimateHandler) GetEstimate(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	estimate, err := h.estimateService.GetEstimate(c.Request.Context(), tenant, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, estimate))
}

// UpdateEstimate updates an estimate; a non-null items array replaces the full set
// @Summary      Update estimate
// @Tags         estimates
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                         true  "Estimate ID"
// @Param        payload  body  service.UpdateEstimateRequest  true  "Estimate payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/estimates/{id} [put]
func (h *EstimateHandler) UpdateEstimate(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	var req service.UpdateEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	estimate, err := h.estimateService.UpdateEstimate(c.Request.Context(), tenant, c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, estimate))
}

// DeleteEstimate permanently deletes an estimate and its items
// @Summary      Delete estimate
// @Tags         estimates
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Estimate ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/estimates/{id} [delete]
func (h *EstimateHandler) DeleteEstimate(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	if err := h.estimateService.DeleteEstimate(c.Request.Context(), tenant, c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "estimate deleted"}))
}

// ChangeStatus manually overrides the estimate status
// @Summary      Change estimate status
// @Tags         estimates
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string  true  "Estimate ID"
// @Param        payload  body  object{status=string}  true  "New status: draft, sent, approved, declined"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/estimates/{id}/status [put]
func (h *EstimateHandler) ChangeStatus(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	estimate, err := h.estimateService.UpdateEstimate(c.Request.Context(), tenant, c.Param("id"), service.UpdateEstimateRequest{
		Status: &body.Status,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, estimate))
}

// SendEstimate emails the estimate to its client and marks it sent
// @Summary      Send estimate
// @Tags         estimates
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Estimate ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      502  {object}  response.Response
// @Router       /api/estimates/{id}/send [post]
func (h *EstimateHandler) SendEstimate(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	estimate, err := h.estimateService.SendEstimate(c.Request.Context(), tenant, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, estimate))
}

// ConvertEstimate creates an unpaid invoice from an approved estimate
// @Summary      Convert estimate to invoice
// @Tags         estimates
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Estimate ID"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/estimates/{id}/convert [post]
func (h *EstimateHandler) ConvertEstimate(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	invoice, err := h.estimateService.ConvertToInvoice(c.Request.Context(), tenant, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, invoice))
}

// ArchiveEstimate hides the estimate from default list views
// @Summary      Archive estimate
// @Tags         estimates
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Estimate ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/estimates/{id}/archive [put]
func (h *EstimateHandler) ArchiveEstimate(c *gin.Context) {
	h.setArchived(c, true)
}

// UnarchiveEstimate restores an archived estimate to the active list
// @Summary      Unarchive estimate
// @Tags         estimates
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Estimate ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/estimates/{id}/unarchive [put]
func (h *EstimateHandler) UnarchiveEstimate(c *gin.Context) {
	h.setArchived(c, false)
}

func (h *EstimateHandler) setArchived(c *gin.Context, archived bool) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	estimate, err := h.estimateService.SetArchived(c.Request.Context(), tenant, c.Param("id"), archived)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, estimate))
}
