package handlers

import (
	"net/http"

	"github.com/Marga-Ghale/ora-interior-backend/internal/api/middleware"
	"github.com/Marga-Ghale/ora-interior-backend/internal/models"
	"github.com/Marga-Ghale/ora-interior-backend/internal/repository"
	"github.com/Marga-Ghale/ora-interior-backend/internal/service"
	"github.com/Marga-Ghale/ora-interior-backend/internal/types"
	"github.com/gin-gonic/gin"
)

// ============================================
// Project Handler
// ============================================

type ProjectHandler struct {
	projectService service.ProjectService
}

func (h *ProjectHandler) reply(c *gin.Context, project *repository.Project, err error, fallback string) {
	if err != nil {
		respondError(c, err, fallback)
		return
	}
	c.JSON(http.StatusOK, toProjectResponse(project))
}

// List - Projects visible to the caller
// GET /api/projects?status=&priority=&search=&sortBy=
func (h *ProjectHandler) List(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	projects, err := h.projectService.List(c.Request.Context(), actor, service.ProjectFilter{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Search:   c.Query("search"),
		SortBy:   c.Query("sortBy"),
	})
	if err != nil {
		respondError(c, err, "Failed to fetch projects")
		return
	}

	response := make([]models.ProjectResponse, len(projects))
	for i, p := range projects {
		response[i] = toProjectResponse(p)
	}
	c.JSON(http.StatusOK, response)
}

// Get - Project detail with timeline and pricing
// GET /api/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	detail, err := h.projectService.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch project")
		return
	}

	c.JSON(http.StatusOK, models.ProjectDetailResponse{
		ProjectResponse: toProjectResponse(detail.Project),
		Timeline:        detail.Timeline,
		Pricing:         detail.Pricing,
	})
}

// Update - Title, priority and budget
// PATCH /api/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	var req models.UpdateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	update := service.ProjectUpdate{Title: req.Title, EstimatedBudget: req.EstimatedBudget}
	if req.Priority != nil {
		if !types.IsValidPriority(*req.Priority) {
			respondError(c, invalidField("priority", "unknown priority"), "")
			return
		}
		p := types.Priority(*req.Priority)
		update.Priority = &p
	}

	project, err := h.projectService.Update(c.Request.Context(), actor, c.Param("id"), update)
	h.reply(c, project, err, "Failed to update project")
}

// Transition - Move to a timeline status; only the current or next step is allowed
// POST /api/projects/:id/transition
func (h *ProjectHandler) Transition(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	var req models.TransitionRequest
	if !bindJSON(c, &req) {
		return
	}
	if !types.IsValidProjectStatus(req.Status) {
		respondError(c, invalidField("status", "unknown project status"), "")
		return
	}

	project, err := h.projectService.Transition(c.Request.Context(), actor, c.Param("id"), types.ProjectStatus(req.Status))
	h.reply(c, project, err, "Failed to update project status")
}

// Advance - Move to the next timeline step
// POST /api/projects/:id/advance
func (h *ProjectHandler) Advance(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	project, err := h.projectService.Advance(c.Request.Context(), actor, c.Param("id"))
	h.reply(c, project, err, "Failed to advance project")
}

// Cancel
// POST /api/projects/:id/cancel
func (h *ProjectHandler) Cancel(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	var req models.CancelProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.Cancel(c.Request.Context(), actor, c.Param("id"), req.Reason)
	h.reply(c, project, err, "Failed to cancel project")
}

// UpdateStatus - Detailed status form with dates and notes
// PUT /api/projects/:id/status
func (h *ProjectHandler) UpdateStatus(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	var req models.StatusUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	if !types.IsValidProjectStatus(req.Status) {
		respondError(c, invalidField("status", "unknown project status"), "")
		return
	}
	start, err := parseDate("startDate", req.StartDate)
	if err != nil {
		respondError(c, err, "")
		return
	}
	due, err := parseDate("dueDate", req.DueDate)
	if err != nil {
		respondError(c, err, "")
		return
	}

	project, err := h.projectService.UpdateStatus(c.Request.Context(), actor, c.Param("id"), service.StatusUpdate{
		Status:    types.ProjectStatus(req.Status),
		StartDate: start,
		DueDate:   due,
		Notes:     req.Notes,
	})
	h.reply(c, project, err, "Failed to update project status")
}

// AddProduct - Curate a product under one of the project's designs
// POST /api/projects/:id/designs/:designId/products
func (h *ProjectHandler) AddProduct(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	var req models.ProductSelectionRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.AddProduct(c.Request.Context(), actor, c.Param("id"), c.Param("designId"), toSelections([]models.ProductSelectionRequest{req})[0])
	h.reply(c, project, err, "Failed to add product")
}

// UpdateProduct
// PATCH /api/projects/:id/designs/:designId/products/:productId
func (h *ProjectHandler) UpdateProduct(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	var req models.UpdateProductItemRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.UpdateProduct(c.Request.Context(), actor, c.Param("id"), c.Param("designId"), c.Param("productId"), service.ProductItemUpdate{
		Quantity:    req.Quantity,
		CustomPrice: req.CustomPrice,
		ClearPrice:  req.ClearPrice,
		Notes:       req.Notes,
	})
	h.reply(c, project, err, "Failed to update product")
}

// RemoveProduct
// DELETE /api/projects/:id/designs/:designId/products/:productId
func (h *ProjectHandler) RemoveProduct(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	project, err := h.projectService.RemoveProduct(c.Request.Context(), actor, c.Param("id"), c.Param("designId"), c.Param("productId"))
	h.reply(c, project, err, "Failed to remove product")
}

// UpdateTasks - Task counters behind the progress bar
// PUT /api/projects/:id/tasks
func (h *ProjectHandler) UpdateTasks(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	var req models.UpdateTasksRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.UpdateTasks(c.Request.Context(), actor, c.Param("id"), req.TotalTasks, req.CompletedTasks)
	h.reply(c, project, err, "Failed to update tasks")
}
