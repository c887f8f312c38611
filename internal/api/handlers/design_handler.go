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
// Design Handler
// ============================================

type DesignHandler struct {
	designService service.DesignService
}

func toDesignInput(req models.DesignRequestBody) service.DesignInput {
	return service.DesignInput{
		Title:       req.Title,
		Description: req.Description,
		RoomType:    types.RoomType(req.RoomType),
		Style:       req.Style,
		Images:      req.Images,
		Price:       req.Price,
	}
}

func (h *DesignHandler) reply(c *gin.Context, code int, design *repository.Design, err error, fallback string) {
	if err != nil {
		respondError(c, err, fallback)
		return
	}
	c.JSON(code, toDesignResponse(design))
}

// List - Published catalog for guests, own designs for designers
// GET /api/designs?designerId=&status=&roomType=
func (h *DesignHandler) List(c *gin.Context) {
	designs, err := h.designService.List(c.Request.Context(), middleware.GetActor(c), service.DesignQuery{
		DesignerID: c.Query("designerId"),
		Status:     c.Query("status"),
		RoomType:   c.Query("roomType"),
	})
	if err != nil {
		respondError(c, err, "Failed to fetch designs")
		return
	}

	response := make([]models.DesignResponse, len(designs))
	for i, d := range designs {
		response[i] = toDesignResponse(d)
	}
	c.JSON(http.StatusOK, response)
}

// Get
// GET /api/designs/:id
func (h *DesignHandler) Get(c *gin.Context) {
	design, err := h.designService.Get(c.Request.Context(), middleware.GetActor(c), c.Param("id"))
	h.reply(c, http.StatusOK, design, err, "Failed to fetch design")
}

// Create - Designer drafts a design
// POST /api/designs
func (h *DesignHandler) Create(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	var req models.DesignRequestBody
	if !bindJSON(c, &req) {
		return
	}

	design, err := h.designService.Create(c.Request.Context(), actor, toDesignInput(req))
	h.reply(c, http.StatusCreated, design, err, "Failed to create design")
}

// Update
// PUT /api/designs/:id
func (h *DesignHandler) Update(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	var req models.DesignRequestBody
	if !bindJSON(c, &req) {
		return
	}

	design, err := h.designService.Update(c.Request.Context(), actor, c.Param("id"), toDesignInput(req))
	h.reply(c, http.StatusOK, design, err, "Failed to update design")
}

// Delete
// DELETE /api/designs/:id
func (h *DesignHandler) Delete(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	if err := h.designService.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete design")
		return
	}
	c.Status(http.StatusNoContent)
}

// Submit - Send a draft for admin review
// POST /api/designs/:id/submit
func (h *DesignHandler) Submit(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	design, err := h.designService.Submit(c.Request.Context(), actor, c.Param("id"))
	h.reply(c, http.StatusOK, design, err, "Failed to submit design")
}

// Archive
// POST /api/designs/:id/archive
func (h *DesignHandler) Archive(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	design, err := h.designService.Archive(c.Request.Context(), actor, c.Param("id"))
	h.reply(c, http.StatusOK, design, err, "Failed to archive design")
}

// Approve
// POST /api/admin/designs/:id/approve
func (h *DesignHandler) Approve(c *gin.Context) {
	design, err := h.designService.Approve(c.Request.Context(), middleware.GetActor(c), c.Param("id"))
	h.reply(c, http.StatusOK, design, err, "Failed to approve design")
}

// Reject
// POST /api/admin/designs/:id/reject
func (h *DesignHandler) Reject(c *gin.Context) {
	var req models.ReasonRequest
	if !bindJSON(c, &req) {
		return
	}

	design, err := h.designService.Reject(c.Request.Context(), middleware.GetActor(c), c.Param("id"), req.Reason)
	h.reply(c, http.StatusOK, design, err, "Failed to reject design")
}
