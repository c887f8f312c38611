package handlers

import (
	"net/http"

	"github.com/Marga-Ghale/ora-interior-backend/internal/api/middleware"
	"github.com/Marga-Ghale/ora-interior-backend/internal/models"
	"github.com/Marga-Ghale/ora-interior-backend/internal/service"
	"github.com/Marga-Ghale/ora-interior-backend/internal/types"
	"github.com/gin-gonic/gin"
)

// ============================================
// Lead Handler
// ============================================

type LeadHandler struct {
	leadService service.LeadService
}

func invalidField(field, msg string) error {
	return &service.ValidationError{Fields: map[string]string{field: msg}}
}

func toSelections(in []models.ProductSelectionRequest) []service.ProductSelection {
	out := make([]service.ProductSelection, len(in))
	for i, p := range in {
		out[i] = service.ProductSelection{
			ProductID:   p.ProductID,
			Quantity:    p.Quantity,
			CustomPrice: p.CustomPrice,
			Notes:       p.Notes,
		}
	}
	return out
}

func toConsultRequest(req models.ConsultRequest) service.ConsultRequest {
	return service.ConsultRequest{
		DesignID: req.DesignID,
		RoomType: types.RoomType(req.RoomType),
		Notes:    req.Notes,
		Products: toSelections(req.Products),
		Budget:   req.Budget,
	}
}

// List - Leads visible to the caller with status counters
// GET /api/leads?status=&priority=&search=
func (h *LeadHandler) List(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	list, err := h.leadService.List(c.Request.Context(), actor, service.LeadFilter{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Search:   c.Query("search"),
	})
	if err != nil {
		respondError(c, err, "Failed to fetch leads")
		return
	}

	response := models.LeadListResponse{Leads: make([]models.LeadResponse, len(list.Leads)), Counts: list.Counts}
	for i, l := range list.Leads {
		response.Leads[i] = toLeadResponse(l)
	}
	c.JSON(http.StatusOK, response)
}

// Get - Lead detail with design requests grouped by room
// GET /api/leads/:id
func (h *LeadHandler) Get(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	detail, err := h.leadService.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch lead")
		return
	}

	response := toLeadResponse(detail.Lead)
	response.Sections = detail.Sections
	c.JSON(http.StatusOK, response)
}

// Consult - Customer asks a designer about a design
// POST /api/leads/consult
func (h *LeadHandler) Consult(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	var req models.ConsultRequest
	if !bindJSON(c, &req) {
		return
	}

	lead, err := h.leadService.Consult(c.Request.Context(), actor, toConsultRequest(req))
	if err != nil {
		respondError(c, err, "Failed to start consultation")
		return
	}
	c.JSON(http.StatusOK, toLeadResponse(lead))
}

// AddDesign - Add another design request to an open lead
// POST /api/leads/:id/designs
func (h *LeadHandler) AddDesign(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	var req models.ConsultRequest
	if !bindJSON(c, &req) {
		return
	}

	lead, err := h.leadService.AddDesign(c.Request.Context(), actor, c.Param("id"), toConsultRequest(req))
	if err != nil {
		respondError(c, err, "Failed to add design")
		return
	}
	c.JSON(http.StatusOK, toLeadResponse(lead))
}

// UpdateStatus - Move a lead through the sales pipeline
// PATCH /api/leads/:id/status
func (h *LeadHandler) UpdateStatus(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	var req models.UpdateLeadStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	if !types.IsValidLeadStatus(req.Status) {
		respondError(c, invalidField("status", "unknown lead status"), "")
		return
	}

	lead, err := h.leadService.UpdateStatus(c.Request.Context(), actor, c.Param("id"), types.LeadStatus(req.Status))
	if err != nil {
		respondError(c, err, "Failed to update lead status")
		return
	}
	c.JSON(http.StatusOK, toLeadResponse(lead))
}

// Update - Priority, budget and designer assignment
// PATCH /api/leads/:id
func (h *LeadHandler) Update(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	var req models.UpdateLeadRequest
	if !bindJSON(c, &req) {
		return
	}

	update := service.LeadUpdate{Budget: req.Budget, DesignerID: req.DesignerID}
	if req.Priority != nil {
		if !types.IsValidPriority(*req.Priority) {
			respondError(c, invalidField("priority", "unknown priority"), "")
			return
		}
		p := types.Priority(*req.Priority)
		update.Priority = &p
	}

	lead, err := h.leadService.Update(c.Request.Context(), actor, c.Param("id"), update)
	if err != nil {
		respondError(c, err, "Failed to update lead")
		return
	}
	c.JSON(http.StatusOK, toLeadResponse(lead))
}

// Convert - Turn a qualified lead into a project
// POST /api/leads/:id/convert
func (h *LeadHandler) Convert(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	var req models.ConvertLeadRequest
	if !bindJSON(c, &req) {
		return
	}

	start, err := parseDate("startDate", req.StartDate)
	if err != nil {
		respondError(c, err, "")
		return
	}
	end, err := parseDate("endDate", req.EndDate)
	if err != nil {
		respondError(c, err, "")
		return
	}

	result, err := h.leadService.Convert(c.Request.Context(), actor, c.Param("id"), service.ConvertRequest{
		StartDate:         start,
		EndDate:           end,
		SelectedDesignIDs: req.SelectedDesignIDs,
	})
	if err != nil {
		respondError(c, err, "Failed to convert lead")
		return
	}

	c.JSON(http.StatusCreated, models.ConvertLeadResponse{
		Lead:           toLeadResponse(result.Lead),
		Project:        toProjectResponse(result.Project),
		CopiedMessages: result.CopiedMessages,
	})
}

// Reject - Cancel a lead with a reason
// POST /api/leads/:id/reject
func (h *LeadHandler) Reject(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	var req models.RejectLeadRequest
	if !bindJSON(c, &req) {
		return
	}

	lead, err := h.leadService.Reject(c.Request.Context(), actor, c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err, "Failed to reject lead")
		return
	}
	c.JSON(http.StatusOK, toLeadResponse(lead))
}
