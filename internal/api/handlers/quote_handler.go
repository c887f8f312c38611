package handlers

import (
	"net/http"

	"github.com/Marga-Ghale/ora-interior-backend/internal/api/middleware"
	"github.com/Marga-Ghale/ora-interior-backend/internal/models"
	"github.com/Marga-Ghale/ora-interior-backend/internal/repository"
	"github.com/Marga-Ghale/ora-interior-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ============================================
// Quotation Handler
// ============================================

type QuoteHandler struct {
	quoteService service.QuoteService
}

func (h *QuoteHandler) reply(c *gin.Context, code int, quote *repository.Quotation, err error, fallback string) {
	if err != nil {
		respondError(c, err, fallback)
		return
	}
	c.JSON(code, toQuoteResponse(quote))
}

// Create - Designer submits a quotation for a project
// POST /api/projects/:id/quotes
func (h *QuoteHandler) Create(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	var req models.CreateQuoteRequest
	if !bindJSON(c, &req) {
		return
	}
	validUntil, err := parseDate("validUntil", req.ValidUntil)
	if err != nil {
		respondError(c, err, "")
		return
	}

	quote, err := h.quoteService.Create(c.Request.Context(), actor, c.Param("id"), service.QuoteInput{
		Discount:        req.Discount,
		TaxPercent:      req.TaxPercent,
		ValidUntil:      validUntil,
		NotesToAdmin:    req.NotesToAdmin,
		NotesToCustomer: req.NotesToCustomer,
	})
	h.reply(c, http.StatusCreated, quote, err, "Failed to create quotation")
}

// List
// GET /api/quotes?status=pending
func (h *QuoteHandler) List(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	quotes, err := h.quoteService.List(c.Request.Context(), actor, c.Query("status"))
	if err != nil {
		respondError(c, err, "Failed to fetch quotations")
		return
	}

	response := make([]models.QuoteResponse, len(quotes))
	for i, q := range quotes {
		response[i] = toQuoteResponse(q)
	}
	c.JSON(http.StatusOK, response)
}

// Get
// GET /api/quotes/:id
func (h *QuoteHandler) Get(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	quote, err := h.quoteService.Get(c.Request.Context(), actor, c.Param("id"))
	h.reply(c, http.StatusOK, quote, err, "Failed to fetch quotation")
}

// Approve - Admin approves a pending quotation
// POST /api/admin/quotes/:id/approve
func (h *QuoteHandler) Approve(c *gin.Context) {
	var req models.QuoteDecisionRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	quote, err := h.quoteService.Approve(c.Request.Context(), middleware.GetActor(c), c.Param("id"), req.Comments)
	h.reply(c, http.StatusOK, quote, err, "Failed to approve quotation")
}

// Reject - Admin rejects with comments
// POST /api/admin/quotes/:id/reject
func (h *QuoteHandler) Reject(c *gin.Context) {
	var req models.QuoteDecisionRequest
	if !bindJSON(c, &req) {
		return
	}

	comments := ""
	if req.Comments != nil {
		comments = *req.Comments
	}
	quote, err := h.quoteService.Reject(c.Request.Context(), middleware.GetActor(c), c.Param("id"), comments)
	h.reply(c, http.StatusOK, quote, err, "Failed to reject quotation")
}
