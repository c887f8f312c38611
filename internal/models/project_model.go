package models

import (
	"time"

	"github.com/Marga-Ghale/ora-interior-backend/internal/repository"
	"github.com/Marga-Ghale/ora-interior-backend/internal/service"
	"github.com/Marga-Ghale/ora-interior-backend/internal/types"
	"github.com/shopspring/decimal"
)

// ============================================
// Project DTOs
// ============================================

type ProjectResponse struct {
	ID                 string                          `json:"id"`
	LeadID             string                          `json:"leadId"`
	CustomerID         *string                         `json:"customerId,omitempty"`
	CustomerName       string                          `json:"customerName"`
	CustomerEmail      string                          `json:"customerEmail"`
	CustomerAvatar     *string                         `json:"customerAvatar,omitempty"`
	DesignerID         *string                         `json:"designerId,omitempty"`
	Title              string                          `json:"title"`
	Status             types.ProjectStatus             `json:"status"`
	Badge              types.Badge                     `json:"badge"`
	Priority           types.Priority                  `json:"priority"`
	Designs            []repository.ProjectDesign      `json:"designs"`
	StartDate          time.Time                       `json:"startDate"`
	EndDate            time.Time                       `json:"endDate"`
	DueDate            *time.Time                      `json:"dueDate,omitempty"`
	TotalTasks         int                             `json:"totalTasks"`
	CompletedTasks     int                             `json:"completedTasks"`
	Progress           int                             `json:"progress"`
	TotalRevisions     int                             `json:"totalRevisions"`
	EstimatedBudget    *decimal.Decimal                `json:"estimatedBudget,omitempty"`
	QuoteStatus        *string                         `json:"quoteStatus,omitempty"`
	IsLocked           bool                            `json:"isLocked"`
	StatusHistory      []repository.StatusHistoryEntry `json:"statusHistory"`
	CancellationReason *string                         `json:"cancellationReason,omitempty"`
	CompletedAt        *time.Time                      `json:"completedAt,omitempty"`
	CreatedAt          time.Time                       `json:"createdAt"`
	UpdatedAt          time.Time                       `json:"updatedAt"`
}

type ProjectDetailResponse struct {
	ProjectResponse
	Timeline service.TimelineView   `json:"timeline"`
	Pricing  service.ProjectPricing `json:"pricing"`
}

type UpdateProjectRequest struct {
	Title           *string          `json:"title,omitempty"`
	Priority        *string          `json:"priority,omitempty"`
	EstimatedBudget *decimal.Decimal `json:"estimatedBudget,omitempty"`
}

type TransitionRequest struct {
	Status string `json:"status" binding:"required"`
}

type CancelProjectRequest struct {
	Reason string `json:"reason"`
}

// StatusUpdateRequest dates accept "2006-01-02" or RFC 3339.
type StatusUpdateRequest struct {
	Status    string  `json:"status" binding:"required"`
	StartDate string  `json:"startDate,omitempty"`
	DueDate   string  `json:"dueDate,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

type UpdateProductItemRequest struct {
	Quantity    *int             `json:"quantity,omitempty"`
	CustomPrice *decimal.Decimal `json:"customPrice,omitempty"`
	ClearPrice  bool             `json:"clearCustomPrice,omitempty"`
	Notes       *string          `json:"notes,omitempty"`
}

type UpdateTasksRequest struct {
	TotalTasks     int `json:"totalTasks"`
	CompletedTasks int `json:"completedTasks"`
}
