package models

import (
	"time"

	"github.com/Marga-Ghale/ora-interior-backend/internal/repository"
	"github.com/Marga-Ghale/ora-interior-backend/internal/service"
	"github.com/Marga-Ghale/ora-interior-backend/internal/types"
	"github.com/shopspring/decimal"
)

// ============================================
// Lead DTOs
// ============================================

type LeadResponse struct {
	ID                 string                    `json:"id"`
	CustomerID         *string                   `json:"customerId,omitempty"`
	CustomerName       string                    `json:"customerName"`
	CustomerEmail      string                    `json:"customerEmail"`
	CustomerAvatar     *string                   `json:"customerAvatar,omitempty"`
	DesignerID         *string                   `json:"designerId,omitempty"`
	DesignRequests     repository.DesignRequests `json:"designRequests"`
	Status             types.LeadStatus          `json:"status"`
	Badge              types.Badge               `json:"badge"`
	Priority           types.Priority            `json:"priority"`
	PriorityBadge      types.Badge               `json:"priorityBadge"`
	LastContactAt      time.Time                 `json:"lastContactAt"`
	TotalMessages      int                       `json:"totalMessages"`
	Budget             *decimal.Decimal          `json:"budget,omitempty"`
	CancellationReason *string                   `json:"cancellationReason,omitempty"`
	CancelledAt        *time.Time                `json:"cancelledAt,omitempty"`
	ConvertedAt        *time.Time                `json:"convertedAt,omitempty"`
	ProjectID          *string                   `json:"projectId,omitempty"`
	CreatedAt          time.Time                 `json:"createdAt"`
	UpdatedAt          time.Time                 `json:"updatedAt"`
	Sections           []service.RoomSection     `json:"sections,omitempty"`
}

type LeadListResponse struct {
	Leads  []LeadResponse     `json:"leads"`
	Counts service.LeadCounts `json:"counts"`
}

type ProductSelectionRequest struct {
	ProductID   string           `json:"productId" binding:"required"`
	Quantity    int              `json:"quantity"`
	CustomPrice *decimal.Decimal `json:"customPrice,omitempty"`
	Notes       *string          `json:"notes,omitempty"`
}

type ConsultRequest struct {
	DesignID string                    `json:"designId" binding:"required"`
	RoomType string                    `json:"roomType,omitempty"`
	Notes    *string                   `json:"notes,omitempty"`
	Products []ProductSelectionRequest `json:"products,omitempty"`
	Budget   *decimal.Decimal          `json:"budget,omitempty"`
}

type UpdateLeadStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type UpdateLeadRequest struct {
	Priority   *string          `json:"priority,omitempty"`
	Budget     *decimal.Decimal `json:"budget,omitempty"`
	DesignerID *string          `json:"designerId,omitempty"`
}

// ConvertLeadRequest dates accept "2006-01-02" or RFC 3339.
type ConvertLeadRequest struct {
	StartDate         string   `json:"startDate"`
	EndDate           string   `json:"endDate"`
	SelectedDesignIDs []string `json:"selectedDesignIds,omitempty"`
}

type ConvertLeadResponse struct {
	Lead           LeadResponse    `json:"lead"`
	Project        ProjectResponse `json:"project"`
	CopiedMessages int             `json:"copiedMessages"`
}

type RejectLeadRequest struct {
	Reason string `json:"reason"`
}
