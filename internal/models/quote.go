package models

import (
	"time"

	"github.com/Marga-Ghale/ora-interior-backend/internal/repository"
	"github.com/Marga-Ghale/ora-interior-backend/internal/types"
	"github.com/shopspring/decimal"
)

// ============================================
// Quotation DTOs
// ============================================

type QuoteResponse struct {
	ID              string                     `json:"id"`
	ProjectID       string                     `json:"projectId"`
	ProjectTitle    string                     `json:"projectTitle"`
	Version         int                        `json:"version"`
	CustomerID      *string                    `json:"customerId,omitempty"`
	CustomerName    string                     `json:"customerName"`
	DesignerID      *string                    `json:"designerId,omitempty"`
	DesignerName    string                     `json:"designerName"`
	Status          types.QuoteStatus          `json:"status"`
	LineItems       []repository.QuoteLineItem `json:"lineItems"`
	Summary         repository.QuoteSummary    `json:"summary"`
	ApprovalHistory []repository.ApprovalEntry `json:"approvalHistory"`
	NotesToAdmin    *string                    `json:"notesToAdmin,omitempty"`
	NotesToCustomer *string                    `json:"notesToCustomer,omitempty"`
	ValidUntil      *time.Time                 `json:"validUntil,omitempty"`
	SubmittedAt     time.Time                  `json:"submittedAt"`
	UpdatedAt       time.Time                  `json:"updatedAt"`
}

type CreateQuoteRequest struct {
	Discount        decimal.Decimal `json:"discount"`
	TaxPercent      decimal.Decimal `json:"taxPercent"`
	ValidUntil      string          `json:"validUntil,omitempty"`
	NotesToAdmin    *string         `json:"notesToAdmin,omitempty"`
	NotesToCustomer *string         `json:"notesToCustomer,omitempty"`
}

type QuoteDecisionRequest struct {
	Comments *string `json:"comments,omitempty"`
}
