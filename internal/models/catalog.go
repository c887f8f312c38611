package models

import (
	"time"

	"github.com/Marga-Ghale/ora-interior-backend/internal/types"
	"github.com/shopspring/decimal"
)

// ============================================
// Design DTOs
// ============================================

type DesignResponse struct {
	ID              string             `json:"id"`
	DesignerID      string             `json:"designerId"`
	Title           string             `json:"title"`
	Description     *string            `json:"description,omitempty"`
	RoomType        types.RoomType     `json:"roomType"`
	RoomLabel       string             `json:"roomLabel"`
	Style           *string            `json:"style,omitempty"`
	Images          []string           `json:"images"`
	Price           decimal.Decimal    `json:"price"`
	Status          types.DesignStatus `json:"status"`
	RejectionReason *string            `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

type DesignRequestBody struct {
	Title       string          `json:"title"`
	Description *string         `json:"description,omitempty"`
	RoomType    string          `json:"roomType"`
	Style       *string         `json:"style,omitempty"`
	Images      []string        `json:"images,omitempty"`
	Price       decimal.Decimal `json:"price"`
}

type ReasonRequest struct {
	Reason string `json:"reason"`
}

// ============================================
// Product DTOs
// ============================================

type ProductResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Thumbnail   *string         `json:"thumbnail,omitempty"`
	Stock       int             `json:"stock"`
	InStock     bool            `json:"inStock"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type ProductRequest struct {
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Thumbnail   *string         `json:"thumbnail,omitempty"`
	Stock       int             `json:"stock"`
}

// ============================================
// Chat DTOs
// ============================================

type MessageResponse struct {
	ID         string            `json:"id"`
	ChatID     string            `json:"chatId"`
	SenderID   string            `json:"senderId"`
	SenderRole string            `json:"senderRole"`
	Type       string            `json:"type"`
	Content    string            `json:"content"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Status     string            `json:"status"`
	SentAt     time.Time         `json:"sentAt"`
	ReadAt     *time.Time        `json:"readAt,omitempty"`
	CopiedFrom *string           `json:"copiedFrom,omitempty"`
}

type SendMessageRequest struct {
	Type     string            `json:"type,omitempty"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// ============================================
// Upload DTOs
// ============================================

type PresignRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
}

type PresignResponse struct {
	PresignedURL string `json:"presignedUrl"`
	ExpiresIn    int    `json:"expiresIn"`
}
