package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Marga-Ghale/ora-interior-backend/internal/models"
	"github.com/Marga-Ghale/ora-interior-backend/internal/repository"
	"github.com/Marga-Ghale/ora-interior-backend/internal/service"
	"github.com/Marga-Ghale/ora-interior-backend/internal/types"
	"github.com/gin-gonic/gin"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	Auth      *AuthHandler
	User      *UserHandler
	Lead      *LeadHandler
	Project   *ProjectHandler
	Quote     *QuoteHandler
	Design    *DesignHandler
	Product   *ProductHandler
	Chat      *ChatHandler
	Upload    *UploadHandler
	Dashboard *DashboardHandler
}

// NewHandlers creates all handlers
func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Auth:      &AuthHandler{authService: services.Auth},
		User:      &UserHandler{userService: services.User},
		Lead:      &LeadHandler{leadService: services.Lead},
		Project:   &ProjectHandler{projectService: services.Project},
		Quote:     &QuoteHandler{quoteService: services.Quote},
		Design:    &DesignHandler{designService: services.Design},
		Product:   &ProductHandler{productService: services.Product},
		Chat:      &ChatHandler{chatService: services.Chat},
		Upload:    &UploadHandler{uploadService: services.Upload},
		Dashboard: &DashboardHandler{dashboardService: services.Dashboard},
	}
}

// ============================================
// Error Mapping
// ============================================

// respondError maps service errors to a status code. Unexpected errors are
// logged and answered with fallback so internals never reach the client.
func respondError(c *gin.Context, err error, fallback string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid input", Fields: verr.Fields})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid input"})
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Resource not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "You do not have access to this resource"})
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
	case errors.Is(err, service.ErrLeadClosed),
		errors.Is(err, service.ErrConversionInProgress),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrProjectLocked),
		errors.Is(err, service.ErrChatLocked),
		errors.Is(err, service.ErrQuoteDecided),
		errors.Is(err, service.ErrConflict),
		errors.Is(err, service.ErrUserExists):
		c.JSON(http.StatusConflict, models.ErrorResponse{Error: conflictMessage(err)})
	case errors.Is(err, service.ErrStorageUnavailable):
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "File storage is not available"})
	default:
		log.Printf("❌ [API] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fallback})
	}
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrLeadClosed):
		return "This lead has already been converted or cancelled"
	case errors.Is(err, service.ErrConversionInProgress):
		return "This lead is already being converted, please retry shortly"
	case errors.Is(err, service.ErrInvalidTransition):
		return "That status change is not allowed"
	case errors.Is(err, service.ErrProjectLocked):
		return "This project is locked"
	case errors.Is(err, service.ErrChatLocked):
		return "This conversation is closed"
	case errors.Is(err, service.ErrQuoteDecided):
		return "This quotation has already been decided"
	case errors.Is(err, service.ErrUserExists):
		return "A user with this email already exists"
	default:
		return "The resource was modified concurrently, please reload"
	}
}

// bindJSON writes 400 and returns false when the body does not decode.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return false
	}
	return true
}

// parseDate accepts "2006-01-02" or RFC 3339; blank input yields nil.
func parseDate(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, &service.ValidationError{Fields: map[string]string{field: "invalid date"}}
	}
	return &t, nil
}

// ============================================
// Response Mappers
// ============================================

func toUserResponse(u *repository.User) models.UserResponse {
	return models.UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Avatar:       u.Avatar,
		Phone:        u.Phone,
		Role:         u.Role,
		Status:       u.Status,
		LastActiveAt: u.LastActiveAt,
		CreatedAt:    u.CreatedAt,
	}
}

func toLeadResponse(l *repository.Lead) models.LeadResponse {
	requests := l.DesignRequests
	if requests == nil {
		requests = repository.DesignRequests{}
	}
	return models.LeadResponse{
		ID:                 l.ID,
		CustomerID:         l.CustomerID,
		CustomerName:       l.CustomerName,
		CustomerEmail:      l.CustomerEmail,
		CustomerAvatar:     l.CustomerAvatar,
		DesignerID:         l.DesignerID,
		DesignRequests:     requests,
		Status:             l.Status,
		Badge:              types.LeadStatusBadge(l.Status),
		Priority:           l.Priority,
		PriorityBadge:      types.PriorityBadge(l.Priority),
		LastContactAt:      l.LastContactAt,
		TotalMessages:      l.TotalMessages,
		Budget:             l.Budget,
		CancellationReason: l.CancellationReason,
		CancelledAt:        l.CancelledAt,
		ConvertedAt:        l.ConvertedAt,
		ProjectID:          l.ProjectID,
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
	}
}

func toProjectResponse(p *repository.Project) models.ProjectResponse {
	designs := p.Designs
	if designs == nil {
		designs = []repository.ProjectDesign{}
	}
	history := p.StatusHistory
	if history == nil {
		history = []repository.StatusHistoryEntry{}
	}
	return models.ProjectResponse{
		ID:                 p.ID,
		LeadID:             p.LeadID,
		CustomerID:         p.CustomerID,
		CustomerName:       p.CustomerName,
		CustomerEmail:      p.CustomerEmail,
		CustomerAvatar:     p.CustomerAvatar,
		DesignerID:         p.DesignerID,
		Title:              p.Title,
		Status:             p.Status,
		Badge:              types.ProjectStatusBadge(p.Status),
		Priority:           p.Priority,
		Designs:            designs,
		StartDate:          p.StartDate,
		EndDate:            p.EndDate,
		DueDate:            p.DueDate,
		TotalTasks:         p.TotalTasks,
		CompletedTasks:     p.CompletedTasks,
		Progress:           service.Progress(p.CompletedTasks, p.TotalTasks),
		TotalRevisions:     p.TotalRevisions,
		EstimatedBudget:    p.EstimatedBudget,
		QuoteStatus:        p.QuoteStatus,
		IsLocked:           service.IsProjectLocked(p),
		StatusHistory:      history,
		CancellationReason: p.CancellationReason,
		CompletedAt:        p.CompletedAt,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

func toQuoteResponse(q *repository.Quotation) models.QuoteResponse {
	lines := []repository.QuoteLineItem(q.LineItems)
	if lines == nil {
		lines = []repository.QuoteLineItem{}
	}
	history := []repository.ApprovalEntry(q.ApprovalHistory)
	if history == nil {
		history = []repository.ApprovalEntry{}
	}
	return models.QuoteResponse{
		ID:              q.ID,
		ProjectID:       q.ProjectID,
		ProjectTitle:    q.ProjectTitle,
		Version:         q.Version,
		CustomerID:      q.CustomerID,
		CustomerName:    q.CustomerName,
		DesignerID:      q.DesignerID,
		DesignerName:    q.DesignerName,
		Status:          q.Status,
		LineItems:       lines,
		Summary:         q.Summary,
		ApprovalHistory: history,
		NotesToAdmin:    q.NotesToAdmin,
		NotesToCustomer: q.NotesToCustomer,
		ValidUntil:      q.ValidUntil,
		SubmittedAt:     q.SubmittedAt,
		UpdatedAt:       q.UpdatedAt,
	}
}

func toDesignResponse(d *repository.Design) models.DesignResponse {
	images := []string(d.Images)
	if images == nil {
		images = []string{}
	}
	return models.DesignResponse{
		ID:              d.ID,
		DesignerID:      d.DesignerID,
		Title:           d.Title,
		Description:     d.Description,
		RoomType:        d.RoomType,
		RoomLabel:       service.RoomLabel(d.RoomType),
		Style:           d.Style,
		Images:          images,
		Price:           d.Price,
		Status:          d.Status,
		RejectionReason: d.RejectionReason,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func toProductResponse(p *repository.Product) models.ProductResponse {
	return models.ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		Thumbnail:   p.Thumbnail,
		Stock:       p.Stock,
		InStock:     p.Stock > 0,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toMessageResponse(m *repository.Message) models.MessageResponse {
	return models.MessageResponse{
		ID:         m.ID,
		ChatID:     m.ChatID,
		SenderID:   m.SenderID,
		SenderRole: m.SenderRole,
		Type:       m.Type,
		Content:    m.Content,
		Metadata:   m.Metadata,
		Status:     m.Status,
		SentAt:     m.SentAt,
		ReadAt:     m.ReadAt,
		CopiedFrom: m.CopiedFrom,
	}
}
