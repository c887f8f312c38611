package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Marga-Ghale/ora-interior-backend/internal/events"
	"github.com/Marga-Ghale/ora-interior-backend/internal/repository"
	"github.com/Marga-Ghale/ora-interior-backend/internal/socket"
	"github.com/Marga-Ghale/ora-interior-backend/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ============================================
// Quote Service
// ============================================

var hundred = decimal.NewFromInt(100)

type QuoteInput struct {
	Discount        decimal.Decimal
	TaxPercent      decimal.Decimal
	ValidUntil      *time.Time
	NotesToAdmin    *string
	NotesToCustomer *string
}

type QuoteService interface {
	Create(ctx context.Context, actor Actor, projectID string, input QuoteInput) (*repository.Quotation, error)
	List(ctx context.Context, actor Actor, status string) ([]*repository.Quotation, error)
	Get(ctx context.Context, actor Actor, id string) (*repository.Quotation, error)
	Approve(ctx context.Context, actor Actor, id string, comments *string) (*repository.Quotation, error)
	Reject(ctx context.Context, actor Actor, id, comments string) (*repository.Quotation, error)
	ExpireOverdue(ctx context.Context) (int64, error)
}

type quoteService struct {
	quoteRepo   repository.QuotationRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	publisher   events.Publisher
	mailer      Mailer
	broadcaster *socket.Broadcaster
	now         func() time.Time
}

func NewQuoteService(
	quoteRepo repository.QuotationRepository,
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	publisher events.Publisher,
	mailer Mailer,
	broadcaster *socket.Broadcaster,
) QuoteService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &quoteService{
		quoteRepo:   quoteRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		publisher:   publisher,
		mailer:      mailer,
		broadcaster: broadcaster,
		now:         time.Now,
	}
}

// QuoteLines turns the curated products of a project into quotation lines.
func QuoteLines(designs []repository.ProjectDesign) repository.QuoteLineItems {
	lines := make(repository.QuoteLineItems, 0)
	for _, d := range designs {
		for _, item := range d.Products {
			line := repository.QuoteLineItem{
				LineID:      uuid.NewString(),
				ItemName:    item.Product.Name,
				Description: d.Title,
				Quantity:    item.Quantity,
				UnitPrice:   EffectiveUnitPrice(item),
				TotalPrice:  LineTotal(item),
			}
			if item.Product.Thumbnail != nil {
				line.ImageURL = *item.Product.Thumbnail
			}
			lines = append(lines, line)
		}
	}
	return lines
}

// SummarizeQuote computes the totals once. Tax applies after the discount
// and is rounded to cents.
func SummarizeQuote(lines repository.QuoteLineItems, discount, taxPercent decimal.Decimal) (repository.QuoteSummary, error) {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.TotalPrice)
	}

	verr := &ValidationError{}
	if discount.IsNegative() {
		verr.add("discount", "must not be negative")
	} else if discount.GreaterThan(subtotal) {
		verr.add("discount", "must not exceed the subtotal")
	}
	if taxPercent.IsNegative() || taxPercent.GreaterThan(hundred) {
		verr.add("taxPercent", "must be between 0 and 100")
	}
	if !verr.empty() {
		return repository.QuoteSummary{}, verr
	}

	taxable := subtotal.Sub(discount)
	tax := taxable.Mul(taxPercent).Div(hundred).Round(2)
	return repository.QuoteSummary{
		Subtotal:    subtotal,
		Discount:    discount,
		TaxPercent:  taxPercent,
		TaxAmount:   tax,
		TotalAmount: taxable.Add(tax),
	}, nil
}

func (s *quoteService) publish(ctx context.Context, eventType string, q *repository.Quotation, actorID string) {
	if err := s.publisher.Publish(ctx, eventType, q.ProjectID, events.QuotePayload{
		QuoteID:     q.ID,
		ProjectID:   q.ProjectID,
		Version:     q.Version,
		Status:      string(q.Status),
		TotalAmount: q.Summary.TotalAmount.StringFixed(2),
		ActorID:     actorID,
	}); err != nil {
		log.Printf("[Quote] ⚠️ Failed to publish %s for %s: %v", eventType, q.ID, err)
	}
}

func (s *quoteService) setProjectQuoteStatus(ctx context.Context, projectID string, status types.QuoteStatus) {
	p, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil || p == nil {
		return
	}
	st := string(status)
	p.QuoteStatus = &st
	if err := s.projectRepo.Update(ctx, p); err != nil {
		log.Printf("[Quote] ⚠️ Failed to update quote status on project %s: %v", projectID, err)
	}
}

func (s *quoteService) Create(ctx context.Context, actor Actor, projectID string, input QuoteInput) (*repository.Quotation, error) {
	p, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	if !actor.owns(p.DesignerID) {
		return nil, ErrForbidden
	}
	if p.Status == types.ProjectCancelled {
		return nil, ErrProjectLocked
	}

	lines := QuoteLines(p.Designs)
	if len(lines) == 0 {
		return nil, newValidationError("lineItems", "project has no curated products")
	}
	summary, err := SummarizeQuote(lines, input.Discount, input.TaxPercent)
	if err != nil {
		return nil, err
	}
	if input.ValidUntil != nil && !input.ValidUntil.After(s.now()) {
		return nil, newValidationError("validUntil", "must be in the future")
	}

	designerName := ""
	if p.DesignerID != nil {
		if u, err := s.userRepo.FindByID(ctx, *p.DesignerID); err == nil && u != nil {
			designerName = u.Name
		}
	}

	q := &repository.Quotation{
		ProjectID:       p.ID,
		ProjectTitle:    p.Title,
		CustomerID:      p.CustomerID,
		CustomerName:    p.CustomerName,
		DesignerID:      p.DesignerID,
		DesignerName:    designerName,
		Status:          types.QuotePendingApproval,
		LineItems:       lines,
		Summary:         summary,
		ApprovalHistory: repository.ApprovalHistory{},
		NotesToAdmin:    input.NotesToAdmin,
		NotesToCustomer: input.NotesToCustomer,
		ValidUntil:      input.ValidUntil,
	}
	if err := s.quoteRepo.Create(ctx, q); err != nil {
		return nil, err
	}

	s.setProjectQuoteStatus(ctx, p.ID, q.Status)
	s.publish(ctx, events.EventQuoteSubmitted, q, actor.ID)
	s.broadcaster.BroadcastQuoteSubmitted(p.ID, q.ID, q.Version)
	log.Printf("[Quote] 📝 Quotation v%d submitted for project %s", q.Version, p.ID)
	return q, nil
}

func (s *quoteService) List(ctx context.Context, actor Actor, status string) ([]*repository.Quotation, error) {
	filter := repository.QuotationFilter{}
	switch {
	case actor.IsAdmin():
		if status == "" {
			filter.Status = types.QuotePendingApproval
		}
	case actor.Role == types.RoleDesigner:
		filter.DesignerID = actor.ID
	default:
		return nil, ErrForbidden
	}
	if status != "" && status != types.FilterAll {
		filter.Status = types.QuoteStatus(status)
	}
	return s.quoteRepo.List(ctx, filter)
}

func (s *quoteService) Get(ctx context.Context, actor Actor, id string) (*repository.Quotation, error) {
	q, err := s.quoteRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, ErrNotFound
	}
	if !actor.owns(q.DesignerID) {
		return nil, ErrForbidden
	}
	return q, nil
}

func (s *quoteService) Approve(ctx context.Context, actor Actor, id string, comments *string) (*repository.Quotation, error) {
	return s.decide(ctx, actor, id, types.QuoteAdminApproved, comments)
}

func (s *quoteService) Reject(ctx context.Context, actor Actor, id, comments string) (*repository.Quotation, error) {
	comments = strings.TrimSpace(comments)
	if comments == "" {
		return nil, newValidationError("comments", "required")
	}
	return s.decide(ctx, actor, id, types.QuoteRejected, &comments)
}

func (s *quoteService) decide(ctx context.Context, actor Actor, id string, to types.QuoteStatus, comments *string) (*repository.Quotation, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	q, err := s.quoteRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, ErrNotFound
	}
	if q.Status != types.QuotePendingApproval {
		return nil, ErrQuoteDecided
	}

	adminName := ""
	if u, err := s.userRepo.FindByID(ctx, actor.ID); err == nil && u != nil {
		adminName = u.Name
	}
	q.Status = to
	q.ApprovalHistory = append(q.ApprovalHistory, repository.ApprovalEntry{
		AdminID:   actor.ID,
		AdminName: adminName,
		Status:    to,
		Comments:  comments,
		Timestamp: s.now().UTC(),
	})

	ok, err := s.quoteRepo.UpdateDecision(ctx, q, types.QuotePendingApproval)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrQuoteDecided
	}

	s.setProjectQuoteStatus(ctx, q.ProjectID, to)
	s.publish(ctx, events.EventQuoteDecided, q, actor.ID)
	designerID := ""
	if q.DesignerID != nil {
		designerID = *q.DesignerID
	}
	s.broadcaster.BroadcastQuoteDecided(designerID, q.ProjectID, q.ID, string(to))
	s.notifyDesigner(ctx, q, comments)
	return q, nil
}

func (s *quoteService) notifyDesigner(ctx context.Context, q *repository.Quotation, comments *string) {
	if s.mailer == nil || q.DesignerID == nil {
		return
	}
	u, err := s.userRepo.FindByID(ctx, *q.DesignerID)
	if err != nil || u == nil {
		return
	}
	template, subject := "quote_approved", fmt.Sprintf("Quotation v%d for %s approved", q.Version, q.ProjectTitle)
	if q.Status == types.QuoteRejected {
		template, subject = "quote_rejected", fmt.Sprintf("Quotation v%d for %s needs changes", q.Version, q.ProjectTitle)
	}
	note := ""
	if comments != nil {
		note = *comments
	}
	s.mailer.Enqueue([]string{u.Email}, subject, template, map[string]interface{}{
		"DesignerName": u.Name,
		"ProjectTitle": q.ProjectTitle,
		"Version":      q.Version,
		"Total":        q.Summary.TotalAmount.StringFixed(2),
		"Comments":     note,
	})
}

func (s *quoteService) ExpireOverdue(ctx context.Context) (int64, error) {
	cutoff := s.now().UTC()
	n, err := s.quoteRepo.ExpireBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		if err := s.publisher.Publish(ctx, events.EventQuotesExpired, "", events.QuotesExpiredPayload{
			Count:  n,
			Cutoff: cutoff,
		}); err != nil {
			log.Printf("[Quote] ⚠️ Failed to publish expiry: %v", err)
		}
	}
	return n, nil
}
