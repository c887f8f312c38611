package service

import (
	"context"
	"log"
	"math"
	"strings"
	"time"

	"github.com/Marga-Ghale/ora-interior-backend/internal/events"
	"github.com/Marga-Ghale/ora-interior-backend/internal/repository"
	"github.com/Marga-Ghale/ora-interior-backend/internal/socket"
	"github.com/Marga-Ghale/ora-interior-backend/internal/types"
	"github.com/shopspring/decimal"
)

// ============================================
// Project Service
// ============================================

type ProjectDetail struct {
	Project  *repository.Project
	Badge    types.Badge
	Progress int
	Timeline TimelineView
	Pricing  ProjectPricing
}

// StatusUpdate is the detailed status form. It may set any timeline status.
type StatusUpdate struct {
	Status    types.ProjectStatus
	StartDate *time.Time
	DueDate   *time.Time
	Notes     *string
}

type ProjectUpdate struct {
	Title           *string
	Priority        *types.Priority
	EstimatedBudget *decimal.Decimal
}

type ProductItemUpdate struct {
	Quantity    *int
	CustomPrice *decimal.Decimal
	ClearPrice  bool
	Notes       *string
}

type ProjectService interface {
	List(ctx context.Context, actor Actor, filter ProjectFilter) ([]*repository.Project, error)
	Get(ctx context.Context, actor Actor, id string) (*ProjectDetail, error)
	Update(ctx context.Context, actor Actor, id string, update ProjectUpdate) (*repository.Project, error)

	// Timeline
	Transition(ctx context.Context, actor Actor, id string, target types.ProjectStatus) (*repository.Project, error)
	Advance(ctx context.Context, actor Actor, id string) (*repository.Project, error)
	Cancel(ctx context.Context, actor Actor, id, reason string) (*repository.Project, error)
	UpdateStatus(ctx context.Context, actor Actor, id string, update StatusUpdate) (*repository.Project, error)

	// Product curation
	AddProduct(ctx context.Context, actor Actor, projectID, designID string, sel ProductSelection) (*repository.Project, error)
	UpdateProduct(ctx context.Context, actor Actor, projectID, designID, productID string, update ProductItemUpdate) (*repository.Project, error)
	RemoveProduct(ctx context.Context, actor Actor, projectID, designID, productID string) (*repository.Project, error)

	UpdateTasks(ctx context.Context, actor Actor, id string, total, completed int) (*repository.Project, error)
}

type projectService struct {
	projectRepo repository.ProjectRepository
	productRepo repository.ProductRepository
	publisher   events.Publisher
	broadcaster *socket.Broadcaster
	now         func() time.Time
}

func NewProjectService(projectRepo repository.ProjectRepository, productRepo repository.ProductRepository, publisher events.Publisher, broadcaster *socket.Broadcaster) ProjectService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &projectService{
		projectRepo: projectRepo,
		productRepo: productRepo,
		publisher:   publisher,
		broadcaster: broadcaster,
		now:         time.Now,
	}
}

func canViewProject(actor Actor, p *repository.Project) bool {
	if actor.owns(p.DesignerID) {
		return true
	}
	return p.CustomerID != nil && *p.CustomerID == actor.ID
}

func (s *projectService) load(ctx context.Context, id string) (*repository.Project, error) {
	p, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *projectService) loadOwned(ctx context.Context, actor Actor, id string) (*repository.Project, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.owns(p.DesignerID) {
		return nil, ErrForbidden
	}
	return p, nil
}

// loadEditable additionally refuses locked projects.
func (s *projectService) loadEditable(ctx context.Context, actor Actor, id string) (*repository.Project, error) {
	p, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if IsProjectLocked(p) {
		return nil, ErrProjectLocked
	}
	return p, nil
}

func (s *projectService) List(ctx context.Context, actor Actor, filter ProjectFilter) ([]*repository.Project, error) {
	if actor.Role == types.RoleUser {
		all, err := s.projectRepo.FindAll(ctx, "")
		if err != nil {
			return nil, err
		}
		own := make([]*repository.Project, 0)
		for _, p := range all {
			if p.CustomerID != nil && *p.CustomerID == actor.ID {
				own = append(own, p)
			}
		}
		return FilterProjects(own, filter), nil
	}

	projects, err := s.projectRepo.FindAll(ctx, actor.scope())
	if err != nil {
		return nil, err
	}
	return FilterProjects(projects, filter), nil
}

func (s *projectService) Get(ctx context.Context, actor Actor, id string) (*ProjectDetail, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canViewProject(actor, p) {
		return nil, ErrForbidden
	}
	return &ProjectDetail{
		Project:  p,
		Badge:    types.ProjectStatusBadge(p.Status),
		Progress: Progress(p.CompletedTasks, p.TotalTasks),
		Timeline: BuildTimeline(p.Status, IsProjectLocked(p)),
		Pricing:  PriceProject(p.Designs),
	}, nil
}

func (s *projectService) Update(ctx context.Context, actor Actor, id string, update ProjectUpdate) (*repository.Project, error) {
	p, err := s.loadEditable(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	var changes []string
	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return nil, newValidationError("title", "must not be blank")
		}
		p.Title = title
		changes = append(changes, "title")
	}
	if update.Priority != nil {
		if !types.IsValidPriority(string(*update.Priority)) {
			return nil, newValidationError("priority", "unknown priority")
		}
		p.Priority = *update.Priority
		changes = append(changes, "priority")
	}
	if update.EstimatedBudget != nil {
		if update.EstimatedBudget.IsNegative() {
			return nil, newValidationError("estimatedBudget", "must not be negative")
		}
		p.EstimatedBudget = update.EstimatedBudget
		changes = append(changes, "estimatedBudget")
	}
	if len(changes) == 0 {
		return p, nil
	}

	if err := s.projectRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.broadcaster.BroadcastProjectUpdated(p.ID, changes, actor.ID)
	return p, nil
}

// ============================================
// Status changes
// ============================================

func daysBetween(from, to time.Time) int {
	d := to.Sub(from).Hours() / 24
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d))
}

// openEntry returns the history entry still in progress, if any.
func openEntry(p *repository.Project) *repository.StatusHistoryEntry {
	for i := len(p.StatusHistory) - 1; i >= 0; i-- {
		if p.StatusHistory[i].CompletedAt == nil {
			return &p.StatusHistory[i]
		}
	}
	return nil
}

type statusChange struct {
	to        types.ProjectStatus
	startedAt time.Time
	dueDate   *time.Time
	notes     *string
	reason    *string
}

// applyStatus closes the open history entry, opens the next one and persists
// the change guarded by the previous status.
func (s *projectService) applyStatus(ctx context.Context, actor Actor, p *repository.Project, change statusChange) (*repository.Project, error) {
	now := s.now().UTC()
	from := p.Status

	if open := openEntry(p); open != nil {
		done := now
		days := daysBetween(open.StartedAt, now)
		open.CompletedAt = &done
		open.DurationInDays = &days
	}

	entry := repository.StatusHistoryEntry{
		Status:    change.to,
		StartedAt: change.startedAt,
		DueDate:   change.dueDate,
		Notes:     change.notes,
		ChangedBy: actor.ID,
	}
	if entry.StartedAt.IsZero() {
		entry.StartedAt = now
	}

	p.Status = change.to
	p.DueDate = change.dueDate
	switch change.to {
	case types.ProjectCompleted:
		entry.CompletedAt = &now
		zero := 0
		entry.DurationInDays = &zero
		p.CompletedAt = &now
		p.IsLocked = true
	case types.ProjectCancelled:
		entry.CompletedAt = &now
		p.CancellationReason = change.reason
		p.IsLocked = true
	}
	p.StatusHistory = append(p.StatusHistory, entry)

	ok, err := s.projectRepo.UpdateStatus(ctx, p, from)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}

	if err := s.publisher.Publish(ctx, events.EventProjectStatusChanged, p.ID, events.ProjectStatusChangedPayload{
		ProjectID: p.ID,
		OldStatus: string(from),
		NewStatus: string(change.to),
		Locked:    p.IsLocked,
		ChangedBy: actor.ID,
	}); err != nil {
		log.Printf("[Project] ⚠️ Failed to publish status change for %s: %v", p.ID, err)
	}
	s.broadcaster.BroadcastProjectStatusChanged(p.ID, string(from), string(change.to), p.IsLocked, actor.ID)
	return p, nil
}

func (s *projectService) Transition(ctx context.Context, actor Actor, id string, target types.ProjectStatus) (*repository.Project, error) {
	p, err := s.loadEditable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !CanTimelineTransition(p.Status, target) {
		return nil, ErrInvalidTransition
	}
	if target == p.Status {
		return p, nil
	}
	return s.applyStatus(ctx, actor, p, statusChange{to: target})
}

func (s *projectService) Advance(ctx context.Context, actor Actor, id string) (*repository.Project, error) {
	p, err := s.loadEditable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	next, ok := NextTimelineStatus(p.Status)
	if !ok {
		return nil, ErrInvalidTransition
	}
	return s.applyStatus(ctx, actor, p, statusChange{to: next})
}

func (s *projectService) Cancel(ctx context.Context, actor Actor, id, reason string) (*repository.Project, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, newValidationError("reason", "required")
	}
	p, err := s.loadEditable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.applyStatus(ctx, actor, p, statusChange{to: types.ProjectCancelled, reason: &reason, notes: &reason})
}

func (s *projectService) UpdateStatus(ctx context.Context, actor Actor, id string, update StatusUpdate) (*repository.Project, error) {
	if types.TimelineIndex(update.Status) < 0 {
		return nil, newValidationError("status", "unknown project status")
	}
	var notes *string
	if update.Notes != nil {
		if n := strings.TrimSpace(*update.Notes); n != "" {
			notes = &n
		}
	}
	if update.Status != types.ProjectCompleted && update.DueDate == nil {
		return nil, newValidationError("dueDate", "required")
	}
	if update.StartDate != nil && update.DueDate != nil && update.DueDate.Before(*update.StartDate) {
		return nil, newValidationError("dueDate", "must not be before startDate")
	}

	p, err := s.loadEditable(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if update.Status == p.Status {
		if notes == nil {
			return nil, newValidationError("notes", "select a different status or add notes")
		}
		open := openEntry(p)
		if open == nil {
			return nil, ErrConflict
		}
		open.Notes = notes
		if update.DueDate != nil {
			open.DueDate = update.DueDate
			p.DueDate = update.DueDate
		}
		ok, err := s.projectRepo.UpdateStatus(ctx, p, p.Status)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrConflict
		}
		s.broadcaster.BroadcastProjectUpdated(p.ID, []string{"statusHistory"}, actor.ID)
		return p, nil
	}

	change := statusChange{to: update.Status, dueDate: update.DueDate, notes: notes}
	if update.StartDate != nil {
		change.startedAt = update.StartDate.UTC()
	}
	return s.applyStatus(ctx, actor, p, change)
}

// ============================================
// Product curation
// ============================================

func findDesign(p *repository.Project, designID string) (int, bool) {
	for i := range p.Designs {
		if p.Designs[i].DesignID == designID {
			return i, true
		}
	}
	return -1, false
}

func findItem(d *repository.ProjectDesign, productID string) (int, bool) {
	for i := range d.Products {
		if d.Products[i].Product.ID == productID {
			return i, true
		}
	}
	return -1, false
}

func (s *projectService) saveDesigns(ctx context.Context, actor Actor, p *repository.Project) (*repository.Project, error) {
	ok, err := s.projectRepo.UpdateDesigns(ctx, p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	s.broadcaster.BroadcastProjectUpdated(p.ID, []string{"designs"}, actor.ID)
	return p, nil
}

func (s *projectService) AddProduct(ctx context.Context, actor Actor, projectID, designID string, sel ProductSelection) (*repository.Project, error) {
	p, err := s.loadEditable(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}
	di, ok := findDesign(p, designID)
	if !ok {
		return nil, ErrNotFound
	}
	if _, exists := findItem(&p.Designs[di], sel.ProductID); exists {
		return nil, ErrConflict
	}

	product, err := s.productRepo.FindByID(ctx, sel.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, newValidationError("productId", "product not found")
	}

	item := repository.ProductItem{
		Product:     snapshotProduct(product),
		Quantity:    sel.Quantity,
		CustomPrice: sel.CustomPrice,
		Notes:       sel.Notes,
	}
	if err := ValidateProductItem(item); err != nil {
		return nil, err
	}
	p.Designs[di].Products = append(p.Designs[di].Products, item)
	return s.saveDesigns(ctx, actor, p)
}

func (s *projectService) UpdateProduct(ctx context.Context, actor Actor, projectID, designID, productID string, update ProductItemUpdate) (*repository.Project, error) {
	p, err := s.loadEditable(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}
	di, ok := findDesign(p, designID)
	if !ok {
		return nil, ErrNotFound
	}
	ii, ok := findItem(&p.Designs[di], productID)
	if !ok {
		return nil, ErrNotFound
	}

	item := p.Designs[di].Products[ii]
	if update.Quantity != nil {
		item.Quantity = *update.Quantity
	}
	if update.ClearPrice {
		item.CustomPrice = nil
	} else if update.CustomPrice != nil {
		item.CustomPrice = update.CustomPrice
	}
	if update.Notes != nil {
		item.Notes = update.Notes
	}
	if err := ValidateProductItem(item); err != nil {
		return nil, err
	}
	p.Designs[di].Products[ii] = item
	return s.saveDesigns(ctx, actor, p)
}

func (s *projectService) RemoveProduct(ctx context.Context, actor Actor, projectID, designID, productID string) (*repository.Project, error) {
	p, err := s.loadEditable(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}
	di, ok := findDesign(p, designID)
	if !ok {
		return nil, ErrNotFound
	}
	ii, ok := findItem(&p.Designs[di], productID)
	if !ok {
		return nil, ErrNotFound
	}
	items := p.Designs[di].Products
	p.Designs[di].Products = append(items[:ii:ii], items[ii+1:]...)
	return s.saveDesigns(ctx, actor, p)
}

func (s *projectService) UpdateTasks(ctx context.Context, actor Actor, id string, total, completed int) (*repository.Project, error) {
	verr := &ValidationError{}
	if total < 0 {
		verr.add("totalTasks", "must not be negative")
	}
	if completed < 0 {
		verr.add("completedTasks", "must not be negative")
	} else if completed > total {
		verr.add("completedTasks", "must not exceed totalTasks")
	}
	if !verr.empty() {
		return nil, verr
	}

	p, err := s.loadEditable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	p.TotalTasks = total
	p.CompletedTasks = completed
	if err := s.projectRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.broadcaster.BroadcastProjectUpdated(p.ID, []string{"totalTasks", "completedTasks"}, actor.ID)
	return p, nil
}
