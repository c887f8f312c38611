package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
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
// Lead Service
// ============================================

// leadPipeline lists the manual status moves before conversion. Converted and
// cancelled are reached only through Convert and Reject.
var leadPipeline = map[types.LeadStatus][]types.LeadStatus{
	types.LeadNew:        {types.LeadConsulting, types.LeadQualified},
	types.LeadConsulting: {types.LeadQualified},
	types.LeadQualified:  {types.LeadConsulting},
}

func CanLeadTransition(from, to types.LeadStatus) bool {
	for _, next := range leadPipeline[from] {
		if next == to {
			return true
		}
	}
	return false
}

type LeadList struct {
	Leads  []*repository.Lead
	Counts LeadCounts
}

type LeadDetail struct {
	Lead     *repository.Lead
	Sections []RoomSection
	Badge    types.Badge
}

type ProductSelection struct {
	ProductID   string
	Quantity    int
	CustomPrice *decimal.Decimal
	Notes       *string
}

// ConsultRequest is a customer's "consult" click on a published design.
type ConsultRequest struct {
	DesignID string
	RoomType types.RoomType
	Notes    *string
	Products []ProductSelection
	Budget   *decimal.Decimal
}

type LeadUpdate struct {
	Priority   *types.Priority
	Budget     *decimal.Decimal
	DesignerID *string
}

type ConvertRequest struct {
	StartDate         *time.Time
	EndDate           *time.Time
	SelectedDesignIDs []string
}

type ConvertResult struct {
	Lead           *repository.Lead
	Project        *repository.Project
	CopiedMessages int
}

type LeadService interface {
	List(ctx context.Context, actor Actor, filter LeadFilter) (*LeadList, error)
	Get(ctx context.Context, actor Actor, id string) (*LeadDetail, error)
	Consult(ctx context.Context, actor Actor, req ConsultRequest) (*repository.Lead, error)
	AddDesign(ctx context.Context, actor Actor, leadID string, req ConsultRequest) (*repository.Lead, error)
	UpdateStatus(ctx context.Context, actor Actor, id string, status types.LeadStatus) (*repository.Lead, error)
	Update(ctx context.Context, actor Actor, id string, update LeadUpdate) (*repository.Lead, error)
	Convert(ctx context.Context, actor Actor, id string, req ConvertRequest) (*ConvertResult, error)
	Reject(ctx context.Context, actor Actor, id, reason string) (*repository.Lead, error)
}

type LeadServiceDeps struct {
	Leads       repository.LeadRepository
	Projects    repository.ProjectRepository
	Designs     repository.DesignRepository
	Products    repository.ProductRepository
	Users       repository.UserRepository
	Messages    repository.MessageRepository
	Locker      Locker
	LockTTL     time.Duration
	Publisher   events.Publisher
	Mailer      Mailer
	Broadcaster *socket.Broadcaster
	FrontendURL string
}

type leadService struct {
	LeadServiceDeps
	now func() time.Time
}

func NewLeadService(deps LeadServiceDeps) LeadService {
	if deps.Publisher == nil {
		deps.Publisher = events.NoopPublisher{}
	}
	if deps.Locker == nil {
		deps.Locker = NewMemoryLocker()
	}
	if deps.LockTTL <= 0 {
		deps.LockTTL = 30 * time.Second
	}
	return &leadService{LeadServiceDeps: deps, now: time.Now}
}

func (s *leadService) load(ctx context.Context, id string) (*repository.Lead, error) {
	lead, err := s.Leads.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, ErrNotFound
	}
	return lead, nil
}

// loadOwned loads a lead the actor manages as its designer or as an admin.
func (s *leadService) loadOwned(ctx context.Context, actor Actor, id string) (*repository.Lead, error) {
	lead, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.owns(lead.DesignerID) {
		return nil, ErrForbidden
	}
	return lead, nil
}

func canViewLead(actor Actor, lead *repository.Lead) bool {
	if actor.owns(lead.DesignerID) {
		return true
	}
	return lead.CustomerID != nil && *lead.CustomerID == actor.ID
}

func (s *leadService) publish(ctx context.Context, eventType, correlationID string, payload any) {
	if err := s.Publisher.Publish(ctx, eventType, correlationID, payload); err != nil {
		log.Printf("[Lead] ⚠️ Failed to publish %s for %s: %v", eventType, correlationID, err)
	}
}

func (s *leadService) List(ctx context.Context, actor Actor, filter LeadFilter) (*LeadList, error) {
	if actor.Role == types.RoleUser {
		return nil, ErrForbidden
	}
	leads, err := s.Leads.FindAll(ctx, actor.scope())
	if err != nil {
		return nil, err
	}
	return &LeadList{
		Leads:  FilterLeads(leads, filter),
		Counts: CountLeads(leads),
	}, nil
}

func (s *leadService) Get(ctx context.Context, actor Actor, id string) (*LeadDetail, error) {
	lead, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canViewLead(actor, lead) {
		return nil, ErrForbidden
	}
	return &LeadDetail{
		Lead:     lead,
		Sections: AggregateDesignRequests(lead.DesignRequests),
		Badge:    types.LeadStatusBadge(lead.Status),
	}, nil
}

// buildRequest snapshots the design and the selected products.
func (s *leadService) buildRequest(ctx context.Context, req ConsultRequest) (types.RoomType, *repository.Design, repository.DesignRequest, error) {
	if strings.TrimSpace(req.DesignID) == "" {
		return "", nil, repository.DesignRequest{}, newValidationError("designId", "required")
	}
	design, err := s.Designs.FindByID(ctx, req.DesignID)
	if err != nil {
		return "", nil, repository.DesignRequest{}, err
	}
	if design == nil {
		return "", nil, repository.DesignRequest{}, ErrNotFound
	}
	if design.Status != types.DesignApproved {
		return "", nil, repository.DesignRequest{}, newValidationError("designId", "design is not published")
	}

	room := req.RoomType
	if room == "" {
		room = design.RoomType
	}
	if !types.IsValidRoomType(string(room)) {
		return "", nil, repository.DesignRequest{}, newValidationError("roomType", "unknown room type")
	}

	items, err := s.resolveProducts(ctx, req.Products)
	if err != nil {
		return "", nil, repository.DesignRequest{}, err
	}

	image := ""
	if len(design.Images) > 0 {
		image = design.Images[0]
	}
	return room, design, repository.DesignRequest{
		DesignID:    design.ID,
		DesignTitle: design.Title,
		DesignImage: image,
		RequestedAt: s.now().UTC(),
		Notes:       req.Notes,
		Products:    items,
	}, nil
}

func (s *leadService) resolveProducts(ctx context.Context, selections []ProductSelection) ([]repository.ProductItem, error) {
	items := make([]repository.ProductItem, 0, len(selections))
	if len(selections) == 0 || s.Products == nil {
		return items, nil
	}
	ids := make([]string, len(selections))
	for i, sel := range selections {
		ids[i] = sel.ProductID
	}
	products, err := s.Products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*repository.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for _, sel := range selections {
		p, ok := byID[sel.ProductID]
		if !ok {
			return nil, newValidationError("products", fmt.Sprintf("product %s not found", sel.ProductID))
		}
		item := repository.ProductItem{
			Product:     snapshotProduct(p),
			Quantity:    sel.Quantity,
			CustomPrice: sel.CustomPrice,
			Notes:       sel.Notes,
		}
		if err := ValidateProductItem(item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func snapshotProduct(p *repository.Product) repository.ProductRef {
	return repository.ProductRef{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Thumbnail: p.Thumbnail,
		Stock:     p.Stock,
	}
}

func (s *leadService) Consult(ctx context.Context, actor Actor, req ConsultRequest) (*repository.Lead, error) {
	room, design, request, err := s.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	customer, err := s.Users.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, ErrUserNotFound
	}

	open, err := s.Leads.FindOpenByCustomer(ctx, customer.ID, design.DesignerID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return s.appendRequest(ctx, open, room, request)
	}

	designerID := design.DesignerID
	customerID := customer.ID
	lead := &repository.Lead{
		CustomerID:     &customerID,
		CustomerName:   customer.Name,
		CustomerEmail:  customer.Email,
		CustomerAvatar: customer.Avatar,
		DesignerID:     &designerID,
		DesignRequests: repository.DesignRequests{room: {request}},
		Status:         types.LeadNew,
		Priority:       types.PriorityMedium,
		LastContactAt:  s.now().UTC(),
		Budget:         req.Budget,
	}
	if err := s.Leads.Create(ctx, lead); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventLeadCreated, lead.ID, map[string]string{
		"lead_id":     lead.ID,
		"designer_id": designerID,
		"customer_id": customerID,
		"design_id":   design.ID,
	})
	s.Broadcaster.BroadcastLeadCreated(designerID, map[string]interface{}{
		"id":           lead.ID,
		"customerName": lead.CustomerName,
		"designTitle":  request.DesignTitle,
	})
	return lead, nil
}

func (s *leadService) AddDesign(ctx context.Context, actor Actor, leadID string, req ConsultRequest) (*repository.Lead, error) {
	lead, err := s.load(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if !canViewLead(actor, lead) {
		return nil, ErrForbidden
	}
	room, _, request, err := s.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.appendRequest(ctx, lead, room, request)
}

// appendRequest adds or replaces the request for a design in a room bucket.
func (s *leadService) appendRequest(ctx context.Context, lead *repository.Lead, room types.RoomType, request repository.DesignRequest) (*repository.Lead, error) {
	if lead.Status.IsTerminal() {
		return nil, ErrLeadClosed
	}
	if lead.DesignRequests == nil {
		lead.DesignRequests = repository.DesignRequests{}
	}
	bucket := lead.DesignRequests[room]
	replaced := false
	for i := range bucket {
		if bucket[i].DesignID == request.DesignID {
			bucket[i] = request
			replaced = true
		}
	}
	if !replaced {
		bucket = append(bucket, request)
	}
	lead.DesignRequests[room] = bucket

	if err := s.Leads.UpdateDesignRequests(ctx, lead.ID, lead.DesignRequests); err != nil {
		return nil, err
	}
	s.Broadcaster.BroadcastLeadUpdated(lead.ID, map[string]interface{}{
		"id":       lead.ID,
		"roomType": string(room),
		"designId": request.DesignID,
	}, []string{"designRequests"}, "")
	return lead, nil
}

func (s *leadService) UpdateStatus(ctx context.Context, actor Actor, id string, status types.LeadStatus) (*repository.Lead, error) {
	if !types.IsValidLeadStatus(string(status)) {
		return nil, newValidationError("status", "unknown lead status")
	}
	lead, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if lead.Status.IsTerminal() {
		return nil, ErrLeadClosed
	}
	if lead.Status == status {
		return lead, nil
	}
	if !CanLeadTransition(lead.Status, status) {
		return nil, ErrInvalidTransition
	}

	ok, err := s.Leads.UpdateStatus(ctx, id, lead.Status, status)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}

	old := lead.Status
	lead.Status = status
	s.publish(ctx, events.EventLeadStatusChanged, id, events.LeadStatusChangedPayload{
		LeadID:    id,
		OldStatus: string(old),
		NewStatus: string(status),
		ChangedBy: actor.ID,
	})
	s.Broadcaster.BroadcastLeadStatusChanged(id, string(old), string(status), actor.ID)
	return lead, nil
}

func (s *leadService) Update(ctx context.Context, actor Actor, id string, update LeadUpdate) (*repository.Lead, error) {
	lead, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if lead.Status.IsTerminal() {
		return nil, ErrLeadClosed
	}

	var changes []string
	if update.Priority != nil {
		if !types.IsValidPriority(string(*update.Priority)) {
			return nil, newValidationError("priority", "unknown priority")
		}
		lead.Priority = *update.Priority
		changes = append(changes, "priority")
	}
	if update.Budget != nil {
		if update.Budget.IsNegative() {
			return nil, newValidationError("budget", "must not be negative")
		}
		lead.Budget = update.Budget
		changes = append(changes, "budget")
	}
	if update.DesignerID != nil {
		if !actor.IsAdmin() {
			return nil, ErrForbidden
		}
		designer, err := s.Users.FindByID(ctx, *update.DesignerID)
		if err != nil {
			return nil, err
		}
		if designer == nil || designer.Role != types.RoleDesigner {
			return nil, newValidationError("designerId", "not a designer")
		}
		lead.DesignerID = update.DesignerID
		changes = append(changes, "designerId")
	}
	if len(changes) == 0 {
		return lead, nil
	}

	if err := s.Leads.Update(ctx, lead); err != nil {
		return nil, err
	}
	s.Broadcaster.BroadcastLeadUpdated(id, map[string]interface{}{
		"id":       id,
		"priority": string(lead.Priority),
	}, changes, actor.ID)
	return lead, nil
}

// ============================================
// Conversion
// ============================================

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// validateConversionDates runs before any store access.
func validateConversionDates(req ConvertRequest) (time.Time, time.Time, error) {
	verr := &ValidationError{}
	if req.StartDate == nil || req.StartDate.IsZero() {
		verr.add("startDate", "required")
	}
	if req.EndDate == nil || req.EndDate.IsZero() {
		verr.add("endDate", "required")
	}
	if !verr.empty() {
		return time.Time{}, time.Time{}, verr
	}
	start, end := truncateDay(*req.StartDate), truncateDay(*req.EndDate)
	if end.Before(start) {
		return time.Time{}, time.Time{}, newValidationError("endDate", "must not be before startDate")
	}
	return start, end, nil
}

// checkSelection accepts an empty selection or one naming every requested design.
func checkSelection(requested, selected []string) error {
	if len(selected) == 0 {
		return nil
	}
	want := make(map[string]bool, len(requested))
	for _, id := range requested {
		want[id] = true
	}
	got := make(map[string]bool, len(selected))
	for _, id := range selected {
		if !want[id] {
			return newValidationError("selectedDesignIds", fmt.Sprintf("design %s is not part of this lead", id))
		}
		got[id] = true
	}
	if len(got) != len(want) {
		return newValidationError("selectedDesignIds", "all requested designs must be included")
	}
	return nil
}

func projectTitle(lead *repository.Lead, designs []repository.ProjectDesign) string {
	switch len(designs) {
	case 0:
		return fmt.Sprintf("%s's project", lead.CustomerName)
	case 1:
		return fmt.Sprintf("%s - %s", designs[0].Title, lead.CustomerName)
	default:
		return fmt.Sprintf("%s +%d - %s", designs[0].Title, len(designs)-1, lead.CustomerName)
	}
}

func (s *leadService) Convert(ctx context.Context, actor Actor, id string, req ConvertRequest) (*ConvertResult, error) {
	start, end, err := validateConversionDates(req)
	if err != nil {
		return nil, err
	}

	lead, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if lead.Status.IsTerminal() {
		return nil, ErrLeadClosed
	}

	designIDs := DesignIDs(lead.DesignRequests)
	if err := checkSelection(designIDs, req.SelectedDesignIDs); err != nil {
		return nil, err
	}

	lockKey := "lead:convert:" + id
	token, acquired, err := s.Locker.TryLock(ctx, lockKey, s.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire conversion lock: %w", err)
	}
	if !acquired {
		return nil, ErrConversionInProgress
	}
	defer func() {
		if err := s.Locker.Unlock(context.WithoutCancel(ctx), lockKey, token); err != nil {
			log.Printf("[Lead] ⚠️ Failed to release %s: %v", lockKey, err)
		}
	}()

	now := s.now().UTC()
	designs := ProjectDesignsFromRequests(lead.DesignRequests)
	dueDate := end
	project := &repository.Project{
		ID:              uuid.NewString(),
		LeadID:          lead.ID,
		CustomerID:      lead.CustomerID,
		CustomerName:    lead.CustomerName,
		CustomerEmail:   lead.CustomerEmail,
		CustomerAvatar:  lead.CustomerAvatar,
		DesignerID:      lead.DesignerID,
		Title:           projectTitle(lead, designs),
		Status:          types.ProjectConsultation,
		Priority:        lead.Priority,
		Designs:         designs,
		StartDate:       start,
		EndDate:         end,
		DueDate:         &dueDate,
		EstimatedBudget: lead.Budget,
		StatusHistory: []repository.StatusHistoryEntry{{
			Status:    types.ProjectConsultation,
			StartedAt: now,
			ChangedBy: actor.ID,
		}},
	}

	copied, err := s.copyChat(ctx, lead, project, start, end.AddDate(0, 0, 1), now)
	if err != nil {
		return nil, err
	}

	if err := s.Projects.CreateFromLead(ctx, project); err != nil {
		s.discardCopies(ctx, copied)
		if errors.Is(err, repository.ErrLeadNotOpen) {
			return nil, ErrLeadClosed
		}
		return nil, fmt.Errorf("create project from lead %s: %w", id, err)
	}

	log.Printf("[Lead] ✅ Lead %s converted to project %s (%d messages copied)", id, project.ID, len(copied))
	s.afterConversion(ctx, actor, lead, project, designIDs, len(copied))

	// The store is the source of truth for the final state of both records.
	// The conversion is committed, so a failed re-read falls back to local copies.
	converted, err := s.load(ctx, id)
	if err != nil {
		log.Printf("[Lead] ⚠️ Re-read of converted lead %s failed: %v", id, err)
		converted = convertedCopy(lead, project, now)
	}
	created, err := s.Projects.FindByID(ctx, project.ID)
	if err != nil || created == nil {
		if err != nil {
			log.Printf("[Lead] ⚠️ Re-read of project %s failed: %v", project.ID, err)
		}
		created = project
	}
	return &ConvertResult{Lead: converted, Project: created, CopiedMessages: len(copied)}, nil
}

func convertedCopy(lead *repository.Lead, project *repository.Project, at time.Time) *repository.Lead {
	c := *lead
	c.Status = types.LeadConverted
	c.ProjectID = &project.ID
	c.ConvertedAt = &at
	c.UpdatedAt = at
	return &c
}

// copyChat duplicates the lead conversation inside [from, to) into the
// project chat and appends a system note. It returns the new message IDs.
func (s *leadService) copyChat(ctx context.Context, lead *repository.Lead, project *repository.Project, from, to, now time.Time) ([]string, error) {
	if s.Messages == nil {
		return nil, nil
	}
	history, err := s.Messages.FindInRange(ctx, lead.ID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load lead chat: %w", err)
	}
	sort.SliceStable(history, func(i, j int) bool { return history[i].SentAt.Before(history[j].SentAt) })

	copies := make([]*repository.Message, 0, len(history)+1)
	for _, m := range history {
		if m.Deleted {
			continue
		}
		origin := m.ID
		c := *m
		c.ID = uuid.NewString()
		c.ChatID = project.ID
		c.CopiedFrom = &origin
		copies = append(copies, &c)
	}
	copies = append(copies, &repository.Message{
		ID:         uuid.NewString(),
		ChatID:     project.ID,
		SenderID:   "system",
		SenderRole: types.SenderSystem,
		Type:       types.MessageSystem,
		Content:    fmt.Sprintf("Project \"%s\" created from lead conversation", project.Title),
		Status:     types.MessageSent,
		SentAt:     now,
	})

	if err := s.Messages.InsertMany(ctx, copies); err != nil {
		return nil, fmt.Errorf("copy lead chat: %w", err)
	}
	ids := make([]string, len(copies))
	for i, c := range copies {
		ids[i] = c.ID
	}
	return ids, nil
}

func (s *leadService) discardCopies(ctx context.Context, ids []string) {
	if len(ids) == 0 || s.Messages == nil {
		return
	}
	if err := s.Messages.DeleteByIDs(context.WithoutCancel(ctx), ids); err != nil {
		log.Printf("[Lead] ⚠️ Failed to discard %d copied messages: %v", len(ids), err)
	}
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func (s *leadService) afterConversion(ctx context.Context, actor Actor, lead *repository.Lead, project *repository.Project, designIDs []string, copied int) {
	s.publish(ctx, events.EventLeadConverted, lead.ID, events.LeadConvertedPayload{
		LeadID:         lead.ID,
		ProjectID:      project.ID,
		DesignerID:     deref(lead.DesignerID),
		CustomerID:     deref(lead.CustomerID),
		DesignIDs:      designIDs,
		StartDate:      project.StartDate,
		EndDate:        project.EndDate,
		CopiedMessages: copied,
		ConvertedBy:    actor.ID,
	})
	s.Broadcaster.BroadcastLeadConverted(lead.ID, project.ID, deref(lead.CustomerID))

	if s.Mailer != nil && lead.CustomerEmail != "" {
		s.Mailer.Enqueue([]string{lead.CustomerEmail}, "Your interior project has started", "lead_converted", map[string]interface{}{
			"CustomerName": lead.CustomerName,
			"ProjectTitle": project.Title,
			"StartDate":    project.StartDate.Format("02 Jan 2006"),
			"EndDate":      project.EndDate.Format("02 Jan 2006"),
			"ProjectURL":   fmt.Sprintf("%s/projects/%s", strings.TrimRight(s.FrontendURL, "/"), project.ID),
		})
	}
}

func (s *leadService) Reject(ctx context.Context, actor Actor, id, reason string) (*repository.Lead, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, newValidationError("reason", "required")
	}

	lead, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if lead.Status.IsTerminal() {
		return nil, ErrLeadClosed
	}

	ok, err := s.Leads.Cancel(ctx, id, reason)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLeadClosed
	}

	s.publish(ctx, events.EventLeadRejected, id, events.LeadRejectedPayload{
		LeadID:     id,
		Reason:     reason,
		RejectedBy: actor.ID,
	})
	s.Broadcaster.BroadcastLeadRejected(id, reason, deref(lead.CustomerID))
	if s.Mailer != nil && lead.CustomerEmail != "" {
		s.Mailer.Enqueue([]string{lead.CustomerEmail}, "Update on your design consultation", "lead_rejected", map[string]interface{}{
			"CustomerName": lead.CustomerName,
			"Reason":       reason,
		})
	}

	return s.load(ctx, id)
}
