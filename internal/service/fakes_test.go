package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Marga-Ghale/ora-interior-backend/internal/repository"
	"github.com/Marga-Ghale/ora-interior-backend/internal/types"
)

// ============================================
// In-memory repositories for service tests
// ============================================

type fakeUsers struct {
	mu     sync.Mutex
	users  map[string]*repository.User
	tokens map[string]*repository.RefreshToken
	seq    int
}

func newFakeUsers(users ...*repository.User) *fakeUsers {
	f := &fakeUsers{users: map[string]*repository.User{}, tokens: map[string]*repository.RefreshToken{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, u *repository.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	u.ID = fmt.Sprintf("user-%d", f.seq)
	f.users[u.ID] = u
	return nil
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (*repository.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id], nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*repository.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) FindAll(_ context.Context) ([]*repository.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*repository.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUsers) FindByRole(ctx context.Context, role string) ([]*repository.User, error) {
	all, _ := f.FindAll(ctx)
	out := make([]*repository.User, 0)
	for _, u := range all {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUsers) Search(ctx context.Context, _ string) ([]*repository.User, error) {
	return f.FindAll(ctx)
}

func (f *fakeUsers) Update(_ context.Context, u *repository.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = u
	return nil
}

func (f *fakeUsers) UpdateLastActive(context.Context, string) error { return nil }

func (f *fakeUsers) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
	return nil
}

func (f *fakeUsers) SaveRefreshToken(_ context.Context, t *repository.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[t.Token] = t
	return nil
}

func (f *fakeUsers) FindRefreshToken(_ context.Context, token string) (*repository.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tokens[token], nil
}

func (f *fakeUsers) DeleteRefreshToken(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, token)
	return nil
}

func (f *fakeUsers) DeleteUserRefreshTokens(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, t := range f.tokens {
		if t.UserID == userID {
			delete(f.tokens, k)
		}
	}
	return nil
}

type fakeLeads struct {
	mu    sync.Mutex
	leads map[string]*repository.Lead
	seq   int
	calls int
	// convertedErr fails reads of leads that are already converted.
	convertedErr error
}

func newFakeLeads(leads ...*repository.Lead) *fakeLeads {
	f := &fakeLeads{leads: map[string]*repository.Lead{}}
	for _, l := range leads {
		f.leads[l.ID] = l
	}
	return f
}

func (f *fakeLeads) Create(_ context.Context, l *repository.Lead) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.seq++
	l.ID = fmt.Sprintf("lead-%d", f.seq)
	f.leads[l.ID] = l
	return nil
}

func (f *fakeLeads) FindByID(_ context.Context, id string) (*repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	l, ok := f.leads[id]
	if !ok {
		return nil, nil
	}
	if f.convertedErr != nil && l.Status == types.LeadConverted {
		return nil, f.convertedErr
	}
	c := *l
	return &c, nil
}

func (f *fakeLeads) FindOpenByCustomer(_ context.Context, customerID, designerID string) (*repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.leads {
		if l.CustomerID != nil && *l.CustomerID == customerID &&
			l.DesignerID != nil && *l.DesignerID == designerID && !l.Status.IsTerminal() {
			c := *l
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeLeads) FindAll(_ context.Context, designerID string) ([]*repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*repository.Lead, 0)
	for _, l := range f.leads {
		if designerID == "" || (l.DesignerID != nil && *l.DesignerID == designerID) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeLeads) Update(_ context.Context, l *repository.Lead) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := *l
	f.leads[l.ID] = &c
	return nil
}

func (f *fakeLeads) UpdateStatus(_ context.Context, id string, from, to types.LeadStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.leads[id]
	if !ok || l.Status != from {
		return false, nil
	}
	l.Status = to
	return true, nil
}

func (f *fakeLeads) UpdateDesignRequests(_ context.Context, id string, requests repository.DesignRequests) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.leads[id]; ok {
		l.DesignRequests = requests
	}
	return nil
}

func (f *fakeLeads) Cancel(_ context.Context, id, reason string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.leads[id]
	if !ok || l.Status.IsTerminal() {
		return false, nil
	}
	l.Status = types.LeadCancelled
	l.CancellationReason = &reason
	return true, nil
}

func (f *fakeLeads) RecordMessage(_ context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.leads[id]; ok {
		l.TotalMessages++
		l.LastContactAt = at
	}
	return nil
}

func (f *fakeLeads) CountByStatus(ctx context.Context, designerID string) (map[types.LeadStatus]int, error) {
	leads, _ := f.FindAll(ctx, designerID)
	counts := map[types.LeadStatus]int{}
	for _, l := range leads {
		counts[l.Status]++
	}
	return counts, nil
}

// fakeProjects shares the lead store so CreateFromLead can flip the lead.
type fakeProjects struct {
	mu        sync.Mutex
	projects  map[string]*repository.Project
	leads     *fakeLeads
	createErr error
	findErr   error
	// beforeDesignsWrite runs against the stored row ahead of the version check.
	beforeDesignsWrite func(stored *repository.Project)
}

func newFakeProjects(leads *fakeLeads, projects ...*repository.Project) *fakeProjects {
	f := &fakeProjects{projects: map[string]*repository.Project{}, leads: leads}
	for _, p := range projects {
		f.projects[p.ID] = p
	}
	return f
}

func (f *fakeProjects) CreateFromLead(_ context.Context, p *repository.Project) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.leads != nil {
		f.leads.mu.Lock()
		l, ok := f.leads.leads[p.LeadID]
		if !ok || l.Status.IsTerminal() {
			f.leads.mu.Unlock()
			return repository.ErrLeadNotOpen
		}
		l.Status = types.LeadConverted
		pid := p.ID
		l.ProjectID = &pid
		f.leads.mu.Unlock()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c := *p
	f.projects[p.ID] = &c
	return nil
}

func (f *fakeProjects) FindByID(_ context.Context, id string) (*repository.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	p, ok := f.projects[id]
	if !ok {
		return nil, nil
	}
	c := *p
	c.StatusHistory = append([]repository.StatusHistoryEntry(nil), p.StatusHistory...)
	c.Designs = append([]repository.ProjectDesign(nil), p.Designs...)
	return &c, nil
}

func (f *fakeProjects) FindByLeadID(_ context.Context, leadID string) (*repository.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.projects {
		if p.LeadID == leadID {
			c := *p
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeProjects) FindAll(_ context.Context, designerID string) ([]*repository.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*repository.Project, 0)
	for _, p := range f.projects {
		if designerID == "" || (p.DesignerID != nil && *p.DesignerID == designerID) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeProjects) Update(_ context.Context, p *repository.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := *p
	f.projects[p.ID] = &c
	return nil
}

func (f *fakeProjects) UpdateStatus(_ context.Context, p *repository.Project, from types.ProjectStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.projects[p.ID]
	if !ok || stored.Status != from {
		return false, nil
	}
	c := *p
	f.projects[p.ID] = &c
	return true, nil
}

func (f *fakeProjects) UpdateDesigns(_ context.Context, p *repository.Project) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.projects[p.ID]
	if !ok {
		return false, nil
	}
	if f.beforeDesignsWrite != nil {
		f.beforeDesignsWrite(stored)
	}
	if !stored.UpdatedAt.Equal(p.UpdatedAt) {
		return false, nil
	}
	stored.Designs = p.Designs
	stored.UpdatedAt = stored.UpdatedAt.Add(time.Millisecond)
	p.UpdatedAt = stored.UpdatedAt
	return true, nil
}

func (f *fakeProjects) CountByStatus(ctx context.Context, designerID string) (map[types.ProjectStatus]int, error) {
	projects, _ := f.FindAll(ctx, designerID)
	counts := map[types.ProjectStatus]int{}
	for _, p := range projects {
		counts[p.Status]++
	}
	return counts, nil
}

type fakeDesigns struct {
	mu      sync.Mutex
	designs map[string]*repository.Design
	seq     int
}

func newFakeDesigns(designs ...*repository.Design) *fakeDesigns {
	f := &fakeDesigns{designs: map[string]*repository.Design{}}
	for _, d := range designs {
		f.designs[d.ID] = d
	}
	return f
}

func (f *fakeDesigns) Create(_ context.Context, d *repository.Design) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	d.ID = fmt.Sprintf("design-%d", f.seq)
	if d.Status == "" {
		d.Status = types.DesignDraft
	}
	f.designs[d.ID] = d
	return nil
}

func (f *fakeDesigns) FindByID(_ context.Context, id string) (*repository.Design, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.designs[id]
	if !ok {
		return nil, nil
	}
	c := *d
	return &c, nil
}

func (f *fakeDesigns) FindByIDs(ctx context.Context, ids []string) ([]*repository.Design, error) {
	out := make([]*repository.Design, 0, len(ids))
	for _, id := range ids {
		if d, _ := f.FindByID(ctx, id); d != nil {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDesigns) List(_ context.Context, filter repository.DesignFilter) ([]*repository.Design, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*repository.Design, 0)
	for _, d := range f.designs {
		if filter.DesignerID != "" && d.DesignerID != filter.DesignerID {
			continue
		}
		if filter.Status != "" && d.Status != filter.Status {
			continue
		}
		if filter.RoomType != "" && d.RoomType != filter.RoomType {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeDesigns) Update(_ context.Context, d *repository.Design) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := *d
	f.designs[d.ID] = &c
	return nil
}

func (f *fakeDesigns) UpdateStatus(_ context.Context, id string, from, to types.DesignStatus, reason *string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.designs[id]
	if !ok || d.Status != from {
		return false, nil
	}
	d.Status = to
	d.RejectionReason = reason
	return true, nil
}

func (f *fakeDesigns) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.designs, id)
	return nil
}

type fakeProducts struct {
	mu       sync.Mutex
	products map[string]*repository.Product
	seq      int
}

func newFakeProducts(products ...*repository.Product) *fakeProducts {
	f := &fakeProducts{products: map[string]*repository.Product{}}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeProducts) Create(_ context.Context, p *repository.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	p.ID = fmt.Sprintf("product-%d", f.seq)
	f.products[p.ID] = p
	return nil
}

func (f *fakeProducts) FindByID(_ context.Context, id string) (*repository.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products[id], nil
}

func (f *fakeProducts) FindByIDs(ctx context.Context, ids []string) ([]*repository.Product, error) {
	out := make([]*repository.Product, 0, len(ids))
	for _, id := range ids {
		if p, _ := f.FindByID(ctx, id); p != nil {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProducts) List(_ context.Context, filter repository.ProductFilter) ([]*repository.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*repository.Product, 0)
	for _, p := range f.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.InStock && p.Stock <= 0 {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeProducts) Update(_ context.Context, p *repository.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[p.ID] = p
	return nil
}

func (f *fakeProducts) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.products, id)
	return nil
}

type fakeMessages struct {
	mu        sync.Mutex
	messages  map[string]*repository.Message
	seq       int
	insertErr error
	deleted   []string
}

func newFakeMessages(msgs ...*repository.Message) *fakeMessages {
	f := &fakeMessages{messages: map[string]*repository.Message{}}
	for _, m := range msgs {
		f.messages[m.ID] = m
	}
	return f
}

func (f *fakeMessages) Create(_ context.Context, m *repository.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m.ID == "" {
		f.seq++
		m.ID = fmt.Sprintf("msg-%d", f.seq)
	}
	f.messages[m.ID] = m
	return nil
}

func (f *fakeMessages) FindByID(_ context.Context, id string) (*repository.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.messages[id], nil
}

func (f *fakeMessages) chat(chatID string) []*repository.Message {
	out := make([]*repository.Message, 0)
	for _, m := range f.messages {
		if m.ChatID == chatID && !m.Deleted {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SentAt.Before(out[j].SentAt) })
	return out
}

func (f *fakeMessages) FindByChat(_ context.Context, chatID string, before *time.Time, limit int) ([]*repository.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*repository.Message, 0)
	for _, m := range f.chat(chatID) {
		if before == nil || m.SentAt.Before(*before) {
			out = append(out, m)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (f *fakeMessages) FindInRange(_ context.Context, chatID string, from, to time.Time) ([]*repository.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*repository.Message, 0)
	for _, m := range f.chat(chatID) {
		if !m.SentAt.Before(from) && m.SentAt.Before(to) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessages) InsertMany(_ context.Context, msgs []*repository.Message) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range msgs {
		f.messages[m.ID] = m
	}
	return nil
}

func (f *fakeMessages) DeleteByIDs(_ context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		delete(f.messages, id)
		f.deleted = append(f.deleted, id)
	}
	return nil
}

func (f *fakeMessages) MarkRead(_ context.Context, chatID, readerID string, at time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, m := range f.chat(chatID) {
		if m.SenderID != readerID && m.Status != types.MessageRead {
			m.Status = types.MessageRead
			t := at
			m.ReadAt = &t
			n++
		}
	}
	return n, nil
}

func (f *fakeMessages) SoftDelete(_ context.Context, id, senderID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.messages[id]
	if !ok || m.SenderID != senderID {
		return false, nil
	}
	m.Deleted = true
	return true, nil
}

func (f *fakeMessages) count(chatID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.chat(chatID))
}

type fakeQuotes struct {
	mu     sync.Mutex
	quotes map[string]*repository.Quotation
	seq    int
}

func newFakeQuotes(quotes ...*repository.Quotation) *fakeQuotes {
	f := &fakeQuotes{quotes: map[string]*repository.Quotation{}}
	for _, q := range quotes {
		f.quotes[q.ID] = q
	}
	return f
}

func (f *fakeQuotes) Create(_ context.Context, q *repository.Quotation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	q.ID = fmt.Sprintf("quote-%d", f.seq)
	version := 0
	for _, existing := range f.quotes {
		if existing.ProjectID == q.ProjectID && existing.Version > version {
			version = existing.Version
		}
	}
	q.Version = version + 1
	if q.Status == "" {
		q.Status = types.QuotePendingApproval
	}
	c := *q
	f.quotes[q.ID] = &c
	return nil
}

func (f *fakeQuotes) FindByID(_ context.Context, id string) (*repository.Quotation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.quotes[id]
	if !ok {
		return nil, nil
	}
	c := *q
	c.ApprovalHistory = append(repository.ApprovalHistory(nil), q.ApprovalHistory...)
	return &c, nil
}

func (f *fakeQuotes) List(_ context.Context, filter repository.QuotationFilter) ([]*repository.Quotation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*repository.Quotation, 0)
	for _, q := range f.quotes {
		if filter.Status != "" && q.Status != filter.Status {
			continue
		}
		if filter.DesignerID != "" && (q.DesignerID == nil || *q.DesignerID != filter.DesignerID) {
			continue
		}
		if filter.ProjectID != "" && q.ProjectID != filter.ProjectID {
			continue
		}
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeQuotes) UpdateDecision(_ context.Context, q *repository.Quotation, from types.QuoteStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.quotes[q.ID]
	if !ok || stored.Status != from {
		return false, nil
	}
	c := *q
	f.quotes[q.ID] = &c
	return true, nil
}

func (f *fakeQuotes) ExpireBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, q := range f.quotes {
		if q.ValidUntil == nil || !q.ValidUntil.Before(cutoff) {
			continue
		}
		switch q.Status {
		case types.QuotePendingApproval, types.QuoteAdminApproved, types.QuoteSent:
			q.Status = types.QuoteExpired
			n++
		}
	}
	return n, nil
}

// ============================================
// Collaborator fakes
// ============================================

type publishedEvent struct {
	eventType     string
	correlationID string
	payload       any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, eventType, correlationID string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{eventType, correlationID, payload})
	return nil
}

func (p *recordingPublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.eventType
	}
	return out
}

type sentMail struct {
	to       []string
	subject  string
	template string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *recordingMailer) Enqueue(to []string, subject, templateName string, _ interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to, subject, templateName})
}

// heldLocker reports every key as already taken.
type heldLocker struct{}

func (heldLocker) TryLock(context.Context, string, time.Duration) (string, bool, error) {
	return "", false, nil
}
func (heldLocker) Unlock(context.Context, string, string) error { return nil }

var errBoom = errors.New("boom")
