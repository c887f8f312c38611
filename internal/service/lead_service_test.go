package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Marga-Ghale/ora-interior-backend/internal/events"
	"github.com/Marga-Ghale/ora-interior-backend/internal/repository"
	"github.com/Marga-Ghale/ora-interior-backend/internal/types"
	"github.com/shopspring/decimal"
)

var (
	designer = Actor{ID: "designer-1", Role: types.RoleDesigner}
	customer = Actor{ID: "customer-1", Role: types.RoleUser}
	admin    = Actor{ID: "admin-1", Role: types.RoleAdmin}
)

func day(d int, hour int) time.Time {
	return time.Date(2026, time.March, d, hour, 0, 0, 0, time.UTC)
}

func timePtr(t time.Time) *time.Time { return &t }

type leadFixture struct {
	leads     *fakeLeads
	projects  *fakeProjects
	messages  *fakeMessages
	publisher *recordingPublisher
	mailer    *recordingMailer
	svc       *leadService
}

func openLead(status types.LeadStatus) *repository.Lead {
	return &repository.Lead{
		ID:            "lead-a",
		CustomerID:    strPtr(customer.ID),
		CustomerName:  "Asha Rai",
		CustomerEmail: "asha@example.com",
		DesignerID:    strPtr(designer.ID),
		Status:        status,
		Priority:      types.PriorityHigh,
		DesignRequests: repository.DesignRequests{
			types.RoomLivingRoom: {{
				DesignID:    "design-1",
				DesignTitle: "Nordic Calm",
				DesignImage: "https://cdn.example.com/nordic.jpg",
				Products: []repository.ProductItem{{
					Product:  repository.ProductRef{ID: "p1", Name: "Sofa", Price: decimal.NewFromInt(1200), Stock: 4},
					Quantity: 1,
				}},
			}},
			types.RoomBedroom: {{DesignID: "design-2", DesignTitle: "Soft Linen"}},
		},
	}
}

func newLeadFixture(lead *repository.Lead) *leadFixture {
	f := &leadFixture{
		leads:     newFakeLeads(lead),
		publisher: &recordingPublisher{},
		mailer:    &recordingMailer{},
	}
	f.projects = newFakeProjects(f.leads)
	f.messages = newFakeMessages(
		&repository.Message{ID: "m-before", ChatID: lead.ID, SenderID: customer.ID, Content: "hi", SentAt: day(1, 9).Add(-24 * time.Hour)},
		&repository.Message{ID: "m-start", ChatID: lead.ID, SenderID: customer.ID, Content: "first", SentAt: day(1, 10)},
		&repository.Message{ID: "m-end", ChatID: lead.ID, SenderID: designer.ID, Content: "last", SentAt: day(10, 23)},
		&repository.Message{ID: "m-after", ChatID: lead.ID, SenderID: designer.ID, Content: "late", SentAt: day(11, 8)},
	)
	f.svc = NewLeadService(LeadServiceDeps{
		Leads:     f.leads,
		Projects:  f.projects,
		Designs:   newFakeDesigns(),
		Products:  newFakeProducts(),
		Users:     newFakeUsers(),
		Messages:  f.messages,
		Publisher: f.publisher,
		Mailer:    f.mailer,
	}).(*leadService)
	return f
}

func validRange() ConvertRequest {
	return ConvertRequest{StartDate: timePtr(day(1, 12)), EndDate: timePtr(day(10, 12))}
}

func TestConvertValidatesDatesBeforeStoreAccess(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		req   ConvertRequest
		field string
	}{
		{"missing start", ConvertRequest{EndDate: timePtr(day(10, 0))}, "startDate"},
		{"missing end", ConvertRequest{StartDate: timePtr(day(1, 0))}, "endDate"},
		{"end before start", ConvertRequest{StartDate: timePtr(day(10, 0)), EndDate: timePtr(day(1, 0))}, "endDate"},
	}
	for _, tt := range tests {
		f := newLeadFixture(openLead(types.LeadQualified))
		_, err := f.svc.Convert(context.Background(), designer, "lead-a", tt.req)

		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%s: got %v, want ValidationError", tt.name, err)
		}
		if _, ok := verr.Fields[tt.field]; !ok {
			t.Errorf("%s: fields %v missing %q", tt.name, verr.Fields, tt.field)
		}
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%s: error should match ErrInvalidInput", tt.name)
		}
		if f.leads.calls != 0 {
			t.Errorf("%s: store touched %d times, want 0", tt.name, f.leads.calls)
		}
	}
}

func TestConvertSameDayRangeIsValid(t *testing.T) {
	t.Parallel()

	f := newLeadFixture(openLead(types.LeadNew))
	req := ConvertRequest{StartDate: timePtr(day(5, 8)), EndDate: timePtr(day(5, 8))}
	if _, err := f.svc.Convert(context.Background(), designer, "lead-a", req); err != nil {
		t.Fatalf("Convert: %v", err)
	}
}

func TestConvertCreatesProjectAndCopiesChat(t *testing.T) {
	t.Parallel()

	f := newLeadFixture(openLead(types.LeadQualified))
	res, err := f.svc.Convert(context.Background(), designer, "lead-a", validRange())
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	if res.Lead.Status != types.LeadConverted {
		t.Errorf("lead status: got %s, want converted", res.Lead.Status)
	}
	if res.Lead.ProjectID == nil || *res.Lead.ProjectID != res.Project.ID {
		t.Errorf("lead project link: got %v, want %s", res.Lead.ProjectID, res.Project.ID)
	}

	p := res.Project
	if p.Status != types.ProjectConsultation {
		t.Errorf("project status: got %s, want consultation", p.Status)
	}
	if p.LeadID != "lead-a" || p.CustomerName != "Asha Rai" || p.Priority != types.PriorityHigh {
		t.Errorf("project fields not copied from lead: %+v", p)
	}
	if len(p.Designs) != 2 {
		t.Fatalf("designs: got %d, want 2", len(p.Designs))
	}
	if p.Designs[0].DesignID != "design-1" || len(p.Designs[0].Products) != 1 {
		t.Errorf("first design: got %+v", p.Designs[0])
	}
	if len(p.StatusHistory) != 1 || p.StatusHistory[0].Status != types.ProjectConsultation {
		t.Errorf("status history: got %+v", p.StatusHistory)
	}
	if !p.StartDate.Equal(day(1, 0)) || !p.EndDate.Equal(day(10, 0)) {
		t.Errorf("dates: got %v..%v", p.StartDate, p.EndDate)
	}

	// Two in-range messages plus the system note.
	if res.CopiedMessages != 3 {
		t.Errorf("copied: got %d, want 3", res.CopiedMessages)
	}
	if got := f.messages.count(p.ID); got != 3 {
		t.Errorf("project chat size: got %d, want 3", got)
	}
	if got := f.messages.count("lead-a"); got != 4 {
		t.Errorf("lead chat must be untouched: got %d, want 4", got)
	}

	if got := f.publisher.eventTypes(); len(got) != 1 || got[0] != events.EventLeadConverted {
		t.Errorf("events: got %v, want [%s]", got, events.EventLeadConverted)
	}
	if len(f.mailer.sent) != 1 || f.mailer.sent[0].template != "lead_converted" {
		t.Errorf("mail: got %+v", f.mailer.sent)
	}
}

func TestConvertSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		selected []string
		wantErr  bool
	}{
		{"empty means all", nil, false},
		{"full set any order", []string{"design-2", "design-1"}, false},
		{"partial", []string{"design-1"}, true},
		{"foreign design", []string{"design-1", "design-2", "design-9"}, true},
	}
	for _, tt := range tests {
		f := newLeadFixture(openLead(types.LeadQualified))
		req := validRange()
		req.SelectedDesignIDs = tt.selected

		_, err := f.svc.Convert(context.Background(), designer, "lead-a", req)
		if tt.wantErr && !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%s: got %v, want validation error", tt.name, err)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
		}
	}
}

func TestConvertLockHeld(t *testing.T) {
	t.Parallel()

	f := newLeadFixture(openLead(types.LeadQualified))
	f.svc.Locker = heldLocker{}

	_, err := f.svc.Convert(context.Background(), designer, "lead-a", validRange())
	if !errors.Is(err, ErrConversionInProgress) {
		t.Fatalf("got %v, want ErrConversionInProgress", err)
	}
	if len(f.projects.projects) != 0 {
		t.Errorf("projects created: got %d, want 0", len(f.projects.projects))
	}
}

func TestConvertDiscardsCopiesWhenProjectInsertFails(t *testing.T) {
	t.Parallel()

	f := newLeadFixture(openLead(types.LeadQualified))
	f.projects.createErr = errBoom

	_, err := f.svc.Convert(context.Background(), designer, "lead-a", validRange())
	if !errors.Is(err, errBoom) {
		t.Fatalf("got %v, want wrapped errBoom", err)
	}
	if len(f.messages.deleted) != 3 {
		t.Errorf("discarded copies: got %d, want 3", len(f.messages.deleted))
	}
	if got := len(f.messages.messages); got != 4 {
		t.Errorf("stored messages: got %d, want 4", got)
	}
	lead, _ := f.leads.FindByID(context.Background(), "lead-a")
	if lead.Status != types.LeadQualified {
		t.Errorf("lead status: got %s, want qualified", lead.Status)
	}
	if len(f.publisher.events) != 0 {
		t.Errorf("events: got %v, want none", f.publisher.eventTypes())
	}
}

func TestConvertSucceedsWhenRereadFails(t *testing.T) {
	t.Parallel()

	f := newLeadFixture(openLead(types.LeadQualified))
	f.leads.convertedErr = errBoom
	f.projects.findErr = errBoom

	res, err := f.svc.Convert(context.Background(), designer, "lead-a", validRange())
	if err != nil {
		t.Fatalf("Convert: got %v, want success once committed", err)
	}
	if res.Lead.Status != types.LeadConverted {
		t.Errorf("lead status: got %s, want converted", res.Lead.Status)
	}
	if res.Lead.ProjectID == nil || *res.Lead.ProjectID != res.Project.ID {
		t.Errorf("lead project link: got %v, want %s", res.Lead.ProjectID, res.Project.ID)
	}
	if res.Project.LeadID != "lead-a" || res.Project.Status != types.ProjectConsultation {
		t.Errorf("project: got %+v", res.Project)
	}
	if len(f.projects.projects) != 1 {
		t.Errorf("projects stored: got %d, want 1", len(f.projects.projects))
	}
	if len(f.messages.deleted) != 0 {
		t.Errorf("copies discarded after commit: got %d", len(f.messages.deleted))
	}
}

func TestConvertRefusesClosedOrForeignLeads(t *testing.T) {
	t.Parallel()

	f := newLeadFixture(openLead(types.LeadConverted))
	if _, err := f.svc.Convert(context.Background(), designer, "lead-a", validRange()); !errors.Is(err, ErrLeadClosed) {
		t.Errorf("converted lead: got %v, want ErrLeadClosed", err)
	}

	f = newLeadFixture(openLead(types.LeadNew))
	other := Actor{ID: "designer-2", Role: types.RoleDesigner}
	if _, err := f.svc.Convert(context.Background(), other, "lead-a", validRange()); !errors.Is(err, ErrForbidden) {
		t.Errorf("foreign designer: got %v, want ErrForbidden", err)
	}
	if _, err := f.svc.Convert(context.Background(), admin, "lead-a", validRange()); err != nil {
		t.Errorf("admin: unexpected error %v", err)
	}

	if _, err := f.svc.Convert(context.Background(), designer, "missing", validRange()); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing lead: got %v, want ErrNotFound", err)
	}
}

func TestLeadUpdateStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from    types.LeadStatus
		to      types.LeadStatus
		wantErr error
	}{
		{types.LeadNew, types.LeadConsulting, nil},
		{types.LeadNew, types.LeadQualified, nil},
		{types.LeadQualified, types.LeadConsulting, nil},
		{types.LeadConsulting, types.LeadNew, ErrInvalidTransition},
		{types.LeadNew, types.LeadConverted, ErrInvalidTransition},
		{types.LeadCancelled, types.LeadNew, ErrLeadClosed},
		{types.LeadNew, types.LeadStatus("archived"), ErrInvalidInput},
	}
	for _, tt := range tests {
		f := newLeadFixture(openLead(tt.from))
		lead, err := f.svc.UpdateStatus(context.Background(), designer, "lead-a", tt.to)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("%s->%s: got %v, want %v", tt.from, tt.to, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s->%s: unexpected error %v", tt.from, tt.to, err)
			continue
		}
		if lead.Status != tt.to {
			t.Errorf("%s->%s: got %s", tt.from, tt.to, lead.Status)
		}
	}
}

func TestRejectLead(t *testing.T) {
	t.Parallel()

	f := newLeadFixture(openLead(types.LeadConsulting))
	if _, err := f.svc.Reject(context.Background(), designer, "lead-a", "   "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank reason: got %v, want validation error", err)
	}

	lead, err := f.svc.Reject(context.Background(), designer, "lead-a", "Budget mismatch")
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if lead.Status != types.LeadCancelled {
		t.Errorf("status: got %s, want cancelled", lead.Status)
	}
	if lead.CancellationReason == nil || *lead.CancellationReason != "Budget mismatch" {
		t.Errorf("reason: got %v", lead.CancellationReason)
	}
	if got := f.publisher.eventTypes(); len(got) != 1 || got[0] != events.EventLeadRejected {
		t.Errorf("events: got %v", got)
	}
	if len(f.mailer.sent) != 1 || f.mailer.sent[0].template != "lead_rejected" {
		t.Errorf("mail: got %+v", f.mailer.sent)
	}

	if _, err := f.svc.Reject(context.Background(), designer, "lead-a", "again"); !errors.Is(err, ErrLeadClosed) {
		t.Errorf("second reject: got %v, want ErrLeadClosed", err)
	}
}

func TestConsultCreatesThenReusesOpenLead(t *testing.T) {
	t.Parallel()

	leads := newFakeLeads()
	designs := newFakeDesigns(
		&repository.Design{ID: "design-1", DesignerID: designer.ID, Title: "Nordic Calm", RoomType: types.RoomLivingRoom, Status: types.DesignApproved, Images: []string{"a.jpg"}},
		&repository.Design{ID: "design-2", DesignerID: designer.ID, Title: "Soft Linen", RoomType: types.RoomBedroom, Status: types.DesignApproved},
		&repository.Design{ID: "design-3", DesignerID: designer.ID, Title: "Draft", RoomType: types.RoomKitchen, Status: types.DesignDraft},
	)
	products := newFakeProducts(&repository.Product{ID: "p1", Name: "Lamp", Price: decimal.NewFromInt(80), Stock: 2})
	users := newFakeUsers(&repository.User{ID: customer.ID, Name: "Asha Rai", Email: "asha@example.com", Role: types.RoleUser})
	pub := &recordingPublisher{}

	svc := NewLeadService(LeadServiceDeps{
		Leads: leads, Projects: newFakeProjects(leads), Designs: designs,
		Products: products, Users: users, Publisher: pub,
	})

	first, err := svc.Consult(context.Background(), customer, ConsultRequest{
		DesignID: "design-1",
		Products: []ProductSelection{{ProductID: "p1", Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("Consult: %v", err)
	}
	if first.Status != types.LeadNew || *first.DesignerID != designer.ID {
		t.Errorf("new lead: got %+v", first)
	}
	reqs := first.DesignRequests[types.RoomLivingRoom]
	if len(reqs) != 1 || reqs[0].DesignImage != "a.jpg" || len(reqs[0].Products) != 1 {
		t.Fatalf("living room requests: got %+v", reqs)
	}

	second, err := svc.Consult(context.Background(), customer, ConsultRequest{DesignID: "design-2"})
	if err != nil {
		t.Fatalf("second Consult: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("open lead not reused: got %s, want %s", second.ID, first.ID)
	}
	if got := DesignIDs(second.DesignRequests); len(got) != 2 {
		t.Errorf("design ids: got %v, want 2 entries", got)
	}
	if len(leads.leads) != 1 {
		t.Errorf("leads stored: got %d, want 1", len(leads.leads))
	}

	if _, err := svc.Consult(context.Background(), customer, ConsultRequest{DesignID: "design-3"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("draft design: got %v, want validation error", err)
	}
	if _, err := svc.Consult(context.Background(), customer, ConsultRequest{
		DesignID: "design-1",
		Products: []ProductSelection{{ProductID: "p1", Quantity: 5}},
	}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("over stock: got %v, want validation error", err)
	}
}

func TestLeadListScopesToDesigner(t *testing.T) {
	t.Parallel()

	mine := openLead(types.LeadNew)
	theirs := openLead(types.LeadQualified)
	theirs.ID = "lead-b"
	theirs.DesignerID = strPtr("designer-2")

	leads := newFakeLeads(mine, theirs)
	svc := NewLeadService(LeadServiceDeps{Leads: leads, Projects: newFakeProjects(leads)})

	list, err := svc.List(context.Background(), designer, LeadFilter{Status: types.FilterAll})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list.Leads) != 1 || list.Counts.Total != 1 || list.Counts.New != 1 {
		t.Errorf("designer list: got %d leads, counts %+v", len(list.Leads), list.Counts)
	}

	list, err = svc.List(context.Background(), admin, LeadFilter{Status: string(types.LeadQualified)})
	if err != nil {
		t.Fatalf("admin List: %v", err)
	}
	if len(list.Leads) != 1 || list.Counts.Total != 2 {
		t.Errorf("admin list: got %d leads, counts %+v", len(list.Leads), list.Counts)
	}

	if _, err := svc.List(context.Background(), customer, LeadFilter{}); !errors.Is(err, ErrForbidden) {
		t.Errorf("customer: got %v, want ErrForbidden", err)
	}
}
