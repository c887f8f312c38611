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

func curatedProject(status types.ProjectStatus) *repository.Project {
	started := day(1, 9)
	return &repository.Project{
		ID:           "project-1",
		LeadID:       "lead-a",
		CustomerID:   strPtr(customer.ID),
		CustomerName: "Asha Rai",
		DesignerID:   strPtr(designer.ID),
		Title:        "Nordic Calm - Asha Rai",
		Status:       status,
		Priority:     types.PriorityMedium,
		Designs: []repository.ProjectDesign{{
			DesignID: "design-1",
			Title:    "Nordic Calm",
			RoomType: types.RoomLivingRoom,
			Products: []repository.ProductItem{{
				Product:  repository.ProductRef{ID: "p1", Name: "Sofa", Price: decimal.NewFromInt(1200), Stock: 4},
				Quantity: 1,
			}},
		}},
		StatusHistory: []repository.StatusHistoryEntry{{Status: status, StartedAt: started}},
	}
}

type projectFixture struct {
	projects  *fakeProjects
	publisher *recordingPublisher
	svc       *projectService
}

func newProjectFixture(p *repository.Project) *projectFixture {
	f := &projectFixture{
		projects:  newFakeProjects(nil, p),
		publisher: &recordingPublisher{},
	}
	products := newFakeProducts(
		&repository.Product{ID: "p1", Name: "Sofa", Price: decimal.NewFromInt(1200), Stock: 4},
		&repository.Product{ID: "p2", Name: "Lamp", Price: decimal.RequireFromString("79.99"), Stock: 3},
	)
	f.svc = NewProjectService(f.projects, products, f.publisher, nil).(*projectService)
	f.svc.now = func() time.Time { return day(4, 9) }
	return f
}

func TestProjectTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		from    types.ProjectStatus
		to      types.ProjectStatus
		wantErr error
	}{
		{"one step", types.ProjectConsultation, types.ProjectProductCuration, nil},
		{"stay", types.ProjectProductCuration, types.ProjectProductCuration, nil},
		{"skip", types.ProjectConsultation, types.ProjectFinalizeQuote, ErrInvalidTransition},
		{"backwards", types.ProjectFinalizeQuote, types.ProjectConsultation, ErrInvalidTransition},
		{"cancel via timeline", types.ProjectConsultation, types.ProjectCancelled, ErrInvalidTransition},
		{"locked", types.ProjectCompleted, types.ProjectCompleted, ErrProjectLocked},
	}
	for _, tt := range tests {
		f := newProjectFixture(curatedProject(tt.from))
		p, err := f.svc.Transition(context.Background(), designer, "project-1", tt.to)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("%s: got %v, want %v", tt.name, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
			continue
		}
		if p.Status != tt.to {
			t.Errorf("%s: status got %s, want %s", tt.name, p.Status, tt.to)
		}
	}
}

func TestProjectTransitionRecordsHistory(t *testing.T) {
	t.Parallel()

	f := newProjectFixture(curatedProject(types.ProjectConsultation))
	p, err := f.svc.Transition(context.Background(), designer, "project-1", types.ProjectProductCuration)
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}

	if len(p.StatusHistory) != 2 {
		t.Fatalf("history: got %d entries, want 2", len(p.StatusHistory))
	}
	first := p.StatusHistory[0]
	if first.CompletedAt == nil || first.DurationInDays == nil || *first.DurationInDays != 3 {
		t.Errorf("closed entry: got %+v, want 3 days", first)
	}
	if p.StatusHistory[1].Status != types.ProjectProductCuration || p.StatusHistory[1].CompletedAt != nil {
		t.Errorf("open entry: got %+v", p.StatusHistory[1])
	}

	stored, _ := f.projects.FindByID(context.Background(), "project-1")
	if stored.Status != types.ProjectProductCuration {
		t.Errorf("stored status: got %s", stored.Status)
	}
	if got := f.publisher.eventTypes(); len(got) != 1 || got[0] != events.EventProjectStatusChanged {
		t.Errorf("events: got %v", got)
	}
}

func TestProjectAdvanceToCompletionLocks(t *testing.T) {
	t.Parallel()

	f := newProjectFixture(curatedProject(types.ProjectFinalizeQuote))
	p, err := f.svc.Advance(context.Background(), designer, "project-1")
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if p.Status != types.ProjectCompleted || !p.IsLocked || p.CompletedAt == nil {
		t.Errorf("completed project: status %s locked %v completedAt %v", p.Status, p.IsLocked, p.CompletedAt)
	}

	if _, err := f.svc.Advance(context.Background(), designer, "project-1"); !errors.Is(err, ErrProjectLocked) {
		t.Errorf("advance after completion: got %v, want ErrProjectLocked", err)
	}
	if _, err := f.svc.AddProduct(context.Background(), designer, "project-1", "design-1", ProductSelection{ProductID: "p2", Quantity: 1}); !errors.Is(err, ErrProjectLocked) {
		t.Errorf("curation after completion: got %v, want ErrProjectLocked", err)
	}
}

func TestProjectLockedFlagBlocksTransitions(t *testing.T) {
	t.Parallel()

	p := curatedProject(types.ProjectConsultation)
	p.IsLocked = true
	f := newProjectFixture(p)

	if _, err := f.svc.Advance(context.Background(), designer, "project-1"); !errors.Is(err, ErrProjectLocked) {
		t.Errorf("got %v, want ErrProjectLocked", err)
	}
}

func TestProjectCancel(t *testing.T) {
	t.Parallel()

	f := newProjectFixture(curatedProject(types.ProjectProductCuration))
	if _, err := f.svc.Cancel(context.Background(), designer, "project-1", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank reason: got %v, want validation error", err)
	}

	p, err := f.svc.Cancel(context.Background(), designer, "project-1", "Customer moved abroad")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if p.Status != types.ProjectCancelled || !p.IsLocked {
		t.Errorf("cancelled: status %s locked %v", p.Status, p.IsLocked)
	}
	if p.CancellationReason == nil || *p.CancellationReason != "Customer moved abroad" {
		t.Errorf("reason: got %v", p.CancellationReason)
	}
}

func TestProjectDetailedStatusUpdate(t *testing.T) {
	t.Parallel()

	due := day(20, 0)

	f := newProjectFixture(curatedProject(types.ProjectConsultation))
	if _, err := f.svc.UpdateStatus(context.Background(), designer, "project-1", StatusUpdate{Status: types.ProjectFinalizeQuote}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("missing due date: got %v, want validation error", err)
	}
	if _, err := f.svc.UpdateStatus(context.Background(), designer, "project-1", StatusUpdate{Status: types.ProjectConsultation, DueDate: &due}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("same status without notes: got %v, want validation error", err)
	}

	// Detailed management may skip phases.
	p, err := f.svc.UpdateStatus(context.Background(), designer, "project-1", StatusUpdate{
		Status:  types.ProjectFinalizeQuote,
		DueDate: &due,
		Notes:   strPtr("  Customer approved all products  "),
	})
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	last := p.StatusHistory[len(p.StatusHistory)-1]
	if last.Status != types.ProjectFinalizeQuote || last.Notes == nil || *last.Notes != "Customer approved all products" {
		t.Errorf("new entry: got %+v", last)
	}
	if p.DueDate == nil || !p.DueDate.Equal(due) {
		t.Errorf("due date: got %v", p.DueDate)
	}

	p, err = f.svc.UpdateStatus(context.Background(), designer, "project-1", StatusUpdate{
		Status:  types.ProjectFinalizeQuote,
		DueDate: &due,
		Notes:   strPtr("Waiting on supplier"),
	})
	if err != nil {
		t.Fatalf("notes only: %v", err)
	}
	if len(p.StatusHistory) != 2 || *p.StatusHistory[1].Notes != "Waiting on supplier" {
		t.Errorf("notes-only update should edit the open entry: got %+v", p.StatusHistory)
	}

	p, err = f.svc.UpdateStatus(context.Background(), designer, "project-1", StatusUpdate{Status: types.ProjectCompleted})
	if err != nil {
		t.Fatalf("complete without due date: %v", err)
	}
	if !p.IsLocked {
		t.Errorf("completed project should be locked")
	}
}

func TestProjectProductCuration(t *testing.T) {
	t.Parallel()

	f := newProjectFixture(curatedProject(types.ProjectProductCuration))
	ctx := context.Background()

	p, err := f.svc.AddProduct(ctx, designer, "project-1", "design-1", ProductSelection{ProductID: "p2", Quantity: 2})
	if err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	if got := PriceProject(p.Designs).GrandTotal; !got.Equal(decimal.RequireFromString("1359.98")) {
		t.Errorf("grand total: got %s, want 1359.98", got)
	}

	if _, err := f.svc.AddProduct(ctx, designer, "project-1", "design-1", ProductSelection{ProductID: "p2", Quantity: 1}); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate product: got %v, want ErrConflict", err)
	}
	if _, err := f.svc.AddProduct(ctx, designer, "project-1", "design-9", ProductSelection{ProductID: "p2", Quantity: 1}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown design: got %v, want ErrNotFound", err)
	}

	over := 4
	if _, err := f.svc.UpdateProduct(ctx, designer, "project-1", "design-1", "p2", ProductItemUpdate{Quantity: &over}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("over stock: got %v, want validation error", err)
	}

	custom := decimal.NewFromInt(60)
	p, err = f.svc.UpdateProduct(ctx, designer, "project-1", "design-1", "p2", ProductItemUpdate{CustomPrice: &custom})
	if err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}
	if got := PriceProject(p.Designs).GrandTotal; !got.Equal(decimal.NewFromInt(1320)) {
		t.Errorf("grand total with custom price: got %s, want 1320", got)
	}

	p, err = f.svc.RemoveProduct(ctx, designer, "project-1", "design-1", "p1")
	if err != nil {
		t.Fatalf("RemoveProduct: %v", err)
	}
	if len(p.Designs[0].Products) != 1 || p.Designs[0].Products[0].Product.ID != "p2" {
		t.Errorf("remaining products: got %+v", p.Designs[0].Products)
	}
}

func TestProjectCurationRejectsConcurrentEdit(t *testing.T) {
	t.Parallel()

	f := newProjectFixture(curatedProject(types.ProjectProductCuration))
	f.projects.beforeDesignsWrite = func(stored *repository.Project) {
		// Another editor saved between our read and our write.
		stored.UpdatedAt = stored.UpdatedAt.Add(time.Second)
	}

	_, err := f.svc.AddProduct(context.Background(), designer, "project-1", "design-1", ProductSelection{ProductID: "p2", Quantity: 1})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("got %v, want ErrConflict", err)
	}
	stored, _ := f.projects.FindByID(context.Background(), "project-1")
	if got := len(stored.Designs[0].Products); got != 1 {
		t.Errorf("stored products: got %d, want 1", got)
	}
}

func TestProjectUpdateTasks(t *testing.T) {
	t.Parallel()

	f := newProjectFixture(curatedProject(types.ProjectConsultation))
	if _, err := f.svc.UpdateTasks(context.Background(), designer, "project-1", 3, 4); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("completed > total: got %v, want validation error", err)
	}

	if _, err := f.svc.UpdateTasks(context.Background(), designer, "project-1", 8, 6); err != nil {
		t.Fatalf("UpdateTasks: %v", err)
	}
	detail, err := f.svc.Get(context.Background(), customer, "project-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if detail.Progress != 75 {
		t.Errorf("progress: got %d, want 75", detail.Progress)
	}
	if detail.Timeline.NextStatus == nil || *detail.Timeline.NextStatus != types.ProjectProductCuration {
		t.Errorf("next status: got %v", detail.Timeline.NextStatus)
	}
}

func TestProjectAccess(t *testing.T) {
	t.Parallel()

	f := newProjectFixture(curatedProject(types.ProjectConsultation))
	stranger := Actor{ID: "someone", Role: types.RoleUser}

	if _, err := f.svc.Get(context.Background(), stranger, "project-1"); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger get: got %v, want ErrForbidden", err)
	}
	if _, err := f.svc.Advance(context.Background(), customer, "project-1"); !errors.Is(err, ErrForbidden) {
		t.Errorf("customer advance: got %v, want ErrForbidden", err)
	}

	list, err := f.svc.List(context.Background(), customer, ProjectFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("customer list: got %d, want 1", len(list))
	}
	list, _ = f.svc.List(context.Background(), stranger, ProjectFilter{})
	if len(list) != 0 {
		t.Errorf("stranger list: got %d, want 0", len(list))
	}
}
