package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Marga-Ghale/ora-interior-backend/internal/repository"
	"github.com/Marga-Ghale/ora-interior-backend/internal/types"
)

type chatFixture struct {
	leads    *fakeLeads
	projects *fakeProjects
	messages *fakeMessages
	svc      *chatService
}

func newChatFixture(lead *repository.Lead, project *repository.Project) *chatFixture {
	f := &chatFixture{
		leads:    newFakeLeads(lead),
		messages: newFakeMessages(),
	}
	f.projects = newFakeProjects(f.leads, project)
	f.svc = NewChatService(f.messages, f.leads, f.projects, nil).(*chatService)
	f.svc.now = func() time.Time { return day(3, 10) }
	return f
}

func TestChatSendOnLead(t *testing.T) {
	t.Parallel()

	f := newChatFixture(openLead(types.LeadNew), curatedProject(types.ProjectConsultation))
	ctx := context.Background()

	m, err := f.svc.Send(ctx, customer, "lead-a", MessageInput{Content: "  Hello there  "})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if m.Content != "Hello there" || m.Type != types.MessageText || m.SenderRole != types.SenderCustomer {
		t.Errorf("message: got %+v", m)
	}

	reply, err := f.svc.Send(ctx, designer, "lead-a", MessageInput{Content: "Hi!"})
	if err != nil {
		t.Fatalf("Send reply: %v", err)
	}
	if reply.SenderRole != types.SenderDesigner {
		t.Errorf("reply role: got %s, want %s", reply.SenderRole, types.SenderDesigner)
	}

	lead, _ := f.leads.FindByID(ctx, "lead-a")
	if lead.TotalMessages != 2 || !lead.LastContactAt.Equal(day(3, 10)) {
		t.Errorf("lead activity: messages %d last contact %v", lead.TotalMessages, lead.LastContactAt)
	}

	if _, err := f.svc.Send(ctx, Actor{ID: "stranger", Role: types.RoleUser}, "lead-a", MessageInput{Content: "x"}); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger: got %v, want ErrForbidden", err)
	}
	if _, err := f.svc.Send(ctx, customer, "nope", MessageInput{Content: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown chat: got %v, want ErrNotFound", err)
	}
}

func TestChatSendValidation(t *testing.T) {
	t.Parallel()

	f := newChatFixture(openLead(types.LeadNew), curatedProject(types.ProjectConsultation))
	tests := []struct {
		name  string
		input MessageInput
	}{
		{"blank", MessageInput{Content: "   "}},
		{"system type", MessageInput{Type: types.MessageSystem, Content: "x"}},
		{"unknown type", MessageInput{Type: "sticker", Content: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.Send(context.Background(), customer, "lead-a", tt.input); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("got %v, want validation error", err)
			}
		})
	}
	if n := f.leads.calls; n != 0 {
		t.Errorf("store calls on invalid input: got %d, want 0", n)
	}
}

func TestChatLocked(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	converted := newChatFixture(openLead(types.LeadConverted), curatedProject(types.ProjectConsultation))
	if _, err := converted.svc.Send(ctx, customer, "lead-a", MessageInput{Content: "x"}); !errors.Is(err, ErrChatLocked) {
		t.Errorf("converted lead: got %v, want ErrChatLocked", err)
	}

	done := curatedProject(types.ProjectCompleted)
	done.IsLocked = true
	f := newChatFixture(openLead(types.LeadConverted), done)
	if _, err := f.svc.Send(ctx, designer, "project-1", MessageInput{Content: "x"}); !errors.Is(err, ErrChatLocked) {
		t.Errorf("completed project: got %v, want ErrChatLocked", err)
	}
	// History stays readable.
	if _, err := f.svc.List(ctx, customer, "project-1", nil, 0); err != nil {
		t.Errorf("list locked chat: %v", err)
	}
}

func TestChatListReadDelete(t *testing.T) {
	t.Parallel()

	f := newChatFixture(openLead(types.LeadConsulting), curatedProject(types.ProjectConsultation))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		f.svc.now = func() time.Time { return day(3, 10+i) }
		if _, err := f.svc.Send(ctx, designer, "project-1", MessageInput{Content: "update"}); err != nil {
			t.Fatalf("Send %d: %v", i, err)
		}
	}

	page, err := f.svc.List(ctx, customer, "project-1", nil, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page) != 2 || !page[0].SentAt.Before(page[1].SentAt) {
		t.Errorf("page: got %d messages, want 2 oldest-first", len(page))
	}

	n, err := f.svc.MarkRead(ctx, customer, "project-1")
	if err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if n != 3 {
		t.Errorf("marked read: got %d, want 3", n)
	}
	if n, _ := f.svc.MarkRead(ctx, customer, "project-1"); n != 0 {
		t.Errorf("second MarkRead: got %d, want 0", n)
	}

	target := page[0].ID
	if err := f.svc.Delete(ctx, customer, target); !errors.Is(err, ErrForbidden) {
		t.Errorf("delete others' message: got %v, want ErrForbidden", err)
	}
	if err := f.svc.Delete(ctx, designer, target); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := f.svc.Delete(ctx, designer, target); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete twice: got %v, want ErrNotFound", err)
	}
	if got := f.messages.count("project-1"); got != 2 {
		t.Errorf("visible messages: got %d, want 2", got)
	}
}

func TestChatCanJoin(t *testing.T) {
	t.Parallel()

	f := newChatFixture(openLead(types.LeadNew), curatedProject(types.ProjectConsultation))
	ctx := context.Background()

	tests := []struct {
		actor  Actor
		chatID string
		want   bool
	}{
		{customer, "lead-a", true},
		{designer, "project-1", true},
		{admin, "project-1", true},
		{Actor{ID: "stranger", Role: types.RoleUser}, "lead-a", false},
		{customer, "missing", false},
	}
	for _, tt := range tests {
		if got := f.svc.CanJoin(ctx, tt.actor, tt.chatID); got != tt.want {
			t.Errorf("CanJoin(%s, %s): got %v, want %v", tt.actor.ID, tt.chatID, got, tt.want)
		}
	}
}
