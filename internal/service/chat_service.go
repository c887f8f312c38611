package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/Marga-Ghale/ora-interior-backend/internal/repository"
	"github.com/Marga-Ghale/ora-interior-backend/internal/socket"
	"github.com/Marga-Ghale/ora-interior-backend/internal/types"
	"github.com/google/uuid"
)

// ============================================
// Chat Service - lead and project conversations
// ============================================

const (
	defaultChatPage = 50
	maxChatPage     = 200
	maxMessageSize  = 4000
)

type MessageInput struct {
	Type     string
	Content  string
	Metadata map[string]string
}

// ChatService handles the designer/customer conversation attached to a lead
// and, after conversion, to its project.
type ChatService interface {
	Send(ctx context.Context, actor Actor, chatID string, input MessageInput) (*repository.Message, error)
	List(ctx context.Context, actor Actor, chatID string, before *time.Time, limit int) ([]*repository.Message, error)
	MarkRead(ctx context.Context, actor Actor, chatID string) (int64, error)
	Delete(ctx context.Context, actor Actor, messageID string) error
	// CanJoin gates websocket subscriptions to a lead, project or chat room.
	CanJoin(ctx context.Context, actor Actor, chatID string) bool
}

type chatService struct {
	messageRepo repository.MessageRepository
	leadRepo    repository.LeadRepository
	projectRepo repository.ProjectRepository
	broadcaster *socket.Broadcaster
	now         func() time.Time
}

// NewChatService creates a new chat service
func NewChatService(
	messageRepo repository.MessageRepository,
	leadRepo repository.LeadRepository,
	projectRepo repository.ProjectRepository,
	broadcaster *socket.Broadcaster,
) ChatService {
	return &chatService{
		messageRepo: messageRepo,
		leadRepo:    leadRepo,
		projectRepo: projectRepo,
		broadcaster: broadcaster,
		now:         time.Now,
	}
}

// chatAccess describes the actor's seat in a conversation.
type chatAccess struct {
	senderRole string
	locked     bool
	isLead     bool
}

func seat(actor Actor, designerID, customerID *string) (string, bool) {
	if actor.owns(designerID) {
		return types.SenderDesigner, true
	}
	if customerID != nil && *customerID == actor.ID {
		return types.SenderCustomer, true
	}
	return "", false
}

// access resolves chatID to a lead or a project the actor takes part in.
func (s *chatService) access(ctx context.Context, actor Actor, chatID string) (*chatAccess, error) {
	lead, err := s.leadRepo.FindByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if lead != nil {
		role, ok := seat(actor, lead.DesignerID, lead.CustomerID)
		if !ok {
			return nil, ErrForbidden
		}
		return &chatAccess{senderRole: role, locked: lead.Status.IsTerminal(), isLead: true}, nil
	}

	project, err := s.projectRepo.FindByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrNotFound
	}
	role, ok := seat(actor, project.DesignerID, project.CustomerID)
	if !ok {
		return nil, ErrForbidden
	}
	return &chatAccess{senderRole: role, locked: IsProjectLocked(project)}, nil
}

func (s *chatService) CanJoin(ctx context.Context, actor Actor, chatID string) bool {
	_, err := s.access(ctx, actor, chatID)
	return err == nil
}

func messagePayload(m *repository.Message) map[string]interface{} {
	return map[string]interface{}{
		"id":         m.ID,
		"chatId":     m.ChatID,
		"senderId":   m.SenderID,
		"senderRole": m.SenderRole,
		"type":       m.Type,
		"content":    m.Content,
		"metadata":   m.Metadata,
		"sentAt":     m.SentAt,
	}
}

func (s *chatService) Send(ctx context.Context, actor Actor, chatID string, input MessageInput) (*repository.Message, error) {
	msgType := input.Type
	if msgType == "" {
		msgType = types.MessageText
	}
	content := strings.TrimSpace(input.Content)

	verr := &ValidationError{}
	if !types.IsValidMessageType(msgType) || msgType == types.MessageSystem {
		verr.add("type", "unsupported message type")
	}
	if content == "" {
		verr.add("content", "required")
	} else if len(content) > maxMessageSize {
		verr.add("content", "message too long")
	}
	if !verr.empty() {
		return nil, verr
	}

	acc, err := s.access(ctx, actor, chatID)
	if err != nil {
		return nil, err
	}
	if acc.locked {
		return nil, ErrChatLocked
	}

	message := &repository.Message{
		ID:         uuid.NewString(),
		ChatID:     chatID,
		SenderID:   actor.ID,
		SenderRole: acc.senderRole,
		Type:       msgType,
		Content:    content,
		Metadata:   input.Metadata,
		Status:     types.MessageSent,
		SentAt:     s.now().UTC(),
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	if acc.isLead {
		if err := s.leadRepo.RecordMessage(ctx, chatID, message.SentAt); err != nil {
			log.Printf("[Chat] ⚠️ Failed to record message on lead %s: %v", chatID, err)
		}
	}

	s.broadcaster.BroadcastChatMessage(chatID, messagePayload(message), actor.ID)
	return message, nil
}

func (s *chatService) List(ctx context.Context, actor Actor, chatID string, before *time.Time, limit int) ([]*repository.Message, error) {
	if _, err := s.access(ctx, actor, chatID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultChatPage
	}
	if limit > maxChatPage {
		limit = maxChatPage
	}
	return s.messageRepo.FindByChat(ctx, chatID, before, limit)
}

func (s *chatService) MarkRead(ctx context.Context, actor Actor, chatID string) (int64, error) {
	if _, err := s.access(ctx, actor, chatID); err != nil {
		return 0, err
	}
	n, err := s.messageRepo.MarkRead(ctx, chatID, actor.ID, s.now().UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.broadcaster.BroadcastChatRead(chatID, actor.ID, n)
	}
	return n, nil
}

func (s *chatService) Delete(ctx context.Context, actor Actor, messageID string) error {
	message, err := s.messageRepo.FindByID(ctx, messageID)
	if err != nil {
		return err
	}
	if message == nil || message.Deleted {
		return ErrNotFound
	}
	if message.SenderID != actor.ID {
		return ErrForbidden
	}

	acc, err := s.access(ctx, actor, message.ChatID)
	if err != nil {
		return err
	}
	if acc.locked {
		return ErrChatLocked
	}

	ok, err := s.messageRepo.SoftDelete(ctx, messageID, actor.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}

	s.broadcaster.BroadcastChatDeleted(message.ChatID, messageID, actor.ID)
	return nil
}
