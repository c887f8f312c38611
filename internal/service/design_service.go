package service

import (
	"context"
	"strings"

	"github.com/Marga-Ghale/ora-interior-backend/internal/repository"
	"github.com/Marga-Ghale/ora-interior-backend/internal/types"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// ============================================
// Design Service
// ============================================

type DesignInput struct {
	Title       string
	Description *string
	RoomType    types.RoomType
	Style       *string
	Images      []string
	Price       decimal.Decimal
}

type DesignQuery struct {
	DesignerID string
	Status     string
	RoomType   string
}

type DesignService interface {
	List(ctx context.Context, actor Actor, query DesignQuery) ([]*repository.Design, error)
	Get(ctx context.Context, actor Actor, id string) (*repository.Design, error)
	Create(ctx context.Context, actor Actor, input DesignInput) (*repository.Design, error)
	Update(ctx context.Context, actor Actor, id string, input DesignInput) (*repository.Design, error)
	Delete(ctx context.Context, actor Actor, id string) error

	// Review workflow: draft -> pending -> approved | rejected, approved -> archived.
	Submit(ctx context.Context, actor Actor, id string) (*repository.Design, error)
	Approve(ctx context.Context, actor Actor, id string) (*repository.Design, error)
	Reject(ctx context.Context, actor Actor, id, reason string) (*repository.Design, error)
	Archive(ctx context.Context, actor Actor, id string) (*repository.Design, error)
}

type designService struct {
	designRepo repository.DesignRepository
}

func NewDesignService(designRepo repository.DesignRepository) DesignService {
	return &designService{designRepo: designRepo}
}

func validateDesignInput(input DesignInput) error {
	verr := &ValidationError{}
	if strings.TrimSpace(input.Title) == "" {
		verr.add("title", "required")
	}
	if !types.IsValidRoomType(string(input.RoomType)) {
		verr.add("roomType", "unknown room type")
	}
	if input.Price.IsNegative() {
		verr.add("price", "must not be negative")
	}
	if verr.empty() {
		return nil
	}
	return verr
}

func cleanImages(images []string) pq.StringArray {
	out := make(pq.StringArray, 0, len(images))
	for _, img := range images {
		if img = strings.TrimSpace(img); img != "" {
			out = append(out, img)
		}
	}
	return out
}

func (s *designService) List(ctx context.Context, actor Actor, query DesignQuery) ([]*repository.Design, error) {
	filter := repository.DesignFilter{DesignerID: query.DesignerID}
	if !isWildcard(query.RoomType) {
		filter.RoomType = types.RoomType(query.RoomType)
	}
	if !isWildcard(query.Status) {
		filter.Status = types.DesignStatus(query.Status)
	}

	// Unpublished designs are visible to their designer and to admins only.
	ownView := actor.IsAdmin() || (query.DesignerID != "" && query.DesignerID == actor.ID)
	if !ownView {
		filter.Status = types.DesignApproved
	}
	return s.designRepo.List(ctx, filter)
}

func (s *designService) Get(ctx context.Context, actor Actor, id string) (*repository.Design, error) {
	d, err := s.designRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrNotFound
	}
	if d.Status != types.DesignApproved && !actor.owns(&d.DesignerID) {
		return nil, ErrNotFound
	}
	return d, nil
}

func (s *designService) loadOwned(ctx context.Context, actor Actor, id string) (*repository.Design, error) {
	d, err := s.designRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrNotFound
	}
	if !actor.owns(&d.DesignerID) {
		return nil, ErrForbidden
	}
	return d, nil
}

func (s *designService) Create(ctx context.Context, actor Actor, input DesignInput) (*repository.Design, error) {
	if actor.Role != types.RoleDesigner && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if err := validateDesignInput(input); err != nil {
		return nil, err
	}
	d := &repository.Design{
		DesignerID:  actor.ID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		RoomType:    input.RoomType,
		Style:       input.Style,
		Images:      cleanImages(input.Images),
		Price:       input.Price,
		Status:      types.DesignDraft,
	}
	if err := s.designRepo.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *designService) Update(ctx context.Context, actor Actor, id string, input DesignInput) (*repository.Design, error) {
	if err := validateDesignInput(input); err != nil {
		return nil, err
	}
	d, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if d.Status == types.DesignPending {
		return nil, ErrConflict
	}
	d.Title = strings.TrimSpace(input.Title)
	d.Description = input.Description
	d.RoomType = input.RoomType
	d.Style = input.Style
	d.Images = cleanImages(input.Images)
	d.Price = input.Price
	if err := s.designRepo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *designService) Delete(ctx context.Context, actor Actor, id string) error {
	if _, err := s.loadOwned(ctx, actor, id); err != nil {
		return err
	}
	return s.designRepo.Delete(ctx, id)
}

// move applies a guarded status change.
func (s *designService) move(ctx context.Context, d *repository.Design, to types.DesignStatus, reason *string, from ...types.DesignStatus) (*repository.Design, error) {
	allowed := false
	for _, f := range from {
		if d.Status == f {
			allowed = true
		}
	}
	if !allowed {
		return nil, ErrInvalidTransition
	}
	ok, err := s.designRepo.UpdateStatus(ctx, d.ID, d.Status, to, reason)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	d.Status = to
	d.RejectionReason = reason
	return d, nil
}

func (s *designService) Submit(ctx context.Context, actor Actor, id string) (*repository.Design, error) {
	d, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if len(d.Images) == 0 {
		return nil, newValidationError("images", "at least one image is required")
	}
	return s.move(ctx, d, types.DesignPending, nil, types.DesignDraft, types.DesignRejected)
}

func (s *designService) Approve(ctx context.Context, actor Actor, id string) (*repository.Design, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	d, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.move(ctx, d, types.DesignApproved, nil, types.DesignPending)
}

func (s *designService) Reject(ctx context.Context, actor Actor, id, reason string) (*repository.Design, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, newValidationError("reason", "required")
	}
	d, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.move(ctx, d, types.DesignRejected, &reason, types.DesignPending)
}

func (s *designService) Archive(ctx context.Context, actor Actor, id string) (*repository.Design, error) {
	d, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.move(ctx, d, types.DesignArchived, nil, types.DesignApproved)
}
