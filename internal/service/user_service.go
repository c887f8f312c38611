package service

import (
	"context"
	"strings"

	"github.com/Marga-Ghale/ora-interior-backend/internal/repository"
	"github.com/Marga-Ghale/ora-interior-backend/internal/types"
)

// ============================================
// User Service
// ============================================

type ProfileUpdate struct {
	Name   *string
	Avatar *string
	Phone  *string
}

type NewDesigner struct {
	Name     string
	Email    string
	Password string
	Phone    *string
	Avatar   *string
}

type UserService interface {
	GetByID(ctx context.Context, id string) (*repository.User, error)
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*repository.User, error)
	Search(ctx context.Context, query string) ([]*repository.User, error)

	// Admin
	List(ctx context.Context, actor Actor, role string) ([]*repository.User, error)
	CreateDesigner(ctx context.Context, actor Actor, input NewDesigner) (*repository.User, error)
	Delete(ctx context.Context, actor Actor, id string) error
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetByID(ctx context.Context, id string) (*repository.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*repository.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, newValidationError("name", "must not be blank")
		}
		user.Name = name
	}
	if update.Avatar != nil {
		user.Avatar = update.Avatar
	}
	if update.Phone != nil {
		user.Phone = update.Phone
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Search(ctx context.Context, query string) ([]*repository.User, error) {
	return s.userRepo.Search(ctx, query)
}

func (s *userService) List(ctx context.Context, actor Actor, role string) ([]*repository.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if role == "" || role == types.FilterAll {
		return s.userRepo.FindAll(ctx)
	}
	if !types.IsValidRole(role) {
		return nil, newValidationError("role", "unknown role")
	}
	return s.userRepo.FindByRole(ctx, role)
}

func (s *userService) CreateDesigner(ctx context.Context, actor Actor, input NewDesigner) (*repository.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	email := normalizeEmail(input.Email)
	verr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		verr.add("name", "required")
	}
	if err := validateCredentials(email, input.Password); err != nil {
		for k, v := range err.(*ValidationError).Fields {
			verr.add(k, v)
		}
	}
	if !verr.empty() {
		return nil, verr
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	hashed, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user := &repository.User{
		Name:     strings.TrimSpace(input.Name),
		Email:    email,
		Password: hashed,
		Role:     types.RoleDesigner,
		Status:   "active",
		Phone:    input.Phone,
		Avatar:   input.Avatar,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Delete(ctx context.Context, actor Actor, id string) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	if actor.ID == id {
		return newValidationError("id", "admins cannot delete themselves")
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.userRepo.DeleteUserRefreshTokens(ctx, id); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, id)
}
