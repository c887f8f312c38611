package service

import (
	"context"
	"strings"

	"github.com/Marga-Ghale/ora-interior-backend/internal/repository"
	"github.com/shopspring/decimal"
)

// ============================================
// Product Service
// ============================================

const maxProductPage = 200

type ProductInput struct {
	Name        string
	Description *string
	Category    string
	Price       decimal.Decimal
	Thumbnail   *string
	Stock       int
}

type ProductService interface {
	List(ctx context.Context, filter repository.ProductFilter) ([]*repository.Product, error)
	Get(ctx context.Context, id string) (*repository.Product, error)
	Create(ctx context.Context, actor Actor, input ProductInput) (*repository.Product, error)
	Update(ctx context.Context, actor Actor, id string, input ProductInput) (*repository.Product, error)
	Delete(ctx context.Context, actor Actor, id string) error
}

type productService struct {
	productRepo repository.ProductRepository
}

func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

func validateProductInput(input ProductInput) error {
	verr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		verr.add("name", "required")
	}
	if strings.TrimSpace(input.Category) == "" {
		verr.add("category", "required")
	}
	if input.Price.IsNegative() {
		verr.add("price", "must not be negative")
	}
	if input.Stock < 0 {
		verr.add("stock", "must not be negative")
	}
	if verr.empty() {
		return nil
	}
	return verr
}

func (s *productService) List(ctx context.Context, filter repository.ProductFilter) ([]*repository.Product, error) {
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, newValidationError("minPrice", "must not exceed maxPrice")
	}
	if filter.Limit <= 0 || filter.Limit > maxProductPage {
		filter.Limit = maxProductPage
	}
	return s.productRepo.List(ctx, filter)
}

func (s *productService) Get(ctx context.Context, id string) (*repository.Product, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *productService) Create(ctx context.Context, actor Actor, input ProductInput) (*repository.Product, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if err := validateProductInput(input); err != nil {
		return nil, err
	}
	p := &repository.Product{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Category:    strings.TrimSpace(input.Category),
		Price:       input.Price,
		Thumbnail:   input.Thumbnail,
		Stock:       input.Stock,
	}
	if err := s.productRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *productService) Update(ctx context.Context, actor Actor, id string, input ProductInput) (*repository.Product, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if err := validateProductInput(input); err != nil {
		return nil, err
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Name = strings.TrimSpace(input.Name)
	p.Description = input.Description
	p.Category = strings.TrimSpace(input.Category)
	p.Price = input.Price
	p.Thumbnail = input.Thumbnail
	p.Stock = input.Stock
	if err := s.productRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *productService) Delete(ctx context.Context, actor Actor, id string) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, id)
}
