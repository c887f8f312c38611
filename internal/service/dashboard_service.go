package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Marga-Ghale/ora-interior-backend/internal/mockdata"
	"github.com/Marga-Ghale/ora-interior-backend/internal/repository"
	"github.com/Marga-Ghale/ora-interior-backend/internal/types"
	"github.com/shopspring/decimal"
)

// ============================================
// Dashboard Service - chart feeds and designer KPIs
// ============================================

const defaultFeedTTL = 15 * time.Minute

// feedArrayKeys are the wrapper fields tried first when a feed answers with
// an object instead of a bare array.
var feedArrayKeys = []string{"data", "items", "results", "topKeywords"}

type DesignerKPI struct {
	DesignerID       string                      `json:"designerId,omitempty"`
	LeadsByStatus    map[types.LeadStatus]int    `json:"leadsByStatus"`
	TotalLeads       int                         `json:"totalLeads"`
	ConversionRate   decimal.Decimal             `json:"conversionRate"`
	ProjectsByStatus map[types.ProjectStatus]int `json:"projectsByStatus"`
	ActiveProjects   int                         `json:"activeProjects"`
}

type DashboardService interface {
	Feeds() []string
	Feed(ctx context.Context, name string) (json.RawMessage, error)
	Warm(ctx context.Context) int
	DesignerKPI(ctx context.Context, actor Actor) (*DesignerKPI, error)
}

type dashboardService struct {
	feeds       FeedFetcher
	cache       Cache
	ttl         time.Duration
	leadRepo    repository.LeadRepository
	projectRepo repository.ProjectRepository
}

// NewDashboardService works without a cache; feeds is optional too, in which
// case every feed name is unknown.
func NewDashboardService(
	feeds FeedFetcher,
	cache Cache,
	ttl time.Duration,
	leadRepo repository.LeadRepository,
	projectRepo repository.ProjectRepository,
) DashboardService {
	if ttl <= 0 {
		ttl = defaultFeedTTL
	}
	return &dashboardService{
		feeds:       feeds,
		cache:       cache,
		ttl:         ttl,
		leadRepo:    leadRepo,
		projectRepo: projectRepo,
	}
}

func (s *dashboardService) Feeds() []string {
	if s.feeds == nil {
		return []string{}
	}
	return s.feeds.Names()
}

func (s *dashboardService) known(name string) bool {
	for _, n := range s.Feeds() {
		if n == name {
			return true
		}
	}
	return false
}

func feedCacheKey(name string) string { return "feed:" + name }

func (s *dashboardService) Feed(ctx context.Context, name string) (json.RawMessage, error) {
	if !s.known(name) {
		return nil, ErrUnknownFeed
	}

	if s.cache != nil {
		var cached json.RawMessage
		if err := s.cache.GetCache(ctx, feedCacheKey(name), &cached); err == nil && len(cached) > 0 {
			return cached, nil
		}
	}
	return s.refresh(ctx, name)
}

func (s *dashboardService) refresh(ctx context.Context, name string) (json.RawMessage, error) {
	raw, err := s.feeds.Fetch(ctx, name)
	if err != nil {
		if errors.Is(err, mockdata.ErrUnknownFeed) {
			return nil, ErrUnknownFeed
		}
		return nil, fmt.Errorf("feed %s: %w", name, err)
	}

	items, err := mockdata.NormalizeArray(raw, feedArrayKeys...)
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w", name, err)
	}

	if s.cache != nil {
		if err := s.cache.SetCache(ctx, feedCacheKey(name), items, s.ttl); err != nil {
			log.Printf("[Dashboard] ⚠️ Failed to cache feed %s: %v", name, err)
		}
	}
	return items, nil
}

// Warm refetches every feed into the cache and returns how many succeeded.
func (s *dashboardService) Warm(ctx context.Context) int {
	ok := 0
	for _, name := range s.Feeds() {
		if _, err := s.refresh(ctx, name); err != nil {
			log.Printf("[Dashboard] ⚠️ Warm-up of %s failed: %v", name, err)
			continue
		}
		ok++
	}
	return ok
}

func (s *dashboardService) DesignerKPI(ctx context.Context, actor Actor) (*DesignerKPI, error) {
	if actor.Role != types.RoleDesigner && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	scope := actor.scope()

	leads, err := s.leadRepo.CountByStatus(ctx, scope)
	if err != nil {
		return nil, err
	}
	projects, err := s.projectRepo.CountByStatus(ctx, scope)
	if err != nil {
		return nil, err
	}

	kpi := &DesignerKPI{
		DesignerID:       scope,
		LeadsByStatus:    leads,
		ProjectsByStatus: projects,
		ConversionRate:   decimal.Zero,
	}
	for _, n := range leads {
		kpi.TotalLeads += n
	}
	if kpi.TotalLeads > 0 {
		kpi.ConversionRate = decimal.NewFromInt(int64(leads[types.LeadConverted])).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(int64(kpi.TotalLeads))).
			Round(1)
	}
	for status, n := range projects {
		if !status.IsTerminal() {
			kpi.ActiveProjects += n
		}
	}
	return kpi, nil
}
