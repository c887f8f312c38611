package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Marga-Ghale/ora-interior-backend/internal/config"
	"github.com/Marga-Ghale/ora-interior-backend/internal/events"
	"github.com/Marga-Ghale/ora-interior-backend/internal/repository"
	"github.com/Marga-Ghale/ora-interior-backend/internal/socket"
	"github.com/Marga-Ghale/ora-interior-backend/internal/types"
)

var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUserExists           = errors.New("user already exists")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidToken         = errors.New("invalid token")
	ErrNotFound             = errors.New("resource not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrConflict             = errors.New("resource already exists")
	ErrInvalidInput         = errors.New("invalid input")
	ErrLeadClosed           = errors.New("lead is already converted or cancelled")
	ErrConversionInProgress = errors.New("lead conversion already in progress")
	ErrInvalidTransition    = errors.New("status transition not allowed")
	ErrProjectLocked        = errors.New("project is locked")
	ErrChatLocked           = errors.New("chat is locked")
	ErrQuoteDecided         = errors.New("quotation is no longer pending approval")
	ErrStorageUnavailable   = errors.New("object storage is not configured")
	ErrUnknownFeed          = errors.New("unknown data feed")
)

// ValidationError carries field-level messages. It matches ErrInvalidInput
// under errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = message
}

func (e *ValidationError) empty() bool { return len(e.Fields) == 0 }

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %s", k, e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// Actor is the authenticated caller.
type Actor struct {
	ID   string
	Role string
}

func (a Actor) IsAdmin() bool { return a.Role == types.RoleAdmin }

// scope returns the designer filter for list queries: admins see everything.
func (a Actor) scope() string {
	if a.IsAdmin() {
		return ""
	}
	return a.ID
}

// owns reports whether the actor may act on a record assigned to designerID.
func (a Actor) owns(designerID *string) bool {
	if a.IsAdmin() {
		return true
	}
	return designerID != nil && *designerID == a.ID
}

// ============================================
// Collaborators
// ============================================

// Locker serialises work on a key across instances.
type Locker interface {
	// TryLock returns a holder token when the lock is taken.
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	// Unlock is a no-op unless token still holds key.
	Unlock(ctx context.Context, key, token string) error
}

// Cache stores JSON-encodable values.
type Cache interface {
	SetCache(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	GetCache(ctx context.Context, key string, dest interface{}) error
}

// Mailer queues templated e-mail.
type Mailer interface {
	Enqueue(to []string, subject, templateName string, data interface{})
}

// Presigner issues time-limited upload URLs.
type Presigner interface {
	PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, error)
}

// FeedFetcher returns the raw body of a named static JSON feed.
type FeedFetcher interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
	Names() []string
}

// ============================================
// Services Container
// ============================================

type Services struct {
	Auth        AuthService
	User        UserService
	Lead        LeadService
	Project     ProjectService
	Quote       QuoteService
	Design      DesignService
	Product     ProductService
	Chat        ChatService
	Upload      UploadService
	Dashboard   DashboardService
	Broadcaster *socket.Broadcaster
}

// ServiceDeps contains all dependencies needed to create services
type ServiceDeps struct {
	Config      *config.Config
	Repos       *repository.Repositories
	Locker      Locker
	Cache       Cache
	Mailer      Mailer
	Publisher   events.Publisher
	Presigner   Presigner
	Feeds       FeedFetcher
	Broadcaster *socket.Broadcaster
}

func NewServices(deps *ServiceDeps) *Services {
	publisher := deps.Publisher
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	locker := deps.Locker
	if locker == nil {
		locker = NewMemoryLocker()
	}
	lockTTL := time.Duration(deps.Config.ConversionLockSeconds) * time.Second

	return &Services{
		Auth: NewAuthService(deps.Config, deps.Repos.UserRepo),
		User: NewUserService(deps.Repos.UserRepo),
		Lead: NewLeadService(LeadServiceDeps{
			Leads:       deps.Repos.LeadRepo,
			Projects:    deps.Repos.ProjectRepo,
			Designs:     deps.Repos.DesignRepo,
			Products:    deps.Repos.ProductRepo,
			Users:       deps.Repos.UserRepo,
			Messages:    deps.Repos.MessageRepo,
			Locker:      locker,
			LockTTL:     lockTTL,
			Publisher:   publisher,
			Mailer:      deps.Mailer,
			Broadcaster: deps.Broadcaster,
			FrontendURL: deps.Config.FrontendURL,
		}),
		Project: NewProjectService(
			deps.Repos.ProjectRepo,
			deps.Repos.ProductRepo,
			publisher,
			deps.Broadcaster,
		),
		Quote: NewQuoteService(
			deps.Repos.QuotationRepo,
			deps.Repos.ProjectRepo,
			deps.Repos.UserRepo,
			publisher,
			deps.Mailer,
			deps.Broadcaster,
		),
		Design:  NewDesignService(deps.Repos.DesignRepo),
		Product: NewProductService(deps.Repos.ProductRepo),
		Chat: NewChatService(
			deps.Repos.MessageRepo,
			deps.Repos.LeadRepo,
			deps.Repos.ProjectRepo,
			deps.Broadcaster,
		),
		Upload: NewUploadService(deps.Presigner, time.Duration(deps.Config.PresignExpiry)*time.Second),
		Dashboard: NewDashboardService(
			deps.Feeds,
			deps.Cache,
			time.Duration(deps.Config.MockCacheTTLMinutes)*time.Minute,
			deps.Repos.LeadRepo,
			deps.Repos.ProjectRepo,
		),
		Broadcaster: deps.Broadcaster,
	}
}
