package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/Marga-Ghale/ora-interior-backend/internal/config"
	"github.com/Marga-Ghale/ora-interior-backend/internal/repository"
	"github.com/Marga-Ghale/ora-interior-backend/internal/types"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ============================================
// Auth Service
// ============================================

const minPasswordLength = 6

// SignUpMetadata is the free-form profile data sent with a sign-up.
type SignUpMetadata struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	Source    string `json:"source"`
}

// Session is what a successful sign-up or sign-in hands back.
type Session struct {
	User         *repository.User
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Claims identifies the caller behind an access token.
type Claims struct {
	UserID string
	Role   string
}

type AuthService interface {
	SignUp(ctx context.Context, email, password string, meta SignUpMetadata) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	RefreshToken(ctx context.Context, refreshToken string) (*Session, error)
	Logout(ctx context.Context, refreshToken string) error
	ValidateToken(token string) (*jwt.Token, error)
	GetClaims(token *jwt.Token) (*Claims, error)
}

type authService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
	now      func() time.Time
}

func NewAuthService(cfg *config.Config, userRepo repository.UserRepository) AuthService {
	return &authService{cfg: cfg, userRepo: userRepo, now: time.Now}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validateCredentials checks the shape of an e-mail/password pair.
func validateCredentials(email, password string) error {
	verr := &ValidationError{}
	if email == "" {
		verr.add("email", "required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		verr.add("email", "invalid email address")
	}
	if len(password) < minPasswordLength {
		verr.add("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	if verr.empty() {
		return nil
	}
	return verr
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (s *authService) SignUp(ctx context.Context, email, password string, meta SignUpMetadata) (*Session, error) {
	email = normalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(meta.Name)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	user := &repository.User{
		Name:     name,
		Email:    email,
		Password: hashed,
		Role:     types.RoleUser,
		Status:   "active",
	}
	if meta.AvatarURL != "" {
		avatar := meta.AvatarURL
		user.Avatar = &avatar
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.newSession(ctx, user)
}

func (s *authService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil || user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	_ = s.userRepo.UpdateLastActive(ctx, user.ID)

	return s.newSession(ctx, user)
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*Session, error) {
	rt, err := s.userRepo.FindRefreshToken(ctx, refreshToken)
	if err != nil || rt == nil {
		return nil, ErrInvalidToken
	}

	// Refresh tokens are single use.
	_ = s.userRepo.DeleteRefreshToken(ctx, refreshToken)
	if s.now().After(rt.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(ctx, rt.UserID)
	if err != nil || user == nil {
		return nil, ErrInvalidToken
	}
	_ = s.userRepo.UpdateLastActive(ctx, user.ID)

	return s.newSession(ctx, user)
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	return s.userRepo.DeleteRefreshToken(ctx, refreshToken)
}

func (s *authService) ValidateToken(tokenString string) (*jwt.Token, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	return token, nil
}

func (s *authService) GetClaims(token *jwt.Token) (*Claims, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return nil, ErrInvalidToken
	}
	role, _ := claims["role"].(string)
	if role == "" {
		role = types.RoleUser
	}
	return &Claims{UserID: userID, Role: role}, nil
}

func (s *authService) newSession(ctx context.Context, user *repository.User) (*Session, error) {
	now := s.now()
	expiresAt := now.Add(time.Hour * time.Duration(s.cfg.JWTExpiry))

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID,
		"role": user.Role,
		"type": "access",
		"exp":  expiresAt.Unix(),
		"iat":  now.Unix(),
	})
	accessTokenString, err := accessToken.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	rt := &repository.RefreshToken{
		Token:     uuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: now.Add(time.Hour * 24 * time.Duration(s.cfg.RefreshExpiry)),
	}
	if err := s.userRepo.SaveRefreshToken(ctx, rt); err != nil {
		return nil, fmt.Errorf("failed to save refresh token: %w", err)
	}

	return &Session{
		User:         user,
		AccessToken:  accessTokenString,
		RefreshToken: rt.Token,
		ExpiresAt:    expiresAt,
	}, nil
}
