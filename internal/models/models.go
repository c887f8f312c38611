package models

import "time"

// ============================================
// Auth DTOs
// ============================================

type SignUpMetadata struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Source    string `json:"source,omitempty"`
}

type SignUpRequest struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Metadata SignUpMetadata `json:"metadata"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type SessionResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

type AuthData struct {
	User    UserResponse    `json:"user"`
	Session SessionResponse `json:"session"`
}

// AuthError is present only on failure.
type AuthError struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// AuthEnvelope is the {data, error} shape every auth call answers with.
type AuthEnvelope struct {
	Data  *AuthData  `json:"data"`
	Error *AuthError `json:"error"`
}

// ============================================
// User DTOs
// ============================================

type UserResponse struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Avatar       *string    `json:"avatar,omitempty"`
	Phone        *string    `json:"phone,omitempty"`
	Role         string     `json:"role"`
	Status       string     `json:"status"`
	LastActiveAt *time.Time `json:"lastActiveAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

type UpdateProfileRequest struct {
	Name   *string `json:"name,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
	Phone  *string `json:"phone,omitempty"`
}

type CreateDesignerRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Phone    *string `json:"phone,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
}

// ============================================
// Errors
// ============================================

type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}
