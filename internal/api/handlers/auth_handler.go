package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/Marga-Ghale/ora-interior-backend/internal/models"
	"github.com/Marga-Ghale/ora-interior-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ============================================
// Auth Handler
// ============================================

// AuthHandler answers every call with {data, error}; exactly one is non-null.
type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func authSuccess(c *gin.Context, code int, session *service.Session) {
	c.JSON(code, models.AuthEnvelope{
		Data: &models.AuthData{
			User: toUserResponse(session.User),
			Session: models.SessionResponse{
				AccessToken:  session.AccessToken,
				RefreshToken: session.RefreshToken,
				ExpiresAt:    session.ExpiresAt,
			},
		},
	})
}

func authFailure(c *gin.Context, err error) {
	var verr *service.ValidationError
	code, body := http.StatusInternalServerError, &models.AuthError{Message: "Something went wrong, please try again"}

	switch {
	case errors.As(err, &verr):
		code, body = http.StatusBadRequest, &models.AuthError{Message: "Please check the highlighted fields", Fields: verr.Fields}
	case errors.Is(err, service.ErrUserExists):
		code, body.Message = http.StatusConflict, "An account with this email already exists"
	case errors.Is(err, service.ErrInvalidCredentials):
		code, body.Message = http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, service.ErrInvalidToken):
		code, body.Message = http.StatusUnauthorized, "Your session has expired, please sign in again"
	default:
		log.Printf("❌ [Auth] %s failed: %v", c.Request.URL.Path, err)
	}
	c.JSON(code, models.AuthEnvelope{Error: body})
}

func (h *AuthHandler) bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, models.AuthEnvelope{Error: &models.AuthError{Message: "Invalid request body"}})
		return false
	}
	return true
}

// SignUp - Create a customer account
// POST /api/auth/signup
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req models.SignUpRequest
	if !h.bind(c, &req) {
		return
	}

	session, err := h.authService.SignUp(c.Request.Context(), req.Email, req.Password, service.SignUpMetadata{
		Name:      req.Metadata.Name,
		AvatarURL: req.Metadata.AvatarURL,
		Source:    req.Metadata.Source,
	})
	if err != nil {
		authFailure(c, err)
		return
	}
	log.Printf("✅ [Auth] New account %s", session.User.ID)
	authSuccess(c, http.StatusCreated, session)
}

// SignIn - Password sign-in
// POST /api/auth/signin
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req models.SignInRequest
	if !h.bind(c, &req) {
		return
	}

	session, err := h.authService.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		authFailure(c, err)
		return
	}
	authSuccess(c, http.StatusOK, session)
}

// Refresh - Rotate a refresh token
// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshRequest
	if !h.bind(c, &req) {
		return
	}

	session, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		authFailure(c, err)
		return
	}
	authSuccess(c, http.StatusOK, session)
}

// Logout - Revoke a refresh token
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req models.RefreshRequest
	if !h.bind(c, &req) {
		return
	}

	if err := h.authService.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		authFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, models.AuthEnvelope{})
}
