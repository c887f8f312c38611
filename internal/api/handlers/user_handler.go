package handlers

import (
	"net/http"

	"github.com/Marga-Ghale/ora-interior-backend/internal/api/middleware"
	"github.com/Marga-Ghale/ora-interior-backend/internal/models"
	"github.com/Marga-Ghale/ora-interior-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ============================================
// User Handler
// ============================================

type UserHandler struct {
	userService service.UserService
}

func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, err, "Failed to fetch user")
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) UpdateCurrentUser(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), actor.ID, service.ProfileUpdate{
		Name:   req.Name,
		Avatar: req.Avatar,
		Phone:  req.Phone,
	})
	if err != nil {
		respondError(c, err, "Failed to update user")
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

// SearchUsers searches for users by email or name
func (h *UserHandler) SearchUsers(c *gin.Context) {
	query := c.Query("q")
	if len(query) < 2 {
		c.JSON(http.StatusOK, []models.UserResponse{})
		return
	}

	users, err := h.userService.Search(c.Request.Context(), query)
	if err != nil {
		respondError(c, err, "Failed to search users")
		return
	}

	response := make([]models.UserResponse, len(users))
	for i, u := range users {
		response[i] = toUserResponse(u)
	}
	c.JSON(http.StatusOK, response)
}

// List - Admin user table, optionally by role
// GET /api/admin/users?role=designer
func (h *UserHandler) List(c *gin.Context) {
	actor := middleware.GetActor(c)
	users, err := h.userService.List(c.Request.Context(), actor, c.Query("role"))
	if err != nil {
		respondError(c, err, "Failed to fetch users")
		return
	}

	response := make([]models.UserResponse, len(users))
	for i, u := range users {
		response[i] = toUserResponse(u)
	}
	c.JSON(http.StatusOK, response)
}

// CreateDesigner - Admin creates a designer account
// POST /api/admin/designers
func (h *UserHandler) CreateDesigner(c *gin.Context) {
	var req models.CreateDesignerRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.CreateDesigner(c.Request.Context(), middleware.GetActor(c), service.NewDesigner{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Avatar:   req.Avatar,
	})
	if err != nil {
		respondError(c, err, "Failed to create designer")
		return
	}
	c.JSON(http.StatusCreated, toUserResponse(user))
}

// Delete - Admin removes a user
// DELETE /api/admin/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.userService.Delete(c.Request.Context(), middleware.GetActor(c), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete user")
		return
	}
	c.Status(http.StatusNoContent)
}
