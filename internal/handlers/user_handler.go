package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tradebook/internal/models"
	"tradebook/internal/pagination"
	"tradebook/internal/services"
)

// UserHandler handles user administration. Every route is admin-only.
type UserHandler struct {
	userService services.UserServicer
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService services.UserServicer) *UserHandler {
	return &UserHandler{userService: userService}
}

// UpdateUserRequest represents the request payload for updating a user.
type UpdateUserRequest struct {
	FirstName *string      `json:"firstName" binding:"omitempty,min=1,max=100"`
	LastName  *string      `json:"lastName" binding:"omitempty,min=1,max=100"`
	Role      *models.Role `json:"role" binding:"omitempty,user_role"`
	IsActive  *bool        `json:"isActive"`
	Password  *string      `json:"password" binding:"omitempty,min=8,max=128"`
}

// ListUsers handles listing users.
// @Summary     List users
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.PublicUser]
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	var page pagination.PageRequest
	if !bindQuery(c, &page) {
		return
	}

	result, err := h.userService.ListUsers(page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetUser handles retrieving a user.
// @Summary     Get user by ID
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "User ID"
// @Success     200 {object} models.PublicUser
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetUserByID(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user.Public()})
}

// UpdateUser handles updating a user.
// @Summary     Update user
// @Tags        users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "User ID"
// @Param       request body UpdateUserRequest true "Fields to change"
// @Success     200 {object} models.PublicUser
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /users/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateUser(c.Param("id"), models.UserPatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		IsActive:  req.IsActive,
		Password:  req.Password,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user.Public()})
}

// DeleteUser handles deleting a user.
// @Summary     Delete user
// @Tags        users
// @Security    BearerAuth
// @Param       id path string true "User ID"
// @Success     204
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.userService.DeleteUser(c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
