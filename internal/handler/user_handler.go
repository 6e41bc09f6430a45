package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/elearn-api/internal/handler/dto"
	"github.com/yourusername/elearn-api/internal/service"
)

// UserHandler handles profile and account endpoints.
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UpdateProfileRequest is the profile edit payload.
type UpdateProfileRequest struct {
	FirstName      string `json:"first_name" binding:"omitempty,max=100"`
	LastName       string `json:"last_name" binding:"omitempty,max=100"`
	ProfilePicture string `json:"profile_picture" binding:"omitempty,max=255"`
	Language       string `json:"language" binding:"omitempty,len=2"`
}

// UpdateProfile handles PUT /api/users/me.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.UpdateProfile(currentUserID(c),
		req.FirstName, req.LastName, req.ProfilePicture, req.Language)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// ChangePasswordRequest is the password change payload.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// ChangePassword handles PUT /api/users/me/password.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.userService.ChangePassword(currentUserID(c), req.OldPassword, req.NewPassword); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

// GetUser handles GET /api/users/:userId.
func (h *UserHandler) GetUser(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	user, err := h.userService.GetByID(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// ListUsers handles GET /api/admin/users.
func (h *UserHandler) ListUsers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	users, err := h.userService.List(limit, (page-1)*limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	out := make([]*dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, dto.NewUserResponse(&users[i]))
	}
	c.JSON(http.StatusOK, gin.H{"users": out, "page": page, "per_page": limit})
}

// SetRoleRequest is the admin role assignment payload.
type SetRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// SetRole handles PUT /api/admin/users/:userId/role.
func (h *UserHandler) SetRole(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	var req SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.userService.SetRole(userID, req.Role); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Role updated"})
}
