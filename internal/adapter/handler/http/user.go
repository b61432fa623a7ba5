package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tmuthoni/chama_backend/internal/core/domain"
	"github.com/tmuthoni/chama_backend/internal/core/ports"
)

type UserHandler struct {
	userService ports.UserService
	logger      ports.LoggerPort
	metrics     ports.MetricsPort
}

func NewUserHandler(
	userService ports.UserService,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
		metrics:     metrics,
	}
}

type AssignRoleRequest struct {
	Role domain.UserRole `json:"role" binding:"required" example:"admin"`
}

// MemberSummary is the trimmed listing the admin dashboard consumes.
type MemberSummary struct {
	MemberID int64  `json:"memberId" example:"1"`
	FullName string `json:"fullName" example:"Wanjiku Kamau"`
	Email    string `json:"email" example:"wanjiku@example.com"`
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		newErrorResponse(c, http.StatusBadRequest, "Invalid id parameter")
		return 0, false
	}
	return id, true
}

// @Summary Assign a role
// @Description Admin changes a user's role; takes effect on the user's next request
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param user_id path int true "User id"
// @Param request body AssignRoleRequest true "New role"
// @Success 200 {object} map[string]interface{} "Role changed"
// @Failure 400 {object} errorResponse "Invalid role"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Forbidden"
// @Failure 404 {object} errorResponse "User not found"
// @Router /users/{user_id}/role [put]
func (h *UserHandler) AssignRole(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Role is required")
		return
	}

	user, err := h.userService.AssignRole(c.Request.Context(), id, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRole):
			newErrorResponse(c, http.StatusBadRequest, "Invalid role")
		case errors.Is(err, domain.ErrNotFound):
			newErrorResponse(c, http.StatusNotFound, "User not found")
		default:
			newErrorResponse(c, http.StatusInternalServerError, "Failed to assign role")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":  user.Firstname + " " + user.Lastname + "'s role changed to " + string(req.Role),
		"user": toUserDTO(user),
	})
}

// @Summary List users
// @Description Admin lists all users, optionally filtered by role
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param role query string false "Role filter" Enums(member, admin)
// @Success 200 {object} map[string]interface{} "Users"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Forbidden"
// @Router /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	role := domain.UserRole(c.Query("role"))
	users, err := h.userService.ListUsers(c.Request.Context(), role)
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "Failed to list users")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":   "Users fetched",
		"users": toUserDTOs(users),
	})
}

// @Summary Get a user
// @Description Admin fetches a single user by id
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param user_id path int true "User id"
// @Success 200 {object} map[string]interface{} "User"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Forbidden"
// @Failure 404 {object} errorResponse "User not found"
// @Router /users/{user_id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			newErrorResponse(c, http.StatusNotFound, "User not found")
			return
		}
		newErrorResponse(c, http.StatusInternalServerError, "Failed to fetch user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":  "User found",
		"user": toUserDTO(user),
	})
}

// @Summary Delete a user
// @Description Admin removes an account and its dependent financial records
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param user_id path int true "User id"
// @Success 200 {object} map[string]interface{} "User deleted"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Forbidden"
// @Failure 404 {object} errorResponse "User not found"
// @Router /users/{user_id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.DeleteUser(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			newErrorResponse(c, http.StatusNotFound, "User not found")
			return
		}
		newErrorResponse(c, http.StatusInternalServerError, "Delete failed")
		return
	}

	h.logger.Info("User deleted", map[string]interface{}{
		"user_id": id,
	})

	c.JSON(http.StatusOK, gin.H{
		"msg":  "User deleted",
		"user": toUserDTO(user),
	})
}

// @Summary Current user
// @Description Returns the authenticated caller's profile
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{} "Profile"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Router /me [get]
func (h *UserHandler) Me(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	user, ok := getAuthUser(c)
	if !ok {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":  "Profile fetched",
		"user": toUserDTO(user),
	})
}

// @Summary Member profile
// @Description Returns the calling member's profile
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{} "Profile"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Forbidden"
// @Router /member/profile [get]
func (h *UserHandler) MemberProfile(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	user, ok := getAuthUser(c)
	if !ok {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":  "Profile fetched",
		"user": toUserDTO(user),
	})
}

// @Summary List members
// @Description Admin lists members as id, full name and email
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{} "Members"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Forbidden"
// @Router /admin/users [get]
func (h *UserHandler) AdminMembers(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	members, err := h.userService.ListUsers(c.Request.Context(), domain.Member)
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "Failed to list members")
		return
	}

	summaries := make([]MemberSummary, 0, len(members))
	for _, m := range members {
		summaries = append(summaries, MemberSummary{
			MemberID: m.MemberID,
			FullName: strings.TrimSpace(m.Firstname + " " + m.Lastname),
			Email:    m.Email,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":     "Members fetched",
		"members": summaries,
	})
}
