package http

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tmuthoni/chama_backend/internal/core/domain"
	"github.com/tmuthoni/chama_backend/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	logger      ports.LoggerPort
	metrics     ports.MetricsPort
}

func NewAuthHandler(
	authService ports.AuthService,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
		metrics:     metrics,
	}
}

type RegisterRequest struct {
	Firstname string `json:"firstname" binding:"required" example:"Wanjiku"`
	Lastname  string `json:"lastname" binding:"required" example:"Kamau"`
	Email     string `json:"email" binding:"required,email" example:"wanjiku@example.com"`
	PhoneNo   string `json:"phoneno" binding:"required" example:"0712345678"`
	Password  string `json:"password" binding:"required" example:"password123"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"wanjiku@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

type LoginResponse struct {
	Msg         string  `json:"msg" example:"Login successful"`
	AccessToken string  `json:"access_token"`
	User        UserDTO `json:"user"`
}

type RequestPasswordResetRequest struct {
	Email string `json:"email" binding:"required,email" example:"wanjiku@example.com"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// @Summary Register a new member
// @Description Creates an unverified member account and emails a verification link
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} map[string]interface{} "User registered"
// @Failure 400 {object} errorResponse "Validation failure or duplicate email"
// @Failure 500 {object} errorResponse "Persistence failure"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in registration", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid request")
		return
	}

	user := &domain.User{
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Email:     req.Email,
		PhoneNo:   req.PhoneNo,
		Password:  req.Password,
	}

	created, err := h.authService.Register(c.Request.Context(), user)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateEmail):
			newErrorResponse(c, http.StatusBadRequest, "Email already registered")
		case errors.Is(err, domain.ErrDuplicatePhone):
			newErrorResponse(c, http.StatusBadRequest, "Phone number already registered")
		case isValidationError(err):
			newErrorResponse(c, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("Failed to register user", map[string]interface{}{
				"error": err.Error(),
				"email": req.Email,
			})
			newErrorResponse(c, http.StatusInternalServerError, "Registration failed")
		}
		return
	}

	h.logger.Info("User registered", map[string]interface{}{
		"email":   created.Email,
		"user_id": created.MemberID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"msg":  "User registered. Please check your email to verify.",
		"user": toUserDTO(created),
	})
}

// @Summary Verify email
// @Description Consumes the emailed verification token and marks the account verified
// @Tags auth
// @Produce json
// @Param token path string true "Verification token"
// @Success 200 {object} map[string]interface{} "Email verified"
// @Failure 400 {object} errorResponse "Invalid or expired verification link"
// @Router /auth/verify-email/{token} [get]
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	// The token arrives percent-encoded inside the emailed link.
	token, err := url.PathUnescape(c.Param("token"))
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid or expired verification link")
		return
	}

	user, err := h.authService.VerifyEmail(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidToken) {
			newErrorResponse(c, http.StatusBadRequest, "Invalid or expired verification link")
			return
		}
		h.logger.Error("Email verification failed", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusInternalServerError, "Verification failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":  "Email verified successfully. You can now login.",
		"user": toUserDTO(user),
	})
}

// @Summary Login
// @Description Authenticates by email and password and returns a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login data"
// @Success 200 {object} LoginResponse "Successful login"
// @Failure 400 {object} errorResponse "Malformed request"
// @Failure 401 {object} errorResponse "Invalid credentials"
// @Failure 403 {object} errorResponse "Email not verified"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in login", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid request")
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmailNotVerified):
			newErrorResponse(c, http.StatusForbidden, "Please verify your email before logging in.")
		case errors.Is(err, domain.ErrInvalidCredentials):
			h.logger.Info("Login failed", map[string]interface{}{
				"email": req.Email,
			})
			newErrorResponse(c, http.StatusUnauthorized, "Invalid email or password")
		default:
			h.logger.Error("Login error", map[string]interface{}{
				"email": req.Email,
				"error": err.Error(),
			})
			newErrorResponse(c, http.StatusInternalServerError, "Login failed")
		}
		return
	}

	h.logger.Info("User logged in successfully", map[string]interface{}{
		"email":   req.Email,
		"user_id": user.MemberID,
	})

	c.JSON(http.StatusOK, LoginResponse{
		Msg:         "Login successful",
		AccessToken: token,
		User:        toUserDTO(user),
	})
}

// @Summary Request a password reset
// @Description Emails a short-lived reset link when the account exists; the response is identical either way
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RequestPasswordResetRequest true "Account email"
// @Success 200 {object} map[string]interface{} "Request accepted"
// @Failure 400 {object} errorResponse "Malformed request"
// @Router /auth/request-password-reset [post]
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	var req RequestPasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Email is required")
		return
	}

	if err := h.authService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.logger.Error("Password reset request failed", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusInternalServerError, "Request failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg": "If that email exists, a reset link has been sent.",
	})
}

// @Summary Reset password
// @Description Consumes a password reset token and replaces the stored password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequest true "Reset token and new password"
// @Success 200 {object} map[string]interface{} "Password reset"
// @Failure 400 {object} errorResponse "Invalid or expired token"
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid or expired token")
		return
	}

	token, err := url.PathUnescape(req.Token)
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid or expired token")
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), token, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidToken):
			newErrorResponse(c, http.StatusBadRequest, "Invalid or expired token")
		case isValidationError(err):
			newErrorResponse(c, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("Password reset failed", map[string]interface{}{
				"error": err.Error(),
			})
			newErrorResponse(c, http.StatusInternalServerError, "Password reset failed")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg": "Password reset successful",
	})
}
