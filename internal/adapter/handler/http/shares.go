package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tmuthoni/chama_backend/internal/core/domain"
	"github.com/tmuthoni/chama_backend/internal/core/ports"
)

type SharesHandler struct {
	sharesService ports.SharesService
	logger        ports.LoggerPort
	metrics       ports.MetricsPort
}

func NewSharesHandler(
	sharesService ports.SharesService,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *SharesHandler {
	return &SharesHandler{
		sharesService: sharesService,
		logger:        logger,
		metrics:       metrics,
	}
}

type SharesRequest struct {
	MemberID  int64   `json:"memberId" example:"1"`
	Shares    float64 `json:"shares" binding:"required" example:"10000"`
	Dividends float64 `json:"dividends" example:"0.10"`
	Penalties float64 `json:"penalties" example:"0"`
}

// @Summary Member shares
// @Description Member views their own shares, dividends and penalties
// @Tags shares
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{} "Shares"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Forbidden"
// @Failure 404 {object} errorResponse "No shares record"
// @Router /shares [get]
func (h *SharesHandler) MemberShares(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	user, ok := getAuthUser(c)
	if !ok {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	shares, err := h.sharesService.MemberShares(c.Request.Context(), user.MemberID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			newErrorResponse(c, http.StatusNotFound, "No shares record found")
			return
		}
		newErrorResponse(c, http.StatusInternalServerError, "Failed to fetch shares")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":    "Shares fetched",
		"shares": shares,
	})
}

// @Summary List shares
// @Description Admin lists shares records, optionally filtered by member
// @Tags shares
// @Security BearerAuth
// @Produce json
// @Param memberId query int false "Member filter"
// @Success 200 {object} map[string]interface{} "Shares records"
// @Failure 400 {object} errorResponse "memberId must be an integer"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Forbidden"
// @Router /admin/shares [get]
func (h *SharesHandler) ListShares(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	var memberID int64
	if raw := c.Query("memberId"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			newErrorResponse(c, http.StatusBadRequest, "memberId must be an integer")
			return
		}
		memberID = parsed
	}

	shares, err := h.sharesService.ListShares(c.Request.Context(), memberID)
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "Failed to fetch shares")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":    "Shares fetched",
		"shares": shares,
	})
}

// @Summary Create shares
// @Description Admin opens a shares record for a member; one record per member
// @Tags shares
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body SharesRequest true "Shares data"
// @Success 201 {object} map[string]interface{} "Shares record created"
// @Failure 400 {object} errorResponse "Validation failure or existing record"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Forbidden"
// @Failure 404 {object} errorResponse "Member not found"
// @Router /admin/shares [post]
func (h *SharesHandler) CreateShares(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	var req SharesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid request")
		return
	}
	if req.MemberID <= 0 {
		newErrorResponse(c, http.StatusBadRequest, "memberId is required")
		return
	}

	shares := &domain.Shares{
		MemberID:  req.MemberID,
		Shares:    req.Shares,
		Dividends: req.Dividends,
		Penalties: req.Penalties,
	}

	created, err := h.sharesService.CreateShares(c.Request.Context(), shares)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSharesExist):
			newErrorResponse(c, http.StatusBadRequest, "Shares record already exists. Use PUT to update.")
		case errors.Is(err, domain.ErrNotFound):
			newErrorResponse(c, http.StatusNotFound, "Member not found")
		case isValidationError(err):
			newErrorResponse(c, http.StatusBadRequest, err.Error())
		default:
			newErrorResponse(c, http.StatusInternalServerError, "Failed to create shares record")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"msg":    "Shares record created",
		"shares": created,
	})
}

// @Summary Update shares
// @Description Admin updates a member's shares record
// @Tags shares
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param member_id path int true "Member id"
// @Param request body SharesRequest true "Shares data"
// @Success 200 {object} map[string]interface{} "Shares updated"
// @Failure 400 {object} errorResponse "Validation failure"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Forbidden"
// @Failure 404 {object} errorResponse "Shares record not found"
// @Router /admin/shares/{member_id} [put]
func (h *SharesHandler) UpdateShares(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	memberID, ok := parseIDParam(c, "memberId")
	if !ok {
		return
	}

	var req SharesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid request")
		return
	}

	shares := &domain.Shares{
		MemberID:  memberID,
		Shares:    req.Shares,
		Dividends: req.Dividends,
		Penalties: req.Penalties,
	}

	updated, err := h.sharesService.UpdateShares(c.Request.Context(), shares)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			newErrorResponse(c, http.StatusNotFound, "Shares record not found")
		case isValidationError(err):
			newErrorResponse(c, http.StatusBadRequest, err.Error())
		default:
			newErrorResponse(c, http.StatusInternalServerError, "Failed to update shares")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":    "Shares updated",
		"shares": updated,
	})
}

// @Summary Delete shares
// @Description Admin removes a member's shares record
// @Tags shares
// @Security BearerAuth
// @Produce json
// @Param member_id path int true "Member id"
// @Success 200 {object} map[string]interface{} "Shares record deleted"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Forbidden"
// @Failure 404 {object} errorResponse "Shares record not found"
// @Router /admin/shares/{member_id} [delete]
func (h *SharesHandler) DeleteShares(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	memberID, ok := parseIDParam(c, "memberId")
	if !ok {
		return
	}

	if err := h.sharesService.DeleteShares(c.Request.Context(), memberID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			newErrorResponse(c, http.StatusNotFound, "Shares record not found")
			return
		}
		newErrorResponse(c, http.StatusInternalServerError, "Failed to delete shares")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg": "Shares record deleted",
	})
}
