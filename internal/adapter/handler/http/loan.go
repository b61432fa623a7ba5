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

type LoanHandler struct {
	loanService ports.LoanService
	logger      ports.LoggerPort
	metrics     ports.MetricsPort
}

func NewLoanHandler(
	loanService ports.LoanService,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *LoanHandler {
	return &LoanHandler{
		loanService: loanService,
		logger:      logger,
		metrics:     metrics,
	}
}

// LoanRequest carries Interest as a pointer so a zero-interest loan is
// distinguishable from an omitted field, which gets the default rate.
type LoanRequest struct {
	Amount     float64  `json:"amount" binding:"required" example:"50000"`
	Interest   *float64 `json:"interest" example:"0.08"`
	Year       int      `json:"year" binding:"required" example:"3"`
	MonthRepay float64  `json:"monthrepay" binding:"required" example:"1500"`
}

func (r *LoanRequest) interestOrDefault() float64 {
	if r.Interest == nil {
		return domain.DefaultLoanInterest
	}
	return *r.Interest
}

// @Summary Apply for a loan
// @Description Member submits a loan application
// @Tags loans
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body LoanRequest true "Loan application"
// @Success 201 {object} map[string]interface{} "Loan application submitted"
// @Failure 400 {object} errorResponse "Validation failure"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Forbidden"
// @Router /loans/apply [post]
func (h *LoanHandler) Apply(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	user, ok := getAuthUser(c)
	if !ok {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req LoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid request")
		return
	}

	loan := &domain.Loan{
		MemberID:   user.MemberID,
		Amount:     req.Amount,
		Interest:   req.interestOrDefault(),
		Year:       req.Year,
		MonthRepay: req.MonthRepay,
	}

	created, err := h.loanService.Apply(c.Request.Context(), loan)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			newErrorResponse(c, http.StatusNotFound, "User not found")
			return
		}
		if errors.Is(err, domain.ErrLoanExists) {
			newErrorResponse(c, http.StatusBadRequest, "Loan application already exists")
			return
		}
		// Validation failures from the service read as plain messages.
		if isValidationError(err) {
			newErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		newErrorResponse(c, http.StatusInternalServerError, "Failed to submit loan application")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"msg":  "Loan application submitted",
		"loan": created,
	})
}

// @Summary My loans
// @Description Member lists their own loan applications
// @Tags loans
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{} "Loans"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Forbidden"
// @Router /loans/me [get]
func (h *LoanHandler) MyLoans(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	user, ok := getAuthUser(c)
	if !ok {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	loans, err := h.loanService.MyLoans(c.Request.Context(), user.MemberID)
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "Failed to fetch loans")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":   "Loans fetched",
		"loans": loans,
	})
}

// @Summary All loans
// @Description Admin lists every loan with pagination
// @Tags loans
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Page size" default(25)
// @Success 200 {object} map[string]interface{} "Paginated loans"
// @Failure 400 {object} errorResponse "Invalid pagination values"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Forbidden"
// @Router /loans [get]
func (h *LoanHandler) AllLoans(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid pagination values")
		return
	}
	perPage, err := strconv.Atoi(c.DefaultQuery("per_page", "25"))
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid pagination values")
		return
	}

	result, err := h.loanService.AllLoans(c.Request.Context(), page, perPage)
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "Failed to fetch loans")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":      "Loans fetched",
		"loans":    result.Loans,
		"page":     result.Page,
		"per_page": result.PerPage,
		"total":    result.Total,
		"pages":    result.Pages,
	})
}

// @Summary Update a loan
// @Description Admin updates a member's loan application
// @Tags loans
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param loan_id path int true "Loan id"
// @Param request body LoanRequest true "Loan fields"
// @Success 200 {object} map[string]interface{} "Loan updated"
// @Failure 400 {object} errorResponse "Validation failure"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Forbidden"
// @Failure 404 {object} errorResponse "Loan not found"
// @Router /loans/{loan_id} [put]
func (h *LoanHandler) UpdateLoan(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req LoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid request")
		return
	}

	loan := &domain.Loan{
		MemberID:   id,
		Amount:     req.Amount,
		Interest:   req.interestOrDefault(),
		Year:       req.Year,
		MonthRepay: req.MonthRepay,
	}

	updated, err := h.loanService.UpdateLoan(c.Request.Context(), loan)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			newErrorResponse(c, http.StatusNotFound, "Loan not found")
			return
		}
		if isValidationError(err) {
			newErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		newErrorResponse(c, http.StatusInternalServerError, "Failed to update loan")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":  "Loan updated",
		"loan": updated,
	})
}

// @Summary Delete a loan
// @Description Admin deletes a member's loan application
// @Tags loans
// @Security BearerAuth
// @Produce json
// @Param loan_id path int true "Loan id"
// @Success 200 {object} map[string]interface{} "Loan deleted"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Forbidden"
// @Failure 404 {object} errorResponse "Loan not found"
// @Router /loans/{loan_id} [delete]
func (h *LoanHandler) DeleteLoan(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.loanService.DeleteLoan(c.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			newErrorResponse(c, http.StatusNotFound, "Loan not found")
			return
		}
		newErrorResponse(c, http.StatusInternalServerError, "Failed to delete loan")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg": "Loan deleted",
	})
}
