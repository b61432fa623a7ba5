package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tmuthoni/chama_backend/internal/core/domain"
	"github.com/tmuthoni/chama_backend/internal/core/ports"
)

type PaymentHandler struct {
	paymentService ports.PaymentService
	logger         ports.LoggerPort
	metrics        ports.MetricsPort
}

func NewPaymentHandler(
	paymentService ports.PaymentService,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger,
		metrics:        metrics,
	}
}

type PaymentRequest struct {
	PayName string  `json:"payname" binding:"required" example:"Monthly contribution"`
	Amount  float64 `json:"amount" binding:"required" example:"2000"`
	Method  string  `json:"method" binding:"required" example:"mpesa"`
	Receipt string  `json:"receipt" binding:"required" example:"QL23XK8R7T"`
}

// @Summary Make a payment
// @Description Member records a payment; the member id is always the caller's
// @Tags payments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body PaymentRequest true "Payment data"
// @Success 201 {object} map[string]interface{} "Payment recorded"
// @Failure 400 {object} errorResponse "Validation failure or duplicate receipt"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Forbidden"
// @Router /payments [post]
func (h *PaymentHandler) MakePayment(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	user, ok := getAuthUser(c)
	if !ok {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid request")
		return
	}

	payment := &domain.Payment{
		MemberID: user.MemberID,
		PayName:  req.PayName,
		Amount:   req.Amount,
		Method:   req.Method,
		Receipt:  req.Receipt,
	}

	created, err := h.paymentService.MakePayment(c.Request.Context(), payment)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateReceipt):
			newErrorResponse(c, http.StatusBadRequest, "Receipt already exists")
		case isValidationError(err):
			newErrorResponse(c, http.StatusBadRequest, err.Error())
		default:
			newErrorResponse(c, http.StatusInternalServerError, "Failed to record payment")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"msg":     "Payment successful",
		"payment": created,
	})
}

// @Summary My payments
// @Description Member lists their own payments
// @Tags payments
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{} "Payments"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Forbidden"
// @Router /payments/me [get]
func (h *PaymentHandler) MyPayments(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	user, ok := getAuthUser(c)
	if !ok {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	payments, err := h.paymentService.MyPayments(c.Request.Context(), user.MemberID)
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "Failed to fetch payments")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":      "Payments fetched",
		"payments": payments,
	})
}

// @Summary All payments
// @Description Admin lists every payment, newest first, with the member's first name
// @Tags payments
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{} "Payments"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Forbidden"
// @Router /payments/all [get]
func (h *PaymentHandler) AllPayments(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payments, err := h.paymentService.AllPayments(c.Request.Context())
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "Failed to fetch payments")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":      "Payments fetched",
		"payments": payments,
	})
}

// @Summary Delete a payment
// @Description Admin removes a payment record
// @Tags payments
// @Security BearerAuth
// @Produce json
// @Param payment_id path int true "Payment id"
// @Success 200 {object} map[string]interface{} "Payment deleted"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Forbidden"
// @Failure 404 {object} errorResponse "Payment not found"
// @Router /payments/{payment_id} [delete]
func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	payment, err := h.paymentService.DeletePayment(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			newErrorResponse(c, http.StatusNotFound, "Payment not found")
			return
		}
		newErrorResponse(c, http.StatusInternalServerError, "Failed to delete payment")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":     "Payment deleted",
		"payment": payment,
	})
}
