package services

import (
	"context"
	"errors"

	"github.com/tmuthoni/chama_backend/internal/core/domain"
	"github.com/tmuthoni/chama_backend/internal/core/ports"
)

type PaymentService struct {
	repo   ports.PaymentRepository
	logger ports.LoggerPort
}

func NewPaymentService(repo ports.PaymentRepository, logger ports.LoggerPort) *PaymentService {
	return &PaymentService{
		repo:   repo,
		logger: logger,
	}
}

// MakePayment records a payment for the calling member. The member id
// always comes from the authenticated caller, never the request body.
func (ps *PaymentService) MakePayment(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	if payment.Amount <= 0 {
		return nil, domain.NewValidationError("amount must be greater than zero")
	}

	existing, err := ps.repo.GetPaymentByReceipt(ctx, payment.Receipt)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateReceipt
	}

	created, err := ps.repo.CreatePayment(ctx, payment)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateReceipt) {
			return nil, err
		}
		ps.logger.Error("Failed to record payment", map[string]interface{}{
			"member_id": payment.MemberID,
			"receipt":   payment.Receipt,
			"error":     err.Error(),
		})
		return nil, err
	}

	ps.logger.Info("Payment recorded", map[string]interface{}{
		"payment_id": created.PaymentID,
		"member_id":  created.MemberID,
	})
	return created, nil
}

func (ps *PaymentService) MyPayments(ctx context.Context, memberID int64) ([]*domain.Payment, error) {
	payments, err := ps.repo.GetPaymentsByMember(ctx, memberID)
	if err != nil {
		ps.logger.Error("Failed to get member payments", map[string]interface{}{
			"member_id": memberID,
			"error":     err.Error(),
		})
		return nil, err
	}
	return payments, nil
}

func (ps *PaymentService) AllPayments(ctx context.Context) ([]*domain.PaymentWithMember, error) {
	payments, err := ps.repo.ListPayments(ctx)
	if err != nil {
		ps.logger.Error("Failed to list payments", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}
	return payments, nil
}

func (ps *PaymentService) DeletePayment(ctx context.Context, paymentID int64) (*domain.Payment, error) {
	payment, err := ps.repo.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if err := ps.repo.DeletePayment(ctx, paymentID); err != nil {
		ps.logger.Error("Failed to delete payment", map[string]interface{}{
			"payment_id": paymentID,
			"error":      err.Error(),
		})
		return nil, err
	}
	return payment, nil
}

var _ ports.PaymentService = (*PaymentService)(nil)
