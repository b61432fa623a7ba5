package services

import (
	"context"

	"github.com/tmuthoni/chama_backend/internal/core/domain"
	"github.com/tmuthoni/chama_backend/internal/core/ports"
)

type LoanService struct {
	repo   ports.LoanRepository
	logger ports.LoggerPort
}

func NewLoanService(repo ports.LoanRepository, logger ports.LoggerPort) *LoanService {
	return &LoanService{
		repo:   repo,
		logger: logger,
	}
}

func validateLoan(loan *domain.Loan) error {
	if loan.Amount <= 0 {
		return domain.NewValidationError("amount must be greater than 0")
	}
	if loan.Interest < 0 || loan.Interest > 5 {
		return domain.NewValidationError("interest value out of range")
	}
	if loan.Year <= 0 || loan.Year > 50 {
		return domain.NewValidationError("year value out of range")
	}
	if loan.MonthRepay <= 0 {
		return domain.NewValidationError("monthly repayment must be > 0")
	}
	return nil
}

func (ls *LoanService) Apply(ctx context.Context, loan *domain.Loan) (*domain.Loan, error) {
	if err := validateLoan(loan); err != nil {
		return nil, err
	}

	created, err := ls.repo.CreateLoan(ctx, loan)
	if err != nil {
		ls.logger.Error("Failed to create loan", map[string]interface{}{
			"member_id": loan.MemberID,
			"error":     err.Error(),
		})
		return nil, err
	}

	ls.logger.Info("Loan application submitted", map[string]interface{}{
		"member_id": created.MemberID,
		"amount":    created.Amount,
	})
	return created, nil
}

func (ls *LoanService) MyLoans(ctx context.Context, memberID int64) ([]*domain.Loan, error) {
	loans, err := ls.repo.GetLoansByMember(ctx, memberID)
	if err != nil {
		ls.logger.Error("Failed to get member loans", map[string]interface{}{
			"member_id": memberID,
			"error":     err.Error(),
		})
		return nil, err
	}
	return loans, nil
}

func (ls *LoanService) AllLoans(ctx context.Context, page, perPage int) (*domain.LoanPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 25
	}

	loans, total, err := ls.repo.ListLoans(ctx, perPage, (page-1)*perPage)
	if err != nil {
		ls.logger.Error("Failed to list loans", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	pages := int(total) / perPage
	if int(total)%perPage != 0 {
		pages++
	}

	return &domain.LoanPage{
		Loans:   loans,
		Page:    page,
		PerPage: perPage,
		Total:   total,
		Pages:   pages,
	}, nil
}

func (ls *LoanService) UpdateLoan(ctx context.Context, loan *domain.Loan) (*domain.Loan, error) {
	if err := validateLoan(loan); err != nil {
		return nil, err
	}

	if _, err := ls.repo.GetLoanByMember(ctx, loan.MemberID); err != nil {
		return nil, err
	}

	updated, err := ls.repo.UpdateLoan(ctx, loan)
	if err != nil {
		ls.logger.Error("Failed to update loan", map[string]interface{}{
			"member_id": loan.MemberID,
			"error":     err.Error(),
		})
		return nil, err
	}
	return updated, nil
}

func (ls *LoanService) DeleteLoan(ctx context.Context, memberID int64) error {
	if _, err := ls.repo.GetLoanByMember(ctx, memberID); err != nil {
		return err
	}

	if err := ls.repo.DeleteLoan(ctx, memberID); err != nil {
		ls.logger.Error("Failed to delete loan", map[string]interface{}{
			"member_id": memberID,
			"error":     err.Error(),
		})
		return err
	}
	return nil
}

var _ ports.LoanService = (*LoanService)(nil)
