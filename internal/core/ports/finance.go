package ports

import (
	"context"

	"github.com/tmuthoni/chama_backend/internal/core/domain"
)

type LoanRepository interface {
	CreateLoan(ctx context.Context, loan *domain.Loan) (*domain.Loan, error)
	GetLoanByMember(ctx context.Context, memberID int64) (*domain.Loan, error)
	GetLoansByMember(ctx context.Context, memberID int64) ([]*domain.Loan, error)
	// ListLoans returns one page plus the total row count.
	ListLoans(ctx context.Context, limit, offset int) ([]*domain.LoanWithMember, int64, error)
	UpdateLoan(ctx context.Context, loan *domain.Loan) (*domain.Loan, error)
	DeleteLoan(ctx context.Context, memberID int64) error
}

type LoanService interface {
	Apply(ctx context.Context, loan *domain.Loan) (*domain.Loan, error)
	MyLoans(ctx context.Context, memberID int64) ([]*domain.Loan, error)
	AllLoans(ctx context.Context, page, perPage int) (*domain.LoanPage, error)
	UpdateLoan(ctx context.Context, loan *domain.Loan) (*domain.Loan, error)
	DeleteLoan(ctx context.Context, memberID int64) error
}

type PaymentRepository interface {
	CreatePayment(ctx context.Context, payment *domain.Payment) (*domain.Payment, error)
	GetPaymentByReceipt(ctx context.Context, receipt string) (*domain.Payment, error)
	GetPaymentsByMember(ctx context.Context, memberID int64) ([]*domain.Payment, error)
	ListPayments(ctx context.Context) ([]*domain.PaymentWithMember, error)
	GetPayment(ctx context.Context, paymentID int64) (*domain.Payment, error)
	DeletePayment(ctx context.Context, paymentID int64) error
}

type PaymentService interface {
	MakePayment(ctx context.Context, payment *domain.Payment) (*domain.Payment, error)
	MyPayments(ctx context.Context, memberID int64) ([]*domain.Payment, error)
	AllPayments(ctx context.Context) ([]*domain.PaymentWithMember, error)
	DeletePayment(ctx context.Context, paymentID int64) (*domain.Payment, error)
}

type SharesRepository interface {
	CreateShares(ctx context.Context, shares *domain.Shares) (*domain.Shares, error)
	GetSharesByMember(ctx context.Context, memberID int64) (*domain.Shares, error)
	ListShares(ctx context.Context) ([]*domain.Shares, error)
	UpdateShares(ctx context.Context, shares *domain.Shares) (*domain.Shares, error)
	DeleteShares(ctx context.Context, memberID int64) error
}

type SharesService interface {
	MemberShares(ctx context.Context, memberID int64) (*domain.Shares, error)
	// ListShares returns every record, or just the one member's when
	// memberID is positive (empty slice when that member has none).
	ListShares(ctx context.Context, memberID int64) ([]*domain.Shares, error)
	CreateShares(ctx context.Context, shares *domain.Shares) (*domain.Shares, error)
	UpdateShares(ctx context.Context, shares *domain.Shares) (*domain.Shares, error)
	DeleteShares(ctx context.Context, memberID int64) error
}
