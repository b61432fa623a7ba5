package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/tmuthoni/chama_backend/internal/core/domain"
)

type PostgresPaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{
		db,
	}
}

func (r *PostgresPaymentRepository) CreatePayment(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	query := `INSERT INTO payments (member_id, payname, amount, method, receipt)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING payment_id`

	err := r.db.QueryRowContext(ctx, query,
		payment.MemberID, payment.PayName, payment.Amount, payment.Method, payment.Receipt).Scan(
		&payment.PaymentID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				return nil, domain.ErrDuplicateReceipt
			case "23503":
				return nil, domain.ErrNotFound
			}
		}
		return nil, err
	}
	return payment, nil
}

func (r *PostgresPaymentRepository) GetPaymentByReceipt(ctx context.Context, receipt string) (*domain.Payment, error) {
	query := `SELECT payment_id, member_id, payname, amount, method, receipt
              FROM payments WHERE receipt = $1`

	payment := &domain.Payment{}
	err := r.db.QueryRowContext(ctx, query, receipt).Scan(
		&payment.PaymentID,
		&payment.MemberID,
		&payment.PayName,
		&payment.Amount,
		&payment.Method,
		&payment.Receipt,
	)

	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return payment, nil
}

func (r *PostgresPaymentRepository) GetPaymentsByMember(ctx context.Context, memberID int64) ([]*domain.Payment, error) {
	query := `SELECT payment_id, member_id, payname, amount, method, receipt
              FROM payments WHERE member_id = $1
              ORDER BY payment_id`

	rows, err := r.db.QueryContext(ctx, query, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := []*domain.Payment{}
	for rows.Next() {
		payment := &domain.Payment{}
		err := rows.Scan(
			&payment.PaymentID,
			&payment.MemberID,
			&payment.PayName,
			&payment.Amount,
			&payment.Method,
			&payment.Receipt,
		)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *PostgresPaymentRepository) ListPayments(ctx context.Context) ([]*domain.PaymentWithMember, error) {
	query := `SELECT p.payment_id, p.member_id, p.payname, p.amount, p.method, p.receipt, u.firstname
              FROM payments p
              JOIN users u ON u.member_id = p.member_id
              ORDER BY p.payment_id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := []*domain.PaymentWithMember{}
	for rows.Next() {
		payment := &domain.PaymentWithMember{}
		err := rows.Scan(
			&payment.PaymentID,
			&payment.MemberID,
			&payment.PayName,
			&payment.Amount,
			&payment.Method,
			&payment.Receipt,
			&payment.Firstname,
		)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *PostgresPaymentRepository) GetPayment(ctx context.Context, paymentID int64) (*domain.Payment, error) {
	query := `SELECT payment_id, member_id, payname, amount, method, receipt
              FROM payments WHERE payment_id = $1`

	payment := &domain.Payment{}
	err := r.db.QueryRowContext(ctx, query, paymentID).Scan(
		&payment.PaymentID,
		&payment.MemberID,
		&payment.PayName,
		&payment.Amount,
		&payment.Method,
		&payment.Receipt,
	)

	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return payment, nil
}

func (r *PostgresPaymentRepository) DeletePayment(ctx context.Context, paymentID int64) error {
	query := `DELETE FROM payments WHERE payment_id = $1`

	result, err := r.db.ExecContext(ctx, query, paymentID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}
